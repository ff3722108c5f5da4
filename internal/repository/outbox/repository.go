package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/internal/repository/db"
)

type repository struct {
	db *db.Client
	sb sq.StatementBuilderType
}

func NewOutboxRepository(client *db.Client) *repository {
	return &repository{
		db: client,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateEvent enqueues a pending event. It must run inside the same
// transaction as the state change it describes.
func (r *repository) CreateEvent(ctx context.Context, e *model.OutboxEvent) (int64, error) {
	const op = "outbox.repository.CreateEvent"

	q := r.sb.
		Insert("outbox_events").
		Columns("topic", "key", "payload").
		Values(e.Topic, e.Key, e.Payload).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.Q(ctx).QueryRow(ctx, sqlStr, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return e.ID, nil
}

// UnpublishedEvents claims up to limit pending events in creation order.
// SKIP LOCKED lets concurrent relays drain disjoint batches.
func (r *repository) UnpublishedEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	const op = "outbox.repository.UnpublishedEvents"

	rows, err := r.db.Q(ctx).Query(ctx,
		`SELECT id, topic, key, payload, created_at, published_at
		 FROM outbox_events
		 WHERE published_at IS NULL
		 ORDER BY id
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.OutboxEvent, 0, limit)
	for rows.Next() {
		var e model.OutboxEvent
		if err := rows.Scan(&e.ID, &e.Topic, &e.Key, &e.Payload, &e.CreatedAt, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *repository) MarkPublished(ctx context.Context, ids []int64) error {
	const op = "outbox.repository.MarkPublished"

	if len(ids) == 0 {
		return nil
	}

	q := r.sb.
		Update("outbox_events").
		Set("published_at", sq.Expr("now()")).
		Where(sq.Eq{"id": ids})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Q(ctx).Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
