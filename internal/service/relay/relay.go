package relay

import (
	"context"
	"time"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

type OutboxRepository interface {
	UnpublishedEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Relay drains the outbox to the broker. Events are claimed, published
// and marked inside one transaction; a broker failure rolls the claim
// back and the batch is retried on the next tick, so delivery is
// at-least-once.
type Relay struct {
	outbox    OutboxRepository
	publisher Publisher
	tx        TxManager
	interval  time.Duration
	batchSize int
}

func New(
	outbox OutboxRepository,
	publisher Publisher,
	tx TxManager,
	interval time.Duration,
	batchSize int,
) *Relay {
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		tx:        tx,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (r *Relay) Run(ctx context.Context) error {
	logger.Info(ctx, "Starting outbox relay",
		logger.Duration("interval", r.interval),
		logger.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil && ctx.Err() == nil {
				logger.Error(ctx, "drain outbox", logger.ErrorF(err))
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	for {
		var published int

		err := r.tx.WithTx(ctx, func(ctx context.Context) error {
			events, err := r.outbox.UnpublishedEvents(ctx, r.batchSize)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return nil
			}

			ids := make([]int64, 0, len(events))
			for _, e := range events {
				if err := r.publisher.Publish(ctx, e.Key, e.Payload); err != nil {
					return err
				}
				ids = append(ids, e.ID)
			}

			if err := r.outbox.MarkPublished(ctx, ids); err != nil {
				return err
			}

			published = len(ids)
			return nil
		})
		if err != nil {
			return err
		}
		if published == 0 {
			return nil
		}

		logger.Debug(ctx, "outbox batch published", logger.Int("events", published))

		if published < r.batchSize {
			return nil
		}
	}
}
