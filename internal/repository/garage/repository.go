package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/internal/repository/db"
	"github.com/yasserh/Gestiongarrage/internal/repository/predicate"
)

const uqGarageEmail = "uq_garages_email"

// garageColumns selects the scalar fields plus the derived vehicle count.
var garageColumns = []string{
	"g.id", "g.name", "g.address", "g.telephone", "g.email",
	"(SELECT COUNT(*) FROM vehicles v WHERE v.garage_id = g.id) AS vehicle_count",
	"g.created_at", "g.updated_at",
}

// Sortable columns for list/search endpoints.
var garageSortColumns = map[string]string{
	"name":       "g.name",
	"address":    "g.address",
	"email":      "g.email",
	"created_at": "g.created_at",
}

type repository struct {
	db *db.Client
	sb sq.StatementBuilderType
}

func NewGarageRepository(client *db.Client) *repository {
	return &repository{
		db: client,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, g *model.Garage) (int64, error) {
	const op = "garage.repository.Create"

	q := r.sb.
		Insert("garages").
		Columns("name", "address", "telephone", "email").
		Values(g.Name, g.Address, g.Telephone, g.Email).
		Suffix("RETURNING id, created_at, updated_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.Q(ctx).QueryRow(ctx, sqlStr, args...).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, uqGarageEmail) {
			return 0, model.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.replaceOpeningHours(ctx, g.ID, g.OpeningHours); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return g.ID, nil
}

func (r *repository) GarageByID(ctx context.Context, id int64) (*model.Garage, error) {
	const op = "garage.repository.GarageByID"

	q := r.sb.
		Select(garageColumns...).
		From("garages g").
		Where(sq.Eq{"g.id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := scanGarage(r.db.Q(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGarageNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if g.OpeningHours, err = r.openingHours(ctx, g.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

// LockByID loads the garage row under a FOR UPDATE lock. Vehicle creation
// takes this lock before counting children so two concurrent creates cannot
// both observe free capacity.
func (r *repository) LockByID(ctx context.Context, id int64) (*model.Garage, error) {
	const op = "garage.repository.LockByID"

	q := r.sb.
		Select("g.id", "g.name", "g.address", "g.telephone", "g.email",
			"(SELECT COUNT(*) FROM vehicles v WHERE v.garage_id = g.id) AS vehicle_count",
			"g.created_at", "g.updated_at").
		From("garages g").
		Where(sq.Eq{"g.id": id}).
		Suffix("FOR UPDATE OF g")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := scanGarage(r.db.Q(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGarageNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (r *repository) GarageByEmail(ctx context.Context, email string) (*model.Garage, error) {
	const op = "garage.repository.GarageByEmail"

	q := r.sb.
		Select(garageColumns...).
		From("garages g").
		Where(predicate.GarageHasEmail(email))

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := scanGarage(r.db.Q(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGarageNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (r *repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	const op = "garage.repository.ExistsByID"

	var exists bool
	err := r.db.Q(ctx).
		QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM garages WHERE id = $1)", id).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const op = "garage.repository.ExistsByEmail"

	var exists bool
	err := r.db.Q(ctx).
		QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM garages WHERE LOWER(email) = LOWER($1))", email).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *repository) Update(ctx context.Context, g *model.Garage) error {
	const op = "garage.repository.Update"

	q := r.sb.
		Update("garages").
		Set("name", g.Name).
		Set("address", g.Address).
		Set("telephone", g.Telephone).
		Set("email", g.Email).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": g.ID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ct, err := r.db.Q(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		if db.IsUniqueViolation(err, uqGarageEmail) {
			return model.ErrDuplicateEmail
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return model.ErrGarageNotFound
	}

	if err := r.replaceOpeningHours(ctx, g.ID, g.OpeningHours); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	const op = "garage.repository.Delete"

	ct, err := r.db.Q(ctx).Exec(ctx, "DELETE FROM garages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return model.ErrGarageNotFound
	}

	return nil
}

func (r *repository) List(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	return r.Search(ctx, predicate.Neutral(), page)
}

// Search runs a composed predicate over garages with pagination. The count
// query shares the predicate so totals always match the window.
func (r *repository) Search(ctx context.Context, pred sq.Sqlizer, page model.PageRequest) (model.Page[model.Garage], error) {
	const op = "garage.repository.Search"

	var zero model.Page[model.Garage]
	page = page.WithSort("name", model.SortAsc)

	total, err := r.count(ctx, pred)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	q := r.sb.
		Select(garageColumns...).
		From("garages g").
		Where(pred).
		OrderBy(db.OrderClause(garageSortColumns, page, "g.name")).
		Limit(page.Limit()).
		Offset(page.Offset())

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Q(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]model.Garage, 0, page.Size)
	for rows.Next() {
		g, err := scanGarage(rows)
		if err != nil {
			return zero, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return model.Page[model.Garage]{
		Items:         items,
		PageNumber:    page.Number,
		PageSize:      page.Size,
		TotalElements: total,
	}, nil
}

func (r *repository) WithAvailableCapacity(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	return r.Search(ctx, predicate.GarageHasAvailableCapacity(), page)
}

func (r *repository) Full(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	return r.Search(ctx, predicate.GarageIsFull(), page)
}

func (r *repository) CountWithVehicles(ctx context.Context) (int64, error) {
	const op = "garage.repository.CountWithVehicles"

	var n int64
	err := r.db.Q(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM garages g WHERE EXISTS (SELECT 1 FROM vehicles v WHERE v.garage_id = g.id)",
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (r *repository) count(ctx context.Context, pred sq.Sqlizer) (int64, error) {
	q := r.sb.
		Select("COUNT(*)").
		From("garages g").
		Where(pred)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}

	var total int64
	if err := r.db.Q(ctx).QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *repository) openingHours(ctx context.Context, garageID int64) (map[model.DayOfWeek]string, error) {
	rows, err := r.db.Q(ctx).Query(ctx,
		"SELECT day_of_week, hours FROM garage_opening_hours WHERE garage_id = $1", garageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hours := make(map[model.DayOfWeek]string)
	for rows.Next() {
		var day, h string
		if err := rows.Scan(&day, &h); err != nil {
			return nil, err
		}
		hours[model.DayOfWeek(day)] = h
	}

	return hours, rows.Err()
}

func (r *repository) replaceOpeningHours(ctx context.Context, garageID int64, hours map[model.DayOfWeek]string) error {
	if _, err := r.db.Q(ctx).Exec(ctx,
		"DELETE FROM garage_opening_hours WHERE garage_id = $1", garageID); err != nil {
		return err
	}
	if len(hours) == 0 {
		return nil
	}

	q := r.sb.
		Insert("garage_opening_hours").
		Columns("garage_id", "day_of_week", "hours")
	for day, h := range hours {
		q = q.Values(garageID, string(day), h)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Q(ctx).Exec(ctx, sqlStr, args...)
	return err
}

func scanGarage(row pgx.Row) (*model.Garage, error) {
	var g model.Garage
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Address,
		&g.Telephone,
		&g.Email,
		&g.VehicleCount,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
