package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/internal/repository/db"
)

var accessoryColumns = []string{
	"a.id", "a.name", "a.description", "a.price", "a.type", "a.vehicle_id",
	"(SELECT v.brand || ' ' || v.model || ' (' || v.year_of_manufacture || ')' FROM vehicles v WHERE v.id = a.vehicle_id) AS vehicle_display_name",
	"a.created_at", "a.updated_at",
}

var accessorySortColumns = map[string]string{
	"name":       "a.name",
	"price":      "a.price",
	"type":       "a.type",
	"created_at": "a.created_at",
}

type repository struct {
	db *db.Client
	sb sq.StatementBuilderType
}

func NewAccessoryRepository(client *db.Client) *repository {
	return &repository{
		db: client,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, a *model.Accessory) (int64, error) {
	const op = "accessory.repository.Create"

	q := r.sb.
		Insert("accessories").
		Columns("name", "description", "price", "type", "vehicle_id").
		Values(a.Name, a.Description, a.Price, string(a.Type), a.VehicleID).
		Suffix("RETURNING id, created_at, updated_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.Q(ctx).QueryRow(ctx, sqlStr, args...).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return a.ID, nil
}

func (r *repository) AccessoryByID(ctx context.Context, id int64) (*model.Accessory, error) {
	const op = "accessory.repository.AccessoryByID"

	q := r.sb.
		Select(accessoryColumns...).
		From("accessories a").
		Where(sq.Eq{"a.id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a, err := scanAccessory(r.db.Q(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAccessoryNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (r *repository) Update(ctx context.Context, a *model.Accessory) error {
	const op = "accessory.repository.Update"

	q := r.sb.
		Update("accessories").
		Set("name", a.Name).
		Set("description", a.Description).
		Set("price", a.Price).
		Set("type", string(a.Type)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": a.ID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ct, err := r.db.Q(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return model.ErrAccessoryNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	const op = "accessory.repository.Delete"

	ct, err := r.db.Q(ctx).Exec(ctx, "DELETE FROM accessories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return model.ErrAccessoryNotFound
	}

	return nil
}

func (r *repository) DeleteByGarageID(ctx context.Context, garageID int64) error {
	const op = "accessory.repository.DeleteByGarageID"

	_, err := r.db.Q(ctx).Exec(ctx,
		"DELETE FROM accessories a USING vehicles v WHERE a.vehicle_id = v.id AND v.garage_id = $1",
		garageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) DeleteByVehicleID(ctx context.Context, vehicleID int64) error {
	const op = "accessory.repository.DeleteByVehicleID"

	if _, err := r.db.Q(ctx).Exec(ctx, "DELETE FROM accessories WHERE vehicle_id = $1", vehicleID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListByVehicle is the unpaged variant, ordered by insertion.
func (r *repository) ListByVehicle(ctx context.Context, vehicleID int64) ([]model.Accessory, error) {
	const op = "accessory.repository.ListByVehicle"

	q := r.sb.
		Select(accessoryColumns...).
		From("accessories a").
		Where(sq.Eq{"a.vehicle_id": vehicleID}).
		OrderBy("a.id ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.queryAll(ctx, op, sqlStr, args)
}

func (r *repository) ListByVehiclePaged(ctx context.Context, vehicleID int64, page model.PageRequest) (model.Page[model.Accessory], error) {
	return r.search(ctx, sq.Eq{"a.vehicle_id": vehicleID}, page)
}

func (r *repository) ListByType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Accessory], error) {
	return r.search(ctx, sq.Eq{"a.type": string(at)}, page)
}

func (r *repository) SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Accessory], error) {
	return r.search(ctx, sq.ILike{"a.name": "%" + name + "%"}, page)
}

func (r *repository) ListByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) (model.Page[model.Accessory], error) {
	return r.search(ctx, sq.And{
		sq.GtOrEq{"a.price": minPrice},
		sq.LtOrEq{"a.price": maxPrice},
	}, page)
}

func (r *repository) ListByVehicleAndType(ctx context.Context, vehicleID int64, at model.AccessoryType) ([]model.Accessory, error) {
	const op = "accessory.repository.ListByVehicleAndType"

	q := r.sb.
		Select(accessoryColumns...).
		From("accessories a").
		Where(sq.And{
			sq.Eq{"a.vehicle_id": vehicleID},
			sq.Eq{"a.type": string(at)},
		}).
		OrderBy("a.id ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.queryAll(ctx, op, sqlStr, args)
}

func (r *repository) CountByVehicleID(ctx context.Context, vehicleID int64) (int64, error) {
	const op = "accessory.repository.CountByVehicleID"

	var n int64
	err := r.db.Q(ctx).
		QueryRow(ctx, "SELECT COUNT(*) FROM accessories WHERE vehicle_id = $1", vehicleID).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// TopExpensive returns the n priciest accessories across the network.
func (r *repository) TopExpensive(ctx context.Context, n int) ([]model.Accessory, error) {
	const op = "accessory.repository.TopExpensive"

	q := r.sb.
		Select(accessoryColumns...).
		From("accessories a").
		OrderBy("a.price DESC").
		Limit(uint64(n))

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.queryAll(ctx, op, sqlStr, args)
}

// SumPriceByVehicleID totals a vehicle's accessory prices; zero when none.
func (r *repository) SumPriceByVehicleID(ctx context.Context, vehicleID int64) (decimal.Decimal, error) {
	const op = "accessory.repository.SumPriceByVehicleID"

	var sum decimal.Decimal
	err := r.db.Q(ctx).
		QueryRow(ctx, "SELECT COALESCE(SUM(price), 0) FROM accessories WHERE vehicle_id = $1", vehicleID).
		Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	return sum, nil
}

// GarageIDsWithAccessoryType lists the distinct garages hosting at least
// one accessory of the given type.
func (r *repository) GarageIDsWithAccessoryType(ctx context.Context, at model.AccessoryType) ([]int64, error) {
	const op = "accessory.repository.GarageIDsWithAccessoryType"

	rows, err := r.db.Q(ctx).Query(ctx,
		`SELECT DISTINCT v.garage_id
		 FROM accessories a
		 JOIN vehicles v ON v.id = a.vehicle_id
		 WHERE a.type = $1
		 ORDER BY v.garage_id`,
		string(at))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, id)
	}

	return out, rows.Err()
}

func (r *repository) search(ctx context.Context, pred sq.Sqlizer, page model.PageRequest) (model.Page[model.Accessory], error) {
	const op = "accessory.repository.search"

	var zero model.Page[model.Accessory]
	page = page.WithSort("name", model.SortAsc)

	countQ := r.sb.Select("COUNT(*)").From("accessories a").Where(pred)
	sqlStr, args, err := countQ.ToSql()
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	var total int64
	if err := r.db.Q(ctx).QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	q := r.sb.
		Select(accessoryColumns...).
		From("accessories a").
		Where(pred).
		OrderBy(db.OrderClause(accessorySortColumns, page, "a.name"), "a.id ASC").
		Limit(page.Limit()).
		Offset(page.Offset())

	sqlStr, args, err = q.ToSql()
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	items, err := r.queryAll(ctx, op, sqlStr, args)
	if err != nil {
		return zero, err
	}

	return model.Page[model.Accessory]{
		Items:         items,
		PageNumber:    page.Number,
		PageSize:      page.Size,
		TotalElements: total,
	}, nil
}

func (r *repository) queryAll(ctx context.Context, op, sqlStr string, args []any) ([]model.Accessory, error) {
	rows, err := r.db.Q(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Accessory, 0)
	for rows.Next() {
		a, err := scanAccessory(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

func scanAccessory(row pgx.Row) (*model.Accessory, error) {
	var (
		a       model.Accessory
		accType string
	)
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.Price,
		&accType,
		&a.VehicleID,
		&a.VehicleDisplayName,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Type = model.AccessoryType(accType)
	return &a, nil
}
