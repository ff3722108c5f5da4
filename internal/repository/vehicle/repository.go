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

const uqVehicleVin = "uq_vehicles_vin"

var vehicleColumns = []string{
	"v.id", "v.brand", "v.model", "v.year_of_manufacture", "v.fuel_type",
	"v.vin", "v.color", "v.mileage", "v.garage_id",
	"(SELECT g.name FROM garages g WHERE g.id = v.garage_id) AS garage_name",
	"(SELECT COUNT(*) FROM accessories a WHERE a.vehicle_id = v.id) AS accessory_count",
	"v.created_at", "v.updated_at",
}

var vehicleSortColumns = map[string]string{
	"brand":               "v.brand",
	"model":               "v.model",
	"year_of_manufacture": "v.year_of_manufacture",
	"created_at":          "v.created_at",
}

type repository struct {
	db *db.Client
	sb sq.StatementBuilderType
}

func NewVehicleRepository(client *db.Client) *repository {
	return &repository{
		db: client,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, v *model.Vehicle) (int64, error) {
	const op = "vehicle.repository.Create"

	q := r.sb.
		Insert("vehicles").
		Columns("brand", "model", "year_of_manufacture", "fuel_type", "vin", "color", "mileage", "garage_id").
		Values(v.Brand, v.Model, v.YearOfManufacture, string(v.FuelType), v.Vin, v.Color, v.Mileage, v.GarageID).
		Suffix("RETURNING id, created_at, updated_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.Q(ctx).QueryRow(ctx, sqlStr, args...).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, uqVehicleVin) {
			return 0, model.ErrDuplicateVin
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return v.ID, nil
}

func (r *repository) VehicleByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	const op = "vehicle.repository.VehicleByID"

	q := r.sb.
		Select(vehicleColumns...).
		From("vehicles v").
		Where(sq.Eq{"v.id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v, err := scanVehicle(r.db.Q(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (r *repository) VehicleByVin(ctx context.Context, vin string) (*model.Vehicle, error) {
	const op = "vehicle.repository.VehicleByVin"

	q := r.sb.
		Select(vehicleColumns...).
		From("vehicles v").
		Where(sq.Eq{"v.vin": vin})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v, err := scanVehicle(r.db.Q(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (r *repository) ExistsByVin(ctx context.Context, vin string) (bool, error) {
	const op = "vehicle.repository.ExistsByVin"

	var exists bool
	err := r.db.Q(ctx).
		QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM vehicles WHERE vin = $1)", vin).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *repository) Update(ctx context.Context, v *model.Vehicle) error {
	const op = "vehicle.repository.Update"

	q := r.sb.
		Update("vehicles").
		Set("brand", v.Brand).
		Set("model", v.Model).
		Set("year_of_manufacture", v.YearOfManufacture).
		Set("fuel_type", string(v.FuelType)).
		Set("vin", v.Vin).
		Set("color", v.Color).
		Set("mileage", v.Mileage).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": v.ID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ct, err := r.db.Q(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		if db.IsUniqueViolation(err, uqVehicleVin) {
			return model.ErrDuplicateVin
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return model.ErrVehicleNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	const op = "vehicle.repository.Delete"

	ct, err := r.db.Q(ctx).Exec(ctx, "DELETE FROM vehicles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return model.ErrVehicleNotFound
	}

	return nil
}

func (r *repository) DeleteByGarageID(ctx context.Context, garageID int64) error {
	const op = "vehicle.repository.DeleteByGarageID"

	if _, err := r.db.Q(ctx).Exec(ctx, "DELETE FROM vehicles WHERE garage_id = $1", garageID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) CountByGarageID(ctx context.Context, garageID int64) (int64, error) {
	const op = "vehicle.repository.CountByGarageID"

	var n int64
	err := r.db.Q(ctx).
		QueryRow(ctx, "SELECT COUNT(*) FROM vehicles WHERE garage_id = $1", garageID).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (r *repository) ListByGarage(ctx context.Context, garageID int64, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return r.Search(ctx, predicate.VehicleBelongsToGarage(garageID), page.WithSort("brand", model.SortAsc))
}

func (r *repository) ListByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return r.Search(ctx, predicate.VehicleHasFuelType(ft), page)
}

func (r *repository) ListByGarageAndFuelType(ctx context.Context, garageID int64, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return r.Search(ctx, predicate.And(
		predicate.VehicleBelongsToGarage(garageID),
		predicate.VehicleHasFuelType(ft),
	), page)
}

func (r *repository) ListByBrand(ctx context.Context, brand string, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return r.Search(ctx, predicate.VehicleHasBrand(brand), page)
}

func (r *repository) ListByBrandAndModel(ctx context.Context, brand, mdl string, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return r.Search(ctx, predicate.And(
		predicate.VehicleHasBrand(brand),
		predicate.VehicleHasModel(mdl),
	), page)
}

func (r *repository) EcoFriendly(ctx context.Context, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return r.Search(ctx, predicate.VehicleIsEcoFriendly(), page)
}

// ListAllByModel is the unpaged case-insensitive exact model search.
func (r *repository) ListAllByModel(ctx context.Context, mdl string) ([]model.Vehicle, error) {
	const op = "vehicle.repository.ListAllByModel"

	q := r.sb.
		Select(vehicleColumns...).
		From("vehicles v").
		Where(predicate.VehicleHasModel(mdl)).
		OrderBy("v.brand ASC", "v.id ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Q(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *v)
	}

	return out, rows.Err()
}

// ListByGarageWithAccessoryType loads the garage's vehicles that carry at
// least one accessory of the given type, used to populate the embedded
// vehicle list on the accessory-type garage search.
func (r *repository) ListByGarageWithAccessoryType(ctx context.Context, garageID int64, at model.AccessoryType) ([]model.Vehicle, error) {
	const op = "vehicle.repository.ListByGarageWithAccessoryType"

	q := r.sb.
		Select(vehicleColumns...).
		From("vehicles v").
		Where(predicate.And(
			predicate.VehicleBelongsToGarage(garageID),
			sq.Expr("EXISTS (SELECT 1 FROM accessories a WHERE a.vehicle_id = v.id AND a.type = ?)", string(at)),
		)).
		OrderBy("v.id ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Q(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *v)
	}

	return out, rows.Err()
}

func (r *repository) Search(ctx context.Context, pred sq.Sqlizer, page model.PageRequest) (model.Page[model.Vehicle], error) {
	const op = "vehicle.repository.Search"

	var zero model.Page[model.Vehicle]
	page = page.WithSort("brand", model.SortAsc)

	total, err := r.count(ctx, pred)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	q := r.sb.
		Select(vehicleColumns...).
		From("vehicles v").
		Where(pred).
		OrderBy(db.OrderClause(vehicleSortColumns, page, "v.brand"), "v.id ASC").
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

	items := make([]model.Vehicle, 0, page.Size)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return zero, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return model.Page[model.Vehicle]{
		Items:         items,
		PageNumber:    page.Number,
		PageSize:      page.Size,
		TotalElements: total,
	}, nil
}

func (r *repository) count(ctx context.Context, pred sq.Sqlizer) (int64, error) {
	q := r.sb.
		Select("COUNT(*)").
		From("vehicles v").
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

func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var (
		v        model.Vehicle
		fuelType string
	)
	err := row.Scan(
		&v.ID,
		&v.Brand,
		&v.Model,
		&v.YearOfManufacture,
		&fuelType,
		&v.Vin,
		&v.Color,
		&v.Mileage,
		&v.GarageID,
		&v.GarageName,
		&v.AccessoryCount,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.FuelType = model.FuelType(fuelType)
	return &v, nil
}
