package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

type AccessoryRepository interface {
	Create(ctx context.Context, a *model.Accessory) (int64, error)
	AccessoryByID(ctx context.Context, id int64) (*model.Accessory, error)
	Update(ctx context.Context, a *model.Accessory) error
	Delete(ctx context.Context, id int64) error
	ListByVehicle(ctx context.Context, vehicleID int64) ([]model.Accessory, error)
	ListByVehiclePaged(ctx context.Context, vehicleID int64, page model.PageRequest) (model.Page[model.Accessory], error)
	ListByType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Accessory], error)
	SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Accessory], error)
	ListByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) (model.Page[model.Accessory], error)
	TopExpensive(ctx context.Context, n int) ([]model.Accessory, error)
	SumPriceByVehicleID(ctx context.Context, vehicleID int64) (decimal.Decimal, error)
	ListByVehicleAndType(ctx context.Context, vehicleID int64, at model.AccessoryType) ([]model.Accessory, error)
	CountByVehicleID(ctx context.Context, vehicleID int64) (int64, error)
}

type VehicleRepository interface {
	VehicleByID(ctx context.Context, id int64) (*model.Vehicle, error)
}

type service struct {
	repo           AccessoryRepository
	vehicles       VehicleRepository
	readDBTimeout  time.Duration
	writeDBTimeout time.Duration
}

func NewAccessoryService(
	repository AccessoryRepository,
	vehicles VehicleRepository,
	readDBTimeout time.Duration,
	writeDBTimeout time.Duration,
) *service {
	return &service{
		repo:           repository,
		vehicles:       vehicles,
		readDBTimeout:  readDBTimeout,
		writeDBTimeout: writeDBTimeout,
	}
}

func (svc *service) AddToVehicle(ctx context.Context, vehicleID int64, a *model.Accessory) (*model.Accessory, error) {
	const op string = "accessory.service.AddToVehicle"
	log := logger.With(
		logger.Int64("vehicle_id", vehicleID),
		logger.String("accessory_name", a.Name),
	)

	if !a.Price.IsPositive() {
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	v, err := svc.vehicles.VehicleByID(ctx, vehicleID)
	if err != nil {
		log.Error(ctx, "repository vehicle by id", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.VehicleID = vehicleID
	a.VehicleDisplayName = v.DisplayName()
	if _, err := svc.repo.Create(ctx, a); err != nil {
		log.Error(ctx, "repository create accessory", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (svc *service) AccessoryByID(ctx context.Context, id int64) (*model.Accessory, error) {
	const op string = "accessory.service.AccessoryByID"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	a, err := svc.repo.AccessoryByID(ctx, id)
	if err != nil {
		logger.With(logger.Int64("accessory_id", id)).
			Error(ctx, "repository accessory by id", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (svc *service) ListByVehicle(ctx context.Context, vehicleID int64) ([]model.Accessory, error) {
	const op string = "accessory.service.ListByVehicle"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	if _, err := svc.vehicles.VehicleByID(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessories, err := svc.repo.ListByVehicle(ctx, vehicleID)
	if err != nil {
		logger.With(logger.Int64("vehicle_id", vehicleID)).
			Error(ctx, "repository accessories by vehicle", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accessories, nil
}

func (svc *service) ListByVehiclePaged(ctx context.Context, vehicleID int64, page model.PageRequest) (model.Page[model.Accessory], error) {
	const op string = "accessory.service.ListByVehiclePaged"
	var zero model.Page[model.Accessory]

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	if _, err := svc.vehicles.VehicleByID(ctx, vehicleID); err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	result, err := svc.repo.ListByVehiclePaged(ctx, vehicleID, page)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) Update(ctx context.Context, a *model.Accessory) (*model.Accessory, error) {
	const op string = "accessory.service.Update"
	log := logger.With(logger.Int64("accessory_id", a.ID))

	if !a.Price.IsPositive() {
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	current, err := svc.repo.AccessoryByID(ctx, a.ID)
	if err != nil {
		log.Error(ctx, "repository accessory by id", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.VehicleID = current.VehicleID
	if err := svc.repo.Update(ctx, a); err != nil {
		log.Error(ctx, "repository update accessory", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := svc.repo.AccessoryByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (svc *service) Delete(ctx context.Context, id int64) error {
	const op string = "accessory.service.Delete"

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	if err := svc.repo.Delete(ctx, id); err != nil {
		logger.With(logger.Int64("accessory_id", id)).
			Error(ctx, "repository delete accessory", logger.ErrorF(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (svc *service) ListByType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Accessory], error) {
	const op string = "accessory.service.ListByType"
	var zero model.Page[model.Accessory]

	if !at.Valid() {
		return zero, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.ListByType(ctx, at, page)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Accessory], error) {
	const op string = "accessory.service.SearchByName"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.SearchByName(ctx, name, page)
	if err != nil {
		return model.Page[model.Accessory]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) ListByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) (model.Page[model.Accessory], error) {
	const op string = "accessory.service.ListByPriceRange"
	var zero model.Page[model.Accessory]

	if minPrice.GreaterThan(maxPrice) {
		return zero, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.ListByPriceRange(ctx, minPrice, maxPrice, page)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) TopExpensive(ctx context.Context, n int) ([]model.Accessory, error) {
	const op string = "accessory.service.TopExpensive"

	if n <= 0 {
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	accessories, err := svc.repo.TopExpensive(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accessories, nil
}

// TotalPriceByVehicle sums a vehicle's accessory prices, zero when the
// vehicle has none.
func (svc *service) TotalPriceByVehicle(ctx context.Context, vehicleID int64) (decimal.Decimal, error) {
	const op string = "accessory.service.TotalPriceByVehicle"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	if _, err := svc.vehicles.VehicleByID(ctx, vehicleID); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	sum, err := svc.repo.SumPriceByVehicleID(ctx, vehicleID)
	if err != nil {
		logger.With(logger.Int64("vehicle_id", vehicleID)).
			Error(ctx, "repository sum accessory prices", logger.ErrorF(err))
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	return sum, nil
}

func (svc *service) ListByVehicleAndType(ctx context.Context, vehicleID int64, at model.AccessoryType) ([]model.Accessory, error) {
	const op string = "accessory.service.ListByVehicleAndType"

	if !at.Valid() {
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	if _, err := svc.vehicles.VehicleByID(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessories, err := svc.repo.ListByVehicleAndType(ctx, vehicleID, at)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accessories, nil
}

func (svc *service) CountByVehicle(ctx context.Context, vehicleID int64) (int64, error) {
	const op string = "accessory.service.CountByVehicle"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	if _, err := svc.vehicles.VehicleByID(ctx, vehicleID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := svc.repo.CountByVehicleID(ctx, vehicleID)
	if err != nil {
		logger.With(logger.Int64("vehicle_id", vehicleID)).
			Error(ctx, "repository count accessories", logger.ErrorF(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
