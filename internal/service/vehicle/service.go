package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yasserh/Gestiongarrage/internal/converter"
	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/internal/repository/predicate"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

type VehicleRepository interface {
	Create(ctx context.Context, v *model.Vehicle) (int64, error)
	VehicleByID(ctx context.Context, id int64) (*model.Vehicle, error)
	ExistsByVin(ctx context.Context, vin string) (bool, error)
	Update(ctx context.Context, v *model.Vehicle) error
	Delete(ctx context.Context, id int64) error
	ListByGarage(ctx context.Context, garageID int64, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByGarageAndFuelType(ctx context.Context, garageID int64, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByBrand(ctx context.Context, brand string, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByBrandAndModel(ctx context.Context, brand, mdl string, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListAllByModel(ctx context.Context, mdl string) ([]model.Vehicle, error)
	EcoFriendly(ctx context.Context, page model.PageRequest) (model.Page[model.Vehicle], error)
	Search(ctx context.Context, pred predicate.Predicate, page model.PageRequest) (model.Page[model.Vehicle], error)
	VehicleByVin(ctx context.Context, vin string) (*model.Vehicle, error)
	CountByGarageID(ctx context.Context, garageID int64) (int64, error)
}

type GarageRepository interface {
	GarageByID(ctx context.Context, id int64) (*model.Garage, error)
	LockByID(ctx context.Context, id int64) (*model.Garage, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

type AccessoryRepository interface {
	ListByVehicle(ctx context.Context, vehicleID int64) ([]model.Accessory, error)
	DeleteByVehicleID(ctx context.Context, vehicleID int64) error
}

type OutboxRepository interface {
	CreateEvent(ctx context.Context, e *model.OutboxEvent) (int64, error)
}

type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock abstracts time.Now so the manufacture-year rule is testable.
type Clock interface {
	Now() time.Time
}

type service struct {
	repo           VehicleRepository
	garages        GarageRepository
	accessories    AccessoryRepository
	outbox         OutboxRepository
	tx             TxManager
	clock          Clock
	eventTopic     string
	readDBTimeout  time.Duration
	writeDBTimeout time.Duration
}

func NewVehicleService(
	repository VehicleRepository,
	garages GarageRepository,
	accessories AccessoryRepository,
	outbox OutboxRepository,
	tx TxManager,
	clock Clock,
	eventTopic string,
	readDBTimeout time.Duration,
	writeDBTimeout time.Duration,
) *service {
	return &service{
		repo:           repository,
		garages:        garages,
		accessories:    accessories,
		outbox:         outbox,
		tx:             tx,
		clock:          clock,
		eventTopic:     eventTopic,
		readDBTimeout:  readDBTimeout,
		writeDBTimeout: writeDBTimeout,
	}
}

// AddToGarage registers a vehicle under the garage's quota. The garage
// row is locked for the duration of the transaction so two concurrent
// additions cannot both observe a free slot, and the creation event is
// enqueued in the same transaction as the insert.
func (svc *service) AddToGarage(ctx context.Context, garageID int64, v *model.Vehicle) (*model.Vehicle, error) {
	const op string = "vehicle.service.AddToGarage"
	log := logger.With(
		logger.Int64("garage_id", garageID),
		logger.String("brand", v.Brand),
		logger.String("model", v.Model),
	)

	// Next-year models are legitimate inventory, anything beyond that is a typo.
	if v.YearOfManufacture > svc.clock.Now().Year()+1 {
		return nil, fmt.Errorf("%s: %w", op, model.ErrYearInFuture)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	err := svc.tx.WithTx(ctx, func(ctx context.Context) error {
		g, err := svc.garages.LockByID(ctx, garageID)
		if err != nil {
			return err
		}

		if !g.CanAcceptVehicle() {
			return model.ErrQuotaExceeded
		}

		if v.Vin != nil {
			taken, err := svc.repo.ExistsByVin(ctx, *v.Vin)
			if err != nil {
				return err
			}
			if taken {
				return model.ErrDuplicateVin
			}
		}

		v.GarageID = garageID
		v.GarageName = g.Name
		if _, err := svc.repo.Create(ctx, v); err != nil {
			return err
		}

		return svc.enqueueCreatedEvent(ctx, v, g)
	})
	if err != nil {
		log.Error(ctx, "add vehicle to garage", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (svc *service) VehicleByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	const op string = "vehicle.service.VehicleByID"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	v, err := svc.repo.VehicleByID(ctx, id)
	if err != nil {
		logger.With(logger.Int64("vehicle_id", id)).
			Error(ctx, "repository vehicle by id", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (svc *service) VehicleByVin(ctx context.Context, vin string) (*model.Vehicle, error) {
	const op string = "vehicle.service.VehicleByVin"

	if vin == "" {
		return nil, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	v, err := svc.repo.VehicleByVin(ctx, vin)
	if err != nil {
		logger.With(logger.String("vin", vin)).
			Error(ctx, "repository vehicle by vin", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (svc *service) CountByGarage(ctx context.Context, garageID int64) (int64, error) {
	const op string = "vehicle.service.CountByGarage"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	exists, err := svc.garages.ExistsByID(ctx, garageID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return 0, fmt.Errorf("%s: %w", op, model.ErrGarageNotFound)
	}

	n, err := svc.repo.CountByGarageID(ctx, garageID)
	if err != nil {
		logger.With(logger.Int64("garage_id", garageID)).
			Error(ctx, "repository count by garage", logger.ErrorF(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (svc *service) ListByGarage(ctx context.Context, garageID int64, page model.PageRequest) (model.Page[model.Vehicle], error) {
	const op string = "vehicle.service.ListByGarage"
	var zero model.Page[model.Vehicle]

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	exists, err := svc.garages.ExistsByID(ctx, garageID)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return zero, fmt.Errorf("%s: %w", op, model.ErrGarageNotFound)
	}

	result, err := svc.repo.ListByGarage(ctx, garageID, page)
	if err != nil {
		logger.With(logger.Int64("garage_id", garageID)).
			Error(ctx, "repository vehicles by garage", logger.ErrorF(err))
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) Update(ctx context.Context, v *model.Vehicle) (*model.Vehicle, error) {
	const op string = "vehicle.service.Update"
	log := logger.With(logger.Int64("vehicle_id", v.ID))

	if v.YearOfManufacture > svc.clock.Now().Year()+1 {
		return nil, fmt.Errorf("%s: %w", op, model.ErrYearInFuture)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	current, err := svc.repo.VehicleByID(ctx, v.ID)
	if err != nil {
		log.Error(ctx, "repository vehicle by id", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if v.Vin != nil && (current.Vin == nil || *current.Vin != *v.Vin) {
		taken, err := svc.repo.ExistsByVin(ctx, *v.Vin)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if taken {
			return nil, fmt.Errorf("%s: %w", op, model.ErrDuplicateVin)
		}
	}

	v.GarageID = current.GarageID
	if err := svc.repo.Update(ctx, v); err != nil {
		log.Error(ctx, "repository update vehicle", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := svc.repo.VehicleByID(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// Delete detaches the vehicle from its garage and drops it with its
// accessories.
func (svc *service) Delete(ctx context.Context, id int64) error {
	const op string = "vehicle.service.Delete"
	log := logger.With(logger.Int64("vehicle_id", id))

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	err := svc.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.VehicleByID(ctx, id); err != nil {
			return err
		}
		if err := svc.accessories.DeleteByVehicleID(ctx, id); err != nil {
			return err
		}
		return svc.repo.Delete(ctx, id)
	})
	if err != nil {
		log.Error(ctx, "delete vehicle", logger.ErrorF(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListAllByModel returns every vehicle of the given model across all
// garages, unpaged.
func (svc *service) ListAllByModel(ctx context.Context, mdl string) ([]model.Vehicle, error) {
	const op string = "vehicle.service.ListAllByModel"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	vehicles, err := svc.repo.ListAllByModel(ctx, mdl)
	if err != nil {
		logger.With(logger.String("model", mdl)).
			Error(ctx, "repository vehicles by model", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return vehicles, nil
}

func (svc *service) ListByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error) {
	const op string = "vehicle.service.ListByFuelType"
	var zero model.Page[model.Vehicle]

	if !ft.Valid() {
		return zero, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.ListByFuelType(ctx, ft, page)
	if err != nil {
		logger.Error(ctx, "repository vehicles by fuel type", logger.ErrorF(err))
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) ListByGarageAndFuelType(ctx context.Context, garageID int64, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error) {
	const op string = "vehicle.service.ListByGarageAndFuelType"
	var zero model.Page[model.Vehicle]

	if !ft.Valid() {
		return zero, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	exists, err := svc.garages.ExistsByID(ctx, garageID)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return zero, fmt.Errorf("%s: %w", op, model.ErrGarageNotFound)
	}

	result, err := svc.repo.ListByGarageAndFuelType(ctx, garageID, ft, page)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) ListByBrand(ctx context.Context, brand string, page model.PageRequest) (model.Page[model.Vehicle], error) {
	const op string = "vehicle.service.ListByBrand"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.ListByBrand(ctx, brand, page)
	if err != nil {
		return model.Page[model.Vehicle]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) ListByBrandAndModel(ctx context.Context, brand, mdl string, page model.PageRequest) (model.Page[model.Vehicle], error) {
	const op string = "vehicle.service.ListByBrandAndModel"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.ListByBrandAndModel(ctx, brand, mdl, page)
	if err != nil {
		return model.Page[model.Vehicle]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) EcoFriendly(ctx context.Context, page model.PageRequest) (model.Page[model.Vehicle], error) {
	const op string = "vehicle.service.EcoFriendly"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.EcoFriendly(ctx, page)
	if err != nil {
		logger.Error(ctx, "repository eco friendly vehicles", logger.ErrorF(err))
		return model.Page[model.Vehicle]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) enqueueCreatedEvent(ctx context.Context, v *model.Vehicle, g *model.Garage) error {
	key, payload, err := converter.EncodeVehicleCreated(model.VehicleCreated{
		VehicleID:         v.ID,
		Brand:             v.Brand,
		Model:             v.Model,
		YearOfManufacture: v.YearOfManufacture,
		FuelType:          v.FuelType,
		Vin:               v.Vin,
		GarageID:          g.ID,
		GarageName:        g.Name,
		CreatedAt:         svc.clock.Now().UTC(),
		EventID:           uuid.New(),
	})
	if err != nil {
		return err
	}

	_, err = svc.outbox.CreateEvent(ctx, &model.OutboxEvent{
		Topic:   svc.eventTopic,
		Key:     key,
		Payload: payload,
	})
	return err
}
