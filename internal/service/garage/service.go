package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/internal/repository/predicate"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

type GarageRepository interface {
	Create(ctx context.Context, g *model.Garage) (int64, error)
	GarageByID(ctx context.Context, id int64) (*model.Garage, error)
	GarageByEmail(ctx context.Context, email string) (*model.Garage, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, g *model.Garage) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	Search(ctx context.Context, pred predicate.Predicate, page model.PageRequest) (model.Page[model.Garage], error)
	WithAvailableCapacity(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	Full(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	CountWithVehicles(ctx context.Context) (int64, error)
}

type VehicleRepository interface {
	ListByGarage(ctx context.Context, garageID int64, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByGarageWithAccessoryType(ctx context.Context, garageID int64, at model.AccessoryType) ([]model.Vehicle, error)
	DeleteByGarageID(ctx context.Context, garageID int64) error
}

type AccessoryRepository interface {
	DeleteByGarageID(ctx context.Context, garageID int64) error
	GarageIDsWithAccessoryType(ctx context.Context, at model.AccessoryType) ([]int64, error)
}

type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type service struct {
	repo           GarageRepository
	vehicles       VehicleRepository
	accessories    AccessoryRepository
	tx             TxManager
	readDBTimeout  time.Duration
	writeDBTimeout time.Duration
}

func NewGarageService(
	repository GarageRepository,
	vehicles VehicleRepository,
	accessories AccessoryRepository,
	tx TxManager,
	readDBTimeout time.Duration,
	writeDBTimeout time.Duration,
) *service {
	return &service{
		repo:           repository,
		vehicles:       vehicles,
		accessories:    accessories,
		tx:             tx,
		readDBTimeout:  readDBTimeout,
		writeDBTimeout: writeDBTimeout,
	}
}

func (svc *service) Create(ctx context.Context, g *model.Garage) (*model.Garage, error) {
	const op string = "garage.service.Create"
	log := logger.With(
		logger.String("garage_name", g.Name),
		logger.String("garage_email", g.Email),
	)

	if err := g.Validate(); err != nil {
		log.Error(ctx, "validate garage", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	// The garage row and its opening hours are separate statements, so the
	// whole creation runs in one transaction.
	err := svc.tx.WithTx(ctx, func(ctx context.Context) error {
		taken, err := svc.repo.ExistsByEmail(ctx, g.Email)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrDuplicateEmail
		}

		_, err = svc.repo.Create(ctx, g)
		return err
	})
	if err != nil {
		log.Error(ctx, "create garage", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (svc *service) GarageByID(ctx context.Context, id int64) (*model.Garage, error) {
	const op string = "garage.service.GarageByID"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	g, err := svc.repo.GarageByID(ctx, id)
	if err != nil {
		logger.With(logger.Int64("garage_id", id)).
			Error(ctx, "repository garage by id", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (svc *service) List(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	const op string = "garage.service.List"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.List(ctx, page)
	if err != nil {
		logger.Error(ctx, "repository list garages", logger.ErrorF(err))
		return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) Update(ctx context.Context, g *model.Garage) (*model.Garage, error) {
	const op string = "garage.service.Update"
	log := logger.With(logger.Int64("garage_id", g.ID))

	if err := g.Validate(); err != nil {
		log.Error(ctx, "validate garage", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	var updated *model.Garage
	err := svc.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := svc.repo.GarageByID(ctx, g.ID)
		if err != nil {
			return err
		}

		if !strings.EqualFold(current.Email, g.Email) {
			taken, err := svc.repo.ExistsByEmail(ctx, g.Email)
			if err != nil {
				return err
			}
			if taken {
				return model.ErrDuplicateEmail
			}
		}

		if err := svc.repo.Update(ctx, g); err != nil {
			return err
		}

		updated, err = svc.repo.GarageByID(ctx, g.ID)
		return err
	})
	if err != nil {
		log.Error(ctx, "update garage", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// Delete removes the garage with everything it hosts. Accessories go
// first, then vehicles, opening hours ride on the garage row's FK.
func (svc *service) Delete(ctx context.Context, id int64) error {
	const op string = "garage.service.Delete"
	log := logger.With(logger.Int64("garage_id", id))

	ctx, cancel := context.WithTimeout(ctx, svc.writeDBTimeout)
	defer cancel()

	err := svc.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.GarageByID(ctx, id); err != nil {
			return err
		}
		if err := svc.accessories.DeleteByGarageID(ctx, id); err != nil {
			return err
		}
		if err := svc.vehicles.DeleteByGarageID(ctx, id); err != nil {
			return err
		}
		return svc.repo.Delete(ctx, id)
	})
	if err != nil {
		log.Error(ctx, "delete garage", logger.ErrorF(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (svc *service) SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Garage], error) {
	return svc.search(ctx, "garage.service.SearchByName", predicate.GarageHasName(name), page)
}

func (svc *service) SearchByCity(ctx context.Context, city string, page model.PageRequest) (model.Page[model.Garage], error) {
	return svc.search(ctx, "garage.service.SearchByCity", predicate.GarageHasCity(city), page)
}

// SearchByFuelType lists garages hosting at least one vehicle of the
// given fuel type.
func (svc *service) SearchByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Garage], error) {
	const op string = "garage.service.SearchByFuelType"

	if !ft.Valid() {
		return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	return svc.search(ctx, op, predicate.GarageHasVehicleWithFuelType(ft), page)
}

// SearchByAccessoryType lists garages hosting a vehicle equipped with
// an accessory of the given type, each garage carrying only the
// matching vehicles.
func (svc *service) SearchByAccessoryType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Garage], error) {
	const op string = "garage.service.SearchByAccessoryType"

	if !at.Valid() {
		return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.Search(ctx, predicate.GarageHasVehicleWithAccessoryType(at), page)
	if err != nil {
		logger.Error(ctx, "repository search garages", logger.ErrorF(err))
		return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, err)
	}

	for i := range result.Items {
		vehicles, err := svc.vehicles.ListByGarageWithAccessoryType(ctx, result.Items[i].ID, at)
		if err != nil {
			logger.Error(ctx, "repository vehicles with accessory type", logger.ErrorF(err))
			return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, err)
		}
		result.Items[i].Vehicles = vehicles
	}

	return result, nil
}

func (svc *service) WithAvailableCapacity(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	const op string = "garage.service.WithAvailableCapacity"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.WithAvailableCapacity(ctx, page)
	if err != nil {
		logger.Error(ctx, "repository garages with capacity", logger.ErrorF(err))
		return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) Full(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	const op string = "garage.service.Full"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.Full(ctx, page)
	if err != nil {
		logger.Error(ctx, "repository full garages", logger.ErrorF(err))
		return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (svc *service) CountWithVehicles(ctx context.Context) (int64, error) {
	const op string = "garage.service.CountWithVehicles"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	n, err := svc.repo.CountWithVehicles(ctx)
	if err != nil {
		logger.Error(ctx, "repository count garages with vehicles", logger.ErrorF(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (svc *service) search(ctx context.Context, op string, pred predicate.Predicate, page model.PageRequest) (model.Page[model.Garage], error) {
	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	result, err := svc.repo.Search(ctx, pred, page)
	if err != nil {
		logger.Error(ctx, "repository search garages", logger.ErrorF(err))
		return model.Page[model.Garage]{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
