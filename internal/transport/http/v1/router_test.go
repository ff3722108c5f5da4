package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

type fakeGarageService struct {
	createFn       func(ctx context.Context, g *model.Garage) (*model.Garage, error)
	garageByIDFn   func(ctx context.Context, id int64) (*model.Garage, error)
	listFn         func(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	deleteFn       func(ctx context.Context, id int64) error
	searchByNameFn func(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Garage], error)
}

func (s *fakeGarageService) Create(ctx context.Context, g *model.Garage) (*model.Garage, error) {
	if s.createFn != nil {
		return s.createFn(ctx, g)
	}
	g.ID = 1
	return g, nil
}

func (s *fakeGarageService) GarageByID(ctx context.Context, id int64) (*model.Garage, error) {
	if s.garageByIDFn != nil {
		return s.garageByIDFn(ctx, id)
	}
	return nil, model.ErrGarageNotFound
}

func (s *fakeGarageService) List(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	if s.listFn != nil {
		return s.listFn(ctx, page)
	}
	return model.Page[model.Garage]{}, nil
}

func (s *fakeGarageService) Update(ctx context.Context, g *model.Garage) (*model.Garage, error) {
	return g, nil
}

func (s *fakeGarageService) Delete(ctx context.Context, id int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *fakeGarageService) SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Garage], error) {
	if s.searchByNameFn != nil {
		return s.searchByNameFn(ctx, name, page)
	}
	return model.Page[model.Garage]{}, nil
}

func (s *fakeGarageService) SearchByCity(ctx context.Context, city string, page model.PageRequest) (model.Page[model.Garage], error) {
	return model.Page[model.Garage]{}, nil
}

func (s *fakeGarageService) SearchByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Garage], error) {
	return model.Page[model.Garage]{}, nil
}

func (s *fakeGarageService) SearchByAccessoryType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Garage], error) {
	return model.Page[model.Garage]{}, nil
}

func (s *fakeGarageService) WithAvailableCapacity(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	return model.Page[model.Garage]{}, nil
}

func (s *fakeGarageService) Full(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
	return model.Page[model.Garage]{}, nil
}

func (s *fakeGarageService) CountWithVehicles(ctx context.Context) (int64, error) {
	return 3, nil
}

type fakeVehicleService struct {
	addToGarageFn  func(ctx context.Context, garageID int64, v *model.Vehicle) (*model.Vehicle, error)
	vehicleByIDFn  func(ctx context.Context, id int64) (*model.Vehicle, error)
	vehicleByVinFn func(ctx context.Context, vin string) (*model.Vehicle, error)
}

func (s *fakeVehicleService) AddToGarage(ctx context.Context, garageID int64, v *model.Vehicle) (*model.Vehicle, error) {
	if s.addToGarageFn != nil {
		return s.addToGarageFn(ctx, garageID, v)
	}
	v.ID = 1
	v.GarageID = garageID
	return v, nil
}

func (s *fakeVehicleService) VehicleByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	if s.vehicleByIDFn != nil {
		return s.vehicleByIDFn(ctx, id)
	}
	return nil, model.ErrVehicleNotFound
}

func (s *fakeVehicleService) ListByGarage(ctx context.Context, garageID int64, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return model.Page[model.Vehicle]{}, nil
}

func (s *fakeVehicleService) Update(ctx context.Context, v *model.Vehicle) (*model.Vehicle, error) {
	return v, nil
}

func (s *fakeVehicleService) Delete(ctx context.Context, id int64) error { return nil }

func (s *fakeVehicleService) ListAllByModel(ctx context.Context, mdl string) ([]model.Vehicle, error) {
	return nil, nil
}

func (s *fakeVehicleService) ListByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return model.Page[model.Vehicle]{}, nil
}

func (s *fakeVehicleService) ListByGarageAndFuelType(ctx context.Context, garageID int64, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return model.Page[model.Vehicle]{}, nil
}

func (s *fakeVehicleService) ListByBrand(ctx context.Context, brand string, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return model.Page[model.Vehicle]{}, nil
}

func (s *fakeVehicleService) ListByBrandAndModel(ctx context.Context, brand, mdl string, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return model.Page[model.Vehicle]{}, nil
}

func (s *fakeVehicleService) EcoFriendly(ctx context.Context, page model.PageRequest) (model.Page[model.Vehicle], error) {
	return model.Page[model.Vehicle]{}, nil
}

func (s *fakeVehicleService) VehicleByVin(ctx context.Context, vin string) (*model.Vehicle, error) {
	if s.vehicleByVinFn != nil {
		return s.vehicleByVinFn(ctx, vin)
	}
	return nil, model.ErrVehicleNotFound
}

func (s *fakeVehicleService) CountByGarage(ctx context.Context, garageID int64) (int64, error) {
	return 12, nil
}

type fakeAccessoryService struct {
	addToVehicleFn func(ctx context.Context, vehicleID int64, a *model.Accessory) (*model.Accessory, error)
}

func (s *fakeAccessoryService) AddToVehicle(ctx context.Context, vehicleID int64, a *model.Accessory) (*model.Accessory, error) {
	if s.addToVehicleFn != nil {
		return s.addToVehicleFn(ctx, vehicleID, a)
	}
	a.ID = 1
	a.VehicleID = vehicleID
	return a, nil
}

func (s *fakeAccessoryService) AccessoryByID(ctx context.Context, id int64) (*model.Accessory, error) {
	return nil, model.ErrAccessoryNotFound
}

func (s *fakeAccessoryService) ListByVehicle(ctx context.Context, vehicleID int64) ([]model.Accessory, error) {
	return nil, nil
}

func (s *fakeAccessoryService) ListByVehiclePaged(ctx context.Context, vehicleID int64, page model.PageRequest) (model.Page[model.Accessory], error) {
	return model.Page[model.Accessory]{}, nil
}

func (s *fakeAccessoryService) Update(ctx context.Context, a *model.Accessory) (*model.Accessory, error) {
	return a, nil
}

func (s *fakeAccessoryService) Delete(ctx context.Context, id int64) error { return nil }

func (s *fakeAccessoryService) ListByType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Accessory], error) {
	return model.Page[model.Accessory]{}, nil
}

func (s *fakeAccessoryService) SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Accessory], error) {
	return model.Page[model.Accessory]{}, nil
}

func (s *fakeAccessoryService) ListByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) (model.Page[model.Accessory], error) {
	return model.Page[model.Accessory]{}, nil
}

func (s *fakeAccessoryService) TopExpensive(ctx context.Context, n int) ([]model.Accessory, error) {
	return nil, nil
}

func (s *fakeAccessoryService) TotalPriceByVehicle(ctx context.Context, vehicleID int64) (decimal.Decimal, error) {
	return decimal.NewFromFloat(149.99), nil
}

func (s *fakeAccessoryService) ListByVehicleAndType(ctx context.Context, vehicleID int64, at model.AccessoryType) ([]model.Accessory, error) {
	return []model.Accessory{{ID: 2, VehicleID: vehicleID, Name: "Alarme", Type: at, Price: decimal.NewFromFloat(89.90)}}, nil
}

func (s *fakeAccessoryService) CountByVehicle(ctx context.Context, vehicleID int64) (int64, error) {
	return 4, nil
}

type services struct {
	garages     *fakeGarageService
	vehicles    *fakeVehicleService
	accessories *fakeAccessoryService
}

func newServices() *services {
	return &services{
		garages:     &fakeGarageService{},
		vehicles:    &fakeVehicleService{},
		accessories: &fakeAccessoryService{},
	}
}

func do(t *testing.T, s *services, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	logger.SetNopLogger()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewRouter(s.garages, s.vehicles, s.accessories).ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const validGarageBody = `{
	"name": "Garage du Centre",
	"address": "12 rue de la République, Lyon",
	"telephone": "+33472000000",
	"email": "contact@garage-centre.fr",
	"openingHours": {"MONDAY": "08:00-12:00,14:00-18:00"}
}`

const validVehicleBody = `{
	"brand": "Renault",
	"model": "Clio",
	"yearOfManufacture": 2021,
	"fuelType": "ESSENCE"
}`

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, newServices(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SERVING", rec.Body.String())
}

func TestCreateGarage(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/garages", validGarageBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body GarageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(1), body.ID)
		assert.Equal(t, model.MaxVehiclesPerGarage, body.AvailableCapacity)
		assert.False(t, body.IsFull)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/garages", "{not json")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := errorBody(t, rec)
		assert.Equal(t, "Invalid Argument", body.Error)
		assert.Equal(t, "corps de requête JSON invalide", body.Message)
		assert.Equal(t, "/garages", body.Path)
	})

	t.Run("validation details are aggregated", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/garages", `{
			"name": "ab",
			"address": "court",
			"telephone": "12",
			"email": "pas-un-email",
			"openingHours": {"FUNDAY": "25:00-26:00"}
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := errorBody(t, rec)
		assert.Equal(t, "Validation Error", body.Error)
		assert.Equal(t, model.ErrValidation.Error(), body.Message)
		assert.GreaterOrEqual(t, len(body.Details), 4)

		joined := strings.Join(body.Details, "\n")
		assert.Contains(t, joined, "name:")
		assert.Contains(t, joined, "address:")
		assert.Contains(t, joined, "telephone:")
		assert.Contains(t, joined, "email:")
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		s := newServices()
		s.garages.createFn = func(ctx context.Context, g *model.Garage) (*model.Garage, error) {
			return nil, model.ErrDuplicateEmail
		}

		rec := do(t, s, http.MethodPost, "/garages", validGarageBody)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := errorBody(t, rec)
		assert.Equal(t, "Invalid Argument", body.Error)
		assert.Equal(t, model.ErrDuplicateEmail.Error(), body.Message)
	})
}

func TestGarageByID(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodGet, "/garages/404", "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := errorBody(t, rec)
		assert.Equal(t, http.StatusNotFound, body.Status)
		assert.Equal(t, "Resource Not Found", body.Error)
		assert.Equal(t, model.ErrGarageNotFound.Error(), body.Message)
		assert.Equal(t, "/garages/404", body.Path)
		assert.False(t, body.Timestamp.IsZero())
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodGet, "/garages/abc", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "identifiant invalide", errorBody(t, rec).Message)
	})

	t.Run("wrapped errors still project", func(t *testing.T) {
		t.Parallel()

		s := newServices()
		s.garages.garageByIDFn = func(ctx context.Context, id int64) (*model.Garage, error) {
			return nil, fmt.Errorf("garage.service.GarageByID: %w", model.ErrGarageNotFound)
		}

		rec := do(t, s, http.MethodGet, "/garages/7", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, model.ErrGarageNotFound.Error(), errorBody(t, rec).Message)
	})
}

func TestDeleteGarage(t *testing.T) {
	t.Parallel()

	rec := do(t, newServices(), http.MethodDelete, "/garages/7", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestListGarages(t *testing.T) {
	t.Parallel()

	s := newServices()
	s.garages.listFn = func(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error) {
		assert.Equal(t, 1, page.Number)
		assert.Equal(t, 5, page.Size)
		return model.Page[model.Garage]{
			Items:         []model.Garage{{ID: 6, Name: "Garage Nord"}},
			PageNumber:    1,
			PageSize:      5,
			TotalElements: 6,
		}, nil
	}

	rec := do(t, s, http.MethodGet, "/garages?page=1&size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body PageResponse[GarageResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Garage Nord", body.Items[0].Name)
	assert.Equal(t, int64(6), body.TotalElements)
}

func TestCreateVehicle(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/vehicles/garage/7", validVehicleBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body VehicleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(7), body.GarageID)
		assert.Equal(t, "Renault Clio (2021)", body.DisplayName)
		assert.False(t, body.IsEcoFriendly)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		t.Parallel()

		s := newServices()
		s.vehicles.addToGarageFn = func(ctx context.Context, garageID int64, v *model.Vehicle) (*model.Vehicle, error) {
			return nil, model.ErrQuotaExceeded
		}

		rec := do(t, s, http.MethodPost, "/vehicles/garage/7", validVehicleBody)
		require.Equal(t, http.StatusConflict, rec.Code)

		body := errorBody(t, rec)
		assert.Equal(t, "Quota Exceeded", body.Error)
		assert.Equal(t, model.ErrQuotaExceeded.Error(), body.Message)
	})

	t.Run("unknown fuel type rejected by validation", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/vehicles/garage/7", `{
			"brand": "Renault",
			"model": "Clio",
			"yearOfManufacture": 2021,
			"fuelType": "CHARBON"
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, strings.Join(errorBody(t, rec).Details, "\n"), "fuelType:")
	})

	t.Run("bad vin rejected by validation", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/vehicles/garage/7", `{
			"brand": "Renault",
			"model": "Clio",
			"yearOfManufacture": 2021,
			"fuelType": "ESSENCE",
			"vin": "TROP-COURT"
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, strings.Join(errorBody(t, rec).Details, "\n"), "vin:")
	})
}

func TestCreateAccessory(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/accessories/vehicle/11", `{
			"name": "GPS intégré",
			"description": "Navigation avec cartes Europe",
			"price": 299.99,
			"type": "ELECTRONIQUE"
		}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body AccessoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(11), body.VehicleID)
		assert.Equal(t, "ELECTRONIQUE", body.Type)
	})

	t.Run("negative price rejected with a french detail", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/accessories/vehicle/11", `{
			"name": "GPS intégré",
			"description": "Navigation avec cartes Europe",
			"price": -5,
			"type": "ELECTRONIQUE"
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, strings.Join(errorBody(t, rec).Details, "\n"), "price:")
	})

	t.Run("too many decimals rejected", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodPost, "/accessories/vehicle/11", `{
			"name": "GPS intégré",
			"description": "Navigation avec cartes Europe",
			"price": 10.999,
			"type": "ELECTRONIQUE"
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("total price", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodGet, "/accessories/vehicle/11/total-price", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]decimal.Decimal
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body["totalPrice"].Equal(decimal.NewFromFloat(149.99)))
	})
}

func TestSearchGaragesByFuelType(t *testing.T) {
	t.Parallel()

	rec := do(t, newServices(), http.MethodGet, "/garages/search/by-fuel-type?fuelType=CHARBON", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Argument", errorBody(t, rec).Error)
}

func TestCountWithVehicles(t *testing.T) {
	t.Parallel()

	rec := do(t, newServices(), http.MethodGet, "/garages/stats/count-with-vehicles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body["count"])
}

func TestVehicleByVin(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		s := newServices()
		s.vehicles.vehicleByVinFn = func(ctx context.Context, vin string) (*model.Vehicle, error) {
			require.Equal(t, "1HGBH41JXMN109186", vin)
			v := &model.Vehicle{ID: 9, Brand: "Renault", Model: "Clio", YearOfManufacture: 2021, FuelType: model.FuelEssence, GarageID: 7}
			v.Vin = &vin
			return v, nil
		}

		rec := do(t, s, http.MethodGet, "/vehicles/vin/1HGBH41JXMN109186", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body VehicleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(9), body.ID)
		require.NotNil(t, body.Vin)
		assert.Equal(t, "1HGBH41JXMN109186", *body.Vin)
	})

	t.Run("unknown vin", func(t *testing.T) {
		t.Parallel()

		rec := do(t, newServices(), http.MethodGet, "/vehicles/vin/WAUZZZ8V5KA000001", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCountVehiclesByGarage(t *testing.T) {
	t.Parallel()

	rec := do(t, newServices(), http.MethodGet, "/vehicles/garage/7/count", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body["count"])
}

func TestListAccessoriesByVehicleAndType(t *testing.T) {
	t.Parallel()

	rec := do(t, newServices(), http.MethodGet, "/accessories/vehicle/11/by-type?type=SECURITE", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []AccessoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(11), items[0].VehicleID)
	assert.Equal(t, "SECURITE", string(items[0].Type))

	rec = do(t, newServices(), http.MethodGet, "/accessories/vehicle/11/by-type?type=GADGET", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountAccessoriesByVehicle(t *testing.T) {
	t.Parallel()

	rec := do(t, newServices(), http.MethodGet, "/accessories/vehicle/11/count", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body["count"])
}

func TestUnknownErrorIsOpaque(t *testing.T) {
	t.Parallel()

	s := newServices()
	s.garages.garageByIDFn = func(ctx context.Context, id int64) (*model.Garage, error) {
		return nil, assert.AnError
	}

	rec := do(t, s, http.MethodGet, "/garages/7", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := errorBody(t, rec)
	assert.Equal(t, "Internal Error", body.Error)
	assert.Equal(t, "Une erreur interne est survenue", body.Message)
}
