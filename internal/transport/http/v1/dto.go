package http

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

type GarageRequest struct {
	Name         string            `json:"name" validate:"required,min=3,max=100"`
	Address      string            `json:"address" validate:"required,min=10,max=255"`
	Telephone    string            `json:"telephone" validate:"required,telephone"`
	Email        string            `json:"email" validate:"required,email"`
	OpeningHours map[string]string `json:"openingHours" validate:"omitempty,dive,keys,dayofweek,endkeys,openinghours"`
}

type GarageResponse struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Address           string            `json:"address"`
	Telephone         string            `json:"telephone"`
	Email             string            `json:"email"`
	OpeningHours      map[string]string `json:"openingHours,omitempty"`
	VehicleCount      int               `json:"vehicleCount"`
	AvailableCapacity int               `json:"availableCapacity"`
	IsFull            bool              `json:"isFull"`
	Vehicles          []VehicleResponse `json:"vehicles,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

type VehicleRequest struct {
	Brand             string  `json:"brand" validate:"required,min=2,max=50"`
	Model             string  `json:"model" validate:"required,min=1,max=50"`
	YearOfManufacture int     `json:"yearOfManufacture" validate:"required,min=1900"`
	FuelType          string  `json:"fuelType" validate:"required,fueltype"`
	Vin               *string `json:"vin" validate:"omitempty,vin"`
	Color             *string `json:"color" validate:"omitempty,max=30"`
	Mileage           *int    `json:"mileage" validate:"omitempty,min=0"`
}

type VehicleResponse struct {
	ID                int64     `json:"id"`
	Brand             string    `json:"brand"`
	Model             string    `json:"model"`
	YearOfManufacture int       `json:"yearOfManufacture"`
	FuelType          string    `json:"fuelType"`
	Vin               *string   `json:"vin,omitempty"`
	Color             *string   `json:"color,omitempty"`
	Mileage           *int      `json:"mileage,omitempty"`
	GarageID          int64     `json:"garageId"`
	GarageName        string    `json:"garageName,omitempty"`
	AccessoryCount    int       `json:"accessoryCount"`
	IsEcoFriendly     bool      `json:"isEcoFriendly"`
	DisplayName       string    `json:"displayName"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type AccessoryRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"required,min=10,max=500"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Type        string          `json:"type" validate:"required,accessorytype"`
}

type AccessoryResponse struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Type               string          `json:"type"`
	VehicleID          int64           `json:"vehicleId"`
	VehicleDisplayName string          `json:"vehicleDisplayName,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type PageResponse[T any] struct {
	Items         []T   `json:"items"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
}

func (req GarageRequest) ToModel() *model.Garage {
	var hours map[model.DayOfWeek]string
	if len(req.OpeningHours) > 0 {
		hours = make(map[model.DayOfWeek]string, len(req.OpeningHours))
		for day, h := range req.OpeningHours {
			hours[model.DayOfWeek(day)] = h
		}
	}

	return &model.Garage{
		Name:         req.Name,
		Address:      req.Address,
		Telephone:    req.Telephone,
		Email:        req.Email,
		OpeningHours: hours,
	}
}

func GarageToResponse(g *model.Garage) GarageResponse {
	var hours map[string]string
	if len(g.OpeningHours) > 0 {
		hours = make(map[string]string, len(g.OpeningHours))
		for day, h := range g.OpeningHours {
			hours[string(day)] = h
		}
	}

	resp := GarageResponse{
		ID:                g.ID,
		Name:              g.Name,
		Address:           g.Address,
		Telephone:         g.Telephone,
		Email:             g.Email,
		OpeningHours:      hours,
		VehicleCount:      g.VehicleCount,
		AvailableCapacity: g.AvailableCapacity(),
		IsFull:            g.IsFull(),
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}

	resp.Vehicles = lo.Map(g.Vehicles, func(v model.Vehicle, _ int) VehicleResponse {
		return VehicleToResponse(&v)
	})

	return resp
}

func (req VehicleRequest) ToModel() *model.Vehicle {
	return &model.Vehicle{
		Brand:             req.Brand,
		Model:             req.Model,
		YearOfManufacture: req.YearOfManufacture,
		FuelType:          model.FuelType(req.FuelType),
		Vin:               req.Vin,
		Color:             req.Color,
		Mileage:           req.Mileage,
	}
}

// VehicleToResponse maps a vehicle without re-embedding its garage, so
// garage-with-vehicles payloads stay acyclic.
func VehicleToResponse(v *model.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                v.ID,
		Brand:             v.Brand,
		Model:             v.Model,
		YearOfManufacture: v.YearOfManufacture,
		FuelType:          string(v.FuelType),
		Vin:               v.Vin,
		Color:             v.Color,
		Mileage:           v.Mileage,
		GarageID:          v.GarageID,
		GarageName:        v.GarageName,
		AccessoryCount:    v.AccessoryCount,
		IsEcoFriendly:     v.IsEcoFriendly(),
		DisplayName:       v.DisplayName(),
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func (req AccessoryRequest) ToModel() *model.Accessory {
	return &model.Accessory{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Type:        model.AccessoryType(req.Type),
	}
}

func AccessoryToResponse(a *model.Accessory) AccessoryResponse {
	return AccessoryResponse{
		ID:                 a.ID,
		Name:               a.Name,
		Description:        a.Description,
		Price:              a.Price,
		Type:               string(a.Type),
		VehicleID:          a.VehicleID,
		VehicleDisplayName: a.VehicleDisplayName,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func PageToResponse[M any, R any](page model.Page[M], f func(*M) R) PageResponse[R] {
	items := make([]R, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, f(&page.Items[i]))
	}

	return PageResponse[R]{
		Items:         items,
		PageNumber:    page.PageNumber,
		PageSize:      page.PageSize,
		TotalElements: page.TotalElements,
	}
}
