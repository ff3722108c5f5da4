package model

import (
	"fmt"
	"time"
)

type FuelType string

const (
	FuelEssence    FuelType = "ESSENCE"
	FuelDiesel     FuelType = "DIESEL"
	FuelElectrique FuelType = "ELECTRIQUE"
	FuelHybride    FuelType = "HYBRIDE"
	FuelGPL        FuelType = "GPL"
)

var fuelTypes = map[FuelType]struct{}{
	FuelEssence: {}, FuelDiesel: {}, FuelElectrique: {}, FuelHybride: {}, FuelGPL: {},
}

func ParseFuelType(s string) (FuelType, error) {
	ft := FuelType(s)
	if !ft.Valid() {
		return "", fmt.Errorf("type de carburant inconnu: %q", s)
	}
	return ft, nil
}

func (ft FuelType) Valid() bool {
	_, ok := fuelTypes[ft]
	return ok
}

type Vehicle struct {
	ID    int64
	Brand string
	Model string
	// Four-digit year, at most one year ahead of the wall clock at persist time.
	YearOfManufacture int
	FuelType          FuelType
	// Optional 17-char VIN from [A-HJ-NPR-Z0-9], unique across vehicles.
	Vin     *string
	Color   *string
	Mileage *int
	// Owning garage. A vehicle always belongs to exactly one garage.
	GarageID int64
	// Derived on load from the owning garage row.
	GarageName string
	// Derived on load; kept in sync with Accessories when children are
	// manipulated in memory.
	AccessoryCount int
	// Owned children in insertion order; nil means "not loaded".
	Accessories []Accessory
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v *Vehicle) AddAccessory(a *Accessory) {
	a.VehicleID = v.ID
	v.Accessories = append(v.Accessories, *a)
	v.AccessoryCount++
}

func (v *Vehicle) RemoveAccessory(a *Accessory) {
	for i := range v.Accessories {
		if v.Accessories[i].ID == a.ID {
			v.Accessories = append(v.Accessories[:i], v.Accessories[i+1:]...)
			v.AccessoryCount--
			break
		}
	}
	a.VehicleID = 0
}

func (v *Vehicle) IsEcoFriendly() bool {
	return v.FuelType == FuelElectrique || v.FuelType == FuelHybride
}

func (v *Vehicle) DisplayName() string {
	return fmt.Sprintf("%s %s (%d)", v.Brand, v.Model, v.YearOfManufacture)
}
