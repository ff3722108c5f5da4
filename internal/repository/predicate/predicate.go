// Package predicate is a small combinator algebra for composing dynamic
// search conditions over garages and vehicles. Every predicate renders to a
// squirrel.Sqlizer; blank or absent inputs degrade to the neutral
// (always-true) predicate so callers can AND together a variable number of
// optional filters.
package predicate

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

// Predicate renders to a WHERE fragment.
type Predicate = sq.Sqlizer

// Neutral is the always-true predicate, the unit of And.
func Neutral() sq.Sqlizer {
	return sq.Expr("TRUE")
}

// And folds predicates into a conjunction, skipping nils.
func And(preds ...sq.Sqlizer) sq.Sqlizer {
	conj := make(sq.And, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			conj = append(conj, p)
		}
	}
	if len(conj) == 0 {
		return Neutral()
	}
	return conj
}

// equalsIgnoreCase is the leaf used by every non-substring string match.
func equalsIgnoreCase(column, value string) sq.Sqlizer {
	return sq.Expr("LOWER("+column+") = LOWER(?)", value)
}

// containsIgnoreCase is the case-insensitive substring leaf.
func containsIgnoreCase(column, value string) sq.Sqlizer {
	return sq.ILike{column: "%" + value + "%"}
}

// vehicleCountOf is the collection-size leaf over a garage's vehicles.
func vehicleCountOf(garageIDColumn string) string {
	return "(SELECT COUNT(*) FROM vehicles v WHERE v.garage_id = " + garageIDColumn + ")"
}

// ---- Garage predicates ----

func GarageHasName(name string) sq.Sqlizer {
	if strings.TrimSpace(name) == "" {
		return Neutral()
	}
	return containsIgnoreCase("g.name", name)
}

// GarageHasCity searches the city inside the address.
func GarageHasCity(city string) sq.Sqlizer {
	if strings.TrimSpace(city) == "" {
		return Neutral()
	}
	return containsIgnoreCase("g.address", city)
}

func GarageHasEmail(email string) sq.Sqlizer {
	if strings.TrimSpace(email) == "" {
		return Neutral()
	}
	return equalsIgnoreCase("g.email", email)
}

// GarageHasVehicleWithFuelType joins into the vehicle collection; EXISTS
// keeps result rows distinct.
func GarageHasVehicleWithFuelType(ft model.FuelType) sq.Sqlizer {
	if ft == "" {
		return Neutral()
	}
	return sq.Expr(
		"EXISTS (SELECT 1 FROM vehicles v WHERE v.garage_id = g.id AND v.fuel_type = ?)",
		string(ft),
	)
}

// GarageHasVehicleWithAccessoryType traverses garage→vehicle→accessory.
func GarageHasVehicleWithAccessoryType(at model.AccessoryType) sq.Sqlizer {
	if at == "" {
		return Neutral()
	}
	return sq.Expr(
		`EXISTS (SELECT 1 FROM vehicles v
			JOIN accessories a ON a.vehicle_id = v.id
			WHERE v.garage_id = g.id AND a.type = ?)`,
		string(at),
	)
}

func GarageHasAvailableCapacity() sq.Sqlizer {
	return sq.Expr(vehicleCountOf("g.id")+" < ?", model.MaxVehiclesPerGarage)
}

func GarageIsFull() sq.Sqlizer {
	return sq.Expr(vehicleCountOf("g.id")+" >= ?", model.MaxVehiclesPerGarage)
}

func GarageHasVehicles() sq.Sqlizer {
	return sq.Expr(vehicleCountOf("g.id") + " > 0")
}

func GarageIsEmpty() sq.Sqlizer {
	return sq.Expr(vehicleCountOf("g.id") + " = 0")
}

// ---- Vehicle predicates ----

func VehicleHasBrand(brand string) sq.Sqlizer {
	if strings.TrimSpace(brand) == "" {
		return Neutral()
	}
	return equalsIgnoreCase("v.brand", brand)
}

func VehicleHasModel(mdl string) sq.Sqlizer {
	if strings.TrimSpace(mdl) == "" {
		return Neutral()
	}
	return equalsIgnoreCase("v.model", mdl)
}

func VehicleHasFuelType(ft model.FuelType) sq.Sqlizer {
	if ft == "" {
		return Neutral()
	}
	return sq.Eq{"v.fuel_type": string(ft)}
}

func VehicleHasYearOfManufacture(year int) sq.Sqlizer {
	if year == 0 {
		return Neutral()
	}
	return sq.Eq{"v.year_of_manufacture": year}
}

func VehicleBelongsToGarage(garageID int64) sq.Sqlizer {
	if garageID == 0 {
		return Neutral()
	}
	return sq.Eq{"v.garage_id": garageID}
}

func VehicleIsEcoFriendly() sq.Sqlizer {
	return sq.Eq{"v.fuel_type": []string{string(model.FuelElectrique), string(model.FuelHybride)}}
}

func VehicleHasColor(color string) sq.Sqlizer {
	if strings.TrimSpace(color) == "" {
		return Neutral()
	}
	return equalsIgnoreCase("v.color", color)
}
