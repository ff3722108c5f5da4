package model

import (
	"time"
)

// MaxVehiclesPerGarage is the business quota of vehicles a single garage
// may hold, enforced on insert and re-checked before every persist.
const MaxVehiclesPerGarage = 50

// DayOfWeek keys the opening-hours map. Values are persisted as strings.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var daysOfWeek = map[DayOfWeek]struct{}{
	Monday: {}, Tuesday: {}, Wednesday: {}, Thursday: {},
	Friday: {}, Saturday: {}, Sunday: {},
}

func (d DayOfWeek) Valid() bool {
	_, ok := daysOfWeek[d]
	return ok
}

// Garage is the aggregate root owning its vehicles. All quota and
// uniqueness invariants over the aggregate hold at transaction commit.
type Garage struct {
	ID        int64
	Name      string
	Address   string
	Telephone string
	// Unique across all garages, compared case-insensitively.
	Email string
	// Per-day opening hours kept as opaque strings, e.g. "08:00-12:00,14:00-18:00".
	OpeningHours map[DayOfWeek]string
	// Number of owned vehicles. Maintained by AddVehicle/RemoveVehicle in
	// memory and hydrated from the store when the aggregate is loaded.
	VehicleCount int
	// Owned children in insertion order. Loaded on demand; nil means
	// "not loaded".
	Vehicles  []Vehicle
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddVehicle appends v to the aggregate after checking the quota and sets
// the back-reference.
func (g *Garage) AddVehicle(v *Vehicle) error {
	if g.VehicleCount >= MaxVehiclesPerGarage {
		return ErrQuotaExceeded
	}
	v.GarageID = g.ID
	g.Vehicles = append(g.Vehicles, *v)
	g.VehicleCount++
	return nil
}

// RemoveVehicle removes the vehicle with the given identity and clears its
// back-reference. An identity not held by the aggregate is a no-op, keeping
// VehicleCount aligned with len(Vehicles).
func (g *Garage) RemoveVehicle(v *Vehicle) {
	for i := range g.Vehicles {
		if g.Vehicles[i].ID == v.ID {
			g.Vehicles = append(g.Vehicles[:i], g.Vehicles[i+1:]...)
			g.VehicleCount--
			v.GarageID = 0
			return
		}
	}
}

func (g *Garage) CanAcceptVehicle() bool {
	return g.VehicleCount < MaxVehiclesPerGarage
}

func (g *Garage) AvailableCapacity() int {
	return MaxVehiclesPerGarage - g.VehicleCount
}

func (g *Garage) IsFull() bool {
	return !g.CanAcceptVehicle()
}

// Validate re-checks aggregate invariants just before a persist, guarding
// against callers that bypassed AddVehicle.
func (g *Garage) Validate() error {
	if g.VehicleCount > MaxVehiclesPerGarage {
		return ErrQuotaExceeded
	}
	return nil
}
