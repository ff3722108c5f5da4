package model

import (
	"time"

	"github.com/google/uuid"
)

// VehicleCreated is emitted on the vehicle-created topic after a vehicle is
// persisted. EventID lets consumers deduplicate redeliveries.
type VehicleCreated struct {
	VehicleID         int64
	Brand             string
	Model             string
	YearOfManufacture int
	FuelType          FuelType
	Vin               *string
	GarageID          int64
	GarageName        string
	CreatedAt         time.Time
	EventID           uuid.UUID
}

// OutboxEvent is a pending broker publication persisted in the same
// transaction as the state change that produced it.
type OutboxEvent struct {
	ID          int64
	Topic       string
	Key         string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}
