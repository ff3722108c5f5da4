package converter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

type vehicleCreatedPayload struct {
	VehicleID         int64     `json:"vehicleId"`
	Brand             string    `json:"brand"`
	Model             string    `json:"model"`
	YearOfManufacture int       `json:"yearOfManufacture"`
	FuelType          string    `json:"fuelType"`
	Vin               *string   `json:"vin,omitempty"`
	GarageID          int64     `json:"garageId"`
	GarageName        string    `json:"garageName"`
	CreatedAt         time.Time `json:"createdAt"`
	EventID           uuid.UUID `json:"eventId"`
}

// EncodeVehicleCreated renders the event payload and its partition key.
// The key is the decimal vehicle id so all events for one vehicle land
// on the same partition.
func EncodeVehicleCreated(e model.VehicleCreated) (key string, payload []byte, err error) {
	const op = "converter.EncodeVehicleCreated"

	payload, err = json.Marshal(vehicleCreatedPayload{
		VehicleID:         e.VehicleID,
		Brand:             e.Brand,
		Model:             e.Model,
		YearOfManufacture: e.YearOfManufacture,
		FuelType:          string(e.FuelType),
		Vin:               e.Vin,
		GarageID:          e.GarageID,
		GarageName:        e.GarageName,
		CreatedAt:         e.CreatedAt,
		EventID:           e.EventID,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	return strconv.FormatInt(e.VehicleID, 10), payload, nil
}

func DecodeVehicleCreated(data []byte) (model.VehicleCreated, error) {
	const op = "converter.DecodeVehicleCreated"

	var p vehicleCreatedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.VehicleCreated{}, fmt.Errorf("%s: %w", op, err)
	}

	return model.VehicleCreated{
		VehicleID:         p.VehicleID,
		Brand:             p.Brand,
		Model:             p.Model,
		YearOfManufacture: p.YearOfManufacture,
		FuelType:          model.FuelType(p.FuelType),
		Vin:               p.Vin,
		GarageID:          p.GarageID,
		GarageName:        p.GarageName,
		CreatedAt:         p.CreatedAt,
		EventID:           p.EventID,
	}, nil
}
