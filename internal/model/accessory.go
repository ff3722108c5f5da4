package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AccessoryType string

const (
	AccessoryInterieur    AccessoryType = "INTERIEUR"
	AccessoryExterieur    AccessoryType = "EXTERIEUR"
	AccessoryElectronique AccessoryType = "ELECTRONIQUE"
	AccessorySecurite     AccessoryType = "SECURITE"
	AccessoryConfort      AccessoryType = "CONFORT"
)

var accessoryTypes = map[AccessoryType]struct{}{
	AccessoryInterieur: {}, AccessoryExterieur: {}, AccessoryElectronique: {},
	AccessorySecurite: {}, AccessoryConfort: {},
}

func ParseAccessoryType(s string) (AccessoryType, error) {
	at := AccessoryType(s)
	if !at.Valid() {
		return "", fmt.Errorf("type d'accessoire inconnu: %q", s)
	}
	return at, nil
}

func (at AccessoryType) Valid() bool {
	_, ok := accessoryTypes[at]
	return ok
}

type Accessory struct {
	ID          int64
	Name        string
	Description string
	// Strictly positive, at most 10 integer digits and 2 decimals.
	Price decimal.Decimal
	Type  AccessoryType
	// Owning vehicle back-reference.
	VehicleID int64
	// Derived on load from the owning vehicle row.
	VehicleDisplayName string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
