package model

import "errors"

var (
	ErrGarageNotFound    = errors.New("garage introuvable")            // 404
	ErrVehicleNotFound   = errors.New("véhicule introuvable")          // 404
	ErrAccessoryNotFound = errors.New("accessoire introuvable")        // 404
	ErrQuotaExceeded     = errors.New("le quota de 50 véhicules est atteint pour ce garage") // 409

	ErrDuplicateEmail = errors.New("un garage avec cet email existe déjà")  // 400
	ErrDuplicateVin   = errors.New("un véhicule avec ce VIN existe déjà")   // 400
	ErrYearInFuture   = errors.New("l'année de fabrication ne peut pas être dans le futur") // 400

	ErrValidation = errors.New("erreur de validation des données") // 400
)
