package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yasserh/Gestiongarrage/internal/transport/http/health"
)

func NewRouter(
	garages GarageService,
	vehicles VehicleService,
	accessories AccessoryService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", health.HealthCheck)

	r.Route("/garages", NewGarageHandler(garages).Routes)
	r.Route("/vehicles", NewVehicleHandler(vehicles).Routes)
	r.Route("/accessories", NewAccessoryHandler(accessories).Routes)

	return r
}
