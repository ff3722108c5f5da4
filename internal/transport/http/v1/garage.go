package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

type GarageService interface {
	Create(ctx context.Context, g *model.Garage) (*model.Garage, error)
	GarageByID(ctx context.Context, id int64) (*model.Garage, error)
	List(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	Update(ctx context.Context, g *model.Garage) (*model.Garage, error)
	Delete(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Garage], error)
	SearchByCity(ctx context.Context, city string, page model.PageRequest) (model.Page[model.Garage], error)
	SearchByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Garage], error)
	SearchByAccessoryType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Garage], error)
	WithAvailableCapacity(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	Full(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	CountWithVehicles(ctx context.Context) (int64, error)
}

type garageHandler struct {
	svc GarageService
}

func NewGarageHandler(service GarageService) *garageHandler {
	return &garageHandler{svc: service}
}

func (h *garageHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/search/by-name", h.searchByName)
	r.Get("/search/by-city", h.searchByCity)
	r.Get("/search/by-fuel-type", h.searchByFuelType)
	r.Get("/search/by-accessory-type", h.searchByAccessoryType)
	r.Get("/available-capacity", h.withAvailableCapacity)
	r.Get("/full", h.full)
	r.Get("/stats/count-with-vehicles", h.countWithVehicles)
	r.Get("/{id}", h.garageByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *garageHandler) create(w http.ResponseWriter, r *http.Request) {
	var req GarageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "corps de requête JSON invalide")
		return
	}

	if details := validateRequest(req); len(details) > 0 {
		writeValidationError(w, r, details)
		return
	}

	g, err := h.svc.Create(r.Context(), req.ToModel())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, GarageToResponse(g))
}

func (h *garageHandler) garageByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	g, err := h.svc.GarageByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, GarageToResponse(g))
}

func (h *garageHandler) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.List(r.Context(), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, GarageToResponse))
}

func (h *garageHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req GarageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "corps de requête JSON invalide")
		return
	}

	if details := validateRequest(req); len(details) > 0 {
		writeValidationError(w, r, details)
		return
	}

	g := req.ToModel()
	g.ID = id

	updated, err := h.svc.Update(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, GarageToResponse(updated))
}

func (h *garageHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *garageHandler) searchByName(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SearchByName(r.Context(), r.URL.Query().Get("name"), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, GarageToResponse))
}

func (h *garageHandler) searchByCity(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SearchByCity(r.Context(), r.URL.Query().Get("city"), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, GarageToResponse))
}

func (h *garageHandler) searchByFuelType(w http.ResponseWriter, r *http.Request) {
	ft, err := model.ParseFuelType(r.URL.Query().Get("fuelType"))
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	result, err := h.svc.SearchByFuelType(r.Context(), ft, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, GarageToResponse))
}

func (h *garageHandler) searchByAccessoryType(w http.ResponseWriter, r *http.Request) {
	at, err := model.ParseAccessoryType(r.URL.Query().Get("accessoryType"))
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	result, err := h.svc.SearchByAccessoryType(r.Context(), at, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, GarageToResponse))
}

func (h *garageHandler) withAvailableCapacity(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.WithAvailableCapacity(r.Context(), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, GarageToResponse))
}

func (h *garageHandler) full(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Full(r.Context(), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, GarageToResponse))
}

func (h *garageHandler) countWithVehicles(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CountWithVehicles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]int64{"count": n})
}

// pathID parses the numeric path parameter, answering 400 itself when the
// value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, r, "identifiant invalide")
		return 0, false
	}
	return id, true
}
