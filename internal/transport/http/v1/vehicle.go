package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

type VehicleService interface {
	AddToGarage(ctx context.Context, garageID int64, v *model.Vehicle) (*model.Vehicle, error)
	VehicleByID(ctx context.Context, id int64) (*model.Vehicle, error)
	ListByGarage(ctx context.Context, garageID int64, page model.PageRequest) (model.Page[model.Vehicle], error)
	Update(ctx context.Context, v *model.Vehicle) (*model.Vehicle, error)
	Delete(ctx context.Context, id int64) error
	ListAllByModel(ctx context.Context, mdl string) ([]model.Vehicle, error)
	ListByFuelType(ctx context.Context, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByGarageAndFuelType(ctx context.Context, garageID int64, ft model.FuelType, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByBrand(ctx context.Context, brand string, page model.PageRequest) (model.Page[model.Vehicle], error)
	ListByBrandAndModel(ctx context.Context, brand, mdl string, page model.PageRequest) (model.Page[model.Vehicle], error)
	EcoFriendly(ctx context.Context, page model.PageRequest) (model.Page[model.Vehicle], error)
	VehicleByVin(ctx context.Context, vin string) (*model.Vehicle, error)
	CountByGarage(ctx context.Context, garageID int64) (int64, error)
}

type vehicleHandler struct {
	svc VehicleService
}

func NewVehicleHandler(service VehicleService) *vehicleHandler {
	return &vehicleHandler{svc: service}
}

func (h *vehicleHandler) Routes(r chi.Router) {
	r.Post("/garage/{garageId}", h.addToGarage)
	r.Get("/garage/{garageId}", h.listByGarage)
	r.Get("/garage/{garageId}/by-fuel-type", h.listByGarageAndFuelType)
	r.Get("/garage/{garageId}/count", h.countByGarage)
	r.Get("/vin/{vin}", h.vehicleByVin)
	r.Get("/search/by-model", h.listAllByModel)
	r.Get("/search/by-fuel-type", h.listByFuelType)
	r.Get("/search/by-brand", h.listByBrand)
	r.Get("/search/by-brand-and-model", h.listByBrandAndModel)
	r.Get("/eco-friendly", h.ecoFriendly)
	r.Get("/{id}", h.vehicleByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *vehicleHandler) addToGarage(w http.ResponseWriter, r *http.Request) {
	garageID, ok := pathID(w, r, "garageId")
	if !ok {
		return
	}

	var req VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "corps de requête JSON invalide")
		return
	}

	if details := validateRequest(req); len(details) > 0 {
		writeValidationError(w, r, details)
		return
	}

	v, err := h.svc.AddToGarage(r.Context(), garageID, req.ToModel())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, VehicleToResponse(v))
}

func (h *vehicleHandler) vehicleByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.svc.VehicleByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, VehicleToResponse(v))
}

func (h *vehicleHandler) vehicleByVin(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.VehicleByVin(r.Context(), chi.URLParam(r, "vin"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, VehicleToResponse(v))
}

func (h *vehicleHandler) countByGarage(w http.ResponseWriter, r *http.Request) {
	garageID, ok := pathID(w, r, "garageId")
	if !ok {
		return
	}

	n, err := h.svc.CountByGarage(r.Context(), garageID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]int64{"count": n})
}

func (h *vehicleHandler) listByGarage(w http.ResponseWriter, r *http.Request) {
	garageID, ok := pathID(w, r, "garageId")
	if !ok {
		return
	}

	result, err := h.svc.ListByGarage(r.Context(), garageID, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, VehicleToResponse))
}

func (h *vehicleHandler) listByGarageAndFuelType(w http.ResponseWriter, r *http.Request) {
	garageID, ok := pathID(w, r, "garageId")
	if !ok {
		return
	}

	ft, err := model.ParseFuelType(r.URL.Query().Get("fuelType"))
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	result, err := h.svc.ListByGarageAndFuelType(r.Context(), garageID, ft, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, VehicleToResponse))
}

func (h *vehicleHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "corps de requête JSON invalide")
		return
	}

	if details := validateRequest(req); len(details) > 0 {
		writeValidationError(w, r, details)
		return
	}

	v := req.ToModel()
	v.ID = id

	updated, err := h.svc.Update(r.Context(), v)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, VehicleToResponse(updated))
}

func (h *vehicleHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h *vehicleHandler) listAllByModel(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.svc.ListAllByModel(r.Context(), r.URL.Query().Get("model"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := lo.Map(vehicles, func(v model.Vehicle, _ int) VehicleResponse {
		return VehicleToResponse(&v)
	})

	writeJSON(w, r, http.StatusOK, items)
}

func (h *vehicleHandler) listByFuelType(w http.ResponseWriter, r *http.Request) {
	ft, err := model.ParseFuelType(r.URL.Query().Get("fuelType"))
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	result, err := h.svc.ListByFuelType(r.Context(), ft, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, VehicleToResponse))
}

func (h *vehicleHandler) listByBrand(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListByBrand(r.Context(), r.URL.Query().Get("brand"), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, VehicleToResponse))
}

func (h *vehicleHandler) listByBrandAndModel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListByBrandAndModel(r.Context(), q.Get("brand"), q.Get("model"), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, VehicleToResponse))
}

func (h *vehicleHandler) ecoFriendly(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.EcoFriendly(r.Context(), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, VehicleToResponse))
}
