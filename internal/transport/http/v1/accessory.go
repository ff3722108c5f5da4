package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

type AccessoryService interface {
	AddToVehicle(ctx context.Context, vehicleID int64, a *model.Accessory) (*model.Accessory, error)
	AccessoryByID(ctx context.Context, id int64) (*model.Accessory, error)
	ListByVehicle(ctx context.Context, vehicleID int64) ([]model.Accessory, error)
	ListByVehiclePaged(ctx context.Context, vehicleID int64, page model.PageRequest) (model.Page[model.Accessory], error)
	Update(ctx context.Context, a *model.Accessory) (*model.Accessory, error)
	Delete(ctx context.Context, id int64) error
	ListByType(ctx context.Context, at model.AccessoryType, page model.PageRequest) (model.Page[model.Accessory], error)
	SearchByName(ctx context.Context, name string, page model.PageRequest) (model.Page[model.Accessory], error)
	ListByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) (model.Page[model.Accessory], error)
	TopExpensive(ctx context.Context, n int) ([]model.Accessory, error)
	TotalPriceByVehicle(ctx context.Context, vehicleID int64) (decimal.Decimal, error)
	ListByVehicleAndType(ctx context.Context, vehicleID int64, at model.AccessoryType) ([]model.Accessory, error)
	CountByVehicle(ctx context.Context, vehicleID int64) (int64, error)
}

type accessoryHandler struct {
	svc AccessoryService
}

func NewAccessoryHandler(service AccessoryService) *accessoryHandler {
	return &accessoryHandler{svc: service}
}

func (h *accessoryHandler) Routes(r chi.Router) {
	r.Post("/vehicle/{vehicleId}", h.addToVehicle)
	r.Get("/vehicle/{vehicleId}", h.listByVehicle)
	r.Get("/vehicle/{vehicleId}/paged", h.listByVehiclePaged)
	r.Get("/vehicle/{vehicleId}/total-price", h.totalPriceByVehicle)
	r.Get("/vehicle/{vehicleId}/by-type", h.listByVehicleAndType)
	r.Get("/vehicle/{vehicleId}/count", h.countByVehicle)
	r.Get("/search/by-type", h.listByType)
	r.Get("/search/by-name", h.searchByName)
	r.Get("/search/by-price-range", h.listByPriceRange)
	r.Get("/top", h.topExpensive)
	r.Get("/{id}", h.accessoryByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *accessoryHandler) addToVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}

	var req AccessoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "corps de requête JSON invalide")
		return
	}

	details := validateRequest(req)
	details = append(details, validatePrice(req.Price)...)
	if len(details) > 0 {
		writeValidationError(w, r, details)
		return
	}

	a, err := h.svc.AddToVehicle(r.Context(), vehicleID, req.ToModel())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, AccessoryToResponse(a))
}

func (h *accessoryHandler) accessoryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.svc.AccessoryByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, AccessoryToResponse(a))
}

func (h *accessoryHandler) listByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}

	accessories, err := h.svc.ListByVehicle(r.Context(), vehicleID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := lo.Map(accessories, func(a model.Accessory, _ int) AccessoryResponse {
		return AccessoryToResponse(&a)
	})

	writeJSON(w, r, http.StatusOK, items)
}

func (h *accessoryHandler) listByVehiclePaged(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}

	result, err := h.svc.ListByVehiclePaged(r.Context(), vehicleID, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, AccessoryToResponse))
}

func (h *accessoryHandler) totalPriceByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}

	total, err := h.svc.TotalPriceByVehicle(r.Context(), vehicleID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]decimal.Decimal{"totalPrice": total})
}

func (h *accessoryHandler) listByVehicleAndType(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}

	at, err := model.ParseAccessoryType(r.URL.Query().Get("type"))
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	accessories, err := h.svc.ListByVehicleAndType(r.Context(), vehicleID, at)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := lo.Map(accessories, func(a model.Accessory, _ int) AccessoryResponse {
		return AccessoryToResponse(&a)
	})

	writeJSON(w, r, http.StatusOK, items)
}

func (h *accessoryHandler) countByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, r, "vehicleId")
	if !ok {
		return
	}

	n, err := h.svc.CountByVehicle(r.Context(), vehicleID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]int64{"count": n})
}

func (h *accessoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req AccessoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "corps de requête JSON invalide")
		return
	}

	details := validateRequest(req)
	details = append(details, validatePrice(req.Price)...)
	if len(details) > 0 {
		writeValidationError(w, r, details)
		return
	}

	a := req.ToModel()
	a.ID = id

	updated, err := h.svc.Update(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, AccessoryToResponse(updated))
}

func (h *accessoryHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h *accessoryHandler) listByType(w http.ResponseWriter, r *http.Request) {
	at, err := model.ParseAccessoryType(r.URL.Query().Get("type"))
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	result, err := h.svc.ListByType(r.Context(), at, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, AccessoryToResponse))
}

func (h *accessoryHandler) searchByName(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SearchByName(r.Context(), r.URL.Query().Get("name"), parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, AccessoryToResponse))
}

func (h *accessoryHandler) listByPriceRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	minPrice, err := decimal.NewFromString(q.Get("min"))
	if err != nil {
		writeBadRequest(w, r, "paramètre min invalide")
		return
	}
	maxPrice, err := decimal.NewFromString(q.Get("max"))
	if err != nil {
		writeBadRequest(w, r, "paramètre max invalide")
		return
	}

	result, err := h.svc.ListByPriceRange(r.Context(), minPrice, maxPrice, parsePageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, PageToResponse(result, AccessoryToResponse))
}

func (h *accessoryHandler) topExpensive(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n <= 0 {
		writeBadRequest(w, r, "paramètre n invalide")
		return
	}

	accessories, err := h.svc.TopExpensive(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := lo.Map(accessories, func(a model.Accessory, _ int) AccessoryResponse {
		return AccessoryToResponse(&a)
	})

	writeJSON(w, r, http.StatusOK, items)
}
