package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Details   []string  `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(r.Context(), "encode response", logger.ErrorF(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, tag, message := projectError(err)
	writeJSON(w, r, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     tag,
		Message:   message,
		Path:      r.URL.Path,
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, details []string) {
	writeJSON(w, r, http.StatusBadRequest, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusBadRequest,
		Error:     "Validation Error",
		Message:   model.ErrValidation.Error(),
		Path:      r.URL.Path,
		Details:   details,
	})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, r, http.StatusBadRequest, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusBadRequest,
		Error:     "Invalid Argument",
		Message:   message,
		Path:      r.URL.Path,
	})
}

// projectError maps domain failures to their HTTP projection. Anything
// unrecognized is a 500 with an opaque message so internals never leak.
func projectError(err error) (status int, tag, message string) {
	switch {
	case errors.Is(err, model.ErrGarageNotFound),
		errors.Is(err, model.ErrVehicleNotFound),
		errors.Is(err, model.ErrAccessoryNotFound):
		return http.StatusNotFound, "Resource Not Found", rootMessage(err)
	case errors.Is(err, model.ErrQuotaExceeded):
		return http.StatusConflict, "Quota Exceeded", rootMessage(err)
	case errors.Is(err, model.ErrDuplicateEmail),
		errors.Is(err, model.ErrDuplicateVin),
		errors.Is(err, model.ErrYearInFuture):
		return http.StatusBadRequest, "Invalid Argument", rootMessage(err)
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "Validation Error", rootMessage(err)
	default:
		return http.StatusInternalServerError, "Internal Error", "Une erreur interne est survenue"
	}
}

// rootMessage strips the operation prefixes accreted while wrapping.
func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
