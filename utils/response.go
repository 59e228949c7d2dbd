package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskboard/services"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteServiceError maps the service error kinds to HTTP statuses. Unknown
// errors become a generic 500 so internals never leak to the client.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, services.ErrConflict):
		WriteJSON(w, http.StatusConflict, APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrValidation):
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
	default:
		WriteJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Server error"})
	}
}
