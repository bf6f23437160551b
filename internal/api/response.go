package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/service"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// decodeJSON decodes the JSON request body into target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service error onto an HTTP response. Internal details
// of 5xx errors are logged, not returned.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var uerr *service.UpstreamError

	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, service.ErrConflict):
		jsonError(w, http.StatusConflict, "an item with this unique_id already exists")
	case errors.As(err, &uerr):
		slog.ErrorContext(r.Context(), "upstream failure", "service", uerr.Service, "error", uerr.Err)
		jsonError(w, http.StatusBadGateway, uerr.Service+" unavailable")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
	}
}
