package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps core error kinds to HTTP statuses: validation
// failures are 422, missing records 404, remote outages 503. Anything else
// is a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Reason, Field: verr.Field})
		return
	}

	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, nf.Error())
		return
	}

	var unavailable *core.RemoteUnavailableError
	if errors.As(err, &unavailable) {
		slog.ErrorContext(r.Context(), "Remote store unavailable", "op", unavailable.Op, "error", unavailable.Err)
		writeError(w, http.StatusServiceUnavailable, "remote store unavailable")
		return
	}

	slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
