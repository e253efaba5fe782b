package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkoroban/scoreboard/internal/common"
	"github.com/dkoroban/scoreboard/internal/server/repositories/sessions"
	"github.com/dkoroban/scoreboard/internal/server/repositories/users"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFromError maps service and repository errors onto HTTP responses.
// Sentinel messages are client-facing; anything unclassified collapses to a
// generic 500 so store internals never leak.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, users.ErrNoUsers),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, users.ErrUpdateFailed),
		errors.Is(err, users.ErrDeleteFailed),
		errors.Is(err, sessions.ErrNoSessions),
		errors.Is(err, sessions.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, users.ErrDuplicate):
		return http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, common.ErrorStoreUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable."
	default:
		return http.StatusInternalServerError, "Internal server error."
	}
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFromError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}
