package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dkoroban/scoreboard/internal/server/models"
)

func userIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (s *HTTPServer) handleUserIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.GetAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleUserShow(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}
	user, err := s.users.GetOne(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUserUpdate applies a partial update. A user may edit their own
// record, admins may edit anyone; only admins may touch the role flag.
func (s *HTTPServer) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}
	identity, _ := identityFrom(r.Context())
	if identity.UserID != id && !identity.IsAdmin {
		writeError(w, http.StatusForbidden, "Forbidden: Admins only")
		return
	}

	var upd models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if upd.IsAdmin != nil && !identity.IsAdmin {
		writeError(w, http.StatusForbidden, "Forbidden: Admins only")
		return
	}

	user, err := s.users.Update(r.Context(), id, upd)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleUserDestroy(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}
	identity, _ := identityFrom(r.Context())
	if identity.UserID != id && !identity.IsAdmin {
		writeError(w, http.StatusForbidden, "Forbidden: Admins only")
		return
	}

	user, err := s.users.Destroy(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "user deleted", "user_id", id)
	writeJSON(w, http.StatusOK, user)
}
