package httpapi

import "net/http"

func (s *HTTPServer) handleSessionIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.Index(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleSessionShow(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Show(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleSessionCreate opens an additional session for the caller, reusing
// the identity already proven by the token.
func (s *HTTPServer) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	session, token, err := s.sessions.Create(r.Context(), identity.UserID, identity.IsAdmin)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "session created", "user_id", identity.UserID, "session_id", session.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":   token,
		"session": session,
	})
}

func (s *HTTPServer) handleSessionDestroy(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Destroy(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "session destroyed", "session_id", session.ID, "user_id", session.UserID)
	writeJSON(w, http.StatusOK, session)
}
