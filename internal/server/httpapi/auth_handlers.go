package httpapi

import (
	"encoding/json"
	"net/http"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required.")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// handleLogin verifies credentials, opens a session, and returns the bearer
// token together with the session row.
func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}
	if login == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Login and password are required.")
		return
	}

	user, err := s.users.Authenticate(r.Context(), login, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	session, token, err := s.sessions.Create(r.Context(), user.ID, user.IsAdmin)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user logged in", "user_id", user.ID, "session_id", session.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"session": session,
	})
}
