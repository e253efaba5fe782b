// Package httpapi exposes the JSON HTTP surface: signup and login, user CRUD,
// and the session registry. Token checks and the admin gate live in
// middleware; handlers translate service errors into status codes and
// {"error": ...} bodies.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dkoroban/scoreboard/internal/logging"
	"github.com/dkoroban/scoreboard/internal/server/config"
	"github.com/dkoroban/scoreboard/internal/server/models"
)

// UserService is the part of the user business logic the handlers need.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, login, password string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	GetOne(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	Destroy(ctx context.Context, id int64) (*models.User, error)
}

// SessionService is the part of the session registry the handlers need.
type SessionService interface {
	Index(ctx context.Context) ([]*models.Session, error)
	Show(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, userID int64, isAdmin bool) (*models.Session, string, error)
	Destroy(ctx context.Context, id string) (*models.Session, error)
}

type HTTPServer struct {
	addr      string
	jwtSecret []byte
	users     UserService
	sessions  SessionService
	logger    logging.Logger
}

func NewHTTPServer(cfg *config.Config, users UserService, sessions SessionService, logger logging.Logger) *HTTPServer {
	return &HTTPServer{
		addr:      cfg.EndpointAddrHTTP,
		jwtSecret: []byte(cfg.SecretKey),
		users:     users,
		sessions:  sessions,
		logger:    logger.With("module", "httpapi"),
	}
}

// Handler builds the route table. Index routes are admin-gated; everything
// under /users and /sessions requires a valid token.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.Handle("GET /users/{$}", s.authenticate(s.requireAdmin(http.HandlerFunc(s.handleUserIndex))))
	mux.Handle("GET /users/{id}", s.authenticate(http.HandlerFunc(s.handleUserShow)))
	mux.Handle("PUT /users/{id}", s.authenticate(http.HandlerFunc(s.handleUserUpdate)))
	mux.Handle("DELETE /users/{id}", s.authenticate(http.HandlerFunc(s.handleUserDestroy)))

	mux.Handle("GET /sessions/{$}", s.authenticate(s.requireAdmin(http.HandlerFunc(s.handleSessionIndex))))
	mux.Handle("POST /sessions/{$}", s.authenticate(http.HandlerFunc(s.handleSessionCreate)))
	mux.Handle("GET /sessions/{id}", s.authenticate(http.HandlerFunc(s.handleSessionShow)))
	mux.Handle("DELETE /sessions/{id}", s.authenticate(http.HandlerFunc(s.handleSessionDestroy)))

	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info(shutdownCtx, "shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "http server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "starting http server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
