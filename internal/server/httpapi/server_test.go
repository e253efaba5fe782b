package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkoroban/scoreboard/internal/logging"
	"github.com/dkoroban/scoreboard/internal/server/auth"
	"github.com/dkoroban/scoreboard/internal/server/config"
	"github.com/dkoroban/scoreboard/internal/server/models"
)

const testSecret = "test_secret"

type fakeUserService struct {
	calls int

	registerOut *models.User
	registerErr error

	authOut *models.User
	authErr error

	getAllOut []*models.User
	getAllErr error

	getOneOut *models.User
	getOneErr error

	updateOut *models.User
	updateErr error
	gotUpdate *models.UserUpdate

	destroyOut *models.User
	destroyErr error
}

func (f *fakeUserService) Register(context.Context, string, string, string) (*models.User, error) {
	f.calls++
	return f.registerOut, f.registerErr
}

func (f *fakeUserService) Authenticate(context.Context, string, string) (*models.User, error) {
	f.calls++
	return f.authOut, f.authErr
}

func (f *fakeUserService) GetAll(context.Context) ([]*models.User, error) {
	f.calls++
	return f.getAllOut, f.getAllErr
}

func (f *fakeUserService) GetOne(context.Context, int64) (*models.User, error) {
	f.calls++
	return f.getOneOut, f.getOneErr
}

func (f *fakeUserService) Update(_ context.Context, _ int64, upd models.UserUpdate) (*models.User, error) {
	f.calls++
	f.gotUpdate = &upd
	return f.updateOut, f.updateErr
}

func (f *fakeUserService) Destroy(context.Context, int64) (*models.User, error) {
	f.calls++
	return f.destroyOut, f.destroyErr
}

type fakeSessionService struct {
	calls int

	indexOut []*models.Session
	indexErr error

	showOut *models.Session
	showErr error

	createOut   *models.Session
	createToken string
	createErr   error

	destroyOut *models.Session
	destroyErr error
}

func (f *fakeSessionService) Index(context.Context) ([]*models.Session, error) {
	f.calls++
	return f.indexOut, f.indexErr
}

func (f *fakeSessionService) Show(context.Context, string) (*models.Session, error) {
	f.calls++
	return f.showOut, f.showErr
}

func (f *fakeSessionService) Create(context.Context, int64, bool) (*models.Session, string, error) {
	f.calls++
	return f.createOut, f.createToken, f.createErr
}

func (f *fakeSessionService) Destroy(context.Context, string) (*models.Session, error) {
	f.calls++
	return f.destroyOut, f.destroyErr
}

func newTestServer(users *fakeUserService, sessions *fakeSessionService) *HTTPServer {
	cfg := &config.Config{EndpointAddrHTTP: ":0", SecretKey: testSecret}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewHTTPServer(cfg, users, sessions, logger)
}

func issueToken(t *testing.T, userID int64, isAdmin bool) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, isAdmin, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, rec.Body.String())
	}
	return out
}

func assertErrorBody(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if got := decodeBody(t, rec)["error"]; got != msg {
		t.Fatalf("error = %q, want %q", got, msg)
	}
}
