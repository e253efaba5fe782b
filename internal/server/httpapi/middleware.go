package httpapi

import (
	"context"
	"net/http"

	"github.com/dkoroban/scoreboard/internal/server/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// authenticate verifies the raw token in the Authorization header. Clients
// send the token as-is, without a Bearer prefix. Rejected requests never
// reach the wrapped handler, so no store access happens for them.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			writeError(w, http.StatusForbidden, "Missing token")
			return
		}
		identity, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusForbidden, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates a handler on the admin claim. It must be composed after
// authenticate, which put the identity on the context.
func (s *HTTPServer) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFrom(r.Context())
		if !ok || !identity.IsAdmin {
			writeError(w, http.StatusForbidden, "Forbidden: Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}
