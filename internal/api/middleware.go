package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/neexbeast/skycast/internal/session"
)

// validBearer reports whether r carries Authorization: Bearer <token>.
// Uses crypto/subtle.ConstantTimeCompare to prevent timing attacks.
func validBearer(r *http.Request, token string) bool {
	auth := r.Header.Get("Authorization")
	provided := strings.TrimPrefix(auth, "Bearer ")
	return strings.HasPrefix(auth, "Bearer ") && subtle.ConstantTimeCompare([]byte(provided), []byte(token)) == 1
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

// BearerAuth returns middleware that rejects requests without a valid bearer
// token. Accepted requests carry the authenticated tier in their context.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validBearer(r, token) {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithTier(r.Context(), session.Authenticated)))
		})
	}
}

// OptionalBearer lets anonymous requests through with the anonymous tier.
// A request that presents a credential must present a valid one.
func OptionalBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r.WithContext(session.WithTier(r.Context(), session.Anonymous)))
				return
			}
			if !validBearer(r, token) {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithTier(r.Context(), session.Authenticated)))
		})
	}
}
