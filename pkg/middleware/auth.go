package middleware

import (
	"context"
	"net/http"
	"strings"

	"disaster-prep-community/pkg/session"
)

type contextKey string

const (
	// IdentityContextKey holds the *session.Identity for the request, when
	// a valid session token was presented.
	IdentityContextKey contextKey = "identity"
)

// Auth resolves an optional Bearer session token and, when it resolves to an
// identity, stores that identity in the request context. It never rejects a
// request by itself: route policy belongs to RequireUser / RequireAdmin.
func Auth(sessions *session.Manager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := BearerToken(r); token != "" {
			if id, ok := sessions.Resolve(token); ok {
				ctx := context.WithValue(r.Context(), IdentityContextKey, id)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the session token from the Authorization header.
// Returns "" when the header is absent or not in Bearer form.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}

// IdentityFrom returns the resolved identity for the request, if any.
func IdentityFrom(r *http.Request) (*session.Identity, bool) {
	id, ok := r.Context().Value(IdentityContextKey).(*session.Identity)
	return id, ok
}
