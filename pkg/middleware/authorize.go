package middleware

import (
	"net/http"

	"disaster-prep-community/pkg/response"
)

const (
	LoginPath      = "/api/auth/login"
	AdminLoginPath = "/api/auth/admin/login"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// RoleResolver looks up the current role of a user from the source of truth.
// The admin gate re-checks it on every call so a demotion takes effect
// immediately instead of at next login.
type RoleResolver interface {
	RoleOf(userID string) (string, error)
}

// RequireUser short-circuits with 401 and the login entry point unless the
// request carries a resolved identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r); !ok {
			response.Denied(w, http.StatusUnauthorized, "Please log in to access this page", LoginPath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is RequireUser plus an admin role check against the user
// store. Non-admins are pointed at the admin login entry point.
func RequireAdmin(roles RoleResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r)
		if !ok {
			response.Denied(w, http.StatusUnauthorized, "Admin access required", AdminLoginPath)
			return
		}

		role, err := roles.RoleOf(id.UserID)
		if err != nil || role != RoleAdmin {
			response.Denied(w, http.StatusForbidden, "Admin access required", AdminLoginPath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireClaimedRole gates on the role carried inside the session token
// without consulting a store. Used by services that have no user database
// of their own; the role can be stale for at most the token lifetime.
func RequireClaimedRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r)
		if !ok {
			response.Denied(w, http.StatusUnauthorized, "Admin access required", AdminLoginPath)
			return
		}
		if id.Role != role {
			response.Denied(w, http.StatusForbidden, "Admin access required", AdminLoginPath)
			return
		}
		next.ServeHTTP(w, r)
	})
}
