// Package rbac gates routes on the caller's role.
package rbac

import (
	"net/http"

	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/response"
)

// Roles.
const (
	Admin   = "admin"
	Manager = "manager"
	User    = "user"
)

// Valid reports whether role is one of the known roles.
func Valid(role string) bool {
	switch role {
	case Admin, Manager, User:
		return true
	}
	return false
}

// RequireRole allows only principals holding one of roles. It must run
// after middleware.Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "")
				return
			}
			if !p.HasRole(roles...) {
				response.Forbidden(w, "Not authorized to access this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
