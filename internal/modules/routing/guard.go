package routing

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
)

// RoleSource reports the role of whoever is navigating.
type RoleSource interface {
	Role() user.Role
}

// Decide allows when required is empty or holds current. Otherwise guests are
// sent to the login view and everyone else to the access-denied view.
func Decide(required []user.Role, current user.Role) Decision {
	if len(required) == 0 {
		return Decision{Allowed: true}
	}
	for _, r := range required {
		if r == current {
			return Decision{Allowed: true}
		}
	}
	if current == user.RoleGuest || current == "" {
		return Decision{Redirect: LoginPath}
	}
	return Decision{Redirect: AccessDeniedPath}
}

// Require is middleware that applies Decide to every request. Rejections
// answer 401 (to login) or 403 (access denied) with the redirect target in
// the Location header and the body.
func Require(src RoleSource, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Decide(roles, src.Role())
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			status, msg := http.StatusForbidden, "access denied"
			if d.Redirect == LoginPath {
				status, msg = http.StatusUnauthorized, "login required"
			}
			w.Header().Set("Location", d.Redirect)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": msg, "redirect": d.Redirect})
		})
	}
}
