// internal/acl/middleware.go
//
// Chi middleware helpers that gate console routes on the session user.
//
// Roles are issued by the auth service with the user record; the console
// keeps no role table of its own.

package acl

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/logger"
)

// RequireSession answers 401 unless a user is logged in.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFrom(r.Context()); !ok {
			deny(w, http.StatusUnauthorized, "not_logged_in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the current user holds ANY of names (compared
// case-insensitively).  With no names every logged-in user passes.
func RequireRole(names ...string) func(http.Handler) http.Handler {
	allowSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			allowSet[strings.ToLower(n)] = struct{}{}
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.UserFrom(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "not_logged_in")
				return
			}
			if len(allowSet) > 0 {
				if _, ok := allowSet[strings.ToLower(u.Role)]; !ok {
					logger.FromContext(r.Context()).Infow("role denied",
						"user", u.Username, "role", u.Role)
					deny(w, http.StatusForbidden, "forbidden")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
