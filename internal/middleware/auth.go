package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hemanthk92/regdesk/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// AdminEmailKey is the context key for the authenticated admin's email.
const AdminEmailKey contextKey = "admin_email"

// GetAdminEmail extracts the admin email from the context.
// Returns empty string if not found.
func GetAdminEmail(ctx context.Context) string {
	email, _ := ctx.Value(AdminEmailKey).(string)
	return email
}

// RequireAdmin validates the Bearer token on admin routes and adds the
// admin's email to the request context.
func RequireAdmin(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), AdminEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
