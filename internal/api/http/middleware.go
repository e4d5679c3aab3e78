package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"arrentals-backend/internal/logger"
	"arrentals-backend/internal/security"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AdminAuthMiddleware validates the bearer token on every admin route. Token
// issuance lives with the identity provider; this side only checks signature,
// expiry and the admin role claim.
func AdminAuthMiddleware(validator security.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := validator.ValidateAdminToken(token)
			if err != nil {
				switch {
				case errors.Is(err, security.ErrExpiredToken):
					writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "token has expired"})
				case errors.Is(err, security.ErrNotAdmin):
					writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
				default:
					writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
				}
				return
			}

			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaimsFromContext returns the validated claims stored by the auth
// middleware, or nil outside an authenticated admin request.
func AdminClaimsFromContext(ctx context.Context) *security.AdminClaims {
	claims, _ := ctx.Value(adminClaimsKey).(*security.AdminClaims)
	return claims
}

// LoggingMiddleware emits one access log line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
