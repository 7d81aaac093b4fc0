package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"access-gate/pkg/requestcontext"
)

// TokenValidator turns a bearer token into an authenticated identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (*requestcontext.Identity, error)
}

// LoadIdentity attaches the authenticated identity to the context when a
// valid bearer token is present. It never rejects: the decision engine is
// the single place that fails closed, so an absent or invalid token simply
// leaves the request unauthenticated.
func LoadIdentity(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identity, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx = requestcontext.WithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
