package middleware

import (
	"context"
	"net/http"
	"strings"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/services"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey ContextKey = "user"
)

// AuthenticationMiddleware provides JWT authentication middleware
type AuthenticationMiddleware struct {
	logger  *logger.Logger
	authSvc services.AuthenticationService
}

// NewAuthenticationMiddleware creates a new authentication middleware
func NewAuthenticationMiddleware(
	log *logger.Logger,
	authSvc services.AuthenticationService,
) *AuthenticationMiddleware {
	return &AuthenticationMiddleware{
		logger:  log,
		authSvc: authSvc,
	}
}

// Authenticate validates a Bearer token when present and stores the identity
// in the request context. Requests without credentials pass through
// unauthenticated; route guards decide whether that is acceptable.
func (m *AuthenticationMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			http.Error(w, "Bearer token required", http.StatusUnauthorized)
			return
		}

		token := authHeader[len(bearerPrefix):]
		user, err := m.authSvc.ValidateJWT(r.Context(), token)
		if err != nil {
			m.logger.WithError(err).Warn("JWT validation failed")
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthentication rejects requests that did not authenticate
func (m *AuthenticationMiddleware) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(ctx context.Context) *services.AuthenticatedUser {
	user, ok := ctx.Value(UserContextKey).(*services.AuthenticatedUser)
	if !ok {
		return nil
	}
	return user
}
