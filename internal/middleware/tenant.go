package middleware

import (
	"errors"
	"net/http"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/services"
	"nodeguard-platform/internal/tenant"
)

// TenantMiddleware resolves the caller's tenant once per request and stores
// the result in the request context
type TenantMiddleware struct {
	logger   *logger.Logger
	resolver *services.TenantResolver
}

// NewTenantMiddleware creates a new tenant middleware
func NewTenantMiddleware(log *logger.Logger, resolver *services.TenantResolver) *TenantMiddleware {
	return &TenantMiddleware{
		logger:   log,
		resolver: resolver,
	}
}

// ResolveTenant runs tenant resolution for every request. Invalid or
// unavailable tenants get the same generic 401 so callers cannot probe which
// tenants exist or why one was rejected.
func (m *TenantMiddleware) ResolveTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &services.ResolveRequest{
			Host:               r.Host,
			Path:               r.URL.Path,
			TenantIDHeader:     r.Header.Get("X-Tenant-ID"),
			SwitchTenantHeader: r.Header.Get("X-Switch-Tenant"),
		}
		if user := GetUserFromContext(r.Context()); user != nil {
			req.User = user
		}

		tc, err := m.resolver.Resolve(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTenantRequired),
				errors.Is(err, services.ErrTenantUnavailable):
				services.ObserveTenantResolution("rejected")
			default:
				services.ObserveTenantResolution("error")
				m.logger.WithError(err).Error("Tenant resolution failed")
			}
			http.Error(w, "Invalid tenant", http.StatusUnauthorized)
			return
		}

		if tc == nil {
			services.ObserveTenantResolution("none")
			next.ServeHTTP(w, r)
			return
		}

		services.ObserveTenantResolution("resolved")
		next.ServeHTTP(w, r.WithContext(tenant.NewContext(r.Context(), tc)))
	})
}
