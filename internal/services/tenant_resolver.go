package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
	"nodeguard-platform/internal/tenant"
)

var (
	// ErrTenantRequired is returned when a tenant-required path resolves no
	// tenant
	ErrTenantRequired = errors.New("tenant context required")
	// ErrTenantUnavailable is the generic rejection for a resolved but
	// unusable tenant. Callers see no detail about why, to avoid tenant
	// enumeration via error messages; internal logs carry the reason.
	ErrTenantUnavailable = errors.New("tenant account unavailable")
)

// AuthenticatedUser is the identity extracted from a validated token,
// consumed by the resolver as one of its input signals
type AuthenticatedUser struct {
	ID          string
	Role        string
	TenantID    string
	Permissions []string
}

// ResolveRequest carries the transport metadata the resolver consumes. It is
// deliberately framework-free so resolution is testable without HTTP.
type ResolveRequest struct {
	Host               string
	Path               string
	TenantIDHeader     string
	SwitchTenantHeader string
	User               *AuthenticatedUser
}

// Path prefixes that never require a tenant
var noTenantPrefixes = []string{
	"/health",
	"/metrics",
	"/api/v1/auth",
	"/api/v1/tenants/admin",
}

// Path prefixes that always require a tenant
var tenantRequiredPrefixes = []string{
	"/api/v1/workflows",
	"/api/v1/threat-intel",
	"/api/v1/incidents",
	"/api/v1/alerts",
	"/api/v1/compliance",
}

// TenantResolver derives a caller's tenant identity from transport metadata
// once per request and validates the tenant's subscription status
type TenantResolver struct {
	logger      *logger.Logger
	tenants     repositories.TenantRepository
	cache       *CacheService
	baseDomain  string
	cacheLookup bool
	now         func() time.Time
}

// NewTenantResolver creates a new tenant resolver
func NewTenantResolver(
	log *logger.Logger,
	tenants repositories.TenantRepository,
	cache *CacheService,
	baseDomain string,
	cacheLookup bool,
) *TenantResolver {
	return &TenantResolver{
		logger:      log,
		tenants:     tenants,
		cache:       cache,
		baseDomain:  baseDomain,
		cacheLookup: cacheLookup,
		now:         time.Now,
	}
}

// TenantRequired reports whether a path must resolve a tenant. The allow-list
// wins over the required list; unlisted paths default to not required.
func (r *TenantResolver) TenantRequired(path string) bool {
	for _, prefix := range noTenantPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	for _, prefix := range tenantRequiredPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Resolve produces exactly one tenant context for a request, or nil when the
// path does not require one and no signal matched. Resolution order:
// subdomain, custom domain, X-Tenant-ID header, authenticated-user claim.
// A super-admin X-Switch-Tenant header always runs last and replaces any
// earlier result.
func (r *TenantResolver) Resolve(ctx context.Context, req *ResolveRequest) (*tenant.Context, error) {
	host := stripPort(req.Host)

	var resolved *models.Tenant
	var subdomain string

	if label := r.subdomainLabel(host); label != "" {
		t, err := r.lookupBySubdomain(ctx, label)
		if err != nil {
			return nil, err
		}
		if t != nil {
			resolved = t
			subdomain = label
		}
	}

	if resolved == nil && r.isCustomDomain(host) {
		t, err := r.lookupByDomain(ctx, host)
		if err != nil {
			return nil, err
		}
		resolved = t
	}

	if resolved == nil && req.TenantIDHeader != "" {
		t, err := r.lookupByID(ctx, req.TenantIDHeader)
		if err != nil {
			return nil, err
		}
		resolved = t
	}

	if resolved == nil && req.User != nil && req.User.TenantID != "" {
		t, err := r.lookupByID(ctx, req.User.TenantID)
		if err != nil {
			return nil, err
		}
		resolved = t
	}

	// Super-admin override always runs last and can replace an
	// already-resolved tenant (support/impersonation workflow).
	if req.User != nil && req.User.Role == models.RoleSuperAdmin && req.SwitchTenantHeader != "" {
		t, err := r.lookupByID(ctx, req.SwitchTenantHeader)
		if err != nil {
			return nil, err
		}
		if t != nil {
			r.logger.WithUser(req.User.ID).WithField("switch_tenant", t.ID).
				Info("Super admin switched tenant context")
			resolved = t
			subdomain = t.Subdomain
		} else {
			r.logger.WithUser(req.User.ID).WithField("switch_tenant", req.SwitchTenantHeader).
				Warn("Super admin requested switch to unknown tenant")
		}
	}

	if resolved == nil {
		if r.TenantRequired(req.Path) {
			r.logger.WithField("path", req.Path).WithField("host", host).
				Warn("No tenant resolved for tenant-required path")
			return nil, ErrTenantRequired
		}
		return nil, nil
	}

	if err := r.validateTenant(resolved); err != nil {
		return nil, err
	}

	tc := &tenant.Context{
		TenantID:  resolved.ID,
		Subdomain: subdomain,
	}
	if req.User != nil {
		tc.UserID = req.User.ID
		tc.UserRole = req.User.Role
		tc.Permissions = req.User.Permissions
	}
	return tc, nil
}

// validateTenant rejects disabled, suspended and expired tenants. The caller
// only ever sees ErrTenantUnavailable.
func (r *TenantResolver) validateTenant(t *models.Tenant) error {
	log := r.logger.WithTenant(t.ID)
	now := r.now()

	switch {
	case !t.IsActive:
		log.Warn("Rejected request for disabled tenant")
		return ErrTenantUnavailable
	case t.Status == models.TenantStatusSuspended:
		log.Warn("Rejected request for suspended tenant")
		return ErrTenantUnavailable
	case t.TrialExpired(now):
		log.Warn("Rejected request for tenant with expired trial")
		return ErrTenantUnavailable
	case t.SubscriptionExpired(now):
		log.Warn("Rejected request for tenant with expired subscription")
		return ErrTenantUnavailable
	}
	return nil
}

// subdomainLabel extracts the tenant label from a <label>.<base-domain> host
func (r *TenantResolver) subdomainLabel(host string) string {
	if r.baseDomain == "" || !strings.HasSuffix(host, "."+r.baseDomain) {
		return ""
	}
	label := strings.TrimSuffix(host, "."+r.baseDomain)
	if label == "" || strings.Contains(label, ".") || label == "www" {
		return ""
	}
	return label
}

// isCustomDomain reports whether the host could name a tenant's custom
// domain: not localhost and not the platform's own domain
func (r *TenantResolver) isCustomDomain(host string) bool {
	if host == "" || host == "localhost" || host == "127.0.0.1" {
		return false
	}
	if host == r.baseDomain || strings.HasSuffix(host, "."+r.baseDomain) {
		return false
	}
	return true
}

func (r *TenantResolver) lookupBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	return r.cachedLookup(ctx, "tenant:subdomain:"+subdomain, func() (*models.Tenant, error) {
		return r.tenants.FindBySubdomain(ctx, subdomain)
	})
}

func (r *TenantResolver) lookupByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	return r.cachedLookup(ctx, "tenant:domain:"+domain, func() (*models.Tenant, error) {
		return r.tenants.FindByDomain(ctx, domain)
	})
}

func (r *TenantResolver) lookupByID(ctx context.Context, id string) (*models.Tenant, error) {
	return r.cachedLookup(ctx, "tenant:id:"+id, func() (*models.Tenant, error) {
		return r.tenants.GetTenantByID(ctx, id)
	})
}

// cachedLookup looks a tenant up through the redis cache. A missing row is a
// normal no-match (nil, nil); only infrastructure failures propagate.
func (r *TenantResolver) cachedLookup(ctx context.Context, key string, fetch func() (*models.Tenant, error)) (*models.Tenant, error) {
	if r.cacheLookup && r.cache != nil {
		var cached models.Tenant
		if err := r.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	t, err := fetch()
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if r.cacheLookup && r.cache != nil {
		if err := r.cache.Set(ctx, key, t, r.cache.TenantTTL()); err != nil {
			r.logger.WithError(err).Debug("Failed to cache tenant lookup")
		}
	}
	return t, nil
}

// stripPort removes a port suffix from a Host header value
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
