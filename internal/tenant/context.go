// Package tenant carries the resolved tenant identity for one request or
// operation. A Context is created once by the resolver, is read-only after
// creation and is never persisted.
package tenant

import (
	"context"
	"errors"
)

// ErrNoTenantContext is returned when a tenant-scoped operation is attempted
// without a valid tenant context. This is a configuration/programming error:
// it must fail fast and loudly, never silently default to "no filter".
var ErrNoTenantContext = errors.New("no tenant context available")

// Context is the resolved identity attached to one request/operation
type Context struct {
	TenantID    string
	UserID      string
	UserRole    string
	Permissions []string
	Subdomain   string
}

// Valid reports whether the context can authorize tenant-scoped operations.
// A context without a tenant id is invalid by definition.
func (c *Context) Valid() bool {
	return c != nil && c.TenantID != ""
}

// HasPermission reports whether the context carries a capability string
func (c *Context) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

type contextKey string

const tenantContextKey contextKey = "tenant_context"

// NewContext returns a request context carrying the tenant context
func NewContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext extracts the tenant context from a request context. The second
// return value is false when no tenant was resolved for the request.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(tenantContextKey).(*Context)
	return tc, ok && tc != nil
}

// Require extracts a valid tenant context or fails with ErrNoTenantContext
func Require(ctx context.Context) (*Context, error) {
	tc, ok := FromContext(ctx)
	if !ok || !tc.Valid() {
		return nil, ErrNoTenantContext
	}
	return tc, nil
}
