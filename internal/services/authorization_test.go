package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

func TestRequireRole(t *testing.T) {
	svc := NewAuthorizationService(createTestLogger())

	cases := []struct {
		role        string
		minimumRole string
		allowed     bool
	}{
		{models.RoleViewer, models.RoleViewer, true},
		{models.RoleViewer, models.RoleAnalyst, false},
		{models.RoleAnalyst, models.RoleAnalyst, true},
		{models.RoleAnalyst, models.RoleAdmin, false},
		{models.RoleAdmin, models.RoleAnalyst, true},
		{models.RoleSuperAdmin, models.RoleAdmin, true},
	}

	for _, tc := range cases {
		ctx := &tenant.Context{TenantID: "t-1", UserID: "u-1", UserRole: tc.role}
		err := svc.RequireRole(ctx, tc.minimumRole)
		if tc.allowed {
			assert.NoError(t, err, "role=%s minimum=%s", tc.role, tc.minimumRole)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "role=%s minimum=%s", tc.role, tc.minimumRole)
		}
	}

	assert.ErrorIs(t, svc.RequireRole(nil, models.RoleViewer), ErrForbidden)
}

func TestRequirePermission(t *testing.T) {
	svc := NewAuthorizationService(createTestLogger())

	t.Run("explicit permission", func(t *testing.T) {
		ctx := &tenant.Context{
			TenantID:    "t-1",
			UserRole:    models.RoleViewer,
			Permissions: []string{"incidents:read"},
		}
		assert.NoError(t, svc.RequirePermission(ctx, "incidents:read"))
		assert.ErrorIs(t, svc.RequirePermission(ctx, "incidents:write"), ErrForbidden)
	})

	t.Run("admins hold all permissions", func(t *testing.T) {
		for _, role := range []string{models.RoleAdmin, models.RoleSuperAdmin} {
			ctx := &tenant.Context{TenantID: "t-1", UserRole: role}
			assert.NoError(t, svc.RequirePermission(ctx, "anything:at-all"), "role=%s", role)
		}
	})

	t.Run("nil context", func(t *testing.T) {
		assert.ErrorIs(t, svc.RequirePermission(nil, "incidents:read"), ErrForbidden)
	})
}
