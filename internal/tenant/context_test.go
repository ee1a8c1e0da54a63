package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	assert.True(t, (&Context{TenantID: "t-1"}).Valid())
	assert.False(t, (&Context{}).Valid())

	var nilCtx *Context
	assert.False(t, nilCtx.Valid())
}

func TestHasPermission(t *testing.T) {
	tc := &Context{TenantID: "t-1", Permissions: []string{"workflows:read", "incidents:write"}}

	assert.True(t, tc.HasPermission("workflows:read"))
	assert.False(t, tc.HasPermission("workflows:write"))

	var nilCtx *Context
	assert.False(t, nilCtx.HasPermission("workflows:read"))
}

func TestContextRoundTrip(t *testing.T) {
	tc := &Context{TenantID: "t-1", UserID: "u-1", UserRole: "analyst"}

	ctx := NewContext(context.Background(), tc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, tc, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestFromContextRejectsNilValue(t *testing.T) {
	ctx := NewContext(context.Background(), nil)
	_, ok := FromContext(ctx)
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	tc := &Context{TenantID: "t-1"}
	got, err := Require(NewContext(context.Background(), tc))
	require.NoError(t, err)
	assert.Equal(t, tc, got)

	_, err = Require(context.Background())
	assert.ErrorIs(t, err, ErrNoTenantContext)

	// A context present but without a tenant id is still rejected.
	_, err = Require(NewContext(context.Background(), &Context{UserID: "u-1"}))
	assert.ErrorIs(t, err, ErrNoTenantContext)
}
