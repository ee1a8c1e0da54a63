package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
)

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByTenant(ctx context.Context, tenantID string) ([]*models.User, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-key",
			TokenExpiryHours: 1,
			BcryptCost:       4,
		},
	}
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := HashPassword(password, 4)
	require.NoError(t, err)

	tenantID := "t-1"
	return &models.User{
		ID:           "u-1",
		Email:        "analyst@acme.io",
		PasswordHash: hash,
		TenantID:     &tenantID,
		Role:         models.RoleAnalyst,
		Permissions:  models.StringList{"workflows:read"},
		IsActive:     true,
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		user := testUser(t, "correct-horse")
		repo := &MockUserRepository{}
		repo.On("GetByEmail", ctx, user.Email).Return(user, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		svc := NewAuthenticationService(createTestLogger(), repo, testAuthConfig())
		token, loggedIn, err := svc.Login(ctx, user.Email, "correct-horse")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.NotNil(t, loggedIn.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		user := testUser(t, "correct-horse")
		repo := &MockUserRepository{}
		repo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		svc := NewAuthenticationService(createTestLogger(), repo, testAuthConfig())
		_, _, err := svc.Login(ctx, user.Email, "battery-staple")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("GetByEmail", ctx, "nobody@acme.io").Return(nil, repositories.ErrNotFound)

		svc := NewAuthenticationService(createTestLogger(), repo, testAuthConfig())
		_, _, err := svc.Login(ctx, "nobody@acme.io", "whatever")

		// Unknown user and wrong password are indistinguishable.
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled user", func(t *testing.T) {
		user := testUser(t, "correct-horse")
		user.IsActive = false
		repo := &MockUserRepository{}
		repo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		svc := NewAuthenticationService(createTestLogger(), repo, testAuthConfig())
		_, _, err := svc.Login(ctx, user.Email, "correct-horse")

		assert.ErrorIs(t, err, ErrUserDisabled)
	})
}

func TestJWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	user := testUser(t, "pw")

	svc := NewAuthenticationService(createTestLogger(), &MockUserRepository{}, testAuthConfig())

	token, err := svc.GenerateJWT(ctx, user)
	require.NoError(t, err)

	authenticated, err := svc.ValidateJWT(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, user.ID, authenticated.ID)
	assert.Equal(t, models.RoleAnalyst, authenticated.Role)
	assert.Equal(t, "t-1", authenticated.TenantID)
	assert.Equal(t, []string{"workflows:read"}, authenticated.Permissions)
}

func TestValidateJWTRejectsTampering(t *testing.T) {
	ctx := context.Background()
	user := testUser(t, "pw")

	svc := NewAuthenticationService(createTestLogger(), &MockUserRepository{}, testAuthConfig())
	token, err := svc.GenerateJWT(ctx, user)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateJWT(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		otherCfg := testAuthConfig()
		otherCfg.Auth.JWTSecret = "different-secret"
		other := NewAuthenticationService(createTestLogger(), &MockUserRepository{}, otherCfg)

		_, err := other.ValidateJWT(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
