package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserDisabled       = errors.New("user account disabled")
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	TenantID    string   `json:"tenant_id,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// AuthenticationService defines the interface for authentication operations
type AuthenticationService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ValidateJWT(ctx context.Context, token string) (*AuthenticatedUser, error)
	GenerateJWT(ctx context.Context, user *models.User) (string, error)
}

// authenticationService implements AuthenticationService
type authenticationService struct {
	logger      *logger.Logger
	userRepo    repositories.UserRepository
	jwtSecret   []byte
	tokenExpiry time.Duration
	bcryptCost  int
}

// NewAuthenticationService creates a new authentication service
func NewAuthenticationService(
	log *logger.Logger,
	userRepo repositories.UserRepository,
	cfg *config.Config,
) AuthenticationService {
	return &authenticationService{
		logger:      log,
		userRepo:    userRepo,
		jwtSecret:   []byte(cfg.Auth.JWTSecret),
		tokenExpiry: time.Duration(cfg.Auth.TokenExpiryHours) * time.Hour,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// Login authenticates a user by email/password and issues a JWT
func (s *authenticationService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		s.logger.WithUser(user.ID).Warn("Login attempt for disabled user")
		return "", nil, ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WithUser(user.ID).Warn("Login attempt with invalid password")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(ctx, user)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.WithUser(user.ID).WithError(err).Warn("Failed to record last login")
	}

	return token, user, nil
}

// GenerateJWT issues a signed token carrying the user's tenant claim
func (s *authenticationService) GenerateJWT(ctx context.Context, user *models.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:      user.ID,
		Role:        user.Role,
		Permissions: user.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		},
	}
	if user.TenantID != nil {
		claims.TenantID = *user.TenantID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT validates a token and returns the authenticated identity
func (s *authenticationService) ValidateJWT(ctx context.Context, tokenString string) (*AuthenticatedUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &AuthenticatedUser{
		ID:          claims.UserID,
		Role:        claims.Role,
		TenantID:    claims.TenantID,
		Permissions: claims.Permissions,
	}, nil
}

// HashPassword hashes a plaintext password for storage
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
