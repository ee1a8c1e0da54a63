package services

import (
	"errors"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// ErrForbidden is returned when the caller lacks a required role or
// permission
var ErrForbidden = errors.New("forbidden")

// roleRank orders roles by privilege for minimum-role checks
var roleRank = map[string]int{
	models.RoleViewer:     1,
	models.RoleAnalyst:    2,
	models.RoleAdmin:      3,
	models.RoleSuperAdmin: 4,
}

// AuthorizationService defines role and permission checks over a resolved
// tenant context
type AuthorizationService interface {
	RequireRole(tc *tenant.Context, minimumRole string) error
	RequirePermission(tc *tenant.Context, permission string) error
}

// authorizationService implements AuthorizationService
type authorizationService struct {
	logger *logger.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(log *logger.Logger) AuthorizationService {
	return &authorizationService{logger: log}
}

// RequireRole rejects contexts below the minimum role
func (s *authorizationService) RequireRole(tc *tenant.Context, minimumRole string) error {
	if tc == nil {
		return ErrForbidden
	}
	if roleRank[tc.UserRole] < roleRank[minimumRole] {
		s.logger.WithUser(tc.UserID).
			WithField("role", tc.UserRole).
			WithField("required_role", minimumRole).
			Warn("Caller lacks required role")
		return ErrForbidden
	}
	return nil
}

// RequirePermission rejects contexts missing a capability string. Admins and
// super admins implicitly hold all permissions.
func (s *authorizationService) RequirePermission(tc *tenant.Context, permission string) error {
	if tc == nil {
		return ErrForbidden
	}
	if roleRank[tc.UserRole] >= roleRank[models.RoleAdmin] {
		return nil
	}
	if !tc.HasPermission(permission) {
		s.logger.WithUser(tc.UserID).
			WithField("permission", permission).
			Warn("Caller lacks required permission")
		return ErrForbidden
	}
	return nil
}
