package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleAnalyst    = "analyst"
	RoleViewer     = "viewer"
)

// User represents a platform user. Super admins have no tenant of their own
// and may switch into any tenant's context.
type User struct {
	ID           string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email        string         `json:"email" gorm:"not null;uniqueIndex" validate:"required,email"`
	PasswordHash string         `json:"-" gorm:"not null"`
	TenantID     *string        `json:"tenant_id,omitempty" gorm:"type:uuid;index"`
	Role         string         `json:"role" gorm:"not null;default:'viewer'" validate:"required,oneof=super_admin admin analyst viewer"`
	Permissions  StringList     `json:"permissions,omitempty" gorm:"type:jsonb"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// IsSuperAdmin reports whether the user holds the platform support role
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// HasPermission reports whether the user carries a capability string
func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
