package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant status values
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant plan values
const (
	PlanTrial        = "trial"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// Tenant represents a customer organisation whose data is isolated from all
// other tenants
type Tenant struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name               string         `json:"name" gorm:"not null" validate:"required,min=1,max=255"`
	Subdomain          string         `json:"subdomain" gorm:"not null;uniqueIndex" validate:"required,min=1,max=63"`
	CustomDomain       string         `json:"custom_domain,omitempty" gorm:"index"`
	Status             string         `json:"status" gorm:"not null;default:'active'" validate:"required,oneof=active suspended"`
	Plan               string         `json:"plan" gorm:"not null;default:'trial'" validate:"required,oneof=trial professional enterprise"`
	IsActive           bool           `json:"is_active" gorm:"default:true"`
	TrialEndsAt        *time.Time     `json:"trial_ends_at,omitempty"`
	SubscriptionEndsAt *time.Time     `json:"subscription_ends_at,omitempty"`
	Features           JSONMap        `json:"features,omitempty" gorm:"type:jsonb"`
	UsageLimits        JSONMap        `json:"usage_limits,omitempty" gorm:"type:jsonb"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Users []User `json:"users,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}

// TrialExpired reports whether a trial-plan tenant's trial has lapsed
func (t *Tenant) TrialExpired(now time.Time) bool {
	return t.Plan == PlanTrial && t.TrialEndsAt != nil && t.TrialEndsAt.Before(now)
}

// SubscriptionExpired reports whether the tenant's subscription has lapsed
func (t *Tenant) SubscriptionExpired(now time.Time) bool {
	return t.SubscriptionEndsAt != nil && t.SubscriptionEndsAt.Before(now)
}
