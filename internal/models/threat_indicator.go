package models

import (
	"time"

	"gorm.io/gorm"
)

// Threat indicator types
const (
	IndicatorTypeIP     = "ip"
	IndicatorTypeDomain = "domain"
	IndicatorTypeHash   = "hash"
	IndicatorTypeURL    = "url"
	IndicatorTypeEmail  = "email"
)

// ThreatIndicator represents one piece of threat intelligence (an IOC)
type ThreatIndicator struct {
	ID         string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Type       string         `json:"type" gorm:"not null;index" validate:"required,oneof=ip domain hash url email"`
	Value      string         `json:"value" gorm:"not null;index" validate:"required"`
	Confidence float64        `json:"confidence" gorm:"default:0" validate:"gte=0,lte=1"`
	Source     string         `json:"source,omitempty"`
	Tags       StringList     `json:"tags,omitempty" gorm:"type:jsonb"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	TenantOwnership
}

// TableName returns the table name for ThreatIndicator
func (ThreatIndicator) TableName() string {
	return "threat_indicators"
}
