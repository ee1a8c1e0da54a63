package models

import (
	"time"

	"gorm.io/gorm"
)

// Incident severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident statuses
const (
	IncidentStatusOpen          = "open"
	IncidentStatusInvestigating = "investigating"
	IncidentStatusResolved      = "resolved"
	IncidentStatusClosed        = "closed"
)

// Incident represents a tracked security incident
type Incident struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title       string         `json:"title" gorm:"not null" validate:"required,min=1,max=255"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Severity    string         `json:"severity" gorm:"not null;index" validate:"required,oneof=low medium high critical"`
	Status      string         `json:"status" gorm:"not null;default:'open';index" validate:"required,oneof=open investigating resolved closed"`
	ThreatType  string         `json:"threat_type,omitempty"`
	RiskScore   float64        `json:"risk_score" gorm:"default:0"`
	SourceIP    string         `json:"source_ip,omitempty"`
	TargetIP    string         `json:"target_ip,omitempty"`
	Metadata    JSONMap        `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	TenantOwnership
}

// TableName returns the table name for Incident
func (Incident) TableName() string {
	return "incidents"
}
