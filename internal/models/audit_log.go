package models

import (
	"time"
)

// Audit actions
const (
	AuditActionCreate  = "CREATE"
	AuditActionUpdate  = "UPDATE"
	AuditActionDelete  = "DELETE"
	AuditActionExecute = "EXECUTE"
)

// AuditLog represents an immutable audit entry for mutating operations
type AuditLog struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID       string    `json:"user_id" gorm:"type:uuid;index"`
	Action       string    `json:"action" gorm:"not null" validate:"required,oneof=CREATE UPDATE DELETE EXECUTE"`
	ResourceType string    `json:"resource_type" gorm:"not null" validate:"required"`
	ResourceID   string    `json:"resource_id" gorm:"not null;index" validate:"required"`
	OldValues    JSONMap   `json:"old_values,omitempty" gorm:"type:jsonb"`
	NewValues    JSONMap   `json:"new_values,omitempty" gorm:"type:jsonb"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`

	TenantOwnership
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
