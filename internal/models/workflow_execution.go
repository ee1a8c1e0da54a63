package models

import (
	"time"
)

// Trigger types
const (
	TriggerTypeAutomatic  = "automatic"
	TriggerTypeKafkaEvent = "kafka_event"
	TriggerTypeManual     = "manual"
)

// Execution statuses
const (
	ExecutionStatusPending   = "pending"
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusFailed    = "failed"
)

// WorkflowExecution records one delegated workflow run. Trigger decisions
// are at-most-once: a crash between matching and execution loses the
// trigger, which is acceptable for alerting.
type WorkflowExecution struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WorkflowID  string     `json:"workflow_id" gorm:"type:uuid;not null;index" validate:"required"`
	ExecutionID string     `json:"execution_id,omitempty" gorm:"index"`
	Status      string     `json:"status" gorm:"not null;default:'pending'" validate:"required,oneof=pending running completed failed"`
	TriggerType string     `json:"trigger_type" gorm:"not null" validate:"required,oneof=automatic kafka_event manual"`
	TriggeredAt time.Time  `json:"triggered_at" gorm:"not null;index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMs  int64      `json:"duration_ms,omitempty"`
	Error       string     `json:"error,omitempty" gorm:"type:text"`
	Payload     JSONMap    `json:"payload,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	TenantOwnership

	// Relationships
	Workflow *Workflow `json:"workflow,omitempty" gorm:"foreignKey:WorkflowID"`
}

// TableName returns the table name for WorkflowExecution
func (WorkflowExecution) TableName() string {
	return "workflow_executions"
}
