package repositories

import (
	"context"

	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// TenantRepository defines the interface for tenant lookup operations used
// by the tenant context resolver
type TenantRepository interface {
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*models.Tenant, error)
	Create(ctx context.Context, t *models.Tenant) error
	Update(ctx context.Context, t *models.Tenant) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByTenant(ctx context.Context, tenantID string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// WorkflowRepository defines the interface for workflow data operations.
// Read/write operations are tenant-scoped; ListActiveWorkflows is the one
// system-level accessor, feeding the trigger matcher with every tenant's
// active definitions.
type WorkflowRepository interface {
	Create(ctx context.Context, tc *tenant.Context, w *models.Workflow) error
	GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.Workflow, error)
	GetAll(ctx context.Context, tc *tenant.Context) ([]*models.Workflow, error)
	GetActive(ctx context.Context, tc *tenant.Context) ([]*models.Workflow, error)
	Update(ctx context.Context, tc *tenant.Context, w *models.Workflow) error
	Delete(ctx context.Context, tc *tenant.Context, id string) error

	ListActiveWorkflows(ctx context.Context) ([]*models.Workflow, error)
}

// IncidentRepository defines the interface for incident data operations
type IncidentRepository interface {
	Create(ctx context.Context, tc *tenant.Context, incident *models.Incident) error
	GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.Incident, error)
	GetAll(ctx context.Context, tc *tenant.Context, limit, offset int) ([]*models.Incident, error)
	GetBySeverity(ctx context.Context, tc *tenant.Context, severity string) ([]*models.Incident, error)
	CountByStatus(ctx context.Context, tc *tenant.Context, status string) (int64, error)
	Update(ctx context.Context, tc *tenant.Context, incident *models.Incident) error
	Delete(ctx context.Context, tc *tenant.Context, id string) error
}

// ThreatIndicatorRepository defines the interface for threat intel operations
type ThreatIndicatorRepository interface {
	Create(ctx context.Context, tc *tenant.Context, indicator *models.ThreatIndicator) error
	GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.ThreatIndicator, error)
	GetAll(ctx context.Context, tc *tenant.Context, limit, offset int) ([]*models.ThreatIndicator, error)
	GetByType(ctx context.Context, tc *tenant.Context, indicatorType string) ([]*models.ThreatIndicator, error)
	FindByValue(ctx context.Context, tc *tenant.Context, value string) ([]*models.ThreatIndicator, error)
	Update(ctx context.Context, tc *tenant.Context, indicator *models.ThreatIndicator) error
	Delete(ctx context.Context, tc *tenant.Context, id string) error
}

// ExecutionRepository defines the interface for workflow execution records
type ExecutionRepository interface {
	Record(ctx context.Context, execution *models.WorkflowExecution) error
	GetByWorkflow(ctx context.Context, tc *tenant.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error)
	GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.WorkflowExecution, error)
}

// AuditLogRepository defines the interface for audit log operations
type AuditLogRepository interface {
	Create(ctx context.Context, tc *tenant.Context, entry *models.AuditLog) error
	GetByResource(ctx context.Context, tc *tenant.Context, resourceType, resourceID string, limit int) ([]*models.AuditLog, error)
	GetRecent(ctx context.Context, tc *tenant.Context, limit int) ([]*models.AuditLog, error)
}
