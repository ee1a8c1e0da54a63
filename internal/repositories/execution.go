package repositories

import (
	"context"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// executionRepository implements ExecutionRepository
type executionRepository struct {
	db     *database.Connection
	scoped *ScopedRepository[models.WorkflowExecution]
}

// NewExecutionRepository creates a new execution repository
func NewExecutionRepository(db *database.Connection) ExecutionRepository {
	return &executionRepository{
		db:     db,
		scoped: NewScopedRepository[models.WorkflowExecution](db),
	}
}

// Record persists an execution record. Executions are written by the event
// pipeline under the owning workflow's tenant, which the caller has already
// stamped; the write path does not go through a request tenant context.
func (r *executionRepository) Record(ctx context.Context, execution *models.WorkflowExecution) error {
	if execution.GetTenantID() == "" {
		return tenant.ErrNoTenantContext
	}
	return r.db.WithContext(ctx).Create(execution).Error
}

// GetByWorkflow retrieves the tenant's execution history for one workflow
func (r *executionRepository) GetByWorkflow(ctx context.Context, tc *tenant.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error) {
	q, err := r.scoped.TenantQuery(ctx, tc)
	if err != nil {
		return nil, err
	}

	var executions []*models.WorkflowExecution
	err = q.Where("workflow_id = ?", workflowID).
		Order("triggered_at DESC").
		Limit(limit).
		Find(&executions).Error
	return executions, err
}

// GetByID retrieves one of the tenant's execution records
func (r *executionRepository) GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.WorkflowExecution, error) {
	return r.scoped.FindOneWithAccess(ctx, tc, id)
}
