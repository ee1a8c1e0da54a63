package repositories

import (
	"context"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// workflowRepository implements WorkflowRepository on top of the scoped
// repository
type workflowRepository struct {
	db     *database.Connection
	scoped *ScopedRepository[models.Workflow]
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *database.Connection) WorkflowRepository {
	return &workflowRepository{
		db:     db,
		scoped: NewScopedRepository[models.Workflow](db),
	}
}

// Create creates a new workflow for the context's tenant
func (r *workflowRepository) Create(ctx context.Context, tc *tenant.Context, w *models.Workflow) error {
	return r.scoped.Create(ctx, tc, w)
}

// GetByID retrieves one of the tenant's workflows by id
func (r *workflowRepository) GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.Workflow, error) {
	return r.scoped.FindOneWithAccess(ctx, tc, id)
}

// GetAll retrieves all of the tenant's workflows
func (r *workflowRepository) GetAll(ctx context.Context, tc *tenant.Context) ([]*models.Workflow, error) {
	return r.scoped.Find(ctx, tc)
}

// GetActive retrieves the tenant's active workflows
func (r *workflowRepository) GetActive(ctx context.Context, tc *tenant.Context) ([]*models.Workflow, error) {
	return r.scoped.FindBy(ctx, tc, "is_active = ?", true)
}

// Update updates one of the tenant's workflows
func (r *workflowRepository) Update(ctx context.Context, tc *tenant.Context, w *models.Workflow) error {
	return r.scoped.Save(ctx, tc, w)
}

// Delete soft-deletes one of the tenant's workflows
func (r *workflowRepository) Delete(ctx context.Context, tc *tenant.Context, id string) error {
	rows, err := r.scoped.Delete(ctx, tc, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveWorkflows retrieves every tenant's active workflow definitions
// for the event-driven trigger matcher. This is a system-level accessor, not
// a request-scoped one: incoming events are matched against the full set and
// each trigger executes under the owning workflow's tenant.
func (r *workflowRepository) ListActiveWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	var workflows []*models.Workflow
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&workflows).Error
	return workflows, err
}
