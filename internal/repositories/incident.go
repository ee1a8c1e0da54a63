package repositories

import (
	"context"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// incidentRepository implements IncidentRepository
type incidentRepository struct {
	scoped *ScopedRepository[models.Incident]
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *database.Connection) IncidentRepository {
	return &incidentRepository{
		scoped: NewScopedRepository[models.Incident](db),
	}
}

// Create creates a new incident for the context's tenant
func (r *incidentRepository) Create(ctx context.Context, tc *tenant.Context, incident *models.Incident) error {
	return r.scoped.Create(ctx, tc, incident)
}

// GetByID retrieves one of the tenant's incidents by id
func (r *incidentRepository) GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.Incident, error) {
	return r.scoped.FindOneWithAccess(ctx, tc, id)
}

// GetAll retrieves the tenant's incidents newest-first with pagination
func (r *incidentRepository) GetAll(ctx context.Context, tc *tenant.Context, limit, offset int) ([]*models.Incident, error) {
	q, err := r.scoped.TenantQuery(ctx, tc)
	if err != nil {
		return nil, err
	}

	var incidents []*models.Incident
	err = q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&incidents).Error
	return incidents, err
}

// GetBySeverity retrieves the tenant's incidents of a given severity
func (r *incidentRepository) GetBySeverity(ctx context.Context, tc *tenant.Context, severity string) ([]*models.Incident, error) {
	return r.scoped.FindBy(ctx, tc, "severity = ?", severity)
}

// CountByStatus counts the tenant's incidents in a given status
func (r *incidentRepository) CountByStatus(ctx context.Context, tc *tenant.Context, status string) (int64, error) {
	return r.scoped.Count(ctx, tc, "status = ?", status)
}

// Update updates one of the tenant's incidents
func (r *incidentRepository) Update(ctx context.Context, tc *tenant.Context, incident *models.Incident) error {
	return r.scoped.Save(ctx, tc, incident)
}

// Delete soft-deletes one of the tenant's incidents
func (r *incidentRepository) Delete(ctx context.Context, tc *tenant.Context, id string) error {
	rows, err := r.scoped.Delete(ctx, tc, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
