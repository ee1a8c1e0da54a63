package repositories

import (
	"context"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// threatIndicatorRepository implements ThreatIndicatorRepository
type threatIndicatorRepository struct {
	scoped *ScopedRepository[models.ThreatIndicator]
}

// NewThreatIndicatorRepository creates a new threat indicator repository
func NewThreatIndicatorRepository(db *database.Connection) ThreatIndicatorRepository {
	return &threatIndicatorRepository{
		scoped: NewScopedRepository[models.ThreatIndicator](db),
	}
}

// Create creates a new indicator for the context's tenant
func (r *threatIndicatorRepository) Create(ctx context.Context, tc *tenant.Context, indicator *models.ThreatIndicator) error {
	return r.scoped.Create(ctx, tc, indicator)
}

// GetByID retrieves one of the tenant's indicators by id
func (r *threatIndicatorRepository) GetByID(ctx context.Context, tc *tenant.Context, id string) (*models.ThreatIndicator, error) {
	return r.scoped.FindOneWithAccess(ctx, tc, id)
}

// GetAll retrieves the tenant's indicators newest-first with pagination
func (r *threatIndicatorRepository) GetAll(ctx context.Context, tc *tenant.Context, limit, offset int) ([]*models.ThreatIndicator, error) {
	q, err := r.scoped.TenantQuery(ctx, tc)
	if err != nil {
		return nil, err
	}

	var indicators []*models.ThreatIndicator
	err = q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&indicators).Error
	return indicators, err
}

// GetByType retrieves the tenant's indicators of a given type
func (r *threatIndicatorRepository) GetByType(ctx context.Context, tc *tenant.Context, indicatorType string) ([]*models.ThreatIndicator, error) {
	return r.scoped.FindBy(ctx, tc, "type = ?", indicatorType)
}

// FindByValue retrieves the tenant's indicators matching an observable value
func (r *threatIndicatorRepository) FindByValue(ctx context.Context, tc *tenant.Context, value string) ([]*models.ThreatIndicator, error) {
	return r.scoped.FindBy(ctx, tc, "value = ?", value)
}

// Update updates one of the tenant's indicators
func (r *threatIndicatorRepository) Update(ctx context.Context, tc *tenant.Context, indicator *models.ThreatIndicator) error {
	return r.scoped.Save(ctx, tc, indicator)
}

// Delete soft-deletes one of the tenant's indicators
func (r *threatIndicatorRepository) Delete(ctx context.Context, tc *tenant.Context, id string) error {
	rows, err := r.scoped.Delete(ctx, tc, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
