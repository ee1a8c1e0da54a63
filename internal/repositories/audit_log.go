package repositories

import (
	"context"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// auditLogRepository implements AuditLogRepository
type auditLogRepository struct {
	scoped *ScopedRepository[models.AuditLog]
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *database.Connection) AuditLogRepository {
	return &auditLogRepository{
		scoped: NewScopedRepository[models.AuditLog](db),
	}
}

// Create records an audit entry for the context's tenant
func (r *auditLogRepository) Create(ctx context.Context, tc *tenant.Context, entry *models.AuditLog) error {
	return r.scoped.Create(ctx, tc, entry)
}

// GetByResource retrieves the tenant's audit trail for one resource
func (r *auditLogRepository) GetByResource(ctx context.Context, tc *tenant.Context, resourceType, resourceID string, limit int) ([]*models.AuditLog, error) {
	q, err := r.scoped.TenantQuery(ctx, tc)
	if err != nil {
		return nil, err
	}

	var entries []*models.AuditLog
	err = q.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// GetRecent retrieves the tenant's most recent audit entries
func (r *auditLogRepository) GetRecent(ctx context.Context, tc *tenant.Context, limit int) ([]*models.AuditLog, error) {
	q, err := r.scoped.TenantQuery(ctx, tc)
	if err != nil {
		return nil, err
	}

	var entries []*models.AuditLog
	err = q.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
