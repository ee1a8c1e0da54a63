package repositories

import (
	"context"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
)

// tenantRepository implements TenantRepository. Tenants are the isolation
// roots themselves, so lookups here are deliberately unscoped.
type tenantRepository struct {
	db *database.Connection
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *database.Connection) TenantRepository {
	return &tenantRepository{db: db}
}

// FindBySubdomain retrieves a tenant by its subdomain label
func (r *tenantRepository) FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	var t models.Tenant
	err := r.db.WithContext(ctx).First(&t, "subdomain = ?", subdomain).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByDomain retrieves a tenant by exact custom domain match
func (r *tenantRepository) FindByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	var t models.Tenant
	err := r.db.WithContext(ctx).First(&t, "custom_domain = ?", domain).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTenantByID retrieves a tenant by id
func (r *tenantRepository) GetTenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create creates a new tenant
func (r *tenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Update updates an existing tenant
func (r *tenantRepository) Update(ctx context.Context, t *models.Tenant) error {
	return r.db.WithContext(ctx).Save(t).Error
}
