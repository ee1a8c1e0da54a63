package repositories

import (
	"context"
	"errors"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"

	"gorm.io/gorm"
)

// ErrTenantMismatch is returned when an entity carries an explicit tenant id
// different from the active context. Accepting it would let a caller move
// rows across the tenant boundary, so the write is rejected outright.
var ErrTenantMismatch = errors.New("entity tenant id does not match tenant context")

// ScopedRepository wraps a GORM-backed entity collection so every operation
// is transparently tenant-filtered. Tenant-ownership is decided once at
// construction: entity types implementing models.TenantOwned are scoped,
// everything else passes through unfiltered.
//
// Every method takes the tenant context explicitly. There is no ambient
// request-scoped state; the isolation invariant is testable without a web
// framework.
type ScopedRepository[T any] struct {
	db    *database.Connection
	owned bool
}

// NewScopedRepository creates a tenant-scoped repository for entity type T
func NewScopedRepository[T any](db *database.Connection) *ScopedRepository[T] {
	var probe T
	_, owned := any(&probe).(models.TenantOwned)
	return &ScopedRepository[T]{db: db, owned: owned}
}

// TenantOwned reports whether T carries a tenant foreign key
func (r *ScopedRepository[T]) TenantOwned() bool {
	return r.owned
}

// scope returns a query with the tenant predicate applied. For owned entity
// types a missing tenant context is a hard failure, never an unfiltered
// query.
func (r *ScopedRepository[T]) scope(ctx context.Context, tc *tenant.Context) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if !r.owned {
		return q, nil
	}
	if !tc.Valid() {
		return nil, tenant.ErrNoTenantContext
	}
	return q.Where("tenant_id = ?", tc.TenantID), nil
}

// Find retrieves all of the tenant's rows
func (r *ScopedRepository[T]) Find(ctx context.Context, tc *tenant.Context) ([]*T, error) {
	q, err := r.scope(ctx, tc)
	if err != nil {
		return nil, err
	}

	var entities []*T
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindBy retrieves the tenant's rows matching a caller-supplied condition.
// The condition is ANDed with the tenant predicate; it can narrow the result
// set but never widen it past the tenant boundary.
func (r *ScopedRepository[T]) FindBy(ctx context.Context, tc *tenant.Context, query interface{}, args ...interface{}) ([]*T, error) {
	q, err := r.scope(ctx, tc)
	if err != nil {
		return nil, err
	}

	var entities []*T
	if err := q.Where(query, args...).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindOneBy retrieves the first of the tenant's rows matching a condition
func (r *ScopedRepository[T]) FindOneBy(ctx context.Context, tc *tenant.Context, query interface{}, args ...interface{}) (*T, error) {
	q, err := r.scope(ctx, tc)
	if err != nil {
		return nil, err
	}

	var entity T
	if err := q.Where(query, args...).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindByID retrieves one of the tenant's rows by primary key. A row owned by
// another tenant is indistinguishable from a missing row.
func (r *ScopedRepository[T]) FindByID(ctx context.Context, tc *tenant.Context, id string) (*T, error) {
	return r.FindOneBy(ctx, tc, "id = ?", id)
}

// Count counts the tenant's rows matching an optional condition
func (r *ScopedRepository[T]) Count(ctx context.Context, tc *tenant.Context, query interface{}, args ...interface{}) (int64, error) {
	q, err := r.scope(ctx, tc)
	if err != nil {
		return 0, err
	}

	if query != nil {
		q = q.Where(query, args...)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// stamp fills the entity's tenant id from the context, rejecting an explicit
// id that names a different tenant.
func (r *ScopedRepository[T]) stamp(tc *tenant.Context, entity *T) error {
	if !r.owned {
		return nil
	}
	if !tc.Valid() {
		return tenant.ErrNoTenantContext
	}

	owned := any(entity).(models.TenantOwned)
	switch owned.GetTenantID() {
	case "":
		owned.SetTenantID(tc.TenantID)
	case tc.TenantID:
		// already stamped with the right tenant
	default:
		return ErrTenantMismatch
	}
	return nil
}

// Create persists a new entity, stamping the tenant id from the context when
// the entity does not yet carry one
func (r *ScopedRepository[T]) Create(ctx context.Context, tc *tenant.Context, entity *T) error {
	if err := r.stamp(tc, entity); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(entity).Error
}

// Save persists an entity. The tenant id is stamped for new entities and
// verified for existing ones; a save can never move a row across tenants.
func (r *ScopedRepository[T]) Save(ctx context.Context, tc *tenant.Context, entity *T) error {
	if err := r.stamp(tc, entity); err != nil {
		return err
	}

	q := r.db.WithContext(ctx)
	if r.owned {
		// The update's WHERE clause carries the tenant predicate: a save
		// keyed to another tenant's row matches nothing instead of
		// overwriting it.
		q = q.Where("tenant_id = ?", tc.TenantID)
	}
	return q.Save(entity).Error
}

// Delete soft-deletes one of the tenant's rows by primary key
func (r *ScopedRepository[T]) Delete(ctx context.Context, tc *tenant.Context, id string) (int64, error) {
	q, err := r.scope(ctx, tc)
	if err != nil {
		return 0, err
	}

	result := q.Where("id = ?", id).Delete(new(T))
	return result.RowsAffected, result.Error
}

// TenantQuery returns a query builder pre-seeded with the tenant predicate
// for callers needing custom composition. Additional conditions must be
// ANDed to preserve isolation.
func (r *ScopedRepository[T]) TenantQuery(ctx context.Context, tc *tenant.Context) (*gorm.DB, error) {
	return r.scope(ctx, tc)
}

// CanAccess reports whether an entity belongs to the context's tenant.
// Non-owned entity types are always accessible.
func (r *ScopedRepository[T]) CanAccess(tc *tenant.Context, entity *T) bool {
	if !r.owned {
		return true
	}
	if !tc.Valid() {
		return false
	}
	return any(entity).(models.TenantOwned).GetTenantID() == tc.TenantID
}

// FindOneWithAccess fetches by id and re-validates ownership. Ownership
// failure surfaces as gorm.ErrRecordNotFound, never as a distinct forbidden
// error, to avoid leaking the existence of other tenants' records.
func (r *ScopedRepository[T]) FindOneWithAccess(ctx context.Context, tc *tenant.Context, id string) (*T, error) {
	entity, err := r.FindByID(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if !r.CanAccess(tc, entity) {
		return nil, gorm.ErrRecordNotFound
	}
	return entity, nil
}
