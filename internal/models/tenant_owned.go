package models

// TenantOwned marks entities that carry a tenant foreign key. The scoped
// repository filters and stamps only entities implementing this interface;
// the capability is decided at compile time rather than by column
// introspection.
type TenantOwned interface {
	GetTenantID() string
	SetTenantID(id string)
}

// TenantOwnership embeds the mandatory tenant foreign key plus optional
// actor attribution into tenant-owned entities
type TenantOwnership struct {
	TenantID  string `json:"tenant_id" gorm:"type:uuid;not null;index" validate:"required"`
	CreatedBy string `json:"created_by,omitempty" gorm:"type:uuid"`
	UpdatedBy string `json:"updated_by,omitempty" gorm:"type:uuid"`
}

// GetTenantID returns the owning tenant id
func (o *TenantOwnership) GetTenantID() string {
	return o.TenantID
}

// SetTenantID sets the owning tenant id
func (o *TenantOwnership) SetTenantID(id string) {
	o.TenantID = id
}
