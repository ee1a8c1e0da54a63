package database

import (
	"nodeguard-platform/internal/models"
)

// Migrator handles database migrations
type Migrator struct {
	db *Connection
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *Connection) *Migrator {
	return &Migrator{db: db}
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	return m.db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Workflow{},
		&models.WorkflowExecution{},
		&models.Incident{},
		&models.ThreatIndicator{},
		&models.AuditLog{},
	)
}

// Down rolls back all migrations (for testing purposes)
func (m *Migrator) Down() error {
	return m.db.Migrator().DropTable(
		&models.AuditLog{},
		&models.ThreatIndicator{},
		&models.Incident{},
		&models.WorkflowExecution{},
		&models.Workflow{},
		&models.User{},
		&models.Tenant{},
	)
}
