package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/tenant"
)

// caseNote is a minimal tenant-owned entity for exercising the scoped
// repository against a real database.
type caseNote struct {
	ID    string `gorm:"primaryKey"`
	Title string
	models.TenantOwnership
}

func (caseNote) TableName() string {
	return "case_notes"
}

func newTestConnection(t *testing.T) *database.Connection {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// Every :memory: connection is a separate database; pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&caseNote{}))
	return &database.Connection{DB: db}
}

func seedCaseNote(t *testing.T, conn *database.Connection, id, tenantID, title string) {
	note := &caseNote{ID: id, Title: title}
	note.TenantID = tenantID
	require.NoError(t, conn.Create(note).Error)
}

func TestTenantOwnedDetection(t *testing.T) {
	assert.True(t, NewScopedRepository[models.Workflow](nil).TenantOwned())
	assert.True(t, NewScopedRepository[models.Incident](nil).TenantOwned())
	assert.True(t, NewScopedRepository[models.ThreatIndicator](nil).TenantOwned())
	assert.True(t, NewScopedRepository[models.WorkflowExecution](nil).TenantOwned())
	assert.True(t, NewScopedRepository[models.AuditLog](nil).TenantOwned())

	// Tenants and users are platform-level rows, not tenant-owned data.
	assert.False(t, NewScopedRepository[models.Tenant](nil).TenantOwned())
}

func TestStampFillsMissingTenantID(t *testing.T) {
	repo := NewScopedRepository[models.Workflow](nil)
	tc := &tenant.Context{TenantID: "t-1"}

	w := &models.Workflow{Name: "detect exfiltration"}
	require.NoError(t, repo.stamp(tc, w))
	assert.Equal(t, "t-1", w.TenantID)
}

func TestStampAcceptsMatchingTenantID(t *testing.T) {
	repo := NewScopedRepository[models.Workflow](nil)
	tc := &tenant.Context{TenantID: "t-1"}

	w := &models.Workflow{Name: "detect exfiltration"}
	w.TenantID = "t-1"
	require.NoError(t, repo.stamp(tc, w))
	assert.Equal(t, "t-1", w.TenantID)
}

func TestStampRejectsForeignTenantID(t *testing.T) {
	repo := NewScopedRepository[models.Workflow](nil)
	tc := &tenant.Context{TenantID: "t-1"}

	w := &models.Workflow{Name: "detect exfiltration"}
	w.TenantID = "t-2"
	err := repo.stamp(tc, w)
	assert.ErrorIs(t, err, ErrTenantMismatch)

	// The entity is left untouched on rejection.
	assert.Equal(t, "t-2", w.TenantID)
}

func TestStampRequiresTenantContext(t *testing.T) {
	repo := NewScopedRepository[models.Workflow](nil)

	w := &models.Workflow{Name: "detect exfiltration"}
	assert.ErrorIs(t, repo.stamp(nil, w), tenant.ErrNoTenantContext)
	assert.ErrorIs(t, repo.stamp(&tenant.Context{}, w), tenant.ErrNoTenantContext)
}

func TestStampIgnoresUnownedTypes(t *testing.T) {
	repo := NewScopedRepository[models.Tenant](nil)

	// No tenant context needed for platform-level rows.
	assert.NoError(t, repo.stamp(nil, &models.Tenant{Name: "acme"}))
}

func TestCreateRejectsForeignTenantBeforeTouchingDatabase(t *testing.T) {
	// The nil connection proves the mismatch is rejected before any query.
	repo := NewScopedRepository[models.Workflow](nil)
	tc := &tenant.Context{TenantID: "t-1"}

	w := &models.Workflow{Name: "detect exfiltration"}
	w.TenantID = "t-2"
	err := repo.Create(context.Background(), tc, w)
	assert.ErrorIs(t, err, ErrTenantMismatch)

	err = repo.Save(context.Background(), nil, &models.Workflow{})
	assert.ErrorIs(t, err, tenant.ErrNoTenantContext)
}

func TestCanAccess(t *testing.T) {
	repo := NewScopedRepository[models.Incident](nil)
	tc := &tenant.Context{TenantID: "t-1"}

	own := &models.Incident{}
	own.TenantID = "t-1"
	assert.True(t, repo.CanAccess(tc, own))

	foreign := &models.Incident{}
	foreign.TenantID = "t-2"
	assert.False(t, repo.CanAccess(tc, foreign))

	assert.False(t, repo.CanAccess(nil, own))

	unowned := NewScopedRepository[models.Tenant](nil)
	assert.True(t, unowned.CanAccess(nil, &models.Tenant{}))
}

func TestReadsAreTenantFiltered(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)
	repo := NewScopedRepository[caseNote](conn)

	seedCaseNote(t, conn, "note-a1", "tenant-a", "lateral movement")
	seedCaseNote(t, conn, "note-a2", "tenant-a", "phishing campaign")
	seedCaseNote(t, conn, "note-b1", "tenant-b", "lateral movement")

	tcA := &tenant.Context{TenantID: "tenant-a"}

	t.Run("find returns only the tenant's rows", func(t *testing.T) {
		notes, err := repo.Find(ctx, tcA)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		for _, n := range notes {
			assert.Equal(t, "tenant-a", n.TenantID)
		}
	})

	t.Run("find by condition cannot widen past the tenant", func(t *testing.T) {
		notes, err := repo.FindBy(ctx, tcA, "title = ?", "lateral movement")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "note-a1", notes[0].ID)
	})

	t.Run("foreign row by id looks missing", func(t *testing.T) {
		_, err := repo.FindByID(ctx, tcA, "note-b1")
		assert.True(t, IsNotFound(err))
	})

	t.Run("count covers only the tenant's rows", func(t *testing.T) {
		count, err := repo.Count(ctx, tcA, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("query builder is pre-seeded with the tenant predicate", func(t *testing.T) {
		q, err := repo.TenantQuery(ctx, tcA)
		require.NoError(t, err)

		var notes []*caseNote
		require.NoError(t, q.Where("title = ?", "lateral movement").Find(&notes).Error)
		require.Len(t, notes, 1)
		assert.Equal(t, "note-a1", notes[0].ID)
	})

	t.Run("delete cannot reach a foreign row", func(t *testing.T) {
		affected, err := repo.Delete(ctx, tcA, "note-b1")
		require.NoError(t, err)
		assert.Zero(t, affected)

		var survivor caseNote
		require.NoError(t, conn.First(&survivor, "id = ?", "note-b1").Error)
		assert.Equal(t, "tenant-b", survivor.TenantID)
	})
}

func TestSaveCannotOverwriteForeignRow(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)
	repo := NewScopedRepository[caseNote](conn)

	seedCaseNote(t, conn, "note-1", "tenant-b", "original")

	// A caller under tenant A reusing tenant B's primary key: the stamp
	// fills in tenant A, and the update's tenant predicate must keep the
	// save away from B's row.
	hijack := &caseNote{ID: "note-1", Title: "hijacked"}
	err := repo.Save(ctx, &tenant.Context{TenantID: "tenant-a"}, hijack)
	assert.Error(t, err)

	var row caseNote
	require.NoError(t, conn.First(&row, "id = ?", "note-1").Error)
	assert.Equal(t, "tenant-b", row.TenantID)
	assert.Equal(t, "original", row.Title)
}

func TestSaveUpdatesOwnRow(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)
	repo := NewScopedRepository[caseNote](conn)

	seedCaseNote(t, conn, "note-1", "tenant-a", "draft")

	update := &caseNote{ID: "note-1", Title: "final"}
	require.NoError(t, repo.Save(ctx, &tenant.Context{TenantID: "tenant-a"}, update))

	var row caseNote
	require.NoError(t, conn.First(&row, "id = ?", "note-1").Error)
	assert.Equal(t, "tenant-a", row.TenantID)
	assert.Equal(t, "final", row.Title)
}

func TestSaveInsertsNewRowWithStamp(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)
	repo := NewScopedRepository[caseNote](conn)

	note := &caseNote{ID: "note-new", Title: "fresh"}
	require.NoError(t, repo.Save(ctx, &tenant.Context{TenantID: "tenant-a"}, note))

	var row caseNote
	require.NoError(t, conn.First(&row, "id = ?", "note-new").Error)
	assert.Equal(t, "tenant-a", row.TenantID)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(gorm.ErrRecordNotFound))
	assert.False(t, IsNotFound(ErrTenantMismatch))
	assert.False(t, IsNotFound(nil))
}
