package sync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

func setupSyncTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  title TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  reserved INTEGER NOT NULL DEFAULT 0,
  sync_status TEXT NOT NULL DEFAULT 'synced',
  last_synced_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	operations := `
CREATE TABLE IF NOT EXISTS sync_operations (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  action TEXT NOT NULL,
  target_platforms TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  error TEXT,
  created_at DATETIME,
  completed_at DATETIME
);`
	conflicts := `
CREATE TABLE IF NOT EXISTS sync_conflicts (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  conflict_type TEXT NOT NULL,
  platforms TEXT,
  suggested_resolution TEXT NOT NULL,
  auto_resolvable INTEGER NOT NULL DEFAULT 0,
  resolved_at DATETIME,
  created_at DATETIME
);`
	for _, stmt := range []string{items, operations, conflicts} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedOwnedItem(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		SKU:        "SKU-" + uuid.NewString()[:8],
		Title:      "Test item",
		Quantity:   5,
		SyncStatus: enums.SyncStatusSynced,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedConflict(t *testing.T, db *gorm.DB, itemID uuid.UUID, createdAt time.Time, resolved bool) *models.SyncConflict {
	t.Helper()
	conflict := &models.SyncConflict{
		ID:           uuid.New(),
		ItemID:       itemID,
		ConflictType: enums.ConflictTypeSoldOut,
		Platforms: []models.ConflictPlatformSnapshot{
			{Platform: enums.PlatformEtsy, Quantity: 0, LastUpdated: createdAt},
		},
		SuggestedResolution: enums.ConflictResolutionManualReview,
	}
	if resolved {
		conflict.ResolvedAt = nowPtr(createdAt)
	}
	require.NoError(t, db.Create(conflict).Error)
	require.NoError(t, db.Model(&models.SyncConflict{}).
		Where("id = ?", conflict.ID).
		UpdateColumn("created_at", createdAt).Error)
	conflict.CreatedAt = createdAt
	return conflict
}

func TestOperationLifecycle(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	op, err := repo.CreateOperation(ctx, &models.SyncOperation{
		ID:              uuid.New(),
		ItemID:          uuid.New(),
		Action:          enums.SyncActionUpdateQuantity,
		TargetPlatforms: models.PlatformList{enums.PlatformEtsy, enums.PlatformShopify},
		Status:          enums.SyncOperationProcessing,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateOperation(ctx, op.ID, map[string]any{
		"status":       enums.SyncOperationCompleted,
		"completed_at": now,
	}))

	found, err := repo.FindOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SyncOperationCompleted, found.Status)
	require.NotNil(t, found.CompletedAt)
	assert.Equal(t, models.PlatformList{enums.PlatformEtsy, enums.PlatformShopify}, found.TargetPlatforms)
}

func TestListOpenConflicts_ScopesAndPaginates(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	item := seedOwnedItem(t, db, owner)
	otherItem := seedOwnedItem(t, db, uuid.New())

	base := time.Now().UTC().Add(-time.Hour)
	first := seedConflict(t, db, item.ID, base, false)
	second := seedConflict(t, db, item.ID, base.Add(time.Minute), false)
	third := seedConflict(t, db, item.ID, base.Add(2*time.Minute), false)
	seedConflict(t, db, item.ID, base.Add(3*time.Minute), true)
	seedConflict(t, db, otherItem.ID, base.Add(4*time.Minute), false)

	page, cursor, err := repo.ListOpenConflicts(ctx, listConflictsParams{OwnerID: owner, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, third.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)
	require.NotNil(t, cursor)

	rest, next, err := repo.ListOpenConflicts(ctx, listConflictsParams{OwnerID: owner, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, first.ID, rest[0].ID)
	assert.Nil(t, next)
}

func TestDeleteTerminalOperationsBefore(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	seedOperation := func(status enums.SyncOperationStatus, createdAt time.Time) uuid.UUID {
		op := &models.SyncOperation{
			ID:     uuid.New(),
			ItemID: uuid.New(),
			Action: enums.SyncActionUpdateQuantity,
			Status: status,
		}
		require.NoError(t, db.Create(op).Error)
		require.NoError(t, db.Model(&models.SyncOperation{}).
			Where("id = ?", op.ID).
			UpdateColumn("created_at", createdAt).Error)
		return op.ID
	}

	oldCompleted := seedOperation(enums.SyncOperationCompleted, cutoff.Add(-time.Hour))
	oldFailed := seedOperation(enums.SyncOperationFailed, cutoff.Add(-time.Hour))
	oldPending := seedOperation(enums.SyncOperationPending, cutoff.Add(-time.Hour))
	recentCompleted := seedOperation(enums.SyncOperationCompleted, cutoff.Add(time.Hour))

	deleted, err := repo.DeleteTerminalOperationsBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	for _, id := range []uuid.UUID{oldCompleted, oldFailed} {
		_, err := repo.FindOperation(ctx, id)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}
	for _, id := range []uuid.UUID{oldPending, recentCompleted} {
		_, err := repo.FindOperation(ctx, id)
		assert.NoError(t, err)
	}
}
