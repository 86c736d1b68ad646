package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

// Repository exposes persistence helpers for inventory items and their
// per-platform listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	FindItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.InventoryItem, error)
	FindItemByID(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
	FindItemBySKU(ctx context.Context, ownerID uuid.UUID, sku string) (*models.InventoryItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	UpdatePlatformState(ctx context.Context, itemID uuid.UUID, platform enums.Platform, quantity int, now time.Time) error
	List(ctx context.Context, params ListQuery) ([]models.InventoryItem, *pagination.Cursor, error)
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.InventoryItem, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListQuery is the repository-level shape of one item listing page.
type ListQuery struct {
	OwnerID uuid.UUID
	Limit   int
	Cursor  *pagination.Cursor
	Status  enums.SyncStatus
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repositoryImpl) FindItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Platforms").
		Where("id = ? AND owner_id = ?", itemID, ownerID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) FindItemByID(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Platforms").
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) FindItemBySKU(ctx context.Context, ownerID uuid.UUID, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Platforms").
		Where("owner_id = ? AND sku = ?", ownerID, sku).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repositoryImpl) UpdatePlatformState(ctx context.Context, itemID uuid.UUID, platform enums.Platform, quantity int, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PlatformInventory{}).
		Where("item_id = ? AND platform = ?", itemID, platform).
		Updates(map[string]any{
			"quantity":     quantity,
			"last_updated": now,
		}).Error
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.InventoryItem, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Preload("Platforms").
		Where("owner_id = ?", params.OwnerID)
	if params.Status != "" {
		query = query.Where("sync_status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) <= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.InventoryItem
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > normalized {
		next := items[normalized]
		items = items[:normalized]
		return items, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return items, nil, nil
}

func (r *repositoryImpl) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.InventoryItem, error) {
	// Rows stuck in syncing are zombies once their last touch predates the
	// cutoff: the pass that marked them died and its lock has long expired.
	query := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("sync_status <> ? OR updated_at < ?", enums.SyncStatusSyncing, cutoff).
		Where("last_synced_at IS NULL OR last_synced_at < ?", cutoff).
		Order("last_synced_at ASC NULLS FIRST")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
