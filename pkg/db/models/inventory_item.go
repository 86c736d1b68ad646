package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// InventoryItem is the authoritative record for one SKU owned by one seller.
// Quantity is ground truth between sync passes; Available is always derived.
type InventoryItem struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID      uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index:idx_items_owner_sku,unique" json:"ownerId"`
	SKU          string              `gorm:"column:sku;not null;index:idx_items_owner_sku,unique" json:"sku"`
	Title        string              `gorm:"column:title;not null" json:"title"`
	Quantity     int                 `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Reserved     int                 `gorm:"column:reserved;not null;default:0" json:"reserved"`
	SyncStatus   enums.SyncStatus    `gorm:"column:sync_status;not null;default:'synced'" json:"syncStatus"`
	LastSyncedAt *time.Time          `gorm:"column:last_synced_at" json:"lastSyncedAt,omitempty"`
	Platforms    []PlatformInventory `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"platforms,omitempty"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// Available returns the sellable count. Never persisted independently.
func (i InventoryItem) Available() int {
	available := i.Quantity - i.Reserved
	if available < 0 {
		return 0
	}
	return available
}

// EnabledPlatforms filters the connected channels down to those participating
// in sync passes.
func (i InventoryItem) EnabledPlatforms() []PlatformInventory {
	enabled := make([]PlatformInventory, 0, len(i.Platforms))
	for _, p := range i.Platforms {
		if p.SyncEnabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// PlatformInventory is one channel's last-known view of an item.
type PlatformInventory struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID      uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index:idx_platform_inventory_item,unique" json:"itemId"`
	Platform    enums.Platform  `gorm:"column:platform;not null;index:idx_platform_inventory_item,unique" json:"platform"`
	PlatformID  string          `gorm:"column:platform_id;not null" json:"platformId"`
	Quantity    int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2)" json:"price"`
	SyncEnabled bool            `gorm:"column:sync_enabled;not null;default:true" json:"syncEnabled"`
	LastUpdated time.Time       `gorm:"column:last_updated;autoUpdateTime" json:"lastUpdated"`
}

// TableName keeps the plural snake_case convention.
func (PlatformInventory) TableName() string {
	return "platform_inventory"
}
