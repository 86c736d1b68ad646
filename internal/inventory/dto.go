package inventory

import (
	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// ListParams configures the owner-scoped item listing.
type ListParams struct {
	OwnerID uuid.UUID
	Limit   int
	Cursor  string
	Status  enums.SyncStatus
}

// ListResult wraps returned items and the cursor for the next page.
type ListResult struct {
	Items  []ItemView `json:"items"`
	Cursor string     `json:"cursor"`
}

// ItemView is the API shape for one item, with the derived available count.
type ItemView struct {
	models.InventoryItem
	Available int `json:"available"`
}

// UpdateItemParams carries a partial update. Nil fields are left untouched.
type UpdateItemParams struct {
	OwnerID  uuid.UUID
	ItemID   uuid.UUID
	Title    *string
	Quantity *int
	Reserved *int
}

// CreateItemParams carries the fields needed to register a new item.
type CreateItemParams struct {
	OwnerID   uuid.UUID
	SKU       string
	Title     string
	Quantity  int
	Platforms []CreateItemPlatform
}

// CreateItemPlatform declares one channel listing for a new item.
type CreateItemPlatform struct {
	Platform   enums.Platform
	PlatformID string
	Quantity   int
}

func viewOf(item models.InventoryItem) ItemView {
	return ItemView{
		InventoryItem: item,
		Available:     item.Available(),
	}
}
