package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// OrderLineItem is the normalized {sku, quantity} pair extracted from a
// platform payload by the per-platform adapter.
type OrderLineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Order is the immutable audit record of a platform-reported sale. The engine
// appends it for traceability and never mutates it.
type Order struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID         uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index" json:"ownerId"`
	Platform        enums.Platform  `gorm:"column:platform;not null" json:"platform"`
	PlatformOrderID string          `gorm:"column:platform_order_id;not null" json:"platformOrderId"`
	LineItems       []OrderLineItem `gorm:"column:line_items;type:jsonb;serializer:json" json:"lineItems"`
	RawPayload      []byte          `gorm:"column:raw_payload;type:jsonb" json:"-"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
