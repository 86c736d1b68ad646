package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// Notification stores owner-scoped alerts (oversold, unresolved conflict).
// Writes are fire-and-forget from the engine's perspective.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID   uuid.UUID              `gorm:"column:owner_id;type:uuid;not null;index" json:"ownerId"`
	Type      enums.NotificationType `gorm:"column:type;not null" json:"type"`
	Title     string                 `gorm:"column:title;type:text;not null" json:"title"`
	Message   string                 `gorm:"column:message;type:text;not null" json:"message"`
	Details   map[string]any         `gorm:"column:details;type:jsonb;serializer:json" json:"details,omitempty"`
	ReadAt    *time.Time             `gorm:"column:read_at" json:"readAt,omitempty"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
