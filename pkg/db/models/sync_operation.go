package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// SyncOperation is the auditable record of one sync attempt against the
// connected platforms. Status is finalized to completed or failed exactly once.
type SyncOperation struct {
	ID              uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID          uuid.UUID                 `gorm:"column:item_id;type:uuid;not null;index" json:"itemId"`
	Action          enums.SyncAction          `gorm:"column:action;not null" json:"action"`
	TargetPlatforms PlatformList              `gorm:"column:target_platforms;type:jsonb;serializer:json" json:"targetPlatforms"`
	Status          enums.SyncOperationStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	Error           *string                   `gorm:"column:error" json:"error,omitempty"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	CompletedAt     *time.Time                `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

// PlatformList is a jsonb-persisted set of platform names.
type PlatformList []enums.Platform
