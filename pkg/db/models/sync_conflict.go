package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// ConflictPlatformSnapshot freezes one platform's reported state at detection
// time so reviewers see what actually disagreed.
type ConflictPlatformSnapshot struct {
	Platform    enums.Platform `json:"platform"`
	Quantity    int            `json:"quantity"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// SyncConflict records a detected disagreement between platform quantities.
// Auto-resolvable conflicts are consumed in-pass and never persisted; rows in
// this table are the manual review queue.
type SyncConflict struct {
	ID                  uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID              uuid.UUID                  `gorm:"column:item_id;type:uuid;not null;index" json:"itemId"`
	ConflictType        enums.ConflictType         `gorm:"column:conflict_type;not null" json:"conflictType"`
	Platforms           []ConflictPlatformSnapshot `gorm:"column:platforms;type:jsonb;serializer:json" json:"platforms"`
	SuggestedResolution enums.ConflictResolution   `gorm:"column:suggested_resolution;not null" json:"suggestedResolution"`
	AutoResolvable      bool                       `gorm:"column:auto_resolvable;not null;default:false" json:"autoResolvable"`
	ResolvedAt          *time.Time                 `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt           time.Time                  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
