package sync

import (
	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
)

// Trigger labels what started a sync pass, for metrics and log context.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerOrder  Trigger = "order"
	TriggerBulk   Trigger = "bulk"
)

// TaskPayload is the wire shape of one queued sync task.
type TaskPayload struct {
	TaskID  uuid.UUID `json:"taskId"`
	OwnerID uuid.UUID `json:"ownerId"`
	ItemID  uuid.UUID `json:"itemId"`
	Trigger Trigger   `json:"trigger"`
}

// EnqueueResult summarizes one bulk scheduling run.
type EnqueueResult struct {
	Enqueued int `json:"enqueued"`
	Failed   int `json:"failed"`
}

// ConflictListParams configures the owner-scoped open-conflict listing.
type ConflictListParams struct {
	OwnerID uuid.UUID
	Limit   int
	Cursor  string
}

// ConflictListResult wraps open conflicts and the next-page cursor.
type ConflictListResult struct {
	Conflicts []models.SyncConflict `json:"conflicts"`
	Cursor    string                `json:"cursor"`
}
