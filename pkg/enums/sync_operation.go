package enums

import "fmt"

// SyncAction describes what a sync operation pushes to the platforms.
type SyncAction string

const (
	SyncActionUpdateQuantity SyncAction = "update_quantity"
	SyncActionUpdatePrice    SyncAction = "update_price"
	SyncActionCreateListing  SyncAction = "create_listing"
	SyncActionDeleteListing  SyncAction = "delete_listing"
)

var validSyncActions = []SyncAction{
	SyncActionUpdateQuantity,
	SyncActionUpdatePrice,
	SyncActionCreateListing,
	SyncActionDeleteListing,
}

// IsValid reports whether the value matches the canonical sync action enum.
func (a SyncAction) IsValid() bool {
	for _, candidate := range validSyncActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// SyncOperationStatus tracks the lifecycle of one sync attempt. Operations
// transition pending -> processing -> completed|failed and are finalized once.
type SyncOperationStatus string

const (
	SyncOperationPending    SyncOperationStatus = "pending"
	SyncOperationProcessing SyncOperationStatus = "processing"
	SyncOperationCompleted  SyncOperationStatus = "completed"
	SyncOperationFailed     SyncOperationStatus = "failed"
)

var validSyncOperationStatuses = []SyncOperationStatus{
	SyncOperationPending,
	SyncOperationProcessing,
	SyncOperationCompleted,
	SyncOperationFailed,
}

// IsValid reports whether the value matches the canonical operation status enum.
func (s SyncOperationStatus) IsValid() bool {
	for _, candidate := range validSyncOperationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the operation lifecycle.
func (s SyncOperationStatus) IsTerminal() bool {
	return s == SyncOperationCompleted || s == SyncOperationFailed
}

// ParseSyncOperationStatus converts the raw string to SyncOperationStatus.
func ParseSyncOperationStatus(value string) (SyncOperationStatus, error) {
	for _, candidate := range validSyncOperationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync operation status %q", value)
}
