package sync

import (
	"time"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// PlatformState is one channel's reported quantity during a sync pass.
type PlatformState struct {
	Platform    enums.Platform
	Quantity    int
	LastUpdated time.Time
}

// Conflict is a detected disagreement, before any resolution is applied.
type Conflict struct {
	Type                enums.ConflictType
	States              []PlatformState
	SuggestedResolution enums.ConflictResolution
	AutoResolvable      bool
}

// Detector inspects the fetched platform states and reports disagreements.
type Detector struct{}

// NewDetector builds a stateless detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect compares the reported quantities. Fewer than two states can never
// disagree. A pass where every platform reports zero while the authoritative
// quantity is still positive is flagged for manual review instead of being
// auto-leveled, since it usually means simultaneous sales raced the engine.
func (d *Detector) Detect(authoritative int, states []PlatformState) *Conflict {
	if len(states) < 2 {
		return nil
	}

	allEqual := true
	allZero := true
	for _, state := range states {
		if state.Quantity != states[0].Quantity {
			allEqual = false
		}
		if state.Quantity != 0 {
			allZero = false
		}
	}

	if allZero && authoritative > 0 {
		return &Conflict{
			Type:                enums.ConflictTypeSoldOut,
			States:              states,
			SuggestedResolution: enums.ConflictResolutionManualReview,
			AutoResolvable:      false,
		}
	}

	if allEqual {
		return nil
	}

	return &Conflict{
		Type:                enums.ConflictTypeQuantityMismatch,
		States:              states,
		SuggestedResolution: enums.ConflictResolutionUseLowest,
		AutoResolvable:      true,
	}
}

// Snapshots converts the conflicting states into the persisted shape.
func (c *Conflict) Snapshots() []models.ConflictPlatformSnapshot {
	if c == nil {
		return nil
	}
	out := make([]models.ConflictPlatformSnapshot, 0, len(c.States))
	for _, state := range c.States {
		out = append(out, models.ConflictPlatformSnapshot{
			Platform:    state.Platform,
			Quantity:    state.Quantity,
			LastUpdated: state.LastUpdated,
		})
	}
	return out
}
