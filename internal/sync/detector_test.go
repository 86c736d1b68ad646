package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

func states(quantities map[enums.Platform]int) []PlatformState {
	now := time.Now().UTC()
	out := make([]PlatformState, 0, len(quantities))
	for _, platform := range []enums.Platform{
		enums.PlatformEtsy,
		enums.PlatformAmazon,
		enums.PlatformEbay,
		enums.PlatformShopify,
	} {
		if qty, ok := quantities[platform]; ok {
			out = append(out, PlatformState{Platform: platform, Quantity: qty, LastUpdated: now})
		}
	}
	return out
}

func TestDetect_AllEqualNoConflict(t *testing.T) {
	detector := NewDetector()
	conflict := detector.Detect(10, states(map[enums.Platform]int{
		enums.PlatformEtsy:    10,
		enums.PlatformAmazon:  10,
		enums.PlatformShopify: 10,
	}))
	assert.Nil(t, conflict)
}

func TestDetect_MismatchProducesOneConflict(t *testing.T) {
	detector := NewDetector()
	conflict := detector.Detect(10, states(map[enums.Platform]int{
		enums.PlatformEtsy:    10,
		enums.PlatformShopify: 8,
	}))
	require.NotNil(t, conflict)
	assert.Equal(t, enums.ConflictTypeQuantityMismatch, conflict.Type)
	assert.Equal(t, enums.ConflictResolutionUseLowest, conflict.SuggestedResolution)
	assert.True(t, conflict.AutoResolvable)
	assert.Len(t, conflict.States, 2)
}

func TestDetect_FewerThanTwoStates(t *testing.T) {
	detector := NewDetector()
	assert.Nil(t, detector.Detect(5, nil))
	assert.Nil(t, detector.Detect(5, states(map[enums.Platform]int{enums.PlatformEtsy: 3})))
}

func TestDetect_AllZeroWithStockFlagsSoldOut(t *testing.T) {
	detector := NewDetector()
	conflict := detector.Detect(7, states(map[enums.Platform]int{
		enums.PlatformEtsy:    0,
		enums.PlatformShopify: 0,
	}))
	require.NotNil(t, conflict)
	assert.Equal(t, enums.ConflictTypeSoldOut, conflict.Type)
	assert.False(t, conflict.AutoResolvable)
	assert.Equal(t, enums.ConflictResolutionManualReview, conflict.SuggestedResolution)
}

func TestDetect_AllZeroWithoutStockIsClean(t *testing.T) {
	detector := NewDetector()
	conflict := detector.Detect(0, states(map[enums.Platform]int{
		enums.PlatformEtsy:    0,
		enums.PlatformShopify: 0,
	}))
	assert.Nil(t, conflict)
}

func TestSnapshotsCarryReportedQuantities(t *testing.T) {
	detector := NewDetector()
	conflict := detector.Detect(10, states(map[enums.Platform]int{
		enums.PlatformEtsy: 10,
		enums.PlatformEbay: 4,
	}))
	require.NotNil(t, conflict)

	snapshots := conflict.Snapshots()
	require.Len(t, snapshots, 2)
	byPlatform := map[enums.Platform]int{}
	for _, snap := range snapshots {
		byPlatform[snap.Platform] = snap.Quantity
	}
	assert.Equal(t, 10, byPlatform[enums.PlatformEtsy])
	assert.Equal(t, 4, byPlatform[enums.PlatformEbay])
}
