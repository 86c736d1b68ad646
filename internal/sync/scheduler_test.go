package sync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

type fakePublishResult struct {
	id  string
	err error
}

func (r *fakePublishResult) Get(context.Context) (string, error) { return r.id, r.err }

// fakePublisher records messages and can fail specific item IDs.
type fakePublisher struct {
	messages []*gcppubsub.Message
	failFor  map[uuid.UUID]error
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) PublishResult {
	p.messages = append(p.messages, msg)
	var payload TaskPayload
	if err := json.Unmarshal(msg.Data, &payload); err == nil {
		if failErr, ok := p.failFor[payload.ItemID]; ok {
			return &fakePublishResult{err: failErr}
		}
	}
	return &fakePublishResult{id: uuid.NewString()}
}

func TestSyncAllItems_EnqueuesEveryItem(t *testing.T) {
	ownerID := uuid.New()
	first := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1"}
	second := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-2"}
	other := &models.InventoryItem{ID: uuid.New(), OwnerID: uuid.New(), SKU: "SKU-3"}

	publisher := &fakePublisher{}
	scheduler, err := NewScheduler(newFakeInventoryRepo(first, second, other), publisher, testLogger())
	require.NoError(t, err)

	result, err := scheduler.SyncAllItems(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Enqueued)
	assert.Zero(t, result.Failed)
	require.Len(t, publisher.messages, 2)

	seen := map[uuid.UUID]bool{}
	for _, msg := range publisher.messages {
		var payload TaskPayload
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, ownerID, payload.OwnerID)
		assert.Equal(t, TriggerBulk, payload.Trigger)
		assert.NotEqual(t, uuid.Nil, payload.TaskID)
		assert.Equal(t, string(TriggerBulk), msg.Attributes[taskAttrTrigger])
		seen[payload.ItemID] = true
	}
	assert.True(t, seen[first.ID])
	assert.True(t, seen[second.ID])
}

func TestSyncAllItems_CountsPublishFailuresAndContinues(t *testing.T) {
	ownerID := uuid.New()
	good := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1"}
	bad := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-2"}

	publisher := &fakePublisher{failFor: map[uuid.UUID]error{bad.ID: errors.New("pubsub down")}}
	scheduler, err := NewScheduler(newFakeInventoryRepo(good, bad), publisher, testLogger())
	require.NoError(t, err)

	result, err := scheduler.SyncAllItems(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Enqueued)
	assert.Equal(t, 1, result.Failed)
}

func TestSyncAllItems_RequiresOwner(t *testing.T) {
	scheduler, err := NewScheduler(newFakeInventoryRepo(), &fakePublisher{}, testLogger())
	require.NoError(t, err)

	_, err = scheduler.SyncAllItems(context.Background(), uuid.Nil)
	require.Error(t, err)
}

func TestEnqueueItem_CarriesTrigger(t *testing.T) {
	ownerID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1", SyncStatus: enums.SyncStatusSynced}

	publisher := &fakePublisher{}
	scheduler, err := NewScheduler(newFakeInventoryRepo(item), publisher, testLogger())
	require.NoError(t, err)

	require.NoError(t, scheduler.EnqueueItem(context.Background(), ownerID, item.ID, TriggerOrder))
	require.Len(t, publisher.messages, 1)

	var payload TaskPayload
	require.NoError(t, json.Unmarshal(publisher.messages[0].Data, &payload))
	assert.Equal(t, TriggerOrder, payload.Trigger)
	assert.Equal(t, item.ID, payload.ItemID)
}
