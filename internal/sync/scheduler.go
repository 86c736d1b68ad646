package sync

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

const taskAttrTrigger = "trigger"

// Publisher abstracts the Pub/Sub publish call so schedulers are testable.
type Publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult
}

// PublishResult resolves to the server-assigned message ID.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
}

// NewGCPPublisher adapts a Pub/Sub v2 publisher to the Publisher interface.
func NewGCPPublisher(p *gcppubsub.Publisher) Publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}

// Scheduler enqueues sync tasks onto the work queue. It never runs passes
// itself; workers consuming the subscription do.
type Scheduler struct {
	inventory inventory.Repository
	publisher Publisher
	logg      *logger.Logger
	timeout   time.Duration
}

// NewScheduler wires the bulk scheduler.
func NewScheduler(repo inventory.Repository, publisher Publisher, logg *logger.Logger) (*Scheduler, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "task publisher required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Scheduler{
		inventory: repo,
		publisher: publisher,
		logg:      logg,
		timeout:   15 * time.Second,
	}, nil
}

// SyncAllItems enumerates the owner's items and publishes one task per item.
// A publish failure is counted and enumeration continues.
func (s *Scheduler) SyncAllItems(ctx context.Context, ownerID uuid.UUID) (*EnqueueResult, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	result := &EnqueueResult{}
	var cursor *pagination.Cursor
	for {
		items, next, err := s.inventory.List(ctx, listItemsPage(ownerID, cursor))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
		}
		for _, item := range items {
			if err := s.enqueue(ctx, ownerID, item.ID, TriggerBulk); err != nil {
				logCtx := s.logg.WithItemID(ctx, item.ID.String())
				s.logg.Error(logCtx, "failed to enqueue sync task", err)
				result.Failed++
				continue
			}
			result.Enqueued++
		}
		if next == nil {
			break
		}
		cursor = next
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"enqueued": result.Enqueued,
		"failed":   result.Failed,
	})
	s.logg.Info(logCtx, "bulk sync scheduled")
	return result, nil
}

// EnqueueItem publishes one targeted sync task.
func (s *Scheduler) EnqueueItem(ctx context.Context, ownerID, itemID uuid.UUID, trigger Trigger) error {
	if ownerID == uuid.Nil || itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner and item ids required")
	}
	return s.enqueue(ctx, ownerID, itemID, trigger)
}

func (s *Scheduler) enqueue(ctx context.Context, ownerID, itemID uuid.UUID, trigger Trigger) error {
	payload := TaskPayload{
		TaskID:  uuid.New(),
		OwnerID: ownerID,
		ItemID:  itemID,
		Trigger: trigger,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := s.publisher.Publish(publishCtx, &gcppubsub.Message{
		Data:       data,
		Attributes: map[string]string{taskAttrTrigger: string(trigger)},
	})
	if result == nil {
		return errors.New("publisher unavailable")
	}
	_, err = result.Get(publishCtx)
	return err
}

func listItemsPage(ownerID uuid.UUID, cursor *pagination.Cursor) inventory.ListQuery {
	return inventory.ListQuery{
		OwnerID: ownerID,
		Limit:   pagination.MaxLimit,
		Cursor:  cursor,
	}
}
