package sync

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/idempotency"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
)

const syncTaskConsumer = "sync-worker"

// Consumer drains the sync task subscription and runs one pass per task.
type Consumer struct {
	service      Service
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a sync task consumer.
func NewConsumer(service Service, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("sync service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("sync subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"trigger":    msg.Attributes[taskAttrTrigger],
	})

	var task TaskPayload
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		c.logg.Error(logCtx, "failed to decode sync task", err)
		return processResult{ack: true}
	}
	if task.TaskID == uuid.Nil || task.OwnerID == uuid.Nil || task.ItemID == uuid.Nil {
		c.logg.Error(logCtx, "sync task missing ids", nil)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithItemID(c.logg.WithOwnerID(logCtx, task.OwnerID.String()), task.ItemID.String())

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, syncTaskConsumer, task.TaskID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "task already processed")
		return processResult{ack: true}
	}

	trigger := task.Trigger
	if trigger == "" {
		trigger = TriggerBulk
	}

	if _, err := c.service.SyncItemFor(ctx, task.OwnerID, task.ItemID, trigger); err != nil {
		switch {
		case pkgerrors.IsLocked(err):
			// Another pass holds the item. The bulk cycle will come back
			// around; redelivering now would just hammer the lock.
			c.logg.Info(logCtx, "item locked, skipping task")
			return processResult{ack: true}
		case pkgerrors.IsNotFound(err):
			c.logg.Warn(logCtx, "item gone, dropping task")
			return processResult{ack: true}
		default:
			c.logg.Error(logCtx, "sync pass failed", err)
			_ = c.idempotency.Delete(ctx, syncTaskConsumer, task.TaskID)
			return processResult{nack: true}
		}
	}

	return processResult{ack: true}
}
