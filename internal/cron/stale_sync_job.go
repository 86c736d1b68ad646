package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
)

const (
	defaultStaleAfter = time.Hour
	defaultStaleBatch = 500
)

type staleItemLister interface {
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.InventoryItem, error)
}

type taskEnqueuer interface {
	EnqueueItem(ctx context.Context, ownerID, itemID uuid.UUID, trigger sync.Trigger) error
}

// StaleSyncJobParams configure the stale item sweep.
type StaleSyncJobParams struct {
	Logger     *logger.Logger
	Inventory  staleItemLister
	Scheduler  taskEnqueuer
	StaleAfter time.Duration
	BatchSize  int
}

// NewStaleSyncJob builds the job that re-enqueues items whose last sync is
// older than the staleness window.
func NewStaleSyncJob(params StaleSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	staleAfter := params.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultStaleBatch
	}
	return &staleSyncJob{
		logg:       params.Logger,
		inventory:  params.Inventory,
		scheduler:  params.Scheduler,
		staleAfter: staleAfter,
		batch:      batch,
		now:        time.Now,
	}, nil
}

type staleSyncJob struct {
	logg       *logger.Logger
	inventory  staleItemLister
	scheduler  taskEnqueuer
	staleAfter time.Duration
	batch      int
	now        func() time.Time
}

func (j *staleSyncJob) Name() string { return "stale-item-sync" }

func (j *staleSyncJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.staleAfter)
	items, err := j.inventory.ListStale(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("list stale items: %w", err)
	}

	enqueued, failed := 0, 0
	for _, item := range items {
		if err := j.scheduler.EnqueueItem(ctx, item.OwnerID, item.ID, sync.TriggerBulk); err != nil {
			logCtx := j.logg.WithItemID(ctx, item.ID.String())
			j.logg.Error(logCtx, "failed to enqueue stale item", err)
			failed++
			continue
		}
		enqueued++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"enqueued": enqueued,
		"failed":   failed,
	})
	j.logg.Info(logCtx, "stale item sweep complete")
	if failed > 0 {
		return fmt.Errorf("stale sweep: %d of %d enqueues failed", failed, enqueued+failed)
	}
	return nil
}
