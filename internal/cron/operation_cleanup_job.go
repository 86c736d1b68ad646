package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/lukehargrove/channelstock-backend/pkg/logger"
)

const operationRetentionDays = 30

type operationCleanupRepo interface {
	DeleteTerminalOperationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OperationCleanupJobParams configure the sync operation retention sweep.
type OperationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository operationCleanupRepo
	Retention  int
}

// NewOperationCleanupJob builds the job that prunes old terminal sync
// operations. Open conflicts and pending operations are never touched.
func NewOperationCleanupJob(params OperationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("sync repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = operationRetentionDays
	}
	return &operationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type operationCleanupJob struct {
	logg      *logger.Logger
	repo      operationCleanupRepo
	retention int
	now       func() time.Time
}

func (j *operationCleanupJob) Name() string { return "sync-operation-cleanup" }

func (j *operationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteTerminalOperationsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("operation cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "operation cleanup complete")
	return nil
}
