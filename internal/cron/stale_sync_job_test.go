package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
)

type fakeStaleLister struct {
	items      []models.InventoryItem
	lastCutoff time.Time
	lastLimit  int
	err        error
}

func (f *fakeStaleLister) ListStale(_ context.Context, cutoff time.Time, limit int) ([]models.InventoryItem, error) {
	f.lastCutoff = cutoff
	f.lastLimit = limit
	return f.items, f.err
}

type fakeEnqueuer struct {
	calls   []uuid.UUID
	failFor map[uuid.UUID]error
}

func (f *fakeEnqueuer) EnqueueItem(_ context.Context, _ uuid.UUID, itemID uuid.UUID, trigger sync.Trigger) error {
	if trigger != sync.TriggerBulk {
		return errors.New("unexpected trigger")
	}
	f.calls = append(f.calls, itemID)
	if err, ok := f.failFor[itemID]; ok {
		return err
	}
	return nil
}

func newStaleJob(t *testing.T, lister *fakeStaleLister, enqueuer *fakeEnqueuer) *staleSyncJob {
	t.Helper()
	jobIface, err := NewStaleSyncJob(StaleSyncJobParams{
		Logger:     cronTestLogger(),
		Inventory:  lister,
		Scheduler:  enqueuer,
		StaleAfter: time.Hour,
		BatchSize:  100,
	})
	if err != nil {
		t.Fatalf("NewStaleSyncJob: %v", err)
	}
	job, ok := jobIface.(*staleSyncJob)
	if !ok {
		t.Fatalf("expected staleSyncJob, got %T", jobIface)
	}
	return job
}

func TestStaleSyncJobEnqueuesEveryStaleItem(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []models.InventoryItem{
		{ID: uuid.New(), OwnerID: uuid.New()},
		{ID: uuid.New(), OwnerID: uuid.New()},
	}
	lister := &fakeStaleLister{items: items}
	enqueuer := &fakeEnqueuer{}
	job := newStaleJob(t, lister, enqueuer)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !lister.lastCutoff.Equal(now.Add(-time.Hour)) {
		t.Fatalf("expected cutoff %s, got %s", now.Add(-time.Hour), lister.lastCutoff)
	}
	if lister.lastLimit != 100 {
		t.Fatalf("expected batch limit 100, got %d", lister.lastLimit)
	}
	if len(enqueuer.calls) != 2 {
		t.Fatalf("expected 2 enqueues, got %d", len(enqueuer.calls))
	}
}

func TestStaleSyncJobContinuesPastEnqueueFailures(t *testing.T) {
	bad := models.InventoryItem{ID: uuid.New(), OwnerID: uuid.New()}
	good := models.InventoryItem{ID: uuid.New(), OwnerID: uuid.New()}
	lister := &fakeStaleLister{items: []models.InventoryItem{bad, good}}
	enqueuer := &fakeEnqueuer{failFor: map[uuid.UUID]error{bad.ID: errors.New("pubsub down")}}
	job := newStaleJob(t, lister, enqueuer)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error reporting failed enqueues")
	}
	if len(enqueuer.calls) != 2 {
		t.Fatalf("expected both items attempted, got %d", len(enqueuer.calls))
	}
}

func TestStaleSyncJobPropagatesListErrors(t *testing.T) {
	lister := &fakeStaleLister{err: errors.New("db down")}
	job := newStaleJob(t, lister, &fakeEnqueuer{})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestOperationCleanupJobDeletesOldTerminalOperations(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeOperationCleanupRepo{deletedRows: 42}
	jobIface, err := NewOperationCleanupJob(OperationCleanupJobParams{
		Logger:     cronTestLogger(),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOperationCleanupJob: %v", err)
	}
	job := jobIface.(*operationCleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-operationRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
}

func TestOperationCleanupJobPropagatesErrors(t *testing.T) {
	repo := &fakeOperationCleanupRepo{err: errors.New("boom")}
	jobIface, err := NewOperationCleanupJob(OperationCleanupJobParams{
		Logger:     cronTestLogger(),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOperationCleanupJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeOperationCleanupRepo struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
}

func (f *fakeOperationCleanupRepo) DeleteTerminalOperationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}
