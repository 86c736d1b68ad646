package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/internal/connectors"
	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/metrics"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

// Alerter is the notification sink. Calls are fire-and-forget; implementations
// swallow their own failures.
type Alerter interface {
	Alert(ctx context.Context, ownerID uuid.UUID, kind enums.NotificationType, title, message string, details map[string]any)
}

// Service runs sync passes and serves the conflict review queue.
type Service interface {
	SyncItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.SyncOperation, error)
	SyncItemFor(ctx context.Context, ownerID, itemID uuid.UUID, trigger Trigger) (*models.SyncOperation, error)
	ListOpenConflicts(ctx context.Context, params ConflictListParams) (*ConflictListResult, error)
}

// Params carries the orchestrator's dependencies.
type Params struct {
	Inventory inventory.Repository
	Repo      Repository
	Locker    Locker
	Detector  *Detector
	Resolver  *Resolver
	Registry  *connectors.Registry
	Alerter   Alerter
	Logger    *logger.Logger
	Metrics   *metrics.SyncMetrics
}

type service struct {
	inventory inventory.Repository
	repo      Repository
	locker    Locker
	detector  *Detector
	resolver  *Resolver
	registry  *connectors.Registry
	alerter   Alerter
	logg      *logger.Logger
	metrics   *metrics.SyncMetrics
}

// NewService wires the sync orchestrator.
func NewService(p Params) (Service, error) {
	if p.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if p.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sync repository required")
	}
	if p.Locker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "item locker required")
	}
	if p.Detector == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "conflict detector required")
	}
	if p.Resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "conflict resolver required")
	}
	if p.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "connector registry required")
	}
	if p.Alerter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerter required")
	}
	if p.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		inventory: p.Inventory,
		repo:      p.Repo,
		locker:    p.Locker,
		detector:  p.Detector,
		resolver:  p.Resolver,
		registry:  p.Registry,
		alerter:   p.Alerter,
		logg:      p.Logger,
		metrics:   p.Metrics,
	}, nil
}

func (s *service) SyncItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.SyncOperation, error) {
	return s.SyncItemFor(ctx, ownerID, itemID, TriggerManual)
}

func (s *service) SyncItemFor(ctx context.Context, ownerID, itemID uuid.UUID, trigger Trigger) (*models.SyncOperation, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	start := time.Now()
	outcome := "error"
	defer func() {
		s.metrics.ObservePass(string(trigger), time.Since(start))
		s.metrics.IncOutcome(outcome)
	}()

	logCtx := s.logg.WithOwnerID(s.logg.WithItemID(ctx, itemID.String()), ownerID.String())

	lock, err := s.locker.Acquire(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			outcome = "locked"
			s.metrics.IncLockContention()
			return nil, pkgerrors.New(pkgerrors.CodeLocked, "item sync already in progress")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire item lock")
	}
	defer func() {
		if releaseErr := lock.Release(ctx); releaseErr != nil {
			s.logg.Error(logCtx, "failed to release item lock", releaseErr)
		}
	}()

	item, err := s.inventory.FindItem(ctx, ownerID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = "not_found"
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	enabled := item.EnabledPlatforms()
	targets := make(models.PlatformList, 0, len(enabled))
	for _, p := range enabled {
		targets = append(targets, p.Platform)
	}

	op := &models.SyncOperation{
		ItemID:          item.ID,
		Action:          enums.SyncActionUpdateQuantity,
		TargetPlatforms: targets,
		Status:          enums.SyncOperationProcessing,
	}
	if op, err = s.repo.CreateOperation(ctx, op); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sync operation")
	}

	if len(enabled) == 0 {
		s.logg.Info(logCtx, "no sync-enabled platforms, nothing to do")
		if err := s.completeTrivially(ctx, item, op); err != nil {
			return nil, err
		}
		outcome = "synced"
		return op, nil
	}

	if err := s.inventory.UpdateItem(ctx, item.ID, map[string]any{"sync_status": enums.SyncStatusSyncing}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item syncing")
	}

	states, fetchErr := s.fetchQuantities(ctx, item.SKU, enabled)
	if fetchErr != nil {
		s.logg.Error(logCtx, "quantity fetch failed for one or more platforms", fetchErr)
		failErr := s.failOperation(ctx, item, op, fmt.Sprintf("fetch quantities: %v", fetchErr))
		if failErr != nil {
			return nil, failErr
		}
		outcome = "fetch_failed"
		return op, pkgerrors.Wrap(pkgerrors.CodeDependency, fetchErr, "platform quantity fetch failed")
	}

	resolved := item.Quantity
	if conflict := s.detector.Detect(item.Quantity, states); conflict != nil {
		s.metrics.IncConflict(string(conflict.Type))

		resolution, err := s.resolver.Resolve(conflict)
		if err != nil {
			return nil, err
		}
		if !resolution.Resolved {
			return s.deferToReview(ctx, logCtx, item, op, conflict, &outcome)
		}
		resolved = resolution.Quantity
		s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
			"conflict_type": string(conflict.Type),
			"resolved":      resolved,
		}), "conflict auto-resolved")
	}

	if writeErr := s.pushQuantities(ctx, item.SKU, enabled, resolved); writeErr != nil {
		s.logg.Error(logCtx, "quantity write failed for one or more platforms", writeErr)
		failErr := s.failOperation(ctx, item, op, fmt.Sprintf("write quantities: %v", writeErr))
		if failErr != nil {
			return nil, failErr
		}
		outcome = "write_failed"
		return op, pkgerrors.Wrap(pkgerrors.CodeDependency, writeErr, "platform quantity write failed")
	}

	now := time.Now().UTC()
	for _, p := range enabled {
		if err := s.inventory.UpdatePlatformState(ctx, item.ID, p.Platform, resolved, now); err != nil {
			s.logg.Error(logCtx, "failed to record platform state", err)
		}
	}
	if err := s.inventory.UpdateItem(ctx, item.ID, map[string]any{
		"quantity":       resolved,
		"sync_status":    enums.SyncStatusSynced,
		"last_synced_at": now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist reconciled quantity")
	}
	if err := s.repo.UpdateOperation(ctx, op.ID, map[string]any{
		"status":       enums.SyncOperationCompleted,
		"completed_at": now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize sync operation")
	}

	op.Status = enums.SyncOperationCompleted
	op.CompletedAt = nowPtr(now)
	outcome = "synced"
	s.logg.Info(s.logg.WithField(logCtx, "quantity", resolved), "item synced")
	return op, nil
}

func (s *service) completeTrivially(ctx context.Context, item *models.InventoryItem, op *models.SyncOperation) error {
	now := time.Now().UTC()
	if err := s.inventory.UpdateItem(ctx, item.ID, map[string]any{
		"sync_status":    enums.SyncStatusSynced,
		"last_synced_at": now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item synced")
	}
	if err := s.repo.UpdateOperation(ctx, op.ID, map[string]any{
		"status":       enums.SyncOperationCompleted,
		"completed_at": now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize sync operation")
	}
	op.Status = enums.SyncOperationCompleted
	op.CompletedAt = nowPtr(now)
	return nil
}

func (s *service) deferToReview(ctx context.Context, logCtx context.Context, item *models.InventoryItem, op *models.SyncOperation, conflict *Conflict, outcome *string) (*models.SyncOperation, error) {
	record := &models.SyncConflict{
		ItemID:              item.ID,
		ConflictType:        conflict.Type,
		Platforms:           conflict.Snapshots(),
		SuggestedResolution: conflict.SuggestedResolution,
		AutoResolvable:      false,
	}
	if _, err := s.repo.CreateConflict(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist conflict")
	}

	message := fmt.Sprintf("conflict %s requires manual review", conflict.Type)
	if failErr := s.failOperationWithStatus(ctx, item, op, message, enums.SyncStatusConflict); failErr != nil {
		return nil, failErr
	}

	s.alerter.Alert(ctx, item.OwnerID, enums.NotificationTypeConflict,
		"Sync conflict needs review",
		fmt.Sprintf("Item %s has a %s conflict that cannot be auto-resolved.", item.SKU, conflict.Type),
		map[string]any{
			"itemId":       item.ID.String(),
			"conflictType": string(conflict.Type),
		})

	s.logg.Warn(logCtx, "conflict deferred to manual review")
	*outcome = "conflict"
	return op, pkgerrors.New(pkgerrors.CodeConflict, message)
}

func (s *service) failOperation(ctx context.Context, item *models.InventoryItem, op *models.SyncOperation, message string) error {
	return s.failOperationWithStatus(ctx, item, op, message, enums.SyncStatusError)
}

func (s *service) failOperationWithStatus(ctx context.Context, item *models.InventoryItem, op *models.SyncOperation, message string, status enums.SyncStatus) error {
	now := time.Now().UTC()
	if err := s.repo.UpdateOperation(ctx, op.ID, map[string]any{
		"status":       enums.SyncOperationFailed,
		"error":        message,
		"completed_at": now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record operation failure")
	}
	if err := s.inventory.UpdateItem(ctx, item.ID, map[string]any{"sync_status": status}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record item sync status")
	}
	op.Status = enums.SyncOperationFailed
	op.Error = &message
	op.CompletedAt = nowPtr(now)
	return nil
}

// fetchQuantities fans out GetQuantity across the enabled platforms. Each
// failure is collected; successes still come back so detection can run over
// partial results when the caller decides to tolerate them.
func (s *service) fetchQuantities(ctx context.Context, sku string, enabled []models.PlatformInventory) ([]PlatformState, error) {
	var (
		mu     stdsync.Mutex
		wg     stdsync.WaitGroup
		states []PlatformState
		merr   error
	)

	for _, p := range enabled {
		wg.Add(1)
		go func(p models.PlatformInventory) {
			defer wg.Done()
			conn, err := s.registry.Get(p.Platform)
			if err == nil {
				var qty int
				qty, err = conn.GetQuantity(ctx, refOf(sku, p))
				if err == nil {
					mu.Lock()
					states = append(states, PlatformState{
						Platform:    p.Platform,
						Quantity:    qty,
						LastUpdated: p.LastUpdated,
					})
					mu.Unlock()
					return
				}
			}
			mu.Lock()
			merr = multierr.Append(merr, fmt.Errorf("%s: %w", p.Platform, err))
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	return states, merr
}

// pushQuantities fans out SetQuantity across the enabled platforms, collecting
// every failure so the operation error names each unreachable platform.
func (s *service) pushQuantities(ctx context.Context, sku string, enabled []models.PlatformInventory, quantity int) error {
	var (
		mu   stdsync.Mutex
		wg   stdsync.WaitGroup
		merr error
	)

	for _, p := range enabled {
		wg.Add(1)
		go func(p models.PlatformInventory) {
			defer wg.Done()
			conn, err := s.registry.Get(p.Platform)
			if err == nil {
				err = conn.SetQuantity(ctx, refOf(sku, p), quantity)
			}
			if err != nil {
				mu.Lock()
				merr = multierr.Append(merr, fmt.Errorf("%s: %w", p.Platform, err))
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	return merr
}

func refOf(sku string, p models.PlatformInventory) connectors.ListingRef {
	return connectors.ListingRef{PlatformID: p.PlatformID, SKU: sku}
}

func (s *service) ListOpenConflicts(ctx context.Context, params ConflictListParams) (*ConflictListResult, error) {
	if params.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	query := listConflictsParams{OwnerID: params.OwnerID, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	conflicts, next, err := s.repo.ListOpenConflicts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conflicts")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ConflictListResult{Conflicts: conflicts, Cursor: cursor}, nil
}
