package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	"github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/metrics"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

// Service ingests platform order events and decrements authoritative stock.
type Service interface {
	HandleOrderCreated(ctx context.Context, ownerID uuid.UUID, platform enums.Platform, payload []byte) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ListParams describes one page of the order audit trail.
type ListParams struct {
	OwnerID uuid.UUID
	Limit   int
	Cursor  string
}

// ListResult is one page of audit records plus the next-page cursor.
type ListResult struct {
	Orders []models.Order `json:"orders"`
	Cursor string         `json:"cursor,omitempty"`
}

// Params wires the order pipeline dependencies.
type Params struct {
	Repo      Repository
	Inventory inventory.Repository
	Sync      sync.Service
	Alerter   sync.Alerter
	Logger    *logger.Logger
	Metrics   *metrics.SyncMetrics
}

type service struct {
	repo      Repository
	inventory inventory.Repository
	sync      sync.Service
	alerter   sync.Alerter
	logg      *logger.Logger
	metrics   *metrics.SyncMetrics
}

// NewService constructs the order ingestion pipeline.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order repository required")
	}
	if p.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if p.Sync == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sync service required")
	}
	if p.Alerter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerter required")
	}
	if p.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:      p.Repo,
		inventory: p.Inventory,
		sync:      p.Sync,
		alerter:   p.Alerter,
		logg:      p.Logger,
		metrics:   p.Metrics,
	}, nil
}

// HandleOrderCreated decrements stock for each line item, clamping at zero
// with an oversold alert, then triggers a targeted sync per affected item.
// The audit record is appended regardless of how the decrements went.
func (s *service) HandleOrderCreated(ctx context.Context, ownerID uuid.UUID, platform enums.Platform, payload []byte) error {
	if ownerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if !platform.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid platform %q", platform))
	}

	parsed, err := parseOrderPayload(platform, payload)
	if err != nil {
		return err
	}

	logCtx := s.logg.WithFields(s.logg.WithOwnerID(ctx, ownerID.String()), map[string]any{
		"platform": string(platform),
		"order_id": parsed.PlatformOrderID,
	})

	// Platforms redeliver webhooks; an order already on record must not
	// decrement stock a second time.
	if _, err := s.repo.FindByPlatformOrderID(ctx, platform, parsed.PlatformOrderID); err == nil {
		s.logg.Info(logCtx, "order already recorded, skipping redelivery")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check for recorded order")
	}

	var lineErr error
	for _, line := range parsed.LineItems {
		if err := s.applyLineItem(ctx, logCtx, ownerID, platform, line); err != nil {
			lineErr = err
		}
	}

	// Audit append is best-effort and never blocks inventory correctness.
	order := &models.Order{
		OwnerID:         ownerID,
		Platform:        platform,
		PlatformOrderID: parsed.PlatformOrderID,
		LineItems:       parsed.LineItems,
		RawPayload:      payload,
	}
	if _, err := s.repo.CreateOrder(ctx, order); err != nil {
		s.logg.Error(logCtx, "failed to persist order audit record", err)
	}

	return lineErr
}

func (s *service) applyLineItem(ctx context.Context, logCtx context.Context, ownerID uuid.UUID, platform enums.Platform, line models.OrderLineItem) error {
	lineCtx := s.logg.WithField(logCtx, "sku", line.SKU)

	item, err := s.inventory.FindItemBySKU(ctx, ownerID, line.SKU)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(lineCtx, "order line references unknown sku, skipping")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item by sku")
	}

	newQuantity := item.Quantity - line.Quantity
	if newQuantity < 0 {
		overshoot := -newQuantity
		s.metrics.IncOversell()
		s.alerter.Alert(ctx, ownerID, enums.NotificationTypeOversold,
			"Item oversold",
			fmt.Sprintf("Sale of %d on %s exceeded stock for %s by %d.", line.Quantity, platform, line.SKU, overshoot),
			map[string]any{
				"itemId":    item.ID.String(),
				"sku":       line.SKU,
				"platform":  string(platform),
				"overshoot": overshoot,
			})
		s.logg.Warn(s.logg.WithField(lineCtx, "overshoot", overshoot), "order oversold item, clamping at zero")
		newQuantity = 0
	}

	if err := s.inventory.UpdateItem(ctx, item.ID, map[string]any{
		"quantity": newQuantity,
		"reserved": item.Reserved + line.Quantity,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order decrement")
	}

	if _, err := s.sync.SyncItemFor(ctx, ownerID, item.ID, sync.TriggerOrder); err != nil {
		// The decrement is already persisted. A locked or degraded sync is
		// surfaced but the remaining line items still get processed.
		s.logg.Error(lineCtx, "order-triggered sync failed", err)
		return err
	}
	return nil
}

// List pages through the owner's order audit trail, newest first.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListQuery{
		OwnerID: params.OwnerID,
		Limit:   params.Limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &ListResult{Orders: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
