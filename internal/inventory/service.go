package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

// Service defines the owner-facing inventory operations.
type Service interface {
	Create(ctx context.Context, params CreateItemParams) (*ItemView, error)
	Get(ctx context.Context, ownerID, itemID uuid.UUID) (*ItemView, error)
	Update(ctx context.Context, params UpdateItemParams) (*ItemView, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// NewService wires inventory dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, params CreateItemParams) (*ItemView, error) {
	if params.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	sku := strings.TrimSpace(params.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if params.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	item := &models.InventoryItem{
		OwnerID:    params.OwnerID,
		SKU:        sku,
		Title:      strings.TrimSpace(params.Title),
		Quantity:   params.Quantity,
		SyncStatus: enums.SyncStatusSynced,
	}
	for _, p := range params.Platforms {
		if !p.Platform.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown platform "+string(p.Platform))
		}
		item.Platforms = append(item.Platforms, models.PlatformInventory{
			Platform:    p.Platform,
			PlatformID:  p.PlatformID,
			Quantity:    p.Quantity,
			SyncEnabled: true,
		})
	}

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	view := viewOf(*created)
	return &view, nil
}

func (s *service) Get(ctx context.Context, ownerID, itemID uuid.UUID) (*ItemView, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	item, err := s.repo.FindItem(ctx, ownerID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	view := viewOf(*item)
	return &view, nil
}

func (s *service) Update(ctx context.Context, params UpdateItemParams) (*ItemView, error) {
	if params.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if params.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	updates := map[string]any{}
	if params.Title != nil {
		updates["title"] = strings.TrimSpace(*params.Title)
	}
	if params.Quantity != nil {
		if *params.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *params.Quantity
	}
	if params.Reserved != nil {
		if *params.Reserved < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reserved cannot be negative")
		}
		updates["reserved"] = *params.Reserved
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	// Ownership check before the blind column update.
	if _, err := s.repo.FindItem(ctx, params.OwnerID, params.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	if err := s.repo.UpdateItem(ctx, params.ItemID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}

	item, err := s.repo.FindItem(ctx, params.OwnerID, params.ItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload item")
	}
	view := viewOf(*item)
	return &view, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sync status")
	}

	query := ListQuery{
		OwnerID: params.OwnerID,
		Limit:   params.Limit,
		Status:  params.Status,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	views := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		views = append(views, viewOf(row))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: views, Cursor: cursor}, nil
}
