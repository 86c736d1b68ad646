package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/internal/inventory"
	"github.com/lukehargrove/channelstock-backend/internal/sync"
	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/logger"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

type fakeInventoryRepo struct {
	items map[uuid.UUID]*models.InventoryItem
}

func newFakeInventoryRepo(items ...*models.InventoryItem) *fakeInventoryRepo {
	repo := &fakeInventoryRepo{items: map[uuid.UUID]*models.InventoryItem{}}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (f *fakeInventoryRepo) WithTx(tx *gorm.DB) inventory.Repository { return f }

func (f *fakeInventoryRepo) CreateItem(_ context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeInventoryRepo) FindItem(_ context.Context, ownerID, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, ok := f.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeInventoryRepo) FindItemByID(_ context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeInventoryRepo) FindItemBySKU(_ context.Context, ownerID uuid.UUID, sku string) (*models.InventoryItem, error) {
	for _, item := range f.items {
		if item.OwnerID == ownerID && item.SKU == sku {
			copied := *item
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInventoryRepo) UpdateItem(_ context.Context, itemID uuid.UUID, updates map[string]any) error {
	item, ok := f.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if q, ok := updates["quantity"].(int); ok {
		item.Quantity = q
	}
	if r, ok := updates["reserved"].(int); ok {
		item.Reserved = r
	}
	return nil
}

func (f *fakeInventoryRepo) UpdatePlatformState(context.Context, uuid.UUID, enums.Platform, int, time.Time) error {
	return nil
}

func (f *fakeInventoryRepo) List(context.Context, inventory.ListQuery) ([]models.InventoryItem, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeInventoryRepo) ListStale(context.Context, time.Time, int) ([]models.InventoryItem, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	orders    []*models.Order
	createErr error
}

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeOrderRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeOrderRepo) FindByPlatformOrderID(_ context.Context, platform enums.Platform, platformOrderID string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.Platform == platform && order.PlatformOrderID == platformOrderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) List(context.Context, ListQuery) ([]models.Order, *pagination.Cursor, error) {
	var out []models.Order
	for _, order := range f.orders {
		out = append(out, *order)
	}
	return out, nil, nil
}

type syncCall struct {
	itemID  uuid.UUID
	trigger sync.Trigger
}

type fakeSyncService struct {
	calls   []syncCall
	failFor map[uuid.UUID]error
}

func (f *fakeSyncService) SyncItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.SyncOperation, error) {
	return f.SyncItemFor(ctx, ownerID, itemID, sync.TriggerManual)
}

func (f *fakeSyncService) SyncItemFor(_ context.Context, _ uuid.UUID, itemID uuid.UUID, trigger sync.Trigger) (*models.SyncOperation, error) {
	f.calls = append(f.calls, syncCall{itemID: itemID, trigger: trigger})
	if err, ok := f.failFor[itemID]; ok {
		return nil, err
	}
	return &models.SyncOperation{ItemID: itemID, Status: enums.SyncOperationCompleted}, nil
}

func (f *fakeSyncService) ListOpenConflicts(context.Context, sync.ConflictListParams) (*sync.ConflictListResult, error) {
	return &sync.ConflictListResult{}, nil
}

type capturedAlert struct {
	kind    enums.NotificationType
	details map[string]any
}

type fakeAlerter struct {
	alerts []capturedAlert
}

func (f *fakeAlerter) Alert(_ context.Context, _ uuid.UUID, kind enums.NotificationType, _, _ string, details map[string]any) {
	f.alerts = append(f.alerts, capturedAlert{kind: kind, details: details})
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newOrderService(t *testing.T, invRepo *fakeInventoryRepo) (Service, *fakeOrderRepo, *fakeSyncService, *fakeAlerter) {
	t.Helper()
	orderRepo := &fakeOrderRepo{}
	syncSvc := &fakeSyncService{}
	alerter := &fakeAlerter{}
	svc, err := NewService(Params{
		Repo:      orderRepo,
		Inventory: invRepo,
		Sync:      syncSvc,
		Alerter:   alerter,
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	return svc, orderRepo, syncSvc, alerter
}

func shopifyPayload(t *testing.T, orderID int64, lines ...models.OrderLineItem) []byte {
	t.Helper()
	type line struct {
		SKU      string `json:"sku"`
		Quantity int    `json:"quantity"`
	}
	body := struct {
		ID        int64  `json:"id"`
		LineItems []line `json:"line_items"`
	}{ID: orderID}
	for _, l := range lines {
		body.LineItems = append(body.LineItems, line{SKU: l.SKU, Quantity: l.Quantity})
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return data
}

func TestHandleOrderCreated_DecrementsAndSyncs(t *testing.T) {
	ownerID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1", Quantity: 10, Reserved: 2}
	svc, orderRepo, syncSvc, alerter := newOrderService(t, newFakeInventoryRepo(item))

	payload := shopifyPayload(t, 9001, models.OrderLineItem{SKU: "SKU-1", Quantity: 3})
	err := svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, payload)
	require.NoError(t, err)

	assert.Equal(t, 7, item.Quantity)
	assert.Equal(t, 5, item.Reserved)
	assert.Empty(t, alerter.alerts)

	require.Len(t, syncSvc.calls, 1)
	assert.Equal(t, item.ID, syncSvc.calls[0].itemID)
	assert.Equal(t, sync.TriggerOrder, syncSvc.calls[0].trigger)

	require.Len(t, orderRepo.orders, 1)
	assert.Equal(t, "9001", orderRepo.orders[0].PlatformOrderID)
	assert.Equal(t, enums.PlatformShopify, orderRepo.orders[0].Platform)
}

func TestHandleOrderCreated_RedeliveryDoesNotDoubleDecrement(t *testing.T) {
	ownerID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1", Quantity: 10}
	svc, orderRepo, syncSvc, _ := newOrderService(t, newFakeInventoryRepo(item))

	payload := shopifyPayload(t, 9001, models.OrderLineItem{SKU: "SKU-1", Quantity: 3})
	require.NoError(t, svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, payload))
	require.NoError(t, svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, payload))

	assert.Equal(t, 7, item.Quantity)
	require.Len(t, orderRepo.orders, 1)
	require.Len(t, syncSvc.calls, 1)

	// The same order id from another platform is a different order.
	require.NoError(t, svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformEbay,
		[]byte(`{"orderId":"9001","lineItems":[{"sku":"SKU-1","quantity":1}]}`)))
	assert.Equal(t, 6, item.Quantity)
	require.Len(t, orderRepo.orders, 2)
}

func TestHandleOrderCreated_OversellClampsAndAlertsOnce(t *testing.T) {
	ownerID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1", Quantity: 5}
	svc, _, _, alerter := newOrderService(t, newFakeInventoryRepo(item))

	payload := shopifyPayload(t, 9002, models.OrderLineItem{SKU: "SKU-1", Quantity: 7})
	err := svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, payload)
	require.NoError(t, err)

	assert.Equal(t, 0, item.Quantity)
	assert.Equal(t, 7, item.Reserved)

	require.Len(t, alerter.alerts, 1)
	assert.Equal(t, enums.NotificationTypeOversold, alerter.alerts[0].kind)
	assert.Equal(t, 2, alerter.alerts[0].details["overshoot"])
}

func TestHandleOrderCreated_UnknownSKUSkipsLine(t *testing.T) {
	ownerID := uuid.New()
	known := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1", Quantity: 4}
	svc, orderRepo, syncSvc, _ := newOrderService(t, newFakeInventoryRepo(known))

	payload := shopifyPayload(t, 9003,
		models.OrderLineItem{SKU: "SKU-MISSING", Quantity: 1},
		models.OrderLineItem{SKU: "SKU-1", Quantity: 2},
	)
	err := svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, payload)
	require.NoError(t, err)

	// The unknown line is skipped, the known one still lands.
	assert.Equal(t, 2, known.Quantity)
	require.Len(t, syncSvc.calls, 1)
	require.Len(t, orderRepo.orders, 1)
}

func TestHandleOrderCreated_AuditSurvivesSyncFailure(t *testing.T) {
	ownerID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1", Quantity: 10}
	invRepo := newFakeInventoryRepo(item)

	orderRepo := &fakeOrderRepo{}
	syncSvc := &fakeSyncService{failFor: map[uuid.UUID]error{
		item.ID: pkgerrors.New(pkgerrors.CodeLocked, "item sync already in progress"),
	}}
	svc, err := NewService(Params{
		Repo:      orderRepo,
		Inventory: invRepo,
		Sync:      syncSvc,
		Alerter:   &fakeAlerter{},
		Logger:    testLogger(),
	})
	require.NoError(t, err)

	payload := shopifyPayload(t, 9004, models.OrderLineItem{SKU: "SKU-1", Quantity: 1})
	err = svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, payload)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsLocked(err))

	// Decrement and audit both happened despite the sync failure.
	assert.Equal(t, 9, item.Quantity)
	require.Len(t, orderRepo.orders, 1)
}

func TestHandleOrderCreated_RejectsBadPayloads(t *testing.T) {
	ownerID := uuid.New()
	svc, _, _, _ := newOrderService(t, newFakeInventoryRepo())

	cases := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "not json", payload: []byte("nope")},
		{name: "missing order id", payload: []byte(`{"line_items":[{"sku":"A","quantity":1}]}`)},
		{name: "no line items", payload: []byte(`{"id":1}`)},
		{name: "non-positive quantity", payload: []byte(`{"id":1,"line_items":[{"sku":"A","quantity":0}]}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, tc.payload)
			require.Error(t, err)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
		})
	}
}

func TestParseOrderPayload_PerPlatformShapes(t *testing.T) {
	cases := []struct {
		platform enums.Platform
		payload  string
		orderID  string
	}{
		{enums.PlatformEtsy, `{"receipt_id":42,"transactions":[{"sku":"SKU-1","quantity":2}]}`, "42"},
		{enums.PlatformAmazon, `{"AmazonOrderId":"111-222","OrderItems":[{"SellerSKU":"SKU-1","QuantityOrdered":2}]}`, "111-222"},
		{enums.PlatformEbay, `{"orderId":"EB-7","lineItems":[{"sku":"SKU-1","quantity":2}]}`, "EB-7"},
		{enums.PlatformShopify, `{"id":77,"line_items":[{"sku":"SKU-1","quantity":2}]}`, "77"},
	}
	for _, tc := range cases {
		t.Run(string(tc.platform), func(t *testing.T) {
			parsed, err := parseOrderPayload(tc.platform, []byte(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, tc.orderID, parsed.PlatformOrderID)
			require.Len(t, parsed.LineItems, 1)
			assert.Equal(t, models.OrderLineItem{SKU: "SKU-1", Quantity: 2}, parsed.LineItems[0])
		})
	}
}

func TestHandleOrderCreated_AuditFailureDoesNotFailOrder(t *testing.T) {
	ownerID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: ownerID, SKU: "SKU-1", Quantity: 3}
	invRepo := newFakeInventoryRepo(item)

	orderRepo := &fakeOrderRepo{createErr: errors.New("insert failed")}
	svc, err := NewService(Params{
		Repo:      orderRepo,
		Inventory: invRepo,
		Sync:      &fakeSyncService{},
		Alerter:   &fakeAlerter{},
		Logger:    testLogger(),
	})
	require.NoError(t, err)

	payload := shopifyPayload(t, 9005, models.OrderLineItem{SKU: "SKU-1", Quantity: 1})
	require.NoError(t, svc.HandleOrderCreated(context.Background(), ownerID, enums.PlatformShopify, payload))
	assert.Equal(t, 2, item.Quantity)
}
