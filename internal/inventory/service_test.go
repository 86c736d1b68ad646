package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

type fakeRepo struct {
	items       map[uuid.UUID]*models.InventoryItem
	lastUpdates map[string]any
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]*models.InventoryItem{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateItem(_ context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeRepo) FindItem(_ context.Context, ownerID, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, ok := f.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeRepo) FindItemByID(_ context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeRepo) FindItemBySKU(_ context.Context, ownerID uuid.UUID, sku string) (*models.InventoryItem, error) {
	for _, item := range f.items {
		if item.OwnerID == ownerID && item.SKU == sku {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateItem(_ context.Context, itemID uuid.UUID, updates map[string]any) error {
	f.lastUpdates = updates
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
	if title, ok := updates["title"].(string); ok {
		item.Title = title
	}
	return nil
}

func (f *fakeRepo) UpdatePlatformState(context.Context, uuid.UUID, enums.Platform, int, time.Time) error {
	return nil
}

func (f *fakeRepo) List(_ context.Context, params ListQuery) ([]models.InventoryItem, *pagination.Cursor, error) {
	var out []models.InventoryItem
	for _, item := range f.items {
		if item.OwnerID == params.OwnerID {
			out = append(out, *item)
		}
	}
	return out, nil, nil
}

func (f *fakeRepo) ListStale(context.Context, time.Time, int) ([]models.InventoryItem, error) {
	return nil, nil
}

func TestServiceGet_MapsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestServiceUpdate_RejectsNegativeQuantity(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	bad := -1
	_, err = svc.Update(context.Background(), UpdateItemParams{
		OwnerID:  uuid.New(),
		ItemID:   uuid.New(),
		Quantity: &bad,
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestServiceUpdate_PartialOnly(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	owner := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: owner, SKU: "SKU-1", Title: "Before", Quantity: 10}
	repo.items[item.ID] = item

	qty := 6
	view, err := svc.Update(context.Background(), UpdateItemParams{
		OwnerID:  owner,
		ItemID:   item.ID,
		Quantity: &qty,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, view.Quantity)
	assert.Equal(t, "Before", view.Title)
	_, touchedTitle := repo.lastUpdates["title"]
	assert.False(t, touchedTitle, "unset fields must not be written")
}

func TestServiceGet_AvailableClampsAtZero(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	owner := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), OwnerID: owner, SKU: "SKU-1", Quantity: 2, Reserved: 5}
	repo.items[item.ID] = item

	view, err := svc.Get(context.Background(), owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Available)
}

func TestServiceCreate_ValidatesPlatform(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateItemParams{
		OwnerID:  uuid.New(),
		SKU:      "SKU-1",
		Quantity: 1,
		Platforms: []CreateItemPlatform{
			{Platform: enums.Platform("myspace"), PlatformID: "x"},
		},
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
