package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukehargrove/channelstock-backend/pkg/db/models"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	"github.com/lukehargrove/channelstock-backend/pkg/pagination"
)

// Repository exposes persistence helpers for sync operations and conflicts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOperation(ctx context.Context, op *models.SyncOperation) (*models.SyncOperation, error)
	UpdateOperation(ctx context.Context, opID uuid.UUID, updates map[string]any) error
	FindOperation(ctx context.Context, opID uuid.UUID) (*models.SyncOperation, error)
	CreateConflict(ctx context.Context, conflict *models.SyncConflict) (*models.SyncConflict, error)
	ListOpenConflicts(ctx context.Context, params listConflictsParams) ([]models.SyncConflict, *pagination.Cursor, error)
	DeleteTerminalOperationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a sync repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listConflictsParams struct {
	OwnerID uuid.UUID
	Limit   int
	Cursor  *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateOperation(ctx context.Context, op *models.SyncOperation) (*models.SyncOperation, error) {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return nil, err
	}
	return op, nil
}

func (r *repositoryImpl) UpdateOperation(ctx context.Context, opID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.SyncOperation{}).
		Where("id = ?", opID).
		Updates(updates).Error
}

func (r *repositoryImpl) FindOperation(ctx context.Context, opID uuid.UUID) (*models.SyncOperation, error) {
	var op models.SyncOperation
	if err := r.db.WithContext(ctx).Where("id = ?", opID).First(&op).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *repositoryImpl) CreateConflict(ctx context.Context, conflict *models.SyncConflict) (*models.SyncConflict, error) {
	if err := r.db.WithContext(ctx).Create(conflict).Error; err != nil {
		return nil, err
	}
	return conflict, nil
}

func (r *repositoryImpl) ListOpenConflicts(ctx context.Context, params listConflictsParams) ([]models.SyncConflict, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.SyncConflict{}).
		Joins("JOIN inventory_items ON inventory_items.id = sync_conflicts.item_id").
		Where("inventory_items.owner_id = ?", params.OwnerID).
		Where("sync_conflicts.resolved_at IS NULL")
	if params.Cursor != nil {
		query = query.Where("(sync_conflicts.created_at, sync_conflicts.id) <= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var conflicts []models.SyncConflict
	if err := query.Order("sync_conflicts.created_at DESC, sync_conflicts.id DESC").Limit(limit).Find(&conflicts).Error; err != nil {
		return nil, nil, err
	}

	if len(conflicts) > normalized {
		next := conflicts[normalized]
		conflicts = conflicts[:normalized]
		return conflicts, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return conflicts, nil, nil
}

func (r *repositoryImpl) DeleteTerminalOperationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ?", []enums.SyncOperationStatus{enums.SyncOperationCompleted, enums.SyncOperationFailed}).
		Where("created_at < ?", cutoff).
		Delete(&models.SyncOperation{})
	return result.RowsAffected, result.Error
}

func nowPtr(t time.Time) *time.Time {
	return &t
}
