package maintenance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/internal/repo"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
)

// Repository defines persistence operations for maintenance_records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.MaintenanceRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	CountOpen(ctx context.Context, assetID uuid.UUID) (int64, error)
	ListForAsset(ctx context.Context, assetID uuid.UUID) ([]models.MaintenanceRecord, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error) {
	var record models.MaintenanceRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error) {
	var record models.MaintenanceRecord
	if err := repo.NewBase(r.db).LockByID(ctx, &record, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkCompleted stamps an open record; false means it was already closed.
func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MaintenanceRecord{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CountOpen(ctx context.Context, assetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MaintenanceRecord{}).
		Where("asset_id = ? AND completed_at IS NULL", assetID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListForAsset(ctx context.Context, assetID uuid.UUID) ([]models.MaintenanceRecord, error) {
	var rows []models.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("maintenance_date DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
