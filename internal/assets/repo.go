package assets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/internal/repo"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// activeBinding matches assets referenced by a pending or approved request.
const activeBinding = "EXISTS (SELECT 1 FROM asset_requests ar WHERE ar.assigned_asset_id = assets.id AND ar.status IN ?)"

// Repository defines persistence operations for the assets table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.AssetStatus, updates map[string]any) (bool, error)
	HasActiveBinding(ctx context.Context, assetID uuid.UUID, excludeRequestID *uuid.UUID) (bool, error)
	HasOpenMaintenance(ctx context.Context, assetID uuid.UUID) (bool, error)
	ListAvailable(ctx context.Context, category enums.AssetCategory) ([]models.Asset, error)
	List(ctx context.Context, opts listQuery) ([]models.Asset, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindByIDForUpdate loads the asset holding a row lock until the transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := repo.NewBase(r.db).LockByID(ctx, &asset, id); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Asset{}).Where("id = ?", id).Updates(updates).Error
}

// TransitionStatus applies updates only while the asset is in one of the from
// statuses. It reports whether a row changed.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.AssetStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) HasActiveBinding(ctx context.Context, assetID uuid.UUID, excludeRequestID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AssetRequest{}).
		Where("assigned_asset_id = ? AND status IN ?", assetID, enums.ActiveRequestStatuses)
	if excludeRequestID != nil {
		query = query.Where("id <> ?", *excludeRequestID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) HasOpenMaintenance(ctx context.Context, assetID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MaintenanceRecord{}).
		Where("asset_id = ? AND completed_at IS NULL", assetID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListAvailable(ctx context.Context, category enums.AssetCategory) ([]models.Asset, error) {
	var rows []models.Asset
	err := r.db.WithContext(ctx).
		Where("category = ? AND status = ?", category, enums.AssetStatusAvailable).
		Where("NOT "+activeBinding, enums.ActiveRequestStatuses).
		Order("model ASC").
		Order("name ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, opts listQuery) ([]models.Asset, error) {
	query := r.db.WithContext(ctx).Model(&models.Asset{})

	if opts.category != nil {
		query = query.Where("category = ?", *opts.category)
	}
	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.condition != nil {
		query = query.Where("asset_condition = ?", *opts.condition)
	}
	if term := strings.TrimSpace(opts.search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(model) LIKE ? OR LOWER(COALESCE(serial_number, '')) LIKE ? OR LOWER(COALESCE(barcode, '')) LIKE ? OR LOWER(COALESCE(asset_code, '')) LIKE ?",
			like, like, like, like, like,
		)
	}

	var rows []models.Asset
	err := repo.Newest(query, opts.cursor, opts.limit).Find(&rows).Error
	return rows, err
}
