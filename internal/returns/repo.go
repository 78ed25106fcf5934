package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/internal/repo"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
)

// Repository defines persistence operations for asset_returns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ret *models.AssetReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error)
	Demote(ctx context.Context, id uuid.UUID) (bool, error)
	LatestCurrentForAsset(ctx context.Context, assetID uuid.UUID) (*models.AssetReturn, error)
	List(ctx context.Context, opts listQuery) ([]models.AssetReturn, error)
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

func (r *repository) Create(ctx context.Context, ret *models.AssetReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error) {
	var ret models.AssetReturn
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ret).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error) {
	var ret models.AssetReturn
	if err := repo.NewBase(r.db).LockByID(ctx, &ret, id); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Demote clears is_current so a superseding row can take its place.
func (r *repository) Demote(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AssetReturn{}).
		Where("id = ? AND is_current = ?", id, true).
		Update("is_current", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// LatestCurrentForAsset returns the current return of the asset's most recent
// loan. Later loans always create their return after earlier ones, and a
// regrade is only allowed on this row, so creation order is authoritative.
func (r *repository) LatestCurrentForAsset(ctx context.Context, assetID uuid.UUID) (*models.AssetReturn, error) {
	var ret models.AssetReturn
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND is_current = ?", assetID, true).
		Order("created_at DESC").
		Order("id DESC").
		First(&ret).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *repository) List(ctx context.Context, opts listQuery) ([]models.AssetReturn, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetReturn{})
	if !opts.includeSuperseded {
		query = query.Where("is_current = ?", true)
	}
	if opts.condition != nil {
		query = query.Where("condition_on_return = ?", *opts.condition)
	}
	if opts.requestID != nil {
		query = query.Where("request_id = ?", *opts.requestID)
	}

	var rows []models.AssetReturn
	err := repo.Newest(query, opts.cursor, opts.limit).Find(&rows).Error
	return rows, err
}
