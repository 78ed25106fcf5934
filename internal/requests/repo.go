package requests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/internal/repo"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// pendingRank floats pending requests ahead of everything else in the staff queue.
const pendingRank = "CASE WHEN status = 'pending' THEN 0 ELSE 1 END"

// Repository defines persistence operations for asset_requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, req *models.AssetRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error)
	HasPendingForCategory(ctx context.Context, requesterID uuid.UUID, category enums.AssetCategory) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from enums.RequestStatus, updates map[string]any) (bool, error)
	ListByRequester(ctx context.Context, opts listQuery) ([]models.AssetRequest, error)
	ListQueue(ctx context.Context, opts queueQuery) ([]models.AssetRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a requests repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, req *models.AssetRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error) {
	var req models.AssetRequest
	err := r.db.WithContext(ctx).
		Preload("AssignedAsset").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate loads the request holding a row lock until the transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error) {
	var req models.AssetRequest
	if err := repo.NewBase(r.db).LockByID(ctx, &req, id); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) HasPendingForCategory(ctx context.Context, requesterID uuid.UUID, category enums.AssetCategory) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AssetRequest{}).
		Where("requester_id = ? AND category = ? AND status = ?", requesterID, category, enums.RequestStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TransitionStatus applies updates only while the request is still in from. It
// reports whether the row changed; false means another writer got there first.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from enums.RequestStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AssetRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByRequester(ctx context.Context, opts listQuery) ([]models.AssetRequest, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AssetRequest{}).
		Preload("AssignedAsset").
		Where("requester_id = ?", opts.requesterID)
	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}

	var rows []models.AssetRequest
	err := repo.Newest(query, opts.cursor, opts.limit).Find(&rows).Error
	return rows, err
}

func (r *repository) ListQueue(ctx context.Context, opts queueQuery) ([]models.AssetRequest, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AssetRequest{}).
		Preload("AssignedAsset")
	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.category != nil {
		query = query.Where("category = ?", *opts.category)
	}
	if c := opts.cursor; c != nil {
		query = query.Where(
			"("+pendingRank+" > ?) OR ("+pendingRank+" = ? AND created_at < ?) OR ("+pendingRank+" = ? AND created_at = ? AND id < ?)",
			c.Rank, c.Rank, c.CreatedAt, c.Rank, c.CreatedAt, c.ID,
		)
	}

	var rows []models.AssetRequest
	err := query.
		Order(pendingRank + " ASC").
		Order("created_at DESC").
		Order("id DESC").
		Limit(opts.limit).
		Find(&rows).Error
	return rows, err
}
