package assets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/nhc-it/assetlend-backend/pkg/db"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	"github.com/nhc-it/assetlend-backend/pkg/metrics"
	"github.com/nhc-it/assetlend-backend/pkg/outbox"
	"github.com/nhc-it/assetlend-backend/pkg/outbox/payloads"
	pkgpagination "github.com/nhc-it/assetlend-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the asset registry: registration, descriptive edits, retirement
// and availability lookups. Lifecycle status is never edited directly.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Asset, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, input UpdateDetailsInput) (*models.Asset, error)
	Retire(ctx context.Context, input RetireInput) (*models.Asset, error)
	FindAvailable(ctx context.Context, category enums.AssetCategory) ([]models.Asset, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.LifecycleMetrics
	logg    *logger.Logger
}

// NewService builds the asset registry service.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, m *metrics.LifecycleMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assets repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		metrics: m,
		logg:    logg,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Asset, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	model := strings.TrimSpace(input.Model)
	if model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset category")
	}
	condition := input.Condition
	if condition == "" {
		condition = enums.AssetConditionGood
	}
	if !condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset condition")
	}

	asset := &models.Asset{
		AssetCode:     optionalString(input.AssetCode),
		Name:          name,
		Category:      input.Category,
		Model:         model,
		SerialNumber:  optionalString(input.SerialNumber),
		Barcode:       optionalString(input.Barcode),
		Specification: optionalString(input.Specification),
		Description:   optionalString(input.Description),
		PurchaseDate:  input.PurchaseDate,
		Condition:     condition,
		Status:        enums.AssetStatusAvailable,
	}
	if input.ActorID != uuid.Nil {
		actor := input.ActorID
		asset.CreatedBy = &actor
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, asset); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "asset code, serial number or barcode already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssetRegistered,
			AggregateType: enums.AggregateAsset,
			AggregateID:   asset.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			Data: payloads.AssetRegisteredEvent{
				AssetID:   asset.ID,
				Category:  asset.Category,
				Status:    asset.Status,
				Condition: asset.Condition,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(s.logg.WithEntity(ctx, logger.KeyAsset, asset.ID), "category", asset.Category)
	s.logg.Info(logCtx, "asset registered")
	return asset, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err)
	}
	return asset, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Category != nil && !params.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset category")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset status")
	}
	if params.Condition != nil && !params.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset condition")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		category:  params.Category,
		status:    params.Status,
		condition: params.Condition,
		search:    params.Search,
		limit:     pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
	}

	result := &ListResult{Items: rows}
	if len(rows) > limit {
		result.Items = rows[:limit]
		last := result.Items[limit-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) UpdateDetails(ctx context.Context, id uuid.UUID, input UpdateDetailsInput) (*models.Asset, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	updates, err := detailUpdates(input)
	if err != nil {
		return nil, err
	}

	var updated *models.Asset
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByIDForUpdate(ctx, id); err != nil {
			return loadError(err)
		}
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				if dbpkg.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "asset code, serial number or barcode already registered")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset")
			}
			fields := make([]string, 0, len(updates))
			for field := range updates {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventAssetUpdated,
				AggregateType: enums.AggregateAsset,
				AggregateID:   id,
				Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
				Data:          payloads.AssetUpdatedEvent{AssetID: id, Fields: fields},
			}); err != nil {
				return err
			}
		}
		asset, err := repo.FindByID(ctx, id)
		if err != nil {
			return loadError(err)
		}
		updated = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Retire(ctx context.Context, input RetireInput) (asset *models.Asset, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionRetire, started, err)
	}(time.Now())

	if input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, input.AssetID)
		if err != nil {
			return loadError(err)
		}
		if current.Status == enums.AssetStatusRetired {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "asset already retired")
		}
		bound, err := repo.HasActiveBinding(ctx, current.ID, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset binding")
		}
		if bound || current.Status == enums.AssetStatusBorrowed {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "asset is bound to an active request")
		}

		ok, err := repo.TransitionStatus(ctx, current.ID,
			[]enums.AssetStatus{enums.AssetStatusAvailable, enums.AssetStatusMaintenance},
			map[string]any{"status": enums.AssetStatusRetired},
		)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire asset")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "asset status changed concurrently")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssetRetired,
			AggregateType: enums.AggregateAsset,
			AggregateID:   current.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			Data:          payloads.AssetRetiredEvent{AssetID: current.ID, PreviousStatus: current.Status},
		}); err != nil {
			return err
		}

		asset, err = repo.FindByID(ctx, current.ID)
		if err != nil {
			return loadError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithEntity(ctx, logger.KeyAsset, asset.ID), "asset retired")
	return asset, nil
}

func (s *service) FindAvailable(ctx context.Context, category enums.AssetCategory) ([]models.Asset, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset category")
	}
	rows, err := s.repo.ListAvailable(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available assets")
	}
	return rows, nil
}

func detailUpdates(input UpdateDetailsInput) (map[string]any, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Model != nil {
		model := strings.TrimSpace(*input.Model)
		if model == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "model cannot be empty")
		}
		updates["model"] = model
	}
	setNullableString(updates, "asset_code", input.AssetCode.Valid, input.AssetCode.Value)
	setNullableString(updates, "serial_number", input.SerialNumber.Valid, input.SerialNumber.Value)
	setNullableString(updates, "barcode", input.Barcode.Valid, input.Barcode.Value)
	setNullableString(updates, "specification", input.Specification.Valid, input.Specification.Value)
	setNullableString(updates, "description", input.Description.Valid, input.Description.Value)
	if input.PurchaseDate.Valid {
		if input.PurchaseDate.Value == nil {
			updates["purchase_date"] = nil
		} else {
			updates["purchase_date"] = *input.PurchaseDate.Value
		}
	}
	return updates, nil
}

func setNullableString(updates map[string]any, column string, present bool, value *string) {
	if !present {
		return
	}
	if v := optionalString(value); v != nil {
		updates[column] = *v
		return
	}
	updates[column] = nil
}

func optionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func loadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
}
