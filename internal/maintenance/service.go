package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/internal/assets"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	"github.com/nhc-it/assetlend-backend/pkg/metrics"
	"github.com/nhc-it/assetlend-backend/pkg/outbox"
	"github.com/nhc-it/assetlend-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the maintenance log. Opening a record takes the asset out of
// circulation; closing the last open record puts it back.
type Service interface {
	Start(ctx context.Context, input StartInput) (*models.MaintenanceRecord, error)
	Complete(ctx context.Context, input CompleteInput) (*models.MaintenanceRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error)
	ListForAsset(ctx context.Context, assetID uuid.UUID) ([]models.MaintenanceRecord, error)
}

type ServiceParams struct {
	Records Repository
	Assets  assets.Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Metrics *metrics.LifecycleMetrics
	Logger  *logger.Logger
}

type service struct {
	records Repository
	assets  assets.Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.LifecycleMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Records == nil:
		return nil, fmt.Errorf("maintenance repository required")
	case params.Assets == nil:
		return nil, fmt.Errorf("assets repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		records: params.Records,
		assets:  params.Assets,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Start(ctx context.Context, input StartInput) (record *models.MaintenanceRecord, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionMaintenanceStart, started, err)
	}(time.Now())

	if input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid maintenance type")
	}
	description := strings.TrimSpace(input.Description)
	performedBy := strings.TrimSpace(input.PerformedBy)
	if description == "" || performedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description and performed_by are required")
	}
	if input.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}
	date := civilDay(s.now())
	if input.MaintenanceDate != nil {
		date = civilDay(*input.MaintenanceDate)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		assetRepo := s.assets.WithTx(tx)

		asset, err := assetRepo.FindByIDForUpdate(ctx, input.AssetID)
		if err != nil {
			return notFoundOr(err, "asset")
		}
		previous := asset.Status
		switch previous {
		case enums.AssetStatusRetired:
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "retired assets cannot enter maintenance")
		case enums.AssetStatusBorrowed:
			return pkgerrors.New(pkgerrors.CodeAssetUnavailable, "asset is on loan").
				WithDetails(map[string]any{"asset_id": asset.ID})
		case enums.AssetStatusAvailable:
			bound, err := assetRepo.HasActiveBinding(ctx, asset.ID, nil)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset binding")
			}
			if bound {
				return pkgerrors.New(pkgerrors.CodeAssetUnavailable, "asset is assigned to an active request").
					WithDetails(map[string]any{"asset_id": asset.ID})
			}
			moved, err := assetRepo.TransitionStatus(ctx, asset.ID, []enums.AssetStatus{enums.AssetStatusAvailable}, map[string]any{
				"status": enums.AssetStatusMaintenance,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move asset to maintenance")
			}
			if !moved {
				return pkgerrors.New(pkgerrors.CodeAssetUnavailable, "asset is no longer available")
			}
		}

		record = &models.MaintenanceRecord{
			AssetID:         asset.ID,
			MaintenanceType: input.Type,
			Description:     description,
			MaintenanceDate: date,
			PerformedBy:     performedBy,
			Cost:            input.Cost.Round(2),
			Remarks:         strings.TrimSpace(input.Remarks),
			CreatedBy:       input.ActorID,
		}
		if err := s.records.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create maintenance record")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaintenanceStarted,
			AggregateType: enums.AggregateMaintenanceRecord,
			AggregateID:   record.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			Data: payloads.MaintenanceStartedEvent{
				RecordID:        record.ID,
				AssetID:         asset.ID,
				MaintenanceType: record.MaintenanceType,
				Cost:            record.Cost,
				PreviousStatus:  previous,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithEntity(ctx, logger.KeyMaintenance, record.ID)
	s.logg.Info(s.logg.WithEntity(logCtx, logger.KeyAsset, record.AssetID), "maintenance started")
	return record, nil
}

func (s *service) Complete(ctx context.Context, input CompleteInput) (record *models.MaintenanceRecord, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionMaintenanceDone, started, err)
	}(time.Now())

	if input.RecordID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	condition := enums.AssetConditionGood
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset condition")
		}
		condition = *input.Condition
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		recordRepo := s.records.WithTx(tx)
		assetRepo := s.assets.WithTx(tx)

		current, err := recordRepo.FindByIDForUpdate(ctx, input.RecordID)
		if err != nil {
			return notFoundOr(err, "maintenance record")
		}
		if !current.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "maintenance record already completed")
		}
		if _, err := assetRepo.FindByIDForUpdate(ctx, current.AssetID); err != nil {
			return notFoundOr(err, "asset")
		}

		closed, err := recordRepo.MarkCompleted(ctx, current.ID, map[string]any{
			"completed_at": s.now().UTC(),
			"completed_by": input.ActorID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete maintenance record")
		}
		if !closed {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "maintenance record already completed")
		}

		open, err := recordRepo.CountOpen(ctx, current.AssetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open maintenance")
		}
		released := false
		if open == 0 {
			released, err = assetRepo.TransitionStatus(ctx, current.AssetID, []enums.AssetStatus{enums.AssetStatusMaintenance}, map[string]any{
				"status":          enums.AssetStatusAvailable,
				"asset_condition": condition,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release asset")
			}
		}

		asset, err := assetRepo.FindByID(ctx, current.AssetID)
		if err != nil {
			return notFoundOr(err, "asset")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaintenanceCompleted,
			AggregateType: enums.AggregateMaintenanceRecord,
			AggregateID:   current.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			Data: payloads.MaintenanceCompletedEvent{
				RecordID:       current.ID,
				AssetID:        current.AssetID,
				Released:       released,
				AssetStatus:    asset.Status,
				AssetCondition: asset.Condition,
			},
		}); err != nil {
			return err
		}

		record, err = recordRepo.FindByID(ctx, current.ID)
		if err != nil {
			return notFoundOr(err, "maintenance record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithEntity(ctx, logger.KeyMaintenance, record.ID)
	s.logg.Info(s.logg.WithEntity(logCtx, logger.KeyAsset, record.AssetID), "maintenance completed")
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "maintenance record")
	}
	return record, nil
}

func (s *service) ListForAsset(ctx context.Context, assetID uuid.UUID) ([]models.MaintenanceRecord, error) {
	if assetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if _, err := s.assets.FindByID(ctx, assetID); err != nil {
		return nil, notFoundOr(err, "asset")
	}
	rows, err := s.records.ListForAsset(ctx, assetID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list maintenance records")
	}
	return rows, nil
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}
