package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/internal/assets"
	"github.com/nhc-it/assetlend-backend/internal/requests"
	dbpkg "github.com/nhc-it/assetlend-backend/pkg/db"
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

// Service moves requests out of pending: binding an asset, then approving or
// rejecting with the matching asset side effects.
type Service interface {
	Assign(ctx context.Context, input AssignInput) (*models.AssetRequest, error)
	Approve(ctx context.Context, input DecisionInput) (*models.AssetRequest, error)
	Reject(ctx context.Context, input DecisionInput) (*models.AssetRequest, error)
}

type ServiceParams struct {
	Requests requests.Repository
	Assets   assets.Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Metrics  *metrics.LifecycleMetrics
	Logger   *logger.Logger
}

type service struct {
	requests requests.Repository
	assets   assets.Repository
	tx       txRunner
	outbox   outboxPublisher
	metrics  *metrics.LifecycleMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Requests == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("assets repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		requests: params.Requests,
		assets:   params.Assets,
		tx:       params.Tx,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) (req *models.AssetRequest, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionAssign, started, err)
	}(time.Now())

	if input.RequestID == uuid.Nil || input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id and asset id are required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reqRepo := s.requests.WithTx(tx)
		assetRepo := s.assets.WithTx(tx)

		current, err := reqRepo.FindByIDForUpdate(ctx, input.RequestID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		if current.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot assign a %s request", current.Status))
		}
		if current.AssignedAssetID != nil {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request already has an assigned asset").
				WithDetails(map[string]any{"assigned_asset_id": current.AssignedAssetID})
		}

		asset, err := assetRepo.FindByIDForUpdate(ctx, input.AssetID)
		if err != nil {
			return notFoundOr(err, "asset")
		}
		if asset.Category != current.Category {
			return pkgerrors.New(pkgerrors.CodeCategoryMismatch, "asset category does not match the request").
				WithDetails(map[string]any{"request_category": current.Category, "asset_category": asset.Category})
		}
		if asset.Status != enums.AssetStatusAvailable {
			return unavailable(asset.ID, fmt.Sprintf("asset is %s", asset.Status))
		}
		bound, err := assetRepo.HasActiveBinding(ctx, asset.ID, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset binding")
		}
		if bound {
			return unavailable(asset.ID, "asset is bound to another active request")
		}

		ok, err := reqRepo.TransitionStatus(ctx, current.ID, enums.RequestStatusPending, map[string]any{
			"assigned_asset_id": asset.ID,
		})
		if err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return unavailable(asset.ID, "asset is bound to another active request")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign asset")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request is no longer pending")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestAssigned,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   current.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			Data:          payloads.RequestAssignedEvent{RequestID: current.ID, AssetID: asset.ID},
		}); err != nil {
			return err
		}

		req, err = reqRepo.FindByID(ctx, current.ID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithEntity(ctx, logger.KeyAssetRequest, req.ID)
	s.logg.Info(s.logg.WithEntity(logCtx, logger.KeyAsset, input.AssetID), "asset assigned to request")
	return req, nil
}

func (s *service) Approve(ctx context.Context, input DecisionInput) (req *models.AssetRequest, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionApprove, started, err)
	}(time.Now())

	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reqRepo := s.requests.WithTx(tx)
		assetRepo := s.assets.WithTx(tx)

		current, err := reqRepo.FindByIDForUpdate(ctx, input.RequestID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		if current.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot approve a %s request", current.Status))
		}
		if current.AssignedAssetID == nil {
			return pkgerrors.New(pkgerrors.CodeMissingAssignment, "assign an asset before approving")
		}
		assetID := *current.AssignedAssetID

		if _, err := assetRepo.FindByIDForUpdate(ctx, assetID); err != nil {
			return notFoundOr(err, "asset")
		}

		approvedAt := s.now().UTC()
		remarks := strings.TrimSpace(input.Remarks)
		ok, err := reqRepo.TransitionStatus(ctx, current.ID, enums.RequestStatusPending, map[string]any{
			"status":           enums.RequestStatusApproved,
			"approved_by":      input.ActorID,
			"approval_date":    approvedAt,
			"decision_remarks": remarks,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve request")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request is no longer pending")
		}

		flipped, err := assetRepo.TransitionStatus(ctx, assetID, []enums.AssetStatus{enums.AssetStatusAvailable}, map[string]any{
			"status": enums.AssetStatusBorrowed,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark asset borrowed")
		}
		if !flipped {
			return unavailable(assetID, "asset is no longer available")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestApproved,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   current.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			OccurredAt:    approvedAt,
			Data: payloads.RequestApprovedEvent{
				RequestID:    current.ID,
				AssetID:      assetID,
				ApprovedBy:   input.ActorID,
				ApprovalDate: approvedAt,
				Remarks:      remarks,
			},
		}); err != nil {
			return err
		}

		req, err = reqRepo.FindByID(ctx, current.ID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithEntity(ctx, logger.KeyAssetRequest, req.ID)
	s.logg.Info(s.logg.WithEntity(logCtx, logger.KeyAsset, *req.AssignedAssetID), "asset request approved")
	return req, nil
}

func (s *service) Reject(ctx context.Context, input DecisionInput) (req *models.AssetRequest, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionReject, started, err)
	}(time.Now())

	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reqRepo := s.requests.WithTx(tx)

		current, err := reqRepo.FindByIDForUpdate(ctx, input.RequestID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		if current.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot reject a %s request", current.Status))
		}

		decidedAt := s.now().UTC()
		remarks := strings.TrimSpace(input.Remarks)
		// the decider is stamped in approved_by for both outcomes
		ok, err := reqRepo.TransitionStatus(ctx, current.ID, enums.RequestStatusPending, map[string]any{
			"status":            enums.RequestStatusRejected,
			"assigned_asset_id": nil,
			"approved_by":       input.ActorID,
			"approval_date":     decidedAt,
			"decision_remarks":  remarks,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject request")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request is no longer pending")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestRejected,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   current.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			OccurredAt:    decidedAt,
			Data: payloads.RequestRejectedEvent{
				RequestID:       current.ID,
				RejectedBy:      input.ActorID,
				ReleasedAssetID: current.AssignedAssetID,
				Remarks:         remarks,
			},
		}); err != nil {
			return err
		}

		req, err = reqRepo.FindByID(ctx, current.ID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithEntity(ctx, logger.KeyAssetRequest, req.ID), "asset request rejected")
	return req, nil
}

func unavailable(assetID uuid.UUID, reason string) error {
	return pkgerrors.New(pkgerrors.CodeAssetUnavailable, reason).
		WithDetails(map[string]any{"asset_id": assetID})
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}
