package returns

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

// Service closes the lending loop: it records graded returns and lets staff
// correct the grade afterwards.
type Service interface {
	RecordReturn(ctx context.Context, input RecordInput) (*models.AssetReturn, error)
	Regrade(ctx context.Context, input RegradeInput) (*models.AssetReturn, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type ServiceParams struct {
	Returns  Repository
	Requests requests.Repository
	Assets   assets.Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Metrics  *metrics.LifecycleMetrics
	Logger   *logger.Logger
}

type service struct {
	returns  Repository
	requests requests.Repository
	assets   assets.Repository
	tx       txRunner
	outbox   outboxPublisher
	metrics  *metrics.LifecycleMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Returns == nil:
		return nil, fmt.Errorf("returns repository required")
	case params.Requests == nil:
		return nil, fmt.Errorf("requests repository required")
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
		returns:  params.Returns,
		requests: params.Requests,
		assets:   params.Assets,
		tx:       params.Tx,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) RecordReturn(ctx context.Context, input RecordInput) (ret *models.AssetReturn, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionReturn, started, err)
	}(time.Now())

	outcome, ok := Grade(input.Condition)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return condition").
			WithDetails(map[string]any{"condition": input.Condition})
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	now := s.now().UTC()
	returnedAt := now
	if input.ReturnedAt != nil {
		returnedAt = input.ReturnedAt.UTC()
		if returnedAt.After(now) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "returned_at cannot be in the future")
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reqRepo := s.requests.WithTx(tx)
		assetRepo := s.assets.WithTx(tx)

		req, err := reqRepo.FindByIDForUpdate(ctx, input.RequestID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		if req.Status != enums.RequestStatusApproved {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot return a %s request", req.Status))
		}
		if req.AssignedAssetID == nil {
			return pkgerrors.New(pkgerrors.CodeMissingAssignment, "approved request has no assigned asset")
		}
		assetID := *req.AssignedAssetID
		if _, err := assetRepo.FindByIDForUpdate(ctx, assetID); err != nil {
			return notFoundOr(err, "asset")
		}

		ret = &models.AssetReturn{
			RequestID:         req.ID,
			AssetID:           assetID,
			ReturnedAt:        returnedAt,
			ConditionOnReturn: input.Condition,
			ReceivedBy:        input.ReceiverID,
			Remarks:           strings.TrimSpace(input.Remarks),
			IsCurrent:         true,
		}
		if err := s.returns.WithTx(tx).Create(ctx, ret); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create return")
		}

		moved, err := reqRepo.TransitionStatus(ctx, req.ID, enums.RequestStatusApproved, map[string]any{
			"status": enums.RequestStatusReturned,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close request")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request is no longer approved")
		}

		flipped, err := assetRepo.TransitionStatus(ctx, assetID, []enums.AssetStatus{enums.AssetStatusBorrowed}, assetUpdates(outcome))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grade asset")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "asset is not on loan")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestReturned,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   req.ID,
			Actor:         outbox.Actor(input.ReceiverID, input.ActorRole.String()),
			Data: payloads.RequestReturnedEvent{
				RequestID:        req.ID,
				ReturnID:         ret.ID,
				AssetID:          assetID,
				ConditionOutcome: outcome,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithEntity(ctx, logger.KeyAssetRequest, ret.RequestID)
	logCtx = s.logg.WithEntity(logCtx, logger.KeyAsset, ret.AssetID)
	s.logg.Info(s.logg.WithField(logCtx, "condition", ret.ConditionOnReturn), "asset returned")
	return ret, nil
}

func (s *service) Regrade(ctx context.Context, input RegradeInput) (ret *models.AssetReturn, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionRegrade, started, err)
	}(time.Now())

	outcome, ok := Grade(input.Condition)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return condition").
			WithDetails(map[string]any{"condition": input.Condition})
	}
	if input.ReturnID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		retRepo := s.returns.WithTx(tx)
		assetRepo := s.assets.WithTx(tx)

		previous, err := retRepo.FindByIDForUpdate(ctx, input.ReturnID)
		if err != nil {
			return notFoundOr(err, "return")
		}
		if !previous.IsCurrent {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "return has been superseded").
				WithDetails(map[string]any{"return_id": previous.ID})
		}
		req, err := s.requests.WithTx(tx).FindByIDForUpdate(ctx, previous.RequestID)
		if err != nil {
			return notFoundOr(err, "request")
		}
		if req.Status != enums.RequestStatusReturned {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot regrade a %s request", req.Status))
		}
		if _, err := assetRepo.FindByIDForUpdate(ctx, previous.AssetID); err != nil {
			return notFoundOr(err, "asset")
		}
		bound, err := assetRepo.HasActiveBinding(ctx, previous.AssetID, &req.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset binding")
		}
		if bound {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "asset has been bound to another request since the return")
		}
		latest, err := retRepo.LatestCurrentForAsset(ctx, previous.AssetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest return")
		}
		if latest.ID != previous.ID {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "asset has been lent again since this return").
				WithDetails(map[string]any{"return_id": previous.ID, "latest_return_id": latest.ID})
		}
		if outcome.AssetStatus == enums.AssetStatusAvailable {
			open, err := assetRepo.HasOpenMaintenance(ctx, previous.AssetID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open maintenance")
			}
			if open {
				return pkgerrors.New(pkgerrors.CodeInvalidTransition, "complete the open maintenance before regrading the asset as available").
					WithDetails(map[string]any{"asset_id": previous.AssetID})
			}
		}

		demoted, err := retRepo.Demote(ctx, previous.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote return")
		}
		if !demoted {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "return has been superseded")
		}

		supersedes := previous.ID
		ret = &models.AssetReturn{
			RequestID:         previous.RequestID,
			AssetID:           previous.AssetID,
			ReturnedAt:        previous.ReturnedAt,
			ConditionOnReturn: input.Condition,
			ReceivedBy:        input.ActorID,
			Remarks:           strings.TrimSpace(input.Remarks),
			IsCurrent:         true,
			SupersedesID:      &supersedes,
		}
		if err := retRepo.Create(ctx, ret); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create regraded return")
		}

		if err := assetRepo.Update(ctx, previous.AssetID, assetUpdates(outcome)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "regrade asset")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReturnRegraded,
			AggregateType: enums.AggregateAssetReturn,
			AggregateID:   ret.ID,
			Actor:         outbox.Actor(input.ActorID, input.ActorRole.String()),
			Data: payloads.ReturnRegradedEvent{
				ReturnID:         ret.ID,
				SupersedesID:     previous.ID,
				RequestID:        previous.RequestID,
				AssetID:          previous.AssetID,
				ConditionOutcome: outcome,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithEntity(ctx, logger.KeyReturn, ret.ID)
	logCtx = s.logg.WithEntity(logCtx, logger.KeyAsset, ret.AssetID)
	s.logg.Info(s.logg.WithField(logCtx, "condition", ret.ConditionOnReturn), "return regraded")
	return ret, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return id required")
	}
	ret, err := s.returns.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "return")
	}
	return ret, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Condition != nil && !params.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return condition")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		condition:         params.Condition,
		requestID:         params.RequestID,
		includeSuperseded: params.IncludeSuperseded,
		limit:             pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.returns.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list returns")
	}

	result := &ListResult{Items: rows}
	if len(rows) > limit {
		result.Items = rows[:limit]
		last := result.Items[limit-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}
