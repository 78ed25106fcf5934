package requests

import (
	"context"
	"errors"
	"fmt"
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

// Service is the request ledger: borrowers submit and cancel, everyone lists.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.AssetRequest, error)
	Cancel(ctx context.Context, input CancelInput) (*models.AssetRequest, error)
	Get(ctx context.Context, id uuid.UUID, viewer Viewer) (*models.AssetRequest, error)
	ListMine(ctx context.Context, params MineParams) (*ListResult, error)
	ListAll(ctx context.Context, params QueueParams) (*ListResult, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.LifecycleMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// Option adjusts a service at construction.
type Option func(*service)

// WithClock replaces the clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds the request ledger service.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, m *metrics.LifecycleMetrics, logg *logger.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
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
	svc := &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		metrics: m,
		logg:    logg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (req *models.AssetRequest, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionSubmit, started, err)
	}(time.Now())

	if input.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset category")
	}
	if input.RequestDate.IsZero() || input.ReturnDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request_date and return_date are required")
	}
	requestDate := CivilDate(input.RequestDate)
	returnDate := CivilDate(input.ReturnDate)
	if returnDate.Before(requestDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return_date must not be before request_date")
	}
	if requestDate.Before(CivilDate(s.now().UTC())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request_date cannot be in the past")
	}

	req = &models.AssetRequest{
		RequesterID: input.RequesterID,
		Category:    input.Category,
		RequestDate: requestDate,
		ReturnDate:  returnDate,
		Status:      enums.RequestStatusPending,
		Remarks:     strings.TrimSpace(input.Remarks),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dup, err := repo.HasPendingForCategory(ctx, input.RequesterID, input.Category)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending requests")
		}
		if dup {
			return duplicateError(input.Category)
		}
		if err := repo.Create(ctx, req); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return duplicateError(input.Category)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestSubmitted,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   req.ID,
			Actor:         outbox.Actor(input.RequesterID, input.RequesterRole.String()),
			Data: payloads.RequestSubmittedEvent{
				RequestID:   req.ID,
				RequesterID: req.RequesterID,
				Category:    req.Category,
				RequestDate: req.RequestDate,
				ReturnDate:  req.ReturnDate,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(s.logg.WithEntity(ctx, logger.KeyAssetRequest, req.ID), "category", req.Category)
	s.logg.Info(logCtx, "asset request submitted")
	return req, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (req *models.AssetRequest, err error) {
	defer func(started time.Time) {
		s.metrics.Observe(metrics.TransitionCancel, started, err)
	}(time.Now())

	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, input.RequestID)
		if err != nil {
			return loadError(err)
		}
		if current.RequesterID != input.RequesterID {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only the requester can cancel a request")
		}
		if current.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot cancel a %s request", current.Status))
		}

		ok, err := repo.TransitionStatus(ctx, current.ID, enums.RequestStatusPending, map[string]any{
			"status":            enums.RequestStatusCancelled,
			"assigned_asset_id": nil,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel request")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "request is no longer pending")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestCancelled,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   current.ID,
			Actor:         outbox.Actor(input.RequesterID, input.RequesterRole.String()),
			Data:          payloads.RequestCancelledEvent{RequestID: current.ID, ReleasedAssetID: current.AssignedAssetID},
		}); err != nil {
			return err
		}

		req, err = repo.FindByID(ctx, current.ID)
		if err != nil {
			return loadError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithEntity(ctx, logger.KeyAssetRequest, req.ID), "asset request cancelled")
	return req, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, viewer Viewer) (*models.AssetRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err)
	}
	if !viewer.Role.IsStaff() && req.RequesterID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
	}
	return req, nil
}

func (s *service) ListMine(ctx context.Context, params MineParams) (*ListResult, error) {
	if params.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request status")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		requesterID: params.RequesterID,
		status:      params.Status,
		limit:       pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListByRequester(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	result := &ListResult{Items: rows}
	if len(rows) > limit {
		result.Items = rows[:limit]
		last := result.Items[limit-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) ListAll(ctx context.Context, params QueueParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request status")
	}
	if params.Category != nil && !params.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset category")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := queueQuery{
		status:   params.Status,
		category: params.Category,
		limit:    pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseRankedCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListQueue(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list request queue")
	}

	result := &ListResult{Items: rows}
	if len(rows) > limit {
		result.Items = rows[:limit]
		last := result.Items[limit-1]
		result.Cursor = pkgpagination.EncodeRankedCursor(pkgpagination.RankedCursor{
			Rank:      queueRank(last.Status),
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func duplicateError(category enums.AssetCategory) error {
	return pkgerrors.New(pkgerrors.CodeDuplicateRequest, "you already have a pending request for this category").
		WithDetails(map[string]any{"category": category})
}

func loadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
}
