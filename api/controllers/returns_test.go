package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/internal/returns"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
)

type stubReturns struct {
	recordFn  func(ctx context.Context, input returns.RecordInput) (*models.AssetReturn, error)
	regradeFn func(ctx context.Context, input returns.RegradeInput) (*models.AssetReturn, error)
	listFn    func(ctx context.Context, params returns.ListParams) (*returns.ListResult, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error)
}

func (s stubReturns) RecordReturn(ctx context.Context, input returns.RecordInput) (*models.AssetReturn, error) {
	return s.recordFn(ctx, input)
}

func (s stubReturns) Regrade(ctx context.Context, input returns.RegradeInput) (*models.AssetReturn, error) {
	return s.regradeFn(ctx, input)
}

func (s stubReturns) Get(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &models.AssetReturn{ID: id}, nil
}

func (s stubReturns) List(ctx context.Context, params returns.ListParams) (*returns.ListResult, error) {
	return s.listFn(ctx, params)
}

func TestRecordReturn(t *testing.T) {
	staffID := uuid.New()
	requestID := uuid.New()
	svc := stubReturns{recordFn: func(ctx context.Context, input returns.RecordInput) (*models.AssetReturn, error) {
		if input.RequestID != requestID || input.ReceiverID != staffID {
			t.Fatalf("unexpected input %+v", input)
		}
		if input.Condition != enums.ReturnConditionDamaged {
			t.Fatalf("unexpected condition %s", input.Condition)
		}
		if input.ReturnedAt == nil || !input.ReturnedAt.Equal(time.Date(2025, 1, 20, 17, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected returned_at %v", input.ReturnedAt)
		}
		return &models.AssetReturn{ID: uuid.New(), RequestID: requestID, ConditionOnReturn: input.Condition, IsCurrent: true}, nil
	}}

	body := `{"condition":"damaged","returned_at":"2025-01-20T17:00:00Z","remarks":"cracked hinge"}`
	req := newRequest(http.MethodPost, "/", body, map[string]string{"id": requestID.String()}, staffID, enums.UserRoleStaff)
	resp := serve(RecordReturn(svc, nil), req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if got := decodeData[models.AssetReturn](t, resp); !got.IsCurrent || got.ConditionOnReturn != enums.ReturnConditionDamaged {
		t.Fatalf("unexpected return %+v", got)
	}
}

func TestRecordReturnRejectsUnknownCondition(t *testing.T) {
	req := newRequest(http.MethodPost, "/", `{"condition":"scratched"}`, map[string]string{"id": uuid.NewString()}, uuid.New(), enums.UserRoleStaff)
	if resp := serve(RecordReturn(stubReturns{}, nil), req); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRegradeReturn(t *testing.T) {
	returnID := uuid.New()
	svc := stubReturns{regradeFn: func(ctx context.Context, input returns.RegradeInput) (*models.AssetReturn, error) {
		if input.ReturnID != returnID || input.Condition != enums.ReturnConditionGood {
			t.Fatalf("unexpected input %+v", input)
		}
		return &models.AssetReturn{ID: uuid.New(), SupersedesID: &returnID, ConditionOnReturn: input.Condition, IsCurrent: true}, nil
	}}
	req := newRequest(http.MethodPost, "/", `{"condition":"good"}`, map[string]string{"id": returnID.String()}, uuid.New(), enums.UserRoleStaff)
	resp := serve(RegradeReturn(svc, nil), req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if got := decodeData[models.AssetReturn](t, resp); got.SupersedesID == nil || *got.SupersedesID != returnID {
		t.Fatalf("unexpected supersedes %v", got.SupersedesID)
	}
}

func TestListReturnsFilters(t *testing.T) {
	requestID := uuid.New()
	svc := stubReturns{listFn: func(ctx context.Context, params returns.ListParams) (*returns.ListResult, error) {
		if params.Condition == nil || *params.Condition != enums.ReturnConditionLost {
			t.Fatalf("unexpected condition %v", params.Condition)
		}
		if params.RequestID == nil || *params.RequestID != requestID {
			t.Fatalf("unexpected request filter %v", params.RequestID)
		}
		if !params.IncludeSuperseded {
			t.Fatalf("expected superseded rows to be included")
		}
		return &returns.ListResult{}, nil
	}}
	target := "/?condition=lost&include_superseded=true&request_id=" + requestID.String()
	req := newRequest(http.MethodGet, target, "", nil, uuid.New(), enums.UserRoleStaff)
	if resp := serve(ListReturns(svc, nil), req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	bad := newRequest(http.MethodGet, "/?include_superseded=maybe", "", nil, uuid.New(), enums.UserRoleStaff)
	if resp := serve(ListReturns(svc, nil), bad); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetReturn(t *testing.T) {
	returnID := uuid.New()
	svc := stubReturns{getFn: func(ctx context.Context, id uuid.UUID) (*models.AssetReturn, error) {
		if id != returnID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
		}
		return &models.AssetReturn{ID: id, ConditionOnReturn: enums.ReturnConditionFair, IsCurrent: true}, nil
	}}

	req := newRequest(http.MethodGet, "/", "", map[string]string{"id": returnID.String()}, uuid.New(), enums.UserRoleStaff)
	resp := serve(GetReturn(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := decodeData[models.AssetReturn](t, resp); got.ID != returnID || got.ConditionOnReturn != enums.ReturnConditionFair {
		t.Fatalf("unexpected return %+v", got)
	}

	req = newRequest(http.MethodGet, "/", "", map[string]string{"id": uuid.NewString()}, uuid.New(), enums.UserRoleStaff)
	if resp := serve(GetReturn(svc, nil), req); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	req = newRequest(http.MethodGet, "/", "", map[string]string{"id": "not-a-uuid"}, uuid.New(), enums.UserRoleStaff)
	if resp := serve(GetReturn(svc, nil), req); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
