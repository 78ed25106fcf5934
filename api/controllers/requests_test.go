package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/internal/requests"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
)

type stubRequests struct {
	submitFn func(ctx context.Context, input requests.SubmitInput) (*models.AssetRequest, error)
	cancelFn func(ctx context.Context, input requests.CancelInput) (*models.AssetRequest, error)
	getFn    func(ctx context.Context, id uuid.UUID, viewer requests.Viewer) (*models.AssetRequest, error)
	mineFn   func(ctx context.Context, params requests.MineParams) (*requests.ListResult, error)
	allFn    func(ctx context.Context, params requests.QueueParams) (*requests.ListResult, error)
}

func (s stubRequests) Submit(ctx context.Context, input requests.SubmitInput) (*models.AssetRequest, error) {
	return s.submitFn(ctx, input)
}

func (s stubRequests) Cancel(ctx context.Context, input requests.CancelInput) (*models.AssetRequest, error) {
	return s.cancelFn(ctx, input)
}

func (s stubRequests) Get(ctx context.Context, id uuid.UUID, viewer requests.Viewer) (*models.AssetRequest, error) {
	return s.getFn(ctx, id, viewer)
}

func (s stubRequests) ListMine(ctx context.Context, params requests.MineParams) (*requests.ListResult, error) {
	return s.mineFn(ctx, params)
}

func (s stubRequests) ListAll(ctx context.Context, params requests.QueueParams) (*requests.ListResult, error) {
	return s.allFn(ctx, params)
}

func TestSubmitRequestParsesCalendarDates(t *testing.T) {
	userID := uuid.New()
	svc := stubRequests{
		submitFn: func(ctx context.Context, input requests.SubmitInput) (*models.AssetRequest, error) {
			if input.RequesterID != userID || input.RequesterRole != enums.UserRoleNormal {
				t.Fatalf("unexpected requester %s %s", input.RequesterID, input.RequesterRole)
			}
			if !input.RequestDate.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected request date %v", input.RequestDate)
			}
			if !input.ReturnDate.Equal(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected return date %v", input.ReturnDate)
			}
			return &models.AssetRequest{ID: uuid.New(), RequesterID: userID, Category: input.Category, Status: enums.RequestStatusPending}, nil
		},
	}

	body := `{"category":"laptop","request_date":"2025-01-10","return_date":"2025-01-20","remarks":"field trip"}`
	req := newRequest(http.MethodPost, "/", body, nil, userID, enums.UserRoleNormal)
	resp := serve(SubmitRequest(svc, nil), req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	got := decodeData[models.AssetRequest](t, resp)
	if got.Status != enums.RequestStatusPending {
		t.Fatalf("unexpected status %s", got.Status)
	}
}

func TestSubmitRequestRejectsMalformedDate(t *testing.T) {
	svc := stubRequests{submitFn: func(context.Context, requests.SubmitInput) (*models.AssetRequest, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}
	body := `{"category":"laptop","request_date":"10/01/2025","return_date":"2025-01-20"}`
	req := newRequest(http.MethodPost, "/", body, nil, uuid.New(), enums.UserRoleNormal)
	if resp := serve(SubmitRequest(svc, nil), req); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmitRequestDuplicateIsConflict(t *testing.T) {
	svc := stubRequests{submitFn: func(context.Context, requests.SubmitInput) (*models.AssetRequest, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateRequest, "pending laptop request exists")
	}}
	body := `{"category":"laptop","request_date":"2025-01-10","return_date":"2025-01-20"}`
	req := newRequest(http.MethodPost, "/", body, nil, uuid.New(), enums.UserRoleNormal)
	resp := serve(SubmitRequest(svc, nil), req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeDuplicateRequest) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestMyRequestsScopesToCaller(t *testing.T) {
	userID := uuid.New()
	svc := stubRequests{mineFn: func(ctx context.Context, params requests.MineParams) (*requests.ListResult, error) {
		if params.RequesterID != userID {
			t.Fatalf("unexpected requester %s", params.RequesterID)
		}
		if params.Status == nil || *params.Status != enums.RequestStatusApproved {
			t.Fatalf("unexpected status filter %v", params.Status)
		}
		if params.Cursor != "abc" {
			t.Fatalf("unexpected cursor %q", params.Cursor)
		}
		return &requests.ListResult{Cursor: "next"}, nil
	}}

	req := newRequest(http.MethodGet, "/?status=approved&cursor=abc", "", nil, userID, enums.UserRoleNormal)
	resp := serve(MyRequests(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := decodeData[requests.ListResult](t, resp); got.Cursor != "next" {
		t.Fatalf("unexpected cursor %q", got.Cursor)
	}
}

func TestGetRequestPassesViewer(t *testing.T) {
	userID := uuid.New()
	requestID := uuid.New()
	svc := stubRequests{getFn: func(ctx context.Context, id uuid.UUID, viewer requests.Viewer) (*models.AssetRequest, error) {
		if id != requestID || viewer.UserID != userID || viewer.Role != enums.UserRoleNormal {
			t.Fatalf("unexpected lookup %s %+v", id, viewer)
		}
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your request")
	}}

	req := newRequest(http.MethodGet, "/", "", map[string]string{"id": requestID.String()}, userID, enums.UserRoleNormal)
	if resp := serve(GetRequest(svc, nil), req); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCancelRequest(t *testing.T) {
	userID := uuid.New()
	requestID := uuid.New()
	svc := stubRequests{cancelFn: func(ctx context.Context, input requests.CancelInput) (*models.AssetRequest, error) {
		if input.RequestID != requestID || input.RequesterID != userID {
			t.Fatalf("unexpected input %+v", input)
		}
		return &models.AssetRequest{ID: requestID, Status: enums.RequestStatusCancelled}, nil
	}}

	req := newRequest(http.MethodPost, "/", "", map[string]string{"id": requestID.String()}, userID, enums.UserRoleNormal)
	resp := serve(CancelRequest(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := decodeData[models.AssetRequest](t, resp); got.Status != enums.RequestStatusCancelled {
		t.Fatalf("unexpected status %s", got.Status)
	}

	bad := newRequest(http.MethodPost, "/", "", map[string]string{"id": "nope"}, userID, enums.UserRoleNormal)
	if resp := serve(CancelRequest(svc, nil), bad); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRequestQueueFilters(t *testing.T) {
	svc := stubRequests{allFn: func(ctx context.Context, params requests.QueueParams) (*requests.ListResult, error) {
		if params.Status != nil {
			t.Fatalf("status should be unset")
		}
		if params.Category == nil || *params.Category != enums.AssetCategoryProjector {
			t.Fatalf("unexpected category %v", params.Category)
		}
		return &requests.ListResult{}, nil
	}}
	req := newRequest(http.MethodGet, "/?category=projector", "", nil, uuid.New(), enums.UserRoleStaff)
	if resp := serve(RequestQueue(svc, nil), req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
