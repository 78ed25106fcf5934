package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/internal/assets"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
)

type stubAssets struct {
	registerFn  func(ctx context.Context, input assets.RegisterInput) (*models.Asset, error)
	listFn      func(ctx context.Context, params assets.ListParams) (*assets.ListResult, error)
	updateFn    func(ctx context.Context, id uuid.UUID, input assets.UpdateDetailsInput) (*models.Asset, error)
	retireFn    func(ctx context.Context, input assets.RetireInput) (*models.Asset, error)
	availableFn func(ctx context.Context, category enums.AssetCategory) ([]models.Asset, error)
}

func (s stubAssets) Register(ctx context.Context, input assets.RegisterInput) (*models.Asset, error) {
	return s.registerFn(ctx, input)
}

func (s stubAssets) Get(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
}

func (s stubAssets) List(ctx context.Context, params assets.ListParams) (*assets.ListResult, error) {
	return s.listFn(ctx, params)
}

func (s stubAssets) UpdateDetails(ctx context.Context, id uuid.UUID, input assets.UpdateDetailsInput) (*models.Asset, error) {
	return s.updateFn(ctx, id, input)
}

func (s stubAssets) Retire(ctx context.Context, input assets.RetireInput) (*models.Asset, error) {
	return s.retireFn(ctx, input)
}

func (s stubAssets) FindAvailable(ctx context.Context, category enums.AssetCategory) ([]models.Asset, error) {
	return s.availableFn(ctx, category)
}

func TestRegisterAsset(t *testing.T) {
	staffID := uuid.New()
	svc := stubAssets{
		registerFn: func(ctx context.Context, input assets.RegisterInput) (*models.Asset, error) {
			if input.ActorID != staffID || input.ActorRole != enums.UserRoleStaff {
				t.Fatalf("unexpected actor %s %s", input.ActorID, input.ActorRole)
			}
			if input.Category != enums.AssetCategoryLaptop || input.Name != "ThinkPad" {
				t.Fatalf("unexpected input %+v", input)
			}
			if input.PurchaseDate == nil || !input.PurchaseDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected purchase date %v", input.PurchaseDate)
			}
			return &models.Asset{ID: uuid.New(), Name: input.Name, Category: input.Category, Status: enums.AssetStatusAvailable}, nil
		},
	}

	body := `{"name":"ThinkPad","category":"laptop","model":"T14","purchase_date":"2024-03-01"}`
	req := newRequest(http.MethodPost, "/", body, nil, staffID, enums.UserRoleStaff)
	resp := serve(RegisterAsset(svc, nil), req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	asset := decodeData[models.Asset](t, resp)
	if asset.Status != enums.AssetStatusAvailable {
		t.Fatalf("unexpected status %s", asset.Status)
	}
}

func TestRegisterAssetRejectsUnknownCategory(t *testing.T) {
	svc := stubAssets{registerFn: func(context.Context, assets.RegisterInput) (*models.Asset, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}

	body := `{"name":"Printer","category":"toaster","model":"X"}`
	req := newRequest(http.MethodPost, "/", body, nil, uuid.New(), enums.UserRoleAdmin)
	resp := serve(RegisterAsset(svc, nil), req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRegisterAssetRequiresIdentity(t *testing.T) {
	req := newRequest(http.MethodPost, "/", `{}`, nil, uuid.Nil, "")
	resp := serve(RegisterAsset(stubAssets{}, nil), req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestUpdateAssetDistinguishesNullFromAbsent(t *testing.T) {
	assetID := uuid.New()
	svc := stubAssets{
		updateFn: func(ctx context.Context, id uuid.UUID, input assets.UpdateDetailsInput) (*models.Asset, error) {
			if id != assetID {
				t.Fatalf("unexpected id %s", id)
			}
			if !input.SerialNumber.Valid || input.SerialNumber.Value != nil {
				t.Fatalf("serial number should be an explicit null")
			}
			if input.Barcode.Valid {
				t.Fatalf("barcode should be absent")
			}
			if !input.PurchaseDate.Valid || input.PurchaseDate.Value != nil {
				t.Fatalf("purchase date should be cleared")
			}
			if input.Name == nil || *input.Name != "Renamed" {
				t.Fatalf("unexpected name %v", input.Name)
			}
			return &models.Asset{ID: id, Name: *input.Name}, nil
		},
	}

	body := `{"name":"Renamed","serial_number":null,"purchase_date":null}`
	req := newRequest(http.MethodPatch, "/", body, map[string]string{"id": assetID.String()}, uuid.New(), enums.UserRoleStaff)
	resp := serve(UpdateAsset(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRetireAssetSurfacesInvalidTransition(t *testing.T) {
	svc := stubAssets{
		retireFn: func(context.Context, assets.RetireInput) (*models.Asset, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "asset is borrowed")
		},
	}
	req := newRequest(http.MethodPost, "/", "", map[string]string{"id": uuid.NewString()}, uuid.New(), enums.UserRoleAdmin)
	resp := serve(RetireAsset(svc, nil), req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeInvalidTransition) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestListAssetsParsesFilters(t *testing.T) {
	svc := stubAssets{
		listFn: func(ctx context.Context, params assets.ListParams) (*assets.ListResult, error) {
			if params.Category == nil || *params.Category != enums.AssetCategoryMonitor {
				t.Fatalf("unexpected category %v", params.Category)
			}
			if params.Status == nil || *params.Status != enums.AssetStatusMaintenance {
				t.Fatalf("unexpected status %v", params.Status)
			}
			if params.Limit != 10 || params.Search != "dell" {
				t.Fatalf("unexpected params %+v", params)
			}
			return &assets.ListResult{Items: []models.Asset{}}, nil
		},
	}
	req := newRequest(http.MethodGet, "/?category=monitor&status=maintenance&limit=10&q=dell", "", nil, uuid.New(), enums.UserRoleStaff)
	resp := serve(ListAssets(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	bad := newRequest(http.MethodGet, "/?status=lost", "", nil, uuid.New(), enums.UserRoleStaff)
	if resp := serve(ListAssets(svc, nil), bad); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestFindAvailableAssetsRequiresCategory(t *testing.T) {
	svc := stubAssets{
		availableFn: func(ctx context.Context, category enums.AssetCategory) ([]models.Asset, error) {
			return []models.Asset{{ID: uuid.New(), Category: category, Status: enums.AssetStatusAvailable}}, nil
		},
	}

	missing := newRequest(http.MethodGet, "/", "", nil, uuid.New(), enums.UserRoleNormal)
	if resp := serve(FindAvailableAssets(svc, nil), missing); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	ok := newRequest(http.MethodGet, "/?category=laptop", "", nil, uuid.New(), enums.UserRoleNormal)
	resp := serve(FindAvailableAssets(svc, nil), ok)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	data := decodeData[struct {
		Items []models.Asset `json:"items"`
	}](t, resp)
	if len(data.Items) != 1 || data.Items[0].Category != enums.AssetCategoryLaptop {
		t.Fatalf("unexpected items %+v", data.Items)
	}
}

func TestAssetsServiceUnavailable(t *testing.T) {
	req := newRequest(http.MethodGet, "/", "", map[string]string{"id": uuid.NewString()}, uuid.New(), enums.UserRoleStaff)
	resp := serve(GetAsset(nil, nil), req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
