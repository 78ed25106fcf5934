package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhc-it/assetlend-backend/internal/maintenance"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
)

type stubMaintenance struct {
	startFn    func(ctx context.Context, input maintenance.StartInput) (*models.MaintenanceRecord, error)
	completeFn func(ctx context.Context, input maintenance.CompleteInput) (*models.MaintenanceRecord, error)
	listFn     func(ctx context.Context, assetID uuid.UUID) ([]models.MaintenanceRecord, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error)
}

func (s stubMaintenance) Start(ctx context.Context, input maintenance.StartInput) (*models.MaintenanceRecord, error) {
	return s.startFn(ctx, input)
}

func (s stubMaintenance) Complete(ctx context.Context, input maintenance.CompleteInput) (*models.MaintenanceRecord, error) {
	return s.completeFn(ctx, input)
}

func (s stubMaintenance) Get(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &models.MaintenanceRecord{ID: id}, nil
}

func (s stubMaintenance) ListForAsset(ctx context.Context, assetID uuid.UUID) ([]models.MaintenanceRecord, error) {
	return s.listFn(ctx, assetID)
}

func TestStartMaintenance(t *testing.T) {
	assetID := uuid.New()
	svc := stubMaintenance{startFn: func(ctx context.Context, input maintenance.StartInput) (*models.MaintenanceRecord, error) {
		if input.AssetID != assetID || input.Type != enums.MaintenanceTypeRepair {
			t.Fatalf("unexpected input %+v", input)
		}
		if !input.Cost.Equal(decimal.RequireFromString("149.90")) {
			t.Fatalf("unexpected cost %s", input.Cost)
		}
		if input.MaintenanceDate == nil || !input.MaintenanceDate.Equal(time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected date %v", input.MaintenanceDate)
		}
		return &models.MaintenanceRecord{ID: uuid.New(), AssetID: assetID, Cost: input.Cost}, nil
	}}

	body := `{"maintenance_type":"repair","description":"replace hinge","performed_by":"IT bench","cost":"149.90","maintenance_date":"2025-01-21"}`
	req := newRequest(http.MethodPost, "/", body, map[string]string{"id": assetID.String()}, uuid.New(), enums.UserRoleStaff)
	resp := serve(StartMaintenance(svc, nil), req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestStartMaintenanceOnBorrowedAsset(t *testing.T) {
	svc := stubMaintenance{startFn: func(context.Context, maintenance.StartInput) (*models.MaintenanceRecord, error) {
		return nil, pkgerrors.New(pkgerrors.CodeAssetUnavailable, "asset is borrowed")
	}}
	body := `{"maintenance_type":"service","description":"clean","performed_by":"vendor","cost":0}`
	req := newRequest(http.MethodPost, "/", body, map[string]string{"id": uuid.NewString()}, uuid.New(), enums.UserRoleStaff)
	if resp := serve(StartMaintenance(svc, nil), req); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCompleteMaintenanceCondition(t *testing.T) {
	recordID := uuid.New()
	var seen *enums.AssetCondition
	svc := stubMaintenance{completeFn: func(ctx context.Context, input maintenance.CompleteInput) (*models.MaintenanceRecord, error) {
		if input.RecordID != recordID {
			t.Fatalf("unexpected record %s", input.RecordID)
		}
		seen = input.Condition
		return &models.MaintenanceRecord{ID: recordID}, nil
	}}

	req := newRequest(http.MethodPost, "/", `{"condition":"fair"}`, map[string]string{"id": recordID.String()}, uuid.New(), enums.UserRoleStaff)
	if resp := serve(CompleteMaintenance(svc, nil), req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seen == nil || *seen != enums.AssetConditionFair {
		t.Fatalf("unexpected condition %v", seen)
	}

	empty := newRequest(http.MethodPost, "/", "", map[string]string{"id": recordID.String()}, uuid.New(), enums.UserRoleStaff)
	if resp := serve(CompleteMaintenance(svc, nil), empty); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seen != nil {
		t.Fatalf("condition should default in the service, got %v", *seen)
	}
}

func TestAssetMaintenanceList(t *testing.T) {
	assetID := uuid.New()
	svc := stubMaintenance{listFn: func(ctx context.Context, id uuid.UUID) ([]models.MaintenanceRecord, error) {
		if id != assetID {
			t.Fatalf("unexpected asset %s", id)
		}
		return []models.MaintenanceRecord{{ID: uuid.New(), AssetID: id}}, nil
	}}
	req := newRequest(http.MethodGet, "/", "", map[string]string{"id": assetID.String()}, uuid.New(), enums.UserRoleStaff)
	resp := serve(AssetMaintenance(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	data := decodeData[struct {
		Items []models.MaintenanceRecord `json:"items"`
	}](t, resp)
	if len(data.Items) != 1 {
		t.Fatalf("unexpected items %+v", data.Items)
	}
}

func TestGetMaintenance(t *testing.T) {
	recordID := uuid.New()
	svc := stubMaintenance{getFn: func(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error) {
		if id != recordID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance record not found")
		}
		return &models.MaintenanceRecord{ID: id, MaintenanceType: enums.MaintenanceTypeRepair, Description: "hinge replacement"}, nil
	}}

	req := newRequest(http.MethodGet, "/", "", map[string]string{"id": recordID.String()}, uuid.New(), enums.UserRoleStaff)
	resp := serve(GetMaintenance(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := decodeData[models.MaintenanceRecord](t, resp); got.ID != recordID || got.Description != "hinge replacement" {
		t.Fatalf("unexpected record %+v", got)
	}

	req = newRequest(http.MethodGet, "/", "", map[string]string{"id": uuid.NewString()}, uuid.New(), enums.UserRoleStaff)
	if resp := serve(GetMaintenance(svc, nil), req); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
