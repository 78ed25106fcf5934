package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// CreateAsset inserts an available laptop in good condition, adjusted by mutate.
func CreateAsset(t testing.TB, conn *gorm.DB, mutate ...func(*models.Asset)) *models.Asset {
	t.Helper()
	asset := &models.Asset{
		Name:      "ThinkPad " + uuid.NewString()[:8],
		Category:  enums.AssetCategoryLaptop,
		Model:     "T14",
		Condition: enums.AssetConditionGood,
		Status:    enums.AssetStatusAvailable,
	}
	for _, fn := range mutate {
		fn(asset)
	}
	if err := conn.Create(asset).Error; err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return asset
}

// CreateRequest inserts a pending laptop request for tomorrow, adjusted by mutate.
func CreateRequest(t testing.TB, conn *gorm.DB, mutate ...func(*models.AssetRequest)) *models.AssetRequest {
	t.Helper()
	day := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	req := &models.AssetRequest{
		RequesterID: uuid.New(),
		Category:    enums.AssetCategoryLaptop,
		RequestDate: day,
		ReturnDate:  day.AddDate(0, 0, 7),
		Status:      enums.RequestStatusPending,
	}
	for _, fn := range mutate {
		fn(req)
	}
	if err := conn.Create(req).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

// ReloadAsset fetches the current row.
func ReloadAsset(t testing.TB, conn *gorm.DB, id uuid.UUID) *models.Asset {
	t.Helper()
	var asset models.Asset
	if err := conn.Where("id = ?", id).First(&asset).Error; err != nil {
		t.Fatalf("reload asset: %v", err)
	}
	return &asset
}

// ReloadRequest fetches the current row.
func ReloadRequest(t testing.TB, conn *gorm.DB, id uuid.UUID) *models.AssetRequest {
	t.Helper()
	var req models.AssetRequest
	if err := conn.Where("id = ?", id).First(&req).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	return &req
}

// CountEvents counts lifecycle events of the given type for an aggregate.
func CountEvents(t testing.TB, conn *gorm.DB, aggregateID uuid.UUID, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	err := conn.Model(&models.LifecycleEvent{}).
		Where("aggregate_id = ? AND event_type = ?", aggregateID, eventType).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	return count
}

// CreateOpenMaintenance inserts an uncompleted repair record for the asset.
func CreateOpenMaintenance(t testing.TB, conn *gorm.DB, assetID uuid.UUID) *models.MaintenanceRecord {
	t.Helper()
	record := &models.MaintenanceRecord{
		AssetID:         assetID,
		MaintenanceType: enums.MaintenanceTypeRepair,
		Description:     "hinge replacement",
		MaintenanceDate: time.Now().UTC().Truncate(24 * time.Hour),
		PerformedBy:     "workshop",
		CreatedBy:       uuid.New(),
	}
	if err := conn.Create(record).Error; err != nil {
		t.Fatalf("create maintenance record: %v", err)
	}
	return record
}
