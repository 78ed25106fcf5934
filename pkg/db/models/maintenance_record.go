package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

type MaintenanceRecord struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssetID         uuid.UUID             `gorm:"column:asset_id;type:uuid;not null" json:"asset_id"`
	MaintenanceType enums.MaintenanceType `gorm:"column:maintenance_type;type:maintenance_type;not null" json:"maintenance_type"`
	Description     string                `gorm:"column:description;not null" json:"description"`
	MaintenanceDate time.Time             `gorm:"column:maintenance_date;type:date;not null" json:"maintenance_date"`
	PerformedBy     string                `gorm:"column:performed_by;not null" json:"performed_by"`
	Cost            decimal.Decimal       `gorm:"column:cost;type:numeric(12,2);not null;default:0" json:"cost"`
	Remarks         string                `gorm:"column:remarks;not null;default:''" json:"remarks"`
	CreatedBy       uuid.UUID             `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CompletedAt     *time.Time            `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CompletedBy     *uuid.UUID            `gorm:"column:completed_by;type:uuid" json:"completed_by,omitempty"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MaintenanceRecord) TableName() string { return "maintenance_records" }

func (m *MaintenanceRecord) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the asset is still being worked on.
func (m MaintenanceRecord) IsOpen() bool {
	return m.CompletedAt == nil
}
