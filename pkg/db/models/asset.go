package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// Asset is a physical unit that can be lent out.
type Asset struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssetCode     *string              `gorm:"column:asset_code" json:"asset_code,omitempty"`
	Name          string               `gorm:"column:name;not null" json:"name"`
	Category      enums.AssetCategory  `gorm:"column:category;type:asset_category;not null" json:"category"`
	Model         string               `gorm:"column:model;not null" json:"model"`
	SerialNumber  *string              `gorm:"column:serial_number" json:"serial_number,omitempty"`
	Barcode       *string              `gorm:"column:barcode" json:"barcode,omitempty"`
	Specification *string              `gorm:"column:specification" json:"specification,omitempty"`
	Description   *string              `gorm:"column:description" json:"description,omitempty"`
	PurchaseDate  *time.Time           `gorm:"column:purchase_date;type:date" json:"purchase_date,omitempty"`
	Condition     enums.AssetCondition `gorm:"column:asset_condition;type:asset_condition;not null" json:"condition"`
	Status        enums.AssetStatus    `gorm:"column:status;type:asset_status;not null" json:"status"`
	CreatedBy     *uuid.UUID           `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Asset) TableName() string { return "assets" }

func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
