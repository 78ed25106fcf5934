package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// AssetRequest is a user's request to borrow an asset of a category.
type AssetRequest struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterID     uuid.UUID           `gorm:"column:requester_id;type:uuid;not null" json:"requester_id"`
	Category        enums.AssetCategory `gorm:"column:category;type:asset_category;not null" json:"category"`
	AssignedAssetID *uuid.UUID          `gorm:"column:assigned_asset_id;type:uuid" json:"assigned_asset_id,omitempty"`
	AssignedAsset   *Asset              `gorm:"foreignKey:AssignedAssetID;references:ID" json:"assigned_asset,omitempty"`
	RequestDate     time.Time           `gorm:"column:request_date;type:date;not null" json:"request_date"`
	ReturnDate      time.Time           `gorm:"column:return_date;type:date;not null" json:"return_date"`
	Status          enums.RequestStatus `gorm:"column:status;type:request_status;not null" json:"status"`
	ApprovedBy      *uuid.UUID          `gorm:"column:approved_by;type:uuid" json:"approved_by,omitempty"`
	ApprovalDate    *time.Time          `gorm:"column:approval_date" json:"approval_date,omitempty"`
	Remarks         string              `gorm:"column:remarks;not null;default:''" json:"remarks"`
	DecisionRemarks string              `gorm:"column:decision_remarks;not null;default:''" json:"decision_remarks"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AssetRequest) TableName() string { return "asset_requests" }

func (r *AssetRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
