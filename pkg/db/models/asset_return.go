package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// AssetReturn records the hand-back of a borrowed asset. A regrade inserts a new
// current row and points it at the one it supersedes.
type AssetReturn struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID         uuid.UUID             `gorm:"column:request_id;type:uuid;not null" json:"request_id"`
	AssetID           uuid.UUID             `gorm:"column:asset_id;type:uuid;not null" json:"asset_id"`
	ReturnedAt        time.Time             `gorm:"column:returned_at;not null" json:"returned_at"`
	ConditionOnReturn enums.ReturnCondition `gorm:"column:condition_on_return;type:return_condition;not null" json:"condition_on_return"`
	ReceivedBy        uuid.UUID             `gorm:"column:received_by;type:uuid;not null" json:"received_by"`
	Remarks           string                `gorm:"column:remarks;not null;default:''" json:"remarks"`
	IsCurrent         bool                  `gorm:"column:is_current;not null" json:"is_current"`
	SupersedesID      *uuid.UUID            `gorm:"column:supersedes_id;type:uuid" json:"supersedes_id,omitempty"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AssetReturn) TableName() string { return "asset_returns" }

func (r *AssetReturn) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
