package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// AssetRegisteredEvent is emitted when staff add a unit to the registry.
type AssetRegisteredEvent struct {
	AssetID   uuid.UUID            `json:"asset_id"`
	Category  enums.AssetCategory  `json:"category"`
	Status    enums.AssetStatus    `json:"status"`
	Condition enums.AssetCondition `json:"condition"`
}

// AssetUpdatedEvent lists which descriptive fields changed.
type AssetUpdatedEvent struct {
	AssetID uuid.UUID `json:"asset_id"`
	Fields  []string  `json:"fields"`
}

// AssetRetiredEvent is emitted when an asset leaves circulation by staff action.
type AssetRetiredEvent struct {
	AssetID        uuid.UUID         `json:"asset_id"`
	PreviousStatus enums.AssetStatus `json:"previous_status"`
}

type RequestSubmittedEvent struct {
	RequestID   uuid.UUID           `json:"request_id"`
	RequesterID uuid.UUID           `json:"requester_id"`
	Category    enums.AssetCategory `json:"category"`
	RequestDate time.Time           `json:"request_date"`
	ReturnDate  time.Time           `json:"return_date"`
}

// RequestCancelledEvent carries the asset released by the cancellation, if any.
type RequestCancelledEvent struct {
	RequestID       uuid.UUID  `json:"request_id"`
	ReleasedAssetID *uuid.UUID `json:"released_asset_id,omitempty"`
}

type RequestAssignedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	AssetID   uuid.UUID `json:"asset_id"`
}

type RequestApprovedEvent struct {
	RequestID    uuid.UUID `json:"request_id"`
	AssetID      uuid.UUID `json:"asset_id"`
	ApprovedBy   uuid.UUID `json:"approved_by"`
	ApprovalDate time.Time `json:"approval_date"`
	Remarks      string    `json:"remarks,omitempty"`
}

type RequestRejectedEvent struct {
	RequestID       uuid.UUID  `json:"request_id"`
	RejectedBy      uuid.UUID  `json:"rejected_by"`
	ReleasedAssetID *uuid.UUID `json:"released_asset_id,omitempty"`
	Remarks         string     `json:"remarks,omitempty"`
}

// ConditionOutcome is the asset state derived from a graded return.
type ConditionOutcome struct {
	Condition      enums.ReturnCondition `json:"condition"`
	AssetStatus    enums.AssetStatus     `json:"asset_status"`
	AssetCondition enums.AssetCondition  `json:"asset_condition"`
}

type RequestReturnedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	ReturnID  uuid.UUID `json:"return_id"`
	AssetID   uuid.UUID `json:"asset_id"`
	ConditionOutcome
}

type ReturnRegradedEvent struct {
	ReturnID     uuid.UUID `json:"return_id"`
	SupersedesID uuid.UUID `json:"supersedes_id"`
	RequestID    uuid.UUID `json:"request_id"`
	AssetID      uuid.UUID `json:"asset_id"`
	ConditionOutcome
}

type MaintenanceStartedEvent struct {
	RecordID        uuid.UUID             `json:"record_id"`
	AssetID         uuid.UUID             `json:"asset_id"`
	MaintenanceType enums.MaintenanceType `json:"maintenance_type"`
	Cost            decimal.Decimal       `json:"cost"`
	PreviousStatus  enums.AssetStatus     `json:"previous_status"`
}

// MaintenanceCompletedEvent reports whether the asset went back into circulation.
type MaintenanceCompletedEvent struct {
	RecordID       uuid.UUID            `json:"record_id"`
	AssetID        uuid.UUID            `json:"asset_id"`
	Released       bool                 `json:"released"`
	AssetStatus    enums.AssetStatus    `json:"asset_status"`
	AssetCondition enums.AssetCondition `json:"asset_condition"`
}
