package maintenance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// StartInput opens a maintenance record. MaintenanceDate defaults to today.
type StartInput struct {
	AssetID         uuid.UUID
	Type            enums.MaintenanceType
	Description     string
	MaintenanceDate *time.Time
	PerformedBy     string
	Cost            decimal.Decimal
	Remarks         string
	ActorID         uuid.UUID
	ActorRole       enums.UserRole
}

// CompleteInput closes a record. Condition defaults to good when the asset is
// released back into circulation.
type CompleteInput struct {
	RecordID  uuid.UUID
	Condition *enums.AssetCondition
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}
