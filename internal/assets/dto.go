package assets

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgpagination "github.com/nhc-it/assetlend-backend/pkg/pagination"
	"github.com/nhc-it/assetlend-backend/pkg/types"
)

// RegisterInput describes a new physical unit.
type RegisterInput struct {
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
	AssetCode     *string
	Name          string
	Category      enums.AssetCategory
	Model         string
	SerialNumber  *string
	Barcode       *string
	Specification *string
	Description   *string
	PurchaseDate  *time.Time
	Condition     enums.AssetCondition
}

// UpdateDetailsInput edits descriptive fields. Absent fields are left alone;
// explicit nulls clear optional columns.
type UpdateDetailsInput struct {
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
	AssetCode     types.Nullable[string]
	Name          *string
	Model         *string
	SerialNumber  types.Nullable[string]
	Barcode       types.Nullable[string]
	Specification types.Nullable[string]
	Description   types.Nullable[string]
	PurchaseDate  types.Nullable[time.Time]
}

type RetireInput struct {
	AssetID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

type ListParams struct {
	Category  *enums.AssetCategory
	Status    *enums.AssetStatus
	Condition *enums.AssetCondition
	Search    string
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.Asset `json:"items"`
	Cursor string         `json:"cursor"`
}

type listQuery struct {
	category  *enums.AssetCategory
	status    *enums.AssetStatus
	condition *enums.AssetCondition
	search    string
	limit     int
	cursor    *pkgpagination.Cursor
}
