package returns

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgpagination "github.com/nhc-it/assetlend-backend/pkg/pagination"
)

// RecordInput closes an approved request. ReturnedAt defaults to now.
type RecordInput struct {
	RequestID  uuid.UUID
	ReceiverID uuid.UUID
	ActorRole  enums.UserRole
	Condition  enums.ReturnCondition
	ReturnedAt *time.Time
	Remarks    string
}

type RegradeInput struct {
	ReturnID  uuid.UUID
	Condition enums.ReturnCondition
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	Remarks   string
}

type ListParams struct {
	Condition         *enums.ReturnCondition
	RequestID         *uuid.UUID
	IncludeSuperseded bool
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.AssetReturn `json:"items"`
	Cursor string               `json:"cursor"`
}

type listQuery struct {
	condition         *enums.ReturnCondition
	requestID         *uuid.UUID
	includeSuperseded bool
	limit             int
	cursor            *pkgpagination.Cursor
}
