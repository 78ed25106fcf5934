package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgpagination "github.com/nhc-it/assetlend-backend/pkg/pagination"
)

// SubmitInput is a borrower asking for any unit of a category over a date range.
type SubmitInput struct {
	RequesterID   uuid.UUID
	RequesterRole enums.UserRole
	Category      enums.AssetCategory
	RequestDate   time.Time
	ReturnDate    time.Time
	Remarks       string
}

type CancelInput struct {
	RequestID     uuid.UUID
	RequesterID   uuid.UUID
	RequesterRole enums.UserRole
}

// Viewer is the caller reading a request; staff see everything.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type MineParams struct {
	RequesterID uuid.UUID
	Status      *enums.RequestStatus
	pkgpagination.Params
}

type QueueParams struct {
	Status   *enums.RequestStatus
	Category *enums.AssetCategory
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.AssetRequest `json:"items"`
	Cursor string                `json:"cursor"`
}

type listQuery struct {
	requesterID uuid.UUID
	status      *enums.RequestStatus
	limit       int
	cursor      *pkgpagination.Cursor
}

type queueQuery struct {
	status   *enums.RequestStatus
	category *enums.AssetCategory
	limit    int
	cursor   *pkgpagination.RankedCursor
}

func queueRank(status enums.RequestStatus) int {
	if status == enums.RequestStatusPending {
		return 0
	}
	return 1
}

// CivilDate drops the clock portion, keeping the calendar day as written.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
