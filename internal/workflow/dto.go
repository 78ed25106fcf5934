package workflow

import (
	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// AssignInput binds AssetID to a pending request.
type AssignInput struct {
	RequestID uuid.UUID
	AssetID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// DecisionInput carries an approve or reject decision.
type DecisionInput struct {
	RequestID uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	Remarks   string
}
