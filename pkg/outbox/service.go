package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
)

// DomainEvent is what services hand to Emit alongside their transaction.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

// HistoryEntry is a decoded lifecycle event.
type HistoryEntry struct {
	ID            uuid.UUID                 `json:"id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   uuid.UUID                 `json:"aggregate_id"`
	Actor         *ActorRef                 `json:"actor,omitempty"`
	Version       int                       `json:"version"`
	OccurredAt    time.Time                 `json:"occurred_at"`
	Data          any                       `json:"data"`
}

type Service struct {
	repo     *Repository
	registry *DecoderRegistry
	logg     *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, registry: LifecycleRegistry(), logg: logg}
}

// Emit appends a lifecycle event on tx so it commits or rolls back with the
// state change it describes.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.Version == 0 {
		event.Version = EventVersion
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := &models.LifecycleEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       datatypes.JSON(payloadJSON),
		CreatedAt:     event.OccurredAt,
	}
	if event.Actor != nil {
		actorID := event.Actor.UserID
		row.ActorID = &actorID
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_id":       envelope.EventID,
			"event_type":     event.EventType,
			"aggregate_id":   event.AggregateID.String(),
			"aggregate_type": event.AggregateType,
		})
		s.logg.Debug(logCtx, "lifecycle event recorded")
	}
	return nil
}

// History lists the decoded events of one aggregate, oldest first.
func (s *Service) History(ctx context.Context, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) ([]HistoryEntry, error) {
	if !aggregateType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown aggregate type")
	}
	rows, err := s.repo.ListForAggregate(ctx, aggregateType, aggregateID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lifecycle events")
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		var envelope PayloadEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode lifecycle envelope")
		}
		var data any = envelope.Data
		if decoded, err := s.registry.Decode(row.EventType, envelope.Version, envelope.Data); err == nil {
			data = decoded
		}
		entries = append(entries, HistoryEntry{
			ID:            row.ID,
			EventType:     row.EventType,
			AggregateType: row.AggregateType,
			AggregateID:   row.AggregateID,
			Actor:         envelope.Actor,
			Version:       envelope.Version,
			OccurredAt:    envelope.OccurredAt,
			Data:          data,
		})
	}
	return entries, nil
}
