package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/api/responses"
	"github.com/nhc-it/assetlend-backend/api/validators"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	"github.com/nhc-it/assetlend-backend/pkg/outbox"
)

// HistoryReader is implemented by the outbox service.
type HistoryReader interface {
	History(ctx context.Context, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) ([]outbox.HistoryEntry, error)
}

// LifecycleHistory returns the audit trail of one aggregate, oldest first.
func LifecycleHistory(reader HistoryReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			serviceUnavailable(w, r, logg, "history")
			return
		}
		aggregateType, err := enums.ParseOutboxAggregateType(chi.URLParam(r, "aggregateType"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown aggregate type").
				WithDetails(map[string]any{"field": "aggregateType"}))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := reader.History(r.Context(), aggregateType, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": entries})
	}
}
