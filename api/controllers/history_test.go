package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
	"github.com/nhc-it/assetlend-backend/pkg/outbox"
)

type stubHistory func(ctx context.Context, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) ([]outbox.HistoryEntry, error)

func (f stubHistory) History(ctx context.Context, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) ([]outbox.HistoryEntry, error) {
	return f(ctx, aggregateType, aggregateID)
}

func TestLifecycleHistory(t *testing.T) {
	requestID := uuid.New()
	reader := stubHistory(func(ctx context.Context, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) ([]outbox.HistoryEntry, error) {
		if aggregateType != enums.AggregateAssetRequest || aggregateID != requestID {
			t.Fatalf("unexpected lookup %s %s", aggregateType, aggregateID)
		}
		return []outbox.HistoryEntry{
			{EventType: enums.EventRequestSubmitted, AggregateID: requestID},
			{EventType: enums.EventRequestAssigned, AggregateID: requestID},
		}, nil
	})

	params := map[string]string{"aggregateType": "asset_request", "id": requestID.String()}
	resp := serve(LifecycleHistory(reader, nil), newRequest(http.MethodGet, "/", "", params, uuid.New(), enums.UserRoleStaff))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	data := decodeData[struct {
		Items []outbox.HistoryEntry `json:"items"`
	}](t, resp)
	if len(data.Items) != 2 || data.Items[1].EventType != enums.EventRequestAssigned {
		t.Fatalf("unexpected history %+v", data.Items)
	}
}

func TestLifecycleHistoryUnknownAggregate(t *testing.T) {
	params := map[string]string{"aggregateType": "order", "id": uuid.NewString()}
	resp := serve(LifecycleHistory(stubHistory(nil), nil), newRequest(http.MethodGet, "/", "", params, uuid.New(), enums.UserRoleStaff))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
