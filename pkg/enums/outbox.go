package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of lifecycle_events.
type OutboxAggregateType string

const (
	AggregateAsset             OutboxAggregateType = "asset"
	AggregateAssetRequest      OutboxAggregateType = "asset_request"
	AggregateAssetReturn       OutboxAggregateType = "asset_return"
	AggregateMaintenanceRecord OutboxAggregateType = "maintenance_record"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateAsset,
	AggregateAssetRequest,
	AggregateAssetReturn,
	AggregateMaintenanceRecord,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of lifecycle_events.
type OutboxEventType string

const (
	EventAssetRegistered      OutboxEventType = "asset_registered"
	EventAssetUpdated         OutboxEventType = "asset_updated"
	EventAssetRetired         OutboxEventType = "asset_retired"
	EventRequestSubmitted     OutboxEventType = "request_submitted"
	EventRequestCancelled     OutboxEventType = "request_cancelled"
	EventRequestAssigned      OutboxEventType = "request_assigned"
	EventRequestApproved      OutboxEventType = "request_approved"
	EventRequestRejected      OutboxEventType = "request_rejected"
	EventRequestReturned      OutboxEventType = "request_returned"
	EventReturnRegraded       OutboxEventType = "return_regraded"
	EventMaintenanceStarted   OutboxEventType = "maintenance_started"
	EventMaintenanceCompleted OutboxEventType = "maintenance_completed"
)

var validEventTypes = []OutboxEventType{
	EventAssetRegistered,
	EventAssetUpdated,
	EventAssetRetired,
	EventRequestSubmitted,
	EventRequestCancelled,
	EventRequestAssigned,
	EventRequestApproved,
	EventRequestRejected,
	EventRequestReturned,
	EventReturnRegraded,
	EventMaintenanceStarted,
	EventMaintenanceCompleted,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
