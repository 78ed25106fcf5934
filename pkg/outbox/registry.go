package outbox

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nhc-it/assetlend-backend/pkg/enums"
	"github.com/nhc-it/assetlend-backend/pkg/outbox/payloads"
)

// EventVersion is the payload version written by Emit when none is given.
const EventVersion = 1

type decoderFunc func(payload json.RawMessage) (any, error)

type registryKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps (event type, version) to a typed payload decoder.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	registry map[registryKey]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{registry: make(map[registryKey]decoderFunc)}
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.registry[registryKey{eventType: eventType, version: version}] = decoder
}

func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	r.mtx.RLock()
	decoder, ok := r.registry[registryKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
	}
	return decoder(payload)
}

func typed[T any]() decoderFunc {
	return func(payload json.RawMessage) (any, error) {
		var out T
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// LifecycleRegistry knows every lifecycle event payload at EventVersion.
func LifecycleRegistry() *DecoderRegistry {
	r := NewDecoderRegistry()
	r.Register(enums.EventAssetRegistered, EventVersion, typed[payloads.AssetRegisteredEvent]())
	r.Register(enums.EventAssetUpdated, EventVersion, typed[payloads.AssetUpdatedEvent]())
	r.Register(enums.EventAssetRetired, EventVersion, typed[payloads.AssetRetiredEvent]())
	r.Register(enums.EventRequestSubmitted, EventVersion, typed[payloads.RequestSubmittedEvent]())
	r.Register(enums.EventRequestCancelled, EventVersion, typed[payloads.RequestCancelledEvent]())
	r.Register(enums.EventRequestAssigned, EventVersion, typed[payloads.RequestAssignedEvent]())
	r.Register(enums.EventRequestApproved, EventVersion, typed[payloads.RequestApprovedEvent]())
	r.Register(enums.EventRequestRejected, EventVersion, typed[payloads.RequestRejectedEvent]())
	r.Register(enums.EventRequestReturned, EventVersion, typed[payloads.RequestReturnedEvent]())
	r.Register(enums.EventReturnRegraded, EventVersion, typed[payloads.ReturnRegradedEvent]())
	r.Register(enums.EventMaintenanceStarted, EventVersion, typed[payloads.MaintenanceStartedEvent]())
	r.Register(enums.EventMaintenanceCompleted, EventVersion, typed[payloads.MaintenanceCompletedEvent]())
	return r
}
