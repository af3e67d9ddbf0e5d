package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/google/uuid"
)

// Source is stamped on every event this service emits.
const Source = "ledger"

// NewLedgerEvent builds an event envelope around a ledger payload.
func NewLedgerEvent(eventType types.EventType, tripID, userID string, payload types.LedgerEventPayload) (types.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return types.Event{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			TripID:    tripID,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: Source},
		Payload:  data,
	}, nil
}

// withDefaults fills in the envelope fields a caller may leave empty.
func withDefaults(event types.Event) types.Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Version == 0 {
		event.Version = 1
	}
	return event
}

func encode(event types.Event) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

func channelFor(tripID string) string {
	return fmt.Sprintf("trip:%s", tripID)
}

// NoopPublisher drops every event. Used when EVENTS.DRIVER is none.
type NoopPublisher struct{}

var _ types.EventPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, string, types.Event) error        { return nil }
func (NoopPublisher) PublishBatch(context.Context, string, []types.Event) error { return nil }
