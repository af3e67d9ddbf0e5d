package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/errors"
)

type EventType string

const (
	CategoryExpense    = "EXPENSE"
	CategorySettlement = "SETTLEMENT"
	CategoryTrip       = "TRIP"
)

const (
	EventTypeExpenseCreated    EventType = CategoryExpense + "_CREATED"
	EventTypeExpenseUpdated    EventType = CategoryExpense + "_UPDATED"
	EventTypeExpenseDeleted    EventType = CategoryExpense + "_DELETED"
	EventTypeSettlementCreated EventType = CategorySettlement + "_CREATED"
	EventTypeSettlementDeleted EventType = CategorySettlement + "_DELETED"
	EventTypeTripArchived      EventType = CategoryTrip + "_ARCHIVED"
	EventTypeTripUnarchived    EventType = CategoryTrip + "_UNARCHIVED"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TripID    string    `json:"tripId"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

// EventMetadata for tracking and debugging
type EventMetadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	Source        string            `json:"source"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.TripID == "" {
		return errors.ValidationFailed("invalid event", "trip ID is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventPublisher delivers ledger events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, tripID string, event Event) error
	PublishBatch(ctx context.Context, tripID string, events []Event) error
}

// LedgerEventPayload describes what changed. LedgerVersion lets consumers
// discard stale balance views.
type LedgerEventPayload struct {
	EntityID      string `json:"entityId"`
	LedgerVersion int64  `json:"ledgerVersion"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	LockedCount   int    `json:"lockedCount,omitempty"`
}
