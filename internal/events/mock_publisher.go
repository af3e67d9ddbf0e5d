package events

import (
	"context"
	"sync"

	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// MockPublisher records published events for tests
type MockPublisher struct {
	mu     sync.RWMutex
	events map[string][]types.Event // key: tripID
	// Err, when set, is returned by every publish call
	Err error
}

var _ types.EventPublisher = (*MockPublisher)(nil)

// NewMockPublisher creates a new mock publisher for testing
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{events: make(map[string][]types.Event)}
}

// Publish records an event for testing
func (m *MockPublisher) Publish(_ context.Context, tripID string, event types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events[tripID] = append(m.events[tripID], event)
	return nil
}

// PublishBatch records multiple events for testing
func (m *MockPublisher) PublishBatch(_ context.Context, tripID string, events []types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events[tripID] = append(m.events[tripID], events...)
	return nil
}

// GetEvents returns all events for a trip (for testing assertions)
func (m *MockPublisher) GetEvents(tripID string) []types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Event(nil), m.events[tripID]...)
}

// Types returns the event types published for a trip, in order
func (m *MockPublisher) Types(tripID string) []types.EventType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.EventType, 0, len(m.events[tripID]))
	for _, e := range m.events[tripID] {
		out = append(out, e.Type)
	}
	return out
}

// Reset clears all recorded events
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make(map[string][]types.Event)
	m.Err = nil
}
