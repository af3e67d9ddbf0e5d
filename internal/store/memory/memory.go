// Package memory is an in-process LedgerStore for development and tests.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"gopkg.in/yaml.v3"
)

var _ store.LedgerStore = (*Store)(nil)

type tripState struct {
	trip        types.Trip
	members     []types.Member
	expenses    map[string]types.Expense
	settlements map[string]types.Settlement
}

func (t *tripState) clone() *tripState {
	out := &tripState{
		trip:        t.trip,
		members:     append([]types.Member(nil), t.members...),
		expenses:    make(map[string]types.Expense, len(t.expenses)),
		settlements: make(map[string]types.Settlement, len(t.settlements)),
	}
	for id, e := range t.expenses {
		out.expenses[id] = copyExpense(e)
	}
	for id, s := range t.settlements {
		out.settlements[id] = s
	}
	return out
}

func (t *tripState) snapshot() *store.Snapshot {
	snap := &store.Snapshot{
		Trip:        t.trip,
		Members:     append([]types.Member(nil), t.members...),
		Expenses:    make([]types.Expense, 0, len(t.expenses)),
		Settlements: make([]types.Settlement, 0, len(t.settlements)),
	}
	for _, e := range t.expenses {
		snap.Expenses = append(snap.Expenses, copyExpense(e))
	}
	for _, s := range t.settlements {
		snap.Settlements = append(snap.Settlements, s)
	}
	return snap
}

func copyExpense(e types.Expense) types.Expense {
	e.Splits = append([]types.Split(nil), e.Splits...)
	return e
}

// Store keeps every trip in memory. Writers of one trip are serialized by a
// per-trip mutex and work on a private copy that replaces the shared state
// only on success.
type Store struct {
	mu      sync.RWMutex
	trips   map[string]*tripState
	writers map[string]*sync.Mutex
}

// New returns an empty store.
func New() *Store {
	return &Store{
		trips:   make(map[string]*tripState),
		writers: make(map[string]*sync.Mutex),
	}
}

// AddTrip registers a trip and its roster. Trip and member management
// belong to another service; this is how the roster reaches the store.
func (s *Store) AddTrip(trip types.Trip, members ...types.Member) {
	now := time.Now().UTC()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = now
	}
	if trip.UpdatedAt.IsZero() {
		trip.UpdatedAt = trip.CreatedAt
	}
	for i := range members {
		members[i].TripID = trip.ID
		if members[i].JoinedAt.IsZero() {
			members[i].JoinedAt = now
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[trip.ID] = &tripState{
		trip:        trip,
		members:     append([]types.Member(nil), members...),
		expenses:    make(map[string]types.Expense),
		settlements: make(map[string]types.Settlement),
	}
	if _, ok := s.writers[trip.ID]; !ok {
		s.writers[trip.ID] = &sync.Mutex{}
	}
}

type seedFile struct {
	Trips []struct {
		ID        string `yaml:"id"`
		Name      string `yaml:"name"`
		Currency  string `yaml:"currency"`
		CreatedBy string `yaml:"createdBy"`
		Members   []struct {
			UserID      string `yaml:"userId"`
			DisplayName string `yaml:"displayName"`
		} `yaml:"members"`
	} `yaml:"trips"`
}

// LoadSeed adds the trips described in a YAML roster file.
func (s *Store) LoadSeed(path string, defaultCurrency valueobjects.Currency) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, t := range seed.Trips {
		currency := defaultCurrency
		if t.Currency != "" {
			if currency, err = valueobjects.ParseCurrency(t.Currency); err != nil {
				return fmt.Errorf("trip %s: %w", t.ID, err)
			}
		}
		members := make([]types.Member, 0, len(t.Members))
		for _, m := range t.Members {
			members = append(members, types.Member{UserID: m.UserID, DisplayName: m.DisplayName})
		}
		s.AddTrip(types.Trip{ID: t.ID, Name: t.Name, Currency: currency, CreatedBy: t.CreatedBy}, members...)
	}
	return nil
}

func (s *Store) GetTrip(_ context.Context, tripID string) (*types.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[tripID]
	if !ok {
		return nil, store.ErrNotFound
	}
	trip := t.trip
	return &trip, nil
}

func (s *Store) ListTrips(_ context.Context, userID string, archived bool) ([]types.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trips := make([]types.Trip, 0)
	for _, t := range s.trips {
		if t.trip.IsArchived != archived {
			continue
		}
		for _, m := range t.members {
			if m.UserID == userID {
				trips = append(trips, t.trip)
				break
			}
		}
	}
	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].CreatedAt.Equal(trips[j].CreatedAt) {
			return trips[i].CreatedAt.After(trips[j].CreatedAt)
		}
		return trips[i].ID < trips[j].ID
	})
	return trips, nil
}

func (s *Store) TripIDs(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.trips))
	for id := range s.trips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) IsMember(_ context.Context, tripID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[tripID]
	if !ok {
		return false, nil
	}
	for _, m := range t.members {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetExpense(_ context.Context, tripID, expenseID string) (*types.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[tripID]
	if !ok {
		return nil, store.ErrNotFound
	}
	e, ok := t.expenses[expenseID]
	if !ok {
		return nil, store.ErrNotFound
	}
	e = copyExpense(e)
	return &e, nil
}

func (s *Store) Snapshot(_ context.Context, tripID string) (*store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[tripID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t.snapshot(), nil
}

func (s *Store) WithTripLock(ctx context.Context, tripID string, fn func(ctx context.Context, tx store.LedgerTx) error) (int64, error) {
	s.mu.RLock()
	writer, ok := s.writers[tripID]
	s.mu.RUnlock()
	if !ok {
		return 0, store.ErrNotFound
	}

	writer.Lock()
	defer writer.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	tx := &ledgerTx{state: s.trips[tripID].clone()}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx.state.trip.LedgerVersion++
	tx.state.trip.UpdatedAt = time.Now().UTC()
	s.trips[tripID] = tx.state
	return tx.state.trip.LedgerVersion, nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// ledgerTx mutates a private copy of one trip.
type ledgerTx struct {
	state *tripState
}

func (tx *ledgerTx) Snapshot(context.Context) (*store.Snapshot, error) {
	return tx.state.snapshot(), nil
}

func (tx *ledgerTx) InsertExpense(_ context.Context, e *types.Expense) error {
	if _, exists := tx.state.expenses[e.ID]; exists {
		return store.ErrConflict
	}
	tx.state.expenses[e.ID] = copyExpense(*e)
	return nil
}

func (tx *ledgerTx) UpdateExpense(_ context.Context, e *types.Expense) error {
	if _, exists := tx.state.expenses[e.ID]; !exists {
		return store.ErrNotFound
	}
	tx.state.expenses[e.ID] = copyExpense(*e)
	return nil
}

func (tx *ledgerTx) DeleteExpense(_ context.Context, expenseID string) error {
	if _, exists := tx.state.expenses[expenseID]; !exists {
		return store.ErrNotFound
	}
	delete(tx.state.expenses, expenseID)
	return nil
}

func (tx *ledgerTx) InsertSettlement(_ context.Context, st *types.Settlement) error {
	if _, exists := tx.state.settlements[st.ID]; exists {
		return store.ErrConflict
	}
	tx.state.settlements[st.ID] = *st
	return nil
}

func (tx *ledgerTx) DeleteSettlement(_ context.Context, settlementID string) error {
	if _, exists := tx.state.settlements[settlementID]; !exists {
		return store.ErrNotFound
	}
	delete(tx.state.settlements, settlementID)
	return nil
}

func (tx *ledgerTx) SetLocked(_ context.Context, expenseIDs []string, locked bool) error {
	for _, id := range expenseIDs {
		e, exists := tx.state.expenses[id]
		if !exists {
			return store.ErrNotFound
		}
		e.Locked = locked
		tx.state.expenses[id] = e
	}
	return nil
}

func (tx *ledgerTx) SetArchived(_ context.Context, archived bool) error {
	tx.state.trip.IsArchived = archived
	return nil
}
