// Package store defines the persistence boundary for trip ledgers.
// Drivers live in subpackages: postgres for production, memory for
// development and tests.
package store

import (
	"context"
	"errors"

	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a write that clashes with existing state,
	// e.g. inserting a duplicate id.
	ErrConflict = errors.New("conflict")
)

// Snapshot is a consistent view of one trip's ledger. Expenses carry their
// splits. Ordering is unspecified; callers sort what they present.
type Snapshot struct {
	Trip        types.Trip
	Members     []types.Member
	Expenses    []types.Expense
	Settlements []types.Settlement
}

// LedgerStore is the single source of truth for expenses and settlements.
// All writes go through WithTripLock.
type LedgerStore interface {
	GetTrip(ctx context.Context, tripID string) (*types.Trip, error)
	// ListTrips returns the trips userID belongs to, filtered by archive state.
	ListTrips(ctx context.Context, userID string, archived bool) ([]types.Trip, error)
	IsMember(ctx context.Context, tripID, userID string) (bool, error)
	// TripIDs lists every trip with a ledger, archived ones included.
	TripIDs(ctx context.Context) ([]string, error)
	GetExpense(ctx context.Context, tripID, expenseID string) (*types.Expense, error)
	// Snapshot reads the whole ledger of a trip at one point in time.
	Snapshot(ctx context.Context, tripID string) (*Snapshot, error)

	// WithTripLock runs fn as the only writer of tripID. Writes made through
	// tx are committed together with a ledger version bump when fn returns
	// nil and discarded otherwise. The new ledger version is returned.
	WithTripLock(ctx context.Context, tripID string, fn func(ctx context.Context, tx LedgerTx) error) (int64, error)

	Ping(ctx context.Context) error
}

// LedgerTx is the write side of a trip, valid only inside WithTripLock.
type LedgerTx interface {
	// Snapshot reads the trip as seen by this transaction.
	Snapshot(ctx context.Context) (*Snapshot, error)
	InsertExpense(ctx context.Context, e *types.Expense) error
	// UpdateExpense rewrites the expense row and replaces its splits.
	UpdateExpense(ctx context.Context, e *types.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	InsertSettlement(ctx context.Context, s *types.Settlement) error
	DeleteSettlement(ctx context.Context, settlementID string) error
	// SetLocked sets the lock flag of the given expenses.
	SetLocked(ctx context.Context, expenseIDs []string, locked bool) error
	SetArchived(ctx context.Context, archived bool) error
}
