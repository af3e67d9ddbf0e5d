// Package service coordinates ledger mutations and read views. Every write
// runs under the trip's writer lock, re-validates against the freshest
// committed state and publishes an event once it has been committed.
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/internal/cache"
	"github.com/NomadCrew/nomad-crew-ledger/internal/events"
	istore "github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/balance"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"go.uber.org/zap"
)

const defaultDescriptionMaxLength = 255

// Options tunes validation.
type Options struct {
	DescriptionMaxLength int
}

// LedgerService is the entry point for every ledger operation.
type LedgerService struct {
	store          istore.LedgerStore
	eventPublisher types.EventPublisher
	balances       *cache.Loader
	opts           Options
	metrics        *metrics
	log            *zap.SugaredLogger
	now            func() time.Time
}

// NewLedgerService creates a new ledger service. A nil publisher drops
// events and a nil loader disables balance caching.
func NewLedgerService(
	store istore.LedgerStore,
	eventPublisher types.EventPublisher,
	balances *cache.Loader,
	opts Options,
) *LedgerService {
	if eventPublisher == nil {
		eventPublisher = events.NoopPublisher{}
	}
	if balances == nil {
		balances = cache.NewLoader(nil)
	}
	if opts.DescriptionMaxLength <= 0 {
		opts.DescriptionMaxLength = defaultDescriptionMaxLength
	}
	return &LedgerService{
		store:          store,
		eventPublisher: eventPublisher,
		balances:       balances,
		opts:           opts,
		metrics:        newMetrics(),
		log:            logger.GetLogger().Named("ledger"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the backing store.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// IsMember reports whether userID belongs to tripID.
func (s *LedgerService) IsMember(ctx context.Context, tripID, userID string) (bool, error) {
	ok, err := s.store.IsMember(ctx, tripID, userID)
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	return ok, nil
}

// mutate runs fn under the trip lock and records the outcome. fn receives
// the transaction and the ledger as it stands before the change.
func (s *LedgerService) mutate(
	ctx context.Context,
	op, tripID string,
	fn func(ctx context.Context, tx istore.LedgerTx, snap *istore.Snapshot) error,
) (int64, error) {
	version, err := s.store.WithTripLock(ctx, tripID, func(ctx context.Context, tx istore.LedgerTx) error {
		snap, err := tx.Snapshot(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, tx, snap)
	})
	if err != nil {
		err = s.mapStoreError(err, "trip", tripID)
		s.metrics.mutations.WithLabelValues(op, resultLabel(err)).Inc()
		s.reportInconsistency(tripID, err)
		return 0, err
	}

	s.metrics.mutations.WithLabelValues(op, "ok").Inc()
	s.balances.Invalidate(ctx, tripID)
	return version, nil
}

// publish emits a ledger event. Delivery failures never fail the mutation
// because the write is already committed.
func (s *LedgerService) publish(ctx context.Context, eventType types.EventType, tripID, userID string, payload types.LedgerEventPayload) {
	event, err := events.NewLedgerEvent(eventType, tripID, userID, payload)
	if err != nil {
		s.log.Errorw("Failed to build ledger event", "type", eventType, "tripID", tripID, "error", err)
		return
	}
	if err := s.eventPublisher.Publish(ctx, tripID, event); err != nil {
		s.log.Warnw("Failed to publish ledger event", "type", eventType, "tripID", tripID, "error", err)
	}
}

// mapStoreError turns store sentinels into application errors. AppErrors
// raised inside a transaction pass through unchanged.
func (s *LedgerService) mapStoreError(err error, entity, id string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, istore.ErrNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, istore.ErrConflict):
		return apperrors.NewConflictError("Conflicting ledger write", err.Error())
	default:
		return apperrors.NewDatabaseError(err)
	}
}

// reportInconsistency logs and counts broken invariants. They point at a
// bug or corrupted data and must never be hidden behind a wrong balance.
func (s *LedgerService) reportInconsistency(tripID string, err error) {
	if !apperrors.IsType(err, apperrors.InternalInconsistencyError) {
		return
	}
	s.metrics.invariantViolations.Inc()
	s.log.Errorw("Ledger invariant violated", "tripID", tripID, "error", err)
}

func resultLabel(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return string(appErr.Type)
	}
	return "error"
}

// timestamp returns the creation time for a new entry. Entries of a trip
// get strictly increasing timestamps so that ordering by creation time
// is total even when the clock stalls.
func (s *LedgerService) timestamp(snap *istore.Snapshot) time.Time {
	now := s.now().Truncate(time.Microsecond)
	latest := time.Time{}
	for _, e := range snap.Expenses {
		if e.CreatedAt.After(latest) {
			latest = e.CreatedAt
		}
	}
	for _, st := range snap.Settlements {
		if st.CreatedAt.After(latest) {
			latest = st.CreatedAt
		}
	}
	if !now.After(latest) {
		return latest.Add(time.Microsecond)
	}
	return now
}

func ledgerOf(snap *istore.Snapshot) balance.Ledger {
	return balance.Ledger{
		TripID:      snap.Trip.ID,
		Currency:    snap.Trip.Currency,
		Version:     snap.Trip.LedgerVersion,
		Members:     snap.Members,
		Expenses:    snap.Expenses,
		Settlements: snap.Settlements,
	}
}

// guardZeroSum recomputes balances over the ledger a transaction is about
// to commit. A non-zero total aborts the transaction.
func guardZeroSum(l balance.Ledger) error {
	_, err := balance.NetBalances(l)
	return err
}

func findExpense(snap *istore.Snapshot, expenseID string) (int, bool) {
	for i := range snap.Expenses {
		if snap.Expenses[i].ID == expenseID {
			return i, true
		}
	}
	return -1, false
}

func findSettlement(snap *istore.Snapshot, settlementID string) (int, bool) {
	for i := range snap.Settlements {
		if snap.Settlements[i].ID == settlementID {
			return i, true
		}
	}
	return -1, false
}

// newestFirst orders expenses by creation time descending, then id.
func newestFirst(expenses []types.Expense) {
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].CreatedAt.Equal(expenses[j].CreatedAt) {
			return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
		}
		return expenses[i].ID > expenses[j].ID
	})
}
