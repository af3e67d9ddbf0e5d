package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ensure LedgerStore implements store.LedgerStore
var _ store.LedgerStore = (*LedgerStore)(nil)

// DBPool is the subset of *pgxpool.Pool the store needs. pgxmock satisfies it.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// querier is implemented by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerStore implements store.LedgerStore using PostgreSQL
type LedgerStore struct {
	pool DBPool
}

// NewLedgerStore creates a new LedgerStore instance
func NewLedgerStore(pool DBPool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// snapshotTxOptions gives readers a stable view without blocking writers.
var snapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// GetTrip retrieves a trip by ID
func (s *LedgerStore) GetTrip(ctx context.Context, tripID string) (*types.Trip, error) {
	trip, err := getTrip(ctx, s.pool, tripID)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// ListTrips returns userID's trips, newest first
func (s *LedgerStore) ListTrips(ctx context.Context, userID string, archived bool) ([]types.Trip, error) {
	rows, err := s.pool.Query(ctx, listTripsQuery, userID, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", translate(err))
	}
	defer rows.Close()

	trips := make([]types.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, *trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// TripIDs lists every trip id in ascending order
func (s *LedgerStore) TripIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, tripIDsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list trip ids: %w", translate(err))
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan trip ids: %w", err)
	}
	return ids, nil
}

// IsMember reports whether userID is on tripID's roster
func (s *LedgerStore) IsMember(ctx context.Context, tripID, userID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, isMemberQuery, tripID, userID).Scan(&ok)
	if err != nil {
		if errors.Is(translate(err), store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return ok, nil
}

// GetExpense retrieves one expense and its splits
func (s *LedgerStore) GetExpense(ctx context.Context, tripID, expenseID string) (*types.Expense, error) {
	expense, err := scanExpense(s.pool.QueryRow(ctx, getExpenseQuery, tripID, expenseID))
	if err != nil {
		return nil, translate(err)
	}

	rows, err := s.pool.Query(ctx, expenseSplitsQuery, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", translate(err))
	}
	defer rows.Close()

	for rows.Next() {
		split, err := scanSplit(rows, expense.Currency)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return expense, nil
}

// Snapshot loads the whole ledger inside one REPEATABLE READ transaction
func (s *LedgerStore) Snapshot(ctx context.Context, tripID string) (*store.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, snapshotTxOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}

	snap, err := loadSnapshot(ctx, tx, tripID)
	if err != nil {
		rollback(ctx, tx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}
	return snap, nil
}

// WithTripLock serializes writers on the trip row. The row lock is held
// until commit, so fn always sees the latest committed ledger.
func (s *LedgerStore) WithTripLock(ctx context.Context, tripID string, fn func(ctx context.Context, tx store.LedgerTx) error) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var locked string
	if err := tx.QueryRow(ctx, lockTripQuery, tripID).Scan(&locked); err != nil {
		rollback(ctx, tx)
		if errors.Is(translate(err), store.ErrNotFound) {
			return 0, store.ErrNotFound
		}
		return 0, fmt.Errorf("failed to lock trip: %w", err)
	}

	if err := fn(ctx, &ledgerTx{tx: tx, tripID: tripID}); err != nil {
		rollback(ctx, tx)
		return 0, err
	}

	var version int64
	if err := tx.QueryRow(ctx, bumpVersionQuery, tripID).Scan(&version); err != nil {
		rollback(ctx, tx)
		return 0, fmt.Errorf("failed to bump ledger version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", translate(err))
	}
	return version, nil
}

// Ping checks database connectivity
func (s *LedgerStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.GetLogger().Errorw("Failed to rollback transaction", "error", err)
	}
}

// translate maps driver errors onto store errors. Malformed ids are treated
// as missing rows.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02":
			return store.ErrNotFound
		case "23505", "23503", "23514":
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.Message)
		}
	}
	return err
}
