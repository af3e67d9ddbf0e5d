package postgres

import (
	"context"
	"fmt"

	"github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func getTrip(ctx context.Context, q querier, tripID string) (*types.Trip, error) {
	trip, err := scanTrip(q.QueryRow(ctx, getTripQuery, tripID))
	if err != nil {
		return nil, translate(err)
	}
	return trip, nil
}

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var (
		trip     types.Trip
		currency string
	)
	err := row.Scan(
		&trip.ID,
		&trip.Name,
		&currency,
		&trip.IsArchived,
		&trip.LedgerVersion,
		&trip.CreatedBy,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	trip.Currency = valueobjects.Currency(currency)
	return &trip, nil
}

func scanMember(row pgx.Row) (types.Member, error) {
	var m types.Member
	err := row.Scan(&m.TripID, &m.UserID, &m.DisplayName, &m.JoinedAt)
	return m, err
}

func scanExpense(row pgx.Row) (*types.Expense, error) {
	var (
		e        types.Expense
		minor    int64
		currency string
		strategy string
	)
	err := row.Scan(
		&e.ID,
		&e.TripID,
		&e.Description,
		&e.Category,
		&minor,
		&currency,
		&e.PaidBy,
		&strategy,
		&e.Locked,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Currency = valueobjects.Currency(currency)
	e.Amount = valueobjects.New(minor, e.Currency)
	e.SplitStrategy = types.SplitStrategy(strategy)
	e.Splits = make([]types.Split, 0)
	return &e, nil
}

func scanSplit(row pgx.Row, currency valueobjects.Currency) (types.Split, error) {
	var (
		s     types.Split
		minor int64
		pct   *string
	)
	if err := row.Scan(&s.ExpenseID, &s.MemberID, &minor, &pct); err != nil {
		return s, err
	}
	s.Amount = valueobjects.New(minor, currency)
	if pct != nil {
		d, err := decimal.NewFromString(*pct)
		if err != nil {
			return s, fmt.Errorf("invalid percentage %q: %w", *pct, err)
		}
		s.Percentage = &d
	}
	return s, nil
}

func scanSettlement(row pgx.Row) (types.Settlement, error) {
	var (
		s        types.Settlement
		minor    int64
		currency string
	)
	err := row.Scan(
		&s.ID,
		&s.TripID,
		&s.FromMember,
		&s.ToMember,
		&minor,
		&currency,
		&s.Notes,
		&s.CreatedBy,
		&s.CreatedAt,
	)
	if err != nil {
		return s, err
	}
	s.Currency = valueobjects.Currency(currency)
	s.Amount = valueobjects.New(minor, s.Currency)
	return s, nil
}

// loadSnapshot reads trip, roster, expenses with splits and settlements.
func loadSnapshot(ctx context.Context, q querier, tripID string) (*store.Snapshot, error) {
	trip, err := getTrip(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	snap := &store.Snapshot{Trip: *trip}

	if snap.Members, err = collect(ctx, q, listMembersQuery, tripID, scanMember); err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	expenses, err := collect(ctx, q, listExpensesQuery, tripID, func(row pgx.Row) (*types.Expense, error) {
		return scanExpense(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	byID := make(map[string]*types.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}
	splits, err := collect(ctx, q, tripSplitsQuery, tripID, func(row pgx.Row) (types.Split, error) {
		return scanSplit(row, trip.Currency)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", err)
	}
	for _, sp := range splits {
		if e, ok := byID[sp.ExpenseID]; ok {
			sp.Amount = sp.Amount.WithCurrency(e.Currency)
			e.Splits = append(e.Splits, sp)
		}
	}

	snap.Expenses = make([]types.Expense, 0, len(expenses))
	for _, e := range expenses {
		snap.Expenses = append(snap.Expenses, *e)
	}

	if snap.Settlements, err = collect(ctx, q, listSettlementsQuery, tripID, scanSettlement); err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}
	return snap, nil
}

// collect runs a single-argument query and scans every row with scan.
func collect[T any](ctx context.Context, q querier, query, arg string, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
