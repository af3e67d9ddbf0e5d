package postgres

import (
	"context"
	"fmt"

	"github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/jackc/pgx/v5"
)

// ledgerTx writes through the transaction holding the trip row lock.
type ledgerTx struct {
	tx     pgx.Tx
	tripID string
}

func (t *ledgerTx) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	return loadSnapshot(ctx, t.tx, t.tripID)
}

func (t *ledgerTx) InsertExpense(ctx context.Context, e *types.Expense) error {
	_, err := t.tx.Exec(ctx, insertExpenseQuery,
		e.ID,
		t.tripID,
		e.Description,
		e.Category,
		e.Amount.MinorUnits(),
		string(e.Currency),
		e.PaidBy,
		string(e.SplitStrategy),
		e.Locked,
		e.CreatedBy,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", translate(err))
	}
	return t.insertSplits(ctx, e)
}

func (t *ledgerTx) UpdateExpense(ctx context.Context, e *types.Expense) error {
	tag, err := t.tx.Exec(ctx, updateExpenseQuery,
		t.tripID,
		e.ID,
		e.Description,
		e.Category,
		e.Amount.MinorUnits(),
		string(e.Currency),
		e.PaidBy,
		string(e.SplitStrategy),
		e.Locked,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if _, err := t.tx.Exec(ctx, deleteSplitsQuery, e.ID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", translate(err))
	}
	return t.insertSplits(ctx, e)
}

func (t *ledgerTx) insertSplits(ctx context.Context, e *types.Expense) error {
	for _, s := range e.Splits {
		var pct *string
		if s.Percentage != nil {
			v := s.Percentage.String()
			pct = &v
		}
		if _, err := t.tx.Exec(ctx, insertSplitQuery, e.ID, s.MemberID, s.Amount.MinorUnits(), pct); err != nil {
			return fmt.Errorf("failed to insert split for %s: %w", s.MemberID, translate(err))
		}
	}
	return nil
}

func (t *ledgerTx) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := t.tx.Exec(ctx, deleteExpenseQuery, t.tripID, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *ledgerTx) InsertSettlement(ctx context.Context, s *types.Settlement) error {
	_, err := t.tx.Exec(ctx, insertSettlementQuery,
		s.ID,
		t.tripID,
		s.FromMember,
		s.ToMember,
		s.Amount.MinorUnits(),
		string(s.Currency),
		s.Notes,
		s.CreatedBy,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", translate(err))
	}
	return nil
}

func (t *ledgerTx) DeleteSettlement(ctx context.Context, settlementID string) error {
	tag, err := t.tx.Exec(ctx, deleteSettlementQuery, t.tripID, settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *ledgerTx) SetLocked(ctx context.Context, expenseIDs []string, locked bool) error {
	if len(expenseIDs) == 0 {
		return nil
	}
	tag, err := t.tx.Exec(ctx, setLockedQuery, t.tripID, expenseIDs, locked)
	if err != nil {
		return fmt.Errorf("failed to update lock state: %w", translate(err))
	}
	if tag.RowsAffected() != int64(len(expenseIDs)) {
		return store.ErrNotFound
	}
	return nil
}

func (t *ledgerTx) SetArchived(ctx context.Context, archived bool) error {
	tag, err := t.tx.Exec(ctx, setArchivedQuery, t.tripID, archived)
	if err != nil {
		return fmt.Errorf("failed to update archive state: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
