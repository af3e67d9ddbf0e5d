package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	istore "github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/balance"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/google/uuid"
)

// CreateExpense records a payment and splits it among its participants.
func (s *LedgerService) CreateExpense(ctx context.Context, tripID, userID string, in types.ExpenseCreate) (*types.Expense, error) {
	var created types.Expense

	version, err := s.mutate(ctx, "create_expense", tripID, func(ctx context.Context, tx istore.LedgerTx, snap *istore.Snapshot) error {
		if err := requireActive(snap.Trip); err != nil {
			return err
		}
		desc, err := s.validateDescription(in.Description)
		if err != nil {
			return err
		}
		if err := checkCurrency(snap.Trip, in.Currency); err != nil {
			return err
		}
		total, err := positiveAmount(in.Amount, snap.Trip.Currency)
		if err != nil {
			return err
		}

		l := ledgerOf(snap)
		splits, err := computeSplits(l, total, in.PaidBy, in.SplitStrategy, in.Participants)
		if err != nil {
			return err
		}

		now := s.timestamp(snap)
		created = types.Expense{
			ID:            uuid.NewString(),
			TripID:        tripID,
			Description:   desc,
			Category:      strings.TrimSpace(in.Category),
			Amount:        total,
			Currency:      snap.Trip.Currency,
			PaidBy:        in.PaidBy,
			SplitStrategy: in.SplitStrategy,
			Splits:        splits,
			Locked:        balance.ShouldLock(now, snap.Settlements),
			CreatedBy:     userID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for i := range created.Splits {
			created.Splits[i].ExpenseID = created.ID
		}

		l.Expenses = append(append([]types.Expense(nil), l.Expenses...), created)
		if err := guardZeroSum(l); err != nil {
			return err
		}
		created.PaidByName = l.DisplayName(created.PaidBy)
		return tx.InsertExpense(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("Expense created", "tripID", tripID, "expenseID", created.ID, "amount", created.Amount.String(), "strategy", created.SplitStrategy)
	s.publish(ctx, types.EventTypeExpenseCreated, tripID, userID, types.LedgerEventPayload{
		EntityID:      created.ID,
		LedgerVersion: version,
		Amount:        created.Amount.String(),
		Currency:      string(created.Currency),
	})
	return &created, nil
}

// UpdateExpense applies the supplied changes. Once a settlement locks the
// expense only its description and category may change; resubmitting the
// current financial values is not a change.
func (s *LedgerService) UpdateExpense(ctx context.Context, tripID, expenseID, userID string, in types.ExpenseUpdate) (*types.Expense, error) {
	var updated types.Expense

	version, err := s.mutate(ctx, "update_expense", tripID, func(ctx context.Context, tx istore.LedgerTx, snap *istore.Snapshot) error {
		if err := requireActive(snap.Trip); err != nil {
			return err
		}
		idx, ok := findExpense(snap, expenseID)
		if !ok {
			return apperrors.NotFound("expense", expenseID)
		}
		current := snap.Expenses[idx]
		updated = current

		if in.Description != nil {
			desc, err := s.validateDescription(*in.Description)
			if err != nil {
				return err
			}
			updated.Description = desc
		}
		if in.Category != nil {
			updated.Category = strings.TrimSpace(*in.Category)
		}

		l := ledgerOf(snap)
		if in.Amount != nil || in.Currency != nil || in.PaidBy != nil || in.SplitStrategy != nil || in.Participants != nil {
			if in.Currency != nil {
				if err := checkCurrency(snap.Trip, *in.Currency); err != nil {
					return err
				}
			}
			total := current.Amount
			if in.Amount != nil {
				var err error
				if total, err = positiveAmount(*in.Amount, snap.Trip.Currency); err != nil {
					return err
				}
			}
			paidBy := current.PaidBy
			if in.PaidBy != nil {
				paidBy = *in.PaidBy
			}
			strategy := current.SplitStrategy
			if in.SplitStrategy != nil {
				strategy = *in.SplitStrategy
			}
			participants := in.Participants
			if participants == nil {
				participants = participantsOf(&current)
			}

			splits, err := computeSplits(l, total, paidBy, strategy, participants)
			if err != nil {
				return err
			}

			changed := !total.Equals(current.Amount) ||
				paidBy != current.PaidBy ||
				strategy != current.SplitStrategy ||
				!sameSplits(splits, current.Splits)
			if changed && current.Locked {
				return apperrors.ExpenseLocked(expenseID)
			}

			updated.Amount = total
			updated.PaidBy = paidBy
			updated.SplitStrategy = strategy
			updated.Splits = splits
			for i := range updated.Splits {
				updated.Splits[i].ExpenseID = expenseID
			}
		}

		updated.UpdatedAt = s.now().Truncate(time.Microsecond)
		l.Expenses = append([]types.Expense(nil), l.Expenses...)
		l.Expenses[idx] = updated
		if err := guardZeroSum(l); err != nil {
			return err
		}
		updated.PaidByName = l.DisplayName(updated.PaidBy)
		return tx.UpdateExpense(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("Expense updated", "tripID", tripID, "expenseID", expenseID)
	s.publish(ctx, types.EventTypeExpenseUpdated, tripID, userID, types.LedgerEventPayload{
		EntityID:      expenseID,
		LedgerVersion: version,
		Amount:        updated.Amount.String(),
		Currency:      string(updated.Currency),
	})
	return &updated, nil
}

// DeleteExpense removes an unlocked expense and its splits.
func (s *LedgerService) DeleteExpense(ctx context.Context, tripID, expenseID, userID string) error {
	version, err := s.mutate(ctx, "delete_expense", tripID, func(ctx context.Context, tx istore.LedgerTx, snap *istore.Snapshot) error {
		if err := requireActive(snap.Trip); err != nil {
			return err
		}
		idx, ok := findExpense(snap, expenseID)
		if !ok {
			return apperrors.NotFound("expense", expenseID)
		}
		if snap.Expenses[idx].Locked {
			return apperrors.ExpenseLocked(expenseID)
		}
		return tx.DeleteExpense(ctx, expenseID)
	})
	if err != nil {
		return err
	}

	s.log.Infow("Expense deleted", "tripID", tripID, "expenseID", expenseID)
	s.publish(ctx, types.EventTypeExpenseDeleted, tripID, userID, types.LedgerEventPayload{
		EntityID:      expenseID,
		LedgerVersion: version,
	})
	return nil
}

// GetExpense returns one expense with its splits.
func (s *LedgerService) GetExpense(ctx context.Context, tripID, expenseID string) (*types.Expense, error) {
	e, err := s.store.GetExpense(ctx, tripID, expenseID)
	if err != nil {
		return nil, s.mapStoreError(err, "expense", expenseID)
	}
	snap, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	e.PaidByName = ledgerOf(snap).DisplayName(e.PaidBy)
	return e, nil
}

// ListExpenses returns a trip's expenses, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, tripID string) ([]types.Expense, error) {
	snap, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	l := ledgerOf(snap)
	expenses := make([]types.Expense, len(snap.Expenses))
	for i, e := range snap.Expenses {
		e.PaidByName = l.DisplayName(e.PaidBy)
		expenses[i] = e
	}
	newestFirst(expenses)
	return expenses, nil
}

func (s *LedgerService) snapshot(ctx context.Context, tripID string) (*istore.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx, tripID)
	if err != nil {
		return nil, s.mapStoreError(err, "trip", tripID)
	}
	return snap, nil
}
