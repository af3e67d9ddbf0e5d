package service

import (
	"context"
	"sort"
	"strings"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	istore "github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/balance"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/google/uuid"
)

// CreateSettlement records a direct payment between two members and locks
// every expense it accounts for.
func (s *LedgerService) CreateSettlement(ctx context.Context, tripID, userID string, in types.SettlementCreate) (*types.Settlement, int, error) {
	var (
		created types.Settlement
		locked  int
	)

	version, err := s.mutate(ctx, "create_settlement", tripID, func(ctx context.Context, tx istore.LedgerTx, snap *istore.Snapshot) error {
		if err := requireActive(snap.Trip); err != nil {
			return err
		}
		l := ledgerOf(snap)
		if err := requireMember(l, in.FromMember, "payer"); err != nil {
			return err
		}
		if err := requireMember(l, in.ToMember, "recipient"); err != nil {
			return err
		}
		if in.FromMember == in.ToMember {
			return apperrors.ValidationFailed("invalid settlement", "a member cannot settle with themselves").
				WithCode(apperrors.CodeSelfSettlement)
		}
		if err := checkCurrency(snap.Trip, in.Currency); err != nil {
			return err
		}
		amount, err := positiveAmount(in.Amount, snap.Trip.Currency)
		if err != nil {
			return err
		}

		created = types.Settlement{
			ID:         uuid.NewString(),
			TripID:     tripID,
			FromMember: in.FromMember,
			ToMember:   in.ToMember,
			Amount:     amount,
			Currency:   snap.Trip.Currency,
			Notes:      strings.TrimSpace(in.Notes),
			CreatedBy:  userID,
			CreatedAt:  s.timestamp(snap),
		}

		l.Settlements = append(append([]types.Settlement(nil), l.Settlements...), created)
		if err := guardZeroSum(l); err != nil {
			return err
		}
		if err := tx.InsertSettlement(ctx, &created); err != nil {
			return err
		}

		lock, _ := lockChanges(snap.Expenses, l.Settlements)
		locked = len(lock)
		if locked == 0 {
			return nil
		}
		return tx.SetLocked(ctx, lock, true)
	})
	if err != nil {
		return nil, 0, err
	}

	s.log.Infow("Settlement recorded", "tripID", tripID, "settlementID", created.ID, "from", created.FromMember, "to", created.ToMember, "amount", created.Amount.String(), "lockedExpenses", locked)
	s.publish(ctx, types.EventTypeSettlementCreated, tripID, userID, types.LedgerEventPayload{
		EntityID:      created.ID,
		LedgerVersion: version,
		Amount:        created.Amount.String(),
		Currency:      string(created.Currency),
		LockedCount:   locked,
	})
	return &created, locked, nil
}

// DeleteSettlement removes a settlement and recomputes which expenses
// remain locked by the settlements that are left.
func (s *LedgerService) DeleteSettlement(ctx context.Context, tripID, settlementID, userID string) error {
	version, err := s.mutate(ctx, "delete_settlement", tripID, func(ctx context.Context, tx istore.LedgerTx, snap *istore.Snapshot) error {
		if err := requireActive(snap.Trip); err != nil {
			return err
		}
		idx, ok := findSettlement(snap, settlementID)
		if !ok {
			return apperrors.NotFound("settlement", settlementID)
		}
		if err := tx.DeleteSettlement(ctx, settlementID); err != nil {
			return err
		}

		remaining := make([]types.Settlement, 0, len(snap.Settlements)-1)
		remaining = append(remaining, snap.Settlements[:idx]...)
		remaining = append(remaining, snap.Settlements[idx+1:]...)

		lock, unlock := lockChanges(snap.Expenses, remaining)
		if len(lock) > 0 {
			if err := tx.SetLocked(ctx, lock, true); err != nil {
				return err
			}
		}
		if len(unlock) > 0 {
			return tx.SetLocked(ctx, unlock, false)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Infow("Settlement deleted", "tripID", tripID, "settlementID", settlementID)
	s.publish(ctx, types.EventTypeSettlementDeleted, tripID, userID, types.LedgerEventPayload{
		EntityID:      settlementID,
		LedgerVersion: version,
	})
	return nil
}

// ListSettlements returns a trip's settlements, newest first.
func (s *LedgerService) ListSettlements(ctx context.Context, tripID string) ([]types.Settlement, error) {
	snap, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	settlements := append([]types.Settlement(nil), snap.Settlements...)
	sort.Slice(settlements, func(i, j int) bool {
		if !settlements[i].CreatedAt.Equal(settlements[j].CreatedAt) {
			return settlements[i].CreatedAt.After(settlements[j].CreatedAt)
		}
		return settlements[i].ID > settlements[j].ID
	})
	return settlements, nil
}

// SuggestSettlements proposes transfers that clear every balance.
func (s *LedgerService) SuggestSettlements(ctx context.Context, tripID string) ([]types.Transfer, error) {
	balances, err := s.GetTripBalances(ctx, tripID)
	if err != nil {
		return nil, err
	}
	transfers, err := balance.Suggest(tripID, balances.Balances)
	if err != nil {
		s.reportInconsistency(tripID, err)
		return nil, err
	}
	return transfers, nil
}

// lockChanges compares each expense's stored lock flag with the flag the
// given settlements imply.
func lockChanges(expenses []types.Expense, settlements []types.Settlement) (lock, unlock []string) {
	for _, e := range expenses {
		want := balance.ShouldLock(e.CreatedAt, settlements)
		switch {
		case want && !e.Locked:
			lock = append(lock, e.ID)
		case !want && e.Locked:
			unlock = append(unlock, e.ID)
		}
	}
	return lock, unlock
}
