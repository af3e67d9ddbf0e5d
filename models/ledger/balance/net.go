package balance

import (
	"fmt"
	"sort"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// expenseDelta is the change an expense makes to memberID's net balance.
func expenseDelta(e *types.Expense, memberID string) int64 {
	var delta int64
	if share := e.ShareOf(memberID); share != nil {
		delta -= share.Amount.MinorUnits()
	}
	if e.PaidBy == memberID {
		delta += e.Amount.MinorUnits()
	}
	return delta
}

// settlementDelta is the change a settlement makes to memberID's net balance.
// Paying a debt moves the payer towards zero from below.
func settlementDelta(s *types.Settlement, memberID string) int64 {
	switch memberID {
	case s.FromMember:
		return s.Amount.MinorUnits()
	case s.ToMember:
		return -s.Amount.MinorUnits()
	}
	return 0
}

func netMinor(l Ledger) map[string]int64 {
	net := make(map[string]int64, len(l.Members))
	for _, m := range l.Members {
		net[m.UserID] = 0
	}
	for i := range l.Expenses {
		e := &l.Expenses[i]
		net[e.PaidBy] += e.Amount.MinorUnits()
		for _, s := range e.Splits {
			net[s.MemberID] -= s.Amount.MinorUnits()
		}
	}
	for i := range l.Settlements {
		s := &l.Settlements[i]
		net[s.FromMember] += s.Amount.MinorUnits()
		net[s.ToMember] -= s.Amount.MinorUnits()
	}
	return net
}

// NetBalances returns every member's net balance sorted by member id.
// Positive means the group owes the member. A non-zero total is reported as
// an internal inconsistency.
func NetBalances(l Ledger) ([]types.MemberBalance, error) {
	net := netMinor(l)

	balances := make([]types.MemberBalance, 0, len(net))
	for id, minor := range net {
		balances = append(balances, types.MemberBalance{
			MemberID:    id,
			DisplayName: l.DisplayName(id),
			Balance:     l.money(minor),
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].MemberID < balances[j].MemberID })

	if err := CheckZeroSum(l.TripID, balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// CheckZeroSum verifies that balances add up to exactly zero.
func CheckZeroSum(tripID string, balances []types.MemberBalance) error {
	var sum int64
	for _, b := range balances {
		sum += b.Balance.MinorUnits()
	}
	if sum != 0 {
		return apperrors.InternalInconsistency(tripID, fmt.Sprintf("net balances sum to %d minor units", sum))
	}
	return nil
}

// BalanceOf returns memberID's net balance.
func BalanceOf(l Ledger, memberID string) valueobjects.Money {
	return l.money(netMinor(l)[memberID])
}
