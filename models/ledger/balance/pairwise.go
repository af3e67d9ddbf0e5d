package balance

import (
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// pairwiseExpenseDelta is how much an expense adds to what b owes a.
// Expenses paid by a third member create no debt between a and b.
func pairwiseExpenseDelta(e *types.Expense, a, b string) int64 {
	switch e.PaidBy {
	case a:
		if share := e.ShareOf(b); share != nil {
			return share.Amount.MinorUnits()
		}
	case b:
		if share := e.ShareOf(a); share != nil {
			return -share.Amount.MinorUnits()
		}
	}
	return 0
}

// pairwiseSettlementDelta is how much a settlement adds to what b owes a.
func pairwiseSettlementDelta(s *types.Settlement, a, b string) int64 {
	switch {
	case s.FromMember == b && s.ToMember == a:
		return -s.Amount.MinorUnits()
	case s.FromMember == a && s.ToMember == b:
		return s.Amount.MinorUnits()
	}
	return 0
}

// Pairwise returns what b owes a across expenses involving both of them and
// settlements made directly between them. Pairwise(a, b) is always the
// negation of Pairwise(b, a).
func Pairwise(l Ledger, a, b string) types.PairwiseBalance {
	var owed int64
	if a != b {
		for i := range l.Expenses {
			owed += pairwiseExpenseDelta(&l.Expenses[i], a, b)
		}
		for i := range l.Settlements {
			owed += pairwiseSettlementDelta(&l.Settlements[i], a, b)
		}
	}
	return types.PairwiseBalance{MemberA: a, MemberB: b, Amount: l.money(owed)}
}
