package balance

import (
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// Running lists every entry that moves memberID's balance in timeline order
// with a cumulative balance. When viewerID is set and differs from memberID
// the deltas are pairwise: positive means viewerID owes memberID more.
func Running(l Ledger, memberID, viewerID string) []types.BreakdownEntry {
	pairwise := viewerID != "" && viewerID != memberID

	var running int64
	out := make([]types.BreakdownEntry, 0)
	for _, en := range timeline(l) {
		var (
			delta    int64
			relevant bool
			row      types.BreakdownEntry
		)

		switch {
		case en.expense != nil:
			e := en.expense
			if pairwise {
				delta = pairwiseExpenseDelta(e, memberID, viewerID)
				relevant = delta != 0
			} else {
				delta = expenseDelta(e, memberID)
				relevant = e.Involves(memberID)
			}
			row = types.BreakdownEntry{
				Kind:        types.EntryExpense,
				EntryID:     e.ID,
				Description: e.Description,
				Date:        e.CreatedAt,
				PaidBy:      e.PaidBy,
			}
		case en.settlement != nil:
			s := en.settlement
			if pairwise {
				delta = pairwiseSettlementDelta(s, memberID, viewerID)
			} else {
				delta = settlementDelta(s, memberID)
			}
			relevant = delta != 0
			row = types.BreakdownEntry{
				Kind:        types.EntrySettlement,
				EntryID:     s.ID,
				Description: s.Notes,
				Date:        s.CreatedAt,
				FromMember:  s.FromMember,
				ToMember:    s.ToMember,
			}
		}

		if !relevant {
			continue
		}
		running += delta
		row.Delta = l.money(delta)
		row.RunningBalance = l.money(running)
		out = append(out, row)
	}
	return out
}

// Breakdown builds a member's detail view. A viewer equal to the member, or
// no viewer, yields the global view.
func Breakdown(l Ledger, memberID, viewerID string) types.MemberBreakdown {
	pairwise := viewerID != "" && viewerID != memberID

	view := types.MemberBreakdown{
		TripID:      l.TripID,
		MemberID:    memberID,
		DisplayName: l.DisplayName(memberID),
		IsPairwise:  pairwise,
		Entries:     Running(l, memberID, viewerID),
	}
	if pairwise {
		view.ViewerID = viewerID
		view.NetBalance = Pairwise(l, memberID, viewerID).Amount
	} else {
		view.NetBalance = BalanceOf(l, memberID)
	}
	return view
}
