package balance

import (
	"fmt"
)

// Violation describes one broken ledger invariant.
type Violation struct {
	Rule     string `yaml:"rule" json:"rule"`
	EntityID string `yaml:"entityId,omitempty" json:"entityId,omitempty"`
	Detail   string `yaml:"detail" json:"detail"`
}

// Rules checked by Verify.
const (
	RuleSplitCompleteness = "split_completeness"
	RuleZeroSum           = "zero_sum"
	RuleLockState         = "lock_state"
	RuleMembership        = "membership"
	RuleCurrency          = "currency"
)

// Verify checks every stored invariant of l and reports all violations.
func Verify(l Ledger) []Violation {
	var out []Violation

	for i := range l.Expenses {
		e := &l.Expenses[i]
		var sum int64
		for _, s := range e.Splits {
			sum += s.Amount.MinorUnits()
			if !l.HasMember(s.MemberID) {
				out = append(out, Violation{RuleMembership, e.ID, fmt.Sprintf("split member %s is not on the trip", s.MemberID)})
			}
		}
		if sum != e.Amount.MinorUnits() {
			out = append(out, Violation{RuleSplitCompleteness, e.ID, fmt.Sprintf("splits sum to %d, total is %d", sum, e.Amount.MinorUnits())})
		}
		if len(e.Splits) == 0 {
			out = append(out, Violation{RuleSplitCompleteness, e.ID, "expense has no splits"})
		}
		if !l.HasMember(e.PaidBy) {
			out = append(out, Violation{RuleMembership, e.ID, fmt.Sprintf("payer %s is not on the trip", e.PaidBy)})
		}
		if e.Currency != l.Currency {
			out = append(out, Violation{RuleCurrency, e.ID, fmt.Sprintf("expense currency %s differs from trip currency %s", e.Currency, l.Currency)})
		}
		if want := ShouldLock(e.CreatedAt, l.Settlements); want != e.Locked {
			out = append(out, Violation{RuleLockState, e.ID, fmt.Sprintf("locked=%t, expected %t", e.Locked, want)})
		}
	}

	for i := range l.Settlements {
		s := &l.Settlements[i]
		if s.FromMember == s.ToMember {
			out = append(out, Violation{RuleMembership, s.ID, "settlement between a member and themselves"})
		}
		if s.Currency != l.Currency {
			out = append(out, Violation{RuleCurrency, s.ID, fmt.Sprintf("settlement currency %s differs from trip currency %s", s.Currency, l.Currency)})
		}
	}

	if _, err := NetBalances(l); err != nil {
		out = append(out, Violation{Rule: RuleZeroSum, EntityID: l.TripID, Detail: err.Error()})
	}
	return out
}
