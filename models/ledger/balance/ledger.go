// Package balance derives balances from a trip's expenses and settlements.
// Everything here is a pure function of a Ledger snapshot.
package balance

import (
	"sort"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// Ledger is a consistent snapshot of one trip.
type Ledger struct {
	TripID      string
	Currency    valueobjects.Currency
	Version     int64
	Members     []types.Member
	Expenses    []types.Expense
	Settlements []types.Settlement
}

func (l Ledger) money(minor int64) valueobjects.Money {
	return valueobjects.New(minor, l.Currency)
}

// DisplayName returns the roster name for memberID, or "" if unknown.
func (l Ledger) DisplayName(memberID string) string {
	for _, m := range l.Members {
		if m.UserID == memberID {
			return m.DisplayName
		}
	}
	return ""
}

// HasMember reports whether memberID is on the trip roster.
func (l Ledger) HasMember(memberID string) bool {
	for _, m := range l.Members {
		if m.UserID == memberID {
			return true
		}
	}
	return false
}

// ShouldLock reports whether any settlement was created at or after the
// expense, which freezes the expense's financial fields.
func ShouldLock(expenseCreatedAt time.Time, settlements []types.Settlement) bool {
	for _, s := range settlements {
		if !s.CreatedAt.Before(expenseCreatedAt) {
			return true
		}
	}
	return false
}

// TotalSpent sums every expense total in the trip.
func TotalSpent(l Ledger) valueobjects.Money {
	var total int64
	for _, e := range l.Expenses {
		total += e.Amount.MinorUnits()
	}
	return l.money(total)
}

// entry is an expense or settlement positioned on the ledger timeline.
type entry struct {
	at         time.Time
	id         string
	expense    *types.Expense
	settlement *types.Settlement
}

// timeline orders all entries by creation time, ties broken by id.
func timeline(l Ledger) []entry {
	entries := make([]entry, 0, len(l.Expenses)+len(l.Settlements))
	for i := range l.Expenses {
		e := &l.Expenses[i]
		entries = append(entries, entry{at: e.CreatedAt, id: e.ID, expense: e})
	}
	for i := range l.Settlements {
		s := &l.Settlements[i]
		entries = append(entries, entry{at: s.CreatedAt, id: s.ID, settlement: s})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].at.Equal(entries[j].at) {
			return entries[i].at.Before(entries[j].at)
		}
		return entries[i].id < entries[j].id
	})
	return entries
}
