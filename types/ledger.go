package types

import (
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/shopspring/decimal"
)

// SplitStrategy names the rule used to divide an expense among participants.
type SplitStrategy string

const (
	SplitEqual      SplitStrategy = "Equal"
	SplitCustom     SplitStrategy = "Custom"
	SplitPaidFor    SplitStrategy = "PaidFor"
	SplitPercentage SplitStrategy = "Percentage"
)

// IsValid reports whether s is a known strategy.
func (s SplitStrategy) IsValid() bool {
	switch s {
	case SplitEqual, SplitCustom, SplitPaidFor, SplitPercentage:
		return true
	}
	return false
}

// Trip is the ledger's view of a trip: its currency and archive state.
type Trip struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Currency      valueobjects.Currency `json:"currency"`
	IsArchived    bool                  `json:"isArchived"`
	LedgerVersion int64                 `json:"ledgerVersion"`
	CreatedBy     string                `json:"createdBy"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// Member is a participant of a trip. UserID doubles as the member id.
type Member struct {
	TripID      string    `json:"tripId"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Split is one participant's share of an expense.
type Split struct {
	ExpenseID  string             `json:"expenseId,omitempty"`
	MemberID   string             `json:"memberId"`
	Amount     valueobjects.Money `json:"amount"`
	Percentage *decimal.Decimal   `json:"percentage,omitempty"`
}

// Expense is a payment by one member on behalf of one or more participants.
type Expense struct {
	ID            string                `json:"id"`
	TripID        string                `json:"tripId"`
	Description   string                `json:"description"`
	Category      string                `json:"category,omitempty"`
	Amount        valueobjects.Money    `json:"amount"`
	Currency      valueobjects.Currency `json:"currency"`
	PaidBy        string                `json:"paidBy"`
	PaidByName    string                `json:"paidByName,omitempty"`
	SplitStrategy SplitStrategy         `json:"splitType"`
	Splits        []Split               `json:"splits"`
	// Locked is set once a settlement created after this expense exists.
	// Clients know it as hasSettlements.
	Locked    bool      `json:"hasSettlements"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Involves reports whether memberID paid or holds a split on e.
func (e *Expense) Involves(memberID string) bool {
	if e.PaidBy == memberID {
		return true
	}
	return e.ShareOf(memberID) != nil
}

// ShareOf returns memberID's split, or nil when they hold none.
func (e *Expense) ShareOf(memberID string) *Split {
	for i := range e.Splits {
		if e.Splits[i].MemberID == memberID {
			return &e.Splits[i]
		}
	}
	return nil
}

// Settlement is a direct payment from one member to another.
type Settlement struct {
	ID         string                `json:"id"`
	TripID     string                `json:"tripId"`
	FromMember string                `json:"fromMemberId"`
	ToMember   string                `json:"toMemberId"`
	Amount     valueobjects.Money    `json:"amount"`
	Currency   valueobjects.Currency `json:"currency"`
	Notes      string                `json:"notes,omitempty"`
	CreatedBy  string                `json:"createdBy"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// ParticipantInput is a requested participant with an optional explicit
// amount (Custom) or percentage (Percentage).
type ParticipantInput struct {
	MemberID   string           `json:"memberId" binding:"required"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// ExpenseCreate is the request body for a new expense.
type ExpenseCreate struct {
	Description   string             `json:"description" binding:"required"`
	Category      string             `json:"category"`
	Amount        decimal.Decimal    `json:"amount"`
	Currency      string             `json:"currency"`
	PaidBy        string             `json:"paidBy" binding:"required"`
	SplitStrategy SplitStrategy      `json:"splitType" binding:"required"`
	Participants  []ParticipantInput `json:"participants"`
}

// ExpenseUpdate carries optional changes. A nil field is left untouched;
// a nil Participants slice keeps the current participant set.
type ExpenseUpdate struct {
	Description   *string            `json:"description,omitempty"`
	Category      *string            `json:"category,omitempty"`
	Amount        *decimal.Decimal   `json:"amount,omitempty"`
	Currency      *string            `json:"currency,omitempty"`
	PaidBy        *string            `json:"paidBy,omitempty"`
	SplitStrategy *SplitStrategy     `json:"splitType,omitempty"`
	Participants  []ParticipantInput `json:"participants,omitempty"`
}

// SettlementCreate is the request body for a new settlement.
type SettlementCreate struct {
	FromMember string          `json:"fromMemberId" binding:"required"`
	ToMember   string          `json:"toMemberId" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Notes      string          `json:"notes"`
}

// MemberBalance is a member's net position. Positive means the member is owed.
type MemberBalance struct {
	MemberID    string             `json:"memberId"`
	DisplayName string             `json:"displayName,omitempty"`
	Balance     valueobjects.Money `json:"balance"`
}

// TripBalances is the aggregate view returned for a trip.
type TripBalances struct {
	TripID        string                `json:"tripId"`
	Currency      valueobjects.Currency `json:"currency"`
	LedgerVersion int64                 `json:"ledgerVersion"`
	TotalSpent    valueobjects.Money    `json:"totalSpent"`
	Balances      []MemberBalance       `json:"balances"`
}

// PairwiseBalance is what MemberB owes MemberA. Negative means A owes B.
type PairwiseBalance struct {
	MemberA string             `json:"memberA"`
	MemberB string             `json:"memberB"`
	Amount  valueobjects.Money `json:"amount"`
}

// Transfer is one suggested payment that helps settle a trip.
type Transfer struct {
	From   string             `json:"fromMemberId"`
	To     string             `json:"toMemberId"`
	Amount valueobjects.Money `json:"amount"`
}

// EntryKind tells expense and settlement rows apart in a breakdown.
type EntryKind string

const (
	EntryExpense    EntryKind = "expense"
	EntrySettlement EntryKind = "settlement"
)

// BreakdownEntry is one row of a member's running balance.
type BreakdownEntry struct {
	Kind           EntryKind          `json:"kind"`
	EntryID        string             `json:"entryId"`
	Description    string             `json:"description"`
	Date           time.Time          `json:"date"`
	PaidBy         string             `json:"paidBy,omitempty"`
	FromMember     string             `json:"fromMemberId,omitempty"`
	ToMember       string             `json:"toMemberId,omitempty"`
	Delta          valueobjects.Money `json:"delta"`
	RunningBalance valueobjects.Money `json:"runningBalance"`
}

// MemberBreakdown is a member's detail view, optionally relative to a viewer.
type MemberBreakdown struct {
	TripID      string             `json:"tripId"`
	MemberID    string             `json:"memberId"`
	DisplayName string             `json:"displayName,omitempty"`
	ViewerID    string             `json:"viewerId,omitempty"`
	IsPairwise  bool               `json:"isPairwise"`
	NetBalance  valueobjects.Money `json:"netBalance"`
	Entries     []BreakdownEntry   `json:"entries"`
}

// TripSummary is a trip with the caller's position in it.
type TripSummary struct {
	Trip
	MyBalance valueobjects.Money `json:"myBalance"`
}

// CurrencyTotal sums balances that share a currency.
type CurrencyTotal struct {
	Currency valueobjects.Currency `json:"currency"`
	Amount   valueobjects.Money    `json:"amount"`
}

// Dashboard is a user's overall position across active trips.
type Dashboard struct {
	UserID          string          `json:"userId"`
	OverallBalances []CurrencyTotal `json:"overallBalances"`
	Trips           []TripSummary   `json:"trips"`
}
