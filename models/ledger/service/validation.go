package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/balance"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/split"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/shopspring/decimal"
)

func requireActive(trip types.Trip) error {
	if trip.IsArchived {
		return apperrors.TripArchived(trip.ID)
	}
	return nil
}

func (s *LedgerService) validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", apperrors.ValidationFailed("invalid description", "description is required").
			WithCode(apperrors.CodeInvalidDescription)
	}
	if utf8.RuneCountInString(desc) > s.opts.DescriptionMaxLength {
		return "", apperrors.ValidationFailed(
			"invalid description",
			fmt.Sprintf("description cannot exceed %d characters", s.opts.DescriptionMaxLength),
		).WithCode(apperrors.CodeInvalidDescription)
	}
	return desc, nil
}

// checkCurrency accepts an empty code as the trip currency.
func checkCurrency(trip types.Trip, code string) error {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	c, err := valueobjects.ParseCurrency(code)
	if err != nil {
		return err
	}
	if c != trip.Currency {
		return apperrors.ValidationFailed(
			"currency mismatch",
			fmt.Sprintf("trip %s is kept in %s, got %s", trip.ID, trip.Currency, c),
		).WithCode(apperrors.CodeCurrencyMismatch)
	}
	return nil
}

func requireMember(l balance.Ledger, memberID, role string) error {
	if !l.HasMember(memberID) {
		return apperrors.ValidationFailed(
			"not a trip member",
			fmt.Sprintf("%s %s is not a member of this trip", role, memberID),
		).WithCode(apperrors.CodeNotTripMember)
	}
	return nil
}

func positiveAmount(amount decimal.Decimal, currency valueobjects.Currency) (valueobjects.Money, error) {
	m, err := valueobjects.NewMoney(amount, currency)
	if err != nil {
		return valueobjects.Money{}, err
	}
	if !m.IsPositive() {
		return valueobjects.Money{}, apperrors.ValidationFailed("invalid amount", "amount must be greater than zero").
			WithCode(apperrors.CodeInvalidAmount)
	}
	return m, nil
}

// computeSplits validates the payer and participants against the roster
// and runs the split strategy.
func computeSplits(
	l balance.Ledger,
	total valueobjects.Money,
	paidBy string,
	strategy types.SplitStrategy,
	participants []types.ParticipantInput,
) ([]types.Split, error) {
	if err := requireMember(l, paidBy, "payer"); err != nil {
		return nil, err
	}
	for _, p := range participants {
		if p.MemberID == "" {
			continue
		}
		if err := requireMember(l, p.MemberID, "participant"); err != nil {
			return nil, err
		}
	}
	return split.Compute(strategy, split.Request{
		Total:        total,
		PaidBy:       paidBy,
		Participants: participants,
	})
}

// participantsOf rebuilds the participant list an expense was split with.
func participantsOf(e *types.Expense) []types.ParticipantInput {
	out := make([]types.ParticipantInput, len(e.Splits))
	for i, sp := range e.Splits {
		amount := sp.Amount.Amount()
		out[i] = types.ParticipantInput{MemberID: sp.MemberID, Amount: &amount, Percentage: sp.Percentage}
	}
	return out
}

func sameSplits(a, b []types.Split) bool {
	if len(a) != len(b) {
		return false
	}
	shares := make(map[string]int64, len(a))
	for _, sp := range a {
		shares[sp.MemberID] = sp.Amount.MinorUnits()
	}
	for _, sp := range b {
		minor, ok := shares[sp.MemberID]
		if !ok || minor != sp.Amount.MinorUnits() {
			return false
		}
	}
	return true
}
