package split

import (
	"fmt"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/shopspring/decimal"
)

// customTolerance is how far explicit shares may drift from the total, in
// minor units, before the split is rejected.
const customTolerance = 1

var (
	hundredPercent      = decimal.NewFromInt(100)
	percentageTolerance = decimal.New(1, -2)
)

type equalStrategy struct{}

func (equalStrategy) Compute(req Request) ([]types.Split, error) {
	participants, err := orderedParticipants(req.Participants)
	if err != nil {
		return nil, err
	}
	return divideEqually(req.Total, participants)
}

// paidForStrategy splits among everyone except the payer.
type paidForStrategy struct{}

func (paidForStrategy) Compute(req Request) ([]types.Split, error) {
	recipients := make([]types.ParticipantInput, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p.MemberID != req.PaidBy {
			recipients = append(recipients, p)
		}
	}
	participants, err := orderedParticipants(recipients)
	if err != nil {
		return nil, err
	}
	return divideEqually(req.Total, participants)
}

type customStrategy struct{}

func (customStrategy) Compute(req Request) ([]types.Split, error) {
	participants, err := orderedParticipants(req.Participants)
	if err != nil {
		return nil, err
	}

	currency := req.Total.Currency()
	splits := make([]types.Split, len(participants))
	var sum int64
	for i, p := range participants {
		if p.Amount == nil {
			return nil, apperrors.ValidationFailed(
				"missing amount",
				fmt.Sprintf("custom split for member %s needs an amount", p.MemberID),
			)
		}
		share, err := valueobjects.NewMoney(*p.Amount, currency)
		if err != nil {
			return nil, err
		}
		if share.IsNegative() {
			return nil, apperrors.ValidationFailed(
				"invalid amount",
				fmt.Sprintf("share for member %s cannot be negative", p.MemberID),
			).WithCode(apperrors.CodeNegativeShare)
		}
		splits[i] = types.Split{MemberID: p.MemberID, Amount: share}
		sum += share.MinorUnits()
	}

	diff := req.Total.MinorUnits() - sum
	if diff > customTolerance || diff < -customTolerance {
		return nil, apperrors.SplitMismatch(req.Total.String(), valueobjects.New(sum, currency).String())
	}
	if diff != 0 {
		absorbRounding(splits, diff)
	}
	return splits, nil
}

// absorbRounding moves a rounding difference onto the first share that can
// take it without going negative.
func absorbRounding(splits []types.Split, diff int64) {
	for i := range splits {
		adjusted := splits[i].Amount.MinorUnits() + diff
		if adjusted >= 0 {
			splits[i].Amount = valueobjects.New(adjusted, splits[i].Amount.Currency())
			return
		}
	}
}

type percentageStrategy struct{}

func (percentageStrategy) Compute(req Request) ([]types.Split, error) {
	participants, err := orderedParticipants(req.Participants)
	if err != nil {
		return nil, err
	}

	weights := make([]decimal.Decimal, len(participants))
	sum := decimal.Zero
	for i, p := range participants {
		if p.Percentage == nil {
			return nil, apperrors.ValidationFailed(
				"missing percentage",
				fmt.Sprintf("percentage split for member %s needs a percentage", p.MemberID),
			)
		}
		pct := *p.Percentage
		if pct.IsNegative() || pct.GreaterThan(hundredPercent) {
			return nil, apperrors.ValidationFailed(
				"invalid percentage",
				fmt.Sprintf("percentage for member %s must be between 0 and 100", p.MemberID),
			).WithCode(apperrors.CodeNegativeShare)
		}
		weights[i] = pct
		sum = sum.Add(pct)
	}

	if sum.Sub(hundredPercent).Abs().GreaterThan(percentageTolerance) {
		return nil, apperrors.SplitMismatch("100%", sum.String()+"%")
	}

	parts, err := req.Total.Allocate(weights)
	if err != nil {
		return nil, err
	}

	splits := make([]types.Split, len(participants))
	for i, p := range participants {
		pct := weights[i]
		splits[i] = types.Split{MemberID: p.MemberID, Amount: parts[i], Percentage: &pct}
	}
	return splits, nil
}
