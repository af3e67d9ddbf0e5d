// Package split turns an expense total and a participant list into per-member
// shares. Every strategy returns splits whose amounts sum exactly to the total.
package split

import (
	"fmt"
	"sort"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// Request is the input to a strategy.
type Request struct {
	Total        valueobjects.Money
	PaidBy       string
	Participants []types.ParticipantInput
}

// Strategy computes the splits for one SplitStrategy.
type Strategy interface {
	Compute(req Request) ([]types.Split, error)
}

var strategies = map[types.SplitStrategy]Strategy{
	types.SplitEqual:      equalStrategy{},
	types.SplitCustom:     customStrategy{},
	types.SplitPaidFor:    paidForStrategy{},
	types.SplitPercentage: percentageStrategy{},
}

// For returns the strategy registered under name.
func For(name types.SplitStrategy) (Strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, apperrors.ValidationFailed(
			"unknown split strategy",
			fmt.Sprintf("split type %q is not supported", name),
		).WithCode(apperrors.CodeUnknownStrategy)
	}
	return s, nil
}

// Compute validates req and runs the named strategy.
func Compute(name types.SplitStrategy, req Request) ([]types.Split, error) {
	s, err := For(name)
	if err != nil {
		return nil, err
	}
	if !req.Total.IsPositive() {
		return nil, apperrors.ValidationFailed(
			"invalid amount",
			"expense total must be greater than zero",
		).WithCode(apperrors.CodeInvalidAmount)
	}
	return s.Compute(req)
}

// orderedParticipants rejects blank and duplicate ids and returns the
// participants sorted by member id. Remainder units are handed out in this
// order.
func orderedParticipants(in []types.ParticipantInput) ([]types.ParticipantInput, error) {
	if len(in) == 0 {
		return nil, emptyParticipants()
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]types.ParticipantInput, 0, len(in))
	for _, p := range in {
		if p.MemberID == "" {
			return nil, apperrors.ValidationFailed("invalid participant", "member id is required")
		}
		if _, dup := seen[p.MemberID]; dup {
			return nil, apperrors.ValidationFailed(
				"invalid participant",
				fmt.Sprintf("member %s is listed more than once", p.MemberID),
			)
		}
		seen[p.MemberID] = struct{}{}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

func emptyParticipants() error {
	return apperrors.ValidationFailed(
		"no participants",
		"an expense needs at least one participant to split between",
	).WithCode(apperrors.CodeEmptyParticipantSet)
}

// divideEqually gives each participant an equal share of total.
func divideEqually(total valueobjects.Money, participants []types.ParticipantInput) ([]types.Split, error) {
	parts, err := total.Divide(len(participants))
	if err != nil {
		return nil, err
	}
	splits := make([]types.Split, len(participants))
	for i, p := range participants {
		splits[i] = types.Split{MemberID: p.MemberID, Amount: parts[i]}
	}
	return splits, nil
}

// Sum adds up split amounts in minor units.
func Sum(splits []types.Split) int64 {
	var total int64
	for _, s := range splits {
		total += s.Amount.MinorUnits()
	}
	return total
}
