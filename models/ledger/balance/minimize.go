package balance

import (
	"fmt"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

type position struct {
	id     string
	amount int64
}

// largest returns the index of the biggest amount, ties going to the lowest
// member id. -1 when nothing is left.
func largest(ps []position) int {
	best := -1
	for i, p := range ps {
		if p.amount == 0 {
			continue
		}
		if best == -1 || p.amount > ps[best].amount ||
			(p.amount == ps[best].amount && p.id < ps[best].id) {
			best = i
		}
	}
	return best
}

// Suggest proposes transfers that bring every balance to zero by repeatedly
// matching the largest debtor with the largest creditor. The result has at
// most n-1 transfers. Balances must sum to zero.
func Suggest(tripID string, balances []types.MemberBalance) ([]types.Transfer, error) {
	if err := CheckZeroSum(tripID, balances); err != nil {
		return nil, err
	}

	var (
		currency  valueobjects.Currency
		creditors []position
		debtors   []position
	)
	for _, b := range balances {
		currency = b.Balance.Currency()
		switch minor := b.Balance.MinorUnits(); {
		case minor > 0:
			creditors = append(creditors, position{id: b.MemberID, amount: minor})
		case minor < 0:
			debtors = append(debtors, position{id: b.MemberID, amount: -minor})
		}
	}

	transfers := make([]types.Transfer, 0)
	for {
		d, c := largest(debtors), largest(creditors)
		if d == -1 || c == -1 {
			break
		}
		amount := min(debtors[d].amount, creditors[c].amount)
		transfers = append(transfers, types.Transfer{
			From:   debtors[d].id,
			To:     creditors[c].id,
			Amount: valueobjects.New(amount, currency),
		})
		debtors[d].amount -= amount
		creditors[c].amount -= amount
	}

	if largest(debtors) != -1 || largest(creditors) != -1 {
		return nil, apperrors.InternalInconsistency(tripID, fmt.Sprintf("%d transfers left balances unsettled", len(transfers)))
	}
	return transfers, nil
}
