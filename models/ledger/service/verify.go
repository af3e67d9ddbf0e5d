package service

import (
	"context"

	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/balance"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
)

// TripReport is the result of checking one trip's stored ledger.
type TripReport struct {
	TripID        string                `yaml:"tripId"`
	Currency      valueobjects.Currency `yaml:"currency"`
	LedgerVersion int64                 `yaml:"ledgerVersion"`
	Expenses      int                   `yaml:"expenses"`
	Settlements   int                   `yaml:"settlements"`
	Violations    []balance.Violation   `yaml:"violations,omitempty"`
}

// TripIDs lists every trip the store holds.
func (s *LedgerService) TripIDs(ctx context.Context) ([]string, error) {
	ids, err := s.store.TripIDs(ctx)
	if err != nil {
		return nil, s.mapStoreError(err, "trips", "*")
	}
	return ids, nil
}

// VerifyTrip rechecks every ledger invariant of a trip from storage.
// Violations are counted in ledger_invariant_violations_total.
func (s *LedgerService) VerifyTrip(ctx context.Context, tripID string) (*TripReport, error) {
	snap, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	l := ledgerOf(snap)

	report := &TripReport{
		TripID:        tripID,
		Currency:      l.Currency,
		LedgerVersion: l.Version,
		Expenses:      len(l.Expenses),
		Settlements:   len(l.Settlements),
		Violations:    balance.Verify(l),
	}
	if n := len(report.Violations); n > 0 {
		s.metrics.invariantViolations.Add(float64(n))
		s.log.Errorw("Ledger invariants violated", "tripID", tripID, "violations", n)
	}
	return report, nil
}
