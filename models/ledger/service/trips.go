package service

import (
	"context"

	istore "github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// GetTrip returns the ledger view of a trip.
func (s *LedgerService) GetTrip(ctx context.Context, tripID string) (*types.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, s.mapStoreError(err, "trip", tripID)
	}
	return trip, nil
}

// ListTrips returns userID's trips with their balance in each.
func (s *LedgerService) ListTrips(ctx context.Context, userID string, archived bool) ([]types.TripSummary, error) {
	trips, err := s.store.ListTrips(ctx, userID, archived)
	if err != nil {
		return nil, s.mapStoreError(err, "user", userID)
	}

	summaries := make([]types.TripSummary, 0, len(trips))
	for _, trip := range trips {
		balances, err := s.GetTripBalances(ctx, trip.ID)
		if err != nil {
			return nil, err
		}
		summary := types.TripSummary{Trip: trip, MyBalance: valueobjects.Zero(trip.Currency)}
		for _, b := range balances.Balances {
			if b.MemberID == userID {
				summary.MyBalance = b.Balance
				break
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ArchiveTrip makes a trip read-only.
func (s *LedgerService) ArchiveTrip(ctx context.Context, tripID, userID string) (*types.Trip, error) {
	return s.setArchived(ctx, tripID, userID, true)
}

// UnarchiveTrip makes an archived trip writable again.
func (s *LedgerService) UnarchiveTrip(ctx context.Context, tripID, userID string) (*types.Trip, error) {
	return s.setArchived(ctx, tripID, userID, false)
}

func (s *LedgerService) setArchived(ctx context.Context, tripID, userID string, archived bool) (*types.Trip, error) {
	op, eventType := "unarchive_trip", types.EventTypeTripUnarchived
	if archived {
		op, eventType = "archive_trip", types.EventTypeTripArchived
	}

	version, err := s.mutate(ctx, op, tripID, func(ctx context.Context, tx istore.LedgerTx, _ *istore.Snapshot) error {
		return tx.SetArchived(ctx, archived)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("Trip archive state changed", "tripID", tripID, "archived", archived)
	s.publish(ctx, eventType, tripID, userID, types.LedgerEventPayload{
		EntityID:      tripID,
		LedgerVersion: version,
	})
	return s.GetTrip(ctx, tripID)
}
