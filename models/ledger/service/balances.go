package service

import (
	"context"
	"sort"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/balance"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// GetTripBalances returns every member's net balance. Results are cached
// per ledger version, so a cached value is never stale.
func (s *LedgerService) GetTripBalances(ctx context.Context, tripID string) (*types.TripBalances, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	balances, hit, err := s.balances.Load(ctx, tripID, trip.LedgerVersion, func() (*types.TripBalances, error) {
		snap, err := s.snapshot(ctx, tripID)
		if err != nil {
			return nil, err
		}
		l := ledgerOf(snap)
		net, err := balance.NetBalances(l)
		if err != nil {
			return nil, err
		}
		return &types.TripBalances{
			TripID:        tripID,
			Currency:      l.Currency,
			LedgerVersion: l.Version,
			TotalSpent:    balance.TotalSpent(l),
			Balances:      net,
		}, nil
	})
	if err != nil {
		s.reportInconsistency(tripID, err)
		return nil, err
	}

	if hit {
		s.metrics.balanceReads.WithLabelValues("hit").Inc()
	} else {
		s.metrics.balanceReads.WithLabelValues("miss").Inc()
	}
	return balances, nil
}

// GetMemberBreakdown returns memberID's running balance. With a viewer
// other than the member, only entries between the two are shown and the
// net is what the viewer owes the member.
func (s *LedgerService) GetMemberBreakdown(ctx context.Context, tripID, memberID, viewerID string) (*types.MemberBreakdown, error) {
	snap, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	l := ledgerOf(snap)
	if !l.HasMember(memberID) {
		return nil, apperrors.NotFound("member", memberID)
	}
	if viewerID != "" && !l.HasMember(viewerID) {
		return nil, apperrors.NotFound("member", viewerID)
	}

	if _, err := balance.NetBalances(l); err != nil {
		s.reportInconsistency(tripID, err)
		return nil, err
	}

	view := balance.Breakdown(l, memberID, viewerID)
	return &view, nil
}

// GetDashboard sums userID's balances across active trips per currency.
func (s *LedgerService) GetDashboard(ctx context.Context, userID string) (*types.Dashboard, error) {
	trips, err := s.ListTrips(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	totals := make(map[valueobjects.Currency]int64)
	for _, t := range trips {
		totals[t.Currency] += t.MyBalance.MinorUnits()
	}

	overall := make([]types.CurrencyTotal, 0, len(totals))
	for currency, minor := range totals {
		overall = append(overall, types.CurrencyTotal{
			Currency: currency,
			Amount:   valueobjects.New(minor, currency),
		})
	}
	sort.Slice(overall, func(i, j int) bool { return overall[i].Currency < overall[j].Currency })

	return &types.Dashboard{
		UserID:          userID,
		OverallBalances: overall,
		Trips:           trips,
	}, nil
}
