package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/NomadCrew/nomad-crew-ledger/internal/store/memory"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/balance"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/service"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubVerifier struct {
	ids     []string
	reports map[string]*service.TripReport
	err     error
}

func (s *stubVerifier) TripIDs(context.Context) ([]string, error) {
	return s.ids, s.err
}

func (s *stubVerifier) VerifyTrip(_ context.Context, tripID string) (*service.TripReport, error) {
	r, ok := s.reports[tripID]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

func decode(t *testing.T, buf *bytes.Buffer) report {
	t.Helper()
	var rep report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rep))
	return rep
}

func TestRunAllTrips(t *testing.T) {
	v := &stubVerifier{
		ids: []string{"t1", "t2"},
		reports: map[string]*service.TripReport{
			"t1": {TripID: "t1", Currency: "PHP", Expenses: 2},
			"t2": {TripID: "t2", Currency: "USD", Violations: []balance.Violation{
				{Rule: balance.RuleZeroSum, Detail: "balances sum to 0.01"},
				{Rule: balance.RuleLockState, EntityID: "e1", Detail: "locked without settlement"},
			}},
		},
	}

	var buf bytes.Buffer
	n, err := run(context.Background(), v, nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rep := decode(t, &buf)
	require.Len(t, rep.Trips, 2)
	assert.Equal(t, "t1", rep.Trips[0].TripID)
	assert.Equal(t, 2, rep.Violations)
	assert.Equal(t, balance.RuleLockState, rep.Trips[1].Violations[1].Rule)
	assert.False(t, rep.CheckedAt.IsZero())
}

func TestRunSingleTrip(t *testing.T) {
	v := &stubVerifier{
		err:     errors.New("must not list trips"),
		reports: map[string]*service.TripReport{"t1": {TripID: "t1"}},
	}

	var buf bytes.Buffer
	n, err := run(context.Background(), v, []string{"t1"}, &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, decode(t, &buf).Trips, 1)
}

func TestRunErrors(t *testing.T) {
	var buf bytes.Buffer

	_, err := run(context.Background(), &stubVerifier{err: errors.New("db down")}, nil, &buf)
	assert.ErrorContains(t, err, "list trips")

	_, err = run(context.Background(), &stubVerifier{}, []string{"missing"}, &buf)
	assert.ErrorContains(t, err, "verify trip missing")
}

func TestRunAgainstMemoryStore(t *testing.T) {
	store := memory.New()
	store.AddTrip(types.Trip{ID: "trip-1", Name: "Siargao", Currency: "PHP"},
		types.Member{UserID: "ana"}, types.Member{UserID: "ben"})
	ledger := service.NewLedgerService(store, nil, nil, service.Options{})

	var buf bytes.Buffer
	n, err := run(context.Background(), ledger, nil, &buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	rep := decode(t, &buf)
	require.Len(t, rep.Trips, 1)
	assert.Equal(t, "trip-1", rep.Trips[0].TripID)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, _, err := openStore(context.Background(), "sqlite", "", "PHP")
	assert.Error(t, err)
}
