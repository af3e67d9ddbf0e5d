package handlers

import (
	"context"

	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/stretchr/testify/mock"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetTrip(ctx context.Context, tripID string) (*types.Trip, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockLedgerService) ListTrips(ctx context.Context, userID string, archived bool) ([]types.TripSummary, error) {
	args := m.Called(ctx, userID, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TripSummary), args.Error(1)
}

func (m *MockLedgerService) ArchiveTrip(ctx context.Context, tripID, userID string) (*types.Trip, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockLedgerService) UnarchiveTrip(ctx context.Context, tripID, userID string) (*types.Trip, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockLedgerService) CreateExpense(ctx context.Context, tripID, userID string, in types.ExpenseCreate) (*types.Expense, error) {
	args := m.Called(ctx, tripID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockLedgerService) UpdateExpense(ctx context.Context, tripID, expenseID, userID string, in types.ExpenseUpdate) (*types.Expense, error) {
	args := m.Called(ctx, tripID, expenseID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockLedgerService) DeleteExpense(ctx context.Context, tripID, expenseID, userID string) error {
	args := m.Called(ctx, tripID, expenseID, userID)
	return args.Error(0)
}

func (m *MockLedgerService) GetExpense(ctx context.Context, tripID, expenseID string) (*types.Expense, error) {
	args := m.Called(ctx, tripID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockLedgerService) ListExpenses(ctx context.Context, tripID string) ([]types.Expense, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Expense), args.Error(1)
}

func (m *MockLedgerService) CreateSettlement(ctx context.Context, tripID, userID string, in types.SettlementCreate) (*types.Settlement, int, error) {
	args := m.Called(ctx, tripID, userID, in)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*types.Settlement), args.Int(1), args.Error(2)
}

func (m *MockLedgerService) DeleteSettlement(ctx context.Context, tripID, settlementID, userID string) error {
	args := m.Called(ctx, tripID, settlementID, userID)
	return args.Error(0)
}

func (m *MockLedgerService) ListSettlements(ctx context.Context, tripID string) ([]types.Settlement, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Settlement), args.Error(1)
}

func (m *MockLedgerService) SuggestSettlements(ctx context.Context, tripID string) ([]types.Transfer, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Transfer), args.Error(1)
}

func (m *MockLedgerService) GetTripBalances(ctx context.Context, tripID string) (*types.TripBalances, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripBalances), args.Error(1)
}

func (m *MockLedgerService) GetMemberBreakdown(ctx context.Context, tripID, memberID, viewerID string) (*types.MemberBreakdown, error) {
	args := m.Called(ctx, tripID, memberID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.MemberBreakdown), args.Error(1)
}

func (m *MockLedgerService) GetDashboard(ctx context.Context, userID string) (*types.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Dashboard), args.Error(1)
}

type stubHealth struct {
	status types.HealthStatus
}

func (s stubHealth) CheckHealth(context.Context) types.HealthCheck {
	return types.HealthCheck{Status: s.status, Components: map[string]types.HealthComponent{}}
}
