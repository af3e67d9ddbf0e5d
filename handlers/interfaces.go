package handlers

import (
	"context"

	"github.com/NomadCrew/nomad-crew-ledger/types"
)

// LedgerServiceInterface defines the ledger operations needed by handlers
type LedgerServiceInterface interface {
	GetTrip(ctx context.Context, tripID string) (*types.Trip, error)
	ListTrips(ctx context.Context, userID string, archived bool) ([]types.TripSummary, error)
	ArchiveTrip(ctx context.Context, tripID, userID string) (*types.Trip, error)
	UnarchiveTrip(ctx context.Context, tripID, userID string) (*types.Trip, error)

	CreateExpense(ctx context.Context, tripID, userID string, in types.ExpenseCreate) (*types.Expense, error)
	UpdateExpense(ctx context.Context, tripID, expenseID, userID string, in types.ExpenseUpdate) (*types.Expense, error)
	DeleteExpense(ctx context.Context, tripID, expenseID, userID string) error
	GetExpense(ctx context.Context, tripID, expenseID string) (*types.Expense, error)
	ListExpenses(ctx context.Context, tripID string) ([]types.Expense, error)

	CreateSettlement(ctx context.Context, tripID, userID string, in types.SettlementCreate) (*types.Settlement, int, error)
	DeleteSettlement(ctx context.Context, tripID, settlementID, userID string) error
	ListSettlements(ctx context.Context, tripID string) ([]types.Settlement, error)
	SuggestSettlements(ctx context.Context, tripID string) ([]types.Transfer, error)

	GetTripBalances(ctx context.Context, tripID string) (*types.TripBalances, error)
	GetMemberBreakdown(ctx context.Context, tripID, memberID, viewerID string) (*types.MemberBreakdown, error)
	GetDashboard(ctx context.Context, userID string) (*types.Dashboard, error)
}

// HealthChecker reports the health of the service's dependencies
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}
