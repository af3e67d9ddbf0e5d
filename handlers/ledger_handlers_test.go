package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/middleware"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	tripID = "9b2f7c1e-0000-4000-8000-000000000001"
	caller = "user-a"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(svc *MockLedgerService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(string(middleware.UserIDKey), caller)
		c.Next()
	})

	trips := NewTripHandler(svc)
	expenses := NewExpenseHandler(svc)
	settlements := NewSettlementHandler(svc)
	balances := NewBalanceHandler(svc)

	r.GET("/v1/dashboard", trips.GetDashboardHandler)
	r.GET("/v1/trips", trips.ListTripsHandler)
	r.GET("/v1/trips/:id", trips.GetTripHandler)
	r.POST("/v1/trips/:id/archive", trips.ArchiveTripHandler)
	r.POST("/v1/trips/:id/unarchive", trips.UnarchiveTripHandler)
	r.GET("/v1/trips/:id/expenses", expenses.ListExpensesHandler)
	r.POST("/v1/trips/:id/expenses", expenses.CreateExpenseHandler)
	r.GET("/v1/trips/:id/expenses/:expenseId", expenses.GetExpenseHandler)
	r.PUT("/v1/trips/:id/expenses/:expenseId", expenses.UpdateExpenseHandler)
	r.DELETE("/v1/trips/:id/expenses/:expenseId", expenses.DeleteExpenseHandler)
	r.GET("/v1/trips/:id/settlements", settlements.ListSettlementsHandler)
	r.POST("/v1/trips/:id/settlements", settlements.CreateSettlementHandler)
	r.GET("/v1/trips/:id/settlements/suggestions", settlements.SuggestSettlementsHandler)
	r.DELETE("/v1/trips/:id/settlements/:settlementId", settlements.DeleteSettlementHandler)
	r.GET("/v1/trips/:id/balances", balances.GetTripBalancesHandler)
	r.GET("/v1/trips/:id/members/:memberId/breakdown", balances.GetMemberBreakdownHandler)
	return r
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func usd(minor int64) valueobjects.Money {
	return valueobjects.New(minor, valueobjects.USD)
}

func TestCreateExpenseHandler(t *testing.T) {
	svc := new(MockLedgerService)
	r := setupRouter(svc)

	created := &types.Expense{
		ID:            "e-1",
		TripID:        tripID,
		Description:   "Dinner",
		Amount:        usd(15000),
		Currency:      valueobjects.USD,
		PaidBy:        caller,
		SplitStrategy: types.SplitEqual,
		CreatedAt:     time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
	}
	svc.On("CreateExpense", mock.Anything, tripID, caller, mock.MatchedBy(func(in types.ExpenseCreate) bool {
		return in.Description == "Dinner" && in.Amount.StringFixed(2) == "150.00" && len(in.Participants) == 3
	})).Return(created, nil)

	w := do(r, http.MethodPost, "/v1/trips/"+tripID+"/expenses", map[string]interface{}{
		"description": "Dinner",
		"amount":      "150.00",
		"paidBy":      caller,
		"splitType":   "Equal",
		"participants": []map[string]string{
			{"memberId": "user-a"}, {"memberId": "user-b"}, {"memberId": "user-c"},
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "150.00", body["amount"])
	assert.Equal(t, false, body["hasSettlements"])
	svc.AssertExpectations(t)
}

func TestCreateExpenseHandler_BindError(t *testing.T) {
	svc := new(MockLedgerService)
	r := setupRouter(svc)

	w := do(r, http.MethodPost, "/v1/trips/"+tripID+"/expenses", map[string]interface{}{"amount": "10.00"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w)["code"])
	svc.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExpenseHandlers_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(svc *MockLedgerService)
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantType   string
	}{
		{
			name: "split mismatch",
			setup: func(svc *MockLedgerService) {
				svc.On("CreateExpense", mock.Anything, tripID, caller, mock.Anything).
					Return(nil, apperrors.SplitMismatch("150.00", "140.00"))
			},
			method: http.MethodPost,
			path:   "/v1/trips/" + tripID + "/expenses",
			body: map[string]interface{}{
				"description": "Dinner", "amount": "150.00", "paidBy": caller, "splitType": "Custom",
			},
			wantStatus: http.StatusBadRequest,
			wantType:   string(apperrors.SplitMismatchError),
		},
		{
			name: "locked update",
			setup: func(svc *MockLedgerService) {
				svc.On("UpdateExpense", mock.Anything, tripID, "e-1", caller, mock.Anything).
					Return(nil, apperrors.ExpenseLocked("e-1"))
			},
			method:     http.MethodPut,
			path:       "/v1/trips/" + tripID + "/expenses/e-1",
			body:       map[string]interface{}{"amount": "99.00"},
			wantStatus: http.StatusConflict,
			wantType:   string(apperrors.ExpenseLockedError),
		},
		{
			name: "archived delete",
			setup: func(svc *MockLedgerService) {
				svc.On("DeleteExpense", mock.Anything, tripID, "e-1", caller).
					Return(apperrors.TripArchived(tripID))
			},
			method:     http.MethodDelete,
			path:       "/v1/trips/" + tripID + "/expenses/e-1",
			wantStatus: http.StatusConflict,
			wantType:   string(apperrors.TripArchivedError),
		},
		{
			name: "missing expense",
			setup: func(svc *MockLedgerService) {
				svc.On("GetExpense", mock.Anything, tripID, "nope").
					Return(nil, apperrors.NotFound("expense", "nope"))
			},
			method:     http.MethodGet,
			path:       "/v1/trips/" + tripID + "/expenses/nope",
			wantStatus: http.StatusNotFound,
			wantType:   string(apperrors.NotFoundError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLedgerService)
			tt.setup(svc)
			w := do(setupRouter(svc), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantType, decode(t, w)["type"])
			svc.AssertExpectations(t)
		})
	}
}

func TestExpenseHandlers_ReadsAndDelete(t *testing.T) {
	svc := new(MockLedgerService)
	r := setupRouter(svc)

	expense := types.Expense{ID: "e-1", Amount: usd(1000), Currency: valueobjects.USD, Locked: true}
	svc.On("ListExpenses", mock.Anything, tripID).Return([]types.Expense{expense}, nil)
	svc.On("GetExpense", mock.Anything, tripID, "e-1").Return(&expense, nil)
	svc.On("DeleteExpense", mock.Anything, tripID, "e-2", caller).Return(nil)
	svc.On("UpdateExpense", mock.Anything, tripID, "e-1", caller, mock.MatchedBy(func(in types.ExpenseUpdate) bool {
		return in.Description != nil && *in.Description == "Brunch" && in.Amount == nil
	})).Return(&expense, nil)

	w := do(r, http.MethodGet, "/v1/trips/"+tripID+"/expenses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "10.00", list[0]["amount"])

	w = do(r, http.MethodGet, "/v1/trips/"+tripID+"/expenses/e-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["hasSettlements"])

	w = do(r, http.MethodPut, "/v1/trips/"+tripID+"/expenses/e-1", map[string]string{"description": "Brunch"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/v1/trips/"+tripID+"/expenses/e-2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.AssertExpectations(t)
}

func TestSettlementHandlers(t *testing.T) {
	svc := new(MockLedgerService)
	r := setupRouter(svc)

	settlement := &types.Settlement{ID: "s-1", FromMember: "user-b", ToMember: caller, Amount: usd(5000), Currency: valueobjects.USD}
	svc.On("CreateSettlement", mock.Anything, tripID, caller, mock.MatchedBy(func(in types.SettlementCreate) bool {
		return in.FromMember == "user-b" && in.ToMember == caller && in.Amount.StringFixed(2) == "50.00"
	})).Return(settlement, 2, nil)
	svc.On("ListSettlements", mock.Anything, tripID).Return([]types.Settlement{*settlement}, nil)
	svc.On("DeleteSettlement", mock.Anything, tripID, "s-1", caller).Return(nil)
	svc.On("SuggestSettlements", mock.Anything, tripID).Return([]types.Transfer{{From: "user-c", To: caller, Amount: usd(5000)}}, nil)

	w := do(r, http.MethodPost, "/v1/trips/"+tripID+"/settlements", map[string]string{
		"fromMemberId": "user-b", "toMemberId": caller, "amount": "50.00",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["lockedExpenses"])
	assert.Equal(t, "50.00", body["settlement"].(map[string]interface{})["amount"])

	w = do(r, http.MethodGet, "/v1/trips/"+tripID+"/settlements", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/v1/trips/"+tripID+"/settlements/suggestions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var transfers []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &transfers))
	require.Len(t, transfers, 1)
	assert.Equal(t, "user-c", transfers[0]["fromMemberId"])

	w = do(r, http.MethodDelete, "/v1/trips/"+tripID+"/settlements/s-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.AssertExpectations(t)
}

func TestCreateSettlementHandler_SelfSettlement(t *testing.T) {
	svc := new(MockLedgerService)
	svc.On("CreateSettlement", mock.Anything, tripID, caller, mock.Anything).
		Return(nil, 0, apperrors.ValidationFailed("invalid settlement", "a member cannot settle with themselves").WithCode(apperrors.CodeSelfSettlement))

	w := do(setupRouter(svc), http.MethodPost, "/v1/trips/"+tripID+"/settlements", map[string]string{
		"fromMemberId": caller, "toMemberId": caller, "amount": "5.00",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeSelfSettlement, decode(t, w)["code"])
}

func TestBalanceHandlers(t *testing.T) {
	svc := new(MockLedgerService)
	r := setupRouter(svc)

	svc.On("GetTripBalances", mock.Anything, tripID).Return(&types.TripBalances{
		TripID:        tripID,
		Currency:      valueobjects.USD,
		LedgerVersion: 4,
		TotalSpent:    usd(15000),
		Balances: []types.MemberBalance{
			{MemberID: caller, Balance: usd(10000)},
			{MemberID: "user-b", Balance: usd(-5000)},
			{MemberID: "user-c", Balance: usd(-5000)},
		},
	}, nil)

	w := do(r, http.MethodGet, "/v1/trips/"+tripID+"/balances", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "150.00", body["totalSpent"])
	assert.Equal(t, float64(4), body["ledgerVersion"])
	balances := body["balances"].([]interface{})
	assert.Equal(t, "-50.00", balances[1].(map[string]interface{})["balance"])
	svc.AssertExpectations(t)
}

func TestGetMemberBreakdownHandler_Viewer(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantViewer string
		wantStatus int
	}{
		{"global view", "", "", http.StatusOK},
		{"explicit viewer", "?viewer=user-c", "user-c", http.StatusOK},
		{"pairwise defaults to caller", "?pairwise=true", caller, http.StatusOK},
		{"explicit viewer wins over pairwise", "?pairwise=true&viewer=user-c", "user-c", http.StatusOK},
		{"bad pairwise flag", "?pairwise=maybe", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLedgerService)
			if tt.wantStatus == http.StatusOK {
				svc.On("GetMemberBreakdown", mock.Anything, tripID, "user-b", tt.wantViewer).
					Return(&types.MemberBreakdown{TripID: tripID, MemberID: "user-b", ViewerID: tt.wantViewer, NetBalance: usd(-5000)}, nil)
			}

			w := do(setupRouter(svc), http.MethodGet, "/v1/trips/"+tripID+"/members/user-b/breakdown"+tt.query, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestTripHandlers(t *testing.T) {
	svc := new(MockLedgerService)
	r := setupRouter(svc)

	trip := &types.Trip{ID: tripID, Name: "Lisbon", Currency: valueobjects.USD, LedgerVersion: 3}
	archived := *trip
	archived.IsArchived = true

	svc.On("GetTrip", mock.Anything, tripID).Return(trip, nil)
	svc.On("ArchiveTrip", mock.Anything, tripID, caller).Return(&archived, nil)
	svc.On("UnarchiveTrip", mock.Anything, tripID, caller).Return(trip, nil)
	svc.On("ListTrips", mock.Anything, caller, true).Return([]types.TripSummary{{Trip: archived, MyBalance: usd(0)}}, nil)
	svc.On("ListTrips", mock.Anything, caller, false).Return([]types.TripSummary{}, nil)

	w := do(r, http.MethodGet, "/v1/trips/"+tripID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["ledgerVersion"])

	w = do(r, http.MethodPost, "/v1/trips/"+tripID+"/archive", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["isArchived"])

	w = do(r, http.MethodPost, "/v1/trips/"+tripID+"/unarchive", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["isArchived"])

	w = do(r, http.MethodGet, "/v1/trips?archived=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var summaries []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "0.00", summaries[0]["myBalance"])

	w = do(r, http.MethodGet, "/v1/trips", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/v1/trips?archived=yes-please", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestGetDashboardHandler(t *testing.T) {
	svc := new(MockLedgerService)
	svc.On("GetDashboard", mock.Anything, caller).Return(&types.Dashboard{
		UserID:          caller,
		OverallBalances: []types.CurrencyTotal{{Currency: valueobjects.USD, Amount: usd(10000)}},
		Trips:           []types.TripSummary{},
	}, nil)

	w := do(setupRouter(svc), http.MethodGet, "/v1/dashboard", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	overall := body["overallBalances"].([]interface{})
	require.Len(t, overall, 1)
	assert.Equal(t, "100.00", overall[0].(map[string]interface{})["amount"])
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name          string
		status        types.HealthStatus
		wantReadiness int
	}{
		{"up", types.HealthStatusUp, http.StatusOK},
		{"degraded", types.HealthStatusDegraded, http.StatusOK},
		{"down", types.HealthStatusDown, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(stubHealth{status: tt.status})
			r := gin.New()
			r.GET("/health", h.DetailedHealth)
			r.GET("/health/liveness", h.LivenessCheck)
			r.GET("/health/readiness", h.ReadinessCheck)

			assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health/liveness", nil).Code)
			assert.Equal(t, tt.wantReadiness, do(r, http.MethodGet, "/health/readiness", nil).Code)
			assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", nil).Code)
		})
	}
}
