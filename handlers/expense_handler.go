package handlers

import (
	"net/http"

	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler handles expense requests for a trip.
type ExpenseHandler struct {
	ledger LedgerServiceInterface
}

func NewExpenseHandler(ledger LedgerServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{ledger: ledger}
}

// CreateExpenseHandler godoc
// @Summary Record an expense
// @Description Records a payment by one member and splits it among participants
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.ExpenseCreate true "Expense"
// @Success 201 {object} types.Expense
// @Failure 400 {object} middleware.ErrorResponse "Invalid amount, split mismatch or unknown member"
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Trip archived"
// @Failure 429 {object} middleware.ErrorResponse
// @Router /trips/{id}/expenses [post]
// @Security BearerAuth
func (h *ExpenseHandler) CreateExpenseHandler(c *gin.Context) {
	var req types.ExpenseCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	expense, err := h.ledger.CreateExpense(c.Request.Context(), c.Param("id"), getUserIDFromContext(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// ListExpensesHandler godoc
// @Summary List expenses
// @Description Lists a trip's expenses, newest first
// @Tags expenses
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {array} types.Expense
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/expenses [get]
// @Security BearerAuth
func (h *ExpenseHandler) ListExpensesHandler(c *gin.Context) {
	expenses, err := h.ledger.ListExpenses(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// GetExpenseHandler godoc
// @Summary Get an expense
// @Description Returns one expense; hasSettlements tells whether its financial fields are locked
// @Tags expenses
// @Produce json
// @Param id path string true "Trip ID"
// @Param expenseId path string true "Expense ID"
// @Success 200 {object} types.Expense
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/expenses/{expenseId} [get]
// @Security BearerAuth
func (h *ExpenseHandler) GetExpenseHandler(c *gin.Context) {
	expense, err := h.ledger.GetExpense(c.Request.Context(), c.Param("id"), c.Param("expenseId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// UpdateExpenseHandler godoc
// @Summary Update an expense
// @Description Changes an expense. Locked expenses only accept description and category changes.
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param expenseId path string true "Expense ID"
// @Param request body types.ExpenseUpdate true "Fields to change"
// @Success 200 {object} types.Expense
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Expense locked or trip archived"
// @Router /trips/{id}/expenses/{expenseId} [put]
// @Security BearerAuth
func (h *ExpenseHandler) UpdateExpenseHandler(c *gin.Context) {
	var req types.ExpenseUpdate
	if !bindJSONOrError(c, &req) {
		return
	}

	expense, err := h.ledger.UpdateExpense(c.Request.Context(), c.Param("id"), c.Param("expenseId"), getUserIDFromContext(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// DeleteExpenseHandler godoc
// @Summary Delete an expense
// @Tags expenses
// @Param id path string true "Trip ID"
// @Param expenseId path string true "Expense ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Expense locked or trip archived"
// @Router /trips/{id}/expenses/{expenseId} [delete]
// @Security BearerAuth
func (h *ExpenseHandler) DeleteExpenseHandler(c *gin.Context) {
	if err := h.ledger.DeleteExpense(c.Request.Context(), c.Param("id"), c.Param("expenseId"), getUserIDFromContext(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
