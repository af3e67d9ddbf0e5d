package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BalanceHandler serves balance views.
type BalanceHandler struct {
	ledger LedgerServiceInterface
}

func NewBalanceHandler(ledger LedgerServiceInterface) *BalanceHandler {
	return &BalanceHandler{ledger: ledger}
}

// GetTripBalancesHandler godoc
// @Summary Trip balances
// @Description Net balance of every member plus the trip's total spend
// @Tags balances
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} types.TripBalances
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse "Internal inconsistency"
// @Router /trips/{id}/balances [get]
// @Security BearerAuth
func (h *BalanceHandler) GetTripBalancesHandler(c *gin.Context) {
	balances, err := h.ledger.GetTripBalances(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// GetMemberBreakdownHandler godoc
// @Summary Member breakdown
// @Description Running balance of a member. With viewer (or pairwise=true, which uses the caller) only entries shared with the viewer are listed.
// @Tags balances
// @Produce json
// @Param id path string true "Trip ID"
// @Param memberId path string true "Member ID"
// @Param viewer query string false "Viewer member ID"
// @Param pairwise query bool false "Use the caller as viewer"
// @Success 200 {object} types.MemberBreakdown
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/members/{memberId}/breakdown [get]
// @Security BearerAuth
func (h *BalanceHandler) GetMemberBreakdownHandler(c *gin.Context) {
	pairwise, ok := queryBool(c, "pairwise")
	if !ok {
		return
	}

	viewer := c.Query("viewer")
	if viewer == "" && pairwise {
		viewer = getUserIDFromContext(c)
	}

	breakdown, err := h.ledger.GetMemberBreakdown(c.Request.Context(), c.Param("id"), c.Param("memberId"), viewer)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
