package handlers

import (
	"net/http"

	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/gin-gonic/gin"
)

// SettlementHandler handles settlement requests for a trip.
type SettlementHandler struct {
	ledger LedgerServiceInterface
}

func NewSettlementHandler(ledger LedgerServiceInterface) *SettlementHandler {
	return &SettlementHandler{ledger: ledger}
}

// SettlementCreatedResponse reports the new settlement and how many
// expenses it locked.
type SettlementCreatedResponse struct {
	Settlement     *types.Settlement `json:"settlement"`
	LockedExpenses int               `json:"lockedExpenses"`
}

// CreateSettlementHandler godoc
// @Summary Record a settlement
// @Description Records a direct payment between two members and locks the expenses it covers
// @Tags settlements
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body types.SettlementCreate true "Settlement"
// @Success 201 {object} SettlementCreatedResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Trip archived"
// @Failure 429 {object} middleware.ErrorResponse
// @Router /trips/{id}/settlements [post]
// @Security BearerAuth
func (h *SettlementHandler) CreateSettlementHandler(c *gin.Context) {
	var req types.SettlementCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	settlement, locked, err := h.ledger.CreateSettlement(c.Request.Context(), c.Param("id"), getUserIDFromContext(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, SettlementCreatedResponse{Settlement: settlement, LockedExpenses: locked})
}

// ListSettlementsHandler godoc
// @Summary List settlements
// @Tags settlements
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {array} types.Settlement
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/settlements [get]
// @Security BearerAuth
func (h *SettlementHandler) ListSettlementsHandler(c *gin.Context) {
	settlements, err := h.ledger.ListSettlements(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settlements)
}

// DeleteSettlementHandler godoc
// @Summary Delete a settlement
// @Description Removes a settlement and unlocks expenses no remaining settlement covers
// @Tags settlements
// @Param id path string true "Trip ID"
// @Param settlementId path string true "Settlement ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Trip archived"
// @Router /trips/{id}/settlements/{settlementId} [delete]
// @Security BearerAuth
func (h *SettlementHandler) DeleteSettlementHandler(c *gin.Context) {
	if err := h.ledger.DeleteSettlement(c.Request.Context(), c.Param("id"), c.Param("settlementId"), getUserIDFromContext(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SuggestSettlementsHandler godoc
// @Summary Suggest settlements
// @Description Proposes at most n-1 transfers that bring every balance to zero
// @Tags settlements
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {array} types.Transfer
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /trips/{id}/settlements/suggestions [get]
// @Security BearerAuth
func (h *SettlementHandler) SuggestSettlementsHandler(c *gin.Context) {
	transfers, err := h.ledger.SuggestSettlements(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, transfers)
}
