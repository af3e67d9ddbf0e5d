package handlers

import (
	"net/http"
	"strconv"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/middleware"
	"github.com/gin-gonic/gin"
)

// TripHandler exposes trip state, archiving and the caller's dashboard.
type TripHandler struct {
	ledger LedgerServiceInterface
}

// NewTripHandler creates a new TripHandler with the given dependencies.
func NewTripHandler(ledger LedgerServiceInterface) *TripHandler {
	return &TripHandler{ledger: ledger}
}

// getUserIDFromContext extracts the authenticated user ID from the Gin context.
// Returns empty string if not found (caller should handle unauthorized response).
func getUserIDFromContext(c *gin.Context) string {
	return c.GetString(string(middleware.UserIDKey))
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()).WithCode("INVALID_REQUEST"))
		return false
	}
	return true
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid query parameter", name+" must be a boolean").WithCode("INVALID_REQUEST"))
		return false, false
	}
	return v, true
}

// ListTripsHandler godoc
// @Summary List the caller's trips
// @Description Lists active trips, or archived trips with archived=true, with the caller's balance in each
// @Tags trips
// @Produce json
// @Param archived query bool false "List archived trips instead of active ones"
// @Success 200 {array} types.TripSummary
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /trips [get]
// @Security BearerAuth
func (h *TripHandler) ListTripsHandler(c *gin.Context) {
	archived, ok := queryBool(c, "archived")
	if !ok {
		return
	}

	trips, err := h.ledger.ListTrips(c.Request.Context(), getUserIDFromContext(c), archived)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// GetTripHandler godoc
// @Summary Get trip ledger state
// @Description Returns the trip's currency, archive flag and ledger version
// @Tags trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} types.Trip
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id} [get]
// @Security BearerAuth
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	trip, err := h.ledger.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ArchiveTripHandler godoc
// @Summary Archive a trip
// @Description Makes the trip's ledger read-only
// @Tags trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} types.Trip
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/archive [post]
// @Security BearerAuth
func (h *TripHandler) ArchiveTripHandler(c *gin.Context) {
	trip, err := h.ledger.ArchiveTrip(c.Request.Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UnarchiveTripHandler godoc
// @Summary Unarchive a trip
// @Tags trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} types.Trip
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{id}/unarchive [post]
// @Security BearerAuth
func (h *TripHandler) UnarchiveTripHandler(c *gin.Context) {
	trip, err := h.ledger.UnarchiveTrip(c.Request.Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GetDashboardHandler godoc
// @Summary Overall balance
// @Description Sums the caller's balance across active trips, per currency
// @Tags dashboard
// @Produce json
// @Success 200 {object} types.Dashboard
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /dashboard [get]
// @Security BearerAuth
func (h *TripHandler) GetDashboardHandler(c *gin.Context) {
	userID := getUserIDFromContext(c)
	dashboard, err := h.ledger.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		logger.GetLogger().Warnw("Failed to build dashboard", "userID", userID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
