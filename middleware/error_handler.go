package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler renders the last error attached to the gin context. Handlers
// call c.Error and return; nothing else writes error bodies.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		if appError, ok := errors.As(err); ok {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			code := appError.Code
			if code == "" {
				code = string(appError.Type)
			}
			response := ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    code,
			}
			if appError.Detail != "" && (gin.IsDebugging() || showsDetail(appError.Type)) {
				response.Details = appError.Detail
			}
			if appError.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(appError.RetryAfter))
			}

			c.JSON(statusCode, response)
			return
		}

		if last.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: "Failed to bind request",
				Details: err.Error(),
				Code:    "INVALID_REQUEST",
			})
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
		response := ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal Server Error",
			Code:    string(errors.ServerError),
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}

// showsDetail lists error types whose detail is safe to show clients.
func showsDetail(t errors.ErrorType) bool {
	switch t {
	case errors.ValidationError,
		errors.SplitMismatchError,
		errors.NotFoundError,
		errors.ExpenseLockedError,
		errors.TripArchivedError,
		errors.ErrorTypeConflict:
		return true
	}
	return false
}
