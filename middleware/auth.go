package middleware

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token and stores the caller's user id
// under UserIDKey.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Authorization required"))
			c.Abort()
			return
		}

		userID, err := validator.Validate(token)
		if err != nil {
			logger.GetLogger().Warnw("Invalid JWT token",
				"error", err,
				"token", logger.MaskJWT(token),
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())

			appErr := apperrors.AuthenticationFailed("Invalid authentication token")
			if errors.Is(err, ErrTokenExpired) {
				appErr = apperrors.AuthenticationFailed("Your session has expired")
				appErr.Code = "TOKEN_EXPIRED"
			}
			_ = c.Error(appErr)
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), userID)
		c.Next()
	}
}

// MembershipChecker answers whether a user belongs to a trip.
type MembershipChecker interface {
	IsMember(ctx context.Context, tripID, userID string) (bool, error)
}

// RequireTripMember rejects callers who are not on the roster of the trip
// named by the tripParam route parameter. Unknown trips and non-members get
// the same answer so trip ids cannot be probed.
func RequireTripMember(checker MembershipChecker, tripParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(string(UserIDKey))
		if userID == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Authentication required"))
			c.Abort()
			return
		}

		tripID := c.Param(tripParam)
		ok, err := checker.IsMember(c.Request.Context(), tripID, userID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !ok {
			_ = c.Error(apperrors.NotFound("trip", tripID))
			c.Abort()
			return
		}

		c.Set(string(TripIDKey), tripID)
		c.Next()
	}
}
