package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionValidator checks a token's JTI against the user's active session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID uuid.UUID, jti string) error
}

// CheckSession rejects tokens superseded by a newer login or revoked by logout.
func CheckSession(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		err := sessions.ValidateSession(c.Request.Context(), claims.UserID, claims.ID)
		if errors.Is(err, service.ErrSessionInvalidated) {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}
		if err != nil {
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Next()
	}
}
