package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classifieds-board/backend/pkg/response"
)

const (
	// ContextUserID is the key for the int64 user ID in gin context.
	ContextUserID = "user_id"
	// ContextUsername is the key for the username in gin context.
	ContextUsername = "username"
)

// TokenValidator checks a bearer token and returns who it belongs to.
type TokenValidator func(token string) (userID int64, username string, err error)

// JWT returns a middleware that validates the bearer token and sets user claims in context.
func JWT(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		userID, username, err := validate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextUsername, username)
		c.Next()
	}
}
