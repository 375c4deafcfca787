package middleware

import (
	"net/http"
	"streamflix-api/internal/response"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AccountIDKey is the context key holding the authenticated account id
const AccountIDKey = "account_id"

// TokenVerifier resolves a bearer token to an account id
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthMiddleware requires a valid bearer token
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		accountID, err := verifier.Verify(token)
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Store account ID and request time in context
		c.Set(AccountIDKey, accountID)
		c.Set("request_time", time.Now())
		c.Next()
	}
}

// OptionalAuthMiddleware resolves a bearer token when one is sent. Invalid tokens
// are rejected, missing ones are not.
func OptionalAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		accountID, err := verifier.Verify(token)
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Next()
	}
}

// AccountID returns the authenticated account id, if any
func AccountID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(AccountIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
