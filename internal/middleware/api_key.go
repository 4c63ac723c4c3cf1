package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sincelove/chat-backend/internal/common"
)

// APIKeyValidator validates API keys
type APIKeyValidator interface {
	ValidateAPIKey(ctx context.Context, key string) error
}

// StaticAPIKey accepts exactly one configured key
type StaticAPIKey string

// ValidateAPIKey compares in constant time
func (k StaticAPIKey) ValidateAPIKey(_ context.Context, key string) error {
	if subtle.ConstantTimeCompare([]byte(k), []byte(key)) != 1 {
		return errors.New("invalid API key")
	}
	return nil
}

// APIKeyAuth authenticates requests using an API key.
// Checks X-API-Key header or api_key query parameter.
func APIKeyAuth(validator APIKeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}
		if key == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "API key required", common.ErrUnauthorized)
			c.Abort()
			return
		}

		if err := validator.ValidateAPIKey(c.Request.Context(), key); err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, err.Error(), common.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}
