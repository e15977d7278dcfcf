package middleware

import (
	"alertrelay/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIKeyHeader carries the shared secret sensors authenticate with.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey rejects requests whose X-API-Key differs from apiKey with 403.
func RequireAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(APIKeyHeader) != apiKey {
			logrus.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).Warn("Rejected request with invalid API key")
			utils.ServiceErrorResponse(c, utils.NewInvalidAPIKeyError())
			c.Abort()
			return
		}
		c.Next()
	}
}
