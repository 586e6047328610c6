package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
)

const RequestIDKey = "requestID"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("request_id", GetRequestIDFromContext(c)))
	c.JSON(code, gin.H{"error": message})
}

// GetRequestIDFromContext returns the id assigned by the request logger, or
// "" outside of it.
func GetRequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
