package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

// RequestLogging middleware tags each request with an id and logs it
func RequestLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// The query string is left out; login forms may carry credentials.
		logData := map[string]interface{}{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        path,
			"status_code": status,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
			"user_id":     c.GetString(ContextUserID),
		}

		if status >= 500 {
			log.WithFields(logData).Error("HTTP request completed with server error")
		} else if status >= 400 {
			log.WithFields(logData).Warning("HTTP request completed with client error")
		} else {
			log.WithFields(logData).Info("HTTP request completed")
		}
	}
}
