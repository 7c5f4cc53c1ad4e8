package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

// Recovery middleware recovers from panics and logs them
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(log.Writer(), func(c *gin.Context, recovered interface{}) {
		log.StructuredError(fmt.Errorf("panic: %v", recovered), map[string]interface{}{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("request_id"),
		})

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.BaseResponse{
			Success: false,
			Error: &models.ErrorInfo{
				Code:    models.ErrCodeInternalError,
				Message: "Internal server error",
			},
			Timestamp: time.Now().Unix(),
			RequestID: c.GetString("request_id"),
		})
	})
}
