package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
)

// Version is reported by the health check. Set at build time.
var Version = "dev"

var startTime = time.Now()

// HealthCheck reports portal, storage and session status
func HealthCheck(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		storage := services.StorageStatus(c.Request.Context())
		s := services.SessionManager().Session()

		sweep := "idle"
		if services.SessionManager().SweepRunning() {
			sweep = "running"
		}

		status := "healthy"
		if storage == "unreachable" {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthCheckResponse{
			Status:    status,
			Timestamp: time.Now().Unix(),
			Version:   Version,
			Uptime:    int64(time.Since(startTime).Seconds()),
			Checks: map[string]models.HealthCheck{
				"storage": {Status: storage},
				"session": {Status: string(s.State), Message: "expiry sweep " + sweep},
			},
		})
	}
}

// Metrics serves the prometheus registry
func Metrics(services interfaces.Services) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(services.Gatherer(), promhttp.HandlerOpts{}))
}
