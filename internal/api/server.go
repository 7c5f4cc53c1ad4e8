package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
)

// NewRouter builds the portal's gin engine
func NewRouter(services interfaces.Services) *gin.Engine {
	if mode := services.GetConfig().Server.Mode; mode != "" {
		gin.SetMode(mode)
	}

	router := gin.New()
	SetupRoutes(router, services)
	return router
}

// NewHTTPServer wraps the router in an http.Server using the configured
// address and timeouts
func NewHTTPServer(services interfaces.Services) *http.Server {
	cfg := services.GetConfig()
	return &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      NewRouter(services),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
