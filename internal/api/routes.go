package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/handlers"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/middlewares"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
)

// SetupRoutes configures all portal routes with proper middleware
func SetupRoutes(router *gin.Engine, services interfaces.Services) {
	cfg := services.GetConfig()

	// Global middleware
	router.Use(middlewares.RequestLogging(services.GetLogger()))
	router.Use(middlewares.Recovery(services.GetLogger()))
	router.Use(middlewares.CORS(cfg.API.CORS.AllowedOrigins))
	router.Use(middlewares.Security())

	router.GET("/health", handlers.HealthCheck(services))
	router.GET("/metrics", handlers.Metrics(services))

	setupSessionRoutes(router, services)
	setupDashboardRoutes(router, services)
	setupAccountRoutes(router, services)
	setupAdminRoutes(router, services)
}

// setupSessionRoutes configures sign in and out
func setupSessionRoutes(router *gin.Engine, services interfaces.Services) {
	limiter := middlewares.NewRateLimiter(services.GetConfig().API.LoginRateLimit)

	router.POST("/login", middlewares.RateLimit(limiter), handlers.Login(services))
	router.POST("/logout", handlers.Logout(services))
	router.GET("/session", handlers.GetSession(services))
	router.POST("/session/clear-error", handlers.ClearError(services))
}

// setupDashboardRoutes configures one landing view per role
func setupDashboardRoutes(router *gin.Engine, services interfaces.Services) {
	for _, role := range []token.Role{token.RoleAdmin, token.RoleTrainer, token.RoleMember} {
		router.GET("/"+string(role)+"/dashboard",
			middlewares.RoleRequired(services, role),
			handlers.Dashboard(services, role),
		)
	}
}

// setupAccountRoutes configures routes open to any signed-in user
func setupAccountRoutes(router *gin.Engine, services interfaces.Services) {
	account := router.Group("/account")
	account.Use(middlewares.AuthRequired(services))
	{
		account.GET("", handlers.GetAccount(services))
		account.POST("/change-password", handlers.ChangePassword(services))
		account.GET("/history", handlers.GetSessionHistory(services))
	}
}

// setupAdminRoutes configures admin-only routes
func setupAdminRoutes(router *gin.Engine, services interfaces.Services) {
	admin := router.Group("/admin")
	admin.Use(middlewares.AdminRequired(services))
	{
		users := admin.Group("/users")
		{
			users.GET("", handlers.ListUsers(services))
			users.POST("/:id/generate-password", handlers.GeneratePassword(services))
			users.POST("/:id/reset-password", handlers.ResetPassword(services))
		}

		admin.GET("/login-records", handlers.ListLoginRecords(services))
	}
}
