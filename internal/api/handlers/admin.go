package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/middlewares"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
)

// ListUsers relays the backend's user list
func ListUsers(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := services.Backend().ListUsers(c.Request.Context(), c.GetString(middlewares.ContextToken))
		if err != nil {
			respondBackendError(c, services, "list_users", err)
			return
		}
		respondOK(c, "", users)
	}
}

// GeneratePassword has the backend generate a new password for a user
func GeneratePassword(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		password, err := services.Backend().GeneratePassword(c.Request.Context(), c.GetString(middlewares.ContextToken), userID)
		if err != nil {
			respondBackendError(c, services, "generate_password", err)
			return
		}

		services.GetLogger().SecurityLogger("password_generated", c.GetString(middlewares.ContextUserID), "target="+userID)
		respondOK(c, "Password generated", models.GeneratedPasswordResponse{UserID: userID, Password: password})
	}
}

// ResetPassword sets a user's password
func ResetPassword(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PasswordResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c, err)
			return
		}

		userID := c.Param("id")
		if err := services.Backend().ResetPassword(c.Request.Context(), c.GetString(middlewares.ContextToken), userID, req.Password); err != nil {
			respondBackendError(c, services, "reset_password", err)
			return
		}

		services.GetLogger().SecurityLogger("password_reset", c.GetString(middlewares.ContextUserID), "target="+userID)
		respondOK(c, "Password reset", nil)
	}
}

// ListLoginRecords relays the backend's login records
func ListLoginRecords(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := services.Backend().ListLoginRecords(c.Request.Context(), c.GetString(middlewares.ContextToken))
		if err != nil {
			respondBackendError(c, services, "list_login_records", err)
			return
		}
		respondOK(c, "", records)
	}
}
