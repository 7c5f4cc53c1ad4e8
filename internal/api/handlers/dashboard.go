package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
)

// Dashboard serves a role's landing view. The route is guarded for role.
func Dashboard(services interfaces.Services, role token.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := services.SessionManager().Session()
		respondOK(c, "", models.DashboardResponse{Role: string(role), User: s.User})
	}
}
