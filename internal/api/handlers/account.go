package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/middlewares"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/backend"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
)

const (
	defaultHistoryLimit = 50
)

// GetAccount describes the signed-in account
func GetAccount(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := services.SessionManager().Session()
		respondOK(c, "", models.AccountResponse{
			User:       s.User,
			RememberMe: s.RememberMe,
			ExpiresIn:  token.RemainingSeconds(c.GetString(middlewares.ContextToken), time.Now()),
		})
	}
}

// ChangePassword changes the signed-in user's password on the backend
func ChangePassword(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PasswordChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c, err)
			return
		}

		err := services.Backend().ChangePassword(c.Request.Context(), c.GetString(middlewares.ContextToken), backend.ChangePasswordRequest{
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
		if err != nil {
			respondBackendError(c, services, "change_password", err)
			return
		}

		services.GetLogger().SecurityLogger("password_changed", c.GetString(middlewares.ContextUserID), "")
		respondOK(c, "Password changed", nil)
	}
}

// GetSessionHistory lists the locally recorded session events, newest first
func GetSessionHistory(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		events := services.EventLog()
		if events == nil {
			respondError(c, models.NewAPIError(models.ErrCodeStorageUnavailable, "Session history requires durable storage", http.StatusServiceUnavailable))
			return
		}

		var req models.HistoryFilterRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			invalidRequest(c, err)
			return
		}
		if req.Limit == 0 {
			req.Limit = defaultHistoryLimit
		}

		// One extra row tells whether another page exists.
		rows, err := events.ListEvents(c.Request.Context(), req.Event, req.Limit+1, req.Offset)
		if err != nil {
			services.GetLogger().Error("Failed to list session events", "error", err.Error())
			respondError(c, models.NewAPIError(models.ErrCodeInternalError, "Failed to retrieve session history", http.StatusInternalServerError))
			return
		}

		more := len(rows) > req.Limit
		if more {
			rows = rows[:req.Limit]
		}

		respondOK(c, "", models.PaginatedResponse{
			Data: rows,
			Pagination: models.PaginationInfo{
				Limit:  req.Limit,
				Offset: req.Offset,
				Count:  len(rows),
				More:   more,
			},
		})
	}
}
