package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/middlewares"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/backend"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.BaseResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Unix(),
		RequestID: c.GetString("request_id"),
	})
}

func respondError(c *gin.Context, apiErr *models.APIError) {
	c.JSON(apiErr.StatusCode, models.BaseResponse{
		Success:   false,
		Error:     apiErr.Info(),
		Timestamp: time.Now().Unix(),
		RequestID: c.GetString("request_id"),
	})
}

func invalidRequest(c *gin.Context, err error) {
	respondError(c, models.NewAPIError(models.ErrCodeInvalidRequest, "Invalid request parameters", http.StatusBadRequest).WithDetails(err.Error()))
}

// respondBackendError relays a failed backend call. A backend 401 means the
// request's bearer token is no longer accepted; the local session ends only
// if it still holds that token.
func respondBackendError(c *gin.Context, services interfaces.Services, op string, err error) {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		services.GetLogger().Error("Backend call failed", "op", op, "error", err.Error())
		respondError(c, models.NewAPIError(models.ErrCodeBackendError, "Backend request failed", http.StatusBadGateway))
		return
	}

	services.GetLogger().Warning("Backend call rejected", "op", op, "status", apiErr.StatusCode, "code", apiErr.Code)

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		services.SessionManager().Revoke(c.Request.Context(), c.GetString(middlewares.ContextToken))
		respondError(c, models.NewAPIError(models.ErrCodeUnauthorized, "Session is no longer valid, please sign in again", http.StatusUnauthorized))
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		respondError(c, models.NewAPIError(apiErr.Code, apiErr.Message, apiErr.StatusCode).WithDetails(apiErr.Details))
	default:
		respondError(c, models.NewAPIError(models.ErrCodeBackendError, apiErr.Message, http.StatusBadGateway))
	}
}
