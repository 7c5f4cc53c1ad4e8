package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
)

// Login signs in with the posted credentials
func Login(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			invalidRequest(c, err)
			return
		}

		manager := services.SessionManager()
		err := manager.Login(c.Request.Context(), session.Credentials{
			Email:      req.Email,
			Password:   req.Password,
			RememberMe: req.RememberMe,
		})
		if err != nil {
			respondError(c, loginError(manager.Session(), err))
			return
		}

		respondOK(c, "Signed in", sessionResponse(services, manager.Session()))
	}
}

func loginError(s session.Session, err error) *models.APIError {
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		switch s.State {
		case session.StateAuthenticating:
			return models.NewAPIError(models.ErrCodeLoginInProgress, "A sign in is already in progress", http.StatusConflict)
		case session.StateAuthenticated:
			return models.NewAPIError(models.ErrCodeAlreadySignedIn, "Already signed in", http.StatusConflict)
		default:
			return models.NewAPIError(models.ErrCodeConflict, "Sign in was interrupted", http.StatusConflict)
		}
	case errors.Is(err, session.ErrLoginRejected):
		return models.NewAPIError(models.ErrCodeInvalidCredentials, s.Error, http.StatusUnauthorized)
	case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrExpired):
		return models.NewAPIError(models.ErrCodeInvalidToken, s.Error, http.StatusBadGateway)
	default:
		message := s.Error
		if message == "" {
			message = "Unable to sign in right now"
		}
		return models.NewAPIError(models.ErrCodeServiceUnavailable, message, http.StatusServiceUnavailable)
	}
}

// Logout ends the session from any state
func Logout(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		services.SessionManager().Logout(c.Request.Context())
		respondOK(c, "Signed out", gin.H{"redirect": services.Guard().Routes().Login})
	}
}

// GetSession returns the current session snapshot. The token itself is
// never serialized.
func GetSession(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondOK(c, "", sessionResponse(services, services.SessionManager().Session()))
	}
}

// ClearError returns a failed session to anonymous
func ClearError(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager := services.SessionManager()
		if err := manager.ClearError(); err != nil {
			respondError(c, models.NewAPIError(models.ErrCodeConflict, "No sign in error to clear", http.StatusConflict))
			return
		}
		respondOK(c, "", sessionResponse(services, manager.Session()))
	}
}

func sessionResponse(services interfaces.Services, s session.Session) models.SessionResponse {
	resp := models.SessionResponse{Session: s}
	if s.Authenticated && s.User != nil {
		resp.Home = services.Guard().Routes().HomeRoute(s.User.Role)
		resp.ExpiresIn = token.RemainingSeconds(s.Token, time.Now())
	}
	return resp
}
