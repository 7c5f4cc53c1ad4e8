package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/guard"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
)

// Context keys set by RoleRequired
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextToken    = "session_token"
)

// RoleRequired runs the access guard for role. An empty role admits any
// signed-in user. Redirect verdicts become 302s, Pending becomes 503.
func RoleRequired(services interfaces.Services, role token.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		g := services.Guard()
		verdict := g.RouteContext(c.Request.Context(), role)

		var s session.Session
		if verdict.Kind == guard.Allow {
			// The session may have changed since the verdict; admit on the
			// snapshot the handler will act on.
			s = services.SessionManager().Session()
			verdict = guard.Evaluate(s, role)
		}

		switch verdict.Kind {
		case guard.Allow:
			c.Set(ContextUserID, s.User.ID)
			c.Set(ContextUserRole, string(s.User.Role))
			c.Set(ContextToken, s.Token)
			c.Next()

		case guard.Pending:
			retry := services.GetConfig().Session.GuardRetryDelay
			if retry < time.Second {
				retry = time.Second
			}
			c.Header("Retry-After", strconv.Itoa(int(retry/time.Second)))
			c.JSON(http.StatusServiceUnavailable, models.BaseResponse{
				Success: false,
				Error: &models.ErrorInfo{
					Code:    models.ErrCodeSessionPending,
					Message: "Session is still loading",
				},
				Timestamp: time.Now().Unix(),
				RequestID: c.GetString("request_id"),
			})
			c.Abort()

		default:
			if verdict.Kind == guard.RedirectHome {
				services.GetLogger().SecurityLogger("role_mismatch", string(verdict.Role), "required="+string(role)+" path="+c.Request.URL.Path)
			}
			c.Redirect(http.StatusFound, g.Routes().Location(verdict))
			c.Abort()
		}
	}
}

// AuthRequired admits any signed-in user.
func AuthRequired(services interfaces.Services) gin.HandlerFunc {
	return RoleRequired(services, "")
}

// AdminRequired admits admins only.
func AdminRequired(services interfaces.Services) gin.HandlerFunc {
	return RoleRequired(services, token.RoleAdmin)
}
