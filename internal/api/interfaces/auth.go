package interfaces

import (
	"context"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/backend"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/database"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
)

// SessionManager is the part of *session.Manager the portal drives.
type SessionManager interface {
	Session() session.Session
	Token() string
	Login(ctx context.Context, creds session.Credentials) error
	Logout(ctx context.Context)
	Revoke(ctx context.Context, tok string) bool
	ClearError() error
	SweepRunning() bool
}

// BackendClient is the bearer-authenticated part of *backend.Client.
type BackendClient interface {
	ChangePassword(ctx context.Context, bearer string, req backend.ChangePasswordRequest) error
	ListUsers(ctx context.Context, bearer string) ([]backend.UserAccount, error)
	GeneratePassword(ctx context.Context, bearer, userID string) (string, error)
	ResetPassword(ctx context.Context, bearer, userID, password string) error
	ListLoginRecords(ctx context.Context, bearer string) ([]backend.LoginRecord, error)
}

// EventLog lists recorded session events.
type EventLog interface {
	ListEvents(ctx context.Context, event string, limit, offset int) ([]database.SessionEvent, error)
}
