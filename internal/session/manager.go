// Package session owns the client's authentication state.
//
// A Manager holds exactly one session. It is the only writer of that
// session and of the token store: login, logout and rehydration apply a
// state transition first and then the matching storage operation, in that
// order, so storage never gets ahead of memory.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/metrics"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/store"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

const (
	DefaultSweepInterval   = time.Minute
	DefaultExpiryThreshold = 5 * time.Minute
)

// Session event names, as logged and recorded.
const (
	EventLogin              = "login"
	EventLoginFailed        = "login_failed"
	EventLogout             = "logout"
	EventExpired            = "expired"
	EventRehydrated         = "rehydrated"
	EventRehydrateDiscarded = "rehydrate_discarded"
	EventRevoked            = "revoked"
)

// Credentials are what the user typed on the login screen.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string
	User  User
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
}

// EventRecorder persists session events. Failures are logged, never fatal.
type EventRecorder interface {
	Record(ctx context.Context, event, userID, details string) error
}

// Options configures a Manager.
type Options struct {
	Store           *store.Store
	Authenticator   Authenticator
	Events          EventRecorder
	Logger          *logger.Logger
	Metrics         *metrics.Metrics
	SweepInterval   time.Duration
	ExpiryThreshold time.Duration
	Now             func() time.Time
}

// Manager is the session manager.
type Manager struct {
	mutex sync.RWMutex
	// storeMutex is taken before mutex is released so storage operations
	// run in transition order.
	storeMutex sync.Mutex
	machine    *machine

	store     *store.Store
	auth      Authenticator
	events    EventRecorder
	logger    *logger.Logger
	metrics   *metrics.Metrics
	threshold time.Duration
	now       func() time.Time
	sweeper   *sweeper
}

// NewManager creates a manager in the anonymous state. Call Rehydrate once
// before serving.
func NewManager(opts Options) *Manager {
	m := &Manager{
		machine:   newMachine(),
		store:     opts.Store,
		auth:      opts.Authenticator,
		events:    opts.Events,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		threshold: opts.ExpiryThreshold,
		now:       opts.Now,
	}
	if m.store == nil {
		m.store = store.Unavailable()
	}
	if m.logger == nil {
		m.logger = logger.NewNopLogger()
	}
	m.logger = m.logger.WithComponent("session")
	if m.threshold <= 0 {
		m.threshold = DefaultExpiryThreshold
	}
	if m.now == nil {
		m.now = time.Now
	}

	interval := opts.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	m.sweeper = newSweeper(interval, m.sweepOnce)

	return m
}

// Session returns a snapshot of the current session.
func (m *Manager) Session() Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.machine.snapshot()
}

// Token returns the current bearer token, or "" when signed out.
func (m *Manager) Token() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.machine.session.Token
}

// Login runs begin, the backend call, then complete or fail. The returned
// error is informational: the session already reflects the outcome.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	if m.auth == nil {
		return ErrNoAuthenticator
	}

	m.mutex.Lock()
	err := m.machine.beginLogin()
	m.mutex.Unlock()
	if err != nil {
		return err
	}
	m.metrics.ObserveTransition(string(StateAuthenticating))

	result, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.fail(ctx, creds.Email, failureMessage(ctx, err), err)
		return err
	}

	claims, err := token.Validate(result.Token, m.now())
	if err != nil {
		m.fail(ctx, creds.Email, msgInvalidToken, err)
		return fmt.Errorf("login token: %w", err)
	}

	user := userFromClaims(claims)
	if result.User.Name != "" {
		user.Name = result.User.Name
	}

	m.mutex.Lock()
	if err := m.machine.completeLogin(user, result.Token, creds.RememberMe); err != nil {
		// Logged out while the request was in flight; drop the result.
		m.mutex.Unlock()
		m.logger.Warning("Discarding login result", "reason", err.Error())
		return err
	}
	m.storeMutex.Lock()
	m.mutex.Unlock()
	m.store.Write(ctx, result.Token, creds.RememberMe)
	m.storeMutex.Unlock()

	m.startSweep(result.Token)

	m.metrics.ObserveTransition(string(StateAuthenticated))
	m.metrics.ObserveLogin("success")
	m.metrics.SetAuthenticated(true)
	m.logger.SessionLogger(EventLogin, user.ID, fmt.Sprintf("role=%s remember_me=%t", user.Role, creds.RememberMe))
	m.record(ctx, EventLogin, user.ID, fmt.Sprintf("role=%s remember_me=%t", user.Role, creds.RememberMe))

	return nil
}

func (m *Manager) fail(ctx context.Context, email, message string, cause error) {
	m.mutex.Lock()
	err := m.machine.failLogin(message)
	m.mutex.Unlock()
	if err != nil {
		m.logger.Warning("Login failure arrived after session changed", "reason", err.Error())
		return
	}

	m.metrics.ObserveTransition(string(StateFailed))
	m.metrics.ObserveLogin("failure")
	m.logger.SecurityLogger(EventLoginFailed, email, cause.Error())
	m.record(ctx, EventLoginFailed, "", fmt.Sprintf("email=%s: %v", email, cause))
}

func failureMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, ErrLoginRejected):
		return err.Error()
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return msgLoginCancelled
	default:
		return msgLoginUnavailable
	}
}

// Logout ends the session from any state and clears stored tokens.
func (m *Manager) Logout(ctx context.Context) {
	m.endSession(ctx, "", EventLogout)
	m.sweeper.Stop()
}

// Revoke ends the session only while tok is still its token, for when the
// backend stops accepting a token. Returns whether the session was ended.
func (m *Manager) Revoke(ctx context.Context, tok string) bool {
	if tok == "" || !m.endSession(ctx, tok, EventRevoked) {
		return false
	}
	m.sweeper.Stop()
	return true
}

// ClearError returns a failed session to anonymous.
func (m *Manager) ClearError() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.machine.clearError(); err != nil {
		return err
	}
	m.metrics.ObserveTransition(string(StateAnonymous))
	return nil
}

// endSession moves to anonymous and clears storage. With a non-empty
// expected token it only acts if that token is still the current one.
func (m *Manager) endSession(ctx context.Context, expected, event string) bool {
	m.mutex.Lock()
	if expected != "" && m.machine.session.Token != expected {
		m.mutex.Unlock()
		return false
	}
	userID := ""
	if m.machine.session.User != nil {
		userID = m.machine.session.User.ID
	}
	m.machine.logout()
	m.storeMutex.Lock()
	m.mutex.Unlock()
	m.store.Clear(ctx)
	m.storeMutex.Unlock()

	m.metrics.ObserveTransition(string(StateAnonymous))
	m.metrics.SetAuthenticated(false)
	m.logger.SessionLogger(event, userID, "session ended")
	m.record(ctx, event, userID, "")
	return true
}

// Rehydrate restores a session from the token store. It only runs against
// a pristine anonymous session, and discards what it read if any
// transition happened meanwhile. Returns whether a session was restored.
func (m *Manager) Rehydrate(ctx context.Context) bool {
	m.mutex.RLock()
	pristine := m.machine.pristine()
	generation := m.machine.generation
	m.mutex.RUnlock()
	if !pristine {
		m.logger.Debug("Skipping rehydration, session already in use")
		return false
	}

	tok, tier := m.store.Read(ctx)
	if tok == "" {
		return false
	}

	claims, err := token.Validate(tok, m.now())
	if err != nil {
		m.mutex.Lock()
		if m.machine.generation != generation {
			m.mutex.Unlock()
			return false
		}
		m.storeMutex.Lock()
		m.mutex.Unlock()
		m.store.Clear(ctx)
		m.storeMutex.Unlock()

		m.logger.Info("Discarded stored token", "tier", tier.String(), "reason", err.Error())
		m.record(ctx, EventRehydrateDiscarded, "", err.Error())
		return false
	}

	user := userFromClaims(claims)

	m.mutex.Lock()
	if m.machine.generation != generation {
		m.mutex.Unlock()
		m.logger.Debug("Rehydration lost the race to a fresher transition")
		return false
	}
	if err := m.machine.restore(user, tok, tier == store.TierDurable); err != nil {
		m.mutex.Unlock()
		return false
	}
	m.mutex.Unlock()

	m.startSweep(tok)

	m.metrics.ObserveTransition(string(StateAuthenticated))
	m.metrics.SetAuthenticated(true)
	m.logger.SessionLogger(EventRehydrated, user.ID, "tier="+tier.String())
	m.record(ctx, EventRehydrated, user.ID, "tier="+tier.String())
	return true
}

// startSweep launches the expiry sweep if tok is still the live token.
func (m *Manager) startSweep(tok string) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.machine.session.Authenticated || m.machine.session.Token != tok {
		return
	}
	if err := m.sweeper.Start(); err != nil {
		m.logger.Debug("Expiry sweep already running")
	}
}

// SweepNow performs one expiry check immediately. Returns whether the
// session was ended.
func (m *Manager) SweepNow() bool {
	return m.checkExpiry()
}

// sweepOnce is the sweeper's check; true ends the loop.
func (m *Manager) sweepOnce() bool {
	m.mutex.RLock()
	authenticated := m.machine.session.Authenticated
	m.mutex.RUnlock()
	if !authenticated {
		return true
	}
	return m.checkExpiry()
}

func (m *Manager) checkExpiry() bool {
	tok := m.Token()
	if tok == "" {
		return false
	}
	if !token.IsExpiringSoon(tok, m.now(), m.threshold) {
		return false
	}
	return m.endSession(context.Background(), tok, EventExpired)
}

// SweepRunning reports whether the expiry sweep is active.
func (m *Manager) SweepRunning() bool {
	return m.sweeper.IsRunning()
}

// Close stops background work. The session and storage are left as they are.
func (m *Manager) Close() {
	m.sweeper.Stop()
}

func (m *Manager) record(ctx context.Context, event, userID, details string) {
	if m.events == nil {
		return
	}
	if err := m.events.Record(context.WithoutCancel(ctx), event, userID, details); err != nil {
		m.logger.Warning("Failed to record session event", "event", event, "error", err.Error())
	}
}
