package session

import (
	"fmt"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
)

// State is the session state machine's current state.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateFailed         State = "failed"
)

// DefaultDisplayName is used when a token carries no name.
const DefaultDisplayName = "User"

// User is the minimal profile of the signed-in user.
type User struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  token.Role `json:"role"`
}

// Session is a read-only snapshot of the session state. Token is empty and
// User is nil when absent.
type Session struct {
	State         State  `json:"state"`
	User          *User  `json:"user,omitempty"`
	Token         string `json:"-"`
	Authenticated bool   `json:"authenticated"`
	RememberMe    bool   `json:"remember_me"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
}

// HasToken reports whether the snapshot carries a token.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// userFromClaims rebuilds a user from token claims.
func userFromClaims(c *token.Claims) User {
	name := c.Name
	if name == "" {
		name = DefaultDisplayName
	}
	return User{ID: c.Subject, Name: name, Email: c.Email, Role: c.Role}
}

// machine holds the session and applies transitions. It is not safe for
// concurrent use; Manager serializes access.
type machine struct {
	session    Session
	generation uint64
}

func newMachine() *machine {
	return &machine{session: Session{State: StateAnonymous}}
}

func (m *machine) snapshot() Session {
	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// pristine reports an anonymous session with nothing loaded into it.
func (m *machine) pristine() bool {
	return m.session.State == StateAnonymous && m.session.User == nil && m.session.Token == ""
}

func (m *machine) set(s Session) {
	m.session = s
	m.generation++
}

func (m *machine) invalid(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, m.session.State)
}

// beginLogin: anonymous|failed -> authenticating.
func (m *machine) beginLogin() error {
	switch m.session.State {
	case StateAnonymous, StateFailed:
	default:
		return m.invalid("begin login")
	}
	m.set(Session{State: StateAuthenticating, Loading: true})
	return nil
}

// completeLogin: authenticating -> authenticated.
func (m *machine) completeLogin(user User, tok string, rememberMe bool) error {
	if m.session.State != StateAuthenticating {
		return m.invalid("complete login")
	}
	m.set(Session{
		State:         StateAuthenticated,
		User:          &user,
		Token:         tok,
		Authenticated: true,
		RememberMe:    rememberMe,
	})
	return nil
}

// failLogin: authenticating -> failed.
func (m *machine) failLogin(message string) error {
	if m.session.State != StateAuthenticating {
		return m.invalid("fail login")
	}
	m.set(Session{State: StateFailed, Error: message})
	return nil
}

// logout: any -> anonymous.
func (m *machine) logout() {
	m.set(Session{State: StateAnonymous})
}

// clearError: failed -> anonymous.
func (m *machine) clearError() error {
	if m.session.State != StateFailed {
		return m.invalid("clear error")
	}
	m.set(Session{State: StateAnonymous})
	return nil
}

// restore: pristine anonymous -> authenticated, for rehydration only.
func (m *machine) restore(user User, tok string, rememberMe bool) error {
	if !m.pristine() {
		return m.invalid("restore")
	}
	m.set(Session{
		State:         StateAuthenticated,
		User:          &user,
		Token:         tok,
		Authenticated: true,
		RememberMe:    rememberMe,
	})
	return nil
}
