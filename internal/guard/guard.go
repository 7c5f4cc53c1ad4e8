// Package guard decides whether a session may enter a role-gated view.
package guard

import (
	"context"
	"time"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/metrics"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/config"
)

// Kind is the outcome of an access decision.
type Kind int

const (
	Allow Kind = iota
	RedirectLogin
	RedirectHome
	Pending
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// Verdict is an access decision. Role is set only for RedirectHome and is
// the role whose home the user belongs on.
type Verdict struct {
	Kind Kind
	Role token.Role
}

// Evaluate decides access to a view requiring role. An empty role admits any
// authenticated user.
func Evaluate(s session.Session, role token.Role) Verdict {
	if !s.Authenticated || !s.HasToken() {
		return Verdict{Kind: RedirectLogin}
	}
	if s.User == nil {
		return Verdict{Kind: Pending}
	}
	if role != "" && s.User.Role != role {
		return Verdict{Kind: RedirectHome, Role: s.User.Role}
	}
	return Verdict{Kind: Allow}
}

// EvaluateWithRetry re-reads the session while the verdict is Pending, up to
// attempts evaluations in total with delay between them. A verdict that is
// still Pending afterwards is returned as is.
func EvaluateWithRetry(ctx context.Context, snapshot func() session.Session, role token.Role, attempts int, delay time.Duration) Verdict {
	if attempts < 1 {
		attempts = 1
	}

	var v Verdict
	for i := 0; i < attempts; i++ {
		v = Evaluate(snapshot(), role)
		if v.Kind != Pending || i == attempts-1 {
			return v
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return v
		case <-timer.C:
		}
	}
	return v
}

// Routes maps verdicts to paths.
type Routes struct {
	Login   string
	Default string
	Homes   map[token.Role]string
}

// DefaultRoutes returns the stock portal paths.
func DefaultRoutes() Routes {
	return Routes{
		Login:   "/login",
		Default: "/",
		Homes: map[token.Role]string{
			token.RoleAdmin:   "/admin/dashboard",
			token.RoleTrainer: "/trainer/dashboard",
			token.RoleMember:  "/member/dashboard",
		},
	}
}

// RoutesFromConfig overlays configured paths on the defaults.
func RoutesFromConfig(cfg config.RoutesConfig) Routes {
	r := DefaultRoutes()
	if cfg.Login != "" {
		r.Login = cfg.Login
	}
	if cfg.DefaultHome != "" {
		r.Default = cfg.DefaultHome
	}
	for role, path := range map[token.Role]string{
		token.RoleAdmin:   cfg.AdminHome,
		token.RoleTrainer: cfg.TrainerHome,
		token.RoleMember:  cfg.MemberHome,
	} {
		if path != "" {
			r.Homes[role] = path
		}
	}
	return r
}

// HomeRoute returns the landing path for role; unknown roles land on the
// default path.
func (r Routes) HomeRoute(role token.Role) string {
	if !role.Known() {
		return r.Default
	}
	if path, ok := r.Homes[role]; ok && path != "" {
		return path
	}
	return r.Default
}

// Location returns where a redirect verdict sends the user, or "" for
// verdicts that do not redirect.
func (r Routes) Location(v Verdict) string {
	switch v.Kind {
	case RedirectLogin:
		return r.Login
	case RedirectHome:
		return r.HomeRoute(v.Role)
	default:
		return ""
	}
}

// SessionSource provides session snapshots. *session.Manager satisfies it.
type SessionSource interface {
	Session() session.Session
}

// Options configures a Guard.
type Options struct {
	Routes        Routes
	RetryAttempts int
	RetryDelay    time.Duration
	Metrics       *metrics.Metrics
}

// Guard evaluates routes against a live session.
type Guard struct {
	source   SessionSource
	routes   Routes
	attempts int
	delay    time.Duration
	metrics  *metrics.Metrics
}

func New(source SessionSource, opts Options) *Guard {
	if opts.Routes.Homes == nil {
		opts.Routes = DefaultRoutes()
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	return &Guard{
		source:   source,
		routes:   opts.Routes,
		attempts: opts.RetryAttempts,
		delay:    opts.RetryDelay,
		metrics:  opts.Metrics,
	}
}

// Route evaluates the current session for a view requiring role.
func (g *Guard) Route(role token.Role) Verdict {
	return g.RouteContext(context.Background(), role)
}

// RouteContext is Route with a context bounding the Pending retries.
func (g *Guard) RouteContext(ctx context.Context, role token.Role) Verdict {
	v := EvaluateWithRetry(ctx, g.source.Session, role, g.attempts, g.delay)
	g.metrics.ObserveVerdict(v.Kind.String())
	return v
}

// Routes returns the guard's route table.
func (g *Guard) Routes() Routes {
	return g.routes
}
