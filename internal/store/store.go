// Package store keeps the bearer token in one of two storage tiers.
//
// The durable tier survives restarts and is used when the user asked to be
// remembered; the ephemeral tier lives only as long as the process. At most
// one tier holds a token at any time.
package store

import (
	"context"
	"errors"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

// DefaultKey is the name the token is stored under.
const DefaultKey = "firefly_token"

// ErrUnavailable is reported by backends that have no storage behind them.
var ErrUnavailable = errors.New("storage unavailable")

// Tier identifies where a token was found.
type Tier int

const (
	TierNone Tier = iota
	TierEphemeral
	TierDurable
)

func (t Tier) String() string {
	switch t {
	case TierEphemeral:
		return "ephemeral"
	case TierDurable:
		return "durable"
	default:
		return "none"
	}
}

// Backend is a string key-value store used as one tier.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store is the token store. Backend failures are logged and otherwise
// treated as an absent token.
type Store struct {
	key       string
	durable   Backend
	ephemeral Backend
	logger    *logger.Logger
}

// New creates a token store over the two tiers.
func New(key string, durable, ephemeral Backend, log *logger.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{
		key:       key,
		durable:   durable,
		ephemeral: ephemeral,
		logger:    log.WithComponent("token-store"),
	}
}

// Unavailable returns a store for environments with no storage at all.
// Every operation is a silent no-op.
func Unavailable() *Store {
	return New(DefaultKey, NoopBackend{}, NoopBackend{}, nil)
}

// Available reports whether either tier is backed by real storage.
func (s *Store) Available() bool {
	_, durableNoop := s.durable.(NoopBackend)
	_, ephemeralNoop := s.ephemeral.(NoopBackend)
	return !durableNoop || !ephemeralNoop
}

// Write replaces any stored token with tok in the tier chosen by remember.
func (s *Store) Write(ctx context.Context, tok string, remember bool) {
	s.Clear(ctx)

	target, tier := s.ephemeral, TierEphemeral
	if remember {
		target, tier = s.durable, TierDurable
	}
	if err := target.Set(ctx, s.key, tok); err != nil {
		s.report("write", tier, err)
	}
}

// Read returns the stored token and its tier. The durable tier wins when
// both somehow hold a value.
func (s *Store) Read(ctx context.Context) (string, Tier) {
	if tok, ok := s.get(ctx, s.durable, TierDurable); ok {
		return tok, TierDurable
	}
	if tok, ok := s.get(ctx, s.ephemeral, TierEphemeral); ok {
		return tok, TierEphemeral
	}
	return "", TierNone
}

// Clear removes the token from both tiers.
func (s *Store) Clear(ctx context.Context) {
	if err := s.durable.Delete(ctx, s.key); err != nil {
		s.report("clear", TierDurable, err)
	}
	if err := s.ephemeral.Delete(ctx, s.key); err != nil {
		s.report("clear", TierEphemeral, err)
	}
}

func (s *Store) get(ctx context.Context, b Backend, tier Tier) (string, bool) {
	tok, ok, err := b.Get(ctx, s.key)
	if err != nil {
		s.report("read", tier, err)
		return "", false
	}
	return tok, ok && tok != ""
}

func (s *Store) report(op string, tier Tier, err error) {
	if errors.Is(err, ErrUnavailable) {
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"op":    op,
		"tier":  tier.String(),
		"error": err.Error(),
	}).Warning("Token storage operation failed")
}
