package session

import "errors"

var (
	// ErrInvalidTransition is returned when a transition is requested from
	// a state that does not allow it.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrLoginRejected marks a login the backend refused. Authenticators
	// wrap it so the backend's message reaches the session error.
	ErrLoginRejected = errors.New("login rejected")
	// ErrNoAuthenticator is returned by Login on a manager built without one.
	ErrNoAuthenticator = errors.New("no authenticator configured")
)

const (
	msgLoginUnavailable = "Unable to sign in right now. Please try again."
	msgLoginCancelled   = "Sign in was cancelled."
	msgInvalidToken     = "The server returned an invalid session."
)
