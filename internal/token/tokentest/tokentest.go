// Package tokentest issues signed tokens shaped like the backend's for tests.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKey is the HMAC key used for test tokens. Nothing in the client
// verifies it.
var SigningKey = []byte("firefly-test-signing-key-0123456789")

// Issue signs claims with HS256 and fails the test on error.
func Issue(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(SigningKey)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

// ForUser issues a token for a user that expires ttl after now.
func ForUser(t testing.TB, id, email, role string, now time.Time, ttl time.Duration) string {
	t.Helper()
	return Issue(t, jwt.MapClaims{
		"sub":   id,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
}
