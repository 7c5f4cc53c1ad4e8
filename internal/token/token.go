// Package token decodes the backend's bearer tokens into claims.
//
// Tokens are JWTs issued and signed by the backend. This package only reads
// the payload segment; signature verification is the backend's job and is
// deliberately not repeated here.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the user role carried in a token. Values outside the known set are
// kept as-is.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleMember  Role = "member"
)

// Known reports whether r is one of the roles the application has views for.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleMember:
		return true
	default:
		return false
	}
}

var (
	// ErrMalformed is returned for any token that cannot be decoded into
	// a complete set of claims.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired marks a token whose expiry has passed.
	ErrExpired = errors.New("token has expired")
)

// Claims is the decoded token payload.
type Claims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Name      string `json:"name,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"` // 0 when the token carries no iat
	ExpiresAt int64  `json:"exp"`
}

var segmentParser = jwt.NewParser()

// maxTimestamp is 9999-12-31T23:59:59Z. Numeric dates outside
// [0, maxTimestamp] do not fit the codec's int64 arithmetic.
const maxTimestamp = 253402300799

// Decode parses the payload segment of a token without verifying the
// signature. Subject, email, role and expiry are required.
func Decode(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload segment: %v", ErrMalformed, err)
	}

	var mc jwt.MapClaims
	if err := json.Unmarshal(payload, &mc); err != nil {
		return nil, fmt.Errorf("%w: payload json: %v", ErrMalformed, err)
	}
	if mc == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	subject, err := mc.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: sub: %v", ErrMalformed, err)
	}
	if subject == "" {
		// Older backend builds put the id under user_id.
		subject, _ = mc["user_id"].(string)
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}

	email, err := requiredString(mc, "email")
	if err != nil {
		return nil, err
	}
	role, err := requiredString(mc, "role")
	if err != nil {
		return nil, err
	}

	if err := checkTimestamp(mc, "exp"); err != nil {
		return nil, err
	}
	if err := checkTimestamp(mc, "iat"); err != nil {
		return nil, err
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: exp: %v", ErrMalformed, err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrMalformed)
	}

	iat, err := mc.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("%w: iat: %v", ErrMalformed, err)
	}

	claims := &Claims{
		Subject:   subject,
		Email:     email,
		Role:      Role(role),
		ExpiresAt: exp.Unix(),
	}
	if iat != nil {
		claims.IssuedAt = iat.Unix()
	}
	if name, ok := mc["name"].(string); ok {
		claims.Name = name
	}

	return claims, nil
}

// checkTimestamp rejects numeric dates out of range. Absent or non-numeric
// values are left to the jwt getters.
func checkTimestamp(mc jwt.MapClaims, key string) error {
	value, ok := mc[key].(float64)
	if !ok {
		return nil
	}
	if value < 0 || value > maxTimestamp {
		return fmt.Errorf("%w: %s out of range", ErrMalformed, key)
	}
	return nil
}

func requiredString(mc jwt.MapClaims, key string) (string, error) {
	raw, exists := mc[key]
	if !exists {
		return "", fmt.Errorf("%w: missing %s", ErrMalformed, key)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrMalformed, key)
	}
	return value, nil
}

// IsExpired reports whether the token is expired at now. Undecodable tokens
// count as expired.
func IsExpired(raw string, now time.Time) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return claims.ExpiresAt <= now.Unix()
}

// IsExpiringSoon reports whether fewer than threshold remain before expiry.
// Undecodable tokens count as expiring.
func IsExpiringSoon(raw string, now time.Time, threshold time.Duration) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return claims.ExpiresAt-now.Unix() < int64(threshold/time.Second)
}

// RemainingSeconds returns the whole seconds left before expiry, never
// negative, and 0 for undecodable tokens.
func RemainingSeconds(raw string, now time.Time) int64 {
	claims, err := Decode(raw)
	if err != nil {
		return 0
	}
	return max(0, claims.ExpiresAt-now.Unix())
}

// Validate decodes raw and rejects it when already expired at now.
func Validate(raw string, now time.Time) (*Claims, error) {
	claims, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt <= now.Unix() {
		return nil, ErrExpired
	}
	return claims, nil
}
