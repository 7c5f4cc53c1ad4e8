package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token/tokentest"
)

var now = time.Unix(1_700_000_000, 0)

func TestDecode(t *testing.T) {
	raw := tokentest.Issue(t, jwt.MapClaims{
		"sub":   "u1",
		"email": "a@b.com",
		"role":  "member",
		"name":  "Ada",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, token.RoleMember, claims.Role)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, now.Unix(), claims.IssuedAt)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt)
}

func TestDecodeKeepsUnknownRole(t *testing.T) {
	raw := tokentest.ForUser(t, "u2", "g@b.com", "guest", now, time.Hour)

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, token.Role("guest"), claims.Role)
	assert.False(t, claims.Role.Known())
}

func TestDecodeUserIDFallback(t *testing.T) {
	raw := tokentest.Issue(t, jwt.MapClaims{
		"user_id": "legacy-7",
		"email":   "l@b.com",
		"role":    "trainer",
		"exp":     now.Add(time.Hour).Unix(),
	})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "legacy-7", claims.Subject)
	assert.Zero(t, claims.IssuedAt)
}

func TestDecodeMalformed(t *testing.T) {
	payload := func(s string) string {
		return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(s)) + ".sig"
	}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "two segments", raw: "a.b"},
		{name: "four segments", raw: "a.b.c.d"},
		{name: "payload not base64", raw: "h.%%%.s"},
		{name: "payload not json", raw: payload("not json")},
		{name: "payload is array", raw: payload(`[1,2]`)},
		{name: "missing sub", raw: payload(`{"email":"a@b.com","role":"member","exp":1900000000}`)},
		{name: "missing email", raw: payload(`{"sub":"u1","role":"member","exp":1900000000}`)},
		{name: "missing role", raw: payload(`{"sub":"u1","email":"a@b.com","exp":1900000000}`)},
		{name: "missing exp", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member"}`)},
		{name: "sub wrong type", raw: payload(`{"sub":7,"email":"a@b.com","role":"member","exp":1900000000}`)},
		{name: "role wrong type", raw: payload(`{"sub":"u1","email":"a@b.com","role":["admin"],"exp":1900000000}`)},
		{name: "exp wrong type", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member","exp":"soon"}`)},
		{name: "exp far future", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member","exp":1e300}`)},
		{name: "exp past int64", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member","exp":1e19}`)},
		{name: "exp far past", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member","exp":-1e300}`)},
		{name: "exp negative", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member","exp":-1}`)},
		{name: "iat out of range", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member","exp":1900000000,"iat":1e300}`)},
		{name: "iat wrong type", raw: payload(`{"sub":"u1","email":"a@b.com","role":"member","exp":1900000000,"iat":"x"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.Decode(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, token.ErrMalformed)
			assert.True(t, token.IsExpired(tt.raw, now), "undecodable tokens must count as expired")
			assert.True(t, token.IsExpiringSoon(tt.raw, now, time.Minute))
			assert.Zero(t, token.RemainingSeconds(tt.raw, now))
		})
	}
}

func TestDecodeTimestampBounds(t *testing.T) {
	raw := "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1","email":"a@b.com","role":"member","exp":253402300799}`)) + ".sig"

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(253402300799), claims.ExpiresAt)
	assert.False(t, token.IsExpired(raw, now))
	assert.False(t, token.IsExpiringSoon(raw, now, time.Hour))
	assert.Equal(t, 253402300799-now.Unix(), token.RemainingSeconds(raw, now))
}

func TestDecodeDoesNotVerifySignature(t *testing.T) {
	raw := tokentest.ForUser(t, "u1", "a@b.com", "admin", now, time.Hour)
	tampered := raw[:len(raw)-4] + "AAAA"

	claims, err := token.Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, token.RoleAdmin, claims.Role)
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		expired bool
	}{
		{name: "an hour left", ttl: time.Hour, expired: false},
		{name: "one second left", ttl: time.Second, expired: false},
		{name: "expires now", ttl: 0, expired: true},
		{name: "expired ten seconds ago", ttl: -10 * time.Second, expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tokentest.Issue(t, jwt.MapClaims{
				"sub":   "u1",
				"email": "a@b.com",
				"role":  "member",
				"exp":   now.Add(tt.ttl).Unix(),
			})
			assert.Equal(t, tt.expired, token.IsExpired(raw, now))
		})
	}
}

func TestIsExpiringSoon(t *testing.T) {
	threshold := 5 * time.Minute

	later := tokentest.ForUser(t, "u1", "a@b.com", "member", now, 10*time.Minute)
	assert.False(t, token.IsExpiringSoon(later, now, threshold))

	soon := tokentest.ForUser(t, "u1", "a@b.com", "member", now, 4*time.Minute)
	assert.True(t, token.IsExpiringSoon(soon, now, threshold))

	edge := tokentest.ForUser(t, "u1", "a@b.com", "member", now, threshold)
	assert.False(t, token.IsExpiringSoon(edge, now, threshold))
}

func TestRemainingSeconds(t *testing.T) {
	raw := tokentest.ForUser(t, "u1", "a@b.com", "member", now, 90*time.Second)
	assert.Equal(t, int64(90), token.RemainingSeconds(raw, now))
	assert.Equal(t, int64(0), token.RemainingSeconds(raw, now.Add(time.Hour)))
}

func TestValidate(t *testing.T) {
	live := tokentest.ForUser(t, "u1", "a@b.com", "member", now, time.Minute)
	claims, err := token.Validate(live, now)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	dead := tokentest.ForUser(t, "u1", "a@b.com", "member", now, -time.Minute)
	_, err = token.Validate(dead, now)
	assert.ErrorIs(t, err, token.ErrExpired)
}
