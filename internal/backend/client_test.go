package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token/tokentest"
)

var _ session.Authenticator = (*Client)(nil)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api", Options{})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNew(t *testing.T) {
	_, err := New("", Options{})
	assert.Error(t, err)

	_, err = New("ftp://example.com", Options{})
	assert.Error(t, err)

	c, err := New("http://localhost:8080/api/", Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/", c.baseURL.String())
}

func TestLogin(t *testing.T) {
	tok := tokentest.ForUser(t, "42", "a@b.com", "trainer", time.Now(), time.Hour)

	tests := []struct {
		name string
		body any
	}{
		{
			name: "plain body",
			body: map[string]any{"token": tok, "user": map[string]any{"id": 42, "name": "Ann", "email": "a@b.com", "role": "trainer"}},
		},
		{
			name: "enveloped body",
			body: map[string]any{"success": true, "data": map[string]any{"token": tok, "user": map[string]any{"id": "42", "name": "Ann", "email": "a@b.com", "role": "trainer"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/auth/login", r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"))

				var req LoginRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, LoginRequest{Email: "a@b.com", Password: "pw"}, req)

				writeJSON(w, http.StatusOK, tt.body)
			})

			res, err := c.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "pw", RememberMe: true})
			require.NoError(t, err)
			assert.Equal(t, tok, res.Token)
			assert.Equal(t, session.User{ID: "42", Name: "Ann", Email: "a@b.com", Role: token.RoleTrainer}, res.User)
		})
	}
}

func TestLogin_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, map[string]any{"error": map[string]any{"code": "INVALID_CREDENTIALS", "message": "Wrong password"}})
		})

		_, err := c.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "bad"})
		require.ErrorIs(t, err, session.ErrLoginRejected)
		assert.Equal(t, "Wrong password", err.Error())

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
		assert.Equal(t, status, apiErr.StatusCode)
	}
}

func TestLogin_RejectedWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Login(context.Background(), session.Credentials{})
	require.ErrorIs(t, err, session.ErrLoginRejected)
	assert.Equal(t, "Unauthorized", err.Error())
}

func TestLogin_ServerErrorIsNotRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "database down"})
	})

	_, err := c.Login(context.Background(), session.Credentials{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, session.ErrLoginRejected))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrCodeUnavailable, apiErr.Code)
	assert.Equal(t, "database down", apiErr.Message)
}

func TestLogin_EmptyToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 1}})
	})

	_, err := c.Login(context.Background(), session.Credentials{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrCodeInvalidResponse, apiErr.Code)
}

func TestLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, Options{Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Login(context.Background(), session.Credentials{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrCodeUnavailable, apiErr.Code)
	assert.NotNil(t, apiErr.Unwrap())
}

func TestLogin_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Login(ctx, session.Credentials{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdminCalls(t *testing.T) {
	const bearer = "a.b.c"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+bearer, r.Header.Get("Authorization"))

		switch r.Method + " " + r.URL.Path {
		case "GET /api/admin/users":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{
				{"id": 1, "name": "Ann", "email": "a@b.com", "role": "admin", "is_active": true, "created_at": "2024-01-02T03:04:05Z"},
				{"id": 2, "name": "Bo", "email": "b@b.com", "role": "member", "created_at": "2024-01-02T03:04:05Z"},
			}})
		case "POST /api/admin/users/2/generate-password":
			writeJSON(w, http.StatusOK, map[string]any{"password": "Xy7-generated"})
		case "POST /api/admin/users/2/reset-password":
			var req ResetPasswordRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "new-secret-pw", req.Password)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		case "GET /api/admin/login-records":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 9, "user_id": 2, "email": "b@b.com", "success": false, "ip_address": "10.0.0.1", "created_at": "2024-01-02T03:04:05Z"},
			})
		case "POST /api/auth/change-password":
			var req ChangePasswordRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.CurrentPassword != "old-password" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Current password is incorrect"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	users, err := c.ListUsers(ctx, bearer)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ID("1"), users[0].ID)
	assert.True(t, users[0].IsActive)
	assert.Equal(t, "member", users[1].Role)

	pw, err := c.GeneratePassword(ctx, bearer, "2")
	require.NoError(t, err)
	assert.Equal(t, "Xy7-generated", pw)

	require.NoError(t, c.ResetPassword(ctx, bearer, "2", "new-secret-pw"))

	records, err := c.ListLoginRecords(ctx, bearer)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ID("2"), records[0].UserID)
	assert.False(t, records[0].Success)

	require.NoError(t, c.ChangePassword(ctx, bearer, ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}))

	err = c.ChangePassword(ctx, bearer, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new-password"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrCodeInvalidRequest, apiErr.Code)
	assert.Equal(t, "Current password is incorrect", apiErr.Message)

	_, err = c.GeneratePassword(ctx, bearer, " ")
	assert.Error(t, err)

	_, err = c.GeneratePassword(ctx, bearer, "404")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestIDUnmarshal(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": "x-1", "c": null}`), &v))
	assert.Equal(t, ID("7"), v.A)
	assert.Equal(t, ID("x-1"), v.B)
	assert.Equal(t, ID(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": 1.5}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}
