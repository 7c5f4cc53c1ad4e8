// Package backend is the HTTP client for the Firefly REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Client talks to the backend. Every call except Login takes the bearer
// token explicitly; the client holds no session.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *logger.Logger
}

// Options overrides client dependencies.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *logger.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL is empty")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL must be http or https, got %q", baseURL)
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{baseURL: parsed, httpClient: client, logger: log.WithComponent("backend")}, nil
}

// Login exchanges credentials for a token. A 401 or 403 is reported as an
// APIError wrapping session.ErrLoginRejected.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.LoginResult, error) {
	payload := LoginRequest{Email: creds.Email, Password: creds.Password}

	var body LoginResponse
	err := c.call(ctx, http.MethodPost, "auth/login", "", payload, &body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			if apiErr.Message == "" {
				apiErr.Message = "Invalid email or password"
			}
			return nil, apiErr.Wrap(session.ErrLoginRejected)
		}
		return nil, err
	}
	if strings.TrimSpace(body.Token) == "" {
		return nil, NewAPIError(ErrCodeInvalidResponse, "login response carried no token", http.StatusOK)
	}

	return &session.LoginResult{
		Token: body.Token,
		User: session.User{
			ID:    body.User.ID.String(),
			Name:  body.User.Name,
			Email: body.User.Email,
			Role:  token.Role(body.User.Role),
		},
	}, nil
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, bearer string, req ChangePasswordRequest) error {
	return c.call(ctx, http.MethodPost, "auth/change-password", bearer, req, nil)
}

// ListUsers returns all user accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context, bearer string) ([]UserAccount, error) {
	var users []UserAccount
	if err := c.call(ctx, http.MethodGet, "admin/users", bearer, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GeneratePassword asks the backend to generate a new password for a user
// and returns it. Admin only.
func (c *Client) GeneratePassword(ctx context.Context, bearer, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", NewAPIError(ErrCodeInvalidRequest, "user id is empty", http.StatusBadRequest)
	}
	var body GeneratedPassword
	if err := c.call(ctx, http.MethodPost, "admin/users/"+url.PathEscape(userID)+"/generate-password", bearer, nil, &body); err != nil {
		return "", err
	}
	return body.Password, nil
}

// ResetPassword sets a user's password. Admin only.
func (c *Client) ResetPassword(ctx context.Context, bearer, userID, password string) error {
	if strings.TrimSpace(userID) == "" {
		return NewAPIError(ErrCodeInvalidRequest, "user id is empty", http.StatusBadRequest)
	}
	return c.call(ctx, http.MethodPost, "admin/users/"+url.PathEscape(userID)+"/reset-password", bearer, ResetPasswordRequest{Password: password}, nil)
}

// ListLoginRecords returns recent login attempts. Admin only.
func (c *Client) ListLoginRecords(ctx context.Context, bearer string) ([]LoginRecord, error) {
	var records []LoginRecord
	if err := c.call(ctx, http.MethodGet, "admin/login-records", bearer, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// call performs a JSON request and decodes the response into out, which may
// be nil. Bodies wrapped in a {success, data} envelope are unwrapped.
func (c *Client) call(ctx context.Context, method, path, bearer string, payload, out any) error {
	start := time.Now()
	resp, err := c.doJSON(ctx, method, path, bearer, payload)
	if err != nil {
		c.logger.Debug("Backend request failed", "method", method, "path", path, "error", err.Error())
		return NewAPIError(ErrCodeUnavailable, "backend unreachable", http.StatusBadGateway).Wrap(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request", "method", method, "path", path, "status", resp.StatusCode, "latency", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewAPIError(ErrCodeUnavailable, "read backend response", http.StatusBadGateway).Wrap(err)
	}
	if err := decodeData(raw, out); err != nil {
		return NewAPIError(ErrCodeInvalidResponse, "decode backend response", resp.StatusCode).Wrap(err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body io.Reader) (*http.Response, error) {
	rel, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, err
	}
	full := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, full.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.httpClient.Do(req)
}

func (c *Client) doJSON(ctx context.Context, method, path, bearer string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, err
		}
		body = buf
	}
	return c.do(ctx, method, path, bearer, body)
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Success != nil && len(env.Data) > 0 {
			trimmed = env.Data
		}
	}
	return json.Unmarshal(trimmed, out)
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// parseError builds an APIError from {error:{code,message}}, {error:"..."}
// or {message} bodies, falling back to the status text.
func parseError(resp *http.Response) error {
	apiErr := NewAPIError(codeForStatus(resp.StatusCode), http.StatusText(resp.StatusCode), resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	if body.Message != "" {
		apiErr.Message = body.Message
	}
	if len(body.Error) == 0 {
		return apiErr
	}

	var detail errorDetail
	if err := json.Unmarshal(body.Error, &detail); err == nil {
		if detail.Code != "" {
			apiErr.Code = detail.Code
		}
		if detail.Message != "" {
			apiErr.Message = detail.Message
		}
		if detail.Details != "" {
			apiErr.WithDetails(detail.Details)
		}
		return apiErr
	}

	var text string
	if err := json.Unmarshal(body.Error, &text); err == nil && text != "" {
		apiErr.Message = text
	}
	return apiErr
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	default:
		if status >= 500 {
			return ErrCodeUnavailable
		}
		return ErrCodeInternal
	}
}
