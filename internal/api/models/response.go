package models

import "github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"

// BaseResponse represents the base API response structure
type BaseResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp" example:"1640995200"`
	RequestID string      `json:"request_id,omitempty" example:"3f1b6c9e-..."`
}

// ErrorInfo represents error information
type ErrorInfo struct {
	Code    string            `json:"code" example:"INVALID_REQUEST"`
	Message string            `json:"message" example:"Invalid request parameters"`
	Details string            `json:"details,omitempty" example:"Field 'email' is required"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SessionResponse is the portal's view of the session
type SessionResponse struct {
	Session   session.Session `json:"session"`
	Home      string          `json:"home,omitempty" example:"/member/dashboard"`
	ExpiresIn int64           `json:"expires_in,omitempty" example:"3600"`
}

// DashboardResponse is returned by the role dashboards
type DashboardResponse struct {
	Role string        `json:"role" example:"trainer"`
	User *session.User `json:"user"`
}

// AccountResponse describes the signed-in account
type AccountResponse struct {
	User       *session.User `json:"user"`
	RememberMe bool          `json:"remember_me"`
	ExpiresIn  int64         `json:"expires_in" example:"3600"`
}

// GeneratedPasswordResponse carries a backend-generated password
type GeneratedPasswordResponse struct {
	UserID   string `json:"user_id" example:"42"`
	Password string `json:"password" example:"Xy7-..."`
}

// PaginationInfo represents offset pagination information
type PaginationInfo struct {
	Limit  int  `json:"limit" example:"50"`
	Offset int  `json:"offset" example:"0"`
	Count  int  `json:"count" example:"12"`
	More   bool `json:"more" example:"false"`
}

// PaginatedResponse represents paginated response
type PaginatedResponse struct {
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// HealthCheckResponse represents health check response
type HealthCheckResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp int64                  `json:"timestamp" example:"1640995200"`
	Version   string                 `json:"version" example:"1.0.0"`
	Uptime    int64                  `json:"uptime" example:"86400"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents individual health check
type HealthCheck struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message,omitempty" example:"connected"`
}
