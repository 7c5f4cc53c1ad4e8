package models

// Error codes
const (
	// General errors
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"

	// Session errors
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeLoginInProgress    = "LOGIN_IN_PROGRESS"
	ErrCodeAlreadySignedIn    = "ALREADY_SIGNED_IN"
	ErrCodeSessionPending     = "SESSION_PENDING"
	ErrCodeInvalidToken       = "INVALID_TOKEN"

	// Backend errors
	ErrCodeBackendError       = "BACKEND_ERROR"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// APIError represents a structured API error
type APIError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// WithField adds a field error
func (e *APIError) WithField(field, message string) *APIError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// Info converts the error into the response envelope's error block
func (e *APIError) Info() *ErrorInfo {
	return &ErrorInfo{Code: e.Code, Message: e.Message, Details: e.Details, Fields: e.Fields}
}
