package models

// LoginRequest represents the portal login form
type LoginRequest struct {
	Email      string `json:"email" form:"email" binding:"required,email" example:"member@example.com"`
	Password   string `json:"password" form:"password" binding:"required" example:"password123"`
	RememberMe bool   `json:"remember_me" form:"remember_me" example:"true"`
}

// PasswordChangeRequest represents a change of the signed-in user's password
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// PasswordResetRequest represents an admin setting a user's password
type PasswordResetRequest struct {
	Password string `json:"password" binding:"required,min=8" example:"securepass123"`
}

// HistoryFilterRequest filters the local session event log
type HistoryFilterRequest struct {
	Event  string `form:"event" binding:"omitempty,oneof=login login_failed logout expired rehydrated rehydrate_discarded revoked"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}
