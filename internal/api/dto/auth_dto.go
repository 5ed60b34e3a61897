package dto

import "github.com/spec-kit/callbook-service/internal/domain"

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// CheckAuthResponse reports the caller's session state.
type CheckAuthResponse struct {
	IsAuthenticated bool                `json:"isAuthenticated"`
	User            *domain.Credentials `json:"user,omitempty"`
}
