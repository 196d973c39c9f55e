package models

import (
	"time"
)

// --- Request Structs ---
// Field names follow the browser client's camelCase contract.

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	SecurityQuestion string `json:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ForgotPasswordRequest asks for the recovery prompt of a username.
type ForgotPasswordRequest struct {
	Username string `json:"username"`
}

// VerifyAnswerRequest checks a recovery answer without changing anything.
type VerifyAnswerRequest struct {
	Username       string `json:"username"`
	SecurityAnswer string `json:"securityAnswer"`
}

// ResetPasswordRequest completes the recovery flow.
type ResetPasswordRequest struct {
	Username       string `json:"username"`
	SecurityAnswer string `json:"securityAnswer"`
	NewPassword    string `json:"newPassword"`
}

// AppendMessageRequest is the body of POST /api/messages.
type AppendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Content     string `json:"content"`
	Personality string `json:"personality,omitempty"`
}

// --- Response Structs ---

// AccountResponse is the account summary returned to clients.
// Never carries hashes or recovery data.
type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	Token string          `json:"token"`
	User  AccountResponse `json:"user"`
}

// AuthURLResponse carries the provider authorization URL.
type AuthURLResponse struct {
	URL string `json:"url"`
}

// RecoveryPromptResponse exposes only the security question.
type RecoveryPromptResponse struct {
	SecurityQuestion string `json:"securityQuestion"`
}

// SuccessResponse is the generic success marker.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is one transcript entry as seen by the owner.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToAccountResponse maps a stored account to its public summary.
func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{ID: a.ID, Username: a.Username}
}

// ToMessageResponse maps a stored message to its API representation.
func ToMessageResponse(m Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
