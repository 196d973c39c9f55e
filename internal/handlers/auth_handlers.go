package handlers

import (
	"context"
	"log/slog"
	"net/http"

	api_models "void-backend/internal/models"
	"void-backend/pkg/httputil"
)

// AuthService defines the interface expected from the auth service.
// This promotes loose coupling and testability.
type AuthService interface {
	Signup(ctx context.Context, username, secret, question, answer string) (string, *api_models.Account, error)
	Login(ctx context.Context, username, secret string) (string, *api_models.Account, error)
	GetRecoveryPrompt(ctx context.Context, username string) (string, error)
	VerifyRecoveryAnswer(ctx context.Context, username, answer string) (*api_models.Account, error)
	CompleteRecovery(ctx context.Context, username, answer, newSecret string) error
}

type AuthHandler struct {
	authService AuthService
	log         *slog.Logger
}

func NewAuthHandler(authSvc AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
		log:         slog.Default().With("component", "AuthHandler"),
	}
}

// HandleSignup handles the POST /api/auth/signup request.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req api_models.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, account, err := h.authService.Signup(r.Context(), req.Username, req.Password, req.SecurityQuestion, req.SecurityAnswer)
	if err != nil {
		respondServiceError(w, h.log, err, "Signup failed due to an internal error")
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, api_models.AuthResponse{
		Token: token,
		User:  api_models.ToAccountResponse(account),
	})
}

// HandleLogin handles the POST /api/auth/login request.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req api_models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, account, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err, "Login failed due to an internal error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.AuthResponse{
		Token: token,
		User:  api_models.ToAccountResponse(account),
	})
}

// HandleForgotPassword handles POST /api/auth/forgot-password and returns
// only the security question.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req api_models.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	question, err := h.authService.GetRecoveryPrompt(r.Context(), req.Username)
	if err != nil {
		respondServiceError(w, h.log, err, "Recovery failed due to an internal error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.RecoveryPromptResponse{SecurityQuestion: question})
}

// HandleVerifyAnswer handles POST /api/auth/verify-answer. It changes nothing.
func (h *AuthHandler) HandleVerifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req api_models.VerifyAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authService.VerifyRecoveryAnswer(r.Context(), req.Username, req.SecurityAnswer); err != nil {
		respondServiceError(w, h.log, err, "Recovery failed due to an internal error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.SuccessResponse{Success: true})
}

// HandleResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req api_models.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.CompleteRecovery(r.Context(), req.Username, req.SecurityAnswer, req.NewPassword); err != nil {
		respondServiceError(w, h.log, err, "Password reset failed due to an internal error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.SuccessResponse{
		Success: true,
		Message: "Password reset successfully",
	})
}
