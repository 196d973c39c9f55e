package services

import "errors"

// Custom errors returned by the services. Handlers map each one to a
// distinct HTTP status; anything else is an internal error.
var (
	ErrValidation        = errors.New("input validation failed")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrAccountNotFound   = errors.New("user not found")
	ErrWrongAnswer       = errors.New("incorrect security answer")
	ErrCreatingToken     = errors.New("failed to create session token")

	ErrMisconfiguredProvider = errors.New("identity provider is not configured")
	ErrExchangeFailed        = errors.New("failed to exchange authorization code")
	ErrProfileFetchFailed    = errors.New("failed to fetch provider profile")

	ErrUnknownPersonality = errors.New("unknown personality")
	ErrCompletionFailed   = errors.New("completion provider failed")
)
