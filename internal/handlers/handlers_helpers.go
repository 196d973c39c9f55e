package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"void-backend/internal/auth"
	"void-backend/internal/services"
	"void-backend/pkg/httputil"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// callerFromRequest returns the identity placed in the context by the
// session middleware.
func callerFromRequest(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return auth.Identity{}, false
	}
	return id, true
}

// statusForError maps a service error to its HTTP status and client message.
// Anything unrecognised is a 500 with fallback as the message.
func statusForError(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUnknownPersonality):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrDuplicateUsername):
		return http.StatusConflict, "Username already exists"
	case errors.Is(err, services.ErrInvalidCredential):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, services.ErrAccountNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrWrongAnswer):
		return http.StatusUnauthorized, "Incorrect security answer"
	case errors.Is(err, services.ErrMisconfiguredProvider):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, services.ErrExchangeFailed):
		return http.StatusBadGateway, "Failed to exchange code for tokens"
	case errors.Is(err, services.ErrProfileFetchFailed):
		return http.StatusBadGateway, "Failed to fetch user info from provider"
	case errors.Is(err, services.ErrCompletionFailed):
		return http.StatusBadGateway, "The void is silent. Try again."
	default:
		return http.StatusInternalServerError, fallback
	}
}

// respondServiceError writes the mapped JSON error and logs 5xx causes.
func respondServiceError(w http.ResponseWriter, log *slog.Logger, err error, fallback string) {
	status, msg := statusForError(err, fallback)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	}
	httputil.RespondError(w, status, msg)
}
