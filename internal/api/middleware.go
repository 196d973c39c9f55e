package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"void-backend/internal/auth"
	"void-backend/pkg/httputil"
)

// TokenVerifier validates a session token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// --- Session Middleware ---

// SessionAuthMiddleware verifies the bearer token from the Authorization header.
// A missing header, a header without a "<scheme> <token>" pair or an empty
// token is 401; a token that is present but does not verify (bad signature,
// rotated secret, expired, wrong scheme) is 403.
// On success the caller identity is injected into the request context.
func SessionAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	log := slog.Default().With("component", "SessionAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found {
				// No "<scheme> <token>" pair means no token was sent.
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}
			if !strings.EqualFold(scheme, "bearer") {
				httputil.RespondError(w, http.StatusForbidden, "Malformed Authorization header (Expected: Bearer <token>)")
				return
			}
			tokenString = strings.TrimSpace(tokenString)
			if tokenString == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			id, err := verifier.Verify(tokenString)
			if err != nil {
				log.Debug("token rejected", "error", err)
				httputil.RespondError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// --- Access Log ---

// RequestLogger logs method, path, status, duration and size of every request.
// The query string and headers are never logged: the OAuth callback carries
// the authorization code in its query and API calls carry session tokens.
func RequestLogger(logger *slog.Logger, skipPaths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "HTTP request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes_written", ww.BytesWritten(),
			)
		})
	}
}
