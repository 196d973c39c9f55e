package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"void-backend/internal/auth"
)

func newIssuer(t *testing.T, secret string) *auth.SessionIssuer {
	t.Helper()
	s, err := auth.NewSessionIssuer(secret, 0)
	require.NoError(t, err)
	return s
}

func TestSessionAuthMiddleware(t *testing.T) {
	issuer := newIssuer(t, "mw-secret")
	valid, err := issuer.Issue(5, "ann")
	require.NoError(t, err)
	forged, err := newIssuer(t, "other-secret").Issue(5, "ann")
	require.NoError(t, err)

	var seen auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	})
	h := SessionAuthMiddleware(issuer)(next)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusForbidden},
		{"foreign signature", "Bearer " + forged, http.StatusForbidden},
		{"wrong scheme", "Basic " + valid, http.StatusForbidden},
		{"no scheme", valid, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, auth.Identity{AccountID: 5, Username: "ann"}, seen)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := RequestLogger(logger, "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=very-secret-code", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"path":"/auth/callback"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"bytes_written":5`)
	assert.NotContains(t, out, "very-secret-code")
	assert.NotContains(t, out, "secret-token")

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, strings.TrimSpace(buf.String()))
}
