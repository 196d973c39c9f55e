package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	api_models "void-backend/internal/models"
	"void-backend/pkg/httputil"
)

// OAuthService defines the federated login operations the handler needs.
type OAuthService interface {
	BeginLogin() (string, error)
	CompleteLogin(ctx context.Context, code string) (string, *api_models.Account, error)
}

// callbackMessage is posted to the window that opened the consent popup.
type callbackMessage struct {
	Type  string                     `json:"type"`
	Token string                     `json:"token"`
	User  api_models.AccountResponse `json:"user"`
}

var callbackSuccessTmpl = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
  <body>
    <script>
      var target = {{.TargetOrigin}} || window.location.origin;
      if (window.opener) {
        window.opener.postMessage({{.Message}}, target);
        window.close();
      } else {
        window.location.href = '/';
      }
    </script>
    <p>Authentication successful. This window should close automatically.</p>
  </body>
</html>
`))

var callbackErrorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
  <body>
    <p>{{.}}</p>
  </body>
</html>
`))

type OAuthHandler struct {
	oauthService OAuthService
	targetOrigin string
	log          *slog.Logger
}

// NewOAuthHandler creates the handler. targetOrigin restricts which opener
// receives the session; when empty the callback's own origin is used.
func NewOAuthHandler(oauthSvc OAuthService, targetOrigin string) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthSvc,
		targetOrigin: targetOrigin,
		log:          slog.Default().With("component", "OAuthHandler"),
	}
}

// HandleAuthURL handles GET /api/auth/google/url.
func (h *OAuthHandler) HandleAuthURL(w http.ResponseWriter, r *http.Request) {
	u, err := h.oauthService.BeginLogin()
	if err != nil {
		respondServiceError(w, h.log, err, "Failed to build authorization URL")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api_models.AuthURLResponse{URL: u})
}

// HandleCallback handles GET /auth/callback, the provider's redirect target.
// The session is delivered to the opener window rather than in the body.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		h.log.Warn("provider returned an error", "error", providerErr)
		h.renderError(w, http.StatusBadRequest, "Authentication was cancelled or denied")
		return
	}
	code := q.Get("code")
	if code == "" {
		h.renderError(w, http.StatusBadRequest, "No code provided")
		return
	}

	token, account, err := h.oauthService.CompleteLogin(r.Context(), code)
	if err != nil {
		status, msg := statusForError(err, "Authentication failed")
		h.log.Error("federated login failed", "status", status, "error", err)
		h.renderError(w, status, msg)
		return
	}

	data := struct {
		Message      callbackMessage
		TargetOrigin string
	}{
		Message: callbackMessage{
			Type:  "OAUTH_AUTH_SUCCESS",
			Token: token,
			User:  api_models.ToAccountResponse(account),
		},
		TargetOrigin: h.targetOrigin,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := callbackSuccessTmpl.Execute(w, data); err != nil {
		h.log.Error("render callback page", "error", err)
	}
}

func (h *OAuthHandler) renderError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := callbackErrorTmpl.Execute(w, msg); err != nil {
		h.log.Error("render callback error page", "error", err)
	}
}
