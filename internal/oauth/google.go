// Package oauth talks to an external identity provider using the standard
// authorization-code flow.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	GoogleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenURL    = "https://oauth2.googleapis.com/token"
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

var (
	ErrNotConfigured   = errors.New("oauth client credentials are not configured")
	ErrUnverifiedEmail = errors.New("provider did not return a verified email")
)

// Config describes one provider registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
}

// Profile is the subset of the provider's canonical profile this service uses.
type Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
}

// GoogleProvider implements the flow against Google (or any provider with the
// same token and userinfo shape).
type GoogleProvider struct {
	cfg         oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleProvider fills unset endpoints with Google's and requests at
// least the openid and email scopes.
func NewGoogleProvider(c Config, httpClient *http.Client) *GoogleProvider {
	if c.AuthURL == "" {
		c.AuthURL = GoogleAuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = GoogleTokenURL
	}
	if c.UserInfoURL == "" {
		c.UserInfoURL = GoogleUserInfoURL
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid", "email", "profile"}
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &GoogleProvider{
		cfg: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       c.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   c.AuthURL,
				TokenURL:  c.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: c.UserInfoURL,
		httpClient:  httpClient,
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

// AuthCodeURL builds the consent URL. It forces the consent screen and asks
// for offline access.
func (p *GoogleProvider) AuthCodeURL() (string, error) {
	if p.cfg.ClientID == "" {
		return "", ErrNotConfigured
	}
	return p.cfg.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange trades an authorization code for tokens.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	return tok, nil
}

// FetchProfile reads the userinfo endpoint with the access token.
func (p *GoogleProvider) FetchProfile(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	client := p.cfg.Client(ctx, tok)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, ErrUnverifiedEmail
	}
	if profile.EmailVerified != nil && !*profile.EmailVerified {
		return nil, ErrUnverifiedEmail
	}
	return &profile, nil
}
