package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"void-backend/internal/auth"
	"void-backend/internal/models"
	"void-backend/internal/oauth"
	"void-backend/internal/store"
)

// DefaultProviderTimeout bounds each call to the identity provider.
const DefaultProviderTimeout = 10 * time.Second

// IdentityProvider is the external side of the authorization-code flow.
type IdentityProvider interface {
	Name() string
	AuthCodeURL() (string, error)
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, tok *oauth2.Token) (*oauth.Profile, error)
}

// OAuthService bridges a provider-verified email to a local account and a
// session token.
type OAuthService struct {
	store    store.Store
	sessions *auth.SessionIssuer
	provider IdentityProvider
	timeout  time.Duration
	log      *slog.Logger
}

func NewOAuthService(s store.Store, sessions *auth.SessionIssuer, provider IdentityProvider, timeout time.Duration) *OAuthService {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &OAuthService{
		store:    s,
		sessions: sessions,
		provider: provider,
		timeout:  timeout,
		log:      slog.Default().With("component", "OAuthService"),
	}
}

// BeginLogin returns the provider consent URL.
func (s *OAuthService) BeginLogin() (string, error) {
	u, err := s.provider.AuthCodeURL()
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			return "", ErrMisconfiguredProvider
		}
		return "", fmt.Errorf("build auth url: %w", err)
	}
	return u, nil
}

// CompleteLogin exchanges the code, reads the verified email and returns a
// session for the matching account, provisioning one on first sight.
// Codes are single-use at the provider, so a replayed code fails the exchange.
func (s *OAuthService) CompleteLogin(ctx context.Context, code string) (string, *models.Account, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil, fmt.Errorf("%w: authorization code is required", ErrValidation)
	}

	tok, err := s.exchange(ctx, code)
	if err != nil {
		return "", nil, err
	}
	profile, err := s.fetchProfile(ctx, tok)
	if err != nil {
		return "", nil, err
	}

	account, err := s.provision(ctx, profile.Email)
	if err != nil {
		return "", nil, err
	}

	token, err := s.sessions.Issue(account.ID, account.Username)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCreatingToken, err)
	}

	s.log.Info("federated login succeeded", "account_id", account.ID, "provider", s.provider.Name())
	return token, account, nil
}

func (s *OAuthService) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tok, err := s.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			return nil, ErrMisconfiguredProvider
		}
		s.log.Warn("code exchange failed", "provider", s.provider.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	return tok, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, tok *oauth2.Token) (*oauth.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.provider.FetchProfile(ctx, tok)
	if err != nil {
		s.log.Warn("profile fetch failed", "provider", s.provider.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	return profile, nil
}

// provision finds the account named by email or creates a federated one.
// Two callbacks racing for the same new email both end up with the single
// row that won the insert.
func (s *OAuthService) provision(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.store.GetAccountByUsername(ctx, email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}

	account, err = s.store.CreateAccount(ctx, models.NewFederatedAccount(email, s.provider.Name()))
	if err == nil {
		s.log.Info("federated account provisioned", "account_id", account.ID, "provider", s.provider.Name())
		return account, nil
	}
	if !errors.Is(err, store.ErrDuplicateUsername) {
		return nil, fmt.Errorf("create federated account: %w", err)
	}

	account, err = s.store.GetAccountByUsername(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return account, nil
}
