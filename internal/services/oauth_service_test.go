package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"void-backend/internal/models"
	"void-backend/internal/oauth"
)

type fakeProvider struct {
	authURL    string
	authErr    error
	email      string
	exchangeFn func(ctx context.Context, code string) (*oauth2.Token, error)
	profileErr error
}

func (f *fakeProvider) Name() string { return "google" }

func (f *fakeProvider) AuthCodeURL() (string, error) {
	return f.authURL, f.authErr
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeFn != nil {
		return f.exchangeFn(ctx, code)
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func (f *fakeProvider) FetchProfile(_ context.Context, _ *oauth2.Token) (*oauth.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &oauth.Profile{Subject: "1", Email: f.email}, nil
}

func newOAuthService(env *testEnv, p IdentityProvider) *OAuthService {
	return NewOAuthService(env.store, env.sessions, p, time.Second)
}

func TestOAuthService_BeginLogin(t *testing.T) {
	env := newTestEnv(t)

	u, err := newOAuthService(env, &fakeProvider{authURL: "https://idp/auth"}).BeginLogin()
	require.NoError(t, err)
	assert.Equal(t, "https://idp/auth", u)

	_, err = newOAuthService(env, &fakeProvider{authErr: oauth.ErrNotConfigured}).BeginLogin()
	assert.ErrorIs(t, err, ErrMisconfiguredProvider)
}

func TestOAuthService_FirstLoginProvisionsFederatedAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := newOAuthService(env, &fakeProvider{email: "x@example.com"})
	ctx := context.Background()

	token, account, err := svc.CompleteLogin(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "x@example.com", account.Username)
	assert.Equal(t, models.IdentityFederated, account.Kind)
	require.NotNil(t, account.Provider)
	assert.Equal(t, "google", *account.Provider)
	assert.Nil(t, account.CredentialHash)

	id, err := env.sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, id.AccountID)
	assert.Equal(t, "x@example.com", id.Username)

	_, again, err := svc.CompleteLogin(ctx, "code-2")
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
}

func TestOAuthService_LinksExistingPasswordAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing, err := env.auth.CreateAccount(ctx, "ann@example.com", "pw1", "Q", "a")
	require.NoError(t, err)

	_, account, err := newOAuthService(env, &fakeProvider{email: "ann@example.com"}).CompleteLogin(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, account.ID)
	assert.Equal(t, models.IdentityPassword, account.Kind)

	// The password still works after a federated login.
	_, _, err = env.auth.Login(ctx, "ann@example.com", "pw1")
	assert.NoError(t, err)
}

func TestOAuthService_ConcurrentCallbacksProvisionOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := newOAuthService(env, &fakeProvider{email: "race@example.com"})
	ctx := context.Background()

	const workers = 6
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, account, err := svc.CompleteLogin(ctx, "code")
			errs[i] = err
			if account != nil {
				ids[i] = account.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestOAuthService_Failures(t *testing.T) {
	errUpstream := errors.New("upstream broke")

	tests := []struct {
		name     string
		provider *fakeProvider
		code     string
		wantErr  error
	}{
		{
			name:     "missing code",
			provider: &fakeProvider{email: "x@example.com"},
			code:     "",
			wantErr:  ErrValidation,
		},
		{
			name: "exchange rejected",
			provider: &fakeProvider{exchangeFn: func(context.Context, string) (*oauth2.Token, error) {
				return nil, &oauth2.RetrieveError{ErrorCode: "invalid_grant"}
			}},
			code:    "reused",
			wantErr: ErrExchangeFailed,
		},
		{
			name: "exchange not configured",
			provider: &fakeProvider{exchangeFn: func(context.Context, string) (*oauth2.Token, error) {
				return nil, oauth.ErrNotConfigured
			}},
			code:    "code",
			wantErr: ErrMisconfiguredProvider,
		},
		{
			name:     "profile fetch failed",
			provider: &fakeProvider{profileErr: errUpstream},
			code:     "code",
			wantErr:  ErrProfileFetchFailed,
		},
		{
			name:     "unverified email",
			provider: &fakeProvider{profileErr: oauth.ErrUnverifiedEmail},
			code:     "code",
			wantErr:  ErrProfileFetchFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, _, err := newOAuthService(env, tt.provider).CompleteLogin(context.Background(), tt.code)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOAuthService_ExchangeTimeout(t *testing.T) {
	env := newTestEnv(t)
	p := &fakeProvider{exchangeFn: func(ctx context.Context, _ string) (*oauth2.Token, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := NewOAuthService(env.store, env.sessions, p, 20*time.Millisecond)

	_, _, err := svc.CompleteLogin(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrExchangeFailed)
}
