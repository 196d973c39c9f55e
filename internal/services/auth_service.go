package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"void-backend/internal/auth"
	"void-backend/internal/models"
	"void-backend/internal/store"
)

// bcrypt ignores input past 72 bytes and newer versions reject it outright.
const maxSecretBytes = 72

// AuthService owns password accounts: creation, credential verification,
// credential reset and the security-question recovery flow.
type AuthService struct {
	store    store.Store
	hasher   *auth.Hasher
	sessions *auth.SessionIssuer
	log      *slog.Logger
}

func NewAuthService(s store.Store, hasher *auth.Hasher, sessions *auth.SessionIssuer) *AuthService {
	return &AuthService{
		store:    s,
		hasher:   hasher,
		sessions: sessions,
		log:      slog.Default().With("component", "AuthService"),
	}
}

// CreateAccount hashes the secret and the normalized answer independently and
// inserts the account. Duplicate usernames are detected by the store's unique
// constraint, never by a prior lookup.
func (s *AuthService) CreateAccount(ctx context.Context, username, secret, question, answer string) (*models.Account, error) {
	if strings.TrimSpace(username) == "" || secret == "" {
		return nil, fmt.Errorf("%w: username and password cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: security question and answer are required", ErrValidation)
	}
	if err := validateSecret(secret); err != nil {
		return nil, err
	}
	normalized := auth.NormalizeAnswer(answer)
	if len(normalized) > maxSecretBytes {
		return nil, fmt.Errorf("%w: security answer must be at most %d bytes", ErrValidation, maxSecretBytes)
	}

	credentialHash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	answerHash, err := s.hasher.Hash(normalized)
	if err != nil {
		return nil, fmt.Errorf("hash security answer: %w", err)
	}

	account, err := s.store.CreateAccount(ctx, models.NewPasswordAccount(username, credentialHash, question, answerHash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account created", "account_id", account.ID)
	return account, nil
}

// VerifyCredential fails with ErrInvalidCredential both for unknown usernames
// and for wrong secrets, spending one bcrypt comparison either way.
func (s *AuthService) VerifyCredential(ctx context.Context, username, secret string) (*models.Account, error) {
	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.CheckDecoy(secret)
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}

	if account.CredentialHash == nil {
		// Federated accounts have no local secret.
		s.hasher.CheckDecoy(secret)
		return nil, ErrInvalidCredential
	}
	if !s.hasher.Check(secret, *account.CredentialHash) {
		return nil, ErrInvalidCredential
	}
	return account, nil
}

// ResetCredential overwrites the credential hash. Sessions already issued for
// the account stay valid.
func (s *AuthService) ResetCredential(ctx context.Context, accountID int64, newSecret string) error {
	if newSecret == "" {
		return fmt.Errorf("%w: new password cannot be empty", ErrValidation)
	}
	if err := validateSecret(newSecret); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newSecret)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateCredentialHash(ctx, accountID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update credential: %w", err)
	}

	s.log.Info("credential reset", "account_id", accountID)
	return nil
}

// Signup creates a password account and mints its first session token.
func (s *AuthService) Signup(ctx context.Context, username, secret, question, answer string) (string, *models.Account, error) {
	account, err := s.CreateAccount(ctx, username, secret, question, answer)
	if err != nil {
		return "", nil, err
	}
	token, err := s.issue(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Login verifies credentials and returns an access token and account info.
func (s *AuthService) Login(ctx context.Context, username, secret string) (string, *models.Account, error) {
	account, err := s.VerifyCredential(ctx, username, secret)
	if err != nil {
		return "", nil, err
	}
	token, err := s.issue(account)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("login succeeded", "account_id", account.ID)
	return token, account, nil
}

func (s *AuthService) issue(account *models.Account) (string, error) {
	token, err := s.sessions.Issue(account.ID, account.Username)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreatingToken, err)
	}
	return token, nil
}

func validateSecret(secret string) error {
	if len(secret) > maxSecretBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxSecretBytes)
	}
	return nil
}
