package services

import (
	"context"
	"errors"
	"fmt"

	"void-backend/internal/auth"
	"void-backend/internal/models"
	"void-backend/internal/store"
)

// The recovery flow is stateless: no ticket is issued between the prompt and
// the reset, so CompleteRecovery re-verifies the answer the client kept.

// GetRecoveryPrompt returns only the security question for username.
func (s *AuthService) GetRecoveryPrompt(ctx context.Context, username string) (string, error) {
	account, err := s.lookupForRecovery(ctx, username)
	if err != nil {
		return "", err
	}
	if account.SecurityQuestion == nil {
		return "", ErrAccountNotFound
	}
	return *account.SecurityQuestion, nil
}

// VerifyRecoveryAnswer compares the normalized answer with the stored hash.
// Federated accounts have no answer and always fail with ErrWrongAnswer.
func (s *AuthService) VerifyRecoveryAnswer(ctx context.Context, username, answer string) (*models.Account, error) {
	account, err := s.lookupForRecovery(ctx, username)
	if err != nil {
		return nil, err
	}

	normalized := auth.NormalizeAnswer(answer)
	if account.AnswerHash == nil {
		s.hasher.CheckDecoy(normalized)
		return nil, ErrWrongAnswer
	}
	if !s.hasher.Check(normalized, *account.AnswerHash) {
		s.log.Info("recovery answer rejected", "account_id", account.ID)
		return nil, ErrWrongAnswer
	}
	return account, nil
}

// CompleteRecovery verifies the answer and then resets the credential.
func (s *AuthService) CompleteRecovery(ctx context.Context, username, answer, newSecret string) error {
	if newSecret == "" {
		return fmt.Errorf("%w: new password cannot be empty", ErrValidation)
	}
	if err := validateSecret(newSecret); err != nil {
		return err
	}

	account, err := s.VerifyRecoveryAnswer(ctx, username, answer)
	if err != nil {
		return err
	}
	return s.ResetCredential(ctx, account.ID, newSecret)
}

func (s *AuthService) lookupForRecovery(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return account, nil
}
