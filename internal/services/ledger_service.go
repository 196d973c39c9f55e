package services

import (
	"context"
	"fmt"
	"log/slog"

	"void-backend/internal/auth"
	"void-backend/internal/models"
	"void-backend/internal/store"
)

// LedgerService reads and appends the caller's own transcript. The account is
// always taken from the verified session identity.
type LedgerService struct {
	store store.Store
	log   *slog.Logger
}

func NewLedgerService(s store.Store) *LedgerService {
	return &LedgerService{
		store: s,
		log:   slog.Default().With("component", "LedgerService"),
	}
}

// Append adds one message to the caller's transcript.
func (s *LedgerService) Append(ctx context.Context, caller auth.Identity, role, content string) (*models.Message, error) {
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msg, err := s.store.AppendMessage(ctx, caller.AccountID, r, content)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	s.log.Debug("message appended", "account_id", caller.AccountID, "message_id", msg.ID, "role", r)
	return msg, nil
}

// List returns the caller's transcript, oldest first.
func (s *LedgerService) List(ctx context.Context, caller auth.Identity) ([]models.Message, error) {
	msgs, err := s.store.ListMessagesByAccount(ctx, caller.AccountID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
