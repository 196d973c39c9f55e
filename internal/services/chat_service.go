package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"void-backend/internal/auth"
	"void-backend/internal/completion"
	"void-backend/internal/models"
	"void-backend/internal/store"
)

// Completer produces the next assistant turn for a transcript.
type Completer interface {
	Complete(ctx context.Context, history []models.Turn, personality completion.Personality) (string, error)
}

// ChatService records a user turn, asks the completer for a reply and
// records that reply in the caller's transcript.
type ChatService struct {
	store     store.Store
	completer Completer
	log       *slog.Logger
}

func NewChatService(s store.Store, completer Completer) *ChatService {
	return &ChatService{
		store:     s,
		completer: completer,
		log:       slog.Default().With("component", "ChatService"),
	}
}

// Reply appends content as a user turn and returns the appended assistant
// turn. If the completer fails the user turn stays in the transcript.
func (s *ChatService) Reply(ctx context.Context, caller auth.Identity, content, personality string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", ErrValidation)
	}
	p, err := completion.ParsePersonality(personality)
	if err != nil {
		if errors.Is(err, completion.ErrUnknownPersonality) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPersonality, personality)
		}
		return nil, err
	}

	if _, err := s.store.AppendMessage(ctx, caller.AccountID, models.RoleUser, content); err != nil {
		return nil, fmt.Errorf("append user turn: %w", err)
	}

	transcript, err := s.store.ListMessagesByAccount(ctx, caller.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	history := make([]models.Turn, 0, len(transcript))
	for _, m := range transcript {
		history = append(history, models.Turn{Role: m.Role, Content: m.Content})
	}

	reply, err := s.completer.Complete(ctx, history, p)
	if err != nil {
		s.log.Error("completion failed", "account_id", caller.AccountID, "personality", p, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	msg, err := s.store.AppendMessage(ctx, caller.AccountID, models.RoleAssistant, reply)
	if err != nil {
		return nil, fmt.Errorf("append assistant turn: %w", err)
	}
	return msg, nil
}
