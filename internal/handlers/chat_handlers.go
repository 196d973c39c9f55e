package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"void-backend/internal/auth"
	"void-backend/internal/models"
	"void-backend/pkg/httputil"
)

// ChatService produces the next assistant turn for the caller.
type ChatService interface {
	Reply(ctx context.Context, caller auth.Identity, content, personality string) (*models.Message, error)
}

// ChatHandlers handles HTTP requests that go through the completion provider.
type ChatHandlers struct {
	chatService ChatService
	log         *slog.Logger
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService ChatService) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		log:         slog.Default().With("component", "ChatHandlers"),
	}
}

// HandleChat handles POST /api/chat: records the user turn and returns the
// assistant's reply, which is recorded as well.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.chatService.Reply(r.Context(), caller, req.Content, req.Personality)
	if err != nil {
		respondServiceError(w, h.log, err, "Failed to generate a reply")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ToMessageResponse(*msg))
}
