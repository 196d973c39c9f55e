package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"void-backend/internal/auth"
	api_models "void-backend/internal/models"
	"void-backend/pkg/httputil"
)

// LedgerService defines the transcript operations the handler needs.
type LedgerService interface {
	Append(ctx context.Context, caller auth.Identity, role, content string) (*api_models.Message, error)
	List(ctx context.Context, caller auth.Identity) ([]api_models.Message, error)
}

// MessageHandlers serves the caller's own transcript.
type MessageHandlers struct {
	ledger LedgerService
	log    *slog.Logger
}

func NewMessageHandlers(ledger LedgerService) *MessageHandlers {
	return &MessageHandlers{
		ledger: ledger,
		log:    slog.Default().With("component", "MessageHandlers"),
	}
}

// HandleListMessages handles GET /api/messages.
func (h *MessageHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	msgs, err := h.ledger.List(r.Context(), caller)
	if err != nil {
		respondServiceError(w, h.log, err, "Failed to load messages")
		return
	}

	resp := make([]api_models.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, api_models.ToMessageResponse(m))
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleAppendMessage handles POST /api/messages.
func (h *MessageHandlers) HandleAppendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req api_models.AppendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Content is required")
		return
	}

	if _, err := h.ledger.Append(r.Context(), caller, req.Role, req.Content); err != nil {
		respondServiceError(w, h.log, err, "Failed to save message")
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, api_models.SuccessResponse{Success: true})
}
