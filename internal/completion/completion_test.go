package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"void-backend/internal/models"
)

func TestParsePersonality(t *testing.T) {
	tests := []struct {
		in      string
		want    Personality
		wantErr bool
	}{
		{in: "", want: Helpful},
		{in: "Helpful", want: Helpful},
		{in: "Philosophical", want: Philosophical},
		{in: "Minimalist", want: Minimalist},
		{in: "minimalist", wantErr: true},
		{in: "Sarcastic", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePersonality(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPersonality)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSystemInstruction(t *testing.T) {
	for _, p := range []Personality{Helpful, Philosophical, Minimalist} {
		got := p.SystemInstruction()
		assert.True(t, strings.HasPrefix(got, "You are VOID"), p)
		assert.True(t, strings.HasSuffix(got, "You are VOID."), p)
	}
	assert.Contains(t, Minimalist.SystemInstruction(), "No fluff")
	assert.Equal(t, Helpful.SystemInstruction(), Personality("bogus").SystemInstruction())
}

type sentMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type sentRequest struct {
	Model       string        `json:"model"`
	Messages    []sentMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

func newFakeCompletionServer(t *testing.T, status int, reply string, got *sentRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") || r.Header.Get("Authorization") != "Bearer key-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "key-1", BaseURL: srv.URL + "/v1/", Model: "test-model", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func TestClient_Complete(t *testing.T) {
	var got sentRequest
	srv := newFakeCompletionServer(t, http.StatusOK, "  The void answers.  ", &got)
	c := newTestClient(t, srv)

	history := []models.Turn{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "greetings"},
		{Role: models.RoleUser, Content: "who are you?"},
	}
	reply, err := c.Complete(context.Background(), history, Philosophical)
	require.NoError(t, err)
	assert.Equal(t, "The void answers.", reply)

	assert.Equal(t, "test-model", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.InDelta(t, 0.9, got.TopP, 1e-9)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, Philosophical.SystemInstruction(), got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "who are you?", got.Messages[3].Content)
}

func TestClient_CompleteUpstreamError(t *testing.T) {
	srv := newFakeCompletionServer(t, http.StatusTooManyRequests, "", nil)
	c := newTestClient(t, srv)

	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}}, Helpful)
	assert.Error(t, err)
}

func TestClient_CompleteEmptyReply(t *testing.T) {
	srv := newFakeCompletionServer(t, http.StatusOK, "   ", nil)
	c := newTestClient(t, srv)

	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}}, Helpful)
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
