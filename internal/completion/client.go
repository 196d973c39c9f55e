// Package completion sends a transcript to an OpenAI-compatible chat
// completion endpoint and returns the next assistant turn.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"void-backend/internal/models"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-3.1-pro-preview"

	temperature = 0.7
	topP        = 0.9
)

var (
	ErrMissingAPIKey = errors.New("completion api key is not configured")
	ErrEmptyReply    = errors.New("completion returned no content")
)

// Config holds the endpoint settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	MaxRetries int
}

// Client is a thin wrapper over the openai-go chat completions API.
type Client struct {
	api   openai.Client
	model string
	log   *slog.Logger
}

func NewClient(c Config) (*Client, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithBaseURL(c.BaseURL),
		option.WithMaxRetries(c.MaxRetries),
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: c.Model,
		log:   slog.Default().With("component", "CompletionClient"),
	}, nil
}

// Complete sends the system instruction for personality followed by history
// and returns the assistant's reply. Any role other than user is sent as the
// assistant's.
func (c *Client) Complete(ctx context.Context, history []models.Turn, personality Personality) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(personality.SystemInstruction()))
	for _, turn := range history {
		if turn.Role == models.RoleUser {
			messages = append(messages, openai.UserMessage(turn.Content))
		} else {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
		TopP:        openai.Float(topP),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.Warn("completion rejected", "status", apiErr.StatusCode, "model", c.model)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
