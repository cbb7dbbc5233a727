// Package openai adapts the OpenAI chat completions API to the Extractor and
// Generator ports.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/setter/internal/logging"
	backend "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	// ErrMissingAPIKey is returned by NewClient without a key.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY not set")
	// ErrNoChoicesReturned is returned when a completion has no choices.
	ErrNoChoicesReturned = errors.New("no choices returned")
)

// chatService is the slice of the SDK the adapters use.
type chatService interface {
	New(ctx context.Context, body backend.ChatCompletionNewParams, opts ...option.RequestOption) (*backend.ChatCompletion, error)
}

// Client wraps the chat completions service.
type Client struct {
	chat   chatService
	logger *slog.Logger
}

// ClientOption configures Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL string
	logger  *slog.Logger
}

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithLogger sets the logger used by the client and the adapters built on it.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := clientConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	cli := backend.NewClient(reqOpts...)
	return &Client{chat: &cli.Chat.Completions, logger: cfg.logger}, nil
}

// complete runs one completion and returns the trimmed text of the first choice.
func (c *Client) complete(ctx context.Context, params backend.ChatCompletionNewParams) (string, error) {
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
