package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/setter/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// History implements ports.HistoryStore as one Redis list per session.
// Every append refreshes the list's TTL.
type History struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// HistoryOption configures History.
type HistoryOption func(*History)

// WithHistoryTTL sets how long an idle conversation log is kept.
func WithHistoryTTL(ttl time.Duration) HistoryOption {
	return func(h *History) {
		h.ttl = ttl
	}
}

// WithHistoryPrefix sets the key prefix for conversation logs.
func WithHistoryPrefix(prefix string) HistoryOption {
	return func(h *History) {
		h.prefix = prefix
	}
}

// NewHistory creates a history store over an existing client.
func NewHistory(client *backend.Client, opts ...HistoryOption) *History {
	h := &History{
		client: client,
		prefix: DefaultHistoryPrefix,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *History) key(sessionID string) string {
	return h.prefix + sessionID
}

// Append pushes messages and refreshes the expiry in one round trip.
func (h *History) Append(ctx context.Context, sessionID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		values = append(values, data)
	}

	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, h.key(sessionID), values...)
	if h.ttl > 0 {
		pipe.Expire(ctx, h.key(sessionID), h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// History returns the last limit messages. Entries that fail to decode are skipped.
func (h *History) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raw, err := h.client.LRange(ctx, h.key(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	msgs := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Clear deletes the log.
func (h *History) Clear(ctx context.Context, sessionID string) error {
	return h.client.Del(ctx, h.key(sessionID)).Err()
}
