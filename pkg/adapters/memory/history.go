package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/setter/pkg/domain"
)

type historyEntry struct {
	msgs      []domain.Message
	expiresAt time.Time
}

// History implements ports.HistoryStore in memory. Appending refreshes the
// log's expiry, like EXPIRE after RPUSH in the Redis adapter.
type History struct {
	data map[string]historyEntry
	mu   sync.RWMutex
	opts options
}

// NewHistory creates an empty in-memory history store.
func NewHistory(opts ...Option) *History {
	return &History{
		data: make(map[string]historyEntry),
		opts: newOptions(opts),
	}
}

// Append adds messages to the end of the session log.
func (h *History) Append(ctx context.Context, sessionID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := h.data[sessionID]
	if h.opts.expired(entry.expiresAt) {
		entry.msgs = nil
	}
	entry.msgs = append(entry.msgs, msgs...)
	entry.expiresAt = h.opts.expiry()
	h.data[sessionID] = entry
	return nil
}

// History returns a copy of the last limit messages.
func (h *History) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.data[sessionID]
	if !ok || h.opts.expired(entry.expiresAt) {
		return []domain.Message{}, nil
	}

	msgs := entry.msgs
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Clear drops the session log.
func (h *History) Clear(ctx context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.data, sessionID)
	return nil
}
