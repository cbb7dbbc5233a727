package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/setter/pkg/domain"
)

// Option configures the in-memory stores.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL expires entries that have not been written for ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) expiry() time.Time {
	if o.ttl <= 0 {
		return time.Time{}
	}
	return o.now().Add(o.ttl)
}

func (o options) expired(at time.Time) bool {
	return !at.IsZero() && !o.now().Before(at)
}

type sessionEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]sessionEntry
	mu   sync.RWMutex
	opts options
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	return &Store{
		data: make(map[string]sessionEntry),
		opts: newOptions(opts),
	}
}

// Save persists a copy of the session.
func (s *Store) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	copied := sess.Snapshot()
	copied.ID = sessionID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = sessionEntry{session: copied, expiresAt: s.opts.expiry()}
	return nil
}

// Load returns a copy so the caller can't mutate store state by pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[sessionID]
	if !ok || s.opts.expired(entry.expiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	return entry.session.Snapshot(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns live sessions, sorted, and drops expired ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]string, 0, len(s.data))
	for id, entry := range s.data {
		if s.opts.expired(entry.expiresAt) {
			delete(s.data, id)
			continue
		}
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
