package ports_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
)

// MockStore is a minimal SessionStore and HistoryStore used to check that
// the contract suites themselves hold together.
type MockStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	logs     map[string][]domain.Message
}

func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[string]*domain.Session),
		logs:     make(map[string][]domain.Message),
	}
}

func (m *MockStore) Save(_ context.Context, sessionID string, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = s.Snapshot()
	return nil
}

func (m *MockStore) Load(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Snapshot(), nil
}

func (m *MockStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockStore) Append(_ context.Context, sessionID string, msgs ...domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[sessionID] = append(m.logs[sessionID], msgs...)
	return nil
}

func (m *MockStore) History(_ context.Context, sessionID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := m.logs[sessionID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]domain.Message, len(log))
	copy(out, log)
	return out, nil
}

func (m *MockStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, sessionID)
	return nil
}

func TestMockStore_SessionContract(t *testing.T) {
	ports.RunSessionStoreContract(t, NewMockStore())
}

func TestMockStore_HistoryContract(t *testing.T) {
	ports.RunHistoryStoreContract(t, NewMockStore())
}
