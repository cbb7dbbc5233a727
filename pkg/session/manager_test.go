package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/aretw0/setter/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.Session
	mu   sync.Mutex
	err  error
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Session)
	}
	s.data[sessionID] = sess.Snapshot()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if sess, ok := s.data[sessionID]; ok {
		return sess.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_SerializesReadModifyWrite(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, domain.NewSession(id)))

	var wg sync.WaitGroup
	writers := 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				sess, err := manager.Store().Load(ctx, id)
				if err != nil {
					return err
				}
				sess.Attributes.AbuseCount++
				return manager.Store().Save(ctx, id, sess)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, sess.Attributes.AbuseCount, "no increment may be lost")
}

func TestManager_DifferentSessionsRunInParallel(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	holding := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = manager.WithLock(ctx, "a", func(context.Context) error {
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding

	finished := make(chan struct{})
	go func() {
		_ = manager.WithLock(ctx, "b", func(context.Context) error { return nil })
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("session b waited on session a")
	}
	close(done)
}

func TestManager_LoadOrStart(t *testing.T) {
	// Verify atomic creation
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := manager.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, sess)
		}()
	}
	wg.Wait()

	sess, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEntry, sess.State)
	assert.NotNil(t, sess.Attributes)
}

func TestManager_LoadOrNew_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	manager := session.NewManager(&SlowStore{err: boom})

	_, err := manager.LoadOrNew(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestManager_EmptyID(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	err := manager.WithLock(context.Background(), "", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, domain.ErrEmptyUserID)
}

type countingLocker struct {
	locks, unlocks atomic.Int32
	ttl            time.Duration
	fail           error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	l.locks.Add(1)
	l.ttl = ttl
	return func(context.Context) error {
		l.unlocks.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &countingLocker{}
	manager := session.NewManager(&SlowStore{},
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "x", domain.NewSession("x")))
	_, err := manager.Load(ctx, "x")
	require.NoError(t, err)

	assert.EqualValues(t, 2, locker.locks.Load())
	assert.EqualValues(t, 2, locker.unlocks.Load())
	assert.Equal(t, 5*time.Second, locker.ttl)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	locker := &countingLocker{fail: errors.New("redis down")}
	manager := session.NewManager(&SlowStore{}, session.WithLocker(locker))

	called := false
	err := manager.WithLock(context.Background(), "x", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
