package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/setter/pkg/ports"
)

// Locker implements ports.DistributedLocker within a single process.
// It is what the session manager gets when no Redis is configured.
type Locker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// slot is one key's lock. refs counts the holder and every waiter; the slot
// is dropped from the map when it reaches zero.
type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]*slot)}
}

func (l *Locker) acquire(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Locker) drop(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(l.slots, key)
	}
}

// Lock blocks until key is free or ctx is done. A held lock frees itself after ttl.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	s := l.acquire(key)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-s.ch
			l.drop(key)
		})
	}

	var timer *time.Timer
	if ttl > 0 {
		timer = time.AfterFunc(ttl, release)
	}
	return func(context.Context) error {
		if timer != nil {
			timer.Stop()
		}
		release()
		return nil
	}, nil
}
