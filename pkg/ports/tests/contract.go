package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.DistributedLocker.
func LockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()

	t.Run("Lock_Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-lock-a", time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}

		// Reacquire after release.
		unlock, err = locker.Lock(ctx, "contract-lock-a", time.Second)
		if err != nil {
			t.Fatalf("lock not reacquirable after release: %v", err)
		}
		_ = unlock(ctx)
	})

	t.Run("Blocks_Until_Context_Done", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-lock-b", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		defer func() { _ = unlock(ctx) }()

		short, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(short, "contract-lock-b", time.Second); err == nil {
			t.Error("expected error acquiring a held lock, got nil")
		}
	})

	t.Run("Mutual_Exclusion", func(t *testing.T) {
		var inside, overlap int32
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "contract-lock-c", 5*time.Second)
				if err != nil {
					t.Errorf("lock failed: %v", err)
					return
				}
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				_ = unlock(ctx)
			}()
		}
		wg.Wait()
		if overlap != 0 {
			t.Error("two holders were inside the critical section at once")
		}
	})
}

// ExtractorContractTest checks that an extractor only ever returns labels of
// the requested category and that resolved labels parse.
func ExtractorContractTest(t *testing.T, extractor ports.Extractor, samples map[domain.Category][]string) {
	t.Helper()
	ctx := context.Background()

	for category, texts := range samples {
		for _, text := range texts {
			label, err := extractor.Extract(ctx, text, category)
			if err != nil {
				continue
			}
			if label.Category != category {
				t.Errorf("%q: category %s, want %s", text, label.Category, category)
			}
			if label.Resolved {
				if !domain.ParseLabel(category, label.Value).Resolved {
					t.Errorf("%q: resolved label %q does not parse for %s", text, label.Value, category)
				}
			}
		}
	}
}
