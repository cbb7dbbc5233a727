package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/setter/pkg/adapters/redis"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/aretw0/setter/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisHistory_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunHistoryStoreContract(t, redis.NewHistory(client))
}

func TestRedisLocker_Contract(t *testing.T) {
	_, client := setup(t)
	tests.LockerContractTest(t, redis.NewLocker(client, ""))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)
	clk := &clock{now: time.Now()}

	store := redis.NewFromClient(client, redis.WithTTL(time.Second), redis.WithClock(clk.Now))
	ctx := context.Background()
	sessionID := "session-ttl"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewSession(sessionID)))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Key expiration happens on the server clock, index pruning on ours.
	mr.FastForward(2 * time.Second)
	clk.Advance(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewSession(sessionID)))

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, sessionID)
}

func TestRedisStore_LegacyAndCorruptRecords(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	t.Run("Legacy state name and loose bag", func(t *testing.T) {
		require.NoError(t, mr.Set(redis.DefaultSessionPrefix+"old",
			`{"state":"STAGE_10_QUAL_FITNESS","attributes":{"abuse_count":"1","location_region":"us","fitness_level":"ripped","age":"x"}}`))

		sess, err := store.Load(ctx, "old")
		require.NoError(t, err)
		assert.Equal(t, domain.StateQualFitness, sess.State)
		assert.Equal(t, 1, sess.Attributes.AbuseCount)
		assert.Equal(t, domain.RegionUS, sess.Attributes.LocationRegion)
		assert.Equal(t, domain.FitnessUnresolved, sess.Attributes.FitnessLevel)
		assert.Equal(t, 0, sess.Attributes.Age)
	})

	t.Run("Unknown state fails fast", func(t *testing.T) {
		require.NoError(t, mr.Set(redis.DefaultSessionPrefix+"bad", `{"state":"LIMBO","attributes":{}}`))
		_, err := store.Load(ctx, "bad")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Not JSON", func(t *testing.T) {
		require.NoError(t, mr.Set(redis.DefaultSessionPrefix+"junk", `nope`))
		_, err := store.Load(ctx, "junk")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestRedisHistory_ExpiryOnTouch(t *testing.T) {
	mr, client := setup(t)
	h := redis.NewHistory(client, redis.WithHistoryTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, "lead", domain.Message{Role: domain.RoleUser, Content: "one"}))
	key := redis.DefaultHistoryPrefix + "lead"
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(50 * time.Minute)
	require.NoError(t, h.Append(ctx, "lead", domain.Message{Role: domain.RoleAssistant, Content: "two"}))
	assert.Equal(t, time.Hour, mr.TTL(key), "append refreshes the TTL")

	mr.FastForward(61 * time.Minute)
	msgs, err := h.History(ctx, "lead", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRedisHistory_SkipsCorruptEntries(t *testing.T) {
	mr, client := setup(t)
	h := redis.NewHistory(client)
	ctx := context.Background()

	_, err := mr.Push(redis.DefaultHistoryPrefix+"lead", `{"role":"user","content":"ok"}`, `garbage`)
	require.NoError(t, err)

	msgs, err := h.History(ctx, "lead", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ok", msgs[0].Content)
}

func TestRedisLocker_ForeignTokenNotReleased(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "lead", time.Second)
	require.NoError(t, err)

	// Lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	other, err := locker.Lock(ctx, "lead", time.Minute)
	require.NoError(t, err)

	// The stale holder's unlock must not free the new holder's lock.
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists(redis.DefaultLockPrefix+"lock:lead"))

	require.NoError(t, other(ctx))
	assert.False(t, mr.Exists(redis.DefaultLockPrefix+"lock:lead"))
}
