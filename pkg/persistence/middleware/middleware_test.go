package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/setter/pkg/adapters/memory"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/persistence/middleware"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func qualifiedSession(id string) *domain.Session {
	sess := domain.NewSession(id)
	sess.State = domain.StateQualAge
	sess.Attributes.LocationRegion = domain.RegionUS
	sess.Attributes.LocationDetail = "Texas"
	sess.Attributes.AbuseCount = 1
	return sess
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	require.NoError(t, secure.Save(ctx, "u1", qualifiedSession("u1")))

	stored, err := underlying.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateQualAge, stored.State, "state stays readable")
	assert.Equal(t, domain.RegionUnresolved, stored.Attributes.LocationRegion)
	assert.Empty(t, stored.Attributes.LocationDetail)
	assert.NotEmpty(t, stored.Sealed)
	assert.NotContains(t, stored.Sealed, "Texas")

	loaded, err := secure.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RegionUS, loaded.Attributes.LocationRegion)
	assert.Equal(t, "Texas", loaded.Attributes.LocationDetail)
	assert.Equal(t, 1, loaded.Attributes.AbuseCount)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	storeOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, storeOld.Save(ctx, "u1", qualifiedSession("u1")))

	storeNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := storeNew.Load(ctx, "u1")
	require.NoError(t, err, "fallback key should open old data")
	assert.Equal(t, "Texas", loaded.Attributes.LocationDetail)

	loaded.Attributes.Age = 31
	require.NoError(t, storeNew.Save(ctx, "u1", loaded))

	_, err = storeOld.Load(ctx, "u1")
	assert.Error(t, err, "old key alone must not open data sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainSession(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "u1", qualifiedSession("u1")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "u1")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(generateKey(t))
	old := base64.StdEncoding.EncodeToString(generateKey(t))

	cfg, err := middleware.ParseKeys(active, old, "")
	require.NoError(t, err)
	assert.Len(t, cfg.ActiveKey, middleware.KeySize)
	assert.Len(t, cfg.FallbackKeys, 1)

	_, err = middleware.ParseKeys("not base64!")
	assert.ErrorContains(t, err, "active key")

	_, err = middleware.ParseKeys(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorContains(t, err, "want 32 bytes")

	_, err = middleware.ParseKeys(active, "??")
	assert.ErrorContains(t, err, "fallback key 0")
}

func TestPIIMiddleware_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(memory.NewHistory()))
}

func TestPIIMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewHistory()
	history := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlying)

	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: "reach me at jamie.fan@example.com or +1 (555) 123-4567"},
		{Role: domain.RoleUser, Content: "i'm 32 and live in Austin"},
	}
	require.NoError(t, history.Append(ctx, "u1", msgs...))

	assert.Contains(t, msgs[0].Content, "example.com", "caller's messages are untouched")

	stored, err := underlying.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "reach me at *** or ***", stored[0].Content)
	assert.Equal(t, "i'm 32 and live in Austin", stored[1].Content)
	assert.Equal(t, domain.RoleUser, stored[0].Role)

	require.NoError(t, history.Clear(ctx, "u1"))
	stored, err = history.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	key := generateKey(t)

	store := middleware.ChainSessions(memory.NewStore(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	require.NoError(t, store.Save(ctx, "u1", qualifiedSession("u1")))
	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RegionUS, loaded.Attributes.LocationRegion)

	history := middleware.ChainHistory(memory.NewHistory(), middleware.NewPIIMiddleware([]string{`secret`}))
	require.NoError(t, history.Append(ctx, "u1", domain.Message{Role: domain.RoleUser, Content: "my secret"}))
	got, err := history.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, "my ***", got[0].Content)
}
