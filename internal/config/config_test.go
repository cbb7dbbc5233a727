package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 10, cfg.HistoryWindow)
	assert.Equal(t, 4096, cfg.MaxInputSize)
	assert.False(t, cfg.UseLLM())
	assert.Empty(t, cfg.VoiceModelName())
}

func TestLoad_EnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"SETTER_STORE=redis\nREDIS_DB=2\nSETTER_SESSION_TTL=1h\nSETTER_VOICE_MODEL=ft:voice\n",
	), 0o600))

	// Already exported variables win over the file.
	t.Setenv("REDIS_DB", "5")
	t.Setenv("SETTER_USE_VOICE", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Cleanup(func() {
		for _, k := range []string{"SETTER_STORE", "SETTER_SESSION_TTL", "SETTER_VOICE_MODEL"} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 5, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.UseLLM())
	assert.Equal(t, "ft:voice", cfg.VoiceModelName())
}

func TestLoad_Invalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("SETTER_STORE", "postgres")
	_, err := Load(missing)
	assert.ErrorContains(t, err, "SETTER_STORE")

	t.Setenv("SETTER_STORE", "memory")
	t.Setenv("REDIS_DB", "two")
	_, err = Load(missing)
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	ok := Config{Store: StoreMemory, SessionTTL: time.Hour, LockTTL: time.Second, HistoryWindow: 1}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.HistoryWindow = 0
	assert.Error(t, bad.Validate())

	bad = ok
	bad.LockTTL = 0
	assert.Error(t, bad.Validate())
}
