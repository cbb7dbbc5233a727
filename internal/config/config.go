// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the process configuration. Every field maps to one variable.
type Config struct {
	Addr      string `env:"SETTER_ADDR" envDefault:":8080"`
	MCPAddr   string `env:"SETTER_MCP_ADDR" envDefault:":8081"`
	LogLevel  string `env:"SETTER_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SETTER_LOG_FORMAT" envDefault:"text"`

	Store         string        `env:"SETTER_STORE" envDefault:"memory"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SETTER_SESSION_TTL" envDefault:"24h"`
	LockTTL       time.Duration `env:"SETTER_LOCK_TTL" envDefault:"30s"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	ExtractModel  string `env:"SETTER_EXTRACT_MODEL"`
	BrainModel    string `env:"SETTER_BRAIN_MODEL"`
	VoiceModel    string `env:"SETTER_VOICE_MODEL"`
	UseVoice      bool   `env:"SETTER_USE_VOICE" envDefault:"false"`

	PhrasebookPath string `env:"SETTER_PHRASEBOOK"`
	PromptsPath    string `env:"SETTER_PROMPTS"`
	HistoryWindow  int    `env:"SETTER_HISTORY_WINDOW" envDefault:"10"`
	MaxInputSize   int    `env:"SETTER_MAX_INPUT_SIZE" envDefault:"4096"`

	// EncryptionKey is a base64 AES-256 key. When set, session attributes
	// are sealed before they reach the store.
	EncryptionKey          string   `env:"SETTER_ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `env:"SETTER_ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
	RedactHistory          bool     `env:"SETTER_REDACT_HISTORY" envDefault:"false"`
}

// Load reads .env files when present (the working directory's .env by
// default) and parses the environment. Variables already set win over files.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("invalid SETTER_STORE %q: want %s or %s", c.Store, StoreMemory, StoreRedis)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SETTER_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("SETTER_LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("SETTER_HISTORY_WINDOW must be positive, got %d", c.HistoryWindow)
	}
	return nil
}

// UseLLM reports whether an OpenAI key is configured.
func (c Config) UseLLM() bool { return c.OpenAIAPIKey != "" }

// VoiceModelName returns the rewrite model when the voice pass is on.
func (c Config) VoiceModelName() string {
	if !c.UseVoice {
		return ""
	}
	return c.VoiceModel
}
