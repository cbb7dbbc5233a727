// Package cli wires configuration into a running setter: storage, models,
// engine, metrics and the dialogue service.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/setter/internal/config"
	httpAdapter "github.com/aretw0/setter/pkg/adapters/http"
	"github.com/aretw0/setter/pkg/adapters/memory"
	"github.com/aretw0/setter/pkg/adapters/openai"
	"github.com/aretw0/setter/pkg/adapters/redis"
	"github.com/aretw0/setter/pkg/adapters/rules"
	"github.com/aretw0/setter/pkg/dialogue"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/aretw0/setter/pkg/observability"
	"github.com/aretw0/setter/pkg/persistence/middleware"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/aretw0/setter/pkg/prompts"
	"github.com/aretw0/setter/pkg/session"
	"github.com/aretw0/setter/pkg/signals"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is a fully wired setter.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Engine    *funnel.Engine
	Service   *dialogue.Service
	Extractor ports.Extractor
	Registry  *prometheus.Registry
	Streams   *httpAdapter.StreamManager

	closers []func() error
}

// NewApp builds every component from cfg. Call Close when done.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Streams:  httpAdapter.NewStreamManager(logger),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := observability.NewMetrics(app.Registry)
	if err != nil {
		return nil, err
	}

	detector, err := newDetector(cfg.PhrasebookPath)
	if err != nil {
		return nil, err
	}
	catalog := prompts.Default()
	if cfg.PromptsPath != "" {
		if catalog, err = prompts.Load(cfg.PromptsPath); err != nil {
			return nil, err
		}
	}

	app.Engine = funnel.New(
		funnel.WithDetector(detector),
		funnel.WithLogger(logger),
		funnel.WithHooks(observability.Aggregate(
			observability.AuditHooks(logger),
			metrics.Hooks(),
			app.Streams.Hooks(),
		)),
	)

	store, history, locker, err := app.storage(ctx)
	if err != nil {
		return nil, err
	}
	store, history, err = app.protect(store, history)
	if err != nil {
		app.Close()
		return nil, err
	}
	manager := session.NewManager(store,
		session.WithLocker(locker),
		session.WithLockTTL(cfg.LockTTL),
		session.WithLogger(logger),
	)

	extractor, generator, err := app.models(detector)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Extractor = extractor

	app.Service = dialogue.New(manager, app.Engine,
		dialogue.WithHistory(history),
		dialogue.WithExtractor(extractor),
		dialogue.WithGenerator(generator),
		dialogue.WithCatalog(catalog),
		dialogue.WithObserver(metrics),
		dialogue.WithLogger(logger),
		dialogue.WithHistoryWindow(cfg.HistoryWindow),
		dialogue.WithMaxInputSize(cfg.MaxInputSize),
	)
	return app, nil
}

func newDetector(path string) (*signals.Detector, error) {
	if path == "" {
		return signals.Default(), nil
	}
	book, err := signals.LoadPhrasebook(path)
	if err != nil {
		return nil, err
	}
	return signals.NewDetector(book), nil
}

func (a *App) storage(ctx context.Context) (ports.SessionStore, ports.HistoryStore, ports.DistributedLocker, error) {
	cfg := a.Config
	switch cfg.Store {
	case config.StoreRedis:
		client := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		store := redis.NewFromClient(client, redis.WithTTL(cfg.SessionTTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, store.Close)
		a.Logger.Info("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store,
			redis.NewHistory(client, redis.WithHistoryTTL(cfg.SessionTTL)),
			redis.NewLocker(client, redis.DefaultLockPrefix),
			nil
	default:
		a.Logger.Debug("using in-memory store")
		return memory.NewStore(memory.WithTTL(cfg.SessionTTL)),
			memory.NewHistory(memory.WithTTL(cfg.SessionTTL)),
			memory.NewLocker(),
			nil
	}
}

// protect wraps the stores with encryption and redaction when configured.
func (a *App) protect(store ports.SessionStore, history ports.HistoryStore) (ports.SessionStore, ports.HistoryStore, error) {
	cfg := a.Config
	if cfg.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(cfg.EncryptionKey, cfg.EncryptionFallbackKeys...)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid SETTER_ENCRYPTION_KEY: %w", err)
		}
		store = middleware.ChainSessions(store, middleware.NewEncryptionMiddleware(keys))
		a.Logger.Info("session attributes encrypted at rest", "fallback_keys", len(keys.FallbackKeys))
	}
	if cfg.RedactHistory {
		history = middleware.ChainHistory(history, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	return store, history, nil
}

func (a *App) models(detector *signals.Detector) (ports.Extractor, ports.Generator, error) {
	cfg := a.Config
	if !cfg.UseLLM() {
		a.Logger.Info("no OPENAI_API_KEY, using phrasebook extraction and canned replies")
		return rules.NewExtractor(detector), rules.NewGenerator(), nil
	}

	client, err := openai.NewClient(cfg.OpenAIAPIKey,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithLogger(a.Logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return openai.NewExtractor(client, cfg.ExtractModel),
		openai.NewGenerator(client,
			openai.WithBrainModel(cfg.BrainModel),
			openai.WithVoiceModel(cfg.VoiceModelName()),
		),
		nil
}

// Close releases storage connections.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.Logger.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}
