package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hanseo/rosetta-api/internal/config"
	"github.com/hanseo/rosetta-api/internal/detect"
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/platform/gemini"
	"github.com/hanseo/rosetta-api/internal/platform/postgres"
	"github.com/hanseo/rosetta-api/internal/platform/redis"
	"github.com/hanseo/rosetta-api/internal/service"
	"github.com/hanseo/rosetta-api/internal/task"
	"github.com/hanseo/rosetta-api/internal/update"
)

// redisCacheAdapter bridges the redis cache to the service layer's
// cache interface.
type redisCacheAdapter struct {
	cache *redis.Cache
}

var _ service.TranslationCache = (*redisCacheAdapter)(nil)

func (a *redisCacheAdapter) Get(ctx context.Context, req domain.TranslationRequest) (task.Result, bool) {
	cached, ok := a.cache.Get(ctx, req)
	if !ok {
		return task.Result{}, false
	}
	return task.Result{DetectedLang: cached.DetectedLang, Text: cached.Text}, true
}

func (a *redisCacheAdapter) Set(ctx context.Context, req domain.TranslationRequest, result task.Result) {
	a.cache.Set(ctx, req, redis.CachedTranslation{
		DetectedLang: result.DetectedLang,
		Text:         result.Text,
	})
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cache *redis.Cache

	translationService service.TranslationService
	historyService     service.HistoryService
	updateChecker      *update.Checker
}

// newApplication wires every application dependency. It accepts core
// dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	historyStore := postgres.NewPostgresHistoryStore(db, cfg.Translation.MaxHistory, logger)

	translator, err := gemini.NewTranslator(ctx, logger.With("component", "llm_translator"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translator: %w", err)
	}
	logger.Info("LLM translator initialized", "model", cfg.LLM.ModelName)

	detector := detect.New()

	// The cache is optional; a missing Redis address disables it.
	var translationCache service.TranslationCache
	if cfg.Redis.Addr != "" {
		cache, err := redis.NewCache(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		app.cache = cache
		translationCache = &redisCacheAdapter{cache: cache}
		logger.Info("translation cache enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("translation cache disabled")
	}

	app.translationService = service.NewTranslationService(
		cfg.Translation,
		translator,
		detector,
		historyStore,
		translationCache,
		logger,
	)

	app.historyService = service.NewHistoryService(historyStore, logger)

	if cfg.Update.Repo != "" {
		app.updateChecker = update.NewChecker(cfg.Update.Repo, cfg.Update.Timeout, logger)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.translationService != nil {
		if !app.translationService.Shutdown(app.config.Server.ShutdownWait) {
			app.logger.Warn("translation engine did not drain before deadline")
		}
	}

	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing cache connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
