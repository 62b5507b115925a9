package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/api"
	"github.com/Harshitk-cp/recipebot/internal/buildconfig"
	"github.com/Harshitk-cp/recipebot/internal/config"
	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/nlu"
	"github.com/Harshitk-cp/recipebot/internal/store"
	"github.com/Harshitk-cp/recipebot/internal/store/memory"
	"github.com/Harshitk-cp/recipebot/internal/store/redis"
	"github.com/Harshitk-cp/recipebot/internal/store/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(config.LogLevel())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting recipebot",
		zap.String("version", buildconfig.Version()),
		zap.String("commit", buildconfig.Commit()))

	ctx := context.Background()

	deps, cleanup, err := buildDeps(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize backends", zap.Error(err))
	}
	defer cleanup()

	app, err := api.NewApp(deps, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	app.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	app.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// buildDeps opens the configured backends. Postgres is connected only when a
// backend needs it; tenants live in Postgres when it is available and in
// memory otherwise.
func buildDeps(ctx context.Context, logger *zap.Logger) (api.Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (api.Deps, func(), error) {
		cleanup()
		return api.Deps{}, func() {}, err
	}

	deps := api.Deps{
		Checks:           make(map[string]api.HealthCheck),
		StrictInvariants: config.StrictInvariants(),
		RateLimitRPS:     config.RateLimitRPS(),
		RateLimitBurst:   config.RateLimitBurst(),
		IdleTimeout:      config.SessionIdleTimeout(),
		ExpirerInterval:  config.ExpirerInterval(),
	}

	var pool *pgxpool.Pool
	if config.CatalogBackend() == config.BackendPostgres || config.SessionBackend() == config.BackendPostgres || config.DatabaseURL() != "" {
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			return fail(fmt.Errorf("DATABASE_URL is required for the postgres backend"))
		}
		var err error
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			return fail(fmt.Errorf("connect to database: %w", err))
		}
		closers = append(closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return fail(fmt.Errorf("ping database: %w", err))
		}
		logger.Info("connected to database")

		if err := store.Migrate(ctx, pool, config.MigrationsPath(), logger); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
		deps.Tenants = store.NewTenantStore(pool)
		deps.Checks["postgres"] = pool.Ping
	} else {
		logger.Warn("no database configured, tenants are kept in memory")
		deps.Tenants = memory.NewTenantStore()
	}

	switch backend := config.CatalogBackend(); backend {
	case config.BackendPostgres:
		deps.Catalog = store.NewRecipeStore(pool)
	case config.BackendSQLite:
		catalog, err := sqlite.NewCatalog(sqlite.DefaultConfig(), sqlite.WithPath(config.SQLitePath()))
		if err != nil {
			return fail(fmt.Errorf("open sqlite catalog: %w", err))
		}
		closers = append(closers, func() { _ = catalog.Close() })
		deps.Catalog = catalog
		deps.Checks["sqlite"] = catalog.Ping
	default:
		return fail(fmt.Errorf("unknown CATALOG_BACKEND %q", backend))
	}

	switch backend := config.SessionBackend(); backend {
	case config.BackendPostgres:
		deps.Sessions = store.NewSessionStore(pool)
	case config.BackendRedis:
		sessions, err := redis.NewSessionStore(redis.DefaultConfig(),
			redis.WithAddress(config.RedisAddr()),
			redis.WithPassword(config.RedisPassword()),
			redis.WithDB(config.RedisDB()),
			redis.WithTTL(config.SessionTTL()),
		)
		if err != nil {
			return fail(fmt.Errorf("connect to redis: %w", err))
		}
		closers = append(closers, func() { _ = sessions.Close() })
		deps.Sessions = sessions
		deps.Checks["redis"] = sessions.Ping
	case config.BackendMemory:
		deps.Sessions = memory.NewSessionStore()
	default:
		return fail(fmt.Errorf("unknown SESSION_BACKEND %q", backend))
	}

	vocab, err := deps.Catalog.Vocabulary(ctx)
	if err != nil {
		return fail(fmt.Errorf("load ingredient vocabulary: %w", err))
	}
	deps.Understander = nlu.NewRules(vocab)
	logger.Info("backends ready",
		zap.String("catalog", config.CatalogBackend()),
		zap.String("sessions", config.SessionBackend()),
		zap.Int("vocabulary", len(vocab)))

	return deps, cleanup, nil
}

var (
	_ domain.TenantStore    = (*store.TenantStore)(nil)
	_ domain.TenantStore    = (*memory.TenantStore)(nil)
	_ domain.RecipeCatalog  = (*store.RecipeStore)(nil)
	_ domain.RecipeCatalog  = (*sqlite.Catalog)(nil)
	_ domain.RecipeCatalog  = (*memory.Catalog)(nil)
	_ domain.RecipeImporter = (*store.RecipeStore)(nil)
	_ domain.RecipeImporter = (*sqlite.Catalog)(nil)
	_ domain.SessionStore   = (*store.SessionStore)(nil)
	_ domain.SessionStore   = (*redis.SessionStore)(nil)
	_ domain.SessionStore   = (*memory.SessionStore)(nil)
)
