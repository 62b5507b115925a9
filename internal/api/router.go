package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/api/handlers"
	mw "github.com/Harshitk-cp/recipebot/internal/api/middleware"
	"github.com/Harshitk-cp/recipebot/internal/buildconfig"
	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/nlg"
	"github.com/Harshitk-cp/recipebot/internal/service"
	"github.com/Harshitk-cp/recipebot/internal/statemachine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthCheck reports whether one backend is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the backends and tuning the application is assembled from.
type Deps struct {
	Tenants  domain.TenantStore
	Catalog  domain.RecipeCatalog
	Sessions domain.SessionStore

	// Understander enables text turns. Nil restricts turns to intents.
	Understander domain.Understander
	// Generator defaults to a renderer with randomized phrasing.
	Generator domain.Generator

	Checks map[string]HealthCheck

	StrictInvariants bool
	RateLimitRPS     float64
	RateLimitBurst   int
	IdleTimeout      time.Duration
	ExpirerInterval  time.Duration
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router  *chi.Mux
	Dialog  *service.DialogService
	Expirer *service.ExpirerService

	limiter      *mw.RateLimiter
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewApp(deps Deps, logger *zap.Logger) (*App, error) {
	machine, err := statemachine.New()
	if err != nil {
		return nil, fmt.Errorf("build dialog machine: %w", err)
	}
	if deps.RateLimitRPS <= 0 {
		deps.RateLimitRPS = 100
	}
	if deps.RateLimitBurst <= 0 {
		deps.RateLimitBurst = 20
	}
	generator := deps.Generator
	if generator == nil {
		generator = nlg.NewRenderer(nlg.NewTimeSeededPicker())
	}

	// Services
	resolver := service.NewResolver(deps.Catalog, logger)
	accumulator := service.NewAccumulator(resolver, logger)
	policy := service.NewPolicy(resolver, machine, logger, deps.StrictInvariants)
	dialog := service.NewDialogService(deps.Sessions, accumulator, policy, generator, deps.Understander, logger)
	expirer := service.NewExpirerService(deps.Sessions, logger)
	if deps.IdleTimeout > 0 {
		expirer.SetIdleTimeout(deps.IdleTimeout)
	}
	if deps.ExpirerInterval > 0 {
		expirer.SetInterval(deps.ExpirerInterval)
	}

	// Handlers
	tenantHandler := handlers.NewTenantHandler(deps.Tenants, logger)
	sessionHandler := handlers.NewSessionHandler(dialog, logger)
	recipeHandler := handlers.NewRecipeHandler(resolver, logger)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		Dialog:    dialog,
		Expirer:   expirer,
		limiter:   mw.NewRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst),
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(app.limiter))

	r.Get("/health", healthHandler(deps.Checks))
	r.Get("/version", versionHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/debug/stats", app.statsHandler())

	// Tenant creation (no auth, bootstrap endpoint)
	r.Post("/v1/tenants", tenantHandler.Create)

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(deps.Tenants))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/turns", sessionHandler.Turn)
			})
		})

		r.Get("/recipes/search", recipeHandler.Search)
		r.Get("/favorites", recipeHandler.Favorites)
	})

	return app, nil
}

// Start launches the session expirer and the rate limiter janitor.
func (app *App) Start() {
	app.Expirer.Start()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.limiter.Cleanup(10 * time.Minute)
			case <-app.stopCh:
				return
			}
		}
	}()
}

func (app *App) Stop() {
	app.stopOnce.Do(func() { close(app.stopCh) })
	app.wg.Wait()
	app.Expirer.Stop()
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		failed := make(map[string]string)
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "error", "errors": failed})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildconfig.VersionInfo())
}

func (app *App) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		writeJSON(w, http.StatusOK, map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		})
	}
}
