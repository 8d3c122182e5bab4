// Package main is the entrypoint for the Userbase API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/userbase/userbase/internal/config"
	"github.com/userbase/userbase/internal/handler"
	"github.com/userbase/userbase/internal/metrics"
	"github.com/userbase/userbase/internal/middleware"
	"github.com/userbase/userbase/internal/ratelimit"
	"github.com/userbase/userbase/internal/repository"
	"github.com/userbase/userbase/internal/server"
	"github.com/userbase/userbase/internal/service"
)

func main() {
	ctx := context.Background()

	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := cfg.Validate(); err != nil {
		if cfg.IsProduction() {
			logger.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
		logger.Warn("configuration incomplete", "error", err)
	}

	var repo *repository.Repository
	if cfg.DatabaseURL != "" {
		repo, err = repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", "error", sanitizeError(err, cfg.DatabaseURL))
			os.Exit(1)
		}
		logger.Info("connected to database")
	} else {
		logger.Warn("no DATABASE_URL configured, user routes disabled")
	}

	metricsRecorder, promRegistry := initMetrics(cfg)

	limiter, limiterShutdown := initLimiter(ctx, cfg, logger)

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		limiter:  limiter,
		recorder: metricsRecorder,
		registry: promRegistry,
	})

	srv := server.New(r, server.Options{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first so the database closes last.
	if repo != nil {
		srv.OnShutdown("database", func(ctx context.Context) error {
			repo.Close()
			return nil
		})
	}
	if limiterShutdown != nil {
		srv.OnShutdown("rate_limiter", limiterShutdown)
	}

	logger.Info("starting server",
		"addr", cfg.Addr(),
		"env", cfg.AppEnv,
		"rate_limit_max", cfg.RateLimitMax,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initMetrics selects the metrics recorder. When enabled, counters and
// histograms register on a dedicated registry exposed at /metrics.
func initMetrics(cfg *config.Config) (metrics.Recorder, *prometheus.Registry) {
	if !cfg.MetricsEnabled {
		return metrics.NewNoop(), nil
	}
	registry := prometheus.NewRegistry()
	return metrics.NewPrometheus(registry), registry
}

// initLimiter builds the rate limiter store. REDIS_URL selects a shared
// Redis counter; otherwise an in-process memory store with a background
// sweeper is used. Returns a nil limiter when limiting is disabled.
func initLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, server.ShutdownFunc) {
	if cfg.RateLimitMax <= 0 {
		logger.Info("rate limiting disabled")
		return nil, nil
	}

	if cfg.RedisURL != "" {
		limiter, err := ratelimit.NewRedis(ctx, cfg.RedisURL, cfg.RateLimitMax, cfg.RateLimitWindow)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("rate limiter using Redis store")
		return limiter, func(ctx context.Context) error {
			return limiter.Close()
		}
	}

	limiter := ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow, cfg.RateLimitSweepInterval)
	limiter.Start()
	logger.Info("rate limiter using in-memory store")
	return limiter, limiter.Stop
}

// routerDeps carries everything setupRouter needs.
type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	repo     *repository.Repository
	limiter  ratelimit.Limiter
	recorder metrics.Recorder
	registry *prometheus.Registry
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	cfg := deps.cfg
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOriginList()
	corsCfg.AllowedMethods = cfg.CORSMethodList()
	corsCfg.AllowedHeaders = cfg.CORSHeaderList()
	corsCfg.AllowCredentials = cfg.CORSCredentials

	// Global middleware. Order matters: the client IP must be resolved
	// before rate limiting, and the request ID before logging.
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsProduction:       cfg.IsProduction(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Logger:  deps.logger,
		Limiter: deps.limiter,
		Metrics: deps.recorder,
		Max:     cfg.RateLimitMax,
	}))
	r.Use(middleware.Logger(deps.logger, deps.recorder))
	r.Use(middleware.Recoverer(deps.logger))

	h := handler.New()
	r.Get("/", h.Root)

	var dbChecker handler.HealthChecker
	if deps.repo != nil {
		dbChecker = deps.repo
	}
	healthHandler := handler.NewHealthHandler(dbChecker)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/db", healthHandler.HealthDB)

	if deps.registry != nil {
		r.Method("GET", "/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))
	}

	if deps.repo != nil {
		userService := service.NewUserService(deps.repo, deps.recorder)
		userHandler := handler.NewUserHandler(userService, deps.logger)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
			r.Patch("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})
	}

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips credentials from a connection URL before logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes known secrets from an error message.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
