// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

// Command api is the entry point for the Snipstash HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snipstash/snipstash/internal/api"
	"github.com/snipstash/snipstash/internal/platform/config"
	"github.com/snipstash/snipstash/internal/platform/constants"
	"github.com/snipstash/snipstash/internal/platform/migration"
	pgstore "github.com/snipstash/snipstash/internal/platform/postgres"
	"github.com/snipstash/snipstash/internal/platform/ratelimit"
	redisstore "github.com/snipstash/snipstash/internal/platform/redis"
	"github.com/snipstash/snipstash/internal/platform/sec"
	"github.com/snipstash/snipstash/internal/snippets"
	"github.com/snipstash/snipstash/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Snipstash] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_store", cfg.SessionStoreBackend),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security Primitives ────────────────────────────────────────────
	codec := auth.NewCodec(cfg.SessionSecret, constants.AuthIssuer)
	sealer, err := sec.NewSealer(cfg.SessionSecret)
	must(log, err, "initialize credential sealer")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	principalStore := auth.NewPostgresPrincipalStore(pool)

	var sessionStore auth.SessionStore
	switch cfg.SessionStoreBackend {
	case "redis":
		sessionStore = auth.NewRedisSessionStore(rdb)
	default:
		sessionStore = auth.NewPostgresSessionStore(pool)
	}

	sessionManager := auth.NewManager(sessionStore, principalStore, codec, log)
	resolver := auth.NewResolver(principalStore)
	exchanger := auth.NewGithubExchanger(cfg.GithubClientID, cfg.GithubClientSecret, cfg.GithubRedirectURL)
	authMiddleware := auth.NewMiddleware(codec, sessionManager)
	authHandler := auth.NewHandler(
		exchanger, resolver, sessionManager, sealer, authMiddleware,
		cfg.FrontendURL, cfg.IsProduction(),
	)

	shareLimiter := ratelimit.NewPerKey(appCtx,
		ratelimit.Every(time.Hour, constants.ShareLinkRatePerHour),
		constants.ShareLinkRatePerHour,
		2*time.Hour, constants.RateLimitCleanupInterval,
	)
	snippetStore := snippets.NewPostgresStore(pool)
	snippetService := snippets.NewService(snippetStore, shareLimiter, log)
	snippetHandler := snippets.NewHandler(snippetService, authMiddleware, cfg.FrontendURL)

	// Hygiene sweep for the durable session store. Redis TTLs make this a
	// no-op on the redis backend.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-appCtx.Done():
				return
			case <-ticker.C:
				if err := sessionManager.SweepExpired(context.Background()); err != nil {
					log.Warn("session_sweep_failed", slog.Any("error", err))
				}
			}
		}
	}()

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	ipLimiter := ratelimit.NewPerKey(appCtx,
		ratelimit.Every(time.Second, int(constants.DefaultRateLimitRPS)),
		constants.DefaultRateLimitBurst,
		constants.RateLimitClientTTL, constants.RateLimitCleanupInterval,
	)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Snippets:  snippetHandler,
	}

	server := api.NewServer(cfg, log, ipLimiter, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
