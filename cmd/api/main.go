// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Novika HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Probe the schema for retirement-column coverage.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/novika/internal/api"
	"github.com/taibuivan/novika/internal/core/author"
	"github.com/taibuivan/novika/internal/core/chapter"
	"github.com/taibuivan/novika/internal/core/genre"
	"github.com/taibuivan/novika/internal/core/novel"
	"github.com/taibuivan/novika/internal/platform/config"
	"github.com/taibuivan/novika/internal/platform/constants"
	"github.com/taibuivan/novika/internal/platform/database/schema"
	"github.com/taibuivan/novika/internal/platform/drift"
	"github.com/taibuivan/novika/internal/platform/migration"
	pgstore "github.com/taibuivan/novika/internal/platform/postgres"
	redisstore "github.com/taibuivan/novika/internal/platform/redis"
	"github.com/taibuivan/novika/internal/platform/revalidate"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "novika"))
	slog.SetDefault(log)

	log.Info("[Novika] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "novika"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
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

	// ── 6. Schema Drift Probe ─────────────────────────────────────────────
	// Tables still missing the retirement column serve every row as live
	// until the lagging migration lands.
	guard, err := drift.Probe(startupCtx, pool, log,
		schema.CoreAuthor.Table,
		schema.CoreGenre.Table,
		schema.CoreNovel.Table,
		schema.CoreChapter.Table,
	)
	must(log, err, "probe schema capabilities")

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
	notifier := revalidate.NewRedisNotifier(rdb, cfg.RevalidateChannel, log)

	authorRepository := author.NewPostgresRepository(pool, guard)
	authorService := author.NewService(authorRepository, notifier, log)
	authorHandler := author.NewHandler(authorService)

	genreRepository := genre.NewPostgresRepository(pool, guard)
	genreService := genre.NewService(genreRepository, notifier, log)
	genreHandler := genre.NewHandler(genreService)

	novelRepository := novel.NewPostgresRepository(pool, guard)
	novelService := novel.NewService(novelRepository, authorRepository, notifier, log)
	novelHandler := novel.NewHandler(novelService)

	chapterRepository := chapter.NewPostgresRepository(pool, guard)
	chapterService := chapter.NewService(chapterRepository, novelRepository, notifier, log)
	chapterHandler := chapter.NewHandler(chapterService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Author:    authorHandler,
		Genre:     genreHandler,
		Novel:     novelHandler,
		Chapter:   chapterHandler,
	}

	server := api.NewServer(context.Background(), cfg, log, handlers)

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
