package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/msomdec/memory-gallery/internal/config"
	"github.com/msomdec/memory-gallery/internal/domain"
	"github.com/msomdec/memory-gallery/internal/handler"
	"github.com/msomdec/memory-gallery/internal/metrics"
	"github.com/msomdec/memory-gallery/internal/repository/breaker"
	"github.com/msomdec/memory-gallery/internal/repository/memstore"
	"github.com/msomdec/memory-gallery/internal/repository/redis"
	"github.com/msomdec/memory-gallery/internal/repository/sqlite"
	"github.com/msomdec/memory-gallery/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg, os.Stdout, os.Stderr)
	slog.SetDefault(logger)

	db, kv, err := openStorage(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("storage ready", "backend", cfg.StorageBackend)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("memory_gallery")
	}
	kv = collector.WrapStore(breaker.New(kv, breaker.Settings{
		Name:     cfg.StorageBackend,
		Failures: cfg.BreakerFailures,
		Timeout:  cfg.BreakerTimeout,
	}))

	accounts := service.NewAccountDirectory(kv)
	memories := service.NewMemoryStore(kv, accounts, cfg.MaxImageBytes)
	limiter := service.NewWriteLimiter(cfg.WriteRateLimit, cfg.WriteRateBurst)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go limiter.RunJanitor(ctx, time.Minute, 10*time.Minute)

	srv := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.AppPort),
		Handler: handler.NewRouter(handler.Deps{
			DB:             db,
			Accounts:       accounts,
			Memories:       memories,
			Limiter:        limiter,
			Metrics:        collector,
			Logger:         logger,
			AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newLogger builds the process logger. "both" writes text to stdout and JSON
// to stderr.
func newLogger(cfg *config.Config, stdout, stderr io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	switch cfg.LogFormat {
	case "text":
		return slog.New(slog.NewTextHandler(stdout, opts))
	case "json":
		return slog.New(slog.NewJSONHandler(stdout, opts))
	default:
		return slog.New(slog.NewMultiHandler(
			slog.NewTextHandler(stdout, opts),
			slog.NewJSONHandler(stderr, opts),
		))
	}
}

// openStorage connects the configured backend. The returned Database and
// KVStore are the same value.
func openStorage(ctx context.Context, cfg *config.Config) (domain.Database, domain.KVStore, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Store(), nil
	case config.BackendRedis:
		store, err := redis.New(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendMemory:
		store := memstore.New()
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
