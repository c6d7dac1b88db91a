package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carbontrace/carbontrace/internal/audit"
	"github.com/carbontrace/carbontrace/internal/config"
	"github.com/carbontrace/carbontrace/internal/logging"
	"github.com/carbontrace/carbontrace/internal/store"
	"github.com/carbontrace/carbontrace/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_enabled", cfg.Database.StoreEnabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
		"warn_ratio", cfg.Audit.WarnRatio,
	)

	catalog, err := config.LoadCatalog(cfg.Audit.SectorConfig)
	if err != nil {
		slog.Error("failed to load sector catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("sector catalog loaded", "sectors", catalog.Len())

	auditor := audit.NewAuditor(catalog, cfg.Audit.FormulaParams())

	ctx := context.Background()

	// Persistence is optional: without a database URL runs live in memory.
	var runs store.Runs = store.NewMemoryStore(1000)
	if cfg.Database.StoreEnabled() {
		pool, err := connectPool(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		runStore := store.NewRunStore(pool)
		if err := runStore.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		runs = runStore
		slog.Info("run store ready")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := web.NewServer(cfg, auditor, runs, reg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// connectPool builds and verifies the pgx connection pool.
func connectPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
