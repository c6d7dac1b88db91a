package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/carbontrace/carbontrace/internal/audit"
	"github.com/carbontrace/carbontrace/internal/config"
	"github.com/carbontrace/carbontrace/internal/store"
	"github.com/carbontrace/carbontrace/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	catalog, err := config.LoadCatalog(cfg.Audit.SectorConfig)
	if err != nil {
		return err
	}
	slog.Info("sector catalog loaded", "sectors", catalog.Len())

	auditor := audit.NewAuditor(catalog, cfg.Audit.FormulaParams())

	ctx := cmd.Context()

	var runs store.Runs = store.NewMemoryStore(1000)
	if cfg.Database.StoreEnabled() {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return err
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return err
		}

		runStore := store.NewRunStore(pool)
		if err := runStore.EnsureSchema(ctx); err != nil {
			return err
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
	return nil
}
