package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reportdash/realtime/internal/batch"
	"github.com/reportdash/realtime/internal/config"
	"github.com/reportdash/realtime/internal/connection"
	"github.com/reportdash/realtime/internal/dispatch"
	"github.com/reportdash/realtime/internal/notify"
	"github.com/reportdash/realtime/internal/report"
	"github.com/reportdash/realtime/internal/server"
	"github.com/reportdash/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/dashboardd.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting dashboardd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"max_connections", cfg.Websocket.MaxConnections,
		"reports_dir", cfg.Reports.Dir,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Wire components
	reg := connection.NewRegistry(connection.RegistryConfig{
		MaxConnections: cfg.Websocket.MaxConnections,
	}, logger)
	notifier := notify.NewNotifier(reg, logger)
	dispatcher := dispatch.NewDispatcher(reg, notifier, logger)

	renderer, err := report.NewFileRenderer(report.Config{
		Dir:          cfg.Reports.Dir,
		OutputFormat: cfg.Reports.OutputFormat,
	}, logger)
	if err != nil {
		logger.Error("failed to create report renderer", "error", err)
		os.Exit(1)
	}

	sup := batch.NewSupervisor(batch.Config{
		ItemConcurrency: cfg.Batch.ItemConcurrency,
	}, renderer, notifier, logger)

	maintenance := notify.NewMaintenance(notify.MaintenanceConfig{
		Interval:       cfg.Maintenance.Interval,
		FailureBackoff: cfg.Maintenance.FailureBackoff,
	}, reg, notifier, logger)

	srv := server.New(cfg, reg, notifier, dispatcher, sup, logger)

	// Start components
	if err := maintenance.Start(ctx); err != nil {
		logger.Error("failed to start maintenance loop", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	logger.Info("dashboardd running",
		"health_url", fmt.Sprintf("http://%s/health", srv.Addr()),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := maintenance.Stop(shutdownCtx); err != nil {
		logger.Error("maintenance shutdown failed", "error", err)
	}

	logger.Info("dashboardd stopped")
}
