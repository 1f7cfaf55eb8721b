// Package main is the entry point for the market data API.
// The service backtests fixed-share portfolios against a benchmark index and
// serves per-ticker stock overviews built from Yahoo Finance and Alpha Vantage.
//
// Startup sequence:
// 1. Load configuration from environment variables (.env supported)
// 2. Initialize logging
// 3. Wire dependencies via the DI container (cache database, clients, services, jobs)
// 4. Start the background scheduler and the HTTP server
// 5. Wait for SIGINT/SIGTERM and shut down gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/di"
	"github.com/aristath/backtester/internal/server"
	"github.com/aristath/backtester/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("benchmark", cfg.BenchmarkSymbol).
		Msg("Starting market data API")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Purge cache rows that expired while the service was down
	if err := container.Scheduler.RunNow(container.CleanupJob); err != nil {
		log.Warn().Err(err).Msg("Initial cache cleanup failed")
	}
	container.Scheduler.Start()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	// Stop scheduled jobs before the database is closed
	container.Scheduler.Stop()

	// In-flight requests get up to 10 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
