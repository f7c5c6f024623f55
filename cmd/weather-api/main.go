package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/weather-logger/internal/api/http"
	"github.com/i474232898/weather-logger/internal/app"
	"github.com/i474232898/weather-logger/internal/config"
	"github.com/i474232898/weather-logger/internal/logging"
	"github.com/i474232898/weather-logger/internal/scheduler"
)

const appName = "weather-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, os.Stdout, appName)
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	// Scheduler that periodically logs the configured cities.
	sched := scheduler.New(cfg.AutoLogCities, cfg.AutoLogInterval, a.Service, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return
	}
	defer sched.Stop()

	var accessLog io.Writer
	if !cfg.IsProduction() {
		accessLog = os.Stdout
	}
	server := httpapi.NewApp(a.Service, httpapi.Options{
		DefaultLimit: cfg.RecentLimit,
		AccessLog:    accessLog,
	})

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := server.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
