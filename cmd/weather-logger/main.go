package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/i474232898/weather-logger/internal/app"
	"github.com/i474232898/weather-logger/internal/config"
	"github.com/i474232898/weather-logger/internal/logging"
	"github.com/i474232898/weather-logger/internal/shell"
)

const appName = "weather-logger"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the menu.
	logger := logging.New(cfg, os.Stderr, appName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	out, color := shell.Stdout()
	sh := shell.New(a.Service, os.Stdin, out, shell.Options{
		RecentLimit: cfg.RecentLimit,
		ExportPath:  cfg.ExportPath,
		Color:       color,
	})
	return sh.Run(context.Background())
}
