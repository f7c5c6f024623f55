// Package app wires configuration into the store, provider and service
// shared by both binaries.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/i474232898/weather-logger/internal/config"
	"github.com/i474232898/weather-logger/internal/export"
	"github.com/i474232898/weather-logger/internal/store"
	"github.com/i474232898/weather-logger/internal/weather"
	"github.com/i474232898/weather-logger/internal/weather/providers"
)

type closableStore interface {
	weather.Store
	Close() error
}

// App holds the long-lived dependencies of a process.
type App struct {
	Service *weather.Service
	store   closableStore
}

// New opens the configured store and builds the service around the
// Open-Meteo provider.
func New(cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	st, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Shared HTTP client for outbound provider calls.
	httpCfg := providers.HTTPClientConfig{
		Client:      &http.Client{Timeout: cfg.HTTPTimeout},
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	}
	meteo := providers.NewOpenMeteoProvider(httpCfg, cfg.ForecastURL, cfg.GeocodingURL)

	svc := weather.NewService(st, meteo, meteo, export.CSV{}, cfg.DefaultLocation(), logger)
	return &App{Service: svc, store: st}, nil
}

func openStore(cfg *config.AppConfig, logger *slog.Logger) (closableStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store; readings are lost on exit")
		return store.NewMemoryStore(nil), nil
	case config.BackendSQLite:
		st, err := store.NewSQLite(store.Options{
			Path:   cfg.DBPath,
			LogSQL: cfg.LogSQL,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.DBPath, err)
		}
		logger.Debug("sqlite store ready", "path", cfg.DBPath)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}
