package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/weather-logger/internal/weather"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development" validate:"oneof=development production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	// LogSQL logs every SQL statement at debug level.
	LogSQL bool `envconfig:"LOG_SQL" default:"false"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"sqlite" validate:"oneof=sqlite memory"`
	DBPath       string `envconfig:"WEATHER_DB_PATH" default:"advanced_weather.db" validate:"required"`

	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
	ForecastURL        string        `envconfig:"FORECAST_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"url"`
	GeocodingURL       string        `envconfig:"GEOCODING_URL" default:"https://geocoding-api.open-meteo.com/v1/search" validate:"url"`
	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"5" validate:"gte=1"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s" validate:"gt=0"`

	// Location used by "log current weather".
	DefaultCity      string  `envconfig:"DEFAULT_CITY" default:"Lagos, Nigeria" validate:"required"`
	DefaultLatitude  float64 `envconfig:"DEFAULT_LATITUDE" default:"6.5244" validate:"latitude"`
	DefaultLongitude float64 `envconfig:"DEFAULT_LONGITUDE" default:"3.3792" validate:"longitude"`

	ExportPath  string `envconfig:"EXPORT_PATH" default:"ADVANCED_WEATHER_LOGS.csv" validate:"required"`
	RecentLimit int    `envconfig:"RECENT_LIMIT" default:"20" validate:"gte=1"`

	Port string `envconfig:"PORT" default:"8080" validate:"numeric"`

	// AutoLogInterval of zero disables the API's background logger.
	AutoLogInterval time.Duration `envconfig:"AUTO_LOG_INTERVAL" default:"0s" validate:"gte=0"`
	AutoLogCities   []string      `envconfig:"AUTO_LOG_CITIES"`
}

// Load reads an optional .env file (or the given files), then the
// environment, and validates the result.
func Load(files ...string) (*AppConfig, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.AutoLogCities = cleanCities(cfg.AutoLogCities)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultLocation is the location configured for "log current weather".
func (c *AppConfig) DefaultLocation() weather.Location {
	return weather.Location{
		City:      c.DefaultCity,
		Latitude:  c.DefaultLatitude,
		Longitude: c.DefaultLongitude,
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

func cleanCities(in []string) []string {
	var out []string
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
