package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/i474232898/weather-logger/internal/metrics"
)

// Error log context tags.
const (
	TagGeocode = "log_weather.geocode"
	TagFetch   = "log_weather.fetch"
	TagStore   = "log_weather.store"
)

// ErrEmptyCity is returned by LogByCity for a blank name.
var ErrEmptyCity = errors.New("city name is empty")

// Exporter writes readings somewhere in display units and reports the row count.
type Exporter interface {
	Export(path string, readings []Reading, u Units) (int, error)
}

// Service orchestrates fetching from the provider and persisting readings.
type Service struct {
	store    Store
	geocoder Geocoder
	provider Provider
	exporter Exporter

	defaultLocation Location
	logger          *slog.Logger
}

// NewService creates a new Service. defaultLocation is used by LogCurrent.
func NewService(store Store, geocoder Geocoder, provider Provider, exporter Exporter, defaultLocation Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:           store,
		geocoder:        geocoder,
		provider:        provider,
		exporter:        exporter,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

// DefaultLocation returns the location LogCurrent records.
func (s *Service) DefaultLocation() Location {
	return s.defaultLocation
}

// LogCurrent fetches and stores the weather at the default location.
func (s *Service) LogCurrent(ctx context.Context) (Reading, error) {
	logger := s.logger.With("op_id", uuid.NewString(), "city", s.defaultLocation.City)
	return s.fetchAndStore(ctx, logger, s.defaultLocation)
}

// LogByCity geocodes name, then fetches and stores the weather there. The
// stored city is the geocoder's name, or the trimmed input when the
// geocoder returns none.
func (s *Service) LogByCity(ctx context.Context, name string) (Reading, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Reading{}, ErrEmptyCity
	}

	logger := s.logger.With("op_id", uuid.NewString(), "query", name)

	place, err := s.geocoder.Geocode(ctx, name)
	if err != nil {
		logger.Warn("geocode failed", "error", err)
		s.recordFailure(ctx, TagGeocode, err)
		metrics.RecordLog("geocode_error")
		return Reading{}, fmt.Errorf("geocode %q: %w", name, err)
	}

	loc := Location{City: place.Name, Latitude: place.Latitude, Longitude: place.Longitude}
	if loc.City == "" {
		loc.City = name
	}
	return s.fetchAndStore(ctx, logger.With("city", loc.City), loc)
}

func (s *Service) fetchAndStore(ctx context.Context, logger *slog.Logger, loc Location) (Reading, error) {
	obs, err := s.provider.FetchCurrent(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		logger.Warn("fetch failed", "provider", s.provider.Name(), "error", err)
		s.recordFailure(ctx, TagFetch, err)
		metrics.RecordLog("fetch_error")
		return Reading{}, fmt.Errorf("fetch %s: %w", loc.City, err)
	}

	saved, err := s.store.InsertReading(ctx, NewReading(loc, obs))
	if err != nil {
		logger.Error("store failed", "error", err)
		s.recordFailure(ctx, TagStore, err)
		metrics.RecordLog("store_error")
		return Reading{}, fmt.Errorf("store %s: %w", loc.City, err)
	}

	logger.Info("weather logged", "id", saved.ID, "observed_at", saved.ObservedAt)
	metrics.RecordLog("ok")
	return saved, nil
}

// recordFailure writes to the error log even when ctx is already cancelled.
func (s *Service) recordFailure(ctx context.Context, tag string, err error) {
	s.store.InsertError(context.WithoutCancel(ctx), tag, err.Error())
}

// ListRecent returns up to n readings, most recent first.
func (s *Service) ListRecent(ctx context.Context, n int) ([]Reading, error) {
	return s.store.QueryReadings(ctx, Query{Limit: n})
}

// Search filters by case-sensitive city substring and observed_at prefix.
// Blank filters are ignored.
func (s *Service) Search(ctx context.Context, city, date string) ([]Reading, error) {
	return s.Find(ctx, Query{CityContains: city, DateStartsWith: date})
}

// Find runs q against the store after trimming its filters.
func (s *Service) Find(ctx context.Context, q Query) ([]Reading, error) {
	q.CityContains = strings.TrimSpace(q.CityContains)
	q.DateStartsWith = strings.TrimSpace(q.DateStartsWith)
	return s.store.QueryReadings(ctx, q)
}

// Get returns a single reading by id.
func (s *Service) Get(ctx context.Context, id int64) (Reading, error) {
	return s.store.GetReading(ctx, id)
}

// Export writes every reading in insertion order to path in units u.
func (s *Service) Export(ctx context.Context, path string, u Units) (int, error) {
	readings, err := s.store.AllReadings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load readings: %w", err)
	}

	n, err := s.exporter.Export(path, readings, u)
	if err != nil {
		return 0, err
	}
	s.logger.Info("readings exported", "path", path, "rows", n)
	return n, nil
}
