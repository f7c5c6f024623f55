package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-logger/internal/weather"
)

var (
	// ErrNotFound is returned when no reading has the requested id.
	ErrNotFound = errors.New("weather reading not found")
)

// ErrorEntry is one diagnostic row.
type ErrorEntry struct {
	ID       int64
	LoggedAt string
	Context  string
	Message  string
}

// MemoryStore is a concurrency-safe in-memory implementation of
// weather.Store with the same ordering and filter rules as SQLiteStore.
type MemoryStore struct {
	mu sync.RWMutex

	readings []weather.Reading
	errors   []ErrorEntry
	nextID   int64

	now func() time.Time
}

// NewMemoryStore creates an empty store. A nil clock means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now}
}

func (s *MemoryStore) InsertReading(_ context.Context, r weather.Reading) (weather.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = s.nextID
	r.ObservedAt = s.now().UTC().Format(weather.TimestampLayout)
	r = cloneReading(r)

	s.readings = append(s.readings, r)
	return cloneReading(r), nil
}

func (s *MemoryStore) GetReading(_ context.Context, id int64) (weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.readings {
		if r.ID == id {
			return cloneReading(r), nil
		}
	}
	return weather.Reading{}, ErrNotFound
}

// QueryReadings walks the history newest first and applies the filters.
func (s *MemoryStore) QueryReadings(_ context.Context, q weather.Query) ([]weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Reading
	for i := len(s.readings) - 1; i >= 0; i-- {
		r := s.readings[i]
		if q.CityContains != "" && !strings.Contains(r.City, q.CityContains) {
			continue
		}
		if q.DateStartsWith != "" && !strings.HasPrefix(r.ObservedAt, q.DateStartsWith) {
			continue
		}
		result = append(result, cloneReading(r))
		if q.Limit > 0 && len(result) >= q.Limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryStore) AllReadings(_ context.Context) ([]weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Reading, len(s.readings))
	for i, r := range s.readings {
		out[i] = cloneReading(r)
	}
	return out, nil
}

func (s *MemoryStore) InsertError(_ context.Context, tag, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors = append(s.errors, ErrorEntry{
		ID:       int64(len(s.errors) + 1),
		LoggedAt: s.now().UTC().Format(weather.TimestampLayout),
		Context:  tag,
		Message:  message,
	})
}

// ErrorEntries returns a copy of the diagnostic rows.
func (s *MemoryStore) ErrorEntries() []ErrorEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ErrorEntry, len(s.errors))
	copy(out, s.errors)
	return out
}

func (s *MemoryStore) Close() error {
	return nil
}

// cloneReading copies the measurement pointers so callers never share
// them with the store.
func cloneReading(r weather.Reading) weather.Reading {
	r.TemperatureC = clone(r.TemperatureC)
	r.WindSpeedKmh = clone(r.WindSpeedKmh)
	r.HumidityPct = clone(r.HumidityPct)
	r.PressureHpa = clone(r.PressureHpa)
	return r
}

func clone(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
