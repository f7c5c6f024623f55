package weather

import (
	"context"
)

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Place, error)
}

// Provider abstracts a current-weather source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, latitude, longitude float64) (Observation, error)
}

// Store is the contract the SQLite and in-memory stores must satisfy.
type Store interface {
	// InsertReading appends r and returns it with ID and ObservedAt set.
	InsertReading(ctx context.Context, r Reading) (Reading, error)
	GetReading(ctx context.Context, id int64) (Reading, error)
	// QueryReadings returns readings most recent first.
	QueryReadings(ctx context.Context, q Query) ([]Reading, error)
	// AllReadings returns every reading in insertion order.
	AllReadings(ctx context.Context) ([]Reading, error)
	// InsertError records a diagnostic entry. It is best-effort and
	// never reports failure.
	InsertError(ctx context.Context, tag, message string)
}
