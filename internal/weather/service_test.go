package weather_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-logger/internal/export"
	"github.com/i474232898/weather-logger/internal/store"
	"github.com/i474232898/weather-logger/internal/weather"
)

type fakeGeocoder struct {
	place weather.Place
	err   error
	calls []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, name string) (weather.Place, error) {
	g.calls = append(g.calls, name)
	return g.place, g.err
}

type fakeProvider struct {
	obs   weather.Observation
	err   error
	calls [][2]float64
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchCurrent(_ context.Context, lat, lon float64) (weather.Observation, error) {
	p.calls = append(p.calls, [2]float64{lat, lon})
	return p.obs, p.err
}

// failingStore fails every insert but still records error log entries.
type failingStore struct {
	*store.MemoryStore
}

func (failingStore) InsertReading(context.Context, weather.Reading) (weather.Reading, error) {
	return weather.Reading{}, weather.StorageError("insert reading", errors.New("disk full"))
}

var lagos = weather.Location{City: "Lagos, Nigeria", Latitude: 6.5244, Longitude: 3.3792}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
}

func sampleObservation() weather.Observation {
	return weather.Observation{
		Time:         "2024-05-01T13:00",
		TemperatureC: weather.Float(29.4),
		WindSpeedKmh: weather.Float(12.1),
		HumidityPct:  weather.Float(74),
		PressureHpa:  weather.Float(1010.8),
	}
}

func newTestService(st weather.Store, g *fakeGeocoder, p *fakeProvider) *weather.Service {
	return weather.NewService(st, g, p, export.CSV{}, lagos, nil)
}

func TestService_LogCurrentUsesDefaultLocation(t *testing.T) {
	st := store.NewMemoryStore(fixedClock)
	g := &fakeGeocoder{}
	p := &fakeProvider{obs: sampleObservation()}
	svc := newTestService(st, g, p)

	got, err := svc.LogCurrent(context.Background())
	require.NoError(t, err)

	assert.Empty(t, g.calls, "default location needs no geocoding")
	assert.Equal(t, [][2]float64{{6.5244, 3.3792}}, p.calls)
	assert.Equal(t, "Lagos, Nigeria", got.City)
	assert.Equal(t, "2024-05-01 13:04:05", got.ObservedAt)
	assert.Equal(t, 29.4, *got.TemperatureC)

	stored, err := st.GetReading(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestService_LogByCityUsesResolvedName(t *testing.T) {
	st := store.NewMemoryStore(fixedClock)
	g := &fakeGeocoder{place: weather.Place{Name: "London", Latitude: 51.5, Longitude: -0.12}}
	p := &fakeProvider{obs: sampleObservation()}
	svc := newTestService(st, g, p)

	got, err := svc.LogByCity(context.Background(), "  london ")
	require.NoError(t, err)

	assert.Equal(t, []string{"london"}, g.calls)
	assert.Equal(t, [][2]float64{{51.5, -0.12}}, p.calls)
	assert.Equal(t, "London", got.City)
	assert.Equal(t, 51.5, got.Latitude)
}

func TestService_LogByCityFallsBackToInput(t *testing.T) {
	st := store.NewMemoryStore(fixedClock)
	g := &fakeGeocoder{place: weather.Place{Latitude: 30.04, Longitude: 31.24}}
	svc := newTestService(st, g, &fakeProvider{obs: sampleObservation()})

	got, err := svc.LogByCity(context.Background(), " Cairo ")
	require.NoError(t, err)
	assert.Equal(t, "Cairo", got.City)
}

func TestService_LogByCityBlankName(t *testing.T) {
	st := store.NewMemoryStore(fixedClock)
	g := &fakeGeocoder{}
	svc := newTestService(st, g, &fakeProvider{})

	_, err := svc.LogByCity(context.Background(), "   ")
	assert.ErrorIs(t, err, weather.ErrEmptyCity)
	assert.Empty(t, g.calls)
	assert.Empty(t, st.ErrorEntries())
}

func TestService_FailuresAreRecordedAndReturned(t *testing.T) {
	tests := []struct {
		name     string
		geocoder *fakeGeocoder
		provider *fakeProvider
		failing  bool
		wantTag  string
		wantKind weather.ErrorKind
	}{
		{
			name:     "geocode empty result",
			geocoder: &fakeGeocoder{err: weather.EmptyResultError("geocode", errors.New("no results"))},
			provider: &fakeProvider{},
			wantTag:  weather.TagGeocode,
			wantKind: weather.KindEmptyResult,
		},
		{
			name:     "fetch network error",
			geocoder: &fakeGeocoder{place: weather.Place{Name: "Accra"}},
			provider: &fakeProvider{err: weather.NetworkError("forecast", errors.New("timeout"))},
			wantTag:  weather.TagFetch,
			wantKind: weather.KindNetwork,
		},
		{
			name:     "fetch malformed",
			geocoder: &fakeGeocoder{place: weather.Place{Name: "Accra"}},
			provider: &fakeProvider{err: weather.MalformedResponseError("forecast", errors.New("no current_weather"))},
			wantTag:  weather.TagFetch,
			wantKind: weather.KindMalformedResponse,
		},
		{
			name:     "store failure",
			geocoder: &fakeGeocoder{place: weather.Place{Name: "Accra"}},
			provider: &fakeProvider{obs: sampleObservation()},
			failing:  true,
			wantTag:  weather.TagStore,
			wantKind: weather.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore(fixedClock)
			var st weather.Store = mem
			if tt.failing {
				st = failingStore{mem}
			}
			svc := newTestService(st, tt.geocoder, tt.provider)

			_, err := svc.LogByCity(context.Background(), "Accra")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, weather.KindOf(err))

			entries := mem.ErrorEntries()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantTag, entries[0].Context)
			assert.NotEmpty(t, entries[0].Message)

			all, err := mem.AllReadings(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "failed logs must not persist a reading")
		})
	}
}

func TestService_ListSearchGet(t *testing.T) {
	st := store.NewMemoryStore(fixedClock)
	g := &fakeGeocoder{}
	p := &fakeProvider{obs: sampleObservation()}
	svc := newTestService(st, g, p)
	ctx := context.Background()

	for _, name := range []string{"Lagos", "London", "Lagos"} {
		g.place = weather.Place{Name: name}
		_, err := svc.LogByCity(ctx, name)
		require.NoError(t, err)
	}

	recent, err := svc.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].ID)
	assert.Equal(t, int64(2), recent[1].ID)

	found, err := svc.Search(ctx, " Lag ", "")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(3), found[0].ID)
	assert.Equal(t, int64(1), found[1].ID)

	found, err = svc.Search(ctx, "", "2024-05-02")
	require.NoError(t, err)
	assert.Empty(t, found)

	one, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "London", one.City)

	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_Export(t *testing.T) {
	st := store.NewMemoryStore(fixedClock)
	svc := newTestService(st, &fakeGeocoder{}, &fakeProvider{obs: sampleObservation()})
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := svc.Export(ctx, path, weather.DefaultUnits())
	assert.True(t, weather.IsNothingToExport(err))
	assert.NoFileExists(t, path)

	_, err = svc.LogCurrent(ctx)
	require.NoError(t, err)

	n, err := svc.Export(ctx, path, weather.Units{
		Temperature: weather.Fahrenheit,
		Wind:        weather.KilometersPerHour,
		Pressure:    weather.Hectopascal,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "TEMPERATURE (°F)", records[0][4])
	assert.Equal(t, "84.92", records[1][4])

	stored, err := st.GetReading(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 29.4, *stored.TemperatureC, "export must not change stored values")
}
