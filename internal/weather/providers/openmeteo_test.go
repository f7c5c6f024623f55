package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-logger/internal/weather"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := HTTPClientConfig{Client: &http.Client{Timeout: 2 * time.Second}}
	return NewOpenMeteoProvider(cfg, srv.URL+"/v1/forecast", srv.URL+"/v1/search")
}

func TestOpenMeteo_FetchCurrent_MatchesHourlySample(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "6.5244", q.Get("latitude"))
		assert.Equal(t, "3.3792", q.Get("longitude"))
		assert.Equal(t, "true", q.Get("current_weather"))
		assert.Equal(t, "relativehumidity_2m,pressure_msl", q.Get("hourly"))
		assert.Equal(t, "UTC", q.Get("timezone"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{
			"current_weather": {"temperature": 29.4, "windspeed": 12.1, "time": "2024-05-01T13:00"},
			"hourly": {
				"time": ["2024-05-01T12:00", "2024-05-01T13:00", "2024-05-01T14:00"],
				"relativehumidity_2m": [70, 74, 78],
				"pressure_msl": [1011.2, 1010.8, 1010.1]
			}
		}`))
		assert.NoError(t, err)
	})

	obs, err := p.FetchCurrent(context.Background(), 6.5244, 3.3792)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T13:00", obs.Time)
	require.NotNil(t, obs.TemperatureC)
	assert.Equal(t, 29.4, *obs.TemperatureC)
	require.NotNil(t, obs.WindSpeedKmh)
	assert.Equal(t, 12.1, *obs.WindSpeedKmh)
	require.NotNil(t, obs.HumidityPct)
	assert.Equal(t, 74.0, *obs.HumidityPct)
	require.NotNil(t, obs.PressureHpa)
	assert.Equal(t, 1010.8, *obs.PressureHpa)
}

func TestOpenMeteo_FetchCurrent_TimestampMissingFromHourly(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"current_weather": {"temperature": 18.0, "windspeed": 5.0, "time": "2024-05-01T13:15"},
			"hourly": {
				"time": ["2024-05-01T13:00", "2024-05-01T14:00"],
				"relativehumidity_2m": [70, 74],
				"pressure_msl": [1011.2, 1010.8]
			}
		}`))
	})

	obs, err := p.FetchCurrent(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Nil(t, obs.HumidityPct)
	assert.Nil(t, obs.PressureHpa)
	require.NotNil(t, obs.TemperatureC)
	assert.Equal(t, 18.0, *obs.TemperatureC)
}

func TestOpenMeteo_FetchCurrent_MissingHourlyArrays(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"current_weather": {"temperature": 18.0, "windspeed": 5.0, "time": "2024-05-01T13:00"},
			"hourly": {"time": ["2024-05-01T13:00"], "relativehumidity_2m": [70]}
		}`))
	})

	obs, err := p.FetchCurrent(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Nil(t, obs.HumidityPct)
	assert.Nil(t, obs.PressureHpa)
}

func TestOpenMeteo_FetchCurrent_NoCurrentWeather(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing", `{"hourly": {"time": []}}`},
		{"null", `{"current_weather": null, "hourly": {"time": []}}`},
		{"empty object", `{"current_weather": {}, "hourly": {"time": []}}`},
		{"no measurements", `{"current_weather": {"time": "2024-05-01T13:00"}, "hourly": {"time": ["2024-05-01T13:00"], "relativehumidity_2m": [70], "pressure_msl": [1011.2]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})

			obs, err := p.FetchCurrent(context.Background(), 1, 2)
			require.Error(t, err)
			assert.True(t, weather.IsMalformedResponse(err))
			assert.Equal(t, weather.Observation{}, obs)
		})
	}
}

func TestOpenMeteo_FetchCurrent_ServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.FetchCurrent(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, weather.IsNetwork(err))
}

func TestOpenMeteo_FetchCurrent_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{Client: &http.Client{Timeout: 20 * time.Millisecond}}
	p := NewOpenMeteoProvider(cfg, srv.URL, srv.URL)

	_, err := p.FetchCurrent(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, weather.IsNetwork(err))
}

func TestOpenMeteo_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{Client: srv.Client(), MaxFailures: 2, OpenTimeout: time.Minute}
	p := NewOpenMeteoProvider(cfg, srv.URL, srv.URL)

	for i := 0; i < 3; i++ {
		_, err := p.FetchCurrent(context.Background(), 1, 2)
		require.Error(t, err)
		assert.True(t, weather.IsNetwork(err))
	}
	assert.Equal(t, int32(2), calls.Load(), "third call should be rejected by the open breaker")
}

func TestOpenMeteo_Geocode(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "london", q.Get("name"))
		assert.Equal(t, "1", q.Get("count"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "json", q.Get("format"))
		_, _ = w.Write([]byte(`{"results": [{"name": "London", "latitude": 51.50853, "longitude": -0.12574}]}`))
	})

	place, err := p.Geocode(context.Background(), "london")
	require.NoError(t, err)
	assert.Equal(t, weather.Place{Name: "London", Latitude: 51.50853, Longitude: -0.12574}, place)
}

func TestOpenMeteo_Geocode_NoResults(t *testing.T) {
	for name, body := range map[string]string{
		"absent": `{"generationtime_ms": 0.5}`,
		"null":   `{"results": null}`,
		"empty":  `{"results": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := p.Geocode(context.Background(), "Atlantis")
			require.Error(t, err)
			assert.True(t, weather.IsEmptyResult(err))
		})
	}
}

func TestCotemporalIndex(t *testing.T) {
	times := []string{"2024-05-01T12:00", "2024-05-01T13:00"}
	assert.Equal(t, 1, cotemporalIndex(times, "2024-05-01T13:00"))
	assert.Equal(t, -1, cotemporalIndex(times, "2024-05-01T12:30"))
	assert.Equal(t, -1, cotemporalIndex(times, ""))
	assert.Equal(t, -1, cotemporalIndex(nil, "2024-05-01T12:00"))
}
