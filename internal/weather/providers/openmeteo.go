package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-logger/internal/metrics"
	"github.com/i474232898/weather-logger/internal/weather"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	opGeocode  = "geocode"
	opForecast = "forecast"
)

var errNoCurrentWeather = errors.New("response has no current_weather")

// OpenMeteoProvider implements weather.Provider and weather.Geocoder for
// Open-Meteo. Neither endpoint needs an API key.
type OpenMeteoProvider struct {
	name         string
	forecastURL  string
	geocodingURL string
	httpCfg      HTTPClientConfig
	forecastCB   *gobreaker.CircuitBreaker
	geocodeCB    *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider builds a provider. Empty URLs fall back to the
// public Open-Meteo endpoints.
func NewOpenMeteoProvider(httpCfg HTTPClientConfig, forecastURL, geocodingURL string) *OpenMeteoProvider {
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	return &OpenMeteoProvider{
		name:         "openmeteo",
		forecastURL:  forecastURL,
		geocodingURL: geocodingURL,
		httpCfg:      httpCfg,
		forecastCB:   newBreaker("openmeteo-forecast", httpCfg),
		geocodeCB:    newBreaker("openmeteo-geocoding", httpCfg),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type geocodingPayload struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Geocode returns the top match for name, or an empty-result error when the
// provider knows no such place.
func (p *OpenMeteoProvider) Geocode(ctx context.Context, name string) (weather.Place, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	req, err := http.NewRequest(http.MethodGet, p.geocodingURL+"?"+values.Encode(), nil)
	if err != nil {
		return weather.Place{}, weather.NetworkError(opGeocode, err)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.geocodeCB, opGeocode, req)
	if err != nil {
		return weather.Place{}, err
	}
	defer resp.Body.Close()

	var payload geocodingPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Place{}, weather.MalformedResponseError(opGeocode, err)
	}
	if len(payload.Results) == 0 {
		return weather.Place{}, weather.EmptyResultError(opGeocode, fmt.Errorf("no results for %q", name))
	}

	top := payload.Results[0]
	return weather.Place{
		Name:      strings.TrimSpace(top.Name),
		Latitude:  top.Latitude,
		Longitude: top.Longitude,
	}, nil
}

type forecastPayload struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		Time        string   `json:"time"`
	} `json:"current_weather"`
	Hourly struct {
		Time             []string   `json:"time"`
		RelativeHumidity []*float64 `json:"relativehumidity_2m"`
		PressureMSL      []*float64 `json:"pressure_msl"`
	} `json:"hourly"`
}

// FetchCurrent returns current temperature and wind speed plus the hourly
// humidity and pressure sampled at exactly the current-weather timestamp.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, latitude, longitude float64) (weather.Observation, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	values.Set("current_weather", "true")
	values.Set("hourly", "relativehumidity_2m,pressure_msl")
	values.Set("timezone", "UTC")

	req, err := http.NewRequest(http.MethodGet, p.forecastURL+"?"+values.Encode(), nil)
	if err != nil {
		return weather.Observation{}, weather.NetworkError(opForecast, err)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.forecastCB, opForecast, req)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	var payload forecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, weather.MalformedResponseError(opForecast, err)
	}
	cw := payload.CurrentWeather
	if cw == nil || (cw.Temperature == nil && cw.WindSpeed == nil) {
		return weather.Observation{}, weather.MalformedResponseError(opForecast, errNoCurrentWeather)
	}

	obs := weather.Observation{
		Time:         cw.Time,
		TemperatureC: cw.Temperature,
		WindSpeedKmh: cw.WindSpeed,
	}

	h := payload.Hourly
	idx := cotemporalIndex(h.Time, obs.Time)
	if idx >= 0 && idx < len(h.RelativeHumidity) && idx < len(h.PressureMSL) {
		obs.HumidityPct = h.RelativeHumidity[idx]
		obs.PressureHpa = h.PressureMSL[idx]
	} else {
		metrics.RecordMissingHourly()
	}

	return obs, nil
}

// cotemporalIndex returns the index of the exact match of ts in times, or -1.
func cotemporalIndex(times []string, ts string) int {
	if ts == "" {
		return -1
	}
	for i, t := range times {
		if t == ts {
			return i
		}
	}
	return -1
}
