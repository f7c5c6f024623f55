package httpapi

import (
	"github.com/i474232898/weather-logger/internal/weather"
)

// unitsQuery holds the optional display-unit query parameters. The
// resulting weather.Units is validated by its own tags.
type unitsQuery struct {
	TempUnit     string `query:"temp_unit"`
	WindUnit     string `query:"wind_unit"`
	PressureUnit string `query:"pressure_unit"`
}

func (q unitsQuery) units() weather.Units {
	u := weather.DefaultUnits()
	if q.TempUnit != "" {
		u.Temperature = weather.TemperatureUnit(q.TempUnit)
	}
	if q.WindUnit != "" {
		u.Wind = weather.WindUnit(q.WindUnit)
	}
	if q.PressureUnit != "" {
		u.Pressure = weather.PressureUnit(q.PressureUnit)
	}
	return u
}

// readingsQuery holds query parameters for the list endpoint.
type readingsQuery struct {
	Limit        int    `query:"limit" validate:"gte=0,lte=1000"`
	City         string `query:"city" validate:"max=100"`
	Date         string `query:"date" validate:"omitempty,max=19"`
	TempUnit     string `query:"temp_unit"`
	WindUnit     string `query:"wind_unit"`
	PressureUnit string `query:"pressure_unit"`
}

func (q readingsQuery) units() weather.Units {
	return unitsQuery{TempUnit: q.TempUnit, WindUnit: q.WindUnit, PressureUnit: q.PressureUnit}.units()
}

type logRequest struct {
	City string `json:"city" validate:"max=100"`
}

// displayValues are the measurements converted to the requested units.
type displayValues struct {
	Temperature *float64 `json:"temperature"`
	WindSpeed   *float64 `json:"windspeed"`
	Humidity    *float64 `json:"humidity"`
	Pressure    *float64 `json:"pressure"`
}

type bands struct {
	Temperature weather.Band `json:"temperature"`
	WindSpeed   weather.Band `json:"windspeed"`
}

// readingView is a stored reading (canonical values) plus its rendering
// in the requested units.
type readingView struct {
	weather.Reading
	Display displayValues `json:"display"`
	Labels  displayLabels `json:"labels"`
	Bands   bands         `json:"bands"`
}

type displayLabels struct {
	Temperature string `json:"temperature"`
	WindSpeed   string `json:"windspeed"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
}

func newReadingView(r weather.Reading, u weather.Units) readingView {
	return readingView{
		Reading: r,
		Display: displayValues{
			Temperature: weather.ToDisplay(weather.KindTemperature, r.TemperatureC, u),
			WindSpeed:   weather.ToDisplay(weather.KindWindSpeed, r.WindSpeedKmh, u),
			Humidity:    weather.ToDisplay(weather.KindHumidity, r.HumidityPct, u),
			Pressure:    weather.ToDisplay(weather.KindPressure, r.PressureHpa, u),
		},
		Labels: displayLabels{
			Temperature: u.Label(weather.KindTemperature),
			WindSpeed:   u.Label(weather.KindWindSpeed),
			Humidity:    u.Label(weather.KindHumidity),
			Pressure:    u.Label(weather.KindPressure),
		},
		Bands: bands{
			Temperature: weather.BandFor(weather.KindTemperature, r.TemperatureC),
			WindSpeed:   weather.BandFor(weather.KindWindSpeed, r.WindSpeedKmh),
		},
	}
}
