package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDisplay(t *testing.T) {
	imperial := Units{Temperature: Fahrenheit, Wind: MilesPerHour, Pressure: InchesOfMercury}

	tests := []struct {
		name  string
		kind  Kind
		raw   float64
		units Units
		want  float64
	}{
		{"celsius passthrough", KindTemperature, 21.5, DefaultUnits(), 21.5},
		{"freezing in fahrenheit", KindTemperature, 0, imperial, 32},
		{"boiling in fahrenheit", KindTemperature, 100, imperial, 212},
		{"kmh passthrough", KindWindSpeed, 12, DefaultUnits(), 12},
		{"kmh to mph", KindWindSpeed, 100, imperial, 62.1371},
		{"hpa passthrough", KindPressure, 1013.25, DefaultUnits(), 1013.25},
		{"hpa to inhg", KindPressure, 1013.25, imperial, 29.92},
		{"humidity never converts", KindHumidity, 55, imperial, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDisplay(tt.kind, Float(tt.raw), tt.units)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.01)
		})
	}
}

func TestToDisplay_NilStaysNil(t *testing.T) {
	imperial := Units{Temperature: Fahrenheit, Wind: MilesPerHour, Pressure: InchesOfMercury}
	for _, kind := range []Kind{KindTemperature, KindWindSpeed, KindHumidity, KindPressure} {
		assert.Nil(t, ToDisplay(kind, nil, imperial), kind)
		assert.Nil(t, FromDisplay(kind, nil, imperial), kind)
	}
}

func TestToDisplay_DoesNotMutateInput(t *testing.T) {
	raw := Float(10)
	_ = ToDisplay(KindTemperature, raw, Units{Temperature: Fahrenheit})
	assert.Equal(t, 10.0, *raw)
}

func TestFromDisplay_InvertsToDisplay(t *testing.T) {
	imperial := Units{Temperature: Fahrenheit, Wind: MilesPerHour, Pressure: InchesOfMercury}
	for _, kind := range []Kind{KindTemperature, KindWindSpeed, KindHumidity, KindPressure} {
		for _, v := range []float64{-40, 0, 17.3, 1013.25} {
			shown := ToDisplay(kind, Float(v), imperial)
			back := FromDisplay(kind, shown, imperial)
			require.NotNil(t, back)
			assert.InDelta(t, v, *back, 1e-9, "%s %v", kind, v)
		}
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name                 string
		temp, wind, pressure string
		want                 Units
	}{
		{"blank keeps defaults", "", "", "", DefaultUnits()},
		{"exact answers", "F", "mph", "inHg", Units{Fahrenheit, MilesPerHour, InchesOfMercury}},
		{"case insensitive", "f", "MPH", "inhg", Units{Fahrenheit, MilesPerHour, InchesOfMercury}},
		{"surrounding space", " F ", " mph", "inHg ", Units{Fahrenheit, MilesPerHour, InchesOfMercury}},
		{"unknown falls back", "K", "knots", "mmHg", DefaultUnits()},
		{"explicit defaults", "C", "kmh", "hPa", DefaultUnits()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUnits(tt.temp, tt.wind, tt.pressure))
		})
	}
}

func TestUnitsLabel(t *testing.T) {
	metric := DefaultUnits()
	assert.Equal(t, "°C", metric.Label(KindTemperature))
	assert.Equal(t, "km/h", metric.Label(KindWindSpeed))
	assert.Equal(t, "hPa", metric.Label(KindPressure))
	assert.Equal(t, "%", metric.Label(KindHumidity))

	imperial := Units{Temperature: Fahrenheit, Wind: MilesPerHour, Pressure: InchesOfMercury}
	assert.Equal(t, "°F", imperial.Label(KindTemperature))
	assert.Equal(t, "mph", imperial.Label(KindWindSpeed))
	assert.Equal(t, "inHg", imperial.Label(KindPressure))
	assert.Equal(t, "%", imperial.Label(KindHumidity))
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		kind Kind
		raw  *float64
		want Band
	}{
		{KindTemperature, nil, BandUnavailable},
		{KindTemperature, Float(30), BandHot},
		{KindTemperature, Float(29.9), BandNeutral},
		{KindTemperature, Float(10), BandCold},
		{KindTemperature, Float(-5), BandCold},
		{KindWindSpeed, Float(0), BandCalm},
		{KindWindSpeed, Float(20), BandModerate},
		{KindWindSpeed, Float(49.9), BandModerate},
		{KindWindSpeed, Float(50), BandSevere},
		{KindHumidity, Float(99), BandNeutral},
		{KindPressure, Float(950), BandNeutral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.kind, tt.raw), "%s", tt.kind)
	}
}

func TestBandFor_IndependentOfDisplayUnit(t *testing.T) {
	raw := Float(30)
	shown := ToDisplay(KindTemperature, raw, Units{Temperature: Fahrenheit})
	require.NotNil(t, shown)
	assert.InDelta(t, 86, *shown, 1e-9)
	assert.Equal(t, BandHot, BandFor(KindTemperature, raw))
}

func TestErrorKinds(t *testing.T) {
	err := NetworkError("forecast", assert.AnError)
	assert.True(t, IsNetwork(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, err, &Error{Kind: KindNetwork})
	assert.ErrorIs(t, err, &Error{Kind: KindNetwork, Op: "forecast"})
	assert.NotErrorIs(t, err, &Error{Kind: KindNetwork, Op: "geocode"})
	assert.Equal(t, "NETWORK_ERROR: forecast: "+assert.AnError.Error(), err.Error())

	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
	assert.True(t, IsNothingToExport(ErrNothingToExport))
	assert.Equal(t, "NOTHING_TO_EXPORT: export", ErrNothingToExport.Error())
}
