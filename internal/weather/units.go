package weather

import "strings"

// Kind identifies which measurement a value belongs to.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindWindSpeed   Kind = "windspeed"
	KindHumidity    Kind = "humidity"
	KindPressure    Kind = "pressure"
)

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
)

type WindUnit string

const (
	KilometersPerHour WindUnit = "kmh"
	MilesPerHour      WindUnit = "mph"
)

type PressureUnit string

const (
	Hectopascal     PressureUnit = "hPa"
	InchesOfMercury PressureUnit = "inHg"
)

const (
	kmhToMph  = 0.621371
	hPaToInHg = 0.029529983071445
)

// Units is the display unit preference. It only affects rendering and
// export, never what is stored.
type Units struct {
	Temperature TemperatureUnit `json:"temperature" validate:"oneof=C F"`
	Wind        WindUnit        `json:"wind" validate:"oneof=kmh mph"`
	Pressure    PressureUnit    `json:"pressure" validate:"oneof=hPa inHg"`
}

// DefaultUnits returns C / km/h / hPa.
func DefaultUnits() Units {
	return Units{
		Temperature: Celsius,
		Wind:        KilometersPerHour,
		Pressure:    Hectopascal,
	}
}

// ParseUnits maps free-text answers to a Units value. Matching is
// case-insensitive; blank or unrecognised answers keep the default.
func ParseUnits(temp, wind, pressure string) Units {
	u := DefaultUnits()
	if strings.EqualFold(strings.TrimSpace(temp), string(Fahrenheit)) {
		u.Temperature = Fahrenheit
	}
	if strings.EqualFold(strings.TrimSpace(wind), string(MilesPerHour)) {
		u.Wind = MilesPerHour
	}
	if strings.EqualFold(strings.TrimSpace(pressure), string(InchesOfMercury)) {
		u.Pressure = InchesOfMercury
	}
	return u
}

// Label returns the unit suffix used in headers and rendered values.
func (u Units) Label(kind Kind) string {
	switch kind {
	case KindTemperature:
		if u.Temperature == Fahrenheit {
			return "°F"
		}
		return "°C"
	case KindWindSpeed:
		if u.Wind == MilesPerHour {
			return "mph"
		}
		return "km/h"
	case KindPressure:
		if u.Pressure == InchesOfMercury {
			return "inHg"
		}
		return "hPa"
	case KindHumidity:
		return "%"
	default:
		return ""
	}
}

// ToDisplay converts a canonical metric value to the preferred display unit.
// A nil value stays nil.
func ToDisplay(kind Kind, raw *float64, u Units) *float64 {
	if raw == nil {
		return nil
	}
	v := *raw
	switch kind {
	case KindTemperature:
		if u.Temperature == Fahrenheit {
			v = v*9/5 + 32
		}
	case KindWindSpeed:
		if u.Wind == MilesPerHour {
			v = v * kmhToMph
		}
	case KindPressure:
		if u.Pressure == InchesOfMercury {
			v = v * hPaToInHg
		}
	}
	return &v
}

// FromDisplay is the inverse of ToDisplay.
func FromDisplay(kind Kind, display *float64, u Units) *float64 {
	if display == nil {
		return nil
	}
	v := *display
	switch kind {
	case KindTemperature:
		if u.Temperature == Fahrenheit {
			v = (v - 32) * 5 / 9
		}
	case KindWindSpeed:
		if u.Wind == MilesPerHour {
			v = v / kmhToMph
		}
	case KindPressure:
		if u.Pressure == InchesOfMercury {
			v = v / hPaToInHg
		}
	}
	return &v
}

// Band is a severity category derived from raw metric thresholds.
type Band string

const (
	BandUnavailable Band = "unavailable"
	BandNeutral     Band = "neutral"
	BandHot         Band = "hot"
	BandCold        Band = "cold"
	BandCalm        Band = "calm"
	BandModerate    Band = "moderate"
	BandSevere      Band = "severe"
)

// BandFor classifies a canonical value. Bands never depend on the display
// unit, so 30°C is hot whether it is shown as 30 or 86.
func BandFor(kind Kind, raw *float64) Band {
	if raw == nil {
		return BandUnavailable
	}
	v := *raw
	switch kind {
	case KindTemperature:
		switch {
		case v >= 30:
			return BandHot
		case v <= 10:
			return BandCold
		default:
			return BandNeutral
		}
	case KindWindSpeed:
		switch {
		case v >= 50:
			return BandSevere
		case v >= 20:
			return BandModerate
		default:
			return BandCalm
		}
	default:
		return BandNeutral
	}
}
