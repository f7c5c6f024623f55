package weather

// TimestampLayout is the layout of every timestamp the store writes.
// It sorts lexicographically, so a date prefix ("2024-05-01") filters by day.
const TimestampLayout = "2006-01-02 15:04:05"

// Location is a coordinate pair with an optional display name.
type Location struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is the top match returned by a geocoder.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Observation is a provider reading before it is persisted.
// All values are canonical metric units; nil means the provider had no data.
type Observation struct {
	Time         string
	TemperatureC *float64
	WindSpeedKmh *float64
	HumidityPct  *float64
	PressureHpa  *float64
}

// Reading is a persisted weather log row. Numeric fields always hold
// canonical metric values, never display units.
type Reading struct {
	ID           int64    `json:"id"`
	City         string   `json:"city,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	TemperatureC *float64 `json:"temperatureC"`
	WindSpeedKmh *float64 `json:"windspeedKmh"`
	HumidityPct  *float64 `json:"humidityPercent"`
	PressureHpa  *float64 `json:"pressureHpa"`
	ObservedAt   string   `json:"observedAt"`
}

// NewReading builds an unsaved reading for loc from a provider observation.
func NewReading(loc Location, obs Observation) Reading {
	return Reading{
		City:         loc.City,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		TemperatureC: obs.TemperatureC,
		WindSpeedKmh: obs.WindSpeedKmh,
		HumidityPct:  obs.HumidityPct,
		PressureHpa:  obs.PressureHpa,
	}
}

// Query filters QueryReadings. Zero values disable the matching filter.
type Query struct {
	// Limit caps the number of rows; <= 0 means no cap.
	Limit int
	// CityContains is a case-sensitive substring of the city name.
	CityContains string
	// DateStartsWith is a prefix of ObservedAt.
	DateStartsWith string
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
