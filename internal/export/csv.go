// Package export writes stored readings to CSV in display units.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/i474232898/weather-logger/internal/metrics"
	"github.com/i474232898/weather-logger/internal/weather"
)

// CSV implements weather.Exporter on top of ToFile.
type CSV struct{}

func (CSV) Export(path string, readings []weather.Reading, u weather.Units) (int, error) {
	return ToFile(path, readings, u)
}

// Header returns the CSV header row for units.
func Header(u weather.Units) []string {
	return []string{
		"ID",
		"CITY",
		"LATITUDE",
		"LONGITUDE",
		fmt.Sprintf("TEMPERATURE (%s)", u.Label(weather.KindTemperature)),
		fmt.Sprintf("WINDSPEED (%s)", u.Label(weather.KindWindSpeed)),
		fmt.Sprintf("HUMIDITY (%s)", u.Label(weather.KindHumidity)),
		fmt.Sprintf("PRESSURE (%s)", u.Label(weather.KindPressure)),
		"DATE (UTC)",
	}
}

// ToFile writes readings to path and returns the number of data rows.
// With no readings it returns weather.ErrNothingToExport and leaves path alone.
func ToFile(path string, readings []weather.Reading, u weather.Units) (int, error) {
	if len(readings) == 0 {
		return 0, weather.ErrNothingToExport
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := WriteCSV(f, readings, u)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		return 0, err
	}

	metrics.RecordExport(n)
	return n, nil
}

// WriteCSV writes the header and one row per reading, in the order given.
func WriteCSV(w io.Writer, readings []weather.Reading, u weather.Units) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(u)); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range readings {
		if err := cw.Write(Row(r, u)); err != nil {
			return 0, fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(readings), nil
}

// Row renders one reading. Missing values become empty fields.
func Row(r weather.Reading, u weather.Units) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.City,
		formatRounded(&r.Latitude, 6),
		formatRounded(&r.Longitude, 6),
		formatRounded(weather.ToDisplay(weather.KindTemperature, r.TemperatureC, u), 2),
		formatRounded(weather.ToDisplay(weather.KindWindSpeed, r.WindSpeedKmh, u), 2),
		formatRounded(r.HumidityPct, 1),
		formatRounded(weather.ToDisplay(weather.KindPressure, r.PressureHpa, u), 2),
		r.ObservedAt,
	}
}

// formatRounded rounds half to even and always keeps at least one decimal,
// so 30 is written as "30.0".
func formatRounded(v *float64, places int) string {
	if v == nil {
		return ""
	}
	scale := math.Pow10(places)
	s := strconv.FormatFloat(math.RoundToEven(*v*scale)/scale, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
