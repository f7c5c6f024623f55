package shell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/i474232898/weather-logger/internal/weather"
)

const notAvailable = "N/A"

type color string

const (
	colorNone    color = ""
	colorRed     color = "\x1b[31m"
	colorGreen   color = "\x1b[32m"
	colorYellow  color = "\x1b[33m"
	colorBlue    color = "\x1b[34m"
	colorMagenta color = "\x1b[35m"
	colorCyan    color = "\x1b[36m"
	colorBold    color = "\x1b[1m"
	colorReset         = "\x1b[0m"
)

// Stdout returns a writer for the terminal and whether it understands ANSI
// colours. On Windows consoles the escapes are translated by go-colorable.
func Stdout() (io.Writer, bool) {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if !tty {
		return os.Stdout, false
	}
	return colorable.NewColorableStdout(), true
}

// palette paints text only when colours are enabled.
type palette struct {
	enabled bool
}

func (p palette) paint(c color, s string) string {
	if !p.enabled || c == colorNone || s == "" {
		return s
	}
	return string(c) + s + colorReset
}

// cell is a rendered table cell. Width is computed on text, never on the
// escape sequences added by paint.
type cell struct {
	text  string
	color color
}

func bandColor(b weather.Band) color {
	switch b {
	case weather.BandUnavailable:
		return colorYellow
	case weather.BandHot, weather.BandSevere:
		return colorRed
	case weather.BandCold:
		return colorBlue
	case weather.BandModerate:
		return colorYellow
	case weather.BandCalm:
		return colorGreen
	default:
		return colorNone
	}
}

// measurementCell formats a canonical value in display units and picks a
// colour from its raw severity band.
func measurementCell(kind weather.Kind, raw *float64, u weather.Units) cell {
	display := weather.ToDisplay(kind, raw, u)
	if display == nil {
		return cell{text: notAvailable, color: colorYellow}
	}

	var text string
	switch kind {
	case weather.KindTemperature:
		text = fmt.Sprintf("%.1f%s", *display, u.Label(kind))
	case weather.KindHumidity:
		text = fmt.Sprintf("%.0f%s", *display, u.Label(kind))
	default:
		text = fmt.Sprintf("%.1f %s", *display, u.Label(kind))
	}

	c := bandColor(weather.BandFor(kind, raw))
	switch kind {
	case weather.KindTemperature:
		if c == colorNone {
			c = colorYellow
		}
	case weather.KindHumidity:
		c = colorGreen
	case weather.KindPressure:
		c = colorCyan
	}
	return cell{text: text, color: c}
}

func coordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func readingRow(r weather.Reading, u weather.Units) []cell {
	return []cell{
		{text: strconv.FormatInt(r.ID, 10), color: colorCyan},
		{text: r.City, color: colorBold},
		{text: coordinate(r.Latitude)},
		{text: coordinate(r.Longitude)},
		measurementCell(weather.KindTemperature, r.TemperatureC, u),
		measurementCell(weather.KindWindSpeed, r.WindSpeedKmh, u),
		measurementCell(weather.KindHumidity, r.HumidityPct, u),
		measurementCell(weather.KindPressure, r.PressureHpa, u),
		{text: r.ObservedAt, color: colorGreen},
	}
}

var tableHeader = []string{
	"ID", "CITY", "LATITUDE", "LONGITUDE", "TEMPERATURE", "WINDSPEED", "HUMIDITY", "PRESSURE", "DATE (UTC)",
}

// renderTable writes readings as an aligned table in display units.
func renderTable(w io.Writer, p palette, readings []weather.Reading, u weather.Units) {
	rows := make([][]cell, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, readingRow(r, u))
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if n := runewidth.StringWidth(c.text); n > widths[i] {
				widths[i] = n
			}
		}
	}

	sep := separator(widths)
	fmt.Fprintln(w, p.paint(colorBold, "WEATHER LOGS"))
	fmt.Fprintln(w, sep)

	head := make([]string, len(tableHeader))
	for i, h := range tableHeader {
		head[i] = p.paint(colorMagenta, runewidth.FillRight(h, widths[i]))
	}
	fmt.Fprintln(w, "| "+strings.Join(head, " | ")+" |")
	fmt.Fprintln(w, sep)

	for _, row := range rows {
		line := make([]string, len(row))
		for i, c := range row {
			padded := runewidth.FillRight(c.text, widths[i])
			if i == 0 {
				padded = runewidth.FillLeft(c.text, widths[i])
			}
			line[i] = p.paint(c.color, padded)
		}
		fmt.Fprintln(w, "| "+strings.Join(line, " | ")+" |")
	}
	fmt.Fprintln(w, sep)
}

func separator(widths []int) string {
	var sb strings.Builder
	sb.WriteString("+")
	for _, n := range widths {
		sb.WriteString(strings.Repeat("-", n+2))
		sb.WriteString("+")
	}
	return sb.String()
}

// summary is the one-line confirmation printed after a reading is logged.
func summary(p palette, r weather.Reading, u weather.Units) string {
	city := r.City
	if city == "" {
		city = "unknown"
	}
	part := func(kind weather.Kind, raw *float64) string {
		c := measurementCell(kind, raw, u)
		return p.paint(c.color, c.text)
	}
	return fmt.Sprintf("WEATHER LOGGED %s:\n TEMPERATURE: %s, WINDSPEED: %s, HUMIDITY: %s, PRESSURE: %s, AT: %s (UTC)",
		city,
		part(weather.KindTemperature, r.TemperatureC),
		part(weather.KindWindSpeed, r.WindSpeedKmh),
		part(weather.KindHumidity, r.HumidityPct),
		part(weather.KindPressure, r.PressureHpa),
		r.ObservedAt,
	)
}
