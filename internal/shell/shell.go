// Package shell implements the interactive numbered-menu front end.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/weather-logger/internal/weather"
)

// Service is what the shell needs from weather.Service.
type Service interface {
	DefaultLocation() weather.Location
	LogCurrent(ctx context.Context) (weather.Reading, error)
	LogByCity(ctx context.Context, name string) (weather.Reading, error)
	ListRecent(ctx context.Context, n int) ([]weather.Reading, error)
	Search(ctx context.Context, city, date string) ([]weather.Reading, error)
	Export(ctx context.Context, path string, u weather.Units) (int, error)
}

type Options struct {
	RecentLimit int
	ExportPath  string
	// Color enables ANSI colours in output.
	Color bool
}

type Shell struct {
	svc   Service
	in    *bufio.Reader
	out   io.Writer
	opts  Options
	paint palette
	units weather.Units
}

func New(svc Service, in io.Reader, out io.Writer, opts Options) *Shell {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 20
	}
	if opts.ExportPath == "" {
		opts.ExportPath = "ADVANCED_WEATHER_LOGS.csv"
	}
	return &Shell{
		svc:   svc,
		in:    bufio.NewReader(in),
		out:   out,
		opts:  opts,
		paint: palette{enabled: opts.Color},
		units: weather.DefaultUnits(),
	}
}

// Run asks for display units and then serves the menu until the user
// exits or input ends. Operation failures are reported and never end the loop.
func (s *Shell) Run(ctx context.Context) error {
	units, err := s.promptUnits()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	s.units = units

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		choice, err := s.prompt(s.paint.paint(colorCyan, "CHOOSE AN OPTION (1-6): "))
		if errors.Is(err, io.EOF) {
			s.println("")
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			s.logCurrent(ctx)
		case "2":
			if err := s.logByCity(ctx); err != nil {
				return eofAsExit(err)
			}
		case "3":
			s.viewRecent(ctx)
		case "4":
			if err := s.search(ctx); err != nil {
				return eofAsExit(err)
			}
		case "5":
			s.export(ctx)
		case "6":
			s.println(s.paint.paint(colorRed, "GOODBYE"))
			return nil
		default:
			s.println(s.paint.paint(colorYellow, "INVALID CHOICE"))
		}
	}
}

func eofAsExit(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Shell) promptUnits() (weather.Units, error) {
	s.println(s.paint.paint(colorCyan, "CHOOSE DISPLAY UNITS (PRESS ENTER TO USE DEFAULTS)"))
	t, err := s.prompt("TEMPERATURE (C/F) [C]: ")
	if err != nil {
		return weather.Units{}, err
	}
	w, err := s.prompt("WIND (kmh/mph) [kmh]: ")
	if err != nil {
		return weather.Units{}, err
	}
	p, err := s.prompt("PRESSURE (hPa/inHg) [hPa]: ")
	if err != nil {
		return weather.Units{}, err
	}
	return weather.ParseUnits(t, w, p), nil
}

func (s *Shell) printMenu() {
	s.println("")
	s.println(s.paint.paint(colorCyan, "======== ADVANCED WEATHER LOGGER ========="))
	s.println(fmt.Sprintf("1. LOG CURRENT WEATHER (DEFAULT LOCATION: %s)", strings.ToUpper(s.svc.DefaultLocation().City)))
	s.println("2. LOG BY CITY NAME")
	s.println(fmt.Sprintf("3. VIEW LOGS (LATEST %d)", s.opts.RecentLimit))
	s.println("4. SEARCH LOGS BY CITY/DATE")
	s.println("5. EXPORT LOGS TO CSV")
	s.println("6. EXIT")
}

func (s *Shell) logCurrent(ctx context.Context) {
	s.println(s.paint.paint(colorGreen, "FETCHING WEATHER..."))
	r, err := s.svc.LogCurrent(ctx)
	if err != nil {
		s.reportLogError(s.svc.DefaultLocation().City, err)
		return
	}
	s.println(summary(s.paint, r, s.units))
}

func (s *Shell) logByCity(ctx context.Context) error {
	city, err := s.prompt(s.paint.paint(colorBlue, "CITY NAME (LONDON, CAIRO): "))
	if err != nil {
		return err
	}
	if city == "" {
		return nil
	}

	s.println(s.paint.paint(colorGreen, "FETCHING WEATHER..."))
	r, err := s.svc.LogByCity(ctx, city)
	if err != nil {
		s.reportLogError(city, err)
		return nil
	}
	s.println(summary(s.paint, r, s.units))
	return nil
}

func (s *Shell) reportLogError(city string, err error) {
	var msg string
	switch weather.KindOf(err) {
	case weather.KindEmptyResult:
		msg = fmt.Sprintf("GEOCODING: NO RESULTS FOR '%s'\nCOULD NOT GEOCODE CITY: ABORTING LOG.", city)
	case weather.KindNetwork:
		msg = fmt.Sprintf("NETWORK ERROR: %v\nCOULD NOT FETCH WEATHER: NOT LOGGED.", err)
	case weather.KindMalformedResponse:
		msg = "NO CURRENT_WEATHER IN API RESPONSE.\nCOULD NOT FETCH WEATHER: NOT LOGGED."
	case weather.KindStorage:
		msg = fmt.Sprintf("DATABASE ERROR WHILE LOGGING: %v", err)
	default:
		msg = fmt.Sprintf("UNEXPECTED ERROR WHILE LOGGING: %v", err)
	}
	s.println(s.paint.paint(colorRed, msg))
}

func (s *Shell) viewRecent(ctx context.Context) {
	readings, err := s.svc.ListRecent(ctx, s.opts.RecentLimit)
	s.show(readings, err)
}

func (s *Shell) search(ctx context.Context) error {
	city, err := s.prompt("ENTER CITY (OR LEAVE BLANK): ")
	if err != nil {
		return err
	}
	date, err := s.prompt("ENTER DATE (YYYY-MM-DD OR BLANK): ")
	if err != nil {
		return err
	}
	readings, err := s.svc.Search(ctx, city, date)
	s.show(readings, err)
	return nil
}

func (s *Shell) show(readings []weather.Reading, err error) {
	if err != nil {
		s.println(s.paint.paint(colorRed, fmt.Sprintf("DATABASE READ ERROR: %v", err)))
		return
	}
	if len(readings) == 0 {
		s.println(s.paint.paint(colorYellow, "NO WEATHER LOGS YET."))
		return
	}
	renderTable(s.out, s.paint, readings, s.units)
}

func (s *Shell) export(ctx context.Context) {
	n, err := s.svc.Export(ctx, s.opts.ExportPath, s.units)
	switch {
	case weather.IsNothingToExport(err):
		s.println(s.paint.paint(colorYellow, "NO LOGS TO EXPORT."))
	case err != nil:
		s.println(s.paint.paint(colorRed, fmt.Sprintf("CSV EXPORT ERROR: %v", err)))
	default:
		s.println(s.paint.paint(colorGreen, fmt.Sprintf("EXPORTED %d rows to %s", n, s.opts.ExportPath)))
	}
}

// prompt writes label and returns the trimmed answer. A final line without
// a newline is still returned; io.EOF is reported only when nothing was read.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}
