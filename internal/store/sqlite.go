package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-logger/internal/weather"
)

//go:embed sql/schema.sql
var schemaSQL string

const readingColumns = `id, city, latitude, longitude, temperature_c, windspeed_kmh, humidity_pct, pressure_hpa, observed_at`

// Options configures NewSQLite.
type Options struct {
	// Path is a file path, a "file:" URI or ":memory:".
	Path string
	// MaxOpenConns defaults to 1; SQLite has a single writer anyway.
	MaxOpenConns int
	// LogSQL routes every statement through a debug-level slog connector.
	LogSQL bool
	Logger *slog.Logger
	// Now is the insert clock; defaults to time.Now.
	Now func() time.Time
}

// SQLiteStore implements weather.Store on top of mattn/go-sqlite3.
// Every operation checks out its own connection and returns it before
// the call completes.
type SQLiteStore struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewSQLite opens (or creates) the database and applies the schema. The
// schema is idempotent, so this is safe on every startup.
func NewSQLite(opts Options) (*SQLiteStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	dsn, err := buildDSN(opts.Path)
	if err != nil {
		return nil, weather.StorageError("open", err)
	}

	var db *sql.DB
	if opts.LogSQL {
		connector, err := NewLoggingConnector(dsn, logger)
		if err != nil {
			return nil, weather.StorageError("open", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, weather.StorageError("open", err)
		}
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)

	s := &SQLiteStore{db: db, now: now, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func buildDSN(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("sqlite path is empty")
	}

	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	switch {
	case path == ":memory:":
		return "file::memory:?" + strings.Join(params, "&"), nil
	case strings.HasPrefix(path, "file:"):
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// migrate runs the schema one statement at a time so it also works through
// the logging connector, which prepares statements individually.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	return s.withConn(ctx, "migrate", func(conn *sql.Conn) error {
		for _, stmt := range strings.Split(schemaSQL, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// withConn scopes a pooled connection to fn and wraps any failure as a
// storage error for op.
func (s *SQLiteStore) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return weather.StorageError(op, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Warn("close sqlite conn", "op", op, "error", err)
		}
	}()

	if err := fn(conn); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return weather.StorageError(op, err)
	}
	return nil
}

func (s *SQLiteStore) InsertReading(ctx context.Context, r weather.Reading) (weather.Reading, error) {
	r.ObservedAt = s.now().UTC().Format(weather.TimestampLayout)

	err := s.withConn(ctx, "insert reading", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`INSERT INTO weather_readings (city, latitude, longitude, temperature_c, windspeed_kmh, humidity_pct, pressure_hpa, observed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			nullString(r.City), r.Latitude, r.Longitude,
			r.TemperatureC, r.WindSpeedKmh, r.HumidityPct, r.PressureHpa,
			r.ObservedAt,
		)
		if err != nil {
			return err
		}
		r.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return weather.Reading{}, err
	}
	return r, nil
}

func (s *SQLiteStore) GetReading(ctx context.Context, id int64) (weather.Reading, error) {
	var out weather.Reading
	err := s.withConn(ctx, "get reading", func(conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx, `SELECT `+readingColumns+` FROM weather_readings WHERE id = ?`, id)
		r, err := scanReading(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}

func (s *SQLiteStore) QueryReadings(ctx context.Context, q weather.Query) ([]weather.Reading, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + readingColumns + ` FROM weather_readings WHERE 1=1`)
	if q.CityContains != "" {
		// instr is case-sensitive, unlike LIKE.
		sb.WriteString(` AND instr(city, ?) > 0`)
		args = append(args, q.CityContains)
	}
	if q.DateStartsWith != "" {
		sb.WriteString(` AND substr(observed_at, 1, length(?)) = ?`)
		args = append(args, q.DateStartsWith, q.DateStartsWith)
	}
	sb.WriteString(` ORDER BY id DESC`)
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	var out []weather.Reading
	err := s.withConn(ctx, "query readings", func(conn *sql.Conn) error {
		var err error
		out, err = s.queryReadings(ctx, conn, sb.String(), args...)
		return err
	})
	return out, err
}

func (s *SQLiteStore) AllReadings(ctx context.Context) ([]weather.Reading, error) {
	var out []weather.Reading
	err := s.withConn(ctx, "all readings", func(conn *sql.Conn) error {
		var err error
		out, err = s.queryReadings(ctx, conn, `SELECT `+readingColumns+` FROM weather_readings ORDER BY id`)
		return err
	})
	return out, err
}

func (s *SQLiteStore) queryReadings(ctx context.Context, conn *sql.Conn, query string, args ...any) ([]weather.Reading, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("close readings rows", "error", err)
		}
	}()

	var out []weather.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertError writes a diagnostic row. Failures are dropped so that error
// reporting never turns into a second error.
func (s *SQLiteStore) InsertError(ctx context.Context, tag, message string) {
	loggedAt := s.now().UTC().Format(weather.TimestampLayout)
	err := s.withConn(ctx, "insert error", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO error_log (logged_at, context, message) VALUES (?, ?, ?)`,
			loggedAt, tag, message,
		)
		return err
	})
	if err != nil {
		s.logger.Debug("error log write dropped", "context", tag, "error", err)
	}
}

// Close releases the underlying pool.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (weather.Reading, error) {
	var (
		r                    weather.Reading
		city                 sql.NullString
		temp, wind, hum, prs sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &city, &r.Latitude, &r.Longitude, &temp, &wind, &hum, &prs, &r.ObservedAt); err != nil {
		return weather.Reading{}, err
	}
	r.City = city.String
	r.TemperatureC = nullFloat(temp)
	r.WindSpeedKmh = nullFloat(wind)
	r.HumidityPct = nullFloat(hum)
	r.PressureHpa = nullFloat(prs)
	return r, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
