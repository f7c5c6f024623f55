package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-logger/internal/weather"
)

// Logger is the part of weather.Service the scheduler drives.
type Logger interface {
	LogByCity(ctx context.Context, name string) (weather.Reading, error)
}

// Scheduler periodically logs the weather for configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Logger
	cities    []string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. A non-positive interval or an empty city list
// leaves it idle.
func New(cities []string, interval time.Duration, service Logger, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		cities:    cities,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("auto-logging disabled")
		return nil
	}
	if len(s.cities) == 0 {
		s.logger.Info("no cities configured; nothing to schedule")
		return nil
	}

	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Every(s.interval).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("auto-logging started", "interval", s.interval, "cities", s.cities)
	return nil
}

// RunOnce logs every configured city one after another. Failures are
// logged and never stop the remaining cities.
func (s *Scheduler) RunOnce() {
	s.logger.Info("running auto-log job")

	var failed int
	for _, city := range s.cities {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		r, err := s.service.LogByCity(ctx, city)
		cancel()

		if err != nil {
			failed++
			s.logger.Warn("auto-log failed", "city", city, "kind", weather.KindOf(err).String(), "error", err)
			continue
		}
		s.logger.Debug("auto-logged", "city", r.City, "id", r.ID)
	}

	s.logger.Info("completed auto-log job", "cities", len(s.cities), "failed", failed)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
