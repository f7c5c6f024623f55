package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherlog_provider_requests_total",
			Help: "Provider requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
	providerLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherlog_provider_request_duration_seconds",
			Help:    "Provider request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	readingsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherlog_readings_logged_total",
			Help: "Logging operations by result",
		},
		[]string{"result"},
	)
	missingHourly = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherlog_missing_hourly_total",
			Help: "Observations stored without co-temporal humidity and pressure",
		},
	)
	exportedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherlog_exported_rows_total",
			Help: "Rows written by CSV export",
		},
	)
)

// ObserveProviderRequest records one provider call.
func ObserveProviderRequest(endpoint, outcome string, elapsed time.Duration) {
	providerRequests.WithLabelValues(endpoint, outcome).Inc()
	providerLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordLog counts a finished logging operation; result is "ok" or an error kind.
func RecordLog(result string) {
	readingsLogged.WithLabelValues(result).Inc()
}

func RecordMissingHourly() {
	missingHourly.Inc()
}

func RecordExport(rows int) {
	exportedRows.Add(float64(rows))
}
