// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Report run metrics
	ReportRunsTotal *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	GroupFailures   prometheus.Counter

	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec

	// Sink metrics
	NotificationsSent *prometheus.CounterVec
	LedgerWrites      *prometheus.CounterVec
	LedgerRetries     prometheus.Counter

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lp_yield_reporter"
	}

	return &Metrics{
		ReportRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "runs_total",
			Help:      "Total number of report runs by cadence and status",
		}, []string{"cadence", "status"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "run_duration_seconds",
			Help:      "Report run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"cadence"}),
		GroupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "group_failures_total",
			Help:      "Total number of per-group report failures",
		}),
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of positions API requests by outcome",
		}, []string{"outcome"}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Total number of notification messages sent by status",
		}, []string{"status"}),
		LedgerWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "writes_total",
			Help:      "Total number of ledger period writes by status",
		}, []string{"status"}),
		LedgerRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "retries_total",
			Help:      "Total number of ledger request retries after rate limiting",
		}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last fully successful report run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordReportRun records a completed report run.
func RecordReportRun(cadence, status string, durationSeconds float64) {
	DefaultMetrics.ReportRunsTotal.WithLabelValues(cadence, status).Inc()
	DefaultMetrics.RunDuration.WithLabelValues(cadence).Observe(durationSeconds)
}

// RecordGroupFailure increments the per-group failure counter.
func RecordGroupFailure() {
	DefaultMetrics.GroupFailures.Inc()
}

// RecordUpstreamRequest records one positions API request outcome.
func RecordUpstreamRequest(outcome string) {
	DefaultMetrics.UpstreamRequests.WithLabelValues(outcome).Inc()
}

// RecordNotification records one notification send attempt.
func RecordNotification(status string) {
	DefaultMetrics.NotificationsSent.WithLabelValues(status).Inc()
}

// RecordLedgerWrite records one ledger period write outcome.
func RecordLedgerWrite(status string) {
	DefaultMetrics.LedgerWrites.WithLabelValues(status).Inc()
}

// RecordLedgerRetry increments the ledger retry counter.
func RecordLedgerRetry() {
	DefaultMetrics.LedgerRetries.Inc()
}

// SetLastSuccessfulRun updates the last successful run gauge.
func SetLastSuccessfulRun(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulRun.Set(float64(unixSeconds))
}
