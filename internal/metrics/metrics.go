package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ScansRunning is the number of page scans currently executing.
	ScansRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scans_running",
			Help: "Number of page scans currently running",
		},
	)

	// ScansTotal counts finished scans by outcome (completed, error).
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_total",
			Help: "Total number of scans finished by outcome",
		},
		[]string{"outcome"},
	)

	// EmailsAttachedTotal counts emails attached to applications.
	EmailsAttachedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_attached_total",
			Help: "Total number of inbound emails attached to applications",
		},
	)

	// PromotionsTotal counts accepted status/metadata promotions.
	PromotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promotions_total",
			Help: "Total number of applications promoted from email signals",
		},
	)
)

var (
	uuidPathSegment = regexp.MustCompile(`/[0-9a-fA-F-]{16,}(/|$)`)
	initOnce        sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, ScansRunning, ScansTotal,
			EmailsAttachedTotal, PromotionsTotal)
	})
}

// NormalizePath reduces cardinality by replacing id path segments with {id}.
// E.g. /v1/applications/5f0c.../scan -> /v1/applications/{id}/scan.
func NormalizePath(path string) string {
	return uuidPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncScansRunning increments the running scans gauge.
func IncScansRunning() {
	ScansRunning.Inc()
}

// DecScansRunning decrements the running scans gauge.
func DecScansRunning() {
	ScansRunning.Dec()
}

// IncScansTotal increments the scan counter for the given outcome.
func IncScansTotal(outcome string) {
	ScansTotal.WithLabelValues(outcome).Inc()
}

// AddAttachCounts records one RunAttach pass.
func AddAttachCounts(attached, promoted int) {
	EmailsAttachedTotal.Add(float64(attached))
	PromotionsTotal.Add(float64(promoted))
}
