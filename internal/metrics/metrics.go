// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes used as label values.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
)

var (
	// ContactSubmissions counts contact requests by outcome.
	ContactSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact form submissions by outcome",
		},
		[]string{"outcome"},
	)

	// SMTPSendDuration measures whole SMTP sessions, dial to quit.
	SMTPSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smtp_send_duration_seconds",
			Help:    "SMTP session duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"outcome"},
	)

	// HTTPRequestDuration measures handled HTTP requests.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordSubmission increments the submission counter for outcome.
func RecordSubmission(outcome string) {
	ContactSubmissions.WithLabelValues(outcome).Inc()
}

// RecordSMTPSend records one SMTP session.
func RecordSMTPSend(outcome string, d time.Duration) {
	SMTPSendDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
