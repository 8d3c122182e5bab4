package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exposes metric events as Prometheus collectors.
type PrometheusRecorder struct {
	usersTotal          *prometheus.CounterVec
	rateLimitRejections prometheus.Counter
	requestDuration     *prometheus.HistogramVec
}

// NewPrometheus returns a Recorder registered against reg.
// Pass prometheus.DefaultRegisterer to serve through promhttp.Handler.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		usersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "users_operations_total",
				Help: "Total number of user mutations by operation",
			},
			[]string{"operation"}, // operation: created, updated, deleted
		),
		rateLimitRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_rejections_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"method", "path", "status"},
		),
	}
}

// IncUserCreated increments the user created counter.
func (p *PrometheusRecorder) IncUserCreated() {
	p.usersTotal.WithLabelValues("created").Inc()
}

// IncUserUpdated increments the user updated counter.
func (p *PrometheusRecorder) IncUserUpdated() {
	p.usersTotal.WithLabelValues("updated").Inc()
}

// IncUserDeleted increments the user deleted counter.
func (p *PrometheusRecorder) IncUserDeleted() {
	p.usersTotal.WithLabelValues("deleted").Inc()
}

// IncRateLimitRejected increments the rejected request counter.
func (p *PrometheusRecorder) IncRateLimitRejected() {
	p.rateLimitRejections.Inc()
}

// ObserveRequestDuration records a completed request.
func (p *PrometheusRecorder) ObserveRequestDuration(method, path string, status int, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
