package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the HTTP and auth collectors.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	ReqDuration   *prometheus.HistogramVec
	InFlight      prometheus.Gauge
	AuthAttempts  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
			[]string{"route", "method", "status"},
		),
		ReqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request duration seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
		),
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "auth_attempts_total", Help: "Sign-up and sign-in attempts"},
			[]string{"method", "outcome"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.ReqDuration, m.InFlight, m.AuthAttempts)
	return m
}

// AuthAttempt records one attempt. A nil receiver is a no-op.
func (m *Metrics) AuthAttempt(method, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(method, outcome).Inc()
}
