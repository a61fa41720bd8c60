package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Endpoints tracks latency and errors per API endpoint.
type Endpoints struct {
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
}

func NewEndpoints(reg prometheus.Registerer) *Endpoints {
	f := promauto.With(reg)
	return &Endpoints{
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finagent",
				Subsystem: "api",
				Name:      "latency_seconds",
				Help:      "Latency of API endpoints",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finagent",
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Errors by API endpoint and kind",
			},
			[]string{"endpoint", "kind"},
		),
	}
}

// Observe records one call. An empty kind means success.
func (e *Endpoints) Observe(endpoint string, start time.Time, kind string) {
	if e == nil {
		return
	}
	e.latency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if kind != "" {
		e.errors.WithLabelValues(endpoint, kind).Inc()
	}
}
