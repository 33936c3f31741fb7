package facility

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for facility lookups.
type Metrics struct {
	UpstreamDuration *prometheus.HistogramVec
	CacheTotal       *prometheus.CounterVec
}

// NewMetrics registers and returns facility metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carepath_facility_upstream_duration_seconds",
			Help:    "Duration of map data service calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"service", "status"}),
		CacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_facility_cache_total",
			Help: "Facility cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.UpstreamDuration, m.CacheTotal)
	return m
}

// Hooks returns client Hooks that update the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnUpstream: func(service string, duration float64, err error) {
			status := "success"
			if err != nil {
				status = "error"
			}
			m.UpstreamDuration.WithLabelValues(service, status).Observe(duration)
		},
		OnCache: func(hit bool) {
			result := "miss"
			if hit {
				result = "hit"
			}
			m.CacheTotal.WithLabelValues(result).Inc()
		},
	}
}
