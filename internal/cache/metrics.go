package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports per-namespace cache counters.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewMetrics creates the cache counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pm",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups answered from the cache.",
		}, []string{"namespace"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pm",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that fell through to the database.",
		}, []string{"namespace"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pm",
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Cache operations that failed and were skipped.",
		}, []string{"namespace"}),
	}
	reg.MustRegister(m.hits, m.misses, m.errors)
	return m
}
