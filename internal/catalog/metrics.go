package catalog

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics counts stats cache outcomes. A nil *CacheMetrics records nothing.
type CacheMetrics struct {
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Invalidations prometheus.Counter
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_stats_cache_hits_total",
			Help: "Stats requests served from cache",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_stats_cache_misses_total",
			Help: "Stats requests that recomputed from storage",
		}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_stats_cache_invalidations_total",
			Help: "Stats cache invalidations",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Invalidations)
	return m
}

func (m *CacheMetrics) hit() {
	if m != nil {
		m.Hits.Inc()
	}
}

func (m *CacheMetrics) miss() {
	if m != nil {
		m.Misses.Inc()
	}
}

func (m *CacheMetrics) invalidated() {
	if m != nil {
		m.Invalidations.Inc()
	}
}
