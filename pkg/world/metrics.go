package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates per-type store counters. A nil *Metrics disables
// observation, so worlds carry it unconditionally.
type Metrics struct {
	loads     *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	writes    *prometheus.CounterVec
	conflicts *prometheus.CounterVec
}

// NewMetrics constructs and registers the store counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balloon_store_loads_total",
			Help: "Balloons materialized from the blob store, per type.",
		}, []string{"type"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balloon_store_cache_hits_total",
			Help: "Lookups served from the in-memory instance cache, per type.",
		}, []string{"type"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balloon_store_writes_total",
			Help: "New balloons persisted to the blob store, per type.",
		}, []string{"type"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balloon_store_conflicts_total",
			Help: "Tracking attempts rejected due to conflicting definitions, per type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.loads, m.cacheHits, m.writes, m.conflicts)
	return m
}

func (m *Metrics) observeLoad(typeName string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(typeName).Inc()
}

func (m *Metrics) observeCacheHit(typeName string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(typeName).Inc()
}

func (m *Metrics) observeWrite(typeName string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(typeName).Inc()
}

func (m *Metrics) observeConflict(typeName string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(typeName).Inc()
}
