package animation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "keyframe"
	subsystem = "cache"
)

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "hits_total",
			Help:      "Count of evaluations served from the cache.",
		},
		[]string{"cache"},
	)
	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "misses_total",
			Help:      "Count of evaluations that had to evaluate the curve.",
		},
		[]string{"cache"},
	)
	cachePurges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "purges_total",
			Help:      "Count of times the cached values of a curve were dropped because the curve changed.",
		},
		[]string{"cache"},
	)
	cacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evictions_total",
			Help:      "Count of values evicted to make room for newer ones.",
		},
		[]string{"cache"},
	)
)

var registerMetrics sync.Once

// Register registers the cache metrics with r. Only the first call has an
// effect.
func Register(r prometheus.Registerer) {
	registerMetrics.Do(func() {
		r.MustRegister(cacheHits)
		r.MustRegister(cacheMisses)
		r.MustRegister(cachePurges)
		r.MustRegister(cacheEvictions)
	})
}

func recordHit(cache string)      { cacheHits.WithLabelValues(cache).Inc() }
func recordMiss(cache string)     { cacheMisses.WithLabelValues(cache).Inc() }
func recordPurge(cache string)    { cachePurges.WithLabelValues(cache).Inc() }
func recordEviction(cache string) { cacheEvictions.WithLabelValues(cache).Inc() }
