package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records pricing engine computations.
type EngineMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_operation_duration_seconds",
		Help:    "Duration of pricing engine operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_operation_success",
		Help: "Successful pricing engine operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_operation_failure",
		Help: "Failed pricing engine operations.",
	}, []string{"operation"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_cache_hits",
		Help: "Price list cache hits and misses.",
	}, []string{"result"})
	reg.MustRegister(duration, success, failure, cacheHits)
	return &EngineMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		cacheHits: cacheHits,
	}
}

// ObserveDuration records the duration for the named operation.
func (e *EngineMetrics) ObserveDuration(operation string, duration time.Duration) {
	if e == nil || e.duration == nil {
		return
	}
	e.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (e *EngineMetrics) IncSuccess(operation string) {
	if e == nil || e.success == nil {
		return
	}
	e.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (e *EngineMetrics) IncFailure(operation string) {
	if e == nil || e.failure == nil {
		return
	}
	e.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncCacheHit counts a price list cache hit.
func (e *EngineMetrics) IncCacheHit() {
	if e == nil || e.cacheHits == nil {
		return
	}
	e.cacheHits.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts a price list cache miss.
func (e *EngineMetrics) IncCacheMiss() {
	if e == nil || e.cacheHits == nil {
		return
	}
	e.cacheHits.WithLabelValues("miss").Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
