package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes recorded by CacheMetrics.
const (
	CacheResultHit     = "hit"
	CacheResultMiss    = "miss"
	CacheResultError   = "error"
	CacheResultShared  = "shared"
	CacheResultSkipped = "skipped"
)

// CacheMetrics records cache-or-compute activity per cache namespace.
type CacheMetrics struct {
	lookups     *prometheus.CounterVec
	computeTime *prometheus.HistogramVec
	computeFail *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	invalidated *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retaildash_cache_lookups_total",
		Help: "Cache lookups by namespace and result.",
	}, []string{"namespace", "result"})
	computeTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retaildash_cache_compute_seconds",
		Help:    "Duration of producer computations run on a cache miss.",
		Buckets: prometheus.DefBuckets,
	}, []string{"namespace"})
	computeFail := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retaildash_cache_compute_failures_total",
		Help: "Producer computations that returned an error.",
	}, []string{"namespace"})
	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retaildash_cache_store_errors_total",
		Help: "Cache store operations that failed and were swallowed.",
	}, []string{"op"})
	invalidated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retaildash_cache_invalidated_keys_total",
		Help: "Keys removed by pattern invalidation.",
	}, []string{"namespace"})
	reg.MustRegister(lookups, computeTime, computeFail, storeErrors, invalidated)
	return &CacheMetrics{
		lookups:     lookups,
		computeTime: computeTime,
		computeFail: computeFail,
		storeErrors: storeErrors,
		invalidated: invalidated,
	}
}

// ObserveLookup counts one lookup outcome (hit, miss, shared, ...).
func (c *CacheMetrics) ObserveLookup(namespace, result string) {
	if c == nil || c.lookups == nil {
		return
	}
	c.lookups.WithLabelValues(normalizeLabel(namespace), normalizeLabel(result)).Inc()
}

// ObserveCompute records how long a producer ran and whether it failed.
func (c *CacheMetrics) ObserveCompute(namespace string, duration time.Duration, err error) {
	if c == nil || c.computeTime == nil {
		return
	}
	ns := normalizeLabel(namespace)
	c.computeTime.WithLabelValues(ns).Observe(duration.Seconds())
	if err != nil {
		c.computeFail.WithLabelValues(ns).Inc()
	}
}

func (c *CacheMetrics) IncStoreError(op string) {
	if c == nil || c.storeErrors == nil {
		return
	}
	c.storeErrors.WithLabelValues(normalizeLabel(op)).Inc()
}

func (c *CacheMetrics) AddInvalidated(namespace string, n int64) {
	if c == nil || c.invalidated == nil || n <= 0 {
		return
	}
	c.invalidated.WithLabelValues(normalizeLabel(namespace)).Add(float64(n))
}
