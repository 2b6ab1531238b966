package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fintrack"

// PrometheusCollector implements Collector on client_golang metrics.
type PrometheusCollector struct {
	operationDuration *prometheus.HistogramVec
	operationResults  *prometheus.CounterVec
	errors            *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	cascadeLength     prometheus.Histogram
	lockWait          prometheus.Histogram
}

// NewPrometheusCollector creates the collector and registers its metrics
// with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		operationResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_results_total",
			Help:      "Ledger operations by result.",
		}, []string{"operation", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Ledger errors by operation and kind.",
		}, []string{"operation", "kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits.",
		}, []string{"cache"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses.",
		}, []string{"cache"}),
		cascadeLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_cascade_length",
			Help:      "Number of later snapshots rewritten by one delta.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "user_lock_wait_seconds",
			Help:      "Time spent waiting for the per-user mutation lock.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.operationDuration,
		c.operationResults,
		c.errors,
		c.cacheHits,
		c.cacheMisses,
		c.cascadeLength,
		c.lockWait,
	)
	return c
}

func (c *PrometheusCollector) RecordOperationDuration(operation string, d time.Duration) {
	c.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *PrometheusCollector) RecordOperationResult(operation, result string) {
	c.operationResults.WithLabelValues(operation, result).Inc()
}

func (c *PrometheusCollector) RecordError(operation, errKind string) {
	c.errors.WithLabelValues(operation, errKind).Inc()
}

func (c *PrometheusCollector) RecordCacheHit(cache string) {
	c.cacheHits.WithLabelValues(cache).Inc()
}

func (c *PrometheusCollector) RecordCacheMiss(cache string) {
	c.cacheMisses.WithLabelValues(cache).Inc()
}

func (c *PrometheusCollector) RecordCascade(length int) {
	c.cascadeLength.Observe(float64(length))
}

func (c *PrometheusCollector) RecordLockWait(d time.Duration) {
	c.lockWait.Observe(d.Seconds())
}
