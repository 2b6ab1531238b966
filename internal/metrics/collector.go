// Package metrics defines the instrumentation hooks used by the ledger
// services, with a no-op and a Prometheus implementation.
package metrics

import "time"

// Operation results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Collector defines the interface for collecting ledger metrics
type Collector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Error metrics, errKind is an errors.Kind value
	RecordError(operation, errKind string)

	// Cache metrics
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)

	// Snapshot chain metrics
	RecordCascade(length int)

	// Lock metrics
	RecordLockWait(duration time.Duration)
}

// NoopCollector is a no-op implementation of Collector
type NoopCollector struct{}

func (NoopCollector) RecordOperationDuration(string, time.Duration) {}
func (NoopCollector) RecordOperationResult(string, string)          {}
func (NoopCollector) RecordError(string, string)                    {}
func (NoopCollector) RecordCacheHit(string)                         {}
func (NoopCollector) RecordCacheMiss(string)                        {}
func (NoopCollector) RecordCascade(int)                             {}
func (NoopCollector) RecordLockWait(time.Duration)                  {}

// OrNoop returns c, or a NoopCollector when c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return NoopCollector{}
	}
	return c
}
