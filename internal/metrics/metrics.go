// Package metrics defines the minimal metrics seam the pipeline depends
// on. Concrete backends (Datadog) live in subpackages; the core transform
// never imports vendor SDKs.
package metrics

import "time"

// Backend receives pipeline metrics.
//
// Implementations must be safe for concurrent use: normalization workers
// may record while the flush loop is submitting.
type Backend interface {
	// Count adds delta to a counter metric.
	Count(name string, delta float64, tags ...string)

	// Timing records one duration sample for a metric.
	Timing(name string, d time.Duration, tags ...string)

	// Flush submits buffered metrics now.
	Flush() error

	// Close stops any background flushing and submits one final time.
	Close() error
}

// Nop discards all metrics. Used when no backend is configured.
type Nop struct{}

func (Nop) Count(string, float64, ...string)        {}
func (Nop) Timing(string, time.Duration, ...string) {}
func (Nop) Flush() error                            { return nil }
func (Nop) Close() error                            { return nil }
