package compoundgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    encodeCounter   prometheus.Counter
//	    encodeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordEncode(records int, duration time.Duration, err error) {
//	    p.encodeCounter.Add(float64(records))
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordEncode is called after each encode operation.
	// records is the number of records attempted, duration is the total
	// time taken, err is nil if successful.
	RecordEncode(records int, duration time.Duration, err error)

	// RecordDecode is called after each decode operation.
	RecordDecode(records int, duration time.Duration, err error)

	// RecordRelease is called after each release operation.
	// frees is the number of embedded allocations released.
	RecordRelease(frees int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEncode(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordDecode(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordRelease(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EncodeCount       atomic.Int64
	EncodeRecords     atomic.Int64
	EncodeErrors      atomic.Int64
	EncodeTotalNanos  atomic.Int64
	DecodeCount       atomic.Int64
	DecodeRecords     atomic.Int64
	DecodeErrors      atomic.Int64
	DecodeTotalNanos  atomic.Int64
	ReleaseCount      atomic.Int64
	ReleaseFrees      atomic.Int64
	ReleaseErrors     atomic.Int64
	ReleaseTotalNanos atomic.Int64
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(records int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeRecords.Add(int64(records))
	b.EncodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(records int, duration time.Duration, err error) {
	b.DecodeCount.Add(1)
	b.DecodeRecords.Add(int64(records))
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(frees int, duration time.Duration, err error) {
	b.ReleaseCount.Add(1)
	b.ReleaseFrees.Add(int64(frees))
	b.ReleaseTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReleaseErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EncodeCount:    b.EncodeCount.Load(),
		EncodeRecords:  b.EncodeRecords.Load(),
		EncodeErrors:   b.EncodeErrors.Load(),
		EncodeAvgNanos: avgNanos(&b.EncodeTotalNanos, &b.EncodeCount),
		DecodeCount:    b.DecodeCount.Load(),
		DecodeRecords:  b.DecodeRecords.Load(),
		DecodeErrors:   b.DecodeErrors.Load(),
		DecodeAvgNanos: avgNanos(&b.DecodeTotalNanos, &b.DecodeCount),
		ReleaseCount:   b.ReleaseCount.Load(),
		ReleaseFrees:   b.ReleaseFrees.Load(),
		ReleaseErrors:  b.ReleaseErrors.Load(),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	c := count.Load()
	if c == 0 {
		return 0
	}
	return total.Load() / c
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EncodeCount    int64
	EncodeRecords  int64
	EncodeErrors   int64
	EncodeAvgNanos int64
	DecodeCount    int64
	DecodeRecords  int64
	DecodeErrors   int64
	DecodeAvgNanos int64
	ReleaseCount   int64
	ReleaseFrees   int64
	ReleaseErrors  int64
}
