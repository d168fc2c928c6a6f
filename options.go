package compoundgo

import (
	"log/slog"

	"github.com/hupe1980/compoundgo/mapping"
)

// Allocator provides the native memory backing embedded variable-length
// text. The default allocator maps anonymous off-heap pages; tests can
// substitute an instrumented implementation.
type Allocator interface {
	// Alloc returns the address of a new region of at least size bytes.
	Alloc(size int) (uintptr, error)
	// Free releases a region previously returned by Alloc.
	Free(addr uintptr) error
}

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	allocator        Allocator
	variantTable     mapping.VariantTable
	mapAllFields     bool
}

// Option configures Type constructor behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := compoundgo.NewJSONLogger(slog.LevelInfo)
//	typ, _ := compoundgo.NewType(name, desc, members, compoundgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &compoundgo.BasicMetricsCollector{}
//	typ, _ := compoundgo.NewType(name, desc, members, compoundgo.WithMetricsCollector(metrics))
//	// ... encode, decode ...
//	stats := metrics.GetStats()
//	fmt.Printf("Encodes: %d, Avg latency: %dns\n", stats.EncodeCount, stats.EncodeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithAllocator configures the native allocator used for embedded
// variable-length text. If nil is passed, the process default is used.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithVariantTable replaces the variant table consulted during value
// inference (NewTypeFromValues and friends). Pass an empty table to
// disable variant tagging entirely.
func WithVariantTable(t mapping.VariantTable) Option {
	return func(o *options) {
		o.variantTable = t
	}
}

// WithMapAllFields controls whether struct inference includes fields
// without a `compound` tag. Defaults to true.
func WithMapAllFields(mapAll bool) Option {
	return func(o *options) {
		o.mapAllFields = mapAll
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		variantTable:     mapping.DefaultVariantTable(),
		mapAllFields:     true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}
