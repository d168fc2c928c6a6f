package mapping

import (
	"reflect"
	"time"
)

// Variant is a semantic tag layered on top of a storage type, e.g. "this
// 64-bit integer is actually a millisecond timestamp". The codec only
// produces the tag; persisting it as member metadata is the storage
// engine's business.
type Variant string

const (
	VariantNone Variant = ""

	VariantTimestampMillis Variant = "timestamp-milliseconds-since-start-of-epoch"

	VariantDurationSeconds Variant = "time-duration-seconds"
	VariantDurationMillis  Variant = "time-duration-milliseconds"
	VariantDurationMicros  Variant = "time-duration-microseconds"
)

// VariantTable maps runtime types to the variant attached to members
// inferred from values of that type. It is explicit configuration threaded
// through the inference engine, not hidden process-wide state.
type VariantTable map[reflect.Type]Variant

// DefaultVariantTable returns the standard table: timestamps for time.Time
// and durations for time.Duration.
func DefaultVariantTable() VariantTable {
	return VariantTable{
		reflect.TypeOf(time.Time{}):      VariantTimestampMillis,
		reflect.TypeOf(time.Duration(0)): VariantDurationMicros,
	}
}

// durationVariant refines the duration variant using the duration's own
// resolution: the coarsest unit that represents it exactly, microseconds
// at the finest.
func durationVariant(d time.Duration) Variant {
	switch {
	case d%time.Second == 0:
		return VariantDurationSeconds
	case d%time.Millisecond == 0:
		return VariantDurationMillis
	default:
		return VariantDurationMicros
	}
}
