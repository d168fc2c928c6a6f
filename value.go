package compoundgo

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/hupe1980/compoundgo/mapping"
)

// recordReader resolves field names against one record value, either a
// map[string]any or a struct (promoted embedded fields included).
type recordReader struct {
	m  map[string]any
	rv reflect.Value
}

func newRecordReader(value any) (recordReader, error) {
	if m, ok := value.(map[string]any); ok {
		return recordReader{m: m}, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return recordReader{}, fmt.Errorf("compoundgo: record value must be a struct or map[string]any, got %T", value)
	}
	return recordReader{rv: rv}, nil
}

func (r recordReader) lookup(name string) (any, bool) {
	if r.m != nil {
		v, ok := r.m[name]
		return v, ok
	}
	fv := r.rv.FieldByName(name)
	if !fv.IsValid() {
		return nil, false
	}
	return fv.Interface(), true
}

func valueMismatch(v any, want string) error {
	return fmt.Errorf("%w: value of type %T where %s is required", mapping.ErrSchemaMismatch, v, want)
}

// asInt64 widens any integer-kind value to int64. Timestamps store their
// millisecond epoch value; durations store the unit selected by the
// member's variant, microseconds when no variant is set.
func asInt64(v any, variant mapping.Variant) (int64, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UnixMilli(), nil
	case time.Duration:
		switch variant {
		case mapping.VariantDurationSeconds:
			return int64(x / time.Second), nil
		case mapping.VariantDurationMillis:
			return int64(x / time.Millisecond), nil
		default:
			return int64(x / time.Microsecond), nil
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	default:
		return 0, valueMismatch(v, "an integer kind")
	}
}

func asFloat64(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return 0, valueMismatch(v, "a float kind")
	}
}

// intSequence flattens an integer slice or matrix row-major into exactly
// want elements.
func intSequence(v any, want int) ([]int64, error) {
	return flattenSequence(v, want, func(rv reflect.Value) (int64, error) {
		return asInt64(rv.Interface(), mapping.VariantNone)
	})
}

// floatSequence flattens a float slice or matrix row-major into exactly
// want elements.
func floatSequence(v any, want int) ([]float64, error) {
	return flattenSequence(v, want, func(rv reflect.Value) (float64, error) {
		return asFloat64(rv.Interface())
	})
}

func flattenSequence[T any](v any, want int, conv func(reflect.Value) (T, error)) ([]T, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, valueMismatch(v, "a slice")
	}

	out := make([]T, 0, want)
	var walk func(reflect.Value) error
	walk = func(s reflect.Value) error {
		for i := 0; i < s.Len(); i++ {
			e := s.Index(i)
			if e.Kind() == reflect.Slice {
				if err := walk(e); err != nil {
					return err
				}
				continue
			}
			x, err := conv(e)
			if err != nil {
				return err
			}
			out = append(out, x)
		}
		return nil
	}
	if err := walk(rv); err != nil {
		return nil, err
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: sequence has %d elements, layout declares %d",
			mapping.ErrSchemaMismatch, len(out), want)
	}
	return out, nil
}

// putInt writes the low size bytes of v in native byte order.
func putInt(b []byte, size int, v int64) {
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.NativeEndian.PutUint16(b, uint16(v))
	case 4:
		binary.NativeEndian.PutUint32(b, uint32(v))
	default:
		binary.NativeEndian.PutUint64(b, uint64(v))
	}
}

// getInt reads size bytes in native byte order, sign-extended.
func getInt(b []byte, size int) int64 {
	switch size {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.NativeEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.NativeEndian.Uint32(b)))
	default:
		return int64(binary.NativeEndian.Uint64(b))
	}
}

// getUint reads size bytes in native byte order, zero-extended. Used for
// enumeration ordinals.
func getUint(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(b))
	case 4:
		return uint64(binary.NativeEndian.Uint32(b))
	default:
		return binary.NativeEndian.Uint64(b)
	}
}

func putFloat(b []byte, size int, f float64) {
	if size == 4 {
		binary.NativeEndian.PutUint32(b, math.Float32bits(float32(f)))
		return
	}
	binary.NativeEndian.PutUint64(b, math.Float64bits(f))
}

func getFloat(b []byte, size int) float64 {
	if size == 4 {
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(b)))
	}
	return math.Float64frombits(binary.NativeEndian.Uint64(b))
}
