package compoundgo

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/compoundgo/internal/varstr"
	"github.com/hupe1980/compoundgo/layout"
	"github.com/hupe1980/compoundgo/mapping"
)

// DecodeRecord decodes one record from the start of buf into a map keyed
// by field name.
//
// Integers come back at their stored width (int8 through int64), members
// with a timestamp variant as time.Time and duration variants as
// time.Duration. Enumeration members decode to their symbol string (or
// []string for arrays); an ordinal outside the symbol table yields the
// enum.Unclassified fallback rather than an error. Variable-length text
// is copied out; the embedded allocation stays owned by the buffer until
// Release.
func (t *Type) DecodeRecord(buf []byte) (map[string]any, error) {
	start := time.Now()
	records, err := t.decodeRecords(buf, 1)
	t.metrics.RecordDecode(1, time.Since(start), err)
	t.logger.LogDecode(1, err)
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

// DecodeRecords decodes all complete records in buf; trailing bytes that
// do not fill a record are ignored.
func (t *Type) DecodeRecords(buf []byte) ([]map[string]any, error) {
	start := time.Now()
	n := 0
	if buf != nil {
		n = len(buf) / t.recordSize
	}
	records, err := t.decodeRecords(buf, n)
	t.metrics.RecordDecode(n, time.Since(start), err)
	t.logger.LogDecode(n, err)
	return records, err
}

func (t *Type) decodeRecords(buf []byte, n int) ([]map[string]any, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}
	if len(buf) < n*t.recordSize {
		return nil, fmt.Errorf("%w: %d records need %d bytes, buffer has %d",
			ErrShortBuffer, n, n*t.recordSize, len(buf))
	}

	records := make([]map[string]any, n)
	for r := 0; r < n; r++ {
		rec := make(map[string]any, len(t.wire))
		base := r * t.recordSize
		for i, mi := range t.wire {
			m := t.members[i]
			v, err := t.decodeMember(m, mi, buf, base+mi.Offset)
			if err != nil {
				return nil, fmt.Errorf("compoundgo: member %q: %w", mi.Name, err)
			}
			rec[m.Field()] = v
		}
		records[r] = rec
	}
	return records, nil
}

func (t *Type) decodeMember(m *mapping.MemberMapping, mi layout.MemberInfo, buf []byte, off int) (any, error) {
	switch mi.Class {
	case layout.ClassBoolean:
		return buf[off] != 0, nil

	case layout.ClassInteger:
		if mi.Count > 1 {
			return decodeIntSequence(buf, off, mi), nil
		}
		n := getInt(buf[off:], mi.ElementSize)
		switch mi.Variant {
		case mapping.VariantTimestampMillis:
			return time.UnixMilli(n), nil
		case mapping.VariantDurationSeconds:
			return time.Duration(n) * time.Second, nil
		case mapping.VariantDurationMillis:
			return time.Duration(n) * time.Millisecond, nil
		case mapping.VariantDurationMicros:
			return time.Duration(n) * time.Microsecond, nil
		}
		return sizedInt(n, mi.ElementSize), nil

	case layout.ClassFloat:
		if mi.Count > 1 {
			return decodeFloatSequence(buf, off, mi), nil
		}
		f := getFloat(buf[off:], mi.ElementSize)
		if mi.ElementSize == 4 {
			return float32(f), nil
		}
		return f, nil

	case layout.ClassBitfield:
		words := make([]uint64, mi.Count)
		for i := range words {
			words[i] = uint64(getInt(buf[off+i*8:], 8))
		}
		return bitset.FromWithLength(uint(m.ElementCount()), words), nil

	case layout.ClassString:
		if m.IsVariableLength() {
			return varstr.DecodeString(buf, off)
		}
		raw := buf[off : off+mi.ElementSize]
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		return string(raw), nil

	case layout.ClassEnum:
		et := m.Enum()
		if mi.Count > 1 {
			symbols := make([]string, mi.Count)
			for i := range symbols {
				ord := getUint(buf[off+i*mi.ElementSize:], mi.ElementSize)
				symbols[i] = et.Decode(int(ord))
			}
			return symbols, nil
		}
		ord := getUint(buf[off:], mi.ElementSize)
		return et.Decode(int(ord)), nil

	default:
		return nil, fmt.Errorf("member class %s is not decodable", mi.Class)
	}
}

// sizedInt narrows a stored integer back to the width it was written at.
func sizedInt(n int64, size int) any {
	switch size {
	case 1:
		return int8(n)
	case 2:
		return int16(n)
	case 4:
		return int32(n)
	default:
		return n
	}
}

func decodeIntSequence(buf []byte, off int, mi layout.MemberInfo) any {
	read := func(i int) int64 { return getInt(buf[off+i*mi.ElementSize:], mi.ElementSize) }

	if len(mi.Dimensions) == 2 {
		switch mi.ElementSize {
		case 1:
			return decodeMatrix(mi.Dimensions, func(i int) int8 { return int8(read(i)) })
		case 2:
			return decodeMatrix(mi.Dimensions, func(i int) int16 { return int16(read(i)) })
		case 4:
			return decodeMatrix(mi.Dimensions, func(i int) int32 { return int32(read(i)) })
		default:
			return decodeMatrix(mi.Dimensions, read)
		}
	}
	switch mi.ElementSize {
	case 1:
		return decodeVector(mi.Count, func(i int) int8 { return int8(read(i)) })
	case 2:
		return decodeVector(mi.Count, func(i int) int16 { return int16(read(i)) })
	case 4:
		return decodeVector(mi.Count, func(i int) int32 { return int32(read(i)) })
	default:
		return decodeVector(mi.Count, read)
	}
}

func decodeFloatSequence(buf []byte, off int, mi layout.MemberInfo) any {
	read := func(i int) float64 { return getFloat(buf[off+i*mi.ElementSize:], mi.ElementSize) }

	if len(mi.Dimensions) == 2 {
		if mi.ElementSize == 4 {
			return decodeMatrix(mi.Dimensions, func(i int) float32 { return float32(read(i)) })
		}
		return decodeMatrix(mi.Dimensions, read)
	}
	if mi.ElementSize == 4 {
		return decodeVector(mi.Count, func(i int) float32 { return float32(read(i)) })
	}
	return decodeVector(mi.Count, read)
}

func decodeVector[T any](n int, elem func(int) T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = elem(i)
	}
	return out
}

// decodeMatrix rebuilds a row-major [rows][cols] matrix.
func decodeMatrix[T any](dims []int, elem func(int) T) [][]T {
	rows, cols := dims[0], dims[1]
	out := make([][]T, rows)
	for r := range out {
		row := make([]T, cols)
		for c := range row {
			row[c] = elem(r*cols + c)
		}
		out[r] = row
	}
	return out
}
