package compoundgo

import (
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/compoundgo/enum"
	"github.com/hupe1980/compoundgo/internal/varstr"
	"github.com/hupe1980/compoundgo/layout"
	"github.com/hupe1980/compoundgo/mapping"
)

// EncodeRecord encodes one record value into buf, which must hold at
// least RecordSize bytes. The value is a struct (or pointer to struct)
// whose fields resolve the member bindings, or a map[string]any keyed by
// field name.
//
// Fixed-length text shorter than its declared length is NUL-padded;
// longer text is truncated. Variable-length text members embed native
// allocations into the buffer; such a buffer must be passed to Release
// exactly once after its final consumer has read it. If the encode fails,
// allocations already embedded by this call are released and the buffer
// needs no Release.
func (t *Type) EncodeRecord(value any, buf []byte) error {
	start := time.Now()
	err := t.encodeRecords([]any{value}, buf)
	t.metrics.RecordEncode(1, time.Since(start), err)
	t.logger.LogEncode(1, err)
	return err
}

// EncodeRecords encodes values as contiguous records into buf, which must
// hold at least len(values)*RecordSize bytes. On failure, allocations
// already embedded by this call (including those of previously encoded
// records) are released and the buffer needs no Release.
func (t *Type) EncodeRecords(values []any, buf []byte) error {
	start := time.Now()
	err := t.encodeRecords(values, buf)
	t.metrics.RecordEncode(len(values), time.Since(start), err)
	t.logger.LogEncode(len(values), err)
	return err
}

func (t *Type) encodeRecords(values []any, buf []byte) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if need := len(values) * t.recordSize; len(buf) < need {
		return fmt.Errorf("%w: %d records need %d bytes, buffer has %d",
			ErrShortBuffer, len(values), need, len(buf))
	}

	var embedded []int
	for r, v := range values {
		if err := t.encodeRecordAt(v, buf, r*t.recordSize, &embedded); err != nil {
			// Abort the whole operation: a partially written buffer must
			// not keep ownership of embedded allocations.
			for _, off := range embedded {
				_ = varstr.Release(t.alloc, buf, off)
			}
			return err
		}
	}
	return nil
}

func (t *Type) encodeRecordAt(value any, buf []byte, base int, embedded *[]int) error {
	if value == nil {
		return ErrNilValue
	}
	rec, err := newRecordReader(value)
	if err != nil {
		return err
	}

	for i, mi := range t.wire {
		m := t.members[i]
		fv, ok := rec.lookup(m.Field())
		if !ok {
			return &mapping.SchemaMismatchError{
				Field:  m.Field(),
				Reason: "record value has no such field",
			}
		}
		if err := t.encodeMember(m, mi, fv, buf, base+mi.Offset, embedded); err != nil {
			return fmt.Errorf("compoundgo: member %q: %w", mi.Name, err)
		}
	}
	return nil
}

func (t *Type) encodeMember(m *mapping.MemberMapping, mi layout.MemberInfo, v any, buf []byte, off int, embedded *[]int) error {
	switch mi.Class {
	case layout.ClassBoolean:
		b, ok := v.(bool)
		if !ok {
			return valueMismatch(v, "bool")
		}
		buf[off] = 0
		if b {
			buf[off] = 1
		}

	case layout.ClassInteger:
		if mi.Count > 1 {
			seq, err := intSequence(v, mi.Count)
			if err != nil {
				return err
			}
			for i, n := range seq {
				putInt(buf[off+i*mi.ElementSize:], mi.ElementSize, n)
			}
			return nil
		}
		n, err := asInt64(v, mi.Variant)
		if err != nil {
			return err
		}
		putInt(buf[off:], mi.ElementSize, n)

	case layout.ClassFloat:
		if mi.Count > 1 {
			seq, err := floatSequence(v, mi.Count)
			if err != nil {
				return err
			}
			for i, f := range seq {
				putFloat(buf[off+i*mi.ElementSize:], mi.ElementSize, f)
			}
			return nil
		}
		f, err := asFloat64(v)
		if err != nil {
			return err
		}
		putFloat(buf[off:], mi.ElementSize, f)

	case layout.ClassBitfield:
		b, ok := v.(*bitset.BitSet)
		if !ok {
			return valueMismatch(v, "*bitset.BitSet")
		}
		words := b.Bytes()
		for i := mi.Count; i < len(words); i++ {
			if words[i] != 0 {
				return &mapping.SchemaMismatchError{
					Field:  m.Field(),
					Reason: fmt.Sprintf("bit-set exceeds the declared length of %d bits", m.ElementCount()),
				}
			}
		}
		for i := 0; i < mi.Count; i++ {
			var w uint64
			if i < len(words) {
				w = words[i]
			}
			putInt(buf[off+i*8:], 8, int64(w))
		}

	case layout.ClassString:
		s, ok := v.(string)
		if !ok {
			return valueMismatch(v, "string")
		}
		if m.IsVariableLength() {
			if err := varstr.EncodeString(t.alloc, s, buf, off); err != nil {
				return err
			}
			*embedded = append(*embedded, off)
			return nil
		}
		n := copy(buf[off:off+mi.ElementSize], s)
		for i := n; i < mi.ElementSize; i++ {
			buf[off+i] = 0
		}

	case layout.ClassEnum:
		et := m.Enum()
		if mi.Count > 1 {
			symbols, err := symbolSequence(v, mi.Count)
			if err != nil {
				return err
			}
			for i, s := range symbols {
				ord, err := et.Encode(s)
				if err != nil {
					return err
				}
				putInt(buf[off+i*mi.ElementSize:], mi.ElementSize, int64(ord))
			}
			return nil
		}
		symbol, err := asSymbol(v)
		if err != nil {
			return err
		}
		ord, err := et.Encode(symbol)
		if err != nil {
			return err
		}
		putInt(buf[off:], mi.ElementSize, int64(ord))

	default:
		return fmt.Errorf("member class %s is not encodable", mi.Class)
	}
	return nil
}

func asSymbol(v any) (string, error) {
	switch x := v.(type) {
	case enum.Value:
		return x.Symbol(), nil
	case string:
		return x, nil
	default:
		return "", valueMismatch(v, "enum.Value or string")
	}
}

func symbolSequence(v any, want int) ([]string, error) {
	var symbols []string
	switch x := v.(type) {
	case enum.ValueArray:
		symbols = x.Symbols()
	case []string:
		symbols = x
	default:
		return nil, valueMismatch(v, "enum.ValueArray or []string")
	}
	if len(symbols) != want {
		return nil, fmt.Errorf("%w: enumeration array has %d symbols, layout declares %d",
			mapping.ErrSchemaMismatch, len(symbols), want)
	}
	return symbols, nil
}
