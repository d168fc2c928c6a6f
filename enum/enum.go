// Package enum models enumeration types for compound records.
//
// An enumeration type is an ordered, unique set of symbol names. The
// zero-based index of a symbol (its ordinal) is the compact binary
// representation used in storage; the storage width is derived solely from
// the number of symbols in the type.
//
// Decoding an out-of-range ordinal deliberately does not fail: it falls
// back to the Unclassified symbol. Consumers rely on this to tolerate
// schema drift, e.g. when a newer writer added symbols an older reader
// does not know about.
package enum

import (
	"errors"
	"fmt"
)

// Unclassified is the sentinel symbol returned by Decode for ordinals that
// are not covered by the enumeration type.
const Unclassified = "UNCLASSIFIED"

// ErrUnknownValue is the sentinel matched by errors.Is for symbols that are
// not part of an enumeration type.
var ErrUnknownValue = errors.New("unknown enumeration value")

// UnknownValueError indicates that a symbol is not part of an enumeration type.
type UnknownValueError struct {
	TypeName string
	Symbol   string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("enumeration type %q: unknown value %q", e.TypeName, e.Symbol)
}

func (e *UnknownValueError) Unwrap() error { return ErrUnknownValue }

// Type is an ordered, unique set of symbol names.
//
// A Type is immutable after construction and safe for concurrent use.
type Type struct {
	name     string
	symbols  []string
	ordinals map[string]int
}

// NewType creates an enumeration type from the given symbols.
// The symbol order is significant: it determines the ordinals.
func NewType(name string, symbols []string) (*Type, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("enumeration type %q: no symbols", name)
	}
	ordinals := make(map[string]int, len(symbols))
	for i, s := range symbols {
		if s == "" {
			return nil, fmt.Errorf("enumeration type %q: empty symbol at ordinal %d", name, i)
		}
		if _, dup := ordinals[s]; dup {
			return nil, fmt.Errorf("enumeration type %q: duplicate symbol %q", name, s)
		}
		ordinals[s] = i
	}
	return &Type{
		name:     name,
		symbols:  append([]string(nil), symbols...),
		ordinals: ordinals,
	}, nil
}

// MustType is like NewType but panics on error. Intended for static tables.
func MustType(name string, symbols ...string) *Type {
	t, err := NewType(name, symbols)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the name of the enumeration type.
func (t *Type) Name() string { return t.name }

// Len returns the number of symbols.
func (t *Type) Len() int { return len(t.symbols) }

// Symbols returns a copy of the symbol list in ordinal order.
func (t *Type) Symbols() []string {
	return append([]string(nil), t.symbols...)
}

// StorageSize returns the number of bytes used to store one ordinal.
// The width depends only on the cardinality of the type.
func (t *Type) StorageSize() int {
	n := uint64(len(t.symbols))
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	case n <= 1<<32:
		return 4
	default:
		return 8
	}
}

// Encode returns the ordinal of the given symbol.
func (t *Type) Encode(symbol string) (int, error) {
	ord, ok := t.ordinals[symbol]
	if !ok {
		return 0, &UnknownValueError{TypeName: t.name, Symbol: symbol}
	}
	return ord, nil
}

// Lookup returns the symbol at the given ordinal, or false if the ordinal
// is out of range.
func (t *Type) Lookup(ordinal int) (string, bool) {
	if ordinal < 0 || ordinal >= len(t.symbols) {
		return "", false
	}
	return t.symbols[ordinal], true
}

// Decode returns the symbol at the given ordinal.
//
// An out-of-range ordinal yields Unclassified rather than an error. This is
// documented behavior, not a bug: it keeps readers forward-compatible with
// types whose symbol set has grown since the data was written.
func (t *Type) Decode(ordinal int) string {
	if s, ok := t.Lookup(ordinal); ok {
		return s
	}
	return Unclassified
}

// Equal reports whether two enumeration types have the same name and the
// same symbols in the same order.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.name != other.name || len(t.symbols) != len(other.symbols) {
		return false
	}
	for i := range t.symbols {
		if t.symbols[i] != other.symbols[i] {
			return false
		}
	}
	return true
}

// Value is a single symbol bound to its enumeration type.
type Value struct {
	typ    *Type
	symbol string
}

// NewValue creates a value of the given enumeration type.
// The symbol must be part of the type.
func NewValue(t *Type, symbol string) (Value, error) {
	if t == nil {
		return Value{}, errors.New("enum: nil type")
	}
	if _, err := t.Encode(symbol); err != nil {
		return Value{}, err
	}
	return Value{typ: t, symbol: symbol}, nil
}

// MustValue is like NewValue but panics on error.
func MustValue(t *Type, symbol string) Value {
	v, err := NewValue(t, symbol)
	if err != nil {
		panic(err)
	}
	return v
}

// Type returns the enumeration type of the value.
func (v Value) Type() *Type { return v.typ }

// Symbol returns the symbol of the value.
func (v Value) Symbol() string { return v.symbol }

// Ordinal returns the ordinal of the value within its type.
func (v Value) Ordinal() int {
	ord, _ := v.typ.Encode(v.symbol)
	return ord
}

func (v Value) String() string { return v.symbol }

// ValueArray is an ordered sequence of symbols of one enumeration type.
type ValueArray struct {
	typ     *Type
	symbols []string
}

// NewValueArray creates an array value of the given enumeration type.
// Every symbol must be part of the type.
func NewValueArray(t *Type, symbols []string) (ValueArray, error) {
	if t == nil {
		return ValueArray{}, errors.New("enum: nil type")
	}
	for _, s := range symbols {
		if _, err := t.Encode(s); err != nil {
			return ValueArray{}, err
		}
	}
	return ValueArray{typ: t, symbols: append([]string(nil), symbols...)}, nil
}

// MustValueArray is like NewValueArray but panics on error.
func MustValueArray(t *Type, symbols ...string) ValueArray {
	v, err := NewValueArray(t, symbols)
	if err != nil {
		panic(err)
	}
	return v
}

// Type returns the enumeration type of the array.
func (v ValueArray) Type() *Type { return v.typ }

// Len returns the number of symbols in the array.
func (v ValueArray) Len() int { return len(v.symbols) }

// Symbols returns a copy of the symbols.
func (v ValueArray) Symbols() []string {
	return append([]string(nil), v.symbols...)
}

// Ordinal returns the ordinal of the symbol at index i.
func (v ValueArray) Ordinal(i int) int {
	ord, _ := v.typ.Encode(v.symbols[i])
	return ord
}
