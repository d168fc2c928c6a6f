package mapping

import (
	"fmt"
	"reflect"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/compoundgo/enum"
)

// Kind classifies the element type of a record field.
//
// For sequence fields (slices, matrices, multi-dimensional arrays) Kind
// describes the element type; the rank is tracked separately.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBitSet
	KindEnum
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindBitSet:
		return "BitSet"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// MultiArray is implemented by multi-dimensional array values that carry
// their own element kind and dimensions.
type MultiArray interface {
	ArrayKind() Kind
	ArrayDimensions() []int
}

// FieldDescriptor describes one declared field of a record.
type FieldDescriptor struct {
	Name string
	Kind Kind
	// Rank is 0 for scalars, 1 for sequences and 2 for matrices.
	Rank int
	// MultiArray marks fields backed by a multi-dimensional array value.
	MultiArray bool
}

// IsSequence reports whether the field can hold more than one element:
// text, arrays, matrices, bit-sets, enumeration arrays and
// multi-dimensional arrays.
func (f FieldDescriptor) IsSequence() bool {
	return f.MultiArray || f.Rank > 0 || f.Kind == KindString || f.Kind == KindBitSet
}

// Descriptor is an explicit schema descriptor: the declared fields of a
// record type, resolved once at configuration time so that no dynamic
// lookup happens inside encode/decode loops.
type Descriptor struct {
	name   string
	fields []FieldDescriptor
	index  map[string]int
}

// NewDescriptor creates a descriptor from an ordered field list.
func NewDescriptor(name string, fields ...FieldDescriptor) (*Descriptor, error) {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("descriptor %q: field %d has no name", name, i)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("descriptor %q: duplicate field %q", name, f.Name)
		}
		index[f.Name] = i
	}
	return &Descriptor{name: name, fields: fields, index: index}, nil
}

// Name returns the descriptor name.
func (d *Descriptor) Name() string { return d.name }

// Fields returns the declared fields in declaration order.
func (d *Descriptor) Fields() []FieldDescriptor {
	return append([]FieldDescriptor(nil), d.fields...)
}

// Lookup returns the field with the given name. Absence is not an error;
// the caller decides whether it is fatal.
func (d *Descriptor) Lookup(name string) (FieldDescriptor, bool) {
	if d == nil {
		return FieldDescriptor{}, false
	}
	i, ok := d.index[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return d.fields[i], true
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	bitSetType   = reflect.TypeOf((*bitset.BitSet)(nil))
	enumValType  = reflect.TypeOf(enum.Value{})
	enumArrType  = reflect.TypeOf(enum.ValueArray{})
	multiArrType = reflect.TypeOf((*MultiArray)(nil)).Elem()
)

// DescribeStruct builds a descriptor from a struct type or value.
//
// Fields are recorded in declaration order; embedded structs are flattened
// in place, so declaring embedded (base) types first yields base-first
// field order. Fields of the outer struct shadow embedded fields of the
// same name.
func DescribeStruct(prototype any) (*Descriptor, error) {
	t := reflect.TypeOf(prototype)
	if t == nil {
		return nil, fmt.Errorf("mapping: nil prototype")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("mapping: prototype must be a struct, got %s", t.Kind())
	}

	outer := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			outer[f.Name] = true
		}
	}

	var fields []FieldDescriptor
	if err := describeFields(t, outer, false, &fields); err != nil {
		return nil, err
	}
	return NewDescriptor(t.Name(), fields...)
}

func describeFields(t reflect.Type, outer map[string]bool, embedded bool, out *[]FieldDescriptor) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			et := f.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && !isLeafStructType(et) {
				if err := describeFields(et, outer, true, out); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if embedded && outer[f.Name] {
			continue // shadowed by the outer struct
		}
		fd := describeFieldType(f.Type)
		fd.Name = f.Name
		*out = append(*out, fd)
	}
	return nil
}

// isLeafStructType reports whether a struct type is treated as a value
// rather than being flattened (time.Time, enum values, multi-arrays).
func isLeafStructType(t reflect.Type) bool {
	return t == timeType || t == enumValType || t == enumArrType || t.Implements(multiArrType)
}

func describeFieldType(t reflect.Type) FieldDescriptor {
	switch t {
	case timeType:
		return FieldDescriptor{Kind: KindInt64}
	case durationType:
		return FieldDescriptor{Kind: KindInt64}
	case bitSetType:
		return FieldDescriptor{Kind: KindBitSet}
	case enumValType:
		return FieldDescriptor{Kind: KindEnum}
	case enumArrType:
		return FieldDescriptor{Kind: KindEnum, Rank: 1}
	}
	if t.Implements(multiArrType) || reflect.PointerTo(t).Implements(multiArrType) {
		return FieldDescriptor{Kind: multiArrayElemKind(t), MultiArray: true}
	}

	switch t.Kind() {
	case reflect.Bool:
		return FieldDescriptor{Kind: KindBool}
	case reflect.Int8, reflect.Uint8:
		return FieldDescriptor{Kind: KindInt8}
	case reflect.Int16, reflect.Uint16:
		return FieldDescriptor{Kind: KindInt16}
	case reflect.Int32, reflect.Uint32:
		return FieldDescriptor{Kind: KindInt32}
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return FieldDescriptor{Kind: KindInt64}
	case reflect.Float32:
		return FieldDescriptor{Kind: KindFloat32}
	case reflect.Float64:
		return FieldDescriptor{Kind: KindFloat64}
	case reflect.String:
		return FieldDescriptor{Kind: KindString}
	case reflect.Slice:
		elem := t.Elem()
		if elem.Kind() == reflect.Slice {
			inner := describeFieldType(elem.Elem())
			if inner.Rank == 0 && inner.Kind != KindUnknown && inner.Kind != KindString {
				return FieldDescriptor{Kind: inner.Kind, Rank: 2}
			}
			return FieldDescriptor{Kind: KindUnknown}
		}
		inner := describeFieldType(elem)
		if inner.Rank == 0 && inner.Kind != KindUnknown && inner.Kind != KindString {
			return FieldDescriptor{Kind: inner.Kind, Rank: 1}
		}
		return FieldDescriptor{Kind: KindUnknown}
	}
	return FieldDescriptor{Kind: KindUnknown}
}

// multiArrayElemKind obtains the element kind from a zero value of the
// multi-array type. ArrayKind implementations must be callable on the zero
// value for struct inference to classify the field.
func multiArrayElemKind(t reflect.Type) (k Kind) {
	k = KindUnknown
	defer func() { _ = recover() }()
	var v reflect.Value
	switch {
	case t.Implements(multiArrType) && t.Kind() == reflect.Pointer:
		v = reflect.New(t.Elem())
	case t.Implements(multiArrType):
		v = reflect.Zero(t)
	default:
		v = reflect.New(t) // pointer receiver implementation
	}
	if ma, ok := v.Interface().(MultiArray); ok {
		k = ma.ArrayKind()
	}
	return k
}
