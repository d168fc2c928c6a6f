package mapping

import (
	"fmt"
	"math/bits"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/compoundgo/enum"
)

// TagName is the struct tag consulted by struct inference.
const TagName = "compound"

// Inferencer builds member mappings from struct declarations or runtime
// values. The zero configuration (DefaultVariantTable, all fields mapped)
// is what most callers want; see the InferOption funcs for the knobs.
type Inferencer struct {
	variants VariantTable
	mapAll   bool
}

// InferOption configures an Inferencer.
type InferOption func(*Inferencer)

// WithVariantTable replaces the variant table consulted during value
// inference.
func WithVariantTable(t VariantTable) InferOption {
	return func(in *Inferencer) {
		in.variants = t
	}
}

// WithMapAllFields controls whether struct fields without a mapping tag
// are included. Defaults to true.
func WithMapAllFields(mapAll bool) InferOption {
	return func(in *Inferencer) {
		in.mapAll = mapAll
	}
}

// NewInferencer creates an inference engine.
func NewInferencer(opts ...InferOption) *Inferencer {
	in := &Inferencer{
		variants: DefaultVariantTable(),
		mapAll:   true,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// InferStruct returns the member mappings for the given struct prototype,
// honoring `compound` tags.
//
// Fields are visited in declaration order, embedded (base) structs
// flattened in place. A tagged field uses the tag's member name (default:
// the field name) and its declared length, dimensions and variant; an
// untagged field is included as a scalar when the map-all-fields policy
// holds. Enumeration-typed fields take their enumeration type from
// enumTypes, keyed by field name; InferEnumTypes can build that map from a
// populated value.
//
// Tag grammar: `compound:"memberName,len=10"`, `compound:",dims=3x4"`,
// `compound:",variant=time-duration-microseconds"`, `compound:",varlen"`,
// `compound:"-"` to exclude the field.
func (in *Inferencer) InferStruct(prototype any, enumTypes map[string]*enum.Type) ([]*MemberMapping, error) {
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
		if f := t.Field(i); !f.Anonymous {
			outer[f.Name] = true
		}
	}

	var result []*MemberMapping
	if err := in.inferStructFields(t, outer, false, enumTypes, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (in *Inferencer) inferStructFields(t reflect.Type, outer map[string]bool, embedded bool,
	enumTypes map[string]*enum.Type, out *[]*MemberMapping) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			et := f.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && !isLeafStructType(et) {
				if err := in.inferStructFields(et, outer, true, enumTypes, out); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if embedded && outer[f.Name] {
			continue
		}

		tag, tagged := f.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		if !tagged && !in.mapAll {
			continue
		}

		m := Mapping(f.Name)
		if tagged {
			if err := applyTag(m, f.Name, tag); err != nil {
				return err
			}
		}
		if et, ok := enumTypes[f.Name]; ok {
			m.EnumType(et)
		}
		*out = append(*out, m)
	}
	return nil
}

func applyTag(m *MemberMapping, fieldName, tag string) error {
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		m.memberName = parts[0]
	}
	for _, opt := range parts[1:] {
		switch {
		case opt == "varlen":
			m.VariableLength()
		case strings.HasPrefix(opt, "len="):
			n, err := strconv.Atoi(opt[len("len="):])
			if err != nil {
				return fmt.Errorf("mapping: field %s: bad tag option %q: %w", fieldName, opt, err)
			}
			m.Length(n)
		case strings.HasPrefix(opt, "dims="):
			dims, err := parseDims(opt[len("dims="):])
			if err != nil {
				return fmt.Errorf("mapping: field %s: bad tag option %q: %w", fieldName, opt, err)
			}
			m.Dimensions(dims...)
		case strings.HasPrefix(opt, "variant="):
			m.TypeVariant(Variant(opt[len("variant="):]))
		case opt == "":
			// trailing comma
		default:
			return fmt.Errorf("mapping: field %s: unknown tag option %q", fieldName, opt)
		}
	}
	return nil
}

func parseDims(s string) ([]int, error) {
	parts := strings.Split(s, "x")
	dims := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		dims[i] = n
	}
	return dims, nil
}

// InferMap returns the member mappings for a name-keyed value map. All
// length and dimension information is taken from the values. Since map
// order is not deterministic, the result is sorted by member name.
func (in *Inferencer) InferMap(values map[string]any) ([]*MemberMapping, error) {
	result := make([]*MemberMapping, 0, len(values))
	for name, v := range values {
		m, err := in.inferValue(name, v)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Member() < result[j].Member()
	})
	return result, nil
}

// InferPairs returns the member mappings for parallel name and value
// sequences, preserving declaration order.
func (in *Inferencer) InferPairs(names []string, values []any) ([]*MemberMapping, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("mapping: %d names but %d values", len(names), len(values))
	}
	result := make([]*MemberMapping, len(names))
	for i, name := range names {
		m, err := in.inferValue(name, values[i])
		if err != nil {
			return nil, err
		}
		result[i] = m
	}
	return result, nil
}

func (in *Inferencer) inferValue(name string, v any) (*MemberMapping, error) {
	if v == nil {
		return nil, fmt.Errorf("mapping: nil value for member %q", name)
	}

	m := Mapping(name)
	if variant := in.variantFor(v); variant != VariantNone {
		m.TypeVariant(variant)
	}

	switch x := v.(type) {
	case enum.Value:
		m.EnumType(x.Type())
		return m, nil
	case enum.ValueArray:
		m.Dimensions(x.Len())
		m.EnumType(x.Type())
		return m, nil
	case string:
		m.Dimensions(len(x))
		m.MemberKind(KindString, 0)
		return m, nil
	case *bitset.BitSet:
		m.Dimensions(bitLength(x))
		m.MemberKind(KindBitSet, 0)
		return m, nil
	case MultiArray:
		m.Dimensions(x.ArrayDimensions()...)
		m.MemberKind(x.ArrayKind(), len(m.Dims()))
		m.multiArray = true
		return m, nil
	case time.Time:
		m.MemberKind(KindInt64, 0)
		return m, nil
	case time.Duration:
		m.MemberKind(KindInt64, 0)
		return m, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		elem := rv.Type().Elem()
		if elem.Kind() == reflect.Slice && rv.Len() > 0 {
			// Matrix: the inner length is taken from the first row.
			inner := describeFieldType(elem.Elem())
			m.Dimensions(rv.Len(), rv.Index(0).Len())
			m.MemberKind(inner.Kind, 2)
			return m, nil
		}
		fd := describeFieldType(rv.Type())
		m.Dimensions(rv.Len())
		m.MemberKind(fd.Kind, fd.Rank)
		return m, nil
	}

	fd := describeFieldType(rv.Type())
	m.MemberKind(fd.Kind, fd.Rank)
	return m, nil
}

func (in *Inferencer) variantFor(v any) Variant {
	variant, ok := in.variants[reflect.TypeOf(v)]
	if !ok {
		return VariantNone
	}
	if d, isDuration := v.(time.Duration); isDuration {
		return durationVariant(d)
	}
	return variant
}

// bitLength returns the number of bits needed to hold the highest set bit,
// at least 1 so that an empty bit-set still occupies storage.
func bitLength(b *bitset.BitSet) int {
	words := b.Bytes()
	for i := len(words) - 1; i >= 0; i-- {
		if words[i] != 0 {
			return i*64 + bits.Len64(words[i])
		}
	}
	return 1
}

// InferEnumTypes infers the field-name-to-enumeration-type map from a
// populated struct value. Useful as the enumTypes argument of InferStruct.
func InferEnumTypes(v any) map[string]*enum.Type {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var result map[string]*enum.Type
	collectEnumTypes(rv, &result)
	return result
}

func collectEnumTypes(rv reflect.Value, out *map[string]*enum.Type) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := rv.Field(i)
		if f.Anonymous && fv.Kind() == reflect.Struct && !isLeafStructType(fv.Type()) {
			collectEnumTypes(fv, out)
			continue
		}
		if !f.IsExported() {
			continue
		}

		var et *enum.Type
		switch x := fv.Interface().(type) {
		case enum.Value:
			et = x.Type()
		case enum.ValueArray:
			et = x.Type()
		}
		if et != nil {
			if *out == nil {
				*out = make(map[string]*enum.Type)
			}
			(*out)[f.Name] = et
		}
	}
}

// InferStruct is InferStruct on a default Inferencer.
func InferStruct(prototype any, enumTypes map[string]*enum.Type) ([]*MemberMapping, error) {
	return NewInferencer().InferStruct(prototype, enumTypes)
}

// InferMap is InferMap on a default Inferencer.
func InferMap(values map[string]any) ([]*MemberMapping, error) {
	return NewInferencer().InferMap(values)
}

// InferPairs is InferPairs on a default Inferencer.
func InferPairs(names []string, values []any) ([]*MemberMapping, error) {
	return NewInferencer().InferPairs(names, values)
}
