package compoundgo

import (
	"fmt"

	"github.com/hupe1980/compoundgo/enum"
	"github.com/hupe1980/compoundgo/layout"
	"github.com/hupe1980/compoundgo/mapping"
)

// Type is a compound record type: a named, validated binding of record
// fields to the members of a fixed-size binary record.
//
// A Type is immutable after construction and safe for concurrent use. The
// record buffers it operates on are not: see the package documentation for
// the buffer ownership rules.
type Type struct {
	name    string
	desc    *mapping.Descriptor
	members []*mapping.MemberMapping

	wire       []layout.MemberInfo
	comparison []layout.MemberInfo
	recordSize int
	varOffsets []int

	alloc   Allocator
	logger  *Logger
	metrics MetricsCollector
}

// NewType creates a compound type from a name, an optional schema
// descriptor and an ordered member mapping list.
//
// All bindings are validated here, before any buffer is touched: an
// unresolvable field, a kind/length disagreement or a member without a
// storable representation fails construction, not the first encode. The
// descriptor may be nil when every mapping carries its own field hint
// (mappings built by inference do).
//
// If name is empty, it is derived by joining the member names.
func NewType(name string, desc *mapping.Descriptor, members []*mapping.MemberMapping, optFns ...Option) (*Type, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("compoundgo: type %q has no members", name)
	}
	opts := applyOptions(optFns)

	for _, m := range members {
		if _, found, err := mapping.Bind(m, desc); err != nil {
			return nil, fmt.Errorf("compoundgo: member %q: %w", m.Member(), err)
		} else if !found {
			return nil, fmt.Errorf("compoundgo: member %q: no field %q", m.Member(), m.Field())
		}
	}

	wire, size, err := layout.BuildWire(members, desc)
	if err != nil {
		return nil, fmt.Errorf("compoundgo: %w", err)
	}
	for _, mi := range wire {
		if mi.Size() < 0 {
			return nil, fmt.Errorf("compoundgo: member %q has no storable representation", mi.Name)
		}
	}

	comparison, err := layout.Build(members, desc)
	if err != nil {
		return nil, fmt.Errorf("compoundgo: %w", err)
	}

	var varOffsets []int
	for i, mi := range wire {
		if mi.Class == layout.ClassString && members[i].IsVariableLength() {
			varOffsets = append(varOffsets, mi.Offset)
		}
	}

	if name == "" {
		name = mapping.TypeNameFromMappings(members, false)
	}

	t := &Type{
		name:       name,
		desc:       desc,
		members:    members,
		wire:       wire,
		comparison: comparison,
		recordSize: size,
		varOffsets: varOffsets,
		alloc:      opts.allocator,
		logger:     opts.logger.WithType(name).WithRecordSize(size),
		metrics:    opts.metricsCollector,
	}
	t.logger.Debug("type created", "members", len(members))
	return t, nil
}

// NewTypeFromStruct creates a compound type by inferring the schema and
// the member mappings from a struct prototype, honoring `compound` tags.
// Enumeration-typed fields take their enumeration type from enumTypes,
// keyed by field name; pass mapping.InferEnumTypes(v) of a populated value
// to build that map, or nil when no enumeration fields exist.
//
// If name is empty, the struct type name is used.
func NewTypeFromStruct(name string, prototype any, enumTypes map[string]*enum.Type, optFns ...Option) (*Type, error) {
	opts := applyOptions(optFns)

	desc, err := mapping.DescribeStruct(prototype)
	if err != nil {
		return nil, fmt.Errorf("compoundgo: %w", err)
	}
	inf := mapping.NewInferencer(
		mapping.WithVariantTable(opts.variantTable),
		mapping.WithMapAllFields(opts.mapAllFields),
	)
	members, err := inf.InferStruct(prototype, enumTypes)
	if err != nil {
		return nil, fmt.Errorf("compoundgo: %w", err)
	}
	if name == "" {
		name = desc.Name()
	}
	return NewType(name, desc, members, optFns...)
}

// NewTypeFromValues creates a compound type by inspecting a name-keyed
// value map. Member declarations (kind, dimensions, variants, enumeration
// types) are taken from the values; members are ordered by name.
func NewTypeFromValues(name string, values map[string]any, optFns ...Option) (*Type, error) {
	opts := applyOptions(optFns)

	inf := mapping.NewInferencer(
		mapping.WithVariantTable(opts.variantTable),
	)
	members, err := inf.InferMap(values)
	if err != nil {
		return nil, fmt.Errorf("compoundgo: %w", err)
	}
	return NewType(name, nil, members, optFns...)
}

// Name returns the compound type name.
func (t *Type) Name() string { return t.name }

// RecordSize returns the byte size of one record.
func (t *Type) RecordSize() int { return t.recordSize }

// Members returns the comparison layout of the type: members sorted
// alphabetically by name with offsets assigned in that order. This is the
// view used for structural schema comparison, not the byte placement the
// codec writes; see WireMembers.
func (t *Type) Members() []layout.MemberInfo {
	return append([]layout.MemberInfo(nil), t.comparison...)
}

// WireMembers returns the wire layout of the type: members in declaration
// order with the byte offsets the codec actually reads and writes.
func (t *Type) WireMembers() []layout.MemberInfo {
	return append([]layout.MemberInfo(nil), t.wire...)
}

// VariableLengthOffsets returns the wire offsets of the variable-length
// text slots, the values Release passes to the embedding protocol.
func (t *Type) VariableLengthOffsets() []int {
	return append([]int(nil), t.varOffsets...)
}

// HasVariableLength reports whether any member embeds variable-length
// text, i.e. whether encoded buffers of this type require a Release call.
func (t *Type) HasVariableLength() bool { return len(t.varOffsets) > 0 }

// Equal reports whether two types are structurally equal: same members
// with the same classes, sizes and shapes. Names and declaration order do
// not matter; the comparison runs over the sorted comparison layout.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return layout.Equal(t.comparison, other.comparison)
}
