// Package mapping describes how record fields correspond to members of a
// fixed-size compound storage record, and infers such mappings from
// explicit declarations, struct tags or runtime values.
package mapping

import (
	"sort"
	"strings"

	"github.com/hupe1980/compoundgo/enum"
)

// MemberMapping maps one record field to one compound member.
//
// A MemberMapping is a builder: the chainable setters configure it, and it
// is treated as immutable once handed to layout or type construction.
// Setter errors (e.g. an enumeration array of rank 2) are deferred and
// surface when the mapping is bound or a layout is built.
type MemberMapping struct {
	fieldName  string
	memberName string

	kind       Kind
	rank       int
	multiArray bool
	kindKnown  bool

	dims         []int
	elementCount int
	varLength    bool

	enumType *enum.Type
	variant  Variant

	storageTypeID int64

	err error
}

// Mapping creates a member mapping for memberName. The member name is also
// used to locate the record field unless overridden with FieldName.
func Mapping(memberName string) *MemberMapping {
	return &MemberMapping{
		fieldName:     memberName,
		memberName:    memberName,
		elementCount:  1,
		storageTypeID: -1,
	}
}

// FieldName overrides the name used to locate the record field.
func (m *MemberMapping) FieldName(name string) *MemberMapping {
	m.fieldName = name
	return m
}

// Length declares the member as a rank-1 sequence of n elements.
// Shorthand for Dimensions(n); required for text and bit-set members.
func (m *MemberMapping) Length(n int) *MemberMapping {
	return m.Dimensions(n)
}

// Dimensions declares the member dimensions: none for a scalar, one entry
// for a sequence, two for a matrix.
func (m *MemberMapping) Dimensions(dims ...int) *MemberMapping {
	m.dims = append([]int(nil), dims...)
	m.elementCount = ElementCount(m.dims)
	if m.enumType != nil {
		m.rank = len(m.dims)
		m.checkEnumRank()
	}
	return m
}

// EnumType declares the member as an enumeration scalar (no dimensions) or
// enumeration array (one dimension).
func (m *MemberMapping) EnumType(t *enum.Type) *MemberMapping {
	m.enumType = t
	m.kind = KindEnum
	m.rank = len(m.dims)
	m.kindKnown = true
	m.checkEnumRank()
	return m
}

// TypeVariant attaches a semantic variant tag to the member.
func (m *MemberMapping) TypeVariant(v Variant) *MemberMapping {
	m.variant = v
	return m
}

// MemberKind declares the element kind and rank of the member explicitly.
// Needed when the mapping is used without a descriptor, e.g. for mappings
// inferred from runtime values.
func (m *MemberMapping) MemberKind(k Kind, rank int) *MemberMapping {
	m.kind = k
	m.rank = rank
	m.kindKnown = true
	return m
}

// VariableLength declares a text member as variable-length: the record
// slot holds a native pointer to a separately allocated text buffer
// instead of inline characters.
func (m *MemberMapping) VariableLength() *MemberMapping {
	m.varLength = true
	return m
}

// StorageTypeID attaches the opaque handle of a pre-existing storage type,
// for members whose layout is not inferred locally.
func (m *MemberMapping) StorageTypeID(id int64) *MemberMapping {
	m.storageTypeID = id
	return m
}

func (m *MemberMapping) checkEnumRank() {
	if len(m.dims) > 1 {
		m.err = &SchemaMismatchError{
			Field:  m.fieldName,
			Reason: "enumeration arrays only support rank 1",
		}
	}
}

// Member returns the member name used in the storage schema.
func (m *MemberMapping) Member() string { return m.memberName }

// Field returns the name used to locate the record field.
func (m *MemberMapping) Field() string { return m.fieldName }

// Dims returns a copy of the declared dimensions.
func (m *MemberMapping) Dims() []int {
	return append([]int(nil), m.dims...)
}

// ElementCount returns the product of the declared dimensions, 1 for a
// scalar.
func (m *MemberMapping) ElementCount() int { return m.elementCount }

// Enum returns the enumeration type of the member, or nil.
func (m *MemberMapping) Enum() *enum.Type { return m.enumType }

// Variant returns the semantic variant tag of the member, or VariantNone.
func (m *MemberMapping) Variant() Variant { return m.variant }

// IsVariableLength reports whether the member is variable-length text.
func (m *MemberMapping) IsVariableLength() bool { return m.varLength }

// StorageType returns the opaque storage type handle, or -1 when the
// layout is inferred locally.
func (m *MemberMapping) StorageType() int64 { return m.storageTypeID }

// FieldHint returns the field descriptor carried by the mapping itself,
// for mappings whose kind was set explicitly or inferred from a value.
func (m *MemberMapping) FieldHint() (FieldDescriptor, bool) {
	if !m.kindKnown {
		return FieldDescriptor{}, false
	}
	return FieldDescriptor{
		Name:       m.fieldName,
		Kind:       m.kind,
		Rank:       m.rank,
		MultiArray: m.multiArray,
	}, true
}

// Err returns the deferred builder error, if any.
func (m *MemberMapping) Err() error { return m.err }

// ElementCount returns the product of the given dimensions; the product of
// no dimensions is 1.
func ElementCount(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// TypeNameFromMembers derives a compound type name by joining the member
// names with ':'. With sortNames the names are sorted first, making the
// name independent of declaration order.
func TypeNameFromMembers(names []string, sortNames bool) string {
	if sortNames {
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		names = sorted
	}
	return strings.Join(names, ":")
}

// TypeNameFromMappings is TypeNameFromMembers over the member names of the
// given mappings.
func TypeNameFromMappings(members []*MemberMapping, sortNames bool) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Member()
	}
	return TypeNameFromMembers(names, sortNames)
}
