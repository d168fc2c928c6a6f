// Package layout computes the byte-accurate member layout of a compound
// record from an ordered member mapping list.
//
// Two layouts exist on purpose. The comparison layout (Build) sorts
// members alphabetically before assigning offsets, which makes two
// independently declared schemas structurally comparable. The wire layout
// (BuildWire) keeps declaration order and is what the record codec uses to
// place bytes. The two do not agree on offsets and must not be mixed.
package layout

import (
	"fmt"
	"sort"

	"github.com/hupe1980/compoundgo/internal/varstr"
	"github.com/hupe1980/compoundgo/mapping"
)

// Class is the storage type class of a compound member.
type Class uint8

const (
	ClassOther Class = iota
	ClassBoolean
	ClassInteger
	ClassFloat
	ClassString
	ClassBitfield
	ClassEnum
)

// String returns the string representation of the Class.
func (c Class) String() string {
	switch c {
	case ClassBoolean:
		return "Boolean"
	case ClassInteger:
		return "Integer"
	case ClassFloat:
		return "Float"
	case ClassString:
		return "String"
	case ClassBitfield:
		return "Bitfield"
	case ClassEnum:
		return "Enum"
	default:
		return "Other"
	}
}

// MemberInfo describes one member of a compound record layout. It is
// constructed by Build or BuildWire and never mutated afterwards.
type MemberInfo struct {
	Name string
	// Class is the storage type class.
	Class Class
	// ElementSize is the size of one element in bytes, or -1 when the
	// size cannot be determined locally.
	ElementSize int
	// Count is the number of stored elements of ElementSize. Scalars and
	// text members have count 1; bitfields count 64-bit words.
	Count int
	// Dimensions are the declared dimensions, set only for array, matrix
	// and multi-dimensional array members.
	Dimensions []int
	// Offset is the byte offset of the member within the record.
	Offset int
	// EnumSymbols holds the symbol table for enumeration members.
	EnumSymbols []string
	// Variant is the semantic variant tag attached to the member.
	Variant mapping.Variant
}

// Size returns the total byte size of the member, or -1 when unknown.
func (m MemberInfo) Size() int {
	if m.ElementSize < 0 {
		return -1
	}
	return m.ElementSize * m.Count
}

// Equal reports whether two members describe the same name, class, size
// and shape. Offsets are compared too: equal schemas assign equal offsets.
func (m MemberInfo) Equal(other MemberInfo) bool {
	if m.Name != other.Name || m.Class != other.Class ||
		m.ElementSize != other.ElementSize || m.Count != other.Count ||
		m.Offset != other.Offset || m.Variant != other.Variant {
		return false
	}
	if len(m.Dimensions) != len(other.Dimensions) {
		return false
	}
	for i := range m.Dimensions {
		if m.Dimensions[i] != other.Dimensions[i] {
			return false
		}
	}
	if len(m.EnumSymbols) != len(other.EnumSymbols) {
		return false
	}
	for i := range m.EnumSymbols {
		if m.EnumSymbols[i] != other.EnumSymbols[i] {
			return false
		}
	}
	return true
}

func (m MemberInfo) String() string {
	return fmt.Sprintf("%s:%s(%d)@%d", m.Name, m.Class, m.Size(), m.Offset)
}

// Build computes the comparison layout: members sorted alphabetically by
// name, offsets assigned as the running sum of the preceding sizes.
//
// The alphabetical order exists solely to make independently built schemas
// comparable; it is not the order the record codec writes members in.
func Build(members []*mapping.MemberMapping, desc *mapping.Descriptor) ([]MemberInfo, error) {
	infos, err := resolve(members, desc, false)
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	assignOffsets(infos)
	return infos, nil
}

// BuildWire computes the wire layout in declaration order and returns it
// together with the total record size. Variable-length text members
// occupy pointer-sized slots; enumeration arrays are sized as
// ordinal-width times element count so that the codec can place them.
func BuildWire(members []*mapping.MemberMapping, desc *mapping.Descriptor) ([]MemberInfo, int, error) {
	infos, err := resolve(members, desc, true)
	if err != nil {
		return nil, 0, err
	}
	size := assignOffsets(infos)
	return infos, size, nil
}

// Equal reports whether two layouts are structurally equal.
func Equal(a, b []MemberInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// TotalSize returns the byte size of one record under the given layout.
func TotalSize(infos []MemberInfo) int {
	total := 0
	for _, mi := range infos {
		if s := mi.Size(); s > 0 {
			total += s
		}
	}
	return total
}

func resolve(members []*mapping.MemberMapping, desc *mapping.Descriptor, wire bool) ([]MemberInfo, error) {
	infos := make([]MemberInfo, len(members))
	for i, m := range members {
		fd, found, err := mapping.Bind(m, desc)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("layout: no field found for member %q", m.Member())
		}
		mi, err := typeInfo(m, fd, wire)
		if err != nil {
			return nil, err
		}
		infos[i] = mi
	}
	return infos, nil
}

func assignOffsets(infos []MemberInfo) int {
	offset := 0
	for i := range infos {
		infos[i].Offset = offset
		if s := infos[i].Size(); s > 0 {
			offset += s
		}
	}
	return offset
}

// typeInfo applies the fixed dispatch table keyed on the bound field's
// kind. The comparison view keeps the storage engine's member description
// verbatim (enumeration arrays have no locally known size); the wire view
// sizes everything the codec has to place.
func typeInfo(m *mapping.MemberMapping, fd mapping.FieldDescriptor, wire bool) (MemberInfo, error) {
	mi := MemberInfo{Name: m.Member(), Count: 1, Variant: m.Variant()}

	// Dimensions propagate only for array, matrix and multi-dimensional
	// array members. Text, bit-sets and enumeration arrays keep theirs in
	// the mapping alone.
	if fd.MultiArray || (fd.Rank > 0 && fd.Kind != mapping.KindEnum) {
		mi.Dimensions = m.Dims()
	}

	switch fd.Kind {
	case mapping.KindBool:
		if fd.Rank > 0 || fd.MultiArray {
			return otherInfo(mi), nil
		}
		mi.Class = ClassBoolean
		mi.ElementSize = 1
	case mapping.KindInt8:
		mi.Class = ClassInteger
		mi.ElementSize = 1
		mi.Count = sequenceCount(m, fd)
	case mapping.KindInt16:
		mi.Class = ClassInteger
		mi.ElementSize = 2
		mi.Count = sequenceCount(m, fd)
	case mapping.KindInt32:
		mi.Class = ClassInteger
		mi.ElementSize = 4
		mi.Count = sequenceCount(m, fd)
	case mapping.KindInt64:
		mi.Class = ClassInteger
		mi.ElementSize = 8
		mi.Count = sequenceCount(m, fd)
	case mapping.KindFloat32:
		mi.Class = ClassFloat
		mi.ElementSize = 4
		mi.Count = sequenceCount(m, fd)
	case mapping.KindFloat64:
		mi.Class = ClassFloat
		mi.ElementSize = 8
		mi.Count = sequenceCount(m, fd)
	case mapping.KindBitSet:
		mi.Class = ClassBitfield
		mi.ElementSize = 8
		mi.Count = (m.ElementCount() + 63) / 64
	case mapping.KindString:
		mi.Class = ClassString
		if m.IsVariableLength() {
			// The slot holds a native pointer to the text, not the text.
			mi.ElementSize = varstr.PointerSize
		} else {
			mi.ElementSize = m.ElementCount()
		}
	case mapping.KindEnum:
		et := m.Enum()
		if et == nil {
			return MemberInfo{}, &mapping.SchemaMismatchError{
				Field:  m.Field(),
				Reason: "enumeration member has no enumeration type",
			}
		}
		if fd.Rank > 0 {
			if !wire {
				return otherInfo(mi), nil
			}
			mi.Class = ClassEnum
			mi.ElementSize = et.StorageSize()
			mi.Count = m.ElementCount()
			mi.EnumSymbols = et.Symbols()
			return mi, nil
		}
		mi.Class = ClassEnum
		mi.ElementSize = et.StorageSize()
		mi.EnumSymbols = et.Symbols()
	default:
		return otherInfo(mi), nil
	}
	return mi, nil
}

func otherInfo(mi MemberInfo) MemberInfo {
	mi.Class = ClassOther
	mi.ElementSize = -1
	mi.Count = 1
	return mi
}

func sequenceCount(m *mapping.MemberMapping, fd mapping.FieldDescriptor) int {
	if fd.Rank > 0 || fd.MultiArray {
		return m.ElementCount()
	}
	return 1
}
