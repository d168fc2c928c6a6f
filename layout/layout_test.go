package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compoundgo/enum"
	"github.com/hupe1980/compoundgo/internal/varstr"
	"github.com/hupe1980/compoundgo/mapping"
)

func testDescriptor(t *testing.T) *mapping.Descriptor {
	t.Helper()
	desc, err := mapping.NewDescriptor("rec",
		mapping.FieldDescriptor{Name: "flag", Kind: mapping.KindBool},
		mapping.FieldDescriptor{Name: "b", Kind: mapping.KindInt8},
		mapping.FieldDescriptor{Name: "s16", Kind: mapping.KindInt16},
		mapping.FieldDescriptor{Name: "i32", Kind: mapping.KindInt32},
		mapping.FieldDescriptor{Name: "l64", Kind: mapping.KindInt64},
		mapping.FieldDescriptor{Name: "f32", Kind: mapping.KindFloat32},
		mapping.FieldDescriptor{Name: "d64", Kind: mapping.KindFloat64},
		mapping.FieldDescriptor{Name: "txt", Kind: mapping.KindString},
		mapping.FieldDescriptor{Name: "bits", Kind: mapping.KindBitSet},
		mapping.FieldDescriptor{Name: "vec", Kind: mapping.KindFloat32, Rank: 1},
		mapping.FieldDescriptor{Name: "mat", Kind: mapping.KindInt32, Rank: 2},
	)
	require.NoError(t, err)
	return desc
}

func TestDispatchTable(t *testing.T) {
	desc := testDescriptor(t)

	tests := []struct {
		name      string
		m         *mapping.MemberMapping
		wantClass Class
		wantElem  int
		wantSize  int
	}{
		{"Boolean", mapping.Mapping("flag"), ClassBoolean, 1, 1},
		{"Byte", mapping.Mapping("b"), ClassInteger, 1, 1},
		{"Short", mapping.Mapping("s16"), ClassInteger, 2, 2},
		{"Int", mapping.Mapping("i32"), ClassInteger, 4, 4},
		{"Long", mapping.Mapping("l64"), ClassInteger, 8, 8},
		{"Float", mapping.Mapping("f32"), ClassFloat, 4, 4},
		{"Double", mapping.Mapping("d64"), ClassFloat, 8, 8},
		{"String", mapping.Mapping("txt").Length(10), ClassString, 10, 10},
		{"BitSet70", mapping.Mapping("bits").Length(70), ClassBitfield, 8, 16},
		{"BitSet64", mapping.Mapping("bits").Length(64), ClassBitfield, 8, 8},
		{"FloatArray", mapping.Mapping("vec").Length(3), ClassFloat, 4, 12},
		{"IntMatrix", mapping.Mapping("mat").Dimensions(2, 3), ClassInteger, 4, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infos, err := Build([]*mapping.MemberMapping{tt.m}, desc)
			require.NoError(t, err)
			require.Len(t, infos, 1)
			assert.Equal(t, tt.wantClass, infos[0].Class)
			assert.Equal(t, tt.wantElem, infos[0].ElementSize)
			assert.Equal(t, tt.wantSize, infos[0].Size())
		})
	}
}

func TestBuildSortsAndAssignsOffsets(t *testing.T) {
	desc := testDescriptor(t)
	members := []*mapping.MemberMapping{
		mapping.Mapping("txt").Length(10),
		mapping.Mapping("i32"),
		mapping.Mapping("d64"),
	}

	infos, err := Build(members, desc)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	// Alphabetical by member name.
	assert.Equal(t, "d64", infos[0].Name)
	assert.Equal(t, "i32", infos[1].Name)
	assert.Equal(t, "txt", infos[2].Name)

	// Offsets are the running sum over the sorted order: strictly
	// increasing, non-overlapping, and summing to the record size.
	prevEnd := 0
	for _, mi := range infos {
		assert.Equal(t, prevEnd, mi.Offset)
		assert.Positive(t, mi.Size())
		prevEnd = mi.Offset + mi.Size()
	}
	assert.Equal(t, 8+4+10, prevEnd)
	assert.Equal(t, prevEnd, TotalSize(infos))
}

func TestBuildWireKeepsDeclarationOrder(t *testing.T) {
	desc := testDescriptor(t)
	members := []*mapping.MemberMapping{
		mapping.Mapping("txt").Length(10),
		mapping.Mapping("i32"),
	}

	infos, size, err := BuildWire(members, desc)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "txt", infos[0].Name)
	assert.Equal(t, 0, infos[0].Offset)
	assert.Equal(t, "i32", infos[1].Name)
	assert.Equal(t, 10, infos[1].Offset)
	assert.Equal(t, 14, size)
}

func TestSchemaComparison(t *testing.T) {
	desc := testDescriptor(t)

	// Two independently declared schemas with the same members, in
	// different declaration order, compare equal once built.
	a, err := Build([]*mapping.MemberMapping{
		mapping.Mapping("i32"),
		mapping.Mapping("txt").Length(10),
	}, desc)
	require.NoError(t, err)

	b, err := Build([]*mapping.MemberMapping{
		mapping.Mapping("txt").Length(10),
		mapping.Mapping("i32"),
	}, desc)
	require.NoError(t, err)

	assert.True(t, Equal(a, b))

	c, err := Build([]*mapping.MemberMapping{
		mapping.Mapping("txt").Length(12),
		mapping.Mapping("i32"),
	}, desc)
	require.NoError(t, err)
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, a[:1]))
}

func TestEnumMember(t *testing.T) {
	linkType := enum.MustType("link_type", "FILE", "DIRECTORY", "SYMLINK")
	m := mapping.Mapping("kind").EnumType(linkType)

	infos, err := Build([]*mapping.MemberMapping{m}, nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, ClassEnum, infos[0].Class)
	assert.Equal(t, 1, infos[0].ElementSize)
	assert.Equal(t, []string{"FILE", "DIRECTORY", "SYMLINK"}, infos[0].EnumSymbols)
}

func TestEnumArrayComparisonVsWire(t *testing.T) {
	colors := enum.MustType("colors", "RED", "GREEN")
	m := mapping.Mapping("cs").Length(4).EnumType(colors)

	// The comparison layout cannot size an enumeration array locally.
	infos, err := Build([]*mapping.MemberMapping{m}, nil)
	require.NoError(t, err)
	assert.Equal(t, ClassOther, infos[0].Class)
	assert.Equal(t, -1, infos[0].ElementSize)
	assert.Equal(t, -1, infos[0].Size())

	// The wire layout sizes it so the codec can place the ordinals.
	wire, size, err := BuildWire([]*mapping.MemberMapping{m}, nil)
	require.NoError(t, err)
	assert.Equal(t, ClassEnum, wire[0].Class)
	assert.Equal(t, 1, wire[0].ElementSize)
	assert.Equal(t, 4, wire[0].Count)
	assert.Equal(t, 4, size)
}

func TestVariableLengthStringSlot(t *testing.T) {
	desc := testDescriptor(t)
	m := mapping.Mapping("txt").Length(1).VariableLength()

	infos, size, err := BuildWire([]*mapping.MemberMapping{m}, desc)
	require.NoError(t, err)
	assert.Equal(t, ClassString, infos[0].Class)
	assert.Equal(t, varstr.PointerSize, infos[0].ElementSize)
	assert.Equal(t, varstr.PointerSize, size)
}

func TestDimensionPropagation(t *testing.T) {
	desc := testDescriptor(t)

	infos, err := Build([]*mapping.MemberMapping{
		mapping.Mapping("vec").Length(3),
		mapping.Mapping("txt").Length(10),
		mapping.Mapping("bits").Length(70),
	}, desc)
	require.NoError(t, err)

	byName := map[string]MemberInfo{}
	for _, mi := range infos {
		byName[mi.Name] = mi
	}

	// Only array members carry dimensions in the member description.
	assert.Equal(t, []int{3}, byName["vec"].Dimensions)
	assert.Nil(t, byName["txt"].Dimensions)
	assert.Nil(t, byName["bits"].Dimensions)
}

func TestUnknownFieldIsFatalForLayout(t *testing.T) {
	desc := testDescriptor(t)

	_, err := Build([]*mapping.MemberMapping{mapping.Mapping("nope")}, desc)
	assert.Error(t, err)
}

func TestValidationFailsFast(t *testing.T) {
	desc := testDescriptor(t)

	_, err := Build([]*mapping.MemberMapping{mapping.Mapping("i32").Length(5)}, desc)
	assert.ErrorIs(t, err, mapping.ErrSchemaMismatch)
}
