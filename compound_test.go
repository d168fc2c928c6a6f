package compoundgo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compoundgo"
	"github.com/hupe1980/compoundgo/enum"
	"github.com/hupe1980/compoundgo/internal/varstr"
	"github.com/hupe1980/compoundgo/layout"
	"github.com/hupe1980/compoundgo/mapping"
)

func measurementDescriptor(t *testing.T) *mapping.Descriptor {
	t.Helper()
	desc, err := mapping.NewDescriptor("measurement",
		mapping.FieldDescriptor{Name: "Station", Kind: mapping.KindString},
		mapping.FieldDescriptor{Name: "Count", Kind: mapping.KindInt32},
		mapping.FieldDescriptor{Name: "Mean", Kind: mapping.KindFloat64},
	)
	require.NoError(t, err)
	return desc
}

func TestNewType(t *testing.T) {
	desc := measurementDescriptor(t)

	typ, err := compoundgo.NewType("measurement", desc, []*mapping.MemberMapping{
		mapping.Mapping("station").FieldName("Station").Length(8),
		mapping.Mapping("count").FieldName("Count"),
		mapping.Mapping("mean").FieldName("Mean"),
	})
	require.NoError(t, err)

	assert.Equal(t, "measurement", typ.Name())
	assert.Equal(t, 8+4+8, typ.RecordSize())
	assert.False(t, typ.HasVariableLength())
	assert.Empty(t, typ.VariableLengthOffsets())

	// Wire layout keeps declaration order; comparison layout is sorted.
	wire := typ.WireMembers()
	require.Len(t, wire, 3)
	assert.Equal(t, "station", wire[0].Name)
	assert.Equal(t, 0, wire[0].Offset)
	assert.Equal(t, "count", wire[1].Name)
	assert.Equal(t, 8, wire[1].Offset)

	members := typ.Members()
	require.Len(t, members, 3)
	assert.Equal(t, "count", members[0].Name)
	assert.Equal(t, "mean", members[1].Name)
	assert.Equal(t, "station", members[2].Name)
}

func TestNewTypeValidation(t *testing.T) {
	desc := measurementDescriptor(t)

	t.Run("NoMembers", func(t *testing.T) {
		_, err := compoundgo.NewType("empty", desc, nil)
		assert.Error(t, err)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := compoundgo.NewType("m", desc, []*mapping.MemberMapping{
			mapping.Mapping("nope"),
		})
		assert.Error(t, err)
	})

	t.Run("LengthOnScalar", func(t *testing.T) {
		_, err := compoundgo.NewType("m", desc, []*mapping.MemberMapping{
			mapping.Mapping("count").FieldName("Count").Length(5),
		})
		assert.ErrorIs(t, err, mapping.ErrSchemaMismatch)
	})

	t.Run("ZeroLengthText", func(t *testing.T) {
		_, err := compoundgo.NewType("m", desc, []*mapping.MemberMapping{
			mapping.Mapping("station").FieldName("Station").Length(0),
		})
		assert.ErrorIs(t, err, mapping.ErrSchemaMismatch)
	})
}

func TestNewTypeDerivedName(t *testing.T) {
	desc := measurementDescriptor(t)

	typ, err := compoundgo.NewType("", desc, []*mapping.MemberMapping{
		mapping.Mapping("count").FieldName("Count"),
		mapping.Mapping("mean").FieldName("Mean"),
	})
	require.NoError(t, err)
	assert.Equal(t, "count:mean", typ.Name())
}

func TestTypeEqual(t *testing.T) {
	desc := measurementDescriptor(t)

	a, err := compoundgo.NewType("a", desc, []*mapping.MemberMapping{
		mapping.Mapping("count").FieldName("Count"),
		mapping.Mapping("station").FieldName("Station").Length(8),
	})
	require.NoError(t, err)

	// Same members in a different declaration order, different name.
	b, err := compoundgo.NewType("b", desc, []*mapping.MemberMapping{
		mapping.Mapping("station").FieldName("Station").Length(8),
		mapping.Mapping("count").FieldName("Count"),
	})
	require.NoError(t, err)

	c, err := compoundgo.NewType("c", desc, []*mapping.MemberMapping{
		mapping.Mapping("station").FieldName("Station").Length(12),
		mapping.Mapping("count").FieldName("Count"),
	})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, a.Equal(a))
}

func TestNewTypeFromStruct(t *testing.T) {
	type event struct {
		Name    string `compound:"name,len=12"`
		Payload string `compound:"payload,varlen"`
		Ready   bool
		Count   int32
	}

	typ, err := compoundgo.NewTypeFromStruct("", event{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "event", typ.Name())
	assert.True(t, typ.HasVariableLength())
	assert.Equal(t, 12+varstr.PointerSize+1+4, typ.RecordSize())

	wire := typ.WireMembers()
	require.Len(t, wire, 4)
	assert.Equal(t, "payload", wire[1].Name)
	assert.Equal(t, varstr.PointerSize, wire[1].ElementSize)
	assert.Equal(t, []int{12}, typ.VariableLengthOffsets())
}

func TestNewTypeFromValues(t *testing.T) {
	typ, err := compoundgo.NewTypeFromValues("row", map[string]any{
		"tags":  []string{"", ""},
		"count": int32(0),
	})
	// []string has no compound representation.
	assert.Error(t, err)
	assert.Nil(t, typ)

	typ, err = compoundgo.NewTypeFromValues("row", map[string]any{
		"count": int32(7),
		"name":  "abcde",
	})
	require.NoError(t, err)

	// Members are ordered by name in value inference.
	wire := typ.WireMembers()
	require.Len(t, wire, 2)
	assert.Equal(t, "count", wire[0].Name)
	assert.Equal(t, layout.ClassInteger, wire[0].Class)
	assert.Equal(t, "name", wire[1].Name)
	assert.Equal(t, 5, wire[1].ElementSize)
}

func TestNewTypeEnumMembers(t *testing.T) {
	linkType := enum.MustType("link_type", "FILE", "DIRECTORY", "SYMLINK")

	typ, err := compoundgo.NewType("links", nil, []*mapping.MemberMapping{
		mapping.Mapping("kind").EnumType(linkType),
		mapping.Mapping("history").Length(3).EnumType(linkType),
	})
	require.NoError(t, err)

	wire := typ.WireMembers()
	require.Len(t, wire, 2)
	assert.Equal(t, layout.ClassEnum, wire[0].Class)
	assert.Equal(t, 1, wire[0].ElementSize)
	assert.Equal(t, 3, wire[1].Count)
	assert.Equal(t, 1+3, typ.RecordSize())
}
