package mapping

import (
	"testing"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compoundgo/enum"
)

func TestInferMap(t *testing.T) {
	values := map[string]any{
		"date":  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		"count": 5,
		"tags":  []string{"a", "b"},
	}

	members, err := InferMap(values)
	require.NoError(t, err)
	require.Len(t, members, 3)

	// Sorted by member name for determinism.
	assert.Equal(t, "count", members[0].Member())
	assert.Equal(t, "date", members[1].Member())
	assert.Equal(t, "tags", members[2].Member())

	assert.Empty(t, members[0].Dims())
	assert.Equal(t, VariantNone, members[0].Variant())

	assert.Empty(t, members[1].Dims())
	assert.Equal(t, VariantTimestampMillis, members[1].Variant())

	assert.Equal(t, []int{2}, members[2].Dims())
	assert.Equal(t, VariantNone, members[2].Variant())
}

func TestInferPairsPreservesOrder(t *testing.T) {
	names := []string{"z", "a", "m"}
	values := []any{int32(1), int64(2), float32(3)}

	members, err := InferPairs(names, values)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "z", members[0].Member())
	assert.Equal(t, "a", members[1].Member())
	assert.Equal(t, "m", members[2].Member())

	_, err = InferPairs([]string{"a"}, nil)
	assert.Error(t, err)
}

func TestInferValueClassification(t *testing.T) {
	in := NewInferencer()

	t.Run("String", func(t *testing.T) {
		m, err := in.inferValue("s", "hello")
		require.NoError(t, err)
		assert.Equal(t, []int{5}, m.Dims())
		fd, ok := m.FieldHint()
		require.True(t, ok)
		assert.Equal(t, KindString, fd.Kind)
	})

	t.Run("Matrix", func(t *testing.T) {
		m, err := in.inferValue("v", [][]float64{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, m.Dims())
		fd, _ := m.FieldHint()
		assert.Equal(t, KindFloat64, fd.Kind)
		assert.Equal(t, 2, fd.Rank)
	})

	t.Run("ByteSlice", func(t *testing.T) {
		m, err := in.inferValue("b", []byte{1, 2, 3, 4})
		require.NoError(t, err)
		assert.Equal(t, []int{4}, m.Dims())
		fd, _ := m.FieldHint()
		assert.Equal(t, KindInt8, fd.Kind)
		assert.Equal(t, 1, fd.Rank)
	})

	t.Run("BitSetUsesHighestSetBit", func(t *testing.T) {
		b := bitset.New(256)
		b.Set(10)
		b.Set(70)

		m, err := in.inferValue("flags", b)
		require.NoError(t, err)
		assert.Equal(t, []int{71}, m.Dims())
		fd, _ := m.FieldHint()
		assert.Equal(t, KindBitSet, fd.Kind)
	})

	t.Run("EmptyBitSetOccupiesOneBit", func(t *testing.T) {
		m, err := in.inferValue("flags", bitset.New(64))
		require.NoError(t, err)
		assert.Equal(t, []int{1}, m.Dims())
	})

	t.Run("EnumValue", func(t *testing.T) {
		colors := enum.MustType("colors", "RED", "GREEN")
		m, err := in.inferValue("c", enum.MustValue(colors, "GREEN"))
		require.NoError(t, err)
		assert.Empty(t, m.Dims())
		assert.Same(t, colors, m.Enum())
	})

	t.Run("EnumValueArray", func(t *testing.T) {
		colors := enum.MustType("colors", "RED", "GREEN")
		m, err := in.inferValue("cs", enum.MustValueArray(colors, "RED", "RED", "GREEN"))
		require.NoError(t, err)
		assert.Equal(t, []int{3}, m.Dims())
		assert.Same(t, colors, m.Enum())
	})

	t.Run("NilValue", func(t *testing.T) {
		_, err := in.inferValue("x", nil)
		assert.Error(t, err)
	})
}

func TestInferDurationVariants(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want Variant
	}{
		{"Seconds", 3 * time.Second, VariantDurationSeconds},
		{"Millis", 1500 * time.Millisecond, VariantDurationMillis},
		{"Micros", 1501 * time.Microsecond, VariantDurationMicros},
		{"Nanos", 7 * time.Nanosecond, VariantDurationMicros},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := InferPairs([]string{"d"}, []any{tt.d})
			require.NoError(t, err)
			assert.Equal(t, tt.want, m[0].Variant())
		})
	}
}

func TestInferVariantTableIsExplicit(t *testing.T) {
	// An empty table attaches no variants, even for time.Time.
	in := NewInferencer(WithVariantTable(VariantTable{}))

	m, err := in.InferPairs([]string{"date"}, []any{time.Now()})
	require.NoError(t, err)
	assert.Equal(t, VariantNone, m[0].Variant())
}

type taggedRecord struct {
	S string `compound:"someString,len=10"`
	F float32
}

func TestInferStructTagged(t *testing.T) {
	members, err := InferStruct(taggedRecord{}, nil)
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "someString", members[0].Member())
	assert.Equal(t, "S", members[0].Field())
	assert.Equal(t, []int{10}, members[0].Dims())

	assert.Equal(t, "F", members[1].Member())
	assert.Empty(t, members[1].Dims())
}

type selectiveRecord struct {
	S string `compound:"someString,len=10"`
	F float32
}

func TestInferStructMapAllFieldsDisabled(t *testing.T) {
	in := NewInferencer(WithMapAllFields(false))

	members, err := in.InferStruct(selectiveRecord{}, nil)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "someString", members[0].Member())
}

type inheritedRecord struct {
	baseRecord
	Extra   int32
	Skipped string `compound:"-"`
	Grid    []int8 `compound:",dims=2x4"`
	VarText string `compound:",varlen"`
}

func TestInferStructEmbeddedAndOptions(t *testing.T) {
	members, err := InferStruct(inheritedRecord{}, nil)
	require.NoError(t, err)
	require.Len(t, members, 4)

	assert.Equal(t, "ID", members[0].Member())
	assert.Equal(t, "Extra", members[1].Member())

	assert.Equal(t, "Grid", members[2].Member())
	assert.Equal(t, []int{2, 4}, members[2].Dims())

	assert.Equal(t, "VarText", members[3].Member())
	assert.True(t, members[3].IsVariableLength())
}

type enumRecord struct {
	Name string `compound:",len=8"`
	Kind enum.Value
}

func TestInferStructWithEnumTypes(t *testing.T) {
	linkType := enum.MustType("link_type", "FILE", "DIRECTORY", "SYMLINK")

	members, err := InferStruct(enumRecord{}, map[string]*enum.Type{"Kind": linkType})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Same(t, linkType, members[1].Enum())
}

func TestInferStructBadTag(t *testing.T) {
	type bad struct {
		X int32 `compound:",len=abc"`
	}
	_, err := InferStruct(bad{}, nil)
	assert.Error(t, err)

	type unknown struct {
		X int32 `compound:",bogus"`
	}
	_, err = InferStruct(unknown{}, nil)
	assert.Error(t, err)
}

func TestInferEnumTypes(t *testing.T) {
	colors := enum.MustType("colors", "RED", "GREEN")
	sizes := enum.MustType("sizes", "S", "M", "L")

	type rec struct {
		C  enum.Value
		CS enum.ValueArray
		N  int32
	}
	v := rec{
		C:  enum.MustValue(colors, "RED"),
		CS: enum.MustValueArray(sizes, "M"),
	}

	types := InferEnumTypes(v)
	require.Len(t, types, 2)
	assert.Same(t, colors, types["C"])
	assert.Same(t, sizes, types["CS"])

	assert.Nil(t, InferEnumTypes(42))
}
