package enum

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewType(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		wantErr bool
	}{
		{"Valid", []string{"RED", "GREEN", "BLUE"}, false},
		{"SingleSymbol", []string{"ONLY"}, false},
		{"Empty", nil, true},
		{"Duplicate", []string{"A", "B", "A"}, true},
		{"EmptySymbol", []string{"A", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := NewType("colors", tt.symbols)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "colors", typ.Name())
			assert.Equal(t, len(tt.symbols), typ.Len())
			assert.Equal(t, tt.symbols, typ.Symbols())
		})
	}
}

func TestStorageSize(t *testing.T) {
	tests := []struct {
		cardinality int
		want        int
	}{
		{3, 1},
		{256, 1},
		{257, 2},
		{65536, 2},
		{65537, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.cardinality), func(t *testing.T) {
			symbols := make([]string, tt.cardinality)
			for i := range symbols {
				symbols[i] = fmt.Sprintf("v%d", i)
			}
			typ, err := NewType("big", symbols)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typ.StorageSize())
		})
	}
}

func TestEncode(t *testing.T) {
	typ := MustType("colors", "RED", "GREEN", "BLUE")

	ord, err := typ.Encode("GREEN")
	require.NoError(t, err)
	assert.Equal(t, 1, ord)

	_, err = typ.Encode("PURPLE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownValue)

	var uve *UnknownValueError
	require.ErrorAs(t, err, &uve)
	assert.Equal(t, "colors", uve.TypeName)
	assert.Equal(t, "PURPLE", uve.Symbol)
}

func TestDecodeFallback(t *testing.T) {
	typ := MustType("link_type", "FILE", "DIRECTORY", "SYMLINK", "FIFO", "SOCKET")

	// In-range ordinals decode to their symbol.
	assert.Equal(t, "FILE", typ.Decode(0))
	assert.Equal(t, "SOCKET", typ.Decode(4))

	// Out-of-range ordinals degrade gracefully instead of failing. Readers
	// depend on this when the writer's symbol table was larger than ours.
	assert.Equal(t, Unclassified, typ.Decode(99))
	assert.Equal(t, Unclassified, typ.Decode(-1))

	_, ok := typ.Lookup(99)
	assert.False(t, ok)
}

func TestTypeEqual(t *testing.T) {
	a := MustType("colors", "RED", "GREEN")
	b := MustType("colors", "RED", "GREEN")
	c := MustType("colors", "GREEN", "RED")
	d := MustType("other", "RED", "GREEN")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestValue(t *testing.T) {
	typ := MustType("colors", "RED", "GREEN", "BLUE")

	v, err := NewValue(typ, "BLUE")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Ordinal())
	assert.Equal(t, "BLUE", v.Symbol())
	assert.Same(t, typ, v.Type())

	_, err = NewValue(typ, "PURPLE")
	assert.ErrorIs(t, err, ErrUnknownValue)

	_, err = NewValue(nil, "RED")
	assert.Error(t, err)
}

func TestValueArray(t *testing.T) {
	typ := MustType("colors", "RED", "GREEN", "BLUE")

	va, err := NewValueArray(typ, []string{"BLUE", "RED"})
	require.NoError(t, err)
	assert.Equal(t, 2, va.Len())
	assert.Equal(t, 2, va.Ordinal(0))
	assert.Equal(t, 0, va.Ordinal(1))
	assert.Equal(t, []string{"BLUE", "RED"}, va.Symbols())

	_, err = NewValueArray(typ, []string{"RED", "NOPE"})
	assert.ErrorIs(t, err, ErrUnknownValue)
}
