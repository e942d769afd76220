package alphabet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressFirstSeenOrder(t *testing.T) {
	t.Parallel()
	ab, err := Compress([][]byte{[]byte("bab"), []byte("cab"), []byte("d")})
	require.NoError(t, err)

	assert.Equal(t, 4, ab.Size())
	assert.Equal(t, []byte("bacd"), ab.Bytes())

	for i, b := range []byte("bacd") {
		c, ok := ab.Code(b)
		require.True(t, ok, "byte %q", b)
		assert.Equal(t, Code(i), c)
		assert.Equal(t, b, ab.Symbol(c))
	}

	c, ok := ab.Code('z')
	assert.False(t, ok)
	assert.Equal(t, Absent, c)

	_, ok = ab.Code(200)
	assert.False(t, ok)
}

func TestCompressInitialBytes(t *testing.T) {
	t.Parallel()
	ab, err := Compress([][]byte{[]byte("ababc"), []byte("babcd"), []byte("cba"), {}})
	require.NoError(t, err)

	tests := []struct {
		b    byte
		want bool
	}{
		{'a', true},
		{'b', true},
		{'c', true},
		{'d', false},
		{'x', false},
		{0xff, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ab.CanStart(tt.b), "CanStart(%q)", tt.b)
	}
}

func TestCompressRejectsHighBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		patterns [][]byte
		want     byte
	}{
		{
			name:     "first_pattern",
			patterns: [][]byte{{'a', 0x80}},
			want:     0x80,
		},
		{
			name:     "later_pattern",
			patterns: [][]byte{[]byte("ok"), []byte("fine"), {'x', 0xff, 'y'}},
			want:     0xff,
		},
		{
			name:     "reports_first_offender",
			patterns: [][]byte{{0xc3, 0xa9}},
			want:     0xc3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ab, err := Compress(tt.patterns)
			require.Error(t, err)
			assert.Nil(t, ab)
			assert.True(t, errors.Is(err, ErrInvalidSymbol))

			var symErr *InvalidSymbolError
			require.ErrorAs(t, err, &symErr)
			assert.Equal(t, tt.want, symErr.Byte)
		})
	}
}

func TestCompressEmpty(t *testing.T) {
	t.Parallel()
	ab, err := Compress(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ab.Size())
	assert.False(t, ab.CanStart('a'))
}

func TestCompressFullRange(t *testing.T) {
	t.Parallel()
	all := make([]byte, MaxSymbol)
	for i := range all {
		all[i] = byte(MaxSymbol - 1 - i)
	}
	ab, err := Compress([][]byte{all})
	require.NoError(t, err)
	assert.Equal(t, MaxSymbol, ab.Size())

	c, ok := ab.Code(MaxSymbol - 1)
	require.True(t, ok)
	assert.Equal(t, Code(0), c)
}
