package arena

import (
	"testing"

	"github.com/gnolang/acmatch/alphabet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toBytes(words ...string) [][]byte {
	out := make([][]byte, len(words))
	for i, w := range words {
		out[i] = []byte(w)
	}
	return out
}

func build(t testing.TB, words ...string) *Arena {
	t.Helper()
	patterns := toBytes(words...)
	ab, err := alphabet.Compress(patterns)
	require.NoError(t, err)
	return Build(ab, patterns)
}

func TestEqCorrectness(t *testing.T) {
	tests := []struct {
		name     string
		words1   []string
		words2   []string
		expectEq bool
	}{
		{
			name:     "identical_empty_arenas",
			expectEq: true,
		},
		{
			name:     "identical_single_path",
			words1:   []string{"abc"},
			words2:   []string{"abc"},
			expectEq: true,
		},
		{
			name:     "identical_multiple_paths",
			words1:   []string{"abc", "abd", "xyz"},
			words2:   []string{"abc", "abd", "xyz"},
			expectEq: true,
		},
		{
			name:     "different_paths",
			words1:   []string{"abc"},
			words2:   []string{"abd"},
			expectEq: false,
		},
		{
			name:     "different_number_of_paths",
			words1:   []string{"abc"},
			words2:   []string{"abc", "xyz"},
			expectEq: false,
		},
		{
			name:     "prefix_overlap",
			words1:   []string{"abc", "ab"},
			words2:   []string{"abc"},
			expectEq: false,
		},
		{
			// same shape, but pattern ids land on different nodes
			name:     "different_order",
			words1:   []string{"abc", "xyz"},
			words2:   []string{"xyz", "abc"},
			expectEq: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a1 := build(t, tt.words1...)
			a2 := build(t, tt.words2...)
			assert.Equal(t, tt.expectEq, a1.Equal(a2))
		})
	}
}

func TestArenaString(t *testing.T) {
	a := build(t, "abc", "abd", "ae", "f")
	assert.Equal(t, "a(b(c(*0)d(*1))e(*2))f(*3)", a.String())
}

func TestArenaSharesPrefixes(t *testing.T) {
	a := build(t, "he", "she", "his", "hers")
	// root, h, he, s, sh, she, hi, his, her, hers
	assert.Equal(t, 10, a.Len())
	assert.Equal(t, 5, a.Width())
}

func TestInsertDuplicateKeepsBothIDs(t *testing.T) {
	patterns := toBytes("ab", "cd", "ab")
	ab, err := alphabet.Compress(patterns)
	require.NoError(t, err)
	a := Build(ab, patterns)

	n := Root
	for _, b := range []byte("ab") {
		c, ok := ab.Code(b)
		require.True(t, ok)
		n = a.Next(n, c)
		require.NotEqual(t, NoNode, n)
	}
	assert.Equal(t, []PatternID{0, 2}, a.Accepts(n))
	assert.Equal(t, PatternID(2), a.Terminal(n))
}

func TestInsertEmptyPattern(t *testing.T) {
	a := build(t, "", "a")
	assert.Equal(t, NoPattern, a.Terminal(Root))
	assert.Equal(t, "a(*1)", a.String())
}

func TestIsChildIgnoresAddedTransitions(t *testing.T) {
	patterns := toBytes("ab", "b")
	ab, err := alphabet.Compress(patterns)
	require.NoError(t, err)
	a := Build(ab, patterns)

	ca, _ := ab.Code('a')
	cb, _ := ab.Code('b')
	nodeA := a.Next(Root, ca)
	nodeB := a.Next(Root, cb)

	assert.True(t, a.IsChild(Root, ca, nodeA))
	assert.False(t, a.IsChild(nodeA, cb, nodeB))

	before := a.String()
	a.SetNext(nodeA, ca, nodeA)
	a.SetNext(Root, ca, nodeA)
	assert.Equal(t, before, a.String())
}

func TestMergeAccepts(t *testing.T) {
	a := build(t, "ab", "b")
	var ab, b NodeIndex = NoNode, NoNode
	for i := NodeIndex(0); i < NodeIndex(a.Len()); i++ {
		switch a.Terminal(i) {
		case 0:
			ab = i
		case 1:
			b = i
		}
	}
	require.NotEqual(t, NoNode, ab)
	require.NotEqual(t, NoNode, b)

	a.MergeAccepts(ab, b)
	assert.Equal(t, []PatternID{0, 1}, a.Accepts(ab))

	a.MergeAccepts(ab, ab)
	assert.Equal(t, []PatternID{0, 1}, a.Accepts(ab))
}
