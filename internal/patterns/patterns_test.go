package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableCopiesInput(t *testing.T) {
	t.Parallel()
	src := []byte("abc")
	tbl := New([]Entry[int]{{Pattern: src, Value: 7}})
	src[0] = 'z'

	e := tbl.Get(0)
	assert.Equal(t, []byte("abc"), e.Pattern)
	assert.Equal(t, 7, e.Value)
	assert.Equal(t, 1, tbl.Len())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b [][]byte
		same bool
	}{
		{
			name: "identical",
			a:    [][]byte{[]byte("he"), []byte("she")},
			b:    [][]byte{[]byte("he"), []byte("she")},
			same: true,
		},
		{
			name: "order_matters",
			a:    [][]byte{[]byte("he"), []byte("she")},
			b:    [][]byte{[]byte("she"), []byte("he")},
			same: false,
		},
		{
			name: "boundaries_matter",
			a:    [][]byte{[]byte("ab"), []byte("c")},
			b:    [][]byte{[]byte("a"), []byte("bc")},
			same: false,
		},
		{
			name: "empty_pattern_counts",
			a:    [][]byte{[]byte("a")},
			b:    [][]byte{[]byte("a"), {}},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fa := FromBytes(tt.a).Fingerprint()
			fb := FromBytes(tt.b).Fingerprint()
			if tt.same {
				assert.Equal(t, fa, fb)
			} else {
				assert.NotEqual(t, fa, fb)
			}
		})
	}
}

func TestFingerprintIgnoresPayload(t *testing.T) {
	t.Parallel()
	a := New([]Entry[string]{{Pattern: []byte("x"), Value: "one"}})
	b := New([]Entry[string]{{Pattern: []byte("x"), Value: "two"}})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}
