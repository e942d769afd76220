package arena

import (
	"math/rand"
	"testing"

	"github.com/gnolang/acmatch/alphabet"
)

func generateRandomPatterns(count, maxLength int) [][]byte {
	patterns := make([][]byte, count)
	for i := range count {
		length := rand.Intn(maxLength) + 1
		p := make([]byte, length)
		for j := range length {
			p[j] = byte('a' + rand.Intn(26))
		}
		patterns[i] = p
	}
	return patterns
}

var sizes = []struct {
	name      string
	count     int
	maxLength int
}{
	{"Small", 100, 5},
	{"Medium", 1000, 10},
	{"Large", 10000, 20},
}

func BenchmarkBuild(b *testing.B) {
	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			patterns := generateRandomPatterns(size.count, size.maxLength)
			ab, err := alphabet.Compress(patterns)
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				Build(ab, patterns)
			}
		})
	}
}

func BenchmarkEqual(b *testing.B) {
	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			patterns := generateRandomPatterns(size.count, size.maxLength)
			ab, err := alphabet.Compress(patterns)
			if err != nil {
				b.Fatal(err)
			}
			a1 := Build(ab, patterns)
			a2 := Build(ab, patterns)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				a1.Equal(a2)
			}
		})
	}
}

func BenchmarkString(b *testing.B) {
	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			patterns := generateRandomPatterns(size.count, size.maxLength)
			ab, err := alphabet.Compress(patterns)
			if err != nil {
				b.Fatal(err)
			}
			a := Build(ab, patterns)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = a.String()
			}
		})
	}
}
