package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const defaultLocalDimension = 384

// Local is a deterministic hashed bag-of-words embedder. It needs no
// network access, which makes it the offline fallback and the embedder used
// in tests. Identical texts always produce identical vectors.
type Local struct {
	dimension int
}

// NewLocal creates a local embedder with the given dimensionality
func NewLocal(dimension int) *Local {
	if dimension <= 0 {
		dimension = defaultLocalDimension
	}
	return &Local{dimension: dimension}
}

// Dimension returns the vector dimensionality
func (l *Local) Dimension() int {
	return l.dimension
}

// Embed hashes each token into a bucket and L2-normalizes the counts
func (l *Local) Embed(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, l.dimension)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		v[int(h.Sum32())%l.dimension]++
	}
	normalize(v)
	return v, nil
}

// tokenize lowercases and splits on non-alphanumeric runes
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
