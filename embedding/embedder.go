package embedding

import (
	"context"
	"math"
)

// Embedder converts text into a fixed-length vector. The same embedder must
// be used for both indexing and querying; mixing embedders is a
// configuration error the index guards against by dimensionality.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// BatchEmbedder is implemented by embedders that support embedding several
// texts in one upstream call. Ingestion uses it when available.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// normalize scales v to unit length in place. Zero vectors are left as-is.
func normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
