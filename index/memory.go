package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"lexanswer-backend/embedding"
	"lexanswer-backend/models"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Memory is an in-process index using brute-force cosine similarity.
// A RWMutex keeps reads consistent during writes: a reader sees either the
// pre- or post-write state, never a partially written vector. Document
// deletion happens under the write lock and is therefore atomic.
type Memory struct {
	embedder embedding.Embedder

	mu     sync.RWMutex
	chunks []models.Chunk
}

// NewMemory creates an in-memory index bound to the given embedder
func NewMemory(embedder embedding.Embedder) *Memory {
	return &Memory{embedder: embedder}
}

// Add embeds chunks without precomputed vectors and stores them
func (m *Memory) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return ErrNoChunks
	}

	// Embedding happens before the lock is taken; readers are not blocked
	// on upstream latency.
	prepared := make([]models.Chunk, len(chunks))
	for i, chunk := range chunks {
		vec := chunk.Embedding.Slice()
		if len(vec) == 0 {
			embedded, err := m.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return err
			}
			vec = embedded
			chunk.Embedding = pgvector.NewVector(embedded)
		}
		if len(vec) != m.embedder.Dimension() {
			return ErrDimensionMismatch
		}
		prepared[i] = chunk
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, prepared...)
	return nil
}

// Search embeds the query and returns the k nearest chunks
func (m *Memory) Search(ctx context.Context, query string, k int, filter *Filter) ([]models.Chunk, error) {
	if k <= 0 {
		k = 5
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(queryVec) != m.embedder.Dimension() {
		return nil, ErrDimensionMismatch
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		chunk    models.Chunk
		distance float64
	}
	var results []scored
	for i := range m.chunks {
		if !filter.Matches(&m.chunks[i]) {
			continue
		}
		results = append(results, scored{
			chunk:    m.chunks[i],
			distance: cosineDistance(queryVec, m.chunks[i].Embedding.Slice()),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].distance < results[j].distance
	})
	if k > len(results) {
		k = len(results)
	}

	out := make([]models.Chunk, 0, k)
	for _, r := range results[:k] {
		chunk := r.chunk
		chunk.Distance = r.distance
		out = append(out, chunk)
	}
	return out, nil
}

// DeleteDocument removes all chunks belonging to the document
func (m *Memory) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.chunks[:0]
	for _, chunk := range m.chunks {
		if chunk.DocumentID != docID {
			kept = append(kept, chunk)
		}
	}
	m.chunks = kept
	return nil
}

// Count returns the number of stored chunks
func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// cosineDistance returns 1 - cosine similarity, matching the pgvector
// <=> operator so both index implementations report comparable distances.
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
