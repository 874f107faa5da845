package index

import (
	"context"
	"errors"

	"lexanswer-backend/models"

	"github.com/google/uuid"
)

var (
	ErrDimensionMismatch = errors.New("embedding dimension does not match index configuration")
	ErrNoChunks          = errors.New("no chunks to add")
)

// Filter restricts a search to chunks matching metadata predicates.
// Zero values mean no restriction.
type Filter struct {
	Jurisdiction string
	DocType      models.DocumentType
}

// Matches reports whether the chunk satisfies the filter
func (f *Filter) Matches(c *models.Chunk) bool {
	if f == nil {
		return true
	}
	if f.Jurisdiction != "" && c.Jurisdiction != f.Jurisdiction {
		return false
	}
	if f.DocType != "" && c.DocType != f.DocType {
		return false
	}
	return true
}

// Index stores chunk vectors with metadata and answers nearest-neighbor
// queries. Implementations embed query text with the same embedder used at
// ingestion, are append-friendly, and support concurrent reads during
// writes. DeleteDocument is atomic from the caller's perspective.
type Index interface {
	// Add stores the chunks, computing embeddings for any chunk that does
	// not carry a precomputed vector.
	Add(ctx context.Context, chunks []models.Chunk) error

	// Search returns the k most similar chunks to the query text, subject
	// to an optional metadata filter, ordered by ascending distance.
	Search(ctx context.Context, query string, k int, filter *Filter) ([]models.Chunk, error)

	// DeleteDocument removes all chunks belonging to the document.
	DeleteDocument(ctx context.Context, docID uuid.UUID) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}
