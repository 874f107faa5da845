package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"lexanswer-backend/chunker"
	"lexanswer-backend/embedding"
	"lexanswer-backend/index"
	"lexanswer-backend/models"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

var (
	ErrEmptyDocument = errors.New("document text is empty")
	ErrIndexNotSet   = errors.New("embedding index not set")
	ErrChunkerNotSet = errors.New("chunker not set")
)

// IngestService handles document ingestion into the embedding index
type IngestService struct {
	idx      index.Index
	chunker  *chunker.Chunker
	embedder embedding.Embedder
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithIndex sets the embedding index
func IngestWithIndex(idx index.Index) IngestServiceOption {
	return func(s *IngestService) {
		s.idx = idx
	}
}

// IngestWithChunker sets the chunker
func IngestWithChunker(c *chunker.Chunker) IngestServiceOption {
	return func(s *IngestService) {
		s.chunker = c
	}
}

// IngestWithEmbedder sets the embedder used for batch pre-embedding
func IngestWithEmbedder(e embedding.Embedder) IngestServiceOption {
	return func(s *IngestService) {
		s.embedder = e
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestResult identifies an ingested document
type IngestResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	ChunkCount int       `json:"chunk_count"`
}

// Ingest chunks the document, extracts per-chunk citations, embeds, and
// writes to the index. An empty document is malformed input, rejected
// synchronously.
func (s *IngestService) Ingest(ctx context.Context, doc models.Document) (*IngestResult, error) {
	if s.idx == nil {
		return nil, ErrIndexNotSet
	}
	if s.chunker == nil {
		return nil, ErrChunkerNotSet
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, ErrEmptyDocument
	}

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	chunks := s.chunker.Chunk(doc)

	// One upstream call per document when the embedder supports batching;
	// otherwise the index embeds chunk by chunk.
	if batcher, ok := s.embedder.(embedding.BatchEmbedder); ok {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Text
		}
		vectors, err := batcher.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		for i := range chunks {
			chunks[i].Embedding = pgvector.NewVector(vectors[i])
		}
	}

	if err := s.idx.Add(ctx, chunks); err != nil {
		return nil, err
	}

	return &IngestResult{
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
	}, nil
}

// DeleteDocument removes a document's chunks from the index. The index
// guarantees the deletion is atomic; in-flight queries that already
// retrieved the chunks may complete with stale copies.
func (s *IngestService) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	if s.idx == nil {
		return ErrIndexNotSet
	}
	return s.idx.DeleteDocument(ctx, docID)
}
