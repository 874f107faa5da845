package index

import (
	"context"
	"fmt"

	"lexanswer-backend/embedding"
	"lexanswer-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Postgres stores chunks in a pgvector-enabled Postgres table. Similarity
// search uses the cosine distance operator; document deletion is a single
// statement and therefore atomic.
type Postgres struct {
	db       *pgxpool.Pool
	embedder embedding.Embedder
}

// NewPostgres creates a Postgres-backed index
func NewPostgres(db *pgxpool.Pool, embedder embedding.Embedder) *Postgres {
	return &Postgres{db: db, embedder: embedder}
}

// EnsureSchema creates the chunks table and vector index if missing
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS legal_chunks (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL,
			chunk_index INT NOT NULL,
			chunk_text TEXT NOT NULL,
			citations TEXT[],
			embedding vector(%d) NOT NULL,
			jurisdiction TEXT NOT NULL DEFAULT '',
			doc_type TEXT NOT NULL DEFAULT '',
			doc_title TEXT NOT NULL DEFAULT '',
			metadata JSONB
		);
		CREATE INDEX IF NOT EXISTS legal_chunks_document_id_idx ON legal_chunks (document_id);
	`, p.embedder.Dimension())

	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create chunk schema: %w", err)
	}
	return nil
}

// Add embeds and inserts the chunks in a single transaction
func (p *Postgres) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return ErrNoChunks
	}

	prepared := make([]models.Chunk, len(chunks))
	for i, chunk := range chunks {
		vec := chunk.Embedding.Slice()
		if len(vec) == 0 {
			embedded, err := p.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d: %w", chunk.Index, err)
			}
			vec = embedded
			chunk.Embedding = pgvector.NewVector(embedded)
		}
		if len(vec) != p.embedder.Dimension() {
			return ErrDimensionMismatch
		}
		prepared[i] = chunk
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, chunk := range prepared {
		batch.Queue(`
			INSERT INTO legal_chunks
				(id, document_id, chunk_index, chunk_text, citations, embedding, jurisdiction, doc_type, doc_title, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			chunk.ID,
			chunk.DocumentID,
			chunk.Index,
			chunk.Text,
			chunk.Citations,
			chunk.Embedding,
			chunk.Jurisdiction,
			chunk.DocType,
			chunk.DocTitle,
			chunk.Metadata,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range prepared {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// Search embeds the query and returns the k nearest chunks
func (p *Postgres) Search(ctx context.Context, query string, k int, filter *Filter) ([]models.Chunk, error) {
	if k <= 0 {
		k = 5
	}

	queryVec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVec) != p.embedder.Dimension() {
		return nil, ErrDimensionMismatch
	}

	sql := `
		SELECT
			id,
			document_id,
			chunk_index,
			chunk_text,
			citations,
			embedding,
			jurisdiction,
			doc_type,
			doc_title,
			metadata,
			embedding <=> $1 AS distance
		FROM legal_chunks`
	args := []interface{}{pgvector.NewVector(queryVec)}

	if filter != nil {
		if filter.Jurisdiction != "" {
			args = append(args, filter.Jurisdiction)
			sql += fmt.Sprintf("\n\t\tWHERE jurisdiction = $%d", len(args))
		}
		if filter.DocType != "" {
			args = append(args, string(filter.DocType))
			if filter.Jurisdiction != "" {
				sql += fmt.Sprintf(" AND doc_type = $%d", len(args))
			} else {
				sql += fmt.Sprintf("\n\t\tWHERE doc_type = $%d", len(args))
			}
		}
	}

	args = append(args, k)
	sql += fmt.Sprintf("\n\t\tORDER BY embedding <=> $1\n\t\tLIMIT $%d", len(args))

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.Index,
			&chunk.Text,
			&chunk.Citations,
			&chunk.Embedding,
			&chunk.Jurisdiction,
			&chunk.DocType,
			&chunk.DocTitle,
			&chunk.Metadata,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	return chunks, nil
}

// DeleteDocument removes all chunks belonging to the document
func (p *Postgres) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM legal_chunks WHERE document_id = $1`, docID); err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", docID, err)
	}
	return nil
}

// Count returns the number of stored chunks
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM legal_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}
