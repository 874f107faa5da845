package models

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk represents a retrievable passage of a document from the knowledge base
type Chunk struct {
	ID           uuid.UUID         `json:"id"`
	DocumentID   uuid.UUID         `json:"document_id"`
	Index        int               `json:"index"` // ordinal position within the document
	Text         string            `json:"text"`
	Citations    []string          `json:"citations,omitempty"`
	Embedding    pgvector.Vector   `json:"-"`
	Jurisdiction string            `json:"jurisdiction"`
	DocType      DocumentType      `json:"doc_type"`
	DocTitle     string            `json:"doc_title"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Distance     float64           `json:"distance,omitempty"` // Vector similarity distance
}
