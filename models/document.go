package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType classifies a corpus document
type DocumentType string

const (
	DocTypeCaseLaw    DocumentType = "case_law"
	DocTypeStatute    DocumentType = "statute"
	DocTypeRegulation DocumentType = "regulation"
	DocTypeCommentary DocumentType = "commentary"
)

// Document represents a legal document ingested into the knowledge base.
// The raw text is immutable once the document has been chunked; only
// metadata fields may be edited afterwards.
type Document struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Jurisdiction string       `json:"jurisdiction"` // e.g. "ZA", "ZA-GP", "ZA-WC"
	DocType      DocumentType `json:"doc_type"`
	Text         string       `json:"text"`
	CreatedAt    time.Time    `json:"created_at"`
}
