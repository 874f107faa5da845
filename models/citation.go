package models

import (
	"github.com/google/uuid"
)

// CitationType labels the convention a citation string matched
type CitationType string

const (
	CitationApexCourt      CitationType = "apex-court"
	CitationAppellateCourt CitationType = "appellate-court"
	CitationHighCourt      CitationType = "high-court"
	CitationLawReport      CitationType = "law-report"
	CitationStatute        CitationType = "statute"
	CitationRegulation     CitationType = "regulation"
)

// Citation is a single citation occurrence extracted from text.
// Repeated occurrences of the same string collapse to one entry;
// Count preserves how many times it appeared.
type Citation struct {
	Text  string       `json:"text"`
	Type  CitationType `json:"type"`
	Count int          `json:"count"`
}

// CitationReference is an authoritative citation record from the curated
// registry, used as ground truth when validating generated answers.
type CitationReference struct {
	Citation     string     `json:"citation"`
	Title        string     `json:"title"`
	Jurisdiction string     `json:"jurisdiction"`
	Court        string     `json:"court,omitempty"`
	Year         int        `json:"year"`
	DocumentID   *uuid.UUID `json:"document_id,omitempty"`
	Weight       float64    `json:"weight"`
}
