package models

import (
	"github.com/google/uuid"
)

// ConversationTurn is a single prior exchange passed along with a question
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// SourceSummary describes one source document backing an answer
type SourceSummary struct {
	DocumentID   uuid.UUID `json:"document_id"`
	Title        string    `json:"title"`
	Jurisdiction string    `json:"jurisdiction"`
	Snippet      string    `json:"snippet"`
}

// QueryResult is the outcome of a retrieval-augmented query.
// Unsupported is set when retrieval returned no context and the answer
// was generated without grounding; the caller decides whether to surface it.
type QueryResult struct {
	Question    string          `json:"question"`
	Chunks      []Chunk         `json:"chunks"`
	Answer      string          `json:"answer"`
	Sources     []SourceSummary `json:"sources"`
	Unsupported bool            `json:"unsupported"`
}
