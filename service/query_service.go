package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"lexanswer-backend/index"
	"lexanswer-backend/llm"
	"lexanswer-backend/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyQuestion    = errors.New("question is empty")
	ErrGeneratorNotSet  = errors.New("generator not set")
	ErrRetrievalFailed  = errors.New("failed to retrieve context")
	ErrGenerationFailed = errors.New("failed to generate answer")
)

const (
	topK            = 5
	maxHistoryTurns = 5
	maxSources      = 3
	maxPromptChars  = 30000
	snippetLength   = 200
)

const systemFraming = `You are a legal research assistant for South African law. Answer strictly within South African legal context.

CITATION DISCIPLINE (CRITICAL):
- Cite authorities using their exact citation strings as they appear in the provided context.
- NEVER fabricate a citation. If the context does not contain an authority for a point, say so instead of inventing one.
- Prefer primary authority (case law, statutes) over commentary.

TONE:
- Formal, precise, decisive. Avoid hedging where the authorities are clear.
- This is legal information, not legal advice; note that once if relevant, without repeating it.`

// QueryService orchestrates retrieval, prompt assembly, and the single
// language-model call of the query path.
type QueryService struct {
	idx       index.Index
	generator llm.Generator
}

// QueryServiceOption is a functional option for QueryService
type QueryServiceOption func(*QueryService)

// QueryWithIndex sets the embedding index
func QueryWithIndex(idx index.Index) QueryServiceOption {
	return func(s *QueryService) {
		s.idx = idx
	}
}

// QueryWithGenerator sets the language-model generator
func QueryWithGenerator(g llm.Generator) QueryServiceOption {
	return func(s *QueryService) {
		s.generator = g
	}
}

// NewQueryService creates a new query service
func NewQueryService(opts ...QueryServiceOption) *QueryService {
	s := &QueryService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryRequest represents a question with optional scoping
type QueryRequest struct {
	Question     string
	Jurisdiction string
	History      []models.ConversationTurn
}

// Query retrieves top-k context, assembles the prompt, and invokes the
// model once. Empty retrieval is not an error: the model is still called
// with a context-absent prompt and the result is flagged Unsupported.
// Model failure surfaces as a typed error; no retry at this layer.
func (s *QueryService) Query(ctx context.Context, req QueryRequest) (*models.QueryResult, error) {
	if s.idx == nil {
		return nil, ErrIndexNotSet
	}
	if s.generator == nil {
		return nil, ErrGeneratorNotSet
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	var filter *index.Filter
	if req.Jurisdiction != "" {
		filter = &index.Filter{Jurisdiction: req.Jurisdiction}
	}

	chunks, err := s.idx.Search(ctx, question, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}
	if len(chunks) == 0 {
		log.Printf("Warning: No context retrieved for question %q", truncate(question, 80))
	}

	prompt := buildPrompt(question, chunks, req.History)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &models.QueryResult{
		Question:    question,
		Chunks:      chunks,
		Answer:      strings.TrimSpace(answer),
		Sources:     summarizeSources(chunks),
		Unsupported: len(chunks) == 0,
	}, nil
}

// buildPrompt places the fixed system framing ahead of retrieved context,
// then recent conversation turns, then the question.
func buildPrompt(question string, chunks []models.Chunk, history []models.ConversationTurn) string {
	var builder strings.Builder
	builder.WriteString(systemFraming)
	builder.WriteString("\n\n")

	if len(chunks) == 0 {
		builder.WriteString("CONTEXT:\nNo relevant authority was found in the knowledge base for this question. State clearly that no supporting sources are available before answering from general principle.\n\n")
	} else {
		builder.WriteString("CONTEXT:\n")
		for _, chunk := range chunks {
			builder.WriteString(fmt.Sprintf("[Source: %s (%s)]\n", chunk.DocTitle, chunk.Jurisdiction))
			builder.WriteString(chunk.Text)
			builder.WriteString("\n---\n")
		}
		builder.WriteString("\n")
	}

	if len(history) > 0 {
		start := len(history) - maxHistoryTurns
		if start < 0 {
			start = 0
		}
		builder.WriteString("RECENT CONVERSATION:\n")
		for _, turn := range history[start:] {
			builder.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
		}
		builder.WriteString("\n")
	}

	builder.WriteString("QUESTION:\n")
	builder.WriteString(question)
	builder.WriteString("\n\nAnswer:")

	prompt := builder.String()
	if len(prompt) > maxPromptChars {
		log.Printf("Warning: Prompt too long (%d chars), truncating to %d chars", len(prompt), maxPromptChars)
		prompt = prompt[:maxPromptChars] + "\n\n[Content truncated due to length...]\n\nAnswer:"
	}
	return prompt
}

// summarizeSources builds up to maxSources summaries, deduplicated by
// document id, preserving retrieval order.
func summarizeSources(chunks []models.Chunk) []models.SourceSummary {
	var sources []models.SourceSummary
	seen := make(map[uuid.UUID]bool)
	for _, chunk := range chunks {
		if seen[chunk.DocumentID] {
			continue
		}
		seen[chunk.DocumentID] = true
		sources = append(sources, models.SourceSummary{
			DocumentID:   chunk.DocumentID,
			Title:        chunk.DocTitle,
			Jurisdiction: chunk.Jurisdiction,
			Snippet:      truncate(chunk.Text, snippetLength),
		})
		if len(sources) == maxSources {
			break
		}
	}
	return sources
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
