package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"lexanswer-backend/chunker"
	"lexanswer-backend/citations"
	"lexanswer-backend/embedding"
	"lexanswer-backend/index"
	"lexanswer-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator records the prompts it receives and returns a canned answer.
type stubGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func newTestIndex(t *testing.T, texts ...string) *index.Memory {
	t.Helper()
	idx := index.NewMemory(embedding.NewLocal(0))
	for i, text := range texts {
		docID := uuid.New()
		err := idx.Add(context.Background(), []models.Chunk{{
			ID:           uuid.New(),
			DocumentID:   docID,
			Index:        0,
			Text:         text,
			Jurisdiction: "ZA",
			DocType:      models.DocTypeCaseLaw,
			DocTitle:     fmt.Sprintf("Judgment %d", i),
		}})
		require.NoError(t, err)
	}
	return idx
}

func TestQueryService_EmptyQuestion(t *testing.T) {
	svc := NewQueryService(
		QueryWithIndex(newTestIndex(t)),
		QueryWithGenerator(&stubGenerator{answer: "unused"}),
	)

	_, err := svc.Query(context.Background(), QueryRequest{Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestQueryService_EmptyIndexMarksUnsupported(t *testing.T) {
	gen := &stubGenerator{answer: "No supporting sources are available. In general terms, prescription of a debt runs for three years."}
	svc := NewQueryService(
		QueryWithIndex(newTestIndex(t)),
		QueryWithGenerator(gen),
	)

	result, err := svc.Query(context.Background(), QueryRequest{Question: "When does a debt prescribe?"})
	require.NoError(t, err)

	assert.True(t, result.Unsupported)
	assert.Empty(t, result.Sources)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "No relevant authority was found")
}

func TestQueryService_GeneratorFailure(t *testing.T) {
	svc := NewQueryService(
		QueryWithIndex(newTestIndex(t, "the debtor raised prescription as a defence")),
		QueryWithGenerator(&stubGenerator{err: errors.New("upstream timeout")}),
	)

	_, err := svc.Query(context.Background(), QueryRequest{Question: "prescription defence"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestQueryService_PromptLayout(t *testing.T) {
	gen := &stubGenerator{answer: "The defence succeeds."}
	svc := NewQueryService(
		QueryWithIndex(newTestIndex(t, "the debtor raised prescription as a defence")),
		QueryWithGenerator(gen),
	)

	result, err := svc.Query(context.Background(), QueryRequest{Question: "Does the prescription defence succeed?"})
	require.NoError(t, err)
	assert.False(t, result.Unsupported)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]

	ctxPos := strings.Index(prompt, "CONTEXT:")
	questionPos := strings.Index(prompt, "QUESTION:")
	require.GreaterOrEqual(t, ctxPos, 0)
	require.GreaterOrEqual(t, questionPos, 0)
	assert.Less(t, ctxPos, questionPos)
	assert.Contains(t, prompt, "[Source: Judgment 0 (ZA)]")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestQueryService_SourcesDeduplicatedAndCapped(t *testing.T) {
	texts := []string{
		"spoliation remedy restores possession",
		"spoliation applies to incorporeal rights",
		"spoliation and counter spoliation limits",
		"spoliation in the context of electricity supply",
	}
	gen := &stubGenerator{answer: "The mandament van spolie applies."}
	svc := NewQueryService(
		QueryWithIndex(newTestIndex(t, texts...)),
		QueryWithGenerator(gen),
	)

	result, err := svc.Query(context.Background(), QueryRequest{Question: "spoliation"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 3)
	seen := make(map[uuid.UUID]bool)
	for _, src := range result.Sources {
		assert.False(t, seen[src.DocumentID])
		seen[src.DocumentID] = true
		assert.NotEmpty(t, src.Title)
		assert.NotEmpty(t, src.Snippet)
	}
}

func TestQueryService_HistoryWindow(t *testing.T) {
	var history []models.ConversationTurn
	for i := 0; i < 7; i++ {
		history = append(history, models.ConversationTurn{
			Role:    "user",
			Content: fmt.Sprintf("turn number %d", i),
		})
	}

	gen := &stubGenerator{answer: "Noted."}
	svc := NewQueryService(
		QueryWithIndex(newTestIndex(t, "interdict requirements")),
		QueryWithGenerator(gen),
	)

	_, err := svc.Query(context.Background(), QueryRequest{
		Question: "interdict requirements",
		History:  history,
	})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.NotContains(t, prompt, "turn number 0")
	assert.NotContains(t, prompt, "turn number 1")
	assert.Contains(t, prompt, "turn number 2")
	assert.Contains(t, prompt, "turn number 6")
	assert.Contains(t, prompt, "RECENT CONVERSATION:")
}

func TestQueryService_JurisdictionScoping(t *testing.T) {
	idx := index.NewMemory(embedding.NewLocal(0))
	ctx := context.Background()
	c := chunker.NewChunker(chunker.Config{}, citations.NewExtractor())

	for _, doc := range []models.Document{
		{ID: uuid.New(), Title: "Gauteng eviction", Jurisdiction: "ZA-GP", DocType: models.DocTypeCaseLaw, Text: "eviction order granted in Johannesburg"},
		{ID: uuid.New(), Title: "Cape eviction", Jurisdiction: "ZA-WC", DocType: models.DocTypeCaseLaw, Text: "eviction order granted in Cape Town"},
	} {
		require.NoError(t, idx.Add(ctx, c.Chunk(doc)))
	}

	gen := &stubGenerator{answer: "An eviction order requires compliance with PIE."}
	svc := NewQueryService(QueryWithIndex(idx), QueryWithGenerator(gen))

	result, err := svc.Query(ctx, QueryRequest{
		Question:     "eviction order",
		Jurisdiction: "ZA-WC",
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Chunks)
	for _, chunk := range result.Chunks {
		assert.Equal(t, "ZA-WC", chunk.Jurisdiction)
	}
}
