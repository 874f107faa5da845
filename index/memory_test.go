package index

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"lexanswer-backend/embedding"
	"lexanswer-backend/models"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunk(docID uuid.UUID, idx int, text, jurisdiction string) models.Chunk {
	return models.Chunk{
		ID:           uuid.New(),
		DocumentID:   docID,
		Index:        idx,
		Text:         text,
		Jurisdiction: jurisdiction,
		DocType:      models.DocTypeCaseLaw,
	}
}

func TestMemory_SelfRetrieval(t *testing.T) {
	idx := NewMemory(embedding.NewLocal(0))
	ctx := context.Background()
	docID := uuid.New()

	chunks := []models.Chunk{
		testChunk(docID, 0, "prescription of a debt under the Prescription Act", "ZA"),
		testChunk(docID, 1, "vicarious liability of an employer for delict", "ZA"),
		testChunk(docID, 2, "business rescue proceedings under the Companies Act", "ZA"),
	}
	require.NoError(t, idx.Add(ctx, chunks))

	got, err := idx.Search(ctx, "vicarious liability of an employer for delict", 1, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, chunks[1].ID, got[0].ID)
	assert.InDelta(t, 0, got[0].Distance, 1e-6)
}

func TestMemory_ResultsOrderedByDistance(t *testing.T) {
	idx := NewMemory(embedding.NewLocal(0))
	ctx := context.Background()
	docID := uuid.New()

	require.NoError(t, idx.Add(ctx, []models.Chunk{
		testChunk(docID, 0, "delictual damages for pure economic loss", "ZA"),
		testChunk(docID, 1, "interpretation of contracts and the parol evidence rule", "ZA"),
		testChunk(docID, 2, "delictual damages claims in the high court", "ZA"),
	}))

	got, err := idx.Search(ctx, "delictual damages", 3, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
}

func TestMemory_DimensionMismatch(t *testing.T) {
	idx := NewMemory(embedding.NewLocal(0))

	bad := testChunk(uuid.New(), 0, "some text", "ZA")
	bad.Embedding = pgvector.NewVector(make([]float32, 10))

	err := idx.Add(context.Background(), []models.Chunk{bad})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemory_AddEmpty(t *testing.T) {
	idx := NewMemory(embedding.NewLocal(0))
	assert.ErrorIs(t, idx.Add(context.Background(), nil), ErrNoChunks)
}

func TestMemory_JurisdictionFilter(t *testing.T) {
	idx := NewMemory(embedding.NewLocal(0))
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []models.Chunk{
		testChunk(uuid.New(), 0, "eviction proceedings in the Gauteng division", "ZA-GP"),
		testChunk(uuid.New(), 0, "eviction proceedings in the Western Cape division", "ZA-WC"),
	}))

	got, err := idx.Search(ctx, "eviction proceedings", 5, &Filter{Jurisdiction: "ZA-WC"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ZA-WC", got[0].Jurisdiction)
}

func TestMemory_DeleteDocument(t *testing.T) {
	idx := NewMemory(embedding.NewLocal(0))
	ctx := context.Background()
	keep := uuid.New()
	drop := uuid.New()

	require.NoError(t, idx.Add(ctx, []models.Chunk{
		testChunk(keep, 0, "maintenance obligations after divorce", "ZA"),
		testChunk(drop, 0, "customs duties on imported goods", "ZA"),
		testChunk(drop, 1, "customs valuation disputes", "ZA"),
	}))

	require.NoError(t, idx.DeleteDocument(ctx, drop))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := idx.Search(ctx, "customs duties", 5, nil)
	require.NoError(t, err)
	for _, chunk := range got {
		assert.Equal(t, keep, chunk.DocumentID)
	}
}

func TestMemory_ConcurrentAddAndSearch(t *testing.T) {
	idx := NewMemory(embedding.NewLocal(0))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			chunk := testChunk(uuid.New(), 0,
				fmt.Sprintf("judgment number %d on spoliation", i), "ZA")
			assert.NoError(t, idx.Add(ctx, []models.Chunk{chunk}))
		}(i)
		go func() {
			defer wg.Done()
			_, err := idx.Search(ctx, "spoliation", 3, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}
