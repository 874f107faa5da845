package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"lexanswer-backend/models"
)

// Registry resolves citation strings against the curated reference records
// used as ground truth for validity checks. Lookup returns (nil, nil) when
// the citation is unknown; an error means the lookup itself failed, which
// callers treat as "unresolvable" rather than aborting.
type Registry interface {
	Lookup(ctx context.Context, citation string) (*models.CitationReference, error)
}

// Memory is an in-process citation registry loaded from curated JSON.
// The validator only reads it; mutation happens through curated ingestion.
type Memory struct {
	mu   sync.RWMutex
	refs map[string]models.CitationReference
}

// NewMemory creates an empty registry
func NewMemory() *Memory {
	return &Memory{refs: make(map[string]models.CitationReference)}
}

// Load reads a JSON array of citation references and merges it in.
// Existing entries with the same citation string are replaced.
func (m *Memory) Load(r io.Reader) (int, error) {
	var refs []models.CitationReference
	if err := json.NewDecoder(r).Decode(&refs); err != nil {
		return 0, fmt.Errorf("failed to decode citation registry: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ref := range refs {
		if ref.Citation == "" {
			continue
		}
		m.refs[ref.Citation] = ref
	}
	return len(refs), nil
}

// Add inserts or replaces a single reference
func (m *Memory) Add(ref models.CitationReference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[ref.Citation] = ref
}

// Lookup resolves an exact citation string
func (m *Memory) Lookup(ctx context.Context, citation string) (*models.CitationReference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ref, ok := m.refs[citation]; ok {
		return &ref, nil
	}
	return nil, nil
}

// Len returns the number of registered citations
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.refs)
}
