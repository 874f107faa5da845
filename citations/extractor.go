package citations

import (
	"sort"

	"lexanswer-backend/models"
)

// Extractor pattern-matches legal citation strings out of raw text.
// It holds only compiled patterns and is safe for concurrent use.
type Extractor struct {
	patterns []pattern
}

// NewExtractor creates an extractor over the current pattern table
func NewExtractor() *Extractor {
	return &Extractor{patterns: compilePatterns()}
}

// span is a candidate match before overlap resolution
type span struct {
	start, end int
	ctype      models.CitationType
	order      int // position in the pattern table, used as tie-breaker
}

// Extract returns a deduplicated, ordered list of citation occurrences.
// Overlapping candidates from different patterns are resolved greedily,
// leftmost-longest first; ties go to the earlier pattern in the table.
// Repeated citations collapse to one entry with Count retained.
func (e *Extractor) Extract(text string) []models.Citation {
	if text == "" {
		return nil
	}

	var candidates []span
	for order, p := range e.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, span{
				start: loc[0],
				end:   loc[1],
				ctype: p.ctype,
				order: order,
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.end != b.end {
			return a.end > b.end // longer match first
		}
		return a.order < b.order
	})

	// Greedy non-overlapping selection
	selected := candidates[:0]
	lastEnd := -1
	for _, c := range candidates {
		if c.start < lastEnd {
			continue
		}
		selected = append(selected, c)
		lastEnd = c.end
	}

	var result []models.Citation
	seen := make(map[string]int) // matched string -> index in result
	for _, c := range selected {
		matched := text[c.start:c.end]
		if i, ok := seen[matched]; ok {
			result[i].Count++
			continue
		}
		seen[matched] = len(result)
		result = append(result, models.Citation{
			Text:  matched,
			Type:  c.ctype,
			Count: 1,
		})
	}
	return result
}

// Strings returns just the matched citation strings, in extraction order
func (e *Extractor) Strings(text string) []string {
	cites := e.Extract(text)
	if len(cites) == 0 {
		return nil
	}
	out := make([]string, len(cites))
	for i, c := range cites {
		out[i] = c.Text
	}
	return out
}
