package chunker

import (
	"unicode"

	"lexanswer-backend/citations"
	"lexanswer-backend/models"

	"github.com/google/uuid"
)

const (
	defaultTargetSize = 1000
	defaultOverlap    = 100
)

// Config controls chunk sizing. Sizes are in runes.
type Config struct {
	TargetSize int
	Overlap    int
}

// Chunker splits document text into overlapping passages suitable for
// retrieval. Splits preferentially land on paragraph breaks, then sentence
// ends, then whitespace, falling back to a hard cut. Chunks are exact
// substrings of the document: concatenating them minus the overlap
// reconstructs the original text.
type Chunker struct {
	cfg       Config
	extractor *citations.Extractor
}

// NewChunker creates a chunker with the given config and citation extractor
func NewChunker(cfg Config, extractor *citations.Extractor) *Chunker {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = defaultTargetSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.TargetSize {
		cfg.Overlap = cfg.TargetSize / 2
	}
	return &Chunker{cfg: cfg, extractor: extractor}
}

// Chunk splits the document into ordered chunks covering its full text.
// Citations are extracted per chunk so the citation-to-chunk association
// stays accurate for retrieval. An empty document yields zero chunks.
func (c *Chunker) Chunk(doc models.Document) []models.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []models.Chunk
	start := 0
	idx := 0
	for start < len(runes) {
		end := c.cutPoint(runes, start)
		text := string(runes[start:end])

		chunk := models.Chunk{
			ID:           uuid.New(),
			DocumentID:   doc.ID,
			Index:        idx,
			Text:         text,
			Jurisdiction: doc.Jurisdiction,
			DocType:      doc.DocType,
			DocTitle:     doc.Title,
		}
		if c.extractor != nil {
			chunk.Citations = c.extractor.Strings(text)
		}
		chunks = append(chunks, chunk)

		if end == len(runes) {
			break
		}
		start = end - c.cfg.Overlap
		idx++
	}
	return chunks
}

// cutPoint picks the end of the chunk starting at start, preferring
// semantic boundaries inside the tail half of the chunk window.
func (c *Chunker) cutPoint(runes []rune, start int) int {
	hard := start + c.cfg.TargetSize
	if hard >= len(runes) {
		return len(runes)
	}

	// Candidate cuts must leave forward progress after overlap is rewound.
	lo := start + c.cfg.TargetSize/2
	if lo <= start+c.cfg.Overlap {
		lo = start + c.cfg.Overlap + 1
	}

	if cut := lastParagraphBreak(runes, lo, hard); cut > 0 {
		return cut
	}
	if cut := lastSentenceEnd(runes, lo, hard); cut > 0 {
		return cut
	}
	if cut := lastWhitespace(runes, lo, hard); cut > 0 {
		return cut
	}
	return hard
}

// lastParagraphBreak returns the position just after the last "\n\n"
// ending within (lo, hi], or 0 if none.
func lastParagraphBreak(runes []rune, lo, hi int) int {
	for i := hi; i > lo; i-- {
		if runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	return 0
}

// lastSentenceEnd returns the position just after the last sentence
// terminator followed by whitespace within (lo, hi], or 0 if none.
func lastSentenceEnd(runes []rune, lo, hi int) int {
	for i := hi; i > lo; i-- {
		if !unicode.IsSpace(runes[i-1]) {
			continue
		}
		switch runes[i-2] {
		case '.', '?', '!':
			return i
		}
	}
	return 0
}

// lastWhitespace returns the position just after the last whitespace rune
// within (lo, hi], or 0 if none.
func lastWhitespace(runes []rune, lo, hi int) int {
	for i := hi; i > lo; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return 0
}
