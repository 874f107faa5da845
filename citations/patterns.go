package citations

import (
	"regexp"

	"lexanswer-backend/models"
)

// PatternVersion identifies the revision of the citation pattern table.
// Bump when patterns are added or changed so indexed metadata can record
// which revision extracted its citations.
const PatternVersion = "za-2024-1"

// patternSpec pairs a citation type with its regular expression source.
// The table is ordered: when two patterns match the same span, the earlier
// entry's type wins. Matching itself is leftmost-longest across all entries.
type patternSpec struct {
	Type models.CitationType
	Expr string
}

// South African citation conventions. Regex matching is heuristic; false
// positives and negatives are an accepted approximation.
var patternTable = []patternSpec{
	// Constitutional Court neutral citations: [2021] ZACC 13
	{models.CitationApexCourt, `\[(?:19|20)\d{2}\]\s+ZACC\s+\d{1,4}`},
	// Supreme Court of Appeal neutral citations: [2019] ZASCA 48
	{models.CitationAppellateCourt, `\[(?:19|20)\d{2}\]\s+ZASCA\s+\d{1,4}`},
	// High Court neutral citations: [2020] ZAGPJHC 145, [2018] ZAWCHC 60
	{models.CitationHighCourt, `\[(?:19|20)\d{2}\]\s+ZA[A-Z]{2,6}HC\s+\d{1,4}`},
	// Reported case law: 2019 (2) SA 343 (SCA), 2017 (6) BCLR 751 (CC)
	{models.CitationLawReport, `(?:19|20)\d{2}\s+\(\d{1,2}\)\s+(?:SA|BCLR|All\s+SA)\s+\d{1,4}\s+\([A-Z]{1,7}\)`},
	// Statutes, with optional short title: Companies Act 71 of 2008
	{models.CitationStatute, `(?:[A-Z][A-Za-z-]*\s+)*Act\s+\d{1,3}\s+of\s+(?:18|19|20)\d{2}`},
	// Gazette notices: GN R123 in GG 41100 of 2017, GN 1234 of 2019
	{models.CitationRegulation, `(?:GN|GenN|BN)\s+R?\d{1,5}(?:\s+in\s+(?:GG|Government\s+Gazette)\s+\d{1,6})?\s+of\s+(?:19|20)\d{2}`},
}

type pattern struct {
	ctype models.CitationType
	re    *regexp.Regexp
}

func compilePatterns() []pattern {
	compiled := make([]pattern, 0, len(patternTable))
	for _, spec := range patternTable {
		compiled = append(compiled, pattern{
			ctype: spec.Type,
			re:    regexp.MustCompile(spec.Expr),
		})
	}
	return compiled
}
