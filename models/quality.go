package models

// QualityLevel is the qualitative label mapped from the composite score
type QualityLevel string

const (
	QualityExcellent    QualityLevel = "excellent"
	QualityGood         QualityLevel = "good"
	QualityAdequate     QualityLevel = "adequate"
	QualityMarginal     QualityLevel = "marginal"
	QualityInsufficient QualityLevel = "insufficient"
)

// QualityReport scores a generated answer against retrieved context and the
// citation registry. Component scores are always in [0,1]; Composite is a
// fixed convex combination of them and therefore also in [0,1].
type QualityReport struct {
	CitationValidity   float64      `json:"citation_validity"`
	TerminologyDensity float64      `json:"terminology_density"`
	Relevance          float64      `json:"relevance"`
	Hedging            float64      `json:"hedging"`
	Composite          float64      `json:"composite"`
	Level              QualityLevel `json:"level"`
	InvalidCitations   []string     `json:"invalid_citations,omitempty"`
	Suggestions        []string     `json:"suggestions,omitempty"`
}
