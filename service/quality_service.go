package service

import (
	"context"
	"log"
	"strings"
	"unicode"

	"lexanswer-backend/citations"
	"lexanswer-backend/models"
	"lexanswer-backend/registry"
)

const (
	// Weights of the composite score; they sum to 1, so a convex
	// combination of component scores in [0,1] stays in [0,1].
	weightValidity    = 0.4
	weightTerminology = 0.3
	weightRelevance   = 0.2
	weightHedging     = 0.1

	// A concise answer is expected to use about this many legal terms;
	// density beyond it is not rewarded further.
	expectedTermDensity = 5

	// Up to this many hedging phrases carry no penalty.
	hedgingAllowance = 3
	hedgingPenalty   = 10.0

	// Per-component thresholds below which a targeted suggestion is emitted.
	suggestValidityBelow    = 0.8
	suggestTerminologyBelow = 0.6
	suggestRelevanceBelow   = 0.5
	suggestHedgingBelow     = 0.8
)

// legalVocabulary is the fixed term list used for the terminology-density
// heuristic. Matching is case-insensitive substring matching, so stems
// cover their inflections (e.g. "statut" covers statute/statutory).
var legalVocabulary = []string{
	"plaintiff", "defendant", "appellant", "respondent", "applicant",
	"jurisdiction", "statut", "regulation", "precedent", "judgment",
	"constitutional", "delict", "interdict", "contractual", "litigation",
	"prescription", "liability", "remedy", "damages", "obiter",
	"ratio decidendi", "court", "tribunal", "legislation", "common law",
	"estoppel", "servitude", "mandament", "rescission", "review",
}

// hedgingPhrases is the fixed list scanned for indecisive phrasing
var hedgingPhrases = []string{
	"it depends", "may or may not", "possibly", "perhaps", "arguably",
	"it is unclear", "it is uncertain", "might be", "could be",
	"i am not sure", "i'm not sure", "cannot say", "hard to say",
	"difficult to determine", "consult a lawyer to be sure",
}

// QualityService scores a generated answer against retrieved context and
// the citation registry. It never mutates the registry.
type QualityService struct {
	extractor *citations.Extractor
	registry  registry.Registry
}

// QualityServiceOption is a functional option for QualityService
type QualityServiceOption func(*QualityService)

// QualityWithExtractor sets the citation extractor
func QualityWithExtractor(e *citations.Extractor) QualityServiceOption {
	return func(s *QualityService) {
		s.extractor = e
	}
}

// QualityWithRegistry sets the citation reference registry
func QualityWithRegistry(r registry.Registry) QualityServiceOption {
	return func(s *QualityService) {
		s.registry = r
	}
}

// NewQualityService creates a new quality service
func NewQualityService(opts ...QualityServiceOption) *QualityService {
	s := &QualityService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = citations.NewExtractor()
	}
	return s
}

// Validate computes the four component scores and their weighted composite.
// A registry lookup failure degrades to treating that citation as invalid;
// the report is always produced.
func (s *QualityService) Validate(ctx context.Context, question, answer string, chunks []models.Chunk) *models.QualityReport {
	report := &models.QualityReport{}

	report.CitationValidity, report.InvalidCitations = s.scoreCitations(ctx, answer)
	report.TerminologyDensity = scoreTerminology(answer)
	report.Relevance = scoreRelevance(question, answer)
	report.Hedging = scoreHedging(answer)

	report.Composite = clamp01(weightValidity*report.CitationValidity +
		weightTerminology*report.TerminologyDensity +
		weightRelevance*report.Relevance +
		weightHedging*report.Hedging)
	report.Level = qualityLevel(report.Composite)
	report.Suggestions = suggestions(report)

	return report
}

// scoreCitations checks every citation in the answer against the registry.
// The denominator floors at 1 so an answer without citations scores 0
// rather than dividing by zero.
func (s *QualityService) scoreCitations(ctx context.Context, answer string) (float64, []string) {
	extracted := s.extractor.Extract(answer)

	total := len(extracted)
	if total == 0 {
		return 0, nil
	}

	valid := 0
	var invalid []string
	for _, citation := range extracted {
		if s.registry == nil {
			invalid = append(invalid, citation.Text)
			continue
		}
		ref, err := s.registry.Lookup(ctx, citation.Text)
		if err != nil {
			log.Printf("Warning: Registry lookup failed for %q: %v. Treating as invalid.", citation.Text, err)
			invalid = append(invalid, citation.Text)
			continue
		}
		if ref == nil {
			invalid = append(invalid, citation.Text)
			continue
		}
		valid++
	}

	return float64(valid) / float64(total), invalid
}

// scoreTerminology rewards domain-appropriate language without penalizing
// concise answers beyond the expected density.
func scoreTerminology(answer string) float64 {
	lower := strings.ToLower(answer)
	matches := 0
	for _, term := range legalVocabulary {
		matches += strings.Count(lower, term)
	}
	score := float64(matches) / expectedTermDensity
	if score > 1 {
		score = 1
	}
	return score
}

// scoreRelevance is a bag-of-words overlap proxy, not semantic similarity
func scoreRelevance(question, answer string) float64 {
	questionSet := tokenSet(question)
	if len(questionSet) == 0 {
		return 0
	}
	answerSet := tokenSet(answer)

	overlap := 0
	for token := range questionSet {
		if answerSet[token] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(questionSet))
}

// scoreHedging penalizes hedging-phrase occurrences beyond the allowance
func scoreHedging(answer string) float64 {
	lower := strings.ToLower(answer)
	count := 0
	for _, phrase := range hedgingPhrases {
		count += strings.Count(lower, phrase)
	}
	excess := count - hedgingAllowance
	if excess <= 0 {
		return 1
	}
	return clamp01(1 - float64(excess)/hedgingPenalty)
}

// qualityLevel maps the composite score to its qualitative label
func qualityLevel(composite float64) models.QualityLevel {
	switch {
	case composite >= 0.9:
		return models.QualityExcellent
	case composite >= 0.75:
		return models.QualityGood
	case composite >= 0.6:
		return models.QualityAdequate
	case composite >= 0.5:
		return models.QualityMarginal
	default:
		return models.QualityInsufficient
	}
}

// suggestions emits targeted improvements for each component scoring below
// its own threshold.
func suggestions(report *models.QualityReport) []string {
	var out []string
	if report.CitationValidity < suggestValidityBelow {
		out = append(out, "Cite verifiable sources from the provided context; remove or replace citations not found in the reference registry.")
	}
	if report.TerminologyDensity < suggestTerminologyBelow {
		out = append(out, "Use more precise legal terminology appropriate to South African law.")
	}
	if report.Relevance < suggestRelevanceBelow {
		out = append(out, "Address the question more directly; restate and answer its key terms.")
	}
	if report.Hedging < suggestHedgingBelow {
		out = append(out, "Reduce hedging language; state the legal position decisively where the authorities are clear.")
	}
	return out
}

func tokenSet(text string) map[string]bool {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
