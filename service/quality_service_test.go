package service

import (
	"context"
	"errors"
	"testing"

	"lexanswer-backend/models"
	"lexanswer-backend/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRegistry simulates an unreachable citation registry.
type failingRegistry struct{}

func (failingRegistry) Lookup(ctx context.Context, citation string) (*models.CitationReference, error) {
	return nil, errors.New("registry unavailable")
}

func newTestRegistry(citations ...string) *registry.Memory {
	reg := registry.NewMemory()
	for _, c := range citations {
		reg.Add(models.CitationReference{Citation: c, Title: "Test Authority", Jurisdiction: "ZA"})
	}
	return reg
}

func TestQualityService_AllCitationsValid(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry("2019 (2) SA 343 (SCA)")))

	report := svc.Validate(context.Background(), "What did the court hold?",
		"The court held in 2019 (2) SA 343 (SCA) that the claim had prescribed.", nil)

	assert.InDelta(t, 1.0, report.CitationValidity, 1e-9)
	assert.Empty(t, report.InvalidCitations)
}

func TestQualityService_MixedCitations(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry("2019 (2) SA 343 (SCA)")))

	report := svc.Validate(context.Background(), "question",
		"Compare 2019 (2) SA 343 (SCA) with [2021] ZACC 13 on this point.", nil)

	assert.InDelta(t, 0.5, report.CitationValidity, 1e-9)
	require.Len(t, report.InvalidCitations, 1)
	assert.Equal(t, "[2021] ZACC 13", report.InvalidCitations[0])
}

func TestQualityService_NoCitations(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry()))

	report := svc.Validate(context.Background(), "question",
		"The position in our law is settled on this point.", nil)

	assert.Zero(t, report.CitationValidity)
	assert.Empty(t, report.InvalidCitations)
	assert.Contains(t, report.Suggestions,
		"Cite verifiable sources from the provided context; remove or replace citations not found in the reference registry.")
}

func TestQualityService_RegistryFailureDegrades(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(failingRegistry{}))

	report := svc.Validate(context.Background(), "question",
		"See 2019 (2) SA 343 (SCA).", nil)

	require.NotNil(t, report)
	assert.Zero(t, report.CitationValidity)
	assert.Equal(t, []string{"2019 (2) SA 343 (SCA)"}, report.InvalidCitations)
}

func TestQualityService_HedgingPenalty(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry()))

	// Five hedging occurrences, two beyond the allowance of three.
	answer := "It depends on the facts. The answer is possibly yes, perhaps no. " +
		"The outcome might be different and the order could be varied."
	report := svc.Validate(context.Background(), "question", answer, nil)

	assert.InDelta(t, 0.8, report.Hedging, 1e-9)
}

func TestQualityService_HedgingWithinAllowance(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry()))

	report := svc.Validate(context.Background(), "question",
		"Arguably the claim stands, though the position is perhaps debatable.", nil)

	assert.InDelta(t, 1.0, report.Hedging, 1e-9)
}

func TestQualityService_RelevanceFullOverlap(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry()))

	report := svc.Validate(context.Background(), "When does prescription run?",
		"Prescription does run from when the debt is due.", nil)

	assert.InDelta(t, 1.0, report.Relevance, 1e-9)
}

func TestQualityService_EmptyAnswer(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry()))

	report := svc.Validate(context.Background(), "When does prescription run?", "", nil)

	assert.Zero(t, report.CitationValidity)
	assert.Zero(t, report.TerminologyDensity)
	assert.Zero(t, report.Relevance)
	assert.InDelta(t, 1.0, report.Hedging, 1e-9)
	assert.InDelta(t, 0.1, report.Composite, 1e-9)
	assert.Equal(t, models.QualityInsufficient, report.Level)
	assert.Len(t, report.Suggestions, 3)
}

func TestQualityService_ExcellentAnswer(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry("2019 (2) SA 343 (SCA)")))

	answer := "Prescription extinguishes liability for damages after three years. " +
		"The court confirmed this in its judgment in 2019 (2) SA 343 (SCA)."
	report := svc.Validate(context.Background(), "prescription liability damages", answer, nil)

	assert.InDelta(t, 1.0, report.CitationValidity, 1e-9)
	assert.InDelta(t, 1.0, report.TerminologyDensity, 1e-9)
	assert.InDelta(t, 1.0, report.Relevance, 1e-9)
	assert.InDelta(t, 1.0, report.Hedging, 1e-9)
	assert.Equal(t, models.QualityExcellent, report.Level)
	assert.Empty(t, report.Suggestions)
}

func TestQualityService_ScoresBounded(t *testing.T) {
	svc := NewQualityService(QualityWithRegistry(newTestRegistry()))

	answers := []string{
		"",
		"It depends. It depends. It depends. It depends. It depends. It depends. It depends. It depends. It depends. It depends. It depends. It depends.",
		"plaintiff defendant appellant respondent applicant jurisdiction precedent judgment court damages remedy liability",
	}
	for _, answer := range answers {
		report := svc.Validate(context.Background(), "question about the claim", answer, nil)
		for name, score := range map[string]float64{
			"validity":    report.CitationValidity,
			"terminology": report.TerminologyDensity,
			"relevance":   report.Relevance,
			"hedging":     report.Hedging,
			"composite":   report.Composite,
		} {
			assert.GreaterOrEqual(t, score, 0.0, name)
			assert.LessOrEqual(t, score, 1.0, name)
		}
	}
}
