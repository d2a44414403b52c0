package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexanon/lexanon/pkg/models"
	"github.com/lexanon/lexanon/pkg/testutils"
)

func TestScoreEntitiesBounds(t *testing.T) {
	candidates := testutils.GenerateRandomCandidates(200, 1000)
	scored := ScoreEntities(candidates)

	assert.Len(t, scored, len(candidates))
	for _, entity := range scored {
		assert.GreaterOrEqual(t, entity.Confidence, minConfidence)
		assert.LessOrEqual(t, entity.Confidence, maxConfidence)

		// Rounded to 3 decimal places
		scaled := entity.Confidence * 1000
		assert.InDelta(t, math.Round(scaled), scaled, 1e-6)
	}
}

func TestScoreEntitiesDoesNotMutateInput(t *testing.T) {
	candidates := []models.Entity{
		{
			Text:       "Jean Martin",
			Label:      models.LabelPerson,
			Start:      0,
			End:        11,
			Source:     models.SourceModel,
			Confidence: 0.42,
		},
	}

	_ = ScoreEntities(candidates)

	assert.Equal(t, 0.42, candidates[0].Confidence)
}

func TestScoreEntitiesEmailWithContext(t *testing.T) {
	scored := ScoreEntities([]models.Entity{
		{
			Text:    "jean@example.com",
			Label:   models.LabelEmail,
			Start:   10,
			End:     26,
			Source:  models.SourcePattern,
			Context: "Contactez [jean@example.com] pour toute question",
		},
	})

	// 0.85 base + 0.05 context + 0.05 optimal length
	assert.Equal(t, 0.95, scored[0].Confidence)
}

func TestScoreEntitiesPersonQuality(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected float64
	}{
		{
			// 0.75 base + 0.1 capitalized pair + 0.05 optimal length
			name:     "well-formed full name",
			text:     "Jean Martin",
			expected: 0.9,
		},
		{
			// 0.75 base - 0.2 all-caps + 0.05 optimal length
			name:     "all-caps name",
			text:     "DUPONT",
			expected: 0.6,
		},
		{
			// 0.75 base - 0.1 short text - 0.1 below optimal length
			name:     "too-short name",
			text:     "Jo",
			expected: 0.55,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scored := ScoreEntities([]models.Entity{
				{
					Text:   tc.text,
					Label:  models.LabelPerson,
					Source: models.SourceModel,
				},
			})
			assert.Equal(t, tc.expected, scored[0].Confidence)
		})
	}
}

func TestScoreEntitiesOrgQuality(t *testing.T) {
	scored := ScoreEntities([]models.Entity{
		{
			Text:   "Dupont SARL",
			Label:  models.LabelOrg,
			Source: models.SourceModel,
		},
		{
			Text:   "dupont",
			Label:  models.LabelOrg,
			Source: models.SourceModel,
		},
	})

	// 0.75 base + 0.1 legal-form marker + 0.05 optimal length
	assert.Equal(t, 0.9, scored[0].Confidence)
	// 0.75 base - 0.2 all-lowercase + 0.05 optimal length
	assert.Equal(t, 0.6, scored[1].Confidence)
}

func TestScoreEntitiesContextBoostCapped(t *testing.T) {
	scored := ScoreEntities([]models.Entity{
		{
			Text:   "Acme",
			Label:  models.LabelOrg,
			Source: models.SourcePattern,
			// Five booster keywords would add 0.25 uncapped
			Context: "société entreprise compagnie association fondation [Acme]",
		},
	})

	// 0.85 base + 0.2 capped context + 0.05 optimal length, clamped to 1.0
	assert.Equal(t, 1.0, scored[0].Confidence)
}

func TestScoreEntitiesClampedToFloor(t *testing.T) {
	scored := ScoreEntities([]models.Entity{
		{
			Text:   "4&",
			Label:  models.LabelPerson,
			Source: models.Source("unknown"),
		},
	})

	assert.Equal(t, minConfidence, scored[0].Confidence)
}

func TestScoreEntitiesBaseConfidence(t *testing.T) {
	assert.Equal(t, 0.85, baseConfidence(models.SourcePattern))
	assert.Equal(t, 0.75, baseConfidence(models.SourceModel))
	assert.Equal(t, 0.95, baseConfidence(models.SourceManual))
	assert.Equal(t, 0.5, baseConfidence(models.Source("unknown")))
}

func TestScoreEntitiesShortFixedWidthIDNotPenalized(t *testing.T) {
	// Fixed-width identifiers are exempt from the short-text penalty, but
	// a 2-char IBAN still falls below the optimal length range.
	scored := ScoreEntities([]models.Entity{
		{
			Text:   "FR",
			Label:  models.LabelIBAN,
			Source: models.SourcePattern,
		},
	})

	// 0.85 base - 0.1 below optimal length, no short-text penalty
	assert.Equal(t, 0.75, scored[0].Confidence)
}

func TestSpecialCharRatioUnicodeAware(t *testing.T) {
	// Accented French letters are word characters, not noise
	assert.Equal(t, 0.0, specialCharRatio("Société Générale"))
	assert.InDelta(t, 0.5, specialCharRatio("a&b("), 1e-9)
	assert.Equal(t, 0.0, specialCharRatio(""))
}

func TestLengthAdjustmentUnlistedLabelNeutral(t *testing.T) {
	entity := &models.Entity{Text: "x", Label: models.LabelDate}
	assert.Equal(t, 0.0, lengthAdjustment(entity))
}
