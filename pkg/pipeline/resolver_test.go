package pipeline

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexanon/lexanon/pkg/models"
	"github.com/lexanon/lexanon/pkg/testutils"
)

func TestOverlapRatio(t *testing.T) {
	testCases := []struct {
		name     string
		a        models.Entity
		b        models.Entity
		expected float64
	}{
		{
			name:     "disjoint spans",
			a:        models.Entity{Start: 0, End: 5},
			b:        models.Entity{Start: 10, End: 15},
			expected: 0,
		},
		{
			name:     "adjacent spans do not overlap",
			a:        models.Entity{Start: 0, End: 5},
			b:        models.Entity{Start: 5, End: 10},
			expected: 0,
		},
		{
			name:     "identical spans",
			a:        models.Entity{Start: 3, End: 9},
			b:        models.Entity{Start: 3, End: 9},
			expected: 1.0,
		},
		{
			name:     "contained span",
			a:        models.Entity{Start: 0, End: 11},
			b:        models.Entity{Start: 5, End: 11},
			expected: 1.0,
		},
		{
			name:     "half overlap of shorter span",
			a:        models.Entity{Start: 0, End: 8},
			b:        models.Entity{Start: 6, End: 10},
			expected: 0.5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, OverlapRatio(&tc.a, &tc.b), 1e-9)
			// Symmetric
			assert.InDelta(t, tc.expected, OverlapRatio(&tc.b, &tc.a), 1e-9)
		})
	}
}

func TestResolveSpansEmpty(t *testing.T) {
	resolved := ResolveSpans(nil)
	assert.NotNil(t, resolved)
	assert.Empty(t, resolved)

	resolved = ResolveSpans([]models.Entity{})
	assert.Empty(t, resolved)
}

func TestResolveSpansPatternWinsCloseConfidence(t *testing.T) {
	candidates := []models.Entity{
		{
			Text:       "Jean Martin",
			Label:      models.LabelPerson,
			Start:      0,
			End:        11,
			Source:     models.SourceModel,
			Confidence: 0.75,
		},
		{
			Text:       "Martin",
			Label:      models.LabelPerson,
			Start:      5,
			End:        11,
			Source:     models.SourcePattern,
			Confidence: 0.85,
		},
	}

	resolved := ResolveSpans(candidates)

	assert.Len(t, resolved, 1)
	assert.Equal(t, "Martin", resolved[0].Text)
	assert.Equal(t, models.SourcePattern, resolved[0].Source)
}

func TestResolveSpansHigherConfidenceWins(t *testing.T) {
	// Identical spans with a confidence gap beyond the margin: the
	// higher-confidence candidate is retained regardless of source or
	// length.
	testCases := []struct {
		name      string
		winnerSrc models.Source
		loserSrc  models.Source
	}{
		{"model beats pattern", models.SourceModel, models.SourcePattern},
		{"pattern beats model", models.SourcePattern, models.SourceModel},
		{"manual beats model", models.SourceManual, models.SourceModel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			candidates := []models.Entity{
				{Text: "low", Start: 0, End: 10, Source: tc.loserSrc, Confidence: 0.6},
				{Text: "high", Start: 0, End: 10, Source: tc.winnerSrc, Confidence: 0.9},
			}
			resolved := ResolveSpans(candidates)
			assert.Len(t, resolved, 1)
			assert.Equal(t, "high", resolved[0].Text)
		})
	}
}

func TestResolveSpansLongerSpanWinsOnFullTie(t *testing.T) {
	candidates := []models.Entity{
		{Text: "short", Start: 0, End: 6, Source: models.SourceModel, Confidence: 0.8},
		{Text: "longer span", Start: 0, End: 11, Source: models.SourceModel, Confidence: 0.8},
	}

	resolved := ResolveSpans(candidates)

	assert.Len(t, resolved, 1)
	assert.Equal(t, "longer span", resolved[0].Text)
}

func TestResolveSpansMultipleConflicts(t *testing.T) {
	// The third candidate conflicts with both accepted spans. It beats the
	// first on confidence but not the second, so it must be discarded
	// entirely rather than replacing only the span it beats.
	candidates := []models.Entity{
		{Text: "a", Start: 0, End: 12, Source: models.SourceModel, Confidence: 0.5},
		{Text: "b", Start: 6, End: 30, Source: models.SourceModel, Confidence: 0.9},
		{Text: "z", Start: 7, End: 13, Source: models.SourceModel, Confidence: 0.99},
	}

	resolved := ResolveSpans(candidates)

	require.Len(t, resolved, 2)
	texts := []string{resolved[0].Text, resolved[1].Text}
	assert.ElementsMatch(t, []string{"a", "b"}, texts)

	for i := range resolved {
		for j := i + 1; j < len(resolved); j++ {
			assert.LessOrEqual(t, OverlapRatio(&resolved[i], &resolved[j]), overlapThreshold)
		}
	}

	again := ResolveSpans(resolved)
	assert.ElementsMatch(t, resolved, again)
}

func TestResolveSpansReplacesAllBeatenConflicts(t *testing.T) {
	// A strong pattern match conflicting with two previously accepted weak
	// model spans removes both of them at once.
	candidates := []models.Entity{
		{Text: "m1", Start: 0, End: 10, Source: models.SourceModel, Confidence: 0.5},
		{Text: "m2", Start: 5, End: 100, Source: models.SourceModel, Confidence: 0.6},
		{Text: "p", Start: 6, End: 12, Source: models.SourcePattern, Confidence: 0.99},
	}

	resolved := ResolveSpans(candidates)

	require.Len(t, resolved, 1)
	assert.Equal(t, "p", resolved[0].Text)
}

func TestResolveSpansKeepsNonConflicting(t *testing.T) {
	candidates := []models.Entity{
		{Text: "a", Start: 0, End: 5, Source: models.SourceModel, Confidence: 0.8},
		{Text: "b", Start: 20, End: 30, Source: models.SourcePattern, Confidence: 0.9},
		{Text: "c", Start: 50, End: 55, Source: models.SourceManual, Confidence: 0.95},
	}

	resolved := ResolveSpans(candidates)

	assert.Len(t, resolved, 3)
}

func TestResolveSpansOverlapInvariant(t *testing.T) {
	for i := 0; i < 50; i++ {
		candidates := testutils.GenerateRandomCandidates(30, 500)
		resolved := ResolveSpans(candidates)

		for j := range resolved {
			for k := j + 1; k < len(resolved); k++ {
				ratio := OverlapRatio(&resolved[j], &resolved[k])
				assert.LessOrEqual(
					t, ratio, overlapThreshold,
					"entities %+v and %+v overlap beyond threshold", resolved[j], resolved[k],
				)
			}
		}
	}
}

func TestResolveSpansIdempotent(t *testing.T) {
	for i := 0; i < 50; i++ {
		candidates := testutils.GenerateRandomCandidates(25, 300)
		once := ResolveSpans(candidates)
		twice := ResolveSpans(once)

		assert.ElementsMatch(t, once, twice)
	}
}

func TestResolveSpansDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		candidates := testutils.GenerateRandomCandidates(25, 300)

		shuffled := make([]models.Entity, len(candidates))
		copy(shuffled, candidates)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		first := ResolveSpans(candidates)
		second := ResolveSpans(shuffled)

		sortEntities(first)
		sortEntities(second)
		assert.Equal(t, first, second)
	}
}

func sortEntities(entities []models.Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return candidateLess(&entities[i], &entities[j])
	})
}
