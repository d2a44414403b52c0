package models

import "context"

// SpanLabel is a single span reported by the span-labeling oracle, with the
// oracle's native label vocabulary and byte offsets into the exact text
// passed to LabelSpans.
type SpanLabel struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// EntityOracle is the statistical span-labeling collaborator. Implementations
// must be safe for concurrent invocation. A failed invocation is treated by
// the extractor as "no model candidates", never propagated.
type EntityOracle interface {
	Name() string
	LabelSpans(ctx context.Context, text string) ([]SpanLabel, error)
}

// PatternMatch is a single match of a named pattern against the full text.
type PatternMatch struct {
	Name  string
	Text  string
	Start int
	End   int
}

// PatternMatcher is the hand-written pattern collaborator. FindMatches
// returns all non-overlapping matches of every enabled pattern.
// Implementations are read-only after setup and safe for concurrent use.
type PatternMatcher interface {
	Names() []string
	FindMatches(text string) []PatternMatch
}
