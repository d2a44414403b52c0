package nlp

import (
	"regexp"
	"sort"

	"github.com/lexanon/lexanon/internal"
	"github.com/lexanon/lexanon/pkg/models"
)

var log = internal.GetLogger()

// DefaultPatterns are the built-in French pattern definitions, used when
// the config file does not define a patterns block.
var DefaultPatterns = map[string]string{
	"EMAIL":      `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`,
	"PHONE":      `(?:\+33|0)[1-9](?:[.\-\s]?\d{2}){4}`,
	"IBAN":       `\b[A-Z]{2}\d{2}[A-Z0-9]{4}\d{7}[A-Z0-9]{1,16}\b`,
	"SIREN":      `\b\d{3}\s?\d{3}\s?\d{3}\b`,
	"SIRET":      `\b\d{3}\s?\d{3}\s?\d{3}\s?\d{5}\b`,
	"DATE_FR":    `\b(?:\d{1,2}[\/\-\.]\d{1,2}[\/\-\.]\d{2,4}|\d{1,2}\s+(?:janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+\d{4})\b`,
	"ADDRESS_FR": `\b\d+[\s,]+(?:rue|avenue|boulevard|place|allée|impasse|chemin|route)[^,\n]+(?:\d{5}|(?:Paris|Lyon|Marseille|Toulouse|Nice|Nantes|Strasbourg|Montpellier|Bordeaux|Lille))`,
}

// Force compiler to validate that PatternSet implements PatternMatcher.
var _ models.PatternMatcher = &PatternSet{}

// PatternSet holds the compiled named patterns. It is built once at startup
// and read-only afterwards, so it is safe for concurrent use.
type PatternSet struct {
	patterns map[string]*regexp.Regexp
	names    []string
}

// NewPatternSet compiles the given pattern definitions. Patterns are
// matched case-insensitively. Invalid definitions are skipped with a
// warning, never fatal.
func NewPatternSet(definitions map[string]string) *PatternSet {
	if len(definitions) == 0 {
		definitions = DefaultPatterns
	}

	compiled := make(map[string]*regexp.Regexp, len(definitions))
	for name, expr := range definitions {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			log.Warnf("Invalid regex pattern for %s: %v", name, err)
			continue
		}
		compiled[name] = re
	}

	names := make([]string, 0, len(compiled))
	for name := range compiled {
		names = append(names, name)
	}
	// Stable iteration order: matches from one pattern set are
	// reproducible across invocations.
	sort.Strings(names)

	return &PatternSet{patterns: compiled, names: names}
}

// Names returns the enabled pattern names in stable order.
func (ps *PatternSet) Names() []string {
	return ps.names
}

// FindMatches returns all non-overlapping matches of every enabled pattern
// against the full text.
func (ps *PatternSet) FindMatches(text string) []models.PatternMatch {
	var matches []models.PatternMatch
	for _, name := range ps.names {
		for _, loc := range ps.patterns[name].FindAllStringIndex(text, -1) {
			matches = append(matches, models.PatternMatch{
				Name:  name,
				Text:  text[loc[0]:loc[1]],
				Start: loc[0],
				End:   loc[1],
			})
		}
	}
	return matches
}
