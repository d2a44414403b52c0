package extractors

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/lexanon/lexanon/internal"
	"github.com/lexanon/lexanon/pkg/models"
)

var log = internal.GetLogger()

// Pre-scoring default confidences. These are source priors only; the
// scorer replaces them with final calibrated values.
const (
	defaultModelConfidence   = 0.8
	defaultPatternConfidence = 0.9
)

// oracleLabelMap translates the oracle's native label vocabulary into the
// canonical label set. Unmapped native labels are not entities of interest
// and are silently dropped.
var oracleLabelMap = map[string]models.Label{
	"PER":     models.LabelPerson,
	"PERSON":  models.LabelPerson,
	"ORG":     models.LabelOrg,
	"LOC":     models.LabelLoc,
	"GPE":     models.LabelLoc,
	"MISC":    models.LabelOrg,
	"DATE":    models.LabelDate,
	"TIME":    models.LabelDate,
	"MONEY":   models.LabelMoney,
	"PERCENT": models.LabelMoney,
}

// patternLabelMap translates pattern names into canonical labels.
var patternLabelMap = map[string]models.Label{
	"EMAIL":      models.LabelEmail,
	"PHONE":      models.LabelPhone,
	"IBAN":       models.LabelIBAN,
	"SIREN":      models.LabelSiren,
	"SIRET":      models.LabelSiret,
	"DATE_FR":    models.LabelDate,
	"ADDRESS_FR": models.LabelAddress,
}

// CandidateExtractor drives both source adapters for a given text and
// produces the full unordered candidate set.
type CandidateExtractor struct {
	oracle        models.EntityOracle
	patterns      models.PatternMatcher
	maxTextLength int
	contextRadius int
}

func NewCandidateExtractor(appState *models.AppState) *CandidateExtractor {
	return &CandidateExtractor{
		oracle:        appState.Oracle,
		patterns:      appState.Patterns,
		maxTextLength: appState.Config.Extraction.MaxTextLength,
		contextRadius: appState.Config.Extraction.ContextWindow,
	}
}

// Extract produces model-derived and pattern-derived candidates and
// concatenates them. Pattern extraction runs only in hybrid mode with
// includePatterns set. entityTypes, when non-empty, is an allow-list of
// canonical labels.
func (ce *CandidateExtractor) Extract(
	ctx context.Context,
	text string,
	mode string,
	entityTypes []models.Label,
	includePatterns bool,
) []models.Entity {
	allowed := allowedSet(entityTypes)

	candidates := ce.ModelCandidates(ctx, text, allowed)
	if mode == models.ModeHybrid && includePatterns {
		candidates = append(candidates, ce.PatternCandidates(text, allowed)...)
	}
	return candidates
}

// ModelCandidates invokes the span-labeling oracle. Oracle failure is a
// non-fatal degradation: it yields an empty model-derived list, never an
// error.
func (ce *CandidateExtractor) ModelCandidates(
	ctx context.Context,
	text string,
	allowed map[models.Label]bool,
) []models.Entity {
	if len(text) > ce.maxTextLength {
		log.Warnf(
			"Text too long (%d chars), truncating to %d",
			len(text),
			ce.maxTextLength,
		)
		// Back off to the nearest rune start so the oracle never sees a
		// split multi-byte character.
		cut := ce.maxTextLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	spans, err := ce.oracle.LabelSpans(ctx, text)
	if err != nil {
		log.Errorf("Oracle extraction failed, continuing without model candidates: %v", err)
		return nil
	}

	var entities []models.Entity
	for _, span := range spans {
		label, ok := oracleLabelMap[strings.ToUpper(span.Label)]
		if !ok {
			continue
		}
		if allowed != nil && !allowed[label] {
			continue
		}
		start, end, ok := clampSpan(span.Start, span.End, len(text))
		if !ok {
			continue
		}
		entities = append(entities, models.Entity{
			Text:       strings.TrimSpace(text[start:end]),
			Label:      label,
			Start:      start,
			End:        end,
			Confidence: defaultModelConfidence,
			Source:     models.SourceModel,
			Context:    ce.contextWindow(text, start, end),
		})
	}

	log.Infof("Oracle extracted %d entities", len(entities))
	return entities
}

// PatternCandidates runs every enabled pattern against the full text and
// keeps matches that pass the per-label structural validator.
func (ce *CandidateExtractor) PatternCandidates(
	text string,
	allowed map[models.Label]bool,
) []models.Entity {
	var entities []models.Entity
	for _, match := range ce.patterns.FindMatches(text) {
		label, ok := patternLabelMap[match.Name]
		if !ok {
			continue
		}
		if allowed != nil && !allowed[label] {
			continue
		}
		if !ValidateMatch(match.Text, label) {
			continue
		}
		entities = append(entities, models.Entity{
			Text:       strings.TrimSpace(match.Text),
			Label:      label,
			Start:      match.Start,
			End:        match.End,
			Confidence: defaultPatternConfidence,
			Source:     models.SourcePattern,
			Context:    ce.contextWindow(text, match.Start, match.End),
		})
	}

	log.Infof("Pattern extraction found %d entities", len(entities))
	return entities
}

// ValidateMatch applies the structural validator for the given label.
// Labels without a validator accept unconditionally.
func ValidateMatch(text string, label models.Label) bool {
	switch label {
	case models.LabelEmail:
		at := strings.Index(text, "@")
		return at >= 0 && strings.Contains(text[at+1:], ".")
	case models.LabelPhone:
		return countDigits(text) >= 10
	case models.LabelIBAN:
		cleaned := strings.Map(func(r rune) rune {
			if r == ' ' || r == '-' || r == '\t' {
				return -1
			}
			return r
		}, text)
		return len(cleaned) >= 15
	case models.LabelSiren:
		return countDigits(text) == 9
	case models.LabelSiret:
		return countDigits(text) == 14
	}
	return true
}

// contextWindow returns the fixed-radius window around the span, clamped to
// text bounds, with the first occurrence of the entity substring wrapped in
// bracket markers.
func (ce *CandidateExtractor) contextWindow(text string, start, end int) string {
	contextStart := start - ce.contextRadius
	if contextStart < 0 {
		contextStart = 0
	}
	contextEnd := end + ce.contextRadius
	if contextEnd > len(text) {
		contextEnd = len(text)
	}
	// Window bounds must not split multi-byte characters
	for contextStart > 0 && !utf8.RuneStart(text[contextStart]) {
		contextStart--
	}
	for contextEnd < len(text) && !utf8.RuneStart(text[contextEnd]) {
		contextEnd++
	}

	window := text[contextStart:contextEnd]
	entityText := text[start:end]
	marked := strings.Replace(window, entityText, "["+entityText+"]", 1)

	return strings.TrimSpace(marked)
}

func allowedSet(entityTypes []models.Label) map[models.Label]bool {
	if len(entityTypes) == 0 {
		return nil
	}
	allowed := make(map[models.Label]bool, len(entityTypes))
	for _, label := range entityTypes {
		allowed[label] = true
	}
	return allowed
}

func countDigits(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

// clampSpan silently corrects out-of-range offsets and rejects spans that
// remain empty after correction.
func clampSpan(start, end, textLen int) (int, int, bool) {
	if start < 0 {
		start = 0
	}
	if end > textLen {
		end = textLen
	}
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}
