package pipeline

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lexanon/lexanon/pkg/models"
)

// Scoring constants per signal channel.
const (
	minConfidence = 0.1
	maxConfidence = 1.0

	highQualityBonus   = 0.1
	lowQualityPenalty  = 0.2
	shortTextPenalty   = 0.1
	specialCharPenalty = 0.1
	specialCharLimit   = 0.3

	contextBoost    = 0.05
	contextBoostCap = 0.2

	optimalLengthBonus = 0.05
	lengthPenalty      = 0.1
)

type qualityPatterns struct {
	high []*regexp.Regexp
	low  []*regexp.Regexp
}

// qualityTable holds per-label signatures over the entity's own text.
// PERSON patterns are case-sensitive: capitalization is the signal.
var qualityTable = map[models.Label]qualityPatterns{
	models.LabelPerson: {
		high: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`),
			regexp.MustCompile(`^[A-Z][a-z]+-[A-Z][a-z]+ [A-Z][a-z]+$`),
		},
		low: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Z]+$`),
			regexp.MustCompile(`^\d`),
		},
	},
	models.LabelOrg: {
		high: []*regexp.Regexp{
			regexp.MustCompile(`(SARL|SAS|SA|EURL|SCI|SASU)`),
			regexp.MustCompile(`(?i)(Société|Entreprise|Compagnie)`),
		},
		low: []*regexp.Regexp{
			regexp.MustCompile(`^[a-z]+$`),
		},
	},
}

// contextBoosters are label-specific keywords that, found in the
// lower-cased context window, each add a small boost.
var contextBoosters = map[models.Label][]string{
	models.LabelPerson: {"monsieur", "madame", "docteur", "professeur", "maître"},
	models.LabelOrg:    {"société", "entreprise", "compagnie", "association", "fondation"},
	models.LabelLoc:    {"ville", "commune", "département", "région", "pays"},
}

var emailContextWords = []string{"contact", "mail", "courriel", "@"}
var phoneContextWords = []string{"téléphone", "tel", "mobile", "portable"}

type lengthRange struct {
	min int
	max int
}

// optimalLengths gives the per-label character-length range that earns the
// length bonus. Labels absent from the table are length-neutral.
var optimalLengths = map[models.Label]lengthRange{
	models.LabelPerson: {5, 30},
	models.LabelOrg:    {3, 50},
	models.LabelLoc:    {3, 25},
	models.LabelEmail:  {5, 50},
	models.LabelPhone:  {10, 15},
	models.LabelIBAN:   {15, 34},
	models.LabelSiren:  {9, 11},
	models.LabelSiret:  {14, 17},
}

// ScoreEntities replaces each candidate's confidence with a final
// calibrated score in [0.1, 1.0], rounded to 3 decimal places. All other
// fields are carried through unchanged; input candidates are never
// mutated. Each entity is scored independently from its own immutable
// snapshot.
func ScoreEntities(entities []models.Entity) []models.Entity {
	scored := make([]models.Entity, 0, len(entities))
	for _, entity := range entities {
		score := baseConfidence(entity.Source) +
			qualityAdjustment(&entity) +
			contextAdjustment(&entity) +
			lengthAdjustment(&entity)

		entity.Confidence = round3(clamp(score, minConfidence, maxConfidence))
		scored = append(scored, entity)
	}
	return scored
}

// baseConfidence is the source-keyed prior.
func baseConfidence(source models.Source) float64 {
	switch source {
	case models.SourcePattern:
		return 0.85
	case models.SourceModel:
		return 0.75
	case models.SourceManual:
		return 0.95
	}
	return 0.5
}

// qualityAdjustment scores the entity's own text. At most one high and one
// low signature contribute (first match wins per list), plus generic
// penalties for very short text and special-character noise.
func qualityAdjustment(e *models.Entity) float64 {
	adjustment := 0.0

	if patterns, ok := qualityTable[e.Label]; ok {
		for _, re := range patterns.high {
			if re.MatchString(e.Text) {
				adjustment += highQualityBonus
				break
			}
		}
		for _, re := range patterns.low {
			if re.MatchString(e.Text) {
				adjustment -= lowQualityPenalty
				break
			}
		}
	}

	if utf8.RuneCountInString(e.Text) < 3 && !e.Label.IsFixedWidthID() {
		adjustment -= shortTextPenalty
	}

	if specialCharRatio(e.Text) > specialCharLimit {
		adjustment -= specialCharPenalty
	}

	return adjustment
}

// specialCharRatio is the share of runes that are neither word characters
// nor whitespace. Unicode-aware so accented French letters do not count as
// noise.
func specialCharRatio(s string) float64 {
	if s == "" {
		return 0
	}
	special, total := 0, 0
	for _, r := range s {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && !unicode.IsSpace(r) {
			special++
		}
	}
	return float64(special) / float64(total)
}

// contextAdjustment sums booster-keyword hits in the lower-cased context
// window, plus label-specific boosts for emails and phone numbers, capped
// at contextBoostCap.
func contextAdjustment(e *models.Entity) float64 {
	if e.Context == "" {
		return 0
	}

	adjustment := 0.0
	contextLower := strings.ToLower(e.Context)

	for _, booster := range contextBoosters[e.Label] {
		if strings.Contains(contextLower, booster) {
			adjustment += contextBoost
		}
	}

	if e.Label == models.LabelEmail && containsAny(contextLower, emailContextWords) {
		adjustment += contextBoost
	}
	if e.Label == models.LabelPhone && containsAny(contextLower, phoneContextWords) {
		adjustment += contextBoost
	}

	if adjustment > contextBoostCap {
		adjustment = contextBoostCap
	}
	return adjustment
}

// lengthAdjustment rewards text lengths inside the label's optimal range
// and penalizes clearly-too-short or far-too-long spans.
func lengthAdjustment(e *models.Entity) float64 {
	r, ok := optimalLengths[e.Label]
	if !ok {
		return 0
	}

	length := utf8.RuneCountInString(e.Text)
	switch {
	case length >= r.min && length <= r.max:
		return optimalLengthBonus
	case length < r.min:
		return -lengthPenalty
	case float64(length) > float64(r.max)*1.5:
		return -lengthPenalty
	}
	return 0
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
