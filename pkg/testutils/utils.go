package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/lexanon/lexanon/pkg/models"
)

var candidateLabels = []models.Label{
	models.LabelPerson,
	models.LabelOrg,
	models.LabelLoc,
	models.LabelEmail,
	models.LabelPhone,
	models.LabelDate,
}

var candidateSources = []models.Source{
	models.SourceModel,
	models.SourcePattern,
	models.SourceManual,
}

// GenerateRandomCandidates returns n well-formed candidates with random
// spans over a text of the given length. Spans may overlap arbitrarily.
func GenerateRandomCandidates(n, textLen int) []models.Entity {
	candidates := make([]models.Entity, n)
	for i := range candidates {
		start := gofakeit.Number(0, textLen-2)
		end := gofakeit.Number(start+1, textLen-1)
		candidates[i] = models.Entity{
			Text:       gofakeit.LetterN(uint(end - start)),
			Label:      candidateLabels[gofakeit.Number(0, len(candidateLabels)-1)],
			Start:      start,
			End:        end,
			Confidence: gofakeit.Float64Range(0.1, 1.0),
			Source:     candidateSources[gofakeit.Number(0, len(candidateSources)-1)],
		}
	}
	return candidates
}

// GenerateContactText returns a French-looking text containing one email
// and one phone number, plus their byte offsets.
func GenerateContactText() (text string, email string, phone string) {
	email = gofakeit.Email()
	phone = "06 12 34 56 78"
	text = fmt.Sprintf(
		"Contactez %s par mail à %s ou par téléphone au %s.",
		gofakeit.Name(),
		email,
		phone,
	)
	return text, email, phone
}
