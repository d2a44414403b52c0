package nlp

import (
	"context"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/lexanon/lexanon/pkg/models"
)

var _ models.EntityOracle = &LocalOracle{}

// LocalOracle labels spans with an in-process statistical tagger. It is
// used when no NLP server is configured. prose reports entity text without
// offsets, so offsets are recovered by scanning forward through the text;
// the cursor only advances, so recovered spans never overlap.
type LocalOracle struct{}

func NewLocalOracle() *LocalOracle {
	return &LocalOracle{}
}

func (o *LocalOracle) Name() string {
	return "prose"
}

func (o *LocalOracle) LabelSpans(_ context.Context, text string) ([]models.SpanLabel, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	var spans []models.SpanLabel
	cursor := 0
	for _, ent := range doc.Entities() {
		idx := strings.Index(text[cursor:], ent.Text)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(ent.Text)
		spans = append(spans, models.SpanLabel{
			Text:  ent.Text,
			Label: ent.Label,
			Start: start,
			End:   end,
		})
		cursor = end
	}

	return spans, nil
}
