package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalOracleOffsets(t *testing.T) {
	oracle := NewLocalOracle()
	text := "Jean Martin is a lawyer working with Acme Corporation in Paris. " +
		"Jean Martin signed the contract."

	spans, err := oracle.LabelSpans(context.Background(), text)
	require.NoError(t, err)

	// Whatever the tagger finds, the reported offsets must index the
	// exact substring, and spans must advance monotonically.
	cursor := 0
	for _, span := range spans {
		assert.Equal(t, span.Text, text[span.Start:span.End])
		assert.GreaterOrEqual(t, span.Start, cursor)
		assert.Less(t, span.Start, span.End)
		cursor = span.End
	}
}

func TestLocalOracleEmptyText(t *testing.T) {
	oracle := NewLocalOracle()

	spans, err := oracle.LabelSpans(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestLocalOracleName(t *testing.T) {
	assert.Equal(t, "prose", NewLocalOracle().Name())
}
