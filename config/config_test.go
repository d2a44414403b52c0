package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "local", cfg.NLP.Service)
	assert.Equal(t, "fr", cfg.NLP.Language)
	assert.Equal(t, 1000000, cfg.Extraction.MaxTextLength)
	assert.Equal(t, 50, cfg.Extraction.ContextWindow)
	assert.Equal(t, 10, cfg.Extraction.MaxBatchSize)
	assert.Equal(t, 0.5, cfg.Extraction.DefaultThreshold)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LEXANON_EXTRACTION_MAX_BATCH_SIZE", "5")
	t.Setenv("LEXANON_NLP_LANGUAGE", "en")
	t.Setenv("LEXANON_AUTH_SECRET", "test-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Extraction.MaxBatchSize)
	assert.Equal(t, "en", cfg.NLP.Language)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
}
