package config

import (
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, envconfig.Process("newsdesk_test_unset", &cfg))

	assert.Equal(t, 12000, cfg.SingleShotCharLimit)
	assert.Equal(t, 6000, cfg.ChunkChars)
	assert.Equal(t, 500, cfg.ChunkOverlap)
	assert.Equal(t, 10, cfg.MaxChunks)
	assert.Equal(t, 3, cfg.LLMMaxAttempts)
	assert.Equal(t, 1*time.Second, cfg.LLMBackoffMin())
	assert.Equal(t, 3*time.Second, cfg.LLMBackoffMax())
	assert.Equal(t, 60*time.Second, cfg.LLMCallTimeout())
	assert.Equal(t, 8081, cfg.ServerPort)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SINGLE_SHOT_CHAR_LIMIT", "500")
	t.Setenv("CHUNK_CHARS", "100")
	t.Setenv("GEMINI_MODEL", "gemini-test")

	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))
	assert.Equal(t, 500, cfg.SingleShotCharLimit)
	assert.Equal(t, 100, cfg.ChunkChars)
	assert.Equal(t, "gemini-test", cfg.GeminiModel)
}

func TestValidate(t *testing.T) {
	var cfg Config
	require.NoError(t, envconfig.Process("newsdesk_test_unset", &cfg))

	t.Run("non-positive limit rejected", func(t *testing.T) {
		bad := cfg
		bad.SingleShotCharLimit = 0
		assert.ErrorIs(t, bad.Validate(), ErrMissingRequired)
	})

	t.Run("non-positive chunk size rejected", func(t *testing.T) {
		bad := cfg
		bad.ChunkChars = -1
		assert.ErrorIs(t, bad.Validate(), ErrMissingRequired)
	})

	t.Run("inverted backoff window rejected", func(t *testing.T) {
		bad := cfg
		bad.LLMBackoffMinSeconds = 5
		bad.LLMBackoffMaxSeconds = 1
		assert.ErrorIs(t, bad.Validate(), ErrMissingRequired)
	})
}
