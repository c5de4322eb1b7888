package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, ExtractJSON(`{"a":1}`))
	})

	t.Run("fenced block", func(t *testing.T) {
		in := "Here you go:\n```json\n{\"summary\": \"s\"}\n```\nthanks"
		assert.Equal(t, `{"summary": "s"}`, ExtractJSON(in))
	})

	t.Run("fence without language tag", func(t *testing.T) {
		in := "```\n{\"a\": true}\n```"
		assert.Equal(t, `{"a": true}`, ExtractJSON(in))
	})

	t.Run("object embedded in prose", func(t *testing.T) {
		in := `Sure! The result is {"topics": ["a", "b"]} as requested.`
		out := ExtractJSON(in)
		var parsed map[string][]string
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Equal(t, []string{"a", "b"}, parsed["topics"])
	})

	t.Run("trailing commas removed", func(t *testing.T) {
		in := `{"topics": ["a", "b",], "sentiment": "Neutral",}`
		out := ExtractJSON(in)
		var parsed map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	})

	t.Run("no object at all", func(t *testing.T) {
		assert.Equal(t, "", ExtractJSON("not json"))
		assert.Equal(t, "", ExtractJSON(""))
	})
}
