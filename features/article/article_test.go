package article_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"newsdesk/features/article"
)

func TestValidate(t *testing.T) {
	valid := article.Article{Source: "BBC-World", URL: "https://example.com/a", Title: "t"}
	assert.NoError(t, valid.Validate())

	t.Run("missing source", func(t *testing.T) {
		a := valid
		a.Source = ""
		assert.ErrorIs(t, a.Validate(), article.ErrInvalid)
	})
	t.Run("missing url", func(t *testing.T) {
		a := valid
		a.URL = ""
		assert.ErrorIs(t, a.Validate(), article.ErrInvalid)
	})
	t.Run("missing title", func(t *testing.T) {
		a := valid
		a.Title = ""
		assert.ErrorIs(t, a.Validate(), article.ErrInvalid)
	})
}

func TestBodyText(t *testing.T) {
	a := article.Article{Title: "title", Description: "desc", Content: "content"}
	assert.Equal(t, "content", a.BodyText())

	a.Content = ""
	assert.Equal(t, "desc", a.BodyText())

	a.Description = "   "
	assert.Equal(t, "title", a.BodyText())
}

func TestEnrichedJSONShape(t *testing.T) {
	e := article.Enriched{
		ID:        "abc",
		Source:    "BBC-World",
		URL:       "https://example.com/a",
		Title:     "t",
		Topics:    []string{},
		Sentiment: article.SentimentNeutral,
	}
	raw, err := json.Marshal(&e)
	require.NoError(t, err)
	// Empty topics must encode as [] rather than null.
	assert.Contains(t, string(raw), `"topics":[]`)
	assert.Contains(t, string(raw), `"sentiment":"Neutral"`)
	// Optional empties are omitted.
	assert.NotContains(t, string(raw), "description")
	assert.NotContains(t, string(raw), "summary")
}
