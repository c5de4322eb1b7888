package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"newsdesk/features/article"
)

type recordingSink struct {
	items []*article.Enriched
	err   error
}

func (s *recordingSink) Write(_ context.Context, item *article.Enriched) error {
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, item)
	return nil
}

func enrichedWithID(id string) *article.Enriched {
	return &article.Enriched{ID: id, Source: "s", URL: "https://example.com/" + id, Title: id, Topics: []string{}, Sentiment: article.SentimentNeutral}
}

func TestDedupWriter(t *testing.T) {
	t.Run("first seen wins", func(t *testing.T) {
		sink := &recordingSink{}
		w := NewDedupWriter(sink)

		written, err := w.Write(context.Background(), enrichedWithID("a"))
		require.NoError(t, err)
		assert.True(t, written)

		written, err = w.Write(context.Background(), enrichedWithID("a"))
		require.NoError(t, err)
		assert.False(t, written)

		written, err = w.Write(context.Background(), enrichedWithID("b"))
		require.NoError(t, err)
		assert.True(t, written)

		require.Len(t, sink.items, 2)
		assert.Equal(t, "a", sink.items[0].ID)
		assert.Equal(t, "b", sink.items[1].ID)
	})

	t.Run("Seen does not record", func(t *testing.T) {
		w := NewDedupWriter(&recordingSink{})
		assert.False(t, w.Seen("a"))
		assert.False(t, w.Seen("a"))

		_, err := w.Write(context.Background(), enrichedWithID("a"))
		require.NoError(t, err)
		assert.True(t, w.Seen("a"))
	})

	t.Run("sink error propagates", func(t *testing.T) {
		w := NewDedupWriter(&recordingSink{err: errors.New("disk full")})
		_, err := w.Write(context.Background(), enrichedWithID("a"))
		assert.Error(t, err)
	})
}

func TestMulti(t *testing.T) {
	first := &recordingSink{}
	second := &recordingSink{}
	sink := Multi(first, second)

	require.NoError(t, sink.Write(context.Background(), enrichedWithID("a")))
	assert.Len(t, first.items, 1)
	assert.Len(t, second.items, 1)

	failing := Multi(&recordingSink{err: errors.New("boom")}, second)
	assert.Error(t, failing.Write(context.Background(), enrichedWithID("b")))
	assert.Len(t, second.items, 1, "later sinks must not run after a failure")
}

func TestJSONLSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONLSink(&buf)

	require.NoError(t, sink.Write(context.Background(), enrichedWithID("a")))
	require.NoError(t, sink.Write(context.Background(), enrichedWithID("b")))
	require.NoError(t, sink.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"a"`)
	assert.Contains(t, lines[1], `"id":"b"`)
}
