package search

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/middleware"
)

func TestQueryLogger(t *testing.T) {
	t.Run("writes one JSON line per entry", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewQueryLogger(&buf)

		l.Log(t.Context(), QueryLogEntry{Query: "one", NumResults: 2, Duration: 30 * time.Millisecond})
		l.Log(t.Context(), QueryLogEntry{Query: "two", NumResults: 0})

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		var first QueryLogEntry
		require.NoError(t, json.Unmarshal(lines[0], &first))
		assert.Equal(t, "one", first.Query)
		assert.Equal(t, 2, first.NumResults)
		assert.Equal(t, int64(30), first.LatencyMs)
		assert.False(t, first.Timestamp.IsZero())
	})

	t.Run("carries the correlation id from context", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewQueryLogger(&buf)

		ctx := middleware.WithCorrelationID(t.Context(), "corr-9")
		l.Log(ctx, QueryLogEntry{Query: "q"})

		var entry QueryLogEntry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-9", entry.CorrelationID)
	})
}
