package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	t.Run("generates id when absent", func(t *testing.T) {
		var seen string
		handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCorrelationID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

		assert.NotEmpty(t, seen)
		assert.NotEqual(t, "unknown", seen)
		assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))
	})

	t.Run("honors caller supplied id", func(t *testing.T) {
		var seen string
		handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCorrelationID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		req.Header.Set("X-Correlation-ID", "abc-123")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "abc-123", seen)
	})
}

func TestGetCorrelationID_Missing(t *testing.T) {
	assert.Equal(t, "unknown", GetCorrelationID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
