package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	t.Run("returns nil on first success", func(t *testing.T) {
		calls := 0
		err := Retry(3, 0, func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Retry(5, 0, func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		last := errors.New("still down")
		err := Retry(3, 0, func() error {
			calls++
			return last
		})

		assert.ErrorIs(t, err, last)
		assert.Equal(t, 3, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_ = Retry(0, 0, func() error {
			calls++
			return nil
		})

		assert.Equal(t, 1, calls)
	})
}
