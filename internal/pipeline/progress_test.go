package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressReport(t *testing.T) {
	p := NewProgress()
	p.started = time.Now().Add(-2 * time.Second)

	for i := 0; i < 5; i++ {
		p.Processed()
	}
	p.Succeeded()
	p.Succeeded()
	p.Succeeded()
	p.Failed()
	p.Skipped()

	r := p.Report()
	assert.Equal(t, 5, r.Processed)
	assert.Equal(t, 3, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 1, r.Duplicates)
	assert.Greater(t, r.Elapsed, time.Duration(0))
	assert.InDelta(t, 2.5, r.Throughput, 0.5)
}

func TestProgressReport_Empty(t *testing.T) {
	r := NewProgress().Report()
	assert.Zero(t, r.Processed)
	assert.GreaterOrEqual(t, r.Throughput, 0.0)
}
