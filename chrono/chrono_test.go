package chrono_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fossillogic/pizza/chrono"
)

func TestNanosMonotonicEnoughForOrdering(t *testing.T) {
	a := chrono.Nanos()
	b := chrono.Nanos()
	assert.LessOrEqual(t, a, b)
}

func TestElapsedGuardsAgainstInversion(t *testing.T) {
	assert.Equal(t, uint64(0), chrono.Elapsed(100, 50))
	assert.Equal(t, uint64(50), chrono.Elapsed(50, 100))
}

func TestSplitNanos(t *testing.T) {
	const ns = uint64(3*3600e9 + 2*60e9 + 1e9 + 4000 + 7)
	s := chrono.SplitNanos(ns)
	assert.Equal(t, uint64(3), s.Hours)
	assert.Equal(t, uint64(2), s.Minutes)
	assert.Equal(t, uint64(1), s.Seconds)
	assert.Equal(t, uint64(4), s.Microseconds)
	assert.Equal(t, uint64(7), s.Nanoseconds)
}
