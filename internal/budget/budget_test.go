package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalIsMean(t *testing.T) {
	b := Value{Priority: 0.3, Durability: 0.6, Quality: 0.9}
	assert.InDelta(t, 0.6, b.Total(), 1e-9)
}

func TestScaleClamps(t *testing.T) {
	b := Value{Priority: 0.9, Durability: 0.9, Quality: 0.9}
	scaled := b.Scale(2.0)
	assert.Equal(t, 1.0, scaled.Priority)
}

func TestMergeIsComponentwiseMean(t *testing.T) {
	a := Value{Priority: 0.2, Durability: 0.4, Quality: 0.6}
	b := Value{Priority: 0.8, Durability: 0.6, Quality: 0.4}
	m := a.Merge(b)
	assert.InDelta(t, 0.5, m.Priority, 1e-9)
	assert.InDelta(t, 0.5, m.Durability, 1e-9)
	assert.InDelta(t, 0.5, m.Quality, 1e-9)
}

func TestEquivalent(t *testing.T) {
	a := Value{Priority: 0.5, Durability: 0.5, Quality: 0.5}
	b := Value{Priority: 0.52, Durability: 0.48, Quality: 0.51}
	assert.True(t, a.Equivalent(b, 0.05))
	assert.False(t, a.Equivalent(b, 0.01))
}
