package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPCG32Deterministic(t *testing.T) {
	a := NewPCG32(42, 54)
	b := NewPCG32(42, 54)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Uint32(), b.Uint32(), "step %d", i)
	}
}

func TestPCG32SeedsDiffer(t *testing.T) {
	a := NewPCG32(1, 1)
	b := NewPCG32(2, 1)
	same := 0
	for i := 0; i < 64; i++ {
		if a.Uint32() == b.Uint32() {
			same++
		}
	}
	assert.Less(t, same, 4)
}

func TestPCG32Ranges(t *testing.T) {
	g := NewPCG32(7, 9)
	for i := 0; i < 1000; i++ {
		v := g.IntRange(-5, 5)
		assert.GreaterOrEqual(t, v, int32(-5))
		assert.Less(t, v, int32(5))

		f := g.Float32()
		assert.GreaterOrEqual(t, f, float32(0))
		assert.Less(t, f, float32(1))

		r := g.Float32Range(2, 3)
		assert.GreaterOrEqual(t, r, float32(2))
		assert.Less(t, r, float32(3))
	}

	// Degenerate range collapses to min.
	assert.Equal(t, int32(3), g.IntRange(3, 3))
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()
	// 120 frames at ~10ms crosses the one second accumulator once.
	for i := 0; i < 120; i++ {
		m.Update(0.010)
	}
	assert.InDelta(t, 100, m.FPS(), 5)
	assert.InDelta(t, 10, m.FrameTime(), 1)
}
