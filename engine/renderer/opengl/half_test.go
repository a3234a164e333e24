package opengl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat32ToHalfBasics(t *testing.T) {
	assert.Equal(t, uint16(0x0000), Float32ToHalf(0))
	assert.Equal(t, uint16(0x3c00), Float32ToHalf(1))
	assert.Equal(t, uint16(0xbc00), Float32ToHalf(-1))
	assert.Equal(t, uint16(0x4000), Float32ToHalf(2))
	assert.Equal(t, uint16(0x3800), Float32ToHalf(0.5))
}

// Out-of-range magnitudes clamp to the largest finite half value
// rather than producing infinities.
func TestFloat32ToHalfClampsAtBoundary(t *testing.T) {
	maxHalf := Float32ToHalf(65504)
	assert.Equal(t, uint16(0x7bff), maxHalf)

	assert.Equal(t, maxHalf, Float32ToHalf(65505))
	assert.Equal(t, maxHalf, Float32ToHalf(1e10))
	assert.Equal(t, uint16(0xfbff), Float32ToHalf(-1e10))
}

func TestHalfSliceConvertsAll(t *testing.T) {
	out := HalfSlice([]float32{0, 1, 70000})
	assert.Equal(t, []uint16{0x0000, 0x3c00, 0x7bff}, out)
}
