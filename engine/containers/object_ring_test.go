package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectRingRotation(t *testing.T) {
	next := 0
	ring := NewObjectRing[int](3, func() int {
		next++
		return next
	})

	assert.Equal(t, 3, ring.Size())
	assert.Equal(t, 1, *ring.Active())

	ring.Rotate()
	assert.Equal(t, 2, *ring.Active())
	ring.Rotate()
	assert.Equal(t, 3, *ring.Active())
	ring.Rotate()
	assert.Equal(t, 1, *ring.Active(), "the ring wraps around")
}

func TestObjectRingForEachVisitsAllSlots(t *testing.T) {
	ring := NewObjectRing[int](3, func() int { return 0 })
	ring.ForEach(func(v *int) { *v++ })
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, *ring.Active())
		ring.Rotate()
	}
}
