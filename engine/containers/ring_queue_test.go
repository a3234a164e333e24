package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	assert.True(t, rq.IsEmpty())

	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	assert.True(t, rq.IsFull())
	assert.Error(t, rq.Enqueue(4))

	head, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, head)

	for expected := 1; expected <= 3; expected++ {
		v, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, expected, v)
	}

	_, err = rq.Dequeue()
	assert.Error(t, err)
}

func TestRingQueueWrapAround(t *testing.T) {
	rq := NewRingQueue[string](2)
	require.NoError(t, rq.Enqueue("a"))
	require.NoError(t, rq.Enqueue("b"))

	v, _ := rq.Dequeue()
	assert.Equal(t, "a", v)
	require.NoError(t, rq.Enqueue("c"))

	v, _ = rq.Dequeue()
	assert.Equal(t, "b", v)
	v, _ = rq.Dequeue()
	assert.Equal(t, "c", v)
}
