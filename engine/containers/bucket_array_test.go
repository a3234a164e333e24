package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketArrayEmplaceAndCategories(t *testing.T) {
	ba := NewBucketArray[string](3, 8)

	ba.Emplace(0, "a")
	ba.Emplace(1, "b")
	ba.Emplace(0, "c")

	assert.Equal(t, 3, ba.Size())
	assert.Equal(t, 2, ba.CategorySize(0))
	assert.Equal(t, 1, ba.CategorySize(1))
	assert.Equal(t, 0, ba.CategorySize(2))

	assert.Equal(t, "a", *ba.At(ba.Category(0)[0]))
	assert.Equal(t, "c", *ba.At(ba.Category(0)[1]))
}

func TestBucketArraySortReordersIndicesNotPayloads(t *testing.T) {
	ba := NewBucketArray[int](1, 8)
	ba.Emplace(0, 30)
	ba.Emplace(0, 10)
	ba.Emplace(0, 20)

	ba.Sort(0, func(a, b int) bool {
		return *ba.At(a) < *ba.At(b)
	})

	bucket := ba.Category(0)
	require.Len(t, bucket, 3)
	assert.Equal(t, []int{1, 2, 0}, bucket)

	// Dense storage keeps insertion order.
	assert.Equal(t, 30, *ba.At(0))
	assert.Equal(t, 10, *ba.At(1))
	assert.Equal(t, 20, *ba.At(2))
}

func TestBucketArrayExternalIndices(t *testing.T) {
	ba := NewBucketArray[int](2, 8)
	ba.EmplaceIndex(0, 7)
	ba.EmplaceIndex(1, 3)
	ba.EmplaceIndex(0, 5)

	assert.Equal(t, []int{7, 5}, ba.Category(0))
	assert.Equal(t, []int{3}, ba.Category(1))
	assert.Zero(t, ba.Size())
}

func TestBucketArrayClear(t *testing.T) {
	ba := NewBucketArray[int](2, 4)
	ba.Emplace(0, 1)
	ba.Emplace(1, 2)
	ba.Clear()

	assert.Zero(t, ba.Size())
	assert.Zero(t, ba.CategorySize(0))
	assert.Zero(t, ba.CategorySize(1))
}
