package containers

import "sort"

// BucketArray stores values densely and keeps one index bucket per
// category. Sorting reorders the per-category indices, never the
// payloads, so a value stays addressable by its insertion index.
type BucketArray[T any] struct {
	data    []T
	buckets [][]int
}

func NewBucketArray[T any](categoryCount, initialCapacity int) *BucketArray[T] {
	ba := &BucketArray[T]{
		data:    make([]T, 0, initialCapacity),
		buckets: make([][]int, categoryCount),
	}
	for i := range ba.buckets {
		ba.buckets[i] = make([]int, 0, initialCapacity/categoryCount+1)
	}
	return ba
}

// Emplace appends value to the dense array and registers it under the
// given category. Returns the dense index.
func (ba *BucketArray[T]) Emplace(category int, value T) int {
	index := len(ba.data)
	ba.data = append(ba.data, value)
	ba.buckets[category] = append(ba.buckets[category], index)
	return index
}

// EmplaceIndex registers an externally managed index under a category
// without storing a payload. Used when the payload lives elsewhere.
func (ba *BucketArray[T]) EmplaceIndex(category, index int) {
	ba.buckets[category] = append(ba.buckets[category], index)
}

// Clear drops all values and all category buckets, keeping capacity.
func (ba *BucketArray[T]) Clear() {
	ba.data = ba.data[:0]
	for i := range ba.buckets {
		ba.buckets[i] = ba.buckets[i][:0]
	}
}

// Sort reorders the index bucket of one category with the given
// less function over dense indices.
func (ba *BucketArray[T]) Sort(category int, less func(a, b int) bool) {
	bucket := ba.buckets[category]
	sort.SliceStable(bucket, func(i, j int) bool {
		return less(bucket[i], bucket[j])
	})
}

// Category returns the index bucket for a category, in current order.
func (ba *BucketArray[T]) Category(category int) []int {
	return ba.buckets[category]
}

// CategorySize returns the number of entries in a category.
func (ba *BucketArray[T]) CategorySize(category int) int {
	return len(ba.buckets[category])
}

// At returns a pointer to the dense value at index.
func (ba *BucketArray[T]) At(index int) *T {
	return &ba.data[index]
}

// Size returns the number of dense values stored.
func (ba *BucketArray[T]) Size() int {
	return len(ba.data)
}
