package containers

// ObjectRing keeps N interchangeable objects and exposes one of them as
// active. Rotating moves to the next slot; per-frame GPU buffers use
// this to avoid writing a buffer a previous frame may still read.
type ObjectRing[T any] struct {
	objects     []T
	activeIndex int
}

// NewObjectRing builds the ring by invoking create once per slot.
func NewObjectRing[T any](n int, create func() T) *ObjectRing[T] {
	objects := make([]T, n)
	for i := range objects {
		objects[i] = create()
	}
	return &ObjectRing[T]{objects: objects}
}

// Active returns a pointer to the currently active object.
func (r *ObjectRing[T]) Active() *T {
	return &r.objects[r.activeIndex]
}

// Rotate advances the active object to the next slot.
func (r *ObjectRing[T]) Rotate() {
	r.activeIndex = (r.activeIndex + 1) % len(r.objects)
}

// Size returns the number of slots in the ring.
func (r *ObjectRing[T]) Size() int {
	return len(r.objects)
}

// ForEach visits every slot, active first.
func (r *ObjectRing[T]) ForEach(fn func(*T)) {
	for i := 0; i < len(r.objects); i++ {
		fn(&r.objects[(r.activeIndex+i)%len(r.objects)])
	}
}
