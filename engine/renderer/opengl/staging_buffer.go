package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
)

// StagingBuffer pairs a CPU staging slice with a GPU buffer. Records
// are staged during the frame and flushed in one upload.
type StagingBuffer[T any] struct {
	staging []T
	buffer  *Buffer
}

func NewStagingBuffer[T any](pl *Pipeline, target uint32, initialCapacity int) *StagingBuffer[T] {
	var elem T
	sb := &StagingBuffer[T]{
		staging: make([]T, 0, initialCapacity),
		buffer:  NewBuffer(pl, target, initialCapacity*int(unsafe.Sizeof(elem)), nil, gl.DYNAMIC_DRAW),
	}
	if !sb.buffer.IsValid() {
		core.LogError("RENDER: staging buffer allocation failed (requested: %d entries)", initialCapacity)
	}
	return sb
}

// Stage appends one record and returns its index.
func (sb *StagingBuffer[T]) Stage(data T) int {
	index := len(sb.staging)
	sb.staging = append(sb.staging, data)
	return index
}

// StageRange grows the staging array by count records and returns the
// slice to fill along with the index of its first element.
func (sb *StagingBuffer[T]) StageRange(count int) ([]T, int) {
	index := len(sb.staging)
	for i := 0; i < count; i++ {
		var zero T
		sb.staging = append(sb.staging, zero)
	}
	return sb.staging[index : index+count], index
}

// Len returns the number of staged records.
func (sb *StagingBuffer[T]) Len() int {
	return len(sb.staging)
}

// Upload flushes staged records to the GPU buffer, growing it as
// needed, then clears the staging array.
func (sb *StagingBuffer[T]) Upload() {
	if len(sb.staging) == 0 {
		return
	}

	var elem T
	size := len(sb.staging) * int(unsafe.Sizeof(elem))

	sb.buffer.Reserve(size, false)
	sb.buffer.Upload(0, size, unsafe.Pointer(&sb.staging[0]))

	sb.staging = sb.staging[:0]
}

func (sb *StagingBuffer[T]) Buffer() *Buffer {
	return sb.buffer
}

func (sb *StagingBuffer[T]) Destroy() {
	sb.buffer.Destroy()
	sb.staging = nil
}
