package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
)

// Buffer owns exactly one GL buffer object. The owner releases the GL
// object through Destroy; consumers hold plain pointers.
type Buffer struct {
	pl     *Pipeline
	id     uint32
	target uint32
	size   int
	usage  uint32
}

// NewBuffer allocates a buffer of the given size, optionally seeded
// with data. A nil data pointer leaves the storage uninitialized.
func NewBuffer(pl *Pipeline, target uint32, size int, data unsafe.Pointer, usage uint32) *Buffer {
	b := &Buffer{pl: pl, target: target, usage: usage}

	if !isValidTarget(target) {
		core.LogError("GPU: invalid buffer target: 0x%x", target)
		return b
	}
	if !isValidUsage(usage) {
		core.LogError("GPU: invalid buffer usage: 0x%x", usage)
		return b
	}
	if size <= 0 {
		core.LogError("GPU: invalid buffer size: %d", size)
		return b
	}

	gl.GenBuffers(1, &b.id)
	if b.id == 0 {
		core.LogError("GPU: failed to create buffer object")
		return b
	}

	pl.WithBufferBind(target, b.id, func() {
		gl.BufferData(target, size, data, usage)
		if gl.GetError() != gl.NO_ERROR {
			core.LogError("GPU: failed to upload buffer data")
			gl.DeleteBuffers(1, &b.id)
			b.id = 0
			return
		}
		b.size = size
	})

	return b
}

// NewBufferFrom allocates a buffer seeded from a slice of any element
// type. The slice must be non-empty.
func NewBufferFrom[T any](pl *Pipeline, target uint32, data []T, usage uint32) *Buffer {
	var elem T
	size := len(data) * int(unsafe.Sizeof(elem))
	if size == 0 {
		core.LogError("GPU: cannot create buffer from empty slice")
		return &Buffer{pl: pl, target: target, usage: usage}
	}
	return NewBuffer(pl, target, size, unsafe.Pointer(&data[0]), usage)
}

func (b *Buffer) Destroy() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
		b.size = 0
	}
}

func (b *Buffer) IsValid() bool {
	return b != nil && b.id != 0
}

func (b *Buffer) ID() uint32 {
	return b.id
}

func (b *Buffer) Target() uint32 {
	return b.target
}

// Size reports the byte size of the last successful allocation.
func (b *Buffer) Size() int {
	return b.size
}

// Reserve reallocates the buffer if its size is below minSize,
// optionally preserving existing content.
func (b *Buffer) Reserve(minSize int, keepData bool) {
	if minSize > b.size {
		b.Realloc(minSize, keepData)
	}
}

// ReallocWith reallocates to newSize and uploads data. No preservation
// guarantee for previous content.
func (b *Buffer) ReallocWith(newSize int, data unsafe.Pointer) {
	if !b.IsValid() {
		core.LogError("GPU: cannot set data on invalid buffer")
		return
	}
	if newSize <= 0 {
		core.LogError("GPU: invalid buffer size: %d", newSize)
		return
	}

	b.pl.WithBufferBind(b.target, b.id, func() {
		gl.BufferData(b.target, newSize, data, b.usage)
		if gl.GetError() != gl.NO_ERROR {
			core.LogError("GPU: failed to set buffer data")
			return
		}
		b.size = newSize
	})
}

// Realloc reallocates to newSize. When keepData is set, the preserved
// prefix is copied through a scratch buffer to the fresh allocation.
func (b *Buffer) Realloc(newSize int, keepData bool) {
	if !b.IsValid() {
		core.LogError("GPU: cannot set data on invalid buffer")
		return
	}
	if newSize <= 0 {
		core.LogError("GPU: invalid buffer size: %d", newSize)
		return
	}

	oldSize := b.size

	b.pl.WithBufferBind(b.target, b.id, func() {
		if !keepData || oldSize == 0 {
			gl.BufferData(b.target, newSize, nil, b.usage)
			if gl.GetError() != gl.NO_ERROR {
				core.LogError("GPU: failed to set buffer data")
				return
			}
			b.size = newSize
			return
		}

		preserveSize := oldSize
		if newSize < preserveSize {
			preserveSize = newSize
		}

		var tempBuffer uint32
		gl.GenBuffers(1, &tempBuffer)

		gl.BindBuffer(gl.COPY_READ_BUFFER, b.id)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, tempBuffer)

		gl.BufferData(gl.COPY_WRITE_BUFFER, preserveSize, nil, gl.STATIC_COPY)
		gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, preserveSize)

		if errCode := gl.GetError(); errCode != gl.NO_ERROR {
			core.LogError("GPU: failed to copy buffer data to temp buffer (error: 0x%x)", errCode)
			gl.DeleteBuffers(1, &tempBuffer)
			return
		}

		gl.BindBuffer(b.target, b.id)
		gl.BufferData(b.target, newSize, nil, b.usage)

		if errCode := gl.GetError(); errCode != gl.NO_ERROR {
			core.LogError("GPU: failed to reallocate buffer (error: 0x%x)", errCode)
			gl.DeleteBuffers(1, &tempBuffer)
			return
		}

		gl.BindBuffer(gl.COPY_READ_BUFFER, tempBuffer)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
		gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, preserveSize)

		errCode := gl.GetError()
		if errCode != gl.NO_ERROR {
			core.LogError("GPU: failed to restore buffer data (error: 0x%x)", errCode)
		}

		gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
		gl.DeleteBuffers(1, &tempBuffer)

		if errCode == gl.NO_ERROR {
			b.size = newSize
		}
	})
}

// Upload overwrites part of the buffer at the given byte offset.
func (b *Buffer) Upload(offset, size int, data unsafe.Pointer) bool {
	if !b.IsValid() {
		core.LogError("GPU: cannot set sub data on invalid buffer")
		return false
	}
	if offset < 0 || size <= 0 || offset+size > b.size {
		core.LogError("GPU: invalid buffer sub data range [%d, %d) for buffer size %d",
			offset, offset+size, b.size)
		return false
	}
	if data == nil {
		core.LogError("GPU: buffer sub data cannot be null")
		return false
	}

	b.pl.WithBufferBind(b.target, b.id, func() {
		gl.BufferSubData(b.target, offset, size, data)
		if gl.GetError() != gl.NO_ERROR {
			core.LogError("GPU: failed to set buffer sub data")
		}
	})

	return true
}

// UploadObject overwrites the buffer from offset 0 with one value.
func UploadObject[T any](b *Buffer, data *T) bool {
	return b.Upload(0, int(unsafe.Sizeof(*data)), unsafe.Pointer(data))
}

// UploadSlice overwrites part of the buffer with the slice content,
// with the offset expressed in bytes.
func UploadSlice[T any](b *Buffer, byteOffset int, data []T) bool {
	if len(data) == 0 {
		return true
	}
	var elem T
	return b.Upload(byteOffset, len(data)*int(unsafe.Sizeof(elem)), unsafe.Pointer(&data[0]))
}

// MapRange maps [offset, offset+length) with the given access bits.
// Returns nil when the range or access bits are invalid.
func (b *Buffer) MapRange(offset, length int, access uint32) unsafe.Pointer {
	if !b.IsValid() {
		core.LogError("GPU: cannot map range on invalid buffer")
		return nil
	}
	if offset < 0 || length <= 0 || offset+length > b.size {
		core.LogError("GPU: invalid map range [%d, %d) for buffer size %d",
			offset, offset+length, b.size)
		return nil
	}
	if !isValidMapRangeAccess(access) {
		core.LogError("GPU: invalid map range access: 0x%x", access)
		return nil
	}

	var ptr unsafe.Pointer
	b.pl.WithBufferBind(b.target, b.id, func() {
		ptr = gl.MapBufferRange(b.target, offset, length, access)
		if ptr == nil {
			core.LogError("GPU: failed to map buffer range")
		}
	})

	return ptr
}

// Map maps the whole buffer with the given access bits.
func (b *Buffer) Map(access uint32) unsafe.Pointer {
	if !b.IsValid() {
		core.LogError("GPU: cannot map invalid buffer")
		return nil
	}
	return b.MapRange(0, b.size, access)
}

func (b *Buffer) Unmap() bool {
	if !b.IsValid() {
		core.LogError("GPU: cannot unmap invalid buffer")
		return false
	}

	result := false
	b.pl.WithBufferBind(b.target, b.id, func() {
		result = gl.UnmapBuffer(b.target)
		if !result {
			core.LogWarn("GPU: buffer unmap returned false (data corrupted)")
		}
	})

	return result
}

func isValidTarget(target uint32) bool {
	switch target {
	case gl.ARRAY_BUFFER,
		gl.ELEMENT_ARRAY_BUFFER,
		gl.COPY_READ_BUFFER,
		gl.COPY_WRITE_BUFFER,
		gl.PIXEL_PACK_BUFFER,
		gl.PIXEL_UNPACK_BUFFER,
		gl.TRANSFORM_FEEDBACK_BUFFER,
		gl.UNIFORM_BUFFER,
		gl.SHADER_STORAGE_BUFFER:
		return true
	}
	return false
}

func isValidUsage(usage uint32) bool {
	switch usage {
	case gl.STREAM_DRAW, gl.STREAM_READ, gl.STREAM_COPY,
		gl.STATIC_DRAW, gl.STATIC_READ, gl.STATIC_COPY,
		gl.DYNAMIC_DRAW, gl.DYNAMIC_READ, gl.DYNAMIC_COPY:
		return true
	}
	return false
}

func isValidMapRangeAccess(access uint32) bool {
	if access&(gl.MAP_READ_BIT|gl.MAP_WRITE_BIT) == 0 {
		return false
	}
	const validBits = gl.MAP_READ_BIT | gl.MAP_WRITE_BIT |
		gl.MAP_INVALIDATE_RANGE_BIT | gl.MAP_INVALIDATE_BUFFER_BIT |
		gl.MAP_FLUSH_EXPLICIT_BIT | gl.MAP_UNSYNCHRONIZED_BIT
	return access&^uint32(validBits) == 0
}
