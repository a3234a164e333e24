package opengl

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
)

// VertexAttribute describes a single shader input sourced from a
// vertex buffer, or from a constant when the buffer is absent.
type VertexAttribute struct {
	Location   uint32
	Size       int32 // 1-4 components
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     int
	Divisor    uint32 // 0 = per vertex, >0 = per instance
	// DefaultValue feeds the attribute when no buffer is bound on its
	// descriptor, so shaders still read a deterministic identity value
	// (e.g. identity matrix columns for instance transforms).
	DefaultValue [4]float32
}

// VertexBufferDesc binds one buffer (possibly nil) and its attributes.
type VertexBufferDesc struct {
	Buffer     *Buffer
	Attributes []VertexAttribute
}

// VertexArray owns one VAO described by an ordered list of vertex
// buffer descriptors plus an optional index buffer.
type VertexArray struct {
	pl            *Pipeline
	id            uint32
	vertexBuffers []VertexBufferDesc
	indexBuffer   *Buffer
}

func NewVertexArray(pl *Pipeline, indexBuffer *Buffer, vertexBuffers []VertexBufferDesc) *VertexArray {
	va := &VertexArray{pl: pl, indexBuffer: indexBuffer}

	if len(vertexBuffers) == 0 {
		// The pipeline already manages a dummy VAO for attribute-less
		// draws, so a descriptor-less vertex array is an error here.
		core.LogError("GPU: vertex array requires at least one vertex buffer descriptor")
		return va
	}

	for _, desc := range vertexBuffers {
		if desc.Buffer != nil && !desc.Buffer.IsValid() {
			core.LogError("GPU: invalid vertex buffer provided")
			return va
		}
		if desc.Buffer != nil && desc.Buffer.Target() != gl.ARRAY_BUFFER {
			core.LogError("GPU: vertex buffer must have GL_ARRAY_BUFFER target")
			return va
		}
		if len(desc.Attributes) == 0 {
			core.LogError("GPU: vertex buffer must have at least one attribute")
			return va
		}
		for _, attr := range desc.Attributes {
			if attr.Size < 1 || attr.Size > 4 {
				core.LogError("GPU: invalid attribute size %d for location %d", attr.Size, attr.Location)
				return va
			}
			if !isValidAttributeType(attr.Type) {
				core.LogError("GPU: invalid attribute type 0x%x for location %d", attr.Type, attr.Location)
				return va
			}
			if attr.Stride < 0 || attr.Offset < 0 {
				core.LogError("GPU: invalid stride/offset for location %d", attr.Location)
				return va
			}
		}
	}

	if indexBuffer != nil {
		if !indexBuffer.IsValid() {
			core.LogError("GPU: invalid index buffer provided")
			return va
		}
		if indexBuffer.Target() != gl.ELEMENT_ARRAY_BUFFER {
			core.LogError("GPU: index buffer must have GL_ELEMENT_ARRAY_BUFFER target")
			return va
		}
	}

	gl.GenVertexArrays(1, &va.id)
	if va.id == 0 {
		core.LogError("GPU: failed to create vertex array object")
		return va
	}

	va.vertexBuffers = make([]VertexBufferDesc, len(vertexBuffers))
	copy(va.vertexBuffers, vertexBuffers)

	pl.WithVertexArrayBind(va.id, func() {
		if indexBuffer != nil {
			gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, indexBuffer.ID())
		}

		for _, desc := range va.vertexBuffers {
			if desc.Buffer != nil {
				gl.BindBuffer(gl.ARRAY_BUFFER, desc.Buffer.ID())
			}
			for _, attr := range desc.Attributes {
				if desc.Buffer != nil {
					setupVertexAttribute(attr)
				} else {
					applyDefaultAttribute(attr)
				}
			}
		}

		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		if gl.GetError() != gl.NO_ERROR {
			core.LogError("GPU: failed to setup vertex array")
			gl.DeleteVertexArrays(1, &va.id)
			va.id = 0
		}
	})

	return va
}

func (va *VertexArray) Destroy() {
	if va.id != 0 {
		gl.DeleteVertexArrays(1, &va.id)
		va.id = 0
	}
}

func (va *VertexArray) IsValid() bool {
	return va != nil && va.id != 0
}

func (va *VertexArray) ID() uint32 {
	return va.id
}

func (va *VertexArray) VertexBufferCount() int {
	return len(va.vertexBuffers)
}

func (va *VertexArray) IndexBuffer() *Buffer {
	return va.indexBuffer
}

// BindVertexBuffer attaches a buffer to an existing descriptor slot and
// reconfigures its attribute pointers. Used to attach per-instance
// buffers right before an instanced draw.
func (va *VertexArray) BindVertexBuffer(index int, buffer *Buffer) {
	if index < 0 || index >= len(va.vertexBuffers) {
		core.LogError("GPU: vertex buffer index %d out of range", index)
		return
	}
	if va.vertexBuffers[index].Buffer == buffer {
		return
	}

	va.pl.WithVertexArrayBind(va.id, func() {
		if buffer != nil {
			gl.BindBuffer(gl.ARRAY_BUFFER, buffer.ID())
		} else {
			gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		}
		for _, attr := range va.vertexBuffers[index].Attributes {
			if buffer != nil {
				setupVertexAttribute(attr)
			} else {
				applyDefaultAttribute(attr)
			}
		}
	})

	va.vertexBuffers[index].Buffer = buffer
}

// UnbindVertexBuffer detaches the buffer of a descriptor slot; its
// attributes fall back to their default values.
func (va *VertexArray) UnbindVertexBuffer(index int) {
	if index < 0 || index >= len(va.vertexBuffers) {
		core.LogError("GPU: vertex buffer index %d out of range", index)
		return
	}
	if va.vertexBuffers[index].Buffer == nil {
		return
	}

	va.pl.WithVertexArrayBind(va.id, func() {
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		for _, attr := range va.vertexBuffers[index].Attributes {
			applyDefaultAttribute(attr)
		}
	})

	va.vertexBuffers[index].Buffer = nil
}

func setupVertexAttribute(attr VertexAttribute) {
	gl.EnableVertexAttribArray(attr.Location)
	if isIntegerAttributeType(attr.Type) {
		gl.VertexAttribIPointerWithOffset(attr.Location, attr.Size, attr.Type, attr.Stride, uintptr(attr.Offset))
	} else {
		gl.VertexAttribPointerWithOffset(attr.Location, attr.Size, attr.Type, attr.Normalized, attr.Stride, uintptr(attr.Offset))
	}
	gl.VertexAttribDivisor(attr.Location, attr.Divisor)
}

func applyDefaultAttribute(attr VertexAttribute) {
	gl.DisableVertexAttribArray(attr.Location)
	if isIntegerAttributeType(attr.Type) {
		gl.VertexAttribI4i(attr.Location,
			int32(attr.DefaultValue[0]), int32(attr.DefaultValue[1]),
			int32(attr.DefaultValue[2]), int32(attr.DefaultValue[3]))
	} else {
		gl.VertexAttrib4f(attr.Location,
			attr.DefaultValue[0], attr.DefaultValue[1],
			attr.DefaultValue[2], attr.DefaultValue[3])
	}
}

func isValidAttributeType(attrType uint32) bool {
	switch attrType {
	case gl.BYTE, gl.UNSIGNED_BYTE, gl.SHORT, gl.UNSIGNED_SHORT,
		gl.INT, gl.UNSIGNED_INT, gl.HALF_FLOAT, gl.FLOAT,
		gl.INT_2_10_10_10_REV, gl.UNSIGNED_INT_2_10_10_10_REV:
		return true
	}
	return false
}

func isIntegerAttributeType(attrType uint32) bool {
	switch attrType {
	case gl.BYTE, gl.UNSIGNED_BYTE, gl.SHORT, gl.UNSIGNED_SHORT, gl.INT, gl.UNSIGNED_INT:
		return true
	}
	return false
}
