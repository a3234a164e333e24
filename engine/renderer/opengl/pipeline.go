package opengl

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
)

// Fixed binding points shared by every program variant. Shaders declare
// the same table, so these values are normative.
const (
	BindingStorageShared   = 0
	BindingStorageUnique   = 1
	BindingStorageBones    = 2
	BindingStorageLights   = 3
	BindingStorageShadows  = 4
	BindingUniformEnv      = 13
	BindingUniformDynamic  = 14
	BindingUniformStatic   = 15
)

// BlendMode selects one of the fixed blend equations of the renderer.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
	BlendMultiply
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// DepthTest selects the fragment depth comparison.
type DepthTest int

const (
	DepthTestLess DepthTest = iota
	DepthTestLessEqual
	DepthTestGreater
	DepthTestAlways
	DepthTestDisabled
)

const textureUnitCount = 32

// Pipeline serializes every GL state change behind a dirty-tracking
// cache so draw code can assume the next draw matches the requested
// state. One instance exists per GL context; all methods must run on
// the thread that owns the context.
type Pipeline struct {
	currentProgram     uint32
	currentVertexArray uint32
	currentFramebuffer uint32
	currentTextures    [textureUnitCount]uint32
	activeTextureUnit  uint32
	boundBuffers       map[uint32]uint32

	blendMode    BlendMode
	blendInit    bool
	depthTest    DepthTest
	depthInit    bool
	depthMask    bool
	cullMode     CullMode
	cullInit     bool
	colorMask    [4]bool
	viewport     [4]int32
	scissor      [4]int32
	scissorOn    bool

	// dummyVAO satisfies the core-profile requirement that a vertex
	// array is bound for every draw, even attribute-less ones.
	dummyVAO uint32

	uniformOffsetAlignment int32
	maxUniformBufferSize   int32
}

// NewPipeline captures GL limits and creates the dummy VAO. Must be
// called once after the context is current.
func NewPipeline() (*Pipeline, error) {
	p := &Pipeline{
		boundBuffers: make(map[uint32]uint32, 8),
		depthMask:    true,
		colorMask:    [4]bool{true, true, true, true},
	}

	gl.GenVertexArrays(1, &p.dummyVAO)
	if p.dummyVAO == 0 {
		core.LogError("GPU: failed to create the dummy vertex array")
		return nil, core.ErrResourceExhausted
	}

	gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &p.uniformOffsetAlignment)
	gl.GetIntegerv(gl.MAX_UNIFORM_BLOCK_SIZE, &p.maxUniformBufferSize)
	if p.uniformOffsetAlignment <= 0 {
		p.uniformOffsetAlignment = 256
	}

	return p, nil
}

func (p *Pipeline) Destroy() {
	if p.dummyVAO != 0 {
		gl.DeleteVertexArrays(1, &p.dummyVAO)
		p.dummyVAO = 0
	}
}

// UniformBufferOffsetAlignment returns GL_UNIFORM_BUFFER_OFFSET_ALIGNMENT.
func (p *Pipeline) UniformBufferOffsetAlignment() int {
	return int(p.uniformOffsetAlignment)
}

// MaxUniformBufferSize returns GL_MAX_UNIFORM_BLOCK_SIZE.
func (p *Pipeline) MaxUniformBufferSize() int {
	return int(p.maxUniformBufferSize)
}

/* --- Object binding --- */

func (p *Pipeline) UseProgram(program *Program) {
	id := uint32(0)
	if program != nil {
		id = program.id
	}
	if p.currentProgram != id {
		gl.UseProgram(id)
		p.currentProgram = id
	}
}

func (p *Pipeline) BindVertexArray(va *VertexArray) {
	id := p.dummyVAO
	if va != nil && va.id != 0 {
		id = va.id
	}
	p.bindVertexArrayID(id)
}

func (p *Pipeline) bindVertexArrayID(id uint32) {
	if p.currentVertexArray != id {
		gl.BindVertexArray(id)
		p.currentVertexArray = id
	}
}

func (p *Pipeline) BindTexture(unit int, texture *Texture) {
	if unit < 0 || unit >= textureUnitCount {
		core.LogError("GPU: invalid texture unit %d", unit)
		return
	}
	id := uint32(0)
	if texture != nil {
		id = texture.id
	}
	if p.currentTextures[unit] == id {
		return
	}
	if p.activeTextureUnit != uint32(unit) {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		p.activeTextureUnit = uint32(unit)
	}
	target := uint32(gl.TEXTURE_2D)
	if texture != nil {
		target = texture.target
	}
	gl.BindTexture(target, id)
	p.currentTextures[unit] = id
}

func (p *Pipeline) BindFramebuffer(fb *Framebuffer) {
	id := uint32(0)
	if fb != nil {
		id = fb.id
	}
	if p.currentFramebuffer != id {
		gl.BindFramebuffer(gl.FRAMEBUFFER, id)
		p.currentFramebuffer = id
	}
}

// BindUniform binds the whole buffer to a uniform binding point.
func (p *Pipeline) BindUniform(binding int, buffer *Buffer) {
	if buffer == nil || !buffer.IsValid() {
		core.LogError("GPU: cannot bind invalid buffer to uniform binding %d", binding)
		return
	}
	gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(binding), buffer.id)
	p.boundBuffers[gl.UNIFORM_BUFFER] = buffer.id
}

// BindUniformRange binds a sub-range of the buffer to a uniform
// binding point. The offset must honor the platform alignment.
func (p *Pipeline) BindUniformRange(binding int, buffer *Buffer, offset, size int) {
	if buffer == nil || !buffer.IsValid() {
		core.LogError("GPU: cannot bind invalid buffer to uniform binding %d", binding)
		return
	}
	gl.BindBufferRange(gl.UNIFORM_BUFFER, uint32(binding), buffer.id, offset, size)
	p.boundBuffers[gl.UNIFORM_BUFFER] = buffer.id
}

// BindStorage binds the whole buffer to a shader-storage binding point.
func (p *Pipeline) BindStorage(binding int, buffer *Buffer) {
	if buffer == nil || !buffer.IsValid() {
		core.LogError("GPU: cannot bind invalid buffer to storage binding %d", binding)
		return
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(binding), buffer.id)
	p.boundBuffers[gl.SHADER_STORAGE_BUFFER] = buffer.id
}

// BindStorageRange binds a sub-range of the buffer to a
// shader-storage binding point.
func (p *Pipeline) BindStorageRange(binding int, buffer *Buffer, offset, size int) {
	if buffer == nil || !buffer.IsValid() {
		core.LogError("GPU: cannot bind invalid buffer to storage binding %d", binding)
		return
	}
	gl.BindBufferRange(gl.SHADER_STORAGE_BUFFER, uint32(binding), buffer.id, offset, size)
	p.boundBuffers[gl.SHADER_STORAGE_BUFFER] = buffer.id
}

// WithBufferBind binds a raw buffer object on a target, runs fn and
// restores the previous binding on every exit path.
func (p *Pipeline) WithBufferBind(target, id uint32, fn func()) {
	previous := p.boundBuffers[target]
	if previous != id {
		gl.BindBuffer(target, id)
		p.boundBuffers[target] = id
	}
	defer func() {
		if previous != id {
			gl.BindBuffer(target, previous)
			p.boundBuffers[target] = previous
		}
	}()
	fn()
}

// WithVertexArrayBind binds a raw VAO, runs fn and restores the
// previously bound vertex array.
func (p *Pipeline) WithVertexArrayBind(id uint32, fn func()) {
	previous := p.currentVertexArray
	p.bindVertexArrayID(id)
	defer p.bindVertexArrayID(previous)
	fn()
}

/* --- Fixed-function state --- */

func (p *Pipeline) SetViewport(x, y, w, h int32) {
	vp := [4]int32{x, y, w, h}
	if p.viewport != vp {
		gl.Viewport(x, y, w, h)
		p.viewport = vp
	}
}

// SetViewportToFramebuffer sizes the viewport to the framebuffer.
func (p *Pipeline) SetViewportToFramebuffer(fb *Framebuffer) {
	p.SetViewport(0, 0, int32(fb.width), int32(fb.height))
}

func (p *Pipeline) SetScissor(x, y, w, h int32) {
	if !p.scissorOn {
		gl.Enable(gl.SCISSOR_TEST)
		p.scissorOn = true
	}
	sc := [4]int32{x, y, w, h}
	if p.scissor != sc {
		gl.Scissor(x, y, w, h)
		p.scissor = sc
	}
}

func (p *Pipeline) DisableScissor() {
	if p.scissorOn {
		gl.Disable(gl.SCISSOR_TEST)
		p.scissorOn = false
	}
}

func (p *Pipeline) SetBlend(mode BlendMode) {
	if p.blendInit && p.blendMode == mode {
		return
	}
	p.blendMode = mode
	p.blendInit = true

	switch mode {
	case BlendOpaque:
		gl.Disable(gl.BLEND)
	case BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	case BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	case BlendMultiply:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.DST_COLOR, gl.ZERO)
	default:
		core.LogError("GPU: invalid blend mode %d", mode)
	}
}

func (p *Pipeline) SetDepthTest(test DepthTest) {
	if p.depthInit && p.depthTest == test {
		return
	}
	p.depthTest = test
	p.depthInit = true

	switch test {
	case DepthTestDisabled:
		gl.Disable(gl.DEPTH_TEST)
	case DepthTestLess:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	case DepthTestLessEqual:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	case DepthTestGreater:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.GREATER)
	case DepthTestAlways:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.ALWAYS)
	default:
		core.LogError("GPU: invalid depth test %d", test)
	}
}

func (p *Pipeline) SetDepthMask(write bool) {
	if p.depthMask == write {
		return
	}
	p.depthMask = write
	gl.DepthMask(write)
}

func (p *Pipeline) SetCullMode(mode CullMode) {
	if p.cullInit && p.cullMode == mode {
		return
	}
	p.cullMode = mode
	p.cullInit = true

	switch mode {
	case CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case CullNone:
		gl.Disable(gl.CULL_FACE)
	default:
		core.LogError("GPU: invalid cull mode %d", mode)
	}
}

func (p *Pipeline) SetColorMask(r, g, b, a bool) {
	mask := [4]bool{r, g, b, a}
	if p.colorMask == mask {
		return
	}
	p.colorMask = mask
	gl.ColorMask(r, g, b, a)
}

/* --- Clear --- */

func (p *Pipeline) ClearColor(c math.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (p *Pipeline) ClearColorDepth(c math.Color) {
	p.SetDepthMask(true)
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (p *Pipeline) ClearDepth() {
	p.SetDepthMask(true)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

/* --- Direct uniforms --- */

func (p *Pipeline) SetUniformInt1(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (p *Pipeline) SetUniformInt2(location int32, x, y int32) {
	gl.Uniform2i(location, x, y)
}

func (p *Pipeline) SetUniformInt4(location int32, x, y, z, w int32) {
	gl.Uniform4i(location, x, y, z, w)
}

func (p *Pipeline) SetUniformFloat1(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (p *Pipeline) SetUniformFloat2(location int32, v math.Vec2) {
	gl.Uniform2f(location, v.X, v.Y)
}

func (p *Pipeline) SetUniformFloat3(location int32, v math.Vec3) {
	gl.Uniform3f(location, v.X, v.Y, v.Z)
}

func (p *Pipeline) SetUniformFloat4(location int32, v math.Vec4) {
	gl.Uniform4f(location, v.X, v.Y, v.Z, v.W)
}

func (p *Pipeline) SetUniformMat4(location int32, m math.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m.Data[0])
}

/* --- Draw commands --- */

func (p *Pipeline) ensureVertexArray() {
	if p.currentVertexArray == 0 {
		p.bindVertexArrayID(p.dummyVAO)
	}
}

func (p *Pipeline) Draw(primitive uint32, vertexCount int32) {
	if vertexCount <= 0 {
		return
	}
	p.ensureVertexArray()
	gl.DrawArrays(primitive, 0, vertexCount)
}

func (p *Pipeline) DrawInstanced(primitive uint32, vertexCount, instanceCount int32) {
	if vertexCount <= 0 || instanceCount <= 0 {
		return
	}
	p.ensureVertexArray()
	gl.DrawArraysInstanced(primitive, 0, vertexCount, instanceCount)
}

func (p *Pipeline) DrawElements(primitive, indexType uint32, indexCount int32) {
	if indexCount <= 0 {
		return
	}
	p.ensureVertexArray()
	gl.DrawElements(primitive, indexCount, indexType, nil)
}

func (p *Pipeline) DrawElementsInstanced(primitive, indexType uint32, indexCount, instanceCount int32) {
	if indexCount <= 0 || instanceCount <= 0 {
		return
	}
	p.ensureVertexArray()
	gl.DrawElementsInstanced(primitive, indexCount, indexType, nil, instanceCount)
}

// CheckErrors drains the GL error queue, logging each error with the
// originating operation name. Returns true if any error was seen.
func (p *Pipeline) CheckErrors(operation string) bool {
	seen := false
	for {
		errCode := gl.GetError()
		if errCode == gl.NO_ERROR {
			return seen
		}
		seen = true
		core.LogError("GPU: %s failed with GL error 0x%x", operation, errCode)
	}
}
