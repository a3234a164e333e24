package opengl

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
)

// Framebuffer owns one FBO with optional color attachments and an
// optional depth attachment. Cubemap and array targets can be
// retargeted per face or per layer between draws.
type Framebuffer struct {
	pl     *Pipeline
	id     uint32
	colors []*Texture
	depth  *Texture
	width  int
	height int
}

func NewFramebuffer(pl *Pipeline, colors []*Texture, depth *Texture) *Framebuffer {
	fb := &Framebuffer{pl: pl, colors: colors, depth: depth}

	gl.GenFramebuffers(1, &fb.id)
	if fb.id == 0 {
		core.LogError("GPU: failed to create framebuffer object")
		return fb
	}

	previous := pl.currentFramebuffer
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.id)

	drawBuffers := make([]uint32, 0, len(colors))
	for i, tex := range colors {
		if !tex.IsValid() {
			core.LogError("GPU: invalid color attachment %d", i)
			continue
		}
		attachment := uint32(gl.COLOR_ATTACHMENT0 + i)
		attachTexture(attachment, tex, 0, 0)
		drawBuffers = append(drawBuffers, attachment)
		if fb.width == 0 {
			fb.width = tex.Width()
			fb.height = tex.Height()
		}
	}

	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	} else {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}

	if depth != nil {
		if depth.IsValid() {
			attachTexture(gl.DEPTH_ATTACHMENT, depth, 0, 0)
			if fb.width == 0 {
				fb.width = depth.Width()
				fb.height = depth.Height()
			}
		} else {
			core.LogError("GPU: invalid depth attachment")
		}
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		core.LogError("GPU: framebuffer incomplete (status: 0x%x)", status)
		gl.DeleteFramebuffers(1, &fb.id)
		fb.id = 0
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, previous)
	return fb
}

func attachTexture(attachment uint32, tex *Texture, level int32, face CubeFace) {
	switch tex.Target() {
	case gl.TEXTURE_2D:
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex.ID(), level)
	case gl.TEXTURE_CUBE_MAP:
		target := uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X) + uint32(face)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, target, tex.ID(), level)
	case gl.TEXTURE_2D_ARRAY:
		gl.FramebufferTextureLayer(gl.FRAMEBUFFER, attachment, tex.ID(), level, int32(face))
	}
}

func (fb *Framebuffer) Destroy() {
	if fb.id != 0 {
		gl.DeleteFramebuffers(1, &fb.id)
		fb.id = 0
	}
}

func (fb *Framebuffer) IsValid() bool {
	return fb != nil && fb.id != 0
}

func (fb *Framebuffer) ID() uint32 {
	return fb.id
}

func (fb *Framebuffer) Width() int {
	return fb.width
}

func (fb *Framebuffer) Height() int {
	return fb.height
}

// SetColorAttachmentTarget rebinds a color attachment to a specific
// mip level and cube face (or array layer). The framebuffer must be
// currently bound through the pipeline.
func (fb *Framebuffer) SetColorAttachmentTarget(index int, level int32, face CubeFace) {
	if index < 0 || index >= len(fb.colors) {
		core.LogError("GPU: color attachment index %d out of range", index)
		return
	}
	attachTexture(uint32(gl.COLOR_ATTACHMENT0+index), fb.colors[index], level, face)
}

// SetDepthAttachmentLayer rebinds the depth attachment to one layer of
// an array texture.
func (fb *Framebuffer) SetDepthAttachmentLayer(layer int32) {
	if fb.depth == nil || !fb.depth.IsValid() {
		core.LogError("GPU: framebuffer has no depth attachment to retarget")
		return
	}
	gl.FramebufferTextureLayer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, fb.depth.ID(), 0, layer)
}

// BlitTo copies the color content of this framebuffer into another
// (nil = default framebuffer), stretching to the target size.
func (fb *Framebuffer) BlitTo(target *Framebuffer, targetWidth, targetHeight int) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.id)
	targetID := uint32(0)
	if target != nil {
		targetID = target.id
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, targetID)
	gl.BlitFramebuffer(
		0, 0, int32(fb.width), int32(fb.height),
		0, 0, int32(targetWidth), int32(targetHeight),
		gl.COLOR_BUFFER_BIT, gl.LINEAR,
	)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.pl.currentFramebuffer)
}
