package resources

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
)

const (
	// Irradiance maps stay tiny; diffuse lighting is low frequency.
	irradianceFaceSize = 32
	// The prefiltered chain starts at 128 and walks down per roughness
	// bucket.
	prefilterFaceSize = 128
	prefilterMipCount = 5
)

/**
 * @brief The pair of convolved cubemaps used for image-based lighting:
 * a prefiltered specular chain (one mip per roughness bucket) and a
 * small diffuse irradiance map.
 */
type ReflectionProbe struct {
	prefiltered *Cubemap
	irradiance  *Cubemap
}

// NewReflectionProbe convolves the source cubemap into the specular
// and diffuse IBL maps using the provided convolution programs.
func NewReflectionProbe(pl *opengl.Pipeline, source *Cubemap, programPrefilter, programIrradiance *opengl.Program) *ReflectionProbe {
	probe := &ReflectionProbe{}

	if !source.IsValid() {
		core.LogError("RENDER: cannot build reflection probe from invalid cubemap")
		return probe
	}

	probe.prefiltered = NewEmptyCubemap(pl, prefilterFaceSize, gl.RGBA16F, true)
	probe.irradiance = NewEmptyCubemap(pl, irradianceFaceSize, gl.RGBA16F, false)

	probe.generatePrefiltered(pl, source, programPrefilter)
	probe.generateIrradiance(pl, source, programIrradiance)

	return probe
}

func (rp *ReflectionProbe) Prefiltered() *Cubemap { return rp.prefiltered }
func (rp *ReflectionProbe) Irradiance() *Cubemap  { return rp.irradiance }

// PrefilteredMipCount returns the length of the roughness chain.
func (rp *ReflectionProbe) PrefilteredMipCount() int {
	return prefilterMipCount
}

func (rp *ReflectionProbe) IsValid() bool {
	return rp != nil && rp.prefiltered.IsValid() && rp.irradiance.IsValid()
}

func (rp *ReflectionProbe) Destroy() {
	if rp == nil {
		return
	}
	rp.prefiltered.Destroy()
	rp.irradiance.Destroy()
}

func (rp *ReflectionProbe) generatePrefiltered(pl *opengl.Pipeline, source *Cubemap, program *opengl.Program) {
	fb := opengl.NewFramebuffer(pl, []*opengl.Texture{rp.prefiltered.Texture()}, nil)
	defer fb.Destroy()

	pl.BindFramebuffer(fb)
	pl.SetDepthTest(opengl.DepthTestDisabled)
	pl.SetCullMode(opengl.CullNone)
	pl.SetBlend(opengl.BlendOpaque)

	pl.BindTexture(0, source.Texture())
	pl.UseProgram(program)

	size := int32(prefilterFaceSize)
	for mip := 0; mip < prefilterMipCount; mip++ {
		roughness := float32(mip) / float32(prefilterMipCount-1)
		pl.SetViewport(0, 0, size, size)
		pl.SetUniformFloat1(1, roughness)

		for face := 0; face < 6; face++ {
			fb.SetColorAttachmentTarget(0, int32(mip), opengl.CubeFace(face))
			pl.SetUniformMat4(0, CubeView(face, math.NewVec3Zero()).Mul(CubeProj(0.1, 10.0)))
			pl.Draw(gl.TRIANGLES, 36)
		}
		size /= 2
	}

	pl.BindFramebuffer(nil)
}

func (rp *ReflectionProbe) generateIrradiance(pl *opengl.Pipeline, source *Cubemap, program *opengl.Program) {
	fb := opengl.NewFramebuffer(pl, []*opengl.Texture{rp.irradiance.Texture()}, nil)
	defer fb.Destroy()

	pl.BindFramebuffer(fb)
	pl.SetViewportToFramebuffer(fb)
	pl.SetDepthTest(opengl.DepthTestDisabled)
	pl.SetCullMode(opengl.CullNone)
	pl.SetBlend(opengl.BlendOpaque)

	pl.BindTexture(0, source.Texture())
	pl.UseProgram(program)

	for face := 0; face < 6; face++ {
		fb.SetColorAttachmentTarget(0, 0, opengl.CubeFace(face))
		pl.SetUniformMat4(0, CubeView(face, math.NewVec3Zero()).Mul(CubeProj(0.1, 10.0)))
		pl.Draw(gl.TRIANGLES, 36)
	}

	pl.BindFramebuffer(nil)
}
