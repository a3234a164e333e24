package systems

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/resources"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
)

// Built-in texture units. Units 28..31 belong to the material-shader
// user slots (Texture3..Texture0); the built-ins live below them.
const (
	texUnitAlbedo      = 16
	texUnitEmission    = 17
	texUnitORM         = 18
	texUnitNormal      = 19
	texUnitSky         = 20
	texUnitIrradiance  = 21
	texUnitPrefiltered = 22
	texUnitBrdfLut     = 23
	texUnitShadowAtlas = 24
)

func primitiveToGL(primitive resources.PrimitiveType) uint32 {
	switch primitive {
	case resources.PrimitivePoints:
		return gl.POINTS
	case resources.PrimitiveLines:
		return gl.LINES
	case resources.PrimitiveLineStrip:
		return gl.LINE_STRIP
	case resources.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	case resources.PrimitiveTriangleFan:
		return gl.TRIANGLE_FAN
	default:
		return gl.TRIANGLES
	}
}

func blendToPipeline(blend resources.BlendMode) opengl.BlendMode {
	switch blend {
	case resources.BlendAlpha:
		return opengl.BlendAlpha
	case resources.BlendAdditive:
		return opengl.BlendAdditive
	case resources.BlendMultiply:
		return opengl.BlendMultiply
	default:
		return opengl.BlendOpaque
	}
}

func cullToPipeline(cull resources.CullMode) opengl.CullMode {
	switch cull {
	case resources.CullFront:
		return opengl.CullFront
	case resources.CullNone:
		return opengl.CullNone
	default:
		return opengl.CullBack
	}
}

func depthToPipeline(test resources.DepthTest) opengl.DepthTest {
	switch test {
	case resources.DepthTestGreater:
		return opengl.DepthTestGreater
	case resources.DepthTestAlways:
		return opengl.DepthTestAlways
	default:
		return opengl.DepthTestLess
	}
}

// shadowFaceCull resolves which faces rasterize into a shadow map:
// auto obeys the material, the explicit modes override it.
func shadowFaceCull(faceMode resources.ShadowFaceMode, materialCull resources.CullMode) opengl.CullMode {
	switch faceMode {
	case resources.ShadowFaceFront:
		return opengl.CullBack
	case resources.ShadowFaceBack:
		return opengl.CullFront
	case resources.ShadowFaceBoth:
		return opengl.CullNone
	default:
		return cullToPipeline(materialCull)
	}
}
