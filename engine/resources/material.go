package resources

import (
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
)

/**
 * @brief A material value type: texture references, PBR scalars and
 * render-state selections for one mesh. Nil texture references resolve
 * to the process-wide default white texture at draw time.
 */
type Material struct {
	Albedo struct {
		Texture *opengl.Texture
		Color   math.Color
	}

	Emission struct {
		Texture *opengl.Texture
		Color   math.Color
		Energy  float32
	}

	// ORM packs occlusion, roughness and metalness in one texture.
	ORM struct {
		Texture       *opengl.Texture
		AOLightAffect float32
		Occlusion     float32
		Roughness     float32
		Metalness     float32
	}

	Normal struct {
		Texture *opengl.Texture
		Scale   float32
	}

	Depth struct {
		Test DepthTest
		// PrePass draws the object in a depth-only pass before opaque
		// shading, enabling alpha cutoff and reducing overdraw.
		PrePass bool
		Offset  float32
		Scale   float32
	}

	/** @brief Fragments with alpha below this value are discarded (prepass only). */
	AlphaCutOff float32
	TexOffset   math.Vec2
	TexScale    math.Vec2

	Billboard BillboardMode
	Shading   ShadingMode
	Blend     BlendMode
	Cull      CullMode

	/** @brief Optional material shader; nil uses the built-in one. */
	Shader *MaterialShader
}

// DefaultMaterial returns the neutral material: white albedo, full
// roughness, no emission, opaque lit back-face-culled rendering.
func DefaultMaterial() Material {
	var m Material
	m.Albedo.Color = math.ColorWhite
	m.Emission.Color = math.ColorWhite
	m.Emission.Energy = 0.0
	m.ORM.Occlusion = 1.0
	m.ORM.Roughness = 1.0
	m.ORM.Metalness = 0.0
	m.Normal.Scale = 1.0
	m.Depth.Test = DepthTestLess
	m.Depth.Scale = 1.0
	m.AlphaCutOff = 1e-6
	m.TexScale = math.NewVec2One()
	m.Shading = ShadingLit
	m.Blend = BlendOpaque
	m.Cull = CullBack
	return m
}
