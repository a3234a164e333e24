package resources

/** @brief Bitfield selecting which of the 16 rendering layers an
 * object, camera or light participates in. */
type Layer uint16

const (
	LayerNone Layer = 0x0000
	LayerAll  Layer = 0xFFFF
	Layer01   Layer = 1 << 0
	Layer02   Layer = 1 << 1
	Layer03   Layer = 1 << 2
	Layer04   Layer = 1 << 3
	Layer05   Layer = 1 << 4
	Layer06   Layer = 1 << 5
	Layer07   Layer = 1 << 6
	Layer08   Layer = 1 << 7
	Layer09   Layer = 1 << 8
	Layer10   Layer = 1 << 9
	Layer11   Layer = 1 << 10
	Layer12   Layer = 1 << 11
	Layer13   Layer = 1 << 12
	Layer14   Layer = 1 << 13
	Layer15   Layer = 1 << 14
	Layer16   Layer = 1 << 15
)

/** @brief Primitive topology of a mesh. */
type PrimitiveType int

const (
	PrimitivePoints PrimitiveType = iota
	PrimitiveLines
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
)

/** @brief Blending mode used when writing fragments. */
type BlendMode int

const (
	/** @brief Standard opaque rendering. Ignores alpha channel. */
	BlendOpaque BlendMode = iota
	/** @brief Standard alpha blending. Supports transparency. */
	BlendAlpha
	/** @brief Additive blending. Colors are added to the framebuffer. */
	BlendAdditive
	/** @brief Multiplicative blending. Colors are multiplied with the framebuffer. */
	BlendMultiply
)

/** @brief Face culling mode. */
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

/** @brief Fragment depth comparison. */
type DepthTest int

const (
	DepthTestLess DepthTest = iota
	DepthTestGreater
	DepthTestAlways
)

/** @brief Shading model applied to a material. */
type ShadingMode int

const (
	ShadingLit ShadingMode = iota
	ShadingUnlit
	ShadingWireframe
)

/** @brief Billboard mode applied to an object. */
type BillboardMode int

const (
	BillboardDisabled BillboardMode = iota
	BillboardFront
	BillboardYAxis
)

/** @brief Shadow casting behavior of a mesh. */
type ShadowCastMode int

const (
	/** @brief Cast shadows and render normally (default). */
	ShadowCastEnabled ShadowCastMode = iota
	/** @brief Only cast shadows, not rendered in the main pass. */
	ShadowCastOnly
	/** @brief Do not cast shadows. */
	ShadowCastDisabled
)

/** @brief Which triangle faces rasterize into the shadow map. */
type ShadowFaceMode int

const (
	/** @brief Use the material cull mode to decide. */
	ShadowFaceAuto ShadowFaceMode = iota
	/** @brief Render only front faces into the shadow map. */
	ShadowFaceFront
	/** @brief Render only back faces into the shadow map. */
	ShadowFaceBack
	/** @brief Render both faces (disable culling). */
	ShadowFaceBoth
)

/** @brief Shadow map refresh policy of a light. */
type ShadowUpdateMode int

const (
	/** @brief Shadow maps update every frame. */
	ShadowUpdateContinuous ShadowUpdateMode = iota
	/** @brief Shadow maps update at defined time intervals. */
	ShadowUpdateInterval
	/** @brief Shadow maps update only when explicitly requested. */
	ShadowUpdateManual
)

/** @brief Topology of a light source. */
type LightType int

const (
	LightDirectional LightType = iota
	LightSpot
	LightOmni
)

/** @brief Skeletal animation source of a model. */
type AnimMode int

const (
	/** @brief Sample the assigned animation at the current frame. */
	AnimInternal AnimMode = iota
	/** @brief Use the user-supplied bone override matrices. */
	AnimCustom
)

/** @brief Fog falloff mode. */
type FogMode int

const (
	FogDisabled FogMode = iota
	FogLinear
	FogExp2
	FogExp
)

/** @brief Bloom composition mode. */
type BloomMode int

const (
	BloomDisabled BloomMode = iota
	BloomMix
	BloomAdditive
	BloomScreen
)

/** @brief Tonemapping operator. */
type TonemapMode int

const (
	TonemapLinear TonemapMode = iota
	TonemapReinhard
	TonemapFilmic
	TonemapACES
	TonemapAGX
)

/** @brief Extra flags about scene rendering behavior. */
type EnvironmentFlag uint32

const (
	/** @brief Sort opaque objects front-to-back. */
	EnvSortOpaque EnvironmentFlag = 1 << 0
	/** @brief Sort transparent objects back-to-front. */
	EnvSortTransparent EnvironmentFlag = 1 << 1
	/** @brief Enable view frustum culling (camera). */
	EnvViewFrustumCulling EnvironmentFlag = 1 << 2
	/** @brief Enable shadow frustum culling. */
	EnvShadowFrustumCulling EnvironmentFlag = 1 << 3
	/** @brief Sort the depth prepass bucket front-to-back. */
	EnvSortPrepass EnvironmentFlag = 1 << 4
)

/** @brief Selects one or more per-instance data arrays. */
type InstanceData uint32

const (
	InstanceDataMatrix InstanceData = 1 << 0
	InstanceDataColor  InstanceData = 1 << 1
	InstanceDataCustom InstanceData = 1 << 2
)
