package resources

import (
	"unsafe"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
)

/** Light data sent to the GPU (std430, 16-byte aligned). Field order
 * is normative: shaders declare the same layout. */
type GPULight struct {
	Position math.Vec3
	_        float32
	Direction math.Vec3
	_         float32
	Color       math.Vec3
	Energy      float32
	Specular    float32
	Range       float32
	Attenuation float32
	InnerCutOff float32
	OuterCutOff float32
	/** Bitmask for camera culling. */
	LayerMask uint32
	/** Bitmask for mesh lighting, read in the fragment shader. */
	CullMask uint32
	/** -1 means no shadow. */
	ShadowIndex int32
	Type        int32
	_           [3]float32
}

/** Shadow data sent to the GPU (std430, 16-byte aligned). */
type GPUShadow struct {
	/** Unused for omni lights; they reconstruct depth per face. */
	ViewProj     math.Mat4
	BleedingBias float32
	Softness     float32
	Lambda       float32
	MapIndex     uint32
}

// std430 compatibility: both records must be multiples of 16 bytes.
const _ = -(unsafe.Sizeof(GPULight{}) % 16)
const _ = -(unsafe.Sizeof(GPUShadow{}) % 16)

type directionalData struct {
	position  math.Vec3 // derived, used for shadow projection
	direction math.Vec3
	color     math.Vec3
	energy    float32
	specular  float32
	rangeVal  float32 // derived, used for shadow projection
}

type spotData struct {
	position    math.Vec3
	direction   math.Vec3
	color       math.Vec3
	energy      float32
	specular    float32
	rangeVal    float32
	attenuation float32
	innerCutOff float32 // cosine
	outerCutOff float32 // cosine
}

type omniData struct {
	position    math.Vec3
	color       math.Vec3
	energy      float32
	specular    float32
	rangeVal    float32
	attenuation float32
}

type shadowData struct {
	// viewProj and frustum are stored per face for omni lights; the
	// other types only use index 0.
	frustum      [6]math.Frustum
	viewProj     [6]math.Mat4
	bleedingBias float32
	softness     float32
	lambda       float32
}

type shadowState struct {
	updateMode  ShadowUpdateMode
	intervalSec float32
	timerSec    float32
	needsUpdate bool
	vpDirty     bool
}

/**
 * @brief A light source: a tagged union over the three topologies plus
 * common shadow state. Long-lived; storage indices are reassigned by
 * the light system every frame.
 */
type Light struct {
	lightType LightType

	directional directionalData
	spot        spotData
	omni        omniData

	shadow      shadowData
	shadowState shadowState

	lightStorageIndex  uint32
	shadowStorageIndex int32
	shadowMapIndex     uint32

	/** Layers in the scene where the light is active. */
	layerMask Layer
	/** Layers of meshes affected by this light. */
	cullMask Layer
	/** Layers of meshes that produce shadows from this light. */
	shadowCullMask Layer

	hasShadow bool
	active    bool
}

func NewLight(lightType LightType, shadowResolution int) *Light {
	l := &Light{
		lightType:          lightType,
		shadowStorageIndex: -1,
		layerMask:          Layer01,
		cullMask:           LayerAll,
		shadowCullMask:     LayerAll,
	}

	switch lightType {
	case LightDirectional:
		l.shadow.lambda = 60
		l.directional = directionalData{
			direction: math.NewVec3Forward(),
			color:     math.NewVec3One(),
			energy:    1.0,
			specular:  0.5,
		}
	case LightSpot:
		l.shadow.lambda = 40
		l.spot = spotData{
			direction:   math.NewVec3Forward(),
			color:       math.NewVec3One(),
			energy:      1.0,
			specular:    0.5,
			rangeVal:    16.0,
			attenuation: 1.0,
			innerCutOff: 0.7071, // ~45 degrees
			outerCutOff: 1e-6,   // ~90 degrees
		}
	case LightOmni:
		l.shadow.lambda = 40
		l.omni = omniData{
			color:       math.NewVec3One(),
			energy:      1.0,
			specular:    0.5,
			rangeVal:    16.0,
			attenuation: 1.0,
		}
	default:
		core.LogWarn("RENDER: invalid light type (%d); the light will be invalid", lightType)
	}

	if shadowResolution > 0 {
		l.shadow.softness = 1.0 / float32(shadowResolution)
	}
	l.shadow.bleedingBias = 0.2
	l.shadowState.needsUpdate = true
	l.shadowState.vpDirty = true
	l.shadowState.intervalSec = 0.016

	return l
}

/* --- Shadow state management --- */

// UpdateState stores this frame's storage indices, refreshes the
// cached view-projection matrices when dirty, and advances the
// interval timer. Called once per frame per active light.
func (l *Light) UpdateState(sceneBounds math.BoundingBox, lightIndex uint32, shadowIndex int32, shadowMapIndex uint32, frameTime float32) {
	l.lightStorageIndex = lightIndex

	if !l.hasShadow {
		return
	}

	l.shadowStorageIndex = shadowIndex
	l.shadowMapIndex = shadowMapIndex

	if l.shadowState.vpDirty {
		switch l.lightType {
		case LightDirectional:
			l.updateDirectionalViewProj(sceneBounds)
		case LightSpot:
			l.updateSpotViewProj()
		case LightOmni:
			l.updateOmniViewProj()
		}
		l.shadowState.vpDirty = false
	}

	if l.shadowState.updateMode == ShadowUpdateInterval {
		if !l.shadowState.needsUpdate {
			l.shadowState.timerSec += frameTime
			if l.shadowState.timerSec >= l.shadowState.intervalSec {
				l.shadowState.timerSec -= l.shadowState.intervalSec
				l.shadowState.needsUpdate = true
			}
		}
	}
}

// ForceShadowMapUpdate requests one shadow re-render regardless of the
// update policy.
func (l *Light) ForceShadowMapUpdate() {
	l.shadowState.needsUpdate = true

	if l.shadowState.updateMode == ShadowUpdateInterval {
		l.shadowState.timerSec = 0.0
	}
}

// NeedsShadowMapUpdate consumes the pending update: continuous lights
// re-arm every call, interval and manual lights reset until the timer
// or a manual request re-arms them.
func (l *Light) NeedsShadowMapUpdate() bool {
	result := l.shadowState.needsUpdate

	switch l.shadowState.updateMode {
	case ShadowUpdateContinuous:
		l.shadowState.needsUpdate = true
	case ShadowUpdateInterval, ShadowUpdateManual:
		l.shadowState.needsUpdate = false
	}

	return result
}

/* --- Public getters --- */

func (l *Light) Type() LightType       { return l.lightType }
func (l *Light) IsActive() bool        { return l.active }
func (l *Light) LayerMask() Layer      { return l.layerMask }
func (l *Light) CullMask() Layer       { return l.cullMask }
func (l *Light) ShadowCullMask() Layer { return l.shadowCullMask }
func (l *Light) IsShadowActive() bool  { return l.hasShadow }

func (l *Light) Position() math.Vec3 {
	switch l.lightType {
	case LightDirectional:
		return l.directional.position // only used for shadow projection
	case LightSpot:
		return l.spot.position
	case LightOmni:
		return l.omni.position
	}
	return math.NewVec3Zero()
}

func (l *Light) Direction() math.Vec3 {
	switch l.lightType {
	case LightDirectional:
		return l.directional.direction
	case LightSpot:
		return l.spot.direction
	case LightOmni:
		core.LogWarn("RENDER: cannot retrieve direction of an omni-directional light (operation ignored)")
	}
	return math.NewVec3Zero()
}

func (l *Light) Color() math.Color {
	var v math.Vec3
	switch l.lightType {
	case LightDirectional:
		v = l.directional.color
	case LightSpot:
		v = l.spot.color
	case LightOmni:
		v = l.omni.color
	}
	return math.NewColor(v.X, v.Y, v.Z, 1)
}

func (l *Light) Energy() float32 {
	switch l.lightType {
	case LightDirectional:
		return l.directional.energy
	case LightSpot:
		return l.spot.energy
	case LightOmni:
		return l.omni.energy
	}
	return 0
}

func (l *Light) Specular() float32 {
	switch l.lightType {
	case LightDirectional:
		return l.directional.specular
	case LightSpot:
		return l.spot.specular
	case LightOmni:
		return l.omni.specular
	}
	return 0
}

func (l *Light) Range() float32 {
	switch l.lightType {
	case LightDirectional:
		return l.directional.rangeVal
	case LightSpot:
		return l.spot.rangeVal
	case LightOmni:
		return l.omni.rangeVal
	}
	return 0
}

func (l *Light) Attenuation() float32 {
	switch l.lightType {
	case LightSpot:
		return l.spot.attenuation
	case LightOmni:
		return l.omni.attenuation
	}
	return 0
}

func (l *Light) InnerCutOff() float32 {
	if l.lightType == LightSpot {
		return l.spot.innerCutOff
	}
	return 0
}

func (l *Light) OuterCutOff() float32 {
	if l.lightType == LightSpot {
		return l.spot.outerCutOff
	}
	return 0
}

func (l *Light) ShadowBleedingBias() float32          { return l.shadow.bleedingBias }
func (l *Light) ShadowSoftness() float32              { return l.shadow.softness }
func (l *Light) ShadowLambda() float32                { return l.shadow.lambda }
func (l *Light) UpdatePolicy() ShadowUpdateMode         { return l.shadowState.updateMode }
func (l *Light) ShadowUpdateInterval() float32        { return l.shadowState.intervalSec }

/* --- Public setters --- */

func (l *Light) SetActive(active bool) {
	l.active = active
}

func (l *Light) SetLayerMask(layers Layer) {
	l.layerMask = layers
}

func (l *Light) SetCullMask(layers Layer) {
	l.cullMask = layers
}

func (l *Light) SetShadowCullMask(layers Layer) {
	l.shadowCullMask = layers
}

func (l *Light) SetPosition(position math.Vec3) {
	switch l.lightType {
	case LightDirectional:
		core.LogWarn("RENDER: the position of a directional light is derived from the scene bounds (operation ignored)")
		return
	case LightSpot:
		if l.spot.position != position {
			l.spot.position = position
			l.markShadowDirty()
		}
	case LightOmni:
		if l.omni.position != position {
			l.omni.position = position
			l.markShadowDirty()
		}
	}
}

func (l *Light) SetDirection(direction math.Vec3) {
	switch l.lightType {
	case LightDirectional:
		if l.directional.direction != direction {
			l.directional.direction = direction
			l.markShadowDirty()
		}
	case LightSpot:
		if l.spot.direction != direction {
			l.spot.direction = direction
			l.markShadowDirty()
		}
	case LightOmni:
		core.LogWarn("RENDER: cannot set direction on an omni-directional light (operation ignored)")
	}
}

func (l *Light) SetColor(color math.Color) {
	v := color.ToVec3()
	switch l.lightType {
	case LightDirectional:
		l.directional.color = v
	case LightSpot:
		l.spot.color = v
	case LightOmni:
		l.omni.color = v
	}
}

func (l *Light) SetEnergy(energy float32) {
	switch l.lightType {
	case LightDirectional:
		l.directional.energy = energy
	case LightSpot:
		l.spot.energy = energy
	case LightOmni:
		l.omni.energy = energy
	}
}

func (l *Light) SetSpecular(specular float32) {
	switch l.lightType {
	case LightDirectional:
		l.directional.specular = specular
	case LightSpot:
		l.spot.specular = specular
	case LightOmni:
		l.omni.specular = specular
	}
}

func (l *Light) SetRange(rangeVal float32) {
	switch l.lightType {
	case LightDirectional:
		core.LogWarn("RENDER: the range of a directional light is derived from the scene bounds (operation ignored)")
	case LightSpot:
		if l.spot.rangeVal != rangeVal {
			l.spot.rangeVal = rangeVal
			l.markShadowDirty()
		}
	case LightOmni:
		if l.omni.rangeVal != rangeVal {
			l.omni.rangeVal = rangeVal
			l.markShadowDirty()
		}
	}
}

func (l *Light) SetAttenuation(attenuation float32) {
	switch l.lightType {
	case LightSpot:
		l.spot.attenuation = attenuation
	case LightOmni:
		l.omni.attenuation = attenuation
	default:
		core.LogWarn("RENDER: attenuation only applies to spot and omni lights (operation ignored)")
	}
}

// SetInnerCutOff takes the half-angle in radians and stores its cosine.
func (l *Light) SetInnerCutOff(radians float32) {
	if l.lightType != LightSpot {
		core.LogWarn("RENDER: inner cutoff only applies to spot lights (operation ignored)")
		return
	}
	l.spot.innerCutOff = math32.Cos(radians)
}

// SetOuterCutOff takes the half-angle in radians and stores its cosine.
func (l *Light) SetOuterCutOff(radians float32) {
	if l.lightType != LightSpot {
		core.LogWarn("RENDER: outer cutoff only applies to spot lights (operation ignored)")
		return
	}
	l.spot.outerCutOff = math32.Cos(radians)
}

func (l *Light) SetShadowActive(active bool) {
	if l.hasShadow != active {
		l.hasShadow = active
		if active {
			l.shadowState.vpDirty = true
			l.shadowState.needsUpdate = true
		}
	}
}

func (l *Light) SetShadowBleedingBias(bias float32) {
	l.shadow.bleedingBias = bias
}

func (l *Light) SetShadowSoftness(softness float32) {
	l.shadow.softness = softness
}

func (l *Light) SetShadowLambda(lambda float32) {
	l.shadow.lambda = lambda
}

// SetShadowUpdateMode switches the refresh policy. Re-applying the
// current mode leaves the timer state untouched.
func (l *Light) SetShadowUpdateMode(mode ShadowUpdateMode) {
	if l.shadowState.updateMode == mode {
		return
	}

	l.shadowState.updateMode = mode

	switch mode {
	case ShadowUpdateContinuous:
		l.shadowState.needsUpdate = true
	case ShadowUpdateInterval:
		l.shadowState.needsUpdate = true
		l.shadowState.timerSec = 0.0
	case ShadowUpdateManual:
		l.shadowState.needsUpdate = false
	}
}

func (l *Light) SetShadowUpdateIntervalSec(interval float32) {
	l.shadowState.intervalSec = interval
}

/* --- Getters for the light system --- */

// IsInsideShadowFrustum tests an OBB against the shadow frustum of one
// face. Non-omni lights only have face 0.
func (l *Light) IsInsideShadowFrustum(obb math.OrientedBoundingBox, face int) bool {
	return l.shadow.frustum[face].ContainsObb(obb)
}

func (l *Light) FillShadowGPU(shadow *GPUShadow) {
	if l.lightType != LightOmni {
		shadow.ViewProj = l.shadow.viewProj[0]
	}
	shadow.BleedingBias = l.shadow.bleedingBias
	shadow.Softness = l.shadow.softness
	shadow.Lambda = l.shadow.lambda
	shadow.MapIndex = l.shadowMapIndex
}

func (l *Light) FillLightGPU(light *GPULight) {
	switch l.lightType {
	case LightDirectional:
		light.Position = l.directional.position
		light.Direction = l.directional.direction
		light.Color = l.directional.color
		light.Energy = l.directional.energy
		light.Specular = l.directional.specular
		light.Range = l.directional.rangeVal
		light.Type = int32(LightDirectional)
	case LightSpot:
		light.Position = l.spot.position
		light.Direction = l.spot.direction
		light.Color = l.spot.color
		light.Energy = l.spot.energy
		light.Specular = l.spot.specular
		light.Range = l.spot.rangeVal
		light.Attenuation = l.spot.attenuation
		light.InnerCutOff = l.spot.innerCutOff
		light.OuterCutOff = l.spot.outerCutOff
		light.Type = int32(LightSpot)
	case LightOmni:
		light.Position = l.omni.position
		light.Color = l.omni.color
		light.Energy = l.omni.energy
		light.Specular = l.omni.specular
		light.Range = l.omni.rangeVal
		light.Attenuation = l.omni.attenuation
		light.Type = int32(LightOmni)
	}

	light.ShadowIndex = l.shadowStorageIndex
	light.CullMask = uint32(l.cullMask)
	light.LayerMask = uint32(l.layerMask)
}

// ViewProj returns the cached view-projection of one face. Non-omni
// lights only have face 0.
func (l *Light) ViewProj(face int) math.Mat4 {
	return l.shadow.viewProj[face]
}

func (l *Light) ShadowIndex() int32    { return l.shadowStorageIndex }
func (l *Light) LightIndex() uint32    { return l.lightStorageIndex }
func (l *Light) ShadowMapIndex() uint32 { return l.shadowMapIndex }

/* --- Private --- */

func (l *Light) markShadowDirty() {
	l.shadowState.vpDirty = true
}

func (l *Light) updateDirectionalViewProj(sceneBounds math.BoundingBox) {
	light := &l.directional

	// Scene center and extents with a 10% margin.
	const sceneMargin = 1.1
	sceneCenter := sceneBounds.Center()
	sceneExtents := sceneBounds.HalfExtents().MulScalar(sceneMargin)

	lightDir := light.direction.Normalized()

	// Place the light at a distance from the center of the scene.
	maxSceneExtent := sceneExtents.MaxComponent()
	lightDistance := 2.0 * maxSceneExtent
	pos := sceneCenter.Add(lightDir.Neg().MulScalar(lightDistance))

	// If the direction is nearly vertical, use Z as the "up" vector.
	upVector := math.NewVec3Up()
	if math32.Abs(lightDir.Y) > 0.99 {
		upVector = math.NewVec3Forward()
	}
	view := math.NewMat4LookAt(pos, sceneCenter, upVector)

	// Bounding volume of the scene in light space.
	minX, maxX := math.K_INFINITY, -math.K_INFINITY
	minY, maxY := math.K_INFINITY, -math.K_INFINITY
	minZ, maxZ := math.K_INFINITY, -math.K_INFINITY

	for _, corner := range sceneBounds.Corners() {
		transformed := corner.Transform(view)
		minX = math32.Min(minX, transformed.X)
		maxX = math32.Max(maxX, transformed.X)
		minY = math32.Min(minY, transformed.Y)
		maxY = math32.Max(maxY, transformed.Y)
		minZ = math32.Min(minZ, transformed.Z)
		maxZ = math32.Max(maxZ, transformed.Z)
	}

	// In view space, objects in front of the camera have negative Z:
	// maxZ is the closest plane and minZ the farthest. near = -maxZ and
	// far = -minZ keeps near < far with positive distances.
	proj := math.NewMat4Orthographic(minX, maxX, minY, maxY, -maxZ, -minZ)

	l.shadow.viewProj[0] = view.Mul(proj)
	light.position = pos
	light.rangeVal = -minZ

	l.shadow.frustum[0] = math.NewFrustumFromMatrix(l.shadow.viewProj[0])
}

func (l *Light) updateSpotViewProj() {
	light := &l.spot

	view := math.NewMat4LookAt(light.position, light.position.Add(light.direction), math.NewVec3Up())
	proj := math.NewMat4Perspective(math.K_PI/2.0, 1.0, 0.05, light.rangeVal)

	l.shadow.viewProj[0] = view.Mul(proj)
	l.shadow.frustum[0] = math.NewFrustumFromMatrix(l.shadow.viewProj[0])
}

func (l *Light) updateOmniViewProj() {
	light := &l.omni

	for i := 0; i < 6; i++ {
		l.shadow.viewProj[i] = CubeView(i, light.position).Mul(CubeProj(0.05, light.rangeVal))
		l.shadow.frustum[i] = math.NewFrustumFromMatrix(l.shadow.viewProj[i])
	}
}
