package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hyperion/engine/math"
)

func newShadowLight(lightType LightType) *Light {
	light := NewLight(lightType, 2048)
	light.SetActive(true)
	light.SetShadowActive(true)
	return light
}

// Directional shadow bounds: a scene AABB of [(-10,-10,-10),(10,10,10)]
// lit straight down must map the top of the scene near the near plane
// and the bottom near the far plane.
func TestDirectionalShadowBounds(t *testing.T) {
	light := newShadowLight(LightDirectional)
	light.SetDirection(math.NewVec3(0, -1, 0))

	bounds := math.NewBoundingBox(math.NewVec3(-10, -10, -10), math.NewVec3(10, 10, 10))
	light.UpdateState(bounds, 0, 0, 0, 0.016)

	vp := light.ViewProj(0)

	top := math.NewVec3(0, 10, 0).Transform(vp)
	bottom := math.NewVec3(0, -10, 0).Transform(vp)

	// Depth remapped from NDC [-1,1] to [0,1] as the shadow lookup does.
	topDepth := top.Z*0.5 + 0.5
	bottomDepth := bottom.Z*0.5 + 0.5

	assert.InDelta(t, 0.0, float64(topDepth), 0.05)
	assert.InDelta(t, 1.0, float64(bottomDepth), 0.05)

	// The light is placed behind the scene along its direction.
	assert.Greater(t, light.Position().Y, float32(10))
}

func TestDirectionalUpVectorFallback(t *testing.T) {
	light := newShadowLight(LightDirectional)
	light.SetDirection(math.NewVec3(0, -1, 0))

	bounds := math.NewBoundingBox(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	light.UpdateState(bounds, 0, 0, 0, 0.016)

	// A nearly-vertical direction must still produce a usable matrix.
	vp := light.ViewProj(0)
	var zero math.Mat4
	require.NotEqual(t, zero, vp)
}

func TestSpotViewProjFrustum(t *testing.T) {
	light := newShadowLight(LightSpot)
	light.SetPosition(math.NewVec3(0, 0, 10))
	light.SetDirection(math.NewVec3(0, 0, -1))
	light.SetRange(20)

	bounds := math.NewBoundingBox(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	light.UpdateState(bounds, 0, 0, 0, 0.016)

	aabb := math.NewBoundingBox(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))

	inFront := math.NewOrientedBoundingBox(aabb, math.TransformFromPosition(math.NewVec3(0, 0, 0)))
	assert.True(t, light.IsInsideShadowFrustum(inFront, 0))

	behind := math.NewOrientedBoundingBox(aabb, math.TransformFromPosition(math.NewVec3(0, 0, 40)))
	assert.False(t, light.IsInsideShadowFrustum(behind, 0))
}

func TestOmniFaceFrustums(t *testing.T) {
	light := newShadowLight(LightOmni)
	light.SetPosition(math.NewVec3Zero())
	light.SetRange(50)

	bounds := math.NewBoundingBox(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	light.UpdateState(bounds, 0, 0, 0, 0.016)

	aabb := math.NewBoundingBox(math.NewVec3(-0.5, -0.5, -0.5), math.NewVec3(0.5, 0.5, 0.5))

	// A box on +X must land in the +X face frustum and not in -X.
	onPlusX := math.NewOrientedBoundingBox(aabb, math.TransformFromPosition(math.NewVec3(10, 0, 0)))
	assert.True(t, light.IsInsideShadowFrustum(onPlusX, 0))
	assert.False(t, light.IsInsideShadowFrustum(onPlusX, 1))

	// Out of range on every face.
	farAway := math.NewOrientedBoundingBox(aabb, math.TransformFromPosition(math.NewVec3(100, 0, 0)))
	for face := 0; face < 6; face++ {
		assert.False(t, light.IsInsideShadowFrustum(farAway, face), "face %d", face)
	}
}

// Manual shadow update: no re-render until requested, exactly one
// afterwards.
func TestManualShadowUpdatePolicy(t *testing.T) {
	light := newShadowLight(LightSpot)
	light.SetShadowUpdateMode(ShadowUpdateManual)

	bounds := math.NewBoundingBox(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	for i := 0; i < 60; i++ {
		light.UpdateState(bounds, 0, 0, 0, 0.016)
		assert.False(t, light.NeedsShadowMapUpdate(), "frame %d", i)
	}

	light.ForceShadowMapUpdate()
	light.UpdateState(bounds, 0, 0, 0, 0.016)
	assert.True(t, light.NeedsShadowMapUpdate())

	light.UpdateState(bounds, 0, 0, 0, 0.016)
	assert.False(t, light.NeedsShadowMapUpdate())
}

func TestContinuousShadowUpdatePolicy(t *testing.T) {
	light := newShadowLight(LightOmni)
	light.SetShadowUpdateMode(ShadowUpdateContinuous)

	for i := 0; i < 5; i++ {
		assert.True(t, light.NeedsShadowMapUpdate())
	}
}

func TestIntervalShadowUpdatePolicy(t *testing.T) {
	light := newShadowLight(LightSpot)
	light.SetShadowUpdateMode(ShadowUpdateInterval)
	light.SetShadowUpdateIntervalSec(0.1)

	bounds := math.NewBoundingBox(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))

	// The pending flag from activation fires once.
	light.UpdateState(bounds, 0, 0, 0, 0.016)
	assert.True(t, light.NeedsShadowMapUpdate())

	// 0.016 * 5 < 0.1: no update yet.
	fired := 0
	for i := 0; i < 5; i++ {
		light.UpdateState(bounds, 0, 0, 0, 0.016)
		if light.NeedsShadowMapUpdate() {
			fired++
		}
	}
	assert.Zero(t, fired)

	// Crossing the interval fires exactly once.
	for i := 0; i < 3; i++ {
		light.UpdateState(bounds, 0, 0, 0, 0.016)
		if light.NeedsShadowMapUpdate() {
			fired++
		}
	}
	assert.Equal(t, 1, fired)
}

// Re-applying the current update mode must leave timer state alone.
func TestSetShadowUpdateModeIdempotent(t *testing.T) {
	light := newShadowLight(LightSpot)
	light.SetShadowUpdateMode(ShadowUpdateManual)
	assert.False(t, light.NeedsShadowMapUpdate())

	light.ForceShadowMapUpdate()
	light.SetShadowUpdateMode(ShadowUpdateManual)
	assert.True(t, light.NeedsShadowMapUpdate(), "re-applying the mode must not clear the pending update")
}

func TestLightGPUFill(t *testing.T) {
	light := newShadowLight(LightSpot)
	light.SetPosition(math.NewVec3(1, 2, 3))
	light.SetEnergy(2.5)
	light.SetCullMask(Layer02)
	light.SetLayerMask(Layer01 | Layer02)

	bounds := math.NewBoundingBox(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	light.UpdateState(bounds, 3, 1, 7, 0.016)

	var gpu GPULight
	light.FillLightGPU(&gpu)

	assert.Equal(t, math.NewVec3(1, 2, 3), gpu.Position)
	assert.Equal(t, float32(2.5), gpu.Energy)
	assert.Equal(t, int32(LightSpot), gpu.Type)
	assert.Equal(t, int32(1), gpu.ShadowIndex)
	assert.Equal(t, uint32(Layer02), gpu.CullMask)
	assert.Equal(t, uint32(Layer01|Layer02), gpu.LayerMask)

	var shadow GPUShadow
	light.FillShadowGPU(&shadow)
	assert.Equal(t, uint32(7), shadow.MapIndex)
	assert.Equal(t, light.ViewProj(0), shadow.ViewProj)
}

func TestOmniDirectionWarnsAndNoOps(t *testing.T) {
	light := NewLight(LightOmni, 2048)
	light.SetDirection(math.NewVec3(1, 0, 0))
	assert.Equal(t, math.NewVec3Zero(), light.Direction())
}

func TestSpotCutOffStoresCosine(t *testing.T) {
	light := NewLight(LightSpot, 2048)
	light.SetInnerCutOff(math.K_PI / 3) // 60 degrees
	assert.InDelta(t, 0.5, float64(light.InnerCutOff()), 1e-4)
}
