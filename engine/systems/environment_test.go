package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hyperion/engine/resources"
)

func TestBloomPrefilterCurve(t *testing.T) {
	prefilter := BloomPrefilter(1.0, 0.5)

	assert.InDelta(t, 1.0, float64(prefilter.X), 1e-6)
	assert.InDelta(t, 0.5, float64(prefilter.Y), 1e-6)  // threshold - knee
	assert.InDelta(t, 1.0, float64(prefilter.Z), 1e-6)  // 2 * knee
	assert.InDelta(t, 0.25/0.5, float64(prefilter.W), 1e-4)

	// Zero knee must not divide by zero.
	hard := BloomPrefilter(1.0, 0.0)
	assert.False(t, hard.W != hard.W, "prefilter.w must not be NaN")
}

func TestRemapBloomLevelsEndpoints(t *testing.T) {
	levels := []float32{1, 2, 3, 4, 5, 6, 7, 8}

	out := RemapBloomLevels(levels, 4)
	require.Len(t, out, 4)
	assert.InDelta(t, 1.0, float64(out[0]), 1e-5)
	assert.InDelta(t, 8.0, float64(out[3]), 1e-5)

	// Interior values interpolate linearly between authored samples.
	assert.Greater(t, out[1], out[0])
	assert.Greater(t, out[2], out[1])
}

func TestRemapBloomLevelsIdentityAndDegenerate(t *testing.T) {
	levels := []float32{1, 2, 3, 4, 5, 6, 7, 8}

	same := RemapBloomLevels(levels, 8)
	require.Len(t, same, 8)
	for i := range levels {
		assert.InDelta(t, float64(levels[i]), float64(same[i]), 1e-5, "level %d", i)
	}

	one := RemapBloomLevels(levels, 1)
	require.Len(t, one, 1)
	assert.InDelta(t, 1.0, float64(one[0]), 1e-5)

	assert.Nil(t, RemapBloomLevels(levels, 0))
}

func TestBuildEnvGPUDataFog(t *testing.T) {
	env := resources.DefaultEnvironment()
	env.Fog.Mode = resources.FogLinear
	env.Fog.SkyAffect = 0.7

	data := BuildEnvGPUData(&env)
	assert.Equal(t, int32(resources.FogLinear), data.FogMode)
	assert.InDelta(t, 0.7, float64(data.FogSkyAffect), 1e-6)

	// Disabled fog zeroes the sky influence regardless of the setting.
	env.Fog.Mode = resources.FogDisabled
	data = BuildEnvGPUData(&env)
	assert.Zero(t, data.FogSkyAffect)
}

func TestBuildEnvGPUDataSkyWeights(t *testing.T) {
	env := resources.DefaultEnvironment()
	env.Sky.Intensity = 2.0
	env.Sky.Specular = 0.5
	env.Sky.Diffuse = 0.25

	data := BuildEnvGPUData(&env)
	assert.InDelta(t, 2.0, float64(data.SkyIntensity), 1e-6)
	assert.InDelta(t, 1.0, float64(data.SkySpecular), 1e-6)
	assert.InDelta(t, 0.5, float64(data.SkyDiffuse), 1e-6)
}

func TestShadowFaceCullResolution(t *testing.T) {
	// Auto obeys the material cull mode.
	assert.Equal(t, cullToPipeline(resources.CullFront), shadowFaceCull(resources.ShadowFaceAuto, resources.CullFront))
	// Front faces only: cull back.
	assert.Equal(t, cullToPipeline(resources.CullBack), shadowFaceCull(resources.ShadowFaceFront, resources.CullNone))
	// Back faces only: cull front.
	assert.Equal(t, cullToPipeline(resources.CullFront), shadowFaceCull(resources.ShadowFaceBack, resources.CullBack))
	// Both faces: no culling.
	assert.Equal(t, cullToPipeline(resources.CullNone), shadowFaceCull(resources.ShadowFaceBoth, resources.CullBack))
}
