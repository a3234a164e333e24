package systems

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

// envGPUData is the std140 environment uniform block. Field order is
// normative; the shaders declare the same layout.
type envGPUData struct {
	AmbientColor math.Vec3
	_            float32
	SkyRotation math.Vec4
	FogColor    math.Vec3
	_           float32
	BloomPrefilter math.Vec4
	SkyIntensity   float32
	SkySpecular    float32
	SkyDiffuse     float32
	FogDensity     float32
	FogStart       float32
	FogEnd         float32
	FogSkyAffect   float32
	FogMode        int32
	SsaoIntensity  float32
	SsaoRadius     float32
	SsaoPower      float32
	SsaoBias       float32
	SsaoEnabled    int32
	BloomFilterRadius float32
	BloomStrength     float32
	BloomMode         int32
	AdjustBrightness  float32
	AdjustContrast    float32
	AdjustSaturation  float32
	TonemapExposure   float32
	TonemapWhite      float32
	TonemapMode       int32
	_                 [2]float32
}

// EnvironmentSystem snapshots the per-frame environment, premultiplies
// the background with fog, remaps the bloom level weights to the mip
// chain, and keeps the GPU uniform block current.
type EnvironmentSystem struct {
	pipeline *opengl.Pipeline
	buffer   *opengl.Buffer

	skyCubemap *resources.Cubemap
	skyProbe   *resources.ReflectionProbe

	flags      resources.EnvironmentFlag
	background math.Color

	bloomLevels []float32
	tonemapMode resources.TonemapMode
	bloomMode   resources.BloomMode
	ssaoEnabled bool

	snapshot resources.Environment
}

func NewEnvironmentSystem(pipeline *opengl.Pipeline) (*EnvironmentSystem, error) {
	es := &EnvironmentSystem{
		pipeline: pipeline,
	}
	var zero envGPUData
	es.buffer = opengl.NewBuffer(pipeline, gl.UNIFORM_BUFFER, int(unsafe.Sizeof(zero)), nil, gl.DYNAMIC_DRAW)
	return es, nil
}

// Update snapshots the environment for this frame and uploads the GPU
// block. bloomMipCount is the actual length of the bloom chain.
func (es *EnvironmentSystem) Update(env *resources.Environment, bloomMipCount int) {
	es.snapshot = *env
	es.skyCubemap = env.Sky.Cubemap
	es.skyProbe = env.Sky.Probe
	es.flags = env.Flags
	es.background = env.Background

	// Pre-multiply the background with fog so sky pixels blend into
	// foggy scenes without a second pass.
	if env.Fog.Mode != resources.FogDisabled {
		es.background = es.background.Lerp(env.Fog.Color, env.Fog.SkyAffect)
	}

	if env.Bloom.Mode != resources.BloomDisabled {
		es.bloomLevels = RemapBloomLevels(env.Bloom.Levels[:], bloomMipCount)
	} else {
		es.bloomLevels = es.bloomLevels[:0]
	}

	es.tonemapMode = env.Tonemap.Mode
	es.ssaoEnabled = env.SSAO.Enabled
	es.bloomMode = env.Bloom.Mode

	data := BuildEnvGPUData(env)
	opengl.UploadObject(es.buffer, &data)
}

// BuildEnvGPUData flattens the environment into the uniform block
// layout. Pure; kept separate from the upload for testability.
func BuildEnvGPUData(env *resources.Environment) envGPUData {
	var data envGPUData

	data.AmbientColor = env.Ambient.ToVec3()
	data.SkyRotation = math.NewVec4(env.Sky.Rotation.X, env.Sky.Rotation.Y, env.Sky.Rotation.Z, env.Sky.Rotation.W)
	data.SkyIntensity = env.Sky.Intensity
	data.SkySpecular = env.Sky.Specular * env.Sky.Intensity
	data.SkyDiffuse = env.Sky.Diffuse * env.Sky.Intensity

	data.FogDensity = env.Fog.Density
	data.FogStart = env.Fog.Start
	data.FogEnd = env.Fog.End
	if env.Fog.Mode != resources.FogDisabled {
		data.FogSkyAffect = env.Fog.SkyAffect
	}
	data.FogColor = env.Fog.Color.ToVec3()
	data.FogMode = int32(env.Fog.Mode)

	data.SsaoIntensity = env.SSAO.Intensity
	data.SsaoRadius = env.SSAO.Radius
	data.SsaoPower = env.SSAO.Power
	data.SsaoBias = env.SSAO.Bias
	if env.SSAO.Enabled {
		data.SsaoEnabled = 1
	}

	data.BloomPrefilter = BloomPrefilter(env.Bloom.Threshold, env.Bloom.SoftThreshold)
	data.BloomFilterRadius = env.Bloom.FilterRadius
	data.BloomStrength = env.Bloom.Strength
	data.BloomMode = int32(env.Bloom.Mode)

	data.AdjustBrightness = env.Adjustment.Brightness
	data.AdjustContrast = env.Adjustment.Contrast
	data.AdjustSaturation = env.Adjustment.Saturation

	data.TonemapExposure = env.Tonemap.Exposure
	data.TonemapWhite = env.Tonemap.White
	data.TonemapMode = int32(env.Tonemap.Mode)

	return data
}

// BloomPrefilter packs the soft-threshold curve: x = threshold,
// y = threshold - knee, z = 2*knee, w = 0.25/(knee + eps).
func BloomPrefilter(threshold, softThreshold float32) math.Vec4 {
	knee := threshold * softThreshold
	return math.NewVec4(
		threshold,
		threshold-knee,
		2.0*knee,
		0.25/(knee+1e-6),
	)
}

// RemapBloomLevels resamples the authored per-level weights onto the
// actual bloom mip count with piecewise-linear interpolation.
func RemapBloomLevels(levels []float32, mipCount int) []float32 {
	if mipCount <= 0 {
		return nil
	}
	out := make([]float32, mipCount)
	if mipCount == 1 {
		out[0] = levels[0]
		return out
	}
	for i := 0; i < mipCount; i++ {
		t := float32(i) / float32(mipCount-1)
		mapped := t * float32(len(levels)-1)
		idx0 := int(mapped)
		idx1 := idx0 + 1
		if idx1 > len(levels)-1 {
			idx1 = len(levels) - 1
		}
		frac := mapped - float32(idx0)
		out[i] = levels[idx0]*(1.0-frac) + levels[idx1]*frac
	}
	return out
}

/* --- Accessors --- */

func (es *EnvironmentSystem) SkyCubemap() *resources.Cubemap        { return es.skyCubemap }
func (es *EnvironmentSystem) SkyProbe() *resources.ReflectionProbe  { return es.skyProbe }
func (es *EnvironmentSystem) BloomLevels() []float32                { return es.bloomLevels }
func (es *EnvironmentSystem) Background() math.Color                { return es.background }
func (es *EnvironmentSystem) TonemapMode() resources.TonemapMode    { return es.tonemapMode }
func (es *EnvironmentSystem) BloomMode() resources.BloomMode        { return es.bloomMode }
func (es *EnvironmentSystem) IsSsaoEnabled() bool                   { return es.ssaoEnabled }
func (es *EnvironmentSystem) Buffer() *opengl.Buffer                { return es.buffer }
func (es *EnvironmentSystem) Snapshot() *resources.Environment      { return &es.snapshot }

// HasFlags reports whether every given flag is set on the snapshot.
func (es *EnvironmentSystem) HasFlags(flags resources.EnvironmentFlag) bool {
	return es.flags&flags == flags
}

func (es *EnvironmentSystem) Shutdown() error {
	if es.buffer != nil {
		es.buffer.Destroy()
	}
	return nil
}
