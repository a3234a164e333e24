package resources

import (
	"github.com/spaghettifunk/hyperion/engine/math"
)

/**
 * @brief Describes parameters for procedural skybox generation.
 */
type Skybox struct {
	SunDirection   math.Vec3
	SkyColorTop    math.Color
	SkyColorHorizon math.Color
	SunColor       math.Color
	GroundColor    math.Color
	/** @brief Apparent angular size of the sun, in radians. */
	SunSize float32
	/** @brief Strength of atmospheric haze (0 = none). */
	Haze float32
	/** @brief Intensity multiplier for the sky lighting. */
	Energy float32
}

// DefaultSkybox returns a clear-day parameter set.
func DefaultSkybox() Skybox {
	return Skybox{
		SunDirection:    math.NewVec3(-0.5, -1.0, -0.5),
		SkyColorTop:     math.NewColor(0.25, 0.5, 0.9, 1),
		SkyColorHorizon: math.NewColor(0.7, 0.8, 0.9, 1),
		SunColor:        math.NewColor(1.0, 0.95, 0.85, 1),
		GroundColor:     math.NewColor(0.25, 0.2, 0.18, 1),
		SunSize:         math.DegToRad(1.0),
		Haze:            0.1,
		Energy:          1.0,
	}
}

/**
 * @brief A 3D scene environment value type: scene bounds, background
 * and ambient colors, sky settings and post-processing parameters.
 */
type Environment struct {
	/** @brief Scene bounds, used for directional light shadows. */
	Bounds math.BoundingBox
	/** @brief Fallback background color if no skybox is defined. */
	Background math.Color
	/** @brief Fallback ambient light color if no reflection probe is defined. */
	Ambient math.Color

	Sky struct {
		/** @brief Skybox cubemap texture. If nil, Background is used. */
		Cubemap *Cubemap
		/** @brief Global reflection probe. If nil, Ambient is used. */
		Probe *ReflectionProbe
		/** @brief Orientation applied to the skybox and its probe. */
		Rotation math.Quaternion
		/** @brief Overall sky contribution. */
		Intensity float32
		/** @brief Specular reflection contribution. */
		Specular float32
		/** @brief Diffuse lighting contribution. */
		Diffuse float32
	}

	Fog struct {
		Density float32
		Start   float32
		End     float32
		/** @brief Influence of fog color on the sky. */
		SkyAffect float32
		Color     math.Color
		Mode      FogMode
	}

	SSAO struct {
		Intensity float32
		Radius    float32
		Power     float32
		Bias      float32
		Enabled   bool
	}

	Bloom struct {
		Threshold     float32
		SoftThreshold float32
		FilterRadius  float32
		Strength      float32
		/** @brief Authored per-level weights, resampled to the mip count. */
		Levels [8]float32
		Mode   BloomMode
	}

	Adjustment struct {
		Brightness float32
		Contrast   float32
		Saturation float32
	}

	Tonemap struct {
		Mode     TonemapMode
		Exposure float32
		White    float32
	}

	Flags EnvironmentFlag
}

// DefaultEnvironment returns the neutral environment: dark background,
// soft ambient, everything disabled except opaque/transparent sorting
// and view and shadow frustum culling.
func DefaultEnvironment() Environment {
	var env Environment
	env.Bounds = math.NewBoundingBox(math.NewVec3(-10, -10, -10), math.NewVec3(10, 10, 10))
	env.Background = math.NewColor(0.1, 0.1, 0.1, 1)
	env.Ambient = math.NewColor(0.2, 0.2, 0.2, 1)
	env.Sky.Rotation = math.NewQuatIdentity()
	env.Sky.Intensity = 1.0
	env.Sky.Specular = 1.0
	env.Sky.Diffuse = 1.0
	env.Fog.Density = 0.01
	env.Fog.Start = 5.0
	env.Fog.End = 50.0
	env.Fog.SkyAffect = 1.0
	env.Fog.Color = math.NewColor(0.5, 0.5, 0.5, 1)
	env.SSAO.Intensity = 1.0
	env.SSAO.Radius = 0.5
	env.SSAO.Power = 1.0
	env.SSAO.Bias = 0.025
	env.Bloom.Threshold = 1.0
	env.Bloom.SoftThreshold = 0.5
	env.Bloom.FilterRadius = 0.005
	env.Bloom.Strength = 0.04
	for i := range env.Bloom.Levels {
		env.Bloom.Levels[i] = 1.0
	}
	env.Adjustment.Brightness = 1.0
	env.Adjustment.Contrast = 1.0
	env.Adjustment.Saturation = 1.0
	env.Tonemap.Mode = TonemapLinear
	env.Tonemap.Exposure = 1.0
	env.Tonemap.White = 1.0
	env.Flags = EnvSortOpaque | EnvSortTransparent | EnvViewFrustumCulling | EnvShadowFrustumCulling
	return env
}

// HasFlags reports whether every given flag is set.
func (e *Environment) HasFlags(flags EnvironmentFlag) bool {
	return e.Flags&flags == flags
}
