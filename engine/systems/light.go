package systems

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

/** @brief The light system configuration. */
type LightSystemConfig struct {
	/** @brief The maximum number of simultaneously active lights. */
	MaxLightCount int
	/** @brief The number of slices in the shadow atlas. */
	MaxShadowMapCount int
	/** @brief Per-slice shadow map resolution. */
	ShadowResolution int
}

// LightSystem maintains a dense GPU array of active lights and a
// sparse shadow-map atlas, applies per-light shadow update policies,
// and renders shadow passes on demand.
type LightSystem struct {
	config   *LightSystemConfig
	pipeline *opengl.Pipeline

	lights map[*resources.Light]struct{}

	// Atlas slice ownership: one entry per slice, plus the first slice
	// and slice count each light currently holds. Freed slots are
	// recycled so the atlas does not fragment over light churn.
	sliceUsed  []bool
	lightSlice map[*resources.Light]sliceRange

	atlasTexture *opengl.Texture
	atlasDepth   *opengl.Texture
	atlasFB      *opengl.Framebuffer

	lightBuffer  *opengl.StagingBuffer[resources.GPULight]
	shadowBuffer *opengl.StagingBuffer[resources.GPUShadow]

	activeLights  []*resources.Light
	activeShadows []*resources.Light
}

type sliceRange struct {
	first int
	count int
}

func NewLightSystem(config *LightSystemConfig, pipeline *opengl.Pipeline) (*LightSystem, error) {
	if config.MaxLightCount == 0 {
		return nil, fmt.Errorf("NewLightSystem - config.MaxLightCount must be greater than 0")
	}
	if config.ShadowResolution <= 0 {
		config.ShadowResolution = 2048
	}
	if config.MaxShadowMapCount <= 0 {
		config.MaxShadowMapCount = 32
	}

	ls := &LightSystem{
		config:     config,
		pipeline:   pipeline,
		lights:     make(map[*resources.Light]struct{}),
		sliceUsed:  make([]bool, config.MaxShadowMapCount),
		lightSlice: make(map[*resources.Light]sliceRange),
	}

	// The atlas stores exponential depth in a color array texture; a
	// shared 2D depth texture provides the depth test per pass.
	ls.atlasTexture = opengl.NewTexture(pipeline,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D_ARRAY,
			InternalFormat: gl.R32F,
			Width:          config.ShadowResolution,
			Height:         config.MaxShadowMapCount,
		},
		opengl.TextureParam{
			MinFilter: gl.LINEAR,
			MagFilter: gl.LINEAR,
			SWrap:     gl.CLAMP_TO_EDGE,
			TWrap:     gl.CLAMP_TO_EDGE,
		})

	ls.atlasDepth = opengl.NewTexture(pipeline,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D,
			InternalFormat: gl.DEPTH_COMPONENT24,
			Width:          config.ShadowResolution,
			Height:         config.ShadowResolution,
		},
		opengl.TextureParam{
			MinFilter: gl.NEAREST,
			MagFilter: gl.NEAREST,
			SWrap:     gl.CLAMP_TO_EDGE,
			TWrap:     gl.CLAMP_TO_EDGE,
		})

	ls.atlasFB = opengl.NewFramebuffer(pipeline, []*opengl.Texture{ls.atlasTexture}, ls.atlasDepth)

	ls.lightBuffer = opengl.NewStagingBuffer[resources.GPULight](pipeline, gl.SHADER_STORAGE_BUFFER, config.MaxLightCount)
	ls.shadowBuffer = opengl.NewStagingBuffer[resources.GPUShadow](pipeline, gl.SHADER_STORAGE_BUFFER, config.MaxShadowMapCount)

	return ls, nil
}

/* --- Resource API --- */

// CreateLight allocates a light of the given topology. The light is
// inactive until SetActive(true).
func (ls *LightSystem) CreateLight(lightType resources.LightType) *resources.Light {
	light := resources.NewLight(lightType, ls.config.ShadowResolution)
	ls.lights[light] = struct{}{}
	return light
}

// DestroyLight releases a light and recycles its atlas slices.
// Idempotent on nil and unknown handles.
func (ls *LightSystem) DestroyLight(light *resources.Light) {
	if light == nil {
		return
	}
	if _, ok := ls.lights[light]; !ok {
		return
	}
	ls.releaseSlices(light)
	delete(ls.lights, light)
}

// UpdateShadowMap requests one shadow re-render for a light in manual
// update mode.
func (ls *LightSystem) UpdateShadowMap(light *resources.Light) {
	if light == nil {
		return
	}
	light.ForceShadowMapUpdate()
}

/* --- Atlas slice allocation --- */

func (ls *LightSystem) sliceCountFor(light *resources.Light) int {
	if light.Type() == resources.LightOmni {
		return 6
	}
	return 1
}

// acquireSlices finds a contiguous run of free atlas slices,
// first-fit. Returns -1 when the atlas is full.
func (ls *LightSystem) acquireSlices(count int) int {
	run := 0
	for i := 0; i < len(ls.sliceUsed); i++ {
		if ls.sliceUsed[i] {
			run = 0
			continue
		}
		run++
		if run == count {
			first := i - count + 1
			for j := first; j <= i; j++ {
				ls.sliceUsed[j] = true
			}
			return first
		}
	}
	return -1
}

func (ls *LightSystem) releaseSlices(light *resources.Light) {
	if sr, ok := ls.lightSlice[light]; ok {
		for i := sr.first; i < sr.first+sr.count; i++ {
			ls.sliceUsed[i] = false
		}
		delete(ls.lightSlice, light)
	}
}

/* --- Frame update --- */

// Update assigns dense GPU indices to every active light, reconciles
// atlas slice ownership, advances the shadow policies, and uploads the
// light and shadow arrays.
func (ls *LightSystem) Update(sceneBounds math.BoundingBox, frameTime float32) {
	ls.activeLights = ls.activeLights[:0]
	ls.activeShadows = ls.activeShadows[:0]

	for light := range ls.lights {
		if !light.IsActive() {
			if _, ok := ls.lightSlice[light]; ok && !light.IsShadowActive() {
				ls.releaseSlices(light)
			}
			continue
		}
		if len(ls.activeLights) >= ls.config.MaxLightCount {
			core.LogError("RENDER: active light count limit reached (%d)", ls.config.MaxLightCount)
			break
		}

		// Reconcile shadow atlas ownership.
		if light.IsShadowActive() {
			if _, ok := ls.lightSlice[light]; !ok {
				count := ls.sliceCountFor(light)
				first := ls.acquireSlices(count)
				if first < 0 {
					core.LogError("RENDER: shadow atlas is full; light shadows disabled")
					light.SetShadowActive(false)
				} else {
					ls.lightSlice[light] = sliceRange{first: first, count: count}
				}
			}
		} else {
			ls.releaseSlices(light)
		}

		lightIndex := uint32(len(ls.activeLights))
		shadowIndex := int32(-1)
		mapIndex := uint32(0)

		if light.IsShadowActive() {
			shadowIndex = int32(len(ls.activeShadows))
			mapIndex = uint32(ls.lightSlice[light].first)
			ls.activeShadows = append(ls.activeShadows, light)
		}

		light.UpdateState(sceneBounds, lightIndex, shadowIndex, mapIndex, frameTime)
		ls.activeLights = append(ls.activeLights, light)
	}

	// Stage and upload the dense GPU arrays.
	for _, light := range ls.activeLights {
		var gpu resources.GPULight
		light.FillLightGPU(&gpu)
		ls.lightBuffer.Stage(gpu)
	}
	for _, light := range ls.activeShadows {
		var gpu resources.GPUShadow
		light.FillShadowGPU(&gpu)
		ls.shadowBuffer.Stage(gpu)
	}

	ls.lightBuffer.Upload()
	ls.shadowBuffer.Upload()
}

/* --- Shadow pass --- */

// RenderShadowMaps renders the shadow atlas slices of every light
// whose update policy fires this frame. Runs before the main passes.
func (ls *LightSystem) RenderShadowMaps(drawCalls *DrawCallSystem, shaderSystem *ShaderSystem, shadowCulling bool) {
	pl := ls.pipeline

	rendered := false
	for _, light := range ls.activeShadows {
		if !light.NeedsShadowMapUpdate() {
			continue
		}
		if !rendered {
			pl.BindFramebuffer(ls.atlasFB)
			pl.SetViewport(0, 0, int32(ls.config.ShadowResolution), int32(ls.config.ShadowResolution))
			pl.SetBlend(opengl.BlendOpaque)
			pl.SetDepthTest(opengl.DepthTestLess)
			pl.SetDepthMask(true)
			rendered = true
		}

		faces := 1
		if light.Type() == resources.LightOmni {
			faces = 6
		}

		for face := 0; face < faces; face++ {
			layer := int(light.ShadowMapIndex()) + face
			ls.atlasFB.SetColorAttachmentTarget(0, 0, opengl.CubeFace(layer))
			pl.ClearColorDepth(math.NewColor(1, 1, 1, 1))

			drawCalls.DrawShadow(light, face, shaderSystem, shadowCulling)
		}
	}

	if rendered {
		pl.BindFramebuffer(nil)
	}
}

/* --- Accessors --- */

func (ls *LightSystem) ActiveLightCount() int               { return len(ls.activeLights) }
func (ls *LightSystem) ActiveShadowCount() int              { return len(ls.activeShadows) }
func (ls *LightSystem) LightBuffer() *opengl.Buffer         { return ls.lightBuffer.Buffer() }
func (ls *LightSystem) ShadowBuffer() *opengl.Buffer        { return ls.shadowBuffer.Buffer() }
func (ls *LightSystem) AtlasTexture() *opengl.Texture       { return ls.atlasTexture }
func (ls *LightSystem) ShadowResolution() int               { return ls.config.ShadowResolution }

func (ls *LightSystem) Shutdown() error {
	ls.lights = make(map[*resources.Light]struct{})
	ls.lightSlice = make(map[*resources.Light]sliceRange)
	if ls.atlasFB != nil {
		ls.atlasFB.Destroy()
	}
	if ls.atlasTexture != nil {
		ls.atlasTexture.Destroy()
	}
	if ls.atlasDepth != nil {
		ls.atlasDepth.Destroy()
	}
	ls.lightBuffer.Destroy()
	ls.shadowBuffer.Destroy()
	return nil
}
