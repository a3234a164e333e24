package systems

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

const bloomChainLength = 6

/** @brief Off-screen render target usable as a frame destination. */
type RenderTexture struct {
	Color *opengl.Texture
	Depth *opengl.Texture
	FB    *opengl.Framebuffer

	Width  int
	Height int
}

/** @brief Renderer configuration. */
type RendererSystemConfig struct {
	Width  int
	Height int
}

// RendererSystem is the scene frontend: it owns the HDR scene targets
// and the post-processing chain, records the per-frame camera and
// environment snapshot, and drives the pass sequence in End3D.
type RendererSystem struct {
	pipeline *opengl.Pipeline

	width  int
	height int

	// HDR scene target.
	sceneColor *opengl.Texture
	sceneDepth *opengl.Texture
	sceneFB    *opengl.Framebuffer

	// Post-processing targets.
	ssaoTexture *opengl.Texture
	ssaoFB      *opengl.Framebuffer
	bloomChain  [bloomChainLength]*opengl.Texture
	bloomFBs    [bloomChainLength]*opengl.Framebuffer
	ssaoKernel  [32]math.Vec4

	renderTextures map[*RenderTexture]struct{}

	// Sibling systems, wired by the manager.
	drawCalls   *DrawCallSystem
	lights      *LightSystem
	environment *EnvironmentSystem
	shaders     *ShaderSystem
	textures    *TextureSystem

	// Per-frame state, reset at Begin3D.
	frameActive bool
	camera      resources.Camera
	target      *RenderTexture
	viewProj    math.Mat4
	viewFrustum math.ViewFrustum
	frameTime   float32
}

func NewRendererSystem(config *RendererSystemConfig, pipeline *opengl.Pipeline) (*RendererSystem, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("NewRendererSystem - invalid framebuffer size %dx%d", config.Width, config.Height)
	}

	rs := &RendererSystem{
		pipeline:       pipeline,
		width:          config.Width,
		height:         config.Height,
		renderTextures: make(map[*RenderTexture]struct{}),
	}

	rs.createTargets()

	// Hemisphere-ish kernel for the SSAO pass; a fixed seed keeps the
	// noise stable across runs.
	rng := core.NewPCG32(0x853c49e6748fea9b, 0xda3e39cb94b95bdb)
	for i := range rs.ssaoKernel {
		v := math.NewVec3(
			rng.Float32Range(-1, 1),
			rng.Float32Range(-1, 1),
			rng.Float32Range(-1, 1),
		).Normalized().MulScalar(rng.Float32())
		scale := 0.1 + 0.9*(float32(i)/32.0)*(float32(i)/32.0)
		v = v.MulScalar(scale)
		rs.ssaoKernel[i] = v.ToVec4(0)
	}

	return rs, nil
}

// Wire connects the sibling systems. Called once by the manager.
func (rs *RendererSystem) Wire(dcs *DrawCallSystem, ls *LightSystem, es *EnvironmentSystem, ss *ShaderSystem, ts *TextureSystem) {
	rs.drawCalls = dcs
	rs.lights = ls
	rs.environment = es
	rs.shaders = ss
	rs.textures = ts
}

func (rs *RendererSystem) createTargets() {
	rs.sceneColor = opengl.NewTexture(rs.pipeline,
		opengl.TextureConfig{Target: gl.TEXTURE_2D, InternalFormat: gl.RGBA16F, Width: rs.width, Height: rs.height},
		opengl.TextureParam{MinFilter: gl.LINEAR, MagFilter: gl.LINEAR, SWrap: gl.CLAMP_TO_EDGE, TWrap: gl.CLAMP_TO_EDGE})
	rs.sceneDepth = opengl.NewTexture(rs.pipeline,
		opengl.TextureConfig{Target: gl.TEXTURE_2D, InternalFormat: gl.DEPTH_COMPONENT32F, Width: rs.width, Height: rs.height},
		opengl.TextureParam{MinFilter: gl.NEAREST, MagFilter: gl.NEAREST, SWrap: gl.CLAMP_TO_EDGE, TWrap: gl.CLAMP_TO_EDGE})
	rs.sceneFB = opengl.NewFramebuffer(rs.pipeline, []*opengl.Texture{rs.sceneColor}, rs.sceneDepth)

	rs.ssaoTexture = opengl.NewTexture(rs.pipeline,
		opengl.TextureConfig{Target: gl.TEXTURE_2D, InternalFormat: gl.R16F, Width: rs.width / 2, Height: rs.height / 2},
		opengl.TextureParam{MinFilter: gl.LINEAR, MagFilter: gl.LINEAR, SWrap: gl.CLAMP_TO_EDGE, TWrap: gl.CLAMP_TO_EDGE})
	rs.ssaoFB = opengl.NewFramebuffer(rs.pipeline, []*opengl.Texture{rs.ssaoTexture}, nil)

	w, h := rs.width/2, rs.height/2
	for i := 0; i < bloomChainLength; i++ {
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		rs.bloomChain[i] = opengl.NewTexture(rs.pipeline,
			opengl.TextureConfig{Target: gl.TEXTURE_2D, InternalFormat: gl.RGBA16F, Width: w, Height: h},
			opengl.TextureParam{MinFilter: gl.LINEAR, MagFilter: gl.LINEAR, SWrap: gl.CLAMP_TO_EDGE, TWrap: gl.CLAMP_TO_EDGE})
		rs.bloomFBs[i] = opengl.NewFramebuffer(rs.pipeline, []*opengl.Texture{rs.bloomChain[i]}, nil)
		w /= 2
		h /= 2
	}
}

func (rs *RendererSystem) destroyTargets() {
	for i := 0; i < bloomChainLength; i++ {
		if rs.bloomFBs[i] != nil {
			rs.bloomFBs[i].Destroy()
		}
		if rs.bloomChain[i] != nil {
			rs.bloomChain[i].Destroy()
		}
	}
	if rs.ssaoFB != nil {
		rs.ssaoFB.Destroy()
	}
	if rs.ssaoTexture != nil {
		rs.ssaoTexture.Destroy()
	}
	if rs.sceneFB != nil {
		rs.sceneFB.Destroy()
	}
	if rs.sceneDepth != nil {
		rs.sceneDepth.Destroy()
	}
	if rs.sceneColor != nil {
		rs.sceneColor.Destroy()
	}
}

// OnResize recreates the size-dependent targets.
func (rs *RendererSystem) OnResize(width, height int) {
	if width <= 0 || height <= 0 || (width == rs.width && height == rs.height) {
		return
	}
	rs.width = width
	rs.height = height
	rs.destroyTargets()
	rs.createTargets()
}

/* --- Render texture API --- */

func (rs *RendererSystem) CreateRenderTexture(width, height int) *RenderTexture {
	color := rs.textures.CreateRenderTarget(width, height, gl.RGBA8)
	depth := opengl.NewTexture(rs.pipeline,
		opengl.TextureConfig{Target: gl.TEXTURE_2D, InternalFormat: gl.DEPTH_COMPONENT24, Width: width, Height: height},
		opengl.TextureParam{MinFilter: gl.NEAREST, MagFilter: gl.NEAREST, SWrap: gl.CLAMP_TO_EDGE, TWrap: gl.CLAMP_TO_EDGE})
	if color == nil || !depth.IsValid() {
		core.LogError("RENDER: failed to create render texture %dx%d", width, height)
		return nil
	}

	rt := &RenderTexture{
		Color:  color,
		Depth:  depth,
		FB:     opengl.NewFramebuffer(rs.pipeline, []*opengl.Texture{color}, depth),
		Width:  width,
		Height: height,
	}
	rs.renderTextures[rt] = struct{}{}
	return rt
}

func (rs *RendererSystem) DestroyRenderTexture(rt *RenderTexture) {
	if rt == nil {
		return
	}
	if _, ok := rs.renderTextures[rt]; !ok {
		return
	}
	delete(rs.renderTextures, rt)
	rt.FB.Destroy()
	rt.Depth.Destroy()
	rs.textures.Destroy(rt.Color)
}

/* --- Frame API --- */

// SetFrameTime feeds the frame delta used by interval shadow policies.
func (rs *RendererSystem) SetFrameTime(seconds float32) {
	rs.frameTime = seconds
}

// Begin3D resets the per-frame staging and records the camera,
// environment and target snapshot. nil camera or environment select
// the defaults; nil target renders to the backbuffer.
func (rs *RendererSystem) Begin3D(camera *resources.Camera, environment *resources.Environment, target *RenderTexture) {
	if rs.frameActive {
		core.LogWarn("RENDER: Begin3D called twice without End3D; previous frame dropped")
	}

	rs.drawCalls.Clear()
	rs.shaders.ClearFrameState()

	if camera == nil {
		defaultCamera := resources.DefaultCamera()
		camera = &defaultCamera
	}
	rs.camera = *camera

	env := resources.DefaultEnvironment()
	if environment != nil {
		env = *environment
	}
	rs.environment.Update(&env, bloomChainLength)

	rs.target = target

	aspect := float32(rs.width) / float32(rs.height)
	if target != nil {
		aspect = float32(target.Width) / float32(target.Height)
	}
	rs.viewProj = rs.camera.ViewProj(aspect)
	rs.viewFrustum = math.NewViewFrustum(rs.camera.Position, rs.viewProj)

	rs.frameActive = true
}

func (rs *RendererSystem) DrawMesh(mesh *resources.Mesh, material *resources.Material, transform math.Transform) {
	rs.drawVariant(resources.VariantFromMesh(mesh), nil, 0, material, transform)
}

func (rs *RendererSystem) DrawMeshInstanced(mesh *resources.Mesh, instances *resources.InstanceBuffer, instanceCount int, material *resources.Material, transform math.Transform) {
	rs.drawVariant(resources.VariantFromMesh(mesh), instances, instanceCount, material, transform)
}

func (rs *RendererSystem) DrawDynamicMesh(mesh *resources.DynamicMesh, material *resources.Material, transform math.Transform) {
	rs.drawVariant(resources.VariantFromDynamicMesh(mesh), nil, 0, material, transform)
}

func (rs *RendererSystem) drawVariant(mesh resources.VariantMesh, instances *resources.InstanceBuffer, instanceCount int, material *resources.Material, transform math.Transform) {
	if !rs.frameActive {
		core.LogError("RENDER: draw submitted outside Begin3D/End3D (dropped)")
		return
	}
	if material == nil {
		defaultMaterial := resources.DefaultMaterial()
		material = &defaultMaterial
	}
	rs.drawCalls.PushMesh(mesh, instances, instanceCount, material, transform)
}

func (rs *RendererSystem) DrawModel(model *resources.Model, transform math.Transform) {
	rs.DrawModelInstanced(model, nil, 0, transform)
}

func (rs *RendererSystem) DrawModelInstanced(model *resources.Model, instances *resources.InstanceBuffer, instanceCount int, transform math.Transform) {
	if !rs.frameActive {
		core.LogError("RENDER: draw submitted outside Begin3D/End3D (dropped)")
		return
	}
	rs.drawCalls.PushModel(model, instances, instanceCount, transform)
}

// End3D runs the frame: upload, light update, culling, sorting, shadow
// passes, prepass, opaque, skybox, transparent, post-processing, and
// the final blit into the target.
func (rs *RendererSystem) End3D() {
	if !rs.frameActive {
		core.LogError("RENDER: End3D called without Begin3D")
		return
	}
	rs.frameActive = false

	pl := rs.pipeline
	env := rs.environment

	/* --- Per-frame GPU uploads --- */

	rs.drawCalls.Upload()
	rs.lights.Update(env.Snapshot().Bounds, rs.frameTime)

	/* --- Culling and sorting --- */

	var frustum *math.Frustum
	if env.HasFlags(resources.EnvViewFrustumCulling) {
		frustum = &rs.viewFrustum.Frustum
	}
	rs.drawCalls.Culling(frustum, rs.camera.CullMask)

	rs.drawCalls.Sorting(&rs.viewFrustum,
		env.HasFlags(resources.EnvSortOpaque),
		env.HasFlags(resources.EnvSortPrepass),
		env.HasFlags(resources.EnvSortTransparent))

	/* --- Shadow passes --- */

	rs.bindFrameStorage()
	rs.lights.RenderShadowMaps(rs.drawCalls, rs.shaders,
		env.HasFlags(resources.EnvShadowFrustumCulling))

	/* --- Scene passes --- */

	pl.BindFramebuffer(rs.sceneFB)
	pl.SetViewport(0, 0, int32(rs.width), int32(rs.height))
	pl.ClearColorDepth(env.Background())

	rs.bindFrameStorage()
	rs.bindFrameTextures()

	rs.prepassPass()
	rs.scenePass(DrawOpaque)
	rs.skyboxPass()
	rs.scenePass(DrawTransparent)

	/* --- Post-processing and presentation --- */

	rs.postProcess()
}

// bindFrameStorage attaches the per-frame storage buffers and the
// environment block to their fixed binding points.
func (rs *RendererSystem) bindFrameStorage() {
	pl := rs.pipeline
	pl.BindStorage(opengl.BindingStorageShared, rs.drawCalls.SharedBuffer())
	pl.BindStorage(opengl.BindingStorageUnique, rs.drawCalls.UniqueBuffer())
	pl.BindStorage(opengl.BindingStorageBones, rs.drawCalls.BoneBuffer())
	pl.BindStorage(opengl.BindingStorageLights, rs.lights.LightBuffer())
	pl.BindStorage(opengl.BindingStorageShadows, rs.lights.ShadowBuffer())
	pl.BindUniform(opengl.BindingUniformEnv, rs.environment.Buffer())
}

// bindFrameTextures binds the per-frame built-in textures: sky, IBL
// maps, BRDF LUT and the shadow atlas.
func (rs *RendererSystem) bindFrameTextures() {
	pl := rs.pipeline
	env := rs.environment

	white := rs.textures.DefaultWhite()

	if sky := env.SkyCubemap(); sky != nil && sky.IsValid() {
		pl.BindTexture(texUnitSky, sky.Texture())
	} else {
		pl.BindTexture(texUnitSky, white)
	}

	if probe := env.SkyProbe(); probe != nil && probe.IsValid() {
		pl.BindTexture(texUnitIrradiance, probe.Irradiance().Texture())
		pl.BindTexture(texUnitPrefiltered, probe.Prefiltered().Texture())
	} else {
		pl.BindTexture(texUnitIrradiance, white)
		pl.BindTexture(texUnitPrefiltered, white)
	}

	pl.BindTexture(texUnitBrdfLut, rs.shaders.BrdfLut())
	pl.BindTexture(texUnitShadowAtlas, rs.lights.AtlasTexture())
}

// bindMaterial applies material render state and textures for one
// unique record and returns the program to draw with.
func (rs *RendererSystem) bindMaterial(unique *UniqueData, prepass bool) *opengl.Program {
	pl := rs.pipeline
	material := &unique.Material

	shader := material.Shader
	if shader == nil {
		shader = rs.shaders.DefaultMaterialShader()
	}

	var program *opengl.Program
	if prepass {
		program = shader.Program(resources.ScenePrepass)
	} else {
		program = shader.ProgramFromShadingMode(material.Shading)
	}

	pl.UseProgram(program)
	pl.SetBlend(blendToPipeline(material.Blend))
	pl.SetCullMode(cullToPipeline(material.Cull))
	pl.SetDepthTest(depthToPipeline(material.Depth.Test))

	white := rs.textures.DefaultWhite()
	albedo := material.Albedo.Texture
	if albedo == nil {
		albedo = white
	}
	emission := material.Emission.Texture
	if emission == nil {
		emission = white
	}
	orm := material.ORM.Texture
	if orm == nil {
		orm = white
	}
	normal := material.Normal.Texture
	if normal == nil {
		normal = rs.textures.DefaultNormal()
	}

	pl.BindTexture(texUnitAlbedo, albedo)
	pl.BindTexture(texUnitEmission, emission)
	pl.BindTexture(texUnitORM, orm)
	pl.BindTexture(texUnitNormal, normal)

	shader.BindTextures(unique.Textures, white)
	shader.BindUniforms(unique.DynamicRangeIndex)

	return program
}

// prepassPass renders the depth-only bucket, writing depth but no
// color, so opaque shading and alpha cutoff see a primed depth buffer.
func (rs *RendererSystem) prepassPass() {
	bucket := rs.drawCalls.VisibleBucket(DrawPrepass)
	if len(bucket) == 0 {
		return
	}

	pl := rs.pipeline
	pl.SetColorMask(false, false, false, false)
	pl.SetDepthMask(true)

	for _, index := range bucket {
		unique := &rs.drawCalls.UniqueData()[index]
		shared := &rs.drawCalls.SharedData()[unique.SharedDataIndex]

		shader := unique.Material.Shader
		if shader == nil {
			shader = rs.shaders.DefaultMaterialShader()
		}
		pl.UseProgram(shader.Program(resources.ScenePrepass))
		pl.SetCullMode(cullToPipeline(unique.Material.Cull))
		pl.SetDepthTest(opengl.DepthTestLess)
		pl.SetBlend(opengl.BlendOpaque)

		white := rs.textures.DefaultWhite()
		albedo := unique.Material.Albedo.Texture
		if albedo == nil {
			albedo = white
		}
		pl.BindTexture(texUnitAlbedo, albedo)
		shader.BindUniforms(unique.DynamicRangeIndex)

		pl.SetUniformInt1(0, int32(unique.SharedDataIndex))
		pl.SetUniformInt1(1, int32(unique.UniqueDataIndex))
		pl.SetUniformMat4(2, rs.viewProj)
		rs.drawCalls.Draw(unique, shared)
	}

	pl.SetColorMask(true, true, true, true)
}

// scenePass renders one shaded bucket. The prepass bucket is shaded
// here as well (depth-equal against its own prepass depth).
func (rs *RendererSystem) scenePass(drawType DrawType) {
	buckets := [][]int{rs.drawCalls.VisibleBucket(drawType)}
	if drawType == DrawOpaque {
		// Prepass records are shaded with the opaque set, after their
		// depth-only pass.
		buckets = append(buckets, rs.drawCalls.VisibleBucket(DrawPrepass))
	}

	pl := rs.pipeline

	for bucketIndex, bucket := range buckets {
		prepassBucket := bucketIndex == 1
		for _, index := range bucket {
			unique := &rs.drawCalls.UniqueData()[index]
			shared := &rs.drawCalls.SharedData()[unique.SharedDataIndex]

			rs.bindMaterial(unique, false)
			if prepassBucket {
				// Shaded against its own depth-only pass.
				pl.SetDepthTest(opengl.DepthTestLessEqual)
			}
			if drawType == DrawTransparent {
				pl.SetDepthMask(false)
			} else {
				pl.SetDepthMask(true)
			}

			rs.setDrawUniforms(unique, unique.Material.Shading == resources.ShadingLit)
			rs.drawCalls.Draw(unique, shared)
		}
	}

	pl.SetDepthMask(true)
}

// setDrawUniforms feeds the per-draw locations. The light uniforms
// only exist in the lit variant; setting them elsewhere would raise a
// GL error per draw.
func (rs *RendererSystem) setDrawUniforms(unique *UniqueData, lit bool) {
	pl := rs.pipeline
	pl.SetUniformInt1(0, int32(unique.SharedDataIndex))
	pl.SetUniformInt1(1, int32(unique.UniqueDataIndex))
	pl.SetUniformMat4(2, rs.viewProj)
	pl.SetUniformFloat3(3, rs.camera.Position)
	if lit {
		pl.SetUniformInt1(4, int32(rs.lights.ActiveLightCount()))
		pl.SetUniformInt1(5, int32(rs.camera.CullMask))
	}
}

// skyboxPass draws the sky cubemap behind everything already shaded.
func (rs *RendererSystem) skyboxPass() {
	env := rs.environment
	sky := env.SkyCubemap()
	if sky == nil || !sky.IsValid() {
		return
	}

	pl := rs.pipeline
	pl.UseProgram(rs.shaders.SkyboxDraw())
	pl.SetDepthTest(opengl.DepthTestLessEqual)
	pl.SetDepthMask(false)
	pl.SetCullMode(opengl.CullNone)
	pl.SetBlend(opengl.BlendOpaque)

	pl.BindTexture(texUnitSky, sky.Texture())

	// Strip the camera translation so the sky sits at infinity.
	view := rs.camera.ViewMatrix()
	view.Data[12] = 0
	view.Data[13] = 0
	view.Data[14] = 0
	aspect := float32(rs.width) / float32(rs.height)
	pl.SetUniformMat4(0, view.Mul(rs.camera.ProjectionMatrix(aspect)))

	snapshot := env.Snapshot()
	rotation := snapshot.Sky.Rotation
	pl.SetUniformFloat4(1, math.NewVec4(rotation.X, rotation.Y, rotation.Z, rotation.W))
	pl.SetUniformFloat1(2, snapshot.Sky.Intensity)
	fogAffect := float32(0)
	if snapshot.Fog.Mode != resources.FogDisabled {
		fogAffect = snapshot.Fog.SkyAffect
	}
	fogColor := snapshot.Fog.Color.ToVec3()
	pl.SetUniformFloat4(3, math.NewVec4(fogColor.X, fogColor.Y, fogColor.Z, fogAffect))

	pl.Draw(gl.TRIANGLES, 36)
	pl.SetDepthMask(true)
}

/* --- Post-processing --- */

func (rs *RendererSystem) postProcess() {
	pl := rs.pipeline
	env := rs.environment

	pl.SetDepthTest(opengl.DepthTestDisabled)
	pl.SetCullMode(opengl.CullNone)
	pl.SetBlend(opengl.BlendOpaque)

	if env.IsSsaoEnabled() {
		rs.ssaoPass()
	}
	if env.BloomMode() != resources.BloomDisabled {
		rs.bloomPass()
	}
	rs.compositePass()
}

func (rs *RendererSystem) ssaoPass() {
	pl := rs.pipeline
	snapshot := rs.environment.Snapshot()

	pl.BindFramebuffer(rs.ssaoFB)
	pl.SetViewportToFramebuffer(rs.ssaoFB)
	pl.UseProgram(rs.shaders.SSAO())

	pl.BindTexture(0, rs.sceneDepth)
	pl.SetUniformMat4(0, rs.viewProj.Inverse())
	pl.SetUniformMat4(1, rs.viewProj)
	pl.SetUniformFloat4(2, math.NewVec4(snapshot.SSAO.Intensity, snapshot.SSAO.Radius, snapshot.SSAO.Power, snapshot.SSAO.Bias))
	for i, k := range rs.ssaoKernel {
		pl.SetUniformFloat4(int32(3+i), k)
	}

	pl.Draw(gl.TRIANGLES, 3)
}

func (rs *RendererSystem) bloomPass() {
	pl := rs.pipeline
	snapshot := rs.environment.Snapshot()
	levels := rs.environment.BloomLevels()

	// Downsample chain; the first tap applies the threshold prefilter.
	source := rs.sceneColor
	for i := 0; i < bloomChainLength; i++ {
		pl.BindFramebuffer(rs.bloomFBs[i])
		pl.SetViewportToFramebuffer(rs.bloomFBs[i])
		pl.UseProgram(rs.shaders.BloomDownsample())
		pl.BindTexture(0, source)
		pl.SetUniformFloat2(0, math.NewVec2(1.0/float32(source.Width()), 1.0/float32(source.Height())))
		pl.SetUniformFloat4(1, BloomPrefilter(snapshot.Bloom.Threshold, snapshot.Bloom.SoftThreshold))
		applyPrefilter := int32(0)
		if i == 0 {
			applyPrefilter = 1
		}
		pl.SetUniformInt1(2, applyPrefilter)
		pl.Draw(gl.TRIANGLES, 3)
		source = rs.bloomChain[i]
	}

	// Upsample back, additively, weighting each level.
	pl.SetBlend(opengl.BlendAdditive)
	for i := bloomChainLength - 1; i > 0; i-- {
		pl.BindFramebuffer(rs.bloomFBs[i-1])
		pl.SetViewportToFramebuffer(rs.bloomFBs[i-1])
		pl.UseProgram(rs.shaders.BloomUpsample())
		pl.BindTexture(0, rs.bloomChain[i])
		pl.SetUniformFloat1(0, snapshot.Bloom.FilterRadius)
		weight := float32(1)
		if i < len(levels) {
			weight = levels[i]
		}
		pl.SetUniformFloat1(1, weight)
		pl.Draw(gl.TRIANGLES, 3)
	}
	pl.SetBlend(opengl.BlendOpaque)
}

// compositePass tonemaps and color-adjusts the scene into the frame
// target (render texture or backbuffer).
func (rs *RendererSystem) compositePass() {
	pl := rs.pipeline
	snapshot := rs.environment.Snapshot()

	if rs.target != nil {
		pl.BindFramebuffer(rs.target.FB)
		pl.SetViewport(0, 0, int32(rs.target.Width), int32(rs.target.Height))
	} else {
		pl.BindFramebuffer(nil)
		pl.SetViewport(0, 0, int32(rs.width), int32(rs.height))
	}

	pl.UseProgram(rs.shaders.PostComposite())

	pl.BindTexture(0, rs.sceneColor)
	pl.BindTexture(1, rs.bloomChain[0])
	pl.BindTexture(2, rs.ssaoTexture)

	bloomMode := float32(0)
	if rs.environment.BloomMode() != resources.BloomDisabled {
		bloomMode = float32(rs.environment.BloomMode())
	}
	pl.SetUniformFloat4(0, math.NewVec4(snapshot.Bloom.Strength, bloomMode, 0, 0))

	ssaoOn := float32(0)
	if rs.environment.IsSsaoEnabled() {
		ssaoOn = 1
	}
	pl.SetUniformFloat4(1, math.NewVec4(snapshot.Adjustment.Brightness, snapshot.Adjustment.Contrast, snapshot.Adjustment.Saturation, ssaoOn))
	pl.SetUniformFloat4(2, math.NewVec4(snapshot.Tonemap.Exposure, snapshot.Tonemap.White, float32(rs.environment.TonemapMode()), 0))

	pl.Draw(gl.TRIANGLES, 3)
}

func (rs *RendererSystem) Shutdown() error {
	for rt := range rs.renderTextures {
		rt.FB.Destroy()
		rt.Depth.Destroy()
	}
	rs.renderTextures = make(map[*RenderTexture]struct{})
	rs.destroyTargets()
	return nil
}
