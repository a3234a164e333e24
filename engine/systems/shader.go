package systems

import (
	"embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

//go:embed shaders/*.vert shaders/*.frag shaders/*.geom shaders/*.glsl
var shaderFS embed.FS

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of material shaders held in the system. */
	MaxShaderCount int
}

// builtInPrograms groups the fixed-function helper programs compiled
// once at startup.
type builtInPrograms struct {
	skyboxGen       *opengl.Program
	skyboxDraw      *opengl.Program
	equirectangular *opengl.Program
	prefilter       *opengl.Program
	irradiance      *opengl.Program
	brdfLut         *opengl.Program
	ssao            *opengl.Program
	bloomDownsample *opengl.Program
	bloomUpsample   *opengl.Program
	postComposite   *opengl.Program
}

// ShaderSystem compiles and owns every shader: the built-in helper
// programs, the default material shader, user material shaders and 2D
// shaders. It also owns the BRDF lookup texture.
type ShaderSystem struct {
	config   *ShaderSystemConfig
	pipeline *opengl.Pipeline

	templates   resources.MaterialShaderTemplates
	templates2D resources.Shader2DTemplates

	builtIn        builtInPrograms
	defaultShader  *resources.MaterialShader
	default2D      *resources.Shader2D
	brdfLutTexture *opengl.Texture

	materialShaders map[*resources.MaterialShader]struct{}
	shaders2D       map[*resources.Shader2D]struct{}
}

func NewShaderSystem(config *ShaderSystemConfig, pipeline *opengl.Pipeline) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		return nil, fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
	}

	ss := &ShaderSystem{
		config:          config,
		pipeline:        pipeline,
		materialShaders: make(map[*resources.MaterialShader]struct{}),
		shaders2D:       make(map[*resources.Shader2D]struct{}),
	}

	ss.templates = resources.MaterialShaderTemplates{
		SceneVert:          ss.loadTemplate("shaders/scene.vert"),
		SceneLitFrag:       ss.loadTemplate("shaders/scene_lit.frag"),
		SceneUnlitFrag:     ss.loadTemplate("shaders/scene_unlit.frag"),
		SceneWireframeGeom: ss.loadTemplate("shaders/scene_wireframe.geom"),
		ScenePrepassVert:   ss.loadTemplate("shaders/scene_prepass.vert"),
		ScenePrepassFrag:   ss.loadTemplate("shaders/scene_prepass.frag"),
		SceneShadowVert:    ss.loadTemplate("shaders/scene_shadow.vert"),
		SceneShadowFrag:    ss.loadTemplate("shaders/scene_shadow.frag"),
	}
	ss.templates2D = resources.Shader2DTemplates{
		ShapeVert: ss.loadTemplate("shaders/shape2d.vert"),
		ShapeFrag: ss.loadTemplate("shaders/shape2d.frag"),
		TextFrag:  ss.loadTemplate("shaders/text2d.frag"),
	}

	if err := ss.buildHelperPrograms(); err != nil {
		return nil, err
	}

	// The default shaders use the templates verbatim (no user snippet).
	ss.defaultShader = resources.NewMaterialShader(pipeline, ss.templates, "", "")
	ss.default2D = resources.NewShader2D(pipeline, ss.templates2D, "", "")

	ss.generateBrdfLut()

	return ss, nil
}

// loadTemplate reads an embedded source and splices `#include` lines.
func (ss *ShaderSystem) loadTemplate(name string) string {
	raw, err := shaderFS.ReadFile(name)
	if err != nil {
		core.LogFatal("RENDER: missing embedded shader %q: %s", name, err)
		return ""
	}
	source := string(raw)

	// Minimal include support: replace each include directive with the
	// embedded file it names.
	for strings.Contains(source, "#include \"") {
		start := strings.Index(source, "#include \"")
		end := strings.Index(source[start+10:], "\"")
		if end < 0 {
			break
		}
		includeName := source[start+10 : start+10+end]
		included, err := shaderFS.ReadFile("shaders/" + includeName)
		if err != nil {
			core.LogError("RENDER: missing shader include %q", includeName)
			included = nil
		}
		source = source[:start] + string(included) + source[start+10+end+1:]
	}

	return source
}

func (ss *ShaderSystem) buildHelperPrograms() error {
	type build struct {
		target **opengl.Program
		name   string
		vert   string
		frag   string
	}

	builds := []build{
		{&ss.builtIn.skyboxGen, "skybox_gen", "shaders/cube.vert", "shaders/skybox_gen.frag"},
		{&ss.builtIn.skyboxDraw, "skybox", "shaders/cube.vert", "shaders/skybox.frag"},
		{&ss.builtIn.equirectangular, "equirectangular", "shaders/fullscreen.vert", "shaders/equirectangular.frag"},
		{&ss.builtIn.prefilter, "prefilter", "shaders/cube.vert", "shaders/prefilter.frag"},
		{&ss.builtIn.irradiance, "irradiance", "shaders/cube.vert", "shaders/irradiance.frag"},
		{&ss.builtIn.brdfLut, "brdf_lut", "shaders/fullscreen.vert", "shaders/brdf_lut.frag"},
		{&ss.builtIn.ssao, "ssao", "shaders/fullscreen.vert", "shaders/ssao.frag"},
		{&ss.builtIn.bloomDownsample, "bloom_downsample", "shaders/fullscreen.vert", "shaders/bloom_downsample.frag"},
		{&ss.builtIn.bloomUpsample, "bloom_upsample", "shaders/fullscreen.vert", "shaders/bloom_upsample.frag"},
		{&ss.builtIn.postComposite, "post_composite", "shaders/fullscreen.vert", "shaders/post_composite.frag"},
	}

	for _, b := range builds {
		program, err := opengl.BuildProgram(b.name, ss.loadTemplate(b.vert), ss.loadTemplate(b.frag))
		if err != nil {
			return err
		}
		*b.target = program
	}

	return nil
}

// generateBrdfLut renders the split-sum BRDF lookup table once.
func (ss *ShaderSystem) generateBrdfLut() {
	const lutSize = 512

	ss.brdfLutTexture = opengl.NewTexture(ss.pipeline,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D,
			InternalFormat: gl.RG16F,
			Width:          lutSize,
			Height:         lutSize,
		},
		opengl.TextureParam{
			MinFilter: gl.LINEAR,
			MagFilter: gl.LINEAR,
			SWrap:     gl.CLAMP_TO_EDGE,
			TWrap:     gl.CLAMP_TO_EDGE,
		})

	fb := opengl.NewFramebuffer(ss.pipeline, []*opengl.Texture{ss.brdfLutTexture}, nil)
	defer fb.Destroy()

	pl := ss.pipeline
	pl.BindFramebuffer(fb)
	pl.SetViewportToFramebuffer(fb)
	pl.SetDepthTest(opengl.DepthTestDisabled)
	pl.SetCullMode(opengl.CullNone)
	pl.SetBlend(opengl.BlendOpaque)
	pl.UseProgram(ss.builtIn.brdfLut)
	pl.Draw(gl.TRIANGLES, 3)
	pl.BindFramebuffer(nil)
}

/* --- Accessors --- */

func (ss *ShaderSystem) DefaultMaterialShader() *resources.MaterialShader {
	return ss.defaultShader
}

func (ss *ShaderSystem) Default2DShader() *resources.Shader2D {
	return ss.default2D
}

func (ss *ShaderSystem) BrdfLut() *opengl.Texture         { return ss.brdfLutTexture }
func (ss *ShaderSystem) SkyboxGen() *opengl.Program       { return ss.builtIn.skyboxGen }
func (ss *ShaderSystem) SkyboxDraw() *opengl.Program      { return ss.builtIn.skyboxDraw }
func (ss *ShaderSystem) Equirectangular() *opengl.Program { return ss.builtIn.equirectangular }
func (ss *ShaderSystem) Prefilter() *opengl.Program       { return ss.builtIn.prefilter }
func (ss *ShaderSystem) Irradiance() *opengl.Program      { return ss.builtIn.irradiance }
func (ss *ShaderSystem) SSAO() *opengl.Program            { return ss.builtIn.ssao }
func (ss *ShaderSystem) BloomDownsample() *opengl.Program { return ss.builtIn.bloomDownsample }
func (ss *ShaderSystem) BloomUpsample() *opengl.Program   { return ss.builtIn.bloomUpsample }
func (ss *ShaderSystem) PostComposite() *opengl.Program   { return ss.builtIn.postComposite }

/* --- User shaders --- */

// CreateMaterialShader splices the user snippets into the scene
// templates and compiles all variants. Returns nil on overflow.
func (ss *ShaderSystem) CreateMaterialShader(vertexCode, fragmentCode string) *resources.MaterialShader {
	if len(ss.materialShaders) >= ss.config.MaxShaderCount {
		core.LogError("RENDER: material shader count limit reached (%d)", ss.config.MaxShaderCount)
		return nil
	}
	shader := resources.NewMaterialShader(ss.pipeline, ss.templates, vertexCode, fragmentCode)
	ss.materialShaders[shader] = struct{}{}
	return shader
}

// Create2DShader builds a user 2D shader over the shape/text variants.
func (ss *ShaderSystem) Create2DShader(vertexCode, fragmentCode string) *resources.Shader2D {
	if len(ss.shaders2D) >= ss.config.MaxShaderCount {
		core.LogError("RENDER: 2D shader count limit reached (%d)", ss.config.MaxShaderCount)
		return nil
	}
	shader := resources.NewShader2D(ss.pipeline, ss.templates2D, vertexCode, fragmentCode)
	ss.shaders2D[shader] = struct{}{}
	return shader
}

// ReloadMaterialShader recompiles a tracked shader's variants from new
// user snippets, in place. Must run on the GL thread.
func (ss *ShaderSystem) ReloadMaterialShader(shader *resources.MaterialShader, vertexCode, fragmentCode string) {
	if shader == nil {
		return
	}
	if _, ok := ss.materialShaders[shader]; !ok {
		core.LogWarn("RENDER: cannot reload an unknown material shader")
		return
	}
	shader.Recompile(ss.pipeline, ss.templates, vertexCode, fragmentCode)
}

// DestroyMaterialShader releases a user shader. Idempotent on nil.
func (ss *ShaderSystem) DestroyMaterialShader(shader *resources.MaterialShader) {
	if shader == nil {
		return
	}
	if _, ok := ss.materialShaders[shader]; !ok {
		return
	}
	delete(ss.materialShaders, shader)
	shader.Destroy()
}

// ClearFrameState resets every dynamic uniform ring at frame end.
func (ss *ShaderSystem) ClearFrameState() {
	ss.defaultShader.ClearDynamicBuffer()
	for shader := range ss.materialShaders {
		shader.ClearDynamicBuffer()
	}
	ss.default2D.ClearDynamicBuffer()
	for shader := range ss.shaders2D {
		shader.ClearDynamicBuffer()
	}
}

func (ss *ShaderSystem) Shutdown() error {
	for shader := range ss.materialShaders {
		shader.Destroy()
	}
	for shader := range ss.shaders2D {
		shader.Destroy()
	}
	ss.defaultShader.Destroy()
	ss.default2D.Destroy()

	for _, program := range []*opengl.Program{
		ss.builtIn.skyboxGen, ss.builtIn.skyboxDraw, ss.builtIn.equirectangular,
		ss.builtIn.prefilter, ss.builtIn.irradiance, ss.builtIn.brdfLut,
		ss.builtIn.ssao, ss.builtIn.bloomDownsample, ss.builtIn.bloomUpsample,
		ss.builtIn.postComposite,
	} {
		if program != nil {
			program.Destroy()
		}
	}

	if ss.brdfLutTexture != nil {
		ss.brdfLutTexture.Destroy()
	}

	return nil
}
