package resources

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
)

/** @brief Number of user texture sampler slots per shader. */
const ShaderSamplerCount = 4

// Built-in GLSL sampler uniform names and their fixed texture units
// (31 down to 28).
var samplerNames = [ShaderSamplerCount]string{"Texture0", "Texture1", "Texture2", "Texture3"}
var samplerBindings = [ShaderSamplerCount]int{31, 30, 29, 28}

// Uniform block names and their fixed binding points.
var uniformNames = [2]string{"StaticBuffer", "DynamicBuffer"}
var uniformBindings = [2]int{opengl.BindingUniformStatic, opengl.BindingUniformDynamic}

// TextureArray carries the texture bound to each sampler slot at
// submit time; draw records cache it so late rebinds do not affect
// already-submitted draws.
type TextureArray [ShaderSamplerCount]*opengl.Texture

type samplerSlot struct {
	texture *opengl.Texture
	exists  bool
}

type dynamicRange struct {
	offset int
	size   int
}

type dynamicBuffer struct {
	ranges            []dynamicRange
	currentRangeIndex int
	currentOffset     int
	buffer            *opengl.Buffer
}

/**
 * @brief Shared machinery of shader-variant sets: N compiled programs
 * over one user vertex/fragment snippet, four optional texture slots,
 * and a static plus a frame-local dynamic uniform block.
 */
type ShaderOverride struct {
	pl        *opengl.Pipeline
	programs  []*opengl.Program
	textures  [ShaderSamplerCount]samplerSlot
	dynamic   dynamicBuffer
	staticBuf *opengl.Buffer
}

// initShaderOverride introspects the compiled programs: assigns the
// fixed uniform-block bindings, sizes the static and dynamic buffers
// to the largest declared block, and discovers which sampler names
// resolved to real uniforms.
func (so *ShaderOverride) initShaderOverride(pl *opengl.Pipeline, programs []*opengl.Program) {
	so.pl = pl
	so.programs = programs

	var bufferSize [2]int
	for _, program := range programs {
		for j := range uniformNames {
			blockIndex := program.GetUniformBlockIndex(uniformNames[j])
			if blockIndex >= 0 {
				program.SetUniformBlockBinding(blockIndex, uniformBindings[j])
				if size := program.GetUniformBlockSize(blockIndex); size > bufferSize[j] {
					bufferSize[j] = size
				}
			}
		}
	}

	if bufferSize[0] > 0 {
		so.staticBuf = opengl.NewBuffer(pl, gl.UNIFORM_BUFFER, bufferSize[0], nil, gl.DYNAMIC_DRAW)
	}

	if bufferSize[1] > 0 {
		alignment := pl.UniformBufferOffsetAlignment()
		alignedSize := math.AlignUp(8*bufferSize[1], alignment)
		so.dynamic.buffer = opengl.NewBuffer(pl, gl.UNIFORM_BUFFER, alignedSize, nil, gl.DYNAMIC_DRAW)
		so.dynamic.ranges = make([]dynamicRange, 0, 8)
	}

	for _, program := range programs {
		pl.UseProgram(program)
		for j := 0; j < ShaderSamplerCount; j++ {
			loc := program.GetUniformLocation(samplerNames[j])
			if loc >= 0 {
				pl.SetUniformInt1(loc, int32(samplerBindings[j]))
				so.textures[j].exists = true
			}
		}
	}
}

// Program returns the compiled program of one variant.
func (so *ShaderOverride) Program(variant int) *opengl.Program {
	return so.programs[variant]
}

// GetTextures snapshots the currently assigned slot textures.
func (so *ShaderOverride) GetTextures() TextureArray {
	var out TextureArray
	for i := 0; i < ShaderSamplerCount; i++ {
		out[i] = so.textures[i].texture
	}
	return out
}

// SetTexture assigns a texture to a sampler slot. Binding to a slot
// that no variant declares warns and no-ops.
func (so *ShaderOverride) SetTexture(slot int, texture *opengl.Texture) {
	if slot < 0 || slot >= ShaderSamplerCount {
		core.LogError("RENDER: invalid shader texture slot %d", slot)
		return
	}
	if !so.textures[slot].exists {
		core.LogWarn("RENDER: shader has no sampler %s; texture ignored", samplerNames[slot])
		return
	}
	so.textures[slot].texture = texture
}

// UpdateStaticBuffer uploads into the frame-persistent uniform block.
func (so *ShaderOverride) UpdateStaticBuffer(offset int, data []byte) {
	if !so.staticBuf.IsValid() {
		core.LogError("RENDER: shader declares no StaticBuffer uniform block")
		return
	}
	if len(data) == 0 {
		return
	}
	if offset+len(data) > so.staticBuf.Size() {
		core.LogError("RENDER: static uniform upload of %d bytes at offset %d exceeds block size %d",
			len(data), offset, so.staticBuf.Size())
		return
	}
	so.staticBuf.Upload(offset, len(data), unsafe.Pointer(&data[0]))
}

// UpdateDynamicBuffer appends an aligned range holding data to the
// frame-local uniform ring and records it for later binding. The
// buffer grows geometrically up to the GPU uniform-buffer limit;
// overflow drops the call.
func (so *ShaderOverride) UpdateDynamicBuffer(data []byte) {
	if !so.dynamic.buffer.IsValid() {
		core.LogWarn("RENDER: shader declares no DynamicBuffer uniform block")
		return
	}
	if len(data) == 0 || len(data)%16 != 0 /* std140 requirement */ {
		core.LogWarn("RENDER: dynamic uniform data size must be a non-zero multiple of 16 (got %d)", len(data))
		return
	}

	alignment := so.pl.UniformBufferOffsetAlignment()
	alignedOffset := math.AlignUp(so.dynamic.currentOffset, alignment)

	requiredSize := alignedOffset + len(data)
	currentSize := so.dynamic.buffer.Size()
	maxUBOSize := so.pl.MaxUniformBufferSize()

	if requiredSize > currentSize {
		newSize := math.AlignUp(2*currentSize, alignment)
		for newSize < requiredSize {
			newSize = math.AlignUp(newSize*2, alignment)
		}
		if newSize > maxUBOSize {
			core.LogError("RENDER: dynamic uniform buffer would grow to %d bytes, over the GPU limit of %d",
				newSize, maxUBOSize)
			return
		}
		so.dynamic.buffer.Realloc(newSize, true)
	}

	so.dynamic.currentRangeIndex = len(so.dynamic.ranges)
	so.dynamic.ranges = append(so.dynamic.ranges, dynamicRange{offset: alignedOffset, size: len(data)})

	so.dynamic.buffer.Upload(alignedOffset, len(data), unsafe.Pointer(&data[0]))
	so.dynamic.currentOffset = alignedOffset + len(data)
}

// DynamicRangeIndex returns the index of the most recent dynamic
// range, recorded into draw records at submit time.
func (so *ShaderOverride) DynamicRangeIndex() int {
	if !so.dynamic.buffer.IsValid() || len(so.dynamic.ranges) == 0 {
		return -1
	}
	return so.dynamic.currentRangeIndex
}

// DynamicRangeOffset exposes the byte offset of a recorded range.
func (so *ShaderOverride) DynamicRangeOffset(index int) int {
	return so.dynamic.ranges[index].offset
}

// ClearDynamicBuffer resets the ring at frame end.
func (so *ShaderOverride) ClearDynamicBuffer() {
	so.dynamic.currentOffset = 0
	so.dynamic.currentRangeIndex = 0
	so.dynamic.ranges = so.dynamic.ranges[:0]
}

// BindUniforms binds the static block and, when a range was recorded
// for the current draw, the matching dynamic sub-range.
func (so *ShaderOverride) BindUniforms(dynamicRangeIndex int) {
	if so.staticBuf.IsValid() {
		so.pl.BindUniform(uniformBindings[0], so.staticBuf)
	}
	if so.dynamic.buffer.IsValid() && dynamicRangeIndex >= 0 && dynamicRangeIndex < len(so.dynamic.ranges) {
		r := so.dynamic.ranges[dynamicRangeIndex]
		so.pl.BindUniformRange(uniformBindings[1], so.dynamic.buffer, r.offset, r.size)
	}
}

// BindTextures binds the snapshot textures to their fixed units,
// substituting the default texture for empty slots.
func (so *ShaderOverride) BindTextures(textures TextureArray, defaultTexture *opengl.Texture) {
	for i := 0; i < ShaderSamplerCount; i++ {
		if !so.textures[i].exists {
			continue
		}
		tex := textures[i]
		if tex == nil {
			tex = defaultTexture
		}
		so.pl.BindTexture(samplerBindings[i], tex)
	}
}

func (so *ShaderOverride) Destroy() {
	for _, program := range so.programs {
		program.Destroy()
	}
	so.programs = nil
	if so.staticBuf != nil {
		so.staticBuf.Destroy()
	}
	if so.dynamic.buffer != nil {
		so.dynamic.buffer.Destroy()
	}
}

// insertUserCode replaces the marker in a template with user code.
// A nil/empty snippet keeps the default shader body.
func insertUserCode(source, marker, code string) string {
	if code == "" {
		return source
	}
	return strings.Replace(source, marker, code, 1)
}

/* ------------------------------------------
 * Material shader (scene variants)
 * ------------------------------------------ */

/** @brief Scene shader variants of a material shader. */
const (
	SceneLit = iota
	SceneUnlit
	SceneWireframe
	ScenePrepass
	SceneShadow
	SceneVariantCount
)

// MaterialShaderTemplates holds the built-in template sources the
// user snippets are spliced into.
type MaterialShaderTemplates struct {
	SceneVert          string
	SceneLitFrag       string
	SceneUnlitFrag     string
	SceneWireframeGeom string
	ScenePrepassVert   string
	ScenePrepassFrag   string
	SceneShadowVert    string
	SceneShadowFrag    string
}

/**
 * @brief A material shader: one program per scene render variant, all
 * sharing the same user vertex/fragment snippet.
 */
type MaterialShader struct {
	ShaderOverride
}

const (
	vertexMarker   = "#define vertex()"
	fragmentMarker = "#define fragment()"
)

// NewMaterialShader splices the user snippets into every template and
// compiles the five scene variants. Empty snippets produce the
// built-in shader behavior.
func NewMaterialShader(pl *opengl.Pipeline, templates MaterialShaderTemplates, vertexCode, fragmentCode string) *MaterialShader {
	ms := &MaterialShader{}

	vertScene := insertUserCode(templates.SceneVert, vertexMarker, vertexCode)
	fragSceneLit := insertUserCode(templates.SceneLitFrag, fragmentMarker, fragmentCode)
	fragSceneUnlit := insertUserCode(templates.SceneUnlitFrag, fragmentMarker, fragmentCode)
	vertPrepass := insertUserCode(templates.ScenePrepassVert, vertexMarker, vertexCode)
	fragPrepass := insertUserCode(templates.ScenePrepassFrag, fragmentMarker, fragmentCode)
	vertShadow := insertUserCode(templates.SceneShadowVert, vertexMarker, vertexCode)
	fragShadow := insertUserCode(templates.SceneShadowFrag, fragmentMarker, fragmentCode)

	programs := make([]*opengl.Program, SceneVariantCount)

	programs[SceneLit] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vertScene),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, fragSceneLit),
	)
	programs[SceneUnlit] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vertScene),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, fragSceneUnlit),
	)
	programs[SceneWireframe] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vertScene),
		opengl.NewShaderStage(gl.GEOMETRY_SHADER, templates.SceneWireframeGeom),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, fragSceneUnlit, "WIREFRAME"),
	)
	programs[ScenePrepass] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vertPrepass),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, fragPrepass),
	)
	programs[SceneShadow] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vertShadow, "SHADOW"),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, fragShadow, "SHADOW"),
	)

	for i, program := range programs {
		program.SetStorageBlockBinding("SharedBuffer", opengl.BindingStorageShared)
		program.SetStorageBlockBinding("UniqueBuffer", opengl.BindingStorageUnique)
		program.SetStorageBlockBinding("BoneBuffer", opengl.BindingStorageBones)
		program.SetStorageBlockBinding("LightBuffer", opengl.BindingStorageLights)
		program.SetStorageBlockBinding("ShadowBuffer", opengl.BindingStorageShadows)
		if !program.IsValid() {
			core.LogError("RENDER: material shader variant %d failed to build", i)
		}
	}

	ms.initShaderOverride(pl, programs)
	return ms
}

// ProgramFromShadingMode resolves the scene variant of a shading mode.
func (ms *MaterialShader) ProgramFromShadingMode(shading ShadingMode) *opengl.Program {
	switch shading {
	case ShadingUnlit:
		return ms.Program(SceneUnlit)
	case ShadingWireframe:
		return ms.Program(SceneWireframe)
	default:
		return ms.Program(SceneLit)
	}
}

// Recompile rebuilds every variant from new user snippets in place,
// so materials holding this shader pick up the change without being
// touched. Assigned slot textures survive when the new variants still
// declare their sampler.
func (ms *MaterialShader) Recompile(pl *opengl.Pipeline, templates MaterialShaderTemplates, vertexCode, fragmentCode string) {
	kept := ms.GetTextures()
	ms.ShaderOverride.Destroy()

	rebuilt := NewMaterialShader(pl, templates, vertexCode, fragmentCode)
	ms.ShaderOverride = rebuilt.ShaderOverride

	for slot, texture := range kept {
		if texture != nil && ms.textures[slot].exists {
			ms.textures[slot].texture = texture
		}
	}
}

/* ------------------------------------------
 * 2D shader (shape/text variants)
 * ------------------------------------------ */

/** @brief 2D shader variants. */
const (
	ShapeColor = iota
	ShapeTexture
	TextBitmap
	TextSDF
	Shader2DVariantCount
)

// Shader2DTemplates holds the built-in 2D template sources.
type Shader2DTemplates struct {
	ShapeVert string
	ShapeFrag string
	TextFrag  string
}

/**
 * @brief The 2D equivalent of MaterialShader, covering shape and text
 * rendering variants with the same override machinery.
 */
type Shader2D struct {
	ShaderOverride
}

func NewShader2D(pl *opengl.Pipeline, templates Shader2DTemplates, vertexCode, fragmentCode string) *Shader2D {
	s := &Shader2D{}

	vert := insertUserCode(templates.ShapeVert, vertexMarker, vertexCode)
	frag := insertUserCode(templates.ShapeFrag, fragmentMarker, fragmentCode)
	textFrag := insertUserCode(templates.TextFrag, fragmentMarker, fragmentCode)

	programs := make([]*opengl.Program, Shader2DVariantCount)

	programs[ShapeColor] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vert),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, frag),
	)
	programs[ShapeTexture] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vert),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, frag, "TEXTURED"),
	)
	programs[TextBitmap] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vert),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, textFrag, "BITMAP"),
	)
	programs[TextSDF] = opengl.NewProgram(
		opengl.NewShaderStage(gl.VERTEX_SHADER, vert),
		opengl.NewShaderStage(gl.FRAGMENT_SHADER, textFrag, "SDF"),
	)

	for i, program := range programs {
		if !program.IsValid() {
			core.LogError("RENDER: 2D shader variant %d failed to build", i)
		}
	}

	s.initShaderOverride(pl, programs)
	return s
}
