package systems

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

/** @brief The texture system configuration. */
type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount int
}

// TextureSystem owns every user texture plus the process-wide
// defaults: a white pixel (fallback for nil material textures) and a
// flat normal pixel.
type TextureSystem struct {
	config   *TextureSystemConfig
	pipeline *opengl.Pipeline

	defaultWhite  *opengl.Texture
	defaultNormal *opengl.Texture

	textures map[*opengl.Texture]struct{}
}

func NewTextureSystem(config *TextureSystemConfig, pipeline *opengl.Pipeline) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		return nil, fmt.Errorf("NewTextureSystem - config.MaxTextureCount must be greater than 0")
	}

	ts := &TextureSystem{
		config:   config,
		pipeline: pipeline,
		textures: make(map[*opengl.Texture]struct{}),
	}

	ts.createDefaults()
	return ts, nil
}

func (ts *TextureSystem) createDefaults() {
	white := [4]byte{255, 255, 255, 255}
	ts.defaultWhite = opengl.NewTexture(ts.pipeline,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D,
			InternalFormat: gl.RGBA8,
			Width:          1,
			Height:         1,
			Data:           unsafe.Pointer(&white[0]),
		},
		opengl.TextureParam{
			MinFilter: gl.NEAREST,
			MagFilter: gl.NEAREST,
			SWrap:     gl.REPEAT,
			TWrap:     gl.REPEAT,
		})

	normal := [4]byte{128, 128, 255, 255}
	ts.defaultNormal = opengl.NewTexture(ts.pipeline,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D,
			InternalFormat: gl.RGBA8,
			Width:          1,
			Height:         1,
			Data:           unsafe.Pointer(&normal[0]),
		},
		opengl.TextureParam{
			MinFilter: gl.NEAREST,
			MagFilter: gl.NEAREST,
			SWrap:     gl.REPEAT,
			TWrap:     gl.REPEAT,
		})
}

// DefaultWhite is the texture nil material references resolve to.
func (ts *TextureSystem) DefaultWhite() *opengl.Texture {
	return ts.defaultWhite
}

// DefaultNormal is the flat normal map fallback.
func (ts *TextureSystem) DefaultNormal() *opengl.Texture {
	return ts.defaultNormal
}

// CreateFromImage uploads a decoded image as a mipmapped 2D texture.
// Returns nil on failure; the frame continues.
func (ts *TextureSystem) CreateFromImage(image *resources.Image) *opengl.Texture {
	if image == nil || image.W <= 0 || image.H <= 0 {
		core.LogError("RENDER: cannot create texture from empty image")
		return nil
	}
	if len(ts.textures) >= ts.config.MaxTextureCount {
		core.LogError("RENDER: texture count limit reached (%d)", ts.config.MaxTextureCount)
		return nil
	}

	var data unsafe.Pointer
	if len(image.Data) > 0 {
		data = unsafe.Pointer(&image.Data[0])
	} else if len(image.FloatData) > 0 {
		data = unsafe.Pointer(&image.FloatData[0])
	}

	texture := opengl.NewTexture(ts.pipeline,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D,
			InternalFormat: image.Format.InternalFormat(false),
			Width:          image.W,
			Height:         image.H,
			Data:           data,
			Mipmaps:        true,
		},
		opengl.TextureParam{
			MinFilter: gl.LINEAR_MIPMAP_LINEAR,
			MagFilter: gl.LINEAR,
			SWrap:     gl.REPEAT,
			TWrap:     gl.REPEAT,
		})
	if !texture.IsValid() {
		return nil
	}
	texture.GenerateMipmaps()

	ts.textures[texture] = struct{}{}
	return texture
}

// CreateRenderTarget allocates an un-mipmapped texture for framebuffer
// attachment.
func (ts *TextureSystem) CreateRenderTarget(width, height int, internalFormat uint32) *opengl.Texture {
	texture := opengl.NewTexture(ts.pipeline,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D,
			InternalFormat: internalFormat,
			Width:          width,
			Height:         height,
		},
		opengl.TextureParam{
			MinFilter: gl.LINEAR,
			MagFilter: gl.LINEAR,
			SWrap:     gl.CLAMP_TO_EDGE,
			TWrap:     gl.CLAMP_TO_EDGE,
		})
	if !texture.IsValid() {
		return nil
	}
	ts.textures[texture] = struct{}{}
	return texture
}

// Destroy releases a texture. Idempotent on nil and unknown handles.
func (ts *TextureSystem) Destroy(texture *opengl.Texture) {
	if texture == nil {
		return
	}
	if _, ok := ts.textures[texture]; !ok {
		return
	}
	delete(ts.textures, texture)
	texture.Destroy()
}

func (ts *TextureSystem) Shutdown() error {
	for texture := range ts.textures {
		texture.Destroy()
	}
	ts.textures = make(map[*opengl.Texture]struct{})
	if ts.defaultWhite != nil {
		ts.defaultWhite.Destroy()
	}
	if ts.defaultNormal != nil {
		ts.defaultNormal.Destroy()
	}
	return nil
}
