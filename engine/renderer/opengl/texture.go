package opengl

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
)

// CubeFace identifies one face of a cubemap texture.
type CubeFace int

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
)

// TextureConfig describes the storage of a texture.
type TextureConfig struct {
	Target         uint32 // GL_TEXTURE_2D, GL_TEXTURE_CUBE_MAP or GL_TEXTURE_2D_ARRAY
	InternalFormat uint32
	Width          int
	Height         int
	Data           unsafe.Pointer // optional initial pixels (2D only)
	Mipmaps        bool
	MipLevels      int // explicit level count; 0 derives from size when Mipmaps is set
}

// TextureParam describes the sampling state of a texture.
type TextureParam struct {
	MinFilter int32
	MagFilter int32
	SWrap     int32
	TWrap     int32
	RWrap     int32
}

// Texture owns one GL texture object.
type Texture struct {
	pl             *Pipeline
	id             uint32
	target         uint32
	width          int
	height         int
	internalFormat uint32
	mipLevels      int
}

// UploadRegion describes a sub-rectangle upload, optionally into a
// specific mip level or cube face.
type UploadRegion struct {
	X, Y          int32
	Width, Height int32
	Level         int32
	CubeFace      CubeFace
}

func NewTexture(pl *Pipeline, config TextureConfig, param TextureParam) *Texture {
	t := &Texture{
		pl:             pl,
		target:         config.Target,
		width:          config.Width,
		height:         config.Height,
		internalFormat: config.InternalFormat,
		mipLevels:      1,
	}

	if config.Width <= 0 || config.Height <= 0 {
		core.LogError("GPU: invalid texture size %dx%d", config.Width, config.Height)
		return t
	}
	if config.Target != gl.TEXTURE_2D && config.Target != gl.TEXTURE_CUBE_MAP && config.Target != gl.TEXTURE_2D_ARRAY {
		core.LogError("GPU: invalid texture target 0x%x", config.Target)
		return t
	}

	if config.Mipmaps {
		t.mipLevels = config.MipLevels
		if t.mipLevels <= 0 {
			t.mipLevels = 1 + int(math32.Floor(math32.Log2(float32(maxInt(config.Width, config.Height)))))
		}
	}

	gl.GenTextures(1, &t.id)
	if t.id == 0 {
		core.LogError("GPU: failed to create texture object")
		return t
	}

	gl.BindTexture(t.target, t.id)

	switch t.target {
	case gl.TEXTURE_2D:
		gl.TexStorage2D(gl.TEXTURE_2D, int32(t.mipLevels), t.internalFormat, int32(t.width), int32(t.height))
		if config.Data != nil {
			format, pixelType := pixelTransferFormat(t.internalFormat)
			gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.width), int32(t.height), format, pixelType, config.Data)
		}
	case gl.TEXTURE_CUBE_MAP:
		gl.TexStorage2D(gl.TEXTURE_CUBE_MAP, int32(t.mipLevels), t.internalFormat, int32(t.width), int32(t.height))
	case gl.TEXTURE_2D_ARRAY:
		// Height is the layer count; every slice is Width x Width
		// (the shadow atlas passes its resolution and slice count).
		gl.TexStorage3D(gl.TEXTURE_2D_ARRAY, int32(t.mipLevels), t.internalFormat, int32(t.width), int32(t.width), int32(t.height))
	}

	if gl.GetError() != gl.NO_ERROR {
		core.LogError("GPU: failed to allocate texture storage")
		gl.DeleteTextures(1, &t.id)
		t.id = 0
		gl.BindTexture(t.target, 0)
		return t
	}

	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, param.MinFilter)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, param.MagFilter)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, param.SWrap)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, param.TWrap)
	if param.RWrap != 0 {
		gl.TexParameteri(t.target, gl.TEXTURE_WRAP_R, param.RWrap)
	}

	gl.BindTexture(t.target, 0)
	// The pipeline's texture cache is unaware of the raw bind above.
	pl.invalidateTextureCache(t.id)

	return t
}

func (t *Texture) Destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func (t *Texture) IsValid() bool {
	return t != nil && t.id != 0
}

func (t *Texture) ID() uint32 {
	return t.id
}

func (t *Texture) Target() uint32 {
	return t.target
}

func (t *Texture) Width() int {
	return t.width
}

func (t *Texture) Height() int {
	return t.height
}

func (t *Texture) MipLevels() int {
	return t.mipLevels
}

func (t *Texture) InternalFormat() uint32 {
	return t.internalFormat
}

// IsHDR reports whether the texture stores float components.
func (t *Texture) IsHDR() bool {
	switch t.internalFormat {
	case gl.R16F, gl.RG16F, gl.RGB16F, gl.RGBA16F,
		gl.R32F, gl.RG32F, gl.RGB32F, gl.RGBA32F:
		return true
	}
	return false
}

// Upload writes pixels into a region of the texture. For cubemaps the
// region selects the face.
func (t *Texture) Upload(data unsafe.Pointer, region UploadRegion) {
	if !t.IsValid() {
		core.LogError("GPU: cannot upload to invalid texture")
		return
	}
	if data == nil {
		core.LogError("GPU: texture upload data cannot be null")
		return
	}

	format, pixelType := pixelTransferFormat(t.internalFormat)

	gl.BindTexture(t.target, t.id)
	switch t.target {
	case gl.TEXTURE_2D:
		gl.TexSubImage2D(gl.TEXTURE_2D, region.Level, region.X, region.Y,
			region.Width, region.Height, format, pixelType, data)
	case gl.TEXTURE_CUBE_MAP:
		face := uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X) + uint32(region.CubeFace)
		gl.TexSubImage2D(face, region.Level, region.X, region.Y,
			region.Width, region.Height, format, pixelType, data)
	default:
		core.LogError("GPU: unsupported upload target 0x%x", t.target)
	}
	gl.BindTexture(t.target, 0)
	t.pl.invalidateTextureCache(t.id)

	if gl.GetError() != gl.NO_ERROR {
		core.LogError("GPU: texture upload failed")
	}
}

// GenerateMipmaps builds the full mip chain from level 0.
func (t *Texture) GenerateMipmaps() {
	if !t.IsValid() {
		return
	}
	gl.BindTexture(t.target, t.id)
	gl.GenerateMipmap(t.target)
	gl.BindTexture(t.target, 0)
	t.pl.invalidateTextureCache(t.id)
}

// invalidateTextureCache forgets cache entries that referenced a
// texture which was re-bound outside the pipeline.
func (p *Pipeline) invalidateTextureCache(id uint32) {
	for i := range p.currentTextures {
		if p.currentTextures[i] == id {
			p.currentTextures[i] = 0
		}
	}
}

func pixelTransferFormat(internalFormat uint32) (uint32, uint32) {
	switch internalFormat {
	case gl.R8:
		return gl.RED, gl.UNSIGNED_BYTE
	case gl.RG8:
		return gl.RG, gl.UNSIGNED_BYTE
	case gl.RGB8, gl.SRGB8:
		return gl.RGB, gl.UNSIGNED_BYTE
	case gl.RGBA8, gl.SRGB8_ALPHA8:
		return gl.RGBA, gl.UNSIGNED_BYTE
	case gl.R16F:
		return gl.RED, gl.HALF_FLOAT
	case gl.RG16F:
		return gl.RG, gl.HALF_FLOAT
	case gl.RGB16F:
		return gl.RGB, gl.HALF_FLOAT
	case gl.RGBA16F:
		return gl.RGBA, gl.HALF_FLOAT
	case gl.R32F:
		return gl.RED, gl.FLOAT
	case gl.RG32F:
		return gl.RG, gl.FLOAT
	case gl.RGB32F:
		return gl.RGB, gl.FLOAT
	case gl.RGBA32F:
		return gl.RGBA, gl.FLOAT
	case gl.DEPTH_COMPONENT16, gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT32F:
		return gl.DEPTH_COMPONENT, gl.FLOAT
	}
	core.LogError("GPU: unsupported internal format 0x%x, assuming RGBA8", internalFormat)
	return gl.RGBA, gl.UNSIGNED_BYTE
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

/* --- Half-float conversion --- */

// Float16 maximum finite magnitude; larger values are clamped rather
// than producing infinities in shadow/HDR data.
const maxHalfFloat float32 = 65504.0

// Float32ToHalf converts a float32 to IEEE-754 binary16 bits, clamping
// out-of-range finite magnitudes to ±65504.
func Float32ToHalf(f float32) uint16 {
	if f > maxHalfFloat {
		f = maxHalfFloat
	} else if f < -maxHalfFloat {
		f = -maxHalfFloat
	}

	bits := math32.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xff) - 127 + 15
	mant := bits & 0x7fffff

	if exp <= 0 {
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint32(14 - exp)
		return sign | uint16(mant>>shift)
	}
	if exp >= 0x1f {
		return sign | 0x7bff
	}
	return sign | uint16(exp<<10) | uint16(mant>>13)
}

// HalfSlice converts a float32 slice to half-float bits, applying the
// clamp policy per component.
func HalfSlice(src []float32) []uint16 {
	out := make([]uint16, len(src))
	for i, f := range src {
		out[i] = Float32ToHalf(f)
	}
	return out
}
