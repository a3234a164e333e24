package resources

import "github.com/go-gl/gl/v4.6-core/gl"

/** @brief Pixel layout of a decoded image delivered by the loaders. */
type PixelFormat int

const (
	PixelFormatR8 PixelFormat = iota
	PixelFormatRG8
	PixelFormatRGB8
	PixelFormatRGBA8
	PixelFormatR16F
	PixelFormatRG16F
	PixelFormatRGB16F
	PixelFormatRGBA16F
	PixelFormatR32F
	PixelFormatRG32F
	PixelFormatRGB32F
	PixelFormatRGBA32F
)

/**
 * @brief A decoded image. Loaders deliver pixel arrays; the renderer
 * only consumes this in-memory form. 8-bit formats use Data, float
 * formats use FloatData.
 */
type Image struct {
	W, H   int
	Format PixelFormat

	Data      []byte
	FloatData []float32
}

// IsHDR reports whether the image stores float components.
func (img *Image) IsHDR() bool {
	return img.Format >= PixelFormatR16F
}

// Channels returns the component count of the format.
func (f PixelFormat) Channels() int {
	switch f {
	case PixelFormatR8, PixelFormatR16F, PixelFormatR32F:
		return 1
	case PixelFormatRG8, PixelFormatRG16F, PixelFormatRG32F:
		return 2
	case PixelFormatRGB8, PixelFormatRGB16F, PixelFormatRGB32F:
		return 3
	default:
		return 4
	}
}

// BytesPerPixel returns the byte stride of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch {
	case f <= PixelFormatRGBA8:
		return f.Channels()
	case f <= PixelFormatRGBA16F:
		return f.Channels() * 2
	default:
		return f.Channels() * 4
	}
}

// InternalFormat maps the pixel format to a GL sized internal format.
// When highPrecision is set, 8-bit formats promote to 16F so render
// passes into the texture keep HDR range.
func (f PixelFormat) InternalFormat(highPrecision bool) uint32 {
	switch f {
	case PixelFormatR8:
		if highPrecision {
			return gl.R16F
		}
		return gl.R8
	case PixelFormatRG8:
		if highPrecision {
			return gl.RG16F
		}
		return gl.RG8
	case PixelFormatRGB8:
		if highPrecision {
			return gl.RGB16F
		}
		return gl.RGB8
	case PixelFormatRGBA8:
		if highPrecision {
			return gl.RGBA16F
		}
		return gl.RGBA8
	case PixelFormatR16F:
		return gl.R16F
	case PixelFormatRG16F:
		return gl.RG16F
	case PixelFormatRGB16F:
		return gl.RGB16F
	case PixelFormatRGBA16F:
		return gl.RGBA16F
	case PixelFormatR32F:
		return gl.R32F
	case PixelFormatRG32F:
		return gl.RG32F
	case PixelFormatRGB32F:
		return gl.RGB32F
	default:
		return gl.RGBA32F
	}
}
