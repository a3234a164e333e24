package resources

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
)

/**
 * @brief Six square faces of identical size and format. Construction
 * auto-detects the input image layout: equirectangular panorama,
 * horizontal/vertical cross, or horizontal/vertical strip.
 */
type Cubemap struct {
	texture     *opengl.Texture
	framebuffer *opengl.Framebuffer
	pl          *opengl.Pipeline
	faceSize    int
}

// CubemapLayout identifies how the source image packs the six faces.
type CubemapLayout int

const (
	CubemapLayoutUnknown CubemapLayout = iota
	CubemapLayoutEquirectangular
	CubemapLayoutCrossFourByThree
	CubemapLayoutCrossThreeByFour
	CubemapLayoutLineHorizontal
	CubemapLayoutLineVertical
)

// DetectCubemapLayout classifies an image size into a face layout.
func DetectCubemapLayout(w, h int) CubemapLayout {
	switch {
	case w == 2*h:
		return CubemapLayoutEquirectangular
	case w*3 == h*4:
		return CubemapLayoutCrossFourByThree
	case w*4 == h*3:
		return CubemapLayoutCrossThreeByFour
	case w == 6*h:
		return CubemapLayoutLineHorizontal
	case h == 6*w:
		return CubemapLayoutLineVertical
	}
	return CubemapLayoutUnknown
}

// NewCubemap builds a cubemap from a decoded image. The equirectangular
// path renders a reprojection pass with the provided program; the other
// layouts extract or upload faces directly.
func NewCubemap(pl *opengl.Pipeline, image *Image, programEquirectangular *opengl.Program) *Cubemap {
	cm := &Cubemap{pl: pl}

	switch DetectCubemapLayout(image.W, image.H) {
	case CubemapLayoutEquirectangular:
		cm.loadEquirectangular(image, programEquirectangular)
	case CubemapLayoutCrossFourByThree:
		cm.loadCross(image, image.W/4, crossFourByThreePositions)
	case CubemapLayoutCrossThreeByFour:
		cm.loadCross(image, image.W/3, crossThreeByFourPositions)
	case CubemapLayoutLineHorizontal:
		cm.loadLineHorizontal(image)
	case CubemapLayoutLineVertical:
		cm.loadLineVertical(image)
	default:
		core.LogError("RENDER: unsupported cubemap image layout %dx%d", image.W, image.H)
	}

	return cm
}

// NewEmptyCubemap allocates an uninitialized cubemap, e.g. as the
// target of procedural skybox generation or probe convolution.
func NewEmptyCubemap(pl *opengl.Pipeline, faceSize int, internalFormat uint32, mipmaps bool) *Cubemap {
	cm := &Cubemap{pl: pl, faceSize: faceSize}
	minFilter := int32(gl.LINEAR)
	if mipmaps {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	cm.texture = opengl.NewTexture(pl,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_CUBE_MAP,
			InternalFormat: internalFormat,
			Width:          faceSize,
			Height:         faceSize,
			Mipmaps:        mipmaps,
		},
		opengl.TextureParam{
			MinFilter: minFilter,
			MagFilter: gl.LINEAR,
			SWrap:     gl.CLAMP_TO_EDGE,
			TWrap:     gl.CLAMP_TO_EDGE,
			RWrap:     gl.CLAMP_TO_EDGE,
		})
	return cm
}

func (cm *Cubemap) IsValid() bool {
	return cm != nil && cm.texture.IsValid()
}

func (cm *Cubemap) Texture() *opengl.Texture {
	return cm.texture
}

func (cm *Cubemap) FaceSize() int {
	return cm.faceSize
}

func (cm *Cubemap) Destroy() {
	if cm == nil {
		return
	}
	if cm.framebuffer != nil {
		cm.framebuffer.Destroy()
	}
	if cm.texture != nil {
		cm.texture.Destroy()
	}
}

// GenerateSkybox renders a procedural sky into all six faces with the
// given generator program.
func (cm *Cubemap) GenerateSkybox(skybox Skybox, programSkyboxGen *opengl.Program) {
	if !cm.IsValid() {
		core.LogError("RENDER: cannot generate skybox into invalid cubemap")
		return
	}

	if cm.framebuffer == nil || !cm.framebuffer.IsValid() {
		cm.framebuffer = opengl.NewFramebuffer(cm.pl, []*opengl.Texture{cm.texture}, nil)
	}

	pl := cm.pl
	pl.BindFramebuffer(cm.framebuffer)
	pl.SetViewportToFramebuffer(cm.framebuffer)
	pl.SetDepthTest(opengl.DepthTestDisabled)
	pl.SetCullMode(opengl.CullNone)
	pl.SetBlend(opengl.BlendOpaque)

	pl.UseProgram(programSkyboxGen)
	pl.SetUniformFloat3(1, skybox.SunDirection.Neg().Normalized())
	pl.SetUniformFloat3(2, skybox.SkyColorTop.ToVec3())
	pl.SetUniformFloat3(3, skybox.SkyColorHorizon.ToVec3())
	pl.SetUniformFloat3(4, skybox.SunColor.ToVec3())
	pl.SetUniformFloat3(5, skybox.GroundColor.ToVec3())
	pl.SetUniformFloat1(6, skybox.SunSize)
	pl.SetUniformFloat1(7, skybox.Haze)
	pl.SetUniformFloat1(8, skybox.Energy)
	hdr := int32(0)
	if cm.texture.IsHDR() {
		hdr = 1
	}
	pl.SetUniformInt1(9, hdr)

	for i := 0; i < 6; i++ {
		cm.framebuffer.SetColorAttachmentTarget(0, 0, opengl.CubeFace(i))
		pl.SetUniformMat4(0, CubeView(i, math.NewVec3Zero()).Mul(CubeProj(0.25, 2.5)))
		pl.Draw(gl.TRIANGLES, 36)
	}

	pl.BindFramebuffer(nil)
}

/* --- Layout loaders --- */

func (cm *Cubemap) loadEquirectangular(image *Image, programEquirectangular *opengl.Program) {
	cm.faceSize = image.H

	// The destination uses the high-precision variant of the source
	// format so the reprojection keeps HDR range.
	cm.texture = cm.allocCubeTexture(image.Format.InternalFormat(true))

	panorama := opengl.NewTexture(cm.pl,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_2D,
			InternalFormat: image.Format.InternalFormat(false),
			Width:          image.W,
			Height:         image.H,
			Data:           imagePointer(image),
		},
		opengl.TextureParam{
			MinFilter: gl.LINEAR,
			MagFilter: gl.LINEAR,
			SWrap:     gl.CLAMP_TO_EDGE,
			TWrap:     gl.CLAMP_TO_EDGE,
		})
	defer panorama.Destroy()

	fb := opengl.NewFramebuffer(cm.pl, []*opengl.Texture{cm.texture}, nil)
	defer fb.Destroy()

	pl := cm.pl
	pl.BindFramebuffer(fb)
	pl.SetViewportToFramebuffer(fb)
	pl.SetDepthTest(opengl.DepthTestDisabled)
	pl.SetCullMode(opengl.CullNone)
	pl.SetBlend(opengl.BlendOpaque)

	pl.BindTexture(0, panorama)
	pl.UseProgram(programEquirectangular)

	for i := 0; i < 6; i++ {
		fb.SetColorAttachmentTarget(0, 0, opengl.CubeFace(i))
		pl.SetUniformInt1(0, int32(i))
		pl.Draw(gl.TRIANGLES, 3)
	}

	pl.BindFramebuffer(nil)
}

type facePosition struct {
	face opengl.CubeFace
	x, y int
}

// Horizontal cross (4 columns by 3 rows):
//      [+Y]
// [-X] [+Z] [+X] [-Z]
//      [-Y]
var crossFourByThreePositions = [6]facePosition{
	{opengl.CubeFacePositiveY, 1, 0},
	{opengl.CubeFaceNegativeX, 0, 1},
	{opengl.CubeFacePositiveZ, 1, 1},
	{opengl.CubeFacePositiveX, 2, 1},
	{opengl.CubeFaceNegativeZ, 3, 1},
	{opengl.CubeFaceNegativeY, 1, 2},
}

// Vertical cross (3 columns by 4 rows):
//      [+Y]
// [-X] [+Z] [+X]
//      [-Y]
//      [-Z]
var crossThreeByFourPositions = [6]facePosition{
	{opengl.CubeFacePositiveY, 1, 0},
	{opengl.CubeFaceNegativeX, 0, 1},
	{opengl.CubeFacePositiveZ, 1, 1},
	{opengl.CubeFacePositiveX, 2, 1},
	{opengl.CubeFaceNegativeY, 1, 2},
	{opengl.CubeFaceNegativeZ, 1, 3},
}

func (cm *Cubemap) loadCross(image *Image, faceSize int, positions [6]facePosition) {
	cm.faceSize = faceSize
	cm.texture = cm.allocCubeTexture(image.Format.InternalFormat(false))

	bpp := image.Format.BytesPerPixel()
	faceBuffer := make([]byte, faceSize*faceSize*bpp)
	pixels := imageBytes(image)

	for _, pos := range positions {
		if (pos.x+1)*faceSize > image.W || (pos.y+1)*faceSize > image.H {
			continue
		}
		for y := 0; y < faceSize; y++ {
			srcOffset := ((pos.y*faceSize+y)*image.W + pos.x*faceSize) * bpp
			dstOffset := y * faceSize * bpp
			copy(faceBuffer[dstOffset:dstOffset+faceSize*bpp], pixels[srcOffset:])
		}
		cm.texture.Upload(unsafe.Pointer(&faceBuffer[0]), opengl.UploadRegion{
			Width:    int32(faceSize),
			Height:   int32(faceSize),
			CubeFace: pos.face,
		})
	}
}

func (cm *Cubemap) loadLineHorizontal(image *Image) {
	faceSize := image.W / 6
	cm.faceSize = faceSize
	cm.texture = cm.allocCubeTexture(image.Format.InternalFormat(false))

	bpp := image.Format.BytesPerPixel()
	faceBuffer := make([]byte, faceSize*faceSize*bpp)
	pixels := imageBytes(image)

	for i := 0; i < 6; i++ {
		for y := 0; y < faceSize; y++ {
			srcOffset := (y*image.W + i*faceSize) * bpp
			dstOffset := y * faceSize * bpp
			copy(faceBuffer[dstOffset:dstOffset+faceSize*bpp], pixels[srcOffset:])
		}
		cm.texture.Upload(unsafe.Pointer(&faceBuffer[0]), opengl.UploadRegion{
			Width:    int32(faceSize),
			Height:   int32(faceSize),
			CubeFace: opengl.CubeFace(i),
		})
	}
}

func (cm *Cubemap) loadLineVertical(image *Image) {
	faceSize := image.H / 6
	cm.faceSize = faceSize
	cm.texture = cm.allocCubeTexture(image.Format.InternalFormat(false))

	bpp := image.Format.BytesPerPixel()
	pixels := imageBytes(image)

	for i := 0; i < 6; i++ {
		offset := i * faceSize * image.W * bpp
		cm.texture.Upload(unsafe.Pointer(&pixels[offset]), opengl.UploadRegion{
			Width:    int32(faceSize),
			Height:   int32(faceSize),
			CubeFace: opengl.CubeFace(i),
		})
	}
}

func (cm *Cubemap) allocCubeTexture(internalFormat uint32) *opengl.Texture {
	return opengl.NewTexture(cm.pl,
		opengl.TextureConfig{
			Target:         gl.TEXTURE_CUBE_MAP,
			InternalFormat: internalFormat,
			Width:          cm.faceSize,
			Height:         cm.faceSize,
		},
		opengl.TextureParam{
			MinFilter: gl.LINEAR,
			MagFilter: gl.LINEAR,
			SWrap:     gl.CLAMP_TO_EDGE,
			TWrap:     gl.CLAMP_TO_EDGE,
			RWrap:     gl.CLAMP_TO_EDGE,
		})
}

// imageBytes returns raw bytes for upload. Float images targeting a
// 16F internal format are converted to half-float bits with the clamp
// policy applied per component; 32F images upload their bits as-is.
func imageBytes(image *Image) []byte {
	if len(image.Data) > 0 {
		return image.Data
	}
	if image.Format >= PixelFormatR32F {
		return unsafe.Slice((*byte)(unsafe.Pointer(&image.FloatData[0])), len(image.FloatData)*4)
	}
	half := opengl.HalfSlice(image.FloatData)
	out := make([]byte, len(half)*2)
	for i, h := range half {
		out[i*2] = byte(h)
		out[i*2+1] = byte(h >> 8)
	}
	return out
}

func imagePointer(image *Image) unsafe.Pointer {
	if len(image.Data) > 0 {
		return unsafe.Pointer(&image.Data[0])
	}
	if len(image.FloatData) > 0 {
		return unsafe.Pointer(&image.FloatData[0])
	}
	return nil
}
