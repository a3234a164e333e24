package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/spaghettifunk/hyperion/engine/resources"
)

// LoadImage decodes a file into RGBA8 pixels. The registered stdlib
// and x/image decoders cover png, jpeg, bmp and tiff.
func LoadImage(path string) (*resources.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	bounds := decoded.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	out := &resources.Image{
		W:      w,
		H:      h,
		Format: resources.PixelFormatRGBA8,
		Data:   make([]byte, w*h*4),
	}

	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := decoded.At(x, y).RGBA()
			out.Data[offset+0] = byte(r >> 8)
			out.Data[offset+1] = byte(g >> 8)
			out.Data[offset+2] = byte(b >> 8)
			out.Data[offset+3] = byte(a >> 8)
			offset += 4
		}
	}

	return out, nil
}
