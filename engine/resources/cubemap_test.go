package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCubemapLayout(t *testing.T) {
	cases := []struct {
		w, h   int
		layout CubemapLayout
	}{
		{2048, 1024, CubemapLayoutEquirectangular},
		{1024, 768, CubemapLayoutCrossFourByThree},
		{768, 1024, CubemapLayoutCrossThreeByFour},
		{1536, 256, CubemapLayoutLineHorizontal},
		{256, 1536, CubemapLayoutLineVertical},
		{640, 400, CubemapLayoutUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.layout, DetectCubemapLayout(c.w, c.h), "%dx%d", c.w, c.h)
	}
}

func TestPixelFormatProperties(t *testing.T) {
	assert.Equal(t, 4, PixelFormatRGBA8.BytesPerPixel())
	assert.Equal(t, 3, PixelFormatRGB8.BytesPerPixel())
	assert.Equal(t, 8, PixelFormatRGBA16F.BytesPerPixel())
	assert.Equal(t, 16, PixelFormatRGBA32F.BytesPerPixel())
	assert.Equal(t, 1, PixelFormatR8.Channels())

	hdr := Image{Format: PixelFormatRGB16F}
	ldr := Image{Format: PixelFormatRGB8}
	assert.True(t, hdr.IsHDR())
	assert.False(t, ldr.IsHDR())
}
