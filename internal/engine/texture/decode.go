package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an image file body. TGA has no magic number, so it is
// selected by extension; everything else goes through image.Decode.
func Decode(name string, data []byte) (*image.RGBA, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return ImageToRGBA(img), nil
}

// DecodeFile reads and decodes an image from disk.
func DecodeFile(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// Checkerboard returns a size×size opaque black and white checkerboard
// with checks squares along each edge.
func Checkerboard(size, checks int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/max(checks, 1), 1)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			c := uint8(0)
			if (i/cell)%2 != (j/cell)%2 {
				c = 255
			}
			img.SetRGBA(j, i, color.RGBA{R: c, G: c, B: c, A: 255})
		}
	}
	return img
}
