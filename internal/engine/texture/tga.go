// Package texture decodes and tracks the globe's texture layers.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("tga: truncated pixel data")

// DecodeTGA decodes an uncompressed or RLE true-color TGA (24 or 32 bpp).
// The result is always top-down.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("tga: header too short (%d bytes)", len(data))
	}
	idLen := int(data[0])
	if data[1] != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	kind := data[2]
	if kind != TGATypeUncompressed && kind != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	w := int(data[12]) | int(data[13])<<8
	h := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("tga: empty image %dx%d", w, h)
	}
	topDown := data[17]&0x20 != 0

	start := tgaHeaderSize + idLen
	if start > len(data) {
		return nil, errTGATruncated
	}
	r := &tgaReader{
		src:     data[start:],
		stride:  bpp / 8,
		img:     image.NewRGBA(image.Rect(0, 0, w, h)),
		topDown: topDown,
	}

	var err error
	if kind == TGATypeUncompressed {
		err = r.raw(w * h)
	} else {
		err = r.rle(w * h)
	}
	if err != nil {
		return nil, err
	}
	return r.img, nil
}

type tgaReader struct {
	src     []byte
	pos     int
	stride  int
	img     *image.RGBA
	next    int // next destination pixel in file order
	topDown bool
}

func (r *tgaReader) pixel() (color.RGBA, error) {
	if r.pos+r.stride > len(r.src) {
		return color.RGBA{}, errTGATruncated
	}
	p := r.src[r.pos : r.pos+r.stride]
	r.pos += r.stride
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.stride == 4 {
		c.A = p[3]
	}
	return c, nil
}

func (r *tgaReader) put(c color.RGBA) {
	w := r.img.Rect.Dx()
	x, y := r.next%w, r.next/w
	if !r.topDown {
		y = r.img.Rect.Dy() - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.next++
}

func (r *tgaReader) raw(total int) error {
	for r.next < total {
		c, err := r.pixel()
		if err != nil {
			return err
		}
		r.put(c)
	}
	return nil
}

func (r *tgaReader) rle(total int) error {
	for r.next < total {
		if r.pos >= len(r.src) {
			return errTGATruncated
		}
		header := r.src[r.pos]
		r.pos++
		n := int(header&0x7f) + 1
		if header&0x80 != 0 {
			c, err := r.pixel()
			if err != nil {
				return err
			}
			for i := 0; i < n && r.next < total; i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < n && r.next < total; i++ {
			c, err := r.pixel()
			if err != nil {
				return err
			}
			r.put(c)
		}
	}
	return nil
}

// ImageToRGBA converts any image to a zero-origin *image.RGBA. Images that
// already are one are returned unchanged.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return out
}

// FlipVertical returns a copy of img with its rows reversed, for uploads
// that expect a bottom-up origin.
func FlipVertical(img *image.RGBA) *image.RGBA {
	h := img.Rect.Dy()
	out := image.NewRGBA(img.Rect)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+4*img.Rect.Dx()]
		copy(out.Pix[(h-1-y)*out.Stride:], src)
	}
	return out
}
