// Package bitmap converts between raw image tensors and stdlib image.Image
// values. Bitmaps are the third input representation exercised by the
// consistency suite and are only defined for single (unbatched) uint8 images.
package bitmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/pixelwerk/augment/internal/tensor"
)

var errNotBitmappable = errors.New("bitmap: only unbatched uint8 images with 1, 3 or 4 channels can become bitmaps")

// FromTensor renders an unbatched uint8 image tensor as an image.Image.
// Single-channel tensors become *image.Gray, three- and four-channel tensors
// become *image.NRGBA (three-channel images are fully opaque).
func FromTensor(t *tensor.Tensor) (image.Image, error) {
	if t.Dims() != 3 || t.DType != tensor.Uint8 {
		return nil, fmt.Errorf("%w, got shape %v dtype %s", errNotBitmappable, t.Shape, t.DType)
	}
	c, h, w := t.Shape[0], t.Shape[1], t.Shape[2]
	switch c {
	case 1:
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(t.Data[y*w+x])})
			}
		}
		return img, nil
	case 3, 4:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		plane := h * w
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				px := color.NRGBA{
					R: uint8(t.Data[0*plane+y*w+x]),
					G: uint8(t.Data[1*plane+y*w+x]),
					B: uint8(t.Data[2*plane+y*w+x]),
					A: 255,
				}
				if c == 4 {
					px.A = uint8(t.Data[3*plane+y*w+x])
				}
				img.SetNRGBA(x, y, px)
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w, got %d channels", errNotBitmappable, c)
	}
}

// ToTensor converts a bitmap back into an unbatched uint8 image tensor.
// Grayscale bitmaps yield one channel; color bitmaps yield three channels
// unless any pixel is non-opaque, in which case the alpha plane is kept.
func ToTensor(img image.Image) *tensor.Tensor {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()

	if g, ok := img.(*image.Gray); ok {
		t := tensor.New(tensor.Uint8, 1, h, w)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				t.Data[y*w+x] = float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return t
	}

	nrgba := toNRGBA(img)
	opaque := true
	for y := 0; y < h && opaque; y++ {
		for x := 0; x < w; x++ {
			if nrgba.NRGBAAt(b.Min.X+x, b.Min.Y+y).A != 255 {
				opaque = false
				break
			}
		}
	}
	channels := 4
	if opaque {
		channels = 3
	}
	t := tensor.New(tensor.Uint8, channels, h, w)
	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := nrgba.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			t.Data[0*plane+y*w+x] = float64(px.R)
			t.Data[1*plane+y*w+x] = float64(px.G)
			t.Data[2*plane+y*w+x] = float64(px.B)
			if channels == 4 {
				t.Data[3*plane+y*w+x] = float64(px.A)
			}
		}
	}
	return t
}

// toNRGBA normalizes decoded bitmaps of any raster type (RGBA, YCbCr,
// paletted) onto the NRGBA layout the tensor conversion reads from.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	xdraw.Draw(out, b, img, b.Min, xdraw.Src)
	return out
}
