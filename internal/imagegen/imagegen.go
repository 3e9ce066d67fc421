// Package imagegen generates the synthetic inputs the consistency suite
// feeds both transform APIs. Content is derived from pixel position, never
// from a random source, so a test case is reproducible from its parameters
// alone.
package imagegen

import (
	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/tensor"
)

// Options selects the cross-product of input renditions a test case runs
// over. Zero-value fields fall back to the defaults.
type Options struct {
	ColorSpaces []features.ColorSpace
	ExtraDims   [][]int
	Sizes       [][2]int
	DTypes      []tensor.DType
}

// Defaults returns the option set used when a case does not override one:
// RGB images, unbatched plus a batch of four, 16x16 pixels, uint8 and
// float32.
func Defaults() Options {
	return Options{
		ColorSpaces: []features.ColorSpace{features.RGB},
		ExtraDims:   [][]int{{}, {4}},
		Sizes:       [][2]int{{16, 16}},
		DTypes:      []tensor.DType{tensor.Uint8, tensor.Float32},
	}
}

func (o Options) withDefaults() Options {
	d := Defaults()
	if o.ColorSpaces == nil {
		o.ColorSpaces = d.ColorSpaces
	}
	if o.ExtraDims == nil {
		o.ExtraDims = d.ExtraDims
	}
	if o.Sizes == nil {
		o.Sizes = d.Sizes
	}
	if o.DTypes == nil {
		o.DTypes = d.DTypes
	}
	return o
}

// Images materializes the full cross-product of the options.
func Images(opts Options) []*features.Image {
	opts = opts.withDefaults()
	var out []*features.Image
	for _, cs := range opts.ColorSpaces {
		for _, extra := range opts.ExtraDims {
			for _, size := range opts.Sizes {
				for _, dt := range opts.DTypes {
					out = append(out, Image(cs, extra, size, dt))
				}
			}
		}
	}
	return out
}

// Image builds one gradient image: every pixel value is a fixed function of
// its batch, channel and spatial position. Float renditions carry the same
// gradient rescaled into [0, 1], matching how float images enter the
// transforms elsewhere.
func Image(cs features.ColorSpace, extraDims []int, size [2]int, dt tensor.DType) *features.Image {
	c := cs.Channels()
	h, w := size[0], size[1]
	shape := append(append([]int{}, extraDims...), c, h, w)
	t := tensor.New(tensor.Uint8, shape...)
	n := 1
	for _, d := range extraDims {
		n *= d
	}
	for b := 0; b < n; b++ {
		for ci := 0; ci < c; ci++ {
			base := (b*c + ci) * h * w
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					t.Data[base+y*w+x] = float64((x*7 + y*13 + ci*29 + b*53) % 256)
				}
			}
		}
	}
	if dt != tensor.Uint8 {
		t = tensor.ConvertDType(t, dt)
	}
	return features.NewImage(t, cs)
}

// Label builds a categorical label tensor with the given batch shape. The
// value cycles through the categories by position.
func Label(categories int, extraDims []int) *features.Label {
	n := 1
	for _, d := range extraDims {
		n *= d
	}
	shape := extraDims
	if len(shape) == 0 {
		shape = []int{1}
		n = 1
	}
	t := tensor.New(tensor.Uint8, shape...)
	for i := 0; i < n; i++ {
		t.Data[i] = float64(i % categories)
	}
	return features.NewLabel(t, categories)
}

// BoundingBoxes builds n XYXY-convertible boxes laid out on a diagonal
// inside the canvas. Coordinates stay strictly within the canvas.
func BoundingBoxes(format features.BoxFormat, canvas [2]int, n int, dt tensor.DType) *features.BoundingBoxes {
	h, w := canvas[0], canvas[1]
	t := tensor.New(dt, n, 4)
	for i := 0; i < n; i++ {
		// Evenly spaced boxes of a quarter canvas each.
		x1 := float64((i * w / (2 * n)) % w)
		y1 := float64((i * h / (2 * n)) % h)
		bw := float64(w) / 4
		bh := float64(h) / 4
		if x1+bw > float64(w) {
			bw = float64(w) - x1
		}
		if y1+bh > float64(h) {
			bh = float64(h) - y1
		}
		switch format {
		case features.XYXY:
			t.Data[i*4+0] = x1
			t.Data[i*4+1] = y1
			t.Data[i*4+2] = x1 + bw
			t.Data[i*4+3] = y1 + bh
		case features.XYWH:
			t.Data[i*4+0] = x1
			t.Data[i*4+1] = y1
			t.Data[i*4+2] = bw
			t.Data[i*4+3] = bh
		case features.CXCYWH:
			t.Data[i*4+0] = x1 + bw/2
			t.Data[i*4+1] = y1 + bh/2
			t.Data[i*4+2] = bw
			t.Data[i*4+3] = bh
		}
	}
	return features.NewBoundingBoxes(t, format, canvas)
}

// DetectionMask builds a stack of per-object binary planes, one rectangle
// per object.
func DetectionMask(size [2]int, numObjects int) *features.Mask {
	h, w := size[0], size[1]
	t := tensor.New(tensor.Uint8, numObjects, h, w)
	for o := 0; o < numObjects; o++ {
		top := (o * h / (2 * numObjects)) % h
		left := (o * w / (2 * numObjects)) % w
		for y := top; y < min(top+h/4+1, h); y++ {
			for x := left; x < min(left+w/4+1, w); x++ {
				t.Data[(o*h+y)*w+x] = 1
			}
		}
	}
	return features.NewMask(t, features.DetectionMask)
}

// SegmentationMask builds a single categorical plane striped across the
// categories.
func SegmentationMask(size [2]int, numCategories int) *features.Mask {
	h, w := size[0], size[1]
	t := tensor.New(tensor.Uint8, 1, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.Data[y*w+x] = float64(((x + y) / 3) % numCategories)
		}
	}
	return features.NewMask(t, features.SegmentationMask)
}
