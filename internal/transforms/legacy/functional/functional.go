// Package functional holds the free-function dispatchers of the stable
// legacy transforms API. Every dispatcher takes the input image as its first
// parameter; the class transforms in the parent package are thin wrappers
// over these kernels.
package functional

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/pixelwerk/augment/internal/bitmap"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
)

// GetDimensions returns (channels, height, width) of an image tensor.
func GetDimensions(img *tensor.Tensor) (int, int, int) {
	_, c, h, w := img.ImageDims()
	return c, h, w
}

// GetImageSize returns (width, height) of an image tensor.
func GetImageSize(img *tensor.Tensor) (int, int) {
	_, _, h, w := img.ImageDims()
	return w, h
}

// GetImageNumChannels returns the channel count of an image tensor.
func GetImageNumChannels(img *tensor.Tensor) int {
	_, c, _, _ := img.ImageDims()
	return c
}

// ToTensor converts a bitmap into a float32 tensor scaled to [0, 1].
func ToTensor(img any) (*tensor.Tensor, error) {
	t, err := BitmapToTensor(img)
	if err != nil {
		return nil, err
	}
	return tensor.ConvertDType(t, tensor.Float32), nil
}

// BitmapToTensor converts a bitmap into a uint8 tensor without rescaling.
func BitmapToTensor(img any) (*tensor.Tensor, error) {
	switch v := img.(type) {
	case *tensor.Tensor:
		return v.Clone(), nil
	case image.Image:
		return bitmap.ToTensor(v), nil
	default:
		return nil, fmt.Errorf("functional: cannot convert %T to tensor", img)
	}
}

// ConvertDType converts the element type of an image tensor following image
// value semantics.
func ConvertDType(img *tensor.Tensor, dtype tensor.DType) *tensor.Tensor {
	return tensor.ConvertDType(img, dtype)
}

// ToBitmap renders an unbatched image tensor as a bitmap. Float tensors are
// rescaled to uint8 first.
func ToBitmap(img *tensor.Tensor) (image.Image, error) {
	t := img
	if t.DType != tensor.Uint8 {
		t = tensor.ConvertDType(t, tensor.Uint8)
	}
	return bitmap.FromTensor(t)
}

// Normalize standardizes a float image channel-wise: (v - mean[c]) / std[c].
func Normalize(img *tensor.Tensor, mean, std []float64) (*tensor.Tensor, error) {
	if !img.DType.IsFloat() {
		return nil, fmt.Errorf("functional: Normalize expects a float tensor, got %s", img.DType)
	}
	n, c, h, w := img.ImageDims()
	if len(mean) != c || len(std) != c {
		return nil, fmt.Errorf("functional: Normalize got %d mean / %d std values for %d channels", len(mean), len(std), c)
	}
	for _, s := range std {
		if s == 0 {
			return nil, errors.New("functional: Normalize std must be non-zero")
		}
	}
	out := img.Clone()
	plane := h * w
	for i := 0; i < n; i++ {
		for ci := 0; ci < c; ci++ {
			base := (i*c + ci) * plane
			for p := 0; p < plane; p++ {
				out.Data[base+p] = img.DType.Quantize((img.Data[base+p] - mean[ci]) / std[ci])
			}
		}
	}
	return out, nil
}

// HFlip mirrors an image tensor along the width axis.
func HFlip(img *tensor.Tensor) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.Clone()
	for i := 0; i < n*c; i++ {
		for y := 0; y < h; y++ {
			row := (i*h + y) * w
			for x := 0; x < w; x++ {
				out.Data[row+x] = img.Data[row+w-1-x]
			}
		}
	}
	return out
}

// VFlip mirrors an image tensor along the height axis.
func VFlip(img *tensor.Tensor) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.Clone()
	for i := 0; i < n*c; i++ {
		for y := 0; y < h; y++ {
			src := (i*h + h - 1 - y) * w
			dst := (i*h + y) * w
			copy(out.Data[dst:dst+w], img.Data[src:src+w])
		}
	}
	return out
}

// Crop extracts a (height, width) region with its top-left corner at
// (top, left). Regions reaching outside the image are zero-filled.
func Crop(img *tensor.Tensor, top, left, height, width int) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, c, height, width)
	for i := 0; i < n*c; i++ {
		for y := 0; y < height; y++ {
			sy := top + y
			for x := 0; x < width; x++ {
				sx := left + x
				if sy < 0 || sy >= h || sx < 0 || sx >= w {
					continue
				}
				out.Data[(i*height+y)*width+x] = img.Data[(i*h+sy)*w+sx]
			}
		}
	}
	return out
}

// CenterCrop crops a centered region, zero-padding when the target is larger
// than the image.
func CenterCrop(img *tensor.Tensor, size common.Size) *tensor.Tensor {
	_, _, h, w := img.ImageDims()
	top := int(math.Round(float64(h-size.H) / 2.0))
	left := int(math.Round(float64(w-size.W) / 2.0))
	return Crop(img, top, left, size.H, size.W)
}

// padIndex maps an out-of-range coordinate onto [0, n) for the given mode.
// Reflect excludes the edge sample from the mirror, symmetric includes it.
func padIndex(i, n int, mode common.PaddingMode) int {
	if i >= 0 && i < n {
		return i
	}
	switch mode {
	case common.Edge:
		if i < 0 {
			return 0
		}
		return n - 1
	case common.Reflect:
		if n == 1 {
			return 0
		}
		period := 2*n - 2
		m := ((i % period) + period) % period
		if m >= n {
			m = period - m
		}
		return m
	case common.Symmetric:
		period := 2 * n
		m := ((i % period) + period) % period
		if m >= n {
			m = period - 1 - m
		}
		return m
	default:
		panic(fmt.Sprintf("functional: padIndex called for mode %s", mode))
	}
}

// Pad grows the image by the given per-edge padding.
func Pad(img *tensor.Tensor, padding common.Padding, fill common.Fill, mode common.PaddingMode) (*tensor.Tensor, error) {
	if padding.Left < 0 || padding.Top < 0 || padding.Right < 0 || padding.Bottom < 0 {
		return nil, fmt.Errorf("functional: negative padding %+v", padding)
	}
	n, c, h, w := img.ImageDims()
	oh := h + padding.Top + padding.Bottom
	ow := w + padding.Left + padding.Right
	out := img.WithImageShape(img.DType, c, oh, ow)
	for i := 0; i < n; i++ {
		for ci := 0; ci < c; ci++ {
			fillValue := fill.ValueFor(ci, c)
			for y := 0; y < oh; y++ {
				sy := y - padding.Top
				for x := 0; x < ow; x++ {
					sx := x - padding.Left
					var v float64
					if sy >= 0 && sy < h && sx >= 0 && sx < w {
						v = img.Data[((i*c+ci)*h+sy)*w+sx]
					} else if mode == common.Constant {
						v = fillValue
					} else {
						v = img.Data[((i*c+ci)*h+padIndex(sy, h, mode))*w+padIndex(sx, w, mode)]
					}
					out.Data[((i*c+ci)*oh+y)*ow+x] = v
				}
			}
		}
	}
	return out, nil
}

// resizeOutputSize resolves the target (height, width). Shorter-edge sizes
// keep the aspect ratio; maxSize caps the longer edge.
func resizeOutputSize(h, w int, size common.Size, maxSize int) (int, int) {
	if !size.IsShorterEdge() {
		return size.H, size.W
	}
	short, long := h, w
	if w < h {
		short, long = w, h
	}
	newShort := size.H
	newLong := int(float64(newShort) * float64(long) / float64(short))
	if maxSize > 0 && newLong > maxSize {
		newShort = int(float64(maxSize) * float64(newShort) / float64(newLong))
		newLong = maxSize
	}
	if h <= w {
		return newShort, newLong
	}
	return newLong, newShort
}

// Resize resamples an image tensor to the target size.
func Resize(img *tensor.Tensor, size common.Size, interpolation common.InterpolationMode, maxSize int, antialias bool) (*tensor.Tensor, error) {
	if size.H <= 0 {
		return nil, fmt.Errorf("functional: invalid resize size %+v", size)
	}
	if maxSize > 0 && !size.IsShorterEdge() {
		return nil, errors.New("functional: max_size is only supported with shorter-edge sizes")
	}
	_, _, h, w := img.ImageDims()
	oh, ow := resizeOutputSize(h, w, size, maxSize)
	if oh == h && ow == w {
		return img.Clone(), nil
	}
	switch interpolation {
	case common.Nearest:
		return resizeNearest(img, oh, ow), nil
	case common.Bilinear:
		if antialias && (oh < h || ow < w) {
			return resizeTriangle(img, oh, ow), nil
		}
		return resizeBilinear(img, oh, ow), nil
	default:
		return nil, fmt.Errorf("functional: unsupported interpolation %s", interpolation)
	}
}

func resizeNearest(img *tensor.Tensor, oh, ow int) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, c, oh, ow)
	for i := 0; i < n*c; i++ {
		for y := 0; y < oh; y++ {
			sy := int(float64(y) * float64(h) / float64(oh))
			if sy > h-1 {
				sy = h - 1
			}
			for x := 0; x < ow; x++ {
				sx := int(float64(x) * float64(w) / float64(ow))
				if sx > w-1 {
					sx = w - 1
				}
				out.Data[(i*oh+y)*ow+x] = img.Data[(i*h+sy)*w+sx]
			}
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func resizeBilinear(img *tensor.Tensor, oh, ow int) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, c, oh, ow)
	scaleY := float64(h) / float64(oh)
	scaleX := float64(w) / float64(ow)
	for i := 0; i < n*c; i++ {
		for y := 0; y < oh; y++ {
			sy := (float64(y)+0.5)*scaleY - 0.5
			y0 := int(math.Floor(sy))
			dy := sy - float64(y0)
			ya := clampInt(y0, 0, h-1)
			yb := clampInt(y0+1, 0, h-1)
			for x := 0; x < ow; x++ {
				sx := (float64(x)+0.5)*scaleX - 0.5
				x0 := int(math.Floor(sx))
				dx := sx - float64(x0)
				xa := clampInt(x0, 0, w-1)
				xb := clampInt(x0+1, 0, w-1)

				p00 := img.Data[(i*h+ya)*w+xa]
				p01 := img.Data[(i*h+ya)*w+xb]
				p10 := img.Data[(i*h+yb)*w+xa]
				p11 := img.Data[(i*h+yb)*w+xb]
				v := (1-dy)*((1-dx)*p00+dx*p01) + dy*((1-dx)*p10+dx*p11)
				out.Data[(i*oh+y)*ow+x] = img.DType.Quantize(v)
			}
		}
	}
	return out
}

// triangleWeights computes the normalized triangle-filter contributions of
// source index range [lo, lo+len(ws)) for one output coordinate.
func triangleWeights(out, in, o int) (lo int, ws []float64) {
	scale := float64(in) / float64(out)
	support := scale
	if support < 1 {
		support = 1
	}
	center := (float64(o) + 0.5) * scale
	lo = int(math.Floor(center - support + 0.5))
	hi := int(math.Floor(center + support + 0.5))
	if lo < 0 {
		lo = 0
	}
	if hi > in {
		hi = in
	}
	ws = make([]float64, hi-lo)
	total := 0.0
	for k := lo; k < hi; k++ {
		t := (float64(k) + 0.5 - center) / support
		if t < 0 {
			t = -t
		}
		wgt := 0.0
		if t < 1 {
			wgt = 1 - t
		}
		ws[k-lo] = wgt
		total += wgt
	}
	for j := range ws {
		ws[j] /= total
	}
	return lo, ws
}

// resizeTriangle is the antialiased downscale path: a separable triangle
// filter applied horizontally, then vertically, accumulating in float64.
func resizeTriangle(img *tensor.Tensor, oh, ow int) *tensor.Tensor {
	n, c, h, w := img.ImageDims()

	// Horizontal pass at full height.
	mid := img.WithImageShape(tensor.Float64, c, h, ow)
	for i := 0; i < n*c; i++ {
		for x := 0; x < ow; x++ {
			lo, ws := triangleWeights(ow, w, x)
			for y := 0; y < h; y++ {
				sum := 0.0
				for j, wgt := range ws {
					sum += wgt * img.Data[(i*h+y)*w+lo+j]
				}
				mid.Data[(i*h+y)*ow+x] = sum
			}
		}
	}

	out := img.WithImageShape(img.DType, c, oh, ow)
	for i := 0; i < n*c; i++ {
		for y := 0; y < oh; y++ {
			lo, ws := triangleWeights(oh, h, y)
			for x := 0; x < ow; x++ {
				sum := 0.0
				for j, wgt := range ws {
					sum += wgt * mid.Data[(i*h+lo+j)*ow+x]
				}
				out.Data[(i*oh+y)*ow+x] = img.DType.Quantize(sum)
			}
		}
	}
	return out
}

// ResizedCrop crops a region and resizes it to size.
func ResizedCrop(img *tensor.Tensor, top, left, height, width int, size common.Size, interpolation common.InterpolationMode) (*tensor.Tensor, error) {
	cropped := Crop(img, top, left, height, width)
	return Resize(cropped, size, interpolation, 0, false)
}

// FiveCrop returns the four corner crops and the center crop.
func FiveCrop(img *tensor.Tensor, size common.Size) ([]*tensor.Tensor, error) {
	_, _, h, w := img.ImageDims()
	if size.H > h || size.W > w {
		return nil, fmt.Errorf("functional: five-crop size %+v larger than image (%d, %d)", size, h, w)
	}
	tl := Crop(img, 0, 0, size.H, size.W)
	tr := Crop(img, 0, w-size.W, size.H, size.W)
	bl := Crop(img, h-size.H, 0, size.H, size.W)
	br := Crop(img, h-size.H, w-size.W, size.H, size.W)
	center := CenterCrop(img, size)
	return []*tensor.Tensor{tl, tr, bl, br, center}, nil
}

// TenCrop returns the five crops of the image plus the five crops of its
// flipped counterpart (horizontal by default, vertical when verticalFlip).
func TenCrop(img *tensor.Tensor, size common.Size, verticalFlip bool) ([]*tensor.Tensor, error) {
	first, err := FiveCrop(img, size)
	if err != nil {
		return nil, err
	}
	flipped := HFlip(img)
	if verticalFlip {
		flipped = VFlip(img)
	}
	second, err := FiveCrop(flipped, size)
	if err != nil {
		return nil, err
	}
	return append(first, second...), nil
}

// Erase overwrites the (h, w) region at (i, j) with the given values, one per
// region element in row-major (C, H, W) order, or a single broadcast value.
func Erase(img *tensor.Tensor, i, j, h, w int, value []float64) (*tensor.Tensor, error) {
	n, c, ih, iw := img.ImageDims()
	if i < 0 || j < 0 || i+h > ih || j+w > iw {
		return nil, fmt.Errorf("functional: erase region (%d, %d, %d, %d) outside image (%d, %d)", i, j, h, w, ih, iw)
	}
	out := img.Clone()
	for b := 0; b < n; b++ {
		for ci := 0; ci < c; ci++ {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					var v float64
					switch len(value) {
					case 1:
						v = value[0]
					default:
						v = value[(ci*h+y)*w+x]
					}
					out.Data[((b*c+ci)*ih+i+y)*iw+j+x] = img.DType.Quantize(v)
				}
			}
		}
	}
	return out, nil
}

// GaussianBlur smooths with a separable gaussian kernel. Edge handling clamps
// sample coordinates. Sigma zero derives the sigma from the kernel size.
func GaussianBlur(img *tensor.Tensor, kernelSize common.Size, sigma float64) (*tensor.Tensor, error) {
	if kernelSize.H <= 0 || kernelSize.W <= 0 || kernelSize.H%2 == 0 || kernelSize.W%2 == 0 {
		return nil, fmt.Errorf("functional: gaussian kernel size %+v must be positive and odd", kernelSize)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("functional: negative sigma %v", sigma)
	}
	kx := gaussianKernel(kernelSize.W, sigma)
	ky := gaussianKernel(kernelSize.H, sigma)

	n, c, h, w := img.ImageDims()
	mid := img.WithImageShape(tensor.Float64, c, h, w)
	rx := kernelSize.W / 2
	for i := 0; i < n*c; i++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sum := 0.0
				for k := -rx; k <= rx; k++ {
					sum += kx[k+rx] * img.Data[(i*h+y)*w+clampInt(x+k, 0, w-1)]
				}
				mid.Data[(i*h+y)*w+x] = sum
			}
		}
	}
	out := img.WithImageShape(img.DType, c, h, w)
	ry := kernelSize.H / 2
	for i := 0; i < n*c; i++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sum := 0.0
				for k := -ry; k <= ry; k++ {
					sum += ky[k+ry] * mid.Data[(i*h+clampInt(y+k, 0, h-1))*w+x]
				}
				out.Data[(i*h+y)*w+x] = img.DType.Quantize(sum)
			}
		}
	}
	return out, nil
}

// gaussianKernel builds a normalized 1-d kernel the way this API always has:
// evaluate exp(-x^2 / (2 sigma^2)) per tap, then divide by the running sum.
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma == 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	k := make([]float64, size)
	half := float64(size-1) / 2
	total := 0.0
	for i := range k {
		x := float64(i) - half
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		total += k[i]
	}
	for i := range k {
		k[i] /= total
	}
	return k
}
