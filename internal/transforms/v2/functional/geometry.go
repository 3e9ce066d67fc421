package functional

import (
	"errors"
	"fmt"
	"math"

	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HorizontalFlip mirrors an image tensor along the width axis.
func HorizontalFlip(img *tensor.Tensor) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, c, h, w)
	for row := 0; row < n*c*h; row++ {
		src := img.Data[row*w : (row+1)*w]
		dst := out.Data[row*w : (row+1)*w]
		for x, v := range src {
			dst[w-1-x] = v
		}
	}
	return out
}

// VerticalFlip mirrors an image tensor along the height axis.
func VerticalFlip(img *tensor.Tensor) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, c, h, w)
	for i := 0; i < n*c; i++ {
		for y := 0; y < h; y++ {
			src := (i*h + y) * w
			dst := (i*h + h - 1 - y) * w
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

	// Overlap of the requested window with the image, in window coordinates.
	y0, y1 := clamp(-top, 0, height), clamp(h-top, 0, height)
	x0, x1 := clamp(-left, 0, width), clamp(w-left, 0, width)
	for i := 0; i < n*c; i++ {
		for y := y0; y < y1; y++ {
			srcRow := (i*h + top + y) * w
			dstRow := (i*height + y) * width
			copy(out.Data[dstRow+x0:dstRow+x1], img.Data[srcRow+left+x0:srcRow+left+x1])
		}
	}
	return out
}

// CenterCrop crops a centered region, zero-padding when the target is larger
// than the image.
func CenterCrop(img *tensor.Tensor, outputSize common.Size) *tensor.Tensor {
	_, _, h, w := img.ImageDims()
	top := int(math.Round(float64(h-outputSize.H) / 2.0))
	left := int(math.Round(float64(w-outputSize.W) / 2.0))
	return Crop(img, top, left, outputSize.H, outputSize.W)
}

// mirrorIndex folds an out-of-range coordinate back into [0, n). Reflect
// excludes the edge sample from the mirror, symmetric includes it.
func mirrorIndex(i, n int, mode common.PaddingMode) int {
	if i >= 0 && i < n {
		return i
	}
	switch mode {
	case common.Edge:
		return clamp(i, 0, n-1)
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
		panic(fmt.Sprintf("functional: mirrorIndex called for mode %s", mode))
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

	// Precompute the per-axis source coordinate (-1 marks a constant cell).
	ys := make([]int, oh)
	for y := range ys {
		sy := y - padding.Top
		if sy >= 0 && sy < h {
			ys[y] = sy
		} else if mode == common.Constant {
			ys[y] = -1
		} else {
			ys[y] = mirrorIndex(sy, h, mode)
		}
	}
	xs := make([]int, ow)
	for x := range xs {
		sx := x - padding.Left
		if sx >= 0 && sx < w {
			xs[x] = sx
		} else if mode == common.Constant {
			xs[x] = -1
		} else {
			xs[x] = mirrorIndex(sx, w, mode)
		}
	}

	for i := 0; i < n; i++ {
		for ci := 0; ci < c; ci++ {
			fillValue := fill.ValueFor(ci, c)
			src := img.Data[(i*c+ci)*h*w:]
			dst := out.Data[(i*c+ci)*oh*ow:]
			for y := 0; y < oh; y++ {
				for x := 0; x < ow; x++ {
					if ys[y] < 0 || xs[x] < 0 {
						dst[y*ow+x] = fillValue
					} else {
						dst[y*ow+x] = src[ys[y]*w+xs[x]]
					}
				}
			}
		}
	}
	return out, nil
}

// outputSize resolves the resize target (height, width). Shorter-edge sizes
// keep the aspect ratio; maxSize caps the longer edge.
func outputSize(h, w int, size common.Size, maxSize int) (int, int) {
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
	oh, ow := outputSize(h, w, size, maxSize)
	if oh == h && ow == w {
		return img.Clone(), nil
	}
	switch interpolation {
	case common.Nearest:
		return resizeNearest(img, oh, ow), nil
	case common.Bilinear:
		if antialias && (oh < h || ow < w) {
			return resizeAntialiased(img, oh, ow), nil
		}
		return resizeBilinear(img, oh, ow), nil
	default:
		return nil, fmt.Errorf("functional: unsupported interpolation %s", interpolation)
	}
}

func resizeNearest(img *tensor.Tensor, oh, ow int) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, c, oh, ow)

	// Source columns are shared by every output row.
	cols := make([]int, ow)
	for x := range cols {
		sx := int(float64(x) * float64(w) / float64(ow))
		if sx > w-1 {
			sx = w - 1
		}
		cols[x] = sx
	}
	for i := 0; i < n*c; i++ {
		for y := 0; y < oh; y++ {
			sy := int(float64(y) * float64(h) / float64(oh))
			if sy > h-1 {
				sy = h - 1
			}
			src := img.Data[(i*h+sy)*w:]
			dst := out.Data[(i*oh+y)*ow:]
			for x, sx := range cols {
				dst[x] = src[sx]
			}
		}
	}
	return out
}

// axisTap holds the two source indices and the fractional weight of one
// output coordinate along one axis.
type axisTap struct {
	a, b int
	d    float64
}

func bilinearTaps(out, in int) []axisTap {
	scale := float64(in) / float64(out)
	taps := make([]axisTap, out)
	for o := range taps {
		s := (float64(o)+0.5)*scale - 0.5
		s0 := int(math.Floor(s))
		taps[o] = axisTap{
			a: clamp(s0, 0, in-1),
			b: clamp(s0+1, 0, in-1),
			d: s - float64(s0),
		}
	}
	return taps
}

func resizeBilinear(img *tensor.Tensor, oh, ow int) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, c, oh, ow)
	rows := bilinearTaps(oh, h)
	cols := bilinearTaps(ow, w)
	for i := 0; i < n*c; i++ {
		for y := 0; y < oh; y++ {
			ry := rows[y]
			dy := ry.d
			for x := 0; x < ow; x++ {
				cx := cols[x]
				dx := cx.d
				p00 := img.Data[(i*h+ry.a)*w+cx.a]
				p01 := img.Data[(i*h+ry.a)*w+cx.b]
				p10 := img.Data[(i*h+ry.b)*w+cx.a]
				p11 := img.Data[(i*h+ry.b)*w+cx.b]
				v := (1-dy)*((1-dx)*p00+dx*p01) + dy*((1-dx)*p10+dx*p11)
				out.Data[(i*oh+y)*ow+x] = img.DType.Quantize(v)
			}
		}
	}
	return out
}

// filterTaps computes the normalized triangle-filter contributions of source
// index range [lo, lo+len(ws)) for one output coordinate.
func filterTaps(out, in, o int) (lo int, ws []float64) {
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

// resizeAntialiased is the downscale path: a separable triangle filter applied
// horizontally, then vertically, accumulating in float64.
func resizeAntialiased(img *tensor.Tensor, oh, ow int) *tensor.Tensor {
	n, c, h, w := img.ImageDims()

	colLo := make([]int, ow)
	colWs := make([][]float64, ow)
	for x := range colWs {
		colLo[x], colWs[x] = filterTaps(ow, w, x)
	}
	mid := img.WithImageShape(tensor.Float64, c, h, ow)
	for i := 0; i < n*c; i++ {
		for x := 0; x < ow; x++ {
			lo, ws := colLo[x], colWs[x]
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
			lo, ws := filterTaps(oh, h, y)
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

// ResizedCrop crops a region and resizes it to size. The trailing antialias
// flag is new in this API and defaults to false when omitted.
func ResizedCrop(img *tensor.Tensor, top, left, height, width int, size common.Size, interpolation common.InterpolationMode, antialias ...bool) (*tensor.Tensor, error) {
	cropped := Crop(img, top, left, height, width)
	aa := len(antialias) > 0 && antialias[0]
	return Resize(cropped, size, interpolation, 0, aa)
}

// FiveCrop returns the four corner crops and the center crop.
func FiveCrop(img *tensor.Tensor, size common.Size) ([]*tensor.Tensor, error) {
	_, _, h, w := img.ImageDims()
	if size.H > h || size.W > w {
		return nil, fmt.Errorf("functional: five-crop size %+v larger than image (%d, %d)", size, h, w)
	}
	return []*tensor.Tensor{
		Crop(img, 0, 0, size.H, size.W),
		Crop(img, 0, w-size.W, size.H, size.W),
		Crop(img, h-size.H, 0, size.H, size.W),
		Crop(img, h-size.H, w-size.W, size.H, size.W),
		CenterCrop(img, size),
	}, nil
}

// TenCrop returns the five crops of the image plus the five crops of its
// flipped counterpart (horizontal by default, vertical when verticalFlip).
func TenCrop(img *tensor.Tensor, size common.Size, verticalFlip bool) ([]*tensor.Tensor, error) {
	first, err := FiveCrop(img, size)
	if err != nil {
		return nil, err
	}
	flipped := HorizontalFlip(img)
	if verticalFlip {
		flipped = VerticalFlip(img)
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
				row := out.Data[((b*c+ci)*ih+i+y)*iw+j:]
				for x := 0; x < w; x++ {
					if len(value) == 1 {
						row[x] = img.DType.Quantize(value[0])
					} else {
						row[x] = img.DType.Quantize(value[(ci*h+y)*w+x])
					}
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
	kx := gaussianTaps(kernelSize.W, sigma)
	ky := gaussianTaps(kernelSize.H, sigma)

	n, c, h, w := img.ImageDims()
	mid := img.WithImageShape(tensor.Float64, c, h, w)
	rx := kernelSize.W / 2
	for i := 0; i < n*c; i++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sum := 0.0
				for k := -rx; k <= rx; k++ {
					sum += kx[k+rx] * img.Data[(i*h+y)*w+clamp(x+k, 0, w-1)]
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
					sum += ky[k+ry] * mid.Data[(i*h+clamp(y+k, 0, h-1))*w+x]
				}
				out.Data[(i*h+y)*w+x] = img.DType.Quantize(sum)
			}
		}
	}
	return out, nil
}

// gaussianTaps builds a normalized 1-d kernel from the scaled standard normal
// pdf. The taps agree with the stable API's kernel to within float rounding,
// not bit for bit.
func gaussianTaps(size int, sigma float64) []float64 {
	if sigma == 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	k := make([]float64, size)
	half := float64(size-1) / 2
	total := 0.0
	for i := range k {
		t := (float64(i) - half) / sigma
		k[i] = math.Exp(-0.5 * t * t)
		total += k[i]
	}
	for i := range k {
		k[i] /= total
	}
	return k
}
