package functional

import (
	"fmt"
	"math"

	"github.com/pixelwerk/augment/internal/tensor"
)

// maxValue is the white level of a dtype: 255 for uint8, 1 for floats.
func maxValue(d tensor.DType) float64 {
	if d == tensor.Uint8 {
		return 255
	}
	return 1
}

// blend interpolates a towards b: factor*a + (1-factor)*b, quantized.
func blend(a *tensor.Tensor, b func(idx int) float64, factor float64) *tensor.Tensor {
	out := a.Clone()
	for i := range a.Data {
		out.Data[i] = a.DType.Quantize(factor*a.Data[i] + (1-factor)*b(i))
	}
	return out
}

// AdjustBrightness scales pixel values by factor.
func AdjustBrightness(img *tensor.Tensor, factor float64) (*tensor.Tensor, error) {
	if factor < 0 {
		return nil, fmt.Errorf("functional: brightness factor %v must be non-negative", factor)
	}
	return blend(img, func(int) float64 { return 0 }, factor), nil
}

// grayValue is the luma of an RGB triple using ITU-R 601-2 weights, quantized
// to the dtype so uint8 images produce integral gray levels.
func grayValue(d tensor.DType, r, g, b float64) float64 {
	return d.Quantize(0.2989*r + 0.587*g + 0.114*b)
}

// grayscalePlane renders the (H, W) luma plane of image i of a batched RGB
// tensor. Single-channel images return their only plane.
func grayscalePlane(img *tensor.Tensor, i int) []float64 {
	_, c, h, w := img.ImageDims()
	plane := make([]float64, h*w)
	switch c {
	case 1:
		copy(plane, img.Data[i*h*w:(i+1)*h*w])
	case 3:
		base := i * c * h * w
		for p := 0; p < h*w; p++ {
			plane[p] = grayValue(img.DType, img.Data[base+p], img.Data[base+h*w+p], img.Data[base+2*h*w+p])
		}
	default:
		panic(fmt.Sprintf("functional: grayscale undefined for %d channels", c))
	}
	return plane
}

// AdjustContrast blends the image with its mean gray level.
func AdjustContrast(img *tensor.Tensor, factor float64) (*tensor.Tensor, error) {
	if factor < 0 {
		return nil, fmt.Errorf("functional: contrast factor %v must be non-negative", factor)
	}
	n, c, h, w := img.ImageDims()
	out := img.Clone()
	for i := 0; i < n; i++ {
		gray := grayscalePlane(img, i)
		sum := 0.0
		for _, v := range gray {
			sum += v
		}
		mean := sum / float64(len(gray))
		base := i * c * h * w
		for p := 0; p < c*h*w; p++ {
			out.Data[base+p] = img.DType.Quantize(factor*img.Data[base+p] + (1-factor)*mean)
		}
	}
	return out, nil
}

// AdjustSaturation blends the image with its grayscale rendition.
func AdjustSaturation(img *tensor.Tensor, factor float64) (*tensor.Tensor, error) {
	if factor < 0 {
		return nil, fmt.Errorf("functional: saturation factor %v must be non-negative", factor)
	}
	n, c, h, w := img.ImageDims()
	if c == 1 {
		return img.Clone(), nil
	}
	out := img.Clone()
	for i := 0; i < n; i++ {
		gray := grayscalePlane(img, i)
		base := i * c * h * w
		for ci := 0; ci < c; ci++ {
			for p := 0; p < h*w; p++ {
				idx := base + ci*h*w + p
				out.Data[idx] = img.DType.Quantize(factor*img.Data[idx] + (1-factor)*gray[p])
			}
		}
	}
	return out, nil
}

func rgbToHSV(r, g, b float64) (hue, sat, val float64) {
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	val = maxc
	if maxc == minc {
		return 0, 0, val
	}
	d := maxc - minc
	sat = d / maxc
	switch maxc {
	case r:
		hue = (g - b) / d
	case g:
		hue = 2 + (b-r)/d
	default:
		hue = 4 + (r-g)/d
	}
	hue = hue / 6
	if hue < 0 {
		hue += 1
	}
	return hue, sat, val
}

func hsvToRGB(hue, sat, val float64) (r, g, b float64) {
	i := math.Floor(hue * 6)
	f := hue*6 - i
	p := val * (1 - sat)
	q := val * (1 - sat*f)
	t := val * (1 - sat*(1-f))
	switch int(i) % 6 {
	case 0:
		return val, t, p
	case 1:
		return q, val, p
	case 2:
		return p, val, t
	case 3:
		return p, q, val
	case 4:
		return t, p, val
	default:
		return val, p, q
	}
}

// AdjustHue rotates the hue channel by factor (in turns, within [-0.5, 0.5]).
func AdjustHue(img *tensor.Tensor, factor float64) (*tensor.Tensor, error) {
	if factor < -0.5 || factor > 0.5 {
		return nil, fmt.Errorf("functional: hue factor %v outside [-0.5, 0.5]", factor)
	}
	n, c, h, w := img.ImageDims()
	if c == 1 {
		return img.Clone(), nil
	}
	if c != 3 {
		return nil, fmt.Errorf("functional: hue adjustment needs 1 or 3 channels, got %d", c)
	}
	maxv := maxValue(img.DType)
	out := img.Clone()
	plane := h * w
	for i := 0; i < n; i++ {
		base := i * c * plane
		for p := 0; p < plane; p++ {
			r := img.Data[base+p] / maxv
			g := img.Data[base+plane+p] / maxv
			b := img.Data[base+2*plane+p] / maxv
			hue, sat, val := rgbToHSV(r, g, b)
			hue = math.Mod(hue+factor+1, 1)
			r, g, b = hsvToRGB(hue, sat, val)
			out.Data[base+p] = img.DType.Quantize(r * maxv)
			out.Data[base+plane+p] = img.DType.Quantize(g * maxv)
			out.Data[base+2*plane+p] = img.DType.Quantize(b * maxv)
		}
	}
	return out, nil
}

// AdjustGamma applies gamma correction: gain * (v / max)^gamma * max.
func AdjustGamma(img *tensor.Tensor, gamma float64, gain any) (*tensor.Tensor, error) {
	if gamma < 0 {
		return nil, fmt.Errorf("functional: gamma %v must be non-negative", gamma)
	}
	gainValue := 1.0
	switch v := gain.(type) {
	case nil:
	case float64:
		gainValue = v
	case int:
		gainValue = float64(v)
	default:
		return nil, fmt.Errorf("functional: unsupported gain type %T", gain)
	}
	maxv := maxValue(img.DType)
	out := img.Clone()
	for i, v := range img.Data {
		out.Data[i] = img.DType.Quantize(gainValue * math.Pow(v/maxv, gamma) * maxv)
	}
	return out, nil
}

// RGBToGrayscale reduces an RGB image to numOutputChannels gray channels
// (1 keeps a single plane, 3 replicates it).
func RGBToGrayscale(img *tensor.Tensor, numOutputChannels int) (*tensor.Tensor, error) {
	if numOutputChannels != 1 && numOutputChannels != 3 {
		return nil, fmt.Errorf("functional: grayscale output channels must be 1 or 3, got %d", numOutputChannels)
	}
	n, _, h, w := img.ImageDims()
	out := img.WithImageShape(img.DType, numOutputChannels, h, w)
	for i := 0; i < n; i++ {
		gray := grayscalePlane(img, i)
		for ci := 0; ci < numOutputChannels; ci++ {
			copy(out.Data[(i*numOutputChannels+ci)*h*w:(i*numOutputChannels+ci+1)*h*w], gray)
		}
	}
	return out, nil
}

// Invert reflects pixel values around the white level.
func Invert(img *tensor.Tensor) *tensor.Tensor {
	maxv := maxValue(img.DType)
	out := img.Clone()
	for i, v := range img.Data {
		out.Data[i] = maxv - v
	}
	return out
}

// Posterize keeps the top bits of each uint8 value.
func Posterize(img *tensor.Tensor, bits int) (*tensor.Tensor, error) {
	if img.DType != tensor.Uint8 {
		return nil, fmt.Errorf("functional: posterize requires uint8, got %s", img.DType)
	}
	if bits < 0 || bits > 8 {
		return nil, fmt.Errorf("functional: posterize bits %d outside [0, 8]", bits)
	}
	mask := uint8(0xFF) << (8 - bits)
	out := img.Clone()
	for i, v := range img.Data {
		out.Data[i] = float64(uint8(v) & mask)
	}
	return out, nil
}

// Solarize inverts every pixel at or above the threshold, expressed as a
// fraction of the white level.
func Solarize(img *tensor.Tensor, threshold float64) (*tensor.Tensor, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("functional: solarize threshold %v outside [0, 1]", threshold)
	}
	maxv := maxValue(img.DType)
	cut := threshold * maxv
	out := img.Clone()
	for i, v := range img.Data {
		if v >= cut {
			out.Data[i] = maxv - v
		}
	}
	return out, nil
}

// AdjustSharpness blends the image with a 3x3 smoothed copy. Border pixels
// keep their original value, matching the classic sharpness filter.
func AdjustSharpness(img *tensor.Tensor, factor float64) (*tensor.Tensor, error) {
	if factor < 0 {
		return nil, fmt.Errorf("functional: sharpness factor %v must be non-negative", factor)
	}
	n, c, h, w := img.ImageDims()
	if h <= 2 || w <= 2 {
		return img.Clone(), nil
	}
	out := img.Clone()
	for i := 0; i < n*c; i++ {
		base := i * h * w
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				sum := img.Data[base+(y-1)*w+x-1] + img.Data[base+(y-1)*w+x] + img.Data[base+(y-1)*w+x+1] +
					img.Data[base+y*w+x-1] + 5*img.Data[base+y*w+x] + img.Data[base+y*w+x+1] +
					img.Data[base+(y+1)*w+x-1] + img.Data[base+(y+1)*w+x] + img.Data[base+(y+1)*w+x+1]
				smooth := img.DType.Quantize(sum / 13)
				out.Data[base+y*w+x] = img.DType.Quantize(factor*img.Data[base+y*w+x] + (1-factor)*smooth)
			}
		}
	}
	return out, nil
}

// Autocontrast stretches each channel to the full value range.
func Autocontrast(img *tensor.Tensor) *tensor.Tensor {
	n, c, h, w := img.ImageDims()
	maxv := maxValue(img.DType)
	out := img.Clone()
	plane := h * w
	for i := 0; i < n*c; i++ {
		base := i * plane
		lo, hi := math.Inf(1), math.Inf(-1)
		for p := 0; p < plane; p++ {
			v := img.Data[base+p]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi <= lo {
			continue
		}
		scale := maxv / (hi - lo)
		for p := 0; p < plane; p++ {
			out.Data[base+p] = img.DType.Quantize((img.Data[base+p] - lo) * scale)
		}
	}
	return out
}

// Equalize flattens the per-channel histogram of a uint8 image.
func Equalize(img *tensor.Tensor) (*tensor.Tensor, error) {
	if img.DType != tensor.Uint8 {
		return nil, fmt.Errorf("functional: equalize requires uint8, got %s", img.DType)
	}
	n, c, h, w := img.ImageDims()
	out := img.Clone()
	plane := h * w
	for i := 0; i < n*c; i++ {
		base := i * plane
		var hist [256]int
		for p := 0; p < plane; p++ {
			hist[int(img.Data[base+p])]++
		}
		lastNonzero := 0
		for v := 255; v >= 0; v-- {
			if hist[v] != 0 {
				lastNonzero = hist[v]
				break
			}
		}
		step := (plane - lastNonzero) / 255
		if step == 0 {
			continue
		}
		var lut [256]int
		cum := 0
		for v := 0; v < 256; v++ {
			// The LUT entry for value v uses the cumulative count below v.
			lut[v] = clampInt((cum+step/2)/step, 0, 255)
			cum += hist[v]
		}
		lut[0] = 0
		for p := 0; p < plane; p++ {
			out.Data[base+p] = float64(lut[int(img.Data[base+p])])
		}
	}
	return out, nil
}
