// Package v2 is the next-generation image-transforms API: the same
// conceptual surface as the legacy package, reimplemented over
// representation-tagged features. The consistency suite validates it against
// the legacy package output for output.
package v2

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pixelwerk/augment/internal/bitmap"
	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/v2/functional"
)

// Transform is the call contract of every v2 transform: constructed from its
// parameter struct, then invoked on a raw tensor, a feature image, a bitmap
// or a sample.
type Transform interface {
	Transform(in any) (any, error)
}

// imageKernel applies fn to the tensor rendition of in, keeping the feature
// tag when the input carries one. Bitmaps are converted to a uint8 tensor,
// transformed and rendered back.
func imageKernel(in any, fn func(*tensor.Tensor) (*tensor.Tensor, error)) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return fn(v)
	case *features.Image:
		out, err := fn(v.Tensor)
		if err != nil {
			return nil, err
		}
		return v.WithTensor(out), nil
	case image.Image:
		out, err := fn(bitmap.ToTensor(v))
		if err != nil {
			return nil, err
		}
		return bitmap.FromTensor(out)
	default:
		return nil, fmt.Errorf("v2: unsupported input type %T", in)
	}
}

// untouched returns a copy of in so callers can never alias the input.
func untouched(in any) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return v.Clone(), nil
	case *features.Image:
		return v.Clone(), nil
	case *Sample:
		return v.Clone(), nil
	case image.Image:
		return v, nil
	default:
		return nil, fmt.Errorf("v2: unsupported input type %T", in)
	}
}

// Normalize standardizes float images channel-wise.
type Normalize struct {
	Mean []float64 `arg:"mean,required"`
	Std  []float64 `arg:"std,required"`
}

// NewNormalize validates and returns the transform.
func NewNormalize(t Normalize) (*Normalize, error) {
	if len(t.Mean) == 0 || len(t.Std) == 0 {
		return nil, errors.New("v2: Normalize needs mean and std")
	}
	return &t, nil
}

func (t *Normalize) Transform(in any) (any, error) {
	if s, ok := in.(*Sample); ok {
		return t.transformSample(s)
	}
	switch v := in.(type) {
	case *tensor.Tensor:
		return functional.Normalize(v, t.Mean, t.Std)
	case *features.Image:
		out, err := functional.Normalize(v.Tensor, t.Mean, t.Std)
		if err != nil {
			return nil, err
		}
		return v.WithTensor(out), nil
	default:
		return nil, fmt.Errorf("v2: Normalize supports tensors only, got %T", in)
	}
}

// Resize resamples images to a target size.
type Resize struct {
	Size          common.Size              `arg:"size,required"`
	Interpolation common.InterpolationMode `arg:"interpolation" default:"bilinear"`
	MaxSize       int                      `arg:"max_size" default:"0"`
	Antialias     bool                     `arg:"antialias" default:"false"`
}

// NewResize validates and returns the transform.
func NewResize(t Resize) (*Resize, error) {
	if t.Size.H <= 0 {
		return nil, fmt.Errorf("v2: invalid resize size %+v", t.Size)
	}
	return &t, nil
}

func (t *Resize) Transform(in any) (any, error) {
	if s, ok := in.(*Sample); ok {
		return t.transformSample(s)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Resize(img, t.Size, t.Interpolation, t.MaxSize, t.Antialias)
	})
}

// CenterCrop crops a centered fixed-size region.
type CenterCrop struct {
	Size common.Size `arg:"size,required"`
}

// NewCenterCrop validates and returns the transform.
func NewCenterCrop(t CenterCrop) (*CenterCrop, error) {
	if t.Size.H <= 0 || t.Size.W <= 0 {
		return nil, fmt.Errorf("v2: invalid crop size %+v", t.Size)
	}
	return &t, nil
}

func (t *CenterCrop) Transform(in any) (any, error) {
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.CenterCrop(img, t.Size), nil
	})
}

// FiveCrop produces the four corner crops and the center crop.
type FiveCrop struct {
	Size common.Size `arg:"size,required"`
}

// NewFiveCrop validates and returns the transform.
func NewFiveCrop(t FiveCrop) (*FiveCrop, error) {
	if t.Size.H <= 0 || t.Size.W <= 0 {
		return nil, fmt.Errorf("v2: invalid crop size %+v", t.Size)
	}
	return &t, nil
}

func (t *FiveCrop) Transform(in any) (any, error) {
	return multiCrop(in, func(img *tensor.Tensor) ([]*tensor.Tensor, error) {
		return functional.FiveCrop(img, t.Size)
	})
}

// TenCrop is FiveCrop on the image and its flipped counterpart.
type TenCrop struct {
	Size         common.Size `arg:"size,required"`
	VerticalFlip bool        `arg:"vertical_flip" default:"false"`
}

// NewTenCrop validates and returns the transform.
func NewTenCrop(t TenCrop) (*TenCrop, error) {
	if t.Size.H <= 0 || t.Size.W <= 0 {
		return nil, fmt.Errorf("v2: invalid crop size %+v", t.Size)
	}
	return &t, nil
}

func (t *TenCrop) Transform(in any) (any, error) {
	return multiCrop(in, func(img *tensor.Tensor) ([]*tensor.Tensor, error) {
		return functional.TenCrop(img, t.Size, t.VerticalFlip)
	})
}

// multiCrop runs a slice-producing kernel, preserving the input
// representation element-wise.
func multiCrop(in any, fn func(*tensor.Tensor) ([]*tensor.Tensor, error)) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return fn(v)
	case *features.Image:
		crops, err := fn(v.Tensor)
		if err != nil {
			return nil, err
		}
		out := make([]*features.Image, len(crops))
		for i, c := range crops {
			out[i] = v.WithTensor(c)
		}
		return out, nil
	case image.Image:
		crops, err := fn(bitmap.ToTensor(v))
		if err != nil {
			return nil, err
		}
		out := make([]image.Image, len(crops))
		for i, c := range crops {
			img, err := bitmap.FromTensor(c)
			if err != nil {
				return nil, err
			}
			out[i] = img
		}
		return out, nil
	default:
		return nil, fmt.Errorf("v2: unsupported input type %T", in)
	}
}

// Pad grows images by a fixed per-edge padding.
type Pad struct {
	Padding     common.Padding     `arg:"padding,required"`
	Fill        common.Fill        `arg:"fill" default:"0"`
	PaddingMode common.PaddingMode `arg:"padding_mode" default:"constant"`
}

// NewPad validates and returns the transform.
func NewPad(t Pad) (*Pad, error) {
	if t.Padding.Left < 0 || t.Padding.Top < 0 || t.Padding.Right < 0 || t.Padding.Bottom < 0 {
		return nil, fmt.Errorf("v2: negative padding %+v", t.Padding)
	}
	return &t, nil
}

func (t *Pad) Transform(in any) (any, error) {
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Pad(img, t.Padding, t.Fill, t.PaddingMode)
	})
}

// LinearTransformation flattens each image, subtracts the mean vector and
// applies the transformation matrix. The product is computed element by
// element rather than delegated to a matrix routine, so results can differ
// from the legacy package by float rounding.
type LinearTransformation struct {
	TransformationMatrix *mat.Dense    `arg:"transformation_matrix,required"`
	MeanVector           *mat.VecDense `arg:"mean_vector,required"`
}

// NewLinearTransformation validates matrix/vector dimensions.
func NewLinearTransformation(t LinearTransformation) (*LinearTransformation, error) {
	if t.TransformationMatrix == nil || t.MeanVector == nil {
		return nil, errors.New("v2: LinearTransformation needs a matrix and a mean vector")
	}
	r, c := t.TransformationMatrix.Dims()
	if r != c {
		return nil, fmt.Errorf("v2: transformation matrix must be square, got %dx%d", r, c)
	}
	if t.MeanVector.Len() != r {
		return nil, fmt.Errorf("v2: mean vector length %d does not match matrix size %d", t.MeanVector.Len(), r)
	}
	return &t, nil
}

func (t *LinearTransformation) Transform(in any) (any, error) {
	apply := func(img *tensor.Tensor) (*tensor.Tensor, error) {
		n, c, h, w := img.ImageDims()
		d := c * h * w
		if r, _ := t.TransformationMatrix.Dims(); r != d {
			return nil, fmt.Errorf("v2: image with %d elements does not match matrix size %d", d, r)
		}
		out := img.Clone()
		centered := make([]float64, d)
		for i := 0; i < n; i++ {
			for p := 0; p < d; p++ {
				centered[p] = img.Data[i*d+p] - t.MeanVector.AtVec(p)
			}
			for p := 0; p < d; p++ {
				sum := 0.0
				for q := 0; q < d; q++ {
					sum += t.TransformationMatrix.At(q, p) * centered[q]
				}
				out.Data[i*d+p] = img.DType.Quantize(sum)
			}
		}
		return out, nil
	}
	switch v := in.(type) {
	case *tensor.Tensor:
		return apply(v)
	case *features.Image:
		out, err := apply(v.Tensor)
		if err != nil {
			return nil, err
		}
		return v.WithTensor(out), nil
	default:
		return nil, fmt.Errorf("v2: LinearTransformation supports tensors only, got %T", in)
	}
}

// Grayscale reduces images to gray with a fixed output channel count.
type Grayscale struct {
	NumOutputChannels int `arg:"num_output_channels" default:"1"`
}

// NewGrayscale validates and returns the transform.
func NewGrayscale(t Grayscale) (*Grayscale, error) {
	if t.NumOutputChannels == 0 {
		t.NumOutputChannels = 1
	}
	if t.NumOutputChannels != 1 && t.NumOutputChannels != 3 {
		return nil, fmt.Errorf("v2: grayscale output channels must be 1 or 3, got %d", t.NumOutputChannels)
	}
	return &t, nil
}

func (t *Grayscale) Transform(in any) (any, error) {
	if img, ok := in.(*features.Image); ok {
		out, err := functional.RGBToGrayscale(img.Tensor, t.NumOutputChannels)
		if err != nil {
			return nil, err
		}
		color := features.Gray
		if t.NumOutputChannels == 3 {
			color = features.RGB
		}
		return features.NewImage(out, color), nil
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.RGBToGrayscale(img, t.NumOutputChannels)
	})
}

// ConvertDType converts the element type of image tensors.
type ConvertDType struct {
	DType tensor.DType `arg:"dtype,required"`
}

// NewConvertDType returns the transform.
func NewConvertDType(t ConvertDType) (*ConvertDType, error) {
	return &t, nil
}

func (t *ConvertDType) Transform(in any) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return tensor.ConvertDType(v, t.DType), nil
	case *features.Image:
		return v.WithTensor(tensor.ConvertDType(v.Tensor, t.DType)), nil
	default:
		return nil, fmt.Errorf("v2: ConvertDType supports tensors only, got %T", in)
	}
}

// ToBitmap renders image tensors as bitmaps.
type ToBitmap struct{}

// NewToBitmap returns the transform.
func NewToBitmap(t ToBitmap) (*ToBitmap, error) {
	return &t, nil
}

func (t *ToBitmap) Transform(in any) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return functional.ToBitmap(v)
	case *features.Image:
		return functional.ToBitmap(v.Tensor)
	case image.Image:
		return v, nil
	default:
		return nil, fmt.Errorf("v2: cannot render %T as bitmap", in)
	}
}

// BitmapToTensor converts bitmaps to uint8 tensors.
type BitmapToTensor struct{}

// NewBitmapToTensor returns the transform.
func NewBitmapToTensor(t BitmapToTensor) (*BitmapToTensor, error) {
	return &t, nil
}

func (t *BitmapToTensor) Transform(in any) (any, error) {
	if img, ok := in.(*features.Image); ok {
		return img.Tensor.Clone(), nil
	}
	return functional.BitmapToTensor(in)
}

// ToTensor converts bitmaps to float tensors scaled to [0, 1].
//
// Deprecated: compose BitmapToTensor with ConvertDType instead.
type ToTensor struct{}

// NewToTensor returns the transform and logs the deprecation.
func NewToTensor(t ToTensor) (*ToTensor, error) {
	slog.Warn("The transform ToTensor is deprecated, compose BitmapToTensor and ConvertDType instead")
	return &t, nil
}

func (t *ToTensor) Transform(in any) (any, error) {
	if img, ok := in.(*features.Image); ok {
		return tensor.ConvertDType(img.Tensor, tensor.Float64), nil
	}
	return functional.ToTensor(in)
}

// Lambda applies a user function to the tensor rendition of the input.
type Lambda struct {
	Fn func(*tensor.Tensor) *tensor.Tensor `arg:"fn,required"`
}

// NewLambda validates and returns the transform.
func NewLambda(t Lambda) (*Lambda, error) {
	if t.Fn == nil {
		return nil, errors.New("v2: Lambda needs a function")
	}
	return &t, nil
}

func (t *Lambda) Transform(in any) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return t.Fn(v), nil
	case *features.Image:
		return v.WithTensor(t.Fn(v.Tensor)), nil
	default:
		return nil, fmt.Errorf("v2: Lambda supports tensors only, got %T", in)
	}
}

// RandomHorizontalFlip flips with probability p.
// Draw order: one uniform float; flip when it is below p.
type RandomHorizontalFlip struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomHorizontalFlip validates and returns the transform.
func NewRandomHorizontalFlip(t RandomHorizontalFlip) (*RandomHorizontalFlip, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomHorizontalFlip) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	if s, ok := in.(*Sample); ok {
		return flipSample(s)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.HorizontalFlip(img), nil
	})
}

// RandomVerticalFlip flips vertically with probability p.
// Draw order: one uniform float; flip when it is below p.
type RandomVerticalFlip struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomVerticalFlip validates and returns the transform.
func NewRandomVerticalFlip(t RandomVerticalFlip) (*RandomVerticalFlip, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomVerticalFlip) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.VerticalFlip(img), nil
	})
}

// RandomEqualize equalizes with probability p.
type RandomEqualize struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomEqualize validates and returns the transform.
func NewRandomEqualize(t RandomEqualize) (*RandomEqualize, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomEqualize) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, functional.Equalize)
}

// RandomInvert inverts with probability p.
type RandomInvert struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomInvert validates and returns the transform.
func NewRandomInvert(t RandomInvert) (*RandomInvert, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomInvert) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Invert(img), nil
	})
}

// RandomPosterize posterizes with probability p.
type RandomPosterize struct {
	Bits int     `arg:"bits,required"`
	P    float64 `arg:"p" default:"0.5"`
}

// NewRandomPosterize validates and returns the transform.
func NewRandomPosterize(t RandomPosterize) (*RandomPosterize, error) {
	if t.Bits < 0 || t.Bits > 8 {
		return nil, fmt.Errorf("v2: posterize bits %d outside [0, 8]", t.Bits)
	}
	return &t, nil
}

func (t *RandomPosterize) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Posterize(img, t.Bits)
	})
}

// RandomSolarize solarizes with probability p.
type RandomSolarize struct {
	Threshold float64 `arg:"threshold,required"`
	P         float64 `arg:"p" default:"0.5"`
}

// NewRandomSolarize validates and returns the transform.
func NewRandomSolarize(t RandomSolarize) (*RandomSolarize, error) {
	if t.Threshold < 0 || t.Threshold > 1 {
		return nil, fmt.Errorf("v2: solarize threshold %v outside [0, 1]", t.Threshold)
	}
	return &t, nil
}

func (t *RandomSolarize) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Solarize(img, t.Threshold)
	})
}

// RandomAutocontrast autocontrasts with probability p.
type RandomAutocontrast struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomAutocontrast validates and returns the transform.
func NewRandomAutocontrast(t RandomAutocontrast) (*RandomAutocontrast, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomAutocontrast) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Autocontrast(img), nil
	})
}

// RandomAdjustSharpness sharpens (or smooths) with probability p.
type RandomAdjustSharpness struct {
	SharpnessFactor float64 `arg:"sharpness_factor,required"`
	P               float64 `arg:"p" default:"0.5"`
}

// NewRandomAdjustSharpness validates and returns the transform.
func NewRandomAdjustSharpness(t RandomAdjustSharpness) (*RandomAdjustSharpness, error) {
	if t.SharpnessFactor < 0 {
		return nil, fmt.Errorf("v2: sharpness factor %v must be non-negative", t.SharpnessFactor)
	}
	return &t, nil
}

func (t *RandomAdjustSharpness) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.AdjustSharpness(img, t.SharpnessFactor)
	})
}

// RandomGrayscale converts to gray (keeping the channel count) with
// probability p.
type RandomGrayscale struct {
	P float64 `arg:"p" default:"0.1"`
}

// NewRandomGrayscale validates and returns the transform.
func NewRandomGrayscale(t RandomGrayscale) (*RandomGrayscale, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomGrayscale) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.RGBToGrayscale(img, img.Channels())
	})
}

// RandomResizedCrop crops a random area/aspect region and resizes it.
// Draw order, per invocation: up to ten attempts of (area fraction uniform in
// scale, log-aspect uniform in log(ratio)); on a fit two integers (top, left).
// After ten misses the fallback center crop draws nothing.
type RandomResizedCrop struct {
	Size          common.Size              `arg:"size,required"`
	Scale         common.Range             `arg:"scale" default:"(0.08, 1.0)"`
	Ratio         common.Range             `arg:"ratio" default:"(0.75, 1.3333)"`
	Interpolation common.InterpolationMode `arg:"interpolation" default:"bilinear"`
	Antialias     bool                     `arg:"antialias" default:"false"`
}

// NewRandomResizedCrop validates and returns the transform.
func NewRandomResizedCrop(t RandomResizedCrop) (*RandomResizedCrop, error) {
	if t.Size.H <= 0 {
		return nil, fmt.Errorf("v2: invalid crop size %+v", t.Size)
	}
	if t.Scale.IsZero() {
		t.Scale = common.Range{Lo: 0.08, Hi: 1.0}
	}
	if t.Ratio.IsZero() {
		t.Ratio = common.Range{Lo: 3.0 / 4.0, Hi: 4.0 / 3.0}
	}
	if t.Scale.Lo > t.Scale.Hi || t.Ratio.Lo > t.Ratio.Hi {
		return nil, errors.New("v2: scale and ratio ranges must be ordered")
	}
	return &t, nil
}

// drawResizedCrop draws the crop region. Shared protocol with the legacy API.
func drawResizedCrop(h, w int, scale, ratio common.Range) (top, left, ch, cw int) {
	area := float64(h * w)
	logLo, logHi := math.Log(ratio.Lo), math.Log(ratio.Hi)
	for attempt := 0; attempt < 10; attempt++ {
		targetArea := area * randgen.Uniform(scale.Lo, scale.Hi)
		aspect := math.Exp(randgen.Uniform(logLo, logHi))
		cw = int(math.Round(math.Sqrt(targetArea * aspect)))
		ch = int(math.Round(math.Sqrt(targetArea / aspect)))
		if cw > 0 && cw <= w && ch > 0 && ch <= h {
			top = randgen.Intn(h - ch + 1)
			left = randgen.Intn(w - cw + 1)
			return top, left, ch, cw
		}
	}
	inRatio := float64(w) / float64(h)
	switch {
	case inRatio < ratio.Lo:
		cw = w
		ch = int(math.Round(float64(cw) / ratio.Lo))
	case inRatio > ratio.Hi:
		ch = h
		cw = int(math.Round(float64(ch) * ratio.Hi))
	default:
		cw, ch = w, h
	}
	return (h - ch) / 2, (w - cw) / 2, ch, cw
}

func (t *RandomResizedCrop) Transform(in any) (any, error) {
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		_, _, h, w := img.ImageDims()
		top, left, ch, cw := drawResizedCrop(h, w, t.Scale, t.Ratio)
		size := t.Size
		if size.IsShorterEdge() {
			size = common.Square(size.H)
		}
		return functional.ResizedCrop(img, top, left, ch, cw, size, t.Interpolation, t.Antialias)
	})
}

// RandomErasing blanks a random region of a tensor image.
// Draw order: one uniform float against p; then per attempt (area fraction,
// log-aspect) and on a fit (top, left) integers; random fills draw one normal
// value per region element in (C, H, W) order.
type RandomErasing struct {
	P     float64      `arg:"p" default:"0.5"`
	Scale common.Range `arg:"scale" default:"(0.02, 0.33)"`
	Ratio common.Range `arg:"ratio" default:"(0.3, 3.3)"`
	Value common.Fill  `arg:"value" default:"0"`
}

// NewRandomErasing validates and returns the transform.
func NewRandomErasing(t RandomErasing) (*RandomErasing, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	if t.Scale.IsZero() {
		t.Scale = common.Range{Lo: 0.02, Hi: 0.33}
	}
	if t.Ratio.IsZero() {
		t.Ratio = common.Range{Lo: 0.3, Hi: 3.3}
	}
	return &t, nil
}

// drawErase draws the erase region and fill. Shared protocol with the legacy
// API.
func drawErase(c, h, w int, scale, ratio common.Range, value common.Fill) (top, left, eh, ew int, vals []float64, ok bool) {
	area := float64(h * w)
	logLo, logHi := math.Log(ratio.Lo), math.Log(ratio.Hi)
	for attempt := 0; attempt < 10; attempt++ {
		targetArea := area * randgen.Uniform(scale.Lo, scale.Hi)
		aspect := math.Exp(randgen.Uniform(logLo, logHi))
		eh = int(math.Round(math.Sqrt(targetArea * aspect)))
		ew = int(math.Round(math.Sqrt(targetArea / aspect)))
		if eh <= 0 || eh >= h || ew <= 0 || ew >= w {
			continue
		}
		if value.Random {
			vals = make([]float64, c*eh*ew)
			for i := range vals {
				vals[i] = randgen.NormFloat64()
			}
		} else if len(value.Values) == 0 {
			vals = []float64{0}
		} else {
			vals = value.Values
		}
		top = randgen.Intn(h - eh + 1)
		left = randgen.Intn(w - ew + 1)
		return top, left, eh, ew, vals, true
	}
	return 0, 0, 0, 0, nil, false
}

func (t *RandomErasing) Transform(in any) (any, error) {
	apply := func(img *tensor.Tensor) (*tensor.Tensor, error) {
		if randgen.Float64() >= t.P {
			return img.Clone(), nil
		}
		_, c, h, w := img.ImageDims()
		top, left, eh, ew, vals, found := drawErase(c, h, w, t.Scale, t.Ratio, t.Value)
		if !found {
			return img.Clone(), nil
		}
		if len(vals) == 1 {
			return functional.Erase(img, top, left, eh, ew, vals)
		}
		full := make([]float64, c*eh*ew)
		switch len(vals) {
		case c:
			for ci := 0; ci < c; ci++ {
				for p := 0; p < eh*ew; p++ {
					full[ci*eh*ew+p] = vals[ci]
				}
			}
		case c * eh * ew:
			copy(full, vals)
		default:
			return nil, fmt.Errorf("v2: erase value count %d does not match %d channels", len(vals), c)
		}
		return functional.Erase(img, top, left, eh, ew, full)
	}
	switch v := in.(type) {
	case *tensor.Tensor:
		return apply(v)
	case *features.Image:
		out, err := apply(v.Tensor)
		if err != nil {
			return nil, err
		}
		return v.WithTensor(out), nil
	default:
		return nil, fmt.Errorf("v2: RandomErasing supports tensors only, got %T", in)
	}
}

// ColorJitter perturbs brightness, contrast, saturation and hue.
// Draw order: one permutation of the four components, then one uniform
// factor per enabled component in brightness, contrast, saturation, hue
// order. Application follows the permuted order.
type ColorJitter struct {
	Brightness common.Range `arg:"brightness" default:"0"`
	Contrast   common.Range `arg:"contrast" default:"0"`
	Saturation common.Range `arg:"saturation" default:"0"`
	Hue        common.Range `arg:"hue" default:"0"`
}

// NewColorJitter validates and returns the transform.
func NewColorJitter(t ColorJitter) (*ColorJitter, error) {
	for _, r := range []common.Range{t.Brightness, t.Contrast, t.Saturation} {
		if r.Lo < 0 || r.Lo > r.Hi {
			return nil, fmt.Errorf("v2: invalid jitter range [%v, %v]", r.Lo, r.Hi)
		}
	}
	if t.Hue.Lo < -0.5 || t.Hue.Hi > 0.5 || t.Hue.Lo > t.Hue.Hi {
		return nil, fmt.Errorf("v2: invalid hue range [%v, %v]", t.Hue.Lo, t.Hue.Hi)
	}
	return &t, nil
}

// drawColorJitter draws the application order and factors. Shared protocol
// with the legacy API.
func drawColorJitter(brightness, contrast, saturation, hue common.Range) (order []int, factors [4]float64, enabled [4]bool) {
	order = randgen.Perm(4)
	ranges := [4]common.Range{brightness, contrast, saturation, hue}
	for i, r := range ranges {
		if r.IsZero() {
			continue
		}
		enabled[i] = true
		factors[i] = randgen.Uniform(r.Lo, r.Hi)
	}
	return order, factors, enabled
}

func (t *ColorJitter) Transform(in any) (any, error) {
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		order, factors, enabled := drawColorJitter(t.Brightness, t.Contrast, t.Saturation, t.Hue)
		out := img.Clone()
		var err error
		for _, idx := range order {
			if !enabled[idx] {
				continue
			}
			switch idx {
			case 0:
				out, err = functional.AdjustBrightness(out, factors[0])
			case 1:
				out, err = functional.AdjustContrast(out, factors[1])
			case 2:
				out, err = functional.AdjustSaturation(out, factors[2])
			case 3:
				out, err = functional.AdjustHue(out, factors[3])
			}
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// GaussianBlur smooths with a random sigma from the configured range.
// Draw order: one uniform float for sigma (even when the range is a point).
type GaussianBlur struct {
	KernelSize common.Size  `arg:"kernel_size,required"`
	Sigma      common.Range `arg:"sigma" default:"(0.1, 2.0)"`
}

// NewGaussianBlur validates and returns the transform.
func NewGaussianBlur(t GaussianBlur) (*GaussianBlur, error) {
	if t.KernelSize.IsShorterEdge() {
		t.KernelSize = common.Square(t.KernelSize.H)
	}
	if t.KernelSize.H <= 0 || t.KernelSize.W <= 0 || t.KernelSize.H%2 == 0 || t.KernelSize.W%2 == 0 {
		return nil, fmt.Errorf("v2: gaussian kernel size %+v must be positive and odd", t.KernelSize)
	}
	if t.Sigma.IsZero() {
		t.Sigma = common.Range{Lo: 0.1, Hi: 2.0}
	}
	if t.Sigma.Lo <= 0 || t.Sigma.Lo > t.Sigma.Hi {
		return nil, fmt.Errorf("v2: invalid sigma range [%v, %v]", t.Sigma.Lo, t.Sigma.Hi)
	}
	return &t, nil
}

func (t *GaussianBlur) Transform(in any) (any, error) {
	sigma := randgen.Uniform(t.Sigma.Lo, t.Sigma.Hi)
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.GaussianBlur(img, t.KernelSize, sigma)
	})
}

// RandomCrop crops a random region after optional padding.
// Draw order: two integers (top, left) after all padding is applied.
type RandomCrop struct {
	Size        common.Size        `arg:"size,required"`
	Padding     *common.Padding    `arg:"padding" default:"nil"`
	PadIfNeeded bool               `arg:"pad_if_needed" default:"false"`
	Fill        common.Fill        `arg:"fill" default:"0"`
	PaddingMode common.PaddingMode `arg:"padding_mode" default:"constant"`
}

// NewRandomCrop validates and returns the transform.
func NewRandomCrop(t RandomCrop) (*RandomCrop, error) {
	if t.Size.H <= 0 {
		return nil, fmt.Errorf("v2: invalid crop size %+v", t.Size)
	}
	if t.Size.IsShorterEdge() {
		t.Size = common.Square(t.Size.H)
	}
	return &t, nil
}

// pad applies the configured fixed padding plus pad-if-needed growth, width
// first then height.
func (t *RandomCrop) pad(img *tensor.Tensor) (*tensor.Tensor, error) {
	work := img
	var err error
	if t.Padding != nil {
		work, err = functional.Pad(work, *t.Padding, t.Fill, t.PaddingMode)
		if err != nil {
			return nil, err
		}
	}
	_, _, h, w := work.ImageDims()
	if t.PadIfNeeded && w < t.Size.W {
		work, err = functional.Pad(work, common.Padding{Left: t.Size.W - w, Right: t.Size.W - w}, t.Fill, t.PaddingMode)
		if err != nil {
			return nil, err
		}
	}
	_, _, h, w = work.ImageDims()
	if t.PadIfNeeded && h < t.Size.H {
		work, err = functional.Pad(work, common.Padding{Top: t.Size.H - h, Bottom: t.Size.H - h}, t.Fill, t.PaddingMode)
		if err != nil {
			return nil, err
		}
	}
	_, _, h, w = work.ImageDims()
	if h < t.Size.H || w < t.Size.W {
		return nil, fmt.Errorf("v2: image (%d, %d) smaller than crop %+v after padding", h, w, t.Size)
	}
	return work, nil
}

func (t *RandomCrop) Transform(in any) (any, error) {
	if s, ok := in.(*Sample); ok {
		return t.transformSample(s)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		work, err := t.pad(img)
		if err != nil {
			return nil, err
		}
		_, _, h, w := work.ImageDims()
		top := randgen.Intn(h - t.Size.H + 1)
		left := randgen.Intn(w - t.Size.W + 1)
		return functional.Crop(work, top, left, t.Size.H, t.Size.W), nil
	})
}

// RandomResize resamples to a square-free random shorter-edge size drawn
// uniformly from [min_size, max_size].
// Draw order: one integer for the size.
type RandomResize struct {
	MinSize       int                      `arg:"min_size,required"`
	MaxSize       int                      `arg:"max_size,required"`
	Interpolation common.InterpolationMode `arg:"interpolation" default:"bilinear"`
	Antialias     bool                     `arg:"antialias" default:"false"`
}

// NewRandomResize validates and returns the transform.
func NewRandomResize(t RandomResize) (*RandomResize, error) {
	if t.MinSize <= 0 || t.MaxSize < t.MinSize {
		return nil, fmt.Errorf("v2: invalid resize bounds [%d, %d]", t.MinSize, t.MaxSize)
	}
	return &t, nil
}

func (t *RandomResize) Transform(in any) (any, error) {
	size := t.MinSize + randgen.Intn(t.MaxSize-t.MinSize+1)
	if s, ok := in.(*Sample); ok {
		return resizeSample(s, common.Shorter(size), t.Interpolation, t.Antialias)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Resize(img, common.Shorter(size), t.Interpolation, 0, t.Antialias)
	})
}

// Compose chains transforms left to right.
type Compose struct {
	Transforms []Transform `arg:"transforms,required"`
}

// NewCompose validates and returns the container.
func NewCompose(t Compose) (*Compose, error) {
	if len(t.Transforms) == 0 {
		return nil, errors.New("v2: Compose needs at least one transform")
	}
	return &t, nil
}

func (t *Compose) Transform(in any) (any, error) {
	out := in
	var err error
	for _, tr := range t.Transforms {
		out, err = tr.Transform(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RandomApply runs the whole chain with probability p.
// Draw order: one uniform float, then the children's own draws when applied.
type RandomApply struct {
	Transforms []Transform `arg:"transforms,required"`
	P          float64     `arg:"p" default:"0.5"`
}

// NewRandomApply validates and returns the container.
func NewRandomApply(t RandomApply) (*RandomApply, error) {
	if len(t.Transforms) == 0 {
		return nil, errors.New("v2: RandomApply needs at least one transform")
	}
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("v2: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomApply) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return untouched(in)
	}
	out := in
	var err error
	for _, tr := range t.Transforms {
		out, err = tr.Transform(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RandomChoice applies exactly one child, weighted by P (uniform when nil).
// Draw order: one uniform float walked over the cumulative weights.
type RandomChoice struct {
	Transforms []Transform `arg:"transforms,required"`
	P          []float64   `arg:"p" default:"nil"`
}

// NewRandomChoice validates and returns the container.
func NewRandomChoice(t RandomChoice) (*RandomChoice, error) {
	if len(t.Transforms) == 0 {
		return nil, errors.New("v2: RandomChoice needs at least one transform")
	}
	if t.P != nil && len(t.P) != len(t.Transforms) {
		return nil, fmt.Errorf("v2: %d probabilities for %d transforms", len(t.P), len(t.Transforms))
	}
	return &t, nil
}

func (t *RandomChoice) Transform(in any) (any, error) {
	weights := t.P
	if weights == nil {
		weights = make([]float64, len(t.Transforms))
		for i := range weights {
			weights[i] = 1
		}
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := randgen.Float64() * total
	acc := 0.0
	idx := len(t.Transforms) - 1
	for i, w := range weights {
		acc += w
		if r < acc {
			idx = i
			break
		}
	}
	return t.Transforms[idx].Transform(in)
}

// RandomOrder applies every child in a random order.
// Draw order: one permutation, then the children's own draws.
type RandomOrder struct {
	Transforms []Transform `arg:"transforms,required"`
}

// NewRandomOrder validates and returns the container.
func NewRandomOrder(t RandomOrder) (*RandomOrder, error) {
	if len(t.Transforms) == 0 {
		return nil, errors.New("v2: RandomOrder needs at least one transform")
	}
	return &t, nil
}

func (t *RandomOrder) Transform(in any) (any, error) {
	out := in
	var err error
	for _, idx := range randgen.Perm(len(t.Transforms)) {
		out, err = t.Transforms[idx].Transform(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
