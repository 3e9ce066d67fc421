// Package legacy is the stable image-transforms API: parameter-struct
// transform classes over the kernels in the functional subpackage. It is the
// reference implementation the v2 API is validated against.
package legacy

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"github.com/pixelwerk/augment/internal/bitmap"
	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/legacy/functional"
)

// Transform is the call contract of every legacy transform: constructed from
// its parameter struct, then invoked on a raw image tensor or a bitmap.
type Transform interface {
	Transform(in any) (any, error)
}

// tensorKernel applies fn to the tensor rendition of in. Bitmaps are
// converted to a uint8 tensor, transformed and rendered back.
func tensorKernel(in any, fn func(*tensor.Tensor) (*tensor.Tensor, error)) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return fn(v)
	case image.Image:
		out, err := fn(bitmap.ToTensor(v))
		if err != nil {
			return nil, err
		}
		return bitmap.FromTensor(out)
	default:
		return nil, fmt.Errorf("legacy: unsupported input type %T", in)
	}
}

// bitmapKernel is tensorKernel with a dedicated bitmap fast path.
func bitmapKernel(in any, fn func(*tensor.Tensor) (*tensor.Tensor, error), bm func(image.Image) (image.Image, error)) (any, error) {
	if img, ok := in.(image.Image); ok {
		return bm(img)
	}
	return tensorKernel(in, fn)
}

// Normalize standardizes float images channel-wise.
type Normalize struct {
	Mean []float64 `arg:"mean,required"`
	Std  []float64 `arg:"std,required"`
}

// NewNormalize validates and returns the transform.
func NewNormalize(t Normalize) (*Normalize, error) {
	if len(t.Mean) == 0 || len(t.Std) == 0 {
		return nil, errors.New("legacy: Normalize needs mean and std")
	}
	return &t, nil
}

func (t *Normalize) Transform(in any) (any, error) {
	img, ok := in.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("legacy: Normalize supports tensors only, got %T", in)
	}
	return functional.Normalize(img, t.Mean, t.Std)
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
		return nil, fmt.Errorf("legacy: invalid resize size %+v", t.Size)
	}
	return &t, nil
}

func (t *Resize) Transform(in any) (any, error) {
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
		return nil, fmt.Errorf("legacy: invalid crop size %+v", t.Size)
	}
	return &t, nil
}

func (t *CenterCrop) Transform(in any) (any, error) {
	return bitmapKernel(in,
		func(img *tensor.Tensor) (*tensor.Tensor, error) { return functional.CenterCrop(img, t.Size), nil },
		func(img image.Image) (image.Image, error) { return centerCropBitmap(img, t.Size) },
	)
}

func centerCropBitmap(img image.Image, size common.Size) (image.Image, error) {
	b := img.Bounds()
	if size.H <= b.Dy() && size.W <= b.Dx() {
		// Same window as the tensor kernel: odd remainders round the offset
		// up, which imaging.CropCenter would floor instead.
		top := int(math.Round(float64(b.Dy()-size.H) / 2.0))
		left := int(math.Round(float64(b.Dx()-size.W) / 2.0))
		r := image.Rect(b.Min.X+left, b.Min.Y+top, b.Min.X+left+size.W, b.Min.Y+top+size.H)
		return imaging.Crop(img, r), nil
	}
	// Crop larger than the image zero-pads; go through the tensor path.
	out := functional.CenterCrop(bitmap.ToTensor(img), size)
	return bitmap.FromTensor(out)
}

// FiveCrop produces the four corner crops and the center crop.
type FiveCrop struct {
	Size common.Size `arg:"size,required"`
}

// NewFiveCrop validates and returns the transform.
func NewFiveCrop(t FiveCrop) (*FiveCrop, error) {
	if t.Size.H <= 0 || t.Size.W <= 0 {
		return nil, fmt.Errorf("legacy: invalid crop size %+v", t.Size)
	}
	return &t, nil
}

func (t *FiveCrop) Transform(in any) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return functional.FiveCrop(v, t.Size)
	case image.Image:
		crops, err := functional.FiveCrop(bitmap.ToTensor(v), t.Size)
		if err != nil {
			return nil, err
		}
		return renderAll(crops)
	default:
		return nil, fmt.Errorf("legacy: unsupported input type %T", in)
	}
}

// TenCrop is FiveCrop on the image and its flipped counterpart.
type TenCrop struct {
	Size         common.Size `arg:"size,required"`
	VerticalFlip bool        `arg:"vertical_flip" default:"false"`
}

// NewTenCrop validates and returns the transform.
func NewTenCrop(t TenCrop) (*TenCrop, error) {
	if t.Size.H <= 0 || t.Size.W <= 0 {
		return nil, fmt.Errorf("legacy: invalid crop size %+v", t.Size)
	}
	return &t, nil
}

func (t *TenCrop) Transform(in any) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return functional.TenCrop(v, t.Size, t.VerticalFlip)
	case image.Image:
		crops, err := functional.TenCrop(bitmap.ToTensor(v), t.Size, t.VerticalFlip)
		if err != nil {
			return nil, err
		}
		return renderAll(crops)
	default:
		return nil, fmt.Errorf("legacy: unsupported input type %T", in)
	}
}

func renderAll(crops []*tensor.Tensor) ([]image.Image, error) {
	out := make([]image.Image, len(crops))
	for i, c := range crops {
		img, err := bitmap.FromTensor(c)
		if err != nil {
			return nil, err
		}
		out[i] = img
	}
	return out, nil
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
		return nil, fmt.Errorf("legacy: negative padding %+v", t.Padding)
	}
	return &t, nil
}

func (t *Pad) Transform(in any) (any, error) {
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		return functional.Pad(img, t.Padding, t.Fill, t.PaddingMode)
	})
}

// LinearTransformation flattens each image, subtracts the mean vector and
// applies the transformation matrix.
type LinearTransformation struct {
	TransformationMatrix *mat.Dense    `arg:"transformation_matrix,required"`
	MeanVector           *mat.VecDense `arg:"mean_vector,required"`
}

// NewLinearTransformation validates matrix/vector dimensions.
func NewLinearTransformation(t LinearTransformation) (*LinearTransformation, error) {
	if t.TransformationMatrix == nil || t.MeanVector == nil {
		return nil, errors.New("legacy: LinearTransformation needs a matrix and a mean vector")
	}
	r, c := t.TransformationMatrix.Dims()
	if r != c {
		return nil, fmt.Errorf("legacy: transformation matrix must be square, got %dx%d", r, c)
	}
	if t.MeanVector.Len() != r {
		return nil, fmt.Errorf("legacy: mean vector length %d does not match matrix size %d", t.MeanVector.Len(), r)
	}
	return &t, nil
}

func (t *LinearTransformation) Transform(in any) (any, error) {
	img, ok := in.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("legacy: LinearTransformation supports tensors only, got %T", in)
	}
	n, c, h, w := img.ImageDims()
	d := c * h * w
	if r, _ := t.TransformationMatrix.Dims(); r != d {
		return nil, fmt.Errorf("legacy: image with %d elements does not match matrix size %d", d, r)
	}
	out := img.Clone()
	for i := 0; i < n; i++ {
		flat := mat.NewVecDense(d, nil)
		for p := 0; p < d; p++ {
			flat.SetVec(p, img.Data[i*d+p]-t.MeanVector.AtVec(p))
		}
		var res mat.VecDense
		res.MulVec(t.TransformationMatrix.T(), flat)
		for p := 0; p < d; p++ {
			out.Data[i*d+p] = img.DType.Quantize(res.AtVec(p))
		}
	}
	return out, nil
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
		return nil, fmt.Errorf("legacy: grayscale output channels must be 1 or 3, got %d", t.NumOutputChannels)
	}
	return &t, nil
}

func (t *Grayscale) Transform(in any) (any, error) {
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
	img, ok := in.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("legacy: ConvertDType supports tensors only, got %T", in)
	}
	return tensor.ConvertDType(img, t.DType), nil
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
	case image.Image:
		return v, nil
	default:
		return nil, fmt.Errorf("legacy: cannot render %T as bitmap", in)
	}
}

// BitmapToTensor converts bitmaps to uint8 tensors.
type BitmapToTensor struct{}

// NewBitmapToTensor returns the transform.
func NewBitmapToTensor(t BitmapToTensor) (*BitmapToTensor, error) {
	return &t, nil
}

func (t *BitmapToTensor) Transform(in any) (any, error) {
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
	return functional.ToTensor(in)
}

// Lambda applies a user function to the tensor rendition of the input.
type Lambda struct {
	Fn func(*tensor.Tensor) *tensor.Tensor `arg:"fn,required"`
}

// NewLambda validates and returns the transform.
func NewLambda(t Lambda) (*Lambda, error) {
	if t.Fn == nil {
		return nil, errors.New("legacy: Lambda needs a function")
	}
	return &t, nil
}

func (t *Lambda) Transform(in any) (any, error) {
	img, ok := in.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("legacy: Lambda supports tensors only, got %T", in)
	}
	return t.Fn(img), nil
}

// RandomHorizontalFlip flips with probability p.
// Draw order: one uniform float; flip when it is below p.
type RandomHorizontalFlip struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomHorizontalFlip validates and returns the transform.
func NewRandomHorizontalFlip(t RandomHorizontalFlip) (*RandomHorizontalFlip, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomHorizontalFlip) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return bitmapKernel(in,
		func(img *tensor.Tensor) (*tensor.Tensor, error) { return functional.HFlip(img), nil },
		func(img image.Image) (image.Image, error) { return imaging.FlipH(img), nil },
	)
}

// RandomVerticalFlip flips vertically with probability p.
// Draw order: one uniform float; flip when it is below p.
type RandomVerticalFlip struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomVerticalFlip validates and returns the transform.
func NewRandomVerticalFlip(t RandomVerticalFlip) (*RandomVerticalFlip, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomVerticalFlip) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return bitmapKernel(in,
		func(img *tensor.Tensor) (*tensor.Tensor, error) { return functional.VFlip(img), nil },
		func(img image.Image) (image.Image, error) { return imaging.FlipV(img), nil },
	)
}

// passthrough returns an untouched copy so callers can never alias the input.
func passthrough(in any) (any, error) {
	switch v := in.(type) {
	case *tensor.Tensor:
		return v.Clone(), nil
	case image.Image:
		return v, nil
	default:
		return nil, fmt.Errorf("legacy: unsupported input type %T", in)
	}
}

// RandomEqualize equalizes with probability p.
type RandomEqualize struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomEqualize validates and returns the transform.
func NewRandomEqualize(t RandomEqualize) (*RandomEqualize, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomEqualize) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return tensorKernel(in, functional.Equalize)
}

// RandomInvert inverts with probability p.
type RandomInvert struct {
	P float64 `arg:"p" default:"0.5"`
}

// NewRandomInvert validates and returns the transform.
func NewRandomInvert(t RandomInvert) (*RandomInvert, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomInvert) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return bitmapKernel(in,
		func(img *tensor.Tensor) (*tensor.Tensor, error) { return functional.Invert(img), nil },
		func(img image.Image) (image.Image, error) { return imaging.Invert(img), nil },
	)
}

// RandomPosterize posterizes with probability p.
type RandomPosterize struct {
	Bits int     `arg:"bits,required"`
	P    float64 `arg:"p" default:"0.5"`
}

// NewRandomPosterize validates and returns the transform.
func NewRandomPosterize(t RandomPosterize) (*RandomPosterize, error) {
	if t.Bits < 0 || t.Bits > 8 {
		return nil, fmt.Errorf("legacy: posterize bits %d outside [0, 8]", t.Bits)
	}
	return &t, nil
}

func (t *RandomPosterize) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
		return nil, fmt.Errorf("legacy: solarize threshold %v outside [0, 1]", t.Threshold)
	}
	return &t, nil
}

func (t *RandomSolarize) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomAutocontrast) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
		return nil, fmt.Errorf("legacy: sharpness factor %v must be non-negative", t.SharpnessFactor)
	}
	return &t, nil
}

func (t *RandomAdjustSharpness) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomGrayscale) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
	}
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
		return nil, fmt.Errorf("legacy: invalid crop size %+v", t.Size)
	}
	if t.Scale.IsZero() {
		t.Scale = common.Range{Lo: 0.08, Hi: 1.0}
	}
	if t.Ratio.IsZero() {
		t.Ratio = common.Range{Lo: 3.0 / 4.0, Hi: 4.0 / 3.0}
	}
	if t.Scale.Lo > t.Scale.Hi || t.Ratio.Lo > t.Ratio.Hi {
		return nil, errors.New("legacy: scale and ratio ranges must be ordered")
	}
	return &t, nil
}

// resizedCropParams draws the crop region. Shared protocol with the v2 API.
func resizedCropParams(h, w int, scale, ratio common.Range) (top, left, ch, cw int) {
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
	// Fallback: center crop at the closest admissible aspect ratio.
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
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		_, _, h, w := img.ImageDims()
		top, left, ch, cw := resizedCropParams(h, w, t.Scale, t.Ratio)
		cropped := functional.Crop(img, top, left, ch, cw)
		size := t.Size
		if size.IsShorterEdge() {
			size = common.Square(size.H)
		}
		if t.Antialias {
			return functional.Resize(cropped, size, t.Interpolation, 0, true)
		}
		return functional.Resize(cropped, size, t.Interpolation, 0, false)
	})
}

// RandomErasing blanks a random region of a tensor image.
// Draw order: one uniform float against p; then per attempt (area fraction,
// log-aspect) and on a fit (top, left) integers; random fills draw one normal
// value per region element in (C, H, W) order.
type RandomErasing struct {
	P       float64      `arg:"p" default:"0.5"`
	Scale   common.Range `arg:"scale" default:"(0.02, 0.33)"`
	Ratio   common.Range `arg:"ratio" default:"(0.3, 3.3)"`
	Value   common.Fill  `arg:"value" default:"0"`
	Inplace bool         `arg:"inplace" default:"false"`
}

// NewRandomErasing validates and returns the transform.
func NewRandomErasing(t RandomErasing) (*RandomErasing, error) {
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	if t.Scale.IsZero() {
		t.Scale = common.Range{Lo: 0.02, Hi: 0.33}
	}
	if t.Ratio.IsZero() {
		t.Ratio = common.Range{Lo: 0.3, Hi: 3.3}
	}
	return &t, nil
}

// eraseParams draws the erase region and fill. Shared protocol with v2.
func eraseParams(c, h, w int, scale, ratio common.Range, value common.Fill) (top, left, eh, ew int, vals []float64, ok bool) {
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
	img, ok := in.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("legacy: RandomErasing supports tensors only, got %T", in)
	}
	if randgen.Float64() >= t.P {
		return img.Clone(), nil
	}
	_, c, h, w := img.ImageDims()
	top, left, eh, ew, vals, found := eraseParams(c, h, w, t.Scale, t.Ratio, t.Value)
	if !found {
		return img.Clone(), nil
	}
	if len(vals) == 1 {
		return functional.Erase(img, top, left, eh, ew, vals)
	}
	// Per-channel or per-element values expand to the full region.
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
		return nil, fmt.Errorf("legacy: erase value count %d does not match %d channels", len(vals), c)
	}
	return functional.Erase(img, top, left, eh, ew, full)
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
			return nil, fmt.Errorf("legacy: invalid jitter range [%v, %v]", r.Lo, r.Hi)
		}
	}
	if t.Hue.Lo < -0.5 || t.Hue.Hi > 0.5 || t.Hue.Lo > t.Hue.Hi {
		return nil, fmt.Errorf("legacy: invalid hue range [%v, %v]", t.Hue.Lo, t.Hue.Hi)
	}
	return &t, nil
}

// colorJitterParams draws the application order and factors. Shared protocol
// with the v2 API.
func colorJitterParams(brightness, contrast, saturation, hue common.Range) (order []int, factors [4]float64, enabled [4]bool) {
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
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		order, factors, enabled := colorJitterParams(t.Brightness, t.Contrast, t.Saturation, t.Hue)
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
		return nil, fmt.Errorf("legacy: gaussian kernel size %+v must be positive and odd", t.KernelSize)
	}
	if t.Sigma.IsZero() {
		t.Sigma = common.Range{Lo: 0.1, Hi: 2.0}
	}
	if t.Sigma.Lo <= 0 || t.Sigma.Lo > t.Sigma.Hi {
		return nil, fmt.Errorf("legacy: invalid sigma range [%v, %v]", t.Sigma.Lo, t.Sigma.Hi)
	}
	return &t, nil
}

func (t *GaussianBlur) Transform(in any) (any, error) {
	sigma := randgen.Uniform(t.Sigma.Lo, t.Sigma.Hi)
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
		return nil, fmt.Errorf("legacy: invalid crop size %+v", t.Size)
	}
	if t.Size.IsShorterEdge() {
		t.Size = common.Square(t.Size.H)
	}
	return &t, nil
}

func (t *RandomCrop) Transform(in any) (any, error) {
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
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
			return nil, fmt.Errorf("legacy: image (%d, %d) smaller than crop %+v after padding", h, w, t.Size)
		}
		top := randgen.Intn(h - t.Size.H + 1)
		left := randgen.Intn(w - t.Size.W + 1)
		return functional.Crop(work, top, left, t.Size.H, t.Size.W), nil
	})
}

// Compose chains transforms left to right.
type Compose struct {
	Transforms []Transform `arg:"transforms,required"`
}

// NewCompose validates and returns the container.
func NewCompose(t Compose) (*Compose, error) {
	if len(t.Transforms) == 0 {
		return nil, errors.New("legacy: Compose needs at least one transform")
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
		return nil, errors.New("legacy: RandomApply needs at least one transform")
	}
	if t.P < 0 || t.P > 1 {
		return nil, fmt.Errorf("legacy: probability %v outside [0, 1]", t.P)
	}
	return &t, nil
}

func (t *RandomApply) Transform(in any) (any, error) {
	if randgen.Float64() >= t.P {
		return passthrough(in)
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
		return nil, errors.New("legacy: RandomChoice needs at least one transform")
	}
	if t.P != nil && len(t.P) != len(t.Transforms) {
		return nil, fmt.Errorf("legacy: %d probabilities for %d transforms", len(t.P), len(t.Transforms))
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
		return nil, errors.New("legacy: RandomOrder needs at least one transform")
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
