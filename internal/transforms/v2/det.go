package v2

import (
	"fmt"
	"math"

	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/v2/functional"
)

// ScaleJitter rescales by a random factor of the target size, the
// large-scale-jitter augmentation used by detection training recipes.
// Draw order: one uniform float for the scale.
type ScaleJitter struct {
	TargetSize    [2]int                   `arg:"target_size,required"`
	ScaleRange    common.Range             `arg:"scale_range" default:"(0.1, 2.0)"`
	Interpolation common.InterpolationMode `arg:"interpolation" default:"bilinear"`
}

// NewScaleJitter validates and returns the transform.
func NewScaleJitter(t ScaleJitter) (*ScaleJitter, error) {
	if t.TargetSize[0] <= 0 || t.TargetSize[1] <= 0 {
		return nil, fmt.Errorf("v2: invalid jitter target size %v", t.TargetSize)
	}
	if t.ScaleRange.IsZero() {
		t.ScaleRange = common.Range{Lo: 0.1, Hi: 2.0}
	}
	if t.ScaleRange.Lo <= 0 || t.ScaleRange.Lo > t.ScaleRange.Hi {
		return nil, fmt.Errorf("v2: invalid scale range [%v, %v]", t.ScaleRange.Lo, t.ScaleRange.Hi)
	}
	return &t, nil
}

// jitteredSize resolves the output (height, width) for one scale draw.
// Shared protocol with the detection reference suite.
func (t *ScaleJitter) jitteredSize(h, w int, scale float64) (int, int) {
	r := math.Min(float64(t.TargetSize[0])/float64(h), float64(t.TargetSize[1])/float64(w)) * scale
	return int(float64(h) * r), int(float64(w) * r)
}

func (t *ScaleJitter) Transform(in any) (any, error) {
	scale := randgen.Uniform(t.ScaleRange.Lo, t.ScaleRange.Hi)
	resize := func(h, w int) common.Size {
		nh, nw := t.jitteredSize(h, w, scale)
		return common.Size{H: nh, W: nw}
	}
	if s, ok := in.(*Sample); ok {
		_, _, h, w := s.Image.ImageDims()
		return resizeSample(s, resize(h, w), t.Interpolation, false)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		_, _, h, w := img.ImageDims()
		return functional.Resize(img, resize(h, w), t.Interpolation, 0, false)
	})
}

// RandomShortestSize resizes so the shorter edge matches a randomly chosen
// entry of min_sizes without the longer edge exceeding max_size.
// Draw order: one integer for the size index.
type RandomShortestSize struct {
	MinSizes      []int                    `arg:"min_sizes,required"`
	MaxSize       int                      `arg:"max_size,required"`
	Interpolation common.InterpolationMode `arg:"interpolation" default:"bilinear"`
}

// NewRandomShortestSize validates and returns the transform.
func NewRandomShortestSize(t RandomShortestSize) (*RandomShortestSize, error) {
	if len(t.MinSizes) == 0 {
		return nil, fmt.Errorf("v2: RandomShortestSize needs at least one size")
	}
	if t.MaxSize <= 0 {
		return nil, fmt.Errorf("v2: invalid max size %d", t.MaxSize)
	}
	return &t, nil
}

// shortestSize resolves the output (height, width) for one size choice.
// Shared protocol with the detection reference suite.
func shortestSize(h, w, minSize, maxSize int) (int, int) {
	r := math.Min(float64(minSize)/math.Min(float64(h), float64(w)), float64(maxSize)/math.Max(float64(h), float64(w)))
	return int(float64(h) * r), int(float64(w) * r)
}

func (t *RandomShortestSize) Transform(in any) (any, error) {
	minSize := t.MinSizes[randgen.Intn(len(t.MinSizes))]
	resize := func(h, w int) common.Size {
		nh, nw := shortestSize(h, w, minSize, t.MaxSize)
		return common.Size{H: nh, W: nw}
	}
	if s, ok := in.(*Sample); ok {
		_, _, h, w := s.Image.ImageDims()
		return resizeSample(s, resize(h, w), t.Interpolation, false)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		_, _, h, w := img.ImageDims()
		return functional.Resize(img, resize(h, w), t.Interpolation, 0, false)
	})
}
