// Package segmentation carries the data-augmentation pipeline of the
// semantic-segmentation training reference. It is written against the stable
// transforms API and mutates the target mask in place.
package segmentation

import (
	"fmt"

	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/legacy/functional"
)

// IgnoreValue marks padded mask pixels excluded from the training loss.
const IgnoreValue = 255

// Target is the segmentation annotation: a single categorical mask.
type Target struct {
	Mask *features.Mask
}

// Transform is the reference-pipeline call shape.
type Transform interface {
	Transform(img *features.Image, target *Target) (*features.Image, error)
}

// Compose chains transforms left to right.
type Compose struct {
	Transforms []Transform
}

func (t *Compose) Transform(img *features.Image, target *Target) (*features.Image, error) {
	out := img
	var err error
	for _, tr := range t.Transforms {
		out, err = tr.Transform(out, target)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RandomHorizontalFlip flips the image and mask with probability p.
// Draw order: one uniform float; flip when it is below p.
type RandomHorizontalFlip struct {
	P float64
}

func (t *RandomHorizontalFlip) Transform(img *features.Image, target *Target) (*features.Image, error) {
	if randgen.Float64() >= t.P {
		return img.Clone(), nil
	}
	target.Mask = target.Mask.WithTensor(functional.HFlip(target.Mask.Tensor))
	return img.WithTensor(functional.HFlip(img.Tensor)), nil
}

// PadIfSmaller grows the canvas to at least size, padding the image with
// fill and the mask with the ignore value. Draws nothing.
type PadIfSmaller struct {
	Size common.Size
	Fill common.Fill
}

func (t *PadIfSmaller) Transform(img *features.Image, target *Target) (*features.Image, error) {
	_, _, h, w := img.ImageDims()
	padding := common.Padding{
		Right:  max(t.Size.W-w, 0),
		Bottom: max(t.Size.H-h, 0),
	}
	if padding.Right == 0 && padding.Bottom == 0 {
		return img.Clone(), nil
	}
	padded, err := functional.Pad(img.Tensor, padding, t.Fill, common.Constant)
	if err != nil {
		return nil, err
	}
	mask, err := functional.Pad(target.Mask.Tensor, padding, common.FillScalar(IgnoreValue), common.Constant)
	if err != nil {
		return nil, err
	}
	target.Mask = target.Mask.WithTensor(mask)
	return img.WithTensor(padded), nil
}

// RandomCrop crops image and mask at the same random position. The canvas
// must already hold the crop; compose PadIfSmaller first.
// Draw order: two integers (top, left).
type RandomCrop struct {
	Size common.Size
}

func (t *RandomCrop) Transform(img *features.Image, target *Target) (*features.Image, error) {
	_, _, h, w := img.ImageDims()
	if h < t.Size.H || w < t.Size.W {
		return nil, fmt.Errorf("segmentation: canvas (%d, %d) smaller than crop %+v", h, w, t.Size)
	}
	top := randgen.Intn(h - t.Size.H + 1)
	left := randgen.Intn(w - t.Size.W + 1)
	target.Mask = target.Mask.WithTensor(functional.Crop(target.Mask.Tensor, top, left, t.Size.H, t.Size.W))
	return img.WithTensor(functional.Crop(img.Tensor, top, left, t.Size.H, t.Size.W)), nil
}

// Normalize standardizes the image channel-wise; the mask is untouched.
type Normalize struct {
	Mean []float64
	Std  []float64
}

func (t *Normalize) Transform(img *features.Image, target *Target) (*features.Image, error) {
	out, err := functional.Normalize(img.Tensor, t.Mean, t.Std)
	if err != nil {
		return nil, err
	}
	return img.WithTensor(out), nil
}

// RandomResize resamples to a random shorter-edge size in [MinSize, MaxSize],
// the image bilinearly and the mask with nearest interpolation. Evaluation
// pipelines set MinSize == MaxSize; the size draw still happens.
// Draw order: one integer for the size.
type RandomResize struct {
	MinSize int
	MaxSize int
}

func (t *RandomResize) Transform(img *features.Image, target *Target) (*features.Image, error) {
	size := t.MinSize + randgen.Intn(t.MaxSize-t.MinSize+1)
	resized, err := functional.Resize(img.Tensor, common.Shorter(size), common.Bilinear, 0, false)
	if err != nil {
		return nil, err
	}
	_, _, nh, nw := resized.ImageDims()
	mask, err := functional.Resize(target.Mask.Tensor, common.Size{H: nh, W: nw}, common.Nearest, 0, false)
	if err != nil {
		return nil, err
	}
	target.Mask = target.Mask.WithTensor(mask)
	return img.WithTensor(resized), nil
}
