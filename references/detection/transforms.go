// Package detection carries the data-augmentation pipeline of the detection
// training reference. It is written against the stable transforms API and
// mutates the target in place, the way training loops consume it.
package detection

import (
	"fmt"
	"math"

	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/legacy/functional"
)

// Target is the detection annotation: boxes, instance masks and labels.
// Transforms update its fields in place.
type Target struct {
	Boxes  *features.BoundingBoxes
	Masks  []*features.Mask
	Labels *features.Label
}

// Transform is the reference-pipeline call shape.
type Transform interface {
	Transform(img *features.Image, target *Target) (*features.Image, error)
}

// RandomHorizontalFlip flips the image and annotations with probability p.
// Draw order: one uniform float; flip when it is below p.
type RandomHorizontalFlip struct {
	P float64
}

func (t *RandomHorizontalFlip) Transform(img *features.Image, target *Target) (*features.Image, error) {
	if randgen.Float64() >= t.P {
		return img.Clone(), nil
	}
	out := img.WithTensor(functional.HFlip(img.Tensor))
	for i, m := range target.Masks {
		target.Masks[i] = m.WithTensor(functional.HFlip(m.Tensor))
	}
	if target.Boxes != nil {
		w := float64(target.Boxes.CanvasSize[1])
		if target.Boxes.Format != features.XYXY {
			return nil, fmt.Errorf("detection: flip supports XYXY boxes, got %s", target.Boxes.Format)
		}
		for i := 0; i < len(target.Boxes.Data); i += 4 {
			x1, x2 := target.Boxes.Data[i], target.Boxes.Data[i+2]
			target.Boxes.Data[i], target.Boxes.Data[i+2] = w-x2, w-x1
		}
	}
	return out, nil
}

// resizeWithTarget resamples the image bilinearly and the annotations to the
// new canvas: masks with nearest interpolation, boxes by coordinate scaling.
func resizeWithTarget(img *features.Image, target *Target, size common.Size) (*features.Image, error) {
	_, _, h, w := img.ImageDims()
	resized, err := functional.Resize(img.Tensor, size, common.Bilinear, 0, false)
	if err != nil {
		return nil, err
	}
	_, _, nh, nw := resized.ImageDims()
	for i, m := range target.Masks {
		mt, err := functional.Resize(m.Tensor, common.Size{H: nh, W: nw}, common.Nearest, 0, false)
		if err != nil {
			return nil, err
		}
		target.Masks[i] = m.WithTensor(mt)
	}
	if target.Boxes != nil {
		sx := float64(nw) / float64(w)
		sy := float64(nh) / float64(h)
		for i := 0; i < len(target.Boxes.Data); i += 4 {
			target.Boxes.Data[i] *= sx
			target.Boxes.Data[i+1] *= sy
			target.Boxes.Data[i+2] *= sx
			target.Boxes.Data[i+3] *= sy
		}
		target.Boxes.CanvasSize = [2]int{nh, nw}
	}
	return img.WithTensor(resized), nil
}

// ScaleJitter rescales by a random factor of the target size.
// Draw order: one uniform float for the scale.
type ScaleJitter struct {
	TargetSize [2]int
	ScaleRange common.Range
}

func (t *ScaleJitter) Transform(img *features.Image, target *Target) (*features.Image, error) {
	scale := randgen.Uniform(t.ScaleRange.Lo, t.ScaleRange.Hi)
	_, _, h, w := img.ImageDims()
	r := math.Min(float64(t.TargetSize[0])/float64(h), float64(t.TargetSize[1])/float64(w)) * scale
	size := common.Size{H: int(float64(h) * r), W: int(float64(w) * r)}
	return resizeWithTarget(img, target, size)
}

// RandomShortestSize resizes so the shorter edge matches a randomly chosen
// entry of MinSizes without the longer edge exceeding MaxSize.
// Draw order: one integer for the size index.
type RandomShortestSize struct {
	MinSizes []int
	MaxSize  int
}

func (t *RandomShortestSize) Transform(img *features.Image, target *Target) (*features.Image, error) {
	minSize := t.MinSizes[randgen.Intn(len(t.MinSizes))]
	_, _, h, w := img.ImageDims()
	r := math.Min(float64(minSize)/math.Min(float64(h), float64(w)), float64(t.MaxSize)/math.Max(float64(h), float64(w)))
	size := common.Size{H: int(float64(h) * r), W: int(float64(w) * r)}
	return resizeWithTarget(img, target, size)
}
