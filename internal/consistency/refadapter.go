package consistency

import (
	"fmt"

	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/randgen"
	v2 "github.com/pixelwerk/augment/internal/transforms/v2"
	"github.com/pixelwerk/augment/references/detection"
	"github.com/pixelwerk/augment/references/segmentation"
)

// The reference pipelines mutate their target in place, so both sides work
// on their own deep copy of the annotations. The v2 side runs first under
// the shared seed, then the reference side under the same seed, and the
// results must agree.

// DetectionSample builds the v2 sample rendition of a reference detection
// input.
func DetectionSample(img *features.Image, target *detection.Target) *v2.Sample {
	s := &v2.Sample{Image: img.Clone()}
	if target.Boxes != nil {
		s.Boxes = target.Boxes.Clone()
	}
	if target.Labels != nil {
		s.Label = target.Labels.Clone()
	}
	s.Masks = make([]*features.Mask, len(target.Masks))
	for i, m := range target.Masks {
		s.Masks[i] = m.Clone()
	}
	return s
}

// CheckDetectionConsistency compares a v2 transform against its detection
// reference counterpart on one image and target.
func CheckDetectionConsistency(r Reporter, newT v2.Transform, refT detection.Transform, img *features.Image, target *detection.Target, tol Tolerance, context string) {
	r.Helper()
	sample := DetectionSample(img, target)

	randgen.Reset(0)
	out, err := newT.Transform(sample)
	if err != nil {
		r.Errorf("%s: v2 failed: %v", context, err)
		return
	}
	got, ok := out.(*v2.Sample)
	if !ok {
		r.Errorf("%s: v2 returned %T for a sample input", context, out)
		return
	}

	refImg := img.Clone()
	refTarget := &detection.Target{}
	if target.Boxes != nil {
		refTarget.Boxes = target.Boxes.Clone()
	}
	if target.Labels != nil {
		refTarget.Labels = target.Labels.Clone()
	}
	refTarget.Masks = make([]*features.Mask, len(target.Masks))
	for i, m := range target.Masks {
		refTarget.Masks[i] = m.Clone()
	}
	randgen.Reset(0)
	refOut, err := refT.Transform(refImg, refTarget)
	if err != nil {
		r.Fatalf("%s: the reference pipeline rejected the input, adjust the scenario: %v", context, err)
	}

	AssertClose(r, got.Image, refOut, tol, context+" (image)")
	assertBoxesClose(r, got.Boxes, refTarget.Boxes, tol, context)
	if len(got.Masks) != len(refTarget.Masks) {
		r.Errorf("%s: %d masks, want %d", context, len(got.Masks), len(refTarget.Masks))
	} else {
		for i := range refTarget.Masks {
			AssertClose(r, got.Masks[i].Tensor, refTarget.Masks[i].Tensor, tol, fmt.Sprintf("%s (mask %d)", context, i))
		}
	}
	assertLabelsEqual(r, got.Label, refTarget.Labels, context)
}

// SegmentationSample builds the v2 sample rendition of a reference
// segmentation input. The categorical mask rides in the sample's mask list.
func SegmentationSample(img *features.Image, target *segmentation.Target) *v2.Sample {
	s := &v2.Sample{Image: img.Clone()}
	if target.Mask != nil {
		s.Masks = []*features.Mask{target.Mask.Clone()}
	}
	return s
}

// CheckSegmentationConsistency compares a v2 transform against its
// segmentation reference counterpart on one image and target.
func CheckSegmentationConsistency(r Reporter, newT v2.Transform, refT segmentation.Transform, img *features.Image, target *segmentation.Target, tol Tolerance, context string) {
	r.Helper()
	sample := SegmentationSample(img, target)

	randgen.Reset(0)
	out, err := newT.Transform(sample)
	if err != nil {
		r.Errorf("%s: v2 failed: %v", context, err)
		return
	}
	got, ok := out.(*v2.Sample)
	if !ok {
		r.Errorf("%s: v2 returned %T for a sample input", context, out)
		return
	}

	refImg := img.Clone()
	refTarget := &segmentation.Target{}
	if target.Mask != nil {
		refTarget.Mask = target.Mask.Clone()
	}
	randgen.Reset(0)
	refOut, err := refT.Transform(refImg, refTarget)
	if err != nil {
		r.Fatalf("%s: the reference pipeline rejected the input, adjust the scenario: %v", context, err)
	}

	AssertClose(r, got.Image, refOut, tol, context+" (image)")
	if (len(got.Masks) == 0) != (refTarget.Mask == nil) {
		r.Errorf("%s: mask presence diverged", context)
		return
	}
	if refTarget.Mask != nil {
		AssertClose(r, got.Masks[0].Tensor, refTarget.Mask.Tensor, tol, context+" (mask)")
	}
}

func assertBoxesClose(r Reporter, got, want *features.BoundingBoxes, tol Tolerance, context string) {
	r.Helper()
	if (got == nil) != (want == nil) {
		r.Errorf("%s: box presence diverged", context)
		return
	}
	if want == nil {
		return
	}
	if got.Format != want.Format {
		r.Errorf("%s: box format %v, want %v", context, got.Format, want.Format)
	}
	if got.CanvasSize != want.CanvasSize {
		r.Errorf("%s: canvas size %v, want %v", context, got.CanvasSize, want.CanvasSize)
	}
	AssertClose(r, got.Tensor, want.Tensor, tol, context+" (boxes)")
}

func assertLabelsEqual(r Reporter, got, want *features.Label, context string) {
	r.Helper()
	if (got == nil) != (want == nil) {
		r.Errorf("%s: label presence diverged", context)
		return
	}
	if want == nil {
		return
	}
	AssertClose(r, got.Tensor, want.Tensor, Tolerance{}, context+" (labels)")
}
