package v2

import (
	"fmt"

	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/v2/functional"
)

// Sample bundles an image with its detection or segmentation target so
// geometric transforms keep the annotations aligned with the pixels.
type Sample struct {
	Image *features.Image
	Boxes *features.BoundingBoxes
	Masks []*features.Mask
	Label *features.Label
}

// Clone deep-copies the sample.
func (s *Sample) Clone() *Sample {
	out := &Sample{Image: s.Image.Clone()}
	if s.Boxes != nil {
		out.Boxes = s.Boxes.Clone()
	}
	if s.Label != nil {
		out.Label = s.Label.Clone()
	}
	out.Masks = make([]*features.Mask, len(s.Masks))
	for i, m := range s.Masks {
		out.Masks[i] = m.Clone()
	}
	return out
}

// flipSample mirrors the image and every spatial annotation horizontally.
func flipSample(s *Sample) (*Sample, error) {
	out := s.Clone()
	out.Image = s.Image.WithTensor(functional.HorizontalFlip(s.Image.Tensor))
	for i, m := range s.Masks {
		out.Masks[i] = m.WithTensor(functional.HorizontalFlip(m.Tensor))
	}
	if s.Boxes != nil {
		flipped, err := flipBoxes(s.Boxes)
		if err != nil {
			return nil, err
		}
		out.Boxes = flipped
	}
	return out, nil
}

func flipBoxes(b *features.BoundingBoxes) (*features.BoundingBoxes, error) {
	w := float64(b.CanvasSize[1])
	out := b.Clone()
	for i := 0; i < len(b.Data); i += 4 {
		switch b.Format {
		case features.XYXY:
			out.Data[i], out.Data[i+2] = w-b.Data[i+2], w-b.Data[i]
		case features.XYWH:
			// x' = W - x - box width; the width column is Data[i+2].
			out.Data[i] = w - b.Data[i] - b.Data[i+2]
		case features.CXCYWH:
			out.Data[i] = w - b.Data[i]
		default:
			return nil, fmt.Errorf("v2: unsupported box format %s", b.Format)
		}
	}
	return out, nil
}

// resizeSample resamples the image bilinearly and every mask with nearest
// interpolation, rescaling box coordinates to the new canvas.
func resizeSample(s *Sample, size common.Size, interpolation common.InterpolationMode, antialias bool) (*Sample, error) {
	_, _, h, w := s.Image.ImageDims()
	img, err := functional.Resize(s.Image.Tensor, size, interpolation, 0, antialias)
	if err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Image = s.Image.WithTensor(img)
	_, _, nh, nw := img.ImageDims()
	for i, m := range s.Masks {
		resized, err := functional.Resize(m.Tensor, common.Size{H: nh, W: nw}, common.Nearest, 0, false)
		if err != nil {
			return nil, err
		}
		out.Masks[i] = m.WithTensor(resized)
	}
	if s.Boxes != nil {
		sx := float64(nw) / float64(w)
		sy := float64(nh) / float64(h)
		boxes := s.Boxes.Clone()
		scaleBoxes(boxes, sx, sy)
		boxes.CanvasSize = [2]int{nh, nw}
		out.Boxes = boxes
	}
	return out, nil
}

func scaleBoxes(b *features.BoundingBoxes, sx, sy float64) {
	for i := 0; i < len(b.Data); i += 4 {
		b.Data[i] *= sx
		b.Data[i+1] *= sy
		b.Data[i+2] *= sx
		b.Data[i+3] *= sy
	}
}

func (t *Normalize) transformSample(s *Sample) (*Sample, error) {
	img, err := functional.Normalize(s.Image.Tensor, t.Mean, t.Std)
	if err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Image = s.Image.WithTensor(img)
	return out, nil
}

func (t *Resize) transformSample(s *Sample) (*Sample, error) {
	return resizeSample(s, t.Size, t.Interpolation, t.Antialias)
}

// transformSample crops the image and target together. The canvas must
// already hold the crop; compose a padding transform first for smaller
// inputs.
// Draw order: two integers (top, left), same as the image-only path.
func (t *RandomCrop) transformSample(s *Sample) (*Sample, error) {
	_, _, h, w := s.Image.ImageDims()
	if h < t.Size.H || w < t.Size.W {
		return nil, fmt.Errorf("v2: sample canvas (%d, %d) smaller than crop %+v", h, w, t.Size)
	}
	top := randgen.Intn(h - t.Size.H + 1)
	left := randgen.Intn(w - t.Size.W + 1)
	out := s.Clone()
	out.Image = s.Image.WithTensor(functional.Crop(s.Image.Tensor, top, left, t.Size.H, t.Size.W))
	for i, m := range s.Masks {
		out.Masks[i] = m.WithTensor(functional.Crop(m.Tensor, top, left, t.Size.H, t.Size.W))
	}
	if s.Boxes != nil {
		boxes, err := shiftClampBoxes(s.Boxes, top, left, t.Size)
		if err != nil {
			return nil, err
		}
		out.Boxes = boxes
	}
	return out, nil
}

// shiftClampBoxes translates XYXY boxes into crop coordinates and clamps
// them to the new canvas.
func shiftClampBoxes(b *features.BoundingBoxes, top, left int, size common.Size) (*features.BoundingBoxes, error) {
	if b.Format != features.XYXY {
		return nil, fmt.Errorf("v2: crop supports XYXY boxes, got %s", b.Format)
	}
	out := b.Clone()
	for i := 0; i < len(out.Data); i += 4 {
		out.Data[i] = clampCoord(out.Data[i]-float64(left), float64(size.W))
		out.Data[i+1] = clampCoord(out.Data[i+1]-float64(top), float64(size.H))
		out.Data[i+2] = clampCoord(out.Data[i+2]-float64(left), float64(size.W))
		out.Data[i+3] = clampCoord(out.Data[i+3]-float64(top), float64(size.H))
	}
	out.CanvasSize = [2]int{size.H, size.W}
	return out, nil
}

func clampCoord(v, hi float64) float64 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// PadSample grows a sample's image and masks so a following crop fits. Masks
// pad with the ignore value, the image with fill.
func PadSample(s *Sample, padding common.Padding, fill common.Fill, maskFill float64) (*Sample, error) {
	img, err := functional.Pad(s.Image.Tensor, padding, fill, common.Constant)
	if err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Image = s.Image.WithTensor(img)
	for i, m := range s.Masks {
		padded, err := functional.Pad(m.Tensor, padding, common.FillScalar(maskFill), common.Constant)
		if err != nil {
			return nil, err
		}
		out.Masks[i] = m.WithTensor(padded)
	}
	if s.Boxes != nil {
		boxes := s.Boxes.Clone()
		for i := 0; i < len(boxes.Data); i += 4 {
			boxes.Data[i] += float64(padding.Left)
			boxes.Data[i+1] += float64(padding.Top)
			boxes.Data[i+2] += float64(padding.Left)
			boxes.Data[i+3] += float64(padding.Top)
		}
		boxes.CanvasSize = [2]int{boxes.CanvasSize[0] + padding.Top + padding.Bottom, boxes.CanvasSize[1] + padding.Left + padding.Right}
		out.Boxes = boxes
	}
	return out, nil
}
