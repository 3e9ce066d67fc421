// Package features defines representation-tagged wrappers around raw tensors.
// A feature carries the semantic role of its data (image, mask, bounding
// boxes, label) so transforms can dispatch on meaning instead of shape.
package features

import (
	"fmt"

	"github.com/pixelwerk/augment/internal/tensor"
)

// ColorSpace tags the pixel layout of an image feature.
type ColorSpace int

const (
	Gray ColorSpace = iota
	GrayAlpha
	RGB
	RGBAlpha
)

func (c ColorSpace) String() string {
	switch c {
	case Gray:
		return "GRAY"
	case GrayAlpha:
		return "GRAY_ALPHA"
	case RGB:
		return "RGB"
	case RGBAlpha:
		return "RGB_ALPHA"
	default:
		return fmt.Sprintf("colorspace(%d)", int(c))
	}
}

// Channels returns the channel count implied by the color space.
func (c ColorSpace) Channels() int {
	switch c {
	case Gray:
		return 1
	case GrayAlpha:
		return 2
	case RGB:
		return 3
	case RGBAlpha:
		return 4
	default:
		panic(fmt.Sprintf("features: unknown color space %d", int(c)))
	}
}

// Image is an image tensor tagged with its color space.
type Image struct {
	*tensor.Tensor
	Color ColorSpace
}

// NewImage wraps a tensor as an image feature.
func NewImage(t *tensor.Tensor, color ColorSpace) *Image {
	return &Image{Tensor: t, Color: color}
}

// WithTensor returns a new image feature carrying the same color space tag.
func (im *Image) WithTensor(t *tensor.Tensor) *Image {
	return &Image{Tensor: t, Color: im.Color}
}

// Clone deep-copies the image.
func (im *Image) Clone() *Image {
	return &Image{Tensor: im.Tensor.Clone(), Color: im.Color}
}

// MaskKind distinguishes the two mask layouts.
type MaskKind int

const (
	// DetectionMask is a stack of per-object binary planes (N, H, W).
	DetectionMask MaskKind = iota
	// SegmentationMask is a single categorical plane (H, W).
	SegmentationMask
)

// Mask is a mask tensor tagged with its layout.
type Mask struct {
	*tensor.Tensor
	Kind MaskKind
}

// NewMask wraps a tensor as a mask feature.
func NewMask(t *tensor.Tensor, kind MaskKind) *Mask {
	return &Mask{Tensor: t, Kind: kind}
}

// WithTensor returns a new mask feature carrying the same kind tag.
func (m *Mask) WithTensor(t *tensor.Tensor) *Mask {
	return &Mask{Tensor: t, Kind: m.Kind}
}

// Clone deep-copies the mask.
func (m *Mask) Clone() *Mask {
	return &Mask{Tensor: m.Tensor.Clone(), Kind: m.Kind}
}

// BoxFormat tags the coordinate convention of bounding boxes.
type BoxFormat int

const (
	XYXY BoxFormat = iota
	XYWH
	CXCYWH
)

func (f BoxFormat) String() string {
	switch f {
	case XYXY:
		return "XYXY"
	case XYWH:
		return "XYWH"
	case CXCYWH:
		return "CXCYWH"
	default:
		return fmt.Sprintf("boxformat(%d)", int(f))
	}
}

// BoundingBoxes is a (N, 4) box tensor tagged with its format and the
// (height, width) of the canvas the coordinates live on.
type BoundingBoxes struct {
	*tensor.Tensor
	Format     BoxFormat
	CanvasSize [2]int
}

// NewBoundingBoxes wraps a tensor as a bounding-box feature.
func NewBoundingBoxes(t *tensor.Tensor, format BoxFormat, canvas [2]int) *BoundingBoxes {
	return &BoundingBoxes{Tensor: t, Format: format, CanvasSize: canvas}
}

// Clone deep-copies the boxes.
func (b *BoundingBoxes) Clone() *BoundingBoxes {
	return &BoundingBoxes{Tensor: b.Tensor.Clone(), Format: b.Format, CanvasSize: b.CanvasSize}
}

// Label is a categorical label tensor with its category count.
type Label struct {
	*tensor.Tensor
	Categories int
}

// NewLabel wraps a tensor as a label feature.
func NewLabel(t *tensor.Tensor, categories int) *Label {
	return &Label{Tensor: t, Categories: categories}
}

// Clone deep-copies the label.
func (l *Label) Clone() *Label {
	return &Label{Tensor: l.Tensor.Clone(), Categories: l.Categories}
}
