package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/tensor"
)

func TestColorSpaceChannels(t *testing.T) {
	tests := []struct {
		cs   ColorSpace
		want int
	}{
		{Gray, 1},
		{GrayAlpha, 2},
		{RGB, 3},
		{RGBAlpha, 4},
	}
	for _, tt := range tests {
		t.Run(tt.cs.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cs.Channels())
		})
	}
}

func TestColorSpaceString(t *testing.T) {
	assert.Equal(t, "RGB", RGB.String())
	assert.Equal(t, "GRAY_ALPHA", GrayAlpha.String())
	assert.Equal(t, "colorspace(42)", ColorSpace(42).String())
}

func TestColorSpaceChannelsPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { ColorSpace(42).Channels() })
}

func TestImageCloneIsIndependent(t *testing.T) {
	base := tensor.Full(tensor.Uint8, 7, 3, 2, 2)
	im := NewImage(base, RGB)

	clone := im.Clone()
	require.True(t, clone.Tensor.Equal(im.Tensor))
	assert.Equal(t, RGB, clone.Color)

	clone.Set(0, 0, 0, 0)
	assert.Equal(t, 0.0, clone.At(0, 0, 0))
	assert.Equal(t, 7.0, im.At(0, 0, 0))
}

func TestImageWithTensorKeepsColorTag(t *testing.T) {
	im := NewImage(tensor.New(tensor.Uint8, 1, 4, 4), Gray)
	replaced := im.WithTensor(tensor.New(tensor.Float32, 1, 8, 8))

	assert.Equal(t, Gray, replaced.Color)
	assert.Equal(t, 8, replaced.Height())
	assert.Equal(t, 4, im.Height())
}

func TestMaskWithTensorKeepsKind(t *testing.T) {
	m := NewMask(tensor.New(tensor.Uint8, 2, 4, 4), DetectionMask)
	replaced := m.WithTensor(tensor.New(tensor.Uint8, 2, 8, 8))
	assert.Equal(t, DetectionMask, replaced.Kind)

	seg := NewMask(tensor.New(tensor.Uint8, 1, 4, 4), SegmentationMask)
	assert.Equal(t, SegmentationMask, seg.Clone().Kind)
}

func TestBoundingBoxesClone(t *testing.T) {
	data := []float64{1, 2, 5, 6, 0, 0, 3, 3}
	b := NewBoundingBoxes(tensor.FromData(tensor.Float32, data, 2, 4), XYXY, [2]int{16, 24})

	clone := b.Clone()
	require.True(t, clone.Tensor.Equal(b.Tensor))
	assert.Equal(t, XYXY, clone.Format)
	assert.Equal(t, [2]int{16, 24}, clone.CanvasSize)

	clone.Set(9, 0, 0)
	assert.Equal(t, 1.0, b.At(0, 0))
}

func TestBoxFormatString(t *testing.T) {
	assert.Equal(t, "XYXY", XYXY.String())
	assert.Equal(t, "XYWH", XYWH.String())
	assert.Equal(t, "CXCYWH", CXCYWH.String())
	assert.Equal(t, "boxformat(9)", BoxFormat(9).String())
}

func TestLabelClone(t *testing.T) {
	l := NewLabel(tensor.FromData(tensor.Uint8, []float64{0, 1, 2}, 3), 21)
	clone := l.Clone()
	require.True(t, clone.Tensor.Equal(l.Tensor))
	assert.Equal(t, 21, clone.Categories)
}
