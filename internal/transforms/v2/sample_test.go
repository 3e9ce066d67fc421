package v2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/imagegen"
	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
)

func sampleFixture(h, w int) *Sample {
	return &Sample{
		Image: imagegen.Image(features.RGB, nil, [2]int{h, w}, tensor.Uint8),
		Boxes: features.NewBoundingBoxes(
			tensor.FromData(tensor.Float32, []float64{2, 1, 6, 5}, 1, 4),
			features.XYXY, [2]int{h, w}),
		Masks: []*features.Mask{imagegen.DetectionMask([2]int{h, w}, 2)},
		Label: imagegen.Label(5, []int{2}),
	}
}

func TestSampleCloneIsDeep(t *testing.T) {
	s := sampleFixture(8, 10)
	clone := s.Clone()

	clone.Image.Data[0] = 99
	clone.Boxes.Data[0] = 99
	clone.Masks[0].Data[0] = 99
	clone.Label.Data[0] = 4

	assert.NotEqual(t, 99.0, s.Image.Data[0])
	assert.NotEqual(t, 99.0, s.Boxes.Data[0])
	assert.NotEqual(t, 99.0, s.Masks[0].Data[0])
	assert.NotEqual(t, 4.0, s.Label.Data[0])
}

func TestFlipBoxesPerFormat(t *testing.T) {
	canvas := [2]int{8, 10}
	tests := []struct {
		format features.BoxFormat
		in     []float64
		want   []float64
	}{
		{features.XYXY, []float64{2, 1, 6, 5}, []float64{4, 1, 8, 5}},
		{features.XYWH, []float64{2, 1, 4, 4}, []float64{4, 1, 4, 4}},
		{features.CXCYWH, []float64{4, 3, 4, 4}, []float64{6, 3, 4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			b := features.NewBoundingBoxes(tensor.FromData(tensor.Float32, tt.in, 1, 4), tt.format, canvas)
			out, err := flipBoxes(b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Data)
			assert.Equal(t, tt.format, out.Format)
		})
	}
}

func TestFlipSampleMirrorsEverything(t *testing.T) {
	s := sampleFixture(8, 10)
	out, err := flipSample(s)
	require.NoError(t, err)

	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, s.Image.At(0, y, 9-x), out.Image.At(0, y, x))
			assert.Equal(t, s.Masks[0].At(0, y, 9-x), out.Masks[0].At(0, y, x))
		}
	}
	assert.Equal(t, []float64{4, 1, 8, 5}, out.Boxes.Data)
	assert.True(t, out.Label.Tensor.Equal(s.Label.Tensor), "labels pass through")
}

func TestResizeSampleScalesBoxesAndMasks(t *testing.T) {
	s := sampleFixture(8, 10)
	out, err := resizeSample(s, common.Size{H: 16, W: 20}, common.Bilinear, false)
	require.NoError(t, err)

	assert.Equal(t, 16, out.Image.Height())
	assert.Equal(t, 20, out.Image.Width())
	assert.Equal(t, []int{2, 16, 20}, out.Masks[0].Shape)
	assert.Equal(t, []float64{4, 2, 12, 10}, out.Boxes.Data)
	assert.Equal(t, [2]int{16, 20}, out.Boxes.CanvasSize)

	// Nearest-resized masks stay binary.
	for _, v := range out.Masks[0].Data {
		assert.Contains(t, []float64{0, 1}, v)
	}
}

func TestShiftClampBoxes(t *testing.T) {
	b := features.NewBoundingBoxes(
		tensor.FromData(tensor.Float32, []float64{2, 1, 6, 5}, 1, 4),
		features.XYXY, [2]int{8, 10})

	out, err := shiftClampBoxes(b, 2, 4, common.Square(4))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 2, 3}, out.Data)
	assert.Equal(t, [2]int{4, 4}, out.CanvasSize)

	b.Format = features.CXCYWH
	_, err = shiftClampBoxes(b, 0, 0, common.Square(4))
	assert.Error(t, err)
}

func TestRandomCropSampleDrawsTopLeft(t *testing.T) {
	crop, err := NewRandomCrop(RandomCrop{Size: common.Square(4)})
	require.NoError(t, err)

	s := sampleFixture(8, 10)
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{2, 4}})
	out, err := crop.Transform(s)
	restore()
	require.NoError(t, err)

	got := out.(*Sample)
	assert.Equal(t, 4, got.Image.Height())
	assert.Equal(t, 4, got.Image.Width())
	assert.Equal(t, []float64{0, 0, 2, 3}, got.Boxes.Data)
	assert.Equal(t, s.Image.At(0, 2, 4), got.Image.At(0, 0, 0))
}

func TestRandomCropSampleRejectsSmallCanvas(t *testing.T) {
	crop, err := NewRandomCrop(RandomCrop{Size: common.Square(16)})
	require.NoError(t, err)
	_, err = crop.Transform(sampleFixture(8, 10))
	assert.Error(t, err)
}

func TestPadSampleShiftsBoxesAndFillsMasks(t *testing.T) {
	s := sampleFixture(8, 10)
	out, err := PadSample(s, common.Pad4(3, 2, 0, 0), common.FillScalar(0), 255)
	require.NoError(t, err)

	assert.Equal(t, 10, out.Image.Height())
	assert.Equal(t, 13, out.Image.Width())
	assert.Equal(t, []float64{5, 3, 9, 7}, out.Boxes.Data)
	assert.Equal(t, [2]int{10, 13}, out.Boxes.CanvasSize)
	assert.Equal(t, 255.0, out.Masks[0].At(0, 0, 0), "mask padding uses the ignore value")
}

func TestFlipTransformRoutesSamples(t *testing.T) {
	flip, err := NewRandomHorizontalFlip(RandomHorizontalFlip{P: 1})
	require.NoError(t, err)

	s := sampleFixture(8, 10)
	randgen.Reset(0)
	out, err := flip.Transform(s)
	require.NoError(t, err)

	got, ok := out.(*Sample)
	require.True(t, ok)
	assert.Equal(t, []float64{4, 1, 8, 5}, got.Boxes.Data)

	skip, err := NewRandomHorizontalFlip(RandomHorizontalFlip{P: 0})
	require.NoError(t, err)
	randgen.Reset(0)
	out, err = skip.Transform(s)
	require.NoError(t, err)
	got = out.(*Sample)
	assert.True(t, got.Image.Tensor.Equal(s.Image.Tensor))
	got.Image.Data[0] = 99
	assert.NotEqual(t, 99.0, s.Image.Data[0], "untouched samples are still copies")
}
