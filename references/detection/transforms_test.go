package detection

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

func fixture(h, w int) (*features.Image, *Target) {
	img := imagegen.Image(features.RGB, nil, [2]int{h, w}, tensor.Uint8)
	target := &Target{
		Boxes: features.NewBoundingBoxes(
			tensor.FromData(tensor.Float32, []float64{2, 1, 6, 5}, 1, 4),
			features.XYXY, [2]int{h, w}),
		Masks:  []*features.Mask{imagegen.DetectionMask([2]int{h, w}, 2)},
		Labels: imagegen.Label(5, []int{2}),
	}
	return img, target
}

func TestFlipMutatesTargetInPlace(t *testing.T) {
	img, target := fixture(8, 10)
	flip := &RandomHorizontalFlip{P: 1}

	randgen.Reset(0)
	out, err := flip.Transform(img, target)
	require.NoError(t, err)

	assert.Equal(t, []float64{4, 1, 8, 5}, target.Boxes.Data)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, img.At(0, y, 9-x), out.At(0, y, x))
		}
	}
}

func TestFlipSkipLeavesTargetAlone(t *testing.T) {
	img, target := fixture(8, 10)
	boxesBefore := target.Boxes.Clone()
	flip := &RandomHorizontalFlip{P: 0}

	randgen.Reset(0)
	out, err := flip.Transform(img, target)
	require.NoError(t, err)
	assert.True(t, out.Tensor.Equal(img.Tensor))
	assert.True(t, target.Boxes.Tensor.Equal(boxesBefore.Tensor))
}

func TestFlipRejectsNonXYXYBoxes(t *testing.T) {
	img, target := fixture(8, 10)
	target.Boxes.Format = features.CXCYWH
	flip := &RandomHorizontalFlip{P: 1}
	randgen.Reset(0)
	_, err := flip.Transform(img, target)
	assert.Error(t, err)
}

func TestResizeWithTargetScalesAnnotations(t *testing.T) {
	img, target := fixture(8, 10)
	out, err := resizeWithTarget(img, target, common.Size{H: 16, W: 20})
	require.NoError(t, err)

	assert.Equal(t, 16, out.Height())
	assert.Equal(t, 20, out.Width())
	assert.Equal(t, []float64{4, 2, 12, 10}, target.Boxes.Data)
	assert.Equal(t, [2]int{16, 20}, target.Boxes.CanvasSize)
	assert.Equal(t, []int{2, 16, 20}, target.Masks[0].Shape)
}

func TestScaleJitterUnitScale(t *testing.T) {
	img, target := fixture(8, 10)
	sj := &ScaleJitter{TargetSize: [2]int{16, 16}, ScaleRange: common.RangeOf(1, 1)}

	randgen.Reset(0)
	out, err := sj.Transform(img, target)
	require.NoError(t, err)
	assert.Equal(t, 12, out.Height())
	assert.Equal(t, 16, out.Width())
}

func TestRandomShortestSizeScriptedIndex(t *testing.T) {
	img, target := fixture(8, 10)
	rss := &RandomShortestSize{MinSizes: []int{4, 6}, MaxSize: 100}

	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{1}})
	out, err := rss.Transform(img, target)
	restore()
	require.NoError(t, err)
	assert.Equal(t, 6, out.Height())
	assert.Equal(t, 7, out.Width())
	assert.Equal(t, [2]int{6, 7}, target.Boxes.CanvasSize)
}
