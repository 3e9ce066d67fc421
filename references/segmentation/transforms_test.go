package segmentation

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
	return img, &Target{Mask: imagegen.SegmentationMask([2]int{h, w}, 21)}
}

func TestFlipMirrorsImageAndMask(t *testing.T) {
	img, target := fixture(8, 10)
	maskBefore := target.Mask.Clone()
	flip := &RandomHorizontalFlip{P: 1}

	randgen.Reset(0)
	out, err := flip.Transform(img, target)
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, img.At(0, y, 9-x), out.At(0, y, x))
			assert.Equal(t, maskBefore.At(0, y, 9-x), target.Mask.At(0, y, x))
		}
	}
}

func TestFlipSkipKeepsMask(t *testing.T) {
	img, target := fixture(8, 10)
	maskBefore := target.Mask.Clone()
	flip := &RandomHorizontalFlip{P: 0}

	randgen.Reset(0)
	out, err := flip.Transform(img, target)
	require.NoError(t, err)
	assert.True(t, out.Tensor.Equal(img.Tensor))
	assert.True(t, target.Mask.Tensor.Equal(maskBefore.Tensor))
}

func TestPadIfSmallerPadsRightAndBottom(t *testing.T) {
	img, target := fixture(6, 6)
	pad := &PadIfSmaller{Size: common.Square(8)}

	out, err := pad.Transform(img, target)
	require.NoError(t, err)
	assert.Equal(t, 8, out.Height())
	assert.Equal(t, 8, out.Width())
	assert.Equal(t, img.At(0, 0, 0), out.At(0, 0, 0), "original content stays at the top left")
	assert.Equal(t, float64(IgnoreValue), target.Mask.At(0, 7, 7))
	assert.Equal(t, 0.0, out.At(0, 7, 7), "image pads with fill")
}

func TestPadIfSmallerNoopWhenLargeEnough(t *testing.T) {
	img, target := fixture(8, 10)
	maskBefore := target.Mask.Clone()
	pad := &PadIfSmaller{Size: common.Square(8)}

	out, err := pad.Transform(img, target)
	require.NoError(t, err)
	assert.True(t, out.Tensor.Equal(img.Tensor))
	assert.True(t, target.Mask.Tensor.Equal(maskBefore.Tensor))
}

func TestRandomCropAlignsImageAndMask(t *testing.T) {
	img, target := fixture(8, 10)
	maskBefore := target.Mask.Clone()
	crop := &RandomCrop{Size: common.Square(4)}

	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{2, 3}})
	out, err := crop.Transform(img, target)
	restore()
	require.NoError(t, err)

	assert.Equal(t, 4, out.Height())
	assert.Equal(t, 4, out.Width())
	assert.Equal(t, img.At(0, 2, 3), out.At(0, 0, 0))
	assert.Equal(t, maskBefore.At(0, 2, 3), target.Mask.At(0, 0, 0))
}

func TestRandomCropRejectsSmallCanvas(t *testing.T) {
	img, target := fixture(4, 4)
	crop := &RandomCrop{Size: common.Square(8)}
	_, err := crop.Transform(img, target)
	assert.Error(t, err)
}

func TestComposeRunsPadThenCrop(t *testing.T) {
	img, target := fixture(6, 6)
	chain := &Compose{Transforms: []Transform{
		&PadIfSmaller{Size: common.Square(8)},
		&RandomCrop{Size: common.Square(8)},
	}}

	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0, 0}})
	out, err := chain.Transform(img, target)
	restore()
	require.NoError(t, err)
	assert.Equal(t, 8, out.Height())
	assert.Equal(t, 8, target.Mask.Height())
}

func TestNormalizeLeavesMaskUntouched(t *testing.T) {
	img, target := fixture(4, 4)
	floatImg := img.WithTensor(tensor.ConvertDType(img.Tensor, tensor.Float32))
	maskBefore := target.Mask.Clone()
	norm := &Normalize{Mean: []float64{0.5, 0.5, 0.5}, Std: []float64{0.5, 0.5, 0.5}}

	out, err := norm.Transform(floatImg, target)
	require.NoError(t, err)
	assert.True(t, target.Mask.Tensor.Equal(maskBefore.Tensor))
	assert.NotEqual(t, floatImg.Data[0], out.Data[0])
}

func TestRandomResizePointRangeStillDraws(t *testing.T) {
	img, target := fixture(8, 10)
	rr := &RandomResize{MinSize: 4, MaxSize: 4}

	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0}})
	out, err := rr.Transform(img, target)
	restore()
	require.NoError(t, err)
	assert.Equal(t, 4, out.Height())
	assert.Equal(t, 5, out.Width())
	assert.Equal(t, 4, target.Mask.Height())
	assert.Equal(t, 5, target.Mask.Width())
}
