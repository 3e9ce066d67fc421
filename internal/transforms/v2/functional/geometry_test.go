package functional

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
)

func TestHorizontalFlip(t *testing.T) {
	img := tensor.FromData(tensor.Uint8, []float64{1, 2, 3, 4, 5, 6}, 1, 2, 3)
	assert.Equal(t, []float64{3, 2, 1, 6, 5, 4}, HorizontalFlip(img).Data)
}

func TestVerticalFlip(t *testing.T) {
	img := tensor.FromData(tensor.Uint8, []float64{1, 2, 3, 4, 5, 6}, 1, 2, 3)
	assert.Equal(t, []float64{4, 5, 6, 1, 2, 3}, VerticalFlip(img).Data)
}

func TestCropAndCenterCrop(t *testing.T) {
	img := tensor.FromData(tensor.Uint8, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, 1, 4, 4)

	out := Crop(img, 1, 1, 2, 2)
	assert.Equal(t, []float64{6, 7, 10, 11}, out.Data)

	center := CenterCrop(img, common.Square(2))
	assert.Equal(t, []float64{6, 7, 10, 11}, center.Data)
}

func TestPadReflectAndSymmetric(t *testing.T) {
	img := tensor.FromData(tensor.Uint8, []float64{1, 2, 3}, 1, 1, 3)

	out, err := Pad(img, common.Pad4(2, 0, 2, 0), common.Fill{}, common.Reflect)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1, 2, 3, 2, 1}, out.Data)

	out, err = Pad(img, common.Pad4(2, 0, 2, 0), common.Fill{}, common.Symmetric)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 1, 2, 3, 3, 2}, out.Data)
}

func TestPadPerChannelFill(t *testing.T) {
	img := tensor.New(tensor.Uint8, 2, 1, 1)
	out, err := Pad(img, common.Pad1(1), common.FillPerChannel(7, 9), common.Constant)
	require.NoError(t, err)
	assert.Equal(t, 7.0, out.At(0, 0, 0))
	assert.Equal(t, 9.0, out.At(1, 0, 0))
}

func TestResizeShorterEdgeWithMaxSize(t *testing.T) {
	img := tensor.New(tensor.Uint8, 1, 10, 20)
	out, err := Resize(img, common.Shorter(8), common.Bilinear, 12, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6, 12}, out.Shape)

	_, err = Resize(img, common.Square(4), common.Bilinear, 12, false)
	assert.Error(t, err, "max size needs a shorter-edge spec")
}

func TestResizedCropVariadicAntialias(t *testing.T) {
	img := tensor.New(tensor.Float32, 1, 16, 16)
	for i := range img.Data {
		img.Data[i] = float64(i%7) / 7
	}

	plain, err := ResizedCrop(img, 0, 0, 16, 16, common.Square(4), common.Bilinear)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 4}, plain.Shape)

	smooth, err := ResizedCrop(img, 0, 0, 16, 16, common.Square(4), common.Bilinear, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 4}, smooth.Shape)
	assert.False(t, plain.Equal(smooth), "antialiasing changes the downscale result")
}

func TestFiveAndTenCropCounts(t *testing.T) {
	img := tensor.New(tensor.Uint8, 3, 8, 8)
	five, err := FiveCrop(img, common.Square(4))
	require.NoError(t, err)
	assert.Len(t, five, 5)

	ten, err := TenCrop(img, common.Square(4), false)
	require.NoError(t, err)
	assert.Len(t, ten, 10)

	_, err = FiveCrop(img, common.Square(9))
	assert.Error(t, err)
}

func TestEraseRegion(t *testing.T) {
	img := tensor.Full(tensor.Uint8, 8, 1, 3, 3)
	out, err := Erase(img, 0, 0, 2, 2, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{
		1, 1, 8,
		1, 1, 8,
		8, 8, 8,
	}, out.Data)
}

func TestGaussianBlurValidation(t *testing.T) {
	img := tensor.New(tensor.Uint8, 1, 4, 4)
	_, err := GaussianBlur(img, common.Square(2), 1)
	assert.Error(t, err, "even kernel")
	_, err = GaussianBlur(img, common.Square(3), -0.5)
	assert.Error(t, err, "negative sigma")

	flat := tensor.Full(tensor.Float32, 0.5, 1, 6, 6)
	out, err := GaussianBlur(flat, common.Square(5), 0)
	require.NoError(t, err)
	for _, v := range out.Data {
		assert.InDelta(t, 0.5, v, 1e-6)
	}
}
