package bitmap

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/tensor"
)

func gradient(c, h, w int) *tensor.Tensor {
	t := tensor.New(tensor.Uint8, c, h, w)
	for i := range t.Data {
		t.Data[i] = float64((i*7 + 13) % 256)
	}
	return t
}

func TestRoundTripGray(t *testing.T) {
	src := gradient(1, 5, 7)
	img, err := FromTensor(src)
	require.NoError(t, err)
	_, ok := img.(*image.Gray)
	assert.True(t, ok)
	assert.True(t, src.Equal(ToTensor(img)))
}

func TestRoundTripRGB(t *testing.T) {
	src := gradient(3, 6, 4)
	img, err := FromTensor(src)
	require.NoError(t, err)
	back := ToTensor(img)
	assert.True(t, src.Equal(back), "round trip must be bit exact")
}

func TestRoundTripRGBA(t *testing.T) {
	src := gradient(4, 3, 3)
	src.Data[len(src.Data)-1] = 128 // force a non-opaque pixel
	img, err := FromTensor(src)
	require.NoError(t, err)
	back := ToTensor(img)
	assert.True(t, src.Equal(back))
}

func TestToTensorNormalizesForeignRasters(t *testing.T) {
	// An alpha-premultiplied RGBA raster has to land on the same tensor as
	// the equivalent NRGBA one.
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(90 * y), B: 7, A: 255})
		}
	}
	got := ToTensor(src)
	require.Equal(t, []int{3, 2, 3}, got.Shape)
	assert.Equal(t, 80.0, got.At(0, 0, 2))
	assert.Equal(t, 90.0, got.At(1, 1, 1))
	assert.Equal(t, 7.0, got.At(2, 0, 0))
}

func TestFromTensorRejectsBatched(t *testing.T) {
	_, err := FromTensor(tensor.New(tensor.Uint8, 2, 3, 4, 4))
	assert.Error(t, err)
}

func TestFromTensorRejectsFloat(t *testing.T) {
	_, err := FromTensor(tensor.New(tensor.Float32, 3, 4, 4))
	assert.Error(t, err)
}

func TestFromTensorRejectsTwoChannels(t *testing.T) {
	_, err := FromTensor(tensor.New(tensor.Uint8, 2, 4, 4))
	assert.Error(t, err)
}
