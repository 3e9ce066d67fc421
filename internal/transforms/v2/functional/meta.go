// Package functional holds the free-function dispatchers of the v2
// transforms API. The surface matches the stable API dispatcher for
// dispatcher; the kernels are an independent implementation validated
// against the stable one by the consistency suite.
package functional

import (
	"fmt"
	"image"

	"github.com/pixelwerk/augment/internal/bitmap"
	"github.com/pixelwerk/augment/internal/tensor"
)

// GetDimensions returns (channels, height, width) of an image tensor.
func GetDimensions(img *tensor.Tensor) (int, int, int) {
	_, c, h, w := img.ImageDims()
	return c, h, w
}

// GetImageSize returns (width, height) of an image tensor.
func GetImageSize(img *tensor.Tensor) (int, int) {
	_, _, h, w := img.ImageDims()
	return w, h
}

// GetImageNumChannels returns the channel count of an image tensor.
func GetImageNumChannels(img *tensor.Tensor) int {
	_, c, _, _ := img.ImageDims()
	return c
}

// ToTensor converts a bitmap into a float32 tensor scaled to [0, 1].
func ToTensor(pic any) (*tensor.Tensor, error) {
	t, err := BitmapToTensor(pic)
	if err != nil {
		return nil, err
	}
	return tensor.ConvertDType(t, tensor.Float32), nil
}

// BitmapToTensor converts a bitmap into a uint8 tensor without rescaling.
func BitmapToTensor(pic any) (*tensor.Tensor, error) {
	switch v := pic.(type) {
	case *tensor.Tensor:
		return v.Clone(), nil
	case image.Image:
		return bitmap.ToTensor(v), nil
	default:
		return nil, fmt.Errorf("functional: cannot convert %T to tensor", pic)
	}
}

// ConvertDType converts the element type of an image tensor following image
// value semantics.
func ConvertDType(img *tensor.Tensor, dtype tensor.DType) *tensor.Tensor {
	return tensor.ConvertDType(img, dtype)
}

// ToBitmap renders an unbatched image tensor as a bitmap. Float tensors are
// rescaled to uint8 first.
func ToBitmap(pic *tensor.Tensor) (image.Image, error) {
	t := pic
	if t.DType != tensor.Uint8 {
		t = tensor.ConvertDType(t, tensor.Uint8)
	}
	return bitmap.FromTensor(t)
}
