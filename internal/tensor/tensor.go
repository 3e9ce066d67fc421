// Package tensor provides a minimal dense N-dimensional numeric array used as
// the raw image representation throughout the transforms packages. Image
// tensors are laid out row-major with the trailing three dimensions being
// (channels, height, width); any leading dimensions are batch dimensions.
package tensor

import (
	"fmt"
	"math"
	"slices"
)

// DType identifies the element type of a tensor. The backing store is always
// float64; the dtype governs quantization and conversion semantics.
type DType int

const (
	Uint8 DType = iota
	Float32
	Float64
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// IsFloat reports whether the dtype is a floating point type.
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// Quantize snaps a raw value to the representable set of the dtype. Uint8
// values are rounded half away from zero and clamped to [0, 255]; float32
// values are round-tripped through float32 precision.
func (d DType) Quantize(v float64) float64 {
	switch d {
	case Uint8:
		r := math.Round(v)
		if r < 0 {
			return 0
		}
		if r > 255 {
			return 255
		}
		return r
	case Float32:
		return float64(float32(v))
	default:
		return v
	}
}

// Tensor is a dense row-major N-dimensional array.
type Tensor struct {
	Shape []int
	DType DType
	Data  []float64
}

// New allocates a zero-filled tensor.
func New(dtype DType, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		if s < 0 {
			panic(fmt.Sprintf("tensor: negative dimension %d in shape %v", s, shape))
		}
		n *= s
	}
	return &Tensor{
		Shape: slices.Clone(shape),
		DType: dtype,
		Data:  make([]float64, n),
	}
}

// FromData wraps existing data in a tensor. The data slice is used directly,
// not copied; len(data) must match the shape product.
func FromData(dtype DType, data []float64, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if len(data) != n {
		panic(fmt.Sprintf("tensor: data length %d does not match shape %v", len(data), shape))
	}
	return &Tensor{Shape: slices.Clone(shape), DType: dtype, Data: data}
}

// Full allocates a tensor filled with a constant value.
func Full(dtype DType, v float64, shape ...int) *Tensor {
	t := New(dtype, shape...)
	for i := range t.Data {
		t.Data[i] = v
	}
	return t
}

// NumElements returns the total element count.
func (t *Tensor) NumElements() int {
	return len(t.Data)
}

// Dims returns the number of dimensions.
func (t *Tensor) Dims() int {
	return len(t.Shape)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		Shape: slices.Clone(t.Shape),
		DType: t.DType,
		Data:  slices.Clone(t.Data),
	}
}

// Equal reports bit-exact equality of shape, dtype and data.
func (t *Tensor) Equal(o *Tensor) bool {
	if o == nil || t == nil {
		return t == o
	}
	return t.DType == o.DType && slices.Equal(t.Shape, o.Shape) && slices.Equal(t.Data, o.Data)
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: %d indices for %d dimensions", len(idx), len(t.Shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.Shape))
		}
		off = off*t.Shape[i] + x
	}
	return off
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(idx ...int) float64 {
	return t.Data[t.offset(idx)]
}

// Set stores an element at the given multi-dimensional index.
func (t *Tensor) Set(v float64, idx ...int) {
	t.Data[t.offset(idx)] = v
}

// ImageDims interprets the tensor as a (possibly batched) image and returns
// the flattened batch count together with channels, height and width. It
// panics for tensors with fewer than two dimensions; two-dimensional tensors
// are treated as single-channel.
func (t *Tensor) ImageDims() (n, c, h, w int) {
	switch {
	case len(t.Shape) == 2:
		return 1, 1, t.Shape[0], t.Shape[1]
	case len(t.Shape) >= 3:
		nd := len(t.Shape)
		n = 1
		for _, s := range t.Shape[:nd-3] {
			n *= s
		}
		return n, t.Shape[nd-3], t.Shape[nd-2], t.Shape[nd-1]
	default:
		panic(fmt.Sprintf("tensor: shape %v is not an image", t.Shape))
	}
}

// Channels returns the channel count of an image tensor.
func (t *Tensor) Channels() int {
	_, c, _, _ := t.ImageDims()
	return c
}

// Height returns the spatial height of an image tensor.
func (t *Tensor) Height() int {
	_, _, h, _ := t.ImageDims()
	return h
}

// Width returns the spatial width of an image tensor.
func (t *Tensor) Width() int {
	_, _, _, w := t.ImageDims()
	return w
}

// BatchShape returns the leading dimensions before the trailing (C, H, W)
// triple. Unbatched images return an empty slice.
func (t *Tensor) BatchShape() []int {
	if len(t.Shape) <= 3 {
		return nil
	}
	return slices.Clone(t.Shape[:len(t.Shape)-3])
}

// WithImageShape returns a zero tensor with the same batch dimensions as t
// but a new trailing (c, h, w) triple and the given dtype.
func (t *Tensor) WithImageShape(dtype DType, c, h, w int) *Tensor {
	shape := append(t.BatchShape(), c, h, w)
	if len(t.Shape) == 2 {
		shape = []int{h, w}
	}
	return New(dtype, shape...)
}

// ConvertDType converts between element types following image-value
// semantics: uint8 maps onto [0, 1] when converted to float, floats scale to
// [0, 255] when converted to uint8, and float-to-float conversion re-rounds
// through the target precision.
func ConvertDType(t *Tensor, dtype DType) *Tensor {
	out := &Tensor{Shape: slices.Clone(t.Shape), DType: dtype, Data: make([]float64, len(t.Data))}
	switch {
	case t.DType == dtype:
		copy(out.Data, t.Data)
	case t.DType == Uint8 && dtype.IsFloat():
		for i, v := range t.Data {
			out.Data[i] = dtype.Quantize(v / 255.0)
		}
	case t.DType.IsFloat() && dtype == Uint8:
		for i, v := range t.Data {
			out.Data[i] = math.Floor(v * 255.9999)
			if out.Data[i] < 0 {
				out.Data[i] = 0
			} else if out.Data[i] > 255 {
				out.Data[i] = 255
			}
		}
	default:
		for i, v := range t.Data {
			out.Data[i] = dtype.Quantize(v)
		}
	}
	return out
}

// Narrow copies a contiguous sub-range of length size along dim.
func Narrow(t *Tensor, dim, start, size int) *Tensor {
	if dim < 0 || dim >= len(t.Shape) {
		panic(fmt.Sprintf("tensor: narrow dim %d out of range for shape %v", dim, t.Shape))
	}
	if start < 0 || size < 0 || start+size > t.Shape[dim] {
		panic(fmt.Sprintf("tensor: narrow [%d, %d) out of range for dim %d of shape %v", start, start+size, dim, t.Shape))
	}
	outShape := slices.Clone(t.Shape)
	outShape[dim] = size
	out := New(t.DType, outShape...)

	outer := 1
	for _, s := range t.Shape[:dim] {
		outer *= s
	}
	inner := 1
	for _, s := range t.Shape[dim+1:] {
		inner *= s
	}
	for o := 0; o < outer; o++ {
		srcBase := (o*t.Shape[dim] + start) * inner
		dstBase := o * size * inner
		copy(out.Data[dstBase:dstBase+size*inner], t.Data[srcBase:srcBase+size*inner])
	}
	return out
}
