package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		want  int
	}{
		{"scalar", nil, 1},
		{"vector", []int{5}, 5},
		{"image", []int{3, 4, 5}, 60},
		{"batched", []int{2, 3, 4, 5}, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tn := New(Float32, tt.shape...)
			assert.Equal(t, tt.want, tn.NumElements())
			assert.Equal(t, len(tt.shape), tn.Dims())
		})
	}
}

func TestAtSetRoundTrip(t *testing.T) {
	tn := New(Float64, 2, 3, 4)
	tn.Set(7.5, 1, 2, 3)
	assert.InDelta(t, 7.5, tn.At(1, 2, 3), 0)
	assert.InDelta(t, 0, tn.At(0, 0, 0), 0)
}

func TestImageDims(t *testing.T) {
	tests := []struct {
		name       string
		shape      []int
		n, c, h, w int
	}{
		{"2d", []int{7, 9}, 1, 1, 7, 9},
		{"chw", []int{3, 7, 9}, 1, 3, 7, 9},
		{"nchw", []int{4, 3, 7, 9}, 4, 3, 7, 9},
		{"double batch", []int{2, 4, 3, 7, 9}, 8, 3, 7, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, c, h, w := New(Uint8, tt.shape...).ImageDims()
			assert.Equal(t, [4]int{tt.n, tt.c, tt.h, tt.w}, [4]int{n, c, h, w})
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := Full(Uint8, 3, 2, 2)
	b := a.Clone()
	b.Data[0] = 9
	b.Shape[0] = 5
	assert.InDelta(t, 3, a.Data[0], 0)
	assert.Equal(t, 2, a.Shape[0])
}

func TestQuantize(t *testing.T) {
	assert.InDelta(t, 255, Uint8.Quantize(300), 0)
	assert.InDelta(t, 0, Uint8.Quantize(-3), 0)
	assert.InDelta(t, 128, Uint8.Quantize(127.5), 0)
	assert.InDelta(t, float64(float32(1.0/3.0)), Float32.Quantize(1.0/3.0), 0)
	assert.InDelta(t, 1.0/3.0, Float64.Quantize(1.0/3.0), 0)
}

func TestConvertDTypeUint8ToFloat(t *testing.T) {
	src := FromData(Uint8, []float64{0, 51, 255}, 3)
	dst := ConvertDType(src, Float64)
	require.Equal(t, Float64, dst.DType)
	assert.InDelta(t, 0, dst.Data[0], 0)
	assert.InDelta(t, 0.2, dst.Data[1], 0)
	assert.InDelta(t, 1, dst.Data[2], 0)
}

func TestConvertDTypeFloatToUint8(t *testing.T) {
	src := FromData(Float64, []float64{0, 0.2, 1.0}, 3)
	dst := ConvertDType(src, Uint8)
	require.Equal(t, Uint8, dst.DType)
	assert.InDelta(t, 0, dst.Data[0], 0)
	assert.InDelta(t, 51, dst.Data[1], 0)
	assert.InDelta(t, 255, dst.Data[2], 0)
}

func TestConvertDTypeRoundTripExact(t *testing.T) {
	src := New(Uint8, 3, 4, 4)
	for i := range src.Data {
		src.Data[i] = float64(i % 256)
	}
	back := ConvertDType(ConvertDType(src, Float64), Uint8)
	assert.True(t, src.Equal(back))
}

func TestNarrow(t *testing.T) {
	src := FromData(Float64, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 3, 3)

	rows := Narrow(src, 0, 1, 2)
	assert.Equal(t, []int{2, 3}, rows.Shape)
	assert.Equal(t, []float64{4, 5, 6, 7, 8, 9}, rows.Data)

	cols := Narrow(src, 1, 0, 2)
	assert.Equal(t, []int{3, 2}, cols.Shape)
	assert.Equal(t, []float64{1, 2, 4, 5, 7, 8}, cols.Data)
}

func TestNarrowPanicsOutOfRange(t *testing.T) {
	src := New(Float64, 3, 3)
	assert.Panics(t, func() { Narrow(src, 0, 2, 2) })
	assert.Panics(t, func() { Narrow(src, 2, 0, 1) })
}

func TestEqual(t *testing.T) {
	a := FromData(Uint8, []float64{1, 2, 3, 4}, 2, 2)
	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(FromData(Uint8, []float64{1, 2, 3, 4}, 4)))
	assert.False(t, a.Equal(FromData(Float32, []float64{1, 2, 3, 4}, 2, 2)))
}
