package imagegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/tensor"
)

func TestDefaultsCrossProduct(t *testing.T) {
	imgs := Images(Options{})
	// 1 color space x 2 extra-dim layouts x 1 size x 2 dtypes.
	require.Len(t, imgs, 4)

	var unbatched, batched int
	for _, im := range imgs {
		assert.Equal(t, features.RGB, im.Color)
		assert.Equal(t, 16, im.Height())
		assert.Equal(t, 16, im.Width())
		switch im.Dims() {
		case 3:
			unbatched++
		case 4:
			assert.Equal(t, 4, im.Shape[0])
			batched++
		default:
			t.Fatalf("unexpected rank %d", im.Dims())
		}
	}
	assert.Equal(t, 2, unbatched)
	assert.Equal(t, 2, batched)
}

func TestOptionsOverrideOnlyReplacesSetFields(t *testing.T) {
	imgs := Images(Options{DTypes: []tensor.DType{tensor.Uint8}})
	require.Len(t, imgs, 2)
	for _, im := range imgs {
		assert.Equal(t, tensor.Uint8, im.DType)
	}
}

func TestImageIsDeterministic(t *testing.T) {
	a := Image(features.RGB, nil, [2]int{16, 16}, tensor.Uint8)
	b := Image(features.RGB, nil, [2]int{16, 16}, tensor.Uint8)
	assert.True(t, a.Tensor.Equal(b.Tensor))
}

func TestImageGradientValues(t *testing.T) {
	im := Image(features.RGB, nil, [2]int{8, 8}, tensor.Uint8)
	assert.Equal(t, 0.0, im.At(0, 0, 0))
	assert.Equal(t, 7.0, im.At(0, 0, 1))
	assert.Equal(t, 13.0, im.At(0, 1, 0))
	assert.Equal(t, 29.0, im.At(1, 0, 0))
}

func TestImageFloat32ScalesGradientToUnitRange(t *testing.T) {
	im := Image(features.Gray, nil, [2]int{4, 4}, tensor.Float32)
	ref := Image(features.Gray, nil, [2]int{4, 4}, tensor.Uint8)
	assert.Equal(t, tensor.Float32, im.DType)
	for i, v := range im.Data {
		assert.Equal(t, tensor.Float32.Quantize(ref.Data[i]/255.0), v)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestLabelCyclesThroughCategories(t *testing.T) {
	l := Label(3, []int{7})
	require.Equal(t, []int{7}, l.Shape)
	assert.Equal(t, 3, l.Categories)
	for i := 0; i < 7; i++ {
		assert.Equal(t, float64(i%3), l.Data[i])
	}
}

func TestLabelScalarShape(t *testing.T) {
	l := Label(10, nil)
	assert.Equal(t, []int{1}, l.Shape)
	assert.Equal(t, 0.0, l.Data[0])
}

func TestBoundingBoxesStayInsideCanvas(t *testing.T) {
	for _, format := range []features.BoxFormat{features.XYXY, features.XYWH, features.CXCYWH} {
		t.Run(format.String(), func(t *testing.T) {
			b := BoundingBoxes(format, [2]int{16, 24}, 5, tensor.Float32)
			require.Equal(t, []int{5, 4}, b.Shape)
			assert.Equal(t, format, b.Format)
			assert.Equal(t, [2]int{16, 24}, b.CanvasSize)
		})
	}

	b := BoundingBoxes(features.XYXY, [2]int{16, 24}, 5, tensor.Float32)
	for i := 0; i < 5; i++ {
		x1, y1 := b.At(i, 0), b.At(i, 1)
		x2, y2 := b.At(i, 2), b.At(i, 3)
		assert.Less(t, x1, x2)
		assert.Less(t, y1, y2)
		assert.LessOrEqual(t, x2, 24.0)
		assert.LessOrEqual(t, y2, 16.0)
	}
}

func TestDetectionMaskShapeAndContent(t *testing.T) {
	m := DetectionMask([2]int{16, 16}, 3)
	require.Equal(t, []int{3, 16, 16}, m.Shape)
	assert.Equal(t, features.DetectionMask, m.Kind)

	// Each plane contains at least one lit pixel and only 0/1 values.
	for o := 0; o < 3; o++ {
		lit := 0
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				v := m.At(o, y, x)
				assert.Contains(t, []float64{0, 1}, v)
				if v == 1 {
					lit++
				}
			}
		}
		assert.Positive(t, lit)
	}
}

func TestSegmentationMaskStripes(t *testing.T) {
	m := SegmentationMask([2]int{8, 8}, 21)
	require.Equal(t, []int{1, 8, 8}, m.Shape)
	assert.Equal(t, features.SegmentationMask, m.Kind)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, float64(((x+y)/3)%21), m.At(0, y, x))
		}
	}
}
