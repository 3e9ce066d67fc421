package consistency

import (
	"fmt"
	"image"
	"math"

	"github.com/pixelwerk/augment/internal/bitmap"
	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/tensor"
)

// Reporter receives comparison failures. *testing.T satisfies it; the parity
// command provides its own collector.
type Reporter interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// AssertClose fails the reporter unless got matches want within tol. The two
// values must have the same dynamic kind: tensors, feature images, bitmaps,
// samples or slices thereof. A zero tolerance demands exact equality.
func AssertClose(r Reporter, got, want any, tol Tolerance, context string) {
	r.Helper()
	switch w := want.(type) {
	case *tensor.Tensor:
		g, ok := got.(*tensor.Tensor)
		if !ok {
			r.Errorf("%s: got %T, want *tensor.Tensor", context, got)
			return
		}
		assertTensorsClose(r, g, w, tol, context)
	case *features.Image:
		g, ok := got.(*features.Image)
		if !ok {
			r.Errorf("%s: got %T, want *features.Image", context, got)
			return
		}
		if g.Color != w.Color {
			r.Errorf("%s: color space %v, want %v", context, g.Color, w.Color)
		}
		assertTensorsClose(r, g.Tensor, w.Tensor, tol, context)
	case image.Image:
		g, ok := got.(image.Image)
		if !ok {
			r.Errorf("%s: got %T, want image.Image", context, got)
			return
		}
		assertTensorsClose(r, bitmap.ToTensor(g), bitmap.ToTensor(w), tol, context+" (bitmap)")
	case []*tensor.Tensor:
		g, ok := got.([]*tensor.Tensor)
		if !ok {
			r.Errorf("%s: got %T, want []*tensor.Tensor", context, got)
			return
		}
		if len(g) != len(w) {
			r.Errorf("%s: %d outputs, want %d", context, len(g), len(w))
			return
		}
		for i := range w {
			assertTensorsClose(r, g[i], w[i], tol, fmt.Sprintf("%s [%d]", context, i))
		}
	case []*features.Image:
		g, ok := got.([]*features.Image)
		if !ok {
			r.Errorf("%s: got %T, want []*features.Image", context, got)
			return
		}
		if len(g) != len(w) {
			r.Errorf("%s: %d outputs, want %d", context, len(g), len(w))
			return
		}
		for i := range w {
			AssertClose(r, g[i], w[i], tol, fmt.Sprintf("%s [%d]", context, i))
		}
	case []image.Image:
		g, ok := got.([]image.Image)
		if !ok {
			r.Errorf("%s: got %T, want []image.Image", context, got)
			return
		}
		if len(g) != len(w) {
			r.Errorf("%s: %d outputs, want %d", context, len(g), len(w))
			return
		}
		for i := range w {
			AssertClose(r, g[i], w[i], tol, fmt.Sprintf("%s [%d]", context, i))
		}
	default:
		r.Fatalf("%s: cannot compare values of type %T", context, want)
	}
}

func assertTensorsClose(r Reporter, got, want *tensor.Tensor, tol Tolerance, context string) {
	r.Helper()
	if got == nil || want == nil {
		if got != want {
			r.Errorf("%s: got %v, want %v", context, got, want)
		}
		return
	}
	if !shapeEqual(got.Shape, want.Shape) {
		r.Errorf("%s: shape %v, want %v", context, got.Shape, want.Shape)
		return
	}
	if got.DType != want.DType {
		r.Errorf("%s: dtype %v, want %v", context, got.DType, want.DType)
		return
	}
	mismatches := 0
	worst := 0.0
	worstIdx := -1
	for i := range want.Data {
		// |got - want| <= atol + rtol*|want|, elementwise; a zero tolerance
		// degenerates to exact equality.
		d := math.Abs(got.Data[i] - want.Data[i])
		if d <= tol.Atol+tol.Rtol*math.Abs(want.Data[i]) {
			continue
		}
		mismatches++
		if d > worst {
			worst = d
			worstIdx = i
		}
	}
	if mismatches > 0 {
		r.Errorf("%s: %d of %d elements differ, worst |%v - %v| = %v at flat index %d (rtol=%v atol=%v)",
			context, mismatches, len(want.Data), got.Data[worstIdx], want.Data[worstIdx], worst, worstIdx, tol.Rtol, tol.Atol)
	}
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
