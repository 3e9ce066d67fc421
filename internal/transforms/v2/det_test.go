package v2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/v2/functional"
)

func TestScaleJitterValidation(t *testing.T) {
	_, err := NewScaleJitter(ScaleJitter{})
	assert.Error(t, err, "missing target size")

	_, err = NewScaleJitter(ScaleJitter{TargetSize: [2]int{32, 32}, ScaleRange: common.Range{Lo: 2, Hi: 1}})
	assert.Error(t, err, "inverted range")

	sj, err := NewScaleJitter(ScaleJitter{TargetSize: [2]int{32, 32}})
	require.NoError(t, err)
	assert.Equal(t, common.Range{Lo: 0.1, Hi: 2.0}, sj.ScaleRange)
}

func TestJitteredSizeKeepsAspectRatio(t *testing.T) {
	sj, err := NewScaleJitter(ScaleJitter{TargetSize: [2]int{32, 32}})
	require.NoError(t, err)

	// 16x32 at scale 1: the limiting ratio is 32/32 = 1.
	h, w := sj.jitteredSize(16, 32, 1)
	assert.Equal(t, 16, h)
	assert.Equal(t, 32, w)

	h, w = sj.jitteredSize(16, 32, 0.5)
	assert.Equal(t, 8, h)
	assert.Equal(t, 16, w)
}

func TestScaleJitterResizesSample(t *testing.T) {
	sj, err := NewScaleJitter(ScaleJitter{TargetSize: [2]int{16, 16}, ScaleRange: common.RangeOf(1, 1)})
	require.NoError(t, err)

	s := sampleFixture(8, 10)
	randgen.Reset(0)
	out, err := sj.Transform(s)
	require.NoError(t, err)

	got := out.(*Sample)
	// Ratio min(16/8, 16/10) = 1.6: 8x10 becomes 12x16.
	assert.Equal(t, 12, got.Image.Height())
	assert.Equal(t, 16, got.Image.Width())
	assert.Equal(t, [2]int{12, 16}, got.Boxes.CanvasSize)
}

func TestRandomShortestSizeValidation(t *testing.T) {
	_, err := NewRandomShortestSize(RandomShortestSize{MaxSize: 10})
	assert.Error(t, err, "no sizes")

	_, err = NewRandomShortestSize(RandomShortestSize{MinSizes: []int{8}})
	assert.Error(t, err, "no max size")
}

func TestShortestSize(t *testing.T) {
	// Shorter edge 8 fits within max 100: scale by 8/10.
	h, w := shortestSize(10, 20, 8, 100)
	assert.Equal(t, 8, h)
	assert.Equal(t, 16, w)

	// Max size 12 binds before the shorter edge does.
	h, w = shortestSize(10, 20, 8, 12)
	assert.Equal(t, 6, h)
	assert.Equal(t, 12, w)
}

func TestUnsetInterpolationResamplesBilinearly(t *testing.T) {
	img := sampleFixture(8, 10).Image.Tensor

	sj, err := NewScaleJitter(ScaleJitter{TargetSize: [2]int{16, 16}, ScaleRange: common.RangeOf(1, 1)})
	require.NoError(t, err)
	randgen.Reset(0)
	out, err := sj.Transform(img)
	require.NoError(t, err)
	want, err := functional.Resize(img, common.Size{H: 12, W: 16}, common.Bilinear, 0, false)
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(want))

	rss, err := NewRandomShortestSize(RandomShortestSize{MinSizes: []int{6}, MaxSize: 100})
	require.NoError(t, err)
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0}})
	out, err = rss.Transform(img)
	restore()
	require.NoError(t, err)
	want, err = functional.Resize(img, common.Size{H: 6, W: 7}, common.Bilinear, 0, false)
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(want))
}

func TestRandomShortestSizePicksScriptedEntry(t *testing.T) {
	rss, err := NewRandomShortestSize(RandomShortestSize{MinSizes: []int{4, 6}, MaxSize: 100})
	require.NoError(t, err)

	s := sampleFixture(8, 10)
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{1}})
	out, err := rss.Transform(s)
	restore()
	require.NoError(t, err)

	got := out.(*Sample)
	assert.Equal(t, 6, got.Image.Height())
	assert.Equal(t, 7, got.Image.Width())
}
