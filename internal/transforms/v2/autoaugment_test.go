package v2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
)

func TestBinValue(t *testing.T) {
	assert.Equal(t, 0.0, binValue(0, 0.9, 0, 31))
	assert.Equal(t, 0.9, binValue(0, 0.9, 30, 31))
	assert.Equal(t, 4.0, binValue(4, 0, 0, 10))
	assert.Equal(t, 2.0, binValue(2, 5, 0, 1))
}

func TestAugmenterSpecMagnitudes(t *testing.T) {
	brightness := specFor(opBrightness)
	assert.True(t, brightness.signed)
	assert.Equal(t, 0.9, brightness.magnitude(30, 31, false))
	assert.Equal(t, 0.99, brightness.magnitude(30, 31, true))

	identity := specFor(opIdentity)
	assert.False(t, identity.ranged)
	assert.Equal(t, 0.0, identity.magnitude(30, 31, false))
}

func TestDrawAugmenterSignNegatesMagnitude(t *testing.T) {
	// Op 1 is Brightness; the trailing draw flips the magnitude's sign.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{1, 1}})
	op, magnitude := drawAugmenter(0, 30, 31, false)
	restore()

	assert.Equal(t, opBrightness, op)
	assert.Equal(t, -0.9, magnitude)
}

func TestRandAugmentScriptedIdentityOps(t *testing.T) {
	ra, err := NewRandAugment(RandAugment{NumOps: 2, Magnitude: 9, NumMagnitudeBins: 31})
	require.NoError(t, err)

	img := sampleFixture(8, 8).Image.Tensor
	// Op index 0 is Identity, which takes no magnitude bin and no sign draw.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0, 0}})
	out, err := ra.Transform(img)
	restore()
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(img))
}

func TestAutoAugmentTableShapes(t *testing.T) {
	assert.Len(t, autoAugmentTables[PolicyImageNet], 8)
	assert.Len(t, autoAugmentTables[PolicyCIFAR10], 5)

	_, err := NewAutoAugment(AutoAugment{Policy: "svhn"})
	assert.Error(t, err)
}

func TestAugMixValidation(t *testing.T) {
	am, err := NewAugMix(AugMix{})
	require.NoError(t, err)
	assert.Equal(t, 3, am.Severity)
	assert.Equal(t, 3, am.MixtureWidth)
	assert.Equal(t, -1, am.ChainDepth)
	assert.Equal(t, 1.0, am.Alpha)

	_, err = NewAugMix(AugMix{Severity: 11})
	assert.Error(t, err)
	_, err = NewAugMix(AugMix{MixtureWidth: -1})
	assert.Error(t, err)
	_, err = NewAugMix(AugMix{Alpha: -0.5})
	assert.Error(t, err)
}

func TestAugMixIdentityChainKeepsImage(t *testing.T) {
	am, err := NewAugMix(AugMix{MixtureWidth: 1, ChainDepth: 1})
	require.NoError(t, err)

	img := sampleFixture(8, 8).Image.Tensor
	// Equal mixing floats put half the weight on the original and half on
	// the single chain; op 0 is Identity, so both halves are the image.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0}, Floats: []float64{0.5, 0.5, 0.9}})
	out, err := am.Transform(img)
	restore()
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(img))
}

func TestAugMixBlendsChainWithOriginal(t *testing.T) {
	am, err := NewAugMix(AugMix{Severity: 10, MixtureWidth: 1, ChainDepth: 1})
	require.NoError(t, err)

	img := sampleFixture(8, 8).Image.Tensor
	// Op 5 is Solarize at severity bin 5; the equal mixing floats blend the
	// solarized chain and the original half-and-half.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{5, 5}, Floats: []float64{0.5, 0.5, 0.9}})
	out, err := am.Transform(img)
	restore()
	require.NoError(t, err)

	sol, err := opSolarize.apply(img, binValue(1, 0, 5, augMixBins))
	require.NoError(t, err)
	want := img.Clone()
	for i := range want.Data {
		want.Data[i] = img.DType.Quantize(0.5*img.Data[i] + 0.5*sol.Data[i])
	}
	assert.True(t, out.(*tensor.Tensor).Equal(want))
}
