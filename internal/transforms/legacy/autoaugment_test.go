package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
)

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, linspace(0, 1, 5))
	assert.Equal(t, []float64{2}, linspace(2, 5, 1))
	assert.Equal(t, []float64{4, 2, 0}, linspace(4, 0, 3))
}

func TestApplyAugOpIdentity(t *testing.T) {
	img := testImage(3, 4, 4)
	out, err := applyAugOp(img, "Identity", 0)
	require.NoError(t, err)
	assert.True(t, out.Equal(img))

	_, err = applyAugOp(img, "ShearX", 0)
	assert.Error(t, err)
}

func TestRandAugmentScriptedIdentityOps(t *testing.T) {
	ra, err := NewRandAugment(RandAugment{NumOps: 2, Magnitude: 9, NumMagnitudeBins: 31})
	require.NoError(t, err)

	img := testImage(3, 8, 8)
	// Op index 0 is Identity, which has no magnitude table and no sign draw.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0, 0}})
	out, err := ra.Transform(img)
	restore()
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(img))
}

func TestRandAugmentSignDrawNegatesMagnitude(t *testing.T) {
	ra, err := NewRandAugment(RandAugment{NumOps: 1, Magnitude: 30, NumMagnitudeBins: 31})
	require.NoError(t, err)

	img := testImage(3, 8, 8)
	// Op 1 is Brightness at magnitude 0.9; sign draw 1 negates it to a
	// factor of 0.1.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{1, 1}})
	out, err := ra.Transform(img)
	restore()
	require.NoError(t, err)

	want, err := applyAugOp(img, "Brightness", -linspace(0, 0.9, 31)[30])
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(want))
}

func TestTrivialAugmentWideDrawsMagnitudeBin(t *testing.T) {
	taw, err := NewTrivialAugmentWide(TrivialAugmentWide{NumMagnitudeBins: 31})
	require.NoError(t, err)

	img := testImage(3, 8, 8)
	// Op 5 is Solarize; bin 30 of the wide table is the lowest threshold.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{5, 30}})
	out, err := taw.Transform(img)
	restore()
	require.NoError(t, err)

	want, err := applyAugOp(img, "Solarize", linspace(1, 0, 31)[30])
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(want))
}

func TestAutoAugmentSkipsOpsAboveProbability(t *testing.T) {
	aa, err := NewAutoAugment(AutoAugment{Policy: PolicyImageNet})
	require.NoError(t, err)

	img := testImage(3, 8, 8)
	// Sub-policy 0 is (Posterize p=0.4, Solarize p=0.6). Draws 0.9 and 0.7
	// skip both ops, leaving the image untouched.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0}, Floats: []float64{0.9, 0.7}})
	out, err := aa.Transform(img)
	restore()
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(img))
}

func TestAutoAugmentAppliesSelectedSubPolicy(t *testing.T) {
	aa, err := NewAutoAugment(AutoAugment{Policy: PolicyImageNet})
	require.NoError(t, err)

	img := testImage(3, 8, 8)
	// Sub-policy 0 with both ops applied: Posterize bin 8, then Solarize
	// bin 5. Neither op is signed, so no sign draws happen.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{0}, Floats: []float64{0.1, 0.1}})
	out, err := aa.Transform(img)
	restore()
	require.NoError(t, err)

	step, err := applyAugOp(img, "Posterize", linspace(4, 0, 31)[8])
	require.NoError(t, err)
	step, err = applyAugOp(step, "Solarize", linspace(1, 0, 31)[5])
	require.NoError(t, err)
	assert.True(t, out.(*tensor.Tensor).Equal(step))
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

	img := testImage(3, 8, 8)
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

	img := testImage(3, 8, 8)
	// Op 5 is Solarize at severity bin 5; the equal mixing floats blend the
	// solarized chain and the original half-and-half.
	restore := randgen.Swap(&randgen.Scripted{Ints: []int64{5, 5}, Floats: []float64{0.5, 0.5, 0.9}})
	out, err := am.Transform(img)
	restore()
	require.NoError(t, err)

	sol, err := applyAugOp(img, "Solarize", linspace(1, 0, 10)[5])
	require.NoError(t, err)
	want := img.Clone()
	for i := range want.Data {
		want.Data[i] = img.DType.Quantize(0.5*img.Data[i] + 0.5*sol.Data[i])
	}
	assert.True(t, out.(*tensor.Tensor).Equal(want))
}

func TestAutoAugmentPolicyTables(t *testing.T) {
	imagenet, err := autoAugmentPolicies(PolicyImageNet)
	require.NoError(t, err)
	assert.Len(t, imagenet, 8)

	cifar, err := autoAugmentPolicies(PolicyCIFAR10)
	require.NoError(t, err)
	assert.Len(t, cifar, 5)

	_, err = autoAugmentPolicies("svhn")
	assert.Error(t, err)
}
