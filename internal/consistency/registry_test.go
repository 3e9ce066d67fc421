package consistency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelwerk/augment/internal/tensor"
)

func TestRegistryCoverage(t *testing.T) {
	missing := MissingCoverage()
	assert.Empty(t, missing,
		"legacy transforms without a registry case: %s", strings.Join(missing, ", "))
}

func TestRegistryNamesMatchAcrossAPIs(t *testing.T) {
	for _, c := range Cases() {
		assert.Equal(t, c.Old.Name(), c.New.Name(),
			"a pair must keep its class name across the two packages")
	}
}

func TestRegistryEntriesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Cases() {
		assert.False(t, seen[c.Name()], "duplicate case for %s", c.Name())
		seen[c.Name()] = true
	}
}

func TestAllVariantsBuild(t *testing.T) {
	for _, c := range Cases() {
		c := c
		t.Run(c.Name(), func(t *testing.T) {
			require.NotEmpty(t, c.Variants)
			for _, v := range c.Variants {
				newT, oldT, err := v.Build()
				require.NoError(t, err, "variant %q", v.Desc)
				require.NotNil(t, newT, "variant %q", v.Desc)
				require.NotNil(t, oldT, "variant %q", v.Desc)
			}
		})
	}
}

func TestCaseFor(t *testing.T) {
	c, ok := CaseFor("RandomErasing")
	require.True(t, ok)
	assert.Equal(t, []string{"inplace"}, c.RemovedParams)

	_, ok = CaseFor("NoSuchTransform")
	assert.False(t, ok)
}

func TestCaseImagesHonorOptions(t *testing.T) {
	c, ok := CaseFor("RandomEqualize")
	require.True(t, ok)
	imgs := CaseImages(c)
	require.NotEmpty(t, imgs)
	for _, img := range imgs {
		assert.Equal(t, tensor.Uint8, img.Tensor.DType)
	}
}

func TestDefaultInputSetIncludesAllRepresentations(t *testing.T) {
	c, ok := CaseFor("Resize")
	require.True(t, ok)
	var unbatched, batched, uint8s, floats bool
	for _, img := range CaseImages(c) {
		switch img.Tensor.Dims() {
		case 3:
			unbatched = true
		case 4:
			batched = true
		}
		switch img.Tensor.DType {
		case tensor.Uint8:
			uint8s = true
		case tensor.Float32:
			floats = true
		}
	}
	assert.True(t, unbatched, "need an unbatched input for the bitmap path")
	assert.True(t, batched)
	assert.True(t, uint8s)
	assert.True(t, floats)
}
