package v2

import (
	"fmt"
	"math"

	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/v2/functional"
)

// augmenter identifies one operation of the augmentation space. The numeric
// order is the index the policy transforms draw against, so it must not be
// reshuffled.
type augmenter int

const (
	opIdentity augmenter = iota
	opBrightness
	opContrast
	opSaturation
	opPosterize
	opSolarize
	opAutocontrast
	opEqualize
)

// augmenterSpec couples an operation with its magnitude bounds. Ranged ops
// spread their magnitudes evenly between lo and hi (wideLo/wideHi for the
// widened tables); the rest take no magnitude at all.
type augmenterSpec struct {
	op             augmenter
	ranged         bool
	lo, hi         float64
	wideLo, wideHi float64
	signed         bool
}

var augmenters = []augmenterSpec{
	{op: opIdentity},
	{op: opBrightness, ranged: true, hi: 0.9, wideHi: 0.99, signed: true},
	{op: opContrast, ranged: true, hi: 0.9, wideHi: 0.99, signed: true},
	{op: opSaturation, ranged: true, hi: 0.9, wideHi: 0.99, signed: true},
	{op: opPosterize, ranged: true, lo: 4, wideLo: 6},
	{op: opSolarize, ranged: true, lo: 1, wideLo: 1},
	{op: opAutocontrast},
	{op: opEqualize},
}

// binValue resolves one magnitude bin of an evenly spread table.
func binValue(lo, hi float64, bin, bins int) float64 {
	if bins == 1 {
		return lo
	}
	step := (hi - lo) / float64(bins-1)
	return lo + float64(bin)*step
}

func (s augmenterSpec) magnitude(bin, bins int, wide bool) float64 {
	if !s.ranged {
		return 0
	}
	if wide {
		return binValue(s.wideLo, s.wideHi, bin, bins)
	}
	return binValue(s.lo, s.hi, bin, bins)
}

func (a augmenter) apply(img *tensor.Tensor, magnitude float64) (*tensor.Tensor, error) {
	switch a {
	case opIdentity:
		return img.Clone(), nil
	case opBrightness:
		return functional.AdjustBrightness(img, 1.0+magnitude)
	case opContrast:
		return functional.AdjustContrast(img, 1.0+magnitude)
	case opSaturation:
		return functional.AdjustSaturation(img, 1.0+magnitude)
	case opPosterize:
		return functional.Posterize(img, 8-int(magnitude))
	case opSolarize:
		return functional.Solarize(img, magnitude)
	case opAutocontrast:
		return functional.Autocontrast(img), nil
	case opEqualize:
		return functional.Equalize(img)
	default:
		return nil, fmt.Errorf("v2: unknown augmentation op %d", int(a))
	}
}

// drawAugmenter picks one space entry and resolves its magnitude. Draw order:
// op index; magnitude bin when binDraw is positive and the op is ranged
// (fixedBin applies otherwise); one sign draw for signed ops.
func drawAugmenter(binDraw, fixedBin, bins int, wide bool) (augmenter, float64) {
	spec := augmenters[randgen.Intn(len(augmenters))]
	magnitude := 0.0
	if spec.ranged {
		bin := fixedBin
		if binDraw > 0 {
			bin = randgen.Intn(binDraw)
		}
		magnitude = spec.magnitude(bin, bins, wide)
	}
	if spec.signed && randgen.Intn(2) == 1 {
		magnitude = -magnitude
	}
	return spec.op, magnitude
}

// RandAugment applies num_ops random space operations at a fixed magnitude.
// Draw order, per operation: one integer for the op index, then one integer
// sign draw for signed ops (one negates the magnitude).
type RandAugment struct {
	NumOps           int `arg:"num_ops" default:"2"`
	Magnitude        int `arg:"magnitude" default:"9"`
	NumMagnitudeBins int `arg:"num_magnitude_bins" default:"31"`
}

// NewRandAugment validates and returns the transform.
func NewRandAugment(t RandAugment) (*RandAugment, error) {
	if t.NumOps == 0 {
		t.NumOps = 2
	}
	if t.NumMagnitudeBins == 0 {
		t.NumMagnitudeBins = 31
	}
	if t.Magnitude == 0 {
		t.Magnitude = 9
	}
	if t.Magnitude >= t.NumMagnitudeBins {
		return nil, fmt.Errorf("v2: magnitude %d outside of %d bins", t.Magnitude, t.NumMagnitudeBins)
	}
	return &t, nil
}

func (t *RandAugment) Transform(in any) (any, error) {
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		out := img.Clone()
		var err error
		for i := 0; i < t.NumOps; i++ {
			op, magnitude := drawAugmenter(0, t.Magnitude, t.NumMagnitudeBins, false)
			out, err = op.apply(out, magnitude)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// TrivialAugmentWide applies a single random space operation at a random
// magnitude over widened tables.
// Draw order: op index; then magnitude bin for ranged ops; then one sign
// draw for signed ops.
type TrivialAugmentWide struct {
	NumMagnitudeBins int `arg:"num_magnitude_bins" default:"31"`
}

// NewTrivialAugmentWide validates and returns the transform.
func NewTrivialAugmentWide(t TrivialAugmentWide) (*TrivialAugmentWide, error) {
	if t.NumMagnitudeBins == 0 {
		t.NumMagnitudeBins = 31
	}
	if t.NumMagnitudeBins < 1 {
		return nil, fmt.Errorf("v2: need at least one magnitude bin, got %d", t.NumMagnitudeBins)
	}
	return &t, nil
}

func (t *TrivialAugmentWide) Transform(in any) (any, error) {
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		op, magnitude := drawAugmenter(t.NumMagnitudeBins, 0, t.NumMagnitudeBins, true)
		return op.apply(img, magnitude)
	})
}

// AutoAugmentPolicy selects a fixed sub-policy table.
type AutoAugmentPolicy string

const (
	PolicyImageNet AutoAugmentPolicy = "imagenet"
	PolicyCIFAR10  AutoAugmentPolicy = "cifar10"
)

// policyStep is half of a sub-policy: an op applied with probability p at
// magnitude bin bin (-1 for ops without a magnitude).
type policyStep struct {
	op  augmenter
	p   float64
	bin int
}

type subPolicy [2]policyStep

var autoAugmentTables = map[AutoAugmentPolicy][]subPolicy{
	PolicyImageNet: {
		{{opPosterize, 0.4, 8}, {opSolarize, 0.6, 5}},
		{{opEqualize, 0.8, -1}, {opEqualize, 0.6, -1}},
		{{opPosterize, 0.6, 7}, {opPosterize, 0.6, 6}},
		{{opEqualize, 0.4, -1}, {opSolarize, 0.2, 4}},
		{{opBrightness, 0.4, 18}, {opIdentity, 0.6, -1}},
		{{opSaturation, 0.6, 14}, {opContrast, 1.0, 16}},
		{{opAutocontrast, 0.5, -1}, {opEqualize, 0.9, -1}},
		{{opSolarize, 0.6, 3}, {opEqualize, 0.6, -1}},
	},
	PolicyCIFAR10: {
		{{opAutocontrast, 0.5, -1}, {opContrast, 0.9, 14}},
		{{opEqualize, 0.3, -1}, {opAutocontrast, 0.4, -1}},
		{{opBrightness, 0.9, 19}, {opSolarize, 0.7, 2}},
		{{opEqualize, 0.6, -1}, {opPosterize, 0.4, 9}},
		{{opSaturation, 0.7, 12}, {opIdentity, 0.3, -1}},
	},
}

func specFor(op augmenter) augmenterSpec {
	for _, s := range augmenters {
		if s.op == op {
			return s
		}
	}
	panic(fmt.Sprintf("v2: op %d not in augmentation space", int(op)))
}

// AutoAugment applies one randomly selected sub-policy.
// Draw order: one integer for the sub-policy index; then per step one uniform
// float against its probability, and for applied signed ops one sign draw.
type AutoAugment struct {
	Policy AutoAugmentPolicy `arg:"policy" default:"imagenet"`
}

// NewAutoAugment validates and returns the transform.
func NewAutoAugment(t AutoAugment) (*AutoAugment, error) {
	if t.Policy == "" {
		t.Policy = PolicyImageNet
	}
	if _, ok := autoAugmentTables[t.Policy]; !ok {
		return nil, fmt.Errorf("v2: unknown auto-augment policy %q", t.Policy)
	}
	return &t, nil
}

func (t *AutoAugment) Transform(in any) (any, error) {
	table, ok := autoAugmentTables[t.Policy]
	if !ok {
		return nil, fmt.Errorf("v2: unknown auto-augment policy %q", t.Policy)
	}
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		sub := table[randgen.Intn(len(table))]
		out := img.Clone()
		for _, step := range sub {
			if randgen.Float64() > step.p {
				continue
			}
			magnitude := 0.0
			if step.bin >= 0 {
				spec := specFor(step.op)
				magnitude = spec.magnitude(step.bin, 31, false)
				if spec.signed && randgen.Intn(2) == 1 {
					magnitude = -magnitude
				}
			}
			var err error
			out, err = step.op.apply(out, magnitude)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// augMixBins is the magnitude table resolution AugMix severities index into.
const augMixBins = 10

// AugMix blends the input with mixture_width randomly augmented chains of
// it, weighted by seeded Dirichlet-style draws.
// Draw order, per invocation: two floats for the original-image weight, one
// float per chain for the chain weights; then per chain one integer for the
// depth when chain_depth is not fixed, and per step an op index, a magnitude
// bin below severity for ranged ops, and a sign draw for signed ops.
type AugMix struct {
	Severity     int     `arg:"severity" default:"3"`
	MixtureWidth int     `arg:"mixture_width" default:"3"`
	ChainDepth   int     `arg:"chain_depth" default:"-1"`
	Alpha        float64 `arg:"alpha" default:"1.0"`
}

// NewAugMix validates and returns the transform.
func NewAugMix(t AugMix) (*AugMix, error) {
	if t.Severity == 0 {
		t.Severity = 3
	}
	if t.MixtureWidth == 0 {
		t.MixtureWidth = 3
	}
	if t.ChainDepth == 0 {
		t.ChainDepth = -1
	}
	if t.Alpha == 0 {
		t.Alpha = 1.0
	}
	if t.Severity < 1 || t.Severity > augMixBins {
		return nil, fmt.Errorf("v2: severity %d outside of [1, %d]", t.Severity, augMixBins)
	}
	if t.MixtureWidth < 1 {
		return nil, fmt.Errorf("v2: mixture width %d must be positive", t.MixtureWidth)
	}
	if t.Alpha <= 0 {
		return nil, fmt.Errorf("v2: alpha %v must be positive", t.Alpha)
	}
	return &t, nil
}

// gammaSurrogate turns one uniform draw into a Gamma(alpha, 1) stand-in.
// Exact for alpha 1, where it degenerates to an exponential draw.
func gammaSurrogate(alpha float64) float64 {
	return math.Pow(-math.Log(1-randgen.Float64()), 1/alpha)
}

func (t *AugMix) chain(img *tensor.Tensor) (*tensor.Tensor, error) {
	depth := t.ChainDepth
	if depth <= 0 {
		depth = 1 + randgen.Intn(3)
	}
	out := img
	var err error
	for i := 0; i < depth; i++ {
		op, magnitude := drawAugmenter(t.Severity, 0, augMixBins, false)
		out, err = op.apply(out, magnitude)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *AugMix) Transform(in any) (any, error) {
	return imageKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		g1 := gammaSurrogate(t.Alpha)
		g2 := gammaSurrogate(t.Alpha)
		m := g1 / (g1 + g2)

		weights := make([]float64, t.MixtureWidth)
		total := 0.0
		for i := range weights {
			weights[i] = gammaSurrogate(t.Alpha)
			total += weights[i]
		}
		for i := range weights {
			weights[i] = weights[i] / total * (1 - m)
		}

		chains := make([]*tensor.Tensor, t.MixtureWidth)
		for i := range chains {
			out, err := t.chain(img)
			if err != nil {
				return nil, err
			}
			chains[i] = out
		}

		mixed := img.Clone()
		for i := range mixed.Data {
			acc := m * img.Data[i]
			for k, c := range chains {
				acc += weights[k] * c.Data[i]
			}
			mixed.Data[i] = img.DType.Quantize(acc)
		}
		return mixed, nil
	})
}
