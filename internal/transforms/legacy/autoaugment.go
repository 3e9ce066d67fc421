package legacy

import (
	"fmt"
	"math"

	"github.com/pixelwerk/augment/internal/randgen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/legacy/functional"
)

// augOp is one entry of the augmentation space: a magnitude table (nil for
// parameterless ops) and whether the magnitude is signed.
type augOp struct {
	name       string
	magnitudes func(bins int) []float64
	signed     bool
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// augmentationSpace is shared by RandAugment and AutoAugment; TrivialAugmentWide
// uses wider magnitude tables over the same operations.
var augmentationSpace = []augOp{
	{name: "Identity"},
	{name: "Brightness", magnitudes: func(bins int) []float64 { return linspace(0.0, 0.9, bins) }, signed: true},
	{name: "Contrast", magnitudes: func(bins int) []float64 { return linspace(0.0, 0.9, bins) }, signed: true},
	{name: "Saturation", magnitudes: func(bins int) []float64 { return linspace(0.0, 0.9, bins) }, signed: true},
	{name: "Posterize", magnitudes: func(bins int) []float64 { return linspace(4, 0, bins) }},
	{name: "Solarize", magnitudes: func(bins int) []float64 { return linspace(1.0, 0.0, bins) }},
	{name: "Autocontrast"},
	{name: "Equalize"},
}

var wideAugmentationSpace = []augOp{
	{name: "Identity"},
	{name: "Brightness", magnitudes: func(bins int) []float64 { return linspace(0.0, 0.99, bins) }, signed: true},
	{name: "Contrast", magnitudes: func(bins int) []float64 { return linspace(0.0, 0.99, bins) }, signed: true},
	{name: "Saturation", magnitudes: func(bins int) []float64 { return linspace(0.0, 0.99, bins) }, signed: true},
	{name: "Posterize", magnitudes: func(bins int) []float64 { return linspace(6, 0, bins) }},
	{name: "Solarize", magnitudes: func(bins int) []float64 { return linspace(1.0, 0.0, bins) }},
	{name: "Autocontrast"},
	{name: "Equalize"},
}

// applyAugOp runs one augmentation-space operation at the given magnitude.
func applyAugOp(img *tensor.Tensor, name string, magnitude float64) (*tensor.Tensor, error) {
	switch name {
	case "Identity":
		return img.Clone(), nil
	case "Brightness":
		return functional.AdjustBrightness(img, 1.0+magnitude)
	case "Contrast":
		return functional.AdjustContrast(img, 1.0+magnitude)
	case "Saturation":
		return functional.AdjustSaturation(img, 1.0+magnitude)
	case "Posterize":
		return functional.Posterize(img, 8-int(magnitude))
	case "Solarize":
		return functional.Solarize(img, magnitude)
	case "Autocontrast":
		return functional.Autocontrast(img), nil
	case "Equalize":
		return functional.Equalize(img)
	default:
		return nil, fmt.Errorf("legacy: unknown augmentation op %q", name)
	}
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
		return nil, fmt.Errorf("legacy: magnitude %d outside of %d bins", t.Magnitude, t.NumMagnitudeBins)
	}
	return &t, nil
}

func (t *RandAugment) Transform(in any) (any, error) {
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		out := img.Clone()
		var err error
		for i := 0; i < t.NumOps; i++ {
			op := augmentationSpace[randgen.Intn(len(augmentationSpace))]
			magnitude := 0.0
			if op.magnitudes != nil {
				magnitude = op.magnitudes(t.NumMagnitudeBins)[t.Magnitude]
			}
			if op.signed && randgen.Intn(2) == 1 {
				magnitude = -magnitude
			}
			out, err = applyAugOp(out, op.name, magnitude)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// TrivialAugmentWide applies a single random space operation at a random
// magnitude over widened tables.
// Draw order: op index; then magnitude bin for parameterized ops; then one
// sign draw for signed ops.
type TrivialAugmentWide struct {
	NumMagnitudeBins int `arg:"num_magnitude_bins" default:"31"`
}

// NewTrivialAugmentWide validates and returns the transform.
func NewTrivialAugmentWide(t TrivialAugmentWide) (*TrivialAugmentWide, error) {
	if t.NumMagnitudeBins == 0 {
		t.NumMagnitudeBins = 31
	}
	if t.NumMagnitudeBins < 1 {
		return nil, fmt.Errorf("legacy: need at least one magnitude bin, got %d", t.NumMagnitudeBins)
	}
	return &t, nil
}

func (t *TrivialAugmentWide) Transform(in any) (any, error) {
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		op := wideAugmentationSpace[randgen.Intn(len(wideAugmentationSpace))]
		magnitude := 0.0
		if op.magnitudes != nil {
			magnitude = op.magnitudes(t.NumMagnitudeBins)[randgen.Intn(t.NumMagnitudeBins)]
		}
		if op.signed && randgen.Intn(2) == 1 {
			magnitude = -magnitude
		}
		return applyAugOp(img, op.name, magnitude)
	})
}

// AutoAugmentPolicy selects a fixed sub-policy table.
type AutoAugmentPolicy string

const (
	PolicyImageNet AutoAugmentPolicy = "imagenet"
	PolicyCIFAR10  AutoAugmentPolicy = "cifar10"
)

// policyOp is half of a sub-policy: an op applied with probability p at
// magnitude bin mag (-1 for parameterless ops).
type policyOp struct {
	name string
	p    float64
	mag  int
}

func autoAugmentPolicies(policy AutoAugmentPolicy) ([][2]policyOp, error) {
	switch policy {
	case PolicyImageNet:
		return [][2]policyOp{
			{{"Posterize", 0.4, 8}, {"Solarize", 0.6, 5}},
			{{"Equalize", 0.8, -1}, {"Equalize", 0.6, -1}},
			{{"Posterize", 0.6, 7}, {"Posterize", 0.6, 6}},
			{{"Equalize", 0.4, -1}, {"Solarize", 0.2, 4}},
			{{"Brightness", 0.4, 18}, {"Identity", 0.6, -1}},
			{{"Saturation", 0.6, 14}, {"Contrast", 1.0, 16}},
			{{"Autocontrast", 0.5, -1}, {"Equalize", 0.9, -1}},
			{{"Solarize", 0.6, 3}, {"Equalize", 0.6, -1}},
		}, nil
	case PolicyCIFAR10:
		return [][2]policyOp{
			{{"Autocontrast", 0.5, -1}, {"Contrast", 0.9, 14}},
			{{"Equalize", 0.3, -1}, {"Autocontrast", 0.4, -1}},
			{{"Brightness", 0.9, 19}, {"Solarize", 0.7, 2}},
			{{"Equalize", 0.6, -1}, {"Posterize", 0.4, 9}},
			{{"Saturation", 0.7, 12}, {"Identity", 0.3, -1}},
		}, nil
	default:
		return nil, fmt.Errorf("legacy: unknown auto-augment policy %q", policy)
	}
}

// AutoAugment applies one randomly selected sub-policy.
// Draw order: one integer for the sub-policy index; then per op one uniform
// float against its probability, and for applied signed ops one sign draw.
type AutoAugment struct {
	Policy AutoAugmentPolicy `arg:"policy" default:"imagenet"`
}

// NewAutoAugment validates and returns the transform.
func NewAutoAugment(t AutoAugment) (*AutoAugment, error) {
	if t.Policy == "" {
		t.Policy = PolicyImageNet
	}
	if _, err := autoAugmentPolicies(t.Policy); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *AutoAugment) Transform(in any) (any, error) {
	policies, err := autoAugmentPolicies(t.Policy)
	if err != nil {
		return nil, err
	}
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		sub := policies[randgen.Intn(len(policies))]
		out := img.Clone()
		for _, op := range sub {
			if randgen.Float64() > op.p {
				continue
			}
			magnitude := 0.0
			if op.mag >= 0 {
				def := spaceOpByName(op.name)
				magnitude = def.magnitudes(31)[op.mag]
				if def.signed && randgen.Intn(2) == 1 {
					magnitude = -magnitude
				}
			}
			var err error
			out, err = applyAugOp(out, op.name, magnitude)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

func spaceOpByName(name string) augOp {
	for _, op := range augmentationSpace {
		if op.name == name {
			return op
		}
	}
	panic(fmt.Sprintf("legacy: op %q not in augmentation space", name))
}

// augMixBins is the magnitude table resolution AugMix severities index into.
const augMixBins = 10

// AugMix blends the input with mixture_width randomly augmented chains of
// it, weighted by seeded Dirichlet-style draws.
// Draw order, per invocation: two floats for the original-image weight, one
// float per chain for the chain weights; then per chain one integer for the
// depth when chain_depth is not fixed, and per step an op index, a magnitude
// bin below severity for parameterized ops, and a sign draw for signed ops.
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
		return nil, fmt.Errorf("legacy: severity %d outside of [1, %d]", t.Severity, augMixBins)
	}
	if t.MixtureWidth < 1 {
		return nil, fmt.Errorf("legacy: mixture width %d must be positive", t.MixtureWidth)
	}
	if t.Alpha <= 0 {
		return nil, fmt.Errorf("legacy: alpha %v must be positive", t.Alpha)
	}
	return &t, nil
}

// gammaSample turns one uniform draw into a Gamma(alpha, 1) stand-in.
// Exact for alpha 1, where it degenerates to an exponential draw.
func gammaSample(alpha float64) float64 {
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
		op := augmentationSpace[randgen.Intn(len(augmentationSpace))]
		magnitude := 0.0
		if op.magnitudes != nil {
			magnitude = op.magnitudes(augMixBins)[randgen.Intn(t.Severity)]
		}
		if op.signed && randgen.Intn(2) == 1 {
			magnitude = -magnitude
		}
		out, err = applyAugOp(out, op.name, magnitude)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *AugMix) Transform(in any) (any, error) {
	return tensorKernel(in, func(img *tensor.Tensor) (*tensor.Tensor, error) {
		g1 := gammaSample(t.Alpha)
		g2 := gammaSample(t.Alpha)
		m := g1 / (g1 + g2)

		weights := make([]float64, t.MixtureWidth)
		total := 0.0
		for i := range weights {
			weights[i] = gammaSample(t.Alpha)
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
