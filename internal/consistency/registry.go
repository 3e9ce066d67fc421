// Package consistency validates the v2 transforms API against the legacy
// one: a declarative registry of transform pairs, a seeded dual-invocation
// comparator, a signature-reflection checker and adapters for the reference
// training pipelines.
package consistency

import (
	"reflect"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/pixelwerk/augment/internal/features"
	"github.com/pixelwerk/augment/internal/imagegen"
	"github.com/pixelwerk/augment/internal/tensor"
	"github.com/pixelwerk/augment/internal/transforms/common"
	"github.com/pixelwerk/augment/internal/transforms/legacy"
	v2 "github.com/pixelwerk/augment/internal/transforms/v2"
)

// Tolerance bounds the allowed deviation between the two implementations.
// The zero value demands exact equality.
type Tolerance struct {
	Rtol float64
	Atol float64
}

// Variant is one parameterization of a transform pair under test.
type Variant struct {
	Desc  string
	Build func() (v2.Transform, legacy.Transform, error)
}

// Case pairs a v2 transform class with its legacy counterpart and describes
// how to exercise them. A case without variants is checked for signature
// parity only.
type Case struct {
	New            reflect.Type
	Old            reflect.Type
	Variants       []Variant
	Images         imagegen.Options
	SupportsBitmap bool
	RemovedParams  []string
	Tol            Tolerance
}

// Name is the shared class name of the pair.
func (c Case) Name() string {
	return c.Old.Name()
}

func variant(desc string, build func() (v2.Transform, legacy.Transform, error)) Variant {
	return Variant{Desc: desc, Build: build}
}

func pair(n v2.Transform, nerr error, o legacy.Transform, oerr error) (v2.Transform, legacy.Transform, error) {
	if nerr != nil {
		return nil, nil, nerr
	}
	if oerr != nil {
		return nil, nil, oerr
	}
	return n, o, nil
}

func uint8Only() imagegen.Options {
	return imagegen.Options{DTypes: []tensor.DType{tensor.Uint8}}
}

func floatOnly() imagegen.Options {
	return imagegen.Options{DTypes: []tensor.DType{tensor.Float32}}
}

// whiteningPair builds a LinearTransformation pair over a small whitening
// matrix sized to the 3x4x4 test images.
func whiteningPair() (v2.Transform, legacy.Transform, error) {
	const d = 3 * 4 * 4
	m := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		m.Set(i, i, 0.5)
		if i+1 < d {
			m.Set(i, i+1, 0.25)
		}
	}
	mean := mat.NewVecDense(d, nil)
	for i := 0; i < d; i++ {
		mean.SetVec(i, float64(i)/float64(d))
	}
	n, nerr := v2.NewLinearTransformation(v2.LinearTransformation{TransformationMatrix: m, MeanVector: mean})
	o, oerr := legacy.NewLinearTransformation(legacy.LinearTransformation{TransformationMatrix: m, MeanVector: mean})
	return pair(n, nerr, o, oerr)
}

func pairType(n, o any) (reflect.Type, reflect.Type) {
	return reflect.TypeOf(n), reflect.TypeOf(o)
}

// Cases returns the registry. Every public class of the legacy package must
// be covered here; TestRegistryCoverage enforces it.
func Cases() []Case {
	var cases []Case
	add := func(c Case) { cases = append(cases, c) }

	{
		n, o := pairType(v2.Normalize{}, legacy.Normalize{})
		add(Case{New: n, Old: o, Images: floatOnly(), Variants: []Variant{
			variant("imagenet statistics", func() (v2.Transform, legacy.Transform, error) {
				mean := []float64{0.485, 0.456, 0.406}
				std := []float64{0.229, 0.224, 0.225}
				n, nerr := v2.NewNormalize(v2.Normalize{Mean: mean, Std: std})
				o, oerr := legacy.NewNormalize(legacy.Normalize{Mean: mean, Std: std})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}

	{
		n, o := pairType(v2.Resize{}, legacy.Resize{})
		var variants []Variant
		for _, cfg := range []struct {
			desc   string
			size   common.Size
			interp common.InterpolationMode
			max    int
			aa     bool
		}{
			{"shorter edge 32 bilinear", common.Shorter(32), common.Bilinear, 0, false},
			{"exact 32x29 bilinear", common.Size{H: 32, W: 29}, common.Bilinear, 0, false},
			{"shorter edge 12 nearest", common.Shorter(12), common.Nearest, 0, false},
			{"shorter edge 32 max size 40", common.Shorter(32), common.Bilinear, 40, false},
			{"downscale 8x8 antialiased", common.Size{H: 8, W: 8}, common.Bilinear, 0, true},
		} {
			cfg := cfg
			variants = append(variants, variant(cfg.desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewResize(v2.Resize{Size: cfg.size, Interpolation: cfg.interp, MaxSize: cfg.max, Antialias: cfg.aa})
				o, oerr := legacy.NewResize(legacy.Resize{Size: cfg.size, Interpolation: cfg.interp, MaxSize: cfg.max, Antialias: cfg.aa})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, SupportsBitmap: true, Variants: variants})
	}

	{
		n, o := pairType(v2.CenterCrop{}, legacy.CenterCrop{})
		var variants []Variant
		for _, size := range []common.Size{{H: 10, W: 10}, {H: 10, W: 13}, {H: 18, W: 18}} {
			size := size
			variants = append(variants, variant(size.String(), func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewCenterCrop(v2.CenterCrop{Size: size})
				o, oerr := legacy.NewCenterCrop(legacy.CenterCrop{Size: size})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, SupportsBitmap: true, Variants: variants})
	}

	{
		n, o := pairType(v2.FiveCrop{}, legacy.FiveCrop{})
		add(Case{New: n, Old: o, SupportsBitmap: true, Variants: []Variant{
			variant("8x7", func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewFiveCrop(v2.FiveCrop{Size: common.Size{H: 8, W: 7}})
				o, oerr := legacy.NewFiveCrop(legacy.FiveCrop{Size: common.Size{H: 8, W: 7}})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}

	{
		n, o := pairType(v2.TenCrop{}, legacy.TenCrop{})
		var variants []Variant
		for _, vflip := range []bool{false, true} {
			vflip := vflip
			desc := "horizontal flip"
			if vflip {
				desc = "vertical flip"
			}
			variants = append(variants, variant(desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewTenCrop(v2.TenCrop{Size: common.Size{H: 8, W: 7}, VerticalFlip: vflip})
				o, oerr := legacy.NewTenCrop(legacy.TenCrop{Size: common.Size{H: 8, W: 7}, VerticalFlip: vflip})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, SupportsBitmap: true, Variants: variants})
	}

	{
		n, o := pairType(v2.Pad{}, legacy.Pad{})
		var variants []Variant
		for _, cfg := range []struct {
			desc    string
			padding common.Padding
			fill    common.Fill
			mode    common.PaddingMode
		}{
			{"uniform constant", common.Pad1(3), common.FillScalar(0), common.Constant},
			{"asymmetric constant fill 1", common.Pad4(3, 2, 1, 4), common.FillScalar(1), common.Constant},
			{"per-channel fill", common.Pad2(2, 5), common.FillPerChannel(1, 2, 3), common.Constant},
			{"edge", common.Pad1(3), common.Fill{}, common.Edge},
			{"reflect", common.Pad2(2, 3), common.Fill{}, common.Reflect},
			{"symmetric", common.Pad2(2, 3), common.Fill{}, common.Symmetric},
		} {
			cfg := cfg
			variants = append(variants, variant(cfg.desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewPad(v2.Pad{Padding: cfg.padding, Fill: cfg.fill, PaddingMode: cfg.mode})
				o, oerr := legacy.NewPad(legacy.Pad{Padding: cfg.padding, Fill: cfg.fill, PaddingMode: cfg.mode})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, SupportsBitmap: true, Variants: variants})
	}

	{
		n, o := pairType(v2.LinearTransformation{}, legacy.LinearTransformation{})
		add(Case{
			New: n, Old: o,
			Images: imagegen.Options{
				Sizes:  [][2]int{{4, 4}},
				DTypes: []tensor.DType{tensor.Float32},
			},
			Tol: Tolerance{Rtol: 1e-6, Atol: 1e-6},
			Variants: []Variant{
				variant("whitening", whiteningPair),
			},
		})
	}

	{
		n, o := pairType(v2.Grayscale{}, legacy.Grayscale{})
		var variants []Variant
		for _, ch := range []int{1, 3} {
			ch := ch
			variants = append(variants, variant(map[int]string{1: "single channel", 3: "replicated"}[ch], func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewGrayscale(v2.Grayscale{NumOutputChannels: ch})
				o, oerr := legacy.NewGrayscale(legacy.Grayscale{NumOutputChannels: ch})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, SupportsBitmap: true, Variants: variants})
	}

	{
		n, o := pairType(v2.ConvertDType{}, legacy.ConvertDType{})
		var variants []Variant
		for _, dt := range []tensor.DType{tensor.Uint8, tensor.Float32, tensor.Float64} {
			dt := dt
			variants = append(variants, variant("to "+dt.String(), func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewConvertDType(v2.ConvertDType{DType: dt})
				o, oerr := legacy.NewConvertDType(legacy.ConvertDType{DType: dt})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, Variants: variants})
	}

	{
		n, o := pairType(v2.ToBitmap{}, legacy.ToBitmap{})
		add(Case{
			New: n, Old: o,
			Images: imagegen.Options{ExtraDims: [][]int{{}}, DTypes: []tensor.DType{tensor.Uint8}},
			Variants: []Variant{
				variant("render", func() (v2.Transform, legacy.Transform, error) {
					n, nerr := v2.NewToBitmap(v2.ToBitmap{})
					o, oerr := legacy.NewToBitmap(legacy.ToBitmap{})
					return pair(n, nerr, o, oerr)
				}),
			},
		})
	}

	{
		n, o := pairType(v2.BitmapToTensor{}, legacy.BitmapToTensor{})
		add(Case{
			New: n, Old: o,
			Images:         imagegen.Options{ExtraDims: [][]int{{}}, DTypes: []tensor.DType{tensor.Uint8}},
			SupportsBitmap: true,
			Variants: []Variant{
				variant("convert", func() (v2.Transform, legacy.Transform, error) {
					n, nerr := v2.NewBitmapToTensor(v2.BitmapToTensor{})
					o, oerr := legacy.NewBitmapToTensor(legacy.BitmapToTensor{})
					return pair(n, nerr, o, oerr)
				}),
			},
		})
	}

	{
		n, o := pairType(v2.ToTensor{}, legacy.ToTensor{})
		add(Case{
			New: n, Old: o,
			Images:         imagegen.Options{ExtraDims: [][]int{{}}, DTypes: []tensor.DType{tensor.Uint8}},
			SupportsBitmap: true,
			Variants: []Variant{
				variant("convert", func() (v2.Transform, legacy.Transform, error) {
					n, nerr := v2.NewToTensor(v2.ToTensor{})
					o, oerr := legacy.NewToTensor(legacy.ToTensor{})
					return pair(n, nerr, o, oerr)
				}),
			},
		})
	}

	{
		n, o := pairType(v2.Lambda{}, legacy.Lambda{})
		shiftDown := func(t *tensor.Tensor) *tensor.Tensor {
			out := t.Clone()
			for i, v := range t.Data {
				out.Data[i] = t.DType.Quantize(v / 2)
			}
			return out
		}
		add(Case{New: n, Old: o, Variants: []Variant{
			variant("halve values", func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewLambda(v2.Lambda{Fn: shiftDown})
				o, oerr := legacy.NewLambda(legacy.Lambda{Fn: shiftDown})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}

	addProbabilistic := func(n, o reflect.Type, images imagegen.Options, supportsBitmap bool, tol Tolerance, build func(p float64) (v2.Transform, legacy.Transform, error)) {
		var variants []Variant
		for _, p := range []float64{0, 0.5, 1} {
			p := p
			variants = append(variants, variant(probDesc(p), func() (v2.Transform, legacy.Transform, error) {
				return build(p)
			}))
		}
		add(Case{New: n, Old: o, Images: images, SupportsBitmap: supportsBitmap, Tol: tol, Variants: variants})
	}

	{
		n, o := pairType(v2.RandomHorizontalFlip{}, legacy.RandomHorizontalFlip{})
		addProbabilistic(n, o, imagegen.Options{}, true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomHorizontalFlip(v2.RandomHorizontalFlip{P: p})
			o, oerr := legacy.NewRandomHorizontalFlip(legacy.RandomHorizontalFlip{P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomVerticalFlip{}, legacy.RandomVerticalFlip{})
		addProbabilistic(n, o, imagegen.Options{}, true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomVerticalFlip(v2.RandomVerticalFlip{P: p})
			o, oerr := legacy.NewRandomVerticalFlip(legacy.RandomVerticalFlip{P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomEqualize{}, legacy.RandomEqualize{})
		addProbabilistic(n, o, uint8Only(), true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomEqualize(v2.RandomEqualize{P: p})
			o, oerr := legacy.NewRandomEqualize(legacy.RandomEqualize{P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomInvert{}, legacy.RandomInvert{})
		addProbabilistic(n, o, imagegen.Options{}, true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomInvert(v2.RandomInvert{P: p})
			o, oerr := legacy.NewRandomInvert(legacy.RandomInvert{P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomPosterize{}, legacy.RandomPosterize{})
		addProbabilistic(n, o, uint8Only(), true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomPosterize(v2.RandomPosterize{Bits: 4, P: p})
			o, oerr := legacy.NewRandomPosterize(legacy.RandomPosterize{Bits: 4, P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomSolarize{}, legacy.RandomSolarize{})
		addProbabilistic(n, o, imagegen.Options{}, true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomSolarize(v2.RandomSolarize{Threshold: 0.5, P: p})
			o, oerr := legacy.NewRandomSolarize(legacy.RandomSolarize{Threshold: 0.5, P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomAutocontrast{}, legacy.RandomAutocontrast{})
		addProbabilistic(n, o, imagegen.Options{}, true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomAutocontrast(v2.RandomAutocontrast{P: p})
			o, oerr := legacy.NewRandomAutocontrast(legacy.RandomAutocontrast{P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomAdjustSharpness{}, legacy.RandomAdjustSharpness{})
		addProbabilistic(n, o, imagegen.Options{}, true, Tolerance{Rtol: 1e-6, Atol: 1e-6}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomAdjustSharpness(v2.RandomAdjustSharpness{SharpnessFactor: 2, P: p})
			o, oerr := legacy.NewRandomAdjustSharpness(legacy.RandomAdjustSharpness{SharpnessFactor: 2, P: p})
			return pair(n, nerr, o, oerr)
		})
	}
	{
		n, o := pairType(v2.RandomGrayscale{}, legacy.RandomGrayscale{})
		addProbabilistic(n, o, imagegen.Options{}, true, Tolerance{}, func(p float64) (v2.Transform, legacy.Transform, error) {
			n, nerr := v2.NewRandomGrayscale(v2.RandomGrayscale{P: p})
			o, oerr := legacy.NewRandomGrayscale(legacy.RandomGrayscale{P: p})
			return pair(n, nerr, o, oerr)
		})
	}

	{
		n, o := pairType(v2.RandomResizedCrop{}, legacy.RandomResizedCrop{})
		var variants []Variant
		for _, cfg := range []struct {
			desc string
			size common.Size
			aa   bool
		}{
			{"default ranges", common.Square(12), false},
			{"shorter-edge size", common.Shorter(12), false},
			{"antialiased", common.Square(8), true},
		} {
			cfg := cfg
			variants = append(variants, variant(cfg.desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewRandomResizedCrop(v2.RandomResizedCrop{Size: cfg.size, Antialias: cfg.aa})
				o, oerr := legacy.NewRandomResizedCrop(legacy.RandomResizedCrop{Size: cfg.size, Antialias: cfg.aa})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, Variants: variants})
	}

	{
		n, o := pairType(v2.RandomErasing{}, legacy.RandomErasing{})
		var variants []Variant
		for _, cfg := range []struct {
			desc  string
			value common.Fill
		}{
			{"zero fill", common.FillScalar(0)},
			{"scalar fill", common.FillScalar(0.5)},
			{"random fill", common.FillRandom()},
		} {
			cfg := cfg
			variants = append(variants, variant(cfg.desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewRandomErasing(v2.RandomErasing{P: 1, Value: cfg.value})
				o, oerr := legacy.NewRandomErasing(legacy.RandomErasing{P: 1, Value: cfg.value})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, RemovedParams: []string{"inplace"}, Variants: variants})
	}

	{
		n, o := pairType(v2.ColorJitter{}, legacy.ColorJitter{})
		var variants []Variant
		for _, cfg := range []struct {
			desc       string
			b, c, s, h common.Range
		}{
			{"brightness only", common.Around(0.4), common.Range{}, common.Range{}, common.Range{}},
			{"all four components", common.Around(0.1), common.Around(0.4), common.Around(0.5), common.AroundHue(0.05)},
			{"hue only", common.Range{}, common.Range{}, common.Range{}, common.AroundHue(0.3)},
		} {
			cfg := cfg
			variants = append(variants, variant(cfg.desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewColorJitter(v2.ColorJitter{Brightness: cfg.b, Contrast: cfg.c, Saturation: cfg.s, Hue: cfg.h})
				o, oerr := legacy.NewColorJitter(legacy.ColorJitter{Brightness: cfg.b, Contrast: cfg.c, Saturation: cfg.s, Hue: cfg.h})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, Tol: Tolerance{Rtol: 1e-5, Atol: 1e-5}, Variants: variants})
	}

	{
		n, o := pairType(v2.GaussianBlur{}, legacy.GaussianBlur{})
		var variants []Variant
		for _, cfg := range []struct {
			desc   string
			kernel common.Size
			sigma  common.Range
		}{
			{"3x3 drawn sigma", common.Square(3), common.Range{}},
			{"5x3 fixed sigma", common.Size{H: 5, W: 3}, common.RangeOf(0.8, 0.8)},
		} {
			cfg := cfg
			variants = append(variants, variant(cfg.desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewGaussianBlur(v2.GaussianBlur{KernelSize: cfg.kernel, Sigma: cfg.sigma})
				o, oerr := legacy.NewGaussianBlur(legacy.GaussianBlur{KernelSize: cfg.kernel, Sigma: cfg.sigma})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, Tol: Tolerance{Rtol: 1e-5, Atol: 1e-5}, Variants: variants})
	}

	{
		n, o := pairType(v2.RandomCrop{}, legacy.RandomCrop{})
		pad3 := common.Pad1(3)
		var variants []Variant
		for _, cfg := range []struct {
			desc        string
			size        common.Size
			padding     *common.Padding
			padIfNeeded bool
		}{
			{"plain", common.Square(10), nil, false},
			{"with padding", common.Square(12), &pad3, false},
			{"pad if needed", common.Square(20), nil, true},
		} {
			cfg := cfg
			variants = append(variants, variant(cfg.desc, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewRandomCrop(v2.RandomCrop{Size: cfg.size, Padding: cfg.padding, PadIfNeeded: cfg.padIfNeeded})
				o, oerr := legacy.NewRandomCrop(legacy.RandomCrop{Size: cfg.size, Padding: cfg.padding, PadIfNeeded: cfg.padIfNeeded})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, Variants: variants})
	}

	{
		n, o := pairType(v2.Compose{}, legacy.Compose{})
		add(Case{New: n, Old: o, Variants: []Variant{
			variant("flip then crop", composeChain),
		}})
	}
	{
		n, o := pairType(v2.RandomApply{}, legacy.RandomApply{})
		var variants []Variant
		for _, p := range []float64{0, 0.5, 1} {
			p := p
			variants = append(variants, variant(probDesc(p), func() (v2.Transform, legacy.Transform, error) {
				nc, oc, err := flipPair()
				if err != nil {
					return nil, nil, err
				}
				n, nerr := v2.NewRandomApply(v2.RandomApply{Transforms: []v2.Transform{nc}, P: p})
				o, oerr := legacy.NewRandomApply(legacy.RandomApply{Transforms: []legacy.Transform{oc}, P: p})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, Variants: variants})
	}
	{
		n, o := pairType(v2.RandomChoice{}, legacy.RandomChoice{})
		add(Case{New: n, Old: o, Variants: []Variant{
			variant("uniform weights", func() (v2.Transform, legacy.Transform, error) {
				nf, of, err := flipPair()
				if err != nil {
					return nil, nil, err
				}
				ni, oi, err := invertPair()
				if err != nil {
					return nil, nil, err
				}
				n, nerr := v2.NewRandomChoice(v2.RandomChoice{Transforms: []v2.Transform{nf, ni}})
				o, oerr := legacy.NewRandomChoice(legacy.RandomChoice{Transforms: []legacy.Transform{of, oi}})
				return pair(n, nerr, o, oerr)
			}),
			variant("weighted", func() (v2.Transform, legacy.Transform, error) {
				nf, of, err := flipPair()
				if err != nil {
					return nil, nil, err
				}
				ni, oi, err := invertPair()
				if err != nil {
					return nil, nil, err
				}
				n, nerr := v2.NewRandomChoice(v2.RandomChoice{Transforms: []v2.Transform{nf, ni}, P: []float64{0.2, 0.8}})
				o, oerr := legacy.NewRandomChoice(legacy.RandomChoice{Transforms: []legacy.Transform{of, oi}, P: []float64{0.2, 0.8}})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}
	{
		n, o := pairType(v2.RandomOrder{}, legacy.RandomOrder{})
		add(Case{New: n, Old: o, Variants: []Variant{
			variant("flip and invert", func() (v2.Transform, legacy.Transform, error) {
				nf, of, err := flipPair()
				if err != nil {
					return nil, nil, err
				}
				ni, oi, err := invertPair()
				if err != nil {
					return nil, nil, err
				}
				n, nerr := v2.NewRandomOrder(v2.RandomOrder{Transforms: []v2.Transform{nf, ni}})
				o, oerr := legacy.NewRandomOrder(legacy.RandomOrder{Transforms: []legacy.Transform{of, oi}})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}

	{
		n, o := pairType(v2.RandAugment{}, legacy.RandAugment{})
		add(Case{New: n, Old: o, Images: uint8Only(), Variants: []Variant{
			variant("defaults", func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewRandAugment(v2.RandAugment{})
				o, oerr := legacy.NewRandAugment(legacy.RandAugment{})
				return pair(n, nerr, o, oerr)
			}),
			variant("three ops magnitude 15", func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewRandAugment(v2.RandAugment{NumOps: 3, Magnitude: 15})
				o, oerr := legacy.NewRandAugment(legacy.RandAugment{NumOps: 3, Magnitude: 15})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}
	{
		n, o := pairType(v2.TrivialAugmentWide{}, legacy.TrivialAugmentWide{})
		add(Case{New: n, Old: o, Images: uint8Only(), Variants: []Variant{
			variant("defaults", func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewTrivialAugmentWide(v2.TrivialAugmentWide{})
				o, oerr := legacy.NewTrivialAugmentWide(legacy.TrivialAugmentWide{})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}
	{
		n, o := pairType(v2.AutoAugment{}, legacy.AutoAugment{})
		var variants []Variant
		for _, policy := range []string{"imagenet", "cifar10"} {
			policy := policy
			variants = append(variants, variant(policy, func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewAutoAugment(v2.AutoAugment{Policy: v2.AutoAugmentPolicy(policy)})
				o, oerr := legacy.NewAutoAugment(legacy.AutoAugment{Policy: legacy.AutoAugmentPolicy(policy)})
				return pair(n, nerr, o, oerr)
			}))
		}
		add(Case{New: n, Old: o, Images: uint8Only(), Variants: variants})
	}
	{
		n, o := pairType(v2.AugMix{}, legacy.AugMix{})
		add(Case{New: n, Old: o, Images: uint8Only(), Variants: []Variant{
			variant("defaults", func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewAugMix(v2.AugMix{})
				o, oerr := legacy.NewAugMix(legacy.AugMix{})
				return pair(n, nerr, o, oerr)
			}),
			variant("single chain depth one", func() (v2.Transform, legacy.Transform, error) {
				n, nerr := v2.NewAugMix(v2.AugMix{MixtureWidth: 1, ChainDepth: 1})
				o, oerr := legacy.NewAugMix(legacy.AugMix{MixtureWidth: 1, ChainDepth: 1})
				return pair(n, nerr, o, oerr)
			}),
		}})
	}

	return cases
}

func probDesc(p float64) string {
	switch p {
	case 0:
		return "never"
	case 1:
		return "always"
	default:
		return "half the time"
	}
}

func flipPair() (v2.Transform, legacy.Transform, error) {
	n, nerr := v2.NewRandomHorizontalFlip(v2.RandomHorizontalFlip{P: 1})
	o, oerr := legacy.NewRandomHorizontalFlip(legacy.RandomHorizontalFlip{P: 1})
	return pair(n, nerr, o, oerr)
}

func invertPair() (v2.Transform, legacy.Transform, error) {
	n, nerr := v2.NewRandomInvert(v2.RandomInvert{P: 1})
	o, oerr := legacy.NewRandomInvert(legacy.RandomInvert{P: 1})
	return pair(n, nerr, o, oerr)
}

func composeChain() (v2.Transform, legacy.Transform, error) {
	nf, of, err := flipPair()
	if err != nil {
		return nil, nil, err
	}
	nc, ncErr := v2.NewCenterCrop(v2.CenterCrop{Size: common.Size{H: 10, W: 10}})
	oc, ocErr := legacy.NewCenterCrop(legacy.CenterCrop{Size: common.Size{H: 10, W: 10}})
	if ncErr != nil {
		return nil, nil, ncErr
	}
	if ocErr != nil {
		return nil, nil, ocErr
	}
	n, nerr := v2.NewCompose(v2.Compose{Transforms: []v2.Transform{nf, nc}})
	o, oerr := legacy.NewCompose(legacy.Compose{Transforms: []legacy.Transform{of, oc}})
	return pair(n, nerr, o, oerr)
}

// CaseFor looks a case up by its legacy class name.
func CaseFor(name string) (Case, bool) {
	for _, c := range Cases() {
		if c.Name() == name {
			return c, true
		}
	}
	return Case{}, false
}

// MissingCoverage lists every public legacy transform class absent from the
// registry, sorted. An empty result means full coverage.
func MissingCoverage() []string {
	covered := map[string]bool{}
	for _, c := range Cases() {
		covered[c.Old.Name()] = true
	}
	var missing []string
	for _, t := range legacy.TransformTypes() {
		if !covered[t.Name()] {
			missing = append(missing, t.Name())
		}
	}
	sort.Strings(missing)
	return missing
}

// CaseImages materializes the input set of a case.
func CaseImages(c Case) []*features.Image {
	return imagegen.Images(c.Images)
}
