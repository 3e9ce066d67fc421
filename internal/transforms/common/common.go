// Package common holds the vocabulary shared by the legacy and v2 transform
// APIs: interpolation and padding modes, size and padding specs, and fill
// values. Both APIs re-use these types so constructed transforms can be
// compared parameter for parameter.
package common

import (
	"fmt"
)

// InterpolationMode selects the resampling filter for geometric transforms.
type InterpolationMode int

const (
	// Bilinear is the zero value: a transform field left unset resolves to
	// the declared bilinear default.
	Bilinear InterpolationMode = iota
	Nearest
)

func (m InterpolationMode) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("interpolation(%d)", int(m))
	}
}

// PaddingMode selects how padded pixels are synthesized.
type PaddingMode int

const (
	Constant PaddingMode = iota
	Edge
	Reflect
	Symmetric
)

func (m PaddingMode) String() string {
	switch m {
	case Constant:
		return "constant"
	case Edge:
		return "edge"
	case Reflect:
		return "reflect"
	case Symmetric:
		return "symmetric"
	default:
		return fmt.Sprintf("padding(%d)", int(m))
	}
}

// Size is a (height, width) pair. A square size has H == W.
type Size struct {
	H int
	W int
}

// Square returns a size with equal sides.
func Square(s int) Size {
	return Size{H: s, W: s}
}

// Shorter returns a shorter-edge size: the image's smaller side is scaled to
// s and the aspect ratio is preserved.
func Shorter(s int) Size {
	return Size{H: s}
}

// IsShorterEdge reports whether the size is a shorter-edge spec rather than
// an explicit (height, width) pair.
func (s Size) IsShorterEdge() bool {
	return s.W == 0
}

func (s Size) String() string {
	if s.IsShorterEdge() {
		return fmt.Sprintf("shorter edge %d", s.H)
	}
	return fmt.Sprintf("%dx%d", s.H, s.W)
}

// Padding is the per-edge padding (left, top, right, bottom).
type Padding struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Pad1 expands a single padding value to all four edges.
func Pad1(p int) Padding {
	return Padding{Left: p, Top: p, Right: p, Bottom: p}
}

// Pad2 expands a (horizontal, vertical) pair.
func Pad2(h, v int) Padding {
	return Padding{Left: h, Top: v, Right: h, Bottom: v}
}

// Pad4 sets each edge explicitly in (left, top, right, bottom) order.
func Pad4(l, t, r, b int) Padding {
	return Padding{Left: l, Top: t, Right: r, Bottom: b}
}

// Fill is the value written into synthesized pixels. A nil Values fills with
// zero, a single element fills all channels, otherwise one value per channel.
// Random marks the erasing-specific "draw every element" mode.
type Fill struct {
	Values []float64
	Random bool
}

// FillRandom marks the fill as per-element random (used by random erasing).
func FillRandom() Fill {
	return Fill{Random: true}
}

// FillScalar fills every channel with v.
func FillScalar(v float64) Fill {
	return Fill{Values: []float64{v}}
}

// FillPerChannel fills each channel with its own value.
func FillPerChannel(vs ...float64) Fill {
	return Fill{Values: vs}
}

// ValueFor resolves the fill value for channel c of an image with the given
// channel count.
func (f Fill) ValueFor(c, channels int) float64 {
	switch len(f.Values) {
	case 0:
		return 0
	case 1:
		return f.Values[0]
	default:
		if len(f.Values) != channels {
			panic(fmt.Sprintf("common: fill has %d values for %d channels", len(f.Values), channels))
		}
		return f.Values[c]
	}
}

// Range is a closed interval used for random parameter sampling.
type Range struct {
	Lo float64
	Hi float64
}

// RangeOf builds a range, panicking when lo > hi.
func RangeOf(lo, hi float64) Range {
	if lo > hi {
		panic(fmt.Sprintf("common: invalid range [%v, %v]", lo, hi))
	}
	return Range{Lo: lo, Hi: hi}
}

// Around centers a symmetric range on 1 with the given spread, clamping the
// lower bound at zero. This is the expansion rule for scalar jitter factors.
func Around(spread float64) Range {
	lo := 1 - spread
	if lo < 0 {
		lo = 0
	}
	return Range{Lo: lo, Hi: 1 + spread}
}

// AroundHue centers a symmetric hue range on 0, clamped to [-0.5, 0.5].
func AroundHue(spread float64) Range {
	if spread < 0 {
		spread = -spread
	}
	if spread > 0.5 {
		spread = 0.5
	}
	return Range{Lo: -spread, Hi: spread}
}

// IsZero reports whether the range is the zero value (an unset parameter).
func (r Range) IsZero() bool {
	return r.Lo == 0 && r.Hi == 0
}
