package element

import (
	"math"

	"github.com/waozixyz/paywall/render"
)

type DimKind uint8

const (
	DimWrap DimKind = iota
	DimFillMax
	DimMin
	DimSpecified
	DimShrink
)

// DimSpec sizes an element along one axis. The zero value wraps content.
type DimSpec struct {
	Kind  DimKind
	Value float64
}

// Wrap sizes to content, capped by the parent.
func Wrap() DimSpec { return DimSpec{Kind: DimWrap} }

// FillMax takes all the space the parent offers.
func FillMax() DimSpec { return DimSpec{Kind: DimFillMax} }

// Min wraps content but never goes below v.
func Min(v float64) DimSpec { return DimSpec{Kind: DimMin, Value: v} }

func Specified(v float64) DimSpec { return DimSpec{Kind: DimSpecified, Value: v} }

// Shrink sizes to the minimal intrinsic content, never below min.
func Shrink(min float64) DimSpec { return DimSpec{Kind: DimShrink, Value: min} }

// resolve picks a size given the parent's maximum. content and intrinsic
// are only evaluated when the spec needs them.
func (d DimSpec) resolve(max float64, content, intrinsic func() float64) float64 {
	switch d.Kind {
	case DimSpecified:
		return d.Value
	case DimFillMax:
		if finite(max) {
			return max
		}
		return content()
	case DimMin:
		return math.Max(content(), d.Value)
	case DimShrink:
		return math.Max(intrinsic(), d.Value)
	}
	if finite(max) {
		return math.Min(content(), max)
	}
	return content()
}

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

var unbounded = math.Inf(1)

// Constraints are the maximum outer size a parent offers. Infinite values
// leave an axis unbounded.
type Constraints struct {
	MaxW, MaxH float64
}

func Loose(w, h float64) Constraints { return Constraints{MaxW: w, MaxH: h} }

func (c Constraints) inset(p render.Insets) Constraints {
	return Constraints{MaxW: c.MaxW - p.Horizontal(), MaxH: c.MaxH - p.Vertical()}
}

type Align uint8

const (
	Start Align = iota
	Center
	End
)

func (a Align) offset(free float64) float64 {
	switch a {
	case Center:
		return free / 2
	case End:
		return free
	}
	return 0
}

// Alignment places a smaller child inside a larger slot.
type Alignment struct {
	H, V Align
}

var (
	TopStart     = Alignment{Start, Start}
	TopCenter    = Alignment{Center, Start}
	TopEnd       = Alignment{End, Start}
	CenterAll    = Alignment{Center, Center}
	BottomStart  = Alignment{Start, End}
	BottomCenter = Alignment{Center, End}
	BottomEnd    = Alignment{End, End}
)

// Arrangement distributes free space along a Column or Row main axis.
type Arrangement uint8

const (
	ArrangeStart Arrangement = iota
	ArrangeCenter
	ArrangeEnd
	ArrangeSpaceEvenly
)

type Offset struct {
	X, Y float64
}
