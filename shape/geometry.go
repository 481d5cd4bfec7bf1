// Package shape turns abstract shape descriptors into gg paths and brushes.
package shape

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/waozixyz/paywall/viewconfig"
)

// Rect is an axis-aligned box in device pixels, y growing downward.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }
func (r Rect) Right() float64 { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }
func (r Rect) Shorter() float64 { return math.Min(r.W, r.H) }
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks the rect by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: math.Max(0, r.W-2*d), H: math.Max(0, r.H-2*d)}
}

// ArcTo appends a circular arc of sweepDeg degrees, starting at startDeg,
// around (cx, cy). Negative sweeps run counter-clockwise on screen. The arc
// is split into cubic segments of at most 90 degrees. When the path already
// has a current point a line joins it to the arc start.
func ArcTo(p *gg.Path, cx, cy, r, startDeg, sweepDeg float64) {
	a1 := startDeg * math.Pi / 180
	sweep := sweepDeg * math.Pi / 180
	x0, y0 := cx+r*math.Cos(a1), cy+r*math.Sin(a1)
	if !p.HasCurrentPoint() {
		p.MoveTo(x0, y0)
	} else if cur := p.CurrentPoint(); math.Abs(cur.X-x0) > 1e-9 || math.Abs(cur.Y-y0) > 1e-9 {
		p.LineTo(x0, y0)
	}
	if sweep == 0 || r <= 0 {
		return
	}
	n := max(1, int(math.Ceil(math.Abs(sweep)/(math.Pi/2)-1e-9)))
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := 0; i < n; i++ {
		s := a1 + float64(i)*step
		e := s + step
		cs, ss := math.Cos(s), math.Sin(s)
		ce, se := math.Cos(e), math.Sin(e)
		p.CubicTo(
			cx+r*(cs-k*ss), cy+r*(ss+k*cs),
			cx+r*(ce+k*se), cy+r*(se-k*ce),
			cx+r*ce, cy+r*se,
		)
	}
}

// ArcGeometry returns the circle radius and the subtended angle in degrees
// of an arc spanning chord w with sagitta |h|.
func ArcGeometry(w, h float64) (radius, thetaDeg float64) {
	h = math.Abs(h)
	if h == 0 {
		return math.Inf(1), 0
	}
	radius = (w*w + 4*h*h) / (8 * h)
	thetaDeg = 2 * math.Acos((radius-h)/radius) * 180 / math.Pi
	return radius, thetaDeg
}

// Path builds the fill path of s inside b.
func Path(s *viewconfig.Shape, b Rect) *gg.Path {
	p := gg.NewPath()
	if b.Empty() {
		return p
	}
	if s == nil {
		p.Rectangle(b.X, b.Y, b.W, b.H)
		return p
	}
	switch s.Type {
	case viewconfig.ShapeCircle:
		p.Circle(b.CenterX(), b.CenterY(), b.Shorter()/2)
	case viewconfig.ShapeRectWithArc:
		rectWithArc(p, b, s.ArcHeight)
	default:
		roundedRect(p, b, s.Radii)
	}
	return p
}

// StrokePath builds the border path, inset by half the stroke width so the
// stroke stays inside b.
func StrokePath(s *viewconfig.Shape, b Rect, thickness float64) *gg.Path {
	half := thickness / 2
	inner := b.Inset(half)
	if s == nil || s.Type != viewconfig.ShapeRect {
		return Path(s, inner)
	}
	r := s.Radii
	shrink := func(v float64) float64 { return math.Max(0, v-half) }
	p := gg.NewPath()
	if !inner.Empty() {
		roundedRect(p, inner, viewconfig.CornerRadii{
			TopLeft: shrink(r.TopLeft), TopRight: shrink(r.TopRight),
			BottomRight: shrink(r.BottomRight), BottomLeft: shrink(r.BottomLeft),
		})
	}
	return p
}

// ClampRadii limits every corner to half the shorter side.
func ClampRadii(r viewconfig.CornerRadii, b Rect) viewconfig.CornerRadii {
	limit := b.Shorter() / 2
	c := func(v float64) float64 { return math.Max(0, math.Min(v, limit)) }
	return viewconfig.CornerRadii{
		TopLeft: c(r.TopLeft), TopRight: c(r.TopRight),
		BottomRight: c(r.BottomRight), BottomLeft: c(r.BottomLeft),
	}
}

func roundedRect(p *gg.Path, b Rect, radii viewconfig.CornerRadii) {
	if radii.IsZero() {
		p.Rectangle(b.X, b.Y, b.W, b.H)
		return
	}
	r := ClampRadii(radii, b)
	p.MoveTo(b.X+r.TopLeft, b.Y)
	p.LineTo(b.Right()-r.TopRight, b.Y)
	ArcTo(p, b.Right()-r.TopRight, b.Y+r.TopRight, r.TopRight, 270, 90)
	p.LineTo(b.Right(), b.Bottom()-r.BottomRight)
	ArcTo(p, b.Right()-r.BottomRight, b.Bottom()-r.BottomRight, r.BottomRight, 0, 90)
	p.LineTo(b.X+r.BottomLeft, b.Bottom())
	ArcTo(p, b.X+r.BottomLeft, b.Bottom()-r.BottomLeft, r.BottomLeft, 90, 90)
	p.LineTo(b.X, b.Y+r.TopLeft)
	ArcTo(p, b.X+r.TopLeft, b.Y+r.TopLeft, r.TopLeft, 180, 90)
	p.Close()
}

// rectWithArc replaces the top edge (h > 0, bowing down by h) or the bottom
// edge (h < 0, bowing up by |h|) with a circular arc. The sagitta is capped at
// the rect height.
func rectWithArc(p *gg.Path, b Rect, h float64) {
	if h == 0 {
		p.Rectangle(b.X, b.Y, b.W, b.H)
		return
	}
	mag := math.Min(math.Abs(h), b.H)
	r, theta := ArcGeometry(b.W, mag)
	cx := b.CenterX()
	if h > 0 {
		p.MoveTo(b.X, b.Bottom())
		p.LineTo(b.X, b.Y)
		ArcTo(p, cx, b.Y+mag-r, r, 90+theta/2, -theta)
		p.LineTo(b.Right(), b.Bottom())
		p.Close()
		return
	}
	p.MoveTo(b.X, b.Y)
	p.LineTo(b.Right(), b.Y)
	p.LineTo(b.Right(), b.Bottom())
	ArcTo(p, cx, b.Bottom()-mag+r, r, 270+theta/2, -theta)
	p.Close()
}
