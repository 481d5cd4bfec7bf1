package shape

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/paywall/viewconfig"
)

// flatten samples every segment of p, curves at 16 steps.
func flatten(p *gg.Path) []gg.Point {
	var pts []gg.Point
	var cur gg.Point
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			cur = e.Point
			pts = append(pts, cur)
		case gg.LineTo:
			cur = e.Point
			pts = append(pts, cur)
		case gg.CubicTo:
			for i := 1; i <= 16; i++ {
				t := float64(i) / 16
				mt := 1 - t
				pts = append(pts, gg.Point{
					X: mt*mt*mt*cur.X + 3*mt*mt*t*e.Control1.X + 3*mt*t*t*e.Control2.X + t*t*t*e.Point.X,
					Y: mt*mt*mt*cur.Y + 3*mt*mt*t*e.Control1.Y + 3*mt*t*t*e.Control2.Y + t*t*t*e.Point.Y,
				})
			}
			cur = e.Point
		}
	}
	return pts
}

func countCubics(p *gg.Path) int {
	n := 0
	for _, el := range p.Elements() {
		if _, ok := el.(gg.CubicTo); ok {
			n++
		}
	}
	return n
}

func TestArcGeometry(t *testing.T) {
	r, theta := ArcGeometry(100, 10)
	assert.InDelta(t, 130, r, 1e-9)
	assert.InDelta(t, 2*math.Acos(120.0/130.0)*180/math.Pi, theta, 1e-9)

	r, theta = ArcGeometry(100, -10)
	assert.InDelta(t, 130, r, 1e-9)
	assert.Greater(t, theta, 0.0)
}

func TestRectWithArcFlat(t *testing.T) {
	s := &viewconfig.Shape{Type: viewconfig.ShapeRectWithArc}
	p := Path(s, Rect{W: 200, H: 100})
	assert.Zero(t, countCubics(p))
	els := p.Elements()
	require.NotEmpty(t, els)
	assert.IsType(t, gg.Close{}, els[len(els)-1])
	for _, pt := range flatten(p) {
		assert.True(t, pt.Y == 0 || pt.Y == 100, "point %v off the straight edges", pt)
	}
}

func TestRectWithArcBowsDown(t *testing.T) {
	b := Rect{X: 10, Y: 20, W: 200, H: 100}
	p := Path(&viewconfig.Shape{Type: viewconfig.ShapeRectWithArc, ArcHeight: 24}, b)
	require.Positive(t, countCubics(p))

	els := p.Elements()
	assert.Equal(t, gg.MoveTo{Point: gg.Pt(10, 120)}, els[0])
	assert.Equal(t, gg.LineTo{Point: gg.Pt(210, 120)}, els[len(els)-2])
	assert.IsType(t, gg.Close{}, els[len(els)-1])

	deepest := gg.Pt(0, math.Inf(-1))
	for _, pt := range flatten(p) {
		if pt.Y < 120-1e-6 && pt.Y > deepest.Y {
			deepest = pt
		}
		assert.GreaterOrEqual(t, pt.Y, 20-1e-6)
	}
	assert.InDelta(t, 44, deepest.Y, 0.05, "arc midpoint sits h below the chord")
	assert.InDelta(t, 110, deepest.X, 1)
}

func TestRectWithArcBowsUp(t *testing.T) {
	b := Rect{W: 200, H: 100}
	p := Path(&viewconfig.Shape{Type: viewconfig.ShapeRectWithArc, ArcHeight: -24}, b)
	require.Positive(t, countCubics(p))
	els := p.Elements()
	assert.IsType(t, gg.Close{}, els[len(els)-1])

	highest := math.Inf(1)
	for _, pt := range flatten(p) {
		if pt.Y > 1e-6 && pt.Y < highest {
			highest = pt.Y
		}
		assert.LessOrEqual(t, pt.Y, 100+1e-6)
	}
	assert.InDelta(t, 76, highest, 0.05)

	// the arc ends at the bottom-left corner before closing
	last := flatten(p)
	assert.InDelta(t, 0, last[len(last)-1].X, 1e-6)
	assert.InDelta(t, 100, last[len(last)-1].Y, 1e-6)
}

func TestArcToNegativeSweep(t *testing.T) {
	p := gg.NewPath()
	ArcTo(p, 0, 0, 10, 0, -180)
	assert.Equal(t, 2, countCubics(p))
	pts := flatten(p)
	for _, pt := range pts {
		assert.InDelta(t, 10, math.Hypot(pt.X, pt.Y), 0.01)
		assert.LessOrEqual(t, pt.Y, 1e-6, "negative sweep runs through the upper half")
	}
	end := pts[len(pts)-1]
	assert.InDelta(t, -10, end.X, 1e-9)
}

func TestCircleInscribed(t *testing.T) {
	p := Path(&viewconfig.Shape{Type: viewconfig.ShapeCircle}, Rect{W: 100, H: 40})
	for _, pt := range flatten(p) {
		assert.InDelta(t, 20, math.Hypot(pt.X-50, pt.Y-20), 0.05)
	}
}

func TestRoundedRectClampsRadii(t *testing.T) {
	b := Rect{W: 40, H: 40}
	r := ClampRadii(viewconfig.CornerRadii{TopLeft: 100, TopRight: 5, BottomRight: -3}, b)
	assert.Equal(t, viewconfig.CornerRadii{TopLeft: 20, TopRight: 5}, r)

	p := Path(&viewconfig.Shape{Type: viewconfig.ShapeRect, Radii: viewconfig.UniformRadii(100)}, b)
	for _, pt := range flatten(p) {
		assert.InDelta(t, 20, math.Hypot(pt.X-20, pt.Y-20), 0.05, "fully rounded square is a circle")
	}
}

func TestStrokePathInset(t *testing.T) {
	s := &viewconfig.Shape{Type: viewconfig.ShapeRect, Border: &viewconfig.Border{Thickness: 4}}
	p := StrokePath(s, Rect{W: 100, H: 50}, 4)
	for _, pt := range flatten(p) {
		assert.True(t, pt.X >= 2 && pt.X <= 98 && pt.Y >= 2 && pt.Y <= 48, "point %v outside inset", pt)
	}
}

func TestCoverTransform(t *testing.T) {
	m := CoverTransform(100, 50, Rect{W: 100, H: 100})
	assert.Equal(t, gg.Pt(-50, 0), m.TransformPoint(gg.Pt(0, 0)))
	assert.Equal(t, gg.Pt(150, 100), m.TransformPoint(gg.Pt(100, 50)))

	m = CoverTransform(50, 200, Rect{X: 10, Y: 10, W: 100, H: 100})
	tl := m.TransformPoint(gg.Pt(0, 0))
	br := m.TransformPoint(gg.Pt(50, 200))
	assert.InDelta(t, 10, tl.X, 1e-9)
	assert.InDelta(t, 110, br.X, 1e-9)
	assert.InDelta(t, 60, (tl.Y+br.Y)/2, 1e-9, "overflowing axis is centered")
}

func TestImageBrushCovers(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})

	br := ImageBrush(img, Rect{W: 100, H: 50})
	assert.InDelta(t, 1, br.ColorAt(25, 25).R, 1e-9)
	assert.InDelta(t, 1, br.ColorAt(75, 25).B, 1e-9)
}

func TestDrawableBrushIsLazyAndBoundsBound(t *testing.T) {
	grad := viewconfig.GradientAsset{
		Type:   viewconfig.GradientLinear,
		Stops:  []viewconfig.GradientStop{{Position: 0, Color: 0xFF000000}, {Position: 1, Color: 0xFFFFFFFF}},
		Points: viewconfig.GradientPoints{X0: 0, Y0: 0, X1: 1, Y1: 0},
	}
	d := NewDrawable(&viewconfig.Shape{Type: viewconfig.ShapeRect}, grad, nil)
	assert.Zero(t, d.Builds())

	d.SetBounds(Rect{W: 100, H: 10})
	assert.Zero(t, d.Builds(), "no brush before first draw")
	b1 := d.FillBrush()
	require.NotNil(t, b1)
	d.FillBrush()
	d.SetBounds(Rect{W: 100, H: 10})
	d.FillBrush()
	assert.Equal(t, 1, d.Builds())

	d.SetBounds(Rect{W: 200, H: 10})
	b2 := d.FillBrush()
	assert.Equal(t, 2, d.Builds())
	assert.Equal(t, b1.ColorAt(50, 5), b2.ColorAt(100, 5), "gradient follows the new bounds")
	assert.NotEqual(t, b1.ColorAt(50, 5), b2.ColorAt(50, 5))
}

func TestDrawableImageFill(t *testing.T) {
	d := NewDrawable(nil, viewconfig.ImageAsset{Source: viewconfig.ImageRemote, URL: "u"}, nil)
	d.SetBounds(Rect{W: 10, H: 10})
	assert.True(t, d.NeedsImage())
	assert.Nil(t, d.FillBrush())

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	d.SetImage(img)
	assert.False(t, d.NeedsImage())
	assert.NotNil(t, d.FillBrush())
	assert.Equal(t, 2, d.Builds())
	d.SetImage(img)
	d.FillBrush()
	assert.Equal(t, 2, d.Builds())
}

func TestBorderBrush(t *testing.T) {
	s := &viewconfig.Shape{Type: viewconfig.ShapeRect, Border: &viewconfig.Border{Color: "c", Thickness: 2}}
	d := NewDrawable(s, nil, viewconfig.ColorAsset{Value: 0xFF00FF00})
	br, w := d.BorderBrush()
	require.NotNil(t, br)
	assert.Equal(t, 2.0, w)
	assert.NotNil(t, d.StrokePath())

	_, w = NewColorDrawable(0xFFFFFFFF).BorderBrush()
	assert.Zero(t, w)
}
