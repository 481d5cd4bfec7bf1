package shape

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/waozixyz/paywall/viewconfig"
)

// RGBA converts a packed ARGB color to a gg color.
func RGBA(c viewconfig.Color) gg.RGBA {
	return gg.RGBA{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
		A: float64(c.A()) / 255,
	}
}

// CoverTransform maps source image pixels onto dst so the image covers the
// whole rect: the larger of the two axis ratios becomes the uniform scale and
// the overflowing axis is centered.
func CoverTransform(srcW, srcH float64, dst Rect) gg.Matrix {
	if srcW <= 0 || srcH <= 0 {
		return gg.Identity()
	}
	s := math.Max(dst.W/srcW, dst.H/srcH)
	tx := dst.X + (dst.W-srcW*s)/2
	ty := dst.Y + (dst.H-srcH*s)/2
	return gg.Translate(tx, ty).Multiply(gg.Scale(s, s))
}

// Brush builds a bounds-relative brush for a fill asset. Image assets need the
// decoded image; a nil image yields a nil brush.
func Brush(fill viewconfig.Asset, img image.Image, b Rect) gg.Brush {
	switch f := fill.(type) {
	case viewconfig.ColorAsset:
		return gg.Solid(RGBA(f.Value))
	case viewconfig.GradientAsset:
		return gradientBrush(f, b)
	case viewconfig.ImageAsset:
		if img == nil {
			return nil
		}
		return ImageBrush(img, b)
	}
	return nil
}

func gradientBrush(g viewconfig.GradientAsset, b Rect) gg.Brush {
	x0, y0 := b.X+g.Points.X0*b.W, b.Y+g.Points.Y0*b.H
	x1, y1 := b.X+g.Points.X1*b.W, b.Y+g.Points.Y1*b.H
	switch g.Type {
	case viewconfig.GradientRadial:
		br := gg.NewRadialGradientBrush(x0, y0, 0, math.Hypot(x1-x0, y1-y0))
		for _, s := range g.Stops {
			br.AddColorStop(s.Position, RGBA(s.Color))
		}
		return br
	case viewconfig.GradientConic:
		br := gg.NewSweepGradientBrush(x0, y0, math.Atan2(y1-y0, x1-x0))
		for _, s := range g.Stops {
			br.AddColorStop(s.Position, RGBA(s.Color))
		}
		return br
	}
	br := gg.NewLinearGradientBrush(x0, y0, x1, y1)
	for _, s := range g.Stops {
		br.AddColorStop(s.Position, RGBA(s.Color))
	}
	return br
}

// ImageBrush samples img through a cover transform onto b, nearest neighbour.
func ImageBrush(img image.Image, b Rect) gg.Brush {
	ib := img.Bounds()
	inv := CoverTransform(float64(ib.Dx()), float64(ib.Dy()), b).Invert()
	return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
		p := inv.TransformPoint(gg.Pt(x, y))
		px := ib.Min.X + clampInt(int(math.Floor(p.X)), 0, ib.Dx()-1)
		py := ib.Min.Y + clampInt(int(math.Floor(p.Y)), 0, ib.Dy()-1)
		return gg.FromColor(img.At(px, py))
	}).WithName("cover-image")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Drawable pairs a shape with its resolved fill and border. The fill brush
// is built on first use and rebuilt only after the bounds or image change.
type Drawable struct {
	Shape  *viewconfig.Shape
	Fill   viewconfig.Asset
	Border viewconfig.Asset

	image  image.Image
	bounds Rect

	brush       gg.Brush
	brushBounds Rect
	brushValid  bool
	builds      int
}

func NewDrawable(s *viewconfig.Shape, fill, border viewconfig.Asset) *Drawable {
	return &Drawable{Shape: s, Fill: fill, Border: border}
}

// NewColorDrawable is a plain rectangle filled with c.
func NewColorDrawable(c viewconfig.Color) *Drawable {
	return &Drawable{Fill: viewconfig.ColorAsset{Value: c}}
}

func (d *Drawable) Bounds() Rect { return d.bounds }

// SetBounds moves the drawable. A change in bounds drops the cached brush.
func (d *Drawable) SetBounds(b Rect) {
	if b == d.bounds {
		return
	}
	d.bounds = b
	d.brushValid = false
}

// SetImage supplies the decoded bitmap of an image fill. Delivering the same
// image again is a no-op.
func (d *Drawable) SetImage(img image.Image) {
	if img == d.image {
		return
	}
	d.image = img
	d.brushValid = false
}

func (d *Drawable) Image() image.Image { return d.image }

// NeedsImage reports whether the fill is a bitmap that has not arrived yet.
func (d *Drawable) NeedsImage() bool {
	_, ok := d.Fill.(viewconfig.ImageAsset)
	return ok && d.image == nil
}

// FillBrush returns the brush for the current bounds, building it lazily.
func (d *Drawable) FillBrush() gg.Brush {
	if d.brushValid && d.brushBounds == d.bounds {
		return d.brush
	}
	d.brush = Brush(d.Fill, d.image, d.bounds)
	d.brushBounds = d.bounds
	d.brushValid = true
	d.builds++
	return d.brush
}

// Builds counts brush constructions since creation.
func (d *Drawable) Builds() int { return d.builds }

// BorderBrush returns the stroke brush and width, or nil when there is none.
func (d *Drawable) BorderBrush() (gg.Brush, float64) {
	if d.Shape == nil || d.Shape.Border == nil || d.Border == nil {
		return nil, 0
	}
	return Brush(d.Border, nil, d.bounds), d.Shape.Border.Thickness
}

func (d *Drawable) FillPath() *gg.Path { return Path(d.Shape, d.bounds) }

func (d *Drawable) StrokePath() *gg.Path {
	if d.Shape == nil || d.Shape.Border == nil {
		return nil
	}
	return StrokePath(d.Shape, d.bounds, d.Shape.Border.Thickness)
}
