// render/canvas/canvas.go

// Package canvas rasterizes a view graph in software with gogpu/gg.
package canvas

import (
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/viewconfig"
)

// Canvas owns one gg context sized to the viewport.
type Canvas struct {
	ctx   *gg.Context
	fonts *Fonts
	bg    viewconfig.Color
}

func New(width, height int, fonts *Fonts, bg viewconfig.Color) *Canvas {
	return &Canvas{ctx: gg.NewContext(width, height), fonts: fonts, bg: bg}
}

func (c *Canvas) Width() int  { return c.ctx.Width() }
func (c *Canvas) Height() int { return c.ctx.Height() }

func (c *Canvas) Image() image.Image { return c.ctx.Image() }

func (c *Canvas) EncodePNG(w io.Writer) error { return c.ctx.EncodePNG(w) }

func (c *Canvas) Close() error { return c.ctx.Close() }

// AppendPath replays p onto the context's current path.
func AppendPath(ctx *gg.Context, p *gg.Path) {
	if p == nil {
		return
	}
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			ctx.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			ctx.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			ctx.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			ctx.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			ctx.ClosePath()
		}
	}
}

// Draw clears the canvas and paints the tree rooted at root.
func (c *Canvas) Draw(root *render.View) {
	c.ctx.ClearWithColor(shape.RGBA(c.bg))
	if root != nil {
		c.drawView(root)
	}
}

func (c *Canvas) drawView(v *render.View) {
	if v.Hidden || v.Alpha <= 0 {
		return
	}
	layered := v.Alpha < 1
	if layered {
		c.ctx.PushLayer(gg.BlendNormal, v.Alpha)
	}
	if bg := v.ActiveBackground(); bg != nil {
		bg.SetBounds(v.Frame)
		c.drawDrawable(v.ID, bg)
	}
	if v.Image != nil && v.Image.Img != nil && !v.Frame.Empty() {
		p := gg.NewPath()
		p.Rectangle(v.Frame.X, v.Frame.Y, v.Frame.W, v.Frame.H)
		c.fillPath(v.ID, p, shape.ImageBrush(v.Image.Img, v.Frame))
	}
	if v.Text != nil {
		c.drawText(v)
	}
	for _, child := range v.Children {
		c.drawView(child)
	}
	if layered {
		c.ctx.PopLayer()
	}
}

func (c *Canvas) drawDrawable(id string, d *shape.Drawable) {
	if brush := d.FillBrush(); brush != nil {
		c.fillPath(id, d.FillPath(), brush)
	}
	if brush, width := d.BorderBrush(); brush != nil && width > 0 {
		AppendPath(c.ctx, d.StrokePath())
		c.ctx.SetStrokeBrush(brush)
		c.ctx.SetLineWidth(width)
		if err := c.ctx.Stroke(); err != nil {
			logger().Warn("Canvas: stroke failed", "view", id, "error", err)
		}
	}
}

func (c *Canvas) fillPath(id string, p *gg.Path, brush gg.Brush) {
	AppendPath(c.ctx, p)
	c.ctx.SetFillBrush(brush)
	if err := c.ctx.Fill(); err != nil {
		logger().Warn("Canvas: fill failed", "view", id, "error", err)
	}
}

// drawText lays the text out inside the padded frame and centers the block
// vertically.
func (c *Canvas) drawText(v *render.View) {
	inner := render.Rect{
		X: v.Frame.X + v.Padding.Left,
		Y: v.Frame.Y + v.Padding.Top,
		W: v.Frame.W - v.Padding.Horizontal(),
		H: v.Frame.H - v.Padding.Vertical(),
	}
	lines := render.LayoutText(v.Text, inner.W, c.fonts)
	total := render.Bounds(lines)
	y := inner.Y + math.Max(0, (inner.H-total.H)/2)
	for _, line := range lines {
		x0 := inner.X + render.AlignOffset(v.Text.Align, inner.W, line.W)
		baseline := y + line.Ascent
		for _, run := range line.Runs {
			switch {
			case run.Span.Image != nil:
				c.drawInlineImage(v.ID, run.Span.Image, x0+run.X, baseline-run.Span.Image.H)
			case run.Text != "":
				c.ctx.SetFont(c.fonts.Face(run.Span.Font))
				c.ctx.SetFillBrush(gg.Solid(shape.RGBA(run.Span.Color)))
				c.ctx.DrawString(run.Text, x0+run.X, baseline)
			}
		}
		y += line.H
	}
}

func (c *Canvas) drawInlineImage(id string, ii *render.InlineImage, x, y float64) {
	if ii.Img == nil || ii.W <= 0 || ii.H <= 0 {
		return
	}
	b := render.Rect{X: x, Y: y, W: ii.W, H: ii.H}
	var brush gg.Brush = shape.ImageBrush(ii.Img, b)
	if ii.Tint != nil {
		brush = tintBrush(brush, shape.RGBA(*ii.Tint))
	}
	p := gg.NewPath()
	p.Rectangle(b.X, b.Y, b.W, b.H)
	c.fillPath(id, p, brush)
}

// tintBrush keeps the source alpha and replaces its color.
func tintBrush(src gg.Brush, tint gg.RGBA) gg.Brush {
	return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
		a := src.ColorAt(x, y).A * tint.A
		return gg.RGBA{R: tint.R, G: tint.G, B: tint.B, A: a}
	}).WithName("tint")
}
