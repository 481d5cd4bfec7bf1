// Package element is the declarative backend: a closed tree of elements
// composed into the view graph from reactive state.
package element

import (
	"math"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/viewconfig"
)

// BaseProps are shared by every element.
type BaseProps struct {
	ID            string
	Width, Height DimSpec
	Weight        float64 // share of a Column or Row main axis
	Padding       render.Insets
	Offset        Offset
	Align         *Alignment // overrides the parent's alignment
	Shape         *shape.Drawable
	SelectedShape *shape.Drawable
	Selected      bool
	Hidden        bool
	OnClick       func()
	Transitions   []viewconfig.Transition
}

func (b *BaseProps) Base() *BaseProps { return b }

// Slot is the area a parent hands a child.
type Slot struct {
	Rect  render.Rect
	Align Alignment
}

// Element is one of Box, Text, Image, Column, Row, Spacer or Button. The
// parent picks the entry point: Render inside a Box or at the root,
// RenderInColumn and RenderInRow inside the matching stack, where the slot
// already carries the child's main-axis size.
type Element interface {
	Base() *BaseProps
	Render(c *Composer, s Slot) *render.View
	RenderInColumn(c *Composer, s Slot) *render.View
	RenderInRow(c *Composer, s Slot) *render.View

	kind() render.Kind
	content(c *Composer, inner Constraints) render.Size
	minIntrinsicWidth(c *Composer) float64
	build(c *Composer, inner render.Rect, v *render.View)
}

// Box stacks its children on top of each other.
type Box struct {
	BaseProps
	Children     []Element
	// ContentAlign places children that carry no Align of their own.
	ContentAlign Alignment
}

func (e *Box) Render(c *Composer, s Slot) *render.View         { return c.standalone(e, s) }
func (e *Box) RenderInColumn(c *Composer, s Slot) *render.View { return c.inColumn(e, s) }
func (e *Box) RenderInRow(c *Composer, s Slot) *render.View    { return c.inRow(e, s) }
func (e *Box) kind() render.Kind                               { return render.KindBox }

func (e *Box) content(c *Composer, inner Constraints) render.Size {
	var out render.Size
	for _, ch := range e.Children {
		sz := c.Measure(ch, inner)
		out.W = math.Max(out.W, sz.W)
		out.H = math.Max(out.H, sz.H)
	}
	return out
}

func (e *Box) minIntrinsicWidth(c *Composer) float64 {
	var w float64
	for _, ch := range e.Children {
		w = math.Max(w, c.intrinsicWidth(ch))
	}
	return w
}

func (e *Box) build(c *Composer, inner render.Rect, v *render.View) {
	for _, ch := range e.Children {
		v.Add(ch.Render(c, Slot{Rect: inner, Align: e.ContentAlign}))
	}
}

type Text struct {
	BaseProps
	Content *render.TextContent
}

func (e *Text) Render(c *Composer, s Slot) *render.View         { return c.standalone(e, s) }
func (e *Text) RenderInColumn(c *Composer, s Slot) *render.View { return c.inColumn(e, s) }
func (e *Text) RenderInRow(c *Composer, s Slot) *render.View    { return c.inRow(e, s) }
func (e *Text) kind() render.Kind                               { return render.KindText }

func (e *Text) content(c *Composer, inner Constraints) render.Size {
	if e.Content == nil {
		return render.Size{}
	}
	max := inner.MaxW
	if !finite(max) {
		max = 0
	}
	return c.measurer.MeasureText(e.Content, max)
}

// minIntrinsicWidth is the widest unbreakable word.
func (e *Text) minIntrinsicWidth(c *Composer) float64 {
	if e.Content == nil {
		return 0
	}
	return c.measurer.MeasureText(e.Content, 1).W
}

func (e *Text) build(_ *Composer, _ render.Rect, v *render.View) { v.Text = e.Content }

type Image struct {
	BaseProps
	Content *render.ImageContent
}

func (e *Image) Render(c *Composer, s Slot) *render.View         { return c.standalone(e, s) }
func (e *Image) RenderInColumn(c *Composer, s Slot) *render.View { return c.inColumn(e, s) }
func (e *Image) RenderInRow(c *Composer, s Slot) *render.View    { return c.inRow(e, s) }
func (e *Image) kind() render.Kind                               { return render.KindImage }

// content keeps the decoded image's aspect ratio, shrinking to fit.
func (e *Image) content(_ *Composer, inner Constraints) render.Size {
	if e.Content == nil || e.Content.Img == nil {
		return render.Size{}
	}
	b := e.Content.Img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 {
		return render.Size{}
	}
	w := iw
	if finite(inner.MaxW) && w > inner.MaxW {
		w = math.Max(0, inner.MaxW)
	}
	return render.Size{W: w, H: ih * w / iw}
}

func (e *Image) minIntrinsicWidth(c *Composer) float64 {
	return e.content(c, Loose(unbounded, unbounded)).W
}

func (e *Image) build(_ *Composer, _ render.Rect, v *render.View) { v.Image = e.Content }

// Column stacks children vertically.
type Column struct {
	BaseProps
	Children []Element
	Spacing  float64
	Arrange  Arrangement
	HAlign   Align
	Scroll   bool // children measure with unbounded height
}

func (e *Column) Render(c *Composer, s Slot) *render.View         { return c.standalone(e, s) }
func (e *Column) RenderInColumn(c *Composer, s Slot) *render.View { return c.inColumn(e, s) }
func (e *Column) RenderInRow(c *Composer, s Slot) *render.View    { return c.inRow(e, s) }
func (e *Column) kind() render.Kind                               { return render.KindBox }

func (e *Column) content(c *Composer, inner Constraints) render.Size {
	sizes, total := c.stack(e.Children, true, e.Spacing, inner, e.Scroll)
	var w float64
	for _, sz := range sizes {
		w = math.Max(w, sz.W)
	}
	return render.Size{W: w, H: total}
}

func (e *Column) minIntrinsicWidth(c *Composer) float64 {
	var w float64
	for _, ch := range e.Children {
		w = math.Max(w, c.intrinsicWidth(ch))
	}
	return w
}

func (e *Column) build(c *Composer, inner render.Rect, v *render.View) {
	sizes, total := c.stack(e.Children, true, e.Spacing, Loose(inner.W, inner.H), e.Scroll)
	y, gap := arrange(e.Arrange, inner.Y, inner.H-total, visible(e.Children))
	for i, ch := range e.Children {
		slot := Slot{Rect: render.Rect{X: inner.X, Y: y, W: inner.W, H: sizes[i].H}, Align: Alignment{H: e.HAlign}}
		v.Add(ch.RenderInColumn(c, slot))
		if !ch.Base().Hidden {
			y += sizes[i].H + e.Spacing + gap
		}
	}
}

// Row stacks children horizontally. An Intrinsic row is as tall as its
// tallest wrapped child, and children that fill the height stretch to it.
type Row struct {
	BaseProps
	Children  []Element
	Spacing   float64
	Arrange   Arrangement
	VAlign    Align
	Intrinsic bool
}

func (e *Row) Render(c *Composer, s Slot) *render.View         { return c.standalone(e, s) }
func (e *Row) RenderInColumn(c *Composer, s Slot) *render.View { return c.inColumn(e, s) }
func (e *Row) RenderInRow(c *Composer, s Slot) *render.View    { return c.inRow(e, s) }
func (e *Row) kind() render.Kind                               { return render.KindBox }

func (e *Row) content(c *Composer, inner Constraints) render.Size {
	if e.Intrinsic {
		inner.MaxH = unbounded
	}
	sizes, total := c.stack(e.Children, false, e.Spacing, inner, false)
	var h float64
	for _, sz := range sizes {
		h = math.Max(h, sz.H)
	}
	return render.Size{W: total, H: h}
}

func (e *Row) minIntrinsicWidth(c *Composer) float64 {
	var w float64
	n := 0
	for _, ch := range e.Children {
		if ch.Base().Hidden {
			continue
		}
		w += c.intrinsicWidth(ch)
		n++
	}
	if n > 1 {
		w += e.Spacing * float64(n-1)
	}
	return w
}

func (e *Row) build(c *Composer, inner render.Rect, v *render.View) {
	sizes, total := c.stack(e.Children, false, e.Spacing, Loose(inner.W, inner.H), false)
	x, gap := arrange(e.Arrange, inner.X, inner.W-total, visible(e.Children))
	for i, ch := range e.Children {
		slot := Slot{Rect: render.Rect{X: x, Y: inner.Y, W: sizes[i].W, H: inner.H}, Align: Alignment{V: e.VAlign}}
		v.Add(ch.RenderInRow(c, slot))
		if !ch.Base().Hidden {
			x += sizes[i].W + e.Spacing + gap
		}
	}
}

// Spacer takes space without drawing. With a weight it absorbs the free
// space of its stack.
type Spacer struct {
	BaseProps
}

func (e *Spacer) Render(c *Composer, s Slot) *render.View         { return c.standalone(e, s) }
func (e *Spacer) RenderInColumn(c *Composer, s Slot) *render.View { return c.inColumn(e, s) }
func (e *Spacer) RenderInRow(c *Composer, s Slot) *render.View    { return c.inRow(e, s) }
func (e *Spacer) kind() render.Kind                               { return render.KindSpacer }

func (e *Spacer) content(*Composer, Constraints) render.Size { return render.Size{} }
func (e *Spacer) minIntrinsicWidth(*Composer) float64        { return 0 }
func (e *Spacer) build(*Composer, render.Rect, *render.View) {}

// Button is clickable. It shows either a text label or a single child.
type Button struct {
	BaseProps
	Label   *render.TextContent
	Content Element
}

func (e *Button) Render(c *Composer, s Slot) *render.View         { return c.standalone(e, s) }
func (e *Button) RenderInColumn(c *Composer, s Slot) *render.View { return c.inColumn(e, s) }
func (e *Button) RenderInRow(c *Composer, s Slot) *render.View    { return c.inRow(e, s) }
func (e *Button) kind() render.Kind                               { return render.KindButton }

func (e *Button) content(c *Composer, inner Constraints) render.Size {
	switch {
	case e.Content != nil:
		return c.Measure(e.Content, inner)
	case e.Label != nil:
		max := inner.MaxW
		if !finite(max) {
			max = 0
		}
		return c.measurer.MeasureText(e.Label, max)
	}
	return render.Size{}
}

func (e *Button) minIntrinsicWidth(c *Composer) float64 {
	switch {
	case e.Content != nil:
		return c.intrinsicWidth(e.Content)
	case e.Label != nil:
		return c.measurer.MeasureText(e.Label, 1).W
	}
	return 0
}

func (e *Button) build(c *Composer, inner render.Rect, v *render.View) {
	v.Text = e.Label
	if e.Content != nil {
		v.Add(e.Content.Render(c, Slot{Rect: inner, Align: TopStart}))
	}
}

var (
	_ Element = (*Box)(nil)
	_ Element = (*Text)(nil)
	_ Element = (*Image)(nil)
	_ Element = (*Column)(nil)
	_ Element = (*Row)(nil)
	_ Element = (*Spacer)(nil)
	_ Element = (*Button)(nil)
)
