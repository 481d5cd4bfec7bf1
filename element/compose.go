package element

import (
	"math"

	"github.com/waozixyz/paywall/render"
)

// Composer measures and places an element tree.
type Composer struct {
	measurer render.Measurer
	measures int
}

func NewComposer(m render.Measurer) *Composer {
	if m == nil {
		m = render.MonospaceMeasurer{}
	}
	return &Composer{measurer: m}
}

// Measures counts Measure calls since the composer was created.
func (c *Composer) Measures() int { return c.measures }

// Compose lays e out inside rect and returns the materialized view.
func (c *Composer) Compose(e Element, rect render.Rect) *render.View {
	return e.Render(c, Slot{Rect: rect, Align: TopStart})
}

// Measure returns the outer size of e under cons. Hidden elements take no
// space.
func (c *Composer) Measure(e Element, cons Constraints) render.Size {
	b := e.Base()
	if b.Hidden {
		return render.Size{}
	}
	c.measures++
	pad := b.Padding
	inner := cons.inset(pad)
	w := b.Width.resolve(cons.MaxW,
		func() float64 { return e.content(c, inner).W + pad.Horizontal() },
		func() float64 { return e.minIntrinsicWidth(c) + pad.Horizontal() })
	iw := math.Max(0, w-pad.Horizontal())
	h := b.Height.resolve(cons.MaxH,
		func() float64 { return e.content(c, Loose(iw, inner.MaxH)).H + pad.Vertical() },
		func() float64 { return e.content(c, Loose(iw, unbounded)).H + pad.Vertical() })
	return render.Size{W: w, H: h}
}

func (c *Composer) intrinsicWidth(e Element) float64 {
	b := e.Base()
	if b.Hidden {
		return 0
	}
	if b.Width.Kind == DimSpecified {
		return b.Width.Value
	}
	return math.Max(e.minIntrinsicWidth(c)+b.Padding.Horizontal(), b.Width.Value)
}

func (c *Composer) align(e Element, s Slot) Alignment {
	if a := e.Base().Align; a != nil {
		return *a
	}
	return s.Align
}

func (c *Composer) standalone(e Element, s Slot) *render.View {
	sz := c.Measure(e, Loose(s.Rect.W, s.Rect.H))
	a := c.align(e, s)
	return c.place(e, render.Rect{
		X: s.Rect.X + a.H.offset(s.Rect.W-sz.W),
		Y: s.Rect.Y + a.V.offset(s.Rect.H-sz.H),
		W: sz.W,
		H: sz.H,
	})
}

// inColumn keeps the height the column allotted and aligns horizontally.
func (c *Composer) inColumn(e Element, s Slot) *render.View {
	sz := c.Measure(e, Loose(s.Rect.W, s.Rect.H))
	a := c.align(e, s)
	return c.place(e, render.Rect{
		X: s.Rect.X + a.H.offset(s.Rect.W-sz.W),
		Y: s.Rect.Y,
		W: sz.W,
		H: s.Rect.H,
	})
}

func (c *Composer) inRow(e Element, s Slot) *render.View {
	sz := c.Measure(e, Loose(s.Rect.W, s.Rect.H))
	a := c.align(e, s)
	return c.place(e, render.Rect{
		X: s.Rect.X,
		Y: s.Rect.Y + a.V.offset(s.Rect.H-sz.H),
		W: s.Rect.W,
		H: sz.H,
	})
}

// place materializes e at r shifted by its offset, then lets the element
// build its content inside the padded frame.
func (c *Composer) place(e Element, r render.Rect) *render.View {
	b := e.Base()
	r.X += b.Offset.X
	r.Y += b.Offset.Y
	v := render.NewView(b.ID, e.kind())
	v.Padding = b.Padding
	v.Background = b.Shape
	v.SelectedBackground = b.SelectedShape
	v.Selected = b.Selected
	v.Hidden = b.Hidden
	v.OnClick = b.OnClick
	v.Transitions = b.Transitions
	if b.Hidden {
		r.W, r.H = 0, 0
	}
	v.SetFrame(r)
	inner := render.Rect{
		X: r.X + b.Padding.Left,
		Y: r.Y + b.Padding.Top,
		W: math.Max(0, r.W-b.Padding.Horizontal()),
		H: math.Max(0, r.H-b.Padding.Vertical()),
	}
	e.build(c, inner, v)
	return v
}

// stack sizes the children of a Column (vertical) or Row along the main
// axis. Weighted children share what the others leave when the main axis
// is bounded; otherwise they wrap like everyone else.
func (c *Composer) stack(children []Element, vertical bool, spacing float64, cons Constraints, scroll bool) ([]render.Size, float64) {
	main, cross := cons.MaxH, cons.MaxW
	if !vertical {
		main, cross = cons.MaxW, cons.MaxH
	}
	if scroll {
		main = unbounded
	}
	sizes := make([]render.Size, len(children))
	n := visible(children)
	gaps := 0.0
	if n > 1 {
		gaps = spacing * float64(n-1)
	}
	measure := func(e Element, m float64) render.Size {
		if vertical {
			return c.Measure(e, Loose(cross, m))
		}
		return c.Measure(e, Loose(m, cross))
	}
	mainOf := func(s render.Size) float64 {
		if vertical {
			return s.H
		}
		return s.W
	}

	used, weights := 0.0, 0.0
	for i, ch := range children {
		b := ch.Base()
		if b.Hidden {
			continue
		}
		if b.Weight > 0 && finite(main) {
			weights += b.Weight
			continue
		}
		remaining := main
		if finite(main) {
			remaining = math.Max(0, main-used-gaps)
		}
		sizes[i] = measure(ch, remaining)
		used += mainOf(sizes[i])
	}
	if weights > 0 {
		free := math.Max(0, main-used-gaps)
		for i, ch := range children {
			b := ch.Base()
			if b.Hidden || b.Weight <= 0 {
				continue
			}
			share := free * b.Weight / weights
			sz := measure(ch, share)
			if vertical {
				sz.H = share
			} else {
				sz.W = share
			}
			sizes[i] = sz
			used += share
		}
	}
	return sizes, used + gaps
}

func visible(children []Element) int {
	n := 0
	for _, ch := range children {
		if !ch.Base().Hidden {
			n++
		}
	}
	return n
}

// arrange returns the starting position and the extra gap between
// children for the free main-axis space.
func arrange(a Arrangement, start, free float64, n int) (float64, float64) {
	if free <= 0 || n == 0 {
		return start, 0
	}
	switch a {
	case ArrangeCenter:
		return start + free/2, 0
	case ArrangeEnd:
		return start + free, 0
	case ArrangeSpaceEvenly:
		gap := free / float64(n+1)
		return start + gap, gap
	}
	return start, 0
}
