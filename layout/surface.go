package layout

import (
	"math"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/surface"
	"github.com/waozixyz/paywall/uierr"
)

// cell is one product slot: a button view with its own constraint set and
// an optional badge living in the products container.
type cell struct {
	index      int // product info index
	slot       int
	horizontal bool
	measurer   render.Measurer

	view *render.View
	cs   *ConstraintSet

	title, subtitle             *render.View
	secondTitle, secondSubtitle *render.View

	tag       *render.View
	tagHeight float64
}

func (c *cell) arrange() {
	cs := c.cs
	if c.horizontal {
		a := Downward(0)
		for _, v := range []*render.View{c.title, c.subtitle, c.secondTitle, c.secondSubtitle} {
			if v == nil {
				continue
			}
			cs.Connect(v, Left, nil, Left, 0)
			cs.Connect(v, Right, nil, Right, 0)
			cs.Constrain(v, Horizontal, Match())
			a = a.Attach(cs, v, surface.CellRowSpacing)
		}
		return
	}
	c.row(c.title, c.secondTitle, nil, nil)
	c.row(c.subtitle, c.secondSubtitle, c.title, c.secondTitle)
}

// row places a leading and a trailing text below the previous row.
func (c *cell) row(lead, trail, leadAbove, trailAbove *render.View) {
	cs := c.cs
	top := func(v, above *render.View) {
		if above == nil {
			cs.Connect(v, Top, nil, Top, 0)
			return
		}
		cs.ConnectWithGone(v, Top, above, Bottom, surface.CellRowSpacing, 0)
	}
	if trail != nil {
		top(trail, trailAbove)
		cs.Connect(trail, Right, nil, Right, 0)
	}
	if lead != nil {
		top(lead, leadAbove)
		cs.Connect(lead, Left, nil, Left, 0)
		if trail != nil {
			cs.ConnectWithGone(lead, Right, trail, Left, surface.ItemSpacing, 0)
		} else {
			cs.Connect(lead, Right, nil, Right, 0)
		}
		cs.SetBias(lead, Horizontal, 0)
	}
}

func (c *cell) measureTag() {
	if c.tag == nil || c.tag.Text == nil {
		c.tagHeight = 0
		return
	}
	c.tagHeight = c.measurer.MeasureText(c.tag.Text, 0).H + c.tag.Padding.Vertical()
}

// pin straddles the badge across the cell's top edge at its right corner.
func (c *cell) pin(cs *ConstraintSet) {
	cs.Connect(c.tag, Top, c.view, Top, -c.tagHeight/2)
	cs.Connect(c.tag, Right, c.view, Right, surface.TagInset)
}

// Surface is a built constraint layout. Product binding mutates its views
// in place; Relayout re-solves.
type Surface struct {
	root     *render.View
	cs       *ConstraintSet
	products *ConstraintSet
	opts     surface.Options
	reversed bool

	cells    []*cell // by slot
	selected int
	flow     []*render.View
	panel    *render.View
	loading  *render.View
	patches  int
	props    *surface.Props
}

func (s *Surface) Root() *render.View { return s.root }

// Props are the settle flags of the surface.
func (s *Surface) Props() *surface.Props { return s.props }

func (s *Surface) ProductSlots() int { return len(s.cells) }

// Reversed reports that slots were created bottom-up: slot 0 shows the last
// product of the block.
func (s *Surface) Reversed() bool { return s.reversed }

func (s *Surface) cell(slot int) (*cell, error) {
	if slot < 0 || slot >= len(s.cells) {
		return nil, uierr.WrongParameter("slot", "product slot %d out of range [0,%d)", slot, len(s.cells))
	}
	return s.cells[slot], nil
}

// BindProduct replaces the texts of a slot. Nil texts are left alone.
func (s *Surface) BindProduct(slot int, t surface.ProductTexts) error {
	c, err := s.cell(slot)
	if err != nil {
		return err
	}
	set := func(v *render.View, tc *render.TextContent) {
		if v != nil && tc != nil {
			v.Text = tc
		}
	}
	set(c.title, t.Title)
	set(c.subtitle, t.Subtitle)
	set(c.secondTitle, t.SecondTitle)
	set(c.secondSubtitle, t.SecondSubtitle)
	if c.tag != nil && t.Tag != nil {
		c.tag.Text = t.Tag
		c.measureTag()
		c.pin(s.products)
	}
	c.view.Hidden = false
	if c.tag != nil {
		c.tag.Hidden = false
	}
	return nil
}

// HideProductSlot hides a slot that has no product.
func (s *Surface) HideProductSlot(slot int) {
	c, err := s.cell(slot)
	if err != nil {
		logger().Warn("Surface: hide product slot", "error", err)
		return
	}
	c.view.Hidden = true
	if c.tag != nil {
		c.tag.Hidden = true
	}
}

// SelectProduct marks slot selected and clears every other slot.
func (s *Surface) SelectProduct(slot int) {
	if _, err := s.cell(slot); err != nil {
		logger().Warn("Surface: select product", "error", err)
		return
	}
	for i, c := range s.cells {
		c.view.Selected = i == slot
	}
	s.selected = slot
}

func (s *Surface) Selected() int { return s.selected }

// SetLoading shows or hides the loading shade. A hidden shade is gone
// during Solve, so showing it stretches it over the root frame directly.
func (s *Surface) SetLoading(on bool) {
	if s.loading == nil {
		return
	}
	s.loading.Hidden = !on
	if on {
		s.loading.SetFrame(s.root.Frame)
	}
}

// Relayout solves the root set. Templates with a content panel then patch
// the panel to span its content and solve once more.
func (s *Surface) Relayout() error {
	vp := s.opts.Viewport
	if err := s.cs.Solve(vp.W, vp.H, s.opts.Measurer); err != nil {
		return err
	}
	s.props.SetPaywallViewSizeConsumed()
	if s.panel == nil {
		s.props.SetContentSizeConsumed()
		return nil
	}
	s.patchPanel()
	if err := s.cs.Solve(vp.W, vp.H, s.opts.Measurer); err != nil {
		return err
	}
	s.props.SetContentSizeConsumed()
	return nil
}

func (s *Surface) patchPanel() {
	top := s.panel.Frame.Y
	bottom := top
	for _, v := range s.flow {
		if v.IsShown() {
			bottom = math.Max(bottom, v.Frame.Bottom())
		}
	}
	h := math.Max(bottom+surface.PanelBottomMargin-top, s.root.Frame.Bottom()-top)
	s.cs.Constrain(s.panel, Vertical, Fixed(h))
	s.props.ContentHeight = h
	s.patches++
	logger().Debug("Surface: content panel patched", "top", top, "height", h)
}

// PanelPatches counts panel height patches.
func (s *Surface) PanelPatches() int { return s.patches }
