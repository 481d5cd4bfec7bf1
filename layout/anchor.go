package layout

import "github.com/waozixyz/paywall/render"

// ViewAnchor says where the next view's edge attaches: OppositeSide of the
// next view connects to Side of View (nil is the container) with Margin.
type ViewAnchor struct {
	View         *render.View
	Side         Side
	OppositeSide Side
	Margin       float64
}

// Downward starts a flow growing down from the container top.
func Downward(margin float64) ViewAnchor {
	return ViewAnchor{Side: Top, OppositeSide: Top, Margin: margin}
}

// Upward starts a flow growing up from the container bottom.
func Upward(margin float64) ViewAnchor {
	return ViewAnchor{Side: Bottom, OppositeSide: Bottom, Margin: margin}
}

// Below starts a downward flow under the top edge of v.
func Below(v *render.View, side Side, margin float64) ViewAnchor {
	return ViewAnchor{View: v, Side: side, OppositeSide: Top, Margin: margin}
}

func (a ViewAnchor) WithMargin(m float64) ViewAnchor {
	a.Margin = m
	return a
}

// Attach connects v to the anchor in cs and returns the anchor following v.
func (a ViewAnchor) Attach(cs *ConstraintSet, v *render.View, next float64) ViewAnchor {
	cs.Connect(v, a.OppositeSide, a.View, a.Side, a.Margin)
	return ViewAnchor{View: v, Side: a.OppositeSide.Opposite(), OppositeSide: a.OppositeSide, Margin: next}
}
