// Package surface holds what both layout backends share with the screen
// controller: build options, interaction hooks, bound product texts, the
// settle flags and the stable view ids and metrics of the templates.
package surface

import (
	"fmt"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/viewconfig"
)

// Hooks receive user interactions. Any of them may be nil.
type Hooks struct {
	OnProductTap func(slot int)
	OnPurchase   func()
	OnAction     func(a viewconfig.Action)
}

func (h Hooks) productTap(slot int) {
	if h.OnProductTap != nil {
		h.OnProductTap(slot)
	}
}

// ProductTap returns a click handler for a product slot.
func (h Hooks) ProductTap(slot int) func() { return func() { h.productTap(slot) } }

// DefaultCloseLabel labels the close button of a style that declares none.
func DefaultCloseLabel() *render.TextContent {
	return &render.TextContent{Spans: []render.Span{{
		Text:  "×",
		Font:  render.FontSpec{Size: CloseGlyphSize},
		Color: CloseGlyphColor,
	}}}
}

// DefaultCloseAction is the action behind DefaultCloseLabel.
func DefaultCloseAction() *viewconfig.Action {
	return &viewconfig.Action{Type: viewconfig.ActionClose}
}

// ButtonTap maps a button action onto the hooks. Purchase actions go to
// OnPurchase, everything else to OnAction.
func (h Hooks) ButtonTap(a *viewconfig.Action) func() {
	return func() {
		if a == nil {
			return
		}
		if a.Type == viewconfig.ActionPurchase {
			if h.OnPurchase != nil {
				h.OnPurchase()
			}
			return
		}
		if h.OnAction != nil {
			h.OnAction(*a)
		}
	}
}

// Options configure one build.
type Options struct {
	Viewport render.Size
	Insets   render.Insets // safe area
	Measurer render.Measurer
	Hooks    Hooks

	// OnSettled runs once both settle flags of the surface are set.
	OnSettled func()
}

// Validate fills defaults and rejects unusable viewports.
func (o *Options) Validate() error {
	if o.Viewport.W <= 0 || o.Viewport.H <= 0 {
		return fmt.Errorf("surface: viewport %vx%v must be positive", o.Viewport.W, o.Viewport.H)
	}
	if o.Measurer == nil {
		o.Measurer = render.MonospaceMeasurer{}
	}
	return nil
}

// ProductTexts are the resolved texts of one bound product cell. Nil fields
// leave the cell's current text in place.
type ProductTexts struct {
	Title          *render.TextContent
	Subtitle       *render.TextContent
	SecondTitle    *render.TextContent
	SecondSubtitle *render.TextContent
	Tag            *render.TextContent
}

// Props tracks the two independent settle flags of a presentation. The
// finalize callback runs once, when both have been set.
type Props struct {
	contentSized  bool
	viewSized     bool
	finalized     bool
	ContentHeight float64 // pinned content height, 0 when unpinned

	onFinalize func()
}

func NewProps(onFinalize func()) *Props { return &Props{onFinalize: onFinalize} }

func (p *Props) ContentSizeConsumed() bool     { return p.contentSized }
func (p *Props) PaywallViewSizeConsumed() bool { return p.viewSized }
func (p *Props) Finalized() bool               { return p.finalized }

func (p *Props) SetContentSizeConsumed() {
	p.contentSized = true
	p.maybeFinalize()
}

func (p *Props) SetPaywallViewSizeConsumed() {
	p.viewSized = true
	p.maybeFinalize()
}

// Reset clears every flag for a new configuration.
func (p *Props) Reset() {
	cb := p.onFinalize
	*p = Props{onFinalize: cb}
}

func (p *Props) maybeFinalize() {
	if p.finalized || !p.contentSized || !p.viewSized {
		return
	}
	p.finalized = true
	if p.onFinalize != nil {
		p.onFinalize()
	}
}
