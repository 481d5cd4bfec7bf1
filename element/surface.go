package element

import (
	"math"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/resolve"
	"github.com/waozixyz/paywall/surface"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

// Surface is a declarative paywall. Every state change recomposes the tree
// under a root view that stays the same for the surface's lifetime.
type Surface struct {
	model    *model
	opts     surface.Options
	state    *State
	composer *Composer
	root     *render.View
	props    *surface.Props

	renders     int
	unsubscribe func()
}

// Build resolves the default style of cfg and composes it once.
func Build(cfg *viewconfig.ViewConfiguration, res *resolve.Resolver, opts surface.Options) (*Surface, error) {
	if err := opts.Validate(); err != nil {
		return nil, uierr.WrongParameter("viewport", "%v", err)
	}
	m, err := newModel(cfg, res, opts.Hooks)
	if err != nil {
		return nil, err
	}
	s := &Surface{
		model:    m,
		opts:     opts,
		state:    NewState(),
		composer: NewComposer(opts.Measurer),
		root:     render.NewView(surface.IDRoot, render.KindBox),
		props:    surface.NewProps(opts.OnSettled),
	}
	s.unsubscribe = s.state.Subscribe(func([]string) { s.recompose() })
	if err := s.Relayout(); err != nil {
		return nil, err
	}
	logger().Debug("Surface: composed", "template", cfg.TemplateID.String(), "slots", s.ProductSlots())
	return s, nil
}

func (s *Surface) frame() *frame {
	return &frame{
		vp:     s.opts.Viewport,
		insets: s.opts.Insets,
		hooks:  s.opts.Hooks,
		state:  s.state,
		page:   s.opts.Viewport.H,
		c:      s.composer,
	}
}

// reconcile settles the page height once: content that does not fit next
// to the floating footer and the safe area pins the page to its own height.
func (s *Surface) reconcile(f *frame) {
	if s.props.ContentSizeConsumed() {
		return
	}
	vp := s.opts.Viewport
	contentH := s.composer.Measure(s.model.content(f), Loose(vp.W, unbounded)).H
	deficit := s.model.footerReserve(f) + s.opts.Insets.Vertical()
	if contentH+deficit > vp.H {
		s.props.ContentHeight = math.Max(vp.H, contentH+deficit)
	}
	logger().Debug("Surface: content reconciled", "content", contentH, "deficit", deficit, "pinned", s.props.ContentHeight)
	s.props.SetContentSizeConsumed()
}

func (s *Surface) recompose() {
	f := s.frame()
	s.reconcile(f)
	if s.props.ContentHeight > 0 {
		f.page = s.props.ContentHeight
	}
	vp := s.opts.Viewport
	v := s.composer.Compose(s.model.tree(f), render.Rect{W: vp.W, H: vp.H})
	s.root.Children = nil
	s.root.Add(v.Children...)
	s.root.SetFrame(v.Frame)
	s.renders++
	s.props.SetPaywallViewSizeConsumed()
}

// Relayout recomposes from the current state. Composition cannot fail
// once the model is resolved.
func (s *Surface) Relayout() error {
	s.recompose()
	return nil
}

func (s *Surface) Root() *render.View { return s.root }

func (s *Surface) Props() *surface.Props { return s.props }

func (s *Surface) State() *State { return s.state }

// Renders counts compositions.
func (s *Surface) Renders() int { return s.renders }

func (s *Surface) ProductSlots() int {
	if s.model.products == nil {
		return 0
	}
	return len(s.model.products.cells)
}

// Reversed is always false: slots follow product order.
func (s *Surface) Reversed() bool { return false }

func (s *Surface) checkSlot(slot int) error {
	if n := s.ProductSlots(); slot < 0 || slot >= n {
		return uierr.WrongParameter("slot", "product slot %d out of range [0,%d)", slot, n)
	}
	return nil
}

// BindProduct merges t into the slot's texts and shows the slot.
func (s *Surface) BindProduct(slot int, t surface.ProductTexts) error {
	if err := s.checkSlot(slot); err != nil {
		return err
	}
	merged := s.state.Texts(productKey(slot))
	if t.Title != nil {
		merged.Title = t.Title
	}
	if t.Subtitle != nil {
		merged.Subtitle = t.Subtitle
	}
	if t.SecondTitle != nil {
		merged.SecondTitle = t.SecondTitle
	}
	if t.SecondSubtitle != nil {
		merged.SecondSubtitle = t.SecondSubtitle
	}
	if t.Tag != nil {
		merged.Tag = t.Tag
	}
	s.state.Batch(func() {
		s.state.Set(productKey(slot), merged)
		s.state.Set(hiddenKey(slot), false)
	})
	return nil
}

func (s *Surface) HideProductSlot(slot int) {
	if err := s.checkSlot(slot); err != nil {
		logger().Warn("Surface: hide product slot", "error", err)
		return
	}
	s.state.Set(hiddenKey(slot), true)
}

func (s *Surface) SelectProduct(slot int) {
	if err := s.checkSlot(slot); err != nil {
		logger().Warn("Surface: select product", "error", err)
		return
	}
	s.state.Set(keySelected, slot)
}

// Selected is the selected slot, or -1.
func (s *Surface) Selected() int { return s.state.Int(keySelected, -1) }

func (s *Surface) SetLoading(on bool) {
	if s.state.Bool(keyLoading) == on {
		return
	}
	s.state.Set(keyLoading, on)
}

// Close stops recomposing on state changes.
func (s *Surface) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
