package layout

import (
	"fmt"
	"math"
	"slices"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/resolve"
	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/surface"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

// Builder owns the state of one build: the root constraint set and the flow
// cursor threaded through every step.
type Builder struct {
	cfg   *viewconfig.ViewConfiguration
	res   *resolve.Resolver
	opts  surface.Options
	style *viewconfig.Style

	root   *render.View
	cs     *ConstraintSet
	anchor ViewAnchor
	out    *Surface
}

// Build is a convenience for a fresh Builder.
func Build(cfg *viewconfig.ViewConfiguration, res *resolve.Resolver, opts surface.Options) (*Surface, error) {
	var b Builder
	return b.Build(cfg, res, opts)
}

// Build lays out the default style of cfg with the template selected by its
// template id and solves it once.
func (b *Builder) Build(cfg *viewconfig.ViewConfiguration, res *resolve.Resolver, opts surface.Options) (*Surface, error) {
	if err := opts.Validate(); err != nil {
		return nil, uierr.WrongParameter("viewport", "%v", err)
	}
	style := cfg.DefaultStyle()
	if style == nil {
		return nil, uierr.DecodingFailed("styles", "missing %q style", viewconfig.DefaultStyle)
	}
	*b = Builder{cfg: cfg, res: res, opts: opts, style: style}
	b.root = render.NewView(surface.IDRoot, render.KindBox)
	b.root.SetFrame(render.Rect{W: opts.Viewport.W, H: opts.Viewport.H})
	b.cs = NewConstraintSet(b.root)
	b.out = &Surface{
		root:     b.root,
		cs:       b.cs,
		opts:     opts,
		reversed: cfg.TemplateID.ReversedFlow(),
		selected: -1,
		props:    surface.NewProps(opts.OnSettled),
	}

	var err error
	switch cfg.TemplateID {
	case viewconfig.TemplateBasic:
		err = b.basic()
	case viewconfig.TemplateFlat:
		err = b.flat()
	case viewconfig.TemplateTransparent:
		err = b.transparent()
	default:
		err = uierr.UnsupportedData("template_id", cfg.TemplateID.String())
	}
	if err != nil {
		return nil, err
	}
	if err := b.overlays(); err != nil {
		return nil, err
	}
	if err := b.out.Relayout(); err != nil {
		return nil, err
	}
	logger().Debug("Builder: layout built", "template", cfg.TemplateID.String(), "slots", len(b.out.cells))
	return b.out, nil
}

func (b *Builder) add(v *render.View) *render.View {
	b.root.Add(v)
	return v
}

// step places v in the flow with side margins and advances the cursor.
func (b *Builder) step(v *render.View, next float64) {
	b.add(v)
	b.cs.Connect(v, Left, nil, Left, surface.SideMargin)
	b.cs.Connect(v, Right, nil, Right, surface.SideMargin)
	b.cs.Constrain(v, Horizontal, Match())
	b.cs.Constrain(v, Vertical, Wrap())
	b.anchor = b.anchor.Attach(b.cs, v, next)
	b.out.flow = append(b.out.flow, v)
}

func (b *Builder) fill(v *render.View) {
	b.add(v)
	for _, s := range []Side{Left, Top, Right, Bottom} {
		b.cs.Connect(v, s, nil, s, 0)
	}
	b.cs.Constrain(v, Horizontal, Match())
	b.cs.Constrain(v, Vertical, Match())
}

// --- templates ---

func (b *Builder) basic() error {
	if err := b.background(); err != nil {
		return err
	}
	cover, err := b.cover()
	if err != nil {
		return err
	}
	b.cs.Connect(cover, Top, nil, Top, 0)

	panelShape := b.style.Shape(viewconfig.CompMainContentShape)
	panel := render.NewView(surface.IDPanel, render.KindBox)
	if panel.Background, err = b.res.Drawable(panelShape); err != nil {
		return err
	}
	var arc float64
	if panelShape != nil {
		arc = math.Abs(panelShape.ArcHeight)
	}
	b.add(panel)
	b.cs.Connect(panel, Left, nil, Left, 0)
	b.cs.Connect(panel, Right, nil, Right, 0)
	b.cs.Connect(panel, Top, cover, Bottom, -arc)
	b.cs.Constrain(panel, Horizontal, Match())
	b.cs.Constrain(panel, Vertical, Fixed(0))
	b.out.panel = panel

	b.anchor = Below(panel, Top, arc+surface.PanelTopPadding)
	return b.content()
}

func (b *Builder) flat() error {
	if err := b.background(); err != nil {
		return err
	}
	cover, err := b.cover()
	if err != nil {
		return err
	}
	// the cover leads the flow and bleeds to the edges
	b.anchor = Downward(0).Attach(b.cs, cover, surface.ItemSpacing)
	b.out.flow = append(b.out.flow, cover)
	return b.content()
}

func (b *Builder) transparent() error {
	if err := b.background(); err != nil {
		return err
	}
	if id := b.style.Image(surface.CompBackgroundShade); id != "" {
		shade := render.NewView(surface.IDBackgroundShade, render.KindBox)
		d, err := b.res.FillDrawable(id)
		if err != nil {
			return err
		}
		shade.Background = d
		b.fill(shade)
	}
	b.anchor = Upward(b.opts.Insets.Bottom + surface.SideMargin)
	steps := []func() error{b.footer, b.purchase, b.products, b.features, b.timer, b.title}
	for _, s := range steps {
		if err := s(); err != nil {
			return err
		}
	}
	return nil
}

// content is the downward flow of BASIC and FLAT.
func (b *Builder) content() error {
	steps := []func() error{b.title, b.timer, b.features, b.products, b.purchase, b.footer}
	for _, s := range steps {
		if err := s(); err != nil {
			return err
		}
	}
	return nil
}

// --- blocks ---

func (b *Builder) background() error {
	id := b.style.Image(viewconfig.CompBackground)
	if id == "" {
		return nil
	}
	v := render.NewView(surface.IDBackground, render.KindBox)
	d, err := b.res.FillDrawable(id)
	if err != nil {
		return err
	}
	v.Background = d
	b.fill(v)
	return nil
}

func (b *Builder) cover() (*render.View, error) {
	v := render.NewView(surface.IDCover, render.KindImage)
	if id := b.style.Image(viewconfig.CompCoverImage); id != "" {
		img, err := b.res.Image(id)
		if err != nil {
			return nil, err
		}
		v.Image = &render.ImageContent{AssetID: id, Asset: img}
	}
	b.add(v)
	b.cs.Connect(v, Left, nil, Left, 0)
	b.cs.Connect(v, Right, nil, Right, 0)
	b.cs.Constrain(v, Horizontal, Match())
	b.cs.Constrain(v, Vertical, Percent(b.cfg.MainImageRelativeHeight))
	return v, nil
}

func (b *Builder) text(id string, t *viewconfig.Text) (*render.View, error) {
	content, err := b.res.Text(t, nil)
	if err != nil {
		return nil, err
	}
	v := render.NewView(id, render.KindText)
	v.Text = content
	return v, nil
}

func (b *Builder) title() error {
	t := b.style.Text(viewconfig.CompTitleRows)
	if t == nil {
		return nil
	}
	v, err := b.text(surface.IDTitle, t)
	if err != nil {
		return err
	}
	b.step(v, surface.ItemSpacing)
	return nil
}

func (b *Builder) timer() error {
	t := b.style.Text(surface.CompTimerText)
	if t == nil {
		return nil
	}
	v, err := b.text(surface.IDTimer, t)
	if err != nil {
		return err
	}
	b.step(v, surface.ItemSpacing)
	return nil
}

func (b *Builder) features() error {
	fb := b.style.FeatureBlock
	if fb == nil {
		return nil
	}
	box := render.NewView(surface.IDFeatures, render.KindBox)
	inner := NewConstraintSet(box)
	a := Downward(0)
	switch fb.Type {
	case viewconfig.FeaturesList:
		for i, t := range fb.List {
			v, err := b.text(surface.FeatureID(i), t)
			if err != nil {
				return err
			}
			box.Add(v)
			inner.Connect(v, Left, nil, Left, 0)
			inner.Connect(v, Right, nil, Right, 0)
			inner.Constrain(v, Horizontal, Match())
			a = a.Attach(inner, v, surface.CellRowSpacing*2)
		}
	case viewconfig.FeaturesTimeline:
		for i, e := range fb.Timeline {
			row, err := b.timelineRow(i, e, i == len(fb.Timeline)-1)
			if err != nil {
				return err
			}
			box.Add(row.view)
			inner.Connect(row.view, Left, nil, Left, 0)
			inner.Connect(row.view, Right, nil, Right, 0)
			inner.Constrain(row.view, Horizontal, Match())
			inner.Nest(row.view, row.cs)
			a = a.Attach(inner, row.view, 0)
		}
	default:
		return uierr.UnsupportedData("features_block.type", fmt.Sprint(fb.Type))
	}
	b.cs.Nest(box, inner)
	b.step(box, surface.ItemSpacing)
	return nil
}

type nested struct {
	view *render.View
	cs   *ConstraintSet
}

func (b *Builder) timelineRow(i int, e viewconfig.TimelineEntry, last bool) (nested, error) {
	id := surface.TimelineID(i)
	row := render.NewView(id, render.KindBox)
	cs := NewConstraintSet(row)

	icon := render.NewView(id+"_icon", render.KindImage)
	var err error
	if icon.Background, err = b.res.Drawable(e.Shape); err != nil {
		return nested{}, err
	}
	if e.Image != "" {
		img, err := b.res.Image(e.Image)
		if err != nil {
			return nested{}, err
		}
		icon.Image = &render.ImageContent{AssetID: e.Image, Asset: img}
	}
	row.Add(icon)
	cs.Constrain(icon, Horizontal, Fixed(surface.TimelineIconSize))
	cs.Constrain(icon, Vertical, Fixed(surface.TimelineIconSize))
	cs.Connect(icon, Left, nil, Left, 0)
	cs.Connect(icon, Top, nil, Top, 0)

	text, err := b.text(id+"_text", e.Text)
	if err != nil {
		return nested{}, err
	}
	text.Padding = render.Insets{Bottom: surface.ItemSpacing}
	row.Add(text)
	cs.Connect(text, Left, icon, Right, surface.ItemSpacing)
	cs.Connect(text, Right, nil, Right, 0)
	cs.Connect(text, Top, nil, Top, 0)
	cs.Constrain(text, Horizontal, Match())

	line := render.NewView(id+"_connector", render.KindBox)
	line.Hidden = last
	if e.Connector != "" {
		if line.Background, err = b.res.FillDrawable(e.Connector); err != nil {
			return nested{}, err
		}
	}
	row.Add(line)
	cs.Constrain(line, Horizontal, Fixed(surface.TimelineConnector))
	cs.Constrain(line, Vertical, Match())
	cs.Connect(line, Left, icon, Left, 0)
	cs.Connect(line, Right, icon, Right, 0)
	cs.Connect(line, Top, icon, Bottom, 0)
	cs.Connect(line, Bottom, nil, Bottom, 0)
	return nested{view: row, cs: cs}, nil
}

// button builds a button view. Leading and trailing alignment moves the
// title inside the button.
func (b *Builder) button(id string, btn *viewconfig.Button) (*render.View, error) {
	v := render.NewView(id, render.KindButton)
	var err error
	if v.Text, err = b.res.Text(btn.Title, nil); err != nil {
		return nil, err
	}
	if v.Text != nil {
		switch btn.Align {
		case viewconfig.ButtonLeading:
			v.Text.Align = viewconfig.AlignLeft
		case viewconfig.ButtonTrailing:
			v.Text.Align = viewconfig.AlignRight
		}
	}
	if v.Background, err = b.res.Drawable(btn.Shape); err != nil {
		return nil, err
	}
	if v.SelectedBackground, err = b.res.Drawable(btn.SelectedShape); err != nil {
		return nil, err
	}
	v.Hidden = !btn.Visible
	v.Transitions = btn.TransitionIn
	v.OnClick = b.opts.Hooks.ButtonTap(btn.Action)
	return v, nil
}

func (b *Builder) purchase() error {
	btn := b.style.Button(viewconfig.CompPurchaseButton)
	if btn == nil {
		return nil
	}
	v, err := b.button(surface.IDPurchase, btn)
	if err != nil {
		return err
	}
	v.Padding = render.Insets{Top: surface.ButtonPaddingY, Bottom: surface.ButtonPaddingY, Left: surface.ButtonPaddingX, Right: surface.ButtonPaddingX}
	b.step(v, surface.ItemSpacing)
	return nil
}

func (b *Builder) footer() error {
	fb := b.style.FooterBlock
	if fb == nil || len(fb.Buttons) == 0 {
		return nil
	}
	box := render.NewView(surface.IDFooter, render.KindBox)
	inner := NewConstraintSet(box)
	views := make([]*render.View, 0, len(fb.Buttons))
	for _, nb := range fb.Buttons {
		v, err := b.button(surface.FooterID(nb.Name), nb.Button)
		if err != nil {
			return err
		}
		v.Padding = render.Insets{Top: surface.FooterPaddingY, Bottom: surface.FooterPaddingY}
		box.Add(v)
		inner.Connect(v, Top, nil, Top, 0)
		views = append(views, v)
	}
	inner.Connect(views[0], Left, nil, Left, 0)
	inner.Connect(views[len(views)-1], Right, nil, Right, 0)
	if err := inner.CreateChain(Horizontal, views, Spread, nil, nil); err != nil {
		return err
	}
	b.cs.Nest(box, inner)
	b.step(box, surface.ItemSpacing)
	return nil
}

// overlays adds the close button and the loading shade above the flow.
func (b *Builder) overlays() error {
	if !b.cfg.IsHard {
		v, err := b.closeButton()
		if err != nil {
			return err
		}
		v.Padding = render.UniformInsets(surface.FooterPaddingY)
		b.add(v)
		b.cs.Connect(v, Top, nil, Top, b.opts.Insets.Top+surface.CloseMargin)
		if b.res.RightToLeft() {
			b.cs.Connect(v, Left, nil, Left, surface.CloseMargin)
		} else {
			b.cs.Connect(v, Right, nil, Right, surface.CloseMargin)
		}
	}
	shade := render.NewView(surface.IDLoading, render.KindBox)
	shade.Background = shape.NewColorDrawable(surface.LoadingShade)
	shade.Hidden = true
	shade.OnClick = func() {}
	b.fill(shade)
	b.out.loading = shade
	return nil
}

// closeButton builds the styled close button, or a plain glyph when the
// style declares none.
func (b *Builder) closeButton() (*render.View, error) {
	if btn := b.style.Button(viewconfig.CompCloseButton); btn != nil {
		return b.button(surface.IDClose, btn)
	}
	v := render.NewView(surface.IDClose, render.KindButton)
	v.Text = surface.DefaultCloseLabel()
	v.OnClick = b.opts.Hooks.ButtonTap(surface.DefaultCloseAction())
	return v, nil
}

// --- products ---

func (b *Builder) products() error {
	pb := b.style.ProductBlock
	if len(pb.Products) == 0 {
		return nil
	}
	box := render.NewView(surface.IDProducts, render.KindBox)
	inner := NewConstraintSet(box)

	// creation order follows the flow; bottom-up flows create the last cell first
	infos := pb.Products
	if pb.Type == viewconfig.ProductsSingle {
		infos = infos[:1]
	}
	order := make([]int, len(infos))
	for i := range order {
		order[i] = i
	}
	if b.out.reversed {
		slices.Reverse(order)
	}
	byIndex := make([]*cell, len(infos))
	for slot, i := range order {
		c, err := b.cell(i, slot, &infos[i], pb.Type)
		if err != nil {
			return err
		}
		byIndex[i] = c
		b.out.cells = append(b.out.cells, c)
		box.Add(c.view)
		inner.Nest(c.view, c.cs)
	}

	tagGap := 0.0
	for _, c := range byIndex {
		tagGap = math.Max(tagGap, c.tagHeight/2)
	}
	views := make([]*render.View, len(byIndex))
	for i, c := range byIndex {
		views[i] = c.view
	}
	switch pb.Type {
	case viewconfig.ProductsSingle:
		v := views[0]
		inner.Connect(v, Top, nil, Top, tagGap)
		inner.Connect(v, Left, nil, Left, 0)
		inner.Connect(v, Right, nil, Right, 0)
		inner.Constrain(v, Horizontal, Match())
	case viewconfig.ProductsVertical:
		spacing := make([]float64, len(views)-1)
		for i := range spacing {
			spacing[i] = surface.ProductSpacing + byIndex[i+1].tagHeight/2
		}
		for _, v := range views {
			inner.Connect(v, Left, nil, Left, 0)
			inner.Connect(v, Right, nil, Right, 0)
			inner.Constrain(v, Horizontal, Match())
		}
		inner.Connect(views[0], Top, nil, Top, tagGap)
		if err := inner.CreateChain(Vertical, views, Packed, spacing, nil); err != nil {
			return err
		}
		inner.SetBias(views[0], Vertical, 0)
	case viewconfig.ProductsHorizontal:
		spacing := make([]float64, len(views)-1)
		weights := make([]float64, len(views))
		for i := range views {
			weights[i] = 1
			if i > 0 {
				spacing[i-1] = surface.ProductSpacing
			}
			inner.Connect(views[i], Top, nil, Top, tagGap)
			inner.Constrain(views[i], Horizontal, Match())
		}
		inner.Connect(views[0], Left, nil, Left, 0)
		inner.Connect(views[len(views)-1], Right, nil, Right, 0)
		if err := inner.CreateChain(Horizontal, views, SpreadInside, spacing, weights); err != nil {
			return err
		}
	default:
		return uierr.UnsupportedData("products_block.type", pb.Type.String())
	}

	// badges go last so they draw over their cells
	for _, c := range byIndex {
		if c.tag == nil {
			continue
		}
		box.Add(c.tag)
		c.pin(inner)
	}
	b.out.products = inner
	b.cs.Nest(box, inner)
	b.step(box, surface.ItemSpacing)
	return nil
}

func (b *Builder) cell(index, slot int, info *viewconfig.ProductInfo, kind viewconfig.ProductBlockType) (*cell, error) {
	c := &cell{index: index, slot: slot, horizontal: kind == viewconfig.ProductsHorizontal, measurer: b.opts.Measurer}
	c.view = render.NewView(surface.ProductID(index), render.KindButton)
	c.view.Padding = render.UniformInsets(surface.CellPadding)
	c.view.OnClick = b.opts.Hooks.ProductTap(slot)
	var err error
	if c.view.Background, err = b.res.Drawable(info.Shape); err != nil {
		return nil, err
	}
	if c.view.SelectedBackground, err = b.res.Drawable(info.SelectedShape); err != nil {
		return nil, err
	}
	c.cs = NewConstraintSet(c.view)

	part := func(name string, t *viewconfig.Text) (*render.View, error) {
		if t == nil {
			return nil, nil
		}
		v, err := b.text(surface.ProductPartID(index, name), t)
		if err != nil {
			return nil, err
		}
		c.view.Add(v)
		return v, nil
	}
	subtitle := info.Subtitle
	for _, alt := range []*viewconfig.Text{info.SubtitleFreeTrial, info.SubtitlePayAsYouGo, info.SubtitlePayUpfront} {
		if subtitle == nil {
			subtitle = alt
		}
	}
	if c.title, err = part(surface.PartTitle, info.Title); err != nil {
		return nil, err
	}
	if c.subtitle, err = part(surface.PartSubtitle, subtitle); err != nil {
		return nil, err
	}
	if c.secondTitle, err = part(surface.PartSecondTitle, info.SecondTitle); err != nil {
		return nil, err
	}
	if c.secondSubtitle, err = part(surface.PartSecondSubtitle, info.SecondSubtitle); err != nil {
		return nil, err
	}
	c.arrange()

	if info.TagText != nil {
		if c.tag, err = b.text(surface.ProductPartID(index, surface.PartTag), info.TagText); err != nil {
			return nil, err
		}
		if c.tag.Background, err = b.res.Drawable(info.TagShape); err != nil {
			return nil, err
		}
		c.tag.Padding = render.Insets{Top: surface.TagPaddingY, Bottom: surface.TagPaddingY, Left: surface.TagPaddingX, Right: surface.TagPaddingX}
		c.measureTag()
	}
	return c, nil
}
