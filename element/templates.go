package element

import (
	"fmt"
	"math"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/resolve"
	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/surface"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

// model is the default style resolved once per build. Recomposition reads
// it together with the state, so drawables and image contents keep their
// identity across renders.
type model struct {
	template viewconfig.TemplateID
	rtl      bool
	coverRel float64

	background *shape.Drawable
	shade      *shape.Drawable
	cover      *render.ImageContent
	panel      *shape.Drawable
	arc        float64
	loading    *shape.Drawable

	title, timer *render.TextContent
	features     *features
	products     *products
	purchase     *button
	footer       []*button
	close        *button
}

type button struct {
	id          string
	label       *render.TextContent
	shape       *shape.Drawable
	selected    *shape.Drawable
	hidden      bool
	transitions []viewconfig.Transition
	onClick     func()
}

type features struct {
	kind     viewconfig.FeatureBlockType
	list     []*render.TextContent
	timeline []timelineRow
}

type timelineRow struct {
	icon      *shape.Drawable
	image     *render.ImageContent
	text      *render.TextContent
	connector *shape.Drawable
}

type products struct {
	kind  viewconfig.ProductBlockType
	cells []*productCell // by slot
}

type productCell struct {
	index           int
	shape, selShape *shape.Drawable
	tagShape        *shape.Drawable
	defaults        surface.ProductTexts
}

func newModel(cfg *viewconfig.ViewConfiguration, res *resolve.Resolver, hooks surface.Hooks) (*model, error) {
	style := cfg.DefaultStyle()
	if style == nil {
		return nil, uierr.DecodingFailed("styles", "missing %q style", viewconfig.DefaultStyle)
	}
	switch cfg.TemplateID {
	case viewconfig.TemplateBasic, viewconfig.TemplateFlat, viewconfig.TemplateTransparent:
	default:
		return nil, uierr.UnsupportedData("template_id", cfg.TemplateID.String())
	}
	m := &model{
		template: cfg.TemplateID,
		rtl:      res.RightToLeft(),
		coverRel: cfg.MainImageRelativeHeight,
		loading:  shape.NewColorDrawable(surface.LoadingShade),
	}
	var err error
	fill := func(id string) (*shape.Drawable, error) {
		if id == "" {
			return nil, nil
		}
		return res.FillDrawable(id)
	}
	text := func(t *viewconfig.Text) (*render.TextContent, error) {
		if t == nil {
			return nil, nil
		}
		return res.Text(t, nil)
	}
	image := func(id string) (*render.ImageContent, error) {
		if id == "" {
			return nil, nil
		}
		img, err := res.Image(id)
		if err != nil {
			return nil, err
		}
		return &render.ImageContent{AssetID: id, Asset: img}, nil
	}
	btn := func(id string, b *viewconfig.Button) (*button, error) {
		if b == nil {
			return nil, nil
		}
		out := &button{id: id, hidden: !b.Visible, transitions: b.TransitionIn, onClick: hooks.ButtonTap(b.Action)}
		var err error
		if out.label, err = text(b.Title); err != nil {
			return nil, err
		}
		if out.label != nil {
			switch b.Align {
			case viewconfig.ButtonLeading:
				out.label.Align = viewconfig.AlignLeft
			case viewconfig.ButtonTrailing:
				out.label.Align = viewconfig.AlignRight
			}
		}
		if out.shape, err = res.Drawable(b.Shape); err != nil {
			return nil, err
		}
		if out.selected, err = res.Drawable(b.SelectedShape); err != nil {
			return nil, err
		}
		return out, nil
	}

	if m.background, err = fill(style.Image(viewconfig.CompBackground)); err != nil {
		return nil, err
	}
	if m.template == viewconfig.TemplateTransparent {
		if m.shade, err = fill(style.Image(surface.CompBackgroundShade)); err != nil {
			return nil, err
		}
	} else if m.cover, err = image(style.Image(viewconfig.CompCoverImage)); err != nil {
		return nil, err
	}
	if m.template == viewconfig.TemplateBasic {
		ps := style.Shape(viewconfig.CompMainContentShape)
		if m.panel, err = res.Drawable(ps); err != nil {
			return nil, err
		}
		if ps != nil {
			m.arc = math.Abs(ps.ArcHeight)
		}
	}
	if m.title, err = text(style.Text(viewconfig.CompTitleRows)); err != nil {
		return nil, err
	}
	if m.timer, err = text(style.Text(surface.CompTimerText)); err != nil {
		return nil, err
	}

	if fb := style.FeatureBlock; fb != nil {
		f := &features{kind: fb.Type}
		switch fb.Type {
		case viewconfig.FeaturesList:
			for _, t := range fb.List {
				tc, err := text(t)
				if err != nil {
					return nil, err
				}
				f.list = append(f.list, tc)
			}
		case viewconfig.FeaturesTimeline:
			for _, e := range fb.Timeline {
				var row timelineRow
				if row.icon, err = res.Drawable(e.Shape); err != nil {
					return nil, err
				}
				if row.image, err = image(e.Image); err != nil {
					return nil, err
				}
				if row.text, err = text(e.Text); err != nil {
					return nil, err
				}
				if row.connector, err = fill(e.Connector); err != nil {
					return nil, err
				}
				f.timeline = append(f.timeline, row)
			}
		default:
			return nil, uierr.UnsupportedData("features_block.type", fmt.Sprint(fb.Type))
		}
		m.features = f
	}

	if pb := style.ProductBlock; len(pb.Products) > 0 {
		switch pb.Type {
		case viewconfig.ProductsSingle, viewconfig.ProductsVertical, viewconfig.ProductsHorizontal:
		default:
			return nil, uierr.UnsupportedData("products_block.type", pb.Type.String())
		}
		infos := pb.Products
		if pb.Type == viewconfig.ProductsSingle {
			infos = infos[:1]
		}
		p := &products{kind: pb.Type}
		for i := range infos {
			info := &infos[i]
			c := &productCell{index: i}
			if c.shape, err = res.Drawable(info.Shape); err != nil {
				return nil, err
			}
			if c.selShape, err = res.Drawable(info.SelectedShape); err != nil {
				return nil, err
			}
			if c.tagShape, err = res.Drawable(info.TagShape); err != nil {
				return nil, err
			}
			subtitle := info.Subtitle
			for _, alt := range []*viewconfig.Text{info.SubtitleFreeTrial, info.SubtitlePayAsYouGo, info.SubtitlePayUpfront} {
				if subtitle == nil {
					subtitle = alt
				}
			}
			d := &c.defaults
			for _, f := range []struct {
				dst **render.TextContent
				src *viewconfig.Text
			}{
				{&d.Title, info.Title},
				{&d.Subtitle, subtitle},
				{&d.SecondTitle, info.SecondTitle},
				{&d.SecondSubtitle, info.SecondSubtitle},
				{&d.Tag, info.TagText},
			} {
				if *f.dst, err = text(f.src); err != nil {
					return nil, err
				}
			}
			p.cells = append(p.cells, c)
		}
		m.products = p
	}

	if m.purchase, err = btn(surface.IDPurchase, style.Button(viewconfig.CompPurchaseButton)); err != nil {
		return nil, err
	}
	if fb := style.FooterBlock; fb != nil {
		for _, nb := range fb.Buttons {
			b, err := btn(surface.FooterID(nb.Name), nb.Button)
			if err != nil {
				return nil, err
			}
			m.footer = append(m.footer, b)
		}
	}
	if !cfg.IsHard {
		if m.close, err = btn(surface.IDClose, style.Button(viewconfig.CompCloseButton)); err != nil {
			return nil, err
		}
		if m.close == nil {
			m.close = &button{
				id:      surface.IDClose,
				label:   surface.DefaultCloseLabel(),
				onClick: hooks.ButtonTap(surface.DefaultCloseAction()),
			}
		}
	}
	return m, nil
}

// frame carries what one composition needs besides the model.
type frame struct {
	vp     render.Size
	insets render.Insets
	hooks  surface.Hooks
	state  *State
	page   float64 // scrollable page height
	c      *Composer
}

func fillBox(id string, d *shape.Drawable) *Box {
	return &Box{BaseProps: BaseProps{ID: id, Width: FillMax(), Height: FillMax(), Shape: d}}
}

func textElem(id string, t *render.TextContent) *Text {
	return &Text{BaseProps: BaseProps{ID: id, Width: FillMax()}, Content: t}
}

// blocks is the content flow shared by every template.
func (m *model) blocks(f *frame, withFooter bool) []Element {
	var out []Element
	if m.title != nil {
		out = append(out, textElem(surface.IDTitle, m.title))
	}
	if m.timer != nil {
		out = append(out, textElem(surface.IDTimer, m.timer))
	}
	if m.features != nil {
		out = append(out, m.featureBlock())
	}
	if m.products != nil {
		out = append(out, m.productBlock(f))
	}
	if m.purchase != nil {
		out = append(out, m.purchaseButton())
	}
	if withFooter && len(m.footer) > 0 {
		out = append(out, m.footerRow(BaseProps{}))
	}
	return out
}

func (b *button) props() BaseProps {
	return BaseProps{
		ID:            b.id,
		Shape:         b.shape,
		SelectedShape: b.selected,
		Hidden:        b.hidden,
		Transitions:   b.transitions,
		OnClick:       b.onClick,
	}
}

func (m *model) purchaseButton() Element {
	p := m.purchase.props()
	p.Width = FillMax()
	p.Padding = render.Insets{Top: surface.ButtonPaddingY, Bottom: surface.ButtonPaddingY, Left: surface.ButtonPaddingX, Right: surface.ButtonPaddingX}
	return &Button{BaseProps: p, Label: m.purchase.label}
}

func (m *model) footerRow(base BaseProps) *Row {
	base.ID = surface.IDFooter
	base.Width = FillMax()
	row := &Row{BaseProps: base, Arrange: ArrangeSpaceEvenly}
	for _, b := range m.footer {
		p := b.props()
		p.Padding = render.Insets{Top: surface.FooterPaddingY, Bottom: surface.FooterPaddingY}
		row.Children = append(row.Children, &Button{BaseProps: p, Label: b.label})
	}
	return row
}

func (m *model) featureBlock() Element {
	col := &Column{BaseProps: BaseProps{ID: surface.IDFeatures, Width: FillMax()}}
	if m.features.kind == viewconfig.FeaturesList {
		col.Spacing = surface.CellRowSpacing * 2
		for i, t := range m.features.list {
			col.Children = append(col.Children, textElem(surface.FeatureID(i), t))
		}
		return col
	}
	for i, r := range m.features.timeline {
		id := surface.TimelineID(i)
		rail := &Column{
			BaseProps: BaseProps{Width: Specified(surface.TimelineIconSize), Height: FillMax()},
			HAlign:    Center,
			Children: []Element{
				&Image{
					BaseProps: BaseProps{ID: id + "_icon", Width: Specified(surface.TimelineIconSize), Height: Specified(surface.TimelineIconSize), Shape: r.icon},
					Content:   r.image,
				},
				&Box{BaseProps: BaseProps{
					ID:     id + "_connector",
					Width:  Specified(surface.TimelineConnector),
					Weight: 1,
					Shape:  r.connector,
					Hidden: i == len(m.features.timeline)-1,
				}},
			},
		}
		text := &Text{
			BaseProps: BaseProps{ID: id + "_text", Weight: 1, Padding: render.Insets{Bottom: surface.ItemSpacing}},
			Content:   r.text,
		}
		col.Children = append(col.Children, &Row{
			BaseProps: BaseProps{ID: id, Width: FillMax()},
			Spacing:   surface.ItemSpacing,
			Intrinsic: true,
			Children:  []Element{rail, text},
		})
	}
	return col
}

// texts merges bound texts over the defaults of a cell.
func (c *productCell) texts(st *State, slot int) surface.ProductTexts {
	t := c.defaults
	b := st.Texts(productKey(slot))
	for _, f := range []struct {
		dst **render.TextContent
		src *render.TextContent
	}{
		{&t.Title, b.Title},
		{&t.Subtitle, b.Subtitle},
		{&t.SecondTitle, b.SecondTitle},
		{&t.SecondSubtitle, b.SecondSubtitle},
		{&t.Tag, b.Tag},
	} {
		if f.src != nil {
			*f.dst = f.src
		}
	}
	return t
}

func tagPadding() render.Insets {
	return render.Insets{Top: surface.TagPaddingY, Bottom: surface.TagPaddingY, Left: surface.TagPaddingX, Right: surface.TagPaddingX}
}

func (f *frame) tagHeight(t *render.TextContent) float64 {
	if t == nil {
		return 0
	}
	return f.c.measurer.MeasureText(t, 0).H + tagPadding().Vertical()
}

func (m *model) productBlock(f *frame) Element {
	p := m.products
	horizontal := p.kind == viewconfig.ProductsHorizontal
	type built struct {
		elem   Element
		tagH   float64
		hidden bool
	}
	cells := make([]built, len(p.cells))
	tagGap := 0.0
	for slot, c := range p.cells {
		t := c.texts(f.state, slot)
		hidden := f.state.Bool(hiddenKey(slot))
		tagH := 0.0
		if !hidden {
			tagH = f.tagHeight(t.Tag)
			tagGap = math.Max(tagGap, tagH/2)
		}
		cells[slot] = built{elem: m.productCell(f, c, slot, t, tagH, hidden, horizontal), tagH: tagH, hidden: hidden}
	}

	if horizontal {
		row := &Row{
			BaseProps: BaseProps{ID: surface.IDProducts, Width: FillMax(), Padding: render.Insets{Top: tagGap}},
			Spacing:   surface.ProductSpacing,
		}
		for _, c := range cells {
			row.Children = append(row.Children, c.elem)
		}
		return row
	}
	col := &Column{BaseProps: BaseProps{ID: surface.IDProducts, Width: FillMax(), Padding: render.Insets{Top: tagGap}}}
	shown := 0
	for _, c := range cells {
		if !c.hidden && shown > 0 {
			col.Children = append(col.Children, &Spacer{BaseProps{Height: Specified(surface.ProductSpacing + c.tagH/2)}})
		}
		if !c.hidden {
			shown++
		}
		col.Children = append(col.Children, c.elem)
	}
	return col
}

// productCell wraps the clickable cell and its badge, which straddles the
// top edge at the trailing corner.
func (m *model) productCell(f *frame, c *productCell, slot int, t surface.ProductTexts, tagH float64, hidden, horizontal bool) Element {
	selected := f.state.Int(keySelected, -1) == slot
	cell := &Button{
		BaseProps: BaseProps{
			ID:            surface.ProductID(c.index),
			Width:         FillMax(),
			Padding:       render.UniformInsets(surface.CellPadding),
			Shape:         c.shape,
			SelectedShape: c.selShape,
			Selected:      selected,
			OnClick:       f.hooks.ProductTap(slot),
		},
		Content: cellContent(c.index, t, horizontal),
	}
	wrap := &Box{BaseProps: BaseProps{Width: FillMax(), Hidden: hidden}, Children: []Element{cell}}
	if horizontal {
		wrap.Weight = 1
	}
	if t.Tag != nil {
		wrap.Children = append(wrap.Children, &Text{
			BaseProps: BaseProps{
				ID:      surface.ProductPartID(c.index, surface.PartTag),
				Padding: tagPadding(),
				Shape:   c.tagShape,
				Align:   &TopEnd,
				Offset:  Offset{X: -surface.TagInset, Y: -tagH / 2},
			},
			Content: t.Tag,
		})
	}
	return wrap
}

func cellContent(index int, t surface.ProductTexts, horizontal bool) Element {
	part := func(name string, tc *render.TextContent) *Text {
		if tc == nil {
			return nil
		}
		return &Text{BaseProps: BaseProps{ID: surface.ProductPartID(index, name)}, Content: tc}
	}
	title := part(surface.PartTitle, t.Title)
	subtitle := part(surface.PartSubtitle, t.Subtitle)
	secondTitle := part(surface.PartSecondTitle, t.SecondTitle)
	secondSubtitle := part(surface.PartSecondSubtitle, t.SecondSubtitle)

	col := &Column{BaseProps: BaseProps{Width: FillMax()}, Spacing: surface.CellRowSpacing}
	if horizontal {
		col.HAlign = Center
		for _, p := range []*Text{title, subtitle, secondTitle, secondSubtitle} {
			if p != nil {
				col.Children = append(col.Children, p)
			}
		}
		return col
	}
	row := func(lead, trail *Text) {
		if lead == nil && trail == nil {
			return
		}
		r := &Row{BaseProps: BaseProps{Width: FillMax()}, Spacing: surface.ItemSpacing}
		if lead != nil {
			lead.Weight = 1
			r.Children = append(r.Children, lead)
		} else {
			r.Children = append(r.Children, &Spacer{BaseProps{Weight: 1}})
		}
		if trail != nil {
			r.Children = append(r.Children, trail)
		}
		col.Children = append(col.Children, r)
	}
	row(title, secondTitle)
	row(subtitle, secondSubtitle)
	return col
}

// overlays sit above the page: the close button and the loading shade.
func (m *model) overlays(f *frame) []Element {
	var out []Element
	if m.close != nil {
		p := m.close.props()
		p.Width = Shrink(0)
		p.Padding = render.UniformInsets(surface.FooterPaddingY)
		align, dx := TopEnd, -surface.CloseMargin
		if m.rtl {
			align, dx = TopStart, surface.CloseMargin
		}
		p.Align = &align
		p.Offset = Offset{X: dx, Y: f.insets.Top + surface.CloseMargin}
		out = append(out, &Button{BaseProps: p, Label: m.close.label})
	}
	shade := fillBox(surface.IDLoading, m.loading)
	shade.Hidden = !f.state.Bool(keyLoading)
	shade.OnClick = func() {}
	return append(out, shade)
}

func (m *model) coverImage(f *frame) Element {
	return &Image{
		BaseProps: BaseProps{ID: surface.IDCover, Width: FillMax(), Height: Specified(f.vp.H * m.coverRel)},
		Content:   m.cover,
	}
}

// footerReserve is the space the floating footer takes from the page.
func (m *model) footerReserve(f *frame) float64 {
	if m.template == viewconfig.TemplateBasic || len(m.footer) == 0 {
		return 0
	}
	return f.c.Measure(m.footerRow(BaseProps{}), Loose(f.vp.W-2*surface.SideMargin, unbounded)).H + surface.ItemSpacing
}

// content is the part of the page measured when reconciling its height.
func (m *model) content(f *frame) Element {
	switch m.template {
	case viewconfig.TemplateBasic:
		return &Column{Children: []Element{
			&Spacer{BaseProps{Height: Specified(f.vp.H*m.coverRel - m.arc)}},
			m.panelColumn(f, 0),
		}}
	case viewconfig.TemplateFlat:
		return m.flatPage(f, 0, Wrap())
	}
	return m.transparentColumn(f)
}

func (m *model) panelColumn(f *frame, bottom float64) *Column {
	return &Column{
		BaseProps: BaseProps{Width: FillMax(), Padding: render.Insets{
			Top:    m.arc + surface.PanelTopPadding,
			Left:   surface.SideMargin,
			Right:  surface.SideMargin,
			Bottom: surface.PanelBottomMargin + bottom,
		}},
		Spacing:  surface.ItemSpacing,
		Children: m.blocks(f, true),
	}
}

func (m *model) flatPage(f *frame, bottom float64, height DimSpec) *Column {
	inner := &Column{
		BaseProps: BaseProps{Width: FillMax(), Padding: render.Insets{Left: surface.SideMargin, Right: surface.SideMargin}},
		Spacing:   surface.ItemSpacing,
		Children:  m.blocks(f, false),
	}
	return &Column{
		BaseProps: BaseProps{Width: FillMax(), Height: height, Padding: render.Insets{Bottom: surface.SideMargin + bottom}},
		Spacing:   surface.ItemSpacing,
		Children:  []Element{m.coverImage(f), inner},
	}
}

func (m *model) transparentColumn(f *frame) *Column {
	return &Column{
		BaseProps: BaseProps{Width: FillMax(), Padding: render.Insets{Left: surface.SideMargin, Right: surface.SideMargin, Bottom: surface.SideMargin}},
		Spacing:   surface.ItemSpacing,
		Children:  m.blocks(f, false),
	}
}

// floatingFooter pins the footer to the bottom of the viewport.
func (m *model) floatingFooter(f *frame) []Element {
	if m.template == viewconfig.TemplateBasic || len(m.footer) == 0 {
		return nil
	}
	return []Element{m.footerRow(BaseProps{
		Padding: render.Insets{Left: surface.SideMargin, Right: surface.SideMargin},
		Align:   &BottomStart,
		Offset:  Offset{Y: -(f.insets.Bottom + surface.SideMargin)},
	})}
}

// tree is the whole composition for the current state.
func (m *model) tree(f *frame) Element {
	root := &Box{BaseProps: BaseProps{ID: surface.IDRoot, Width: Specified(f.vp.W), Height: Specified(f.vp.H)}}
	if m.background != nil {
		root.Children = append(root.Children, fillBox(surface.IDBackground, m.background))
	}
	reserve := m.footerReserve(f)
	switch m.template {
	case viewconfig.TemplateBasic:
		coverTop := f.vp.H*m.coverRel - m.arc
		root.Children = append(root.Children, &Box{
			BaseProps: BaseProps{Width: FillMax(), Height: Specified(f.page)},
			Children: []Element{
				m.coverImage(f),
				&Column{
					BaseProps: BaseProps{Width: FillMax(), Height: FillMax(), Padding: render.Insets{Top: coverTop}},
					Children: []Element{&Box{
						BaseProps: BaseProps{ID: surface.IDPanel, Width: FillMax(), Weight: 1, Shape: m.panel},
						Children:  []Element{m.panelColumn(f, f.insets.Bottom)},
					}},
				},
			},
		})
	case viewconfig.TemplateFlat:
		root.Children = append(root.Children, m.flatPage(f, f.insets.Bottom+reserve, Specified(f.page)))
	case viewconfig.TemplateTransparent:
		if m.shade != nil {
			root.Children = append(root.Children, fillBox(surface.IDBackgroundShade, m.shade))
		}
		root.Children = append(root.Children, &Column{
			BaseProps: BaseProps{Width: FillMax(), Height: Specified(f.page), Padding: render.Insets{Top: f.insets.Top, Bottom: f.insets.Bottom + reserve}},
			Arrange:   ArrangeEnd,
			Children:  []Element{m.transparentColumn(f)},
		})
	}
	root.Children = append(root.Children, m.floatingFooter(f)...)
	root.Children = append(root.Children, m.overlays(f)...)
	return root
}
