package viewconfig

import (
	"sort"

	"github.com/waozixyz/paywall/uierr"
)

const (
	keyProductsBlock = "products_block"
	keyFeaturesBlock = "features_block"
	keyFooterBlock   = "footer_block"
)

func (m *mapper) mapStyle(name string, o *object) (*Style, error) {
	st := &Style{Name: name}

	pbo, err := o.requireObject(keyProductsBlock)
	if err != nil {
		return nil, err
	}
	if err := m.mapProductBlock(pbo, &st.ProductBlock); err != nil {
		return nil, err
	}
	if fbo, err := o.optObject(keyFeaturesBlock); err != nil {
		return nil, err
	} else if fbo != nil {
		if st.FeatureBlock, err = m.mapFeatureBlock(fbo); err != nil {
			return nil, err
		}
	}
	if fto, err := o.optObject(keyFooterBlock); err != nil {
		return nil, err
	} else if fto != nil {
		if st.FooterBlock, err = m.mapFooterBlock(fto); err != nil {
			return nil, err
		}
	}

	for _, key := range o.keys {
		switch key {
		case keyProductsBlock, keyFeaturesBlock, keyFooterBlock:
			continue
		}
		if !o.has(key) {
			continue
		}
		c, _, err := m.mapComponent(o.sub(key), o.fields[key])
		if err != nil {
			return nil, err
		}
		st.Components = append(st.Components, NamedComponent{Name: key, Component: c})
	}
	return st, nil
}

// --- Products ---

func (m *mapper) mapProductBlock(o *object, pb *ProductBlock) error {
	typ, err := o.requireString("type")
	if err != nil {
		return err
	}
	switch typ {
	case "single":
		pb.Type = ProductsSingle
	case "vertical":
		pb.Type = ProductsVertical
	case "horizontal":
		pb.Type = ProductsHorizontal
	default:
		return uierr.UnsupportedData(o.sub("type"), typ)
	}
	if pb.MainProductIndex, err = o.optInt("main_product_index", 0); err != nil {
		return err
	}
	if pb.InitiatePurchaseOnTap, err = o.optBool("initiate_purchase_on_tap", false); err != nil {
		return err
	}
	items, err := o.optArray("products")
	if err != nil {
		return err
	}
	type ordered struct {
		info  ProductInfo
		order int
	}
	var products []ordered
	for i, raw := range items {
		po, err := parseObject(idx(o.sub("products"), i), raw)
		if err != nil {
			return err
		}
		info, err := m.mapProductInfo(po)
		if err != nil {
			return err
		}
		order, err := po.optInt("order", i)
		if err != nil {
			return err
		}
		products = append(products, ordered{info, order})
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].order < products[j].order })
	for _, p := range products {
		pb.Products = append(pb.Products, p.info)
	}
	if pb.Type == ProductsSingle && len(pb.Products) > 1 {
		return uierr.DecodingFailed(o.sub("products"), "single block declares %d products", len(pb.Products))
	}
	if n := len(pb.Products); n > 0 && (pb.MainProductIndex < 0 || pb.MainProductIndex >= n) {
		return uierr.DecodingFailed(o.sub("main_product_index"), "index %d outside %d products", pb.MainProductIndex, n)
	}
	for i := range pb.Products {
		if i == pb.MainProductIndex {
			pb.Products[i].IsMain = true
		}
	}
	return nil
}

func (m *mapper) mapProductInfo(o *object) (ProductInfo, error) {
	var p ProductInfo
	texts := []struct {
		key string
		dst **Text
	}{
		{"title", &p.Title},
		{"subtitle", &p.Subtitle},
		{"subtitle_payupfront", &p.SubtitlePayUpfront},
		{"subtitle_payasyougo", &p.SubtitlePayAsYouGo},
		{"subtitle_freetrial", &p.SubtitleFreeTrial},
		{"second_title", &p.SecondTitle},
		{"second_subtitle", &p.SecondSubtitle},
		{"tag_text", &p.TagText},
	}
	var err error
	for _, t := range texts {
		if *t.dst, err = m.optText(o, t.key); err != nil {
			return p, err
		}
	}
	shapes := []struct {
		key string
		dst **Shape
	}{
		{"tag_shape", &p.TagShape},
		{"shape", &p.Shape},
		{"selected_shape", &p.SelectedShape},
	}
	for _, s := range shapes {
		if *s.dst, err = m.optShape(o, s.key); err != nil {
			return p, err
		}
	}
	if p.IsMain, err = o.optBool("is_main", false); err != nil {
		return p, err
	}
	return p, nil
}

// --- Features ---

type orderedEntry struct {
	key   string
	order int
	obj   *object
}

// orderedEntries returns the object-valued entries of a block sorted by their
// "order" field, ties keeping document order.
func orderedEntries(o *object) ([]orderedEntry, error) {
	var out []orderedEntry
	for _, key := range o.keys {
		if key == "type" || !isObject(o.fields[key]) {
			continue
		}
		eo, err := o.requireObject(key)
		if err != nil {
			return nil, err
		}
		order, err := eo.optInt("order", 0)
		if err != nil {
			return nil, err
		}
		out = append(out, orderedEntry{key: key, order: order, obj: eo})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out, nil
}

func (m *mapper) mapFeatureBlock(o *object) (*FeatureBlock, error) {
	typ, err := o.requireString("type")
	if err != nil {
		return nil, err
	}
	fb := &FeatureBlock{}
	switch typ {
	case "list":
		fb.Type = FeaturesList
	case "timeline":
		fb.Type = FeaturesTimeline
	default:
		return nil, uierr.UnsupportedData(o.sub("type"), typ)
	}
	entries, err := orderedEntries(o)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		switch fb.Type {
		case FeaturesList:
			t, err := m.mapText(e.obj)
			if err != nil {
				return nil, err
			}
			fb.List = append(fb.List, t)
		case FeaturesTimeline:
			te, err := m.mapTimelineEntry(e.obj)
			if err != nil {
				return nil, err
			}
			fb.Timeline = append(fb.Timeline, te)
		}
	}
	return fb, nil
}

func (m *mapper) mapTimelineEntry(o *object) (TimelineEntry, error) {
	var te TimelineEntry
	var err error
	if te.Text, err = m.optText(o, "text"); err != nil {
		return te, err
	}
	if te.Text == nil {
		return te, uierr.DecodingFailed(o.sub("text"), "timeline entry needs a text")
	}
	if te.Shape, err = m.optShape(o, "shape"); err != nil {
		return te, err
	}
	if te.Image, err = o.optString("image", ""); err != nil {
		return te, err
	}
	if te.Image != "" {
		if err := m.assetRef(o.sub("image"), te.Image); err != nil {
			return te, err
		}
	}
	if te.Connector, err = o.optString("gradient", ""); err != nil {
		return te, err
	}
	if te.Connector != "" {
		if err := m.fillRef(o.sub("gradient"), te.Connector); err != nil {
			return te, err
		}
	}
	return te, nil
}

// --- Footer ---

func (m *mapper) mapFooterBlock(o *object) (*FooterBlock, error) {
	entries, err := orderedEntries(o)
	if err != nil {
		return nil, err
	}
	fb := &FooterBlock{}
	for _, e := range entries {
		b, err := m.mapButton(e.obj)
		if err != nil {
			return nil, err
		}
		fb.Buttons = append(fb.Buttons, NamedButton{Name: e.key, Button: b})
	}
	return fb, nil
}
