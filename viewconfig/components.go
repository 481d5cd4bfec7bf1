package viewconfig

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/waozixyz/paywall/uierr"
)

// mapComponent maps one style entry. Strings are asset references; objects
// dispatch on their "type".
func (m *mapper) mapComponent(path string, raw json.RawMessage) (Component, int, error) {
	if isString(raw) {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, 0, uierr.Wrap(uierr.KindDecodingFailed, path, err)
		}
		if err := m.assetRef(path, id); err != nil {
			return nil, 0, err
		}
		return Reference{AssetID: id}, 0, nil
	}
	if !isObject(raw) {
		return nil, 0, uierr.DecodingFailed(path, "component must be an object or an asset id")
	}
	o, err := parseObject(path, raw)
	if err != nil {
		return nil, 0, err
	}
	order, err := o.optInt("order", 0)
	if err != nil {
		return nil, 0, err
	}
	typ, err := o.optString("type", "")
	if err != nil {
		return nil, 0, err
	}
	var c Component
	switch typ {
	case "shape":
		c, err = m.mapShape(o)
	case "text":
		c, err = m.mapText(o)
	case "button":
		c, err = m.mapButton(o)
	default:
		props, attrs, perr := m.mapProperties(o)
		if perr != nil {
			return nil, 0, perr
		}
		if typ == "product" {
			c = &ProductObject{Properties: props, Attributes: attrs}
		} else {
			c = &CustomObject{Type: typ, Properties: props, Attributes: attrs}
		}
	}
	if err != nil {
		return nil, 0, err
	}
	return c, order, nil
}

// mapProperties maps a property bag. Object and string values become
// components; scalars land in the attribute map.
func (m *mapper) mapProperties(o *object) ([]Property, map[string]any, error) {
	var props []Property
	attrs := make(map[string]any)
	for _, key := range o.keys {
		if key == "type" || key == "order" {
			continue
		}
		raw := o.fields[key]
		if isNull(raw) {
			continue
		}
		if isObject(raw) || isString(raw) {
			c, order, err := m.mapComponent(o.sub(key), raw)
			if err != nil {
				return nil, nil, err
			}
			props = append(props, Property{Key: key, Component: c, Order: order})
			continue
		}
		var v any
		if err := o.decode(key, &v); err != nil {
			return nil, nil, err
		}
		attrs[key] = v
	}
	sort.SliceStable(props, func(i, j int) bool { return props[i].Order < props[j].Order })
	return props, attrs, nil
}

// --- Shape ---

func (m *mapper) mapShape(o *object) (*Shape, error) {
	kind, err := o.optString("value", "rect")
	if err != nil {
		return nil, err
	}
	s := &Shape{}
	switch kind {
	case "rect", "rectangle":
		s.Type = ShapeRect
	case "circle":
		s.Type = ShapeCircle
	case "curve_up":
		s.Type = ShapeRectWithArc
		s.ArcHeight = -DefaultArcHeight
	case "curve_down":
		s.Type = ShapeRectWithArc
		s.ArcHeight = DefaultArcHeight
	default:
		return nil, uierr.UnsupportedData(o.sub("value"), kind)
	}
	if s.Type == ShapeRectWithArc && o.has("arc_height") {
		h, err := o.optFloat("arc_height", DefaultArcHeight)
		if err != nil {
			return nil, err
		}
		if h < 0 {
			h = -h
		}
		if s.ArcHeight < 0 {
			h = -h
		}
		s.ArcHeight = h
	}
	if o.has("rect_corner_radius") {
		raw := o.fields["rect_corner_radius"]
		if isObject(raw) {
			ro, err := o.requireObject("rect_corner_radius")
			if err != nil {
				return nil, err
			}
			r := &s.Radii
			for key, dst := range map[string]*float64{"tl": &r.TopLeft, "tr": &r.TopRight, "br": &r.BottomRight, "bl": &r.BottomLeft} {
				if *dst, err = ro.optFloat(key, 0); err != nil {
					return nil, err
				}
			}
		} else {
			v, err := o.optFloat("rect_corner_radius", 0)
			if err != nil {
				return nil, err
			}
			s.Radii = UniformRadii(v)
		}
	}
	if s.Background, err = o.optString("background", ""); err != nil {
		return nil, err
	}
	if s.Background != "" {
		if err := m.fillRef(o.sub("background"), s.Background); err != nil {
			return nil, err
		}
	}
	if o.has("border") {
		b := &Border{}
		if b.Color, err = o.requireString("border"); err != nil {
			return nil, err
		}
		if err := m.fillRef(o.sub("border"), b.Color); err != nil {
			return nil, err
		}
		if b.Thickness, err = o.optFloat("thickness", 1); err != nil {
			return nil, err
		}
		s.Border = b
	}
	return s, nil
}

func (m *mapper) optShape(o *object, key string) (*Shape, error) {
	so, err := o.optObject(key)
	if err != nil || so == nil {
		return nil, err
	}
	return m.mapShape(so)
}

// --- Text ---

func (m *mapper) mapText(o *object) (*Text, error) {
	align, err := o.optString("horizontal_align", "left")
	if err != nil {
		return nil, err
	}
	t := &Text{}
	if t.Align, err = parseTextAlign(o.sub("horizontal_align"), align); err != nil {
		return nil, err
	}
	if !o.has("items") {
		run, err := m.mapTextRun(o)
		if err != nil {
			return nil, err
		}
		if !o.has("horizontal_align") {
			if f, ok := m.lookupAsset(run.Font); ok {
				t.Align = f.(FontAsset).Align
			}
		}
		run.Align = t.Align
		t.Items = []TextItem{run}
		return t, nil
	}
	t.Multiple = true
	items, err := o.requireArray("items")
	if err != nil {
		return nil, err
	}
	for i, raw := range items {
		itemObj, err := parseObject(idx(o.sub("items"), i), raw)
		if err != nil {
			return nil, err
		}
		item, err := m.mapTextItem(itemObj)
		if err != nil {
			return nil, err
		}
		t.Items = append(t.Items, item)
	}
	return t, nil
}

func (m *mapper) mapTextRun(o *object) (*TextRun, error) {
	r := &TextRun{}
	var err error
	if r.StringID, err = o.requireString("string_id"); err != nil {
		return nil, err
	}
	if err := m.stringRef(o.sub("string_id"), r.StringID); err != nil {
		return nil, err
	}
	if r.Font, err = o.requireString("font"); err != nil {
		return nil, err
	}
	if err := m.fontRef(o.sub("font"), r.Font); err != nil {
		return nil, err
	}
	if r.Size, err = o.optFloat("size", 0); err != nil {
		return nil, err
	}
	if r.Color, err = o.optString("color", ""); err != nil {
		return nil, err
	}
	if r.Color != "" {
		if err := m.fillRef(o.sub("color"), r.Color); err != nil {
			return nil, err
		}
	}
	align, err := o.optString("horizontal_align", "left")
	if err != nil {
		return nil, err
	}
	r.Align, err = parseTextAlign(o.sub("horizontal_align"), align)
	return r, err
}

func (m *mapper) mapTextImage(o *object) (*TextImage, error) {
	img := &TextImage{}
	var err error
	if img.Image, err = o.requireString("image"); err != nil {
		return nil, err
	}
	if err := m.assetRef(o.sub("image"), img.Image); err != nil {
		return nil, err
	}
	if img.Width, err = o.optFloat("width", 16); err != nil {
		return nil, err
	}
	if img.Height, err = o.optFloat("height", img.Width); err != nil {
		return nil, err
	}
	if img.Tint, err = o.optString("color", ""); err != nil {
		return nil, err
	}
	if img.Tint != "" {
		if err := m.fillRef(o.sub("color"), img.Tint); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (m *mapper) mapTextItem(o *object) (TextItem, error) {
	typ, err := o.optString("type", "text")
	if err != nil {
		return nil, err
	}
	switch typ {
	case "text":
		return m.mapTextRun(o)
	case "newline":
		return TextNewLine{}, nil
	case "space":
		v, err := o.optFloat("value", 4)
		if err != nil {
			return nil, err
		}
		return TextSpace{Value: v}, nil
	case "image":
		return m.mapTextImage(o)
	case "bullet":
		b := &TextBullet{}
		if b.Space, err = o.optFloat("space", 8); err != nil {
			return nil, err
		}
		if o.has("image") {
			if b.Image, err = m.mapTextImage(o); err != nil {
				return nil, err
			}
			return b, nil
		}
		if b.Text, err = m.mapTextRun(o); err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, uierr.UnsupportedData(o.sub("type"), typ)
}

func (m *mapper) optText(o *object, key string) (*Text, error) {
	to, err := o.optObject(key)
	if err != nil || to == nil {
		return nil, err
	}
	return m.mapText(to)
}

// --- Button ---

func parseButtonAlign(field, s string) (ButtonAlign, error) {
	switch s {
	case "", "center":
		return ButtonCenter, nil
	case "leading", "left":
		return ButtonLeading, nil
	case "trailing", "right":
		return ButtonTrailing, nil
	case "fill":
		return ButtonFill, nil
	}
	return 0, uierr.UnsupportedData(field, s)
}

func (m *mapper) mapButton(o *object) (*Button, error) {
	b := &Button{}
	var err error
	if b.Shape, err = m.optShape(o, "shape"); err != nil {
		return nil, err
	}
	if b.SelectedShape, err = m.optShape(o, "selected_shape"); err != nil {
		return nil, err
	}
	if b.Title, err = m.optText(o, "title"); err != nil {
		return nil, err
	}
	if b.SelectedTitle, err = m.optText(o, "selected_title"); err != nil {
		return nil, err
	}
	align, err := o.optString("align", "center")
	if err != nil {
		return nil, err
	}
	if b.Align, err = parseButtonAlign(o.sub("align"), align); err != nil {
		return nil, err
	}
	if b.Visible, err = o.optBool("visibility", true); err != nil {
		return nil, err
	}
	ao, err := o.optObject("action")
	if err != nil {
		return nil, err
	}
	if ao != nil {
		if b.Action, err = mapAction(ao); err != nil {
			return nil, err
		}
	}
	if o.has("transition_in") {
		raw := o.fields["transition_in"]
		var items []json.RawMessage
		if isObject(raw) {
			items = []json.RawMessage{raw}
		} else if items, err = o.optArray("transition_in"); err != nil {
			return nil, err
		}
		for i, traw := range items {
			to, err := parseObject(idx(o.sub("transition_in"), i), traw)
			if err != nil {
				return nil, err
			}
			tr, err := mapTransition(to)
			if err != nil {
				return nil, err
			}
			b.TransitionIn = append(b.TransitionIn, tr)
		}
	}
	return b, nil
}

func mapAction(o *object) (*Action, error) {
	typ, err := o.requireString("type")
	if err != nil {
		return nil, err
	}
	a := &Action{}
	switch typ {
	case "close":
		a.Type = ActionClose
	case "restore":
		a.Type = ActionRestore
	case "purchase":
		a.Type = ActionPurchase
	case "open_url":
		a.Type = ActionOpenURL
		if a.URL, err = o.requireString("url"); err != nil {
			return nil, err
		}
	case "custom":
		a.Type = ActionCustom
		if a.CustomID, err = o.requireString("custom_id"); err != nil {
			return nil, err
		}
	default:
		return nil, uierr.UnsupportedData(o.sub("type"), typ)
	}
	return a, nil
}

func mapTransition(o *object) (Transition, error) {
	var tr Transition
	typ, err := o.optString("type", "fade")
	if err != nil {
		return tr, err
	}
	switch typ {
	case "fade":
		tr.Type = TransitionFade
	case "slide":
		tr.Type = TransitionSlide
	default:
		return tr, uierr.UnsupportedData(o.sub("type"), typ)
	}
	delay, err := o.optFloat("start_delay", 0)
	if err != nil {
		return tr, err
	}
	dur, err := o.optFloat("duration", 300)
	if err != nil {
		return tr, err
	}
	tr.StartDelay = time.Duration(delay) * time.Millisecond
	tr.Duration = time.Duration(dur) * time.Millisecond
	tr.Interpolator, err = o.optString("interpolator", "ease_in_out")
	return tr, err
}
