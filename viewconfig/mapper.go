// viewconfig/mapper.go

package viewconfig

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/waozixyz/paywall/uierr"
)

// Read reads a whole document from r and maps it.
func Read(r io.Reader, ctx PaywallContext) (*ViewConfiguration, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("viewconfig read: %w", err)
	}
	return Map(raw, ctx)
}

// Map parses a raw paywall document. Structural problems are returned as
// *uierr.Error of kind DecodingFailed or UnsupportedData; no partial
// configuration is ever returned alongside an error.
func Map(raw []byte, ctx PaywallContext) (*ViewConfiguration, error) {
	root, err := parseObject("", raw)
	if err != nil {
		return nil, err
	}
	m := &mapper{}
	cfg, err := m.mapRoot(root, ctx)
	if err != nil {
		return nil, err
	}
	logger().Debug("viewconfig: mapped paywall",
		"id", cfg.ID, "template", cfg.TemplateID.String(),
		"assets", len(cfg.Assets), "localizations", len(cfg.Localizations), "styles", len(cfg.Styles))
	return cfg, nil
}

type mapper struct {
	cfg        *ViewConfiguration
	defaultLoc *Localization
}

func idx(path string, i int) string { return fmt.Sprintf("%s[%d]", path, i) }

func (m *mapper) mapRoot(root *object, ctx PaywallContext) (*ViewConfiguration, error) {
	id, err := root.requireString("paywall_builder_id")
	if err != nil {
		return nil, err
	}
	conf, err := root.requireObject("paywall_builder_config")
	if err != nil {
		return nil, err
	}

	cfg := &ViewConfiguration{
		ID:            id,
		Context:       ctx,
		Assets:        make(map[string]Asset),
		Localizations: make(map[string]*Localization),
		Styles:        make(map[string]*Style),
	}
	m.cfg = cfg

	templateName, err := conf.requireString("template_id")
	if err != nil {
		return nil, err
	}
	if cfg.TemplateID, err = parseTemplateID(conf.sub("template_id"), templateName); err != nil {
		return nil, err
	}
	if cfg.IsHard, err = conf.optBool("is_hard_paywall", false); err != nil {
		return nil, err
	}
	if cfg.DefaultLocalization, err = conf.optString("default_localization", "en"); err != nil {
		return nil, err
	}
	if cfg.MainImageRelativeHeight, err = conf.optFloat("main_image_relative_height", DefaultMainImageRelativeHeight); err != nil {
		return nil, err
	}
	if h := cfg.MainImageRelativeHeight; h < 0 || h > 1 {
		return nil, uierr.DecodingFailed(conf.sub("main_image_relative_height"), "%v is outside 0..1", h)
	}

	// --- 1. Assets ---
	assets, err := conf.optArray("assets")
	if err != nil {
		return nil, err
	}
	if err := m.mapAssetList(conf.sub("assets"), assets, cfg.Assets); err != nil {
		return nil, err
	}

	// --- 2. Localizations ---
	locs, err := conf.optArray("localizations")
	if err != nil {
		return nil, err
	}
	for i, raw := range locs {
		loc, err := m.mapLocalization(idx(conf.sub("localizations"), i), raw)
		if err != nil {
			return nil, err
		}
		cfg.Localizations[loc.ID] = loc
	}
	if len(cfg.Localizations) > 0 {
		def, ok := cfg.Localizations[cfg.DefaultLocalization]
		if !ok {
			return nil, uierr.DecodingFailed(conf.sub("default_localization"), "localization %q is not defined", cfg.DefaultLocalization)
		}
		m.defaultLoc = def
	}

	// --- 3. Styles ---
	styles, err := conf.requireObject("styles")
	if err != nil {
		return nil, err
	}
	for _, name := range styles.keys {
		so, err := styles.requireObject(name)
		if err != nil {
			return nil, err
		}
		st, err := m.mapStyle(name, so)
		if err != nil {
			return nil, err
		}
		cfg.Styles[name] = st
		cfg.StyleOrder = append(cfg.StyleOrder, name)
	}
	if _, ok := cfg.Styles[DefaultStyle]; !ok {
		return nil, uierr.DecodingFailed(styles.sub(DefaultStyle), "required style is missing")
	}
	return cfg, nil
}

func parseTemplateID(field, s string) (TemplateID, error) {
	switch s {
	case "basic":
		return TemplateBasic, nil
	case "transparent":
		return TemplateTransparent, nil
	case "flat":
		return TemplateFlat, nil
	}
	return 0, uierr.UnsupportedData(field, s)
}

// --- Reference checks ---

func (m *mapper) lookupAsset(id string) (Asset, bool) {
	if m.defaultLoc != nil {
		if a, ok := m.defaultLoc.Assets[id]; ok {
			return a, true
		}
	}
	a, ok := m.cfg.Assets[id]
	return a, ok
}

func (m *mapper) assetRef(field, id string) error {
	if _, ok := m.lookupAsset(id); !ok {
		return uierr.DecodingFailed(field, "asset %q is not defined", id)
	}
	return nil
}

func (m *mapper) fontRef(field, id string) error {
	a, ok := m.lookupAsset(id)
	if !ok {
		return uierr.DecodingFailed(field, "font %q is not defined", id)
	}
	if _, ok := a.(FontAsset); !ok {
		return uierr.DecodingFailed(field, "asset %q is not a font", id)
	}
	return nil
}

func (m *mapper) fillRef(field, id string) error {
	a, ok := m.lookupAsset(id)
	if !ok {
		return uierr.DecodingFailed(field, "asset %q is not defined", id)
	}
	if _, ok := a.(FontAsset); ok {
		return uierr.DecodingFailed(field, "asset %q is a font, not a fill", id)
	}
	return nil
}

func (m *mapper) stringRef(field, id string) error {
	if m.defaultLoc == nil {
		return uierr.DecodingFailed(field, "string %q referenced without localizations", id)
	}
	if _, ok := m.defaultLoc.Strings[id]; !ok {
		return uierr.DecodingFailed(field, "string %q is not defined in %q", id, m.defaultLoc.ID)
	}
	return nil
}

// --- Assets ---

func (m *mapper) mapAssetList(path string, items []json.RawMessage, into map[string]Asset) error {
	for i, raw := range items {
		o, err := parseObject(idx(path, i), raw)
		if err != nil {
			return err
		}
		id, err := o.requireString("id")
		if err != nil {
			return err
		}
		a, err := mapAsset(o)
		if err != nil {
			return err
		}
		if _, dup := into[id]; dup {
			logger().Warn("viewconfig: duplicate asset id, last one wins", "id", id, "path", o.path)
		}
		into[id] = a
	}
	return nil
}

func mapAsset(o *object) (Asset, error) {
	typ, err := o.requireString("type")
	if err != nil {
		return nil, err
	}
	switch typ {
	case "color":
		s, err := o.requireString("value")
		if err != nil {
			return nil, err
		}
		c, err := ParseColor(s)
		if err != nil {
			return nil, uierr.Wrap(uierr.KindDecodingFailed, o.sub("value"), err)
		}
		return ColorAsset{Value: c}, nil
	case "linear-gradient":
		return mapGradient(o, GradientLinear)
	case "radial-gradient":
		return mapGradient(o, GradientRadial)
	case "conic-gradient":
		return mapGradient(o, GradientConic)
	case "image":
		img, err := mapImage(o)
		if err != nil {
			return nil, err
		}
		return *img, nil
	case "font":
		return mapFont(o)
	}
	return nil, uierr.UnsupportedData(o.sub("type"), typ)
}

func defaultGradientPoints(t GradientType) GradientPoints {
	switch t {
	case GradientRadial, GradientConic:
		return GradientPoints{X0: 0.5, Y0: 0.5, X1: 1, Y1: 0.5}
	}
	return GradientPoints{X0: 0.5, Y0: 0, X1: 0.5, Y1: 1}
}

func mapGradient(o *object, t GradientType) (Asset, error) {
	values, err := o.requireArray("values")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, uierr.DecodingFailed(o.sub("values"), "gradient needs at least one stop")
	}
	g := GradientAsset{Type: t, Points: defaultGradientPoints(t)}
	for i, raw := range values {
		so, err := parseObject(idx(o.sub("values"), i), raw)
		if err != nil {
			return nil, err
		}
		p, err := so.optFloat("p", 0)
		if err != nil {
			return nil, err
		}
		cs, err := so.requireString("color")
		if err != nil {
			return nil, err
		}
		c, err := ParseColor(cs)
		if err != nil {
			return nil, uierr.Wrap(uierr.KindDecodingFailed, so.sub("color"), err)
		}
		g.Stops = append(g.Stops, GradientStop{Position: p, Color: c})
	}
	sort.SliceStable(g.Stops, func(i, j int) bool { return g.Stops[i].Position < g.Stops[j].Position })

	po, err := o.optObject("points")
	if err != nil {
		return nil, err
	}
	if po != nil {
		pts := g.Points
		for key, dst := range map[string]*float64{"x0": &pts.X0, "y0": &pts.Y0, "x1": &pts.X1, "y1": &pts.Y1} {
			if *dst, err = po.optFloat(key, *dst); err != nil {
				return nil, err
			}
		}
		g.Points = pts
	}
	return g, nil
}

func decodeBase64(field, s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, uierr.Wrap(uierr.KindDecodingFailed, field, err)
	}
	return data, nil
}

func mapImage(o *object) (*ImageAsset, error) {
	img := &ImageAsset{}
	switch {
	case o.has("value"):
		s, err := o.requireString("value")
		if err != nil {
			return nil, err
		}
		if img.Data, err = decodeBase64(o.sub("value"), s); err != nil {
			return nil, err
		}
		img.Source = ImageBase64
	case o.has("url"):
		u, err := o.requireString("url")
		if err != nil {
			return nil, err
		}
		img.Source, img.URL = ImageRemote, u
	case o.has("file"):
		p, err := o.requireString("file")
		if err != nil {
			return nil, err
		}
		img.Source, img.Path = ImageFile, p
	default:
		return nil, uierr.DecodingFailed(o.path, "image needs one of value, url or file")
	}
	if o.has("preview_value") {
		s, err := o.requireString("preview_value")
		if err != nil {
			return nil, err
		}
		data, err := decodeBase64(o.sub("preview_value"), s)
		if err != nil {
			return nil, err
		}
		img.Preview = &ImageAsset{Source: ImageBase64, Data: data}
	}
	return img, nil
}

func parseTextAlign(field, s string) (TextAlign, error) {
	switch s {
	case "", "left", "start":
		return AlignLeft, nil
	case "center":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	}
	return 0, uierr.UnsupportedData(field, s)
}

func mapFont(o *object) (Asset, error) {
	f := FontAsset{}
	var err error
	if f.Family, err = o.optString("family_name", "sans-serif"); err != nil {
		return nil, err
	}
	if o.has("resources") {
		if err := o.decode("resources", &f.Resources); err != nil {
			return nil, err
		}
	}
	if f.Weight, err = o.optInt("weight", 400); err != nil {
		return nil, err
	}
	if f.Italic, err = o.optBool("italic", false); err != nil {
		return nil, err
	}
	if f.Size, err = o.optFloat("size", 15); err != nil {
		return nil, err
	}
	align, err := o.optString("horizontal_align", "left")
	if err != nil {
		return nil, err
	}
	if f.Align, err = parseTextAlign(o.sub("horizontal_align"), align); err != nil {
		return nil, err
	}
	if o.has("color") {
		s, err := o.requireString("color")
		if err != nil {
			return nil, err
		}
		c, err := ParseColor(s)
		if err != nil {
			return nil, uierr.Wrap(uierr.KindDecodingFailed, o.sub("color"), err)
		}
		f.Color = &c
	}
	return f, nil
}

// --- Localizations ---

func (m *mapper) mapLocalization(path string, raw json.RawMessage) (*Localization, error) {
	o, err := parseObject(path, raw)
	if err != nil {
		return nil, err
	}
	loc := &Localization{
		Strings: make(map[string]LocalizedString),
		Assets:  make(map[string]Asset),
	}
	if loc.ID, err = o.requireString("id"); err != nil {
		return nil, err
	}
	if loc.RightToLeft, err = o.optBool("is_right_to_left", false); err != nil {
		return nil, err
	}
	strs, err := o.optArray("strings")
	if err != nil {
		return nil, err
	}
	for i, sraw := range strs {
		so, err := parseObject(idx(o.sub("strings"), i), sraw)
		if err != nil {
			return nil, err
		}
		id, err := so.requireString("id")
		if err != nil {
			return nil, err
		}
		var s LocalizedString
		if s.Value, err = so.optString("value", ""); err != nil {
			return nil, err
		}
		if s.Fallback, err = so.optString("fallback", ""); err != nil {
			return nil, err
		}
		if s.HasTags, err = so.optBool("has_tags", false); err != nil {
			return nil, err
		}
		loc.Strings[id] = s
	}
	assets, err := o.optArray("assets")
	if err != nil {
		return nil, err
	}
	if err := m.mapAssetList(o.sub("assets"), assets, loc.Assets); err != nil {
		return nil, err
	}
	return loc, nil
}
