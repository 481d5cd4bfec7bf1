package viewconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/examples"
	"github.com/waozixyz/paywall/uierr"
)

func mapExample(t *testing.T, name string) *ViewConfiguration {
	t.Helper()
	cfg, err := Map(examples.MustDocument(name), PaywallContext{PaywallID: "pw_1", Locale: "en"})
	require.NoError(t, err)
	return cfg
}

// mutate decodes the document into generic maps, applies fn and re-encodes.
func mutate(t *testing.T, name string, fn func(root map[string]any)) []byte {
	t.Helper()
	var root map[string]any
	require.NoError(t, json.Unmarshal(examples.MustDocument(name), &root))
	fn(root)
	raw, err := json.Marshal(root)
	require.NoError(t, err)
	return raw
}

func config(root map[string]any) map[string]any {
	return root["paywall_builder_config"].(map[string]any)
}

func defaultStyle(root map[string]any) map[string]any {
	return config(root)["styles"].(map[string]any)["default"].(map[string]any)
}

func TestMapBasic(t *testing.T) {
	cfg := mapExample(t, examples.Basic)

	assert.Equal(t, "pb_basic_annual", cfg.ID)
	assert.Equal(t, "pw_1", cfg.Context.PaywallID)
	assert.Equal(t, TemplateBasic, cfg.TemplateID)
	assert.False(t, cfg.IsHard)
	assert.Equal(t, "en", cfg.DefaultLocalization)
	assert.InDelta(t, 0.4, cfg.MainImageRelativeHeight, 1e-9)
	assert.Len(t, cfg.Localizations, 2)

	accent, ok := cfg.Assets["accent_soft"].(ColorAsset)
	require.True(t, ok)
	assert.Equal(t, ARGB(0x33, 0x6c, 0x3c, 0xe1), accent.Value)

	grad, ok := cfg.Assets["purchase_gradient"].(GradientAsset)
	require.True(t, ok)
	assert.Equal(t, GradientLinear, grad.Type)
	require.Len(t, grad.Stops, 2)
	assert.Equal(t, GradientPoints{X0: 0, Y0: 0.5, X1: 1, Y1: 0.5}, grad.Points)

	cover, ok := cfg.Assets["cover"].(ImageAsset)
	require.True(t, ok)
	assert.Equal(t, ImageRemote, cover.Source)
	require.NotNil(t, cover.Preview)
	assert.NotEmpty(t, cover.Preview.Data)

	st := cfg.DefaultStyle()
	require.NotNil(t, st)
	pb := st.ProductBlock
	assert.Equal(t, ProductsVertical, pb.Type)
	require.Len(t, pb.Products, 2)
	assert.True(t, pb.Products[0].IsMain)
	assert.False(t, pb.Products[1].IsMain)
	require.NotNil(t, pb.Products[0].TagText)
	require.NotNil(t, pb.Products[0].SelectedShape)
	require.NotNil(t, pb.Products[0].SelectedShape.Border)
	assert.Equal(t, 2.0, pb.Products[0].SelectedShape.Border.Thickness)

	require.NotNil(t, st.FeatureBlock)
	require.Len(t, st.FeatureBlock.List, 3)
	var ids []string
	for _, txt := range st.FeatureBlock.List {
		require.True(t, txt.Multiple)
		run, ok := txt.Items[1].(*TextRun)
		require.True(t, ok)
		ids = append(ids, run.StringID)
	}
	assert.Equal(t, []string{"feature_sync", "feature_offline", "feature_support"}, ids)

	require.NotNil(t, st.FooterBlock)
	require.Len(t, st.FooterBlock.Buttons, 2)
	assert.Equal(t, "restore", st.FooterBlock.Buttons[0].Name)
	assert.Equal(t, ActionRestore, st.FooterBlock.Buttons[0].Button.Action.Type)
	assert.Equal(t, "https://example.com/terms", st.FooterBlock.Buttons[1].Button.Action.URL)

	closeBtn := st.Button(CompCloseButton)
	require.NotNil(t, closeBtn)
	require.Len(t, closeBtn.TransitionIn, 1)
	assert.Equal(t, TransitionFade, closeBtn.TransitionIn[0].Type)
	assert.Equal(t, "cover", st.Image(CompCoverImage))
}

func TestStyleComponentsKeepDocumentOrder(t *testing.T) {
	cfg := mapExample(t, examples.Basic)
	var names []string
	for _, c := range cfg.DefaultStyle().Components {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"background", "cover_image", CompMainContentShape, CompTitleRows,
		"timer_text", CompCloseButton, CompPurchaseButton,
	}, names)
}

func TestMapAllExamples(t *testing.T) {
	want := map[string]TemplateID{
		examples.Basic:       TemplateBasic,
		examples.Flat:        TemplateFlat,
		examples.Transparent: TemplateTransparent,
	}
	for _, name := range examples.Names() {
		t.Run(name, func(t *testing.T) {
			cfg := mapExample(t, name)
			assert.Equal(t, want[name], cfg.TemplateID)
		})
	}
}

func TestMapTimeline(t *testing.T) {
	cfg := mapExample(t, examples.Transparent)
	fb := cfg.DefaultStyle().FeatureBlock
	require.NotNil(t, fb)
	assert.Equal(t, FeaturesTimeline, fb.Type)
	require.Len(t, fb.Timeline, 3)
	run, _ := fb.Timeline[2].Text.Single()
	require.NotNil(t, run)
	assert.Equal(t, "tl_billing", run.StringID)
	assert.Equal(t, "timeline_line", fb.Timeline[0].Connector)
	assert.Equal(t, ShapeCircle, fb.Timeline[0].Shape.Type)
	assert.Equal(t, ProductsHorizontal, cfg.DefaultStyle().ProductBlock.Type)
	assert.True(t, cfg.DefaultStyle().ProductBlock.Products[1].IsMain)
}

func TestMapUnsupported(t *testing.T) {
	tests := []struct {
		name string
		edit func(root map[string]any)
	}{
		{"template", func(root map[string]any) { config(root)["template_id"] = "fancy" }},
		{"products block type", func(root map[string]any) {
			defaultStyle(root)["products_block"].(map[string]any)["type"] = "grid"
		}},
		{"features block type", func(root map[string]any) {
			defaultStyle(root)["features_block"].(map[string]any)["type"] = "carousel"
		}},
		{"asset type", func(root map[string]any) {
			assets := config(root)["assets"].([]any)
			assets[0].(map[string]any)["type"] = "video"
		}},
		{"shape value", func(root map[string]any) {
			defaultStyle(root)[CompMainContentShape].(map[string]any)["value"] = "star"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Map(mutate(t, examples.Basic, tt.edit), PaywallContext{})
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, uierr.ErrUnsupportedData)
		})
	}
}

func TestMapDecodingFailed(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(root map[string]any)
	}{
		{"missing id", "paywall_builder_id", func(root map[string]any) { delete(root, "paywall_builder_id") }},
		{"missing config", "paywall_builder_config", func(root map[string]any) { delete(root, "paywall_builder_config") }},
		{"missing products block", "paywall_builder_config.styles.default.products_block", func(root map[string]any) {
			delete(defaultStyle(root), "products_block")
		}},
		{"missing default style", "paywall_builder_config.styles.default", func(root map[string]any) {
			styles := config(root)["styles"].(map[string]any)
			styles["other"] = styles["default"]
			delete(styles, "default")
		}},
		{"dangling asset", "paywall_builder_config.styles.default.background", func(root map[string]any) {
			defaultStyle(root)["background"] = "nope"
		}},
		{"dangling font", "paywall_builder_config.styles.default.title_rows.font", func(root map[string]any) {
			defaultStyle(root)[CompTitleRows].(map[string]any)["font"] = "accent"
		}},
		{"dangling string", "paywall_builder_config.styles.default.title_rows.string_id", func(root map[string]any) {
			defaultStyle(root)[CompTitleRows].(map[string]any)["string_id"] = "missing"
		}},
		{"bad color", "paywall_builder_config.assets[0].value", func(root map[string]any) {
			config(root)["assets"].([]any)[0].(map[string]any)["value"] = "#12"
		}},
		{"relative height", "paywall_builder_config.main_image_relative_height", func(root map[string]any) {
			config(root)["main_image_relative_height"] = 1.5
		}},
		{"main product index", "paywall_builder_config.styles.default.products_block.main_product_index", func(root map[string]any) {
			defaultStyle(root)["products_block"].(map[string]any)["main_product_index"] = 5
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Map(mutate(t, examples.Basic, tt.edit), PaywallContext{})
			assert.Nil(t, cfg)
			require.ErrorIs(t, err, uierr.ErrDecodingFailed)
			var pe *uierr.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestMapNotAnObject(t *testing.T) {
	_, err := Map([]byte(`[1,2]`), PaywallContext{})
	assert.ErrorIs(t, err, uierr.ErrDecodingFailed)
}

func TestMapShapes(t *testing.T) {
	raw := mutate(t, examples.Basic, func(root map[string]any) {
		st := defaultStyle(root)
		st["up"] = map[string]any{"type": "shape", "value": "curve_up"}
		st["down_tall"] = map[string]any{"type": "shape", "value": "curve_down", "arc_height": 48}
		st["corners"] = map[string]any{"type": "shape", "rect_corner_radius": map[string]any{"tl": 1, "tr": 2, "br": 3, "bl": 4}}
		st["note"] = map[string]any{"type": "sticker", "order": 3, "image": "check_icon", "scale": 2}
	})
	cfg, err := Map(raw, PaywallContext{})
	require.NoError(t, err)
	st := cfg.DefaultStyle()

	assert.Equal(t, -float64(DefaultArcHeight), st.Shape("up").ArcHeight)
	assert.Equal(t, 48.0, st.Shape("down_tall").ArcHeight)
	assert.Equal(t, CornerRadii{1, 2, 3, 4}, st.Shape("corners").Radii)

	c, ok := st.Component("note")
	require.True(t, ok)
	obj, ok := c.(*CustomObject)
	require.True(t, ok)
	assert.Equal(t, "sticker", obj.Type)
	img, ok := obj.Property("image")
	require.True(t, ok)
	assert.Equal(t, Reference{AssetID: "check_icon"}, img)
	assert.Equal(t, 2.0, obj.Attributes["scale"])
}

func TestCustomObjectPropertiesSortByOrder(t *testing.T) {
	doc := `{"paywall_builder_id":"x","paywall_builder_config":{"template_id":"flat",
		"assets":[{"id":"c","type":"color","value":"#000000"}],
		"styles":{"default":{"products_block":{"type":"single"},
		"bag":{"type":"thing","b":{"type":"thing","order":2},"a":{"type":"thing","order":1},"z":{"type":"thing"},"c":"c"}}}}}`
	cfg, err := Map([]byte(doc), PaywallContext{})
	require.NoError(t, err)
	c, _ := cfg.DefaultStyle().Component("bag")
	var keys []string
	for _, p := range c.(*CustomObject).Properties {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"z", "c", "a", "b"}, keys)
}

func TestConfigurationLookups(t *testing.T) {
	cfg := mapExample(t, examples.Basic)

	a, ok := cfg.Asset("cover", "es")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/paywalls/basic/cover_es.png", a.(ImageAsset).URL)
	a, _ = cfg.Asset("cover", "fr")
	assert.Equal(t, "https://cdn.example.com/paywalls/basic/cover.png", a.(ImageAsset).URL)

	s, ok := cfg.String("restore", "es")
	require.True(t, ok)
	assert.Equal(t, "Restore purchases", s.Value)
	s, _ = cfg.String("title", "es")
	assert.Equal(t, "Desbloquea Premium", s.Value)
}

func TestRemoteImageURLs(t *testing.T) {
	urls, err := RemoteImageURLs(examples.MustDocument(examples.Basic))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/paywalls/basic/cover.png",
		"https://cdn.example.com/paywalls/basic/cover_es.png",
	}, urls)

	_, err = RemoteImageURLs([]byte(`{"paywall_builder_id":"x"}`))
	assert.ErrorIs(t, err, uierr.ErrDecodingFailed)
}

func TestSubtitleFor(t *testing.T) {
	def := &Text{}
	trial := &Text{}
	upfront := &Text{}
	p := ProductInfo{Subtitle: def, SubtitleFreeTrial: trial, SubtitlePayUpfront: upfront}

	assert.Same(t, trial, p.SubtitleFor(commerce.PaymentFreeTrial))
	assert.Same(t, def, p.SubtitleFor(commerce.PaymentPayAsYouGo))
	assert.Same(t, upfront, p.SubtitleFor(commerce.PaymentPayUpfront))
	assert.Same(t, def, p.SubtitleFor(commerce.PaymentNone))
}
