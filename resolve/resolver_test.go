package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/examples"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

func basicConfig(t *testing.T) *viewconfig.ViewConfiguration {
	t.Helper()
	cfg, err := viewconfig.Map(examples.MustDocument(examples.Basic), viewconfig.PaywallContext{PaywallID: "pw"})
	require.NoError(t, err)
	return cfg
}

func run(id string) *viewconfig.Text {
	return &viewconfig.Text{Items: []viewconfig.TextItem{&viewconfig.TextRun{StringID: id, Font: "font_regular"}}}
}

func TestMatchLocale(t *testing.T) {
	cfg := basicConfig(t)
	tests := []struct{ in, want string }{
		{"es", "es"},
		{"es-MX", "es"},
		{"es_ES", "es"},
		{"en-GB", "en"},
		{"fr", "en"},
		{"", "en"},
		{"not a locale", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLocale(cfg, tt.in))
		})
	}
}

func TestAssetLocaleOverride(t *testing.T) {
	cfg := basicConfig(t)
	es, err := NewResolver(cfg, "es-MX", Options{}).Image("cover")
	require.NoError(t, err)
	assert.Contains(t, es.URL, "cover_es.png")

	en, err := NewResolver(cfg, "en", Options{}).Image("cover")
	require.NoError(t, err)
	assert.Contains(t, en.URL, "cover.png")
}

func TestMissingIdsAreDecodingFailed(t *testing.T) {
	r := NewResolver(basicConfig(t), "en", Options{})
	_, err := r.Asset("nope")
	assert.ErrorIs(t, err, uierr.ErrDecodingFailed)
	_, err = r.String("nope")
	assert.ErrorIs(t, err, uierr.ErrDecodingFailed)
	_, err = r.Font("accent")
	assert.ErrorIs(t, err, uierr.ErrDecodingFailed)
	_, err = r.Image("accent")
	assert.ErrorIs(t, err, uierr.ErrDecodingFailed)
}

func TestStringFallsBackToDefaultLocalization(t *testing.T) {
	r := NewResolver(basicConfig(t), "es", Options{})
	s, err := r.String("restore")
	require.NoError(t, err)
	assert.Equal(t, "Restore purchases", s.Value)
}

func TestProductPlaceholders(t *testing.T) {
	r := NewResolver(basicConfig(t), "en", Options{})
	products := commerce.SampleProducts()
	annual, monthly := &products[0], &products[1]

	tc, err := r.Text(run("product_subtitle"), annual)
	require.NoError(t, err)
	assert.Equal(t, "$59.99 or $4.93/month", tc.Plain())

	tc, err = r.Text(run("product_subtitle_trial"), annual)
	require.NoError(t, err)
	assert.Equal(t, "Try 1 week free, then $59.99", tc.Plain())

	tc, err = r.Text(run("product_title"), monthly)
	require.NoError(t, err)
	assert.Equal(t, "Monthly", tc.Plain())

	// no trial on the monthly product: the fallback string is used
	tc, err = r.Text(run("product_subtitle_trial"), monthly)
	require.NoError(t, err)
	assert.Equal(t, "Free trial available", tc.Plain())

	// unbound product: fallback
	tc, err = r.Text(run("product_subtitle"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Billed periodically", tc.Plain())
}

func TestUnresolvedWithoutFallbackDropsTag(t *testing.T) {
	r := NewResolver(basicConfig(t), "en", Options{})
	got := r.Substitute(viewconfig.LocalizedString{Value: "a </X/> b", HasTags: true}, nil)
	assert.Equal(t, "a  b", got)

	got = r.Substitute(viewconfig.LocalizedString{Value: "</X/> stays", HasTags: false}, nil)
	assert.Equal(t, "</X/> stays", got)
}

func TestCustomTags(t *testing.T) {
	r := NewResolver(basicConfig(t), "en", Options{
		Tags: func(tag string) (string, bool) {
			if tag == "USERNAME" {
				return "Ada", true
			}
			return "", false
		},
	})
	got := r.Substitute(viewconfig.LocalizedString{Value: "Hi </USERNAME/>", HasTags: true}, nil)
	assert.Equal(t, "Hi Ada", got)
}

func TestTimerTag(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewResolver(basicConfig(t), "en", Options{
		Now: func() time.Time { return now },
		Timers: func(id string) time.Time {
			if id == "offer" {
				return now.Add(26*time.Hour + 3*time.Minute + 4*time.Second)
			}
			return time.Time{}
		},
	})
	tc, err := r.Text(run("timer"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Offer ends in 26:03:04", tc.Plain())
	assert.Equal(t, []string{"offer"}, r.TimerIDs(run("timer")))

	noTimers := NewResolver(basicConfig(t), "en", Options{})
	tc, err = noTimers.Text(run("timer"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Limited offer", tc.Plain())
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatRemaining(-time.Second))
	assert.Equal(t, "01:01:01", FormatRemaining(time.Hour+time.Minute+time.Second+500*time.Millisecond))
}

func TestTextSpanStyling(t *testing.T) {
	r := NewResolver(basicConfig(t), "en", Options{})
	text := &viewconfig.Text{
		Multiple: true,
		Align:    viewconfig.AlignCenter,
		Items: []viewconfig.TextItem{
			&viewconfig.TextBullet{Image: &viewconfig.TextImage{Image: "check_icon", Width: 16, Height: 16, Tint: "accent"}, Space: 8},
			&viewconfig.TextRun{StringID: "feature_sync", Font: "font_bold", Size: 18, Color: "accent"},
			viewconfig.TextNewLine{},
			&viewconfig.TextRun{StringID: "feature_offline", Font: "font_regular"},
		},
	}
	tc, err := r.Text(text, nil)
	require.NoError(t, err)
	require.Len(t, tc.Spans, 5)
	assert.Equal(t, viewconfig.AlignCenter, tc.Align)

	require.NotNil(t, tc.Spans[0].Image)
	require.NotNil(t, tc.Spans[0].Image.Tint)
	assert.Equal(t, viewconfig.Color(0xFF6C3CE1), *tc.Spans[0].Image.Tint)
	assert.Equal(t, 8.0, tc.Spans[1].Space)

	assert.Equal(t, 18.0, tc.Spans[2].Font.Size)
	assert.Equal(t, 700, tc.Spans[2].Font.Weight)
	assert.Equal(t, viewconfig.Color(0xFF6C3CE1), tc.Spans[2].Color)
	assert.True(t, tc.Spans[3].NewLine)

	assert.Equal(t, 15.0, tc.Spans[4].Font.Size)
	assert.Equal(t, viewconfig.Color(0xFF1A1A1A), tc.Spans[4].Color, "font color applies without a run color")
}

func TestDrawableResolvesAssets(t *testing.T) {
	r := NewResolver(basicConfig(t), "en", Options{})
	d, err := r.Drawable(&viewconfig.Shape{
		Type:       viewconfig.ShapeRect,
		Background: "accent",
		Border:     &viewconfig.Border{Color: "cell_border", Thickness: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, viewconfig.ColorAsset{Value: 0xFF6C3CE1}, d.Fill)
	assert.Equal(t, viewconfig.ColorAsset{Value: 0xFFD0D0DA}, d.Border)

	d, err = r.Drawable(nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = r.Drawable(&viewconfig.Shape{Background: "missing"})
	assert.ErrorIs(t, err, uierr.ErrDecodingFailed)
}

func TestPersonalized(t *testing.T) {
	cfg := basicConfig(t)
	p := commerce.SampleProducts()[0]
	assert.False(t, NewResolver(cfg, "en", Options{}).Personalized(p))
	r := NewResolver(cfg, "en", Options{Personalized: func(p commerce.Product) bool { return p.VendorProductID == "premium.annual" }})
	assert.True(t, r.Personalized(p))
}
