// Package resolve turns asset and string ids of a mapped configuration into
// concrete values for one presentation locale.
package resolve

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/waozixyz/paywall/commerce"
	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/uierr"
	"github.com/waozixyz/paywall/viewconfig"
)

// TagResolver supplies values for custom </TAG/> placeholders.
type TagResolver func(tag string) (string, bool)

// PersonalizedResolver reports whether a purchase of p uses personalized pricing.
type PersonalizedResolver func(p commerce.Product) bool

// TimerResolver returns the end time of a named timer. The zero time means
// the timer is unknown.
type TimerResolver func(id string) time.Time

type Options struct {
	Tags         TagResolver
	Timers       TimerResolver
	Personalized PersonalizedResolver
	Now          func() time.Time
}

// Resolver is bound to one configuration and one active localization.
type Resolver struct {
	cfg    *viewconfig.ViewConfiguration
	locale string
	opts   Options
}

// NewResolver picks the localization that best matches locale and falls back
// to the configuration's default localization.
func NewResolver(cfg *viewconfig.ViewConfiguration, locale string, opts Options) *Resolver {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Resolver{cfg: cfg, opts: opts}
	r.locale = MatchLocale(cfg, locale)
	logger().Debug("Resolver: locale selected", "requested", locale, "active", r.locale)
	return r
}

// MatchLocale returns the id of the localization that best serves the
// requested BCP 47 locale, or the default localization id.
func MatchLocale(cfg *viewconfig.ViewConfiguration, locale string) string {
	if _, ok := cfg.Localizations[locale]; ok {
		return locale
	}
	ids := []string{cfg.DefaultLocalization}
	for id := range cfg.Localizations {
		if id != cfg.DefaultLocalization {
			ids = append(ids, id)
		}
	}
	// deterministic candidate order after the default
	slices.Sort(ids[1:])

	var tags []language.Tag
	var tagIDs []string
	for _, id := range ids {
		t, err := language.Parse(normalizeLocale(id))
		if err != nil {
			continue
		}
		tags = append(tags, t)
		tagIDs = append(tagIDs, id)
	}
	want, err := language.Parse(normalizeLocale(locale))
	if err != nil || len(tags) == 0 {
		return cfg.DefaultLocalization
	}
	_, i, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return cfg.DefaultLocalization
	}
	return tagIDs[i]
}

func normalizeLocale(s string) string { return strings.ReplaceAll(s, "_", "-") }

func (r *Resolver) Config() *viewconfig.ViewConfiguration { return r.cfg }

// Locale is the active localization id.
func (r *Resolver) Locale() string { return r.locale }

func (r *Resolver) RightToLeft() bool {
	if l, ok := r.cfg.Localizations[r.locale]; ok {
		return l.RightToLeft
	}
	return false
}

// Personalized asks the integrator whether p uses personalized pricing.
func (r *Resolver) Personalized(p commerce.Product) bool {
	if r.opts.Personalized == nil {
		return false
	}
	return r.opts.Personalized(p)
}

func (r *Resolver) Asset(id string) (viewconfig.Asset, error) {
	a, ok := r.cfg.Asset(id, r.locale)
	if !ok {
		return nil, uierr.DecodingFailed("assets", "asset %q is not defined for locale %q", id, r.locale)
	}
	return a, nil
}

// Color resolves a color asset. A gradient yields its first stop.
func (r *Resolver) Color(id string) (viewconfig.Color, error) {
	a, err := r.Asset(id)
	if err != nil {
		return 0, err
	}
	switch c := a.(type) {
	case viewconfig.ColorAsset:
		return c.Value, nil
	case viewconfig.GradientAsset:
		if len(c.Stops) > 0 {
			return c.Stops[0].Color, nil
		}
	}
	return 0, uierr.DecodingFailed("assets", "asset %q is not a color", id)
}

func (r *Resolver) Font(id string) (viewconfig.FontAsset, error) {
	a, err := r.Asset(id)
	if err != nil {
		return viewconfig.FontAsset{}, err
	}
	f, ok := a.(viewconfig.FontAsset)
	if !ok {
		return viewconfig.FontAsset{}, uierr.DecodingFailed("assets", "asset %q is not a font", id)
	}
	return f, nil
}

func (r *Resolver) Image(id string) (viewconfig.ImageAsset, error) {
	a, err := r.Asset(id)
	if err != nil {
		return viewconfig.ImageAsset{}, err
	}
	img, ok := a.(viewconfig.ImageAsset)
	if !ok {
		return viewconfig.ImageAsset{}, uierr.DecodingFailed("assets", "asset %q is not an image", id)
	}
	return img, nil
}

func (r *Resolver) String(id string) (viewconfig.LocalizedString, error) {
	s, ok := r.cfg.String(id, r.locale)
	if !ok {
		return viewconfig.LocalizedString{}, uierr.DecodingFailed("localizations", "string %q is not defined for locale %q", id, r.locale)
	}
	return s, nil
}

// Drawable resolves the fill and border assets of s. A nil shape yields nil.
func (r *Resolver) Drawable(s *viewconfig.Shape) (*shape.Drawable, error) {
	if s == nil {
		return nil, nil
	}
	var fill, border viewconfig.Asset
	var err error
	if s.Background != "" {
		if fill, err = r.Asset(s.Background); err != nil {
			return nil, err
		}
	}
	if s.Border != nil && s.Border.Color != "" {
		if border, err = r.Asset(s.Border.Color); err != nil {
			return nil, err
		}
	}
	return shape.NewDrawable(s, fill, border), nil
}

// FillDrawable is a plain rectangle filled with the asset id.
func (r *Resolver) FillDrawable(id string) (*shape.Drawable, error) {
	a, err := r.Asset(id)
	if err != nil {
		return nil, err
	}
	return shape.NewDrawable(nil, a, nil), nil
}

// Text builds styled content for t. Product placeholders resolve against p,
// which may be nil before products are bound.
func (r *Resolver) Text(t *viewconfig.Text, p *commerce.Product) (*render.TextContent, error) {
	if t == nil {
		return nil, nil
	}
	out := &render.TextContent{Align: t.Align}
	for _, item := range t.Items {
		switch it := item.(type) {
		case *viewconfig.TextRun:
			s, err := r.run(it, p)
			if err != nil {
				return nil, err
			}
			out.Spans = append(out.Spans, s)
		case viewconfig.TextNewLine:
			var font render.FontSpec
			if n := len(out.Spans); n > 0 {
				font = out.Spans[n-1].Font
			}
			out.Spans = append(out.Spans, render.Span{NewLine: true, Font: font})
		case viewconfig.TextSpace:
			out.Spans = append(out.Spans, render.Span{Space: it.Value})
		case *viewconfig.TextImage:
			s, err := r.inlineImage(it)
			if err != nil {
				return nil, err
			}
			out.Spans = append(out.Spans, s)
		case *viewconfig.TextBullet:
			var (
				s   render.Span
				err error
			)
			if it.Image != nil {
				s, err = r.inlineImage(it.Image)
			} else {
				s, err = r.run(it.Text, p)
			}
			if err != nil {
				return nil, err
			}
			out.Spans = append(out.Spans, s, render.Span{Space: it.Space})
		default:
			panic("resolve: unreachable text item")
		}
	}
	return out, nil
}

const (
	defaultTextSize  = 15
	defaultTextColor = viewconfig.Color(0xFF000000)
)

func (r *Resolver) run(run *viewconfig.TextRun, p *commerce.Product) (render.Span, error) {
	font, err := r.Font(run.Font)
	if err != nil {
		return render.Span{}, err
	}
	str, err := r.String(run.StringID)
	if err != nil {
		return render.Span{}, err
	}
	span := render.Span{
		Text: r.Substitute(str, p),
		Font: render.FontSpec{Family: font.Family, Size: font.Size, Weight: font.Weight, Italic: font.Italic},
	}
	if run.Size > 0 {
		span.Font.Size = run.Size
	}
	if span.Font.Size <= 0 {
		span.Font.Size = defaultTextSize
	}
	switch {
	case run.Color != "":
		if span.Color, err = r.Color(run.Color); err != nil {
			return render.Span{}, err
		}
	case font.Color != nil:
		span.Color = *font.Color
	default:
		span.Color = defaultTextColor
	}
	return span, nil
}

func (r *Resolver) inlineImage(ti *viewconfig.TextImage) (render.Span, error) {
	img, err := r.Image(ti.Image)
	if err != nil {
		return render.Span{}, err
	}
	ii := &render.InlineImage{AssetID: ti.Image, Asset: img, W: ti.Width, H: ti.Height}
	if ti.Tint != "" {
		c, err := r.Color(ti.Tint)
		if err != nil {
			return render.Span{}, err
		}
		ii.Tint = &c
	}
	return render.Span{Image: ii}, nil
}
