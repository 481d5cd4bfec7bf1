// viewconfig/types.go

// Package viewconfig maps the server-delivered paywall document into a typed,
// immutable ViewConfiguration.
package viewconfig

import (
	"time"

	"github.com/waozixyz/paywall/commerce"
)

// DefaultStyle is the only style a configuration is required to carry.
const DefaultStyle = "default"

// DefaultMainImageRelativeHeight applies when the document omits the field.
const DefaultMainImageRelativeHeight = 0.4

type TemplateID uint8

const (
	TemplateBasic TemplateID = iota + 1
	TemplateTransparent
	TemplateFlat
)

func (t TemplateID) String() string {
	switch t {
	case TemplateBasic:
		return "basic"
	case TemplateTransparent:
		return "transparent"
	case TemplateFlat:
		return "flat"
	}
	return "unknown"
}

// ReversedFlow reports whether the template stacks content bottom-up.
func (t TemplateID) ReversedFlow() bool { return t == TemplateTransparent }

// PaywallContext carries caller-side identifiers into the mapped configuration.
type PaywallContext struct {
	PaywallID string
	Locale    string
}

// ViewConfiguration is the typed paywall document. It is not mutated after Map.
type ViewConfiguration struct {
	ID                      string
	Context                 PaywallContext
	TemplateID              TemplateID
	IsHard                  bool
	DefaultLocalization     string
	MainImageRelativeHeight float64
	Assets                  map[string]Asset
	Localizations           map[string]*Localization
	Styles                  map[string]*Style
	StyleOrder              []string
}

// Asset looks an id up in the locale override first, then in the base map
// and finally in the default localization's overrides.
func (c *ViewConfiguration) Asset(id, locale string) (Asset, bool) {
	if l, ok := c.Localizations[locale]; ok {
		if a, ok := l.Assets[id]; ok {
			return a, true
		}
	}
	if a, ok := c.Assets[id]; ok {
		return a, true
	}
	if l, ok := c.Localizations[c.DefaultLocalization]; ok {
		if a, ok := l.Assets[id]; ok {
			return a, true
		}
	}
	return nil, false
}

// String looks a string id up in the given localization, then the default one.
func (c *ViewConfiguration) String(id, locale string) (LocalizedString, bool) {
	if l, ok := c.Localizations[locale]; ok {
		if s, ok := l.Strings[id]; ok {
			return s, true
		}
	}
	if l, ok := c.Localizations[c.DefaultLocalization]; ok {
		if s, ok := l.Strings[id]; ok {
			return s, true
		}
	}
	return LocalizedString{}, false
}

// Style returns the named style or nil.
func (c *ViewConfiguration) Style(name string) *Style { return c.Styles[name] }

// DefaultStyle returns the required "default" style.
func (c *ViewConfiguration) DefaultStyle() *Style { return c.Styles[DefaultStyle] }

// --- Assets ---

// Asset is one of ColorAsset, GradientAsset, ImageAsset, FontAsset.
type Asset interface{ isAsset() }

type ColorAsset struct {
	Value Color
}

type GradientType uint8

const (
	GradientLinear GradientType = iota + 1
	GradientRadial
	GradientConic
)

type GradientStop struct {
	Position float64
	Color    Color
}

// GradientPoints are bounds-relative (0..1) start and end points.
type GradientPoints struct {
	X0, Y0, X1, Y1 float64
}

type GradientAsset struct {
	Type   GradientType
	Stops  []GradientStop
	Points GradientPoints
}

type ImageSource uint8

const (
	ImageBase64 ImageSource = iota + 1
	ImageFile
	ImageRemote
)

type ImageAsset struct {
	Source  ImageSource
	Data    []byte // ImageBase64
	Path    string // ImageFile
	URL     string // ImageRemote
	Preview *ImageAsset
}

type TextAlign uint8

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

type FontAsset struct {
	Family    string
	Resources []string
	Weight    int
	Italic    bool
	Size      float64
	Align     TextAlign
	Color     *Color
}

func (ColorAsset) isAsset()    {}
func (GradientAsset) isAsset() {}
func (ImageAsset) isAsset()    {}
func (FontAsset) isAsset()     {}

// --- Localizations ---

type LocalizedString struct {
	Value    string
	Fallback string
	HasTags  bool
}

type Localization struct {
	ID          string
	Strings     map[string]LocalizedString
	Assets      map[string]Asset
	RightToLeft bool
}

// --- Components ---

// Component is one of *Shape, *Text, *Button, Reference, *ProductObject,
// *CustomObject.
type Component interface{ isComponent() }

type ShapeType uint8

const (
	ShapeRect ShapeType = iota + 1
	ShapeCircle
	ShapeRectWithArc
)

// DefaultArcHeight is the magnitude used by curve_up/curve_down shapes
// without an explicit arc_height.
const DefaultArcHeight = 32

type CornerRadii struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

func UniformRadii(r float64) CornerRadii { return CornerRadii{r, r, r, r} }

func (c CornerRadii) IsZero() bool {
	return c.TopLeft == 0 && c.TopRight == 0 && c.BottomRight == 0 && c.BottomLeft == 0
}

type Border struct {
	Color     string // asset id
	Thickness float64
}

// Shape describes a fill geometry. ArcHeight > 0 curves the top edge
// downward, ArcHeight < 0 replaces the bottom edge with an upward bow.
type Shape struct {
	Type       ShapeType
	Radii      CornerRadii
	ArcHeight  float64
	Background string // asset id, may be empty
	Border     *Border
}

// Text is either a single run or an ordered mix of items.
type Text struct {
	Multiple bool
	Items    []TextItem
	Align    TextAlign
}

// Single returns the run of a single-run text.
func (t *Text) Single() (*TextRun, bool) {
	if t.Multiple || len(t.Items) != 1 {
		return nil, false
	}
	r, ok := t.Items[0].(*TextRun)
	return r, ok
}

// TextItem is one of *TextRun, TextNewLine, TextSpace, *TextImage, *TextBullet.
type TextItem interface{ isTextItem() }

type TextRun struct {
	StringID string
	Font     string // asset id
	Size     float64
	Color    string // asset id, empty means font color
	Align    TextAlign
}

type TextNewLine struct{}

type TextSpace struct {
	Value float64
}

type TextImage struct {
	Image  string // asset id
	Width  float64
	Height float64
	Tint   string // asset id, may be empty
}

// TextBullet prefixes a run with either a text or an image glyph.
type TextBullet struct {
	Text  *TextRun
	Image *TextImage
	Space float64
}

func (*TextRun) isTextItem()    {}
func (TextNewLine) isTextItem() {}
func (TextSpace) isTextItem()   {}
func (*TextImage) isTextItem()  {}
func (*TextBullet) isTextItem() {}

type ButtonAlign uint8

const (
	ButtonCenter ButtonAlign = iota
	ButtonLeading
	ButtonTrailing
	ButtonFill
)

type ActionType uint8

const (
	ActionClose ActionType = iota + 1
	ActionOpenURL
	ActionRestore
	ActionCustom
	ActionPurchase
)

func (a ActionType) String() string {
	switch a {
	case ActionClose:
		return "close"
	case ActionOpenURL:
		return "open_url"
	case ActionRestore:
		return "restore"
	case ActionCustom:
		return "custom"
	case ActionPurchase:
		return "purchase"
	}
	return "unknown"
}

type Action struct {
	Type     ActionType
	URL      string
	CustomID string
}

type TransitionType uint8

const (
	TransitionFade TransitionType = iota + 1
	TransitionSlide
)

type Transition struct {
	Type         TransitionType
	StartDelay   time.Duration
	Duration     time.Duration
	Interpolator string
}

type Button struct {
	Shape         *Shape
	SelectedShape *Shape
	Title         *Text
	SelectedTitle *Text
	Align         ButtonAlign
	Action        *Action
	Visible       bool
	TransitionIn  []Transition
}

// Reference points at an asset by id.
type Reference struct {
	AssetID string
}

// Property is one ordered entry of a property bag.
type Property struct {
	Key       string
	Component Component
	Order     int
}

type ProductObject struct {
	Properties []Property
	Attributes map[string]any
}

// CustomObject holds any component whose type the mapper does not model.
type CustomObject struct {
	Type       string
	Properties []Property
	Attributes map[string]any
}

// Property returns the component stored under key.
func (o *CustomObject) Property(key string) (Component, bool) {
	return findProperty(o.Properties, key)
}

func (o *ProductObject) Property(key string) (Component, bool) {
	return findProperty(o.Properties, key)
}

func findProperty(props []Property, key string) (Component, bool) {
	for _, p := range props {
		if p.Key == key {
			return p.Component, true
		}
	}
	return nil, false
}

func (*Shape) isComponent()         {}
func (*Text) isComponent()          {}
func (*Button) isComponent()        {}
func (Reference) isComponent()      {}
func (*ProductObject) isComponent() {}
func (*CustomObject) isComponent()  {}

// --- Styles ---

type ProductBlockType uint8

const (
	ProductsSingle ProductBlockType = iota + 1
	ProductsVertical
	ProductsHorizontal
)

func (t ProductBlockType) String() string {
	switch t {
	case ProductsSingle:
		return "single"
	case ProductsVertical:
		return "vertical"
	case ProductsHorizontal:
		return "horizontal"
	}
	return "unknown"
}

type FeatureBlockType uint8

const (
	FeaturesList FeatureBlockType = iota + 1
	FeaturesTimeline
)

// ProductInfo is the visual template of one product cell.
type ProductInfo struct {
	Title              *Text
	Subtitle           *Text
	SubtitlePayUpfront *Text
	SubtitlePayAsYouGo *Text
	SubtitleFreeTrial  *Text
	SecondTitle        *Text
	SecondSubtitle     *Text
	TagText            *Text
	TagShape           *Shape
	Shape              *Shape
	SelectedShape      *Shape
	IsMain             bool
}

// SubtitleFor picks the subtitle variant for a discount phase, falling back
// to the default subtitle only.
func (p *ProductInfo) SubtitleFor(mode commerce.PaymentMode) *Text {
	var variant *Text
	switch mode {
	case commerce.PaymentFreeTrial:
		variant = p.SubtitleFreeTrial
	case commerce.PaymentPayAsYouGo:
		variant = p.SubtitlePayAsYouGo
	case commerce.PaymentPayUpfront:
		variant = p.SubtitlePayUpfront
	}
	if variant != nil {
		return variant
	}
	return p.Subtitle
}

type ProductBlock struct {
	Type                  ProductBlockType
	Products              []ProductInfo
	MainProductIndex      int
	InitiatePurchaseOnTap bool
}

// TimelineEntry is one step of a TIMELINE feature block.
type TimelineEntry struct {
	Text      *Text
	Image     string // asset id
	Shape     *Shape
	Connector string // asset id of the line fill, may be empty
}

type FeatureBlock struct {
	Type     FeatureBlockType
	List     []*Text
	Timeline []TimelineEntry
}

type NamedButton struct {
	Name   string
	Button *Button
}

type FooterBlock struct {
	Buttons []NamedButton
}

type NamedComponent struct {
	Name      string
	Component Component
}

type Style struct {
	Name         string
	Components   []NamedComponent
	ProductBlock ProductBlock
	FeatureBlock *FeatureBlock
	FooterBlock  *FooterBlock
}

func (s *Style) Component(name string) (Component, bool) {
	for _, c := range s.Components {
		if c.Name == name {
			return c.Component, true
		}
	}
	return nil, false
}

func (s *Style) Text(name string) *Text {
	c, _ := s.Component(name)
	t, _ := c.(*Text)
	return t
}

func (s *Style) Shape(name string) *Shape {
	c, _ := s.Component(name)
	sh, _ := c.(*Shape)
	return sh
}

func (s *Style) Button(name string) *Button {
	c, _ := s.Component(name)
	b, _ := c.(*Button)
	return b
}

// Image returns the asset id a Reference component points at.
func (s *Style) Image(name string) string {
	c, _ := s.Component(name)
	if r, ok := c.(Reference); ok {
		return r.AssetID
	}
	return ""
}

// Well-known style component names.
const (
	CompBackground       = "background"
	CompCoverImage       = "cover_image"
	CompMainContentShape = "main_content_shape"
	CompTitleRows        = "title_rows"
	CompPurchaseButton   = "purchase_button"
	CompCloseButton      = "close_button"
)
