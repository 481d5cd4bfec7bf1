// render/render.go

// Package render is the backend-neutral view graph both layout backends
// produce and every host draws.
package render

import (
	"image"

	"github.com/waozixyz/paywall/shape"
	"github.com/waozixyz/paywall/viewconfig"
)

type Rect = shape.Rect

type Size struct {
	W, H float64
}

type Insets struct {
	Top, Right, Bottom, Left float64
}

func UniformInsets(v float64) Insets { return Insets{v, v, v, v} }

func (i Insets) Horizontal() float64 { return i.Left + i.Right }
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }

type Kind uint8

const (
	KindBox Kind = iota
	KindText
	KindImage
	KindButton
	KindSpacer
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindButton:
		return "button"
	case KindSpacer:
		return "spacer"
	}
	return "unknown"
}

type FontSpec struct {
	Family string
	Size   float64
	Weight int
	Italic bool
}

// InlineImage is an image span inside text.
type InlineImage struct {
	AssetID string
	Asset   viewconfig.ImageAsset
	W, H    float64
	Tint    *viewconfig.Color
	Img     image.Image
}

// Span is one styled piece of text content. Exactly one of Text, Image,
// NewLine or Space is meaningful.
type Span struct {
	Text    string
	Font    FontSpec
	Color   viewconfig.Color
	Image   *InlineImage
	NewLine bool
	Space   float64
}

type TextContent struct {
	Spans []Span
	Align viewconfig.TextAlign
}

// Plain concatenates the textual spans, newlines included.
func (t *TextContent) Plain() string {
	if t == nil {
		return ""
	}
	var out []byte
	for _, s := range t.Spans {
		switch {
		case s.NewLine:
			out = append(out, '\n')
		case s.Image != nil:
			out = append(out, "[img]"...)
		default:
			out = append(out, s.Text...)
		}
	}
	return string(out)
}

// Measurer sizes text. maxWidth <= 0 means unconstrained.
type Measurer interface {
	MeasureText(t *TextContent, maxWidth float64) Size
}

type ImageContent struct {
	AssetID string
	Asset   viewconfig.ImageAsset
	Img     image.Image
}

// View is one node of the materialized paywall. Frames are absolute.
type View struct {
	ID       string
	Kind     Kind
	Frame    Rect
	Hidden   bool
	Alpha    float64
	Padding  Insets
	Selected bool

	Background         *shape.Drawable
	SelectedBackground *shape.Drawable
	Text               *TextContent
	Image              *ImageContent
	Transitions        []viewconfig.Transition

	OnClick func()

	Parent   *View
	Children []*View
}

func NewView(id string, kind Kind) *View {
	return &View{ID: id, Kind: kind, Alpha: 1}
}

// Add appends children and returns v.
func (v *View) Add(children ...*View) *View {
	for _, c := range children {
		c.Parent = v
		v.Children = append(v.Children, c)
	}
	return v
}

// Remove detaches a direct child.
func (v *View) Remove(child *View) {
	for i, c := range v.Children {
		if c == child {
			v.Children = append(v.Children[:i], v.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Walk visits v and its descendants depth-first. Returning false from fn
// skips the subtree.
func (v *View) Walk(fn func(*View, int) bool) {
	v.walk(fn, 0)
}

func (v *View) walk(fn func(*View, int) bool, depth int) {
	if !fn(v, depth) {
		return
	}
	for _, c := range v.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first view with the given id.
func (v *View) Find(id string) *View {
	var found *View
	v.Walk(func(n *View, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// IsShown reports whether v and all of its ancestors are visible.
func (v *View) IsShown() bool {
	for n := v; n != nil; n = n.Parent {
		if n.Hidden {
			return false
		}
	}
	return true
}

// ActiveBackground is the selected background when selected, else the normal one.
func (v *View) ActiveBackground() *shape.Drawable {
	if v.Selected && v.SelectedBackground != nil {
		return v.SelectedBackground
	}
	return v.Background
}

// SetFrame positions v and keeps its drawables in sync.
func (v *View) SetFrame(r Rect) {
	v.Frame = r
	if v.Background != nil {
		v.Background.SetBounds(r)
	}
	if v.SelectedBackground != nil {
		v.SelectedBackground.SetBounds(r)
	}
}

// HitTest returns the top-most shown clickable view containing (x, y).
// Later siblings draw over earlier ones and win.
func (v *View) HitTest(x, y float64) *View {
	if v.Hidden {
		return nil
	}
	for i := len(v.Children) - 1; i >= 0; i-- {
		if hit := v.Children[i].HitTest(x, y); hit != nil {
			return hit
		}
	}
	if v.OnClick != nil && v.Frame.Contains(x, y) {
		return v
	}
	return nil
}

type WindowConfig struct {
	Width       int
	Height      int
	Title       string
	Resizable   bool
	ScaleFactor float64
	DefaultBg   viewconfig.Color
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:       390,
		Height:      844,
		Title:       "Paywall Preview",
		Resizable:   false,
		ScaleFactor: 1.0,
		DefaultBg:   0xFF1E1E1E,
	}
}

// Renderer is a host that can display a view graph frame by frame.
type Renderer interface {
	Init(config WindowConfig) error
	Measurer() Measurer
	RenderFrame(root *View)
	PollEvents(root *View)
	ShouldClose() bool
	BeginFrame()
	EndFrame()
	Cleanup()
}
