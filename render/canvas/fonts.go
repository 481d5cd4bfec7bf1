// render/canvas/fonts.go
package canvas

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/waozixyz/paywall/render"
)

type variant uint8

const (
	variantRegular variant = iota
	variantBold
	variantItalic
	variantBoldItalic
)

type faceKey struct {
	v    variant
	size float64
}

// Fonts measures and supplies faces for text spans. Every family maps onto
// the embedded Go fonts; weight >= 600 selects bold.
type Fonts struct {
	sources [4]*text.FontSource

	mu    sync.Mutex
	faces map[faceKey]text.Face
}

func NewFonts() (*Fonts, error) {
	f := &Fonts{faces: make(map[faceKey]text.Face)}
	for i, data := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF} {
		src, err := text.NewFontSource(data)
		if err != nil {
			return nil, fmt.Errorf("canvas: load embedded font %d: %w", i, err)
		}
		f.sources[i] = src
	}
	return f, nil
}

func pick(spec render.FontSpec) variant {
	bold := spec.Weight >= 600
	switch {
	case bold && spec.Italic:
		return variantBoldItalic
	case bold:
		return variantBold
	case spec.Italic:
		return variantItalic
	}
	return variantRegular
}

// Face returns the cached face for a font spec.
func (f *Fonts) Face(spec render.FontSpec) text.Face {
	size := spec.Size
	if size <= 0 {
		size = 15
	}
	key := faceKey{pick(spec), size}
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	face := f.sources[key.v].Face(size)
	f.faces[key] = face
	return face
}

func (f *Fonts) Advance(s *render.Span, t string) float64 {
	return f.Face(s.Font).Advance(t)
}

func (f *Fonts) LineHeight(s *render.Span) float64 {
	return f.Face(s.Font).Metrics().LineHeight()
}

func (f *Fonts) Ascent(s *render.Span) float64 {
	return f.Face(s.Font).Metrics().Ascent
}

func (f *Fonts) MeasureText(t *render.TextContent, maxWidth float64) render.Size {
	return render.Bounds(render.LayoutText(t, maxWidth, f))
}
