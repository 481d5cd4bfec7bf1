// render/text.go
package render

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/waozixyz/paywall/viewconfig"
)

// TextMetrics supplies per-span font measurements to LayoutText.
type TextMetrics interface {
	Advance(s *Span, text string) float64
	LineHeight(s *Span) float64
	Ascent(s *Span) float64
}

// Run is the part of a span placed on one line. X is relative to the line start.
type Run struct {
	Span *Span
	Text string
	X, W float64
}

type Line struct {
	Runs   []Run
	W, H   float64
	Ascent float64
}

// LayoutText breaks t into lines no wider than maxWidth. Words wider than
// maxWidth get their own line. maxWidth <= 0 disables wrapping.
func LayoutText(t *TextContent, maxWidth float64, m TextMetrics) []Line {
	if t == nil || len(t.Spans) == 0 {
		return nil
	}
	var lines []Line
	cur := Line{}
	lastH, lastAsc := 0.0, 0.0

	grow := func(h, asc float64) {
		cur.H = math.Max(cur.H, h)
		cur.Ascent = math.Max(cur.Ascent, asc)
		lastH, lastAsc = h, asc
	}
	flush := func() {
		if len(cur.Runs) == 0 && cur.H == 0 {
			cur.H, cur.Ascent = lastH, lastAsc
		}
		cur.W = trimTrailing(&cur)
		lines = append(lines, cur)
		cur = Line{}
	}
	fits := func(w float64) bool {
		return maxWidth <= 0 || cur.W+w <= maxWidth+1e-9 || len(cur.Runs) == 0
	}
	place := func(s *Span, text string, w float64) {
		cur.Runs = append(cur.Runs, Run{Span: s, Text: text, X: cur.W, W: w})
		cur.W += w
	}

	for i := range t.Spans {
		s := &t.Spans[i]
		switch {
		case s.NewLine:
			grow(m.LineHeight(s), m.Ascent(s))
			flush()
		case s.Image != nil:
			if !fits(s.Image.W) {
				flush()
			}
			place(s, "", s.Image.W)
			grow(s.Image.H, s.Image.H)
		case s.Space > 0:
			if maxWidth > 0 && cur.W+s.Space > maxWidth && len(cur.Runs) > 0 {
				flush()
				continue
			}
			place(s, "", s.Space)
		default:
			if s.Text == "" {
				continue
			}
			for j, para := range strings.Split(s.Text, "\n") {
				if j > 0 {
					flush()
				}
				grow(m.LineHeight(s), m.Ascent(s))
				for _, word := range splitWords(para) {
					w := m.Advance(s, word)
					if !fits(w) {
						flush()
						grow(m.LineHeight(s), m.Ascent(s))
						if isBlank(word) {
							continue
						}
					}
					place(s, word, w)
				}
			}
		}
	}
	if len(cur.Runs) > 0 || cur.H > 0 {
		flush()
	}
	return lines
}

// splitWords cuts s into alternating word and whitespace pieces.
func splitWords(s string) []string {
	var out []string
	start := 0
	prevSpace := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i > start && sp != prevSpace {
			out = append(out, s[start:i])
			start = i
		}
		prevSpace = sp
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func trimTrailing(l *Line) float64 {
	for len(l.Runs) > 0 {
		last := l.Runs[len(l.Runs)-1]
		if last.Text == "" || !isBlank(last.Text) {
			break
		}
		l.Runs = l.Runs[:len(l.Runs)-1]
	}
	if len(l.Runs) == 0 {
		return 0
	}
	last := l.Runs[len(l.Runs)-1]
	return last.X + last.W
}

// Bounds sums the stacked line heights and takes the widest line.
func Bounds(lines []Line) Size {
	var s Size
	for _, l := range lines {
		s.W = math.Max(s.W, l.W)
		s.H += l.H
	}
	return s
}

// AlignOffset is the horizontal offset of a line of width lw inside width w.
func AlignOffset(a viewconfig.TextAlign, w, lw float64) float64 {
	switch a {
	case viewconfig.AlignCenter:
		return (w - lw) / 2
	case viewconfig.AlignRight:
		return w - lw
	}
	return 0
}

// MonospaceMeasurer measures every rune as half the font size. Hosts without
// real fonts and tests use it for deterministic layout.
type MonospaceMeasurer struct{}

const defaultFontSize = 15

func spanSize(s *Span) float64 {
	if s.Font.Size > 0 {
		return s.Font.Size
	}
	return defaultFontSize
}

func (MonospaceMeasurer) Advance(s *Span, text string) float64 {
	return float64(utf8.RuneCountInString(text)) * spanSize(s) * 0.5
}

func (MonospaceMeasurer) LineHeight(s *Span) float64 { return spanSize(s) * 1.2 }

func (MonospaceMeasurer) Ascent(s *Span) float64 { return spanSize(s) * 0.9 }

func (m MonospaceMeasurer) MeasureText(t *TextContent, maxWidth float64) Size {
	return Bounds(LayoutText(t, maxWidth, m))
}
