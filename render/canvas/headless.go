// render/canvas/headless.go
package canvas

import (
	"errors"
	"image"

	"github.com/waozixyz/paywall/render"
)

// Headless is a render.Renderer without a window. It paints frames into a
// Canvas and reports ShouldClose after MaxFrames frames. Clicks queued with
// Click are dispatched on the next PollEvents.
type Headless struct {
	MaxFrames int

	canvas *Canvas
	fonts  *Fonts
	frames int
	clicks [][2]float64
}

func NewHeadless(maxFrames int) *Headless {
	return &Headless{MaxFrames: maxFrames}
}

func (h *Headless) Init(config render.WindowConfig) error {
	if config.Width <= 0 || config.Height <= 0 {
		return errors.New("canvas: headless viewport must be positive")
	}
	if h.fonts == nil {
		fonts, err := NewFonts()
		if err != nil {
			return err
		}
		h.fonts = fonts
	}
	h.canvas = New(config.Width, config.Height, h.fonts, config.DefaultBg)
	logger().Info("Headless: initialized", "width", config.Width, "height", config.Height)
	return nil
}

// Measurer falls back to monospace metrics when the embedded fonts fail to load.
func (h *Headless) Measurer() render.Measurer {
	if h.fonts == nil {
		fonts, err := NewFonts()
		if err != nil {
			logger().Warn("Headless: fonts unavailable, using monospace metrics", "error", err)
			return render.MonospaceMeasurer{}
		}
		h.fonts = fonts
	}
	return h.fonts
}

func (h *Headless) BeginFrame() {}

func (h *Headless) RenderFrame(root *render.View) {
	h.canvas.Draw(root)
}

func (h *Headless) EndFrame() { h.frames++ }

// Click queues a pointer press at (x, y).
func (h *Headless) Click(x, y float64) {
	h.clicks = append(h.clicks, [2]float64{x, y})
}

func (h *Headless) PollEvents(root *render.View) {
	clicks := h.clicks
	h.clicks = nil
	for _, c := range clicks {
		if hit := root.HitTest(c[0], c[1]); hit != nil {
			logger().Debug("Headless: click", "view", hit.ID)
			hit.OnClick()
		}
	}
}

func (h *Headless) ShouldClose() bool {
	return h.MaxFrames > 0 && h.frames >= h.MaxFrames
}

func (h *Headless) Frames() int { return h.frames }

// Canvas exposes the last painted frame.
func (h *Headless) Canvas() *Canvas { return h.canvas }

func (h *Headless) Snapshot() image.Image {
	if h.canvas == nil {
		return nil
	}
	return h.canvas.Image()
}

func (h *Headless) Cleanup() {
	if h.canvas != nil {
		if err := h.canvas.Close(); err != nil {
			logger().Warn("Headless: close canvas", "error", err)
		}
	}
}
