package app

import (
	"fmt"
	"io"

	"github.com/waozixyz/paywall/render/canvas"
)

// Snapshot paints the presented paywall once into h and writes it as PNG.
// The session should use h.Measurer() so text lays out with the same fonts.
func Snapshot(s *Session, h *canvas.Headless, w io.Writer) error {
	root := s.Screen.Root()
	if root == nil {
		return fmt.Errorf("app: nothing presented")
	}
	if err := h.Init(s.Window("")); err != nil {
		return fmt.Errorf("app: initialize canvas: %w", err)
	}
	defer h.Cleanup()

	h.BeginFrame()
	h.RenderFrame(root)
	h.EndFrame()
	if err := h.Canvas().EncodePNG(w); err != nil {
		return fmt.Errorf("app: encode png: %w", err)
	}
	return nil
}
