// Package app is the host logic shared by the paywall binaries, independent
// of the specific renderer.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/screen"
)

// Run drives renderer until the window closes, the paywall is closed or ctx
// is done. Each frame drains the UI loop, dispatches input and redraws.
func Run(ctx context.Context, renderer render.Renderer, s *Session, window render.WindowConfig) error {
	if err := renderer.Init(window); err != nil {
		renderer.Cleanup()
		return fmt.Errorf("app: initialize renderer: %w", err)
	}
	defer renderer.Cleanup()

	slog.Info("App: entering main loop", "presentation", s.Screen.PresentationID())
	frames := 0
	for !renderer.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Loop.RunPending()
		root := s.Screen.Root()
		if root == nil {
			return fmt.Errorf("app: nothing presented")
		}
		renderer.PollEvents(root)
		s.Loop.RunPending()
		if s.Screen.Phase() == screen.PhaseClosed {
			slog.Info("App: paywall closed", "frames", frames)
			return nil
		}

		renderer.BeginFrame()
		renderer.RenderFrame(root)
		renderer.EndFrame()
		frames++
	}
	slog.Info("App: exiting", "frames", frames)
	return nil
}
