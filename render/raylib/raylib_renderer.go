// render/raylib/raylib_renderer.go
package raylib

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/render/canvas"
)

// RaylibRenderer implements render.Renderer with a raylib window. Each frame
// the view graph is rasterized by the software canvas and uploaded into one
// streaming texture.
type RaylibRenderer struct {
	config      render.WindowConfig
	scaleFactor float32

	fonts   *canvas.Fonts
	canvas  *canvas.Canvas
	texture rl.Texture2D
	pixels  []color.RGBA
	rgba    *image.RGBA
}

// NewRaylibRenderer creates a renderer with default values.
func NewRaylibRenderer() *RaylibRenderer {
	return &RaylibRenderer{scaleFactor: 1.0}
}

// Init opens the window and allocates the canvas and its texture.
func (r *RaylibRenderer) Init(config render.WindowConfig) error {
	r.config = config
	r.scaleFactor = float32(math.Max(1.0, config.ScaleFactor))

	logger().Info("RaylibRenderer Init: initializing window",
		"width", config.Width, "height", config.Height, "title", config.Title, "scale", r.scaleFactor)

	winW := int32(float32(config.Width) * r.scaleFactor)
	winH := int32(float32(config.Height) * r.scaleFactor)
	rl.InitWindow(winW, winH, config.Title)
	if config.Resizable {
		rl.SetWindowState(rl.FlagWindowResizable)
	} else {
		rl.ClearWindowState(rl.FlagWindowResizable)
	}
	rl.SetTargetFPS(60)

	if !rl.IsWindowReady() {
		return fmt.Errorf("RaylibRenderer Init: rl.InitWindow failed or window is not ready")
	}

	if r.fonts == nil {
		fonts, err := canvas.NewFonts()
		if err != nil {
			return fmt.Errorf("RaylibRenderer Init: %w", err)
		}
		r.fonts = fonts
	}
	r.canvas = canvas.New(config.Width, config.Height, r.fonts, config.DefaultBg)
	r.rgba = image.NewRGBA(image.Rect(0, 0, config.Width, config.Height))
	r.pixels = make([]color.RGBA, config.Width*config.Height)

	img := rl.NewImageFromImage(r.rgba)
	r.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if r.texture.ID == 0 {
		return fmt.Errorf("RaylibRenderer Init: failed to create frame texture")
	}
	logger().Info("RaylibRenderer Init: window is ready")
	return nil
}

// Measurer returns the canvas font metrics so layout matches what is drawn.
func (r *RaylibRenderer) Measurer() render.Measurer {
	if r.fonts == nil {
		fonts, err := canvas.NewFonts()
		if err != nil {
			logger().Warn("RaylibRenderer: fonts unavailable, using monospace metrics", "error", err)
			return render.MonospaceMeasurer{}
		}
		r.fonts = fonts
	}
	return r.fonts
}

// RenderFrame rasterizes root and draws the resulting texture.
func (r *RaylibRenderer) RenderFrame(root *render.View) {
	if r.canvas == nil {
		return
	}
	r.canvas.Draw(root)
	draw.Draw(r.rgba, r.rgba.Bounds(), r.canvas.Image(), image.Point{}, draw.Src)
	for i := range r.pixels {
		o := i * 4
		r.pixels[i] = color.RGBA{R: r.rgba.Pix[o], G: r.rgba.Pix[o+1], B: r.rgba.Pix[o+2], A: r.rgba.Pix[o+3]}
	}
	rl.UpdateTexture(r.texture, r.pixels)
	rl.DrawTextureEx(r.texture, rl.NewVector2(0, 0), 0, r.scaleFactor, rl.White)
}

// Cleanup unloads the frame texture and closes the window.
func (r *RaylibRenderer) Cleanup() {
	if r.texture.ID > 0 {
		rl.UnloadTexture(r.texture)
		r.texture = rl.Texture2D{}
	}
	if r.canvas != nil {
		if err := r.canvas.Close(); err != nil {
			logger().Warn("RaylibRenderer Cleanup: close canvas", "error", err)
		}
		r.canvas = nil
	}
	if rl.IsWindowReady() {
		logger().Info("RaylibRenderer Cleanup: closing window")
		rl.CloseWindow()
	}
}

// ShouldClose returns true if the window has been signaled to close.
func (r *RaylibRenderer) ShouldClose() bool {
	return rl.IsWindowReady() && rl.WindowShouldClose()
}

// BeginFrame prepares raylib for a new frame of drawing.
func (r *RaylibRenderer) BeginFrame() {
	rl.BeginDrawing()
	rl.ClearBackground(toRaylib(r.config.DefaultBg))
}

// EndFrame finalizes the drawing for the current frame.
func (r *RaylibRenderer) EndFrame() {
	rl.EndDrawing()
}

// PollEvents updates the hover cursor and dispatches a left click to the
// top-most clickable view under the pointer.
func (r *RaylibRenderer) PollEvents(root *render.View) {
	if !rl.IsWindowReady() || root == nil {
		return
	}
	mouse := rl.GetMousePosition()
	x := float64(mouse.X / r.scaleFactor)
	y := float64(mouse.Y / r.scaleFactor)

	hit := root.HitTest(x, y)
	if hit == nil {
		rl.SetMouseCursor(rl.MouseCursorDefault)
		return
	}
	bounds := rl.NewRectangle(
		float32(hit.Frame.X)*r.scaleFactor, float32(hit.Frame.Y)*r.scaleFactor,
		float32(hit.Frame.W)*r.scaleFactor, float32(hit.Frame.H)*r.scaleFactor)
	if !rl.CheckCollisionPointRec(mouse, bounds) {
		rl.SetMouseCursor(rl.MouseCursorDefault)
		return
	}
	rl.SetMouseCursor(rl.MouseCursorPointingHand)
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		logger().Debug("PollEvents: click", "view", hit.ID)
		hit.OnClick()
	}
}
