package raylib

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/waozixyz/paywall/viewconfig"
)

func toRaylib(c viewconfig.Color) rl.Color {
	return rl.NewColor(c.R(), c.G(), c.B(), c.A())
}
