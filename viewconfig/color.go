package viewconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a packed 0xAARRGGBB value.
type Color uint32

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// Hex renders the color back in document order, #RRGGBBAA.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R(), c.G(), c.B(), c.A())
}

// ARGB builds a Color from channel bytes.
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// ParseColor accepts #RRGGBB (opaque) and #RRGGBBAA. The alpha byte of the
// eight digit form is moved to the front, so the result is always ARGB.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == len(s) {
		return 0, fmt.Errorf("color %q: missing '#'", s)
	}
	switch len(hex) {
	case 6:
		hex = "ff" + hex
	case 8:
		hex = hex[6:] + hex[:6]
	default:
		return 0, fmt.Errorf("color %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return Color(v), nil
}
