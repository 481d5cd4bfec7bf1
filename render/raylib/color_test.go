package raylib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRaylib(t *testing.T) {
	c := toRaylib(0x80112233)
	assert.Equal(t, uint8(0x11), c.R)
	assert.Equal(t, uint8(0x22), c.G)
	assert.Equal(t, uint8(0x33), c.B)
	assert.Equal(t, uint8(0x80), c.A)
}
