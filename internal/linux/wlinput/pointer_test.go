package wlinput

import (
	"testing"

	"github.com/neurlang/wayland/wl"
	"github.com/stretchr/testify/assert"
)

func TestFloatToFixedScalesBy256(t *testing.T) {
	assert.Equal(t, wl.Fixed(256), floatToFixed(1))
	assert.Equal(t, wl.Fixed(128), floatToFixed(0.5))
	assert.Equal(t, wl.Fixed(-256), floatToFixed(-1))
	assert.Equal(t, wl.Fixed(0), floatToFixed(0))
}
