package wlinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMainDisplayIsDeliberatelyUnsupported(t *testing.T) {
	var c Conn
	_, _, err := c.MainDisplay()
	assert.Error(t, err)
}

func TestLocationIsDeliberatelyUnsupported(t *testing.T) {
	var c Conn
	_, _, err := c.Location()
	assert.Error(t, err)
}

func TestPressedKeycodesNilWithoutKeymapManager(t *testing.T) {
	var c Conn
	assert.Nil(t, c.PressedKeycodes())
}
