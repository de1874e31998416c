package linux

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inputforge/inputforge/internal/linux/portalinput"
	"github.com/inputforge/inputforge/internal/linux/wlinput"
)

func TestBackendString(t *testing.T) {
	assert.Equal(t, "wayland", BackendWayland.String())
	assert.Equal(t, "x11", BackendX11.String())
	assert.Equal(t, "portal", BackendPortal.String())
	assert.Equal(t, "unknown", Backend(99).String())
}

func TestWlDirMapsPressAndRelease(t *testing.T) {
	assert.Equal(t, wlinput.KeyPress, wlDir(Press))
	assert.Equal(t, wlinput.KeyRelease, wlDir(Release))
}

func TestPortalKeyStateMapsPressAndRelease(t *testing.T) {
	assert.Equal(t, portalinput.KeyPressed, portalKeyState(Press))
	assert.Equal(t, portalinput.KeyReleased, portalKeyState(Release))
}

func TestX11ButtonDetailKnownCodes(t *testing.T) {
	cases := map[uint32]byte{
		0x110: 1, // BTN_LEFT
		0x112: 2, // BTN_MIDDLE
		0x111: 3, // BTN_RIGHT
		0x115: 9, // BTN_FORWARD
		0x116: 8, // BTN_BACK
	}
	for code, want := range cases {
		got, err := x11ButtonDetail(code)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestX11ButtonDetailRejectsUnknownCode(t *testing.T) {
	_, err := x11ButtonDetail(0xdead)
	assert.Error(t, err)
}

func TestNewForcedRejectsUnknownBackend(t *testing.T) {
	_, err := newForced(Options{Force: "carrier-pigeon"})
	assert.Error(t, err)
}
