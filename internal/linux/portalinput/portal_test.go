package portalinput

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

// NewConn requires a live D-Bus session bus and a running xdg-desktop-portal
// RemoteDesktop backend, neither available in a unit test sandbox; coverage
// here is limited to the pure helpers the request/response machinery builds
// on top of.

func TestSenderPathTokenMangling(t *testing.T) {
	assert.Equal(t, "1_42", senderPathToken(":1.42"))
	assert.Equal(t, "1_0", senderPathToken(":1.0"))
}

func TestOptionsWithTokenSetsHandleToken(t *testing.T) {
	opts := optionsWithToken("inputforge1")
	variant, ok := opts["handle_token"]
	assert.True(t, ok)
	assert.Equal(t, dbus.MakeVariant("inputforge1"), variant)
}

func TestNextRequestTokenIncrementsAndIsUnique(t *testing.T) {
	c := &Conn{}
	first := c.nextRequestToken()
	second := c.nextRequestToken()
	assert.NotEqual(t, first, second)
	assert.Equal(t, "inputforge1", first)
	assert.Equal(t, "inputforge2", second)
}
