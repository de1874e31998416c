package x11input

import (
	"testing"
	"time"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinComma(t *testing.T) {
	assert.Equal(t, "", joinComma(nil))
	assert.Equal(t, "a", joinComma([]string{"a"}))
	assert.Equal(t, "a, b, c", joinComma([]string{"a", "b", "c"}))
}

func TestSymbolNameForKeysymNoSymbol(t *testing.T) {
	assert.Equal(t, "NoSymbol", symbolNameForKeysym(0))
}

func TestSymbolNameForKeysymHexFallback(t *testing.T) {
	assert.Equal(t, "0xffe1", symbolNameForKeysym(0xffe1))
}

func TestBuildKeymapFromTableSkipsAllZeroKeycodes(t *testing.T) {
	// keycodes 8 and 9, perKeycode=2: keycode 8 all-NoSymbol, keycode 9 carries 'a'.
	keysyms := []xproto.Keysym{0, 0, xproto.Keysym('a'), xproto.Keysym('a')}

	km := buildKeymapFromTable(8, 9, 2, keysyms)

	require.Len(t, km.Keycodes.Entries, 1)
	assert.Equal(t, uint32(9), km.Keycodes.Entries[0].Code)
	require.Len(t, km.Symbols.Keys, 1)
	assert.Equal(t, "KC9", km.Symbols.Keys[0].Identifier)
}

func TestPendingDelayUsesMinimalDelayForFreshKeycode(t *testing.T) {
	c := &Conn{delay: 12 * time.Millisecond}

	delay := c.pendingDelay(30)

	assert.Equal(t, uint32(1), delay)
	assert.Contains(t, c.recentKeycodes, byte(30))
}

func TestPendingDelayWaitsOutRemainingDelayOnRepeat(t *testing.T) {
	c := &Conn{delay: 50 * time.Millisecond}

	c.pendingDelay(30)
	delay := c.pendingDelay(30)

	// The keycode repeated immediately, so the tracker resets and the
	// returned delay should be close to the full configured delay.
	assert.LessOrEqual(t, delay, uint32(50))
	assert.Empty(t, c.recentKeycodes[:len(c.recentKeycodes)-1])
}

func TestPendingDelayResetsTrackerAfter64Entries(t *testing.T) {
	c := &Conn{delay: 12 * time.Millisecond}
	for i := 0; i < 65; i++ {
		c.pendingDelay(byte(i % 250))
	}
	delay := c.pendingDelay(200)
	assert.LessOrEqual(t, delay, uint32(12))
	assert.Equal(t, []byte{200}, c.recentKeycodes)
}
