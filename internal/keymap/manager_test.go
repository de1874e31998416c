package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inputforge/inputforge/internal/keysym"
	"github.com/inputforge/inputforge/internal/xkb"
)

func TestNewDefaultParsesBaseline(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)
	sym, ok := keysym.Named("Escape")
	require.True(t, ok)
	kc, ok := m.KeyToKeycode(sym)
	require.True(t, ok)
	assert.Equal(t, uint16(9), kc)
}

func TestMapKeyAllocatesAscendingFromMinimumNine(t *testing.T) {
	m, err := New(`xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 10;
    <ESC> = 9;
};
xkb_symbols "(unnamed)" {
    key <ESC> { [ Escape ] };
};
};
`, true)
	require.NoError(t, err)

	sym := keysym.Symbol{Value: 0x41, Name: "A"}
	kc, err := m.MapKey(sym)
	require.NoError(t, err)
	assert.Equal(t, uint16(10), kc, "9 is taken by ESC, so the first free code is 10")

	got, ok := m.KeyToKeycode(sym)
	require.True(t, ok)
	assert.Equal(t, kc, got)
}

func TestMapKeyNeverReusesKeycodeEight(t *testing.T) {
	m, err := New(`xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 0;
    maximum = 10;
};
xkb_symbols "(unnamed)" {
};
};
`, true)
	require.NoError(t, err)

	kc, err := m.MapKey(keysym.Symbol{Value: 0x41, Name: "A"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, kc, uint16(9))
}

func TestMapKeyFailsWhenKeycodeSpaceExhausted(t *testing.T) {
	// Non-Wayland (X11) codes top out at 255; pinning minimum to 254 leaves
	// exactly one slot (254) in range, which <A> already occupies.
	m, err := New(`xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 254;
    maximum = 254;
    <A> = 254;
};
xkb_symbols "(unnamed)" {
    key <A> { [ a ] };
};
};
`, false)
	require.NoError(t, err)

	_, err = m.MapKey(keysym.Symbol{Value: 0x63, Name: "c"})
	assert.Error(t, err)
	assert.True(t, IsMappingError(err))
}

func TestUnmapEverythingDiscardsAllocations(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	sym := keysym.Symbol{Value: 0x1, Name: "U0001"}
	_, err = m.MapKey(sym)
	require.NoError(t, err)
	_, ok := m.KeyToKeycode(sym)
	require.True(t, ok)

	require.NoError(t, m.UnmapEverything())
	_, ok = m.KeyToKeycode(sym)
	assert.False(t, ok, "UnmapEverything should discard keys allocated since the keymap was (re)built")
}

func TestUnmapEverythingPreservesHeldKeycodes(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	held := keysym.Symbol{Value: 0x1, Name: "U0001"}
	heldCode, err := m.MapKey(held)
	require.NoError(t, err)
	m.UpdateKey(heldCode, KeyDown)

	unheld := keysym.Symbol{Value: 0x2, Name: "U0002"}
	_, err = m.MapKey(unheld)
	require.NoError(t, err)

	require.NoError(t, m.UnmapEverything())

	gotHeld, ok := m.KeyToKeycode(held)
	require.True(t, ok, "a held keycode must survive UnmapEverything")
	assert.Equal(t, heldCode, gotHeld)

	_, ok = m.KeyToKeycode(unheld)
	assert.False(t, ok, "a non-held dynamically allocated keycode must be discarded")
}

func TestUnmapRemovesUnheldDynamicKeycode(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	sym := keysym.Symbol{Value: 0x3, Name: "U0003"}
	kc, err := m.MapKey(sym)
	require.NoError(t, err)

	m.Unmap(kc)

	_, ok := m.KeyToKeycode(sym)
	assert.False(t, ok)
}

func TestUnmapIsNoopOnHeldKeycode(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	sym := keysym.Symbol{Value: 0x4, Name: "U0004"}
	kc, err := m.MapKey(sym)
	require.NoError(t, err)
	m.UpdateKey(kc, KeyDown)

	m.Unmap(kc)

	_, ok := m.KeyToKeycode(sym)
	assert.True(t, ok, "Unmap must not remove a keycode that is currently held")
}

func TestUnmapIsNoopOnPristineKeycode(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	sym, ok := keysym.Named("Escape")
	require.True(t, ok)
	kc, ok := m.KeyToKeycode(sym)
	require.True(t, ok)

	m.Unmap(kc)

	_, ok = m.KeyToKeycode(sym)
	assert.True(t, ok, "Unmap must never remove a keycode the pristine keymap defines")
}

func TestUnmapIsNoopOnUnknownKeycode(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	m.Unmap(54321) // never allocated; must not panic or error
}

func TestUpdateKeyReportsModifierChangesOnly(t *testing.T) {
	m, err := New(`xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 20;
    <LFSH> = 50;
    <AD01> = 24;
};
xkb_symbols "(unnamed)" {
    key <LFSH> { [ Shift_L ] };
    key <AD01> { [ q, Q ] };
    modifier_map Shift { <LFSH> };
};
};
`, true)
	require.NoError(t, err)

	_, changed := m.UpdateKey(50, KeyDown)
	assert.True(t, changed, "pressing the Shift key changes the depressed mask")

	_, changed = m.UpdateKey(24, KeyDown)
	assert.False(t, changed, "pressing an ordinary letter key leaves the mask unchanged")

	state, changed := m.UpdateKey(50, KeyUp)
	assert.True(t, changed)
	assert.Equal(t, uint32(0), state.Depressed)
}

func TestNewStripsTrailingNUL(t *testing.T) {
	_, err := New(xkb.DefaultKeymap+"\x00\x00", true)
	require.NoError(t, err)
}

func TestUpdateStripsTrailingNUL(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	require.NoError(t, m.Update(xkb.DefaultKeymap+"\x00"))
}

func TestUpdatePreservesPressedKeysAndMasks(t *testing.T) {
	m, err := NewDefault(true)
	require.NoError(t, err)

	m.UpdateModifiers(1, 0, 0, 0)
	m.pressed[9] = "ESC"

	require.NoError(t, m.Update(xkb.DefaultKeymap))
	assert.Equal(t, uint32(1), m.Masks().Depressed)
	assert.Contains(t, m.pressed, uint16(9))
}
