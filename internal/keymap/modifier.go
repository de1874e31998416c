// Package keymap owns the dynamic XKB keymap: parsing what the compositor
// hands us, allocating new keycodes for keys it doesn't yet define, and
// tracking the resulting modifier state, all while preserving pressed-key
// and mask state across the keymap rebuilds that allocation requires.
package keymap

import (
	"strings"

	"github.com/inputforge/inputforge/internal/xkb"
)

// ModifierState is the bitflag vector a compositor needs after any event
// that can change it: the depressed/latched/locked modifier masks plus the
// effective layout (group) index. It mirrors the four values xkbcommon's
// State::serialize_mods/serialize_layout expose, which every Linux
// transport forwards verbatim to the compositor (Wayland's
// zwp_virtual_keyboard_v1.modifiers request, the portal's keysym path, and
// XTEST which needs no explicit modifier event at all since the X server
// derives it from held keys).
type ModifierState struct {
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Layout    uint32
}

// Equal reports whether two states carry the same bits, used to decide
// whether a key event actually changed the modifier vector and so needs a
// modifiers request sent to the compositor.
func (m ModifierState) Equal(o ModifierState) bool {
	return m.Depressed == o.Depressed && m.Latched == o.Latched &&
		m.Locked == o.Locked && m.Layout == o.Layout
}

// modifierTracker derives a depressed modifier mask from which identifiers
// are currently held, using the keymap's modifier_map lines to learn which
// identifier maps to which named modifier bit.
//
// A real xkbcommon compiles the keymap's xkb_types/xkb_compatibility
// sections into a full modifier resolution table; this tracker only
// resolves the small set of named X11 modifiers (Shift, Lock, Control,
// Mod1..Mod5) that modifier_map lines name directly. The compiled-in
// default keymap carries such lines; the keymap x11input synthesizes from
// the server's keyboard mapping carries none, so its depressed mask stays
// 0. See DESIGN.md for
// why the fuller xkbcommon semantics were not reimplemented.
type modifierTracker struct {
	bitByIdentifier map[string]uint32
	latched         uint32
	locked          uint32
	layout          uint32
}

var namedModifierBits = map[string]uint32{
	"Shift":   1 << 0,
	"Lock":    1 << 1,
	"Control": 1 << 2,
	"Mod1":    1 << 3,
	"Mod2":    1 << 4,
	"Mod3":    1 << 5,
	"Mod4":    1 << 6,
	"Mod5":    1 << 7,
}

func newModifierTracker(sym xkb.Symbols) *modifierTracker {
	t := &modifierTracker{bitByIdentifier: map[string]uint32{}}
	for _, line := range sym.ModifierMap {
		// "Shift { <LFSH>, <RTSH> }" -> modifier name, identifier list.
		name, rest, ok := cutField(line)
		if !ok {
			continue
		}
		bit, ok := namedModifierBits[name]
		if !ok {
			continue
		}
		for _, ident := range identifiersIn(rest) {
			t.bitByIdentifier[ident] = bit
		}
	}
	return t
}

// cutField splits "Name { ... }" into the leading bare word and the rest.
func cutField(s string) (name, rest string, ok bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, '{')
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:i]), s[i:], true
}

// identifiersIn extracts every <IDENTIFIER> token from a brace-delimited
// modifier_map body.
func identifiersIn(s string) []string {
	var out []string
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			return out
		}
		s = s[start+1:]
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return out
		}
		out = append(out, s[:end])
		s = s[end+1:]
	}
}

// depressedMask computes the bitwise OR of every currently-held
// identifier's modifier bit.
func (t *modifierTracker) depressedMask(pressedIdentifiers map[string]bool) uint32 {
	var mask uint32
	for ident := range pressedIdentifiers {
		mask |= t.bitByIdentifier[ident]
	}
	return mask
}
