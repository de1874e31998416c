package inputforge

import (
	"fmt"

	"github.com/inputforge/inputforge/internal/keysym"
)

// namedKeyIdentifiers maps each namedKey constant to the Go identifier
// keysym.Named expects, mirroring the identifier spelling spec.md §3 gives
// each named key (and, not coincidentally, the Rust source's Key variant
// names in original_source/src/keycodes.rs).
var namedKeyIdentifiers = map[namedKey]string{
	Alt:        "Alt",
	Backspace:  "Backspace",
	CapsLock:   "CapsLock",
	Control:    "Control",
	Delete:     "Delete",
	DownArrow:  "DownArrow",
	End:        "End",
	Escape:     "Escape",
	F1:         "F1",
	F2:         "F2",
	F3:         "F3",
	F4:         "F4",
	F5:         "F5",
	F6:         "F6",
	F7:         "F7",
	F8:         "F8",
	F9:         "F9",
	F10:        "F10",
	F11:        "F11",
	F12:        "F12",
	F13:        "F13",
	F14:        "F14",
	F15:        "F15",
	F16:        "F16",
	F17:        "F17",
	F18:        "F18",
	F19:        "F19",
	F20:        "F20",
	Home:       "Home",
	LeftArrow:  "LeftArrow",
	Meta:       "Meta",
	Option:     "Option",
	PageDown:   "PageDown",
	PageUp:     "PageUp",
	Return:     "Return",
	RightArrow: "RightArrow",
	Shift:      "Shift",
	Space:      "Space",
	Tab:        "Tab",
	UpArrow:    "UpArrow",
}

// KeyByName resolves one of the named keys' Go identifiers (e.g.
// "Control", "F5", "Return") to a Key, for callers building Keys from
// user-supplied strings (the CLI's "key" subcommand).
func KeyByName(name string) (Key, bool) {
	for n, ident := range namedKeyIdentifiers {
		if ident == name {
			return NamedKey(n), true
		}
	}
	return Key{}, false
}

// resolveSymbol maps a Key to the keysym it names, for every Key variant
// except raw keycodes (which bypass keysym resolution entirely and are
// handled at the call site instead).
func resolveSymbol(k Key) (keysym.Symbol, error) {
	if r, ok := k.IsUnicode(); ok {
		return keysym.FromRune(r), nil
	}
	if n, ok := k.IsNamed(); ok {
		ident, ok := namedKeyIdentifiers[n]
		if !ok {
			return keysym.Symbol{}, fmt.Errorf("unknown named key %d", n)
		}
		sym, ok := keysym.Named(ident)
		if !ok {
			return keysym.Symbol{}, fmt.Errorf("named key %q has no keysym mapping", ident)
		}
		return sym, nil
	}
	return keysym.Symbol{}, fmt.Errorf("resolveSymbol called with a raw key")
}

// buttonCode maps a Button to its kernel input-event-codes.h value. Scroll
// buttons have no button code: Input.Button resolves those to a Scroll
// call instead of reaching this function, matching
// original_source/src/linux/xdg_desktop.rs's Mouse::button match arm.
func buttonCode(b Button) (uint32, error) {
	switch b {
	case Left:
		return 0x110, nil
	case Right:
		return 0x111, nil
	case Middle:
		return 0x112, nil
	case Forward:
		return 0x115, nil
	case Back:
		return 0x116, nil
	default:
		return 0, fmt.Errorf("button %d has no button code", b)
	}
}
