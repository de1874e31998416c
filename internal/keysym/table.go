// Package keysym maps inputforge's platform-independent Key values onto
// XKB/X11 keysyms: numeric values and the canonical names (without the
// "XK_" prefix) the keymap grammar and xkbcommon both expect.
package keysym

import "fmt"

// Symbol is an XKB keysym value together with its canonical name (without
// the "XK_" prefix, matching the convention used by
// original_source/src/linux/keymap2/mod.rs's map_key, which strips that
// prefix before writing the symbols-table entry).
type Symbol struct {
	Value uint32
	Name  string
}

// unicodeOffset is the X11 convention for keysyms outside Latin-1: Unicode
// code point U+0100..U+10FFFF is represented as keysym 0x01000000+codepoint.
// Codepoints already in Latin-1 (U+0020..U+00FF minus a few punctuation
// holes) keep their historical 1:1 keysym value.
const unicodeOffset = 0x01000000

// namedSymbols is the closed mapping for inputforge's named keys.
var namedSymbols = map[string]Symbol{
	"Alt":        {0xffe9, "Alt_L"},
	"Backspace":  {0xff08, "BackSpace"},
	"CapsLock":   {0xffe5, "Caps_Lock"},
	"Control":    {0xffe3, "Control_L"},
	"Delete":     {0xffff, "Delete"},
	"DownArrow":  {0xff54, "Down"},
	"End":        {0xff57, "End"},
	"Escape":     {0xff1b, "Escape"},
	"F1":         {0xffbe, "F1"},
	"F2":         {0xffbf, "F2"},
	"F3":         {0xffc0, "F3"},
	"F4":         {0xffc1, "F4"},
	"F5":         {0xffc2, "F5"},
	"F6":         {0xffc3, "F6"},
	"F7":         {0xffc4, "F7"},
	"F8":         {0xffc5, "F8"},
	"F9":         {0xffc6, "F9"},
	"F10":        {0xffc7, "F10"},
	"F11":        {0xffc8, "F11"},
	"F12":        {0xffc9, "F12"},
	"F13":        {0xffca, "F13"},
	"F14":        {0xffcb, "F14"},
	"F15":        {0xffcc, "F15"},
	"F16":        {0xffcd, "F16"},
	"F17":        {0xffce, "F17"},
	"F18":        {0xffcf, "F18"},
	"F19":        {0xffd0, "F19"},
	"F20":        {0xffd1, "F20"},
	"Home":       {0xff50, "Home"},
	"LeftArrow":  {0xff51, "Left"},
	"Meta":       {0xffeb, "Super_L"},
	"Option":     {0xffe9, "Alt_L"},
	"PageDown":   {0xff56, "Next"},
	"PageUp":     {0xff55, "Prior"},
	"Return":     {0xff0d, "Return"},
	"RightArrow": {0xff53, "Right"},
	"Shift":      {0xffe1, "Shift_L"},
	"Space":      {0x0020, "space"},
	"Tab":        {0xff09, "Tab"},
	"UpArrow":    {0xff52, "Up"},
}

// Named resolves one of inputforge's closed-set named keys by its Go
// identifier (e.g. "Control", "F5") to its keysym.
func Named(name string) (Symbol, bool) {
	sym, ok := namedSymbols[name]
	return sym, ok
}

// FromRune resolves a Unicode scalar value to its keysym, following the
// X11 Unicode-keysym convention. Every rune has a name of the form
// "U<hex>" when it falls outside the small set of keysyms with a
// historical mnemonic name (those are listed in latin1Names below).
func FromRune(r rune) Symbol {
	switch r {
	case '\n':
		return namedSymbols["Return"]
	case '\t':
		return namedSymbols["Tab"]
	}
	if name, ok := latin1Names[r]; ok {
		return Symbol{Value: uint32(r), Name: name}
	}
	if r >= 0x20 && r <= 0xff {
		return Symbol{Value: uint32(r), Name: fmt.Sprintf("U%04X", r)}
	}
	return Symbol{Value: unicodeOffset + uint32(r), Name: fmt.Sprintf("U%04X", r)}
}

// latin1Names covers the printable ASCII range with the mnemonic names XKB
// ships for them (letters, digits, common punctuation); anything not
// listed here falls back to the "U<hex>" form FromRune generates.
var latin1Names = map[rune]string{
	'0': "0", '1': "1", '2': "2", '3': "3", '4': "4",
	'5': "5", '6': "6", '7': "7", '8': "8", '9': "9",
	'a': "a", 'b': "b", 'c': "c", 'd': "d", 'e': "e", 'f': "f", 'g': "g",
	'h': "h", 'i': "i", 'j': "j", 'k': "k", 'l': "l", 'm': "m", 'n': "n",
	'o': "o", 'p': "p", 'q': "q", 'r': "r", 's': "s", 't': "t", 'u': "u",
	'v': "v", 'w': "w", 'x': "x", 'y': "y", 'z': "z",
	'A': "A", 'B': "B", 'C': "C", 'D': "D", 'E': "E", 'F': "F", 'G': "G",
	'H': "H", 'I': "I", 'J': "J", 'K': "K", 'L': "L", 'M': "M", 'N': "N",
	'O': "O", 'P': "P", 'Q': "Q", 'R': "R", 'S': "S", 'T': "T", 'U': "U",
	'V': "V", 'W': "W", 'X': "X", 'Y': "Y", 'Z': "Z",
	' ': "space", '!': "exclam", '"': "quotedbl", '#': "numbersign",
	'$': "dollar", '%': "percent", '&': "ampersand", '\'': "apostrophe",
	'(': "parenleft", ')': "parenright", '*': "asterisk", '+': "plus",
	',': "comma", '-': "minus", '.': "period", '/': "slash",
	':': "colon", ';': "semicolon", '<': "less", '=': "equal",
	'>': "greater", '?': "question", '@': "at",
	'[': "bracketleft", '\\': "backslash", ']': "bracketright",
	'^': "asciicircum", '_': "underscore", '`': "grave",
	'{': "braceleft", '|': "bar", '}': "braceright", '~': "asciitilde",
	'\n': "Return", '\t': "Tab",
}
