// Package xkb models and (de)serializes the XKB text keymap format.
//
// Only xkb_keycodes and xkb_symbols are parsed structurally, because those
// are the only sections the dynamic keymap manager mutates at runtime;
// xkb_types, xkb_compatibility, and xkb_geometry are kept as opaque
// strings between their delimiting tokens. This mirrors
// original_source/src/linux/keymap2/parse_keymap.rs's ParsedKeymap.
package xkb

// Keymap is the typed representation of one xkb_keymap { ... }; block.
type Keymap struct {
	Keycodes      Keycodes
	Types         *string
	Compatibility *string
	Symbols       Symbols
	Geometry      *string
}

// Keycodes is the xkb_keycodes section: the range of legal raw codes and
// the symbolic identifier bound to each one, plus indicator and alias
// tables carried through unmodified.
type Keycodes struct {
	Name       string
	Minimum    uint32
	Maximum    uint32
	Entries    []KeycodeEntry
	Indicators []IndicatorEntry
	Aliases    []AliasEntry
}

// KeycodeEntry binds one <IDENTIFIER> to one numeric code.
type KeycodeEntry struct {
	Identifier string
	Code       uint32
}

// IndicatorEntry names one keyboard LED indicator by index.
type IndicatorEntry struct {
	Index uint32
	Name  string
}

// AliasEntry lets one identifier stand in for another.
type AliasEntry struct {
	Alias string
	Name  string
}

// Symbols is the xkb_symbols section: per-group names, the symbolic body
// attached to each key identifier, and modifier_map lines.
type Symbols struct {
	Name        string
	Groups      []string
	Keys        []SymbolKey
	ModifierMap []string
}

// SymbolKey is one `key <IDENTIFIER> { ... };` entry. Body is kept as the
// raw text between the identifier and the terminating semicolon, exactly
// as original_source keeps it as a String rather than parsing further.
type SymbolKey struct {
	Identifier string
	Body       string
}

// maxIdentifierLen returns the widest Identifier in the keycodes table,
// used by the printer to left-pad entries into a ragged-right column.
func (k Keycodes) maxIdentifierLen() int {
	max := 0
	for _, e := range k.Entries {
		if len(e.Identifier) > max {
			max = len(e.Identifier)
		}
	}
	return max
}

// maxIdentifierLen returns the widest key Identifier in the symbols table.
func (s Symbols) maxIdentifierLen() int {
	max := 0
	for _, k := range s.Keys {
		if len(k.Identifier) > max {
			max = len(k.Identifier)
		}
	}
	return max
}
