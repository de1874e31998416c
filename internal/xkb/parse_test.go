package xkb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeycodesSection(t *testing.T) {
	input := `xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 255;
    <ESC> = 9;
    <TAB> = 23;
    indicator 1 = "Caps Lock";
    alias <AC12> = <BKSL>;
};
xkb_symbols "(unnamed)" {
    key <ESC> { [ Escape ] };
};
};
`
	km, remaining, err := Parse(input)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(remaining))

	kc := km.Keycodes
	assert.Equal(t, "(unnamed)", kc.Name)
	assert.Equal(t, uint32(8), kc.Minimum)
	assert.Equal(t, uint32(255), kc.Maximum)
	assert.Equal(t, []KeycodeEntry{
		{Identifier: "ESC", Code: 9},
		{Identifier: "TAB", Code: 23},
	}, kc.Entries)
	assert.Equal(t, []IndicatorEntry{{Index: 1, Name: "Caps Lock"}}, kc.Indicators)
	assert.Equal(t, []AliasEntry{{Alias: "AC12", Name: "BKSL"}}, kc.Aliases)
}

func TestParseSymbolsSection(t *testing.T) {
	input := `xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 255;
    <ESC> = 9;
};
xkb_symbols "(unnamed)" {

    name[group1]="English (US)";

    key <ESC> { [ Escape ] };
    modifier_map Shift { <LFSH> };
};
};
`
	km, _, err := Parse(input)
	require.NoError(t, err)

	sym := km.Symbols
	assert.Equal(t, "(unnamed)", sym.Name)
	assert.Equal(t, []string{"English (US)"}, sym.Groups)
	assert.Equal(t, []SymbolKey{{Identifier: "ESC", Body: "{ [ Escape ] }"}}, sym.Keys)
	assert.Equal(t, []string{"Shift { <LFSH> }"}, sym.ModifierMap)
}

func TestParseOpaqueSectionsPreserved(t *testing.T) {
	input := `xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 255;
};
xkb_types "(unnamed)" {
	include "complete"
};
xkb_compatibility "(unnamed)" {
	include "complete"
};
xkb_symbols "(unnamed)" {
};
xkb_geometry "(unnamed)" {
	include "pc(pc105)"
};
};
`
	km, _, err := Parse(input)
	require.NoError(t, err)
	require.NotNil(t, km.Types)
	require.NotNil(t, km.Compatibility)
	require.NotNil(t, km.Geometry)
	assert.Contains(t, *km.Types, `include "complete"`)
	assert.Contains(t, *km.Compatibility, `include "complete"`)
	assert.Contains(t, *km.Geometry, `include "pc(pc105)"`)
}

func TestParseSectionsInAnyOrder(t *testing.T) {
	input := `xkb_keymap {
xkb_symbols "(unnamed)" {
    key <ESC> { [ Escape ] };
};
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 255;
    <ESC> = 9;
};
};
`
	km, _, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), km.Keycodes.Minimum)
	assert.Len(t, km.Symbols.Keys, 1)
}

func TestParseMissingKeycodesSection(t *testing.T) {
	input := `xkb_keymap {
xkb_symbols "(unnamed)" {
    key <ESC> { [ Escape ] };
};
};
`
	_, _, err := Parse(input)
	require.Error(t, err)
	assert.Equal(t, "keymap failed to parse: missing xkb_keycodes section", err.Error())
}

func TestParseMissingSymbolsSection(t *testing.T) {
	input := `xkb_keymap {
xkb_keycodes "(unnamed)" {
    minimum = 8;
    maximum = 255;
};
};
`
	_, _, err := Parse(input)
	require.Error(t, err)
	assert.Equal(t, "keymap failed to parse: missing xkb_symbols section", err.Error())
}

func TestParseGarbageReturnsSingleErrorCondition(t *testing.T) {
	_, _, err := Parse("not a keymap at all")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "keymap failed to parse: "))
}

func TestParseDefaultKeymapRoundTrips(t *testing.T) {
	km, remaining, err := Parse(DefaultKeymap)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(remaining))

	assert.Equal(t, uint32(8), km.Keycodes.Minimum)
	assert.Equal(t, uint32(255), km.Keycodes.Maximum)
	assert.NotEmpty(t, km.Keycodes.Entries)
	assert.NotEmpty(t, km.Symbols.Keys)
	assert.Len(t, km.Symbols.Keys, len(km.Keycodes.Entries))

	printed := km.Print()
	km2, _, err := Parse(printed)
	require.NoError(t, err)
	assert.Equal(t, km.Keycodes, km2.Keycodes)
	assert.Equal(t, km.Symbols, km2.Symbols)
}

func TestKeycodesPrintPadsIdentifiers(t *testing.T) {
	kc := Keycodes{
		Name:    "(unnamed)",
		Minimum: 8,
		Maximum: 255,
		Entries: []KeycodeEntry{
			{Identifier: "A", Code: 10},
			{Identifier: "LONGNAME", Code: 11},
		},
	}
	out := kc.print()
	assert.Contains(t, out, "           <A> = 10;\n")
	assert.Contains(t, out, "    <LONGNAME> = 11;\n")
}
