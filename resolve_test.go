package inputforge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSymbolForUnicodeKey(t *testing.T) {
	sym, err := resolveSymbol(Unicode('a'))
	require.NoError(t, err)
	assert.NotZero(t, sym.Value)
}

func TestResolveSymbolForNamedKey(t *testing.T) {
	sym, err := resolveSymbol(NamedKey(Return))
	require.NoError(t, err)
	assert.Equal(t, "Return", sym.Name)
}

func TestResolveSymbolRejectsRawKey(t *testing.T) {
	_, err := resolveSymbol(Raw(42))
	assert.Error(t, err)
}

func TestButtonCodeKnownButtons(t *testing.T) {
	cases := map[Button]uint32{
		Left:    0x110,
		Right:   0x111,
		Middle:  0x112,
		Forward: 0x115,
		Back:    0x116,
	}
	for button, want := range cases {
		got, err := buttonCode(button)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestButtonCodeRejectsScrollButtons(t *testing.T) {
	for _, b := range []Button{ScrollUp, ScrollDown, ScrollLeft, ScrollRight} {
		_, err := buttonCode(b)
		assert.Error(t, err)
	}
}

func TestKeyByNameResolvesKnownIdentifiers(t *testing.T) {
	key, ok := KeyByName("Control")
	require.True(t, ok)
	n, isNamed := key.IsNamed()
	require.True(t, isNamed)
	assert.Equal(t, Control, n)
}

func TestKeyByNameRejectsUnknownIdentifier(t *testing.T) {
	_, ok := KeyByName("NotARealKey")
	assert.False(t, ok)
}
