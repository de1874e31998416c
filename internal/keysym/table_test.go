package keysym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedResolvesKnownIdentifiers(t *testing.T) {
	sym, ok := Named("Escape")
	require.True(t, ok)
	assert.Equal(t, uint32(0xff1b), sym.Value)
	assert.Equal(t, "Escape", sym.Name)
}

func TestNamedRejectsUnknownIdentifier(t *testing.T) {
	_, ok := Named("NotAKey")
	assert.False(t, ok)
}

func TestFromRuneUsesMnemonicNameForLetters(t *testing.T) {
	sym := FromRune('a')
	assert.Equal(t, uint32('a'), sym.Value)
	assert.Equal(t, "a", sym.Name)
}

func TestFromRuneUsesMnemonicNameForPunctuation(t *testing.T) {
	sym := FromRune('!')
	assert.Equal(t, "exclam", sym.Name)
}

func TestFromRuneFallsBackToHexNameWithinLatin1(t *testing.T) {
	sym := FromRune(rune(0xa9)) // copyright sign, has no mnemonic entry
	assert.Equal(t, uint32(0xa9), sym.Value)
	assert.Equal(t, "U00A9", sym.Name)
}

func TestFromRuneAppliesUnicodeOffsetOutsideLatin1(t *testing.T) {
	sym := FromRune('€') // U+20AC, outside the 0x20-0xff range
	assert.Equal(t, unicodeOffset+uint32(0x20AC), sym.Value)
	assert.Equal(t, "U20AC", sym.Name)
}
