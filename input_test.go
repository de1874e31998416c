package inputforge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inputforge/inputforge/internal/keysym"
	"github.com/inputforge/inputforge/internal/linux"
)

// fakeDevice is a linux.Device test double recording every call so tests
// can assert on the sequence of operations Input translates its public
// methods into, without a real Wayland/X11/portal connection.
type fakeDevice struct {
	backend linux.Backend
	calls   []string

	keyErr        error
	mainDisplayW  int32
	mainDisplayH  int32
	mainDisplayErr error
	locationX, locationY int32
	locationErr   error
	fastTextOK    bool
	fastTextErr   error
	pressedKeycodes []uint16
	closed        bool
}

func (f *fakeDevice) Backend() linux.Backend { return f.backend }

func (f *fakeDevice) Key(sym keysym.Symbol, dir linux.Direction) error {
	f.calls = append(f.calls, callRecord("key", sym.Name, dir))
	return f.keyErr
}

func (f *fakeDevice) Raw(keycode uint16, dir linux.Direction) error {
	f.calls = append(f.calls, callRecord("raw", keycode, dir))
	return nil
}

func (f *fakeDevice) FastText(text string) (bool, error) {
	f.calls = append(f.calls, "fasttext:"+text)
	return f.fastTextOK, f.fastTextErr
}

func (f *fakeDevice) Button(code uint32, dir linux.Direction) error {
	f.calls = append(f.calls, callRecord("button", code, dir))
	return nil
}

func (f *fakeDevice) MoveRelative(dx, dy float64) error {
	f.calls = append(f.calls, "moverel")
	return nil
}

func (f *fakeDevice) MoveAbsolute(x, y int32) error {
	f.calls = append(f.calls, "moveabs")
	return nil
}

func (f *fakeDevice) Scroll(axis int, length float64) error {
	f.calls = append(f.calls, "scroll")
	return nil
}

func (f *fakeDevice) MainDisplay() (int32, int32, error) {
	return f.mainDisplayW, f.mainDisplayH, f.mainDisplayErr
}

func (f *fakeDevice) Location() (int32, int32, error) {
	return f.locationX, f.locationY, f.locationErr
}

func (f *fakeDevice) PressedKeycodes() []uint16 { return f.pressedKeycodes }

func (f *fakeDevice) Close() error {
	f.closed = true
	return nil
}

func callRecord(op string, a interface{}, dir linux.Direction) string {
	d := "press"
	if dir == linux.Release {
		d = "release"
	}
	return "" + op + ":" + toString(a) + ":" + d
}

func toString(a interface{}) string {
	switch v := a.(type) {
	case string:
		return v
	case uint16:
		return string(rune(v))
	case uint32:
		return string(rune(v))
	default:
		return "?"
	}
}

func newTestInput(device *fakeDevice) *Input {
	return &Input{settings: DefaultSettings(), device: device}
}

func TestKeyClickSendsPressThenRelease(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Key(NamedKey(Return), Click))

	require.Len(t, dev.calls, 2)
	assert.Contains(t, dev.calls[0], ":press")
	assert.Contains(t, dev.calls[1], ":release")
}

func TestKeyPressTracksHeldUntilRelease(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Key(NamedKey(Control), Press))
	assert.Len(t, in.Held(), 1)

	require.NoError(t, in.Key(NamedKey(Control), Release))
	assert.Empty(t, in.Held())
}

func TestKeyRawBypassesSymbolResolution(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Key(Raw(77), Click))

	require.Len(t, dev.calls, 2)
	assert.Contains(t, dev.calls[0], "raw:")
}

func TestButtonRedirectsScrollVariantsToScroll(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Button(ScrollUp, Click))

	require.Len(t, dev.calls, 1)
	assert.Equal(t, "scroll", dev.calls[0])
}

func TestButtonIgnoresScrollVariantsOnRelease(t *testing.T) {
	for _, b := range []Button{ScrollUp, ScrollDown, ScrollLeft, ScrollRight} {
		dev := &fakeDevice{}
		in := newTestInput(dev)

		require.NoError(t, in.Button(b, Release))

		assert.Empty(t, dev.calls, "scroll button %v Release must not emit a scroll call", b)
	}
}

func TestButtonScrollVariantsOnPressStillScroll(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Button(ScrollDown, Press))

	require.Len(t, dev.calls, 1)
	assert.Equal(t, "scroll", dev.calls[0])
}

func TestMoveMouseRejectsNegativeAbsoluteCoordinates(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	err := in.MoveMouse(-1, 0, Abs)
	require.Error(t, err)

	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, InvalidInput, ie.Kind)
	assert.Empty(t, dev.calls)
}

func TestTextFallsBackToPerRuneKeyWhenNoFastPath(t *testing.T) {
	dev := &fakeDevice{fastTextOK: false}
	in := newTestInput(dev)

	require.NoError(t, in.Text("hi"))

	// fasttext attempt, then 2 runes * 2 events (press+release) = 5 calls
	require.Len(t, dev.calls, 5)
	assert.Equal(t, "fasttext:hi", dev.calls[0])
}

func TestTextUsesFastPathWhenAvailable(t *testing.T) {
	dev := &fakeDevice{fastTextOK: true}
	in := newTestInput(dev)

	require.NoError(t, in.Text("hello"))
	assert.Len(t, dev.calls, 1)
}

func TestMainDisplayWrapsUnsupportedAsUnsupportedKind(t *testing.T) {
	dev := &fakeDevice{mainDisplayErr: assertErr("not tracked")}
	in := newTestInput(dev)

	_, _, err := in.MainDisplay()
	require.Error(t, err)

	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, Unsupported, ie.Kind)
}

func TestCloseReleasesHeldKeysWhenConfigured(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)
	in.settings.ReleaseKeysWhenDropped = true

	require.NoError(t, in.Key(NamedKey(Shift), Press))
	dev.calls = nil // only interested in what Close triggers

	require.NoError(t, in.Close())
	assert.True(t, dev.closed)
	assert.Contains(t, dev.calls[0], ":release")
}

func TestCloseSkipsReleaseWhenDisabled(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)
	in.settings.ReleaseKeysWhenDropped = false

	require.NoError(t, in.Key(NamedKey(Shift), Press))
	dev.calls = nil

	require.NoError(t, in.Close())
	assert.True(t, dev.closed)
	assert.Empty(t, dev.calls)
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertErr(msg string) error { return simpleErr(msg) }
