// Package x11input is the X11 transport: key and button events go out
// through the XTEST extension, and new keys are mapped by editing the X
// server's live keycode-to-keysym table directly with core-protocol
// ChangeKeyboardMapping requests — there is no keymap file to push the way
// Wayland and the portal receive one.
//
// Grounded on original_source/src/linux/x11rb.rs, ported from x11rb to the
// pure-Go github.com/jezek/xgb client (plus its xtest extension package),
// the only X11 binding the example pack demonstrates.
package x11input

import (
	"fmt"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"

	"github.com/inputforge/inputforge/internal/keymap"
	"github.com/inputforge/inputforge/internal/keysym"
	"github.com/inputforge/inputforge/internal/xkb"
)

// Button codes XTEST's fake button-event "detail" field expects, matching
// the historical X11 button numbering original_source uses.
const (
	btnLeft        = 1
	btnMiddle      = 2
	btnRight       = 3
	btnScrollUp    = 4
	btnScrollDown  = 5
	btnScrollLeft  = 6
	btnScrollRight = 7
	btnBack        = 8
	btnForward     = 9
)

// Conn is one live X11 connection driving key/button/motion events through
// XTEST.
type Conn struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window

	minKeycode byte
	maxKeycode byte
	perKeycode byte

	km *keymap.Manager

	recentKeycodes []byte // last-64-then-clear repeat-delay tracker, see pendingDelay
	lastEventAt    time.Time
	delay          time.Duration
}

// NewConn connects to displayName (empty for $DISPLAY), verifies the
// XTEST extension is present, and builds a keymap.Manager from the
// server's current keyboard mapping.
func NewConn(displayName string, delay time.Duration) (*Conn, error) {
	conn, err := xgb.NewConnDisplay(displayName)
	if err != nil {
		return nil, fmt.Errorf("connect to X11 display: %w", err)
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("XTEST extension not available: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	c := &Conn{
		conn:       conn,
		screen:     screen,
		root:       screen.Root,
		minKeycode: byte(setup.MinKeycode),
		maxKeycode: byte(setup.MaxKeycode),
		delay:      delay,
	}

	if err := c.loadKeymap(); err != nil {
		conn.Close()
		return nil, err
	}

	return c, nil
}

// loadKeymap reads the server's current keycode table via GetKeyboardMapping
// and assembles it into the same xkb.Keymap grammar model the Wayland
// transport parses from text, so both transports share one allocation
// algorithm (keymap.Manager.MapKey).
func (c *Conn) loadKeymap() error {
	count := c.maxKeycode - c.minKeycode + 1
	reply, err := xproto.GetKeyboardMapping(c.conn, xproto.Keycode(c.minKeycode), count).Reply()
	if err != nil {
		return fmt.Errorf("GetKeyboardMapping: %w", err)
	}
	c.perKeycode = reply.KeysymsPerKeycode

	km := buildKeymapFromTable(c.minKeycode, c.maxKeycode, c.perKeycode, reply.Keysyms)
	c.km = keymap.NewFromKeymap(km, false)
	return nil
}

// Key presses or releases sym, mapping a new keycode via ChangeKeyboardMapping
// first if the server's table doesn't already carry one.
func (c *Conn) Key(sym keysym.Symbol, press bool) error {
	keycode, ok := c.km.KeyToKeycode(sym)
	if !ok {
		kc, err := c.mapKey(sym)
		if err != nil {
			return err
		}
		keycode = kc
	}
	return c.Raw(keycode, press)
}

// mapKey finds a keycode whose XTEST/XKB slots the server (and this
// package) have not already used, writes the keysym into both of the
// slot's two keysym positions — the "tolower/toupper" trick that keeps
// simple clients which only look at one shift level working — and syncs.
func (c *Conn) mapKey(sym keysym.Symbol) (uint16, error) {
	kc, err := c.km.MapKey(sym)
	if err != nil {
		if !keymap.IsMappingError(err) {
			return 0, err
		}
		if uerr := c.km.UnmapEverything(); uerr != nil {
			return 0, fmt.Errorf("unmap everything after exhausted keymap: %w", uerr)
		}
		kc, err = c.km.MapKey(sym)
		if err != nil {
			return 0, fmt.Errorf("map key after unmap retry: %w", err)
		}
	}

	keysyms := make([]xproto.Keysym, c.perKeycode)
	keysyms[0] = xproto.Keysym(sym.Value)
	if c.perKeycode > 1 {
		keysyms[1] = xproto.Keysym(sym.Value)
	}
	if err := xproto.ChangeKeyboardMappingChecked(
		c.conn, 1, xproto.Keycode(kc), c.perKeycode, keysyms,
	).Check(); err != nil {
		return 0, fmt.Errorf("ChangeKeyboardMapping: %w", err)
	}
	c.conn.Sync()

	return kc, nil
}

// Raw presses or releases a keycode directly via XTEST, honoring the
// configured minimum inter-key delay (see pendingDelay).
func (c *Conn) Raw(keycode uint16, press bool) error {
	if keycode > 255 {
		return fmt.Errorf("keycode %d exceeds the X11 8-bit keycode ceiling", keycode)
	}
	kc8 := byte(keycode)

	eventType := byte(xproto.KeyPress)
	if !press {
		eventType = byte(xproto.KeyRelease)
	}

	delayMs := c.pendingDelay(kc8)
	if err := xtest.FakeInputChecked(
		c.conn, eventType, kc8, uint32(delayMs), c.root, 0, 0, 0,
	).Check(); err != nil {
		return fmt.Errorf("XTestFakeInput key event: %w", err)
	}

	kdir := keymap.KeyUp
	if press {
		kdir = keymap.KeyDown
	}
	c.km.UpdateKey(keycode, kdir)
	if kdir == keymap.KeyUp {
		// Reclaim the keycode now that it's no longer held; a no-op if it
		// was never one of this package's own dynamic allocations.
		c.km.Unmap(keycode)
	}
	return nil
}

// pendingDelay mirrors original_source's 64-entry-then-clear repeat
// tracker: if this keycode was recently sent (or the tracker has grown
// past 64 entries without seeing one), wait out the remainder of the
// configured delay; otherwise a minimal 1ms delay is enough to keep event
// ordering intact.
func (c *Conn) pendingDelay(keycode byte) uint32 {
	needsDelay := len(c.recentKeycodes) > 64
	if !needsDelay {
		for _, kc := range c.recentKeycodes {
			if kc == keycode {
				needsDelay = true
				break
			}
		}
	}

	var delayMs uint32
	if needsDelay {
		elapsed := time.Since(c.lastEventAt)
		remaining := c.delay - elapsed
		if remaining < 0 {
			remaining = 0
		}
		delayMs = uint32(remaining.Milliseconds())
		c.recentKeycodes = c.recentKeycodes[:0]
	} else {
		delayMs = 1
	}
	c.recentKeycodes = append(c.recentKeycodes, keycode)
	c.lastEventAt = time.Now()
	return delayMs
}

// Button presses or releases a mouse button via XTEST.
func (c *Conn) Button(detail byte, press bool) error {
	eventType := byte(xproto.ButtonPress)
	if !press {
		eventType = byte(xproto.ButtonRelease)
	}
	if err := xtest.FakeInputChecked(c.conn, eventType, detail, 0, c.root, 0, 0, 0).Check(); err != nil {
		return fmt.Errorf("XTestFakeInput button event: %w", err)
	}
	return nil
}

// Scroll sends length clicks of the scroll button implied by axis and
// length's sign, one XTEST click per unit of scroll.
func (c *Conn) Scroll(axis int, length int32) error {
	var detail byte
	switch {
	case axis == 0 && length < 0:
		detail = btnScrollUp
	case axis == 0 && length > 0:
		detail = btnScrollDown
	case axis != 0 && length < 0:
		detail = btnScrollLeft
	default:
		detail = btnScrollRight
	}

	n := length
	if n < 0 {
		n = -n
	}
	for i := int32(0); i < n; i++ {
		if err := c.Button(detail, true); err != nil {
			return err
		}
		if err := c.Button(detail, false); err != nil {
			return err
		}
	}
	return nil
}

// MoveMouse moves the pointer via XTEST MotionNotify, relative or absolute.
func (c *Conn) MoveMouse(x, y int32, relative bool) error {
	if x < -32768 || x > 32767 || y < -32768 || y > 32767 {
		return fmt.Errorf("coordinate out of XTEST's 16-bit range")
	}
	detail := byte(0)
	if relative {
		detail = 1
	}
	if err := xtest.FakeInputChecked(
		c.conn, byte(xproto.MotionNotify), detail, 0, c.root, int16(x), int16(y), 0,
	).Check(); err != nil {
		return fmt.Errorf("XTestFakeInput motion event: %w", err)
	}
	return nil
}

// MainDisplay returns the default screen's pixel dimensions. Multi-monitor
// geometry via RandR is not queried: every caller in this package only
// needs a single (width, height) pair to bound absolute-move coordinates.
func (c *Conn) MainDisplay() (width, height int32, err error) {
	return int32(c.screen.WidthInPixels), int32(c.screen.HeightInPixels), nil
}

// Location returns the pointer's current position relative to the root
// window.
func (c *Conn) Location() (x, y int32, err error) {
	reply, err := xproto.QueryPointer(c.conn, c.root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("QueryPointer: %w", err)
	}
	return int32(reply.RootX), int32(reply.RootY), nil
}

// PressedKeycodes returns the keycodes this connection's keymap manager
// currently believes are held down, for release-on-close handling.
func (c *Conn) PressedKeycodes() []uint16 {
	return c.km.PressedKeycodes()
}

// Close resets this connection's keymap model to the server's original
// keyboard mapping (keymap.Manager.UnmapEverything) and closes the X11
// connection. Keysyms that mapKey wrote into the server's mapping with
// ChangeKeyboardMapping are not cleared on the server.
func (c *Conn) Close() error {
	if c.km != nil {
		_ = c.km.UnmapEverything()
	}
	c.conn.Close()
	return nil
}

// buildKeymapFromTable assembles an xkb.Keymap structurally equivalent to
// what Parse would produce from text, directly from GetKeyboardMapping's
// flat keysym array (one row of perKeycode columns per keycode from min to
// max). Identifiers are synthesized as "KC<n>" since the X11 core protocol
// has no notion of symbolic key names, only numeric keycodes; keycodes
// whose every column is NoSymbol (0) are omitted, the same as a keymap
// text that never mentions an unused keycode.
func buildKeymapFromTable(min, max, perKeycode byte, keysyms []xproto.Keysym) xkb.Keymap {
	kc := xkb.Keycodes{
		Name:    "x11-core",
		Minimum: uint32(min),
		Maximum: uint32(max),
	}
	sym := xkb.Symbols{Name: "x11-core"}

	for code := int(min); code <= int(max); code++ {
		row := keysyms[(code-int(min))*int(perKeycode) : (code-int(min)+1)*int(perKeycode)]
		allZero := true
		for _, v := range row {
			if v != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			continue
		}

		ident := fmt.Sprintf("KC%d", code)
		kc.Entries = append(kc.Entries, xkb.KeycodeEntry{Identifier: ident, Code: uint32(code)})

		var names []string
		for _, v := range row {
			names = append(names, symbolNameForKeysym(uint32(v)))
		}
		sym.Keys = append(sym.Keys, xkb.SymbolKey{
			Identifier: ident,
			Body:       "{ [ " + joinComma(names) + " ] }",
		})
	}

	return xkb.Keymap{Keycodes: kc, Symbols: sym}
}

// symbolNameForKeysym renders a raw keysym value as the bare name this
// package's own allocations use: keysym.FromRune for the Unicode/Latin-1
// range this table is built from, falling back to a hex literal the
// printer is happy to round-trip for anything outside it (X11 has
// vendor-specific keysyms this package never allocates itself but must
// still preserve when re-printing the table).
func symbolNameForKeysym(v uint32) string {
	if v == 0 {
		return "NoSymbol"
	}
	if v >= 0x20 && v <= 0xff {
		return keysym.FromRune(rune(v)).Name
	}
	if v < 0x01000000 {
		return fmt.Sprintf("0x%x", v)
	}
	return keysym.FromRune(rune(v - 0x01000000)).Name
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
