package wlinput

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inputforge/inputforge/internal/keymap"
	"github.com/inputforge/inputforge/internal/keysym"
)

// KeyDirection mirrors keymap.KeyDirection at the transport boundary so
// callers outside this package never need to import keymap just to press a
// key. Click is expanded by the caller into Press then Release.
type KeyDirection int

const (
	KeyPress KeyDirection = iota
	KeyRelease
)

// Conn is one live Wayland connection driving the virtual-keyboard,
// virtual-pointer, and (if advertised) input-method-v2 protocols. It owns
// the dynamic keymap for the keyboard device it creates, ported from
// original_source/src/linux/wayland.rs's Con.
type Conn struct {
	client *client

	keyboard    *keyboardDevice
	pointer     *pointerDevice
	inputMethod *inputMethodDevice

	km       *keymap.Manager
	baseTime time.Time
}

// NewConn connects to displayName (empty for $WAYLAND_DISPLAY) and binds
// whichever of the three virtual-input protocols the compositor advertises.
// At least the keyboard or the pointer protocol must be available.
func NewConn(displayName string) (*Conn, error) {
	c, err := newClient(displayName)
	if err != nil {
		return nil, err
	}

	con := &Conn{client: c, baseTime: time.Now()}

	if c.hasVirtualKeyboard() {
		kb, err := bindKeyboard(c)
		if err != nil {
			log.Warn("virtual keyboard advertised but bind failed", "err", err)
		} else {
			con.keyboard = kb
		}
	}
	if c.hasVirtualPointer() {
		p, err := bindPointer(c)
		if err != nil {
			log.Warn("virtual pointer advertised but bind failed", "err", err)
		} else {
			con.pointer = p
		}
	}
	if c.hasInputMethod() {
		im, err := bindInputMethod(c)
		if err != nil {
			log.Debug("input method advertised but bind failed", "err", err)
		} else {
			con.inputMethod = im
		}
	}

	if con.keyboard == nil && con.pointer == nil {
		c.close()
		return nil, fmt.Errorf("compositor advertises neither virtual-keyboard nor virtual-pointer")
	}

	if con.keyboard != nil {
		m, err := keymap.NewDefault(true)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("build default keymap: %w", err)
		}
		con.km = m
		if err := con.pushKeymap(); err != nil {
			c.close()
			return nil, err
		}
	}

	return con, nil
}

func (c *Conn) nowMs() uint32 {
	ms := time.Since(c.baseTime).Milliseconds()
	if ms < 0 || ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}

func (c *Conn) pushKeymap() error {
	format, file, size, err := c.km.FormatFileSize()
	if err != nil {
		return fmt.Errorf("serialize keymap: %w", err)
	}
	defer file.Close()

	if err := c.keyboard.device.keymap(uint32(format), int(file.Fd()), size); err != nil {
		return fmt.Errorf("send keymap request: %w", err)
	}
	if err := c.client.roundtrip(); err != nil {
		return fmt.Errorf("wait for keymap roundtrip: %w", err)
	}
	return nil
}

// Key presses or releases sym, allocating and pushing a new keycode if the
// current keymap doesn't already bind one, retrying once via
// UnmapEverything if allocation fails because the keymap is full of
// previous dynamic allocations.
func (c *Conn) Key(sym keysym.Symbol, dir KeyDirection) error {
	if c.keyboard == nil {
		return fmt.Errorf("no virtual keyboard bound")
	}

	keycode, ok := c.km.KeyToKeycode(sym)
	if !ok {
		kc, err := c.km.MapKey(sym)
		if err != nil {
			if !keymap.IsMappingError(err) {
				return err
			}
			if err := c.km.UnmapEverything(); err != nil {
				return fmt.Errorf("unmap everything after exhausted keymap: %w", err)
			}
			kc, err = c.km.MapKey(sym)
			if err != nil {
				return fmt.Errorf("map key after unmap retry: %w", err)
			}
		}
		keycode = kc
		if err := c.pushKeymap(); err != nil {
			return err
		}
	}

	return c.Raw(keycode, dir)
}

// Raw presses or releases a keycode directly, bypassing keysym resolution.
func (c *Conn) Raw(keycode uint16, dir KeyDirection) error {
	if c.keyboard == nil {
		return fmt.Errorf("no virtual keyboard bound")
	}

	kdir := keymap.KeyUp
	wireState := uint32(0)
	if dir == KeyPress {
		kdir = keymap.KeyDown
		wireState = 1
	}

	state, changed := c.km.UpdateKey(keycode, kdir)
	if kdir == keymap.KeyUp {
		// Reclaim the keycode now that it's no longer held; a no-op if it
		// was never one of this package's own dynamic allocations.
		c.km.Unmap(keycode)
	}
	if changed {
		if err := c.keyboard.device.modifiers(state.Depressed, state.Latched, state.Locked, state.Layout); err != nil {
			return fmt.Errorf("send modifiers request: %w", err)
		}
		return nil
	}

	if err := c.keyboard.device.key(c.nowMs(), uint32(keycode)-8, wireState); err != nil {
		return fmt.Errorf("send key request: %w", err)
	}
	return c.client.roundtrip()
}

// UpdateModifiers forwards an application-driven modifier mask straight to
// the compositor, bypassing keymap.Manager.UpdateKey's key-press tracking.
func (c *Conn) UpdateModifiers(depressed, latched, locked, layout uint32) error {
	if c.keyboard == nil {
		return fmt.Errorf("no virtual keyboard bound")
	}
	c.km.UpdateModifiers(depressed, latched, locked, layout)
	return c.keyboard.device.modifiers(depressed, latched, locked, layout)
}

// FastText commits a whole string through input-method-v2 in one request.
// ok is false when the compositor never advertised the protocol, in which
// case the caller should fall back to per-rune Key calls.
func (c *Conn) FastText(text string) (ok bool, err error) {
	if c.inputMethod == nil {
		return false, nil
	}
	if err := c.inputMethod.device.commitString(text); err != nil {
		return true, fmt.Errorf("commit_string request: %w", err)
	}
	if err := c.inputMethod.device.commit(c.inputMethod.device.serial); err != nil {
		return true, fmt.Errorf("commit request: %w", err)
	}
	return true, c.client.roundtrip()
}

// Button presses or releases a mouse button (kernel input-event-codes.h
// value, see btnLeft etc.).
func (c *Conn) Button(code uint32, dir KeyDirection) error {
	if c.pointer == nil {
		return fmt.Errorf("no virtual pointer bound")
	}
	state := pointerButtonReleased
	if dir == KeyPress {
		state = pointerButtonPressed
	}
	if err := c.pointer.device.button(c.nowMs(), code, state); err != nil {
		return fmt.Errorf("send button request: %w", err)
	}
	if err := c.pointer.device.frame(); err != nil {
		return fmt.Errorf("send frame request: %w", err)
	}
	return c.client.roundtrip()
}

// MoveRelative moves the pointer by (dx, dy) from its current position.
func (c *Conn) MoveRelative(dx, dy float64) error {
	if c.pointer == nil {
		return fmt.Errorf("no virtual pointer bound")
	}
	if err := c.pointer.device.motion(c.nowMs(), floatToFixed(dx), floatToFixed(dy)); err != nil {
		return fmt.Errorf("send motion request: %w", err)
	}
	if err := c.pointer.device.frame(); err != nil {
		return err
	}
	return c.client.roundtrip()
}

// MoveAbsolute moves the pointer to (x, y) within a surface xExtent by
// yExtent wide, the units zwlr_virtual_pointer_v1.motion_absolute takes.
func (c *Conn) MoveAbsolute(x, y, xExtent, yExtent uint32) error {
	if c.pointer == nil {
		return fmt.Errorf("no virtual pointer bound")
	}
	if err := c.pointer.device.motionAbsolute(c.nowMs(), x, y, xExtent, yExtent); err != nil {
		return fmt.Errorf("send motion_absolute request: %w", err)
	}
	if err := c.pointer.device.frame(); err != nil {
		return err
	}
	return c.client.roundtrip()
}

// Scroll sends one discrete scroll tick of length along axis (0=vertical,
// 1=horizontal). The sign of length encodes direction.
func (c *Conn) Scroll(axis uint32, length float64) error {
	if c.pointer == nil {
		return fmt.Errorf("no virtual pointer bound")
	}
	if err := c.pointer.device.axis(c.nowMs(), axis, floatToFixed(length)); err != nil {
		return fmt.Errorf("send axis request: %w", err)
	}
	if err := c.pointer.device.frame(); err != nil {
		return err
	}
	return c.client.roundtrip()
}

// MainDisplay is not implemented: unlike X11 and the portal, this package
// does not bind wl_output to track connected monitor geometry, since
// nothing else in the keyboard/pointer paths needs it.
func (c *Conn) MainDisplay() (width, height int32, err error) {
	return 0, 0, fmt.Errorf("output geometry is not tracked by the Wayland transport")
}

// Location is not implemented: no Wayland protocol exposes the pointer's
// absolute position to a client that isn't the window under it.
func (c *Conn) Location() (x, y int32, err error) {
	return 0, 0, fmt.Errorf("pointer location cannot be queried under Wayland")
}

// PressedKeycodes returns the keycodes this connection's keymap manager
// currently believes are held down, for release-on-close handling.
func (c *Conn) PressedKeycodes() []uint16 {
	if c.km == nil {
		return nil
	}
	return c.km.PressedKeycodes()
}

// Close releases every bound protocol object and closes the connection.
func (c *Conn) Close() error {
	if c.inputMethod != nil {
		c.inputMethod.close()
	}
	if c.pointer != nil {
		c.pointer.close()
	}
	if c.keyboard != nil {
		c.keyboard.close()
	}
	return c.client.close()
}
