// Package linux selects and wraps one of the three Linux input transports
// (Wayland virtual-keyboard/pointer, X11 XTEST, Freedesktop portal) behind
// a single Device interface, so the root package never imports any
// transport-specific package directly.
//
// original_source's linux/mod.rs wires Wayland and X11 as simultaneously
// active, best-effort collaborators (every call fans out to whichever of
// the two connected). inputforge instead probes once at construction and
// commits to a single backend for the connection's lifetime — the
// dispatcher doesn't retry a different transport mid-session, matching
// the Backend setting's documented semantics (spec.md §6; the decision is
// recorded in DESIGN.md).
package linux

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inputforge/inputforge/internal/keysym"
	"github.com/inputforge/inputforge/internal/linux/portalinput"
	"github.com/inputforge/inputforge/internal/linux/wlinput"
	"github.com/inputforge/inputforge/internal/linux/x11input"
)

// Direction mirrors the root package's Direction for Press/Release, kept
// as its own type so this package has no dependency on the root package
// (which depends on this one).
type Direction int

const (
	Press Direction = iota
	Release
)

// Backend identifies which transport a Device is actually backed by,
// surfaced so callers/tests can assert which one was selected by auto
// probing.
type Backend int

const (
	BackendWayland Backend = iota
	BackendX11
	BackendPortal
)

func (b Backend) String() string {
	switch b {
	case BackendWayland:
		return "wayland"
	case BackendX11:
		return "x11"
	case BackendPortal:
		return "portal"
	default:
		return "unknown"
	}
}

// Device is the uniform surface the root package's Input facade drives,
// implemented by one adapter per transport below.
type Device interface {
	Backend() Backend
	Key(sym keysym.Symbol, dir Direction) error
	Raw(keycode uint16, dir Direction) error
	FastText(text string) (ok bool, err error)
	Button(code uint32, dir Direction) error
	MoveRelative(dx, dy float64) error
	MoveAbsolute(x, y int32) error
	Scroll(axis int, length float64) error
	MainDisplay() (width, height int32, err error)
	Location() (x, y int32, err error)
	PressedKeycodes() []uint16
	Close() error
}

// Options configures transport selection and construction; it is the
// Linux-relevant subset of the root package's Settings, passed down rather
// than imported to keep this package independent of the root one.
type Options struct {
	WaylandDisplay string
	X11Display     string
	Delay          time.Duration
	// Force, if non-empty, skips probing and selects exactly one backend:
	// "wayland", "x11", or "portal".
	Force string
}

// NewDevice probes transports in the order Wayland, X11, portal (spec.md
// §4.4) unless Options.Force pins one, and returns the first that connects.
func NewDevice(opts Options) (Device, error) {
	if opts.Force != "" {
		return newForced(opts)
	}

	if conn, err := wlinput.NewConn(opts.WaylandDisplay); err == nil {
		log.Debug("selected Wayland virtual-input transport")
		return &waylandDevice{conn: conn}, nil
	} else {
		log.Debug("Wayland transport unavailable", "err", err)
	}

	if conn, err := x11input.NewConn(opts.X11Display, opts.Delay); err == nil {
		log.Debug("selected X11 XTEST transport")
		return &x11Device{conn: conn}, nil
	} else {
		log.Debug("X11 transport unavailable", "err", err)
	}

	conn, err := portalinput.NewConn()
	if err != nil {
		return nil, fmt.Errorf("no Linux input transport available: wayland, x11, and portal all failed (last: %w)", err)
	}
	log.Debug("selected Freedesktop portal transport")
	return &portalDevice{conn: conn}, nil
}

func newForced(opts Options) (Device, error) {
	switch opts.Force {
	case "wayland":
		conn, err := wlinput.NewConn(opts.WaylandDisplay)
		if err != nil {
			return nil, fmt.Errorf("forced wayland backend: %w", err)
		}
		return &waylandDevice{conn: conn}, nil
	case "x11":
		conn, err := x11input.NewConn(opts.X11Display, opts.Delay)
		if err != nil {
			return nil, fmt.Errorf("forced x11 backend: %w", err)
		}
		return &x11Device{conn: conn}, nil
	case "portal":
		conn, err := portalinput.NewConn()
		if err != nil {
			return nil, fmt.Errorf("forced portal backend: %w", err)
		}
		return &portalDevice{conn: conn}, nil
	default:
		return nil, fmt.Errorf("unknown forced backend %q", opts.Force)
	}
}

// waylandDevice adapts wlinput.Conn to Device.
type waylandDevice struct{ conn *wlinput.Conn }

func (d *waylandDevice) Backend() Backend { return BackendWayland }

func (d *waylandDevice) Key(sym keysym.Symbol, dir Direction) error {
	return d.conn.Key(sym, wlDir(dir))
}

func (d *waylandDevice) Raw(keycode uint16, dir Direction) error {
	return d.conn.Raw(keycode, wlDir(dir))
}

func (d *waylandDevice) FastText(text string) (bool, error) { return d.conn.FastText(text) }

func (d *waylandDevice) Button(code uint32, dir Direction) error {
	return d.conn.Button(code, wlDir(dir))
}

func (d *waylandDevice) MoveRelative(dx, dy float64) error { return d.conn.MoveRelative(dx, dy) }

// MoveAbsolute mirrors wayland.rs's move_mouse(Abs): it asks MainDisplay
// for the output extent to normalize against, and surfaces that call's
// error untouched rather than guessing an extent (there is no Wayland
// protocol this package binds that reports output geometry).
func (d *waylandDevice) MoveAbsolute(x, y int32) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("absolute coordinates cannot be negative")
	}
	width, height, err := d.conn.MainDisplay()
	if err != nil {
		return err
	}
	return d.conn.MoveAbsolute(uint32(x), uint32(y), uint32(width), uint32(height))
}

func (d *waylandDevice) Scroll(axis int, length float64) error {
	return d.conn.Scroll(uint32(axis), length)
}

func (d *waylandDevice) MainDisplay() (int32, int32, error) { return d.conn.MainDisplay() }
func (d *waylandDevice) Location() (int32, int32, error)    { return d.conn.Location() }
func (d *waylandDevice) PressedKeycodes() []uint16          { return d.conn.PressedKeycodes() }
func (d *waylandDevice) Close() error                       { return d.conn.Close() }

func wlDir(dir Direction) wlinput.KeyDirection {
	if dir == Press {
		return wlinput.KeyPress
	}
	return wlinput.KeyRelease
}

// x11Device adapts x11input.Conn to Device.
type x11Device struct{ conn *x11input.Conn }

func (d *x11Device) Backend() Backend { return BackendX11 }

func (d *x11Device) Key(sym keysym.Symbol, dir Direction) error {
	return d.conn.Key(sym, dir == Press)
}

func (d *x11Device) Raw(keycode uint16, dir Direction) error {
	return d.conn.Raw(keycode, dir == Press)
}

// FastText has no X11 equivalent to input-method-v2's commit_string: the
// XTEST extension has no concept of IME composition, so this always
// reports ok=false and the caller falls back to per-rune Key calls.
func (d *x11Device) FastText(text string) (bool, error) { return false, nil }

func (d *x11Device) Button(code uint32, dir Direction) error {
	detail, err := x11ButtonDetail(code)
	if err != nil {
		return err
	}
	return d.conn.Button(detail, dir == Press)
}

func (d *x11Device) MoveRelative(dx, dy float64) error {
	return d.conn.MoveMouse(int32(dx), int32(dy), true)
}

func (d *x11Device) MoveAbsolute(x, y int32) error { return d.conn.MoveMouse(x, y, false) }

func (d *x11Device) Scroll(axis int, length float64) error {
	return d.conn.Scroll(axis, int32(length))
}

func (d *x11Device) MainDisplay() (int32, int32, error) { return d.conn.MainDisplay() }
func (d *x11Device) Location() (int32, int32, error)    { return d.conn.Location() }
func (d *x11Device) PressedKeycodes() []uint16          { return d.conn.PressedKeycodes() }
func (d *x11Device) Close() error                       { return d.conn.Close() }

// x11ButtonDetail maps a kernel input-event-codes.h button value (as used
// uniformly by the root package) onto an X11 button detail number.
func x11ButtonDetail(code uint32) (byte, error) {
	switch code {
	case 0x110: // BTN_LEFT
		return 1, nil
	case 0x112: // BTN_MIDDLE
		return 2, nil
	case 0x111: // BTN_RIGHT
		return 3, nil
	case 0x115: // BTN_FORWARD
		return 9, nil
	case 0x116: // BTN_BACK
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported button code 0x%x on X11", code)
	}
}

// portalDevice adapts portalinput.Conn to Device.
type portalDevice struct{ conn *portalinput.Conn }

func (d *portalDevice) Backend() Backend { return BackendPortal }

func (d *portalDevice) Key(sym keysym.Symbol, dir Direction) error {
	return d.conn.Key(sym, portalKeyState(dir))
}

func (d *portalDevice) Raw(keycode uint16, dir Direction) error {
	return d.conn.Raw(keycode, portalKeyState(dir))
}

// FastText: the portal protocol has no batched-text notification; every
// rune goes through NotifyKeyboardKeysym individually.
func (d *portalDevice) FastText(text string) (bool, error) { return false, nil }

func (d *portalDevice) Button(code uint32, dir Direction) error {
	return d.conn.Button(code, portalKeyState(dir))
}

func (d *portalDevice) MoveRelative(dx, dy float64) error { return d.conn.MoveRelative(dx, dy) }
func (d *portalDevice) MoveAbsolute(x, y int32) error     { return d.conn.MoveAbsolute(x, y) }

func (d *portalDevice) Scroll(axis int, length float64) error {
	a := portalinput.AxisVertical
	if axis == 1 {
		a = portalinput.AxisHorizontal
	}
	return d.conn.Scroll(a, int32(length))
}

func (d *portalDevice) MainDisplay() (int32, int32, error) { return d.conn.MainDisplay() }
func (d *portalDevice) Location() (int32, int32, error)    { return d.conn.Location() }

// PressedKeycodes: the portal protocol is stateless from the caller's
// point of view (there is no local keymap manager tracking a "held" set,
// since NotifyKeyboardKeycode addresses evdev codes the compositor itself
// interprets) — held-key release on Close has nothing to replay here.
func (d *portalDevice) PressedKeycodes() []uint16 { return nil }

func (d *portalDevice) Close() error { return d.conn.Close() }

func portalKeyState(dir Direction) portalinput.KeyState {
	if dir == Press {
		return portalinput.KeyPressed
	}
	return portalinput.KeyReleased
}
