package inputforge

import (
	"errors"
	"fmt"

	"github.com/inputforge/inputforge/internal/keymap"
	"github.com/inputforge/inputforge/internal/linux"
)

// Input is the public facade: one connected backend plus the held-keys
// bookkeeping needed to release everything still pressed at Close.
//
// Not safe for concurrent use by multiple goroutines; see Shared for a
// process-wide singleton guarded by a mutex.
type Input struct {
	settings Settings
	device   linux.Device
	held     []Key
}

// New constructs an Input, probing backends per settings.Backend (spec.md
// §4.4: Wayland, then X11, then the portal, unless one is forced).
func New(settings Settings) (*Input, error) {
	opts := linux.Options{
		WaylandDisplay: settings.WaylandDisplay,
		X11Display:     settings.X11Display,
		Delay:          settings.LinuxDelay,
	}
	switch settings.Backend {
	case BackendWayland:
		opts.Force = "wayland"
	case BackendX11:
		opts.Force = "x11"
	case BackendPortal:
		opts.Force = "portal"
	}

	device, err := linux.NewDevice(opts)
	if err != nil {
		return nil, &NewConError{Msg: "no Linux input transport available", Err: err}
	}

	return &Input{settings: settings, device: device}, nil
}

// Text enters a whole string. It tries the backend's fast path (input
// method v2's commit_string on Wayland) first, falling back to clicking
// each rune's keysym individually when no fast path exists, matching
// Keyboard::text's default trait method in original_source.
func (in *Input) Text(text string) error {
	if ok, err := in.device.FastText(text); err != nil {
		return &InputError{Kind: Simulate, Op: "Text", Msg: "fast text entry failed", Err: err}
	} else if ok {
		return nil
	}
	for _, r := range text {
		if err := in.Key(Unicode(r), Click); err != nil {
			return err
		}
	}
	return nil
}

// Key presses, releases, or clicks a symbolic or Unicode key, extending
// the dynamic keymap if the backend needs a keycode it doesn't currently
// have bound.
func (in *Input) Key(key Key, direction Direction) error {
	if code, ok := key.IsRaw(); ok {
		return in.Raw(code, direction)
	}

	sym, err := resolveSymbol(key)
	if err != nil {
		return &InputError{Kind: InvalidInput, Op: "Key", Msg: err.Error()}
	}

	in.trackHeld(key, direction)

	wrap := func(msg string, err error) error {
		kind := Simulate
		for e := err; e != nil; e = errors.Unwrap(e) {
			if keymap.IsMappingError(e) {
				kind = Mapping
				break
			}
		}
		return &InputError{Kind: kind, Op: "Key", Msg: msg, Err: err}
	}

	if direction == Press || direction == Click {
		if err := in.device.Key(sym, linux.Press); err != nil {
			return wrap("press failed", err)
		}
	}
	if direction == Release || direction == Click {
		if err := in.device.Key(sym, linux.Release); err != nil {
			return wrap("release failed", err)
		}
	}
	return nil
}

// Raw presses, releases, or clicks a keycode directly, bypassing keysym
// resolution.
func (in *Input) Raw(keycode uint16, direction Direction) error {
	in.trackHeld(Raw(keycode), direction)

	if direction == Press || direction == Click {
		if err := in.device.Raw(keycode, linux.Press); err != nil {
			return &InputError{Kind: Simulate, Op: "Raw", Msg: "press failed", Err: err}
		}
	}
	if direction == Release || direction == Click {
		if err := in.device.Raw(keycode, linux.Release); err != nil {
			return &InputError{Kind: Simulate, Op: "Raw", Msg: "release failed", Err: err}
		}
	}
	return nil
}

// Button presses, releases, or clicks a mouse button. Scroll buttons are
// redirected to Scroll, matching xdg_desktop.rs's Mouse::button match arm.
// Scrolling has no release semantics, so a scroll button's Release is
// silently ignored rather than emitting a second scroll.
func (in *Input) Button(button Button, direction Direction) error {
	if button.IsScroll() {
		if direction == Release {
			return nil
		}
		return in.scrollForButton(button)
	}

	code, err := buttonCode(button)
	if err != nil {
		return &InputError{Kind: InvalidInput, Op: "Button", Msg: err.Error()}
	}

	if direction == Press || direction == Click {
		if err := in.device.Button(code, linux.Press); err != nil {
			return &InputError{Kind: Simulate, Op: "Button", Msg: "press failed", Err: err}
		}
	}
	if direction == Release || direction == Click {
		if err := in.device.Button(code, linux.Release); err != nil {
			return &InputError{Kind: Simulate, Op: "Button", Msg: "release failed", Err: err}
		}
	}
	return nil
}

func (in *Input) scrollForButton(button Button) error {
	switch button {
	case ScrollUp:
		return in.Scroll(-1, Vertical)
	case ScrollDown:
		return in.Scroll(1, Vertical)
	case ScrollLeft:
		return in.Scroll(-1, Horizontal)
	case ScrollRight:
		return in.Scroll(1, Horizontal)
	default:
		return &InputError{Kind: InvalidInput, Op: "Button", Msg: "not a scroll button"}
	}
}

// MoveMouse moves the pointer to (x, y), relative to its current position
// or absolute, per coordinate. Negative absolute coordinates are rejected
// per spec.md's edge-case table.
func (in *Input) MoveMouse(x, y int32, coordinate Coordinate) error {
	if coordinate == Abs && (x < 0 || y < 0) {
		return &InputError{Kind: InvalidInput, Op: "MoveMouse", Msg: "absolute coordinates cannot be negative"}
	}

	var err error
	if coordinate == Abs {
		err = in.device.MoveAbsolute(x, y)
	} else {
		err = in.device.MoveRelative(float64(x), float64(y))
	}
	if err != nil {
		return &InputError{Kind: Simulate, Op: "MoveMouse", Msg: "move failed", Err: err}
	}
	return nil
}

// Scroll sends length discrete scroll ticks along axis.
func (in *Input) Scroll(length int32, axis Axis) error {
	a := 0
	if axis == Horizontal {
		a = 1
	}
	if err := in.device.Scroll(a, float64(length)); err != nil {
		return &InputError{Kind: Simulate, Op: "Scroll", Msg: "scroll failed", Err: err}
	}
	return nil
}

// MainDisplay returns the size of the backend's main display.
func (in *Input) MainDisplay() (width, height int32, err error) {
	w, h, cause := in.device.MainDisplay()
	if cause != nil {
		return 0, 0, &InputError{Kind: Unsupported, Op: "MainDisplay", Msg: "not available on this backend", Err: cause}
	}
	return w, h, nil
}

// Location returns the pointer's current absolute position.
func (in *Input) Location() (x, y int32, err error) {
	x, y, cause := in.device.Location()
	if cause != nil {
		return 0, 0, &InputError{Kind: Unsupported, Op: "Location", Msg: "not available on this backend", Err: cause}
	}
	return x, y, nil
}

// Held returns the keys Press'd but not yet Release'd, in press order.
func (in *Input) Held() []Key {
	out := make([]Key, len(in.held))
	copy(out, in.held)
	return out
}

func (in *Input) trackHeld(key Key, direction Direction) {
	switch direction {
	case Press:
		in.held = append(in.held, key)
	case Release:
		kept := in.held[:0]
		for _, k := range in.held {
			if k != key {
				kept = append(kept, k)
			}
		}
		in.held = kept
	}
}

// Close releases every key still held (unless
// Settings.ReleaseKeysWhenDropped is false) and tears down the backend
// connection.
func (in *Input) Close() error {
	if in.settings.ReleaseKeysWhenDropped {
		for _, k := range in.Held() {
			if err := in.Key(k, Release); err != nil {
				return fmt.Errorf("release held key on close: %w", err)
			}
		}
	}
	return in.device.Close()
}
