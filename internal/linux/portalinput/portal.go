// Package portalinput drives input through the xdg-desktop-portal
// RemoteDesktop interface over D-Bus, the fallback transport used when
// neither a Wayland virtual-input protocol nor an X server is reachable
// (most commonly a sandboxed session, e.g. under Flatpak).
//
// Every portal method that changes state is request/response: the call
// returns an object path immediately, and the real result arrives later as
// a Response signal on that path. This package waits for that signal the
// same way helixml-helix's session_portal.go does for the ScreenCast
// portal: subscribe before calling, then block on the signal channel.
package portalinput

import (
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/inputforge/inputforge/internal/keysym"
)

const (
	busName  = "org.freedesktop.portal.Desktop"
	objPath  = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	ifaceRD  = "org.freedesktop.portal.RemoteDesktop"
	ifaceReq = "org.freedesktop.portal.Request"

	responseTimeout = 30 * time.Second
)

// Device types accepted by RemoteDesktop.SelectDevices, a bitmask.
const (
	deviceKeyboard uint32 = 1 << 0
	devicePointer  uint32 = 1 << 1
)

// KeyState mirrors ashpd's remote_desktop::KeyState / libportal's
// XDP_KEY_PRESSED-XDP_KEY_RELEASED pair.
type KeyState uint32

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
)

// Axis selects which scroll axis NotifyPointerAxisDiscrete moves.
type Axis uint32

const (
	AxisHorizontal Axis = 0
	AxisVertical   Axis = 1
)

// Kernel input-event-codes.h button codes, identical to the Wayland and
// X11 transports.
const (
	BtnLeft    = 0x110
	BtnRight   = 0x111
	BtnMiddle  = 0x112
	BtnForward = 0x115
	BtnBack    = 0x116
)

// Conn is one live RemoteDesktop portal session.
type Conn struct {
	conn        *dbus.Conn
	sessionPath dbus.ObjectPath
	senderToken string
	reqSeq      int
}

// NewConn opens the session bus, creates a RemoteDesktop session, requests
// keyboard and pointer access, and starts it. Start triggers a permission
// dialog the first time a given application asks; subsequent sessions in
// the same sandboxed identity are remembered by the portal itself.
func NewConn() (*Conn, error) {
	busConn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	c := &Conn{conn: busConn, senderToken: senderPathToken(busConn.Names()[0])}

	sessionHandle, err := c.createSession()
	if err != nil {
		busConn.Close()
		return nil, fmt.Errorf("create remote desktop session: %w", err)
	}
	c.sessionPath = dbus.ObjectPath(sessionHandle)

	if err := c.selectDevices(); err != nil {
		c.Close()
		return nil, fmt.Errorf("select devices: %w", err)
	}

	if err := c.start(); err != nil {
		c.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}

	return c, nil
}

// senderPathToken mangles a unique D-Bus connection name (":1.42") into the
// form the portal's object-path convention requires (request and session
// paths are namespaced under the mangled sender), the same substitution
// session_portal.go performs.
func senderPathToken(sender string) string {
	return strings.NewReplacer(":", "", ".", "_").Replace(sender)
}

func (c *Conn) nextRequestToken() string {
	c.reqSeq++
	return fmt.Sprintf("inputforge%d", c.reqSeq)
}

// call invokes method on the portal object and waits for the Response
// signal its returned request path will receive, returning the response's
// result dict on success (code 0).
func (c *Conn) call(method string, args ...interface{}) (map[string]dbus.Variant, error) {
	token := c.nextRequestToken()
	requestPath := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/portal/desktop/request/%s/%s", c.senderToken, token))

	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(requestPath),
		dbus.WithMatchInterface(ifaceReq),
		dbus.WithMatchMember("Response"),
	); err != nil {
		return nil, fmt.Errorf("add signal match: %w", err)
	}
	signals := make(chan *dbus.Signal, 4)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)
	defer c.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(requestPath),
		dbus.WithMatchInterface(ifaceReq),
		dbus.WithMatchMember("Response"),
	)

	obj := c.conn.Object(busName, objPath)
	callArgs := append(args, optionsWithToken(token))
	var returnedPath dbus.ObjectPath
	if err := obj.Call(ifaceRD+"."+method, 0, callArgs...).Store(&returnedPath); err != nil {
		return nil, fmt.Errorf("%s call: %w", method, err)
	}

	timeout := time.After(responseTimeout)
	for {
		select {
		case sig := <-signals:
			if sig.Name != ifaceReq+".Response" || len(sig.Body) < 2 {
				continue
			}
			code, ok := sig.Body[0].(uint32)
			if !ok {
				continue
			}
			if code != 0 {
				return nil, fmt.Errorf("%s response code %d", method, code)
			}
			results, _ := sig.Body[1].(map[string]dbus.Variant)
			return results, nil
		case <-timeout:
			return nil, fmt.Errorf("timeout waiting for %s response", method)
		}
	}
}

func optionsWithToken(token string) map[string]dbus.Variant {
	return map[string]dbus.Variant{"handle_token": dbus.MakeVariant(token)}
}

func (c *Conn) createSession() (string, error) {
	token := c.nextRequestToken()
	requestPath := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/portal/desktop/request/%s/%s", c.senderToken, token))

	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(requestPath),
		dbus.WithMatchInterface(ifaceReq),
		dbus.WithMatchMember("Response"),
	); err != nil {
		return "", fmt.Errorf("add signal match: %w", err)
	}
	signals := make(chan *dbus.Signal, 4)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	obj := c.conn.Object(busName, objPath)
	options := map[string]dbus.Variant{
		"handle_token":         dbus.MakeVariant(token),
		"session_handle_token": dbus.MakeVariant(c.nextRequestToken()),
	}
	var returnedPath dbus.ObjectPath
	if err := obj.Call(ifaceRD+".CreateSession", 0, options).Store(&returnedPath); err != nil {
		return "", fmt.Errorf("CreateSession call: %w", err)
	}

	timeout := time.After(responseTimeout)
	for {
		select {
		case sig := <-signals:
			if sig.Name != ifaceReq+".Response" || len(sig.Body) < 2 {
				continue
			}
			code, ok := sig.Body[0].(uint32)
			if !ok {
				continue
			}
			if code != 0 {
				return "", fmt.Errorf("CreateSession response code %d", code)
			}
			results, ok := sig.Body[1].(map[string]dbus.Variant)
			if !ok {
				return "", fmt.Errorf("CreateSession response missing results")
			}
			handle, ok := results["session_handle"].Value().(string)
			if !ok {
				return "", fmt.Errorf("CreateSession response missing session_handle")
			}
			return handle, nil
		case <-timeout:
			return "", fmt.Errorf("timeout waiting for CreateSession response")
		}
	}
}

func (c *Conn) selectDevices() error {
	_, err := c.call("SelectDevices", dbus.ObjectPath(c.sessionPath), deviceKeyboard|devicePointer)
	return err
}

func (c *Conn) start() error {
	// parent_window is the empty string: inputforge runs headless, with no
	// portal-tracked application window to anchor the permission dialog to.
	_, err := c.call("Start", dbus.ObjectPath(c.sessionPath), "")
	return err
}

func (c *Conn) notify(method string, args ...interface{}) error {
	obj := c.conn.Object(busName, objPath)
	callArgs := append([]interface{}{dbus.ObjectPath(c.sessionPath)}, args...)
	call := obj.Call(ifaceRD+"."+method, 0, callArgs...)
	if call.Err != nil {
		return fmt.Errorf("%s: %w", method, call.Err)
	}
	return nil
}

// Key presses or releases sym by keysym value. NotifyKeyboardKeysym
// takes a signed 32-bit keysym, matching xkeysym::Keysym::raw() cast to i32
// in original_source.
func (c *Conn) Key(sym keysym.Symbol, state KeyState) error {
	return c.notify("NotifyKeyboardKeysym", int32(sym.Value), uint32(state))
}

// Raw presses or releases a Linux evdev keycode directly.
func (c *Conn) Raw(keycode uint16, state KeyState) error {
	return c.notify("NotifyKeyboardKeycode", int32(keycode), uint32(state))
}

// Button presses or releases a mouse button (kernel input-event-codes.h
// value, see BtnLeft etc.).
func (c *Conn) Button(code uint32, state KeyState) error {
	return c.notify("NotifyPointerButton", int32(code), uint32(state))
}

// MoveRelative moves the pointer by (dx, dy) from its current position.
func (c *Conn) MoveRelative(dx, dy float64) error {
	return c.notify("NotifyPointerMotion", dx, dy)
}

// MoveAbsolute is not directly supported by the portal: there is no
// NotifyPointerMotionAbsolute call without an active screen-cast stream to
// anchor coordinates to. original_source works around this for the Abs
// case by first moving relatively by a value guaranteed to hit a screen
// edge (i32.MIN) and then moving relatively by the target offset, pinning
// the pointer to (0,0) before the real move; this package applies the same
// workaround rather than silently refusing the call.
func (c *Conn) MoveAbsolute(x, y int32) error {
	const pin = -1 << 30
	if err := c.MoveRelative(pin, pin); err != nil {
		return fmt.Errorf("pin pointer to origin: %w", err)
	}
	return c.MoveRelative(float64(x), float64(y))
}

// Scroll sends one discrete scroll tick of length along axis.
func (c *Conn) Scroll(axis Axis, length int32) error {
	return c.notify("NotifyPointerAxisDiscrete", uint32(axis), length)
}

// MainDisplay is not possible with this protocol: the portal exposes no
// monitor geometry query outside an active ScreenCast session.
func (c *Conn) MainDisplay() (width, height int32, err error) {
	return 0, 0, fmt.Errorf("main display geometry is not possible with the portal protocol")
}

// Location is not possible with this protocol: RemoteDesktop is
// write-only, it never reports the pointer's current position back.
func (c *Conn) Location() (x, y int32, err error) {
	return 0, 0, fmt.Errorf("pointer location is not possible with the portal protocol")
}

// Close closes the session bus connection. The portal itself tears down
// the RemoteDesktop session when the owning connection disappears.
func (c *Conn) Close() error {
	return c.conn.Close()
}
