package wlinput

import (
	"fmt"

	"github.com/neurlang/wayland/wl"
)

const (
	virtualKeyboardManagerInterface = "zwp_virtual_keyboard_manager_v1"
	virtualKeyboardInterface        = "zwp_virtual_keyboard_v1"
)

// virtualKeyboardManager is the zwp_virtual_keyboard_manager_v1 wire proxy.
type virtualKeyboardManager struct {
	wl.BaseProxy
}

func newVirtualKeyboardManager(ctx *wl.Context) *virtualKeyboardManager {
	m := &virtualKeyboardManager{}
	ctx.Register(m)
	return m
}

// createVirtualKeyboard issues request opcode 0 (create_virtual_keyboard).
func (m *virtualKeyboardManager) createVirtualKeyboard(seat *wl.Seat) (*virtualKeyboard, error) {
	kb := &virtualKeyboard{}
	m.Context().Register(kb)
	const opcode = 0
	if err := m.Context().SendRequest(m, opcode, seat, kb); err != nil {
		m.Context().Unregister(kb.Id())
		return nil, err
	}
	return kb, nil
}

func (m *virtualKeyboardManager) destroy() error {
	m.Context().Unregister(m.Id())
	return nil
}

func (m *virtualKeyboardManager) Dispatch(event *wl.Event) {}

// virtualKeyboard is the zwp_virtual_keyboard_v1 wire proxy.
type virtualKeyboard struct {
	wl.BaseProxy
}

// keymap issues request opcode 0 (keymap): format, an open fd, and its size.
func (k *virtualKeyboard) keymap(format uint32, fd int, size uint32) error {
	const opcode = 0
	return k.Context().SendRequest(k, opcode, format, uintptr(fd), size)
}

// key issues request opcode 1 (key): time in ms, evdev keycode, state (0/1).
func (k *virtualKeyboard) key(timeMs, keycode, state uint32) error {
	const opcode = 1
	return k.Context().SendRequest(k, opcode, timeMs, keycode, state)
}

// modifiers issues request opcode 2 (modifiers).
func (k *virtualKeyboard) modifiers(depressed, latched, locked, group uint32) error {
	const opcode = 2
	return k.Context().SendRequest(k, opcode, depressed, latched, locked, group)
}

func (k *virtualKeyboard) destroy() error {
	const opcode = 3
	err := k.Context().SendRequest(k, opcode)
	k.Context().Unregister(k.Id())
	return err
}

func (k *virtualKeyboard) Dispatch(event *wl.Event) {}

// keyboardDevice binds a virtualKeyboardManager global to a concrete
// keyboard object on the default seat.
type keyboardDevice struct {
	manager *virtualKeyboardManager
	device  *virtualKeyboard
}

func bindKeyboard(c *client) (*keyboardDevice, error) {
	if !c.hasVirtualKeyboard() {
		return nil, fmt.Errorf("zwp_virtual_keyboard_manager_v1 not advertised by compositor")
	}

	mgr := newVirtualKeyboardManager(c.context)
	c.mu.Lock()
	name := c.keyboardManagerID
	c.mu.Unlock()

	if err := c.registry.Bind(name, virtualKeyboardManagerInterface, 1, mgr); err != nil {
		return nil, fmt.Errorf("bind virtual keyboard manager: %w", err)
	}
	if err := c.roundtrip(); err != nil {
		return nil, fmt.Errorf("sync after binding virtual keyboard manager: %w", err)
	}

	dev, err := mgr.createVirtualKeyboard(c.seat)
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	return &keyboardDevice{manager: mgr, device: dev}, nil
}

func (d *keyboardDevice) close() {
	d.device.destroy()
	d.manager.destroy()
}
