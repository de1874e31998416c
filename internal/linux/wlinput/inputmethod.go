package wlinput

import (
	"fmt"

	"github.com/neurlang/wayland/wl"
)

const (
	inputMethodManagerInterface = "zwp_input_method_manager_v2"
	inputMethodInterface        = "zwp_input_method_v2"
)

// inputMethodManager is the zwp_input_method_manager_v2 wire proxy. It
// backs fast_text: committing a whole string in one request instead of a
// key event per character, the same shortcut original_source's
// input_method path takes when a compositor advertises it.
type inputMethodManager struct {
	wl.BaseProxy
}

func newInputMethodManager(ctx *wl.Context) *inputMethodManager {
	m := &inputMethodManager{}
	ctx.Register(m)
	return m
}

func (m *inputMethodManager) getInputMethod(seat *wl.Seat) (*inputMethod, error) {
	im := &inputMethod{}
	m.Context().Register(im)
	const opcode = 0
	if err := m.Context().SendRequest(m, opcode, seat, im); err != nil {
		m.Context().Unregister(im.Id())
		return nil, err
	}
	return im, nil
}

func (m *inputMethodManager) destroy() error {
	m.Context().Unregister(m.Id())
	return nil
}

func (m *inputMethodManager) Dispatch(event *wl.Event) {}

// inputMethod is the zwp_input_method_v2 wire proxy: only the requests
// fast_text needs (commit_string, commit) are implemented, since this
// package never acts as a full input method (no preedit, no content-type
// negotiation).
type inputMethod struct {
	wl.BaseProxy
	serial uint32
}

func (im *inputMethod) commitString(text string) error {
	const opcode = 0
	return im.Context().SendRequest(im, opcode, text)
}

func (im *inputMethod) commit(serial uint32) error {
	const opcode = 3
	return im.Context().SendRequest(im, opcode, serial)
}

func (im *inputMethod) destroy() error {
	const opcode = 8
	err := im.Context().SendRequest(im, opcode)
	im.Context().Unregister(im.Id())
	return err
}

// Dispatch tracks the done-serial events a compositor sends, the only
// event fast_text needs to stay in sync with.
func (im *inputMethod) Dispatch(event *wl.Event) {
	const doneEventOpcode = 5
	if event.Opcode == doneEventOpcode {
		im.serial++
	}
}

type inputMethodDevice struct {
	manager *inputMethodManager
	device  *inputMethod
}

func bindInputMethod(c *client) (*inputMethodDevice, error) {
	if !c.hasInputMethod() {
		return nil, fmt.Errorf("zwp_input_method_manager_v2 not advertised by compositor")
	}

	mgr := newInputMethodManager(c.context)
	c.mu.Lock()
	name := c.inputMethodMgrID
	c.mu.Unlock()

	if err := c.registry.Bind(name, inputMethodManagerInterface, 1, mgr); err != nil {
		return nil, fmt.Errorf("bind input method manager: %w", err)
	}
	if err := c.roundtrip(); err != nil {
		return nil, fmt.Errorf("sync after binding input method manager: %w", err)
	}

	dev, err := mgr.getInputMethod(c.seat)
	if err != nil {
		return nil, fmt.Errorf("get input method: %w", err)
	}
	return &inputMethodDevice{manager: mgr, device: dev}, nil
}

func (d *inputMethodDevice) close() {
	d.device.destroy()
	d.manager.destroy()
}
