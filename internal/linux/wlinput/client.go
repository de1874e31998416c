// Package wlinput is the Wayland transport: it binds
// zwp_virtual_keyboard_manager_v1, zwlr_virtual_pointer_manager_v1, and
// zwp_input_method_manager_v2 on the default seat and drives them with the
// dynamic keymap this module builds.
//
// Adapted from the bnema/wayland-virtual-input-go client/protocols
// packages, folded into one package since inputforge only ever runs one
// Wayland connection per process.
package wlinput

import (
	"fmt"
	"sync"

	"github.com/neurlang/wayland/wl"
)

// client owns the Wayland connection and the registry globals this
// transport cares about.
type client struct {
	display  *wl.Display
	registry *wl.Registry
	seat     *wl.Seat
	context  *wl.Context

	mu                sync.Mutex
	globals           map[uint32]string
	pointerManagerID  uint32
	keyboardManagerID uint32
	inputMethodMgrID  uint32
}

func newClient(displayName string) (*client, error) {
	display, err := wl.Connect(displayName)
	if err != nil {
		return nil, fmt.Errorf("connect to Wayland display: %w", err)
	}

	c := &client{
		display: display,
		context: display.Context(),
		globals: make(map[uint32]string),
	}

	registry, err := display.GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("get Wayland registry: %w", err)
	}
	c.registry = registry
	registry.AddGlobalHandler(c)
	registry.AddGlobalRemoveHandler(c)

	sync, err := display.Sync()
	if err != nil {
		return nil, fmt.Errorf("sync Wayland display: %w", err)
	}
	if err := c.context.RunTill(sync); err != nil {
		return nil, fmt.Errorf("wait for initial registry sync: %w", err)
	}

	return c, nil
}

func (c *client) HandleRegistryGlobal(event wl.RegistryGlobalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.globals[event.Name] = event.Interface

	switch event.Interface {
	case "wl_seat":
		seat := wl.NewSeat(c.context)
		if err := c.registry.Bind(event.Name, event.Interface, event.Version, seat); err == nil {
			c.seat = seat
		}
	case virtualPointerManagerInterface:
		c.pointerManagerID = event.Name
	case virtualKeyboardManagerInterface:
		c.keyboardManagerID = event.Name
	case inputMethodManagerInterface:
		c.inputMethodMgrID = event.Name
	}
}

func (c *client) HandleRegistryGlobalRemove(event wl.RegistryGlobalRemoveEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.globals, event.Name)
}

func (c *client) hasVirtualKeyboard() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyboardManagerID != 0
}

func (c *client) hasVirtualPointer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pointerManagerID != 0
}

func (c *client) hasInputMethod() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputMethodMgrID != 0
}

func (c *client) roundtrip() error {
	sync, err := c.display.Sync()
	if err != nil {
		return fmt.Errorf("sync Wayland display: %w", err)
	}
	return c.context.RunTill(sync)
}

func (c *client) close() error {
	return c.context.Close()
}
