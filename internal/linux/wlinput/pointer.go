package wlinput

import (
	"fmt"

	"github.com/neurlang/wayland/wl"
)

const (
	virtualPointerManagerInterface = "zwlr_virtual_pointer_manager_v1"
	virtualPointerInterface        = "zwlr_virtual_pointer_v1"
)

// Kernel input-event-codes.h button codes, shared with the X11 and portal
// transports (button mapping is identical on all three backends).
const (
	btnLeft    = 0x110
	btnRight   = 0x111
	btnMiddle  = 0x112
	btnSide    = 0x113
	btnExtra   = 0x114
	btnForward = 0x115
	btnBack    = 0x116
)

const (
	pointerButtonReleased uint32 = 0
	pointerButtonPressed  uint32 = 1
)

const (
	axisVertical   uint32 = 0
	axisHorizontal uint32 = 1
)

// virtualPointerManager is the zwlr_virtual_pointer_manager_v1 wire proxy.
// The upstream teacher package referenced this type (and virtualPointer
// below) from its higher-level wrapper without ever defining them; this is
// the missing definition, written the same way keyboard.go defines
// its own manager/device pair.
type virtualPointerManager struct {
	wl.BaseProxy
}

func newVirtualPointerManager(ctx *wl.Context) *virtualPointerManager {
	m := &virtualPointerManager{}
	ctx.Register(m)
	return m
}

// createVirtualPointer issues request opcode 0 (create_virtual_pointer,
// seat-scoped); create_virtual_pointer_with_output is not used.
func (m *virtualPointerManager) createVirtualPointer(seat *wl.Seat) (*virtualPointer, error) {
	p := &virtualPointer{}
	m.Context().Register(p)
	const opcode = 0
	if err := m.Context().SendRequest(m, opcode, seat, p); err != nil {
		m.Context().Unregister(p.Id())
		return nil, err
	}
	return p, nil
}

func (m *virtualPointerManager) destroy() error {
	m.Context().Unregister(m.Id())
	return nil
}

func (m *virtualPointerManager) Dispatch(event *wl.Event) {}

// virtualPointer is the zwlr_virtual_pointer_v1 wire proxy.
type virtualPointer struct {
	wl.BaseProxy
}

func (p *virtualPointer) motion(timeMs uint32, dx, dy wl.Fixed) error {
	const opcode = 0
	return p.Context().SendRequest(p, opcode, timeMs, dx, dy)
}

func (p *virtualPointer) motionAbsolute(timeMs, x, y, xExtent, yExtent uint32) error {
	const opcode = 1
	return p.Context().SendRequest(p, opcode, timeMs, x, y, xExtent, yExtent)
}

func (p *virtualPointer) button(timeMs, button, state uint32) error {
	const opcode = 2
	return p.Context().SendRequest(p, opcode, timeMs, button, state)
}

func (p *virtualPointer) axis(timeMs, axis uint32, value wl.Fixed) error {
	const opcode = 3
	return p.Context().SendRequest(p, opcode, timeMs, axis, value)
}

func (p *virtualPointer) frame() error {
	const opcode = 4
	return p.Context().SendRequest(p, opcode)
}

func (p *virtualPointer) destroy() error {
	const opcode = 7
	err := p.Context().SendRequest(p, opcode)
	p.Context().Unregister(p.Id())
	return err
}

func (p *virtualPointer) Dispatch(event *wl.Event) {}

func floatToFixed(v float64) wl.Fixed { return wl.Fixed(v * 256.0) }

type pointerDevice struct {
	manager *virtualPointerManager
	device  *virtualPointer
}

func bindPointer(c *client) (*pointerDevice, error) {
	if !c.hasVirtualPointer() {
		return nil, fmt.Errorf("zwlr_virtual_pointer_manager_v1 not advertised by compositor")
	}

	mgr := newVirtualPointerManager(c.context)
	c.mu.Lock()
	name := c.pointerManagerID
	c.mu.Unlock()

	if err := c.registry.Bind(name, virtualPointerManagerInterface, 1, mgr); err != nil {
		return nil, fmt.Errorf("bind virtual pointer manager: %w", err)
	}
	if err := c.roundtrip(); err != nil {
		return nil, fmt.Errorf("sync after binding virtual pointer manager: %w", err)
	}

	dev, err := mgr.createVirtualPointer(c.seat)
	if err != nil {
		return nil, fmt.Errorf("create virtual pointer: %w", err)
	}
	return &pointerDevice{manager: mgr, device: dev}, nil
}

func (d *pointerDevice) close() {
	d.device.destroy()
	d.manager.destroy()
}
