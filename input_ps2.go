// input_ps2.go - PS/2 keyboard and mouse decode over port I/O (x86) or
// no-op (ARM64, via the PAL's arm64 port stubs). Protocol grounded on
// original_source/include/PS2Controller.h; backend-selection idiom
// grounded on the teacher's audio_backend_alsa.go/audio_backend_headless.go
// runtime-selected-backend split.

package main

const (
	ps2DataPort    = 0x60
	ps2CommandPort = 0x64

	ps2MouseByteCount = 3
)

// PS2Controller reads scancode and mouse packet bytes by port I/O,
// maintaining a DeviceState, per spec.md §4.6. It can be driven either by
// an IRQ handler (pushing bytes as they arrive) or by a poll() call from
// the event loop.
type PS2Controller struct {
	pal   PAL
	State DeviceState

	mousePacket [ps2MouseByteCount]byte
	mouseIdx    int

	displayW, displayH int16
}

// NewPS2Controller constructs a controller bound to pal, clamping mouse
// motion to a displayW x displayH surface.
func NewPS2Controller(pal PAL, displayW, displayH int16) *PS2Controller {
	return &PS2Controller{pal: pal, displayW: displayW, displayH: displayH}
}

// Poll reads one pending byte from the data port if the controller
// signals output-buffer-full, and returns true if a byte was consumed.
// Used when not IRQ-driven, per spec.md §4.6.
func (p *PS2Controller) Poll() bool {
	status := p.pal.PortInB(ps2CommandPort)
	const outputBufferFull = 0x01
	if status&outputBufferFull == 0 {
		return false
	}
	p.handleByte(p.pal.PortInB(ps2DataPort))
	return true
}

// HandleIRQByte is called from the IRQ1/IRQ12 handler with the byte just
// read from the data port.
func (p *PS2Controller) HandleIRQByte(b byte) {
	p.handleByte(b)
}

func (p *PS2Controller) handleByte(b byte) {
	// A minimal set-1 scancode decode: bit 7 set means key-up, the low 7
	// bits are the internal keycode space directly (this hosted model
	// does not distinguish the 0xE0-prefixed extended set).
	if b&0x80 != 0 {
		p.State.SetKey(b&0x7F, false)
	} else {
		p.State.SetKey(b, true)
	}
}

// HandleMouseByte accumulates one byte of the 3-byte PS/2 mouse packet;
// once all three arrive it updates State.{X,Y,Buttons} and clamps to the
// display bounds, per spec.md §4.6.
func (p *PS2Controller) HandleMouseByte(b byte) {
	p.mousePacket[p.mouseIdx] = b
	p.mouseIdx++
	if p.mouseIdx < ps2MouseByteCount {
		return
	}
	p.mouseIdx = 0

	status, dx, dy := p.mousePacket[0], int16(int8(p.mousePacket[1])), int16(int8(p.mousePacket[2]))
	p.State.Buttons = status & 0x07
	p.State.X += dx
	p.State.Y -= dy // PS/2 reports dy with inverted sign relative to screen-down-positive
	p.State.ClampMouse(p.displayW, p.displayH)
}
