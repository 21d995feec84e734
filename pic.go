// pic.go - Legacy 8259 interrupt controller: remap to 0x20/0x28, EOI,
// per-IRQ mask, registered-handler dispatch. Wire-level detail grounded
// on original_source/src/Platform/x86/pic.c.

package main

import "fmt"

const (
	masterPICCommand = 0x20
	masterPICData    = 0x21
	slavePICCommand  = 0xA0
	slavePICData     = 0xA1

	picEOICommand = 0x20

	cmosIndexPort = 0x70
	cmosDataPort  = 0x71
)

// PIC models the pair of cascaded 8259 controllers remapped so IRQ 0-15
// land on vectors 0x20-0x2F, clear of the CPU exception range.
type PIC struct {
	pal     PAL
	idt     *IDT
	masks   [2]uint8 // [0]=master, [1]=slave
	handlers map[int]func()
}

// NewPIC remaps both controllers and masks every line, matching
// spec.md §4.3's precondition that "individual unmasks happen after STI
// under controlled conditions."
func NewPIC(pal PAL, idt *IDT) *PIC {
	p := &PIC{pal: pal, idt: idt, handlers: make(map[int]func())}
	p.remap()
	p.masks[0] = 0xFF
	p.masks[1] = 0xFF
	p.writeMasks()
	for irq := 0; irq < 16; irq++ {
		idt.Install(IDTRemappedIRQBase+irq, p.dispatchVector(irq))
	}
	return p
}

func (p *PIC) remap() {
	// ICW1-ICW4 sequence; values match the standard remap-to-0x20/0x28
	// dance used by every PC BIOS/bootloader.
	p.pal.PortOutB(masterPICCommand, 0x11)
	p.pal.PortOutB(slavePICCommand, 0x11)
	p.pal.PortOutB(masterPICData, IDTRemappedIRQBase)
	p.pal.PortOutB(slavePICData, IDTRemappedIRQBase+8)
	p.pal.PortOutB(masterPICData, 0x04) // slave attached to IRQ2
	p.pal.PortOutB(slavePICData, 0x02)  // slave's cascade identity
	p.pal.PortOutB(masterPICData, 0x01)
	p.pal.PortOutB(slavePICData, 0x01)
}

func (p *PIC) writeMasks() {
	p.pal.PortOutB(masterPICData, p.masks[0])
	p.pal.PortOutB(slavePICData, p.masks[1])
}

// ReadMask returns the current mask byte for the requested controller.
func (p *PIC) ReadMask(master bool) uint8 {
	if master {
		return p.masks[0]
	}
	return p.masks[1]
}

// SendEOI issues an end-of-interrupt to the controller at the given
// command port.
func (p *PIC) SendEOI(commandPort uint16, code uint8) {
	p.pal.PortOutB(commandPort, code)
}

// Register installs fn as the handler for legacy IRQ n (0-15). Per
// spec.md §4.2, handlers must not block or allocate and should post
// events rather than process them; this contract is documented, not
// enforced, since Go cannot statically verify it.
func (p *PIC) Register(irq int, fn func()) error {
	if irq < 0 || irq > 15 {
		return &ParamError{Op: "PIC.Register", Detail: fmt.Sprintf("irq %d out of range", irq)}
	}
	p.handlers[irq] = fn
	return p.Unmask(irq)
}

// Unmask clears the mask bit for irq, permitting delivery.
func (p *PIC) Unmask(irq int) error {
	if irq < 0 || irq > 15 {
		return &ParamError{Op: "PIC.Unmask", Detail: fmt.Sprintf("irq %d out of range", irq)}
	}
	idx, bit := irq/8, uint8(1<<(uint(irq)%8))
	p.masks[idx] &^= bit
	p.writeMasks()
	return nil
}

// Mask sets the mask bit for irq, suppressing delivery.
func (p *PIC) Mask(irq int) error {
	if irq < 0 || irq > 15 {
		return &ParamError{Op: "PIC.Mask", Detail: fmt.Sprintf("irq %d out of range", irq)}
	}
	idx, bit := irq/8, uint8(1<<(uint(irq)%8))
	p.masks[idx] |= bit
	p.writeMasks()
	return nil
}

// dispatchVector returns the common IRQ stub for line irq: acknowledge
// (EOI master always, slave additionally for irq >= 8), then invoke the
// registered handler, or silently EOI an unregistered line, matching
// spec.md §4.2.
func (p *PIC) dispatchVector(irq int) func(vector int, errorCode uint32) {
	return func(vector int, errorCode uint32) {
		if irq >= 8 {
			p.SendEOI(slavePICCommand, picEOICommand)
		}
		p.SendEOI(masterPICCommand, picEOICommand)
		if h, ok := p.handlers[irq]; ok && h != nil {
			h()
		}
	}
}

// Fire simulates hardware raising legacy IRQ n, dispatching through the
// IDT exactly as the common assembly stub would.
func (p *PIC) Fire(irq int) {
	p.idt.Dispatch(IDTRemappedIRQBase+irq, 0)
}

// ParamError signals API misuse (spec.md §7: ParamErr, "returned
// immediately").
type ParamError struct {
	Op     string
	Detail string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: invalid parameter: %s", e.Op, e.Detail)
}
