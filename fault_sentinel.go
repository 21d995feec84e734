// fault_sentinel.go - Fault Sentinel: catches CPU exceptions, logs via
// serial, halts forever. Replaces what would otherwise be a triple fault
// with an observable, stopped state. Fatal; no recovery.

package main

import "fmt"

// exceptionNames maps vectors 0x00-0x1F to their Intel-architecture names,
// used only for diagnostic logging.
var exceptionNames = [32]string{
	0x00: "Divide Error", 0x01: "Debug", 0x02: "NMI Interrupt",
	0x03: "Breakpoint", 0x04: "Overflow", 0x05: "BOUND Range Exceeded",
	0x06: "Invalid Opcode", 0x07: "Device Not Available",
	0x08: "Double Fault", 0x09: "Coprocessor Segment Overrun",
	0x0A: "Invalid TSS", 0x0B: "Segment Not Present",
	0x0C: "Stack-Segment Fault", 0x0D: "General Protection",
	0x0E: "Page Fault", 0x10: "x87 FPU Error",
	0x11: "Alignment Check", 0x12: "Machine Check",
	0x13: "SIMD Floating-Point", 0x14: "Virtualization",
	0x15: "Control Protection",
}

// FaultSentinel installs handlers for CPU exception vectors 0x00-0x1F and
// halts the kernel the first time one fires. There is no recovery path:
// spec.md §7 classifies CpuException as fatal with fault-sentinel halt.
type FaultSentinel struct {
	idt     *IDT
	serial  *SerialConsole
	pal     PAL
	halted  bool
	Fatal   *FaultRecord // non-nil once a fault has been caught
}

// FaultRecord captures the state logged at the moment of a fatal exception.
type FaultRecord struct {
	Vector    int
	Name      string
	ErrorCode uint32
}

// InstallFaultSentinel wires a handler for every exception vector. Must be
// called before the kernel's first STI (spec.md §4.2).
func InstallFaultSentinel(idt *IDT, serial *SerialConsole, pal PAL) *FaultSentinel {
	fs := &FaultSentinel{idt: idt, serial: serial, pal: pal}
	for v := IDTExceptionBase; v <= IDTExceptionLast; v++ {
		idt.Install(v, fs.handle)
	}
	return fs
}

func (fs *FaultSentinel) handle(vector int, errorCode uint32) {
	if fs.halted {
		return
	}
	fs.halted = true
	name := "Reserved"
	if vector >= 0 && vector < len(exceptionNames) && exceptionNames[vector] != "" {
		name = exceptionNames[vector]
	}
	fs.Fatal = &FaultRecord{Vector: vector, Name: name, ErrorCode: errorCode}
	fs.serial.Writeln(fmt.Sprintf("[FAULT] vector=0x%02X (%s) error=0x%08X - halted", vector, name, errorCode))
	// A freestanding build spins on pal.Halt() forever here; the hosted
	// harness records the halted state in fs.Fatal and returns so tests
	// can observe it via IsHalted() instead of hanging.
	fs.pal.Halt()
}

// IsHalted reports whether a fatal exception has been caught.
func (fs *FaultSentinel) IsHalted() bool { return fs.halted }

// Raise simulates CPU vector delivery for testing and for the IRQ stub's
// exception-class dispatch path.
func (fs *FaultSentinel) Raise(vector int, errorCode uint32) {
	fs.idt.Dispatch(vector, errorCode)
}
