// timer.go - Programmable interval timer: 1 kHz periodic tick, TickCount()
// exposed at the classic 60 Hz Mac convention (timer divided by 16,
// nearest). Divisor grounded on original_source/src/Platform/x86/pit.c.

package main

import "sync/atomic"

const (
	pitChannel0Data = 0x40
	pitCommandPort  = 0x43

	// pitInputClockHz is the legacy PIT's fixed input frequency.
	pitInputClockHz = 1193182
	// timerTickHz is the platform timer rate spec.md §2 calls for.
	timerTickHz = 1000
	// ticksPerTock converts 1 kHz platform ticks into 60 Hz classic Mac
	// ticks via "divided by 16 (nearest)" per spec.md §6.
	ticksPerTock = 16
)

// Timer programs the PIT for a 1 kHz periodic tick and derives TickCount
// from it.
type Timer struct {
	pal        PAL
	pic        *PIC
	platformTicks uint64
	tockAccum     uint64
}

// NewTimer programs channel 0 for the 1 kHz rate and registers the IRQ0
// handler. Interrupts must already be masked (pre-STI harness) when this
// runs; unmask happens explicitly by the caller after STI.
func NewTimer(pal PAL, pic *PIC) *Timer {
	t := &Timer{pal: pal, pic: pic}
	divisor := uint16(pitInputClockHz / timerTickHz)
	pal.PortOutB(pitCommandPort, 0x36) // channel 0, lobyte/hibyte, mode 3
	pal.PortOutB(pitChannel0Data, uint8(divisor&0xFF))
	pal.PortOutB(pitChannel0Data, uint8(divisor>>8))
	pic.Register(0, t.onTick)
	pic.Mask(0) // Register unmasks; IRQ0 stays masked until the caller unmasks it
	return t
}

func (t *Timer) onTick() {
	atomic.AddUint64(&t.platformTicks, 1)
}

// PlatformTicks returns the raw 1 kHz tick counter.
func (t *Timer) PlatformTicks() uint64 {
	return atomic.LoadUint64(&t.platformTicks)
}

// TickCount implements the classic 60 Hz Mac clock exposed in spec.md §6:
// "underlying source is the 1 kHz platform timer divided by 16 (nearest)."
func (t *Timer) TickCount() uint32 {
	ticks := t.PlatformTicks()
	return uint32((ticks + ticksPerTock/2) / ticksPerTock)
}

// Fire simulates one hardware timer interrupt for tests and for the
// cooperative pump's idle path.
func (t *Timer) Fire() {
	t.pic.Fire(0)
}
