//go:build arm64

// pal_arm64.go - ARM64 PAL backend: no separate I/O address space, so the
// port accessors are no-ops as spec.md §4.1 requires ("port_in/out{b,w,l}
// (x86 only; no-ops on ARM64)").

package main

type arm64PAL struct {
	*palState
}

// NewPAL constructs the platform abstraction for the build's target
// architecture. Exactly one of pal_amd64.go / pal_arm64.go defines this
// symbol so callers never branch on GOARCH themselves.
func NewPAL() PAL {
	return &arm64PAL{palState: newPALState()}
}

func (p *arm64PAL) IRQDisable() IRQFlags      { return p.irqDisable() }
func (p *arm64PAL) IRQRestore(flags IRQFlags) { p.irqRestore(flags) }
func (p *arm64PAL) Halt()                     { p.halt() } // models `wfi`
func (p *arm64PAL) MemoryBarrier()            { p.memoryBarrier() } // models `dmb sy`
func (p *arm64PAL) CPUID() uint32             { return 0 }

func (p *arm64PAL) PortInB(uint16) uint8          { return 0 }
func (p *arm64PAL) PortOutB(uint16, uint8)        {}
func (p *arm64PAL) PortInW(uint16) uint16         { return 0 }
func (p *arm64PAL) PortOutW(uint16, uint16)       {}

func (p *arm64PAL) MMIORead32(addr uint32) uint32         { return p.mmioRead32(addr) }
func (p *arm64PAL) MMIOWrite32(addr uint32, value uint32) { p.mmioWrite32(addr, value) }
func (p *arm64PAL) Breakpoint()           {} // models `brk #0`
func (p *arm64PAL) TimerTicks() uint64    { return p.timerTicks() }
func (p *arm64PAL) TimerUSleep(us uint64) { p.timerUSleep(us) }
