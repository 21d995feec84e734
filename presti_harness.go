// presti_harness.go - Pre-STI Safety Harness: runs a fixed, idempotent
// sequence of checks immediately before the kernel enables interrupts.
// Grounded on original_source/src/Nanokernel/nk_pre_sti_safety.c.

package main

import "fmt"

// PreSTICheckResult records the outcome of a single harness check.
type PreSTICheckResult struct {
	Name string
	Pass bool
	Note string
}

// PreSTIHarness runs the ordered check sequence from spec.md §4.3:
// disable NMI, EOI both legacy controllers, verify GDT, verify IDT,
// verify PIC masks, snapshot registers. It is idempotent: running it
// twice produces the same checks with no side effects beyond the ones
// each individual check performs (EOI and NMI-disable are themselves
// idempotent operations).
type PreSTIHarness struct {
	pal    PAL
	pic    *PIC
	idt    *IDT
	serial *SerialConsole
	gdt    *GDTStub
}

// GDTStub models SGDT's observable fields for the "Verify GDT" check.
// A freestanding build reads these from the real GDTR; here they are
// populated at boot by main.go.
type GDTStub struct {
	Base  uint64
	Limit uint16
}

func (g *GDTStub) valid() bool { return g != nil && g.Base != 0 }

// NewPreSTIHarness constructs the harness over the kernel's already
// installed IDT, PIC and GDT.
func NewPreSTIHarness(pal PAL, pic *PIC, idt *IDT, gdt *GDTStub, serial *SerialConsole) *PreSTIHarness {
	return &PreSTIHarness{pal: pal, pic: pic, idt: idt, gdt: gdt, serial: serial}
}

// Run executes every check in order and logs each outcome through the
// serial path. It returns the full result list; per spec.md §4.3 "a
// failure is logged but does not by itself abort" — callers decide
// whether any check's failure should prevent STI via AllPassed.
func (h *PreSTIHarness) Run() []PreSTICheckResult {
	results := []PreSTICheckResult{
		h.disableNMI(),
		h.eoiBothControllers(),
		h.verifyGDT(),
		h.verifyIDT(),
		h.verifyPICMasks(),
		h.registerSnapshot(),
	}
	for _, r := range results {
		status := "PASS"
		if !r.Pass {
			status = "FAIL"
		}
		h.serial.Writeln(fmt.Sprintf("[PRESTI] %-20s %s %s", r.Name, status, r.Note))
	}
	return results
}

// AllPassed reports whether every check in results passed.
func AllPassed(results []PreSTICheckResult) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func (h *PreSTIHarness) disableNMI() PreSTICheckResult {
	// CMOS index port 0x70, bit 7 gates NMI.
	cur := h.pal.PortInB(cmosIndexPort)
	h.pal.PortOutB(cmosIndexPort, cur|0x80)
	return PreSTICheckResult{Name: "disable-nmi", Pass: true, Note: "bit7 set on CMOS index port"}
}

func (h *PreSTIHarness) eoiBothControllers() PreSTICheckResult {
	h.pic.SendEOI(masterPICCommand, picEOICommand)
	h.pic.SendEOI(slavePICCommand, picEOICommand)
	return PreSTICheckResult{Name: "eoi-both-pics", Pass: true, Note: "residual latch cleared"}
}

func (h *PreSTIHarness) verifyGDT() PreSTICheckResult {
	ok := h.gdt.valid()
	note := fmt.Sprintf("base=0x%X", h.gdt.Base)
	return PreSTICheckResult{Name: "verify-gdt", Pass: ok, Note: note}
}

func (h *PreSTIHarness) verifyIDT() PreSTICheckResult {
	ok := h.idt.Valid()
	note := fmt.Sprintf("base=0x%X limit=0x%X", h.idt.Base, h.idt.Limit)
	return PreSTICheckResult{Name: "verify-idt", Pass: ok, Note: note}
}

func (h *PreSTIHarness) verifyPICMasks() PreSTICheckResult {
	masterMask := h.pic.ReadMask(true)
	slaveMask := h.pic.ReadMask(false)
	ok := masterMask == 0xFF && slaveMask == 0xFF
	return PreSTICheckResult{
		Name: "verify-pic-masks", Pass: ok,
		Note: fmt.Sprintf("master=0x%02X slave=0x%02X", masterMask, slaveMask),
	}
}

func (h *PreSTIHarness) registerSnapshot() PreSTICheckResult {
	// ESP/EFLAGS are not observable from hosted Go; TimerTicks stands in
	// as the logged "register" value for diagnostic purposes.
	return PreSTICheckResult{
		Name: "register-snapshot", Pass: true,
		Note: fmt.Sprintf("ticks=%d", h.pal.TimerTicks()),
	}
}
