package main

import "testing"

// TestPreSTIHarnessAllGreen verifies the end-to-end boot scenario from
// spec.md §8 scenario 1: after platform init, the pre-STI harness passes
// every check before STI.
func TestPreSTIHarnessAllGreen(t *testing.T) {
	pal := NewPAL()
	idt := NewIDT()
	pic := NewPIC(pal, idt)
	gdt := &GDTStub{Base: 0x00001000, Limit: 0x37}
	serial, _ := newTestSerial(t)

	h := NewPreSTIHarness(pal, pic, idt, gdt, serial)
	results := h.Run()

	if !AllPassed(results) {
		t.Fatalf("expected all pre-STI checks to pass: %+v", results)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 checks, got %d", len(results))
	}
}

// TestPreSTIHarnessCatchesInvalidGDT verifies the "Verify GDT" check
// fails when base is zero, per spec.md §4.3 step 3.
func TestPreSTIHarnessCatchesInvalidGDT(t *testing.T) {
	pal := NewPAL()
	idt := NewIDT()
	pic := NewPIC(pal, idt)
	gdt := &GDTStub{} // zero base
	serial, _ := newTestSerial(t)

	h := NewPreSTIHarness(pal, pic, idt, gdt, serial)
	results := h.Run()

	if AllPassed(results) {
		t.Fatalf("expected a failing check for zero-base GDT")
	}
}

// TestPreSTIHarnessIdempotent verifies running the harness twice yields
// the same outcomes, per spec.md §4.3 ("The harness is idempotent").
func TestPreSTIHarnessIdempotent(t *testing.T) {
	pal := NewPAL()
	idt := NewIDT()
	pic := NewPIC(pal, idt)
	gdt := &GDTStub{Base: 0x1000, Limit: 0x37}
	serial, _ := newTestSerial(t)

	h := NewPreSTIHarness(pal, pic, idt, gdt, serial)
	first := h.Run()
	second := h.Run()

	if AllPassed(first) != AllPassed(second) {
		t.Fatalf("harness not idempotent: first=%v second=%v", AllPassed(first), AllPassed(second))
	}
}
