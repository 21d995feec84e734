package main

import (
	"bytes"
	"strings"
	"testing"
)

func newTestSerial(t *testing.T) (*SerialConsole, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	sc, err := NewSerialConsole(&buf, -1, false)
	if err != nil {
		t.Fatalf("NewSerialConsole: %v", err)
	}
	return sc, &buf
}

// TestFaultSentinelCatchesException verifies that raising a CPU exception
// vector halts the sentinel and records the fault, per spec.md §8 scenario
// 1 and §7 ("CpuException ... Fatal; fault sentinel halts").
func TestFaultSentinelCatchesException(t *testing.T) {
	pal := NewPAL()
	idt := NewIDT()
	serial, buf := newTestSerial(t)
	fs := InstallFaultSentinel(idt, serial, pal)

	if fs.IsHalted() {
		t.Fatalf("sentinel halted before any fault")
	}

	fs.Raise(0x0D, 0xBAD) // General Protection

	if !fs.IsHalted() {
		t.Fatalf("sentinel did not halt after exception")
	}
	if fs.Fatal == nil || fs.Fatal.Vector != 0x0D {
		t.Fatalf("fault record = %+v, want vector 0x0D", fs.Fatal)
	}
	if !strings.Contains(buf.String(), "General Protection") {
		t.Fatalf("serial log missing fault name: %q", buf.String())
	}
}

// TestFaultSentinelSecondFaultIgnored verifies the sentinel does not
// re-log or overwrite the first fault once halted (no recovery path).
func TestFaultSentinelSecondFaultIgnored(t *testing.T) {
	pal := NewPAL()
	idt := NewIDT()
	serial, _ := newTestSerial(t)
	fs := InstallFaultSentinel(idt, serial, pal)

	fs.Raise(0x00, 0)
	first := fs.Fatal
	fs.Raise(0x0E, 0x4)
	if fs.Fatal != first {
		t.Fatalf("second fault overwrote the first: %+v", fs.Fatal)
	}
}
