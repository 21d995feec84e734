package main

import "testing"

func newTestSerialConsole(t *testing.T) *SerialConsole {
	t.Helper()
	sc, err := NewSerialConsole(&discardWriter{}, -1, false)
	if err != nil {
		t.Fatalf("NewSerialConsole: %v", err)
	}
	return sc
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// TestDiagnosticConsoleFiresOnRisingEdge verifies the edge-triggered
// logging contract: a condition that is true across two consecutive
// samples fires only once, matching the "log the first time" semantics
// a constantly-true breakpoint condition would otherwise spam.
func TestDiagnosticConsoleFiresOnRisingEdge(t *testing.T) {
	dc := NewDiagnosticConsole(newTestSerialConsole(t))
	defer dc.Close()

	ticks := 0.0
	dc.RegisterProbe("ticks", func() float64 { return ticks })

	if err := dc.AddTrigger("tick-threshold", "ticks >= 10"); err != nil {
		t.Fatalf("AddTrigger: %v", err)
	}

	ticks = 5
	if fired := dc.Sample(); len(fired) != 0 {
		t.Fatalf("expected no trigger below threshold, got %v", fired)
	}

	ticks = 10
	fired := dc.Sample()
	if len(fired) != 1 || fired[0] != "tick-threshold" {
		t.Fatalf("expected tick-threshold to fire once, got %v", fired)
	}

	// Condition still holds; must not re-fire without an intervening
	// false sample or a Reset.
	if fired := dc.Sample(); len(fired) != 0 {
		t.Fatalf("expected no re-fire while condition stays true, got %v", fired)
	}
}

// TestDiagnosticConsoleRefiresAfterFalseEdge verifies a trigger re-arms
// once its condition goes false and becomes true again.
func TestDiagnosticConsoleRefiresAfterFalseEdge(t *testing.T) {
	dc := NewDiagnosticConsole(newTestSerialConsole(t))
	defer dc.Close()

	hits, misses := 0.0, 0.0
	dc.RegisterProbe("hits", func() float64 { return hits })
	dc.RegisterProbe("misses", func() float64 { return misses })

	if err := dc.AddTrigger("cache-cold", "misses > hits"); err != nil {
		t.Fatalf("AddTrigger: %v", err)
	}

	misses = 5
	if fired := dc.Sample(); len(fired) != 1 {
		t.Fatalf("expected cache-cold to fire, got %v", fired)
	}

	hits = 10
	if fired := dc.Sample(); len(fired) != 0 {
		t.Fatalf("expected no fire once hits overtake misses, got %v", fired)
	}

	misses = 20
	fired := dc.Sample()
	if len(fired) != 1 || fired[0] != "cache-cold" {
		t.Fatalf("expected cache-cold to re-fire, got %v", fired)
	}
}

// TestDiagnosticConsoleRejectsNonBooleanExpression verifies
// AddTrigger's registration-time validation catches a condition that
// does not evaluate to a boolean, rather than failing silently on the
// console's next Sample.
func TestDiagnosticConsoleRejectsNonBooleanExpression(t *testing.T) {
	dc := NewDiagnosticConsole(newTestSerialConsole(t))
	defer dc.Close()

	if err := dc.AddTrigger("bad", "1 + 1"); err == nil {
		t.Fatal("expected error for non-boolean expression")
	}
}

// TestDiagnosticConsoleRejectsMalformedExpression verifies a Lua syntax
// error at registration time is reported rather than deferred.
func TestDiagnosticConsoleRejectsMalformedExpression(t *testing.T) {
	dc := NewDiagnosticConsole(newTestSerialConsole(t))
	defer dc.Close()

	if err := dc.AddTrigger("bad", "ticks >="); err == nil {
		t.Fatal("expected parse error for malformed expression")
	}
}

// TestDiagnosticConsoleResetRearmsConstantTrigger verifies Reset lets a
// trigger whose condition never went false fire again on demand (e.g.
// after an operator has acknowledged the prior log line).
func TestDiagnosticConsoleResetRearmsConstantTrigger(t *testing.T) {
	dc := NewDiagnosticConsole(newTestSerialConsole(t))
	defer dc.Close()

	dc.RegisterProbe("always", func() float64 { return 1 })
	if err := dc.AddTrigger("always-on", "always > 0"); err != nil {
		t.Fatalf("AddTrigger: %v", err)
	}

	if fired := dc.Sample(); len(fired) != 1 {
		t.Fatalf("expected initial fire, got %v", fired)
	}
	if fired := dc.Sample(); len(fired) != 0 {
		t.Fatalf("expected no re-fire before Reset, got %v", fired)
	}

	dc.Reset()
	if fired := dc.Sample(); len(fired) != 1 {
		t.Fatalf("expected re-fire after Reset, got %v", fired)
	}
}
