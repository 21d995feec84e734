// debug_monitor.go - diagnostic trigger console: watches kernel-state
// probes against Lua-scripted conditions and logs through the serial
// console on each rising edge. Generalized from debug_monitor.go's
// MachineMonitor freeze/resume state machine: that console attaches to
// a live, resumable guest CPU, which this kernel has none of (the
// fault sentinel's halt is terminal - fault_sentinel.go: "Fatal; no
// recovery"). What does generalize is the conditional-trigger concept
// debug_conditions.go's breakpoint evaluator implemented; this console
// keeps that idea and drops everything built around stepping a CPU.

package main

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ProbeFunc returns the current value of one named kernel-state probe
// (tick count, fault vector, cache hit rate, queue depth, ...). The
// console calls every registered probe once per Sample.
type ProbeFunc func() float64

// DiagnosticConsole evaluates a set of named Lua trigger conditions
// against a set of named kernel-state probes on each Sample call, and
// logs a line through serial the first time a trigger's condition
// transitions from false to true (edge-triggered, so a condition that
// stays true does not spam the log every sample).
type DiagnosticConsole struct {
	mu     sync.Mutex
	L      *lua.LState
	serial *SerialConsole

	probes   map[string]ProbeFunc
	triggers []*registeredTrigger
}

type registeredTrigger struct {
	cond  TriggerCondition
	fired bool
}

// NewDiagnosticConsole constructs a console logging through serial. The
// returned console owns a Lua state and must be closed with Close when
// no longer needed.
func NewDiagnosticConsole(serial *SerialConsole) *DiagnosticConsole {
	return &DiagnosticConsole{
		L:      lua.NewState(),
		serial: serial,
		probes: make(map[string]ProbeFunc),
	}
}

// Close releases the console's Lua state.
func (dc *DiagnosticConsole) Close() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.L.Close()
}

// RegisterProbe names a kernel-state value a trigger condition may
// reference. fn is called fresh on every Sample, so probes should be
// cheap reads (an atomic counter, a cache's Hits/Misses pair) rather
// than anything that itself blocks or allocates heavily.
func (dc *DiagnosticConsole) RegisterProbe(name string, fn ProbeFunc) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.probes[name] = fn
}

// AddTrigger compiles expr (a Lua boolean expression over the console's
// registered probe names) and adds it to the watch list. An error is
// returned if expr does not parse or does not evaluate to a boolean.
func (dc *DiagnosticConsole) AddTrigger(name, expr string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	// Bind every registered probe to zero so the registration-time check
	// runs against an all-zero probe set.
	for name := range dc.probes {
		dc.L.SetGlobal(name, lua.LNumber(0))
	}
	if err := compileTriggerCondition(dc.L, expr); err != nil {
		return err
	}
	dc.triggers = append(dc.triggers, &registeredTrigger{cond: TriggerCondition{Name: name, Expr: expr}})
	return nil
}

// Sample reads every registered probe once, then evaluates every
// trigger condition against that snapshot, logging a [DIAG] line for
// each trigger whose condition just became true. It returns the names
// of triggers that fired this call.
func (dc *DiagnosticConsole) Sample() []string {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	snapshot := make(map[string]float64, len(dc.probes))
	for name, fn := range dc.probes {
		snapshot[name] = fn()
	}

	var justFired []string
	for _, t := range dc.triggers {
		ok, err := evaluateTriggerCondition(dc.L, t.cond.Expr, snapshot)
		if err != nil {
			dc.serial.Writeln(fmt.Sprintf("[DIAG] trigger %q error: %v", t.cond.Name, err))
			continue
		}
		if ok && !t.fired {
			dc.serial.Writeln(fmt.Sprintf("[DIAG] trigger %q fired", t.cond.Name))
			justFired = append(justFired, t.cond.Name)
		}
		t.fired = ok
	}
	return justFired
}

// Reset clears every trigger's fired state, allowing a condition that
// has gone false and true again to re-fire on the next Sample.
func (dc *DiagnosticConsole) Reset() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	for _, t := range dc.triggers {
		t.fired = false
	}
}
