// debug_conditions.go - trigger condition evaluator for the diagnostic
// console. Generalized from debug_monitor.go's breakpoint-condition
// model (register/memory/hitcount compared against a constant by one of
// six operators) to an arbitrary Lua boolean expression over named
// kernel-state probes, via github.com/yuin/gopher-lua. There is no guest
// CPU register file or memory space in this kernel for the original
// three-source, six-operator grammar to address, so the expression
// itself takes over the role ParseCondition/evaluateCondition played.

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// TriggerCondition pairs a human-readable name with a Lua expression
// that must evaluate to a boolean when run against the probe set passed
// to evaluateTriggerCondition.
type TriggerCondition struct {
	Name string
	Expr string
}

// compileTriggerCondition checks that expr parses and, evaluated against
// the probe globals already bound in L (AddTrigger binds every registered
// probe to zero first), yields a boolean - catching a malformed
// condition at registration time rather than on the console's next
// sample.
func compileTriggerCondition(L *lua.LState, expr string) error {
	_, err := evaluateTriggerCondition(L, expr, nil)
	return err
}

// evaluateTriggerCondition binds each entry of probes as a Lua global
// and runs "return (expr)", requiring the result to be a boolean. Probe
// names not referenced by expr are simply unused globals; probes map may
// be nil to validate syntax alone.
func evaluateTriggerCondition(L *lua.LState, expr string, probes map[string]float64) (bool, error) {
	for name, value := range probes {
		L.SetGlobal(name, lua.LNumber(value))
	}

	if err := L.DoString("return (" + expr + ")"); err != nil {
		return false, fmt.Errorf("trigger condition %q: %w", expr, err)
	}
	defer L.SetTop(0)

	ret := L.Get(-1)
	b, ok := ret.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("trigger condition %q: expected boolean result, got %s", expr, ret.Type().String())
	}
	return bool(b), nil
}
