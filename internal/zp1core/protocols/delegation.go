package protocols

import (
	"fmt"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

// DelegationEvent is one call across the delegation bus: a precompile
// invocation the main RV32IM trace hands off to a side table (e.g. a
// Keccak or bignum-multiply circuit) and later reads a result back from,
// bound together purely through a LogUp multiset argument rather than a
// dedicated wire (spec.md §6). ChannelTag distinguishes precompile kinds
// so two different delegated circuits never get cross-matched.
type DelegationEvent struct {
	ChannelTag uint32
	Row        int
	Inputs     []core.M31
	Outputs    []core.M31
}

func (e DelegationEvent) fingerprint(alpha, beta core.QM31) core.QM31 {
	acc := core.QM31FromM31(core.NewM31(uint64(e.ChannelTag)))
	for _, v := range e.Inputs {
		acc = acc.Mul(alpha).Add(core.QM31FromM31(v))
	}
	for _, v := range e.Outputs {
		acc = acc.Mul(alpha).Add(core.QM31FromM31(v))
	}
	return acc.Add(beta)
}

// DelegationBus ties a main-trace side (callers) to a precompile-table
// side (callees) purely through multiset equality: every call the main
// trace issues must be answered by exactly one row of the delegated
// circuit's own trace, in any order, the same telescoping-LogUp
// technique the memory and register channels use.
type DelegationBus struct {
	Final core.QM31
}

// ComputeDelegationBus checks that callerEvents (drawn from the main
// RV32IM trace's delegation-call rows) and calleeEvents (drawn from a
// precompile circuit's own trace) describe the same multiset of
// (tag, inputs, outputs) tuples, and returns the shared running-sum
// boundary value the two sides' committed columns must each telescope to.
func ComputeDelegationBus(callerEvents, calleeEvents []DelegationEvent, alpha, beta core.QM31) (*DelegationBus, error) {
	if len(callerEvents) != len(calleeEvents) {
		return nil, fmt.Errorf("protocols: delegation bus: caller issued %d calls, callee answered %d", len(callerEvents), len(calleeEvents))
	}

	callerFps := make([]core.QM31, len(callerEvents))
	for i, e := range callerEvents {
		callerFps[i] = e.fingerprint(alpha, beta)
	}
	callerInv, err := core.BatchInvQM31(callerFps)
	if err != nil {
		return nil, fmt.Errorf("protocols: delegation bus: %w", err)
	}
	callerSum := core.ZeroQM31
	for _, v := range callerInv {
		callerSum = callerSum.Add(v)
	}

	calleeFps := make([]core.QM31, len(calleeEvents))
	for i, e := range calleeEvents {
		calleeFps[i] = e.fingerprint(alpha, beta)
	}
	calleeInv, err := core.BatchInvQM31(calleeFps)
	if err != nil {
		return nil, fmt.Errorf("protocols: delegation bus: %w", err)
	}
	calleeSum := core.ZeroQM31
	for _, v := range calleeInv {
		calleeSum = calleeSum.Add(v)
	}

	if !callerSum.Sub(calleeSum).IsZero() {
		return nil, fmt.Errorf("protocols: %w: running sums disagree", ErrDelegationMismatch)
	}

	return &DelegationBus{Final: callerSum}, nil
}
