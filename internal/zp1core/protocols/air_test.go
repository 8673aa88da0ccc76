package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/zp1core/vm"
)

func TestCheckAIRPassesOnReferencePrograms(t *testing.T) {
	builders := map[string]func() (*vm.Trace, error){
		"constant": vm.BuildConstantProgram,
		"counting": vm.BuildCountingLoop,
		"fibonacci": vm.BuildFibonacci,
	}
	for name, build := range builders {
		tr, err := build()
		require.NoError(t, err, name)
		require.NoError(t, CheckAIR(tr), name)
	}
}

func TestCheckAIRCatchesX0Forgery(t *testing.T) {
	tr, err := vm.BuildConstantProgram()
	require.NoError(t, err)
	vm.InjectX0Forgery(tr, 0)

	err = CheckAIR(tr)
	require.Error(t, err)
	violation, ok := err.(*ConstraintViolation)
	require.True(t, ok, "expected *ConstraintViolation, got %T", err)
	require.Equal(t, "x0_nonzero", violation.Kind)
	require.Equal(t, 0, violation.Row)
}

func TestAllConstraintsAreWellFormed(t *testing.T) {
	constraints := AllConstraints()
	require.NotEmpty(t, constraints)
	seen := map[string]bool{}
	for _, c := range constraints {
		require.NotEmpty(t, c.Name)
		require.False(t, seen[c.Name], "duplicate constraint name %q", c.Name)
		seen[c.Name] = true
		require.NotNil(t, c.Eval)
	}
}

func TestEvaluateRowLastRowWrapsToItself(t *testing.T) {
	tr, err := vm.BuildConstantProgram()
	require.NoError(t, err)
	constraints := AllConstraints()
	// Every row of BuildConstantProgram is the same repeated instruction,
	// so wrapping the last row's "next" to itself must still satisfy every
	// transition constraint.
	vals := EvaluateRow(tr, constraints, tr.NumRows-1)
	for k, v := range vals {
		require.True(t, v.IsZero(), "constraint %s nonzero on wrapped last row", constraints[k].Name)
	}
}
