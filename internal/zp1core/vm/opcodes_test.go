package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeSelectorsAreUniqueAndContiguous(t *testing.T) {
	seen := map[Column]bool{}
	for op := OpADD; op <= OpREM; op++ {
		sel := op.Selector()
		require.False(t, seen[sel], "selector %v reused", sel)
		seen[sel] = true
		require.GreaterOrEqual(t, int(sel), int(FirstOpcodeSelector))
		require.LessOrEqual(t, int(sel), int(LastOpcodeSelector))
	}
	require.Len(t, seen, NumOpcodeSelectors)
}

func TestOpcodeStringKnowsEveryOpcode(t *testing.T) {
	for op := OpADD; op <= OpREM; op++ {
		require.NotEqual(t, "unknown", op.String(), "opcode %d", op)
	}
	require.Equal(t, "unknown", Opcode(-1).String())
}

func TestWritesRdExcludesBranchesAndStores(t *testing.T) {
	require.False(t, OpBEQ.WritesRd())
	require.False(t, OpSW.WritesRd())
	require.True(t, OpADD.WritesRd())
	require.True(t, OpLW.WritesRd())
}

func TestIsMemoryMatchesLoadStoreFamilies(t *testing.T) {
	require.True(t, OpLW.IsMemory())
	require.True(t, OpSB.IsMemory())
	require.False(t, OpADD.IsMemory())
	require.False(t, OpBEQ.IsMemory())
}

func TestIsImmediateCoversAllIOpcodes(t *testing.T) {
	for _, op := range []Opcode{OpADDI, OpANDI, OpORI, OpXORI, OpSLLI, OpSRLI, OpSRAI,
		OpSLTI, OpSLTIU, OpJALR, OpLW, OpLH, OpLB, OpLHU, OpLBU} {
		require.True(t, op.IsImmediate(), "%s should be immediate-form", op)
	}
	require.False(t, OpADD.IsImmediate())
	require.False(t, OpBEQ.IsImmediate())
}

func TestColumnNamesCoverEverySelector(t *testing.T) {
	for op := OpADD; op <= OpREM; op++ {
		name := ColumnNames[op.Selector()]
		require.Equal(t, "sel_"+op.String(), name)
	}
}
