package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
	"github.com/ZippelLabs/ZP1/internal/zp1core/vm"
)

func TestTracePolynomialsRoundTripThroughEvaluate(t *testing.T) {
	tr, err := vm.BuildFibonacci()
	require.NoError(t, err)
	logN, err := log2Exact(tr.NumRows)
	require.NoError(t, err)
	traceDomain, err := core.NewStandardDomain(logN)
	require.NoError(t, err)

	polys, err := TracePolynomials(tr, traceDomain)
	require.NoError(t, err)

	for c := 0; c < vm.NumColumns; c++ {
		vals, err := polys[c].Evaluate(traceDomain)
		require.NoError(t, err, "column %d", c)
		require.Equal(t, tr.Columns[c], vals, "column %d did not round trip", c)
	}
}

func TestComputeCompositionProducesFullLDELength(t *testing.T) {
	tr, err := vm.BuildConstantProgram()
	require.NoError(t, err)
	logN, err := log2Exact(tr.NumRows)
	require.NoError(t, err)

	traceDomain, err := core.NewStandardDomain(logN)
	require.NoError(t, err)
	ldeDomain, err := core.NewStandardDomain(logN + 1)
	require.NoError(t, err)

	polys, err := TracePolynomials(tr, traceDomain)
	require.NoError(t, err)

	constraints := AllConstraints()
	gamma := make([]core.QM31, len(constraints))
	for i := range gamma {
		gamma[i] = core.QM31FromM31(core.NewM31(uint64(i + 1)))
	}

	comp, err := ComputeComposition(polys, traceDomain, ldeDomain, gamma)
	require.NoError(t, err)
	require.Equal(t, ldeDomain.Size(), len(comp.Values))
}

func TestComputeCompositionRejectsMismatchedGammaLength(t *testing.T) {
	tr, err := vm.BuildConstantProgram()
	require.NoError(t, err)
	logN, err := log2Exact(tr.NumRows)
	require.NoError(t, err)
	traceDomain, err := core.NewStandardDomain(logN)
	require.NoError(t, err)
	ldeDomain, err := core.NewStandardDomain(logN + 1)
	require.NoError(t, err)

	polys, err := TracePolynomials(tr, traceDomain)
	require.NoError(t, err)

	_, err = ComputeComposition(polys, traceDomain, ldeDomain, []core.QM31{core.OneQM31})
	require.Error(t, err)
}
