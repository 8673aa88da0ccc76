package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

func TestDeepPointFromScalarLandsOnCurve(t *testing.T) {
	for _, v := range []uint64{0, 1, 2, 12345, 999999} {
		scalar := core.QM31FromM31(core.NewM31(v))
		p, err := deepPointFromScalar(scalar)
		require.NoError(t, err)

		lhs := p.X.Mul(p.X).Add(p.Y.Mul(p.Y))
		require.True(t, lhs.Equal(core.OneQM31), "point for scalar %d is not on the unit circle", v)
	}
}

func TestQM31InterpolateRoundTripsThroughEvalAtQM31(t *testing.T) {
	logSize := 4
	domain, err := core.NewStandardDomain(logSize)
	require.NoError(t, err)

	values := make([]core.QM31, domain.Size())
	var x uint64 = 5
	for i := range values {
		x = x*6364136223846793005 + 1
		values[i] = core.QM31FromM31(core.NewM31(x % uint64(core.ModulusM31)))
	}

	poly, err := qm31Interpolate(values, domain)
	require.NoError(t, err)

	points := domain.Points()
	for i, p := range points {
		got := poly.EvalAtQM31(core.QM31FromM31(p.X), core.QM31FromM31(p.Y))
		require.True(t, got.Equal(values[i]), "index %d", i)
	}
}

func TestQM31InterpolateRejectsWrongLength(t *testing.T) {
	domain, err := core.NewStandardDomain(3)
	require.NoError(t, err)
	_, err = qm31Interpolate(make([]core.QM31, 3), domain)
	require.ErrorIs(t, err, core.ErrBadSize)
}
