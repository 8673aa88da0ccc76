package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleValues(n int, seed uint64) []M31 {
	out := make([]M31, n)
	x := NewM31(seed | 1)
	for i := range out {
		x = x.Mul(NewM31(6364136223846793005 % uint64(ModulusM31))).Add(NewM31(uint64(i) + 1))
		out[i] = x
	}
	return out
}

func TestInterpolateEvaluateRoundTrip(t *testing.T) {
	for _, logSize := range []int{1, 2, 3, 5} {
		d, err := NewStandardDomain(logSize)
		require.NoError(t, err)
		values := sampleValues(d.Size(), uint64(logSize)+1)

		poly, err := Interpolate(values, d)
		require.NoError(t, err)

		out, err := poly.Evaluate(d)
		require.NoError(t, err)
		require.Equal(t, values, out, "logSize=%d", logSize)
	}
}

func TestEvalAtM31MatchesEvaluate(t *testing.T) {
	d, err := NewStandardDomain(4)
	require.NoError(t, err)
	values := sampleValues(d.Size(), 17)
	poly, err := Interpolate(values, d)
	require.NoError(t, err)

	points := d.Points()
	for k, p := range points {
		require.Equal(t, values[k], poly.EvalAtM31(p.X, p.Y))
	}
}

func TestLDEAgreesOnSourceDomain(t *testing.T) {
	from, err := NewStandardDomain(3)
	require.NoError(t, err)
	to, err := NewStandardDomain(6)
	require.NoError(t, err)

	values := sampleValues(from.Size(), 99)
	poly, err := Interpolate(values, from)
	require.NoError(t, err)

	extended, err := LDE(values, from, to)
	require.NoError(t, err)
	require.Len(t, extended, to.Size())

	// Every extended value must agree with direct evaluation of the same
	// low-degree polynomial at that point of the larger domain.
	toPoints := to.Points()
	for k, p := range toPoints {
		require.Equal(t, poly.EvalAtM31(p.X, p.Y), extended[k])
	}
}

func TestLDERejectsShrinkingDomain(t *testing.T) {
	from, err := NewStandardDomain(5)
	require.NoError(t, err)
	to, err := NewStandardDomain(3)
	require.NoError(t, err)
	values := sampleValues(from.Size(), 1)
	_, err = LDE(values, from, to)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestInterpolateRejectsWrongLength(t *testing.T) {
	d, err := NewStandardDomain(3)
	require.NoError(t, err)
	_, err = Interpolate(make([]M31, d.Size()-1), d)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestEvalAtQM31AgreesWithEvalAtM31(t *testing.T) {
	d, err := NewStandardDomain(3)
	require.NoError(t, err)
	values := sampleValues(d.Size(), 5)
	poly, err := Interpolate(values, d)
	require.NoError(t, err)

	p := d.PointAt(2)
	got := poly.EvalAtQM31(QM31FromM31(p.X), QM31FromM31(p.Y))
	require.True(t, got.Equal(QM31FromM31(poly.EvalAtM31(p.X, p.Y))))
}
