package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCircleGenSatisfiesCurveEquation(t *testing.T) {
	p := CircleGenM31
	require.True(t, p.X.Square().Add(p.Y.Square()).IsOne())
}

func TestCircleGroupLawIdentity(t *testing.T) {
	p := CircleGenM31
	require.Equal(t, p, p.Add(IdentityM31))
}

func TestCircleGroupLawInverse(t *testing.T) {
	p := CircleGenM31
	require.Equal(t, IdentityM31, p.Add(p.Neg()))
}

func TestCircleDoubleMatchesSelfAdd(t *testing.T) {
	p := CircleGenM31
	require.Equal(t, p.Add(p), p.Double())
}

func TestSubgroupGeneratorHasExactOrder(t *testing.T) {
	for _, logSize := range []int{1, 2, 3, 8} {
		g := SubgroupGenerator(logSize)
		n := uint64(1) << uint(logSize)

		order := g.Pow(n, IdentityM31)
		require.Equal(t, IdentityM31, order, "logSize=%d: generator^N must be identity", logSize)

		half := g.Pow(n/2, IdentityM31)
		require.NotEqual(t, IdentityM31, half, "logSize=%d: generator^(N/2) must not be identity", logSize)
	}
}

func TestDomainPointsLieOnCurve(t *testing.T) {
	d, err := NewStandardDomain(4)
	require.NoError(t, err)
	for _, p := range d.Points() {
		require.True(t, p.X.Square().Add(p.Y.Square()).IsOne())
	}
}

func TestDomainPointAtMatchesPoints(t *testing.T) {
	d, err := NewStandardDomain(5)
	require.NoError(t, err)
	points := d.Points()
	for k, p := range points {
		require.Equal(t, p, d.PointAt(k))
	}
}

func TestDomainTwinIndexIsAntipodal(t *testing.T) {
	d, err := NewStandardDomain(4)
	require.NoError(t, err)
	points := d.Points()
	for k := range points {
		twin := d.TwinIndex(k)
		require.Equal(t, points[k].Neg(), points[twin])
	}
}

func TestNewStandardDomainRejectsBadSize(t *testing.T) {
	_, err := NewStandardDomain(-1)
	require.ErrorIs(t, err, ErrBadSize)
	_, err = NewStandardDomain(32)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestVanishingAtM31VanishesOnSubgroup(t *testing.T) {
	const logSize = 4
	g := SubgroupGenerator(logSize)
	p := IdentityM31
	for k := 0; k < 1<<logSize; k++ {
		require.True(t, VanishingAtM31(logSize, p).IsZero(), "point %d of the subgroup must vanish", k)
		p = p.Add(g)
	}
}

func TestVanishingAtM31NonzeroOffSubgroup(t *testing.T) {
	const logSize = 3
	d, err := NewStandardDomain(logSize)
	require.NoError(t, err)
	// The shifted coset is disjoint from the logSize subgroup by construction.
	for _, p := range d.Points() {
		require.False(t, VanishingAtM31(logSize, p).IsZero())
	}
}

func TestCosetVanishingAtM31VanishesOnCoset(t *testing.T) {
	const logSize = 4
	d, err := NewStandardDomain(logSize)
	require.NoError(t, err)
	for _, p := range d.Points() {
		require.True(t, CosetVanishingAtM31(d, p).IsZero())
	}
}

func TestBitReverseIsInvolution(t *testing.T) {
	values := []int{0, 1, 2, 3, 4, 5, 6, 7}
	original := append([]int(nil), values...)
	BitReverse(values, 3)
	BitReverse(values, 3)
	require.Equal(t, original, values)
}
