package core

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestQM31BasicArithmetic(t *testing.T) {
	x := QM31FromM31(NewM31(5))
	y := QM31FromM31(NewM31(7))
	require.Equal(t, QM31FromM31(NewM31(12)), x.Add(y))
	require.Equal(t, QM31FromM31(NewM31(35)), x.Mul(y))
}

func TestQM31InvIsMultiplicativeInverse(t *testing.T) {
	x := NewQM31(NewCM31(NewM31(3), NewM31(5)), NewCM31(NewM31(7), NewM31(11)))
	inv, err := x.Inv()
	require.NoError(t, err)
	require.True(t, x.Mul(inv).Equal(OneQM31))
}

func TestQM31InvZeroErrors(t *testing.T) {
	_, err := ZeroQM31.Inv()
	require.ErrorIs(t, err, ErrNotInvertible)
}

func TestQM31PowMatchesRepeatedMul(t *testing.T) {
	x := NewQM31(NewCM31(NewM31(2), NewM31(3)), NewCM31(NewM31(4), NewM31(5)))
	want := OneQM31
	for i := 0; i < 7; i++ {
		want = want.Mul(x)
	}
	require.True(t, want.Equal(x.Pow(7)))
}

func TestQM31LimbsRoundTrip(t *testing.T) {
	x := NewQM31(NewCM31(NewM31(9), NewM31(8)), NewCM31(NewM31(7), NewM31(6)))
	require.True(t, x.Equal(QM31FromLimbs(x.Limbs())))
}

func TestQM31BytesRoundTrip(t *testing.T) {
	x := NewQM31(NewCM31(NewM31(123), NewM31(456)), NewCM31(NewM31(789), NewM31(1011)))
	b := x.Bytes()
	var y QM31
	var ab, bb [4]byte
	copy(ab[:], b[0:4])
	copy(bb[:], b[4:8])
	y.C0 = NewCM31(M31FromBytes(ab), M31FromBytes(bb))
	copy(ab[:], b[8:12])
	copy(bb[:], b[12:16])
	y.C1 = NewCM31(M31FromBytes(ab), M31FromBytes(bb))
	require.True(t, x.Equal(y))
}

func qm31ElementGen() gopter.Gen {
	m31 := gen.UInt32Range(0, ModulusM31-1).Map(func(a uint32) M31 { return NewM31(uint64(a)) })
	return gopter.CombineGens(m31, m31, m31, m31).Map(func(vs []interface{}) QM31 {
		return NewQM31(
			NewCM31(vs[0].(M31), vs[1].(M31)),
			NewCM31(vs[2].(M31), vs[3].(M31)),
		)
	})
}

func TestQM31FieldLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("addition commutes", prop.ForAll(
		func(a, b QM31) bool { return a.Add(b).Equal(b.Add(a)) },
		qm31ElementGen(), qm31ElementGen(),
	))

	properties.Property("nonzero a: a*inv(a) == 1", prop.ForAll(
		func(a QM31) bool {
			if a.IsZero() {
				a = OneQM31
			}
			inv, err := a.Inv()
			if err != nil {
				return false
			}
			return a.Mul(inv).Equal(OneQM31)
		},
		qm31ElementGen(),
	))

	properties.TestingRun(t)
}
