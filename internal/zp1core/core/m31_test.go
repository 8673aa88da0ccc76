package core

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestM31BasicArithmetic(t *testing.T) {
	a := NewM31(10)
	b := NewM31(3)

	require.Equal(t, NewM31(13), a.Add(b))
	require.Equal(t, NewM31(7), a.Sub(b))
	require.Equal(t, NewM31(30), a.Mul(b))
	require.True(t, a.Sub(a).IsZero())
}

func TestM31WrapsAtModulus(t *testing.T) {
	p := NewM31(uint64(ModulusM31))
	require.True(t, p.IsZero(), "p mod p must reduce to zero")

	almost := NewM31(uint64(ModulusM31) - 1)
	require.Equal(t, NewM31(0), almost.Add(OneM31))
}

func TestM31NegAndSubAgree(t *testing.T) {
	a := NewM31(12345)
	require.Equal(t, ZeroM31.Sub(a), a.Neg())
}

func TestM31FromInt64Negative(t *testing.T) {
	a := NewM31FromInt64(-1)
	require.Equal(t, NewM31(uint64(ModulusM31)-1), a)
}

func TestM31InvIsMultiplicativeInverse(t *testing.T) {
	for _, v := range []uint64{1, 2, 3, 12345, uint64(ModulusM31) - 1} {
		a := NewM31(v)
		inv, err := a.Inv()
		require.NoError(t, err)
		require.True(t, a.Mul(inv).IsOne())
	}
}

func TestM31InvZeroErrors(t *testing.T) {
	_, err := ZeroM31.Inv()
	require.ErrorIs(t, err, ErrNotInvertible)
}

func TestM31BytesRoundTrip(t *testing.T) {
	a := NewM31(987654321 % uint64(ModulusM31))
	require.Equal(t, a, M31FromBytes(a.Bytes()))
}

func TestBatchInvM31MatchesIndividualInverses(t *testing.T) {
	values := []M31{NewM31(1), NewM31(2), NewM31(3), NewM31(999999937), NewM31(42)}
	batch, err := BatchInvM31(values)
	require.NoError(t, err)
	require.Len(t, batch, len(values))
	for i, v := range values {
		want, err := v.Inv()
		require.NoError(t, err)
		require.Equal(t, want, batch[i])
	}
}

func TestBatchInvM31RejectsZero(t *testing.T) {
	_, err := BatchInvM31([]M31{NewM31(1), ZeroM31})
	require.ErrorIs(t, err, ErrNotInvertible)
}

// m31Gen produces arbitrary field elements by reducing an arbitrary uint64,
// so every generated value already lands in canonical range.
func m31Gen() gopter.Gen {
	return gen.UInt64().Map(func(v uint64) M31 { return NewM31(v) })
}

func TestM31FieldLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("a+b == b+a", prop.ForAll(
		func(a, b M31) bool { return a.Add(b) == b.Add(a) },
		m31Gen(), m31Gen(),
	))

	properties.Property("a*(b+c) == a*b + a*c", prop.ForAll(
		func(a, b, c M31) bool {
			lhs := a.Mul(b.Add(c))
			rhs := a.Mul(b).Add(a.Mul(c))
			return lhs == rhs
		},
		m31Gen(), m31Gen(), m31Gen(),
	))

	properties.Property("nonzero a: a*inv(a) == 1", prop.ForAll(
		func(a M31) bool {
			if a.IsZero() {
				a = OneM31
			}
			inv, err := a.Inv()
			if err != nil {
				return false
			}
			return a.Mul(inv).IsOne()
		},
		m31Gen(),
	))

	properties.TestingRun(t)
}
