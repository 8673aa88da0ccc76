package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCM31BasicArithmetic(t *testing.T) {
	x := NewCM31(NewM31(3), NewM31(4))
	y := NewCM31(NewM31(1), NewM31(2))

	sum := x.Add(y)
	require.Equal(t, NewCM31(NewM31(4), NewM31(6)), sum)

	diff := x.Sub(y)
	require.Equal(t, NewCM31(NewM31(2), NewM31(2)), diff)

	// (3+4i)(1+2i) = (3-8) + (6+4)i = -5 + 10i
	prod := x.Mul(y)
	require.Equal(t, NewM31FromInt64(-5), prod.A)
	require.Equal(t, NewM31(10), prod.B)
}

func TestCM31InvIsMultiplicativeInverse(t *testing.T) {
	x := NewCM31(NewM31(7), NewM31(11))
	inv, err := x.Inv()
	require.NoError(t, err)
	require.True(t, x.Mul(inv).Equal(OneCM31))
}

func TestCM31InvZeroErrors(t *testing.T) {
	_, err := ZeroCM31.Inv()
	require.ErrorIs(t, err, ErrNotInvertible)
}

func TestCM31ConjNorm(t *testing.T) {
	x := NewCM31(NewM31(5), NewM31(9))
	require.Equal(t, x.A, x.Conj().A)
	require.Equal(t, x.B.Neg(), x.Conj().B)
	require.Equal(t, x.A.Square().Add(x.B.Square()), x.Norm())
}
