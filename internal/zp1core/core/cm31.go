package core

import "fmt"

// CM31 is the quadratic extension of M31 obtained by adjoining i with
// i^2 = -1: CM31 = M31[i]/(i^2+1). Elements are represented as A + B*i.
type CM31 struct {
	A, B M31
}

// NewCM31 builds a+b*i.
func NewCM31(a, b M31) CM31 { return CM31{A: a, B: b} }

// ZeroCM31 and OneCM31 are the additive/multiplicative identities.
var (
	ZeroCM31 = CM31{A: ZeroM31, B: ZeroM31}
	OneCM31  = CM31{A: OneM31, B: ZeroM31}
)

// Add returns (a+bi)+(c+di) = (a+c)+(b+d)i.
func (x CM31) Add(y CM31) CM31 {
	return CM31{A: x.A.Add(y.A), B: x.B.Add(y.B)}
}

// Sub returns (a+bi)-(c+di).
func (x CM31) Sub(y CM31) CM31 {
	return CM31{A: x.A.Sub(y.A), B: x.B.Sub(y.B)}
}

// Neg returns -(a+bi).
func (x CM31) Neg() CM31 {
	return CM31{A: x.A.Neg(), B: x.B.Neg()}
}

// Mul returns (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (x CM31) Mul(y CM31) CM31 {
	ac := x.A.Mul(y.A)
	bd := x.B.Mul(y.B)
	ad := x.A.Mul(y.B)
	bc := x.B.Mul(y.A)
	return CM31{A: ac.Sub(bd), B: ad.Add(bc)}
}

// MulM31 scales x by a base-field scalar without allocating an extension
// element for the scalar.
func (x CM31) MulM31(s M31) CM31 {
	return CM31{A: x.A.Mul(s), B: x.B.Mul(s)}
}

// Square returns x*x.
func (x CM31) Square() CM31 { return x.Mul(x) }

// Conj returns the conjugate a-bi.
func (x CM31) Conj() CM31 { return CM31{A: x.A, B: x.B.Neg()} }

// Norm returns the base-field norm a^2+b^2 = x * conj(x).
func (x CM31) Norm() M31 {
	return x.A.Square().Add(x.B.Square())
}

// Inv returns the multiplicative inverse: conj(x)/norm(x).
func (x CM31) Inv() (CM31, error) {
	norm := x.Norm()
	if norm.IsZero() {
		return ZeroCM31, ErrNotInvertible
	}
	normInv, err := norm.Inv()
	if err != nil {
		return ZeroCM31, err
	}
	conj := x.Conj()
	return conj.MulM31(normInv), nil
}

// Div returns x/y.
func (x CM31) Div(y CM31) (CM31, error) {
	inv, err := y.Inv()
	if err != nil {
		return ZeroCM31, err
	}
	return x.Mul(inv), nil
}

// IsZero reports whether x is the additive identity.
func (x CM31) IsZero() bool { return x.A.IsZero() && x.B.IsZero() }

// Equal reports value equality.
func (x CM31) Equal(y CM31) bool { return x.A == y.A && x.B == y.B }

// String renders "a+bi".
func (x CM31) String() string { return fmt.Sprintf("%s+%si", x.A, x.B) }

// Bytes returns the 8-byte little-endian encoding (A then B).
func (x CM31) Bytes() [8]byte {
	ab := x.A.Bytes()
	bb := x.B.Bytes()
	var out [8]byte
	copy(out[0:4], ab[:])
	copy(out[4:8], bb[:])
	return out
}
