package core

import "fmt"

// qm31NonResidue is R = 2+i, the non-residue used to build the quartic
// extension QM31 = CM31[u]/(u^2 - R). This matches the standard circle-STARK
// extension tower (Circle STARKs, Haböck et al.): QM31 elements are
// C0 + C1*u with C0, C1 in CM31.
var qm31NonResidue = CM31{A: NewM31(2), B: OneM31}

// QM31 is the quartic extension of M31 (~2^124 elements) used for
// out-of-domain challenges and composition, giving >100 bits of security
// via Schwartz-Zippel even though the base field is only ~2^31.
type QM31 struct {
	C0, C1 CM31
}

// NewQM31 builds c0 + c1*u.
func NewQM31(c0, c1 CM31) QM31 { return QM31{C0: c0, C1: c1} }

// QM31FromM31 embeds a base-field scalar into QM31.
func QM31FromM31(v M31) QM31 {
	return QM31{C0: CM31{A: v}, C1: ZeroCM31}
}

// ZeroQM31 and OneQM31 are the additive/multiplicative identities.
var (
	ZeroQM31 = QM31{C0: ZeroCM31, C1: ZeroCM31}
	OneQM31  = QM31{C0: OneCM31, C1: ZeroCM31}
)

// Add returns x+y componentwise.
func (x QM31) Add(y QM31) QM31 {
	return QM31{C0: x.C0.Add(y.C0), C1: x.C1.Add(y.C1)}
}

// Sub returns x-y componentwise.
func (x QM31) Sub(y QM31) QM31 {
	return QM31{C0: x.C0.Sub(y.C0), C1: x.C1.Sub(y.C1)}
}

// Neg returns -x.
func (x QM31) Neg() QM31 {
	return QM31{C0: x.C0.Neg(), C1: x.C1.Neg()}
}

// Mul returns (c0+c1 u)(d0+d1 u) = (c0 d0 + R c1 d1) + (c0 d1 + c1 d0) u.
func (x QM31) Mul(y QM31) QM31 {
	c0d0 := x.C0.Mul(y.C0)
	c1d1 := x.C1.Mul(y.C1)
	c0d1 := x.C0.Mul(y.C1)
	c1d0 := x.C1.Mul(y.C0)

	newC0 := c0d0.Add(c1d1.Mul(qm31NonResidue))
	newC1 := c0d1.Add(c1d0)
	return QM31{C0: newC0, C1: newC1}
}

// MulM31 scales x by a base-field scalar, in place in the sense that it
// never allocates an extension element for the scalar. This is the
// "multiply M31 by QM31 without allocating" primitive the AIR/composition
// layer needs when combining M31 trace values with QM31 challenges.
func (x QM31) MulM31(s M31) QM31 {
	return QM31{C0: x.C0.MulM31(s), C1: x.C1.MulM31(s)}
}

// MulCM31 scales x by a CM31 scalar.
func (x QM31) MulCM31(s CM31) QM31 {
	return QM31{C0: x.C0.Mul(s), C1: x.C1.Mul(s)}
}

// Square returns x*x.
func (x QM31) Square() QM31 { return x.Mul(x) }

// conjU returns the conjugate under u -> -u: c0 - c1*u.
func (x QM31) conjU() QM31 {
	return QM31{C0: x.C0, C1: x.C1.Neg()}
}

// Inv returns the multiplicative inverse of x.
//
// x * conjU(x) = c0^2 - R*c1^2 lies in CM31; inverting that norm and
// scaling conjU(x) by it yields x^-1, the standard extension-field
// inversion-by-norm trick applied one level up the tower.
func (x QM31) Inv() (QM31, error) {
	norm := x.C0.Square().Sub(x.C1.Square().Mul(qm31NonResidue))
	normInv, err := norm.Inv()
	if err != nil {
		return ZeroQM31, ErrNotInvertible
	}
	conj := x.conjU()
	return conj.MulCM31(normInv), nil
}

// Div returns x/y.
func (x QM31) Div(y QM31) (QM31, error) {
	inv, err := y.Inv()
	if err != nil {
		return ZeroQM31, err
	}
	return x.Mul(inv), nil
}

// Pow returns x^e via binary exponentiation.
func (x QM31) Pow(e uint64) QM31 {
	result := OneQM31
	base := x
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// IsZero reports whether x is the additive identity.
func (x QM31) IsZero() bool { return x.C0.IsZero() && x.C1.IsZero() }

// Equal reports value equality.
func (x QM31) Equal(y QM31) bool { return x.C0.Equal(y.C0) && x.C1.Equal(y.C1) }

// String renders "(c0)+(c1)u".
func (x QM31) String() string { return fmt.Sprintf("(%s)+(%s)u", x.C0, x.C1) }

// Bytes returns the 16-byte little-endian encoding (C0 then C1).
func (x QM31) Bytes() [16]byte {
	c0b := x.C0.Bytes()
	c1b := x.C1.Bytes()
	var out [16]byte
	copy(out[0:8], c0b[:])
	copy(out[8:16], c1b[:])
	return out
}

// Limbs returns the four underlying M31 limbs in the fixed order
// (C0.A, C0.B, C1.A, C1.B), used to lay a QM31 running-sum value out as
// four trace columns.
func (x QM31) Limbs() [4]M31 {
	return [4]M31{x.C0.A, x.C0.B, x.C1.A, x.C1.B}
}

// QM31FromLimbs is the inverse of Limbs.
func QM31FromLimbs(l [4]M31) QM31 {
	return QM31{C0: CM31{A: l[0], B: l[1]}, C1: CM31{A: l[2], B: l[3]}}
}
