// Package core implements the Circle-STARK arithmetic layer: the base field
// M31, its quadratic and quartic extensions, the circle group over M31, the
// circle FFT/LDE, and the Merkle vector commitment used to commit evaluation
// matrices.
package core

import "fmt"

// ModulusM31 is p = 2^31 - 1, the Mersenne prime underlying the base field.
const ModulusM31 uint32 = (1 << 31) - 1

// M31 is an element of the base field GF(p), p = 2^31-1, always held in
// canonical representative form [0, p).
type M31 uint32

// NewM31 reduces a uint64 into a canonical M31 element.
func NewM31(v uint64) M31 {
	return M31(reduceM31(v))
}

// NewM31FromInt64 reduces a signed int64 into a canonical M31 element,
// wrapping negative values around the modulus.
func NewM31FromInt64(v int64) M31 {
	m := int64(ModulusM31)
	v %= m
	if v < 0 {
		v += m
	}
	return M31(v)
}

// ZeroM31 and OneM31 are the additive and multiplicative identities.
const (
	ZeroM31 = M31(0)
	OneM31  = M31(1)
)

// reduceM31 performs Mersenne reduction of a 64-bit accumulator down to a
// canonical 31-bit representative by repeatedly folding the high bits into
// the low 31 bits.
func reduceM31(v uint64) uint32 {
	for v>>31 != 0 {
		v = (v & uint64(ModulusM31)) + (v >> 31)
	}
	r := uint32(v)
	if r >= ModulusM31 {
		r -= ModulusM31
	}
	return r
}

// Add returns a+b mod p using branchless conditional subtraction.
func (a M31) Add(b M31) M31 {
	s := uint32(a) + uint32(b)
	if s >= ModulusM31 {
		s -= ModulusM31
	}
	return M31(s)
}

// Sub returns a-b mod p.
func (a M31) Sub(b M31) M31 {
	if uint32(a) >= uint32(b) {
		return M31(uint32(a) - uint32(b))
	}
	return M31(uint32(a) + ModulusM31 - uint32(b))
}

// Neg returns -a mod p.
func (a M31) Neg() M31 {
	if a == 0 {
		return 0
	}
	return M31(ModulusM31 - uint32(a))
}

// Mul returns a*b mod p. The 31x31-bit product fits in 64 bits, reduced via
// Mersenne folding.
func (a M31) Mul(b M31) M31 {
	return M31(reduceM31(uint64(a) * uint64(b)))
}

// Square returns a*a mod p.
func (a M31) Square() M31 {
	return a.Mul(a)
}

// Pow returns a^e mod p via binary exponentiation.
func (a M31) Pow(e uint64) M31 {
	result := OneM31
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a via Fermat's little theorem:
// a^(p-2) mod p. Returns ErrNotInvertible for a == 0.
func (a M31) Inv() (M31, error) {
	if a.IsZero() {
		return 0, ErrNotInvertible
	}
	return a.Pow(uint64(ModulusM31 - 2)), nil
}

// Div returns a/b; propagates ErrNotInvertible if b is zero.
func (a M31) Div(b M31) (M31, error) {
	inv, err := b.Inv()
	if err != nil {
		return 0, err
	}
	return a.Mul(inv), nil
}

// IsZero reports whether a is the additive identity.
func (a M31) IsZero() bool { return a == 0 }

// IsOne reports whether a is the multiplicative identity.
func (a M31) IsOne() bool { return a == 1 }

// Equal reports value equality.
func (a M31) Equal(b M31) bool { return a == b }

// Uint32 returns the canonical representative as a uint32.
func (a M31) Uint32() uint32 { return uint32(a) }

// String renders the canonical decimal representative.
func (a M31) String() string { return fmt.Sprintf("%d", uint32(a)) }

// Bytes returns the 4-byte little-endian encoding of the canonical value.
func (a M31) Bytes() [4]byte {
	v := uint32(a)
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// M31FromBytes decodes a 4-byte little-endian encoding produced by Bytes,
// reducing into canonical range.
func M31FromBytes(b [4]byte) M31 {
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return NewM31(uint64(v))
}

// BatchInvM31 inverts a slice of nonzero M31 elements in O(n) multiplications
// plus a single inversion, using Montgomery's trick. Returns ErrNotInvertible
// if any element is zero.
func BatchInvM31(values []M31) ([]M31, error) {
	n := len(values)
	if n == 0 {
		return nil, nil
	}

	prefix := make([]M31, n)
	acc := OneM31
	for i, v := range values {
		if v.IsZero() {
			return nil, ErrNotInvertible
		}
		prefix[i] = acc
		acc = acc.Mul(v)
	}

	accInv, err := acc.Inv()
	if err != nil {
		return nil, err
	}

	result := make([]M31, n)
	for i := n - 1; i >= 0; i-- {
		result[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(values[i])
	}
	return result, nil
}
