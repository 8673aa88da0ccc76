package protocols

import (
	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

// deepPointFromScalar builds an out-of-domain circle point from a single
// Fiat-Shamir-derived QM31 scalar t via the standard rational
// parametrization of the unit circle, x=(1-t^2)/(1+t^2), y=2t/(1+t^2),
// which satisfies x^2+y^2=1 identically and so always lands on the curve
// without needing a square root in the extension field.
func deepPointFromScalar(t core.QM31) (core.PointQM31, error) {
	t2 := t.Mul(t)
	denom := core.OneQM31.Add(t2)
	denomInv, err := denom.Inv()
	if err != nil {
		return core.PointQM31{}, err
	}
	x := core.OneQM31.Sub(t2).Mul(denomInv)
	y := t.Add(t).Mul(denomInv)
	return core.PointQM31{X: x, Y: y}, nil
}

// qm31Poly is circle_fft.go's CirclePoly lifted to QM31-valued functions,
// needed because the composition polynomial's evaluations are QM31 (the
// gamma-weighted combination of many M31 constraint values), unlike the
// trace columns themselves which stay in M31 and use core.CirclePoly
// directly.
type qm31Poly struct {
	A, B []core.QM31
}

// qm31Interpolate mirrors core.Interpolate's antipodal-pair decomposition,
// only with QM31-valued samples over the same M31 domain coordinates.
func qm31Interpolate(values []core.QM31, domain *core.Domain) (qm31Poly, error) {
	n := domain.Size()
	if len(values) != n {
		return qm31Poly{}, core.ErrBadSize
	}
	half := n / 2
	pts := domain.Points()

	twoInv, err := core.NewM31(2).Inv()
	if err != nil {
		return qm31Poly{}, err
	}
	yInvs := make([]core.M31, half)
	for k := 0; k < half; k++ {
		yInvs[k] = pts[k].Y
	}
	yInvInv, err := core.BatchInvM31(yInvs)
	if err != nil {
		return qm31Poly{}, err
	}

	xs := make([]core.M31, half)
	gVals := make([]core.QM31, half)
	hVals := make([]core.QM31, half)
	for k := 0; k < half; k++ {
		xs[k] = pts[k].X
		f0, f1 := values[k], values[domain.TwinIndex(k)]
		gVals[k] = f0.Add(f1).MulM31(twoInv)
		hVals[k] = f0.Sub(f1).MulM31(twoInv).MulM31(yInvInv[k])
	}

	a, err := interpolateMonomialQM31(xs, gVals)
	if err != nil {
		return qm31Poly{}, err
	}
	b, err := interpolateMonomialQM31(xs, hVals)
	if err != nil {
		return qm31Poly{}, err
	}
	return qm31Poly{A: a, B: b}, nil
}

// EvalAtQM31 evaluates a qm31Poly at an arbitrary challenge-field point.
func (p qm31Poly) EvalAtQM31(x, y core.QM31) core.QM31 {
	g := evalMonomialQM31Coeffs(p.A, x)
	h := evalMonomialQM31Coeffs(p.B, x)
	return g.Add(y.Mul(h))
}

func evalMonomialQM31Coeffs(coeffs []core.QM31, x core.QM31) core.QM31 {
	result := core.ZeroQM31
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(coeffs[i])
	}
	return result
}

// interpolateMonomialQM31 mirrors circle_fft.go's unexported
// interpolateMonomial/syntheticDivide Lagrange-to-monomial construction,
// reimplemented here because those helpers are private to core and the
// sample values here are QM31 rather than M31; the node polynomial and
// its derivative weights stay M31-only (the domain x-coordinates never
// leave the base field), only the final accumulation is QM31.
func interpolateMonomialQM31(xs []core.M31, vs []core.QM31) ([]core.QM31, error) {
	m := len(xs)
	if len(vs) != m {
		return nil, core.ErrBadSize
	}
	if m == 0 {
		return nil, nil
	}

	q := []core.M31{core.OneM31}
	for _, r := range xs {
		next := make([]core.M31, len(q)+1)
		for i := range next {
			var a, b core.M31
			if i-1 >= 0 && i-1 < len(q) {
				a = q[i-1]
			}
			if i < len(q) {
				b = q[i]
			}
			next[i] = a.Sub(r.Mul(b))
		}
		q = next
	}

	denom := make([]core.M31, m)
	for i := 0; i < m; i++ {
		d := core.OneM31
		for j := 0; j < m; j++ {
			if j == i {
				continue
			}
			d = d.Mul(xs[i].Sub(xs[j]))
		}
		denom[i] = d
	}
	denomInv, err := core.BatchInvM31(denom)
	if err != nil {
		return nil, err
	}

	result := make([]core.QM31, m)
	for i := 0; i < m; i++ {
		basis := syntheticDivideM31(q, xs[i])
		w := vs[i].MulM31(denomInv[i])
		for k := range basis {
			result[k] = result[k].Add(w.MulM31(basis[k]))
		}
	}
	return result, nil
}

func syntheticDivideM31(q []core.M31, r core.M31) []core.M31 {
	deg := len(q) - 1
	b := make([]core.M31, deg)
	b[deg-1] = q[deg]
	for k := deg - 2; k >= 0; k-- {
		b[k] = q[k+1].Add(r.Mul(b[k+1]))
	}
	return b
}
