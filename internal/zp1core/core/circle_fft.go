package core

// CirclePoly is a polynomial on the circle domain represented in the
// standard circle-code monomial basis of dimension N = 2*len(A):
//
//	f(x,y) = sum_i A[i]*x^i + y * sum_i B[i]*x^i
//
// Any function on a size-N domain decomposes uniquely this way because the
// domain comes in antipodal pairs (P,-P) sharing the same x and opposite y,
// so the "even in y" part A and the "odd in y" part B are each degree <
// N/2 polynomials in x alone, each determined by N/2 values.
type CirclePoly struct {
	A []M31
	B []M31
}

// Interpolate finds the unique CirclePoly agreeing with values at every
// point of domain (values[k] must be f(domain.PointAt(k))).
//
// Interpolation proceeds in two stages: first split each antipodal pair
// (k, N-1-k) (see Domain.TwinIndex) into its even/odd-in-y parts by
// solving the 2x2 system
//
//	f_k       = g(x_k) + y_k*h(x_k)
//	f_{N-1-k} = g(x_k) - y_k*h(x_k)
//
// for g(x_k), h(x_k); then recover the monomial coefficients of g and h
// from their N/2 sample points via Lagrange interpolation.
func Interpolate(values []M31, domain *Domain) (CirclePoly, error) {
	n := domain.Size()
	if len(values) != n {
		return CirclePoly{}, ErrBadSize
	}
	half := n / 2
	pts := domain.Points()

	xs := make([]M31, half)
	gVals := make([]M31, half)
	hVals := make([]M31, half)

	twoInv, err := NewM31(2).Inv()
	if err != nil {
		return CirclePoly{}, err
	}

	yInvs := make([]M31, half)
	for k := 0; k < half; k++ {
		xs[k] = pts[k].X
		yInvs[k] = pts[k].Y
	}
	yInvsInv, err := BatchInvM31(yInvs)
	if err != nil {
		return CirclePoly{}, err
	}

	for k := 0; k < half; k++ {
		f0 := values[k]
		f1 := values[domain.TwinIndex(k)]
		gVals[k] = f0.Add(f1).Mul(twoInv)
		hVals[k] = f0.Sub(f1).Mul(twoInv).Mul(yInvsInv[k])
	}

	a, err := interpolateMonomial(xs, gVals)
	if err != nil {
		return CirclePoly{}, err
	}
	b, err := interpolateMonomial(xs, hVals)
	if err != nil {
		return CirclePoly{}, err
	}
	return CirclePoly{A: a, B: b}, nil
}

// Evaluate computes f at every point of domain, in the same natural order
// Interpolate expects. A and B may each hold fewer than Size()/2
// coefficients, as when a trace polynomial is evaluated on a larger LDE
// domain; more than that is rejected.
func (poly CirclePoly) Evaluate(domain *Domain) ([]M31, error) {
	n := domain.Size()
	half := n / 2
	if len(poly.A) > half || len(poly.B) > half {
		return nil, ErrBadSize
	}
	pts := domain.Points()
	out := make([]M31, n)
	for k := 0; k < half; k++ {
		x, y := pts[k].X, pts[k].Y
		g := evalMonomialM31(poly.A, x)
		h := evalMonomialM31(poly.B, x)
		yh := y.Mul(h)
		out[k] = g.Add(yh)
		out[domain.TwinIndex(k)] = g.Sub(yh)
	}
	return out, nil
}

// EvalAtM31 evaluates the polynomial at an arbitrary base-field point,
// not necessarily on the domain it was interpolated from.
func (poly CirclePoly) EvalAtM31(x, y M31) M31 {
	g := evalMonomialM31(poly.A, x)
	h := evalMonomialM31(poly.B, x)
	return g.Add(y.Mul(h))
}

// EvalAtQM31 evaluates the polynomial at a challenge-field point, the
// primitive the DEEP quotient and FRI folding need to check consistency
// between committed trace/composition polynomials and the prover's
// claimed out-of-domain values.
func (poly CirclePoly) EvalAtQM31(x, y QM31) QM31 {
	g := evalMonomialQM31(poly.A, x)
	h := evalMonomialQM31(poly.B, x)
	return g.Add(y.Mul(h))
}

// LDE (low-degree extension) re-evaluates the unique degree-respecting
// polynomial matching values on `from` at every point of the larger
// domain `to`. Because CirclePoly is a domain-independent monomial
// representation, this is exactly Interpolate followed by Evaluate on
// the bigger domain.
func LDE(values []M31, from, to *Domain) ([]M31, error) {
	if to.LogSize < from.LogSize {
		return nil, ErrBadSize
	}
	poly, err := Interpolate(values, from)
	if err != nil {
		return nil, err
	}
	needed := to.Size() / 2
	if len(poly.A) < needed {
		padded := make([]M31, needed)
		copy(padded, poly.A)
		poly.A = padded
	}
	if len(poly.B) < needed {
		padded := make([]M31, needed)
		copy(padded, poly.B)
		poly.B = padded
	}
	return poly.Evaluate(to)
}

// evalMonomialM31 evaluates a monomial-basis polynomial at x via Horner.
func evalMonomialM31(coeffs []M31, x M31) M31 {
	result := ZeroM31
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(coeffs[i])
	}
	return result
}

// evalMonomialQM31 is evalMonomialM31 lifted to the challenge field.
func evalMonomialQM31(coeffs []M31, x QM31) QM31 {
	result := ZeroQM31
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(QM31FromM31(coeffs[i]))
	}
	return result
}

// interpolateMonomial recovers the monomial coefficients of the unique
// degree-<M polynomial P with P(xs[i]) = vs[i], via the standard
// Lagrange-to-monomial construction: build the full node polynomial
// Q(x) = prod(x-xs[j]), then for each i synthetically divide Q by (x-xs[i])
// to get the i-th Lagrange basis polynomial's coefficients, weight by
// vs[i]/Q'(xs[i]), and accumulate.
func interpolateMonomial(xs, vs []M31) ([]M31, error) {
	m := len(xs)
	if len(vs) != m {
		return nil, ErrBadSize
	}
	if m == 0 {
		return nil, nil
	}

	q := []M31{OneM31}
	for _, r := range xs {
		next := make([]M31, len(q)+1)
		for i := range next {
			var a, b M31
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

	denom := make([]M31, m)
	for i := 0; i < m; i++ {
		d := OneM31
		for j := 0; j < m; j++ {
			if j == i {
				continue
			}
			d = d.Mul(xs[i].Sub(xs[j]))
		}
		denom[i] = d
	}
	denomInv, err := BatchInvM31(denom)
	if err != nil {
		return nil, err
	}

	result := make([]M31, m)
	for i := 0; i < m; i++ {
		basis := syntheticDivide(q, xs[i])
		w := vs[i].Mul(denomInv[i])
		for k := range basis {
			result[k] = result[k].Add(basis[k].Mul(w))
		}
	}
	return result, nil
}

// syntheticDivide divides the monic polynomial q (degree len(q)-1,
// coefficients low-to-high) by (x - r), returning the degree-(len(q)-2)
// quotient. q(r) is assumed to be zero.
func syntheticDivide(q []M31, r M31) []M31 {
	deg := len(q) - 1
	b := make([]M31, deg)
	b[deg-1] = q[deg]
	for k := deg - 2; k >= 0; k-- {
		b[k] = q[k+1].Add(r.Mul(b[k+1]))
	}
	return b
}
