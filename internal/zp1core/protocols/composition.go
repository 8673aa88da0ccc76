package protocols

import (
	"fmt"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
	"github.com/ZippelLabs/ZP1/internal/zp1core/vm"
)

// CompositionResult holds the quotiented, gamma-combined constraint
// polynomial evaluated over the full LDE domain, ready to be committed and
// fed into FRI alongside the trace columns themselves (spec.md §4.5/§4.7:
// "the composition polynomial quotients every constraint by the vanishing
// polynomial of the trace coset and combines the results with
// Fiat-Shamir-derived weights gamma").
type CompositionResult struct {
	TraceDomain *core.Domain
	LDEDomain   *core.Domain
	Values      []core.QM31 // length LDEDomain.Size(), natural domain order
}

// TracePolynomials interpolates every one of the 77 trace columns into its
// monomial-basis CirclePoly, the shared input both composition and the
// DEEP out-of-domain opening need.
func TracePolynomials(t *vm.Trace, traceDomain *core.Domain) ([vm.NumColumns]core.CirclePoly, error) {
	var polys [vm.NumColumns]core.CirclePoly
	for c := 0; c < vm.NumColumns; c++ {
		p, err := core.Interpolate(t.Columns[c], traceDomain)
		if err != nil {
			return polys, fmt.Errorf("protocols: interpolate column %d: %w", c, err)
		}
		polys[c] = p
	}
	return polys, nil
}

// ComputeComposition evaluates AllConstraints() over the blown-up LDE
// domain and combines them into a single QM31-valued quotient polynomial.
//
// A constraint's "next row" at LDE index k is the column value at index
// (k+blowup) mod M: since the LDE domain's generator g_lde satisfies
// g_lde^blowup = g_trace (both are powers of the same circle generator,
// chosen so the trace domain's subgroup nests inside the LDE domain's),
// advancing an LDE point by the trace generator is exactly stepping
// blowup positions forward in the LDE domain's natural order.
func ComputeComposition(polys [vm.NumColumns]core.CirclePoly, traceDomain, lde *core.Domain, gamma []core.QM31) (*CompositionResult, error) {
	constraints := AllConstraints()
	if len(gamma) != len(constraints) {
		return nil, fmt.Errorf("protocols: composition: need %d gamma weights, got %d", len(constraints), len(gamma))
	}
	blowup := lde.Size() / traceDomain.Size()
	if blowup*traceDomain.Size() != lde.Size() {
		return nil, fmt.Errorf("protocols: composition: lde domain is not a multiple of the trace domain: %w", core.ErrBadSize)
	}

	m := lde.Size()
	ldeCols := make([][]core.M31, vm.NumColumns)
	for c := 0; c < vm.NumColumns; c++ {
		vals, err := polys[c].Evaluate(lde)
		if err != nil {
			return nil, fmt.Errorf("protocols: composition: evaluate column %d on LDE domain: %w", c, err)
		}
		ldeCols[c] = vals
	}

	points := lde.Points()
	vanishing := make([]core.M31, m)
	for k := 0; k < m; k++ {
		vanishing[k] = core.CosetVanishingAtM31(traceDomain, points[k])
	}
	vanishingInv, err := core.BatchInvM31(vanishing)
	if err != nil {
		return nil, fmt.Errorf("protocols: composition: vanishing polynomial has a zero on the LDE domain (trace/LDE cosets are not disjoint): %w", err)
	}

	out := make([]core.QM31, m)
	curVals := make([]core.M31, vm.NumColumns)
	nextVals := make([]core.M31, vm.NumColumns)
	for k := 0; k < m; k++ {
		nextIdx := (k + blowup) % m
		for c := 0; c < vm.NumColumns; c++ {
			curVals[c] = ldeCols[c][k]
			nextVals[c] = ldeCols[c][nextIdx]
		}
		combined := core.ZeroQM31
		for i, c := range constraints {
			v := c.Eval(curVals, nextVals)
			combined = combined.Add(gamma[i].MulM31(v))
		}
		out[k] = combined.MulM31(vanishingInv[k])
	}

	return &CompositionResult{TraceDomain: traceDomain, LDEDomain: lde, Values: out}, nil
}
