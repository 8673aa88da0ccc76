package protocols

import (
	"fmt"
	"math/bits"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
	"github.com/ZippelLabs/ZP1/internal/zp1core/vm"
)

// numMainColumns is the width of the trace excluding the 8 LogUp
// running-sum columns, which the prover only knows how to fill in after
// deriving alpha/beta from a commitment to everything else.
const numMainColumns = int(vm.ColMemSumC0A)

// numLogupColumns is the width of the LogUp running-sum column group.
const numLogupColumns = vm.NumColumns - numMainColumns

// ldeRowBytes serializes row r (across every column in cols) into its
// Merkle-leaf byte encoding: each M31 value's 4-byte little-endian form,
// concatenated column by column. Every Merkle-committed matrix in this
// package (main columns, LogUp columns, the composition polynomial) uses
// this same "one leaf per LDE-domain row" shape, per spec.md §4.4.
func ldeRowBytes(cols [][]core.M31, r int) []byte {
	buf := make([]byte, 0, len(cols)*4)
	for _, col := range cols {
		b := col[r].Bytes()
		buf = append(buf, b[:]...)
	}
	return buf
}

func ldeMatrixRows(cols [][]core.M31, numRows int) [][]byte {
	rows := make([][]byte, numRows)
	for r := 0; r < numRows; r++ {
		rows[r] = ldeRowBytes(cols, r)
	}
	return rows
}

func rowAtIndex(cols [][]core.M31, idx int) []core.M31 {
	row := make([]core.M31, len(cols))
	for c, col := range cols {
		row[c] = col[idx]
	}
	return row
}

func log2Exact(n int) (int, error) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, fmt.Errorf("protocols: %w: %d is not a power of two", core.ErrBadSize, n)
	}
	return bits.TrailingZeros(uint(n)), nil
}

// Prove runs the full prover pipeline of spec.md §4.9/§4.10:
//
//  1. LDE and Merkle-commit the main (non-LogUp) columns; absorb the root.
//  2. Derive the LogUp challenges alpha, beta; compute and fill the
//     running-sum columns; LDE and commit them separately; absorb that root.
//  3. Derive the constraint-combination challenges gamma; evaluate and
//     commit the composition polynomial; absorb its root.
//  4. Derive the out-of-domain point z; open every trace column and the
//     composition polynomial at z and z*g; absorb the openings.
//  5. Form the DEEP quotient and run FRI over it, opening every FRI query
//     index against both trace Merkle trees at that index and the one
//     `blowup` positions ahead (the "next row" every transition
//     constraint and the z*g DEEP term need).
//
// publicInputs is the canonically serialized byte string binding this
// proof to the program image and input/output digests it attests to
// (spec.md §6). It is absorbed into the transcript immediately after the
// domain separator and before any commitment, so a verifier that supplies
// a different publicInputs value re-derives every later challenge
// differently and rejects the proof at the first one it checks.
func Prove(t *vm.Trace, publicInputs []byte, cfg FriConfig, log zerolog.Logger) (*Proof, error) {
	if err := CheckAIR(t); err != nil {
		return nil, fmt.Errorf("protocols: prove: trace fails its own AIR check: %w", err)
	}
	log.Info().Int("num_rows", t.NumRows).Msg("prove: trace passed its own AIR check")

	logN, err := log2Exact(t.NumRows)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: %w", err)
	}
	traceDomain, err := core.NewStandardDomain(logN)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: %w", err)
	}
	ldeDomain, err := core.NewStandardDomain(logN + cfg.LogBlowup)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: %w", err)
	}
	blowup := ldeDomain.Size() / traceDomain.Size()

	mainPolys, err := interpolateRangeParallel(t, traceDomain, 0, numMainColumns)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: interpolate main columns: %w", err)
	}
	mainLDE, err := evaluateRange(mainPolys, ldeDomain)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: evaluate main columns on LDE domain: %w", err)
	}
	mainTree, mainRoot, err := core.CommitRows(ldeMatrixRows(mainLDE, ldeDomain.Size()))
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: commit main trace: %w", err)
	}
	log.Info().Str("root", mainRoot.String()).Int("lde_size", ldeDomain.Size()).Msg("prove: committed main columns")

	tr := NewTranscript()
	tr.Absorb([]byte("zp1-prove-v1"))
	tr.Absorb(publicInputs)
	tr.AbsorbM31(core.NewM31(uint64(t.NumRows)))
	tr.AbsorbDigest(mainRoot)

	alpha, err := tr.SqueezeQM31()
	if err != nil {
		return nil, err
	}
	beta, err := tr.SqueezeQM31()
	if err != nil {
		return nil, err
	}
	log.Debug().Msg("prove: derived LogUp challenges alpha, beta")

	memLogUp, err := ComputeMemoryLogUp(t, alpha, beta)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: %w", err)
	}
	regLogUp, err := ComputeRegisterLogUp(t, alpha, beta)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: %w", err)
	}
	WriteMemorySumColumns(t, memLogUp.RunningSum)
	regEvents := RegisterEventsForWriting(t)
	WriteRegisterSumColumns(t, regEvents, regLogUp.RunningSum)

	// Bind both LogUp channels' boundary values into the transcript before
	// they are ever trusted downstream, so a proof cannot claim different
	// telescoping sums without invalidating every challenge drawn after.
	tr.AbsorbQM31(memLogUp.Final)
	tr.AbsorbQM31(regLogUp.Final)
	log.Info().Msg("prove: computed memory and register LogUp running sums")

	logupPolys, err := interpolateRangeParallel(t, traceDomain, numMainColumns, vm.NumColumns)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: interpolate logup columns: %w", err)
	}
	logupLDE, err := evaluateRange(logupPolys, ldeDomain)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: evaluate logup columns on LDE domain: %w", err)
	}
	logupTree, logupRoot, err := core.CommitRows(ldeMatrixRows(logupLDE, ldeDomain.Size()))
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: commit logup columns: %w", err)
	}
	tr.AbsorbDigest(logupRoot)
	log.Info().Str("root", logupRoot.String()).Msg("prove: committed LogUp columns")

	var polys [vm.NumColumns]core.CirclePoly
	copy(polys[:numMainColumns], mainPolys)
	copy(polys[numMainColumns:], logupPolys)

	constraints := AllConstraints()
	gamma, err := tr.SqueezeQM31Vec(len(constraints))
	if err != nil {
		return nil, err
	}
	log.Debug().Int("num_constraints", len(constraints)).Msg("prove: derived constraint-combination challenges gamma")

	comp, err := ComputeComposition(polys, traceDomain, ldeDomain, gamma)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: %w", err)
	}

	compRoot, err := commitQM31Column(comp.Values)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: commit composition: %w", err)
	}
	tr.AbsorbDigest(compRoot)
	log.Info().Str("root", compRoot.String()).Msg("prove: committed composition polynomial")

	zScalar, err := tr.SqueezeQM31()
	if err != nil {
		return nil, err
	}
	zPoint, err := deepPointFromScalar(zScalar)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: deep point: %w", err)
	}
	zNext := zPoint.Add(traceDomain.Generator.ToQM31())
	log.Debug().Msg("prove: derived out-of-domain point z")

	ood := OodOpening{TraceAtZ: make([][]core.QM31, vm.NumColumns)}
	for c := 0; c < vm.NumColumns; c++ {
		ood.TraceAtZ[c] = []core.QM31{
			polys[c].EvalAtQM31(zPoint.X, zPoint.Y),
			polys[c].EvalAtQM31(zNext.X, zNext.Y),
		}
		tr.AbsorbQM31(ood.TraceAtZ[c][0])
		tr.AbsorbQM31(ood.TraceAtZ[c][1])
	}
	compPoly, err := qm31Interpolate(comp.Values, ldeDomain)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: interpolate composition: %w", err)
	}
	ood.CompositionAtZ = compPoly.EvalAtQM31(zPoint.X, zPoint.Y)
	tr.AbsorbQM31(ood.CompositionAtZ)
	log.Info().Int("columns", vm.NumColumns).Msg("prove: opened every trace column and the composition polynomial at z, z*g")

	deepWeights, err := tr.SqueezeQM31Vec(2*vm.NumColumns + 1)
	if err != nil {
		return nil, err
	}
	deepValues, err := computeDeepQuotient(polys, comp, ldeDomain, zPoint, zNext, ood, deepWeights)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: deep quotient: %w", err)
	}

	friProof, err := FriProve(deepValues, ldeDomain, cfg, tr)
	if err != nil {
		return nil, fmt.Errorf("protocols: prove: %w", err)
	}
	log.Info().Int("num_queries", len(friProof.Queries)).Int("num_layers", len(friProof.LayerRoots)).Msg("prove: completed FRI commit and query phases")

	m := ldeDomain.Size()
	traceQueries := make([]TraceQueryProof, len(friProof.Queries))
	for i, q := range friProof.Queries {
		idx := q.Index
		nextIdx := (idx + blowup) % m

		mainCurPath, err := mainTree.Open(idx)
		if err != nil {
			return nil, fmt.Errorf("protocols: prove: open main query %d: %w", idx, err)
		}
		mainNextPath, err := mainTree.Open(nextIdx)
		if err != nil {
			return nil, fmt.Errorf("protocols: prove: open main query %d: %w", nextIdx, err)
		}
		logupCurPath, err := logupTree.Open(idx)
		if err != nil {
			return nil, fmt.Errorf("protocols: prove: open logup query %d: %w", idx, err)
		}
		logupNextPath, err := logupTree.Open(nextIdx)
		if err != nil {
			return nil, fmt.Errorf("protocols: prove: open logup query %d: %w", nextIdx, err)
		}

		traceQueries[i] = TraceQueryProof{
			Index:         idx,
			MainCur:       rowAtIndex(mainLDE, idx),
			MainNext:      rowAtIndex(mainLDE, nextIdx),
			LogupCur:      rowAtIndex(logupLDE, idx),
			LogupNext:     rowAtIndex(logupLDE, nextIdx),
			MainCurPath:   mainCurPath,
			MainNextPath:  mainNextPath,
			LogupCurPath:  logupCurPath,
			LogupNextPath: logupNextPath,
		}
	}

	log.Info().Int("trace_queries", len(traceQueries)).Msg("prove: assembled query proofs, proof complete")

	return &Proof{
		Version:            ProofVersion.String(),
		NumRows:            t.NumRows,
		MainRoot:           mainRoot,
		LogupRoot:          logupRoot,
		CompositionRoot:    compRoot,
		MemoryLogUpFinal:   memLogUp.Final,
		RegisterLogUpFinal: regLogUp.Final,
		Ood:                ood,
		Fri:                friProof,
		TraceQueries:       traceQueries,
	}, nil
}

func commitQM31Column(values []core.QM31) (core.Digest, error) {
	_, root, err := core.CommitRows(qm31Rows(values))
	return root, err
}

// computeDeepQuotient builds the single low-degree polynomial FRI tests:
// every trace column is quotiented once by (X - z) and once by (X - z*g)
// (the two-point DEEP opening that binds both the current and the
// next-row value the AIR's transition constraints need), the composition
// polynomial is quotiented by (X - z), and all of it is combined with
// Fiat-Shamir weights into one QM31-valued function over the LDE domain.
func computeDeepQuotient(polys [vm.NumColumns]core.CirclePoly, comp *CompositionResult, lde *core.Domain, zPoint, zNext core.PointQM31, ood OodOpening, weights []core.QM31) ([]core.QM31, error) {
	points := lde.Points()
	m := lde.Size()
	out := make([]core.QM31, m)

	xMinusZInv := make([]core.QM31, m)
	xMinusZNextInv := make([]core.QM31, m)
	for k := 0; k < m; k++ {
		px := core.QM31FromM31(points[k].X)
		dz, err := px.Sub(zPoint.X).Inv()
		if err != nil {
			return nil, err
		}
		dzn, err := px.Sub(zNext.X).Inv()
		if err != nil {
			return nil, err
		}
		xMinusZInv[k] = dz
		xMinusZNextInv[k] = dzn
	}

	for k := 0; k < m; k++ {
		acc := core.ZeroQM31
		for c := 0; c < vm.NumColumns; c++ {
			fx := core.QM31FromM31(polys[c].EvalAtM31(points[k].X, points[k].Y))
			q0 := fx.Sub(ood.TraceAtZ[c][0]).Mul(xMinusZInv[k])
			q1 := fx.Sub(ood.TraceAtZ[c][1]).Mul(xMinusZNextInv[k])
			acc = acc.Add(weights[2*c].Mul(q0)).Add(weights[2*c+1].Mul(q1))
		}
		compQuotient := comp.Values[k].Sub(ood.CompositionAtZ).Mul(xMinusZInv[k])
		acc = acc.Add(weights[2*vm.NumColumns].Mul(compQuotient))
		out[k] = acc
	}
	return out, nil
}

// interpolateRangeParallel interpolates columns [start,end) of t across a
// worker pool: each column's Lagrange-to-monomial construction is
// entirely independent of every other column's, the data-parallel shape
// spec.md §5 calls out for multi-core provers.
func interpolateRangeParallel(t *vm.Trace, traceDomain *core.Domain, start, end int) ([]core.CirclePoly, error) {
	polys := make([]core.CirclePoly, end-start)
	var g errgroup.Group
	for c := start; c < end; c++ {
		c := c
		g.Go(func() error {
			p, err := core.Interpolate(t.Columns[c], traceDomain)
			if err != nil {
				return fmt.Errorf("interpolate column %d: %w", c, err)
			}
			polys[c-start] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return polys, nil
}

// evaluateRange re-evaluates each of polys on domain, in parallel.
func evaluateRange(polys []core.CirclePoly, domain *core.Domain) ([][]core.M31, error) {
	out := make([][]core.M31, len(polys))
	var g errgroup.Group
	for i, p := range polys {
		i, p := i, p
		g.Go(func() error {
			vals, err := p.Evaluate(domain)
			if err != nil {
				return fmt.Errorf("evaluate column %d: %w", i, err)
			}
			out[i] = vals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
