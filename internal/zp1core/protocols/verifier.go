package protocols

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
	"github.com/ZippelLabs/ZP1/internal/zp1core/vm"
)

// Verify mirrors Prove exactly (spec.md §4.11): it recomputes every
// Fiat-Shamir challenge from the proof's own commitments and openings,
// checks the FRI low-degree test, and re-evaluates the AIR and the DEEP
// quotient at every query point from the opened trace rows rather than
// trusting the prover's claimed intermediate values. It returns the
// first-encountered typed error (spec.md §7: "no partial proofs, no
// retries").
//
// publicInputs must be the same canonical byte string the prover absorbed
// (spec.md §6); Verify absorbs it at the identical point in the transcript
// Prove does, so a mismatched publicInputs value (a different program
// image, input, or claimed output) re-derives a different alpha and every
// challenge after it, and the proof is rejected the first time any of
// those diverged challenges is checked against a proof value that was
// computed under the real public inputs.
func Verify(p *Proof, publicInputs []byte, cfg FriConfig, log zerolog.Logger) error {
	log.Info().Int("num_rows", p.NumRows).Str("main_root", p.MainRoot.String()).Msg("verify: replaying transcript from proof commitments")
	logN, err := log2Exact(p.NumRows)
	if err != nil {
		return fmt.Errorf("protocols: verify: %w", err)
	}
	traceDomain, err := core.NewStandardDomain(logN)
	if err != nil {
		return fmt.Errorf("protocols: verify: %w", err)
	}
	ldeDomain, err := core.NewStandardDomain(logN + cfg.LogBlowup)
	if err != nil {
		return fmt.Errorf("protocols: verify: %w", err)
	}
	blowup := ldeDomain.Size() / traceDomain.Size()
	m := ldeDomain.Size()

	if len(p.Ood.TraceAtZ) != vm.NumColumns {
		return fmt.Errorf("protocols: verify: expected %d out-of-domain trace openings, got %d", vm.NumColumns, len(p.Ood.TraceAtZ))
	}

	tr := NewTranscript()
	tr.Absorb([]byte("zp1-prove-v1"))
	tr.Absorb(publicInputs)
	tr.AbsorbM31(core.NewM31(uint64(p.NumRows)))
	tr.AbsorbDigest(p.MainRoot)

	alpha, err := tr.SqueezeQM31()
	if err != nil {
		return err
	}
	_ = alpha
	beta, err := tr.SqueezeQM31()
	if err != nil {
		return err
	}
	_ = beta

	tr.AbsorbQM31(p.MemoryLogUpFinal)
	tr.AbsorbQM31(p.RegisterLogUpFinal)

	tr.AbsorbDigest(p.LogupRoot)

	constraints := AllConstraints()
	gamma, err := tr.SqueezeQM31Vec(len(constraints))
	if err != nil {
		return err
	}

	tr.AbsorbDigest(p.CompositionRoot)

	zScalar, err := tr.SqueezeQM31()
	if err != nil {
		return err
	}
	zPoint, err := deepPointFromScalar(zScalar)
	if err != nil {
		return fmt.Errorf("protocols: verify: deep point: %w", err)
	}
	zNext := zPoint.Add(traceDomain.Generator.ToQM31())

	for c := 0; c < vm.NumColumns; c++ {
		if len(p.Ood.TraceAtZ[c]) != 2 {
			return fmt.Errorf("protocols: verify: column %d: expected 2 out-of-domain values, got %d", c, len(p.Ood.TraceAtZ[c]))
		}
		tr.AbsorbQM31(p.Ood.TraceAtZ[c][0])
		tr.AbsorbQM31(p.Ood.TraceAtZ[c][1])
	}
	tr.AbsorbQM31(p.Ood.CompositionAtZ)

	deepWeights, err := tr.SqueezeQM31Vec(2*vm.NumColumns + 1)
	if err != nil {
		return err
	}

	log.Debug().Msg("verify: re-derived every Fiat-Shamir challenge, running FRI low-degree test")
	if err := FriVerify(p.Fri, ldeDomain, cfg, tr); err != nil {
		return err
	}
	if len(p.Fri.Queries) != len(p.TraceQueries) {
		return fmt.Errorf("protocols: %w: %d FRI queries but %d trace openings", ErrFoldMismatch, len(p.Fri.Queries), len(p.TraceQueries))
	}
	log.Info().Int("num_queries", len(p.Fri.Queries)).Msg("verify: FRI low-degree test passed, checking per-query DEEP consistency")

	half := m / 2
	for i, fq := range p.Fri.Queries {
		tq := p.TraceQueries[i]
		if tq.Index != fq.Index {
			return fmt.Errorf("protocols: %w: trace/FRI query index mismatch at position %d", ErrFoldMismatch, i)
		}
		idx := tq.Index
		nextIdx := (idx + blowup) % m

		if err := verifyRowOpening(p.MainRoot, idx, tq.MainCur, tq.MainCurPath, "main"); err != nil {
			return err
		}
		if err := verifyRowOpening(p.MainRoot, nextIdx, tq.MainNext, tq.MainNextPath, "main"); err != nil {
			return err
		}
		if err := verifyRowOpening(p.LogupRoot, idx, tq.LogupCur, tq.LogupCurPath, "logup"); err != nil {
			return err
		}
		if err := verifyRowOpening(p.LogupRoot, nextIdx, tq.LogupNext, tq.LogupNextPath, "logup"); err != nil {
			return err
		}

		curRow := append(append(Row{}, tq.MainCur...), tq.LogupCur...)
		nextRow := append(append(Row{}, tq.MainNext...), tq.LogupNext...)
		if len(curRow) != vm.NumColumns || len(nextRow) != vm.NumColumns {
			return fmt.Errorf("protocols: verify: query %d: opened row has %d/%d columns, want %d", idx, len(curRow), len(nextRow), vm.NumColumns)
		}

		point := ldeDomain.PointAt(idx)
		vanishing := core.CosetVanishingAtM31(traceDomain, point)
		vanishingInv, err := vanishing.Inv()
		if err != nil {
			return fmt.Errorf("protocols: verify: query %d lands on the trace coset's vanishing set: %w", idx, err)
		}

		combined := core.ZeroQM31
		for k, c := range constraints {
			v := c.Eval(curRow, nextRow)
			combined = combined.Add(gamma[k].MulM31(v))
		}
		compValue := combined.MulM31(vanishingInv)

		px := core.QM31FromM31(point.X)
		xMinusZInv, err := px.Sub(zPoint.X).Inv()
		if err != nil {
			return fmt.Errorf("protocols: %w: query point coincides with z", ErrOutOfDomainInsideDomain)
		}
		xMinusZNextInv, err := px.Sub(zNext.X).Inv()
		if err != nil {
			return fmt.Errorf("protocols: %w: query point coincides with z*g", ErrOutOfDomainInsideDomain)
		}

		acc := core.ZeroQM31
		for c := 0; c < vm.NumColumns; c++ {
			fx := core.QM31FromM31(curRow[c])
			q0 := fx.Sub(p.Ood.TraceAtZ[c][0]).Mul(xMinusZInv)
			q1 := fx.Sub(p.Ood.TraceAtZ[c][1]).Mul(xMinusZNextInv)
			acc = acc.Add(deepWeights[2*c].Mul(q0)).Add(deepWeights[2*c+1].Mul(q1))
		}
		compQuotient := compValue.Sub(p.Ood.CompositionAtZ).Mul(xMinusZInv)
		acc = acc.Add(deepWeights[2*vm.NumColumns].Mul(compQuotient))

		var leaf core.QM31
		if len(fq.RoundSibling) == 0 {
			return fmt.Errorf("protocols: verify: query %d: FRI proof has no rounds", idx)
		}
		round0 := fq.RoundSibling[0]
		if idx < half {
			leaf = round0.Lo
		} else {
			leaf = round0.Hi
		}
		if !acc.Equal(leaf) {
			return &DeepQuotientMismatch{Index: idx}
		}
	}

	log.Info().Msg("verify: all query openings authenticate and satisfy the DEEP consistency check")
	return nil
}

func verifyRowOpening(root core.Digest, index int, row []core.M31, path core.MerklePath, layer string) error {
	if !core.Verify(root, index, rowBytes(row), path) {
		return &MerkleVerifyFail{Index: index, Layer: layer}
	}
	return nil
}

func rowBytes(vals []core.M31) []byte {
	buf := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		b := v.Bytes()
		buf = append(buf, b[:]...)
	}
	return buf
}
