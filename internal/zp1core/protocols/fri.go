package protocols

import (
	"fmt"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

// FriConfig bounds the low-degree test's parameters. DefaultFriConfig uses
// blowup factor 8 and 80 queries: a query answering false with probability
// (1/2 + 1/(2*blowup)) = 9/16 per query gives a soundness error of roughly
// (9/16)^80, about 2^-66, the same bound zp1core.SecurityConfig.Validate
// estimates.
type FriConfig struct {
	LogBlowup      int // log2(blowup factor), 3 => rate 1/8
	NumQueries     int // independent query repetitions
	FinalLayerSize int // stop folding once a layer reaches this size
}

// DefaultFriConfig is the reference configuration used by Prove/Verify.
var DefaultFriConfig = FriConfig{LogBlowup: 3, NumQueries: 80, FinalLayerSize: 1}

// friLayer is one committed round of folding: the QM31 evaluations at that
// round's domain size, the x-coordinates needed to fold into the next
// round (round 0's "x-coordinate" role is played by the circle domain's Y
// coordinate instead, handled separately), and the Merkle commitment over
// the evaluations.
type friLayer struct {
	values []core.QM31
	xs     []core.M31 // nil for layer 0, which instead divides by domain Y
	tree   *core.MerkleTree
	root   core.Digest
}

func qm31Rows(values []core.QM31) [][]byte {
	rows := make([][]byte, len(values))
	for i, v := range values {
		b := v.Bytes()
		rows[i] = append([]byte(nil), b[:]...)
	}
	return rows
}

func commitLayer(values []core.QM31) (*friLayer, error) {
	tree, root, err := core.CommitRows(qm31Rows(values))
	if err != nil {
		return nil, fmt.Errorf("protocols: fri commit layer: %w", err)
	}
	return &friLayer{values: values, tree: tree, root: root}, nil
}

// foldCircleLayer performs the first FRI fold, from the full LDE circle
// domain down to an x-indexed domain of half the size, combining
// antipodal pairs (k, k+half) with the domain's own Y coordinate as the
// odd-part divisor.
func foldCircleLayer(values []core.QM31, domain *core.Domain, beta core.QM31) ([]core.QM31, []core.M31, error) {
	n := len(values)
	half := n / 2
	points := domain.Points()

	twoInv, err := core.NewM31(2).Inv()
	if err != nil {
		return nil, nil, err
	}
	yInvs := make([]core.M31, half)
	for k := 0; k < half; k++ {
		yInvs[k] = points[k].Y
	}
	yInvInv, err := core.BatchInvM31(yInvs)
	if err != nil {
		return nil, nil, fmt.Errorf("protocols: fri fold: %w", err)
	}

	out := make([]core.QM31, half)
	xs := make([]core.M31, half)
	for k := 0; k < half; k++ {
		f0, f1 := values[k], values[k+half]
		g := f0.Add(f1).MulM31(twoInv)
		h := f0.Sub(f1).MulM31(twoInv).MulM31(yInvInv[k])
		out[k] = g.Add(beta.Mul(h))
		xs[k] = points[k].X
	}
	return out, xs, nil
}

// foldLineLayer performs every subsequent FRI fold, pairing index k with
// k+half in the current x-indexed domain and dividing by that round's x
// coordinate (the univariate analogue of foldCircleLayer's Y division).
func foldLineLayer(values []core.QM31, xs []core.M31, beta core.QM31) ([]core.QM31, []core.M31, error) {
	n := len(values)
	half := n / 2

	twoInv, err := core.NewM31(2).Inv()
	if err != nil {
		return nil, nil, err
	}
	xInv, err := core.BatchInvM31(xs[:half])
	if err != nil {
		return nil, nil, fmt.Errorf("protocols: fri fold: %w", err)
	}

	out := make([]core.QM31, half)
	nextXs := make([]core.M31, half)
	for k := 0; k < half; k++ {
		f0, f1 := values[k], values[k+half]
		g := f0.Add(f1).MulM31(twoInv)
		h := f0.Sub(f1).MulM31(twoInv).MulM31(xInv[k])
		out[k] = g.Add(beta.Mul(h))
		nextXs[k] = doubleM31Exported(xs[k])
	}
	return out, nextXs, nil
}

// doubleM31Exported mirrors core's private doubling map x -> 2x^2-1, the
// map a circle domain's x-coordinate follows under repeated halving.
func doubleM31Exported(x core.M31) core.M31 {
	sq := x.Mul(x)
	return sq.Add(sq).Sub(core.OneM31)
}

// FriProof is the low-degree test transcript: every intermediate layer's
// commitment root, the constant-sized final layer sent in the clear, and
// one query proof per sampled index.
type FriProof struct {
	LayerRoots  []core.Digest
	FinalValues []core.QM31
	Queries     []FriQueryProof
}

// FriQueryProof is one query's evidence: at every round, the two sibling
// values that were folded together plus their Merkle authentication path
// against that round's committed root.
type FriQueryProof struct {
	Index        int
	RoundSibling []FriRoundOpening
}

// FriRoundOpening is a single round's opened pair for one query index.
type FriRoundOpening struct {
	Lo, Hi     core.QM31 // values at index and index+half of that round's domain
	LoPath     core.MerklePath
	HiPath     core.MerklePath
}

// FriProve runs the commit phase (building every folded layer and its
// Merkle commitment, absorbing each root into the transcript to derive
// the next round's folding challenge) and then the query phase.
func FriProve(initial []core.QM31, domain *core.Domain, cfg FriConfig, tr *Transcript) (*FriProof, error) {
	if len(initial)&(len(initial)-1) != 0 {
		return nil, fmt.Errorf("protocols: fri: initial layer size must be a power of two: %w", core.ErrBadSize)
	}

	var layers []*friLayer
	first, err := commitLayer(initial)
	if err != nil {
		return nil, err
	}
	layers = append(layers, first)
	tr.AbsorbDigest(first.root)

	values := initial
	var xs []core.M31
	round := 0
	for len(values) > cfg.FinalLayerSize {
		beta, err := tr.SqueezeQM31()
		if err != nil {
			return nil, fmt.Errorf("protocols: fri: derive fold challenge round %d: %w", round, err)
		}
		var nextVals []core.QM31
		var nextXs []core.M31
		if round == 0 {
			nextVals, nextXs, err = foldCircleLayer(values, domain, beta)
		} else {
			nextVals, nextXs, err = foldLineLayer(values, xs, beta)
		}
		if err != nil {
			return nil, err
		}
		values, xs = nextVals, nextXs
		round++
		if len(values) > cfg.FinalLayerSize {
			layer, err := commitLayer(values)
			if err != nil {
				return nil, err
			}
			layer.xs = xs
			layers = append(layers, layer)
			tr.AbsorbDigest(layer.root)
		}
	}
	for _, v := range values {
		tr.AbsorbQM31(v)
	}

	upperBound := len(initial)
	indices, err := tr.SqueezeIndices(upperBound, cfg.NumQueries)
	if err != nil {
		return nil, fmt.Errorf("protocols: fri: derive query indices: %w", err)
	}

	roots := make([]core.Digest, len(layers))
	for i, l := range layers {
		roots[i] = l.root
	}

	queries := make([]FriQueryProof, len(indices))
	for qi, idx := range indices {
		q := FriQueryProof{Index: idx}
		cur := idx
		for _, l := range layers {
			size := len(l.values)
			half := size / 2
			lowIdx := cur % half
			hiIdx := lowIdx + half
			loPath, err := l.tree.Open(lowIdx)
			if err != nil {
				return nil, err
			}
			hiPath, err := l.tree.Open(hiIdx)
			if err != nil {
				return nil, err
			}
			q.RoundSibling = append(q.RoundSibling, FriRoundOpening{
				Lo: l.values[lowIdx], Hi: l.values[hiIdx],
				LoPath: loPath, HiPath: hiPath,
			})
			cur = lowIdx
		}
		queries[qi] = q
	}

	return &FriProof{LayerRoots: roots, FinalValues: values, Queries: queries}, nil
}

// FriVerify re-derives every fold challenge and query index from a fresh
// transcript seeded with the same prior absorptions, then checks: each
// round's two opened siblings authenticate against that round's root,
// consecutive rounds fold consistently under the claimed beta challenge,
// and the final round's value matches one of the (tiny) final layer.
func FriVerify(proof *FriProof, domain *core.Domain, cfg FriConfig, tr *Transcript) error {
	betas := make([]core.QM31, len(proof.LayerRoots))
	for i, root := range proof.LayerRoots {
		tr.AbsorbDigest(root)
		b, err := tr.SqueezeQM31()
		if err != nil {
			return fmt.Errorf("protocols: fri verify: derive beta %d: %w", i, err)
		}
		betas[i] = b
	}
	for _, v := range proof.FinalValues {
		tr.AbsorbQM31(v)
	}

	// Layer i has size domain.Size() / 2^i; the query loop below derives
	// each round's half-size directly rather than precomputing this list.
	upperBound := domain.Size()
	indices, err := tr.SqueezeIndices(upperBound, cfg.NumQueries)
	if err != nil {
		return fmt.Errorf("protocols: fri verify: derive query indices: %w", err)
	}
	if len(indices) != len(proof.Queries) {
		return fmt.Errorf("protocols: %w: query count mismatch", ErrFoldMismatch)
	}

	points := domain.Points()
	twoInv, err := core.NewM31(2).Inv()
	if err != nil {
		return err
	}

	for qi, q := range proof.Queries {
		if q.Index != indices[qi] {
			return fmt.Errorf("protocols: %w: query index mismatch at position %d", ErrFoldMismatch, qi)
		}
		size := upperBound
		cur := q.Index
		var prevFolded *core.QM31
		for round, ro := range q.RoundSibling {
			half := size / 2
			lowIdx := cur % half
			hiIdx := lowIdx + half
			loBytes, hiBytes := ro.Lo.Bytes(), ro.Hi.Bytes()
			if !core.Verify(proof.LayerRoots[round], lowIdx, loBytes[:], ro.LoPath) {
				return &FoldMismatch{Layer: round}
			}
			if !core.Verify(proof.LayerRoots[round], hiIdx, hiBytes[:], ro.HiPath) {
				return &FoldMismatch{Layer: round}
			}

			if prevFolded != nil {
				var have core.QM31
				if cur < half {
					have = ro.Lo
				} else {
					have = ro.Hi
				}
				if !have.Equal(*prevFolded) {
					return &FoldMismatch{Layer: round}
				}
			}

			var x core.M31
			if round == 0 {
				x = points[lowIdx].X
			} else {
				x = doubleRepeated(points[lowIdx%len(points)].X, round-1)
			}
			xInv, err := x.Inv()
			if err != nil {
				return fmt.Errorf("protocols: fri verify round %d: %w", round, err)
			}
			var divisor core.M31
			if round == 0 {
				divisor = points[lowIdx].Y
				yInv, err := divisor.Inv()
				if err != nil {
					return fmt.Errorf("protocols: fri verify round %d: %w", round, err)
				}
				g := ro.Lo.Add(ro.Hi).MulM31(twoInv)
				h := ro.Lo.Sub(ro.Hi).MulM31(twoInv).MulM31(yInv)
				folded := g.Add(betas[round].Mul(h))
				prevFolded = &folded
			} else {
				g := ro.Lo.Add(ro.Hi).MulM31(twoInv)
				h := ro.Lo.Sub(ro.Hi).MulM31(twoInv).MulM31(xInv)
				folded := g.Add(betas[round].Mul(h))
				prevFolded = &folded
			}

			size = half
			cur = lowIdx
		}
		if prevFolded != nil {
			found := false
			for _, fv := range proof.FinalValues {
				if fv.Equal(*prevFolded) {
					found = true
					break
				}
			}
			if !found {
				return &FoldMismatch{Layer: len(q.RoundSibling)}
			}
		}
	}
	return nil
}

// doubleRepeated applies the x -> 2x^2-1 doubling map n times.
func doubleRepeated(x core.M31, n int) core.M31 {
	for i := 0; i < n; i++ {
		x = doubleM31Exported(x)
	}
	return x
}
