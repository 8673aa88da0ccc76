package protocols

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

// ProofVersion is the current wire-format version, bumped whenever the
// 77-column trace contract, the AIR, or the proof's CBOR shape changes.
var ProofVersion = semver.MustParse("1.0.0")

// OodOpening is the prover's claimed evaluation of every trace column and
// the composition polynomial at the DEEP out-of-domain point z and its
// shift z*g (spec.md §4.7), the values the verifier's DEEP consistency
// check is built from.
type OodOpening struct {
	TraceAtZ       [][]core.QM31 // [column][0]=f(z), [column][1]=f(z*g)
	CompositionAtZ core.QM31
}

// Proof is the complete, CBOR-serializable artifact spec.md §4.10
// describes: the version tag, every commitment root, the out-of-domain
// openings, and the FRI transcript over the DEEP quotient.
//
// The trace is committed in two Merkle trees rather than one: MainRoot
// covers the 69 non-LogUp columns (evaluated on the LDE domain, so every
// FRI query index can open directly against it) and is absorbed before
// the LogUp challenges alpha/beta are drawn, per spec.md §4.10 step 4;
// LogupRoot covers the 8 running-sum columns filled in only after those
// challenges exist, and is absorbed before gamma is drawn.
type Proof struct {
	Version            string
	NumRows            int
	MainRoot           core.Digest
	LogupRoot          core.Digest
	CompositionRoot    core.Digest
	MemoryLogUpFinal   core.QM31
	RegisterLogUpFinal core.QM31
	Ood                OodOpening
	Fri                *FriProof
	TraceQueries       []TraceQueryProof
}

// TraceQueryProof is one FRI query index's opened trace rows: the current
// LDE-domain row and the "next" row (blowup positions ahead, wrapping
// modulo the LDE domain size) that every transition constraint and the
// DEEP quotient's z*g term need, each split across the main and LogUp
// Merkle trees and authenticated against MainRoot/LogupRoot respectively.
type TraceQueryProof struct {
	Index         int
	MainCur       []core.M31
	MainNext      []core.M31
	LogupCur      []core.M31
	LogupNext     []core.M31
	MainCurPath   core.MerklePath
	MainNextPath  core.MerklePath
	LogupCurPath  core.MerklePath
	LogupNextPath core.MerklePath
}

// EncodeProof serializes a Proof to CBOR, the wire format spec.md §5
// names for proof artifacts.
func EncodeProof(p *Proof) ([]byte, error) {
	b, err := cbor.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("protocols: encode proof: %w", err)
	}
	return b, nil
}

// DecodeProof deserializes a Proof and checks its version tag is exactly
// the version this build of the verifier understands; spec.md §4.11
// treats a version mismatch as an immediate rejection rather than an
// attempt at best-effort compatibility.
func DecodeProof(b []byte) (*Proof, error) {
	var p Proof
	if err := cbor.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("protocols: decode proof: %w", err)
	}
	v, err := semver.Parse(p.Version)
	if err != nil {
		return nil, fmt.Errorf("protocols: decode proof: bad version tag %q: %w", p.Version, err)
	}
	if !v.Equals(ProofVersion) {
		return nil, fmt.Errorf("protocols: %w: proof is v%s, verifier wants v%s", ErrVersionMismatch, v, ProofVersion)
	}
	return &p, nil
}
