// Package protocols implements the Fiat-Shamir transcript, the RV32IM AIR
// evaluator, the LogUp multiset argument, the DEEP/composition step, the
// FRI low-degree test, and the prover/verifier orchestrators that tie them
// together.
package protocols

import (
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/crypto/sha3"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

// TranscriptDomainSep is the literal absorbed first into every transcript,
// binding the proof to this exact AIR version (77-column contract, 43
// opcodes) and wire format. Any change to the trace contract must bump
// this string.
const TranscriptDomainSep = "zp1-transcript-v1"

// Transcript is a single-owner, append-only Fiat-Shamir sponge. It is
// never shared across workers: the orchestrator absorbs prover messages
// into it in the canonical order of spec.md §4.9, and all challenges are
// derived by squeezing it.
//
// Internally it is a streaming SHA3-256 hash re-seeded on every squeeze,
// which gives the same "absorb everything seen so far, then derive"
// discipline as a duplex sponge without needing a bespoke permutation.
type Transcript struct {
	state   [32]byte
	counter uint64
}

// NewTranscript seeds a fresh transcript with the domain separator.
func NewTranscript() *Transcript {
	t := &Transcript{}
	h := sha3.New256()
	h.Write([]byte(TranscriptDomainSep))
	copy(t.state[:], h.Sum(nil))
	return t
}

// Absorb mixes arbitrary bytes (a serialized public input, a Merkle root,
// an opened evaluation, a FRI layer root) into the transcript state.
func (t *Transcript) Absorb(data []byte) {
	h := sha3.New256()
	h.Write(t.state[:])
	h.Write([]byte{0x00}) // absorb tag, distinct from squeeze tag
	h.Write(data)
	copy(t.state[:], h.Sum(nil))
}

// AbsorbDigest absorbs a Merkle root.
func (t *Transcript) AbsorbDigest(d core.Digest) {
	t.Absorb(d[:])
}

// AbsorbM31 absorbs a single base-field element.
func (t *Transcript) AbsorbM31(v core.M31) {
	b := v.Bytes()
	t.Absorb(b[:])
}

// AbsorbQM31 absorbs a single challenge-field element, e.g. an
// out-of-domain opening.
func (t *Transcript) AbsorbQM31(v core.QM31) {
	b := v.Bytes()
	t.Absorb(b[:])
}

// squeeze draws 32 fresh bytes from the transcript, advancing its state so
// repeated squeezes are independent, and increments the internal counter
// so that two squeezes in the same logical step never collide even if the
// caller forgets to absorb between them.
func (t *Transcript) squeeze() [32]byte {
	var ctrBuf [8]byte
	binary.LittleEndian.PutUint64(ctrBuf[:], t.counter)
	t.counter++

	h := sha3.New256()
	h.Write(t.state[:])
	h.Write([]byte{0x01}) // squeeze tag, distinct from absorb tag
	h.Write(ctrBuf[:])
	out := h.Sum(nil)

	// Ratchet the state forward so the next absorb/squeeze sees fresh
	// randomness derived from, but not equal to, the output just served.
	h2 := sha3.New256()
	h2.Write(t.state[:])
	h2.Write([]byte{0x02})
	h2.Write(out)
	copy(t.state[:], h2.Sum(nil))

	var result [32]byte
	copy(result[:], out)
	return result
}

// rejectionBudget bounds how many draws SqueezeM31/SqueezeIndex will
// attempt before giving up with ChallengeRejection.
const rejectionBudget = 256

// SqueezeM31 draws a uniform M31 challenge via rejection sampling: the
// top bit of a 32-bit draw is discarded and the remaining 31 bits are
// retried if they land on the non-canonical representative p.
func (t *Transcript) SqueezeM31() (core.M31, error) {
	for i := 0; i < rejectionBudget; i++ {
		out := t.squeeze()
		v := binary.LittleEndian.Uint32(out[:4]) &^ (1 << 31)
		if v < core.ModulusM31 {
			return core.M31(v), nil
		}
	}
	return 0, fmt.Errorf("protocols: %w", ErrChallengeRejection)
}

// SqueezeCM31 draws a uniform CM31 challenge.
func (t *Transcript) SqueezeCM31() (core.CM31, error) {
	a, err := t.SqueezeM31()
	if err != nil {
		return core.CM31{}, err
	}
	b, err := t.SqueezeM31()
	if err != nil {
		return core.CM31{}, err
	}
	return core.NewCM31(a, b), nil
}

// SqueezeQM31 draws a uniform QM31 challenge, used for every Fiat-Shamir
// derived scalar the spec calls out (LogUp's α/β, the constraint
// combination γ vector, the out-of-domain point z, FRI fold challenges).
func (t *Transcript) SqueezeQM31() (core.QM31, error) {
	c0, err := t.SqueezeCM31()
	if err != nil {
		return core.QM31{}, err
	}
	c1, err := t.SqueezeCM31()
	if err != nil {
		return core.QM31{}, err
	}
	return core.NewQM31(c0, c1), nil
}

// SqueezeQM31Vec draws n independent QM31 challenges, used for the γ
// constraint-combination vector and for batches of α'/α DEEP weights.
func (t *Transcript) SqueezeQM31Vec(n int) ([]core.QM31, error) {
	out := make([]core.QM31, n)
	for i := range out {
		v, err := t.SqueezeQM31()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SqueezeIndex draws a uniform index in [0, upperBound) by masking one
// draw to its low bits, used to derive FRI query positions. upperBound
// must be a power of two, so no draw is rejected.
func (t *Transcript) SqueezeIndex(upperBound int) (int, error) {
	if upperBound <= 0 || upperBound&(upperBound-1) != 0 {
		return 0, fmt.Errorf("protocols: squeeze index: %w", core.ErrBadSize)
	}
	mask := uint32(upperBound - 1)
	for i := 0; i < rejectionBudget; i++ {
		out := t.squeeze()
		v := binary.LittleEndian.Uint32(out[:4])
		return int(v & mask), nil
	}
	return 0, fmt.Errorf("protocols: %w", ErrChallengeRejection)
}

// SqueezeIndices draws n query indices in [0, upperBound), deduplicated:
// repeats are redrawn so the caller gets n distinct positions (or fewer,
// if upperBound is too small, in which case it returns every remaining
// position).
func (t *Transcript) SqueezeIndices(upperBound, n int) ([]int, error) {
	seen := bitset.New(uint(upperBound))
	out := make([]int, 0, n)
	attempts := 0
	maxAttempts := n * rejectionBudget
	for len(out) < n && len(out) < upperBound && attempts < maxAttempts {
		attempts++
		idx, err := t.SqueezeIndex(upperBound)
		if err != nil {
			return nil, err
		}
		if seen.Test(uint(idx)) {
			continue
		}
		seen.Set(uint(idx))
		out = append(out, idx)
	}
	return out, nil
}
