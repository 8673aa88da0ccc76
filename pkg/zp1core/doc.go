// Package zp1core is the public API of a Circle-STARK proving core for
// RV32IM execution over the Mersenne-31 field.
//
// # Features
//
// - Circle-STARK prover and verifier over M31/CM31/QM31
// - A fixed 77-column trace contract covering a 43-opcode RV32IM subset
// - LogUp multiset arguments for the memory and register channels
// - DEEP/FRI low-degree testing with a SHA3-256 Fiat-Shamir transcript
//
// # Quick Start
//
// Proving and verifying a trace:
//
//	cfg := zp1core.DefaultSecurityConfig()
//	pi := zp1core.PublicInputs{ProgramImageHash: imageHash, InitialPC: 0}
//	proof, err := zp1core.Prove(trace, pi, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := zp1core.Verify(proof, pi, cfg); err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
// - pkg/zp1core/: public API (this package): Prove, Verify, Config,
//   typed errors.
// - internal/zp1core/core/: field layer, circle domain/FFT, Merkle
//   vector commitment.
// - internal/zp1core/vm/: the 77-column trace contract and a reference
//   trace builder used by this module's own tests.
// - internal/zp1core/protocols/: transcript, AIR, LogUp, composition/DEEP,
//   FRI, and the prover/verifier orchestrators.
//
// Implementation details under internal/ may change without notice; only
// this package's exported surface is a stable contract.
package zp1core
