package zp1core

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/ZippelLabs/ZP1/internal/zp1core/protocols"
)

// defaultLogger writes structured phase-boundary logs to stderr at info
// level; callers that want quieter or differently-routed logs should use
// ProveWithLogger/VerifyWithLogger directly.
func defaultLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Prove runs the full prover pipeline over trace under cfg, binding the
// proof to pi via Fiat-Shamir, and logging its phase boundaries
// (commitments, challenge derivation, query assembly) to stderr. It never
// logs a trace value itself, only commitment roots, sizes, and counts.
func Prove(trace *Trace, pi PublicInputs, cfg *SecurityConfig) (*Proof, error) {
	return ProveWithLogger(trace, pi, cfg, defaultLogger())
}

// ProveWithLogger is Prove with an explicit logger, for callers embedding
// this module in a larger service with its own logging configuration.
func ProveWithLogger(trace *Trace, pi PublicInputs, cfg *SecurityConfig, log zerolog.Logger) (*Proof, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := protocols.Prove(trace, pi.Bytes(), cfg.toFriConfig(), log)
	if err != nil {
		return nil, wrapProve(err)
	}
	return p, nil
}

// Verify checks proof against cfg and pi, logging its phase boundaries to
// stderr. pi must be the same public inputs the proof was produced under;
// verifying against any other value diverges the Fiat-Shamir transcript
// from the first challenge onward and the proof is rejected. Verify
// returns nil only if every commitment, fold, and DEEP consistency check
// the verifier performs succeeds; any failure is returned as a typed
// *Error wrapping the specific internal cause.
func Verify(proof *Proof, pi PublicInputs, cfg *SecurityConfig) error {
	return VerifyWithLogger(proof, pi, cfg, defaultLogger())
}

// VerifyWithLogger is Verify with an explicit logger.
func VerifyWithLogger(proof *Proof, pi PublicInputs, cfg *SecurityConfig, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := protocols.Verify(proof, pi.Bytes(), cfg.toFriConfig(), log); err != nil {
		return wrapVerify(err)
	}
	return nil
}

// EncodeProof serializes a proof to its CBOR wire format.
func EncodeProof(p *Proof) ([]byte, error) {
	b, err := protocols.EncodeProof(p)
	if err != nil {
		return nil, wrapProve(err)
	}
	return b, nil
}

// DecodeProof deserializes a proof from its CBOR wire format, rejecting
// any version tag this build of the verifier does not understand.
func DecodeProof(b []byte) (*Proof, error) {
	p, err := protocols.DecodeProof(b)
	if err != nil {
		return nil, wrapDecode(err)
	}
	return p, nil
}
