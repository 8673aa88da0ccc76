package zp1core

import (
	"errors"
	"fmt"

	"github.com/ZippelLabs/ZP1/internal/zp1core/protocols"
)

// ErrorCode classifies a public-API error for callers that want to branch
// on error kind without string-matching messages.
type ErrorCode int

const (
	// ErrCodeUnknown is used only when no more specific code applies.
	ErrCodeUnknown ErrorCode = iota

	// ErrCodeInvalidConfig marks a SecurityConfig that failed Validate.
	ErrCodeInvalidConfig

	// ErrCodeProofGeneration marks a failure inside Prove.
	ErrCodeProofGeneration

	// ErrCodeProofVerification marks a failure inside Verify.
	ErrCodeProofVerification

	// ErrCodeInvalidProof marks a proof that failed to decode.
	ErrCodeInvalidProof

	// ErrCodeVersionMismatch marks a proof whose version tag the
	// verifier does not understand.
	ErrCodeVersionMismatch
)

// Error is the public error type Prove/Verify/DecodeProof return. Cause,
// when set, is the underlying internal/zp1core/protocols error (a typed
// struct or one of its sentinels); errors.Is/errors.As against those
// sentinels work through Error's Unwrap.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("zp1core: %s: %v", e.Message, e.Cause)
	}
	return "zp1core: " + e.Message
}

// Unwrap exposes Cause so callers can errors.Is/errors.As against the
// underlying protocols-layer sentinel or typed error.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code, so callers
// can compare by code without needing a Cause of their own.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func wrapProve(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: ErrCodeProofGeneration, Message: "proof generation failed", Cause: err}
}

func wrapVerify(err error) error {
	if err == nil {
		return nil
	}
	code := ErrCodeProofVerification
	if errors.Is(err, protocols.ErrVersionMismatch) {
		code = ErrCodeVersionMismatch
	}
	return &Error{Code: code, Message: "proof verification failed", Cause: err}
}

func wrapDecode(err error) error {
	if err == nil {
		return nil
	}
	code := ErrCodeInvalidProof
	if errors.Is(err, protocols.ErrVersionMismatch) {
		code = ErrCodeVersionMismatch
	}
	return &Error{Code: code, Message: "proof decoding failed", Cause: err}
}
