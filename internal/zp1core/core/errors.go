package core

import "errors"

// Field/domain-layer sentinel errors. These are wrapped with context by
// callers and satisfy errors.Is against the sentinels below.
var (
	// ErrNotInvertible is returned by Inv on the zero element of any of
	// M31, CM31, or QM31.
	ErrNotInvertible = errors.New("core: element is not invertible")

	// ErrBadSize is returned when a domain or transform is given a size
	// that is not a power of two, or when dimensions mismatch.
	ErrBadSize = errors.New("core: size must be a power of two")

	// ErrOutOfDomain is returned when a sampled out-of-domain point
	// unexpectedly lands on the domain it was meant to avoid.
	ErrOutOfDomain = errors.New("core: point unexpectedly lies on domain")
)
