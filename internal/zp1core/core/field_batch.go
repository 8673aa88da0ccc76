package core

// BatchInvCM31 inverts a slice of nonzero CM31 elements using Montgomery's
// trick: O(n) multiplications plus a single inversion.
func BatchInvCM31(values []CM31) ([]CM31, error) {
	n := len(values)
	if n == 0 {
		return nil, nil
	}

	prefix := make([]CM31, n)
	acc := OneCM31
	for i, v := range values {
		if v.IsZero() {
			return nil, ErrNotInvertible
		}
		prefix[i] = acc
		acc = acc.Mul(v)
	}

	accInv, err := acc.Inv()
	if err != nil {
		return nil, err
	}

	result := make([]CM31, n)
	for i := n - 1; i >= 0; i-- {
		result[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(values[i])
	}
	return result, nil
}

// BatchInvQM31 inverts a slice of nonzero QM31 elements using Montgomery's
// trick. Used heavily by the LogUp accumulator, which needs 1/f(row) for
// every row of the trace.
func BatchInvQM31(values []QM31) ([]QM31, error) {
	n := len(values)
	if n == 0 {
		return nil, nil
	}

	prefix := make([]QM31, n)
	acc := OneQM31
	for i, v := range values {
		if v.IsZero() {
			return nil, ErrNotInvertible
		}
		prefix[i] = acc
		acc = acc.Mul(v)
	}

	accInv, err := acc.Inv()
	if err != nil {
		return nil, err
	}

	result := make([]QM31, n)
	for i := n - 1; i >= 0; i-- {
		result[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(values[i])
	}
	return result, nil
}
