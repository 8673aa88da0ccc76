package protocols

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

func sampleProof() *Proof {
	return &Proof{
		Version:            ProofVersion.String(),
		NumRows:            16,
		MainRoot:           core.Digest{1, 2, 3},
		LogupRoot:          core.Digest{4, 5, 6},
		CompositionRoot:    core.Digest{7, 8, 9},
		MemoryLogUpFinal:   core.QM31FromM31(core.NewM31(42)),
		RegisterLogUpFinal: core.QM31FromM31(core.NewM31(7)),
		Ood: OodOpening{
			TraceAtZ:       [][]core.QM31{{core.OneQM31, core.ZeroQM31}},
			CompositionAtZ: core.OneQM31,
		},
		Fri: &FriProof{
			LayerRoots:  []core.Digest{{9, 9, 9}},
			FinalValues: []core.QM31{core.OneQM31},
		},
		TraceQueries: []TraceQueryProof{
			{Index: 3, MainCur: []core.M31{core.NewM31(1)}},
		},
	}
}

func TestEncodeDecodeProofRoundTrip(t *testing.T) {
	p := sampleProof()
	b, err := EncodeProof(p)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	got, err := DecodeProof(b)
	require.NoError(t, err)

	diff := cmp.Diff(p, got, cmp.Comparer(func(a, b core.M31) bool { return a.Equal(b) }),
		cmp.Comparer(func(a, b core.QM31) bool { return a.Equal(b) }))
	require.Empty(t, diff)
}

func TestDecodeProofRejectsVersionMismatch(t *testing.T) {
	p := sampleProof()
	p.Version = "0.0.1"
	b, err := EncodeProof(p)
	require.NoError(t, err)

	_, err = DecodeProof(b)
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestDecodeProofRejectsGarbageVersion(t *testing.T) {
	p := sampleProof()
	p.Version = "not-a-version"
	b, err := EncodeProof(p)
	require.NoError(t, err)

	_, err = DecodeProof(b)
	require.Error(t, err)
}
