package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

func TestTranscriptIsDeterministic(t *testing.T) {
	build := func() core.QM31 {
		tr := NewTranscript()
		tr.Absorb([]byte("hello"))
		tr.AbsorbM31(core.NewM31(42))
		v, err := tr.SqueezeQM31()
		require.NoError(t, err)
		return v
	}
	require.True(t, build().Equal(build()))
}

func TestTranscriptDivergesOnDifferentAbsorb(t *testing.T) {
	tr1 := NewTranscript()
	tr1.Absorb([]byte("a"))
	v1, err := tr1.SqueezeQM31()
	require.NoError(t, err)

	tr2 := NewTranscript()
	tr2.Absorb([]byte("b"))
	v2, err := tr2.SqueezeQM31()
	require.NoError(t, err)

	require.False(t, v1.Equal(v2))
}

func TestTranscriptSuccessiveSqueezesDiffer(t *testing.T) {
	tr := NewTranscript()
	tr.Absorb([]byte("seed"))
	a, err := tr.SqueezeQM31()
	require.NoError(t, err)
	b, err := tr.SqueezeQM31()
	require.NoError(t, err)
	require.False(t, a.Equal(b))
}

func TestSqueezeM31StaysInCanonicalRange(t *testing.T) {
	tr := NewTranscript()
	tr.Absorb([]byte("range-check"))
	for i := 0; i < 64; i++ {
		v, err := tr.SqueezeM31()
		require.NoError(t, err)
		require.Less(t, v.Uint32(), core.ModulusM31)
	}
}

func TestSqueezeIndexRespectsUpperBound(t *testing.T) {
	tr := NewTranscript()
	tr.Absorb([]byte("indices"))
	for i := 0; i < 32; i++ {
		idx, err := tr.SqueezeIndex(64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 64)
	}
}

func TestSqueezeIndexRejectsNonPowerOfTwo(t *testing.T) {
	tr := NewTranscript()
	_, err := tr.SqueezeIndex(3)
	require.ErrorIs(t, err, core.ErrBadSize)
}

func TestSqueezeIndicesReturnsDistinctValues(t *testing.T) {
	tr := NewTranscript()
	tr.Absorb([]byte("distinct"))
	indices, err := tr.SqueezeIndices(64, 16)
	require.NoError(t, err)
	require.Len(t, indices, 16)
	seen := map[int]bool{}
	for _, idx := range indices {
		require.False(t, seen[idx], "index %d repeated", idx)
		seen[idx] = true
	}
}

func TestSqueezeIndicesCapsAtUpperBound(t *testing.T) {
	tr := NewTranscript()
	tr.Absorb([]byte("small-domain"))
	indices, err := tr.SqueezeIndices(4, 100)
	require.NoError(t, err)
	require.LessOrEqual(t, len(indices), 4)
}
