package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

func TestSplitJoinLimb16RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xFFFF, 0x10000, 0xDEADBEEF, 0xFFFFFFFF} {
		lo, hi := SplitLimb16(v)
		require.Equal(t, v, JoinLimb16(lo, hi), "v=%#x", v)
	}
}

func TestRowCarryAddMatchesWrappingAddition(t *testing.T) {
	cases := []struct{ a, b uint32 }{
		{0, 0},
		{1, 1},
		{0xFFFFFFFF, 1},
		{0x7FFFFFFF, 0x7FFFFFFF},
		{0x0000FFFF, 0x00000001},
	}
	for _, c := range cases {
		sum, carryLo, carryHi := RowCarryAdd(c.a, c.b)
		require.Equal(t, c.a+c.b, sum, "a=%#x b=%#x", c.a, c.b)
		require.LessOrEqual(t, carryLo, uint32(1))
		require.LessOrEqual(t, carryHi, uint32(1))
	}
}

func TestSignExtendImmNegative(t *testing.T) {
	got := SignExtendImm(-1)
	require.Equal(t, core.NewM31(uint64(core.ModulusM31)-1), got)
}

func TestNewTraceRequiresPowerOfTwo(t *testing.T) {
	_, err := NewTrace(3)
	require.ErrorIs(t, err, core.ErrBadSize)

	tr, err := NewTrace(8)
	require.NoError(t, err)
	require.Equal(t, 8, tr.NumRows)
	require.Len(t, tr.Columns[0], 8)
}

func TestSetOpcodeIsOneHot(t *testing.T) {
	tr, err := NewTrace(4)
	require.NoError(t, err)
	tr.SetOpcode(0, OpADD)
	lit := 0
	for s := FirstOpcodeSelector; s <= LastOpcodeSelector; s++ {
		if tr.Get(s, 0).IsOne() {
			lit++
		}
	}
	require.Equal(t, 1, lit)
	require.True(t, tr.Get(OpADD.Selector(), 0).IsOne())

	tr.SetOpcode(0, OpSUB)
	require.True(t, tr.Get(OpSUB.Selector(), 0).IsOne())
	require.True(t, tr.Get(OpADD.Selector(), 0).IsZero())
}

func TestColumnSlicesExposesAllColumns(t *testing.T) {
	tr, err := NewTrace(4)
	require.NoError(t, err)
	slices := tr.ColumnSlices()
	require.Len(t, slices, NumColumns)
	for c := range slices {
		require.Len(t, slices[c], 4)
	}
}
