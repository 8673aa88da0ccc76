package vm

import (
	"fmt"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

// Trace is the column-major execution trace ingested by the prover: a
// fixed 77-column matrix of NumRows field elements, NumRows a power of
// two. It is produced once (by the emulator, or here by the reference
// builder) and is read-only from the moment it crosses into the prover.
type Trace struct {
	NumRows int
	Columns [NumColumns][]core.M31
}

// NewTrace allocates a zeroed trace of the given row count, which must be
// a power of two.
func NewTrace(numRows int) (*Trace, error) {
	if numRows <= 0 || numRows&(numRows-1) != 0 {
		return nil, fmt.Errorf("vm: trace row count must be a power of two, got %d: %w", numRows, core.ErrBadSize)
	}
	t := &Trace{NumRows: numRows}
	for c := 0; c < NumColumns; c++ {
		t.Columns[c] = make([]core.M31, numRows)
	}
	return t, nil
}

// Set writes value into column col at row.
func (t *Trace) Set(col Column, row int, value core.M31) {
	t.Columns[col][row] = value
}

// Get reads the value of column col at row.
func (t *Trace) Get(col Column, row int) core.M31 {
	return t.Columns[col][row]
}

// SetOpcode zeroes every selector column at row and sets the selector for
// op, so a row always has exactly one (or zero, for padding) selector lit.
func (t *Trace) SetOpcode(row int, op Opcode) {
	for s := FirstOpcodeSelector; s <= LastOpcodeSelector; s++ {
		t.Columns[s][row] = core.ZeroM31
	}
	t.Columns[op.Selector()][row] = core.OneM31
}

// ColumnSlices returns the 77 columns as a plain slice of slices, the
// shape the circle-FFT/LDE and Merkle-commit layers operate on.
func (t *Trace) ColumnSlices() [][]core.M31 {
	out := make([][]core.M31, NumColumns)
	for c := 0; c < NumColumns; c++ {
		out[c] = t.Columns[c]
	}
	return out
}

// SplitLimb16 decomposes a 32-bit value into 16-bit low/high limbs.
func SplitLimb16(v uint32) (lo, hi core.M31) {
	return core.NewM31(uint64(v & 0xFFFF)), core.NewM31(uint64((v >> 16) & 0xFFFF))
}

// JoinLimb16 recombines 16-bit low/high limbs into a 32-bit value.
func JoinLimb16(lo, hi core.M31) uint32 {
	return uint32(lo.Uint32()) | uint32(hi.Uint32())<<16
}

// SignExtendImm sign-extends a 12-bit (or smaller) immediate held as a
// two's-complement int32 into the field, matching the convention the AIR
// uses for ColImm: values >= 2^31 in unsigned terms represent negative
// immediates reduced mod p.
func SignExtendImm(imm int32) core.M31 {
	return core.NewM31FromInt64(int64(imm))
}

// MemTimestamp packs a 32-bit logical timestamp into the two 16-bit
// ColMemTsLo/ColMemTsHi limbs, the same convention SplitLimb16 uses.
func MemTimestamp(ts uint32) (lo, hi core.M31) {
	return SplitLimb16(ts)
}

// RowCarryAdd returns the 32-bit wrapped sum of a and b and the carry
// (0 or 1) out of each 16-bit limb, used by the ADD/ADDI
// limb-wise-addition constraint.
func RowCarryAdd(a, b uint32) (sum uint32, carryLo, carryHi uint32) {
	aLo, aHi := a&0xFFFF, a>>16
	bLo, bHi := b&0xFFFF, b>>16
	loSum := aLo + bLo
	carryLo = loSum >> 16
	hiSum := aHi + bHi + carryLo
	carryHi = (hiSum >> 16) & 1
	sum = (loSum & 0xFFFF) | ((hiSum & 0xFFFF) << 16)
	return sum, carryLo, carryHi
}
