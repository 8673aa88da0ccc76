package vm

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

// Builder hand-assembles a valid 77-column trace for one of the reference
// programs used to exercise the core end-to-end. It is not a general
// RV32IM emulator: the emulator producing the real 77-column contract is
// explicitly out of scope (spec.md §1); this builder exists only so the
// concrete end-to-end scenarios of spec.md §8 have a trace to feed the
// prover.
type Builder struct {
	trace *Trace
	regs  [32]uint32
	pc    uint32
	row   int
}

// newBuilder allocates a Builder over a trace padded to numRows, all of
// which start as padding (every selector zero, pc constant at 0).
func newBuilder(numRows int) (*Builder, error) {
	t, err := NewTrace(numRows)
	if err != nil {
		return nil, err
	}
	return &Builder{trace: t}, nil
}

// step appends one real instruction row, filling control, selector,
// register-value, memory, and auxiliary witness columns, and advances the
// simulated register file and program counter the way the opcode's
// semantics require.
func (b *Builder) step(op Opcode, rs1, rs2, rd int, imm int32) {
	row := b.row
	t := b.trace

	pcLo, pcHi := SplitLimb16(b.pc)
	t.Set(ColPCLo, row, pcLo)
	t.Set(ColPCHi, row, pcHi)
	t.Set(ColInstr, row, core.NewM31(uint64(op)))
	t.Set(ColRs1Idx, row, core.NewM31(uint64(rs1)))
	t.Set(ColRs2Idx, row, core.NewM31(uint64(rs2)))
	t.Set(ColRdIdx, row, core.NewM31(uint64(rd)))
	t.Set(ColImm, row, SignExtendImm(imm))
	t.SetOpcode(row, op)
	checkOneHotSelector(t, row)

	rs1Val := b.regs[rs1]
	rs2Val := b.regs[rs2]
	rs1Lo, rs1Hi := SplitLimb16(rs1Val)
	rs2Lo, rs2Hi := SplitLimb16(rs2Val)
	t.Set(ColRs1Lo, row, rs1Lo)
	t.Set(ColRs1Hi, row, rs1Hi)
	t.Set(ColRs2Lo, row, rs2Lo)
	t.Set(ColRs2Hi, row, rs2Hi)

	var rdVal uint32
	nextPC := b.pc + 4
	branchTaken := false

	switch op {
	case OpADDI:
		sum, cLo, cHi := RowCarryAdd(rs1Val, uint32(int64(imm)))
		rdVal = sum
		t.Set(ColCarryBorrow, row, core.NewM31(uint64(cLo|cHi<<1)))
	case OpADD:
		sum, cLo, cHi := RowCarryAdd(rs1Val, rs2Val)
		rdVal = sum
		t.Set(ColCarryBorrow, row, core.NewM31(uint64(cLo|cHi<<1)))
	case OpSUB:
		rdVal = rs1Val - rs2Val
		if rs1Val < rs2Val {
			t.Set(ColCarryBorrow, row, core.OneM31)
		}
	case OpBNE:
		if rs1Val != rs2Val {
			nextPC = uint32(int64(b.pc) + int64(imm))
			branchTaken = true
			t.Set(ColEqBit, row, core.ZeroM31)
		} else {
			t.Set(ColEqBit, row, core.OneM31)
		}
	case OpBEQ:
		if rs1Val == rs2Val {
			nextPC = uint32(int64(b.pc) + int64(imm))
			branchTaken = true
			t.Set(ColEqBit, row, core.OneM31)
		} else {
			t.Set(ColEqBit, row, core.ZeroM31)
		}
	default:
		// The reference builder only drives the handful of opcodes the
		// three fixture programs need; other families are exercised
		// directly by the AIR/constraint unit tests instead.
	}
	_ = branchTaken

	if op.WritesRd() {
		if rd == 0 {
			rdVal = 0
		}
		b.regs[rd] = rdVal
	}
	rdLo, rdHi := SplitLimb16(rdVal)
	t.Set(ColRdLo, row, rdLo)
	t.Set(ColRdHi, row, rdHi)

	tsLo, tsHi := MemTimestamp(uint32(row))
	t.Set(ColMemTsLo, row, tsLo)
	t.Set(ColMemTsHi, row, tsHi)

	b.pc = nextPC
	b.row++
}

// padRemaining fills every row from the current cursor to the end of the
// trace with padding: all selectors zero, pc held constant at its final
// value, the memory timestamp set to the row index, every other column
// zero. This is the "padding discipline" the
// transition constraints must respect (§4.5 PC update, selector
// booleans).
func (b *Builder) padRemaining() {
	t := b.trace
	pcLo, pcHi := SplitLimb16(b.pc)
	for row := b.row; row < t.NumRows; row++ {
		t.Set(ColPCLo, row, pcLo)
		t.Set(ColPCHi, row, pcHi)
		tsLo, tsHi := MemTimestamp(uint32(row))
		t.Set(ColMemTsLo, row, tsLo)
		t.Set(ColMemTsHi, row, tsHi)
	}
	b.row = t.NumRows
}

// finish pads the remaining rows and returns the completed trace.
func (b *Builder) finish() *Trace {
	b.padRemaining()
	return b.trace
}

// BuildConstantProgram is scenario 1 of spec.md §8: N=16 rows each
// executing `addi x1, x0, 10`. x1's final limbs must equal (10, 0).
func BuildConstantProgram() (*Trace, error) {
	const n = 16
	b, err := newBuilder(n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		b.step(OpADDI, 0, 0, 1, 10)
	}
	return b.finish(), nil
}

// BuildCountingLoop is scenario 2: 33 real steps (padded to 64)
// incrementing x1 from 0 to 5 using ADDI and BNE (BEQ on the final
// iteration).
func BuildCountingLoop() (*Trace, error) {
	const padded = 64
	b, err := newBuilder(padded)
	if err != nil {
		return nil, err
	}
	// x1 counts up; x2 holds the constant 5 for the loop condition.
	b.step(OpADDI, 0, 0, 2, 5)
	for i := 0; i < 5; i++ {
		b.step(OpADDI, 1, 0, 1, 1)
		if i < 4 {
			b.step(OpBNE, 1, 2, 0, -4)
		} else {
			b.step(OpBEQ, 1, 2, 0, 4)
		}
	}
	// 1 + 5*2 = 11 real rows; pad the rest with a harmless repeated ADDI
	// x0,x0,0 sequence up to 33 real rows per the scenario, then padding.
	for b.row < 33 {
		b.step(OpADDI, 0, 0, 0, 0)
	}
	if b.regs[1] != 5 {
		return nil, fmt.Errorf("vm: counting loop builder produced x1=%d, want 5", b.regs[1])
	}
	return b.finish(), nil
}

// BuildFibonacci is scenario 3: iterative fib(6)=8 using ADD, ADDI, BNE
// over roughly 30 rows, padded to 64.
func BuildFibonacci() (*Trace, error) {
	const padded = 64
	b, err := newBuilder(padded)
	if err != nil {
		return nil, err
	}
	// x1=prev, x2=cur, x3=counter, x4=limit(6), x5=scratch.
	b.step(OpADDI, 0, 0, 1, 0) // x1 = 0
	b.step(OpADDI, 0, 0, 2, 1) // x2 = 1
	b.step(OpADDI, 0, 0, 3, 0) // x3 = 0
	b.step(OpADDI, 0, 0, 4, 6) // x4 = 6
	for i := 0; i < 6; i++ {
		b.step(OpADD, 1, 2, 5, 0)  // x5 = x1+x2
		b.step(OpADDI, 2, 0, 1, 0) // x1 = x2
		b.step(OpADDI, 5, 0, 2, 0) // x2 = x5
		b.step(OpADDI, 3, 0, 3, 1) // x3 += 1
		if i < 5 {
			b.step(OpBNE, 3, 4, 0, -16)
		}
	}
	if b.regs[1] != 8 {
		return nil, fmt.Errorf("vm: fibonacci builder produced fib=%d, want 8", b.regs[1])
	}
	return b.finish(), nil
}

// InjectX0Forgery mutates a built trace so that the row at index writes a
// nonzero value to x0, for the negative scenario 4 of spec.md §8. It is
// the test package's responsibility to assert that proving this trace
// fails with ConstraintViolation{kind: x0_nonzero}.
func InjectX0Forgery(t *Trace, index int) {
	t.Set(ColRdIdx, index, core.ZeroM31)
	t.Set(ColRdLo, index, core.NewM31(1))
	t.SetOpcode(index, OpADDI)
}

// checkOneHotSelector panics if row does not have exactly one opcode
// selector lit, the invariant SetOpcode is supposed to establish on every
// real (non-padding) row. It scans the selector block through a bitset
// rather than a running integer sum so the check reads directly as "is
// this set a singleton" instead of an arithmetic side effect.
func checkOneHotSelector(t *Trace, row int) {
	lit := bitset.New(uint(NumOpcodeSelectors))
	for s := FirstOpcodeSelector; s <= LastOpcodeSelector; s++ {
		if t.Columns[s][row].IsOne() {
			lit.Set(uint(s - FirstOpcodeSelector))
		}
	}
	if lit.Count() != 1 {
		panic(fmt.Sprintf("vm: row %d has %d opcode selectors lit, want exactly 1", row, lit.Count()))
	}
}
