// Package vm defines the 77-column trace contract produced by the RV32IM
// emulator (out of scope per the core's spec) and consumed by the AIR
// evaluator, together with a minimal reference trace builder used to
// exercise the core end-to-end with a handful of hand-assembled programs.
package vm

// Column is an index into a trace row, naming one of the 77 fixed columns
// of the execution trace. The layout and count are a versioned contract:
// any change here is a new AIR version and a new transcript domain
// separator (see protocols.TranscriptDomainSep).
type Column int

// Control columns (7): program counter split into two 16-bit limbs, the
// raw instruction word, the decoded register indices, and the
// sign-extended immediate.
const (
	ColPCLo Column = iota
	ColPCHi
	ColInstr
	ColRs1Idx
	ColRs2Idx
	ColRdIdx
	ColImm

	numControlColumns = iota
)

// Opcode selector columns (43): exactly one is nonzero (equal to one) on
// any non-padding row, gating every per-opcode constraint family.
const (
	SelADD Column = numControlColumns + iota
	SelSUB
	SelADDI
	SelAND
	SelOR
	SelXOR
	SelANDI
	SelORI
	SelXORI
	SelSLL
	SelSRL
	SelSRA
	SelSLLI
	SelSRLI
	SelSRAI
	SelSLT
	SelSLTU
	SelSLTI
	SelSLTIU
	SelBEQ
	SelBNE
	SelBLT
	SelBGE
	SelBLTU
	SelBGEU
	SelJAL
	SelJALR
	SelLUI
	SelAUIPC
	SelLW
	SelLH
	SelLB
	SelLHU
	SelLBU
	SelSW
	SelSH
	SelSB
	SelMUL
	SelMULH
	SelMULHU
	SelMULHSU
	SelDIV
	SelREM
)

// FirstOpcodeSelector and LastOpcodeSelector bound the contiguous block of
// 43 selector columns, used by the "exactly one selector is nonzero" scan.
const (
	FirstOpcodeSelector = SelADD
	LastOpcodeSelector  = SelREM
	NumOpcodeSelectors  = int(LastOpcodeSelector-FirstOpcodeSelector) + 1
)

// Register value columns (6): each of rs1, rs2, rd contributes a low and
// a high 16-bit limb.
const (
	ColRs1Lo Column = SelREM + 1 + iota
	ColRs1Hi
	ColRs2Lo
	ColRs2Hi
	ColRdLo
	ColRdHi
)

// Auxiliary witness columns (8). Carry and borrow share a single column
// since the ALU-add and subtract/comparison selectors that populate it
// are mutually exclusive per row.
const (
	ColCarryBorrow Column = ColRdHi + 1 + iota
	ColLSB
	ColEqBit
	ColLtBit
	ColQuotLo
	ColQuotHi
	ColRemLo
	ColRemHi
)

// Memory columns (5): the address/value/timestamp/is-write witnesses the
// LogUp memory-channel argument binds.
const (
	ColMemAddr Column = ColRemHi + 1 + iota
	ColMemValue
	ColMemTsLo
	ColMemTsHi
	ColMemIsWrite
)

// LogUp running-sum columns (8): the memory-channel and register-channel
// QM31 accumulators, each laid out as four M31 limbs per QM31.Limbs().
const (
	ColMemSumC0A Column = ColMemIsWrite + 1 + iota
	ColMemSumC0B
	ColMemSumC1A
	ColMemSumC1B
	ColRegSumC0A
	ColRegSumC0B
	ColRegSumC1A
	ColRegSumC1B
)

// NumColumns is the fixed trace width, 77 as specified.
const NumColumns = int(ColRegSumC1B) + 1

// ColumnNames gives every column its contract name, for diagnostics and
// error messages.
var ColumnNames = func() [NumColumns]string {
	var names [NumColumns]string
	names[ColPCLo] = "pc_lo"
	names[ColPCHi] = "pc_hi"
	names[ColInstr] = "instr"
	names[ColRs1Idx] = "rs1_idx"
	names[ColRs2Idx] = "rs2_idx"
	names[ColRdIdx] = "rd_idx"
	names[ColImm] = "imm"
	for op, name := range opcodeNames {
		names[FirstOpcodeSelector+Column(op)] = "sel_" + name
	}
	names[ColRs1Lo] = "rs1_lo"
	names[ColRs1Hi] = "rs1_hi"
	names[ColRs2Lo] = "rs2_lo"
	names[ColRs2Hi] = "rs2_hi"
	names[ColRdLo] = "rd_lo"
	names[ColRdHi] = "rd_hi"
	names[ColCarryBorrow] = "carry_borrow"
	names[ColLSB] = "lsb"
	names[ColEqBit] = "eq_bit"
	names[ColLtBit] = "lt_bit"
	names[ColQuotLo] = "quot_lo"
	names[ColQuotHi] = "quot_hi"
	names[ColRemLo] = "rem_lo"
	names[ColRemHi] = "rem_hi"
	names[ColMemAddr] = "mem_addr"
	names[ColMemValue] = "mem_value"
	names[ColMemTsLo] = "mem_ts_lo"
	names[ColMemTsHi] = "mem_ts_hi"
	names[ColMemIsWrite] = "mem_is_write"
	names[ColMemSumC0A] = "mem_sum_c0a"
	names[ColMemSumC0B] = "mem_sum_c0b"
	names[ColMemSumC1A] = "mem_sum_c1a"
	names[ColMemSumC1B] = "mem_sum_c1b"
	names[ColRegSumC0A] = "reg_sum_c0a"
	names[ColRegSumC0B] = "reg_sum_c0b"
	names[ColRegSumC1A] = "reg_sum_c1a"
	names[ColRegSumC1B] = "reg_sum_c1b"
	return names
}()
