package vm

// Opcode names the 43 RV32IM instructions this AIR constrains, in the same
// order as the contiguous selector-column block (FirstOpcodeSelector..
// LastOpcodeSelector). This is a representative subset of RV32IM chosen to
// cover every constraint family in the AIR (boolean selectors, PC update,
// register file, ALU, bitwise, shift, comparison, branch, jump, multiply,
// divide, memory) while keeping the selector table a tractable, fully
// wired size. DIVU/REMU and the CSR/system instructions are not modeled.
type Opcode int

const (
	OpADD Opcode = iota
	OpSUB
	OpADDI
	OpAND
	OpOR
	OpXOR
	OpANDI
	OpORI
	OpXORI
	OpSLL
	OpSRL
	OpSRA
	OpSLLI
	OpSRLI
	OpSRAI
	OpSLT
	OpSLTU
	OpSLTI
	OpSLTIU
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpJAL
	OpJALR
	OpLUI
	OpAUIPC
	OpLW
	OpLH
	OpLB
	OpLHU
	OpLBU
	OpSW
	OpSH
	OpSB
	OpMUL
	OpMULH
	OpMULHU
	OpMULHSU
	OpDIV
	OpREM
)

// opcodeNames is indexed by Opcode and gives the selector column its
// "sel_<name>" trace-contract name.
var opcodeNames = [NumOpcodeSelectors]string{
	OpADD: "add", OpSUB: "sub", OpADDI: "addi",
	OpAND: "and", OpOR: "or", OpXOR: "xor",
	OpANDI: "andi", OpORI: "ori", OpXORI: "xori",
	OpSLL: "sll", OpSRL: "srl", OpSRA: "sra",
	OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpSLT: "slt", OpSLTU: "sltu", OpSLTI: "slti", OpSLTIU: "sltiu",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge", OpBLTU: "bltu", OpBGEU: "bgeu",
	OpJAL: "jal", OpJALR: "jalr",
	OpLUI: "lui", OpAUIPC: "auipc",
	OpLW: "lw", OpLH: "lh", OpLB: "lb", OpLHU: "lhu", OpLBU: "lbu",
	OpSW: "sw", OpSH: "sh", OpSB: "sb",
	OpMUL: "mul", OpMULH: "mulh", OpMULHU: "mulhu", OpMULHSU: "mulhsu",
	OpDIV: "div", OpREM: "rem",
}

// Selector returns the trace column gating this opcode's constraints.
func (op Opcode) Selector() Column {
	return FirstOpcodeSelector + Column(op)
}

// String returns the mnemonic name.
func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		return "unknown"
	}
	return opcodeNames[op]
}

// OpcodeFamily groups opcodes by the constraint family they belong to,
// used by the AIR evaluator to select the right algebraic check and by
// the reference builder to pick the right witness-filling routine.
type OpcodeFamily int

const (
	FamilyALU OpcodeFamily = iota
	FamilyBitwise
	FamilyShift
	FamilyCompare
	FamilyBranch
	FamilyJump
	FamilyUpper
	FamilyLoad
	FamilyStore
	FamilyMulDiv
)

// Family classifies op into its constraint family.
func (op Opcode) Family() OpcodeFamily {
	switch op {
	case OpADD, OpSUB, OpADDI:
		return FamilyALU
	case OpAND, OpOR, OpXOR, OpANDI, OpORI, OpXORI:
		return FamilyBitwise
	case OpSLL, OpSRL, OpSRA, OpSLLI, OpSRLI, OpSRAI:
		return FamilyShift
	case OpSLT, OpSLTU, OpSLTI, OpSLTIU:
		return FamilyCompare
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return FamilyBranch
	case OpJAL, OpJALR:
		return FamilyJump
	case OpLUI, OpAUIPC:
		return FamilyUpper
	case OpLW, OpLH, OpLB, OpLHU, OpLBU:
		return FamilyLoad
	case OpSW, OpSH, OpSB:
		return FamilyStore
	case OpMUL, OpMULH, OpMULHU, OpMULHSU, OpDIV, OpREM:
		return FamilyMulDiv
	default:
		return FamilyALU
	}
}

// IsImmediate reports whether op reads its second operand from the
// immediate column rather than rs2 (ADDI, ANDI, ..., SLTIU, loads, JALR).
func (op Opcode) IsImmediate() bool {
	switch op {
	case OpADDI, OpANDI, OpORI, OpXORI, OpSLLI, OpSRLI, OpSRAI,
		OpSLTI, OpSLTIU, OpJALR, OpLW, OpLH, OpLB, OpLHU, OpLBU:
		return true
	default:
		return false
	}
}

// WritesRd reports whether op writes a result into the rd register
// (everything except branches and stores).
func (op Opcode) WritesRd() bool {
	switch op.Family() {
	case FamilyBranch, FamilyStore:
		return false
	default:
		return true
	}
}

// IsMemory reports whether op is a load or a store, i.e. whether its row
// participates in the memory LogUp channel.
func (op Opcode) IsMemory() bool {
	f := op.Family()
	return f == FamilyLoad || f == FamilyStore
}
