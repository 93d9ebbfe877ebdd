package codegen

import "fmt"

// Opcode identifies a target machine instruction.  The target is a small
// stack machine: a data stack for operands, a return stack for calls, a flat
// word RAM, and eight rendezvous ports plus four directional neighbor links.
type Opcode int

// Enumeration of opcodes.
const (
	// LIT pushes its operand.
	OpLIT Opcode = iota

	// GET pushes the RAM cell at its operand address.
	OpGET

	// PUT pops into the RAM cell at its operand address.
	OpPUT

	// GETI pops an address and pushes the RAM cell it names.
	OpGETI

	// Arithmetic and logic: each pops its operands and pushes the result.
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpGT
	OpAND
	OpOR
	OpXOR
	OpNOT
	OpSHL
	OpSHR

	// Control flow.  Branch targets are absolute code addresses.
	OpBRZ
	OpBRNZ
	OpJMP

	// CALL jumps to its operand address, pushing the return address on the
	// return stack; CALLI pops the target address from the data stack.
	OpCALL
	OpCALLI
	OpRET

	// SEND pops a value and offers it on the numbered port; RECV blocks on
	// the numbered port and pushes the received value.  Both rendezvous.
	OpSEND
	OpRECV

	// Directional neighbor links: W* pops a value and offers it to the
	// neighbor, R* blocks and pushes the value the neighbor offers.
	OpWLEFT
	OpWRIGHT
	OpWUP
	OpWDOWN
	OpRLEFT
	OpRRIGHT
	OpRUP
	OpRDOWN

	OpHALT
)

var mnemonics = [...]string{
	OpLIT:    "LIT",
	OpGET:    "GET",
	OpPUT:    "PUT",
	OpGETI:   "GETI",
	OpADD:    "ADD",
	OpSUB:    "SUB",
	OpMUL:    "MUL",
	OpDIV:    "DIV",
	OpGT:     "GT",
	OpAND:    "AND",
	OpOR:     "OR",
	OpXOR:    "XOR",
	OpNOT:    "NOT",
	OpSHL:    "SHL",
	OpSHR:    "SHR",
	OpBRZ:    "BRZ",
	OpBRNZ:   "BRNZ",
	OpJMP:    "JMP",
	OpCALL:   "CALL",
	OpCALLI:  "CALLI",
	OpRET:    "RET",
	OpSEND:   "SEND",
	OpRECV:   "RECV",
	OpWLEFT:  "WLEFT",
	OpWRIGHT: "WRIGHT",
	OpWUP:    "WUP",
	OpWDOWN:  "WDOWN",
	OpRLEFT:  "RLEFT",
	OpRRIGHT: "RRIGHT",
	OpRUP:    "RUP",
	OpRDOWN:  "RDOWN",
	OpHALT:   "HALT",
}

func (op Opcode) String() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}

	return fmt.Sprintf("OP(%d)", int(op))
}

// HasOperand returns whether the opcode carries an immediate operand.
func (op Opcode) HasOperand() bool {
	switch op {
	case OpLIT, OpGET, OpPUT, OpBRZ, OpBRNZ, OpJMP, OpCALL, OpSEND, OpRECV:
		return true
	default:
		return false
	}
}

// Instr is one emitted instruction.
type Instr struct {
	Op  Opcode `json:"op"`
	Arg int    `json:"arg,omitempty"`
}

func (in Instr) String() string {
	if in.Op.HasOperand() {
		return fmt.Sprintf("%s %d", in.Op, in.Arg)
	}

	return in.Op.String()
}
