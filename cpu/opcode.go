package cpu

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Opcode is an LS-8 instruction byte.
//
// Opcodes are encoded as AABCDDDD, where AA is the operand count, B marks
// an ALU operation, C marks an instruction that sets PC, and DDDD
// identifies the instruction.
type Opcode uint8

const (
	OP_HLT  = Opcode(0b0000_0001) // HLT
	OP_RET  = Opcode(0b0001_0001) // RET
	OP_PUSH = Opcode(0b0100_0101) // PUSH
	OP_POP  = Opcode(0b0100_0110) // POP
	OP_PRN  = Opcode(0b0100_0111) // PRN
	OP_CALL = Opcode(0b0101_0000) // CALL
	OP_JMP  = Opcode(0b0101_0100) // JMP
	OP_JEQ  = Opcode(0b0101_0101) // JEQ
	OP_JNE  = Opcode(0b0101_0110) // JNE
	OP_LDI  = Opcode(0b1000_0010) // LDI
	OP_ADD  = Opcode(0b1010_0000) // ADD
	OP_MUL  = Opcode(0b1010_0010) // MUL
	OP_CMP  = Opcode(0b1010_0111) // CMP
)

// AluOp is an ALU operation type.
type AluOp int

const (
	ALU_OP_NONE = AluOp(0) // -
	ALU_OP_ADD  = AluOp(1) // add
	ALU_OP_MUL  = AluOp(2) // mul
	ALU_OP_CMP  = AluOp(3) // cmp
)

func (op AluOp) String() string {
	switch op {
	case ALU_OP_NONE:
		return "-"
	case ALU_OP_ADD:
		return "add"
	case ALU_OP_MUL:
		return "mul"
	case ALU_OP_CMP:
		return "cmp"
	}
	return fmt.Sprintf("AluOp(%d)", int(op))
}

// Operand is the meaning of an operand byte.
type Operand int

const (
	OPERAND_REG = Operand(0) // Register index, r0-r7.
	OPERAND_IMM = Operand(1) // 8-bit immediate value.
)

// opcodeInfo describes one entry of the instruction set.
type opcodeInfo struct {
	Name     string
	Operands []Operand
	Alu      AluOp
	SetsPc   bool
}

// opcodeTable is the single source of operand counts, and therefore of
// the PC advance, for every instruction.
var opcodeTable = map[Opcode]opcodeInfo{
	OP_HLT:  {Name: "HLT"},
	OP_RET:  {Name: "RET", SetsPc: true},
	OP_PUSH: {Name: "PUSH", Operands: []Operand{OPERAND_REG}},
	OP_POP:  {Name: "POP", Operands: []Operand{OPERAND_REG}},
	OP_PRN:  {Name: "PRN", Operands: []Operand{OPERAND_REG}},
	OP_CALL: {Name: "CALL", Operands: []Operand{OPERAND_REG}, SetsPc: true},
	OP_JMP:  {Name: "JMP", Operands: []Operand{OPERAND_REG}, SetsPc: true},
	OP_JEQ:  {Name: "JEQ", Operands: []Operand{OPERAND_REG}, SetsPc: true},
	OP_JNE:  {Name: "JNE", Operands: []Operand{OPERAND_REG}, SetsPc: true},
	OP_LDI:  {Name: "LDI", Operands: []Operand{OPERAND_REG, OPERAND_IMM}},
	OP_ADD:  {Name: "ADD", Operands: []Operand{OPERAND_REG, OPERAND_REG}, Alu: ALU_OP_ADD},
	OP_MUL:  {Name: "MUL", Operands: []Operand{OPERAND_REG, OPERAND_REG}, Alu: ALU_OP_MUL},
	OP_CMP:  {Name: "CMP", Operands: []Operand{OPERAND_REG, OPERAND_REG}, Alu: ALU_OP_CMP},
}

// mnemonicMap maps upper-case mnemonics to opcodes.
var mnemonicMap = func() map[string]Opcode {
	names := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		names[info.Name] = op
	}
	return names
}()

// OpcodeOf returns the opcode for a mnemonic, ignoring case.
func OpcodeOf(mnemonic string) (op Opcode, ok bool) {
	op, ok = mnemonicMap[strings.ToUpper(mnemonic)]
	return
}

// Opcodes returns all known opcodes, in ascending order.
func Opcodes() iter.Seq[Opcode] {
	return slices.Values(slices.Sorted(maps.Keys(opcodeTable)))
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	info, ok := opcodeTable[op]
	if !ok {
		return fmt.Sprintf("Opcode(0b%08b)", uint8(op))
	}
	return info.Name
}

// Operands returns the operand kinds consumed by the opcode.
func (op Opcode) Operands() []Operand {
	return opcodeTable[op].Operands
}

// Size returns the instruction length in bytes, including operands.
func (op Opcode) Size() int {
	return 1 + len(opcodeTable[op].Operands)
}

// Alu returns the ALU operation performed by the opcode.
func (op Opcode) Alu() AluOp {
	return opcodeTable[op].Alu
}

// SetsPc returns true if the opcode may load PC directly.
func (op Opcode) SetsPc() bool {
	return opcodeTable[op].SetsPc
}

// Instruction is a decoded opcode with its two speculative operand bytes.
type Instruction struct {
	Opcode Opcode
	A      uint8
	B      uint8
}

// Decode reads the instruction at addr. Operand addresses wrap.
func Decode(mem *Memory, addr uint8) Instruction {
	return Instruction{
		Opcode: Opcode(mem.Read(addr)),
		A:      mem.Read(addr + 1),
		B:      mem.Read(addr + 2),
	}
}

// String returns the assembly language representation of the instruction.
func (in Instruction) String() string {
	if !in.Opcode.Valid() {
		return fmt.Sprintf("DB 0b%08b", uint8(in.Opcode))
	}

	args := make([]string, 0, 2)
	for n, kind := range in.Opcode.Operands() {
		value := in.A
		if n == 1 {
			value = in.B
		}
		switch kind {
		case OPERAND_REG:
			args = append(args, fmt.Sprintf("R%d", value))
		case OPERAND_IMM:
			args = append(args, fmt.Sprintf("%d", value))
		}
	}

	if len(args) == 0 {
		return in.Opcode.String()
	}

	return in.Opcode.String() + " " + strings.Join(args, ", ")
}

// Flag is the condition flag register.
type Flag uint8

const (
	FLAG_EQUAL   = Flag(1 << 0) // E
	FLAG_GREATER = Flag(1 << 1) // G
	FLAG_LESS    = Flag(1 << 2) // L
)

func (fl Flag) Equal() bool   { return fl&FLAG_EQUAL != 0 }
func (fl Flag) Greater() bool { return fl&FLAG_GREATER != 0 }
func (fl Flag) Less() bool    { return fl&FLAG_LESS != 0 }

// String returns the flags as "LGE", with '-' for each clear flag.
func (fl Flag) String() string {
	out := []byte("---")
	if fl.Less() {
		out[0] = 'L'
	}
	if fl.Greater() {
		out[1] = 'G'
	}
	if fl.Equal() {
		out[2] = 'E'
	}
	return string(out)
}
