// Package cpu implements the LS-8 microprocessor, its program loader and
// its assembler.
//
// The CPU consists of 256 bytes of memory, eight 8-bit general-purpose
// registers (r0-r7, with r7 used as the stack pointer), a program counter
// (PC), and the Equal/Less/Greater condition flags set by CMP. Each tick
// fetches the opcode at PC and the two bytes following it, decodes the
// opcode, executes it, and advances PC by the instruction size unless the
// instruction set PC itself.
//
// Programs are loaded either from a binary-literal listing (Parse), one
// byte per line, or from mnemonic source through the Assembler, which
// supports labels, equates and compile-time expressions.
package cpu
