package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/ls8/io"
)

// Channel is an I/O channel interface.
type Channel io.Channel

const (
	REGISTER_COUNT = 8 // General purpose registers.
	REG_SP         = 7 // Register holding the stack pointer.

	// STACK_ORIGIN is the reset value of SP. The stack grows downward with
	// decrement-then-store, so the first push lands at 0xff.
	STACK_ORIGIN = uint8(0x00)
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("%d", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"REG_SP":         fmt.Sprintf("%d", REG_SP),
	"FLAG_EQUAL":     fmt.Sprintf("0x%x", uint8(FLAG_EQUAL)),
	"FLAG_GREATER":   fmt.Sprintf("0x%x", uint8(FLAG_GREATER)),
	"FLAG_LESS":      fmt.Sprintf("0x%x", uint8(FLAG_LESS)),
}

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory      Memory                // Main memory.
	Register    [REGISTER_COUNT]uint8 // Register bank; r7 is SP.
	Pc          uint8                 // Address of the next instruction.
	Flags       Flag                  // Condition flags, set by CMP.
	Halted      bool                  // Set once HLT has executed.
	StackOrigin uint8                 // SP value after Reset.

	Ticks int // Executed instruction counter.

	console Channel // PRN output.
}

// NewCpu creates a new CPU, reset to its power-on state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		StackOrigin: STACK_ORIGIN,
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_cpu_defines)
	defines["STACK_ORIGIN"] = fmt.Sprintf("0x%02x", cpu.StackOrigin)
	return maps.All(defines)
}

// SetConsole attaches the channel that PRN writes to.
func (cpu *Cpu) SetConsole(channel Channel) {
	cpu.console = channel
}

// String returns the current CPU state as a single trace line:
// PC, the three bytes at PC, the registers, and the flags.
func (cpu *Cpu) String() (text string) {
	in := Decode(&cpu.Memory, cpu.Pc)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%02X | %02X %02X %02X |", cpu.Pc, uint8(in.Opcode), in.A, in.B)
	for _, reg := range cpu.Register {
		fmt.Fprintf(&sb, " %02X", reg)
	}
	fmt.Fprintf(&sb, " | %v", cpu.Flags)

	return sb.String()
}

// Reset the CPU state.
// - Clears memory, registers and flags.
// - Sets SP to the stack origin and PC to 0.
// - Zeros the tick counter.
// - Rewinds the console.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.Register[:])
	cpu.Register[REG_SP] = cpu.StackOrigin
	cpu.Pc = 0
	cpu.Flags = 0
	cpu.Halted = false
	cpu.Ticks = 0

	if cpu.console != nil {
		cpu.console.Rewind()
	}
}

// Load places a program in memory at address 0.
func (cpu *Cpu) Load(program []uint8) (err error) {
	err = cpu.Memory.Load(program)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(program))
	}

	return
}

// Fetch returns the instruction at PC.
func (cpu *Cpu) Fetch() Instruction {
	return Decode(&cpu.Memory, cpu.Pc)
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	err = cpu.Execute(cpu.Fetch())

	return
}

// Execute executes a single decoded instruction located at PC.
// On error, PC is left pointing at the failed instruction.
func (cpu *Cpu) Execute(in Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Address: cpu.Pc, Instruction: in}, err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.Pc, in)
	}

	if !in.Opcode.Valid() {
		err = ErrOpcodeDecode
		return
	}

	args := [2]uint8{in.A, in.B}
	for n, kind := range in.Opcode.Operands() {
		if kind == OPERAND_REG && args[n] >= REGISTER_COUNT {
			err = errors.Join([]error{ErrOpcodeArg1, ErrOpcodeArg2}[n], ErrRegisterInvalid)
			return
		}
	}

	next_pc := cpu.Pc + uint8(in.Opcode.Size())

	switch in.Opcode {
	case OP_HLT:
		cpu.Halted = true
	case OP_LDI:
		cpu.Register[in.A] = in.B
	case OP_PRN:
		if cpu.console == nil {
			err = errors.Join(ErrOpcodeIo, ErrChannelInvalid)
			return
		}
		err = cpu.console.Print(cpu.Register[in.A])
		if err != nil {
			err = errors.Join(ErrOpcodeIo, err)
			return
		}
	case OP_ADD, OP_MUL, OP_CMP:
		cpu.doAlu(in.Opcode.Alu(), in.A, in.B)
	case OP_PUSH:
		cpu.Push(cpu.Register[in.A])
	case OP_POP:
		// The register is written before SP moves, so POP r7 leaves SP
		// one past the popped value.
		cpu.Register[in.A] = cpu.Peek()
		cpu.Register[REG_SP]++
	case OP_CALL:
		target := cpu.Register[in.A]
		cpu.Push(next_pc)
		next_pc = target
	case OP_RET:
		next_pc = cpu.Pop()
	case OP_JMP:
		next_pc = cpu.Register[in.A]
	case OP_JEQ:
		if cpu.Flags.Equal() {
			next_pc = cpu.Register[in.A]
		}
	case OP_JNE:
		if !cpu.Flags.Equal() {
			next_pc = cpu.Register[in.A]
		}
	default:
		// Every entry of the opcode table must have a case above.
		panic(fmt.Sprintf("opcode %v has no implementation", in.Opcode))
	}

	cpu.Pc = next_pc
	cpu.Ticks += 1

	return
}

// doAlu performs the requested ALU action on registers reg_a and reg_b.
// ADD and MUL replace reg_a; CMP rewrites all of the condition flags.
func (cpu *Cpu) doAlu(op AluOp, reg_a, reg_b uint8) {
	a := cpu.Register[reg_a]
	b := cpu.Register[reg_b]

	switch op {
	case ALU_OP_ADD:
		cpu.Register[reg_a] = a + b
	case ALU_OP_MUL:
		cpu.Register[reg_a] = a * b
	case ALU_OP_CMP:
		switch {
		case a == b:
			cpu.Flags = FLAG_EQUAL
		case a < b:
			cpu.Flags = FLAG_LESS
		default:
			cpu.Flags = FLAG_GREATER
		}
	default:
		panic(ErrAluOp(op))
	}
}
