package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted         = errors.New(f("halted"))
	ErrChannelInvalid = errors.New(f("channel invalid"))
	ErrProgramSize    = errors.New(f("program exceeds memory"))

	// Instruction decode errors
	ErrOpcodeDecode    = errors.New(f("decode"))
	ErrOpcodeArg1      = errors.New(f("arg1"))
	ErrOpcodeArg2      = errors.New(f("arg2"))
	ErrOpcodeIo        = errors.New(f("io"))
	ErrRegisterInvalid = errors.New(f("register invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode locates a failed instruction.
type ErrOpcode struct {
	Address     uint8
	Instruction Instruction
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x at 0x%02x (%v)", uint8(eo.Instruction.Opcode), eo.Address, eo.Instruction.String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAluOp is raised (as a panic) when the ALU is asked to perform an
// operation it does not implement.
type ErrAluOp AluOp

func (ea ErrAluOp) Error() string {
	return f("unsupported alu operation %d", int(ea))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or label", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrValueRange int64

func (err ErrValueRange) Error() string {
	return f("%d does not fit in a byte", int64(err))
}
