package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assemble(t *testing.T, program ...string) *Program {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)
	return prog
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))
	assert.Equal("0", asm.Equate["LINENO"])
}

func TestAssemblerMultiply(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"; mult.asm",
		"LDI R0, 8",
		"ldi r1,9     # lower case",
		"MUL R0, R1",
		"PRN R0",
		"HLT",
	)

	expected := []Statement{
		{2, 0, []string{"LDI", "R0", "8"}, []uint8{0x82, 0x00, 0x08}, nil},
		{3, 3, []string{"ldi", "r1", "9"}, []uint8{0x82, 0x01, 0x09}, nil},
		{4, 6, []string{"MUL", "R0", "R1"}, []uint8{0xa2, 0x00, 0x01}, nil},
		{5, 9, []string{"PRN", "R0"}, []uint8{0x47, 0x00}, nil},
		{6, 11, []string{"HLT"}, []uint8{0x01}, nil},
	}
	assert.Equal(expected, prog.Statements)

	binary := parseFile(t, "testdata/mult.ls8")
	assert.Equal(binary.Binary(), prog.Binary())
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"start:",
		"    LDI R1, sub     ; forward reference",
		"    CALL R1",
		"    LDI R2, start",
		"    HLT",
		"sub: RET",
	)

	assert.Equal([]uint8{
		0x82, 0x01, 0x09,
		0x50, 0x01,
		0x82, 0x02, 0x00,
		0x01,
		0x11,
	}, prog.Binary())

	assert.Equal(map[int]string{2: "sub"}, prog.Statements[0].Links)
	assert.Nil(prog.Statements[2].Links)
}

func TestAssemblerCallFile(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"        LDI R1, sub",
		"        LDI R0, 7",
		"        CALL R1",
		"        PRN R0",
		"        HLT",
		"sub:    PUSH R0",
		"        LDI R0, 99",
		"        PRN R1",
		"        POP R0",
		"        RET",
	)

	binary := parseFile(t, "testdata/call.ls8")
	assert.Equal(binary.Binary(), prog.Binary())
}

func TestAssemblerValues(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".equ COUNT 0x10",
		".equ REG R3",
		"LDI R0, 0b1010",
		"LDI R1, 'A'",
		"LDI R2, -1",
		"LDI REG, COUNT",
		"LDI SP, 0xF4",
		"LDI R4, $(COUNT * 2 + 1)",
		"LDI R5, ';'",
		"DB 1, 2, ' ', end",
		"end:",
	)

	assert.Equal([]uint8{
		0x82, 0x00, 0x0a,
		0x82, 0x01, 0x41,
		0x82, 0x02, 0xff,
		0x82, 0x03, 0x10,
		0x82, 0x07, 0xf4,
		0x82, 0x04, 0x21,
		0x82, 0x05, 0x3b,
		0x01, 0x02, 0x20, 0x19,
	}, prog.Binary())
}

func TestAssemblerExpressionLabels(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"top: HLT",
		"here: LDI R0, $(here - top + LINENO)",
	)

	assert.Equal([]uint8{0x01, 0x82, 0x00, 0x03}, prog.Binary())
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("ORIGIN", "0xf4")
	asm.Predefine("ORIGIN", "0xf0")

	prog, err := asm.Parse(strings.NewReader("LDI SP, ORIGIN\nLDI R0, $(ORIGIN - 1)\n"))
	require.NoError(t, err)
	assert.Equal([]uint8{0x82, 0x07, 0xf0, 0x82, 0x00, 0xef}, prog.Binary())
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"unknown", []string{"HLT", "NOP"}, 2, ErrInstructionInvalid},
		{"register", []string{"PRN R8"}, 1, ErrRegisterInvalid},
		{"register_imm", []string{"LDI 3, 3"}, 1, ErrRegisterInvalid},
		{"missing", []string{"LDI R0"}, 1, ErrOpcodeValueMissing},
		{"extra", []string{"HLT R0"}, 1, ErrOpcodeExtraArgs},
		{"db_empty", []string{"DB"}, 1, ErrOpcodeValueMissing},
		{"range", []string{"LDI R0, 256"}, 1, ErrValueRange(256)},
		{"range_neg", []string{"LDI R0, -129"}, 1, ErrValueRange(-129)},
		{"number", []string{"LDI R0, 12abc"}, 1, ErrParseNumber("12abc")},
		{"label_dup", []string{"a: HLT", "a: HLT"}, 2, ErrLabelDuplicate},
		{"label_bad", []string{"1a: HLT"}, 1, ErrLabelInvalid},
		{"label_missing", []string{"HLT", "LDI R0, nowhere"}, 2, ErrLabelMissing("nowhere")},
		{"equ_syntax", []string{".equ A"}, 1, ErrEquateSyntax},
		{"equ_dup", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"expression", []string{"LDI R0, $(1 +)"}, 1, ErrParseExpression("1 +")},
		{"expression_type", []string{`LDI R0, $("x")`}, 1, ErrParseExpression(`"x"`)},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
		assert.ErrorIs(err, entry.err, entry.name)
	}
}

func TestAssemblerTooLarge(t *testing.T) {
	assert := assert.New(t)

	lines := make([]string, MEMORY_SIZE)
	for n := range lines {
		lines[n] = "HLT"
	}

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	assert.NoError(err)
	assert.Equal(MEMORY_SIZE, len(prog.Binary()))

	_, err = asm.Parse(strings.NewReader(strings.Join(append(lines, "HLT"), "\n")))
	assert.ErrorIs(err, ErrProgramSize)

	_, err = asm.Parse(strings.NewReader(strings.Join(append(lines, "end:", "LDI R0, end"), "\n")))
	assert.Error(err)
}

func TestStripComment(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("LDI R0, 1 ", stripComment("LDI R0, 1 ; one"))
	assert.Equal("HLT ", stripComment("HLT # stop"))
	assert.Equal("LDI R0, '#'", stripComment("LDI R0, '#'"))
	assert.Equal("", stripComment("; only"))
}
