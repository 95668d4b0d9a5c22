// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass LS-8 assembler with a final label link pass.
//
// Source lines have the form:
//
//	[label:]... MNEMONIC [operand][, operand] ; comment
//	.equ NAME VALUE
//	DB value[, value]...
//
// Register operands are R0-R7 (SP is an alias of R7). Values may be
// decimal, 0x hex, 0b binary, 'c' characters, equates, labels, or
// $(...) expressions evaluated at assembly time.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// registerMap is a map of register names to register indexes.
var registerMap = map[string]uint8{
	"R0": 0,
	"R1": 1,
	"R2": 2,
	"R3": 3,
	"R4": 4,
	"R5": 5,
	"R6": 6,
	"R7": 7,
	"SP": REG_SP,
}

var (
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reParen      = regexp.MustCompile(`\$\([^\$]*\)`)
)

// stripComment removes a ';' or '#' comment, ignoring quoted characters.
func stripComment(text string) string {
	quoted := false
	for n, c := range text {
		switch {
		case c == '\'':
			quoted = !quoted
		case !quoted && (c == ';' || c == '#'):
			return text[:n]
		}
	}
	return text
}

// valueOf returns the byte value of a numeric word. Negative values down
// to -128 are stored in two's complement.
func (asm *Assembler) valueOf(word string) (value uint8, err error) {
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < -128 || v64 > 0xff {
		err = ErrValueRange(v64)
		return
	}

	value = uint8(v64)

	return
}

// immediate returns the value of an immediate operand. If the operand is a
// label not yet defined, link is set and the value is resolved later.
func (asm *Assembler) immediate(word string) (value uint8, link bool, err error) {
	if !reIdentifier.MatchString(word) {
		value, err = asm.valueOf(word)
		return
	}

	addr, ok := asm.Label[word]
	if !ok {
		link = true
		return
	}

	if addr >= MEMORY_SIZE {
		err = ErrValueRange(addr)
		return
	}

	value = uint8(addr)

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine expands a single line into words, defining labels and equates.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Labels are defined first, so expressions on the line can use them.
	for {
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.HasSuffix(fields[0], ":") {
			break
		}
		label := fields[0][:len(fields[0])-1]
		if !reIdentifier.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentAddress()
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
	}

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\x00"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.EqualFold(words[0], ".equ") {
		if len(words) != 3 || !reIdentifier.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words[1:] {
		equate, ok := asm.Equate[word]
		if ok {
			words[1+n] = equate
		}
	}

	return
}

// currentAddress gets the address of the next generated byte.
func (asm *Assembler) currentAddress() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Address + len(last.Bytes)
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	var bytes []uint8
	var links map[int]string

	link := func(index int, label string) {
		if links == nil {
			links = make(map[int]string, 2)
		}
		links[index] = label
	}

	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	switch mnemonic {
	case "DB", ".BYTE":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for n, arg := range args {
			var value uint8
			var linked bool
			value, linked, err = asm.immediate(arg)
			if err != nil {
				return
			}
			if linked {
				link(n, arg)
			}
			bytes = append(bytes, value)
		}
	default:
		op, ok := OpcodeOf(mnemonic)
		if !ok {
			err = ErrInstructionInvalid
			return
		}
		kinds := op.Operands()
		if len(args) < len(kinds) {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > len(kinds) {
			err = ErrOpcodeExtraArgs
			return
		}
		bytes = append(bytes, uint8(op))
		for n, kind := range kinds {
			arg := args[n]
			switch kind {
			case OPERAND_REG:
				reg, ok := registerMap[strings.ToUpper(arg)]
				if !ok {
					err = ErrRegisterInvalid
					return
				}
				bytes = append(bytes, reg)
			case OPERAND_IMM:
				var value uint8
				var linked bool
				value, linked, err = asm.immediate(arg)
				if err != nil {
					return
				}
				if linked {
					link(1+n, arg)
				}
				bytes = append(bytes, value)
			}
		}
	}

	address := asm.currentAddress()
	if address+len(bytes) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	asm.Statement = append(asm.Statement, Statement{
		LineNo:  lineno,
		Address: address,
		Words:   slices.Clone(words),
		Bytes:   bytes,
		Links:   links,
	})

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Statement = asm.Statement[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		for _, index := range slices.Sorted(maps.Keys(st.Links)) {
			label := st.Links[index]
			addr, ok := asm.Label[label]
			if !ok {
				lineno = st.LineNo
				line = strings.Join(st.Words, " ")
				err = ErrLabelMissing(label)
				return
			}
			if addr >= MEMORY_SIZE {
				lineno = st.LineNo
				line = strings.Join(st.Words, " ")
				err = ErrValueRange(addr)
				return
			}
			st.Bytes[index] = uint8(addr)
		}
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}
