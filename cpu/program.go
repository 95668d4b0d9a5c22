package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Statement is one source line of a program and the bytes it produced.
type Statement struct {
	LineNo  int            // Source line number, from 1.
	Address int            // Memory address of the first byte.
	Words   []string       // Source words, after comment removal.
	Bytes   []uint8        // Generated bytes.
	Links   map[int]string // Byte index to label, for assembler link fixups.
}

// Program is an ordered, contiguous list of statements starting at
// address 0.
type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug locates the statement that produced the byte at addr.
func (prog *Program) Debug(addr uint8) (dbg Debug) {
	for n, st := range prog.Statements {
		if int(addr) >= st.Address && int(addr) < st.Address+len(st.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr) - st.Address,
			}
			break
		}
	}

	return
}

// Bytes iterates over every program byte with its address.
func (prog *Program) Bytes() iter.Seq2[int, uint8] {
	return func(yield func(addr int, value uint8) bool) {
		for _, st := range prog.Statements {
			for n, value := range st.Bytes {
				if !yield(st.Address+n, value) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (bins []uint8) {
	for _, value := range prog.Bytes() {
		bins = append(bins, value)
	}

	return
}

// Format writes the program as a binary-literal listing that Parse
// accepts, annotating each instruction with its disassembly.
func (prog *Program) Format(out io.Writer) (err error) {
	bins := prog.Binary()

	for addr := 0; addr < len(bins); {
		var mem Memory
		copy(mem[:], bins[addr:])
		in := Decode(&mem, 0)

		size := in.Opcode.Size()
		text := in.String()
		if !in.Opcode.Valid() || addr+size > len(bins) {
			size = 1
			text = fmt.Sprintf("DB 0b%08b", bins[addr])
		}

		for n := range size {
			if n == 0 {
				_, err = fmt.Fprintf(out, "%08b # %02X: %v\n", bins[addr], addr, text)
			} else {
				_, err = fmt.Fprintf(out, "%08b\n", bins[addr+n])
			}
			if err != nil {
				return
			}
		}

		addr += size
	}

	return
}

// Parse reads a binary-literal listing. Each line holds at most one
// base-2 byte value; anything after '#' is a comment, and blank lines
// are ignored. Bytes are placed in file order from address 0.
func Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{}
	address := 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		text_comment, _, _ := strings.Cut(text, "#")
		line = strings.TrimSpace(text_comment)
		if len(line) == 0 {
			continue
		}

		if address >= MEMORY_SIZE {
			err = ErrProgramSize
			return
		}

		var value uint64
		value, err = strconv.ParseUint(line, 2, 8)
		if err != nil {
			err = ErrParseNumber(line)
			return
		}

		prog.Statements = append(prog.Statements, Statement{
			LineNo:  lineno,
			Address: address,
			Words:   []string{line},
			Bytes:   []uint8{uint8(value)},
		})
		address++
	}

	err = scanner.Err()

	return
}
