// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ezrec/ls8/config"
	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
)

func main() {
	var assemble bool
	var save bool
	var conf string
	var output string
	var verbose bool
	var ticks int

	flag.BoolVar(&assemble, "a", false, "Program is mnemonic assembly source")
	flag.BoolVar(&save, "s", false, "Print the program as binary literals, do not execute")
	flag.StringVar(&conf, "c", "", "ls8.toml configuration file")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&ticks, "n", -1, "Tick limit (0 for none)")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [flags] PROGRAM", os.Args[0])
	}
	path := flag.Arg(0)

	settings := config.Default()
	if len(conf) != 0 {
		var err error
		settings, err = config.Load(conf)
		if err != nil {
			log.Fatal(err)
		}
	}
	if verbose {
		settings.Trace.Verbose = true
	}
	if ticks >= 0 {
		settings.Machine.TickLimit = ticks
	}

	emu := emulator.NewEmulator()
	settings.Apply(emu)

	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	defer inf.Close()

	var prog *cpu.Program
	if assemble {
		asm := &cpu.Assembler{Verbose: settings.Trace.Verbose}
		for equ, value := range emu.Defines() {
			asm.Predefine(equ, value)
		}
		prog, err = asm.Parse(inf)
	} else {
		prog, err = cpu.Parse(inf)
	}
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	var out io.Writer = os.Stdout
	if output != "-" {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		out = ouf
	}

	if save {
		err = prog.Format(out)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	emu.Program = prog
	emu.Console.Output = out

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	err = emu.Run()
	if err != nil {
		log.Fatalf("%v: %v\n%v", path, err, trace(emu))
	}
}

// trace renders the machine state for a fatal runtime error.
func trace(emu *emulator.Emulator) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PC | IR A  B  | R0 R1 R2 R3 R4 R5 R6 SP | LGE\n")
	fmt.Fprintf(&sb, "%v", emu.Cpu)
	return sb.String()
}
