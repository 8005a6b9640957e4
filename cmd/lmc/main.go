// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ezrec/lmc/cpu"
	"github.com/ezrec/lmc/emulator"
)

// defines collects -D NAME=VALUE predefines.
type defines map[string]int

func (d defines) String() string {
	var list []string
	for name, value := range d {
		list = append(list, fmt.Sprintf("%v=%v", name, value))
	}
	sort.Strings(list)
	return strings.Join(list, ",")
}

func (d defines) Set(text string) (err error) {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		err = fmt.Errorf("'%v' is not NAME=VALUE", text)
		return
	}
	number, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	d[name] = number
	return
}

// run executes the command line in args, reading program source from stdin
// if requested, and writing results to stdout.
func run(args []string, stdin io.Reader, stdout io.Writer) (err error) {
	var compile string
	var input string
	var inputFile string
	var limit int
	var step bool
	var dump bool
	var listing bool
	var verbose bool
	predefine := defines{}

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.StringVar(&compile, "c", "", ".lmc file to assemble, - for stdin")
	flags.StringVar(&input, "i", "", "Comma separated input data")
	flags.StringVar(&inputFile, "I", "", "File of comma separated input data")
	flags.Var(predefine, "D", "Predefine NAME=VALUE (repeatable)")
	flags.IntVar(&limit, "l", 0, "Tick limit, 0 for unlimited")
	flags.BoolVar(&step, "s", false, "Dump after every step")
	flags.BoolVar(&dump, "d", false, "Dump after the run")
	flags.BoolVar(&listing, "L", false, "Print the assembly listing, do not execute")
	flags.BoolVar(&verbose, "v", false, "Verbose mode")

	err = flags.Parse(args[1:])
	if err != nil {
		return
	}

	if flags.NArg() != 0 {
		err = fmt.Errorf("unknown arguments: %v", flags.Args())
		return
	}

	if len(compile) == 0 {
		err = fmt.Errorf("no source file given, use -c")
		return
	}

	var source io.Reader = stdin
	if compile != "-" {
		inf, err := os.Open(compile)
		if err != nil {
			return err
		}
		defer inf.Close()
		source = inf
	}

	if len(inputFile) != 0 {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return err
		}
		input = string(data)
	}

	asm := &cpu.Assembler{Verbose: verbose}
	for name, value := range predefine {
		asm.Predefine(name, value)
	}
	prog, err := asm.Parse(source)
	if err != nil {
		return
	}

	if listing {
		return prog.Listing(stdout)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	err = emu.LoadProgram(prog, input)
	if err != nil {
		return
	}

	if step {
		err = emu.StepLimit(limit, func() error {
			return emu.Dump(stdout)
		})
	} else {
		err = emu.RunLimit(limit)
	}

	if dump {
		if derr := emu.Dump(stdout); derr != nil && err == nil {
			err = derr
		}
	}

	for _, value := range emu.Cpu.Outbox.Values() {
		fmt.Fprintln(stdout, int(value))
	}

	return
}

func main() {
	err := run(os.Args, os.Stdin, os.Stdout)
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
}
