// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator loads assembled programs into a Little Man Computer,
// runs them, and renders the machine state for display.
package emulator

import (
	"log"
	"strconv"
	"strings"

	"github.com/ezrec/lmc/cpu"
)

// Emulator state. CPU + the program listing it was loaded from.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// ParseInbox parses comma separated decimal numbers.
// An empty string is an empty inbox.
func ParseInbox(text string) (inbox []cpu.Code, err error) {
	if len(strings.TrimSpace(text)) == 0 {
		return
	}

	for n, word := range strings.Split(text, ",") {
		word = strings.TrimSpace(word)
		var value int
		value, err = strconv.Atoi(word)
		if err != nil {
			err = &ErrInput{Index: n, Text: word}
			inbox = nil
			return
		}
		inbox = append(inbox, cpu.Code(value))
	}

	return
}

// Reset the emulator state
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// Load resets the CPU, copies the program into memory starting at mailbox 0,
// and replaces the inbox with indata.
func (emu *Emulator) Load(program []cpu.Code, indata []cpu.Code) {
	emu.Reset()

	for n, code := range program {
		emu.Cpu.Write(n, code)
	}
	emu.Cpu.Inbox.Replace(indata...)

	if emu.Verbose {
		log.Printf("emulator: loaded %v words, inbox %v", len(program), emu.Cpu.Inbox.String())
	}
}

// LoadProgram loads an assembled program, and the comma separated indata.
// If the program has rejected lines, or indata is malformed, the emulator
// is left untouched. A nil program loads as an empty one.
func (emu *Emulator) LoadProgram(prog *cpu.Program, indata string) (err error) {
	if prog == nil {
		prog = &cpu.Program{}
	}

	if len(prog.Rejected) > 0 {
		rejected := &ErrRejected{Err: prog.Err()}
		for _, line := range prog.Rejected {
			rejected.Lines = append(rejected.Lines, line.Source)
		}
		err = rejected
		return
	}

	inbox, err := ParseInbox(indata)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Load(prog.Binary(), inbox)

	return
}

// LoadAssembly assembles source, and loads it with the comma separated indata.
func (emu *Emulator) LoadAssembly(source string, indata string) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	return emu.LoadProgram(prog, indata)
}

// LineNo returns the source line number of the instruction at the
// program counter, or 0 if it did not come from the program.
func (emu *Emulator) LineNo() int {
	op := emu.Program.Debug(emu.Cpu.Pc())
	if op == nil {
		return 0
	}

	return op.LineNo
}

// Tick performs a single tick of the emulator.
// A halted emulator does not tick.
func (emu *Emulator) Tick() (done bool) {
	if !emu.Cpu.Running() {
		done = true
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Tick()

	done = !emu.Cpu.Running()
	return
}

// RunLimit runs until HLT, or until limit ticks have executed.
// A limit of 0 or less is unlimited.
func (emu *Emulator) RunLimit(limit int) (err error) {
	return emu.StepLimit(limit, nil)
}

// StepLimit is RunLimit, calling step (if not nil) after every tick.
// An error from step stops the run, and is returned.
func (emu *Emulator) StepLimit(limit int, step func() error) (err error) {
	for ticks := 0; emu.Cpu.Running(); ticks++ {
		if limit > 0 && ticks >= limit {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrTickLimit}
			return
		}
		emu.Tick()
		if step == nil {
			continue
		}
		err = step()
		if err != nil {
			return
		}
	}

	return
}
