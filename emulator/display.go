package emulator

import (
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/lmc/translate"
)

// dump writes the memory grid, registers, inbox and outbox.
// The console form has a leading blank line, and a space after the box labels.
func (emu *Emulator) dump(w io.Writer, console bool) (err error) {
	sep := ""
	if console {
		sep = " "
		if _, err = fmt.Fprintln(w); err != nil {
			return
		}
	}

	text := &strings.Builder{}
	for row := range 10 {
		for col := range 10 {
			addr := row*10 + col
			fmt.Fprintf(text, "%2d[%-3d] ", addr, int(emu.Cpu.Read(addr)))
		}
		text.WriteString("\n")
	}

	pc := emu.Cpu.Pc()
	fmt.Fprintf(text, "%31s PC[%-2d] ACC[%-3d] %v\n\n", "", pc, int(emu.Cpu.Accumulator()), emu.Cpu.Read(pc))

	if _, err = io.WriteString(w, text.String()); err != nil {
		return
	}

	if _, err = translate.To(w, "In box:%v%v\n", sep, emu.Cpu.Inbox.String()); err != nil {
		return
	}
	_, err = translate.To(w, "Out box:%v%v\n", sep, emu.Cpu.Outbox.String())

	return
}

// Dump writes the machine state for the console.
func (emu *Emulator) Dump(w io.Writer) error {
	return emu.dump(w, true)
}

// DumpString returns the machine state for a web page.
func (emu *Emulator) DumpString() string {
	text := &strings.Builder{}
	_ = emu.dump(text, false)
	return text.String()
}

// Disassemble writes an assembly listing of mailboxes start to end, inclusive.
func (emu *Emulator) Disassemble(w io.Writer, start, end int) (err error) {
	for addr := start; addr <= end; addr++ {
		_, err = fmt.Fprintf(w, "%2d: %v\n", addr, emu.Cpu.Read(addr))
		if err != nil {
			return
		}
	}

	return
}
