package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Opcode represents a line of assembled code with its source location and generated word.
type Opcode struct {
	LineNo  int      // Source line number.
	Address int      // Mailbox address.
	Words   []string // Source words, before label resolution.
	Text    string   // Instruction text, after label resolution.
	Code    Code     // Machine word.
}

// Program is the result of an assembly.
type Program struct {
	Opcodes  []Opcode    // Lines that translated, in source order.
	Rejected []ErrSyntax // Lines that failed to translate, in source order.
}

// Err returns all rejected lines joined, or nil if there are none.
func (prog *Program) Err() error {
	var errs []error
	for _, rejected := range prog.Rejected {
		errs = append(errs, rejected)
	}
	return errors.Join(errs...)
}

// Debug returns the opcode assembled at addr, or nil.
func (prog *Program) Debug(addr int) (op *Opcode) {
	for n := range prog.Opcodes {
		if prog.Opcodes[n].Address == addr {
			op = &prog.Opcodes[n]
			break
		}
	}

	return
}

// Binary returns the machine words of the accepted lines.
func (prog *Program) Binary() (codes []Code) {
	for _, code := range prog.Codes() {
		codes = append(codes, code)
	}

	return
}

// Text returns the instruction text of the accepted lines.
func (prog *Program) Text() (text []string) {
	for _, op := range prog.Opcodes {
		text = append(text, op.Text)
	}

	return
}

// Codes iterates over the address and machine word of each accepted line.
func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(addr int, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Address, op.Code) {
				return
			}
		}
	}
}

// Listing writes an assembly listing of the program.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		_, err = fmt.Fprintf(w, "%02d: %03d  %-8v ; %4d: %v\n",
			op.Address, int(op.Code), op.Code, op.LineNo, strings.Join(op.Words, " "))
		if err != nil {
			return
		}
	}

	for _, rejected := range prog.Rejected {
		_, err = fmt.Fprintf(w, "??: ---  %-8v ; %4d: %v (%v)\n",
			rejected.Line, rejected.LineNo, rejected.Source, rejected.Err)
		if err != nil {
			return
		}
	}

	return
}
