package cpu

import (
	"errors"

	"github.com/ezrec/lmc/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrOpcodeMissing  = errors.New(f("opcode missing"))
	ErrOpcodeInvalid  = errors.New(f("opcode invalid"))
	ErrOperandRange   = errors.New(f("operand out of range"))
	ErrExtraArgs      = errors.New(f("excessive arguments"))
	ErrLabelInvalid   = errors.New(f("label invalid"))
	ErrExpressionType = errors.New(f("expression is not an integer"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression struct {
	Expr string
	Err  error
}

func (err *ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression: %v", err.Expr, err.Err)
}

func (err *ErrParseExpression) Unwrap() error {
	return err.Err
}

// ErrSyntax is a single assembly line that failed to translate.
type ErrSyntax struct {
	LineNo int    // Source line number.
	Line   string // Instruction text, after label resolution.
	Source string // Instruction text, as written.
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Source, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
