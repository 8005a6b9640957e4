package emulator

import (
	"errors"
	"strings"

	"github.com/ezrec/lmc/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("tick limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrRejected is returned when a program has lines that failed to assemble.
type ErrRejected struct {
	Lines []string // Source text of every rejected line.
	Err   error    // All rejected lines, joined.
}

func (err *ErrRejected) Error() string {
	return f("the following instructions failed to assemble: %v", strings.Join(err.Lines, ", "))
}

func (err *ErrRejected) Unwrap() error {
	return err.Err
}

// ErrInput is a malformed entry in the input data.
type ErrInput struct {
	Index int
	Text  string
}

func (err *ErrInput) Error() string {
	return f("input %d '%v' is not a number", err.Index, err.Text)
}
