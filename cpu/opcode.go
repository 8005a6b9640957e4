package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	CODE_MAX    = 999 // Largest value a mailbox or the accumulator can hold.
	OPERAND_MAX = 99  // Largest address operand.
)

// CodeOp is an instruction opcode, the hundreds digit of a Code.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_HLT = CodeOp(0) // HLT
	OP_ADD = CodeOp(1) // ADD
	OP_SUB = CodeOp(2) // SUB
	OP_STA = CodeOp(3) // STA
	OP_LDA = CodeOp(4) // LDA
	OP_BRA = CodeOp(5) // BRA
	OP_BRZ = CodeOp(6) // BRZ
	OP_INP = CodeOp(7) // INP
	OP_OUT = CodeOp(8) // OUT
)

// MNEMONIC_DAT is the pseudo-instruction that reserves a mailbox.
const MNEMONIC_DAT = "DAT"

// Valid returns true if the opcode is one of the nine executable opcodes.
func (op CodeOp) Valid() bool {
	return op >= OP_HLT && op <= OP_OUT
}

// opMap maps mnemonics to opcodes.
var opMap = map[string]CodeOp{
	"HLT": OP_HLT,
	"ADD": OP_ADD,
	"SUB": OP_SUB,
	"STA": OP_STA,
	"LDA": OP_LDA,
	"BRA": OP_BRA,
	"BRZ": OP_BRZ,
	"INP": OP_INP,
	"OUT": OP_OUT,
}

// IsMnemonic returns true if word is an opcode mnemonic or DAT.
func IsMnemonic(word string) bool {
	_, ok := opMap[word]
	return ok || word == MNEMONIC_DAT
}

// Code is a single machine word.
type Code int

// MakeCode creates an instruction word from an opcode and an address operand.
func MakeCode(op CodeOp, operand int) Code {
	return Code(int(op)*100 + operand)
}

// Decode returns the opcode and operand of the instruction word.
// Opcodes outside of the nine known ones are returned as-is.
func (code Code) Decode() (op CodeOp, operand int) {
	op = CodeOp(code / 100)
	operand = int(code % 100)
	return
}

// Valid returns true if the word fits in a mailbox.
func (code Code) Valid() bool {
	return code >= 0 && code <= CODE_MAX
}

// String returns the assembly language form of the word.
//
// The operand is omitted for HLT, and for any instruction whose operand is 0.
// Words that do not decode to a known opcode are shown as DAT.
func (code Code) String() string {
	op, operand := code.Decode()
	if !op.Valid() {
		return fmt.Sprintf("%v %d", MNEMONIC_DAT, int(code))
	}

	if op == OP_HLT || operand == 0 {
		return op.String()
	}

	return fmt.Sprintf("%v %d", op.String(), operand)
}

// EncodeMnemonic translates a mnemonic and its operand to a machine word.
// DAT yields the operand itself.
//
// Operands are range checked more strictly than a plain opcode*100+operand
// sum: an address outside 0..99, or a DAT value outside 0..999, is
// ErrOperandRange rather than a word for some other instruction.
func EncodeMnemonic(name string, operand int) (code Code, err error) {
	if name == MNEMONIC_DAT {
		code = Code(operand)
		if !code.Valid() {
			err = ErrOperandRange
			code = 0
		}
		return
	}

	op, ok := opMap[name]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	if operand < 0 || operand > OPERAND_MAX {
		err = ErrOperandRange
		return
	}

	code = MakeCode(op, operand)

	return
}

// ParseCode translates a single linearized instruction, `MNEMONIC [operand]`,
// to a machine word. A missing operand is 0.
func ParseCode(text string) (code Code, err error) {
	words := strings.Fields(text)
	switch {
	case len(words) == 0:
		err = ErrOpcodeMissing
		return
	case len(words) > 2:
		err = ErrExtraArgs
		return
	}

	var operand int
	if len(words) == 2 {
		operand, err = strconv.Atoi(words[1])
		if err != nil {
			err = ErrParseNumber(words[1])
			return
		}
	}

	return EncodeMnemonic(words[0], operand)
}
