// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"cmp"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/lmc/internal"
)

// COMMENT starts a comment that runs to the end of the line.
const COMMENT = "//"

// Assembler is a two pass assembler for the Little Man Computer.
//
// The first and last line of the source are framing, and are discarded.
// Each remaining line holds at most one instruction, in one of the forms:
//
//	MNEMONIC
//	MNEMONIC OPERAND
//	LABEL
//	LABEL MNEMONIC
//	LABEL MNEMONIC OPERAND
//
// An operand is a decimal number, a label, or a $(...) expression.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Label map[string]int    // Map of declared labels to mailbox addresses.
	Alias map[string]string // Map of labels on untranslatable lines to their operand.

	predefine map[string]int // Predefines
}

// record is a single line of assembly, split into its slots.
type record struct {
	lineNo   int
	words    []string
	label    string
	mnemonic string
	operand  string
	err      error
}

// Predefine defines a symbol that is visible to all programs, unless
// shadowed by a label.
func (asm *Assembler) Predefine(name string, value int) {
	if asm.predefine == nil {
		asm.predefine = map[string]int{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// Symbols iterates over all numeric symbols. Aliases follow predefines,
// and labels follow aliases.
func (asm *Assembler) Symbols() iter.Seq2[string, int] {
	return internal.IterSeq2Concat(maps.All(asm.predefine), asm.aliases(), maps.All(asm.Label))
}

// aliases iterates over every alias that resolves to a number.
func (asm *Assembler) aliases() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for name := range asm.Alias {
			value, ok := asm.Resolve(name)
			if !ok {
				continue
			}
			if !yield(name, value) {
				return
			}
		}
	}
}

// isIdentifier returns true if word is usable as a label.
func isIdentifier(word string) bool {
	if len(word) == 0 {
		return false
	}
	for n, r := range word {
		switch {
		case unicode.IsLetter(r):
		case n > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return true
}

// splitWords splits a line on whitespace, keeping parenthesised
// expressions as a single word.
func splitWords(line string) (words []string) {
	depth := 0
	start := -1
	for n, r := range line {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case unicode.IsSpace(r) && depth == 0:
			if start >= 0 {
				words = append(words, line[start:n])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = n
		}
	}
	if start >= 0 {
		words = append(words, line[start:])
	}

	return
}

// declare binds a label to a mailbox address.
func (asm *Assembler) declare(label string, addr int) {
	if asm.Verbose {
		if old, ok := asm.Label[label]; ok {
			log.Printf("label %v: %v replaces %v", label, addr, old)
		} else {
			log.Printf("label %v: %v", label, addr)
		}
	}
	asm.Label[label] = addr
}

// classify splits the words of a line into a record. A lone label
// is returned as bare, and does not take a mailbox.
func (asm *Assembler) classify(words []string, lineno int, addr int) (rec record, bare bool) {
	rec = record{lineNo: lineno, words: words}

	switch len(words) {
	case 1:
		switch {
		case IsMnemonic(words[0]):
			rec.mnemonic = words[0]
		case isIdentifier(words[0]):
			bare = true
		default:
			rec.mnemonic = words[0]
		}
	case 2:
		switch {
		case IsMnemonic(words[0]):
			rec.mnemonic, rec.operand = words[0], words[1]
		case IsMnemonic(words[1]):
			rec.label, rec.mnemonic = words[0], words[1]
		default:
			rec.mnemonic, rec.operand = words[0], words[1]
		}
	case 3:
		rec.label, rec.mnemonic, rec.operand = words[0], words[1], words[2]
		if !IsMnemonic(rec.mnemonic) {
			// Not an instruction, so the label names the operand.
			if isIdentifier(rec.label) {
				asm.Alias[rec.label] = rec.operand
			}
			rec.label = ""
		}
	default:
		rec.mnemonic, rec.operand = words[0], words[1]
		rec.err = ErrExtraArgs
	}

	if len(rec.label) > 0 {
		if isIdentifier(rec.label) {
			asm.declare(rec.label, addr)
		} else {
			rec.err = ErrLabelInvalid
		}
	}

	return
}

// Resolve returns the value of a symbol.
//
// Declared labels take precedence, then aliases, then predefines. An alias
// whose operand is itself a symbol is followed one level only.
func (asm *Assembler) Resolve(word string) (value int, ok bool) {
	value, ok = asm.Label[word]
	if ok {
		return
	}

	target, ok := asm.Alias[word]
	if ok {
		var err error
		value, err = strconv.Atoi(target)
		if err == nil {
			return
		}
		value, ok = asm.Label[target]
		if ok {
			return
		}
		value, ok = asm.predefine[target]
		return
	}

	value, ok = asm.predefine[word]

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	defer func() {
		if err != nil {
			err = &ErrParseExpression{Expr: expr, Err: err}
		}
	}()

	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, value := range asm.Symbols() {
		pred[key] = starlark.MakeInt(value)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrExpressionType
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrOperandRange
		return
	}
	value = int(st_int64)
	return
}

// references returns every symbol named by a mnemonic slot, an operand,
// an alias target or a $(...) expression.
func (asm *Assembler) references(records []record) (refs map[string]bool) {
	refs = map[string]bool{}

	note := func(word string) {
		if isIdentifier(word) {
			refs[word] = true
			return
		}
		if !strings.HasPrefix(word, "$(") || !strings.HasSuffix(word, ")") {
			return
		}
		opts := syntax.FileOptions{}
		expr, err := opts.ParseExpr("expr", word[2:len(word)-1], 0)
		if err != nil {
			return
		}
		syntax.Walk(expr, func(node syntax.Node) bool {
			if ident, ok := node.(*syntax.Ident); ok {
				refs[ident.Name] = true
			}
			return true
		})
	}

	for _, rec := range records {
		note(rec.mnemonic)
		note(rec.operand)
	}
	for _, target := range asm.Alias {
		note(target)
	}

	return
}

// operandOf returns the numeric value of an operand word.
func (asm *Assembler) operandOf(word string) (value int, err error) {
	switch {
	case len(word) == 0:
		return
	case strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")"):
		return asm.parenEval(word[2 : len(word)-1])
	case isIdentifier(word):
		var ok bool
		value, ok = asm.Resolve(word)
		if !ok {
			err = ErrLabelMissing(word)
		}
		return
	}

	value, err = strconv.Atoi(word)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// linearize substitutes symbols in the record, and returns its instruction text.
func (asm *Assembler) linearize(rec *record) (text string) {
	mnemonic := rec.mnemonic
	if !IsMnemonic(mnemonic) {
		value, ok := asm.Resolve(mnemonic)
		if ok {
			mnemonic = strconv.Itoa(value)
		}
	}

	operand := rec.operand
	if rec.err == nil {
		value, err := asm.operandOf(operand)
		if err != nil {
			rec.err = err
		} else {
			operand = strconv.Itoa(value)
		}
	}

	if len(operand) == 0 || operand == "0" {
		return mnemonic
	}

	return mnemonic + " " + operand
}

// Parse parses an input stream into a Program.
//
// Lines that fail to translate are collected in the program's Rejected
// list; err is only set if input could not be read.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		lines = nil
	} else {
		lines = lines[1 : len(lines)-1]
	}

	asm.Label = make(map[string]int, 16)
	asm.Alias = make(map[string]string)

	// Pass one: split lines into records, and declare labels.
	var records []record
	var pending []string
	var bares []record
	for n, text := range lines {
		lineno := n + 2

		line, _, _ := strings.Cut(text, COMMENT)
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		rec, bare := asm.classify(splitWords(line), lineno, len(records))
		if bare {
			pending = append(pending, rec.words[0])
			bares = append(bares, rec)
			continue
		}

		for _, label := range pending {
			asm.declare(label, len(records))
		}
		pending = pending[:0]

		records = append(records, rec)
	}

	// Trailing lone labels name the first free mailbox.
	for _, label := range pending {
		asm.declare(label, len(records))
	}

	// Pass two: resolve symbols, and encode.
	prog = &Program{}

	// A lone word that nothing refers to is a mistyped instruction.
	refs := asm.references(records)
	for _, rec := range bares {
		word := rec.words[0]
		if refs[word] {
			continue
		}
		if asm.Verbose {
			log.Printf("%v: '%v' rejected: %v", rec.lineNo, word, ErrOpcodeInvalid)
		}
		prog.Rejected = append(prog.Rejected, ErrSyntax{LineNo: rec.lineNo, Line: word, Source: word, Err: ErrOpcodeInvalid})
	}
	for addr := range records {
		rec := &records[addr]

		text := asm.linearize(rec)

		var code Code
		if rec.err == nil {
			code, rec.err = ParseCode(text)
		}

		if rec.err != nil {
			if asm.Verbose {
				log.Printf("%v: '%v' rejected: %v", rec.lineNo, text, rec.err)
			}
			prog.Rejected = append(prog.Rejected, ErrSyntax{
				LineNo: rec.lineNo,
				Line:   text,
				Source: strings.Join(rec.words, " "),
				Err:    rec.err,
			})
			continue
		}

		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo:  rec.lineNo,
			Address: addr,
			Words:   rec.words,
			Text:    text,
			Code:    code,
		})
	}

	slices.SortStableFunc(prog.Rejected, func(a, b ErrSyntax) int {
		return cmp.Compare(a.LineNo, b.LineNo)
	})

	return
}

// Assemble translates a complete program source.
func Assemble(source string) (prog *Program) {
	asm := &Assembler{}
	prog, _ = asm.Parse(strings.NewReader(source))
	return
}
