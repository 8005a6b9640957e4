// Package cpu implements the Little Man Computer and its assembler.
//
// The machine has 100 decimal mailboxes holding words in 0..999, a single
// accumulator, a program counter, and an inbox/outbox pair of queues. Every
// out of range read or write is silently ignored; the machine never traps.
//
// The assembler is a two pass translator: it first records every label
// declaration, then resolves symbolic operands and encodes each line. Lines
// that fail to translate are collected rather than aborting the assembly.
package cpu
