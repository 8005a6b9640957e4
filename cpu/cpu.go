package cpu

import (
	"fmt"
	"log"
	"slices"
)

// MEMORY_SIZE is the number of mailboxes.
const MEMORY_SIZE = 100

// Cpu is the simulation context for the Little Man Computer.
//
// A Cpu is not safe for concurrent use; it must be driven by a single owner.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Inbox  Queue // Pending input values, consumed by INP.
	Outbox Queue // Values emitted by OUT.

	Ticks int // Instructions executed since reset.

	memory      [MEMORY_SIZE]Code
	accumulator Code
	pc          int
	running     bool
}

// NewCpu creates a new CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Reset the CPU state.
// - Clears memory, the accumulator and the program counter.
// - Empties the inbox and outbox.
// - Marks the CPU as running.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.memory[:])
	cpu.accumulator = 0
	cpu.pc = 0
	cpu.Inbox.Reset()
	cpu.Outbox.Reset()
	cpu.running = true
	cpu.Ticks = 0
}

// Read returns the mailbox at addr, or 0 if addr is out of range.
func (cpu *Cpu) Read(addr int) Code {
	if addr < 0 || addr >= len(cpu.memory) {
		return 0
	}
	return cpu.memory[addr]
}

// Write sets the mailbox at addr. Out of range addresses or values are ignored.
func (cpu *Cpu) Write(addr int, value Code) {
	if addr < 0 || addr >= len(cpu.memory) || !value.Valid() {
		return
	}
	cpu.memory[addr] = value
}

// Memory returns a copy of all mailboxes.
func (cpu *Cpu) Memory() []Code {
	return slices.Clone(cpu.memory[:])
}

func (cpu *Cpu) Accumulator() Code {
	return cpu.accumulator
}

// SetAccumulator sets the accumulator. Out of range values are ignored.
func (cpu *Cpu) SetAccumulator(value Code) {
	if value.Valid() {
		cpu.accumulator = value
	}
}

func (cpu *Cpu) Pc() int {
	return cpu.pc
}

// SetPc sets the program counter. Out of range values are ignored.
func (cpu *Cpu) SetPc(value int) {
	if value >= 0 && value < len(cpu.memory) {
		cpu.pc = value
	}
}

// Running is false once HLT has executed.
func (cpu *Cpu) Running() bool {
	return cpu.running
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"pc", "acc", "run", "inbox", "outbox"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02d %v", cpu.pc, cpu.Read(cpu.pc))
		case "acc":
			strval = fmt.Sprintf("%03d", int(cpu.accumulator))
		case "run":
			strval = "false"
			if cpu.running {
				strval = "true"
			}
		case "inbox":
			strval = cpu.Inbox.String()
		case "outbox":
			strval = cpu.Outbox.String()
		}
		text += fmt.Sprintf("% 6s: %v\n", reg, strval)
	}

	return
}

// FetchCode returns the instruction at the program counter, and advances
// the program counter. At the last mailbox the program counter stays put.
func (cpu *Cpu) FetchCode() (code Code) {
	pc := cpu.pc
	code = cpu.Read(pc)
	cpu.SetPc(pc + 1)

	if cpu.Verbose {
		log.Printf("%02d: %v", pc, code)
	}

	return
}

// Tick executes a single fetch, decode, execute cycle.
// It does not check whether the CPU has halted.
func (cpu *Cpu) Tick() {
	code := cpu.FetchCode()
	cpu.Execute(code)
	cpu.Ticks++
}

// Run ticks the CPU until HLT executes. There is no step limit.
func (cpu *Cpu) Run() {
	for cpu.running {
		cpu.Tick()
	}
}

// Execute executes a single instruction word.
// Unknown opcodes are no-ops.
func (cpu *Cpu) Execute(code Code) {
	op, operand := code.Decode()

	switch op {
	case OP_HLT:
		cpu.running = false
		if cpu.Verbose {
			log.Printf("cpu: halt after %v ticks", cpu.Ticks+1)
		}
	case OP_ADD:
		cpu.SetAccumulator(cpu.accumulator + cpu.Read(operand))
	case OP_SUB:
		cpu.SetAccumulator(cpu.accumulator - cpu.Read(operand))
	case OP_STA:
		cpu.Write(operand, cpu.accumulator)
	case OP_LDA:
		cpu.SetAccumulator(cpu.Read(operand))
	case OP_BRA:
		cpu.SetPc(operand)
	case OP_BRZ:
		if cpu.accumulator == 0 {
			cpu.SetPc(operand)
		}
	case OP_INP:
		value, _ := cpu.Inbox.Pop()
		cpu.SetAccumulator(value)
	case OP_OUT:
		cpu.Outbox.Push(cpu.accumulator)
	default:
		if cpu.Verbose {
			log.Printf("cpu: ignoring %03d", int(code))
		}
	}
}
