package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lmc/cpu"
)

func frame(lines ...string) string {
	return "\n" + strings.Join(lines, "\n") + "\n"
}

var countdown = frame(
	"        INP",
	"LOOP    OUT",
	"        SUB ONE",
	"        BRZ DONE",
	"        BRA LOOP",
	"DONE    OUT",
	"        HLT",
	"ONE     DAT 1",
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.True(emu.Running())
	assert.Equal(0, emu.LineNo())
}

func TestParseInbox(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text  string
		inbox []cpu.Code
	}){
		{"", nil},
		{"  ", nil},
		{"5", []cpu.Code{5}},
		{"4,2", []cpu.Code{4, 2}},
		{" 1 , 2,3 ", []cpu.Code{1, 2, 3}},
		{"-1,1000", []cpu.Code{-1, 1000}},
	}

	for _, entry := range table {
		inbox, err := ParseInbox(entry.text)
		assert.NoError(err, entry.text)
		assert.Equal(entry.inbox, inbox, entry.text)
	}

	_, err := ParseInbox("1,,2")
	var ierr *ErrInput
	assert.True(errors.As(err, &ierr))
	assert.Equal(1, ierr.Index)
	assert.Equal("", ierr.Text)

	_, err = ParseInbox("1,x")
	assert.True(errors.As(err, &ierr))
	assert.Equal(&ErrInput{Index: 1, Text: "x"}, ierr)
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Cpu.Outbox.Push(9)
	emu.Cpu.SetAccumulator(9)

	emu.Load([]cpu.Code{107, 0}, []cpu.Code{4, 2})
	assert.Equal(cpu.Code(107), emu.Cpu.Read(0))
	assert.Equal(cpu.Code(0), emu.Cpu.Read(1))
	assert.Equal([]cpu.Code{4, 2}, emu.Cpu.Inbox.Values())
	assert.True(emu.Cpu.Outbox.Empty())
	assert.Equal(cpu.Code(0), emu.Cpu.Accumulator())

	emu.Cpu.Write(7, 5)
	done := emu.Tick()
	assert.False(done)
	assert.Equal(cpu.Code(5), emu.Cpu.Accumulator())
	assert.Equal(1, emu.Cpu.Pc())

	done = emu.Tick()
	assert.True(done)

	// A halted emulator stays put.
	done = emu.Tick()
	assert.True(done)
	assert.Equal(2, emu.Cpu.Pc())
	assert.Equal(2, emu.Cpu.Ticks)
}

func TestEmulatorLoadOversize(t *testing.T) {
	assert := assert.New(t)

	program := make([]cpu.Code, cpu.MEMORY_SIZE+10)
	for n := range program {
		program[n] = cpu.Code(n)
	}

	emu := NewEmulator()
	emu.Load(program, nil)
	assert.Equal(cpu.Code(99), emu.Cpu.Read(99))
	assert.True(emu.Cpu.Inbox.Empty())
}

func TestEmulatorLoadAssembly(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(frame("INP", "OUT", "HLT"), "5")
	assert.NoError(err)

	for _, lineno := range []int{2, 3, 4} {
		assert.Equal(lineno, emu.LineNo())
		emu.Tick()
	}

	assert.False(emu.Running())
	assert.Equal(0, emu.LineNo())
	assert.Equal([]cpu.Code{5}, emu.Cpu.Outbox.Values())
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(countdown, "3")
	assert.NoError(err)

	emu.Run()
	assert.False(emu.Running())
	assert.Equal([]cpu.Code{3, 2, 1, 0}, emu.Cpu.Outbox.Values())
	assert.True(emu.Cpu.Inbox.Empty())
}

func TestEmulatorLoadAssemblyRejected(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(countdown, "3")
	assert.NoError(err)
	prog := emu.Program
	memory := emu.Cpu.Memory()

	err = emu.LoadAssembly(frame("INP", "FOO 3", "OUT", "BAR", "HLT 1 2 3"), "1")

	var rejected *ErrRejected
	assert.True(errors.As(err, &rejected))
	assert.Equal([]string{"FOO 3", "BAR", "HLT 1 2 3"}, rejected.Lines)
	assert.ErrorIs(err, cpu.ErrOpcodeInvalid)
	assert.ErrorIs(err, cpu.ErrExtraArgs)

	// Nothing changed.
	assert.Equal(memory, emu.Cpu.Memory())
	assert.Equal([]cpu.Code{3}, emu.Cpu.Inbox.Values())
	assert.Same(prog, emu.Program)
}

func TestEmulatorLoadAssemblyRejectedFresh(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(frame("FOO 3"), "")
	assert.Error(err)

	assert.Equal(make([]cpu.Code, cpu.MEMORY_SIZE), emu.Cpu.Memory())
	assert.Equal(0, emu.Cpu.Pc())
	assert.Equal(cpu.Code(0), emu.Cpu.Accumulator())
	assert.True(emu.Cpu.Inbox.Empty())
	assert.True(emu.Cpu.Outbox.Empty())
	assert.True(emu.Running())
}

func TestEmulatorLoadAssemblyMistyped(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(frame("INP", "OUTT", "HLT"), "5")

	var rejected *ErrRejected
	assert.True(errors.As(err, &rejected))
	assert.Equal([]string{"OUTT"}, rejected.Lines)
	assert.ErrorIs(err, cpu.ErrOpcodeInvalid)
	assert.Equal(make([]cpu.Code, cpu.MEMORY_SIZE), emu.Cpu.Memory())
}

func TestEmulatorLoadProgramNil(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Cpu.Write(3, 42)

	err := emu.LoadProgram(nil, "1")
	assert.NoError(err)
	assert.NotNil(emu.Program)
	assert.Equal(cpu.Code(0), emu.Cpu.Read(3))
	assert.Equal([]cpu.Code{1}, emu.Cpu.Inbox.Values())

	emu.Tick()
	assert.False(emu.Running())
}

func TestEmulatorLoadBadInput(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(frame("INP", "HLT"), "1,two")

	var ierr *ErrInput
	assert.True(errors.As(err, &ierr))
	assert.Equal(make([]cpu.Code, cpu.MEMORY_SIZE), emu.Cpu.Memory())
}

func TestEmulatorLoadProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	asm.Predefine("COUNT", 2)
	prog, err := asm.Parse(strings.NewReader(frame(
		"LDA N",
		"OUT",
		"HLT",
		"N DAT COUNT",
	)))
	assert.NoError(err)

	emu := NewEmulator()
	err = emu.LoadProgram(prog, "")
	assert.NoError(err)
	assert.Same(prog, emu.Program)

	emu.Run()
	assert.Equal([]cpu.Code{2}, emu.Cpu.Outbox.Values())
}

func TestEmulatorRunLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(frame("INP", "LOOP BRA LOOP"), "")
	assert.NoError(err)

	err = emu.RunLimit(10)
	assert.ErrorIs(err, ErrTickLimit)

	var rerr *ErrRuntime
	assert.True(errors.As(err, &rerr))
	assert.Equal(3, rerr.LineNo)
	assert.Equal(10, emu.Cpu.Ticks)
	assert.True(emu.Running())

	err = emu.LoadAssembly(countdown, "2")
	assert.NoError(err)
	err = emu.RunLimit(100)
	assert.NoError(err)
	assert.Equal([]cpu.Code{2, 1, 0}, emu.Cpu.Outbox.Values())

	err = emu.LoadAssembly(countdown, "1")
	assert.NoError(err)
	err = emu.RunLimit(0)
	assert.NoError(err)
	assert.False(emu.Running())
}

func TestEmulatorStepLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(countdown, "2")
	assert.NoError(err)

	var pcs []int
	err = emu.StepLimit(0, func() error {
		pcs = append(pcs, emu.Cpu.Pc())
		return nil
	})
	assert.NoError(err)
	assert.Equal(emu.Cpu.Ticks, len(pcs))
	assert.Equal([]int{1, 2, 3, 4, 1}, pcs[:5])

	err = emu.LoadAssembly(frame("LOOP BRA LOOP"), "")
	assert.NoError(err)

	steps := 0
	err = emu.StepLimit(4, func() error {
		steps++
		return nil
	})
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(4, steps)

	stop := errors.New("stop")
	err = emu.StepLimit(0, func() error {
		return stop
	})
	assert.Equal(stop, err)
	assert.Equal(5, emu.Cpu.Ticks)
}

func TestEmulatorDump(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.LoadAssembly(frame("INP", "OUT", "HLT"), "5,6")
	assert.NoError(err)

	out := &bytes.Buffer{}
	err = emu.Dump(out)
	assert.NoError(err)

	text := out.String()
	lines := strings.Split(text, "\n")
	assert.Equal("", lines[0])
	assert.Equal(" 0[700]  1[800]  2[0  ]  3[0  ]  4[0  ]  5[0  ]  6[0  ]  7[0  ]  8[0  ]  9[0  ] ", lines[1])
	assert.Equal("90[0  ] 91[0  ] 92[0  ] 93[0  ] 94[0  ] 95[0  ] 96[0  ] 97[0  ] 98[0  ] 99[0  ] ", lines[10])
	assert.Equal(strings.Repeat(" ", 31)+" PC[0 ] ACC[0  ] INP", lines[11])
	assert.Equal("", lines[12])
	assert.Equal("In box: [5, 6]", lines[13])
	assert.Equal("Out box: []", lines[14])

	emu.Tick()
	emu.Tick()

	web := emu.DumpString()
	assert.True(strings.HasPrefix(web, " 0[700] "))
	assert.Contains(web, " PC[2 ] ACC[5  ] HLT\n\n")
	assert.Contains(web, "In box:[6]\n")
	assert.Contains(web, "Out box:[5]\n")
}

func TestEmulatorDisassemble(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load([]cpu.Code{700, 107, 0, 950}, nil)

	out := &bytes.Buffer{}
	err := emu.Disassemble(out, 0, 4)
	assert.NoError(err)
	assert.Equal(" 0: INP\n 1: ADD 7\n 2: HLT\n 3: DAT 950\n 4: HLT\n", out.String())

	out.Reset()
	err = emu.Disassemble(out, 98, 100)
	assert.NoError(err)
	assert.Equal("98: HLT\n99: HLT\n100: HLT\n", out.String())
}
