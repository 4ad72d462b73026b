package cpu

import "github.com/nullstep/pocketcore/addr"

// Bus is everything the interpreter needs from the memory system: gated
// reads/writes and the shared-clock tick that advances every other
// component in lockstep with instruction execution.
type Bus interface {
	ReadCPU(addr uint16) byte
	WriteCPU(addr uint16, value byte)
	Tick(cycles int)
	IF() byte
	SetIF(byte)
	IE() byte
}

// CPU is the SM83-family interpreter: eight 8-bit registers (paired into
// BC/DE/HL, plus A and F), SP, PC, and the interrupt/halt/stop state
// machine.
type CPU struct {
	a, f       byte
	b, c       byte
	d, e       byte
	h, l       byte
	sp, pc     uint16
	ime        bool
	imeNext    bool
	halted     bool
	stopped    bool
	bus        Bus
	interrupts *InterruptController

	currentOpcode uint16 // for panic messages on unimplemented opcodes
}

// New returns a CPU wired to bus, with registers at their post-bootrom
// DMG values and interrupts disabled until the program enables them.
func New(bus Bus) *CPU {
	cpu := &CPU{
		bus:        bus,
		interrupts: NewInterruptController(bus),
	}
	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = 0x0100
	return cpu
}

// Reset restores the CPU's registers and interrupt/halt latches to their
// post-bootrom power-on values, leaving the bus wiring untouched.
func (c *CPU) Reset() {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.imeNext = false
	c.halted = false
	c.stopped = false
}

// Halted reports whether the CPU is parked in HALT, for the driving loop
// (and tests) to observe.
func (c *CPU) Halted() bool { return c.halted }

// PC exposes the program counter, for the debugger's breakpoint checks.
func (c *CPU) PC() uint16 { return c.pc }

const interruptDispatchCycles = 20 // 5 M-cycles

// Step executes exactly one unit of CPU activity: either servicing the
// highest-priority pending interrupt, spinning one NOP-equivalent cycle
// while halted, or decoding and executing one instruction. It returns the
// number of T-cycles consumed, which is also how far it has already
// advanced every other bus-ticked component.
func (c *CPU) Step() int {
	if c.halted && c.interrupts.Pending() {
		// Hardware wakes the CPU as soon as an enabled interrupt is
		// requested, even with IME=0; dispatch only actually occurs if
		// IME=1, otherwise execution resumes at the instruction after HALT.
		c.halted = false
	}

	if c.halted {
		c.bus.Tick(4)
		return 4
	}

	if c.ime {
		if i, ok := c.interrupts.Next(); ok {
			return c.dispatchInterrupt(i)
		}
	}

	c.ime = c.imeNext

	opcode := uint16(c.readImmediate())
	c.currentOpcode = opcode

	var cycles int
	if opcode == 0xCB {
		cbOpcode := uint16(c.readImmediate())
		c.currentOpcode = 0xCB00 | cbOpcode
		cycles = c.executeCB(uint8(cbOpcode))
	} else {
		cycles = c.execute(uint8(opcode))
	}

	c.bus.Tick(cycles)
	return cycles
}

// dispatchInterrupt pushes PC, jumps to the interrupt vector, and clears
// IME and the interrupt's IF bit; the whole sequence costs 5 M-cycles.
func (c *CPU) dispatchInterrupt(i addr.Interrupt) int {
	c.ime = false
	c.imeNext = false
	c.interrupts.Acknowledge(i)

	c.pushStack(c.pc)
	c.pc = i.Vector()

	c.bus.Tick(interruptDispatchCycles)
	return interruptDispatchCycles
}
