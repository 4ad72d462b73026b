package cpu

// Snapshot is the CBOR-serializable portion of CPU state saved by the
// engine's save-state feature: every register, flag, and interrupt/halt
// latch needed to resume execution exactly where it left off.
type Snapshot struct {
	A, F       byte
	B, C       byte
	D, E       byte
	H, L       byte
	SP, PC     uint16
	IME        bool
	IMENext    bool
	Halted     bool
	Stopped    bool
}

// Snapshot captures the CPU's serializable state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.a, F: c.f,
		B: c.b, C: c.c,
		D: c.d, E: c.e,
		H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
		IME: c.ime, IMENext: c.imeNext,
		Halted: c.halted, Stopped: c.stopped,
	}
}

// Restore replaces the CPU's register and interrupt-latch state with s,
// leaving the bus wiring untouched.
func (c *CPU) Restore(s Snapshot) {
	c.a, c.f = s.A, s.F
	c.b, c.c = s.B, s.C
	c.d, c.e = s.D, s.E
	c.h, c.l = s.H, s.L
	c.sp, c.pc = s.SP, s.PC
	c.ime, c.imeNext = s.IME, s.IMENext
	c.halted, c.stopped = s.Halted, s.Stopped
}
