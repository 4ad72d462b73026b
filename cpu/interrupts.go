// Package cpu implements the SM83-family interpreter (C9) and the
// interrupt controller (C8) it dispatches through.
package cpu

import "github.com/nullstep/pocketcore/addr"

// priority is the fixed dispatch order: VBlank first, Joypad last.
var priority = [5]addr.Interrupt{
	addr.VBlank,
	addr.LCDStat,
	addr.Timer,
	addr.Serial,
	addr.Joypad,
}

// interruptBus is the bus surface the controller needs: the IF/IE registers
// it reads and clears.
type interruptBus interface {
	IF() byte
	SetIF(byte)
	IE() byte
}

// InterruptController resolves which of IF & IE's five bits, if any, is
// ready to dispatch, in fixed priority order.
type InterruptController struct {
	bus interruptBus
}

func NewInterruptController(bus interruptBus) *InterruptController {
	return &InterruptController{bus: bus}
}

// Pending reports whether any enabled interrupt is currently requested,
// independent of IME; Step wakes a halted CPU on this regardless of IME.
func (c *InterruptController) Pending() bool {
	return c.bus.IF()&c.bus.IE()&0x1F != 0
}

// Next returns the highest-priority interrupt that is both requested (IF)
// and enabled (IE), or ok=false if none is pending.
func (c *InterruptController) Next() (i addr.Interrupt, ok bool) {
	ready := c.bus.IF() & c.bus.IE() & 0x1F
	for _, candidate := range priority {
		if ready&byte(candidate) != 0 {
			return candidate, true
		}
	}
	return 0, false
}

// Acknowledge clears i's bit in IF; the dispatcher calls this once it
// commits to servicing the interrupt, before pushing PC. The dispatch's
// machine cycles are ticked as one block after the push.
func (c *InterruptController) Acknowledge(i addr.Interrupt) {
	c.bus.SetIF(c.bus.IF() &^ byte(i))
}
