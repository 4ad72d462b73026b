package cpu

import (
	"testing"

	"github.com/nullstep/pocketcore/addr"
	"github.com/stretchr/testify/assert"
)

type fakeInterruptBus struct {
	ifReg, ieReg byte
}

func (f *fakeInterruptBus) IF() byte     { return f.ifReg }
func (f *fakeInterruptBus) SetIF(v byte) { f.ifReg = v }
func (f *fakeInterruptBus) IE() byte     { return f.ieReg }

func TestInterruptController_honorsFixedPriorityOrder(t *testing.T) {
	bus := &fakeInterruptBus{
		ifReg: byte(addr.Joypad) | byte(addr.Timer) | byte(addr.VBlank),
		ieReg: 0x1F,
	}
	c := NewInterruptController(bus)

	next, ok := c.Next()
	assert.True(t, ok)
	assert.Equal(t, addr.VBlank, next)
}

func TestInterruptController_ignoresRequestedButNotEnabled(t *testing.T) {
	bus := &fakeInterruptBus{ifReg: byte(addr.VBlank), ieReg: byte(addr.Timer)}
	c := NewInterruptController(bus)

	_, ok := c.Next()
	assert.False(t, ok)
	assert.False(t, c.Pending())
}

func TestInterruptController_acknowledgeClearsOnlyThatBit(t *testing.T) {
	bus := &fakeInterruptBus{ifReg: byte(addr.VBlank) | byte(addr.Timer), ieReg: 0x1F}
	c := NewInterruptController(bus)

	c.Acknowledge(addr.VBlank)

	assert.Equal(t, byte(addr.Timer), bus.ifReg)
}

func TestInterruptController_pendingWakesHaltRegardlessOfOrder(t *testing.T) {
	bus := &fakeInterruptBus{ifReg: byte(addr.Joypad), ieReg: byte(addr.Joypad)}
	c := NewInterruptController(bus)

	assert.True(t, c.Pending())
}
