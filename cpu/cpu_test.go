package cpu

import (
	"testing"

	"github.com/nullstep/pocketcore/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64 KiB address space with no gating, enough to drive
// the interpreter's opcode tests independent of the real MMU.
type fakeBus struct {
	mem        [0x10000]byte
	ifReg, ie  byte
	ticked     int
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) ReadCPU(a uint16) byte     { return b.mem[a] }
func (b *fakeBus) WriteCPU(a uint16, v byte) { b.mem[a] = v }
func (b *fakeBus) Tick(cycles int)           { b.ticked += cycles }
func (b *fakeBus) IF() byte                  { return b.ifReg }
func (b *fakeBus) SetIF(v byte)              { b.ifReg = v }
func (b *fakeBus) IE() byte                  { return b.ie }

func newTestCPU(program ...byte) (*CPU, *fakeBus) {
	bus := newFakeBus()
	copy(bus.mem[0x0100:], program)
	c := New(bus)
	return c, bus
}

func TestCPU_nopConsumesFourCyclesAndAdvancesPC(t *testing.T) {
	c, bus := newTestCPU(0x00)
	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, 4, bus.ticked)
	assert.Equal(t, uint16(0x0101), c.pc)
}

func TestCPU_ldImmediateLoadsRegister(t *testing.T) {
	c, _ := newTestCPU(0x06, 0x42) // LD B, 0x42
	c.Step()
	assert.Equal(t, byte(0x42), c.b)
}

func TestCPU_incSetsHalfCarryAtNibbleBoundary(t *testing.T) {
	c, _ := newTestCPU(0x04) // INC B
	c.b = 0x0F
	c.Step()

	assert.Equal(t, byte(0x10), c.b)
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(zeroFlag))
}

func TestCPU_addSetsCarryAndHalfCarry(t *testing.T) {
	c, _ := newTestCPU(0x80) // ADD A, B
	c.a = 0xFF
	c.b = 0x01
	c.Step()

	assert.Equal(t, byte(0x00), c.a)
	assert.True(t, c.isSetFlag(zeroFlag))
	assert.True(t, c.isSetFlag(carryFlag))
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(subFlag))
}

func TestCPU_subSetsSubtractAndCarryOnBorrow(t *testing.T) {
	c, _ := newTestCPU(0x90) // SUB B
	c.a = 0x00
	c.b = 0x01
	c.Step()

	assert.Equal(t, byte(0xFF), c.a)
	assert.True(t, c.isSetFlag(subFlag))
	assert.True(t, c.isSetFlag(carryFlag))
}

func TestCPU_daaCorrectsAfterBCDAddition(t *testing.T) {
	c, _ := newTestCPU(0x27) // DAA
	c.a = 0x0A               // as if 5 + 5 overflowed into non-BCD territory
	c.f = 0                  // drop the post-bootrom Z/H/C flags (F=0xB0)
	c.setFlagToCondition(halfCarryFlag, true)
	c.Step()

	assert.Equal(t, byte(0x10), c.a)
}

func TestCPU_jumpRelativeBackward(t *testing.T) {
	c, bus := newTestCPU(0x18, 0xFE) // JR -2 (infinite loop encoding)
	bus.mem[0x0100] = 0x18
	bus.mem[0x0101] = 0xFE
	c.Step()

	assert.Equal(t, uint16(0x0100), c.pc)
}

func TestCPU_callAndRetRoundTripStackAndPC(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x0100] = 0xCD // CALL 0x0200
	bus.mem[0x0101] = 0x00
	bus.mem[0x0102] = 0x02
	bus.mem[0x0200] = 0xC9 // RET

	c.Step() // CALL
	assert.Equal(t, uint16(0x0200), c.pc)

	c.Step() // RET
	assert.Equal(t, uint16(0x0103), c.pc)
}

func TestCPU_haltWakesImmediatelyWhenInterruptBecomesPending(t *testing.T) {
	c, bus := newTestCPU(0x76) // HALT
	c.ime = false
	c.Step()
	require.True(t, c.Halted())

	bus.ifReg = byte(addr.VBlank)
	bus.ie = byte(addr.VBlank)
	c.Step()

	assert.False(t, c.Halted())
}

func TestCPU_interruptDispatchPushesPCAndJumpsToVectorClearingIF(t *testing.T) {
	c, bus := newTestCPU(0x00)
	c.ime = true
	c.imeNext = true
	bus.ifReg = byte(addr.Timer)
	bus.ie = byte(addr.Timer)

	cycles := c.Step()

	assert.Equal(t, interruptDispatchCycles, cycles)
	assert.Equal(t, addr.Timer.Vector(), c.pc)
	assert.False(t, c.ime)
	assert.Equal(t, byte(0), bus.ifReg)

	returnAddr := c.popStack()
	assert.Equal(t, uint16(0x0100), returnAddr)
}

func TestCPU_eiTakesEffectAfterFollowingInstruction(t *testing.T) {
	c, bus := newTestCPU(0xFB, 0x00, 0x00) // EI, NOP, NOP
	bus.ifReg = byte(addr.VBlank)
	bus.ie = byte(addr.VBlank)

	c.Step() // EI: ime still false this step
	assert.False(t, c.ime)

	c.Step() // NOP following EI: ime becomes true before fetch, but dispatch
	// was already decided for this step using the pre-EI ime value.
	assert.True(t, c.ime)

	// the interrupt is serviced starting on the step after that.
	cycles := c.Step()
	assert.Equal(t, interruptDispatchCycles, cycles)
}

func TestCPU_retiTakesEffectAfterFollowingInstruction(t *testing.T) {
	c, bus := newTestCPU(0xD9, 0x00, 0x00) // RETI, NOP, NOP
	c.ime = false
	c.pushStack(0x0200) // a return address for RETI to pop
	bus.mem[0x0200] = 0x00
	bus.mem[0x0201] = 0x00
	bus.ifReg = byte(addr.VBlank)
	bus.ie = byte(addr.VBlank)

	c.Step() // RETI: pops PC, but ime still false this step
	assert.Equal(t, uint16(0x0200), c.pc)
	assert.False(t, c.ime)

	c.Step() // NOP following RETI: ime becomes true before fetch, but
	// dispatch was already decided for this step using the pre-RETI ime.
	assert.True(t, c.ime)

	// the interrupt is serviced starting on the step after that.
	cycles := c.Step()
	assert.Equal(t, interruptDispatchCycles, cycles)
}

func TestCPU_bitOpcodeSetsZeroFlagWhenBitClear(t *testing.T) {
	c, bus := newTestCPU(0xCB, 0x78) // BIT 7, B
	bus.mem[0x0100] = 0xCB
	bus.mem[0x0101] = 0x78
	c.b = 0x00
	c.Step()

	assert.True(t, c.isSetFlag(zeroFlag))
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(subFlag))
}

func TestCPU_setAndResBitOpcodes(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x0100] = 0xCB
	bus.mem[0x0101] = 0xC0 // SET 0, B
	c.Step()
	assert.Equal(t, byte(0x01), c.b)

	c.pc = 0x0100
	bus.mem[0x0100] = 0xCB
	bus.mem[0x0101] = 0x80 // RES 0, B
	c.Step()
	assert.Equal(t, byte(0x00), c.b)
}
